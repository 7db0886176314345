package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/duca-customs-backend/internal/domain/declaration"
	"github.com/duca-customs-backend/internal/domain/user"
)

// CreateDeclarationRequest is the submission envelope. The document payload
// nests under "duca", mirroring the DUCA form structure.
type CreateDeclarationRequest struct {
	Duca DucaPayload `json:"duca" binding:"required"`
}

// DucaPayload is the declaration document as submitted by a carrier.
type DucaPayload struct {
	NumeroDocumento    string            `json:"numeroDocumento" binding:"required"`
	FechaEmision       string            `json:"fechaEmision" binding:"required"`
	PaisEmisor         string            `json:"paisEmisor"`
	TipoOperacion      string            `json:"tipoOperacion" binding:"required"`
	Exportador         ExportadorPayload `json:"exportador" binding:"required"`
	Importador         ImportadorPayload `json:"importador" binding:"required"`
	Transporte         TransportePayload `json:"transporte"`
	Mercancias         MercanciasPayload `json:"mercancias" binding:"required"`
	Valores            ValoresPayload    `json:"valores" binding:"required"`
	ResultadoSelectivo *SelectividadData `json:"resultadoSelectivo,omitempty"`
	EstadoDocumento    string            `json:"estadoDocumento"`
	FirmaElectronica   string            `json:"firmaElectronica"`
}

// ExportadorPayload references a catalog exporter by id.
type ExportadorPayload struct {
	IDExportador     string `json:"idExportador" binding:"required"`
	NombreExportador string `json:"nombreExportador"`
}

// ImportadorPayload references a catalog importer by id.
type ImportadorPayload struct {
	IDImportador     string `json:"idImportador" binding:"required"`
	NombreImportador string `json:"nombreImportador"`
}

// TransportePayload carries the transport leg of the declaration.
type TransportePayload struct {
	MedioTransporte string            `json:"medioTransporte"`
	PlacaVehiculo   string            `json:"placaVehiculo"`
	Conductor       *ConductorPayload `json:"conductor,omitempty"`
	Ruta            RutaPayload       `json:"ruta"`
}

// ConductorPayload holds the optional driver details.
type ConductorPayload struct {
	NombreConductor   string `json:"nombreConductor"`
	LicenciaConductor string `json:"licenciaConductor"`
	PaisLicencia      string `json:"paisLicencia"`
}

// RutaPayload holds the customs route details.
type RutaPayload struct {
	AduanaSalida          string   `json:"aduanaSalida"`
	AduanaEntrada         string   `json:"aduanaEntrada"`
	PaisDestino           string   `json:"paisDestino"`
	KilometrosAproximados *float64 `json:"kilometrosAproximados,omitempty"`
}

// MercanciasPayload wraps the cargo line items.
type MercanciasPayload struct {
	NumeroItems int           `json:"numeroItems"`
	Items       []ItemPayload `json:"items" binding:"required,min=1"`
}

// ItemPayload is one cargo line item as submitted.
type ItemPayload struct {
	Linea         int             `json:"linea"`
	Descripcion   string          `json:"descripcion"`
	Cantidad      decimal.Decimal `json:"cantidad"`
	UnidadMedida  string          `json:"unidadMedida"`
	ValorUnitario decimal.Decimal `json:"valorUnitario"`
	PaisOrigen    string          `json:"paisOrigen"`
}

// ValoresPayload carries the monetary components. The four inputs are
// optional; any submitted total is discarded and recomputed server-side.
type ValoresPayload struct {
	ValorFactura     *decimal.Decimal `json:"valorFactura,omitempty"`
	GastosTransporte *decimal.Decimal `json:"gastosTransporte,omitempty"`
	Seguro           *decimal.Decimal `json:"seguro,omitempty"`
	OtrosGastos      *decimal.Decimal `json:"otrosGastos,omitempty"`
	ValorAduanaTotal *decimal.Decimal `json:"valorAduanaTotal,omitempty"`
	Moneda           string           `json:"moneda"`
}

// SelectividadData is the optional selectivity result, shared between
// request and response shapes.
type SelectividadData struct {
	Codigo      string `json:"codigo,omitempty"`
	Descripcion string `json:"descripcion,omitempty"`
}

// issueDateLayout is the calendar-date format of fechaEmision.
const issueDateLayout = "2006-01-02"

// toDomain maps the submission payload onto the domain entity. Owner,
// state, and computed totals are the workflow's responsibility.
func (p DucaPayload) toDomain() (*declaration.Declaration, error) {
	fecha, err := time.Parse(issueDateLayout, p.FechaEmision)
	if err != nil {
		// Tolerate full timestamps as well.
		fecha, err = time.Parse(time.RFC3339, p.FechaEmision)
		if err != nil {
			return nil, declaration.ValidationError{Reason: "fechaEmision must be a valid date (YYYY-MM-DD)"}
		}
	}

	d := &declaration.Declaration{
		NumeroDocumento: p.NumeroDocumento,
		PaisEmisor:      p.PaisEmisor,
		TipoOperacion:   declaration.OperationType(p.TipoOperacion),
		FechaEmision:    fecha,
		MedioTransporte: declaration.TransportMode(p.Transporte.MedioTransporte),
		PlacaVehiculo:   p.Transporte.PlacaVehiculo,
		Ruta: declaration.Ruta{
			AduanaSalida:    p.Transporte.Ruta.AduanaSalida,
			AduanaEntrada:   p.Transporte.Ruta.AduanaEntrada,
			PaisDestino:     p.Transporte.Ruta.PaisDestino,
			KilometrosAprox: p.Transporte.Ruta.KilometrosAproximados,
		},
		ImportadorID:     p.Importador.IDImportador,
		ImportadorNombre: p.Importador.NombreImportador,
		ExportadorID:     p.Exportador.IDExportador,
		ExportadorNombre: p.Exportador.NombreExportador,
		FirmaElectronica: p.FirmaElectronica,
	}

	if c := p.Transporte.Conductor; c != nil {
		d.Conductor = &declaration.Conductor{
			Nombre:       c.NombreConductor,
			Licencia:     c.LicenciaConductor,
			PaisLicencia: c.PaisLicencia,
		}
	}
	if s := p.ResultadoSelectivo; s != nil {
		d.Selectividad = &declaration.Selectividad{
			Codigo:      s.Codigo,
			Descripcion: s.Descripcion,
		}
	}

	d.Valores = declaration.Valores{
		ValorFactura:     toNullDecimal(p.Valores.ValorFactura),
		GastosTransporte: toNullDecimal(p.Valores.GastosTransporte),
		Seguro:           toNullDecimal(p.Valores.Seguro),
		OtrosGastos:      toNullDecimal(p.Valores.OtrosGastos),
		Moneda:           p.Valores.Moneda,
	}

	d.Items = make([]declaration.Item, 0, len(p.Mercancias.Items))
	for i, it := range p.Mercancias.Items {
		linea := it.Linea
		if linea == 0 {
			linea = i + 1
		}
		d.Items = append(d.Items, declaration.Item{
			Linea:         linea,
			Descripcion:   it.Descripcion,
			Cantidad:      it.Cantidad,
			UnidadMedida:  it.UnidadMedida,
			ValorUnitario: it.ValorUnitario,
			PaisOrigen:    it.PaisOrigen,
		})
	}

	return d, nil
}

func toNullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

// DeclarationResponse is the full document shape returned by detail and
// creation endpoints.
type DeclarationResponse struct {
	ID               string            `json:"id"`
	NumeroDocumento  string            `json:"numero_documento"`
	PaisEmisor       string            `json:"pais_emisor,omitempty"`
	TipoOperacion    string            `json:"tipo_operacion"`
	FechaEmision     string            `json:"fecha_emision"`
	MedioTransporte  string            `json:"medio_transporte,omitempty"`
	PlacaVehiculo    string            `json:"placa_vehiculo,omitempty"`
	Conductor        *ConductorData    `json:"conductor,omitempty"`
	AduanaSalida     string            `json:"aduana_salida,omitempty"`
	AduanaEntrada    string            `json:"aduana_entrada,omitempty"`
	PaisDestino      string            `json:"pais_destino,omitempty"`
	KilometrosAprox  *float64          `json:"kilometros_aproximados,omitempty"`
	ImportadorID     string            `json:"importador_id"`
	ImportadorNombre string            `json:"importador_nombre"`
	ExportadorID     string            `json:"exportador_id"`
	ExportadorNombre string            `json:"exportador_nombre"`
	ValorFactura     *decimal.Decimal  `json:"valor_factura,omitempty"`
	GastosTransporte *decimal.Decimal  `json:"gastos_transporte,omitempty"`
	Seguro           *decimal.Decimal  `json:"seguro,omitempty"`
	OtrosGastos      *decimal.Decimal  `json:"otros_gastos,omitempty"`
	ValorAduanaTotal decimal.Decimal   `json:"valor_aduana_total"`
	Moneda           string            `json:"moneda"`
	Selectividad     *SelectividadData `json:"resultado_selectivo,omitempty"`
	FirmaElectronica string            `json:"firma_electronica,omitempty"`
	Estado           string            `json:"estado"`
	ComentarioAgente *string           `json:"comentario_agente,omitempty"`
	Items            []ItemData        `json:"items"`
	CreatedAt        string            `json:"created_at"`
	ValidatedAt      string            `json:"validated_at,omitempty"`
}

// ConductorData is the driver block in responses.
type ConductorData struct {
	NombreConductor   string `json:"nombre_conductor,omitempty"`
	LicenciaConductor string `json:"licencia_conductor,omitempty"`
	PaisLicencia      string `json:"pais_licencia,omitempty"`
}

// ItemData is one cargo line item in responses.
type ItemData struct {
	Linea         int             `json:"linea"`
	Descripcion   string          `json:"descripcion"`
	Cantidad      decimal.Decimal `json:"cantidad"`
	UnidadMedida  string          `json:"unidad_medida"`
	ValorUnitario decimal.Decimal `json:"valor_unitario"`
	PaisOrigen    string          `json:"pais_origen,omitempty"`
}

// mapDeclarationToResponse maps the domain entity to the API shape.
func mapDeclarationToResponse(d *declaration.Declaration) DeclarationResponse {
	resp := DeclarationResponse{
		ID:               d.ID.String(),
		NumeroDocumento:  d.NumeroDocumento,
		PaisEmisor:       d.PaisEmisor,
		TipoOperacion:    string(d.TipoOperacion),
		FechaEmision:     d.FechaEmision.Format(issueDateLayout),
		MedioTransporte:  string(d.MedioTransporte),
		PlacaVehiculo:    d.PlacaVehiculo,
		AduanaSalida:     d.Ruta.AduanaSalida,
		AduanaEntrada:    d.Ruta.AduanaEntrada,
		PaisDestino:      d.Ruta.PaisDestino,
		KilometrosAprox:  d.Ruta.KilometrosAprox,
		ImportadorID:     d.ImportadorID,
		ImportadorNombre: d.ImportadorNombre,
		ExportadorID:     d.ExportadorID,
		ExportadorNombre: d.ExportadorNombre,
		ValorFactura:     fromNullDecimal(d.Valores.ValorFactura),
		GastosTransporte: fromNullDecimal(d.Valores.GastosTransporte),
		Seguro:           fromNullDecimal(d.Valores.Seguro),
		OtrosGastos:      fromNullDecimal(d.Valores.OtrosGastos),
		ValorAduanaTotal: d.Valores.ValorAduanaTotal,
		Moneda:           d.Valores.Moneda,
		FirmaElectronica: d.FirmaElectronica,
		Estado:           string(d.Estado),
		ComentarioAgente: d.ComentarioAgente,
		CreatedAt:        d.CreatedAt.Format(time.RFC3339),
	}
	if d.Conductor != nil {
		resp.Conductor = &ConductorData{
			NombreConductor:   d.Conductor.Nombre,
			LicenciaConductor: d.Conductor.Licencia,
			PaisLicencia:      d.Conductor.PaisLicencia,
		}
	}
	if d.Selectividad != nil {
		resp.Selectividad = &SelectividadData{
			Codigo:      d.Selectividad.Codigo,
			Descripcion: d.Selectividad.Descripcion,
		}
	}
	if d.ValidatedAt != nil {
		resp.ValidatedAt = d.ValidatedAt.Format(time.RFC3339)
	}
	resp.Items = make([]ItemData, 0, len(d.Items))
	for _, it := range d.Items {
		resp.Items = append(resp.Items, ItemData{
			Linea:         it.Linea,
			Descripcion:   it.Descripcion,
			Cantidad:      it.Cantidad,
			UnidadMedida:  it.UnidadMedida,
			ValorUnitario: it.ValorUnitario,
			PaisOrigen:    it.PaisOrigen,
		})
	}
	return resp
}

func fromNullDecimal(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

// DecisionRequest is the agent's verdict on a pending declaration.
type DecisionRequest struct {
	Decision   string  `json:"decision" binding:"required"`
	Comentario *string `json:"comentario,omitempty"`
}

// DecisionResponse confirms an applied decision.
type DecisionResponse struct {
	NumeroDocumento string `json:"numero_documento"`
	Estado          string `json:"estado"`
}

// LoginRequest carries credentials for token issuance.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse returns the signed token and the account it identifies.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// CreateUserRequest creates an account.
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
	Status   string `json:"status"`
}

// UserResponse represents an account in API responses
type UserResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

func mapUserToResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		Status:    string(u.Status),
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

// SetStatusRequest toggles an account or catalog record status.
type SetStatusRequest struct {
	Estado string `json:"estado" binding:"required"`
}

// UpsertPartnerRequest creates or replaces a catalog record.
type UpsertPartnerRequest struct {
	Nombre string `json:"nombre" binding:"required"`
	Estado string `json:"estado" binding:"required"`
}
