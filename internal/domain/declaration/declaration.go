// Package declaration contains the DUCA declaration entity, its lifecycle
// states, and the business rules enforced when a carrier submits one.
package declaration

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status defines the lifecycle states of a declaration.
type Status string

const (
	StatusPendiente  Status = "PENDIENTE"
	StatusConfirmado Status = "CONFIRMADO"
	StatusValidada   Status = "VALIDADA"
	StatusRechazada  Status = "RECHAZADA"
	// StatusEnRevision is a known status value with no producing transition
	// in this service. It appears on read paths only.
	StatusEnRevision Status = "EN REVISION"
)

// IsDecision reports whether s is a terminal state an agent may assign.
func (s Status) IsDecision() bool {
	return s == StatusValidada || s == StatusRechazada
}

// OperationType defines the customs operation kinds.
type OperationType string

const (
	OperationImportacion OperationType = "IMPORTACION"
	OperationExportacion OperationType = "EXPORTACION"
	OperationTransito    OperationType = "TRANSITO"
)

// Valid reports whether t is one of the known operation types.
func (t OperationType) Valid() bool {
	switch t {
	case OperationImportacion, OperationExportacion, OperationTransito:
		return true
	}
	return false
}

// TransportMode defines the transport media accepted on a declaration.
type TransportMode string

const (
	TransportTerrestre TransportMode = "TERRESTRE"
	TransportMaritimo  TransportMode = "MARITIMO"
	TransportAereo     TransportMode = "AEREO"
)

// unitsOfMeasure is the closed set of cargo units accepted on line items.
var unitsOfMeasure = map[string]struct{}{
	"KG": {}, "LBS": {}, "TON": {},
	"L": {}, "ML": {}, "GAL": {},
	"M": {}, "CM": {}, "M2": {}, "M3": {},
	"PZA": {}, "UNI": {}, "PAR": {},
}

// ValidUnit reports whether u belongs to the fixed unit-of-measure set.
func ValidUnit(u string) bool {
	_, ok := unitsOfMeasure[strings.ToUpper(strings.TrimSpace(u))]
	return ok
}

// MaxItemDescriptionLen bounds the description of a cargo line item.
const MaxItemDescriptionLen = 250

// Item is a cargo line item, exclusively owned by its parent declaration and
// created atomically with it.
type Item struct {
	Linea         int             `json:"linea"`
	Descripcion   string          `json:"descripcion"`
	Cantidad      decimal.Decimal `json:"cantidad"`
	UnidadMedida  string          `json:"unidadMedida"`
	ValorUnitario decimal.Decimal `json:"valorUnitario"`
	PaisOrigen    string          `json:"paisOrigen"`
}

// Complete reports whether the item carries description, positive quantity,
// and positive unit value. At least one complete item is required per
// declaration.
func (i Item) Complete() bool {
	return strings.TrimSpace(i.Descripcion) != "" &&
		i.Cantidad.IsPositive() &&
		i.ValorUnitario.IsPositive()
}

// Conductor holds optional driver details.
type Conductor struct {
	Nombre       string `json:"nombreConductor,omitempty"`
	Licencia     string `json:"licenciaConductor,omitempty"`
	PaisLicencia string `json:"paisLicencia,omitempty"`
}

// Ruta holds the customs route of the transport leg.
type Ruta struct {
	AduanaSalida    string   `json:"aduanaSalida"`
	AduanaEntrada   string   `json:"aduanaEntrada"`
	PaisDestino     string   `json:"paisDestino"`
	KilometrosAprox *float64 `json:"kilometrosAproximados,omitempty"`
}

// Selectividad is the optional selectivity result attached to a declaration.
type Selectividad struct {
	Codigo      string `json:"codigo,omitempty"`
	Descripcion string `json:"descripcion,omitempty"`
}

// Valores groups the monetary components of a declaration. The four inputs
// are optional; the customs total is always computed server-side.
type Valores struct {
	ValorFactura     decimal.NullDecimal
	GastosTransporte decimal.NullDecimal
	Seguro           decimal.NullDecimal
	OtrosGastos      decimal.NullDecimal
	ValorAduanaTotal decimal.Decimal
	Moneda           string
}

// Declaration is the central DUCA document. Once created its monetary
// components are immutable; the only state transition is
// PENDIENTE -> VALIDADA|RECHAZADA performed by an agent.
type Declaration struct {
	ID               uuid.UUID
	NumeroDocumento  string
	PaisEmisor       string
	TipoOperacion    OperationType
	FechaEmision     time.Time
	MedioTransporte  TransportMode
	PlacaVehiculo    string
	Conductor        *Conductor
	Ruta             Ruta
	ImportadorID     string
	ImportadorNombre string
	ExportadorID     string
	ExportadorNombre string
	Valores          Valores
	Selectividad     *Selectividad
	FirmaElectronica string
	Estado           Status
	OwnerUserID      uuid.UUID
	AgenteUserID     *uuid.UUID
	ComentarioAgente *string
	Items            []Item
	CreatedAt        time.Time
	ValidatedAt      *time.Time
}

// Summary is the row shape returned by the list endpoints.
type Summary struct {
	ID               uuid.UUID       `json:"id"`
	NumeroDocumento  string          `json:"numero_documento"`
	Estado           Status          `json:"estado"`
	FechaEmision     time.Time       `json:"fecha_emision"`
	PaisEmisor       string          `json:"pais_emisor"`
	TipoOperacion    OperationType   `json:"tipo_operacion"`
	MedioTransporte  TransportMode   `json:"medio_transporte"`
	ExportadorNombre string          `json:"exportador_nombre"`
	ImportadorNombre string          `json:"importador_nombre"`
	Moneda           string          `json:"moneda"`
	ValorAduanaTotal decimal.Decimal `json:"valor_aduana_total"`
	CreatedAt        time.Time       `json:"created_at"`
}

// DateRange bounds a list query by issue date. Either side may be nil;
// both bounds are inclusive.
type DateRange struct {
	FechaInicio *time.Time
	FechaFin    *time.Time
}

// Empty reports whether no bound is set.
func (r DateRange) Empty() bool { return r.FechaInicio == nil && r.FechaFin == nil }

// orZero unwraps a nullable component, treating absence as zero.
func orZero(d decimal.NullDecimal) decimal.Decimal {
	if d.Valid {
		return d.Decimal
	}
	return decimal.Zero
}

// InvoiceValueFromItems derives the invoice value as the sum of
// cantidad * valorUnitario over all line items, rounded to two decimals.
// Used when the submitter does not supply valor_factura explicitly.
func InvoiceValueFromItems(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Cantidad.Mul(it.ValorUnitario))
	}
	return total.Round(2)
}

// ComputeCustomsTotal sums the four monetary components, treating absent
// ones as zero, to two-decimal precision. The result is authoritative:
// whatever total the caller sent is discarded.
func ComputeCustomsTotal(v Valores) decimal.Decimal {
	return orZero(v.ValorFactura).
		Add(orZero(v.GastosTransporte)).
		Add(orZero(v.Seguro)).
		Add(orZero(v.OtrosGastos)).
		Round(2)
}

// Validate checks the business rules a declaration must satisfy at
// submission time. Reference checks against the partner catalog are the
// workflow's responsibility, not the entity's.
func (d *Declaration) Validate() error {
	if d.FechaEmision.IsZero() {
		return ValidationError{Reason: "fecha de emision is required"}
	}
	if strings.TrimSpace(d.NumeroDocumento) == "" {
		return ValidationError{Reason: "numero de documento is required"}
	}
	if !d.TipoOperacion.Valid() {
		return ValidationError{Reason: "tipo de operacion must be IMPORTACION, EXPORTACION or TRANSITO"}
	}
	if len(d.Items) == 0 {
		return ValidationError{Reason: "at least one cargo item is required"}
	}

	hasComplete := false
	lineas := make(map[int]struct{}, len(d.Items))
	for _, it := range d.Items {
		if it.Linea <= 0 {
			return ValidationError{Reason: "item linea must be greater than 0"}
		}
		if _, dup := lineas[it.Linea]; dup {
			return ValidationError{Reason: "item linea values must be unique"}
		}
		lineas[it.Linea] = struct{}{}
		if len(it.Descripcion) > MaxItemDescriptionLen {
			return ValidationError{Reason: "item description exceeds maximum length"}
		}
		if !it.Cantidad.IsPositive() {
			return ValidationError{Reason: "item quantity must be greater than 0"}
		}
		if it.ValorUnitario.IsNegative() {
			return ValidationError{Reason: "item unit value must not be negative"}
		}
		if !ValidUnit(it.UnidadMedida) {
			return ValidationError{Reason: "item unit of measure is not in the accepted set"}
		}
		if it.Complete() {
			hasComplete = true
		}
	}
	if !hasComplete {
		return ValidationError{Reason: "at least one item must have description, positive quantity and positive unit value"}
	}

	if !d.Valores.ValorAduanaTotal.IsPositive() {
		return ValidationError{Reason: "valor aduana total must be greater than 0"}
	}
	return nil
}
