// Package postgres provides PostgreSQL implementations of the domain repositories.
// It handles all database operations while maintaining transaction safety and
// proper error handling for the customs declaration workflow.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/duca-customs-backend/internal/domain/declaration"
	"github.com/duca-customs-backend/internal/platform/persistence"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint breach.
const uniqueViolation = "23505"

// TxQuerier extends the shared querier with the ability to open transactions.
// Satisfied by *pgxpool.Pool and by pgxmock pools in tests.
type TxQuerier interface {
	persistence.Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// DeclarationRepository implements the declaration.Repository interface for PostgreSQL
type DeclarationRepository struct {
	querier TxQuerier
	logger  *slog.Logger
}

// NewDeclarationRepository creates a new PostgreSQL declaration repository.
func NewDeclarationRepository(logger *slog.Logger, db *persistence.PostgresDB) declaration.Repository {
	return &DeclarationRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

const declarationColumns = `
	id, numero_documento, pais_emisor, tipo_operacion, fecha_emision,
	medio_transporte, placa_vehiculo,
	nombre_conductor, licencia_conductor, pais_licencia,
	aduana_salida, aduana_entrada, pais_destino, kilometros_aproximados,
	importador_id, importador_nombre, exportador_id, exportador_nombre,
	moneda, valor_factura, gastos_transporte, seguro, otros_gastos, valor_aduana_total,
	selectividad_codigo, selectividad_descripcion, firma_electronica,
	estado, owner_user_id, agente_user_id, comentario_agente,
	created_at, validated_at`

// Create persists the declaration and its line items in a single transaction.
// A numero_documento collision rolls back the whole write and surfaces as
// ErrDuplicateDocumentNumber.
func (r *DeclarationRepository) Create(ctx context.Context, d *declaration.Declaration) error {
	tx, err := r.querier.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin declaration transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO declarations (
			id, numero_documento, pais_emisor, tipo_operacion, fecha_emision,
			medio_transporte, placa_vehiculo,
			nombre_conductor, licencia_conductor, pais_licencia,
			aduana_salida, aduana_entrada, pais_destino, kilometros_aproximados,
			importador_id, importador_nombre, exportador_id, exportador_nombre,
			moneda, valor_factura, gastos_transporte, seguro, otros_gastos, valor_aduana_total,
			selectividad_codigo, selectividad_descripcion, firma_electronica,
			estado, owner_user_id, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30)
	`

	var conductorNombre, conductorLicencia, conductorPais *string
	if d.Conductor != nil {
		conductorNombre = nilIfEmpty(d.Conductor.Nombre)
		conductorLicencia = nilIfEmpty(d.Conductor.Licencia)
		conductorPais = nilIfEmpty(d.Conductor.PaisLicencia)
	}
	var selCodigo, selDescripcion *string
	if d.Selectividad != nil {
		selCodigo = nilIfEmpty(d.Selectividad.Codigo)
		selDescripcion = nilIfEmpty(d.Selectividad.Descripcion)
	}

	_, err = tx.Exec(ctx, query,
		d.ID,
		d.NumeroDocumento,
		d.PaisEmisor,
		d.TipoOperacion,
		d.FechaEmision,
		d.MedioTransporte,
		nilIfEmpty(d.PlacaVehiculo),
		conductorNombre,
		conductorLicencia,
		conductorPais,
		nilIfEmpty(d.Ruta.AduanaSalida),
		nilIfEmpty(d.Ruta.AduanaEntrada),
		nilIfEmpty(d.Ruta.PaisDestino),
		d.Ruta.KilometrosAprox,
		d.ImportadorID,
		d.ImportadorNombre,
		d.ExportadorID,
		d.ExportadorNombre,
		d.Valores.Moneda,
		d.Valores.ValorFactura,
		d.Valores.GastosTransporte,
		d.Valores.Seguro,
		d.Valores.OtrosGastos,
		d.Valores.ValorAduanaTotal,
		selCodigo,
		selDescripcion,
		nilIfEmpty(d.FirmaElectronica),
		d.Estado,
		d.OwnerUserID,
		d.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return declaration.ErrDuplicateDocumentNumber{NumeroDocumento: d.NumeroDocumento}
		}
		r.logger.Error("Failed to insert declaration", "numero_documento", d.NumeroDocumento, "error", err)
		return fmt.Errorf("failed to insert declaration: %w", err)
	}

	itemQuery := `
		INSERT INTO declaration_items (declaration_id, linea, descripcion, cantidad, unidad_medida, valor_unitario, pais_origen)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, it := range d.Items {
		if _, err := tx.Exec(ctx, itemQuery,
			d.ID, it.Linea, it.Descripcion, it.Cantidad, it.UnidadMedida, it.ValorUnitario, it.PaisOrigen,
		); err != nil {
			r.logger.Error("Failed to insert declaration item", "declaration_id", d.ID.String(), "linea", it.Linea, "error", err)
			return fmt.Errorf("failed to insert declaration item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit declaration transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a declaration with its line items ordered by linea.
func (r *DeclarationRepository) GetByID(ctx context.Context, id uuid.UUID) (*declaration.Declaration, error) {
	query := `SELECT ` + declarationColumns + ` FROM declarations WHERE id = $1`

	d, err := scanDeclaration(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, declaration.ErrDeclarationNotFound{ID: id}
		}
		r.logger.Error("Failed to get declaration", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get declaration: %w", err)
	}

	itemQuery := `
		SELECT linea, descripcion, cantidad, unidad_medida, valor_unitario, pais_origen
		FROM declaration_items
		WHERE declaration_id = $1
		ORDER BY linea
	`
	rows, err := r.querier.Query(ctx, itemQuery, id)
	if err != nil {
		r.logger.Error("Failed to get declaration items", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get declaration items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it declaration.Item
		if err := rows.Scan(&it.Linea, &it.Descripcion, &it.Cantidad, &it.UnidadMedida, &it.ValorUnitario, &it.PaisOrigen); err != nil {
			return nil, fmt.Errorf("failed to scan declaration item: %w", err)
		}
		d.Items = append(d.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read declaration items: %w", err)
	}

	return d, nil
}

// ListByOwner returns the owner's declarations newest first, optionally
// bounded by an inclusive issue-date range.
func (r *DeclarationRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, rng declaration.DateRange) ([]declaration.Summary, error) {
	query := `
		SELECT id, numero_documento, estado, fecha_emision, pais_emisor, tipo_operacion,
		       medio_transporte, exportador_nombre, importador_nombre, moneda, valor_aduana_total, created_at
		FROM declarations
		WHERE owner_user_id = $1`

	args := []interface{}{ownerID}
	switch {
	case rng.FechaInicio != nil && rng.FechaFin != nil:
		query += ` AND fecha_emision BETWEEN $2 AND $3`
		args = append(args, *rng.FechaInicio, *rng.FechaFin)
	case rng.FechaInicio != nil:
		query += ` AND fecha_emision >= $2`
		args = append(args, *rng.FechaInicio)
	case rng.FechaFin != nil:
		query += ` AND fecha_emision <= $2`
		args = append(args, *rng.FechaFin)
	}
	query += ` ORDER BY created_at DESC`

	return r.listSummaries(ctx, query, args...)
}

// ListPending returns all PENDIENTE declarations oldest first, the review
// queue order agents work through.
func (r *DeclarationRepository) ListPending(ctx context.Context) ([]declaration.Summary, error) {
	query := `
		SELECT id, numero_documento, estado, fecha_emision, pais_emisor, tipo_operacion,
		       medio_transporte, exportador_nombre, importador_nombre, moneda, valor_aduana_total, created_at
		FROM declarations
		WHERE estado = 'PENDIENTE'
		ORDER BY created_at ASC`

	return r.listSummaries(ctx, query)
}

// ApplyDecision moves a PENDIENTE declaration to its terminal state using a
// single conditional update. The WHERE clause is the concurrency guard: two
// racing decisions on the same declaration cannot both match.
func (r *DeclarationRepository) ApplyDecision(ctx context.Context, id uuid.UUID, dec declaration.Decision) (string, error) {
	query := `
		UPDATE declarations
		SET estado = $1, agente_user_id = $2, comentario_agente = $3, validated_at = NOW()
		WHERE id = $4 AND estado = 'PENDIENTE'
		RETURNING numero_documento
	`

	var numeroDocumento string
	err := r.querier.QueryRow(ctx, query, dec.Estado, dec.AgenteID, dec.Comentario, id).Scan(&numeroDocumento)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", declaration.ErrNotFoundOrProcessed{ID: id}
		}
		r.logger.Error("Failed to apply decision", "id", id.String(), "error", err)
		return "", fmt.Errorf("failed to apply decision: %w", err)
	}

	return numeroDocumento, nil
}

func (r *DeclarationRepository) listSummaries(ctx context.Context, query string, args ...interface{}) ([]declaration.Summary, error) {
	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list declarations", "error", err)
		return nil, fmt.Errorf("failed to list declarations: %w", err)
	}
	defer rows.Close()

	summaries := []declaration.Summary{}
	for rows.Next() {
		var s declaration.Summary
		if err := rows.Scan(
			&s.ID, &s.NumeroDocumento, &s.Estado, &s.FechaEmision, &s.PaisEmisor, &s.TipoOperacion,
			&s.MedioTransporte, &s.ExportadorNombre, &s.ImportadorNombre, &s.Moneda, &s.ValorAduanaTotal, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan declaration summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read declaration summaries: %w", err)
	}

	return summaries, nil
}

// scanDeclaration reads one full declaration row, reassembling the optional
// driver, route and selectivity groups.
func scanDeclaration(row pgx.Row) (*declaration.Declaration, error) {
	var d declaration.Declaration
	var placaVehiculo, conductorNombre, conductorLicencia, conductorPais *string
	var aduanaSalida, aduanaEntrada, paisDestino *string
	var selCodigo, selDescripcion, firma, comentario *string

	err := row.Scan(
		&d.ID, &d.NumeroDocumento, &d.PaisEmisor, &d.TipoOperacion, &d.FechaEmision,
		&d.MedioTransporte, &placaVehiculo,
		&conductorNombre, &conductorLicencia, &conductorPais,
		&aduanaSalida, &aduanaEntrada, &paisDestino, &d.Ruta.KilometrosAprox,
		&d.ImportadorID, &d.ImportadorNombre, &d.ExportadorID, &d.ExportadorNombre,
		&d.Valores.Moneda, &d.Valores.ValorFactura, &d.Valores.GastosTransporte,
		&d.Valores.Seguro, &d.Valores.OtrosGastos, &d.Valores.ValorAduanaTotal,
		&selCodigo, &selDescripcion, &firma,
		&d.Estado, &d.OwnerUserID, &d.AgenteUserID, &comentario,
		&d.CreatedAt, &d.ValidatedAt,
	)
	if err != nil {
		return nil, err
	}

	d.PlacaVehiculo = deref(placaVehiculo)
	d.Ruta.AduanaSalida = deref(aduanaSalida)
	d.Ruta.AduanaEntrada = deref(aduanaEntrada)
	d.Ruta.PaisDestino = deref(paisDestino)
	d.FirmaElectronica = deref(firma)
	d.ComentarioAgente = comentario

	if conductorNombre != nil || conductorLicencia != nil || conductorPais != nil {
		d.Conductor = &declaration.Conductor{
			Nombre:       deref(conductorNombre),
			Licencia:     deref(conductorLicencia),
			PaisLicencia: deref(conductorPais),
		}
	}
	if selCodigo != nil || selDescripcion != nil {
		d.Selectividad = &declaration.Selectividad{
			Codigo:      deref(selCodigo),
			Descripcion: deref(selDescripcion),
		}
	}

	return &d, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
