package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/duca-customs-backend/internal/domain/partner"
	"github.com/duca-customs-backend/internal/platform/persistence"
)

// PartnerRepository implements partner.Repository for PostgreSQL. One
// instance serves one catalog table; importers and exporters get separate
// instances over the same implementation.
type PartnerRepository struct {
	querier persistence.Querier
	table   string
	logger  *slog.Logger
}

// NewImporterRepository creates the repository backing the importer catalog.
func NewImporterRepository(logger *slog.Logger, db *persistence.PostgresDB) partner.Repository {
	return &PartnerRepository{querier: db.Pool(), table: "importers", logger: logger}
}

// NewExporterRepository creates the repository backing the exporter catalog.
func NewExporterRepository(logger *slog.Logger, db *persistence.PostgresDB) partner.Repository {
	return &PartnerRepository{querier: db.Pool(), table: "exporters", logger: logger}
}

// Upsert creates or replaces the record identified by p.ID. The id is the
// externally assigned primary key, so the operation is idempotent.
func (r *PartnerRepository) Upsert(ctx context.Context, p *partner.Partner) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, nombre, estado, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET nombre = EXCLUDED.nombre, estado = EXCLUDED.estado
	`, r.table)

	_, err := r.querier.Exec(ctx, query, p.ID, p.Nombre, p.Estado, p.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to upsert trade partner", "table", r.table, "id", p.ID, "error", err)
		return fmt.Errorf("failed to upsert trade partner: %w", err)
	}

	return nil
}

// Get retrieves a catalog record by id.
func (r *PartnerRepository) Get(ctx context.Context, id string) (*partner.Partner, error) {
	query := fmt.Sprintf(`SELECT id, nombre, estado, created_at FROM %s WHERE id = $1`, r.table)

	var p partner.Partner
	err := r.querier.QueryRow(ctx, query, id).Scan(&p.ID, &p.Nombre, &p.Estado, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, partner.ErrPartnerNotFound{ID: id}
		}
		r.logger.Error("Failed to get trade partner", "table", r.table, "id", id, "error", err)
		return nil, fmt.Errorf("failed to get trade partner: %w", err)
	}

	return &p, nil
}

// List returns catalog records matching the filter, ordered by id.
func (r *PartnerRepository) List(ctx context.Context, f partner.Filter) ([]partner.Partner, error) {
	query := fmt.Sprintf(`SELECT id, nombre, estado, created_at FROM %s`, r.table)

	var args []interface{}
	var conditions []string
	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		conditions = append(conditions, fmt.Sprintf("(id ILIKE $%d OR nombre ILIKE $%d)", len(args), len(args)))
	}
	if f.Estado != "" {
		args = append(args, f.Estado)
		conditions = append(conditions, fmt.Sprintf("estado = $%d", len(args)))
	}
	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY id"

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list trade partners", "table", r.table, "error", err)
		return nil, fmt.Errorf("failed to list trade partners: %w", err)
	}
	defer rows.Close()

	partners := []partner.Partner{}
	for rows.Next() {
		var p partner.Partner
		if err := rows.Scan(&p.ID, &p.Nombre, &p.Estado, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan trade partner: %w", err)
		}
		partners = append(partners, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trade partners: %w", err)
	}

	return partners, nil
}

// SetStatus toggles the record's status. Declarations already referencing
// the partner keep their point-in-time validity.
func (r *PartnerRepository) SetStatus(ctx context.Context, id string, estado partner.Status) error {
	query := fmt.Sprintf(`UPDATE %s SET estado = $1 WHERE id = $2`, r.table)

	result, err := r.querier.Exec(ctx, query, estado, id)
	if err != nil {
		r.logger.Error("Failed to update trade partner status", "table", r.table, "id", id, "error", err)
		return fmt.Errorf("failed to update trade partner status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return partner.ErrPartnerNotFound{ID: id}
	}

	return nil
}
