package service

import (
	"context"
	"log/slog"

	"github.com/duca-customs-backend/internal/domain/audit"
	"github.com/duca-customs-backend/internal/domain/partner"
	"github.com/duca-customs-backend/internal/domain/user"
)

// PartnerServiceImpl implements the PartnerService interface for one catalog.
type PartnerServiceImpl struct {
	repo     partner.Repository
	entity   audit.Entity
	recorder audit.Recorder
	logger   *slog.Logger
}

// NewImporterService creates the service managing the importer catalog.
func NewImporterService(logger *slog.Logger, repo partner.Repository, recorder audit.Recorder) PartnerService {
	return &PartnerServiceImpl{repo: repo, entity: audit.EntityImporter, recorder: recorder, logger: logger}
}

// NewExporterService creates the service managing the exporter catalog.
func NewExporterService(logger *slog.Logger, repo partner.Repository, recorder audit.Recorder) PartnerService {
	return &PartnerServiceImpl{repo: repo, entity: audit.EntityExporter, recorder: recorder, logger: logger}
}

// Upsert creates or replaces the catalog record identified by id.
func (s *PartnerServiceImpl) Upsert(ctx context.Context, actor user.Identity, id, nombre string, estado partner.Status, meta audit.RequestMeta) (*partner.Partner, error) {
	p, err := partner.New(id, nombre, estado)
	if err != nil {
		s.auditPartner(ctx, actor, audit.ActionUpdate, id, audit.ResultFallo, err.Error(), meta)
		return nil, err
	}

	if err := s.repo.Upsert(ctx, p); err != nil {
		s.auditPartner(ctx, actor, audit.ActionUpdate, id, audit.ResultFallo, err.Error(), meta)
		return nil, err
	}

	s.auditPartner(ctx, actor, audit.ActionUpdate, p.ID, audit.ResultExito, p.Nombre, meta)
	return p, nil
}

// List returns catalog records matching the filter.
func (s *PartnerServiceImpl) List(ctx context.Context, f partner.Filter) ([]partner.Partner, error) {
	return s.repo.List(ctx, f)
}

// SetStatus toggles a record's status. Declarations that already reference
// the partner are unaffected.
func (s *PartnerServiceImpl) SetStatus(ctx context.Context, actor user.Identity, id string, estado partner.Status, meta audit.RequestMeta) error {
	if !estado.Valid() {
		return partner.ErrInvalidPartner{Reason: "estado must be ACTIVO or INACTIVO"}
	}

	if err := s.repo.SetStatus(ctx, id, estado); err != nil {
		s.auditPartner(ctx, actor, audit.ActionUpdate, id, audit.ResultFallo, err.Error(), meta)
		return err
	}

	s.auditPartner(ctx, actor, audit.ActionUpdate, id, audit.ResultExito, "Estado="+string(estado), meta)
	return nil
}

func (s *PartnerServiceImpl) auditPartner(ctx context.Context, actor user.Identity, action audit.Action, entityID string, result audit.Result, details string, meta audit.RequestMeta) {
	s.recorder.Record(ctx, audit.Record{
		ActorID:   actor.UserID,
		Action:    action,
		Entity:    s.entity,
		EntityID:  entityID,
		Operation: "Gestion de catalogo",
		Result:    result,
		Details:   details,
		Request:   meta,
	})
}
