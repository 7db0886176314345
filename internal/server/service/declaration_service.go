package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/duca-customs-backend/internal/domain/audit"
	"github.com/duca-customs-backend/internal/domain/declaration"
	"github.com/duca-customs-backend/internal/domain/partner"
	"github.com/duca-customs-backend/internal/domain/user"
	"github.com/duca-customs-backend/internal/platform/messaging/producers"
)

// DeclarationServiceImpl implements the DeclarationService interface
type DeclarationServiceImpl struct {
	declarationRepo declaration.Repository
	importerRepo    partner.Repository
	exporterRepo    partner.Repository
	recorder        audit.Recorder
	events          producers.MessagePublisher
	logger          *slog.Logger
}

// NewDeclarationService creates the declaration workflow engine.
func NewDeclarationService(
	logger *slog.Logger,
	declarationRepo declaration.Repository,
	importerRepo partner.Repository,
	exporterRepo partner.Repository,
	recorder audit.Recorder,
	events producers.MessagePublisher,
) DeclarationService {
	return &DeclarationServiceImpl{
		declarationRepo: declarationRepo,
		importerRepo:    importerRepo,
		exporterRepo:    exporterRepo,
		recorder:        recorder,
		events:          events,
		logger:          logger,
	}
}

// Create validates the payload, resolves catalog references, computes the
// customs total server-side, and persists the declaration with its line
// items atomically. The caller-supplied status and total are discarded.
func (s *DeclarationServiceImpl) Create(ctx context.Context, actor user.Identity, d *declaration.Declaration, meta audit.RequestMeta) (*declaration.Declaration, error) {
	if actor.Role != user.RoleTransportista {
		return nil, fmt.Errorf("only TRANSPORTISTA can create declarations: %w", ErrForbidden)
	}

	d.ID = uuid.New()
	d.OwnerUserID = actor.UserID
	d.Estado = declaration.StatusPendiente
	d.CreatedAt = time.Now()
	d.AgenteUserID = nil
	d.ComentarioAgente = nil
	d.ValidatedAt = nil

	// The invoice value may be derived from the line items when the
	// submitter leaves it out; every other component defaults to zero.
	if !d.Valores.ValorFactura.Valid {
		d.Valores.ValorFactura.Decimal = declaration.InvoiceValueFromItems(d.Items)
		d.Valores.ValorFactura.Valid = true
	}
	d.Valores.ValorAduanaTotal = declaration.ComputeCustomsTotal(d.Valores)

	if err := d.Validate(); err != nil {
		s.audit(ctx, actor, audit.ActionCreate, "", audit.ResultFallo, err.Error(), meta)
		return nil, err
	}

	importador, err := s.resolveActivePartner(ctx, s.importerRepo, partner.KindImporter, d.ImportadorID)
	if err != nil {
		s.audit(ctx, actor, audit.ActionCreate, "", audit.ResultFallo, err.Error(), meta)
		return nil, err
	}
	exportador, err := s.resolveActivePartner(ctx, s.exporterRepo, partner.KindExporter, d.ExportadorID)
	if err != nil {
		s.audit(ctx, actor, audit.ActionCreate, "", audit.ResultFallo, err.Error(), meta)
		return nil, err
	}

	// Catalog names are authoritative over whatever the client sent.
	d.ImportadorNombre = importador.Nombre
	d.ExportadorNombre = exportador.Nombre

	if err := s.declarationRepo.Create(ctx, d); err != nil {
		s.audit(ctx, actor, audit.ActionCreate, d.ID.String(), audit.ResultFallo, err.Error(), meta)
		return nil, err
	}

	s.audit(ctx, actor, audit.ActionCreate, d.ID.String(), audit.ResultExito, "Registro DUCA "+d.NumeroDocumento, meta)
	s.publishEvent(ctx, producers.EventDeclarationCreated, d.ID, d.NumeroDocumento, d.Estado, actor.UserID)

	return d, nil
}

// ListOwn returns the caller's declarations. The view is audited, including
// on failure, capturing the date filter as detail.
func (s *DeclarationServiceImpl) ListOwn(ctx context.Context, actor user.Identity, rng declaration.DateRange, meta audit.RequestMeta) ([]declaration.Summary, error) {
	if actor.Role != user.RoleTransportista {
		return nil, fmt.Errorf("only TRANSPORTISTA can view own declarations: %w", ErrForbidden)
	}

	summaries, err := s.declarationRepo.ListByOwner(ctx, actor.UserID, rng)
	if err != nil {
		s.audit(ctx, actor, audit.ActionView, "", audit.ResultFallo, err.Error(), meta)
		return nil, err
	}

	s.audit(ctx, actor, audit.ActionView, "", audit.ResultExito, rangeDetail(rng), meta)
	return summaries, nil
}

// ListPending returns the FIFO review queue for agents.
func (s *DeclarationServiceImpl) ListPending(ctx context.Context, actor user.Identity) ([]declaration.Summary, error) {
	if actor.Role != user.RoleAgente {
		return nil, fmt.Errorf("only AGENTE can view pending declarations: %w", ErrForbidden)
	}

	return s.declarationRepo.ListPending(ctx)
}

// Decide applies the agent's verdict through the repository's conditional
// update. The decision is audited with its outcome either way.
func (s *DeclarationServiceImpl) Decide(ctx context.Context, actor user.Identity, id uuid.UUID, estado declaration.Status, comentario *string, meta audit.RequestMeta) (string, error) {
	if actor.Role != user.RoleAgente {
		return "", fmt.Errorf("only AGENTE can decide declarations: %w", ErrForbidden)
	}
	if !estado.IsDecision() {
		return "", declaration.ValidationError{Reason: "decision must be VALIDADA or RECHAZADA"}
	}

	numeroDocumento, err := s.declarationRepo.ApplyDecision(ctx, id, declaration.Decision{
		Estado:     estado,
		AgenteID:   actor.UserID,
		Comentario: comentario,
	})
	if err != nil {
		s.auditValidate(ctx, actor, id.String(), audit.ResultFallo, "Decision="+string(estado)+": "+err.Error(), meta)
		return "", err
	}

	s.auditValidate(ctx, actor, id.String(), audit.ResultExito, "Decision="+string(estado), meta)
	s.publishEvent(ctx, producers.EventDeclarationDecided, id, numeroDocumento, estado, actor.UserID)

	return numeroDocumento, nil
}

// GetByID fetches one declaration with line items for any authenticated caller.
func (s *DeclarationServiceImpl) GetByID(ctx context.Context, actor user.Identity, id uuid.UUID) (*declaration.Declaration, error) {
	if !actor.Role.Valid() {
		return nil, ErrForbidden
	}
	return s.declarationRepo.GetByID(ctx, id)
}

// resolveActivePartner answers the catalog gate: the referenced partner must
// exist and be ACTIVO at this moment. Later deactivation does not
// retroactively invalidate the declaration.
func (s *DeclarationServiceImpl) resolveActivePartner(ctx context.Context, repo partner.Repository, kind partner.Kind, id string) (*partner.Partner, error) {
	p, err := repo.Get(ctx, id)
	if err != nil {
		var notFound partner.ErrPartnerNotFound
		if errors.As(err, &notFound) {
			return nil, declaration.InvalidReferenceError{Kind: string(kind), ID: id}
		}
		return nil, err
	}
	if !p.Active() {
		return nil, declaration.InvalidReferenceError{Kind: string(kind), ID: id}
	}
	return p, nil
}

func (s *DeclarationServiceImpl) audit(ctx context.Context, actor user.Identity, action audit.Action, entityID string, result audit.Result, details string, meta audit.RequestMeta) {
	s.recorder.Record(ctx, audit.Record{
		ActorID:   actor.UserID,
		Action:    action,
		Entity:    audit.EntityDeclaration,
		EntityID:  entityID,
		Operation: operationLabel(action),
		Result:    result,
		Details:   details,
		Request:   meta,
	})
}

func (s *DeclarationServiceImpl) auditValidate(ctx context.Context, actor user.Identity, entityID string, result audit.Result, details string, meta audit.RequestMeta) {
	s.recorder.Record(ctx, audit.Record{
		ActorID:   actor.UserID,
		Action:    audit.ActionValidate,
		Entity:    audit.EntityDeclaration,
		EntityID:  entityID,
		Operation: "Validacion DUCA",
		Result:    result,
		Details:   details,
		Request:   meta,
	})
}

// publishEvent writes a lifecycle event to the declaration topic. Failures
// are logged and swallowed; event delivery never gates the workflow.
func (s *DeclarationServiceImpl) publishEvent(ctx context.Context, kind string, id uuid.UUID, numeroDocumento string, estado declaration.Status, actorID uuid.UUID) {
	if s.events == nil {
		return
	}
	event := producers.DeclarationEvent{
		Kind:            kind,
		DeclarationID:   id,
		NumeroDocumento: numeroDocumento,
		Estado:          estado,
		ActorID:         actorID,
		Timestamp:       time.Now(),
	}
	if err := s.events.Publish(ctx, id.String(), event); err != nil {
		s.logger.Error("Failed to publish declaration event", "kind", kind, "declaration_id", id.String(), "error", err)
	}
}

func operationLabel(action audit.Action) string {
	if action == audit.ActionCreate {
		return "Registro Declaracion"
	}
	return "Consulta Declaraciones"
}

func rangeDetail(rng declaration.DateRange) string {
	if rng.Empty() {
		return ""
	}
	format := func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("2006-01-02")
	}
	return "Filtro: " + format(rng.FechaInicio) + " - " + format(rng.FechaFin)
}
