package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/duca-customs-backend/internal/domain/audit"
	"github.com/duca-customs-backend/internal/domain/declaration"
	"github.com/duca-customs-backend/internal/domain/partner"
	"github.com/duca-customs-backend/internal/domain/user"
)

// ErrForbidden indicates a caller whose role does not permit the operation.
var ErrForbidden = errors.New("role not permitted for this operation")

// ErrInvalidCredentials indicates a failed login: unknown email, wrong
// password, or an inactive account. Deliberately indistinct.
var ErrInvalidCredentials = errors.New("invalid credentials")

// DeclarationService is the declaration workflow engine. It enforces who may
// create, view, and transition declarations, and guarantees monetary and
// reference consistency at creation. Every method takes the authenticated
// caller explicitly; nothing reads identity from ambient state.
type DeclarationService interface {
	// Create validates and persists a new declaration in PENDIENTE for a
	// TRANSPORTISTA caller. The customs total is computed server-side.
	Create(ctx context.Context, actor user.Identity, d *declaration.Declaration, meta audit.RequestMeta) (*declaration.Declaration, error)

	// ListOwn returns the caller's declarations, newest first, optionally
	// bounded by an inclusive issue-date range. TRANSPORTISTA only.
	ListOwn(ctx context.Context, actor user.Identity, rng declaration.DateRange, meta audit.RequestMeta) ([]declaration.Summary, error)

	// ListPending returns the FIFO review queue of PENDIENTE declarations,
	// oldest first. AGENTE only.
	ListPending(ctx context.Context, actor user.Identity) ([]declaration.Summary, error)

	// Decide applies VALIDADA or RECHAZADA to a PENDIENTE declaration.
	// AGENTE only. Returns the numero_documento of the declaration.
	Decide(ctx context.Context, actor user.Identity, id uuid.UUID, estado declaration.Status, comentario *string, meta audit.RequestMeta) (string, error)

	// GetByID fetches one declaration with its line items. Any
	// authenticated caller.
	GetByID(ctx context.Context, actor user.Identity, id uuid.UUID) (*declaration.Declaration, error)
}

// AuthService verifies credentials and issues bearer tokens.
type AuthService interface {
	// Login returns a signed token for an ACTIVE account with matching
	// credentials, or ErrInvalidCredentials.
	Login(ctx context.Context, email, password string, meta audit.RequestMeta) (string, *user.User, error)
}

// UserService manages accounts. Role gating (ADMIN) happens at the router.
type UserService interface {
	CreateUser(ctx context.Context, actor user.Identity, name, email, password string, role user.Role, status user.Status, meta audit.RequestMeta) (*user.User, error)
	ListUsers(ctx context.Context) ([]user.User, error)
	SetUserStatus(ctx context.Context, actor user.Identity, id uuid.UUID, status user.Status, meta audit.RequestMeta) error
	DeleteUser(ctx context.Context, actor user.Identity, id uuid.UUID, meta audit.RequestMeta) error
}

// AuditService exposes the append-only audit trail to operators. Reads only;
// records are written through the Recorder.
type AuditService interface {
	ListByActor(ctx context.Context, actorID uuid.UUID, limit, offset int) ([]audit.Record, error)
}

// PartnerService manages one trade-partner catalog. Two instances serve the
// importer and exporter catalogs.
type PartnerService interface {
	Upsert(ctx context.Context, actor user.Identity, id, nombre string, estado partner.Status, meta audit.RequestMeta) (*partner.Partner, error)
	List(ctx context.Context, f partner.Filter) ([]partner.Partner, error)
	SetStatus(ctx context.Context, actor user.Identity, id string, estado partner.Status, meta audit.RequestMeta) error
}
