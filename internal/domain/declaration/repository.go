package declaration

import (
	"context"

	"github.com/google/uuid"
)

// Decision carries the agent's verdict applied to a pending declaration.
type Decision struct {
	Estado     Status // VALIDADA or RECHAZADA
	AgenteID   uuid.UUID
	Comentario *string
}

// Repository defines declaration persistence operations
type Repository interface {
	// Create persists the declaration and its line items as one atomic unit.
	// Returns ErrDuplicateDocumentNumber on a numero_documento collision,
	// with no partial write.
	Create(ctx context.Context, d *Declaration) error

	// GetByID retrieves a declaration with its ordered line items.
	// Returns ErrDeclarationNotFound if no row matches.
	GetByID(ctx context.Context, id uuid.UUID) (*Declaration, error)

	// ListByOwner returns the owner's declarations, optionally bounded by an
	// inclusive issue-date range, newest created first.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, rng DateRange) ([]Summary, error)

	// ListPending returns all PENDIENTE declarations, oldest created first.
	ListPending(ctx context.Context) ([]Summary, error)

	// ApplyDecision performs the atomic conditional transition
	// PENDIENTE -> VALIDADA|RECHAZADA, stamping agent id, optional comment
	// and validation timestamp. The guard is a single conditional update;
	// zero affected rows yields ErrNotFoundOrProcessed, which covers both a
	// missing id and a declaration already decided.
	// Returns the numero_documento of the transitioned declaration.
	ApplyDecision(ctx context.Context, id uuid.UUID, dec Decision) (string, error)
}

// ValidationError indicates a submission that breaks a business rule.
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string { return e.Reason }

// InvalidReferenceError indicates an importer or exporter reference that is
// unknown or not ACTIVO at submission time.
type InvalidReferenceError struct {
	Kind string // "importador" or "exportador"
	ID   string
}

func (e InvalidReferenceError) Error() string {
	return e.Kind + " not found or not ACTIVO: " + e.ID
}

// ErrDuplicateDocumentNumber indicates numero_documento uniqueness violation
type ErrDuplicateDocumentNumber struct {
	NumeroDocumento string
}

func (e ErrDuplicateDocumentNumber) Error() string {
	return "declaration with numero_documento already exists: " + e.NumeroDocumento
}

// ErrDeclarationNotFound indicates missing declaration
type ErrDeclarationNotFound struct {
	ID uuid.UUID
}

func (e ErrDeclarationNotFound) Error() string {
	return "declaration not found: " + e.ID.String()
}

// ErrNotFoundOrProcessed indicates a decision attempted against an id that
// does not exist or a declaration no longer PENDIENTE. The two causes are
// deliberately indistinguishable at this boundary.
type ErrNotFoundOrProcessed struct {
	ID uuid.UUID
}

func (e ErrNotFoundOrProcessed) Error() string {
	return "declaration not found or already processed: " + e.ID.String()
}
