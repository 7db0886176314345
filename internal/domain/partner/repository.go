package partner

import "context"

// Filter narrows catalog listings. Query matches id or nombre,
// case-insensitively; Estado restricts by status when set.
type Filter struct {
	Query  string
	Estado Status
}

// Repository defines trade-partner persistence for one catalog (importers or
// exporters). The same interface backs both.
type Repository interface {
	// Upsert creates or fully replaces the record identified by p.ID.
	Upsert(ctx context.Context, p *Partner) error

	// Get retrieves a record by id. Returns ErrPartnerNotFound if missing.
	Get(ctx context.Context, id string) (*Partner, error)

	// List returns catalog records matching the filter, ordered by id.
	List(ctx context.Context, f Filter) ([]Partner, error)

	// SetStatus toggles the record's status.
	// Returns ErrPartnerNotFound if missing.
	SetStatus(ctx context.Context, id string, estado Status) error
}

// ErrPartnerNotFound indicates missing catalog record
type ErrPartnerNotFound struct {
	ID string
}

func (e ErrPartnerNotFound) Error() string { return "trade partner not found: " + e.ID }

// ErrInvalidPartner indicates a catalog payload that fails validation
type ErrInvalidPartner struct {
	Reason string
}

func (e ErrInvalidPartner) Error() string { return e.Reason }
