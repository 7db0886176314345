package user

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines account persistence operations
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// GetByEmail returns nil, nil when no account matches.
	GetByEmail(ctx context.Context, email string) (*User, error)

	List(ctx context.Context) ([]User, error)

	// SetStatus toggles the account's status.
	SetStatus(ctx context.Context, id uuid.UUID, status Status) error

	// Delete removes the account permanently.
	Delete(ctx context.Context, id uuid.UUID) error
}

// ErrUserNotFound indicates missing account
type ErrUserNotFound struct {
	ID uuid.UUID
}

func (e ErrUserNotFound) Error() string {
	return "user not found: " + e.ID.String()
}

// ErrDuplicateEmail indicates email uniqueness violation
type ErrDuplicateEmail struct {
	Email string
}

func (e ErrDuplicateEmail) Error() string {
	return "user with email already exists: " + e.Email
}
