// Package user contains account entities, roles, and the per-request caller
// identity threaded through every workflow call.
package user

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Role defines the closed set of actor roles.
type Role string

const (
	RoleTransportista Role = "TRANSPORTISTA"
	RoleAgente        Role = "AGENTE"
	RoleAdmin         Role = "ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleTransportista, RoleAgente, RoleAdmin:
		return true
	}
	return false
}

// Status defines account states.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// Valid reports whether s is a known account status.
func (s Status) Valid() bool { return s == StatusActive || s == StatusInactive }

// Identity is the authenticated caller of a workflow operation, extracted
// from the bearer token on every request. It is passed explicitly; nothing
// reads it from ambient state.
type Identity struct {
	UserID uuid.UUID
	Role   Role
}

// Common errors
var (
	ErrEmptyName       = errors.New("name cannot be empty")
	ErrInvalidEmail    = errors.New("email is not valid")
	ErrWeakPassword    = errors.New("password must be at least 8 characters")
	ErrInvalidRole     = errors.New("role must be TRANSPORTISTA, AGENTE or ADMIN")
	ErrInvalidStatus   = errors.New("status must be ACTIVE or INACTIVE")
	ErrInvalidPassword = errors.New("invalid credentials")
)

const bcryptCost = 12

// User represents an account. The password is stored only as a bcrypt hash.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewUser creates an account with a freshly hashed password.
func NewUser(name, email, password string, role Role, status Status) (*User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return nil, ErrEmptyName
	}
	if !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	if len(password) < 8 {
		return nil, ErrWeakPassword
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if status == "" {
		status = StatusActive
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}

	return &User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Status:       status,
		CreatedAt:    time.Now(),
	}, nil
}

// CheckPassword verifies the candidate password against the stored hash.
func (u *User) CheckPassword(password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return ErrInvalidPassword
	}
	return nil
}
