// Package tokens issues and verifies the bearer identity tokens that carry
// subject id and role between the client and the API.
package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/duca-customs-backend/internal/domain/user"
)

// ErrInvalidToken indicates a token that failed verification.
var ErrInvalidToken = errors.New("token invalid or expired")

// Claims are the custom claims embedded in every access token.
type Claims struct {
	Role user.Role `json:"role"`
	jwt.RegisteredClaims
}

// Manager signs and verifies tokens with an HMAC secret.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager creates a token manager.
func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for the given account.
func (m *Manager) Issue(u *user.User) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses the token and extracts the caller identity.
func (m *Manager) Verify(tokenStr string) (user.Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return user.Identity{}, ErrInvalidToken
	}

	subjectID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return user.Identity{}, ErrInvalidToken
	}
	if !claims.Role.Valid() {
		return user.Identity{}, ErrInvalidToken
	}

	return user.Identity{UserID: subjectID, Role: claims.Role}, nil
}
