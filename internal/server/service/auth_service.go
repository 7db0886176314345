package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/duca-customs-backend/internal/domain/audit"
	"github.com/duca-customs-backend/internal/domain/user"
	"github.com/duca-customs-backend/internal/platform/tokens"
)

// AuthServiceImpl implements the AuthService interface
type AuthServiceImpl struct {
	userRepo user.Repository
	tokens   *tokens.Manager
	recorder audit.Recorder
	logger   *slog.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(logger *slog.Logger, userRepo user.Repository, tm *tokens.Manager, recorder audit.Recorder) AuthService {
	return &AuthServiceImpl{
		userRepo: userRepo,
		tokens:   tm,
		recorder: recorder,
		logger:   logger,
	}
}

// Login verifies the credentials and issues a bearer token. Unknown email,
// wrong password and inactive account all collapse into
// ErrInvalidCredentials so the response leaks nothing.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string, meta audit.RequestMeta) (string, *user.User, error) {
	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if u == nil {
		s.auditLogin(ctx, uuid.Nil, audit.ResultFallo, "unknown email", meta)
		return "", nil, ErrInvalidCredentials
	}
	if u.Status != user.StatusActive {
		s.auditLogin(ctx, u.ID, audit.ResultFallo, "inactive account", meta)
		return "", nil, ErrInvalidCredentials
	}
	if err := u.CheckPassword(password); err != nil {
		s.auditLogin(ctx, u.ID, audit.ResultFallo, "wrong password", meta)
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		s.logger.Error("Failed to issue token", "user_id", u.ID.String(), "error", err)
		return "", nil, err
	}

	s.auditLogin(ctx, u.ID, audit.ResultExito, "", meta)
	return token, u, nil
}

func (s *AuthServiceImpl) auditLogin(ctx context.Context, actorID uuid.UUID, result audit.Result, details string, meta audit.RequestMeta) {
	s.recorder.Record(ctx, audit.Record{
		ActorID:   actorID,
		Action:    audit.ActionLogin,
		Entity:    audit.EntitySession,
		Operation: "Inicio de sesion",
		Result:    result,
		Details:   details,
		Request:   meta,
	})
}
