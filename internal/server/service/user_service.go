package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/duca-customs-backend/internal/domain/audit"
	"github.com/duca-customs-backend/internal/domain/user"
)

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userRepo user.Repository
	recorder audit.Recorder
	logger   *slog.Logger
}

// NewUserService creates a new user management service
func NewUserService(logger *slog.Logger, userRepo user.Repository, recorder audit.Recorder) UserService {
	return &UserServiceImpl{
		userRepo: userRepo,
		recorder: recorder,
		logger:   logger,
	}
}

// CreateUser creates an account with a hashed password.
func (s *UserServiceImpl) CreateUser(ctx context.Context, actor user.Identity, name, email, password string, role user.Role, status user.Status, meta audit.RequestMeta) (*user.User, error) {
	u, err := user.NewUser(name, email, password, role, status)
	if err != nil {
		s.auditUser(ctx, actor, audit.ActionCreate, "", audit.ResultFallo, err.Error(), meta)
		return nil, err
	}

	if err := s.userRepo.Create(ctx, u); err != nil {
		s.auditUser(ctx, actor, audit.ActionCreate, "", audit.ResultFallo, err.Error(), meta)
		return nil, err
	}

	s.auditUser(ctx, actor, audit.ActionCreate, u.ID.String(), audit.ResultExito, "Usuario "+u.Email, meta)
	return u, nil
}

// ListUsers returns all accounts.
func (s *UserServiceImpl) ListUsers(ctx context.Context) ([]user.User, error) {
	return s.userRepo.List(ctx)
}

// SetUserStatus toggles an account's status.
func (s *UserServiceImpl) SetUserStatus(ctx context.Context, actor user.Identity, id uuid.UUID, status user.Status, meta audit.RequestMeta) error {
	if !status.Valid() {
		return user.ErrInvalidStatus
	}

	if err := s.userRepo.SetStatus(ctx, id, status); err != nil {
		s.auditUser(ctx, actor, audit.ActionUpdate, id.String(), audit.ResultFallo, err.Error(), meta)
		return err
	}

	s.auditUser(ctx, actor, audit.ActionUpdate, id.String(), audit.ResultExito, "Status="+string(status), meta)
	return nil
}

// DeleteUser removes an account permanently.
func (s *UserServiceImpl) DeleteUser(ctx context.Context, actor user.Identity, id uuid.UUID, meta audit.RequestMeta) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		s.auditUser(ctx, actor, audit.ActionDelete, id.String(), audit.ResultFallo, err.Error(), meta)
		return err
	}

	s.auditUser(ctx, actor, audit.ActionDelete, id.String(), audit.ResultExito, "", meta)
	return nil
}

func (s *UserServiceImpl) auditUser(ctx context.Context, actor user.Identity, action audit.Action, entityID string, result audit.Result, details string, meta audit.RequestMeta) {
	s.recorder.Record(ctx, audit.Record{
		ActorID:   actor.UserID,
		Action:    action,
		Entity:    audit.EntityUser,
		EntityID:  entityID,
		Operation: "Gestion de usuarios",
		Result:    result,
		Details:   details,
		Request:   meta,
	})
}
