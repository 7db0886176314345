package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/duca-customs-backend/internal/domain/user"
	"github.com/duca-customs-backend/internal/server/middleware"
	"github.com/duca-customs-backend/internal/server/service"
)

// UserHandler handles HTTP requests for account administration
type UserHandler struct {
	userService service.UserService
	logger      *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(logger *slog.Logger, userService service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// Create handles creation of a new account
func (h *UserHandler) Create(c *gin.Context) {
	actor, ok := middleware.GetIdentity(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	u, err := h.userService.CreateUser(c.Request.Context(), actor,
		req.Name, req.Email, req.Password, user.Role(req.Role), user.Status(req.Status), requestMeta(c))
	if err != nil {
		h.respondUserError(c, err)
		return
	}

	c.JSON(http.StatusCreated, mapUserToResponse(u))
}

// List returns all accounts
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list users", "error", err)
		RespondInternalError(c)
		return
	}

	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, mapUserToResponse(&users[i]))
	}
	c.JSON(http.StatusOK, out)
}

// SetStatus toggles an account between ACTIVE and INACTIVE
func (h *UserHandler) SetStatus(c *gin.Context) {
	actor, ok := middleware.GetIdentity(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "invalid user id")
		return
	}

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "estado is required")
		return
	}

	if err := h.userService.SetUserStatus(c.Request.Context(), actor, id, user.Status(req.Estado), requestMeta(c)); err != nil {
		h.respondUserError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Delete removes an account permanently
func (h *UserHandler) Delete(c *gin.Context) {
	actor, ok := middleware.GetIdentity(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "invalid user id")
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), actor, id, requestMeta(c)); err != nil {
		h.respondUserError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) respondUserError(c *gin.Context, err error) {
	var (
		notFoundErr  user.ErrUserNotFound
		duplicateErr user.ErrDuplicateEmail
	)
	switch {
	case errors.As(err, &notFoundErr):
		RespondNotFound(c, "user not found")
	case errors.As(err, &duplicateErr):
		RespondConflict(c, duplicateErr.Error())
	case errors.Is(err, user.ErrEmptyName),
		errors.Is(err, user.ErrInvalidEmail),
		errors.Is(err, user.ErrWeakPassword),
		errors.Is(err, user.ErrInvalidRole),
		errors.Is(err, user.ErrInvalidStatus):
		RespondBadRequest(c, err.Error())
	default:
		h.logger.Error("User operation failed", "error", err)
		RespondInternalError(c)
	}
}
