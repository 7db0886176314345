package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/duca-customs-backend/internal/domain/declaration"
	"github.com/duca-customs-backend/internal/server/middleware"
	"github.com/duca-customs-backend/internal/server/service"
)

// DeclarationHandler handles HTTP requests for the declaration workflow:
// submission, owner listing, the review queue, decisions, and detail lookup.
type DeclarationHandler struct {
	declarationService service.DeclarationService
	logger             *slog.Logger
}

// NewDeclarationHandler creates a new declaration handler
func NewDeclarationHandler(logger *slog.Logger, declarationService service.DeclarationService) *DeclarationHandler {
	return &DeclarationHandler{
		declarationService: declarationService,
		logger:             logger,
	}
}

// Create handles submission of a new declaration by a carrier
func (h *DeclarationHandler) Create(c *gin.Context) {
	actor, ok := middleware.GetIdentity(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	var req CreateDeclarationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	d, err := req.Duca.toDomain()
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	created, err := h.declarationService.Create(c.Request.Context(), actor, d, requestMeta(c))
	if err != nil {
		h.respondDeclarationError(c, err)
		return
	}

	c.JSON(http.StatusCreated, mapDeclarationToResponse(created))
}

// ListMine returns the caller's own declarations, optionally bounded by an
// inclusive issue-date range (fechaInicio / fechaFin query parameters).
func (h *DeclarationHandler) ListMine(c *gin.Context) {
	actor, ok := middleware.GetIdentity(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	var rng declaration.DateRange
	if v := c.Query("fechaInicio"); v != "" {
		t, err := time.Parse(issueDateLayout, v)
		if err != nil {
			RespondBadRequest(c, "fechaInicio must be a valid date (YYYY-MM-DD)")
			return
		}
		rng.FechaInicio = &t
	}
	if v := c.Query("fechaFin"); v != "" {
		t, err := time.Parse(issueDateLayout, v)
		if err != nil {
			RespondBadRequest(c, "fechaFin must be a valid date (YYYY-MM-DD)")
			return
		}
		rng.FechaFin = &t
	}

	rows, err := h.declarationService.ListOwn(c.Request.Context(), actor, rng, requestMeta(c))
	if err != nil {
		h.respondDeclarationError(c, err)
		return
	}

	c.JSON(http.StatusOK, rows)
}

// ListPending returns the review queue of pending declarations, oldest first
func (h *DeclarationHandler) ListPending(c *gin.Context) {
	actor, ok := middleware.GetIdentity(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	rows, err := h.declarationService.ListPending(c.Request.Context(), actor)
	if err != nil {
		h.respondDeclarationError(c, err)
		return
	}

	c.JSON(http.StatusOK, rows)
}

// Decide applies an agent's VALIDADA or RECHAZADA verdict to a pending
// declaration. A declaration that is missing or no longer pending yields 404.
func (h *DeclarationHandler) Decide(c *gin.Context) {
	actor, ok := middleware.GetIdentity(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "invalid declaration id")
		return
	}

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	estado := declaration.Status(req.Decision)
	numero, err := h.declarationService.Decide(c.Request.Context(), actor, id, estado, req.Comentario, requestMeta(c))
	if err != nil {
		h.respondDeclarationError(c, err)
		return
	}

	c.JSON(http.StatusOK, DecisionResponse{
		NumeroDocumento: numero,
		Estado:          string(estado),
	})
}

// GetByID retrieves a declaration with its line items, returning 404 if not found
func (h *DeclarationHandler) GetByID(c *gin.Context) {
	actor, ok := middleware.GetIdentity(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "invalid declaration id")
		return
	}

	d, err := h.declarationService.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		h.respondDeclarationError(c, err)
		return
	}

	c.JSON(http.StatusOK, mapDeclarationToResponse(d))
}

// respondDeclarationError maps workflow errors onto the HTTP error taxonomy.
func (h *DeclarationHandler) respondDeclarationError(c *gin.Context, err error) {
	var (
		validationErr declaration.ValidationError
		referenceErr  declaration.InvalidReferenceError
		duplicateErr  declaration.ErrDuplicateDocumentNumber
		notFoundErr   declaration.ErrDeclarationNotFound
		processedErr  declaration.ErrNotFoundOrProcessed
	)
	switch {
	case errors.Is(err, service.ErrForbidden):
		RespondForbidden(c, err.Error())
	case errors.As(err, &validationErr):
		RespondBadRequest(c, validationErr.Error())
	case errors.As(err, &referenceErr):
		RespondBadRequest(c, referenceErr.Error())
	case errors.As(err, &duplicateErr):
		h.logger.Warn("Duplicate document number", "numero_documento", duplicateErr.NumeroDocumento)
		RespondConflict(c, duplicateErr.Error())
	case errors.As(err, &notFoundErr):
		RespondNotFound(c, "declaration not found")
	case errors.As(err, &processedErr):
		RespondNotFound(c, "declaration not found or already processed")
	default:
		h.logger.Error("Declaration operation failed", "error", err)
		RespondInternalError(c)
	}
}
