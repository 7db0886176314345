package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/duca-customs-backend/internal/server/service"
)

// AuditHandler exposes the audit trail to administrators.
type AuditHandler struct {
	auditService service.AuditService
	logger       *slog.Logger
}

// NewAuditHandler creates a new audit trail handler
func NewAuditHandler(logger *slog.Logger, auditService service.AuditService) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
		logger:       logger,
	}
}

// ListByActor returns one user's audit records, newest first. Supports
// limit and offset query parameters for paging.
func (h *AuditHandler) ListByActor(c *gin.Context) {
	actorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "invalid user id")
		return
	}

	limit, ok := intQuery(c, "limit")
	if !ok {
		return
	}
	offset, ok := intQuery(c, "offset")
	if !ok {
		return
	}

	records, err := h.auditService.ListByActor(c.Request.Context(), actorID, limit, offset)
	if err != nil {
		h.logger.Error("Failed to list audit records", "actor_id", actorID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	c.JSON(http.StatusOK, records)
}

// intQuery parses an optional integer query parameter, responding 400 itself
// when the value is present but malformed.
func intQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		RespondBadRequest(c, name+" must be an integer")
		return 0, false
	}
	return v, true
}
