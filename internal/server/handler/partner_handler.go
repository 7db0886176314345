package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/duca-customs-backend/internal/domain/partner"
	"github.com/duca-customs-backend/internal/server/middleware"
	"github.com/duca-customs-backend/internal/server/service"
)

// PartnerHandler handles HTTP requests for one trade-partner catalog. Two
// instances serve the importer and exporter catalogs.
type PartnerHandler struct {
	partnerService service.PartnerService
	logger         *slog.Logger
}

// NewPartnerHandler creates a new catalog handler
func NewPartnerHandler(logger *slog.Logger, partnerService service.PartnerService) *PartnerHandler {
	return &PartnerHandler{
		partnerService: partnerService,
		logger:         logger,
	}
}

// Upsert creates or fully replaces the catalog record at the given id
func (h *PartnerHandler) Upsert(c *gin.Context) {
	actor, ok := middleware.GetIdentity(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	var req UpsertPartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	p, err := h.partnerService.Upsert(c.Request.Context(), actor,
		c.Param("id"), req.Nombre, partner.Status(req.Estado), requestMeta(c))
	if err != nil {
		h.respondPartnerError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// List returns catalog records, optionally filtered by status and a free
// query over id and name.
func (h *PartnerHandler) List(c *gin.Context) {
	f := partner.Filter{
		Query:  c.Query("q"),
		Estado: partner.Status(c.Query("status")),
	}
	if f.Estado != "" && !f.Estado.Valid() {
		RespondBadRequest(c, "status must be ACTIVO or INACTIVO")
		return
	}

	records, err := h.partnerService.List(c.Request.Context(), f)
	if err != nil {
		h.logger.Error("Failed to list catalog", "error", err)
		RespondInternalError(c)
		return
	}

	c.JSON(http.StatusOK, records)
}

// SetStatus toggles a catalog record between ACTIVO and INACTIVO
func (h *PartnerHandler) SetStatus(c *gin.Context) {
	actor, ok := middleware.GetIdentity(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "estado is required")
		return
	}

	estado := partner.Status(req.Estado)
	if !estado.Valid() {
		RespondBadRequest(c, "estado must be ACTIVO or INACTIVO")
		return
	}

	if err := h.partnerService.SetStatus(c.Request.Context(), actor, c.Param("id"), estado, requestMeta(c)); err != nil {
		h.respondPartnerError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *PartnerHandler) respondPartnerError(c *gin.Context, err error) {
	var (
		notFoundErr partner.ErrPartnerNotFound
		invalidErr  partner.ErrInvalidPartner
	)
	switch {
	case errors.As(err, &notFoundErr):
		RespondNotFound(c, "trade partner not found")
	case errors.As(err, &invalidErr):
		RespondBadRequest(c, invalidErr.Error())
	default:
		h.logger.Error("Catalog operation failed", "error", err)
		RespondInternalError(c)
	}
}
