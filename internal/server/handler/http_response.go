package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/duca-customs-backend/internal/domain/audit"
	"github.com/duca-customs-backend/internal/server/middleware"
)

// Every error response uses the flat {"error": "..."} envelope; success
// responses return the resource directly.

// RespondError sends a JSON error envelope with the given status
func RespondError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"error": message})
}

// RespondBadRequest sends a 400 Bad Request response
func RespondBadRequest(c *gin.Context, message string) {
	RespondError(c, http.StatusBadRequest, message)
}

// RespondUnauthorized sends a 401 Unauthorized response
func RespondUnauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "authentication required"
	}
	RespondError(c, http.StatusUnauthorized, message)
}

// RespondForbidden sends a 403 Forbidden response
func RespondForbidden(c *gin.Context, message string) {
	if message == "" {
		message = "insufficient permissions"
	}
	RespondError(c, http.StatusForbidden, message)
}

// RespondNotFound sends a 404 Not Found response
func RespondNotFound(c *gin.Context, message string) {
	if message == "" {
		message = "resource not found"
	}
	RespondError(c, http.StatusNotFound, message)
}

// RespondConflict sends a 409 Conflict response
func RespondConflict(c *gin.Context, message string) {
	RespondError(c, http.StatusConflict, message)
}

// RespondInternalError sends a 500 Internal Server Error response
func RespondInternalError(c *gin.Context) {
	RespondError(c, http.StatusInternalServerError, "internal server error")
}

// requestMeta captures the request attributes forwarded to the audit trail.
func requestMeta(c *gin.Context) audit.RequestMeta {
	return audit.RequestMeta{
		Method:        c.Request.Method,
		Path:          c.Request.URL.Path,
		ClientIP:      c.ClientIP(),
		CorrelationID: middleware.GetCorrelationID(c),
	}
}
