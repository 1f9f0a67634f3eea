package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/amaumene/streambox/internal/constants"
	apperrors "github.com/amaumene/streambox/internal/errors"
)

// respond writes the success envelope with data plus any extra top-level fields.
func respond(c *gin.Context, data interface{}, extra gin.H) {
	body := gin.H{"success": true, "data": data}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": message})
}

// failWith picks the status code for err from its kind.
func (h *Handler) failWith(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, apperrors.ErrInvalidQuery),
		errors.Is(err, apperrors.ErrInvalidMediaType),
		errors.Is(err, apperrors.ErrInvalidUpload):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperrors.ErrTokenExpired):
		fail(c, http.StatusUnauthorized, "Token expired")
	case errors.Is(err, apperrors.ErrUnauthorized):
		fail(c, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, apperrors.ErrLoginThrottled):
		fail(c, http.StatusTooManyRequests, "Too many attempts, try again later")
	case errors.Is(err, apperrors.ErrUpstreamUnavailable), errors.Is(err, apperrors.ErrMalformedPayload):
		fail(c, http.StatusServiceUnavailable, "Catalog provider unavailable")
	default:
		h.services.Logger.Errorf("[Handler] %s %s: %v", c.Request.Method, c.FullPath(), err)
		fail(c, http.StatusInternalServerError, "Internal server error")
	}
}

// parseLimit reads ?limit=, defaulting to DefaultListLimit. Values outside
// [MinListLimit, MaxListLimit] are rejected.
func parseLimit(c *gin.Context) (int, bool) {
	raw, ok := c.GetQuery("limit")
	if !ok || raw == "" {
		return constants.DefaultListLimit, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < constants.MinListLimit || limit > constants.MaxListLimit {
		fail(c, http.StatusBadRequest, "limit must be an integer between 1 and 50")
		return 0, false
	}
	return limit, true
}
