package httpapi

import (
	"errors"
	"net/http"

	"classroom-api/internal/accounts"
	"classroom-api/internal/catalog"
	"classroom-api/internal/docstore"
	"classroom-api/internal/guard"
	"classroom-api/internal/payments"
	"classroom-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// writeError maps service errors to a status and a public message.
// Anything unrecognised is a 500 and its detail stays in the log.
func writeError(c *gin.Context, err error) {
	status, msg := classify(err)
	if status == http.StatusInternalServerError {
		logger.FromGin(c).Error("handler failed", "path", c.FullPath(), "err", err)
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, gin.H{"message": msg})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, guard.ErrUnauthenticated), errors.Is(err, guard.ErrForbidden):
		return guard.Status(err)
	case errors.Is(err, accounts.ErrInvalidID),
		errors.Is(err, catalog.ErrInvalidID),
		errors.Is(err, docstore.ErrInvalidID):
		return http.StatusBadRequest, "invalid id"
	case errors.Is(err, accounts.ErrMissingEmail):
		return http.StatusBadRequest, "email is required"
	case errors.Is(err, payments.ErrInvalidAmount):
		return http.StatusBadRequest, "price must be a positive amount"
	case errors.Is(err, payments.ErrNotConfigured):
		return http.StatusServiceUnavailable, "payments are not available"
	case errors.Is(err, docstore.ErrNotFound):
		return http.StatusNotFound, "not found"
	default:
		return guard.Status(err)
	}
}
