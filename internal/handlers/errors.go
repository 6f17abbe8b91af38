package handlers

import (
	"errors"
	"net/http"

	"github.com/discussion-system/discussion-system/internal/middleware"
	"github.com/discussion-system/discussion-system/internal/services"
	"github.com/discussion-system/discussion-system/pkg/logger"
	"github.com/gin-gonic/gin"
)

// respondError maps service error kinds to HTTP statuses. Anything
// unclassified is logged and reported as a 500 without details.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	var status int
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrUnauthenticated):
		middleware.Unauthorized(c, err.Error())
		return
	case errors.Is(err, services.ErrConflict), errors.Is(err, services.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrTooManyAttempts):
		status = http.StatusTooManyRequests
	default:
		log.WithError(err).WithField("request_id", middleware.GetRequestID(c)).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
