package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/Coursebook/backend/internal/content"
	"github.com/GriffinCanCode/Coursebook/backend/internal/sandbox"
)

// statusFor maps a domain error to an HTTP status and a message safe to show
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, content.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, content.ErrUnavailable), errors.Is(err, content.ErrBadEnvelope):
		return http.StatusBadGateway, "The content service is unavailable. Please try again later."
	case errors.Is(err, sandbox.ErrContextUnavailable):
		return http.StatusServiceUnavailable, "The simulation could not be displayed."
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "The request timed out."
	default:
		return http.StatusInternalServerError, "Internal error"
	}
}

// jsonError writes err as a JSON error response
func (h *Handlers) jsonError(c *gin.Context, err error) {
	status, msg := statusFor(err)
	h.logFailure(c, status, err)
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func (h *Handlers) logFailure(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	if errors.Is(err, context.Canceled) {
		return
	}
	fields := []zap.Field{
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Warn("Request failed", fields...)
	} else {
		h.logger.Debug("Request rejected", fields...)
	}
}
