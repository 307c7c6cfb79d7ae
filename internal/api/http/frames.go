package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/Coursebook/backend/internal/sandbox/frames"
	"github.com/GriffinCanCode/Coursebook/backend/internal/shared/id"
)

// Frame serves a presented document to its sandboxed iframe
func (h *Handlers) Frame(c *gin.Context) {
	token := c.Param("token")
	if !id.ValidFrameToken(token) {
		c.String(http.StatusNotFound, "unknown frame")
		return
	}

	doc, err := h.frames.Lookup(id.FrameToken(token))
	switch {
	case errors.Is(err, frames.ErrUnknownFrame):
		// Replaced or released; the host page holds a newer token
		c.String(http.StatusGone, "frame revoked")
		return
	case errors.Is(err, frames.ErrFramePending):
		c.Header("Retry-After", "1")
		c.String(http.StatusServiceUnavailable, "frame not ready")
		return
	case err != nil:
		c.String(http.StatusInternalServerError, "frame lookup failed")
		return
	}

	frames.SetHeaders(c.Writer.Header())
	c.Data(http.StatusOK, "text/html; charset=utf-8", doc.Bytes())
}

// ReleaseFrame tears down one of the caller's display slots. Browsers send
// it with navigator.sendBeacon when the host page goes away.
func (h *Handlers) ReleaseFrame(c *gin.Context) {
	slot := c.DefaultQuery("slot", SlotSimulation)
	if v, ok := existingViewer(c); ok {
		if err := h.frames.Release(slotKey(v, slot)); err != nil {
			h.logFailure(c, http.StatusServiceUnavailable, err)
		}
	}
	c.Status(http.StatusNoContent)
}
