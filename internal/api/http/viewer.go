package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/GriffinCanCode/Coursebook/backend/internal/sandbox/frames"
)

// ViewerCookie keys a browser's display slots. It carries no identity.
const ViewerCookie = "cb_viewer"

const viewerMaxAge = 30 * 24 * 60 * 60

// viewer returns the caller's viewer id, issuing one when absent or malformed
func viewer(c *gin.Context) string {
	if v, ok := existingViewer(c); ok {
		return v
	}
	v := uuid.NewString()
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     ViewerCookie,
		Value:    v,
		Path:     "/",
		MaxAge:   viewerMaxAge,
		HttpOnly: true,
		Secure:   c.Request.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return v
}

// existingViewer returns the viewer id without issuing a new one
func existingViewer(c *gin.Context) (string, bool) {
	raw, err := c.Cookie(ViewerCookie)
	if err != nil {
		return "", false
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}

func slotKey(viewerID, slot string) frames.Key {
	return frames.Key{Viewer: viewerID, Slot: slot}
}
