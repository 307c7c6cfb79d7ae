package frames

import "net/http"

// IframeSandbox is the sandbox attribute of the hosting iframe. Scripts
// may run; the frame keeps an opaque origin, so it cannot reach the host
// page, its cookies or its storage.
const IframeSandbox = "allow-scripts"

// ContentSecurityPolicy is sent with every frame document. The sandbox
// directive applies even when the document is opened outside the iframe.
const ContentSecurityPolicy = "sandbox allow-scripts; " +
	"default-src 'none'; " +
	"script-src 'unsafe-inline' https:; " +
	"style-src 'unsafe-inline' https:; " +
	"img-src data: https:; " +
	"font-src data: https:; " +
	"connect-src 'none'; " +
	"form-action 'none'; " +
	"frame-ancestors 'self'"

// SetHeaders applies the frame response headers to h
func SetHeaders(h http.Header) {
	h.Set("Content-Security-Policy", ContentSecurityPolicy)
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Referrer-Policy", "no-referrer")
	h.Set("Cache-Control", "no-store")
}
