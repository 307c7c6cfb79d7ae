// Package frames serves isolation boundaries to browsers.
//
// Each viewer slot owns at most one frame. A frame is a capability token
// (frm_<ulid>) under which the composed document can be fetched exactly
// while the frame is live; the host page embeds it as
//
//	<iframe sandbox="allow-scripts" src="/frames/frm_...">
//
// and the document response carries ContentSecurityPolicy, whose sandbox
// directive keeps the document isolated even if it is opened directly.
// Releasing the slot revokes the token.
package frames
