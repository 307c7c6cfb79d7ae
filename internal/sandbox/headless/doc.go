/*
Package headless runs composed simulation documents server-side.

# Overview

A headless Surface gives every boundary a fresh goja VM and a DOM parsed
from the document with goquery. Inline scripts run in document order the
way a browser would run them, followed by DOMContentLoaded, load and one
round of queued timers. Nothing persists between documents.

This is not a browser. There is no layout, no network and no styling;
external and module scripts are skipped and counted. It exists to check
what a unit does before it is shown: whether its script throws, what it
logs and what notices the guard put on the page.

# Security Model

Documents cannot:
  - Reach require, process, module or exports
  - Fetch anything (no XHR, fetch or external scripts)
  - Run past Config.Timeout (the VM is interrupted)

# Usage

	render, err := headless.Preflight(ctx, unit, headless.DefaultConfig())
	if err != nil {
		// host failure, errors.Is(err, sandbox.ErrContextUnavailable)
	}
	if render.ContentFailed() {
		log.Info("unit failed", zap.Strings("notices", render.Notices))
	}
*/
package headless
