/*
Package sandbox composes untrusted simulation units into self-contained
documents and presents them in isolated display slots.

# Composition

Compose turns a Unit (markup, style and script fragments) into a Document.
It is pure and never fails. The document carries a guard that turns any
script failure into a visible notice inside the document itself:

	doc := sandbox.Compose(sandbox.Unit{
		ID:     "s1",
		Title:  "Demo",
		Markup: "<p>Hi</p>",
		Style:  "p{color:red}",
		Script: "throw new Error('x')",
	})

The document shows "Hi" in red followed by "Simulation error: x".

# Slots

A Slot owns at most one isolation boundary. Present releases whatever the
slot held, opens a fresh boundary from its Surface and writes the document
once the boundary reports ready. Only the latest present ever writes:

	slot := sandbox.NewSlot("simulation", surface)
	if err := slot.Present(ctx, doc); err != nil {
		// errors.Is(err, sandbox.ErrContextUnavailable)
	}
	defer slot.Release()

Release is idempotent. Content failures never reach the host; only host
failures to establish a boundary return ErrContextUnavailable.

Surfaces live in subpackages: frames serves boundaries to browsers as
sandboxed iframes, headless runs documents in an embedded JS runtime.
*/
package sandbox
