// Package tracing records request spans and carries the trace across the
// service boundary to the content backend.
//
// Spans are lightweight: a trace id, a span id, an optional parent, tags and
// a duration. Finished spans go through a buffered channel to a collector
// goroutine that logs them with zap. When the buffer is full the span is
// dropped with a warning rather than blocking the request.
//
// Propagation uses two headers:
//
//	X-Trace-ID  trace the request belongs to
//	X-Span-ID   span that issued the request (becomes the parent)
//
// Usage:
//
//	tracer := tracing.New("coursebook", logger, 0)
//	defer tracer.Close()
//	router.Use(tracing.Middleware(tracer))
//
//	span, ctx := tracer.Start(ctx, "content.list_courses")
//	tracing.Inject(ctx, req.Header)
//	tracer.Finish(span, err)
package tracing
