package tracing

import (
	"github.com/gin-gonic/gin"
)

// Middleware opens a span per request, continuing any trace the caller sent
func Middleware(tracer *Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := WithRemote(c.Request.Context(), c.GetHeader(TraceHeader), c.GetHeader(SpanHeader))

		name := c.FullPath()
		if name == "" {
			name = "unmatched"
		}
		span, ctx := tracer.Start(ctx, c.Request.Method+" "+name)
		span.SetTag("http.path", c.Request.URL.Path)
		c.Request = c.Request.WithContext(ctx)

		c.Header(TraceHeader, span.TraceID)
		c.Header(SpanHeader, span.SpanID)

		c.Next()

		span.Status = c.Writer.Status()
		var err error
		if len(c.Errors) > 0 {
			err = c.Errors.Last()
		}
		tracer.Finish(span, err)
	}
}
