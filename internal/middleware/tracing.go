package middleware

import (
	"postboard/internal/observability"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TraceHeader echoes the active trace ID back to the caller.
const TraceHeader = "X-Trace-ID"

// TracingMiddleware opens a server span per request, continuing any trace
// propagated by the caller, and exposes the trace ID through locals and
// TraceHeader.
func TracingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		parent := otel.GetTextMapPropagator().Extract(c.UserContext(), propagation.HeaderCarrier(c.GetReqHeaders()))
		ctx, span := observability.Tracer.Start(parent, c.Method()+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(requestAttributes(c)...),
		)
		defer span.End()

		sc := span.SpanContext()
		c.Locals(traceIDLocal, sc.TraceID().String())
		c.Locals(spanIDLocal, sc.SpanID().String())
		c.Set(TraceHeader, sc.TraceID().String())
		c.SetUserContext(ctx)

		err := c.Next()
		finishServerSpan(c, span, err)
		return err
	}
}

func requestAttributes(c *fiber.Ctx) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", c.Method()),
		attribute.String("http.route", c.Path()),
		attribute.String("http.url", c.OriginalURL()),
		attribute.String("http.user_agent", c.Get(fiber.HeaderUserAgent)),
		attribute.String("postboard.visitor", VisitorFrom(c)),
	}
	if rid, ok := c.Locals(requestIDLocal).(string); ok && rid != "" {
		attrs = append(attrs, attribute.String("request.id", rid))
	}
	return attrs
}

func finishServerSpan(c *fiber.Ctx, span trace.Span, err error) {
	status := c.Response().StatusCode()
	span.SetAttributes(
		attribute.Int("http.status_code", status),
		attribute.Bool("postboard.admin", IsAdmin(c)),
	)
	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case status >= fiber.StatusInternalServerError:
		span.SetStatus(codes.Error, "server error")
	}
}
