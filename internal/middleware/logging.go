package middleware

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Logger is the process-wide structured logger. Records logged with a request
// context carry its request, visitor and trace identifiers.
var Logger *slog.Logger

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	VisitorKey   contextKey = "visitor"
	TraceIDKey   contextKey = "trace_id"
)

// Fiber locals written by requestid and TracingMiddleware.
const (
	requestIDLocal = "requestid"
	traceIDLocal   = "traceID"
	spanIDLocal    = "spanID"
)

// correlation pairs each context key with the Fiber local it is copied from.
var correlation = []struct {
	key   contextKey
	local string
}{
	{RequestIDKey, requestIDLocal},
	{VisitorKey, VisitorLocal},
	{TraceIDKey, traceIDLocal},
}

type correlatingHandler struct {
	slog.Handler
}

func (h correlatingHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, f := range correlation {
		if v, ok := ctx.Value(f.key).(string); ok && v != "" {
			r.AddAttrs(slog.String(string(f.key), v))
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h correlatingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return correlatingHandler{h.Handler.WithAttrs(attrs)}
}

func (h correlatingHandler) WithGroup(name string) slog.Handler {
	return correlatingHandler{h.Handler.WithGroup(name)}
}

func newLogHandler(env, level string) slog.Handler {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if strings.EqualFold(level, "debug") {
		opts.Level = slog.LevelDebug
	}
	switch env {
	case "production", "prod":
		return slog.NewJSONHandler(os.Stdout, opts)
	default:
		return slog.NewTextHandler(os.Stdout, opts)
	}
}

func init() {
	Logger = slog.New(correlatingHandler{newLogHandler(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))})
}

// ContextMiddleware copies correlation identifiers from Fiber locals into the
// user context so service code logging with ctx inherits them.
func ContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		for _, f := range correlation {
			if v, ok := c.Locals(f.local).(string); ok && v != "" {
				ctx = context.WithValue(ctx, f.key, v)
			}
		}
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// StructuredLogger writes one access log line per request once the handler
// chain has returned.
func StructuredLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		attrs := []any{
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.String("visitor", VisitorFrom(c)),
			slog.Duration("latency", time.Since(start)),
			slog.String("user_agent", c.Get(fiber.HeaderUserAgent)),
		}
		ctx := c.UserContext()

		if err != nil {
			Logger.ErrorContext(ctx, "request failed", append(attrs, slog.String("error", err.Error()))...)
			return err
		}
		if status >= fiber.StatusInternalServerError {
			Logger.WarnContext(ctx, "request answered with server error", attrs...)
			return nil
		}
		Logger.InfoContext(ctx, "request", attrs...)
		return nil
	}
}
