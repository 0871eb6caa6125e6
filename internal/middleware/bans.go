package middleware

import (
	"context"
	"log/slog"

	"postboard/internal/models"

	"github.com/gofiber/fiber/v2"
)

// BanChecker reports whether a visitor identity is banned.
type BanChecker interface {
	IsBanned(ctx context.Context, address string) (bool, error)
}

// BanGate rejects banned visitors with 403. Lookup failures are logged and
// the request proceeds.
func BanGate(checker BanChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if checker == nil || c.Method() == fiber.MethodOptions {
			return c.Next()
		}
		address := VisitorFrom(c)
		banned, err := checker.IsBanned(c.UserContext(), address)
		if err != nil {
			Logger.WarnContext(c.UserContext(), "ban lookup failed, allowing request",
				slog.String("error", err.Error()))
			return c.Next()
		}
		if banned {
			return reject(c, fiber.StatusForbidden, "FORBIDDEN", "Access from this address has been blocked.")
		}
		return c.Next()
	}
}

// reject writes the standard error envelope and stops the chain.
func reject(c *fiber.Ctx, status int, code, reason string) error {
	marker := "error"
	if code == models.CodeRetryLater {
		marker = "retry_later"
	}
	return c.Status(status).JSON(models.ErrorResponse{
		Status: marker,
		Code:   code,
		Reason: reason,
	})
}
