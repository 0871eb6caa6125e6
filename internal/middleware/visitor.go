package middleware

import (
	"postboard/internal/visitor"

	"github.com/gofiber/fiber/v2"
)

// VisitorLocal is the Fiber locals key holding the normalized visitor identity.
const VisitorLocal = "visitor"

// Visitor resolves the requester identity once per request.
func Visitor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(VisitorLocal, visitor.Identify(c))
		return c.Next()
	}
}

// VisitorFrom returns the identity stored by Visitor, resolving it if the
// middleware did not run.
func VisitorFrom(c *fiber.Ctx) string {
	if v, ok := c.Locals(VisitorLocal).(string); ok && v != "" {
		return v
	}
	return visitor.Identify(c)
}
