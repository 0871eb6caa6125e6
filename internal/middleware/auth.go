// Package middleware provides request-scoped Fiber middleware: logging, visitor identity,
// admin authentication, rate limiting, bans, metrics and tracing.
package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	adminIssuer   = "postboard-api"
	adminAudience = "postboard-admin"
	adminSubject  = "admin"

	// AdminLocal is set to true once a request carries a valid admin token.
	AdminLocal = "admin"
)

// IssueAdminToken signs a short-lived admin bearer token.
func IssueAdminToken(secret string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("admin secret is empty")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": adminIssuer,
		"aud": adminAudience,
		"sub": adminSubject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
		"jti": uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseAdminToken validates signature, expiry, issuer, audience and subject.
func ParseAdminToken(secret, tokenString string) error {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(secret), nil
	},
		jwt.WithIssuer(adminIssuer),
		jwt.WithAudience(adminAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return err
	}
	if !token.Valid {
		return errors.New("invalid token")
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub != adminSubject {
		return errors.New("invalid subject claim")
	}
	return nil
}

// AdminRequired rejects requests without a valid admin bearer token.
func AdminRequired(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return unauthorized(c, "Authorization header required")
		}
		scheme, token, found := strings.Cut(header, " ")
		if !found || scheme != "Bearer" || token == "" {
			return unauthorized(c, "Invalid authorization header format")
		}
		if err := ParseAdminToken(secret, token); err != nil {
			return unauthorized(c, "Invalid or expired token")
		}

		c.Locals(AdminLocal, true)
		return c.Next()
	}
}

// IsAdmin reports whether AdminRequired accepted the request.
func IsAdmin(c *fiber.Ctx) bool {
	admin, _ := c.Locals(AdminLocal).(bool)
	return admin
}

func unauthorized(c *fiber.Ctx, reason string) error {
	return reject(c, fiber.StatusUnauthorized, "UNAUTHORIZED", reason)
}
