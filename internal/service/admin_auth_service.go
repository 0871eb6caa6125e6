package service

import (
	"context"
	"log/slog"
	"time"

	"postboard/internal/middleware"
	"postboard/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// AdminTokenTTL is the lifetime of an admin session token.
const AdminTokenTTL = 12 * time.Hour

// AdminAuthService exchanges the admin password for a bearer token.
type AdminAuthService struct {
	passwordHash []byte
	jwtSecret    string
	ttl          time.Duration
}

func NewAdminAuthService(passwordHash, jwtSecret string) *AdminAuthService {
	return &AdminAuthService{
		passwordHash: []byte(passwordHash),
		jwtSecret:    jwtSecret,
		ttl:          AdminTokenTTL,
	}
}

// HashAdminPassword returns a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func HashAdminPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Login verifies password and issues a signed admin token.
func (s *AdminAuthService) Login(ctx context.Context, password string) (string, error) {
	if len(s.passwordHash) == 0 {
		return "", models.NewUnauthorizedError("Admin login is not configured")
	}
	if password == "" {
		return "", models.NewValidationError("Password is required")
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		middleware.Logger.WarnContext(ctx, "admin login failed")
		return "", models.NewUnauthorizedError("Invalid credentials")
	}

	token, err := middleware.IssueAdminToken(s.jwtSecret, s.ttl)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	middleware.Logger.InfoContext(ctx, "admin logged in", slog.Duration("ttl", s.ttl))
	return token, nil
}
