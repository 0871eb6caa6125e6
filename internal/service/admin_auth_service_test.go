package service

import (
	"context"
	"testing"

	"postboard/internal/middleware"
	"postboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAdminAuthService_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	svc := NewAdminAuthService(string(hash), "test-secret")
	ctx := context.Background()

	token, err := svc.Login(ctx, "hunter2")
	require.NoError(t, err)
	assert.NoError(t, middleware.ParseAdminToken("test-secret", token))

	_, err = svc.Login(ctx, "wrong")
	assert.True(t, models.IsCode(err, models.CodeUnauthorized))

	_, err = svc.Login(ctx, "")
	assert.True(t, models.IsCode(err, models.CodeValidation))
}

func TestAdminAuthService_NotConfigured(t *testing.T) {
	_, err := NewAdminAuthService("", "secret").Login(context.Background(), "anything")
	assert.True(t, models.IsCode(err, models.CodeUnauthorized))
}

func TestHashAdminPassword(t *testing.T) {
	hash, err := HashAdminPassword("s3cret")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))
}
