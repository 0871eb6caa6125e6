package repository

import (
	"os"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	if err := os.Setenv("APP_ENV", "test"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// mockPostgres opens GORM on the postgres dialect over sqlmock, for asserting
// the exact statements a repository issues. Regex matching is sqlmock's default.
func mockPostgres(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	return db, mock
}
