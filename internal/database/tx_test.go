package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"postboard/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:         NewGormLogger(),
		TranslateError: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestWriteTx_PostgresBoundsLockWait(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`SET LOCAL lock_timeout = '750ms'`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`UPDATE posts SET views = views \+ 1`).
		WillReturnError(&pgconn.PgError{Code: "55P03", Message: "canceling statement due to lock timeout"})
	mock.ExpectRollback()

	err := WriteTx(context.Background(), db, 750*time.Millisecond, func(tx *gorm.DB) error {
		return tx.Exec("UPDATE posts SET views = views + 1 WHERE id = ?", 1).Error
	})
	require.Error(t, err)
	assert.True(t, IsTransient(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteTx_SQLiteRollsBackOnError(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "tx.db"), time.Second)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	sentinel := errors.New("abort")
	err = WriteTx(context.Background(), db, 0, func(tx *gorm.DB) error {
		if err := tx.Create(&models.BlockedIP{IPAddress: "198.51.100.2", BlockedAt: time.Now()}).Error; err != nil {
			return err
		}
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)

	var count int64
	require.NoError(t, db.Model(&models.BlockedIP{}).Count(&count).Error)
	assert.Zero(t, count)
}
