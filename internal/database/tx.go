package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// DefaultLockTimeout bounds how long a write transaction waits for row locks.
const DefaultLockTimeout = 5 * time.Second

// WriteTx runs fn inside a transaction. On PostgreSQL the transaction's lock
// wait is bounded with SET LOCAL lock_timeout; SQLite connections already carry
// a busy timeout from their DSN.
func WriteTx(ctx context.Context, db *gorm.DB, lockTimeout time.Duration, fn func(tx *gorm.DB) error) error {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return fn(tx)
	})
}
