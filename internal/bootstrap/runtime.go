// Package bootstrap wires the process-wide runtime shared by the commands.
package bootstrap

import (
	"fmt"
	"log"

	"postboard/internal/cache"
	"postboard/internal/config"
	"postboard/internal/database"
	"postboard/internal/models"
	"postboard/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemo fills an empty database with demo content.
	SeedDemo  bool
	DemoPosts int
}

// InitRuntime connects to DB and Redis and optionally seeds demo data.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	warnAdminLogin(cfg)

	if opts.SeedDemo {
		if err := seedIfEmpty(db, opts.DemoPosts); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return db, r, nil
}

func warnAdminLogin(cfg *config.Config) {
	if cfg.AdminPasswordHash == "" {
		log.Println("WARNING: ADMIN_PASSWORD_HASH is empty; admin login is disabled. Generate one with `admin hash-password`.")
	}
}

func seedIfEmpty(db *gorm.DB, posts int) error {
	var existing int64
	if err := db.Model(&models.Post{}).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return nil
	}
	if posts <= 0 {
		posts = 30
	}
	_, err := seed.NewSeeder(db, seed.Options{NumPosts: posts, MaxComments: 4, ReportsPerPost: 1}).Run()
	return err
}
