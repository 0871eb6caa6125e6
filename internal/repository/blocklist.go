package repository

import (
	"context"
	"time"

	"postboard/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BlocklistRepository manages banned visitor identities.
type BlocklistRepository interface {
	Upsert(ctx context.Context, address, reason string) error
	Delete(ctx context.Context, address string) error
	IsBanned(ctx context.Context, address string) (bool, error)
	List(ctx context.Context) ([]models.BlockedIP, error)
}

type blocklistRepository struct {
	db *gorm.DB
}

// NewBlocklistRepository creates a blocklist repository.
func NewBlocklistRepository(db *gorm.DB) BlocklistRepository {
	return &blocklistRepository{db: db}
}

// Upsert bans address, refreshing the reason and timestamp of an existing ban.
func (r *blocklistRepository) Upsert(ctx context.Context, address, reason string) error {
	row := models.BlockedIP{IPAddress: address, Reason: reason, BlockedAt: time.Now().UTC()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ip_address"}},
		DoUpdates: clause.AssignmentColumns([]string{"reason", "blocked_at"}),
	}).Create(&row).Error
}

// Delete lifts a ban. Lifting an absent ban is not an error.
func (r *blocklistRepository) Delete(ctx context.Context, address string) error {
	return r.db.WithContext(ctx).Where("ip_address = ?", address).Delete(&models.BlockedIP{}).Error
}

func (r *blocklistRepository) IsBanned(ctx context.Context, address string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.BlockedIP{}).Where("ip_address = ?", address).Count(&count).Error
	return count > 0, err
}

func (r *blocklistRepository) List(ctx context.Context) ([]models.BlockedIP, error) {
	var rows []models.BlockedIP
	err := r.db.WithContext(ctx).Order("blocked_at DESC").Find(&rows).Error
	return rows, err
}
