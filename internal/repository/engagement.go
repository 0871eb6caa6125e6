package repository

import (
	"context"
	"errors"
	"time"

	"postboard/internal/database"
	"postboard/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeResult is the outcome of a like toggle.
type LikeResult struct {
	Changed bool
	Likes   int64
}

// EngagementRepository is the like and view ledger. Every operation runs in a
// single write transaction so the post counters never drift from the ledger rows.
type EngagementRepository interface {
	AddLike(ctx context.Context, postID uint, visitor string) (LikeResult, error)
	RemoveLike(ctx context.Context, postID uint, visitor string) (LikeResult, error)
	RecordView(ctx context.Context, postID uint, visitor string) (models.ViewOutcome, error)
	HasLiked(ctx context.Context, postID uint, visitor string) (bool, error)
}

type engagementRepository struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// NewEngagementRepository creates the ledger repository.
func NewEngagementRepository(db *gorm.DB, lockTimeout time.Duration) EngagementRepository {
	return &engagementRepository{db: db, lockTimeout: lockTimeout}
}

// AddLike inserts the like row and bumps the counter only when the row is new.
func (r *engagementRepository) AddLike(ctx context.Context, postID uint, visitor string) (LikeResult, error) {
	var result LikeResult
	err := database.WriteTx(ctx, r.db, r.lockTimeout, func(tx *gorm.DB) error {
		if err := requireActivePost(tx, postID); err != nil {
			return err
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.PostLike{PostID: postID, IPAddress: visitor})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			if err := tx.Model(&models.Post{}).Where("id = ?", postID).
				UpdateColumn("likes", gorm.Expr("likes + 1")).Error; err != nil {
				return err
			}
			result.Changed = true
		}
		return readLikes(tx, postID, &result.Likes)
	})
	return result, err
}

// RemoveLike deletes the like row and decrements the counter, never below zero.
func (r *engagementRepository) RemoveLike(ctx context.Context, postID uint, visitor string) (LikeResult, error) {
	var result LikeResult
	err := database.WriteTx(ctx, r.db, r.lockTimeout, func(tx *gorm.DB) error {
		if err := requireActivePost(tx, postID); err != nil {
			return err
		}
		res := tx.Where("post_id = ? AND ip_address = ?", postID, visitor).Delete(&models.PostLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			if err := tx.Model(&models.Post{}).Where("id = ?", postID).
				UpdateColumn("likes", gorm.Expr("CASE WHEN likes > 0 THEN likes - 1 ELSE 0 END")).Error; err != nil {
				return err
			}
			result.Changed = true
		}
		return readLikes(tx, postID, &result.Likes)
	})
	return result, err
}

// RecordView counts the first view per visitor. A repeated view is reported
// as already viewed and leaves the counter untouched.
func (r *engagementRepository) RecordView(ctx context.Context, postID uint, visitor string) (models.ViewOutcome, error) {
	err := database.WriteTx(ctx, r.db, r.lockTimeout, func(tx *gorm.DB) error {
		if err := requireActivePost(tx, postID); err != nil {
			return err
		}
		if err := tx.Create(&models.PostView{PostID: postID, IPAddress: visitor}).Error; err != nil {
			if database.IsDuplicate(err) {
				return errAlreadyViewed
			}
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("views", gorm.Expr("views + 1")).Error
	})
	switch {
	case errors.Is(err, errAlreadyViewed):
		return models.ViewAlreadyViewed, nil
	case err != nil:
		return "", err
	}
	return models.ViewRecorded, nil
}

func (r *engagementRepository) HasLiked(ctx context.Context, postID uint, visitor string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PostLike{}).
		Where("post_id = ? AND ip_address = ?", postID, visitor).
		Count(&count).Error
	return count > 0, err
}

// requireActivePost matches GetActive: flagged and deleted posts are not
// visible, so they cannot be liked or viewed either.
func requireActivePost(tx *gorm.DB, postID uint) error {
	var count int64
	err := tx.Model(&models.Post{}).
		Where("id = ? AND status = ?", postID, models.PostStatusActive).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrPostNotFound
	}
	return nil
}

func readLikes(tx *gorm.DB, postID uint, likes *int64) error {
	return tx.Model(&models.Post{}).Select("likes").Where("id = ?", postID).Scan(likes).Error
}
