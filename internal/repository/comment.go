package repository

import (
	"context"
	"time"

	"postboard/internal/database"
	"postboard/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error)
}

type commentRepository struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB, lockTimeout time.Duration) CommentRepository {
	return &commentRepository{db: db, lockTimeout: lockTimeout}
}

// Create inserts the comment only if its post exists and is not deleted.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return database.WriteTx(ctx, r.db, r.lockTimeout, func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.Post{}).
			Where("id = ? AND status <> ?", comment.PostID, models.PostStatusDeleted).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count == 0 {
			return ErrPostNotFound
		}
		return tx.Create(comment).Error
	})
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, notFound(err, ErrCommentNotFound)
	}
	return &comment, nil
}

// ListByPost returns a post's comments oldest first.
func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("id ASC").
		Find(&comments).Error
	return comments, err
}
