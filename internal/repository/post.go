// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"time"

	"postboard/internal/database"
	"postboard/internal/models"

	"gorm.io/gorm"
)

// ListFilter selects a page of active posts.
type ListFilter struct {
	Category string
	Limit    int
	Offset   int
}

// Stats aggregates dashboard counters.
type Stats struct {
	TotalPosts   int64 `json:"total_posts"`
	TotalReports int64 `json:"total_reports"`
	BlockedIPs   int64 `json:"blocked_ips"`
	TotalViews   int64 `json:"total_views"`
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetActive(ctx context.Context, id uint, visitor string) (*models.Post, error)
	List(ctx context.Context, filter ListFilter, visitor string) ([]*models.Post, error)
	Trending(ctx context.Context, viewWeight, likeWeight int64, limit int) ([]*models.Post, error)
	ListByStatus(ctx context.Context, status models.PostStatus, limit int) ([]*models.Post, error)
	ListRecent(ctx context.Context, limit int) ([]models.AdminPostRow, error)
	SetStatus(ctx context.Context, id uint, status models.PostStatus) error
	HardDelete(ctx context.Context, id uint) error
	Stats(ctx context.Context) (*Stats, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB, lockTimeout time.Duration) PostRepository {
	return &postRepository{db: db, lockTimeout: lockTimeout}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if post.Status == "" {
		post.Status = models.PostStatusActive
	}
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, notFound(err, ErrPostNotFound)
	}
	return &post, nil
}

func (r *postRepository) GetActive(ctx context.Context, id uint, visitor string) (*models.Post, error) {
	var post models.Post
	err := r.withDetails(r.db.WithContext(ctx), visitor).
		Where("posts.id = ? AND posts.status = ?", id, models.PostStatusActive).
		Take(&post).Error
	if err != nil {
		return nil, notFound(err, ErrPostNotFound)
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, filter ListFilter, visitor string) ([]*models.Post, error) {
	var posts []*models.Post
	q := r.withDetails(r.db.WithContext(ctx), visitor).
		Where("posts.status = ?", models.PostStatusActive)
	if filter.Category != "" {
		q = q.Where("posts.category = ?", filter.Category)
	}
	err := q.Order("posts.id DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&posts).Error
	return posts, err
}

// Trending orders active posts by weighted score; ties go to the newer post.
func (r *postRepository) Trending(ctx context.Context, viewWeight, likeWeight int64, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select("posts.*, (posts.views * ? + posts.likes * ?) AS score, "+
			"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count",
			viewWeight, likeWeight).
		Where("posts.status = ?", models.PostStatusActive).
		Order("score DESC").
		Order("posts.id DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListByStatus(ctx context.Context, status models.PostStatus, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.withDetails(r.db.WithContext(ctx), "").
		Where("posts.status = ?", status).
		Order("posts.id DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListRecent(ctx context.Context, limit int) ([]models.AdminPostRow, error) {
	var rows []models.AdminPostRow
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select("id, title, status, created_at, author_ip, views, likes").
		Order("id DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// SetStatus changes a post's status. Moving to deleted also drops the reports
// that reference the post; comments are kept.
func (r *postRepository) SetStatus(ctx context.Context, id uint, status models.PostStatus) error {
	return database.WriteTx(ctx, r.db, r.lockTimeout, func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{}).Where("id = ?", id).UpdateColumn("status", status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPostNotFound
		}
		if status == models.PostStatusDeleted {
			return tx.Where("post_id = ?", id).Delete(&models.Report{}).Error
		}
		return nil
	})
}

// HardDelete removes a post and everything it owns in one transaction.
func (r *postRepository) HardDelete(ctx context.Context, id uint) error {
	return database.WriteTx(ctx, r.db, r.lockTimeout, func(tx *gorm.DB) error {
		if err := tx.Select("id").Take(&models.Post{}, id).Error; err != nil {
			return notFound(err, ErrPostNotFound)
		}
		commentIDs := tx.Model(&models.Comment{}).Select("id").Where("post_id = ?", id)
		if err := tx.Where("post_id = ? OR comment_id IN (?)", id, commentIDs).Delete(&models.Report{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostView{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
}

func (r *postRepository) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Post{}).Count(&stats.TotalPosts).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Report{}).Count(&stats.TotalReports).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.BlockedIP{}).Count(&stats.BlockedIPs).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Post{}).Select("COALESCE(SUM(views), 0)").Scan(&stats.TotalViews).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

// withDetails adds the comment count and the visitor's like state in a single query.
func (r *postRepository) withDetails(db *gorm.DB, visitor string) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count"

	if visitor != "" {
		return db.Model(&models.Post{}).Select(selectQuery+", EXISTS(SELECT 1 FROM post_likes "+
			"WHERE post_likes.post_id = posts.id AND post_likes.ip_address = ?) AS user_liked", visitor)
	}
	return db.Model(&models.Post{}).Select(selectQuery + ", false AS user_liked")
}
