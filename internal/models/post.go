// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// PostStatus is the moderation state of a post.
type PostStatus string

const (
	PostStatusActive  PostStatus = "active"
	PostStatusFlagged PostStatus = "flagged"
	PostStatusDeleted PostStatus = "deleted"
)

// Post represents a published story.
// Views and Likes are denormalized counters kept equal to the ledger row counts.
type Post struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Title     string     `gorm:"not null" json:"title"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	Category  string     `gorm:"size:32;not null;default:Social;index" json:"category"`
	Hashtags  string     `gorm:"size:500" json:"hashtags"`
	Views     int64      `gorm:"not null;default:0" json:"views"`
	Likes     int64      `gorm:"not null;default:0" json:"likes"`
	Status    PostStatus `gorm:"size:16;not null;default:active;index" json:"status"`
	AuthorIP  string     `gorm:"size:64" json:"-"`
	ImageURL  string     `json:"image_url,omitempty"`
	CreatedAt time.Time  `json:"date"`
	UpdatedAt time.Time  `json:"-"`

	// CommentCount is not persisted; computed at query time
	CommentCount int64 `gorm:"->;-:migration" json:"comment_count"`
	// UserLiked indicates whether the requesting visitor liked this post (computed)
	UserLiked bool `gorm:"->;-:migration" json:"user_liked"`
	// Score is the trending score (computed)
	Score int64 `gorm:"->;-:migration" json:"score,omitempty"`
}

// TrendingScore computes views*viewWeight + likes*likeWeight.
func (p *Post) TrendingScore(viewWeight, likeWeight int64) int64 {
	return p.Views*viewWeight + p.Likes*likeWeight
}

// AdminPostRow is the admin listing projection of a post.
type AdminPostRow struct {
	ID        uint       `json:"id"`
	Title     string     `json:"title"`
	Status    PostStatus `json:"status"`
	CreatedAt time.Time  `json:"date"`
	AuthorIP  string     `json:"author_ip"`
	Views     int64      `json:"views"`
	Likes     int64      `json:"likes"`
}
