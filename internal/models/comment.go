package models

import "time"

// Comment is a reply attached to an existing post.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	AuthorIP  string    `gorm:"size:64" json:"-"`
	CreatedAt time.Time `json:"date"`
}
