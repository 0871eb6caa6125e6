package models

import "time"

// PostLike records that a visitor currently likes a post.
// The composite key is the only guard against double likes.
type PostLike struct {
	PostID    uint      `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	IPAddress string    `gorm:"primaryKey;size:64" json:"ip_address"`
	CreatedAt time.Time `json:"created_at"`
}

// PostView records the first view of a post by a visitor. Rows are never updated.
type PostView struct {
	PostID    uint      `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	IPAddress string    `gorm:"primaryKey;size:64" json:"ip_address"`
	CreatedAt time.Time `json:"timestamp"`
}

// TableName keeps the historical table name of the view log.
func (PostView) TableName() string {
	return "post_views_log"
}

// LikeAction is the requested direction of a like toggle.
type LikeAction string

const (
	LikeActionAdd    LikeAction = "add"
	LikeActionRemove LikeAction = "remove"
)

// ViewOutcome is the result of recording a view.
type ViewOutcome string

const (
	ViewRecorded      ViewOutcome = "success"
	ViewAlreadyViewed ViewOutcome = "already_viewed"
)
