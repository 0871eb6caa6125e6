package models

import "time"

// DefaultReportReason is recorded when a reporter gives no reason.
const DefaultReportReason = "General violation"

// Report is a visitor complaint against exactly one post or comment.
type Report struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PostID     *uint     `gorm:"index" json:"post_id,omitempty"`
	CommentID  *uint     `gorm:"index" json:"comment_id,omitempty"`
	Reason     string    `gorm:"size:500;not null" json:"reason"`
	ReporterIP string    `gorm:"size:64;index" json:"reporter_ip"`
	CreatedAt  time.Time `json:"date"`
}

// AdminReportRow is a report joined with the reported post for the admin dashboard.
type AdminReportRow struct {
	ID         uint      `json:"id"`
	PostID     *uint     `json:"post_id"`
	CommentID  *uint     `json:"comment_id"`
	Reason     string    `json:"reason"`
	ReporterIP string    `json:"reporter_ip"`
	CreatedAt  time.Time `json:"date"`
	PostTitle  string    `json:"post_title"`
	AuthorIP   string    `json:"author_ip"`
}
