package repository

import (
	"context"
	"time"

	"postboard/internal/database"
	"postboard/internal/models"

	"gorm.io/gorm"
)

// Escalation is the state of a post after a report was filed against it.
type Escalation struct {
	Count   int64
	Flagged bool
}

// ReportRepository stores reports and escalates posts that cross the threshold.
type ReportRepository interface {
	FileAndEscalate(ctx context.Context, report *models.Report, threshold int64, cooldownSince *time.Time) (Escalation, error)
	List(ctx context.Context, limit int) ([]models.AdminReportRow, error)
}

type reportRepository struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// NewReportRepository creates a report repository.
func NewReportRepository(db *gorm.DB, lockTimeout time.Duration) ReportRepository {
	return &reportRepository{db: db, lockTimeout: lockTimeout}
}

// FileAndEscalate inserts the report, and for post reports counts them and
// flags the post once the count reaches threshold. Only active posts are
// flagged, so a post never moves back from deleted. When cooldownSince is set
// an earlier report by the same reporter on the same target after that
// instant rejects the new one with ErrAlreadyReported.
func (r *reportRepository) FileAndEscalate(
	ctx context.Context,
	report *models.Report,
	threshold int64,
	cooldownSince *time.Time,
) (Escalation, error) {
	var esc Escalation
	err := database.WriteTx(ctx, r.db, r.lockTimeout, func(tx *gorm.DB) error {
		if err := requireTarget(tx, report); err != nil {
			return err
		}

		if cooldownSince != nil {
			var prior int64
			q := tx.Model(&models.Report{}).
				Where("reporter_ip = ? AND created_at >= ?", report.ReporterIP, *cooldownSince)
			if report.PostID != nil {
				q = q.Where("post_id = ?", *report.PostID)
			} else {
				q = q.Where("comment_id = ?", *report.CommentID)
			}
			if err := q.Count(&prior).Error; err != nil {
				return err
			}
			if prior > 0 {
				return ErrAlreadyReported
			}
		}

		if err := tx.Create(report).Error; err != nil {
			return err
		}
		if report.PostID == nil {
			return nil
		}

		if err := tx.Model(&models.Report{}).Where("post_id = ?", *report.PostID).Count(&esc.Count).Error; err != nil {
			return err
		}
		if esc.Count < threshold {
			return nil
		}
		res := tx.Model(&models.Post{}).
			Where("id = ? AND status = ?", *report.PostID, models.PostStatusActive).
			UpdateColumn("status", models.PostStatusFlagged)
		if res.Error != nil {
			return res.Error
		}
		esc.Flagged = res.RowsAffected > 0
		return nil
	})
	return esc, err
}

// List returns the most recent reports joined with the reported post.
func (r *reportRepository) List(ctx context.Context, limit int) ([]models.AdminReportRow, error) {
	var rows []models.AdminReportRow
	err := r.db.WithContext(ctx).
		Table("reports").
		Select("reports.id, reports.post_id, reports.comment_id, reports.reason, reports.reporter_ip, " +
			"reports.created_at, COALESCE(posts.title, '') AS post_title, COALESCE(posts.author_ip, '') AS author_ip").
		Joins("LEFT JOIN posts ON posts.id = reports.post_id").
		Order("reports.id DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func requireTarget(tx *gorm.DB, report *models.Report) error {
	var count int64
	if report.PostID != nil {
		if err := tx.Model(&models.Post{}).
			Where("id = ? AND status <> ?", *report.PostID, models.PostStatusDeleted).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrPostNotFound
		}
		return nil
	}
	if report.CommentID == nil {
		return ErrCommentNotFound
	}
	if err := tx.Model(&models.Comment{}).Where("id = ?", *report.CommentID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrCommentNotFound
	}
	return nil
}
