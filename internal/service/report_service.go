package service

import (
	"context"
	"errors"
	"log/slog"
	"time"
	"unicode/utf8"

	"postboard/internal/cache"
	"postboard/internal/featureflags"
	"postboard/internal/middleware"
	"postboard/internal/models"
	"postboard/internal/observability"
	"postboard/internal/repository"
	"postboard/internal/sanitize"
)

const maxReasonLen = 500

type FileReportInput struct {
	PostID    *uint
	CommentID *uint
	Reason    string
	Reporter  string
}

// ReportResult is returned for an accepted report.
type ReportResult struct {
	Count   int64 `json:"count"`
	Flagged bool  `json:"flagged"`
}

// ReportService files reports and escalates posts past the flag threshold.
type ReportService struct {
	reportRepo repository.ReportRepository
	cooldown   *cache.ReportCooldown
	flags      *featureflags.Manager
	tuning     Tuning
	now        func() time.Time
}

// NewReportService wires the report engine. cooldown may be nil, in which
// case duplicate reports are detected by a store lookup.
func NewReportService(
	reportRepo repository.ReportRepository,
	cooldown *cache.ReportCooldown,
	flags *featureflags.Manager,
	tuning Tuning,
) *ReportService {
	return &ReportService{
		reportRepo: reportRepo,
		cooldown:   cooldown,
		flags:      flags,
		tuning:     tuning,
		now:        time.Now,
	}
}

func (s *ReportService) FileReport(ctx context.Context, in FileReportInput) (*ReportResult, error) {
	if (in.PostID == nil) == (in.CommentID == nil) {
		return nil, models.NewValidationError("Exactly one of post_id or comment_id is required")
	}

	reason := sanitize.Sanitize(in.Reason, sanitize.FreeText)
	if reason == "" {
		reason = models.DefaultReportReason
	}
	if utf8.RuneCountInString(reason) > maxReasonLen {
		reason = string([]rune(reason)[:maxReasonLen])
	}

	targetType, targetID := "post", uint(0)
	if in.PostID != nil {
		targetID = *in.PostID
	} else {
		targetType, targetID = "comment", *in.CommentID
	}

	var cooldownSince *time.Time
	claimed := false
	if s.flags.Enabled(featureflags.ReportCooldown, in.Reporter) && s.tuning.ReportCooldown > 0 {
		if s.cooldown != nil {
			ok, err := s.cooldown.Claim(ctx, in.Reporter, targetType, targetID)
			switch {
			case err != nil:
				middleware.Logger.WarnContext(ctx, "report cooldown unavailable, using store lookup",
					slog.String("error", err.Error()))
				since := s.now().Add(-s.tuning.ReportCooldown)
				cooldownSince = &since
			case !ok:
				observability.ReportsThrottled.Inc()
				return nil, classify(ctx, "report.file", repository.ErrAlreadyReported)
			default:
				claimed = true
			}
		} else {
			since := s.now().Add(-s.tuning.ReportCooldown)
			cooldownSince = &since
		}
	}

	report := &models.Report{
		PostID:     in.PostID,
		CommentID:  in.CommentID,
		Reason:     reason,
		ReporterIP: in.Reporter,
	}

	ctx, done := observability.StartOperation(ctx, "report.file", "reports")
	esc, err := s.reportRepo.FileAndEscalate(ctx, report, s.tuning.ReportFlagThreshold, cooldownSince)
	done(err)
	if err != nil {
		if claimed {
			if relErr := s.cooldown.Release(ctx, in.Reporter, targetType, targetID); relErr != nil {
				middleware.Logger.WarnContext(ctx, "failed to release report cooldown",
					slog.String("error", relErr.Error()))
			}
		}
		if errors.Is(err, repository.ErrAlreadyReported) {
			observability.ReportsThrottled.Inc()
		}
		return nil, classify(ctx, "report.file", err)
	}

	observability.ReportsFiled.WithLabelValues(targetType).Inc()
	if esc.Flagged {
		cache.InvalidateTrending(ctx)
		observability.PostsFlagged.Inc()
		middleware.Logger.InfoContext(ctx, "post flagged for review",
			slog.Uint64("post_id", uint64(targetID)),
			slog.Int64("reports", esc.Count))
	}
	return &ReportResult{Count: esc.Count, Flagged: esc.Flagged}, nil
}
