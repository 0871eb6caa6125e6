package service

import (
	"context"
	"log/slog"
	"strings"

	"postboard/internal/cache"
	"postboard/internal/middleware"
	"postboard/internal/models"
	"postboard/internal/observability"
	"postboard/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// ModerationAction is an admin target state for a post.
type ModerationAction string

const (
	ModerateActive     ModerationAction = "active"
	ModerateFlagged    ModerationAction = "flagged"
	ModerateDeleted    ModerationAction = "deleted"
	ModerateHardDelete ModerationAction = "hard_delete"
)

// ModerationService provides admin moderation and reporting logic.
type ModerationService struct {
	postRepo   repository.PostRepository
	reportRepo repository.ReportRepository
	blocklist  repository.BlocklistRepository
}

// NewModerationService returns a new ModerationService.
func NewModerationService(
	postRepo repository.PostRepository,
	reportRepo repository.ReportRepository,
	blocklist repository.BlocklistRepository,
) *ModerationService {
	return &ModerationService{
		postRepo:   postRepo,
		reportRepo: reportRepo,
		blocklist:  blocklist,
	}
}

// SetStatus applies an admin decision to a post.
func (s *ModerationService) SetStatus(ctx context.Context, postID uint, action ModerationAction) error {
	if postID == 0 {
		return models.NewValidationError("post_id is required")
	}

	ctx, done := observability.StartOperation(ctx, "moderation.set_status", "posts",
		attribute.Int("post.id", int(postID)),
		attribute.String("moderation.action", string(action)))
	var err error
	switch action {
	case ModerateHardDelete:
		err = s.postRepo.HardDelete(ctx, postID)
	case ModerateActive, ModerateFlagged, ModerateDeleted:
		err = s.postRepo.SetStatus(ctx, postID, models.PostStatus(action))
	default:
		done(nil)
		return models.NewValidationError("status must be one of active, flagged, deleted, hard_delete")
	}
	done(err)
	if err != nil {
		return classify(ctx, "moderation.set_status", err)
	}
	cache.InvalidateTrending(ctx)

	observability.ModerationActions.WithLabelValues(string(action)).Inc()
	middleware.Logger.InfoContext(ctx, "post moderated",
		slog.Uint64("post_id", uint64(postID)),
		slog.String("status", string(action)))
	return nil
}

// BanIdentity bans address, replacing the reason of an existing ban.
func (s *ModerationService) BanIdentity(ctx context.Context, address, reason string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return models.NewValidationError("No IP provided")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = models.DefaultBanReason
	}

	if err := s.blocklist.Upsert(ctx, address, reason); err != nil {
		return classify(ctx, "moderation.ban", err)
	}
	cache.InvalidateBan(ctx, address)

	observability.ModerationActions.WithLabelValues("ban").Inc()
	middleware.Logger.InfoContext(ctx, "identity banned",
		slog.String("address", address),
		slog.String("reason", reason))
	return nil
}

// UnbanIdentity lifts a ban; lifting an absent ban succeeds.
func (s *ModerationService) UnbanIdentity(ctx context.Context, address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return models.NewValidationError("No IP provided")
	}
	if err := s.blocklist.Delete(ctx, address); err != nil {
		return classify(ctx, "moderation.unban", err)
	}
	cache.InvalidateBan(ctx, address)

	observability.ModerationActions.WithLabelValues("unban").Inc()
	middleware.Logger.InfoContext(ctx, "identity unbanned", slog.String("address", address))
	return nil
}

// IsBanned satisfies middleware.BanChecker. Lookups are cached briefly in Redis.
func (s *ModerationService) IsBanned(ctx context.Context, address string) (bool, error) {
	var banned bool
	err := cache.Aside(ctx, cache.BannedKey(address), &banned, cache.BannedTTL, func() error {
		var err error
		banned, err = s.blocklist.IsBanned(ctx, address)
		return err
	})
	return banned, err
}

func (s *ModerationService) Stats(ctx context.Context) (*repository.Stats, error) {
	stats, err := s.postRepo.Stats(ctx)
	if err != nil {
		return nil, classify(ctx, "moderation.stats", err)
	}
	return stats, nil
}

func (s *ModerationService) ListReports(ctx context.Context) ([]models.AdminReportRow, error) {
	rows, err := s.reportRepo.List(ctx, AdminListLimit)
	if err != nil {
		return nil, classify(ctx, "moderation.reports", err)
	}
	return rows, nil
}

func (s *ModerationService) ListRecentPosts(ctx context.Context) ([]models.AdminPostRow, error) {
	rows, err := s.postRepo.ListRecent(ctx, AdminListLimit)
	if err != nil {
		return nil, classify(ctx, "moderation.posts", err)
	}
	return rows, nil
}

func (s *ModerationService) ListBanned(ctx context.Context) ([]models.BlockedIP, error) {
	rows, err := s.blocklist.List(ctx)
	if err != nil {
		return nil, classify(ctx, "moderation.banned", err)
	}
	return rows, nil
}

func (s *ModerationService) ListFlagged(ctx context.Context) ([]*models.Post, error) {
	posts, err := s.postRepo.ListByStatus(ctx, models.PostStatusFlagged, AdminListLimit)
	if err != nil {
		return nil, classify(ctx, "moderation.flagged", err)
	}
	return posts, nil
}
