package service

import (
	"context"
	"log/slog"

	"postboard/internal/middleware"
	"postboard/internal/models"
	"postboard/internal/observability"
	"postboard/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// LikeResult reports the like state of a post after a toggle.
type LikeResult struct {
	Changed bool  `json:"changed"`
	Liked   bool  `json:"liked"`
	Likes   int64 `json:"likes"`
}

// EngagementService records likes and views through the ledger.
type EngagementService struct {
	ledger repository.EngagementRepository
}

func NewEngagementService(ledger repository.EngagementRepository) *EngagementService {
	return &EngagementService{ledger: ledger}
}

// ToggleLike adds or removes the visitor's like. Repeating the current state is a no-op.
func (s *EngagementService) ToggleLike(ctx context.Context, postID uint, visitor string, action models.LikeAction) (*LikeResult, error) {
	if postID == 0 {
		return nil, models.NewValidationError("post_id is required")
	}

	var (
		res repository.LikeResult
		err error
	)
	ctx, done := observability.StartOperation(ctx, "engagement.like", "post_likes",
		attribute.Int("post.id", int(postID)),
		attribute.String("like.action", string(action)))
	switch action {
	case models.LikeActionAdd:
		res, err = s.ledger.AddLike(ctx, postID, visitor)
	case models.LikeActionRemove:
		res, err = s.ledger.RemoveLike(ctx, postID, visitor)
	default:
		done(nil)
		return nil, models.NewValidationError("action must be 'add' or 'remove'")
	}
	done(err)
	if err != nil {
		return nil, classify(ctx, "engagement.like", err)
	}

	kind := "like_noop"
	if res.Changed {
		kind = "like_" + string(action)
		middleware.Logger.DebugContext(ctx, "like toggled",
			slog.Uint64("post_id", uint64(postID)),
			slog.String("action", string(action)),
			slog.Int64("likes", res.Likes))
	}
	observability.EngagementEvents.WithLabelValues(kind).Inc()

	return &LikeResult{
		Changed: res.Changed,
		Liked:   action == models.LikeActionAdd,
		Likes:   res.Likes,
	}, nil
}

// RecordView counts the first view of a post per visitor.
func (s *EngagementService) RecordView(ctx context.Context, postID uint, visitor string) (models.ViewOutcome, error) {
	if postID == 0 {
		return "", models.NewValidationError("post_id is required")
	}

	ctx, done := observability.StartOperation(ctx, "engagement.view", "post_views_log",
		attribute.Int("post.id", int(postID)))
	outcome, err := s.ledger.RecordView(ctx, postID, visitor)
	done(err)
	if err != nil {
		return "", classify(ctx, "engagement.view", err)
	}

	if outcome == models.ViewRecorded {
		observability.EngagementEvents.WithLabelValues("view").Inc()
	} else {
		observability.EngagementEvents.WithLabelValues("view_duplicate").Inc()
	}
	return outcome, nil
}
