package service

import (
	"context"
	"log/slog"
	"unicode/utf8"

	"postboard/internal/middleware"
	"postboard/internal/models"
	"postboard/internal/observability"
	"postboard/internal/profanity"
	"postboard/internal/repository"
	"postboard/internal/sanitize"
)

const maxCommentLen = 10000

type CommentService struct {
	commentRepo repository.CommentRepository
	filter      *profanity.Filter
}

type CreateCommentInput struct {
	PostID   uint
	Content  string
	AuthorIP string
}

func NewCommentService(commentRepo repository.CommentRepository, filter *profanity.Filter) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		filter:      filter,
	}
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if in.PostID == 0 {
		return nil, models.NewValidationError("post_id is required")
	}
	content := sanitize.Sanitize(in.Content, sanitize.FreeText)
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if utf8.RuneCountInString(content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}

	if term, hit := s.filter.Check(content); hit {
		observability.ModerationRejections.WithLabelValues("comment").Inc()
		middleware.Logger.InfoContext(ctx, "comment rejected by profanity filter",
			slog.String("term", term),
			slog.Uint64("post_id", uint64(in.PostID)))
		return nil, models.NewModerationError("Profanity detected.")
	}

	comment := &models.Comment{
		PostID:   in.PostID,
		Content:  content,
		AuthorIP: in.AuthorIP,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, classify(ctx, "comment.create", err)
	}
	return comment, nil
}

// ListComments returns a post's comments oldest first.
func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	if postID == 0 {
		return nil, models.NewValidationError("post_id is required")
	}
	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, classify(ctx, "comment.list", err)
	}
	return comments, nil
}
