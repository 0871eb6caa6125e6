package service

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"postboard/internal/cache"
	"postboard/internal/middleware"
	"postboard/internal/models"
	"postboard/internal/observability"
	"postboard/internal/profanity"
	"postboard/internal/repository"
	"postboard/internal/sanitize"
)

const (
	maxTitleLen    = 300
	maxContentLen  = 50000
	maxHashtagsLen = 500
)

type PostService struct {
	postRepo repository.PostRepository
	filter   *profanity.Filter
	images   *ImageService
	tuning   Tuning
}

type CreatePostInput struct {
	Title    string
	Content  string
	Category string
	Hashtags string
	AuthorIP string
	Image    *UploadImageInput
}

type ListPostsInput struct {
	Category string
	Limit    int
	Offset   int
	Visitor  string
}

func NewPostService(
	postRepo repository.PostRepository,
	filter *profanity.Filter,
	images *ImageService,
	tuning Tuning,
) *PostService {
	return &PostService{
		postRepo: postRepo,
		filter:   filter,
		images:   images,
		tuning:   tuning,
	}
}

// CreatePost sanitizes and screens a submission, stores its optional image
// and saves it as an active post.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	title := sanitize.Sanitize(in.Title, sanitize.FreeText)
	content := sanitize.Sanitize(in.Content, sanitize.FreeText)
	hashtags := sanitize.Sanitize(in.Hashtags, sanitize.TagToken)

	if title == "" || content == "" {
		return nil, models.NewValidationError("Title and Content are required.")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 300 characters)")
	}
	if utf8.RuneCountInString(content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 50000 characters)")
	}
	if utf8.RuneCountInString(hashtags) > maxHashtagsLen {
		return nil, models.NewValidationError("Hashtags too long (max 500 characters)")
	}

	category, ok := models.NormalizeCategory(in.Category)
	if !ok {
		return nil, models.NewValidationError("Invalid category")
	}

	if term, hit := s.filter.CheckPost(title, content, hashtags); hit {
		observability.ModerationRejections.WithLabelValues("post").Inc()
		middleware.Logger.InfoContext(ctx, "post rejected by profanity filter",
			slog.String("term", term),
			slog.String("author", in.AuthorIP))
		return nil, models.NewModerationError("Post rejected: Content contains inappropriate language.")
	}

	post := &models.Post{
		Title:    title,
		Content:  content,
		Category: category,
		Hashtags: hashtags,
		Status:   models.PostStatusActive,
		AuthorIP: in.AuthorIP,
	}

	var stored *StoredImage
	if in.Image != nil && len(in.Image.Content) > 0 {
		if s.images == nil {
			return nil, models.NewValidationError("Image uploads are disabled")
		}
		img, err := s.images.Store(*in.Image)
		if err != nil {
			return nil, err
		}
		stored = img
		post.ImageURL = img.URL
	}

	ctx, done := observability.StartOperation(ctx, "post.create", "posts")
	err := s.postRepo.Create(ctx, post)
	done(err)
	if err != nil {
		s.images.Remove(stored)
		return nil, classify(ctx, "post.create", err)
	}
	return post, nil
}

// ListPosts returns a newest-first page of active posts.
func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]*models.Post, error) {
	filter := repository.ListFilter{Limit: in.Limit, Offset: in.Offset}
	if filter.Limit <= 0 {
		filter.Limit = DefaultPostPageSize
	}
	if filter.Limit > MaxPostPageSize {
		filter.Limit = MaxPostPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	if raw := strings.TrimSpace(in.Category); raw != "" && !strings.EqualFold(raw, "all") {
		category, ok := models.NormalizeCategory(raw)
		if !ok {
			return nil, models.NewValidationError("Invalid category")
		}
		filter.Category = category
	}

	posts, err := s.postRepo.List(ctx, filter, in.Visitor)
	if err != nil {
		return nil, classify(ctx, "post.list", err)
	}
	return posts, nil
}

func (s *PostService) GetPost(ctx context.Context, id uint, visitor string) (*models.Post, error) {
	post, err := s.postRepo.GetActive(ctx, id, visitor)
	if err != nil {
		return nil, classify(ctx, "post.get", err)
	}
	return post, nil
}

// Trending returns the highest scoring active posts, served from Redis for
// a short TTL when caching is configured.
func (s *PostService) Trending(ctx context.Context) ([]*models.Post, error) {
	t := s.tuning
	var posts []*models.Post
	key := cache.TrendingKey(t.TrendingViewWeight, t.TrendingLikeWeight, t.TrendingLimit)
	err := cache.Aside(ctx, key, &posts, t.TrendingCacheTTL, func() error {
		var err error
		posts, err = s.postRepo.Trending(ctx, t.TrendingViewWeight, t.TrendingLikeWeight, t.TrendingLimit)
		return err
	})
	if err != nil {
		return nil, classify(ctx, "post.trending", err)
	}
	return posts, nil
}
