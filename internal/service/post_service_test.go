package service

import (
	"context"
	"testing"
	"time"

	"postboard/internal/config"
	"postboard/internal/models"
	"postboard/internal/profanity"
	"postboard/internal/repository"
	"postboard/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostService_CreatePost(t *testing.T) {
	f := newFixture(t, DefaultTuning(), nil, "")
	ctx := context.Background()

	post, err := f.posts.CreatePost(ctx, CreatePostInput{
		Title:    "  Hello <script>alert(1)</script>world ",
		Content:  `<p onclick="x()">Body <b>bold</b></p>`,
		Category: "tech",
		Hashtags: "#go, #fiber!",
		AuthorIP: "1.2.3.4",
	})
	require.NoError(t, err)
	assert.NotZero(t, post.ID)
	assert.Equal(t, "Hello world", post.Title)
	assert.Equal(t, "<p>Body <b>bold</b></p>", post.Content)
	assert.Equal(t, "Tech", post.Category)
	assert.Equal(t, "go fiber", post.Hashtags)
	assert.Equal(t, models.PostStatusActive, post.Status)

	stored := testutil.ReloadPost(t, f.db, post.ID)
	assert.Equal(t, "1.2.3.4", stored.AuthorIP)
}

func TestPostService_CreatePostDefaultsCategory(t *testing.T) {
	f := newFixture(t, DefaultTuning(), nil, "")

	post, err := f.posts.CreatePost(context.Background(), CreatePostInput{Title: "t", Content: "c"})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCategory, post.Category)
}

func TestPostService_CreatePostRejections(t *testing.T) {
	f := newFixture(t, DefaultTuning(), nil, "")
	ctx := context.Background()

	tests := []struct {
		name string
		in   CreatePostInput
		code string
	}{
		{"missing title", CreatePostInput{Content: "c"}, models.CodeValidation},
		{"markup only content", CreatePostInput{Title: "t", Content: "<script>x</script>"}, models.CodeValidation},
		{"unknown category", CreatePostInput{Title: "t", Content: "c", Category: "Gossip"}, models.CodeValidation},
		{"profane title", CreatePostInput{Title: "Damn", Content: "c"}, models.CodeModeration},
		{"profane hashtags", CreatePostInput{Title: "t", Content: "c", Hashtags: "#shitpost"}, models.CodeModeration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.posts.CreatePost(ctx, tt.in)
			assert.True(t, models.IsCode(err, tt.code), "got %v", err)
		})
	}

	var count int64
	require.NoError(t, f.db.Model(&models.Post{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPostService_CreatePostWithImage(t *testing.T) {
	db := testutil.NewTestDB(t)
	images := NewImageService(&config.Config{UploadDir: t.TempDir(), ImageMaxUploadSizeMB: 1})
	svc := NewPostService(repository.NewPostRepository(db, time.Second), profanity.MustDefault(), images, DefaultTuning())

	post, err := svc.CreatePost(context.Background(), CreatePostInput{
		Title:   "picture",
		Content: "see attached",
		Image:   &UploadImageInput{Filename: "pic.png", Content: testutil.TinyPNG(t, 8, 8)},
	})
	require.NoError(t, err)
	assert.Contains(t, post.ImageURL, ImageURLPrefix+"/")

	_, err = svc.CreatePost(context.Background(), CreatePostInput{
		Title:   "picture",
		Content: "bad attachment",
		Image:   &UploadImageInput{Filename: "pic.exe", Content: []byte("MZ")},
	})
	assert.True(t, models.IsCode(err, models.CodeValidation))
}

func TestPostService_ListPosts(t *testing.T) {
	f := newFixture(t, DefaultTuning(), nil, "")
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		testutil.CreatePost(t, f.db, "p", 0, 0)
	}

	posts, err := f.posts.ListPosts(ctx, ListPostsInput{})
	require.NoError(t, err)
	assert.Len(t, posts, DefaultPostPageSize)

	posts, err = f.posts.ListPosts(ctx, ListPostsInput{Category: "all", Limit: 1000})
	require.NoError(t, err)
	assert.Len(t, posts, 7)

	posts, err = f.posts.ListPosts(ctx, ListPostsInput{Category: "travel"})
	require.NoError(t, err)
	assert.Empty(t, posts)

	_, err = f.posts.ListPosts(ctx, ListPostsInput{Category: "nope"})
	assert.True(t, models.IsCode(err, models.CodeValidation))
}

func TestPostService_GetPostNotFound(t *testing.T) {
	f := newFixture(t, DefaultTuning(), nil, "")

	_, err := f.posts.GetPost(context.Background(), 77, "")
	assert.True(t, models.IsCode(err, models.CodeNotFound))
	assert.Equal(t, 404, models.HTTPStatus(err))
}

func TestPostService_TrendingCached(t *testing.T) {
	useMiniredis(t)
	tuning := DefaultTuning()
	tuning.TrendingCacheTTL = time.Minute
	f := newFixture(t, tuning, nil, "")
	ctx := context.Background()

	first := testutil.CreatePost(t, f.db, "first", 10, 0)
	testutil.CreatePost(t, f.db, "second", 0, 1)

	posts, err := f.posts.Trending(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, first.ID, posts[0].ID)
	assert.Equal(t, int64(10), posts[0].Score)

	// Served from cache until the TTL expires.
	testutil.CreatePost(t, f.db, "third", 1000, 0)
	posts, err = f.posts.Trending(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 2)
}

func TestPostService_TrendingUncached(t *testing.T) {
	f := newFixture(t, DefaultTuning(), nil, "")
	ctx := context.Background()

	testutil.CreatePost(t, f.db, "a", 1, 0)
	posts, err := f.posts.Trending(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 1)

	top := testutil.CreatePost(t, f.db, "b", 0, 3)
	posts, err = f.posts.Trending(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, top.ID, posts[0].ID)
}
