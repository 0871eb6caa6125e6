// Package testutil provides shared test fixtures for backend tests.
package testutil

import (
	"bytes"
	"image"
	"image/png"
	"path/filepath"
	"testing"
	"time"

	"postboard/internal/database"
	"postboard/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewTestDB opens a migrated SQLite database in a per-test temp directory.
// A file-backed database is used so concurrent connections share one store.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"), 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// CreatePost inserts an active post with the given title and counters.
func CreatePost(t testing.TB, db *gorm.DB, title string, views, likes int64) *models.Post {
	t.Helper()
	post := &models.Post{
		Title:    title,
		Content:  "content for " + title,
		Category: models.DefaultCategory,
		Views:    views,
		Likes:    likes,
		Status:   models.PostStatusActive,
		AuthorIP: "10.0.0.1",
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

// CreateComment inserts a comment on postID.
func CreateComment(t testing.TB, db *gorm.DB, postID uint, content string) *models.Comment {
	t.Helper()
	comment := &models.Comment{PostID: postID, Content: content, AuthorIP: "10.0.0.2"}
	require.NoError(t, db.Create(comment).Error)
	return comment
}

// ReloadPost fetches the stored state of a post.
func ReloadPost(t testing.TB, db *gorm.DB, id uint) *models.Post {
	t.Helper()
	var post models.Post
	require.NoError(t, db.First(&post, id).Error)
	return &post
}

// TinyPNG returns an encoded blank PNG of the given size.
func TinyPNG(t testing.TB, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	buf := bytes.NewBuffer(nil)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
