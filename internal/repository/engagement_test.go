package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"postboard/internal/database"
	"postboard/internal/models"
	"postboard/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngagementRepository_LikeToggle(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewEngagementRepository(db, time.Second)
	ctx := context.Background()
	post := testutil.CreatePost(t, db, "likes", 0, 0)

	res, err := repo.AddLike(ctx, post.ID, "1.1.1.1")
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, int64(1), res.Likes)

	res, err = repo.AddLike(ctx, post.ID, "1.1.1.1")
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, int64(1), res.Likes)

	liked, err := repo.HasLiked(ctx, post.ID, "1.1.1.1")
	require.NoError(t, err)
	assert.True(t, liked)

	res, err = repo.RemoveLike(ctx, post.ID, "1.1.1.1")
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, int64(0), res.Likes)

	res, err = repo.RemoveLike(ctx, post.ID, "1.1.1.1")
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, int64(0), res.Likes)
}

func TestEngagementRepository_RemoveLikeNeverNegative(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewEngagementRepository(db, time.Second)
	ctx := context.Background()
	post := testutil.CreatePost(t, db, "drifted", 0, 0)

	// A ledger row without a matching counter increment.
	require.NoError(t, db.Create(&models.PostLike{PostID: post.ID, IPAddress: "2.2.2.2"}).Error)

	res, err := repo.RemoveLike(ctx, post.ID, "2.2.2.2")
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, int64(0), res.Likes)
}

func TestEngagementRepository_ConcurrentLikes(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewEngagementRepository(db, 5*time.Second)
	ctx := context.Background()
	post := testutil.CreatePost(t, db, "popular", 0, 0)

	const visitors = 20
	var wg sync.WaitGroup
	errs := make(chan error, visitors*2)
	for i := 0; i < visitors; i++ {
		wg.Add(2)
		addr := fmt.Sprintf("10.1.0.%d", i)
		// Each visitor races itself as well as the others.
		for j := 0; j < 2; j++ {
			go func() {
				defer wg.Done()
				if _, err := repo.AddLike(ctx, post.ID, addr); err != nil {
					errs <- err
				}
			}()
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var ledger int64
	require.NoError(t, db.Model(&models.PostLike{}).Where("post_id = ?", post.ID).Count(&ledger).Error)
	assert.Equal(t, int64(visitors), ledger)
	assert.Equal(t, int64(visitors), testutil.ReloadPost(t, db, post.ID).Likes)
}

func TestEngagementRepository_RecordView(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewEngagementRepository(db, time.Second)
	ctx := context.Background()
	post := testutil.CreatePost(t, db, "views", 0, 0)

	outcome, err := repo.RecordView(ctx, post.ID, "3.3.3.3")
	require.NoError(t, err)
	assert.Equal(t, models.ViewRecorded, outcome)

	outcome, err = repo.RecordView(ctx, post.ID, "3.3.3.3")
	require.NoError(t, err)
	assert.Equal(t, models.ViewAlreadyViewed, outcome)

	outcome, err = repo.RecordView(ctx, post.ID, "4.4.4.4")
	require.NoError(t, err)
	assert.Equal(t, models.ViewRecorded, outcome)

	assert.Equal(t, int64(2), testutil.ReloadPost(t, db, post.ID).Views)
}

func TestEngagementRepository_ConcurrentViewsSameVisitor(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewEngagementRepository(db, 5*time.Second)
	ctx := context.Background()
	post := testutil.CreatePost(t, db, "views", 0, 0)

	var wg sync.WaitGroup
	outcomes := make(chan models.ViewOutcome, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome, err := repo.RecordView(ctx, post.ID, "5.5.5.5")
			if err == nil {
				outcomes <- outcome
			}
		}()
	}
	wg.Wait()
	close(outcomes)

	recorded := 0
	for o := range outcomes {
		if o == models.ViewRecorded {
			recorded++
		}
	}
	assert.Equal(t, 1, recorded)
	assert.Equal(t, int64(1), testutil.ReloadPost(t, db, post.ID).Views)
}

func TestEngagementRepository_MissingOrDeletedPost(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewEngagementRepository(db, time.Second)
	ctx := context.Background()

	_, err := repo.AddLike(ctx, 999, "1.1.1.1")
	assert.ErrorIs(t, err, ErrPostNotFound)

	post := testutil.CreatePost(t, db, "gone", 0, 0)
	require.NoError(t, db.Model(post).UpdateColumn("status", models.PostStatusDeleted).Error)

	_, err = repo.RecordView(ctx, post.ID, "1.1.1.1")
	assert.ErrorIs(t, err, ErrPostNotFound)
	_, err = repo.RemoveLike(ctx, post.ID, "1.1.1.1")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestEngagementRepository_FlaggedPostIsHidden(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewEngagementRepository(db, time.Second)
	ctx := context.Background()

	post := testutil.CreatePost(t, db, "under review", 4, 2)
	require.NoError(t, db.Model(post).UpdateColumn("status", models.PostStatusFlagged).Error)

	_, err := repo.AddLike(ctx, post.ID, "1.1.1.1")
	assert.ErrorIs(t, err, ErrPostNotFound)
	_, err = repo.RemoveLike(ctx, post.ID, "1.1.1.1")
	assert.ErrorIs(t, err, ErrPostNotFound)
	_, err = repo.RecordView(ctx, post.ID, "1.1.1.1")
	assert.ErrorIs(t, err, ErrPostNotFound)

	reloaded := testutil.ReloadPost(t, db, post.ID)
	assert.Equal(t, int64(4), reloaded.Views)
	assert.Equal(t, int64(2), reloaded.Likes)
}

func TestEngagementRepository_LockTimeoutIsTransient(t *testing.T) {
	db, mock := mockPostgres(t)
	repo := NewEngagementRepository(db, 250*time.Millisecond)

	mock.ExpectBegin()
	mock.ExpectExec("SET LOCAL lock_timeout = '250ms'").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "posts"`).
		WillReturnError(&pgconn.PgError{Code: "55P03", Message: "canceling statement due to lock timeout"})
	mock.ExpectRollback()

	_, err := repo.AddLike(context.Background(), 1, "1.1.1.1")
	require.Error(t, err)
	assert.True(t, database.IsTransient(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
