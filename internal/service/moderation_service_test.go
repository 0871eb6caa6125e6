package service

import (
	"context"
	"testing"
	"time"

	"postboard/internal/cache"
	"postboard/internal/models"
	"postboard/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModerationService_SetStatus(t *testing.T) {
	f := newFixture(t, DefaultTuning(), nil, "")
	ctx := context.Background()
	post := testutil.CreatePost(t, f.db, "p", 0, 0)

	require.NoError(t, f.moderation.SetStatus(ctx, post.ID, ModerateFlagged))
	assert.Equal(t, models.PostStatusFlagged, testutil.ReloadPost(t, f.db, post.ID).Status)

	require.NoError(t, f.moderation.SetStatus(ctx, post.ID, ModerateActive))
	assert.Equal(t, models.PostStatusActive, testutil.ReloadPost(t, f.db, post.ID).Status)

	err := f.moderation.SetStatus(ctx, post.ID, "archived")
	assert.True(t, models.IsCode(err, models.CodeValidation))

	err = f.moderation.SetStatus(ctx, 321, ModerateDeleted)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestModerationService_HardDelete(t *testing.T) {
	f := newFixture(t, DefaultTuning(), nil, "report_cooldown=off")
	ctx := context.Background()
	post := testutil.CreatePost(t, f.db, "p", 0, 0)
	testutil.CreateComment(t, f.db, post.ID, "c")
	_, err := f.engagement.ToggleLike(ctx, post.ID, "1.1.1.1", models.LikeActionAdd)
	require.NoError(t, err)
	_, err = f.reports.FileReport(ctx, FileReportInput{PostID: &post.ID, Reporter: "a"})
	require.NoError(t, err)

	require.NoError(t, f.moderation.SetStatus(ctx, post.ID, ModerateHardDelete))

	stats, err := f.moderation.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalPosts)
	assert.Zero(t, stats.TotalReports)

	err = f.moderation.SetStatus(ctx, post.ID, ModerateHardDelete)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestModerationService_BanLifecycle(t *testing.T) {
	mr, _ := useMiniredis(t)
	f := newFixture(t, DefaultTuning(), nil, "")
	ctx := context.Background()

	banned, err := f.moderation.IsBanned(ctx, "6.6.6.6")
	require.NoError(t, err)
	assert.False(t, banned)
	assert.True(t, mr.Exists(cache.BannedKey("6.6.6.6")))

	require.NoError(t, f.moderation.BanIdentity(ctx, " 6.6.6.6 ", ""))
	assert.False(t, mr.Exists(cache.BannedKey("6.6.6.6")))

	banned, err = f.moderation.IsBanned(ctx, "6.6.6.6")
	require.NoError(t, err)
	assert.True(t, banned)

	rows, err := f.moderation.ListBanned(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.DefaultBanReason, rows[0].Reason)

	require.NoError(t, f.moderation.UnbanIdentity(ctx, "6.6.6.6"))
	require.NoError(t, f.moderation.UnbanIdentity(ctx, "6.6.6.6"))

	banned, err = f.moderation.IsBanned(ctx, "6.6.6.6")
	require.NoError(t, err)
	assert.False(t, banned)

	err = f.moderation.BanIdentity(ctx, "  ", "spam")
	assert.True(t, models.IsCode(err, models.CodeValidation))
}

func TestModerationService_AdminLists(t *testing.T) {
	f := newFixture(t, DefaultTuning(), nil, "report_cooldown=off")
	ctx := context.Background()
	post := testutil.CreatePost(t, f.db, "listed", 0, 0)
	require.NoError(t, f.moderation.SetStatus(ctx, post.ID, ModerateFlagged))
	other := testutil.CreatePost(t, f.db, "other", 0, 0)
	_, err := f.reports.FileReport(ctx, FileReportInput{PostID: &other.ID, Reporter: "r", Reason: "spam"})
	require.NoError(t, err)

	flagged, err := f.moderation.ListFlagged(ctx)
	require.NoError(t, err)
	require.Len(t, flagged, 1)
	assert.Equal(t, post.ID, flagged[0].ID)

	recent, err := f.moderation.ListRecentPosts(ctx)
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	reports, err := f.moderation.ListReports(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "other", reports[0].PostTitle)
	assert.Equal(t, "spam", reports[0].Reason)
}

func trendingIDs(t *testing.T, f *fixture) []uint {
	t.Helper()
	posts, err := f.posts.Trending(context.Background())
	require.NoError(t, err)
	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestModerationService_StatusChangeRefreshesTrending(t *testing.T) {
	mr, _ := useMiniredis(t)
	tuning := DefaultTuning()
	tuning.TrendingCacheTTL = time.Minute
	f := newFixture(t, tuning, nil, "")
	ctx := context.Background()

	top := testutil.CreatePost(t, f.db, "top", 50, 0)
	gone := testutil.CreatePost(t, f.db, "gone", 20, 0)
	rest := testutil.CreatePost(t, f.db, "rest", 1, 0)
	require.Equal(t, []uint{top.ID, gone.ID, rest.ID}, trendingIDs(t, f))
	require.NotEmpty(t, mr.Keys())

	require.NoError(t, f.moderation.SetStatus(ctx, top.ID, ModerateFlagged))
	assert.Equal(t, []uint{gone.ID, rest.ID}, trendingIDs(t, f))

	require.NoError(t, f.moderation.SetStatus(ctx, gone.ID, ModerateHardDelete))
	assert.Equal(t, []uint{rest.ID}, trendingIDs(t, f))

	require.NoError(t, f.moderation.SetStatus(ctx, top.ID, ModerateActive))
	assert.Equal(t, []uint{top.ID, rest.ID}, trendingIDs(t, f))
}
