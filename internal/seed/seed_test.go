package seed

import (
	"testing"

	"postboard/internal/models"
	"postboard/internal/testutil"
)

func TestComputeCounts_Default(t *testing.T) {
	counts := computeCounts(10, defaultDistribution)
	sum := 0
	for _, n := range counts {
		sum += n
	}
	if sum != 10 {
		t.Fatalf("sum mismatch: got %d", sum)
	}
	if counts["Social"] != 3 || counts["Tech"] != 2 || counts["Travel"] != 1 {
		t.Fatalf("unexpected default counts: %v", counts)
	}
}

func TestComputeCounts_Leftovers(t *testing.T) {
	counts := computeCounts(7, defaultDistribution)
	if counts["Tech"] != 2 || counts["Social"] != 3 || counts["Education"] != 1 || counts["Jobs"] != 1 {
		t.Fatalf("unexpected leftover placement: %v", counts)
	}
	if counts["Health"] != 0 || counts["Finance"] != 0 || counts["Travel"] != 0 {
		t.Fatalf("leftovers overflowed: %v", counts)
	}
}

func TestComputeCounts_Preset(t *testing.T) {
	d, ok := CategoryDistributions["tech"]
	if !ok {
		t.Fatalf("tech distribution not found")
	}
	counts := computeCounts(10, d)
	if counts["Tech"] != 6 || counts["Jobs"] != 2 || counts["Education"] != 2 || counts["Social"] != 0 {
		t.Fatalf("unexpected tech counts: %v", counts)
	}
}

func TestSeeder_CountersMatchLedger(t *testing.T) {
	db := testutil.NewTestDB(t)
	s := NewSeeder(db, Options{NumPosts: 12, NumVisitors: 8, MaxComments: 3, ReportsPerPost: 1, RandomSeed: 42})

	sum, err := s.Run()
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if sum.Posts != 12 {
		t.Fatalf("expected 12 posts, got %d", sum.Posts)
	}

	var posts []models.Post
	if err := db.Find(&posts).Error; err != nil {
		t.Fatalf("load posts: %v", err)
	}
	for _, p := range posts {
		var likes, views int64
		db.Model(&models.PostLike{}).Where("post_id = ?", p.ID).Count(&likes)
		db.Model(&models.PostView{}).Where("post_id = ?", p.ID).Count(&views)
		if p.Likes != likes || p.Views != views {
			t.Fatalf("post %d counters drifted: likes %d/%d views %d/%d", p.ID, p.Likes, likes, p.Views, views)
		}
		if p.Status != models.PostStatusActive {
			t.Fatalf("post %d seeded with status %s", p.ID, p.Status)
		}
	}

	var comments int64
	db.Model(&models.Comment{}).Count(&comments)
	if int(comments) != sum.Comments {
		t.Fatalf("comment count mismatch: %d vs %d", comments, sum.Comments)
	}
}

func TestSeeder_ClearAll(t *testing.T) {
	db := testutil.NewTestDB(t)
	s := NewSeeder(db, Options{NumPosts: 3, MaxComments: 2, RandomSeed: 7})
	if _, err := s.Run(); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if err := s.ClearAll(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	for _, model := range []interface{}{&models.Post{}, &models.Comment{}, &models.PostLike{}, &models.PostView{}, &models.Report{}} {
		var n int64
		db.Model(model).Count(&n)
		if n != 0 {
			t.Fatalf("%T not cleared: %d rows", model, n)
		}
	}
}
