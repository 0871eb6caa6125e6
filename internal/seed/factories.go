// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"strings"
	"time"

	"postboard/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db    *gorm.DB
	faker *gofakeit.Faker
	opts  Options
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
// A zero Options.RandomSeed seeds from the clock.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{db: db, faker: gofakeit.New(seed), opts: opts}
}

// Visitors returns n distinct fake visitor addresses.
func (f *Factory) Visitors(n int) []string {
	seen := make(map[string]struct{}, n)
	out := make([]string, 0, n)
	for len(out) < n {
		ip := f.faker.IPv4Address()
		if _, dup := seen[ip]; dup {
			continue
		}
		seen[ip] = struct{}{}
		out = append(out, ip)
	}
	return out
}

// BuildPost constructs an active post in category without persisting it.
func (f *Factory) BuildPost(category, author string, overrides ...func(*models.Post)) *models.Post {
	title := strings.TrimSuffix(f.faker.Sentence(f.faker.Number(3, 7)), ".")
	post := &models.Post{
		Title:    title,
		Content:  f.faker.Paragraph(f.faker.Number(1, 3), f.faker.Number(2, 5), 12, "\n\n"),
		Category: category,
		Hashtags: f.hashtags(),
		Status:   models.PostStatusActive,
		AuthorIP: author,
	}

	// realistic created_at spread
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.faker.Number(0, maxDays*24*60)) * time.Minute
	post.CreatedAt = time.Now().Add(-back)

	if f.faker.Number(1, 10) <= 2 {
		post.ImageURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/600", f.faker.UUID())
	}

	for _, override := range overrides {
		override(post)
	}
	return post
}

// hashtags produces a space-separated run of tag tokens.
func (f *Factory) hashtags() string {
	n := f.faker.Number(0, 3)
	tags := make([]string, 0, n)
	for i := 0; i < n; i++ {
		tags = append(tags, strings.ToLower(f.faker.Noun()))
	}
	return strings.Join(tags, " ")
}

// CreatePost persists a post built by BuildPost.
func (f *Factory) CreatePost(category, author string, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(category, author, overrides...)
	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a comment on post authored by visitor.
func (f *Factory) CreateComment(post *models.Post, visitor string, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:    post.ID,
		Content:   f.faker.Sentence(f.faker.Number(4, 14)),
		AuthorIP:  visitor,
		CreatedAt: post.CreatedAt.Add(time.Duration(f.faker.Number(1, 72*60)) * time.Minute),
	}

	for _, override := range overrides {
		override(comment)
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateEngagement records likes and views from the given visitors and
// stores matching counters on the post. Every liker is also a viewer.
func (f *Factory) CreateEngagement(post *models.Post, viewers, likers []string) error {
	views := make([]models.PostView, 0, len(viewers))
	for _, ip := range viewers {
		views = append(views, models.PostView{PostID: post.ID, IPAddress: ip})
	}
	likes := make([]models.PostLike, 0, len(likers))
	for _, ip := range likers {
		likes = append(likes, models.PostLike{PostID: post.ID, IPAddress: ip})
	}

	return f.db.Transaction(func(tx *gorm.DB) error {
		if len(views) > 0 {
			if err := tx.CreateInBatches(&views, 200).Error; err != nil {
				return err
			}
		}
		if len(likes) > 0 {
			if err := tx.CreateInBatches(&likes, 200).Error; err != nil {
				return err
			}
		}
		post.Views = int64(len(views))
		post.Likes = int64(len(likes))
		return tx.Model(&models.Post{}).Where("id = ?", post.ID).
			Updates(map[string]interface{}{"views": post.Views, "likes": post.Likes}).Error
	})
}

// CreateReport files a report against post from reporter.
func (f *Factory) CreateReport(post *models.Post, reporter string) (*models.Report, error) {
	id := post.ID
	report := &models.Report{
		PostID:     &id,
		Reason:     f.faker.RandomString([]string{"spam", "off topic", "harassment", models.DefaultReportReason}),
		ReporterIP: reporter,
	}
	if err := f.db.Create(report).Error; err != nil {
		return nil, err
	}
	return report, nil
}
