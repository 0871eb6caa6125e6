package seed

import (
	"fmt"
	"log"

	"postboard/internal/models"

	"gorm.io/gorm"
)

// Distribution weights post categories for a seeding run.
type Distribution map[string]int

var defaultDistribution = Distribution{
	"Tech": 2, "Social": 3, "Education": 1, "Jobs": 1, "Health": 1, "Finance": 1, "Travel": 1,
}

// CategoryDistributions are the named presets accepted by the seed command.
var CategoryDistributions = map[string]Distribution{
	"default":   defaultDistribution,
	"tech":      {"Tech": 6, "Jobs": 2, "Education": 2},
	"lifestyle": {"Social": 4, "Health": 3, "Travel": 3},
}

// Options configuration for the seeder
type Options struct {
	NumPosts       int
	NumVisitors    int
	MaxComments    int
	MaxDays        int
	ShouldClean    bool
	RandomSeed     int64
	Distribution   Distribution
	ReportsPerPost int
}

// Summary counts what a seeding run created.
type Summary struct {
	Posts    int
	Comments int
	Likes    int
	Views    int
	Reports  int
}

// Seeder populates the database with demo data.
type Seeder struct {
	db      *gorm.DB
	opts    Options
	factory *Factory
}

// NewSeeder creates a Seeder. Missing options fall back to small defaults.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	if opts.NumVisitors <= 0 {
		opts.NumVisitors = 25
	}
	if opts.MaxComments < 0 {
		opts.MaxComments = 0
	}
	if len(opts.Distribution) == 0 {
		opts.Distribution = defaultDistribution
	}
	return &Seeder{db: db, opts: opts, factory: NewFactory(db, opts)}
}

// ClearAll removes every seeded row, children first.
func (s *Seeder) ClearAll() error {
	log.Println("🗑️  Clearing existing data...")
	all := s.db.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []interface{}{
		&models.Report{},
		&models.PostView{},
		&models.PostLike{},
		&models.Comment{},
		&models.Post{},
		&models.BlockedIP{},
	} {
		if err := all.Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}

// Run seeds posts with comments, likes, views and a few reports.
func (s *Seeder) Run() (*Summary, error) {
	log.Printf("🌱 Seeding %d posts from %d visitors...", s.opts.NumPosts, s.opts.NumVisitors)

	if s.opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return nil, err
		}
	}

	visitors := s.factory.Visitors(s.opts.NumVisitors)
	sum := &Summary{}
	counts := computeCounts(s.opts.NumPosts, s.opts.Distribution)

	for _, category := range models.Categories {
		for i := 0; i < counts[category]; i++ {
			if err := s.seedPost(category, visitors, sum); err != nil {
				return sum, err
			}
		}
	}

	log.Printf("✓ %d posts, %d comments, %d likes, %d views, %d reports",
		sum.Posts, sum.Comments, sum.Likes, sum.Views, sum.Reports)
	return sum, nil
}

func (s *Seeder) seedPost(category string, visitors []string, sum *Summary) error {
	f := s.factory
	post, err := f.CreatePost(category, f.faker.RandomString(visitors))
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	sum.Posts++

	for i, n := 0, f.faker.Number(0, s.opts.MaxComments); i < n; i++ {
		if _, err := f.CreateComment(post, f.faker.RandomString(visitors)); err != nil {
			return fmt.Errorf("create comment: %w", err)
		}
		sum.Comments++
	}

	shuffled := append([]string(nil), visitors...)
	f.faker.ShuffleStrings(shuffled)
	viewers := shuffled[:f.faker.Number(0, len(shuffled))]
	likers := viewers[:f.faker.Number(0, len(viewers)/2)]
	if err := f.CreateEngagement(post, viewers, likers); err != nil {
		return fmt.Errorf("create engagement: %w", err)
	}
	sum.Views += len(viewers)
	sum.Likes += len(likers)

	// Reports stay below any sensible flag threshold so seeded posts remain visible.
	reports := f.faker.Number(0, s.opts.ReportsPerPost)
	if reports > len(shuffled) {
		reports = len(shuffled)
	}
	for _, reporter := range shuffled[len(shuffled)-reports:] {
		if _, err := f.CreateReport(post, reporter); err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		sum.Reports++
	}
	return nil
}

// computeCounts splits total across the weighted categories. Leftovers from
// integer division go one each to weighted categories in canonical order.
func computeCounts(total int, d Distribution) map[string]int {
	counts := make(map[string]int, len(d))
	weight := 0
	for _, c := range models.Categories {
		weight += d[c]
	}
	if total <= 0 || weight <= 0 {
		return counts
	}

	assigned := 0
	for _, c := range models.Categories {
		counts[c] = total * d[c] / weight
		assigned += counts[c]
	}
	for assigned < total {
		for _, c := range models.Categories {
			if assigned == total {
				break
			}
			if d[c] > 0 {
				counts[c]++
				assigned++
			}
		}
	}
	return counts
}
