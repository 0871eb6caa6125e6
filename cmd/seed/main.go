// Command main runs the database seeder for Postboard.
package main

import (
	"flag"
	"log"
	"sort"
	"strings"

	"postboard/internal/config"
	"postboard/internal/database"
	"postboard/internal/seed"
)

func main() {
	numPosts := flag.Int("posts", 60, "Number of posts to create")
	numVisitors := flag.Int("visitors", 40, "Number of distinct fake visitor addresses")
	maxComments := flag.Int("comments", 5, "Maximum comments per post")
	reports := flag.Int("reports", 1, "Maximum reports per post")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	preset := flag.String("preset", "default", "Category distribution preset")
	randomSeed := flag.Int64("seed", 0, "Random seed (0 uses the clock)")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")

	dist, ok := seed.CategoryDistributions[*preset]
	if !ok {
		names := make([]string, 0, len(seed.CategoryDistributions))
		for name := range seed.CategoryDistributions {
			names = append(names, name)
		}
		sort.Strings(names)
		log.Fatalf("Unknown preset %q (available: %s)", *preset, strings.Join(names, ", "))
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db, seed.Options{
		NumPosts:       *numPosts,
		NumVisitors:    *numVisitors,
		MaxComments:    *maxComments,
		ReportsPerPost: *reports,
		ShouldClean:    *shouldClean,
		RandomSeed:     *randomSeed,
		Distribution:   dist,
	})
	if _, err := s.Run(); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with demo data.")
}
