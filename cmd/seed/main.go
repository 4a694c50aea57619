// Command main runs the demo data seeder.
package main

import (
	"flag"
	"log"

	"navega/internal/config"
	"navega/internal/database"
	"navega/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 25, "Number of users to create")
	numResults := flag.Int("results", 300, "Number of quiz results to create")
	numPosts := flag.Int("posts", 40, "Number of forum posts to create")
	maxDays := flag.Int("days", 90, "Spread created_at over the last N days")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	dryRun := flag.Bool("dry-run", false, "Build fixtures without writing to the database")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{SkipReplica: true})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sum, err := seed.Seed(db, seed.Config{
		NumUsers:    *numUsers,
		NumResults:  *numResults,
		NumPosts:    *numPosts,
		ShouldClean: *shouldClean,
		Options:     seed.Options{DryRun: *dryRun, MaxDays: *maxDays},
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Created %d users, %d results, %d posts, %d comments, %d identifies",
		sum.Users, sum.Results, sum.Posts, sum.Comments, sum.Identifies)
	log.Printf("All seeded users have the password: %s", seed.DemoPassword)
}
