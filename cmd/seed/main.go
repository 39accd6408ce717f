// Command seed fills the community database with demo users and posts.
package main

import (
	"context"
	"flag"
	"log"

	"racommunity/internal/config"
	"racommunity/internal/database"
	"racommunity/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	fast := flag.Bool("fast", false, "Store plaintext passwords instead of bcrypt hashes")
	dryRun := flag.Bool("dry-run", false, "Generate data without writing to the database")
	seedValue := flag.Int64("seed", 0, "Random seed for reproducible data (0 = time based)")
	flag.Parse()

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

	_, err = seed.Seed(context.Background(), db, seed.Options{
		NumUsers:    *numUsers,
		NumPosts:    *numPosts,
		ShouldClean: *shouldClean,
		Factory: seed.FactoryOptions{
			Seed:       *seedValue,
			SkipBcrypt: *fast,
			DryRun:     *dryRun,
		},
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("All done! Seeded users have the password:", seed.DefaultPassword)
}
