// Command main runs the database seeder for Warbler.
package main

import (
	"flag"
	"log"

	"warbler/internal/config"
	"warbler/internal/database"
	"warbler/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numMessages := flag.Int("messages", 300, "Number of messages to create")
	follows := flag.Int("follows", 10, "Follows per user")
	likes := flag.Int("likes", 20, "Likes per user")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	fast := flag.Bool("fast", false, "Store the demo password unhashed (local development only)")
	randomSeed := flag.Int64("seed", 0, "Random seed (0 picks one from the clock)")
	flag.Parse()

	log.Printf("Target: %d users, %d messages, clean=%v\n", *numUsers, *numMessages, *shouldClean)

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

	res, err := seed.NewSeeder(db).Run(seed.Options{
		NumUsers:       *numUsers,
		NumMessages:    *numMessages,
		FollowsPerUser: *follows,
		LikesPerUser:   *likes,
		ShouldClean:    *shouldClean,
		SkipBcrypt:     *fast,
		RandomSeed:     *randomSeed,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Done: %d users, %d messages, %d follows, %d likes", res.Users, res.Messages, res.Follows, res.Likes)
	log.Printf("All seeded users have the password: %s", seed.DemoPassword)
}
