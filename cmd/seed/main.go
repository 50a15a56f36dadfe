// Command main runs the database seeder for the admin hub.
package main

import (
	"flag"
	"log"

	"adminhub/internal/config"
	"adminhub/internal/database"
	"adminhub/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numEvents := flag.Int("events", 200, "Number of event posts to create")
	numDrafts := flag.Int("drafts", 5, "Number of admin drafts to create")
	numReports := flag.Int("reports", 30, "Number of post reports to create")
	numSOS := flag.Int("sos", 20, "Number of SOS alerts to create")
	numComments := flag.Int("comments", 200, "Number of comments to create")
	numBroadcasts := flag.Int("broadcasts", 10, "Number of sent notifications to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	preset := flag.String("preset", "", "Apply a seeder preset (minimal, demo, load)")
	dryRun := flag.Bool("dry-run", false, "Generate records without writing them")
	categoriesOnly := flag.Bool("categories-only", false, "Only install the built-in categories")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if *categoriesOnly {
		if err := seed.Categories(db); err != nil {
			log.Fatalf("❌ Category seeding failed: %v", err)
		}
		log.Println("✨ Built-in categories installed.")
		return
	}

	var s *seed.Seeder
	if *preset != "" {
		log.Printf("Applying preset: %s (ignoring count flags)\n", *preset)
		s, err = seed.NewSeederFromPreset(db, *preset)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
	} else {
		log.Printf("Target: %d users, %d events, %d reports, %d sos, clean=%v\n",
			*numUsers, *numEvents, *numReports, *numSOS, *shouldClean)
		s = seed.NewSeeder(db, seed.Options{
			Users:      *numUsers,
			Events:     *numEvents,
			Drafts:     *numDrafts,
			Reports:    *numReports,
			SOS:        *numSOS,
			Comments:   *numComments,
			Broadcasts: *numBroadcasts,
			DryRun:     *dryRun,
		})
	}

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("❌ Cleanup failed: %v", err)
		}
	}

	if _, err := s.Run(); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with test data.")
	log.Println("📧 All seeded users have the password: password123")
}
