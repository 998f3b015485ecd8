// Command main runs the database seeder for Aurelo.
package main

import (
	"flag"
	"log"

	"aurelo/internal/config"
	"aurelo/internal/database"
	"aurelo/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 40, "Number of users to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	fixture := flag.String("fixture", "", "Apply a YAML fixture instead of random data")
	flag.Parse()

	log.Println("Database Seeder")
	log.Println("===============")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *fixture == "" && cfg.SeedFixture != "" {
		*fixture = cfg.SeedFixture
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db)

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	if *fixture != "" {
		f, err := seed.LoadFixture(*fixture)
		if err != nil {
			log.Fatalf("Fixture load failed: %v", err)
		}
		if err := s.Apply(f); err != nil {
			log.Fatalf("Fixture seeding failed: %v", err)
		}
		log.Printf("Applied fixture %s (%d users)", *fixture, len(f.Users))
	} else {
		users, err := s.SeedRoster(*numUsers)
		if err != nil {
			log.Fatalf("Roster seeding failed: %v", err)
		}
		if _, err := s.SeedMarketplace(users); err != nil {
			log.Fatalf("Marketplace seeding failed: %v", err)
		}
	}

	log.Println("All done! The database is populated with development data.")
	log.Printf("All seeded users share the password: %s", seed.SharedPassword)
}
