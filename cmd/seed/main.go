package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/quillhub/quillhub/internal/database"
	"github.com/quillhub/quillhub/internal/models"
	"github.com/quillhub/quillhub/internal/seed"
)

func main() {
	_ = godotenv.Load()

	command := "dev"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "dev":
		seedDev()
	case "clean":
		cleanSeed()
	default:
		fmt.Println("Usage: seed [dev|clean]")
		fmt.Println("  dev   - Seed development database with realistic data")
		fmt.Println("  clean - Remove all data (use with caution)")
		os.Exit(1)
	}
}

func seedDev() {
	log.Println("Seeding development database...")

	if err := database.Initialize(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	seeder := seed.NewSeeder(database.DB)
	if err := seeder.SeedDev(); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seeding complete. Seeded accounts log in with password 'password1234'.")
}

func cleanSeed() {
	log.Println("Removing all data...")

	if err := database.Initialize(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	tables := []interface{}{
		&models.CommentLike{},
		&models.PostLike{},
		&models.Picture{},
		&models.Comment{},
		&models.Post{},
		&models.Follow{},
		&models.Account{},
	}
	for _, table := range tables {
		if err := database.DB.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Unscoped().Delete(table).Error; err != nil {
			log.Fatalf("Failed to clean table: %v", err)
		}
	}

	log.Println("All data removed")
}
