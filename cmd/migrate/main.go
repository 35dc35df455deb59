// Command migrate applies the schema. The server only migrates on startup
// outside production, so production deploys run this first.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"warbler/internal/config"
	"warbler/internal/database"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate/main.go <auto|status>")
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := gorm.Open(postgres.Open(database.DSN(cfg)), database.GormConfig())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(flag.Arg(0))) {
	case "auto":
		if err := database.Migrate(db); err != nil {
			return err
		}
		log.Println("automigrations applied")
	case "status":
		for _, table := range []string{"users", "messages", "follows", "likes"} {
			log.Printf("%-8s present=%t", table, db.Migrator().HasTable(table))
		}
	default:
		return usage()
	}
	return nil
}
