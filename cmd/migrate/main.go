package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pratik-mahalle/dashlist/internal/config"
	"github.com/pratik-mahalle/dashlist/internal/repository/postgres"
	"github.com/pratik-mahalle/dashlist/migrations"
)

// Usage: migrate [up|status]
func main() {
	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	db, err := postgres.New(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	fmt.Printf("Connected to %s database\n", cfg.Database.Driver)

	migrationsFS, err := migrations.FS(cfg.Database.Driver)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	switch cmd {
	case "status":
		pending, err := postgres.PendingMigrations(ctx, db, migrationsFS)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to check migration status: %v\n", err)
			os.Exit(1)
		}
		if len(pending) == 0 {
			fmt.Println("Database is up to date")
			return
		}
		for _, name := range pending {
			fmt.Printf("pending: %s\n", name)
		}
	case "up":
		applied, err := postgres.RunMigrations(ctx, db, migrationsFS)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
			os.Exit(1)
		}
		if applied == 0 {
			fmt.Println("No pending migrations")
			return
		}
		fmt.Printf("Applied %d migrations\n", applied)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q (want up or status)\n", cmd)
		os.Exit(2)
	}
}
