package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/geocoder89/recipehub/internal/config"
	"github.com/geocoder89/recipehub/internal/db"
	"github.com/geocoder89/recipehub/internal/repo/postgres"
	"github.com/geocoder89/recipehub/internal/security"
)

// migrate applies pending schema migrations and seeds the bootstrap admin,
// then exits.
func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)

	defer stop()

	pool, err := db.NewPool(ctx, cfg.DBURL)

	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate failed: %v", err)
	}

	log.Println("migrations applied")

	users := postgres.NewUsersRepo(pool, nil)
	hasher := security.NewBcryptHasher(cfg.BcryptCost, nil)

	created, err := db.EnsureAdminUser(ctx, users, hasher, cfg)

	if err != nil {
		log.Fatalf("admin seed failed: %v", err)
	}

	if created {
		log.Printf("bootstrap admin %s created", cfg.AdminEmail)
	}
}
