// seed inserts development sample data for local testing.
// Idempotent: skips inserts if the dev account (DevAdmin) already exists.
package main

import (
	"context"
	"log"
	"os"
	"time"

	accountdomain "wiki-identity-bridge/internal/account/domain"
	accountrepo "wiki-identity-bridge/internal/account/repository"
	"wiki-identity-bridge/internal/config"
	"wiki-identity-bridge/internal/db"
	"wiki-identity-bridge/internal/equivalence"
	equivrepo "wiki-identity-bridge/internal/equivalence/repository"
)

const devAdminName = "DevAdmin"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	accounts := accountrepo.NewPostgresRepository(conn)
	equiv := equivrepo.NewPostgresRepository(conn)
	normalizer := equivalence.NewNormalizer()
	ctx := context.Background()

	existing, err := accounts.GetByName(ctx, devAdminName)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Println("Seed already applied (DevAdmin exists). Skipping.")
		os.Exit(0)
	}

	now := time.Now().UTC()
	seedAccounts := []*accountdomain.Account{
		{Name: devAdminName, Email: "admin@example.com", RealName: "Dev Admin", EmailConfirmedAt: &now},
		{Name: "Alice", Email: "alice@example.com", RealName: "Alice Example"},
		{Name: "Bob", Email: "bob@example.com"},
		// Temporary accounts stay out of equivalence tracking.
		{Name: "~2024-1", Temporary: true},
	}

	for _, a := range seedAccounts {
		if err := accounts.Create(ctx, a); err != nil {
			log.Fatalf("create account %s: %v", a.Name, err)
		}
		if a.Temporary {
			continue
		}
		if err := equiv.Upsert(ctx, a.ID, normalizer.Normalize(a.Name)); err != nil {
			log.Fatalf("equivalence row for %s: %v", a.Name, err)
		}
	}

	log.Println("Seed completed successfully.")
}
