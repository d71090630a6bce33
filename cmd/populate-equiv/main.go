// populate-equiv backfills the username equivalence table for accounts that
// predate equivalence tracking. Walks the account table in primary-key order
// in bounded batches, skips temporary accounts, and never overwrites rows
// written since. Safe to re-run.
package main

import (
	"context"
	"flag"
	"log"

	accountrepo "wiki-identity-bridge/internal/account/repository"
	"wiki-identity-bridge/internal/config"
	"wiki-identity-bridge/internal/db"
	"wiki-identity-bridge/internal/equivalence"
	equivrepo "wiki-identity-bridge/internal/equivalence/repository"
	equivservice "wiki-identity-bridge/internal/equivalence/service"
)

func main() {
	batchSize := flag.Int("batch-size", 0, "Accounts per batch (default EQUIV_BATCH_SIZE)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}
	if *batchSize <= 0 {
		*batchSize = cfg.EquivBatchSize
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	populator := equivservice.NewPopulator(
		accountrepo.NewPostgresRepository(conn),
		equivrepo.NewPostgresRepository(conn),
		equivalence.NewNormalizer(),
		equivservice.NoopWaiter{},
		*batchSize,
	)

	count, err := populator.Run(context.Background())
	if err != nil {
		log.Fatalf("populate-equiv: %v (%d account(s) written)", err, count)
	}
	log.Printf("populate-equiv: done, %d account(s) written", count)
}
