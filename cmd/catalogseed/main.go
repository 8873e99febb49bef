// Command catalogseed loads the YAML question catalog into Postgres.
// Seeding is idempotent, so it is safe to run on every deploy.
package main

import (
	"context"
	"log"

	"github.com/fairyhunter13/interview-eval/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/interview-eval/internal/catalog"
	"github.com/fairyhunter13/interview-eval/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	repo := postgres.NewQuestionRepo(pool)
	n, err := catalog.SeedFile(ctx, repo, cfg.CatalogPath)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("seeded %d questions from %s", n, cfg.CatalogPath)
}
