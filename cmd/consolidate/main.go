package main

import (
	"context"
	"fmt"
	"os"

	"github.com/bizgrid/bizgrid-api/internal/config"
	"github.com/bizgrid/bizgrid-api/internal/database"
	"github.com/bizgrid/bizgrid-api/internal/services"
	"github.com/bizgrid/bizgrid-api/pkg/logger"
)

// consolidate folds the legacy customers and suppliers tables into
// business_entities. Safe to re-run; already-migrated rows are skipped.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Env: cfg.Env, Level: cfg.LogLevel})

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	summary, err := services.NewConsolidationService(db, log).Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("consolidation failed")
	}

	fmt.Printf("Processed %d customers and %d suppliers: %d created, %d merged, %d skipped, %d failed\n",
		summary.CustomersProcessed, summary.SuppliersProcessed,
		summary.Created, summary.Merged, summary.Skipped, summary.Failed)
	fmt.Printf("Entities now: %d customer-only, %d supplier-only, %d both\n",
		summary.CustomerOnly, summary.SupplierOnly, summary.Both)

	if summary.Failed > 0 {
		os.Exit(1)
	}
}
