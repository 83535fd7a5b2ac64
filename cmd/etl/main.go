package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/stonebridge-data/propetl/internal/config"
	"github.com/stonebridge-data/propetl/internal/database"
	"github.com/stonebridge-data/propetl/internal/logger"
	"github.com/stonebridge-data/propetl/internal/normalize"
	"github.com/stonebridge-data/propetl/internal/report"
	"github.com/stonebridge-data/propetl/internal/repository"
	"github.com/stonebridge-data/propetl/internal/rules"
	"github.com/stonebridge-data/propetl/internal/source"
	"github.com/stonebridge-data/propetl/internal/validate"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Env).With().
		Str("run_id", uuid.NewString()).
		Logger()

	log.Info().
		Str("environment", cfg.Env).
		Str("source", cfg.Paths.Source).
		Str("rules", cfg.Paths.Rules).
		Msg("starting property ETL run")

	// Source and rule tables are the two unrecoverable inputs: either one
	// unreadable aborts the run.
	records, err := source.ReadFile(cfg.Paths.Source)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read source data")
	}
	log.Info().Int("rows", len(records)).Msg("source data loaded")

	ruleRecords, err := source.ReadFile(cfg.Paths.Rules)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read field rules")
	}
	ruleSet := rules.Load(ruleRecords, log)

	// Transform and validate run independently over the same raw records.
	batch := normalize.NewTransformer(log).Run(records)

	// Validation must read booleans with the same per-column vocabularies the
	// normalizer coerces with, or domain phrases like "Minimal Flood" would be
	// reported as type mismatches on data the load half stores as true.
	fieldTokens := make(map[string]validate.FieldTokens)
	for col, vocab := range normalize.BoolVocabularies() {
		fieldTokens[col] = validate.FieldTokens{Truthy: vocab.Truthy, Falsy: vocab.Falsy}
	}

	engine := validate.NewEngine(ruleSet, validate.Options{Fields: fieldTokens}, log)
	discrepancies := engine.Run(records)
	log.Info().Int("discrepancies", len(discrepancies)).Msg("validation finished")

	if err := os.MkdirAll(filepath.Dir(cfg.Paths.Report), 0o755); err != nil {
		log.Fatal().Err(err).Msg("failed to create report directory")
	}
	if err := report.WriteFile(cfg.Paths.Report, discrepancies); err != nil {
		log.Fatal().Err(err).Msg("failed to write discrepancy report")
	}
	log.Info().Str("path", cfg.Paths.Report).Msg("discrepancy report written")

	ctx := context.Background()
	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	policy := repository.BestEffort
	if cfg.Load.Policy == "fail_fast" {
		policy = repository.FailFast
	}

	loader := repository.NewBatchLoader(db, policy, log)
	loadReport, err := loader.LoadBatch(ctx, batch)
	if err != nil {
		log.Fatal().Err(err).Msg("batch load aborted")
	}

	log.Info().
		Interface("inserted", loadReport.Inserted).
		Int("load_failures", len(loadReport.Failures)).
		Int("rows_excluded", len(batch.Errors)).
		Int("discrepancies", len(discrepancies)).
		Msg("property ETL run complete")
}
