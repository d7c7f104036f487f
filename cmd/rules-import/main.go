// README: CLI that validates a pricing rules JSON file and stores it in Postgres or Firestore.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"cabfare/internal/config"
	"cabfare/internal/infra"
	"cabfare/internal/logging"
	"cabfare/internal/modules/pricing"
)

func main() {
	file := flag.String("file", "", "path to a pricing rules JSON document")
	target := flag.String("target", config.SourcePostgres, "where to store the document: postgres or firestore")
	activate := flag.Bool("activate", false, "make the imported version the active one (firestore always activates)")
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.IsProduction())
	if err != nil {
		log.Fatal(err)
	}

	err = run(cfg, logger, *file, *target, *activate)
	if err != nil {
		logger.Error("rules import failed", zap.String("file", *file), zap.String("target", *target), zap.Error(err))
	}
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// run owns every resource it opens so that all of them are closed before main exits.
func run(cfg config.Config, logger *zap.Logger, file, target string, activate bool) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read rules file: %w", err)
	}
	rules, err := pricing.ParseRules(data)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch target {
	case config.SourcePostgres:
		err = importPostgres(ctx, cfg, logger, rules, activate)
	case config.SourceFirestore:
		err = importFirestore(ctx, cfg, logger, rules)
	default:
		err = fmt.Errorf("unknown target %q", target)
	}
	if err != nil {
		return err
	}

	if cfg.Redis.Addr != "" {
		rdb := infra.NewRedis(cfg.Redis.Addr)
		defer func() { _ = rdb.Close() }()
		if err := pricing.NewCachedSource(nil, rdb, cfg.Redis.RulesTTL, logger).Invalidate(ctx); err != nil {
			logger.Warn("rules cache invalidation failed", zap.Error(err))
		}
	}
	return nil
}

func importPostgres(ctx context.Context, cfg config.Config, logger *zap.Logger, rules *pricing.PricingRules, activate bool) error {
	if cfg.DB.DSN == "" {
		return errors.New("CABFARE_DB_DSN is required")
	}
	pool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	store := pricing.NewStore(pool)
	if err := store.Save(ctx, rules); err != nil {
		return fmt.Errorf("save rules %s: %w", rules.Version, err)
	}
	logger.Info("rules saved", zap.String("version", rules.Version))

	if activate {
		if err := store.Activate(ctx, rules.Version); err != nil {
			return fmt.Errorf("activate rules %s: %w", rules.Version, err)
		}
		logger.Info("rules activated", zap.String("version", rules.Version))
	}
	return nil
}

func importFirestore(ctx context.Context, cfg config.Config, logger *zap.Logger, rules *pricing.PricingRules) error {
	if cfg.Firebase.ProjectID == "" {
		return errors.New("CABFARE_FIREBASE_PROJECT_ID is required")
	}
	client, err := infra.NewFirestore(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
	if err != nil {
		return fmt.Errorf("firestore init: %w", err)
	}
	defer func() { _ = client.Close() }()

	if err := pricing.NewFirestoreSource(client, cfg.Firebase.Collection).Publish(ctx, rules); err != nil {
		return fmt.Errorf("publish rules %s: %w", rules.Version, err)
	}
	logger.Info("rules published", zap.String("version", rules.Version), zap.String("collection", cfg.Firebase.Collection))
	return nil
}
