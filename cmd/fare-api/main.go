// README: Entry point; loads config, wires the rules source chain, starts the HTTP server.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"cabfare/internal/config"
	httptransport "cabfare/internal/http"
	"cabfare/internal/http/handlers"
	"cabfare/internal/infra"
	"cabfare/internal/logging"
	"cabfare/internal/maps"
	"cabfare/internal/modules/pricing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.IsProduction())
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, closeSource, err := rulesSource(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("rules source init", zap.String("source", cfg.Rules.Source), zap.Error(err))
	}
	defer closeSource()

	pricingSvc := pricing.NewService(source, logger.Named("pricing"), cfg.Currency)

	var routes handlers.DistanceResolver
	if cfg.Maps.APIKey != "" {
		rs, err := maps.NewRouteService(cfg.Maps.APIKey, cfg.Maps.Region)
		if err != nil {
			logger.Fatal("maps init", zap.Error(err))
		}
		routes = rs
	} else {
		logger.Info("maps api key not set; coordinates priced by straight-line distance")
	}

	handler := httptransport.NewServer(httptransport.ServerDeps{
		Pricing: pricingSvc,
		Routes:  routes,
		Logger:  logger.Named("http"),
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler.Routes()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown", zap.Error(err))
		}
	}()

	logger.Info("fare api listening", zap.String("addr", cfg.HTTP.Addr), zap.String("rules_source", cfg.Rules.Source))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("http server", zap.Error(err))
	}
	logger.Info("fare api stopped")
}

// rulesSource builds the configured provider. Remote providers are fronted by
// the Redis cache when redis.addr is set.
func rulesSource(ctx context.Context, cfg config.Config, logger *zap.Logger) (pricing.RulesSource, func(), error) {
	noop := func() {}

	var (
		source  pricing.RulesSource
		closers []func()
	)
	switch cfg.Rules.Source {
	case config.SourceFile:
		fs, err := pricing.NewFileSource(cfg.Rules.File)
		if err != nil {
			return nil, noop, err
		}
		return fs, noop, nil
	case config.SourcePostgres:
		pool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			return nil, noop, err
		}
		closers = append(closers, pool.Close)
		source = pricing.NewStore(pool)
	case config.SourceFirestore:
		client, err := infra.NewFirestore(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
		if err != nil {
			return nil, noop, err
		}
		closers = append(closers, func() { _ = client.Close() })
		source = pricing.NewFirestoreSource(client, cfg.Firebase.Collection)
	}

	if cfg.Redis.Addr != "" {
		rdb := infra.NewRedis(cfg.Redis.Addr)
		closers = append(closers, func() { _ = rdb.Close() })
		source = pricing.NewCachedSource(source, rdb, cfg.Redis.RulesTTL, logger.Named("rules_cache"))
	}

	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return source, closeAll, nil
}
