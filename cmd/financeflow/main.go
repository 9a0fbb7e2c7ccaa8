package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"financeflow/internal/backend"
	"financeflow/internal/cache"
	"financeflow/internal/cli"
	apphttp "financeflow/internal/http"
	applog "financeflow/internal/log"
	"financeflow/internal/storage"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	loc, err := cfg.Location()
	if err != nil {
		logger.Error("Invalid timezone", applog.FieldError, err, "timezone", cfg.Timezone)
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err)
		}
	}()

	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err = result.Ledger.Load(loadCtx)
	cancel()
	if err != nil {
		logger.Error("Failed to load ledger", applog.FieldError, err, applog.FieldOperation, applog.OpLoad)
		_ = result.Cleanup()
		os.Exit(1)
	}

	srvCfg := apphttp.Config{
		Addr:               ":" + cfg.Port,
		Location:           loc,
		CacheSize:          cfg.CacheSize,
		CacheTTL:           cfg.CacheTTL,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}
	if p, ok := result.Store.(storage.Pinger); ok {
		srvCfg.Ready = p
	}
	srv := apphttp.NewServer(srvCfg, result.Ledger, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting financeflow server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			applog.FieldOperation, applog.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return cache.NewJanitor(logger, srv.Caches()...).Run(gctx, 10*time.Minute)
	})
	g.Go(func() error {
		return srv.RateLimiter().Run(gctx, 5*time.Minute)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err)
		_ = result.Cleanup()
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
