package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"warungpos/backend/internal/assist"
	"warungpos/backend/internal/cache"
	"warungpos/backend/internal/config"
	"warungpos/backend/internal/datastore"
	"warungpos/backend/internal/httpapi"
	"warungpos/backend/internal/imaging"
	"warungpos/backend/internal/logging"
	"warungpos/backend/internal/metrics"
	"warungpos/backend/internal/scheduler"
	"warungpos/backend/internal/service"
	"warungpos/backend/internal/store"
	"warungpos/backend/internal/store/memory"
	pgstore "warungpos/backend/internal/store/postgres"
	"warungpos/backend/internal/store/sqlite"
)

func main() {
	cfg := config.Load()
	loc, err := validateConfig(cfg)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger, err := logging.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	closers := make([]func() error, 0, 3)

	var local store.Local
	switch cfg.LocalStore {
	case "memory":
		local = memory.New()
		logger.Info("local store: in-memory")
	default:
		db, err := sqlite.New(cfg.LocalDBPath)
		if err != nil {
			logger.Fatal("local store unavailable", zap.String("path", cfg.LocalDBPath), zap.Error(err))
		}
		local = db
		closers = append(closers, db.Close)
		logger.Info("local store: sqlite", zap.String("path", cfg.LocalDBPath))
	}

	var remote store.Remote
	if cfg.RemoteConfigured() {
		pg, err := pgstore.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			logger.Warn("remote store unreachable, running local-only", zap.Error(err))
		} else if err := pg.Migrate(ctx); err != nil {
			logger.Warn("remote schema migration failed, running local-only", zap.Error(err))
			_ = pg.Close()
		} else {
			remote = pg
			closers = append(closers, pg.Close)
			logger.Info("remote store: postgres")
		}
	}

	cacheStore := cache.SuggestionCache(cache.NoopSuggestionCache{})
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisSuggestionCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			logger.Warn("redis unavailable, using noop cache", zap.Error(err))
		} else {
			cacheStore = redisCache
			closers = append(closers, redisCache.Close)
			logger.Info("cache: redis")
		}
	}

	var generator assist.Generator
	if cfg.GeminiAPIKey != "" {
		gemini, err := assist.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Warn("AI assist disabled", zap.Error(err))
		} else {
			generator = gemini
		}
	}
	assistant := assist.New(generator, cacheStore, time.Duration(cfg.AssistCacheTTLSeconds)*time.Second, logger)

	m := metrics.New()
	data := datastore.New(local, remote, imaging.NewCompressor(cfg.ImageMaxWidth, cfg.ImageJPEGQuality), m, logger)
	svc := service.New(data, assistant, m, logger, service.Options{
		Location:             loc,
		ReapplyStockOnCancel: cfg.ReapplyStockOnCancel,
		SeedDemoProducts:     cfg.SeedDemoProducts,
	})
	if err := svc.Init(ctx); err != nil {
		logger.Fatal("initial load failed", zap.Error(err))
	}

	runCtx, stop := context.WithCancel(context.Background())
	defer stop()

	var sub *datastore.Subscription
	if cfg.RemoteListen {
		sub, err = data.Subscribe(runCtx)
		if err != nil {
			logger.Warn("change notifications unavailable", zap.Error(err))
		}
		go svc.Watch(runCtx, sub)
	}

	dayEnd := scheduler.NewDayEnd(svc, cfg.ReportDir, loc, logger)
	cron, err := scheduler.Start(dayEnd, cfg.ReportAt)
	if err != nil {
		logger.Fatal("day-end scheduler", zap.Error(err))
	}

	api := httpapi.New(svc, m, logger, cfg.AllowedOrigin)
	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("POS backend listening", zap.String("addr", cfg.Address()))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown error", zap.Error(err))
	}
	cron.Stop()
	data.Unsubscribe(sub)
	stop()

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			logger.Warn("close error", zap.Error(err))
		}
	}

	logger.Info("server stopped")
}

// validateConfig checks the settings that would otherwise fail late and
// returns the business time zone.
func validateConfig(cfg config.Config) (*time.Location, error) {
	switch cfg.LocalStore {
	case "sqlite", "memory":
	default:
		return nil, fmt.Errorf("LOCAL_STORE must be sqlite or memory, got %q", cfg.LocalStore)
	}
	if cfg.LocalStore == "sqlite" && strings.TrimSpace(cfg.LocalDBPath) == "" {
		return nil, fmt.Errorf("LOCAL_DB_PATH must be set for the sqlite store")
	}
	if _, err := time.Parse("15:04", cfg.ReportAt); err != nil {
		return nil, fmt.Errorf("REPORT_AT must be HH:MM, got %q", cfg.ReportAt)
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}
	return loc, nil
}
