package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/actuallystonmai/hybrid-recommender/internal/cache"
	"github.com/actuallystonmai/hybrid-recommender/internal/config"
	"github.com/actuallystonmai/hybrid-recommender/internal/handler"
	"github.com/actuallystonmai/hybrid-recommender/internal/metrics"
	"github.com/actuallystonmai/hybrid-recommender/internal/model"
	"github.com/actuallystonmai/hybrid-recommender/internal/repository"
	"github.com/actuallystonmai/hybrid-recommender/internal/router"
	"github.com/actuallystonmai/hybrid-recommender/internal/service"
	"github.com/actuallystonmai/hybrid-recommender/seeds"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// store is what both backends provide: the engine inputs plus user records.
type store interface {
	model.DataSource
	service.UserStore
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := map[string]handler.Pinger{}

	// ------------ Data source ---------------
	var src store
	switch cfg.DataSource {
	case config.DataSourceSupabase:
		sb, err := repository.NewSupabaseRepository(cfg.SupabaseURL, cfg.SupabaseKey)
		if err != nil {
			logger.Fatal("failed to create supabase client", zap.Error(err))
		}
		src = sb
		logger.Info("using supabase data source")

	default:
		poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("failed to parse database config", zap.Error(err))
		}
		poolConfig.MaxConns = int32(cfg.DBPoolSize)
		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer pool.Close()

		if err := waitForDB(ctx, pool, logger); err != nil {
			logger.Fatal("database not ready", zap.Error(err))
		}
		logger.Info("connected to PostgreSQL")

		// for migrate-down using CLI command
		if len(os.Args) > 1 && os.Args[1] == "migrate-down" {
			if err := runMigration(ctx, pool, "migrations/create_tables.down.sql"); err != nil {
				logger.Fatal("failed to migrate down", zap.Error(err))
			}
			logger.Info("migrations dropped")
			return
		}

		if err := runMigration(ctx, pool, "migrations/create_tables.up.sql"); err != nil {
			logger.Fatal("failed to migrate up", zap.Error(err))
		}
		logger.Info("migrations applied")

		repo := repository.NewRepository(pool)
		if cfg.Seed {
			if err := checkSeed(ctx, pool, repo, logger); err != nil {
				logger.Fatal("failed to check seed", zap.Error(err))
			}
		}
		src = repo
		deps["postgres"] = pool
	}

	// ------------ Engines ---------------
	collab := model.NewCollaborative(logger)
	content := model.NewContent(logger)
	buildEngines(ctx, src, collab, content, logger)

	// ------------ Redis (optional) ---------------
	opts := []service.Option{}
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal("failed to parse redis url", zap.Error(err))
		}
		c := cache.NewCache(redis.NewClient(redisOpts), cfg.CacheTTL)
		defer c.Close()

		if err := c.Ping(ctx); err != nil {
			logger.Warn("redis unreachable, serving without cache until it recovers", zap.Error(err))
		} else {
			logger.Info("connected to Redis")
		}
		opts = append(opts, service.WithCache(c))
		deps["redis"] = c
	}

	// ---------------- Server --------------------
	svc := service.NewService(collab, content, src, logger, opts...)
	h := handler.NewHandler(svc, logger)
	for name, dep := range deps {
		h.AddDependency(name, dep)
	}

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: router.Setup(h, logger, router.Options{
			Timeout:            cfg.RequestTimeout,
			RateLimitPerMinute: cfg.RateLimitPerMinute,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal("server failed", zap.Error(err))
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newLogger(level, format string) (*zap.Logger, error) {
	var cfg zap.Config
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	cfg.Level = lvl
	return cfg.Build()
}

// buildEngines loads both engines concurrently. A failed load leaves that
// engine unavailable; the server still starts.
func buildEngines(ctx context.Context, src model.DataSource, collab *model.Collaborative, content *model.Content, logger *zap.Logger) {
	var g errgroup.Group

	g.Go(func() error {
		start := time.Now()
		err := collab.Load(ctx, src)
		metrics.RecordEngineBuild("collaborative", time.Since(start), collab.Available())
		if err != nil {
			logger.Error("collaborative engine unavailable", zap.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		err := content.Load(ctx, src)
		metrics.RecordEngineBuild("content", time.Since(start), content.Available())
		if err != nil {
			logger.Error("content engine unavailable", zap.Error(err))
		}
		return nil
	})

	_ = g.Wait()
}

func waitForDB(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	for i := 0; i < 30; i++ {
		if err := pool.Ping(ctx); err == nil {
			return nil
		}
		logger.Info("waiting for database", zap.Int("attempt", i+1), zap.Int("max", 30))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
	return fmt.Errorf("database connection timeout after 30s")
}

func runMigration(ctx context.Context, pool *pgxpool.Pool, path string) error {
	sql, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read migration file: %w", err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("execute migration: %w", err)
	}
	return nil
}

func checkSeed(ctx context.Context, pool *pgxpool.Pool, repo *repository.Repository, logger *zap.Logger) error {
	count, err := repo.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("check users count: %w", err)
	}
	if count > 0 {
		logger.Info("database already seeded, skipping", zap.Int("users", count))
		return nil
	}
	return seeds.Setup(ctx, pool, logger)
}
