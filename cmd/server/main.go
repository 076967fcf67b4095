package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"anoa.com/newtongame/internal/bootstrap"
	"anoa.com/newtongame/internal/config"
	"anoa.com/newtongame/internal/server"
	"anoa.com/newtongame/pkg/database"
	"anoa.com/newtongame/pkg/logger"
	"anoa.com/newtongame/pkg/response"
	"anoa.com/newtongame/pkg/tracing"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	response.UseLogger(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing := tracing.Init(ctx, log, tracing.Config{
		Enabled:     cfg.OtelEnabled,
		ServiceName: cfg.OtelServiceName,
		Environment: cfg.AppEnv,
		Endpoint:    cfg.OtelEndpoint,
		SampleRatio: cfg.OtelSampleRatio,
	})

	db, err := database.Connect(cfg.PostgresDSN(), !cfg.IsProduction())
	if err != nil {
		log.Fatal("database connection failed", "error", err)
	}
	if err := bootstrap.Migrate(db); err != nil {
		log.Fatal("migration failed", "error", err)
	}
	if cfg.AppEnv == "development" {
		created, err := bootstrap.SeedDemoUser(db)
		if err != nil {
			log.Fatal("failed to seed demo user", "error", err)
		}
		if created {
			log.Info("demo user seeded", "username", "newton")
		}
	}

	redisClient := connectRedis(ctx, cfg.RedisURL, log)

	srv := server.NewServer(cfg, db, redisClient, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server exited with error", "error", err)
		}
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn("tracing shutdown failed", "error", err)
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("server stopped")
}

// connectRedis returns nil when REDIS_URL is unset or unreachable; the
// server then runs without caching and live updates.
func connectRedis(ctx context.Context, url string, log *logger.Logger) *redis.Client {
	if url == "" {
		log.Warn("REDIS_URL not set, running without redis")
		return nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		log.Warn("invalid REDIS_URL, running without redis", "error", err)
		return nil
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis unreachable, running without redis", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}
