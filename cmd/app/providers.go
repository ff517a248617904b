package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/airquality-advisor/internal/bootstrap"
	"github.com/yanqian/airquality-advisor/internal/domain/airquality"
	"github.com/yanqian/airquality-advisor/internal/infra/config"
	"github.com/yanqian/airquality-advisor/internal/infra/historyrepo"
	"github.com/yanqian/airquality-advisor/internal/infra/llm/chatgpt"
	"github.com/yanqian/airquality-advisor/internal/infra/locationstats"
	"github.com/yanqian/airquality-advisor/internal/infra/openweather"
	"github.com/yanqian/airquality-advisor/internal/infra/reportstore"
	"github.com/yanqian/airquality-advisor/internal/infra/tokenizer"
)

func provideAdvisorConfig(cfg *config.Config) airquality.Config {
	return airquality.Config{
		Model:        cfg.LLM.Model,
		Temperature:  cfg.LLM.Temperature,
		GeocodeLimit: cfg.OpenWeather.GeocodeLimit,
		HistoryLimit: cfg.Advisor.HistoryLimit,
		TrendingSize: cfg.Advisor.TrendingSize,
	}
}

func provideChatClient(cfg *config.Config) (*chatgpt.Client, error) {
	return chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Timeout)
}

func provideOpenWeatherClient(cfg *config.Config) (*openweather.Client, error) {
	return openweather.NewClient(cfg.OpenWeather.APIKey, cfg.OpenWeather.GeocodeURL, cfg.OpenWeather.AirPollutionURL, cfg.OpenWeather.Timeout)
}

func provideTokenCounter(logger *slog.Logger) airquality.TokenCounter {
	return tokenizer.NewCounter(logger)
}

func noCleanup() {}

func provideHistoryRepository(cfg *config.Config, logger *slog.Logger) (airquality.HistoryRepository, func()) {
	fallback := historyrepo.NewMemoryRepository(cfg.History.MemoryCapacity)
	dsn := strings.TrimSpace(cfg.History.Postgres.DSN)
	if dsn == "" {
		logger.Info("history postgres dsn not set, using memory repository")
		return fallback, noCleanup
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repository", "error", err)
		return fallback, noCleanup
	}
	if cfg.History.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.History.Postgres.MaxConns
	}
	if cfg.History.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.History.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repository", "error", err)
		return fallback, noCleanup
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repository", "error", err)
		pool.Close()
		return fallback, noCleanup
	}
	repo := historyrepo.NewPostgresRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Error("history schema setup failed, using memory repository", "error", err)
		pool.Close()
		return fallback, noCleanup
	}
	logger.Info("history postgres repository enabled")
	return repo, pool.Close
}

func provideLocationStats(cfg *config.Config, logger *slog.Logger) (airquality.LocationStats, func()) {
	if !cfg.Trending.Enabled {
		return locationstats.NewMemoryStore(), noCleanup
	}
	opt, err := buildValkeyOptions(cfg.Trending.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
		return locationstats.NewMemoryStore(), noCleanup
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory store", "error", err)
		return locationstats.NewMemoryStore(), noCleanup
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory store", "error", err)
		client.Close()
		return locationstats.NewMemoryStore(), noCleanup
	}
	logger.Info("trending valkey store enabled", "addr", cfg.Trending.Addr)
	return locationstats.NewValkeyStore(client, cfg.Trending.Prefix, logger), client.Close
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

func provideReportStorage(cfg *config.Config, logger *slog.Logger) airquality.ObjectStorage {
	if !cfg.Archive.Enabled {
		return reportstore.NewMemoryStorage()
	}
	store, err := reportstore.NewR2Storage(cfg.Archive.Endpoint, cfg.Archive.AccessKey, cfg.Archive.SecretKey, cfg.Archive.Bucket, cfg.Archive.Region, logger)
	if err != nil {
		logger.Error("failed to initialize report archive, using memory storage", "error", err)
		return reportstore.NewMemoryStorage()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.EnsureBucket(ctx); err != nil {
		logger.Error("report bucket unavailable, using memory storage", "error", err)
		return reportstore.NewMemoryStorage()
	}
	logger.Info("report archive enabled", "bucket", cfg.Archive.Bucket)
	return store
}

func provideBackends(history airquality.HistoryRepository, stats airquality.LocationStats, archive airquality.ObjectStorage) bootstrap.Backends {
	_, postgres := history.(*historyrepo.PostgresRepository)
	_, valkeyStore := stats.(*locationstats.ValkeyStore)
	_, bucket := archive.(*reportstore.R2Storage)
	return bootstrap.Backends{HistoryPostgres: postgres, TrendingValkey: valkeyStore, ArchiveBucket: bucket}
}
