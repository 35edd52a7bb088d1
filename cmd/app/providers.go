package main

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"
	_ "modernc.org/sqlite"

	"github.com/yanqian/carbonlens/internal/domain/auth"
	"github.com/yanqian/carbonlens/internal/domain/footprint"
	"github.com/yanqian/carbonlens/internal/domain/leaderboard"
	"github.com/yanqian/carbonlens/internal/domain/recommend"
	"github.com/yanqian/carbonlens/internal/infra/config"
	"github.com/yanqian/carbonlens/internal/infra/llm/chatgpt"
	"github.com/yanqian/carbonlens/internal/infra/llm/tokenizer"
	"github.com/yanqian/carbonlens/internal/infra/reportstore"
	"github.com/yanqian/carbonlens/internal/infra/runrepo"
	"github.com/yanqian/carbonlens/internal/infra/tipcache"
	"github.com/yanqian/carbonlens/internal/infra/userrepo"
)

func provideFootprintConfig(cfg *config.Config) footprint.Config {
	return footprint.Config{CollaboratorTimeout: cfg.Footprint.CollaboratorTimeout}
}

func provideLeaderboardConfig(cfg *config.Config) leaderboard.Config {
	return leaderboard.Config{
		DefaultLimit:  cfg.Footprint.LeaderboardLimit,
		MonthlyLimit:  cfg.Footprint.LeaderboardLimit,
		MonthlyWindow: cfg.Footprint.MonthlyWindow,
	}
}

func provideRecommendConfig(cfg *config.Config) recommend.Config {
	return recommend.Config{
		Model:              cfg.LLM.Model,
		Temperature:        cfg.LLM.Temperature,
		MaxTokens:          cfg.LLM.MaxTokens,
		ChatMaxTokens:      cfg.LLM.ChatMaxTokens,
		Prompt:             cfg.Recommend.Prompt,
		ChatPrompt:         cfg.Recommend.ChatPrompt,
		CacheTTL:           cfg.Recommend.CacheTTL,
		HistoryTokenBudget: cfg.Recommend.HistoryTokenBudget,
	}
}

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		Secret:          cfg.Auth.Secret,
		TokenTTL:        cfg.Auth.TokenTTL,
		RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
	}
}

// provideChatClient returns a nil interface when no API key is configured so the
// recommendation service answers from its rule-based fallback.
func provideChatClient(cfg *config.Config, logger *slog.Logger) recommend.ChatClient {
	if strings.TrimSpace(cfg.LLM.APIKey) == "" {
		logger.Warn("llm api key not set, recommendations use rule-based fallback")
		return nil
	}
	client, err := chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Timeout)
	if err != nil {
		logger.Error("failed to create chat client, recommendations use rule-based fallback", "error", err)
		return nil
	}
	return client
}

func provideTokenCounter(cfg *config.Config, logger *slog.Logger) recommend.TokenCounter {
	counter, err := tokenizer.New(cfg.Recommend.Encoding)
	if err != nil {
		logger.Warn("tiktoken unavailable, estimating history tokens", "error", err)
		return tokenizer.Estimate{}
	}
	return counter
}

// persistence bundles the repositories that share one database handle.
type persistence struct {
	runs interface {
		footprint.RunRepository
		leaderboard.Repository
	}
	users auth.Repository
}

func provideRunRepository(p persistence) footprint.RunRepository {
	return p.runs
}

func provideLeaderboardRepository(p persistence) leaderboard.Repository {
	return p.runs
}

func provideAuthRepository(p persistence) auth.Repository {
	return p.users
}

// providePersistence picks the store from the DSN scheme and falls back to memory on any failure.
func providePersistence(cfg *config.Config, logger *slog.Logger) (persistence, func()) {
	fallback := persistence{runs: runrepo.NewMemoryRepository(), users: userrepo.NewMemoryRepository()}
	dsn := strings.TrimSpace(cfg.Database.DSN)
	switch {
	case dsn == "":
		logger.Info("database dsn not set, using memory repositories")
		return fallback, func() {}
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		p, cleanup, err := openPostgres(cfg.Database, logger)
		if err != nil {
			logger.Error("postgres unavailable, using memory repositories", "error", err)
			return fallback, func() {}
		}
		return p, cleanup
	default:
		p, cleanup, err := openSQLite(strings.TrimPrefix(dsn, "sqlite://"), logger)
		if err != nil {
			logger.Error("sqlite unavailable, using memory repositories", "error", err)
			return fallback, func() {}
		}
		return p, cleanup
	}
}

func openPostgres(dbCfg config.DatabaseConfig, logger *slog.Logger) (persistence, func(), error) {
	poolConfig, err := pgxpool.ParseConfig(dbCfg.DSN)
	if err != nil {
		return persistence{}, nil, err
	}
	if dbCfg.MaxConns > 0 {
		poolConfig.MaxConns = dbCfg.MaxConns
	}
	if dbCfg.MinConns > 0 {
		poolConfig.MinConns = dbCfg.MinConns
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return persistence{}, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return persistence{}, nil, err
	}
	runs := runrepo.NewPostgresRepository(pool)
	users := userrepo.NewPostgresRepository(pool)
	if err := runs.EnsureSchema(ctx); err != nil {
		pool.Close()
		return persistence{}, nil, err
	}
	if err := users.EnsureSchema(ctx); err != nil {
		pool.Close()
		return persistence{}, nil, err
	}
	logger.Info("postgres repositories enabled")
	return persistence{runs: runs, users: users}, pool.Close, nil
}

func openSQLite(path string, logger *slog.Logger) (persistence, func(), error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return persistence{}, nil, err
	}
	// SQLite serialises writers; one connection avoids SQLITE_BUSY under concurrent analyses.
	db.SetMaxOpenConns(1)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	runs := runrepo.NewSQLiteRepository(db)
	users := userrepo.NewSQLiteRepository(db)
	if err := runs.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return persistence{}, nil, err
	}
	if err := users.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return persistence{}, nil, err
	}
	logger.Info("sqlite repositories enabled", "path", path)
	return persistence{runs: runs, users: users}, func() { _ = db.Close() }, nil
}

func provideTipCache(cfg *config.Config, logger *slog.Logger) (recommend.Cache, func()) {
	if cfg.Cache.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
			return tipcache.NewMemoryCache(), func() {}
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
			return tipcache.NewMemoryCache(), func() {}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory cache", "error", err)
			client.Close()
		} else {
			logger.Info("valkey tip cache enabled", "addr", cfg.Cache.Addr)
			return tipcache.NewValkeyCache(client, cfg.Cache.Prefix), client.Close
		}
	}
	return tipcache.NewMemoryCache(), func() {}
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	if strings.Contains(cfg.Cache.Addr, "://") {
		return valkey.ParseURL(cfg.Cache.Addr)
	}
	return valkey.ClientOption{InitAddress: []string{cfg.Cache.Addr}}, nil
}

// provideReportArchive returns nil when archiving is disabled. An enabled archive
// without an endpoint keeps reports in memory for local runs.
func provideReportArchive(cfg *config.Config, logger *slog.Logger) footprint.ReportArchive {
	if !cfg.Archive.Enabled {
		return nil
	}
	if strings.TrimSpace(cfg.Archive.Endpoint) == "" {
		logger.Info("archive endpoint not set, keeping reports in memory")
		return reportstore.NewMemoryStore()
	}
	store, err := reportstore.NewR2Store(cfg.Archive.Endpoint, cfg.Archive.AccessKey, cfg.Archive.SecretKey, cfg.Archive.Bucket, cfg.Archive.Region, logger)
	if err != nil {
		logger.Error("failed to init report archive, archiving disabled", "error", err)
		return nil
	}
	logger.Info("r2 report archive enabled", "bucket", cfg.Archive.Bucket)
	return store
}
