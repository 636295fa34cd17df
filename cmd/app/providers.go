package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/healthcalc/internal/domain/healthcalc"
	"github.com/yanqian/healthcalc/internal/domain/healthtips"
	"github.com/yanqian/healthcalc/internal/domain/history"
	"github.com/yanqian/healthcalc/internal/domain/session"
	"github.com/yanqian/healthcalc/internal/infra/config"
	"github.com/yanqian/healthcalc/internal/infra/events"
	"github.com/yanqian/healthcalc/internal/infra/historyrepo"
	"github.com/yanqian/healthcalc/internal/infra/llm/chatgpt"
	"github.com/yanqian/healthcalc/internal/infra/tipstore"
	httpiface "github.com/yanqian/healthcalc/internal/interface/http"
)

func provideTipsConfig(cfg *config.Config) healthtips.Config {
	return healthtips.Config{
		Model:          cfg.LLM.Model,
		Temperature:    cfg.LLM.Temperature,
		Prompt:         cfg.Tips.Prompt,
		MaxTips:        cfg.Tips.MaxTips,
		CacheTTL:       cfg.Tips.CacheTTL,
		TopCalculators: cfg.Tips.TopCalculators,
	}
}

func provideHistoryConfig(cfg *config.Config) history.Config {
	return history.Config{ListLimit: cfg.History.ListLimit}
}

func provideSessionConfig(cfg *config.Config) session.Config {
	return session.Config{TTL: cfg.Session.TTL, TipTimeout: cfg.Session.TipTimeout}
}

func provideChatGPTClient(cfg *config.Config) (*chatgpt.Client, error) {
	return chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Timeout)
}

func provideBreakerClient(cfg *config.Config, client *chatgpt.Client, logger *slog.Logger) *chatgpt.BreakerClient {
	return chatgpt.NewBreakerClient(client, chatgpt.BreakerSettings{
		Name:                "chatgpt",
		MaxRequests:         cfg.LLM.Breaker.MaxRequests,
		Interval:            cfg.LLM.Breaker.Interval,
		Timeout:             cfg.LLM.Breaker.Timeout,
		ConsecutiveFailures: cfg.LLM.Breaker.ConsecutiveFailures,
	}, logger)
}

func provideSessionCalculator(svc healthcalc.Service) session.Calculator {
	return svc
}

func provideTipStore(cfg *config.Config, logger *slog.Logger) (healthtips.Store, func()) {
	noop := func() {}
	if !cfg.Cache.Redis.Enabled {
		return tipstore.NewMemoryStore(), noop
	}
	opt, err := buildValkeyOptions(cfg)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
		return tipstore.NewMemoryStore(), noop
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory store", "error", err)
		return tipstore.NewMemoryStore(), noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory store", "error", err)
		client.Close()
		return tipstore.NewMemoryStore(), noop
	}
	logger.Info("tip valkey store enabled", "addr", cfg.Cache.Redis.Addr)
	return tipstore.NewValkeyStore(client, cfg.Cache.Redis.Prefix), client.Close
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Cache.Redis.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Cache.Redis.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Cache.Redis.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}

func provideHistoryRepository(cfg *config.Config, logger *slog.Logger) (history.Repository, func()) {
	fallback := historyrepo.NewMemoryRepository(cfg.History.MemoryRecords)
	noop := func() {}
	dsn := strings.TrimSpace(cfg.History.Postgres.DSN)
	if dsn == "" {
		logger.Info("history postgres dsn not set, using memory repository")
		return fallback, noop
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repository", "error", err)
		return fallback, noop
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
		return fallback, noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repository", "error", err)
		pool.Close()
		return fallback, noop
	}
	repo := historyrepo.NewPostgresRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Error("postgres schema setup failed, using memory repository", "error", err)
		pool.Close()
		return fallback, noop
	}
	logger.Info("history postgres repository enabled")
	return repo, pool.Close
}

func provideEventPublisher(cfg *config.Config, logger *slog.Logger) (history.Publisher, func()) {
	rabbit := cfg.Events.RabbitMQ
	if !rabbit.Enabled {
		return events.NewLogPublisher(logger), func() {}
	}
	publisher, err := events.NewRabbitMQPublisher(rabbit.URL, rabbit.Queue, logger)
	if err != nil {
		logger.Error("rabbitmq unavailable, logging calculation events instead", "error", err)
		return events.NewLogPublisher(logger), func() {}
	}
	logger.Info("rabbitmq calculation events enabled", "queue", rabbit.Queue)
	return publisher, func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("close rabbitmq publisher failed", "error", err)
		}
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}

// provideReadiness probes only the external backends that were actually enabled.
func provideReadiness(store healthtips.Store, repo history.Repository, publisher history.Publisher, llm *chatgpt.BreakerClient) httpiface.Readiness {
	var probes []httpiface.ReadinessProbe
	add := func(name string, dep any) {
		if p, ok := dep.(pinger); ok {
			probes = append(probes, httpiface.ReadinessProbe{Name: name, Check: p.Ping})
		}
	}
	add("valkey", store)
	add("postgres", repo)
	add("rabbitmq", publisher)
	return httpiface.Readiness{Probes: probes, LLMState: llm.State}
}
