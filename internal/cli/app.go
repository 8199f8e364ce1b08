package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/iconidentify/xresolve/internal/caption"
	"github.com/iconidentify/xresolve/internal/config"
	"github.com/iconidentify/xresolve/internal/domain"
	"github.com/iconidentify/xresolve/internal/history"
	"github.com/iconidentify/xresolve/internal/service"
	"github.com/iconidentify/xresolve/internal/thread"
	"github.com/iconidentify/xresolve/internal/threadcache"
	"github.com/iconidentify/xresolve/pkg/twitter"
)

// app holds the wired components shared by the commands.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	resolver *service.Resolver
	threads  *thread.Reconstructor
	redis    *redis.Client
	cache    *threadcache.RedisCache
	history  *history.Store
}

func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	tokens := twitter.NewRandomTokenSource(cfg.Twitter.Tokens(), nil)
	if tokens.Len() == 0 {
		return nil, fmt.Errorf("no bearer tokens configured")
	}
	logger.Debug("bearer tokens loaded", "count", tokens.Len())
	client := twitter.NewClient(twitter.ClientConfig{
		BaseURL:    cfg.Twitter.BaseURL,
		Timeout:    cfg.Twitter.Timeout,
		UserAgent:  cfg.Twitter.UserAgent,
		MaxResults: cfg.Thread.MaxResults,
	}, tokens, logger)

	a := &app{cfg: cfg, logger: logger}

	var cache domain.ThreadCache
	if cfg.Thread.Enabled {
		a.redis = threadcache.NewClient(threadcache.Options{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			DialTimeout: cfg.Redis.DialTimeout,
		})
		a.cache = threadcache.New(a.redis)
		cache = a.cache
	}

	a.threads = thread.New(client, cache, thread.Options{
		Enabled: cfg.Thread.Enabled,
		TTL:     cfg.Thread.TTL,
		Timeout: cfg.Thread.Timeout,
	}, logger)
	a.resolver = service.NewResolver(client, caption.NewComposer(nil), a.threads, logger)

	if cfg.History.Path != "" {
		st, err := history.Open(cfg.History.Path)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("open history: %w", err)
		}
		a.history = st
	}

	return a, nil
}

// record stores a resolution when history is enabled. Failures are logged.
func (a *app) record(ctx context.Context, b *domain.Bundle) {
	if a.history == nil {
		return
	}
	if _, err := a.history.Record(ctx, b); err != nil {
		a.logger.Warn("record history failed", "tweet_id", b.PostID.String(), "error", err)
	}
}

func (a *app) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.history != nil {
		errs = append(errs, a.history.Close())
	}
	return errors.Join(errs...)
}

func loadApp(logger *slog.Logger) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return newApp(cfg, logger)
}
