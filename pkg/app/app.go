// Package app wires configuration, storage, cache, upstream client and the
// research service into one value shared by the Lambdas and the CLI.
package app

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"

	"gitlab.connectwisedev.com/product-scanner/pkg/api"
	"gitlab.connectwisedev.com/product-scanner/pkg/cache"
	"gitlab.connectwisedev.com/product-scanner/pkg/config"
	"gitlab.connectwisedev.com/product-scanner/pkg/database"
	"gitlab.connectwisedev.com/product-scanner/pkg/logging"
	"gitlab.connectwisedev.com/product-scanner/pkg/metrics"
	"gitlab.connectwisedev.com/product-scanner/pkg/research"
	"gitlab.connectwisedev.com/product-scanner/pkg/store"
	"gitlab.connectwisedev.com/product-scanner/pkg/upstream"
)

// App holds every long-lived dependency of a process.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Metrics *metrics.Registry
	DB      *database.DBClient
	Redis   *cache.RedisClient
	Store   *store.Store
	Cache   *cache.Adapter
	Service *research.Service
	Handler *api.Handler
}

// Bootstrap loads the environment and builds an App for the named binary.
func Bootstrap(ctx context.Context, service string) (*App, error) {
	config.LoadEnv()
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return New(ctx, cfg, service), nil
}

// New builds an App from cfg. Storage that cannot be reached is logged and
// left out: searches still succeed, collections answer 503.
func New(ctx context.Context, cfg *config.Config, service string) *App {
	logger := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: service,
	})
	a := &App{Config: cfg, Logger: logger, Metrics: metrics.NewRegistry()}

	if cfg.DB.Configured() {
		db, err := database.NewPostgresClient(ctx, cfg.DB)
		if err != nil {
			logger.Error().Err(err).Msg("PostgreSQL unavailable, running without storage")
		} else {
			a.DB = db
		}
	}
	if cfg.CacheBackend == config.CacheBackendRedis {
		rc, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Error().Err(err).Msg("Redis unavailable, running without cache")
		} else {
			a.Redis = rc
		}
	}

	a.Store = store.New(a.DB)
	a.Cache = cache.NewAdapter(a.cacheBackend(),
		cache.WithTTL(cfg.CacheTTL),
		cache.WithLogger(logger),
		cache.WithMetrics(a.Metrics),
	)

	opts := []research.Option{research.WithMetrics(a.Metrics)}
	if a.DB != nil {
		opts = append(opts, research.WithHistory(a.Store), research.WithAlerts(a.Store))
	}
	a.Service = research.NewService(logger, a.Cache, a.upstream(), opts...)
	a.Handler = api.NewHandler(logger, a.Service, a.Store)

	logger.Info().
		Str("cache_backend", cfg.CacheBackend).
		Bool("storage", a.DB != nil).
		Bool("search_api", cfg.SearchAPIKey != "").
		Msg("application initialized")
	return a
}

// cacheBackend returns nil when the configured backend is disabled or down.
func (a *App) cacheBackend() cache.Backend {
	switch a.Config.CacheBackend {
	case config.CacheBackendPostgres:
		if a.DB != nil {
			return cache.NewPostgresBackend(a.DB)
		}
		a.Logger.Warn().Msg("postgres cache selected without a database, caching disabled")
	case config.CacheBackendRedis:
		if a.Redis != nil {
			return cache.NewRedisBackend(a.Redis, a.Config.Redis.Prefix)
		}
	case config.CacheBackendMemory:
		return cache.NewMemoryBackend()
	}
	return nil
}

// upstream returns nil without an API key so searches go straight to fallback.
func (a *App) upstream() research.Upstream {
	if a.Config.SearchAPIKey == "" {
		a.Logger.Warn().Msg("SEARCH_API_KEY not set, serving fallback products")
		return nil
	}
	return upstream.NewClient(upstream.Config{
		APIKey:  a.Config.SearchAPIKey,
		URL:     a.Config.SearchURL,
		Model:   a.Config.SearchModel,
		Timeout: a.Config.SearchTimeout,
	}, a.Logger)
}

// ProxyHandler is the signature of the API Gateway handlers.
type ProxyHandler func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// Drained wraps h so hit counting and history writes started by a request
// finish before the invocation returns. Lambda freezes the process once the
// handler returns, so nothing may be left running.
func (a *App) Drained(h ProxyHandler) ProxyHandler {
	return func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		resp, err := h(ctx, req)
		a.Service.Wait()
		return resp, err
	}
}

// Close waits for background work and releases connections.
func (a *App) Close() {
	if a.Service != nil {
		a.Service.Wait()
	}
	a.Redis.Close()
	a.DB.Close()
}
