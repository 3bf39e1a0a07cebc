// Package main is the entrypoint for the todo API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/penshort/todo/internal/cache"
	"github.com/penshort/todo/internal/clock"
	"github.com/penshort/todo/internal/config"
	"github.com/penshort/todo/internal/handler"
	"github.com/penshort/todo/internal/metrics"
	"github.com/penshort/todo/internal/middleware"
	"github.com/penshort/todo/internal/repository"
	"github.com/penshort/todo/internal/server"
	"github.com/penshort/todo/internal/service"
	"github.com/penshort/todo/internal/validator"
)

// entryStore is the storage surface main needs: the service contract plus
// a readiness probe.
type entryStore interface {
	service.Store
	handler.HealthChecker
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	srv := server.New(nil, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	store, err := openStore(ctx, cfg, logger, srv)
	if err != nil {
		os.Exit(1)
	}

	var entryCache *cache.Cache
	if cfg.CacheEnabled() {
		entryCache, err = cache.New(ctx, cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			os.Exit(1)
		}
		srv.OnShutdown("redis", func(context.Context) error { return entryCache.Close() })
		logger.Info("connected to Redis", "ttl", cfg.CacheTTL)
	}

	recorder := metrics.NewPrometheus()

	// A nil *cache.Cache must not reach the service as a non-nil interface.
	var svcCache service.EntryCache
	var healthCache handler.HealthChecker
	if entryCache != nil {
		svcCache = entryCache
		healthCache = entryCache
	}

	todoService := service.NewTodoService(store, svcCache, clock.System(), recorder, logger)

	r := setupRouter(routerDeps{
		info:     handler.New(cfg.StorageDriver),
		health:   handler.NewHealthHandler(store, healthCache),
		metrics:  handler.NewMetricsHandler(recorder),
		todos:    handler.NewTodoHandler(todoService, validator.New(), logger),
		security: middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()},
		maxBody:  cfg.MaxRequestBodySize,
		origins:  cfg.GetCORSAllowedOrigins(),
		logger:   logger,
	})
	srv.SetHandler(r)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"storage", cfg.StorageDriver,
		"cache", cfg.CacheEnabled(),
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// openStore connects the configured storage driver and registers its shutdown.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger, srv *server.Server) (entryStore, error) {
	if cfg.StorageDriver == config.StorageMemory {
		logger.Info("using in-memory storage")
		return repository.NewMemoryStore(), nil
	}

	if cfg.RunMigrations {
		if err := repository.Migrate(ctx, cfg.DatabaseURL, logger); err != nil {
			logger.Error(
				"failed to run migrations",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
				slog.String("database_url", redactURL(cfg.DatabaseURL)),
			)
			return nil, err
		}
	}

	poolOpts := repository.DefaultPoolOptions()
	poolOpts.MaxConns = cfg.DBMaxConns
	poolOpts.MinConns = cfg.DBMinConns

	repo, err := repository.NewWithOptions(ctx, cfg.DatabaseURL, poolOpts)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		return nil, err
	}
	srv.OnShutdown("database", func(context.Context) error {
		repo.Close()
		return nil
	})
	logger.Info("connected to database")

	return repo, nil
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routerDeps struct {
	info     *handler.Handler
	health   *handler.HealthHandler
	metrics  *handler.MetricsHandler
	todos    *handler.TodoHandler
	security middleware.SecurityConfig
	maxBody  int64
	origins  []string
	logger   *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(d routerDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer(d.logger))
	r.Use(middleware.Logger(d.logger))
	r.Use(middleware.Security(d.security))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = d.origins
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.MaxBodySize(d.maxBody))

	// Set before Mount so the subrouter inherits them.
	r.NotFound(d.info.NotFound)
	r.MethodNotAllowed(d.info.MethodNotAllowed)

	r.Get("/", d.info.Hello)
	r.Get("/healthz", d.health.Healthz)
	r.Get("/readyz", d.health.Readyz)
	r.Get("/metrics", d.metrics.Metrics)

	r.Mount("/api/v1/todos", d.todos.Routes())

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
