package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"

	"github.com/Nehra4u/Crystal-Ecommerce/internal/catalog"
	"github.com/Nehra4u/Crystal-Ecommerce/internal/config"
	"github.com/Nehra4u/Crystal-Ecommerce/internal/event"
	handler "github.com/Nehra4u/Crystal-Ecommerce/internal/handler/http"
	"github.com/Nehra4u/Crystal-Ecommerce/internal/session"
	"github.com/Nehra4u/Crystal-Ecommerce/internal/slot"
	"github.com/Nehra4u/Crystal-Ecommerce/pkg/database"
	"github.com/Nehra4u/Crystal-Ecommerce/pkg/health"
	"github.com/Nehra4u/Crystal-Ecommerce/pkg/httpclient"
	pkgkafka "github.com/Nehra4u/Crystal-Ecommerce/pkg/kafka"
	"github.com/Nehra4u/Crystal-Ecommerce/pkg/middleware"
	"github.com/Nehra4u/Crystal-Ecommerce/pkg/tracing"
)

const serviceName = "storefront"

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	rdb            *redis.Client
	pool           *pgxpool.Pool
	producer       *pkgkafka.Producer
	traceShutdown  func(context.Context) error
	stopBackground context.CancelFunc

	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
// Anything opened before a failure is released again.
func NewApp(cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.release()
		}
	}()

	a.traceShutdown, err = tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	healthHandler := health.NewHandler()

	sl, err := a.openSlot(ctx)
	if err != nil {
		return nil, err
	}
	healthHandler.Register("slot", sl.Ping)

	cat, err := a.openCatalog(ctx, healthHandler)
	if err != nil {
		return nil, err
	}

	publisher := event.Discard
	if cfg.EventsEnabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = a.producer
		healthHandler.RegisterOptional("kafka", a.producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}
	eventProducer := event.NewProducer(publisher, logger)

	sessions := session.NewRegistry(sl, cat, session.Config{
		CartKey:     cfg.CartSlotKey,
		WishlistKey: cfg.WishlistSlotKey,
		IdleTTL:     cfg.SessionIdleTTL(),
	}, eventProducer, logger)

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowOrigins
	corsCfg.Environment = cfg.Environment

	opts := handler.DefaultOptions()
	opts.CORS = corsCfg
	opts.RateLimitRPS = cfg.RateLimitRPS
	opts.RateLimitBurst = cfg.RateLimitBurst
	opts.PprofAllowedCIDRs = cfg.PprofAllowedCIDRs

	bgCtx, stop := context.WithCancel(context.Background())
	a.stopBackground = stop
	go sessions.EvictLoop(bgCtx)

	router := handler.NewRouter(bgCtx, handler.Deps{
		Sessions:  sessions,
		Catalog:   cat,
		Pricing:   cfg.Pricing(),
		Confirmer: eventProducer,
		Health:    healthHandler,
	}, logger, opts)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return a, nil
}

func (a *App) openSlot(ctx context.Context) (slot.Slot, error) {
	if a.cfg.SlotBackend == config.SlotMemory {
		a.logger.Warn("using in-memory slot; collections are lost on restart")
		return slot.NewMemorySlot(), nil
	}

	rdb, err := database.NewRedisClient(ctx, database.RedisConfig{
		Addr:     a.cfg.RedisAddr,
		Password: a.cfg.RedisPass,
		DB:       a.cfg.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.rdb = rdb
	a.logger.Info("connected to Redis",
		slog.String("addr", a.cfg.RedisAddr),
		slog.Int("db", a.cfg.RedisDB),
		slog.Duration("ttl", a.cfg.SlotTTL()),
	)
	return slot.NewRedisSlot(rdb, a.cfg.SlotTTL()), nil
}

func (a *App) openCatalog(ctx context.Context, hh *health.Handler) (catalog.Catalog, error) {
	switch a.cfg.CatalogSource {
	case config.CatalogPostgres:
		pool, err := database.NewPostgresPool(ctx, a.cfg.PostgresConfig(), a.logger)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		a.pool = pool
		if err := database.RunMigrations(ctx, pool, catalog.Migrations(), a.logger); err != nil {
			return nil, fmt.Errorf("run catalog migrations: %w", err)
		}
		if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, "catalog"); err != nil {
			a.logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
		}
		database.SetSlowQueryLogging(time.Duration(a.cfg.SlowQueryThresholdMs)*time.Millisecond, a.logger)
		hh.Register("catalog", pool.Ping)
		a.logger.Info("catalog backed by postgres", slog.String("db", a.cfg.PostgresDB))
		return catalog.NewPostgresCatalog(pool), nil

	case config.CatalogRemote:
		httpCfg := httpclient.DefaultConfig()
		httpCfg.Timeout = 5 * time.Second
		client := httpclient.NewCircuitBreakerClient(
			httpclient.New(httpCfg),
			httpclient.DefaultCircuitBreakerConfig("catalog"),
			a.logger,
		)
		hh.Register("catalog", func(context.Context) error {
			if client.State() == gobreaker.StateOpen {
				return errors.New("catalog circuit breaker is open")
			}
			return nil
		})
		a.logger.Info("catalog backed by remote product service", slog.String("url", a.cfg.CatalogURL))
		return catalog.NewRemoteCatalog(client, a.cfg.CatalogURL), nil

	default:
		cat, err := catalog.NewFixtureCatalog()
		if err != nil {
			return nil, fmt.Errorf("load fixture catalog: %w", err)
		}
		return cat, nil
	}
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.release()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}
	a.release()

	a.logger.Info("application shutdown complete")
	return nil
}

// release closes backing connections. The HTTP server must already be stopped.
func (a *App) release() {
	if a.stopBackground != nil {
		a.stopBackground()
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.traceShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.traceShutdown(ctx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
	}
}
