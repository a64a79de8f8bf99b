package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/IGDevX/marche-conclu-shop-service/internal/config"
	"github.com/IGDevX/marche-conclu-shop-service/internal/discovery"
	"github.com/IGDevX/marche-conclu-shop-service/internal/engine"
	"github.com/IGDevX/marche-conclu-shop-service/internal/event"
	handler "github.com/IGDevX/marche-conclu-shop-service/internal/handler/http"
	"github.com/IGDevX/marche-conclu-shop-service/internal/indexer"
	"github.com/IGDevX/marche-conclu-shop-service/internal/reconciler"
	"github.com/IGDevX/marche-conclu-shop-service/internal/relay"
	"github.com/IGDevX/marche-conclu-shop-service/internal/repository/postgres"
	"github.com/IGDevX/marche-conclu-shop-service/internal/service"
	"github.com/IGDevX/marche-conclu-shop-service/migrations"
	"github.com/IGDevX/marche-conclu-shop-service/pkg/database"
	"github.com/IGDevX/marche-conclu-shop-service/pkg/health"
	"github.com/IGDevX/marche-conclu-shop-service/pkg/httpclient"
	pkgkafka "github.com/IGDevX/marche-conclu-shop-service/pkg/kafka"
	"github.com/IGDevX/marche-conclu-shop-service/pkg/middleware"
	"github.com/IGDevX/marche-conclu-shop-service/pkg/tracing"
)

// App wires together all dependencies and runs the shop service.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	pool        *pgxpool.Pool
	redis       *redis.Client
	producer    *pkgkafka.Producer
	dlq         *pkgkafka.DLQProducer
	consumers   []*pkgkafka.Consumer
	indexPool   *indexer.Pool
	engine      engine.Engine
	reconciler  *reconciler.Reconciler
	registrar   *discovery.Registrar
	httpServer  *http.Server
	stopTracing tracing.Shutdown
}

// NewApp creates a new application instance, initializing all dependencies.
// ctx bounds startup only.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}
	if err := a.init(ctx); err != nil {
		if a.indexPool != nil {
			_ = a.indexPool.Shutdown()
		}
		_ = a.closeClients()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg, logger := a.cfg, a.logger

	stopTracing, err := tracing.InitTracer(ctx, tracing.Config{
		Enabled:      cfg.OTELEnabled,
		ServiceName:  cfg.ServiceName,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTELEndpoint,
		Insecure:     true,
		SampleRate:   cfg.OTELSampleRate,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	a.stopTracing = stopTracing

	// PostgreSQL
	a.pool, err = database.NewPostgresPool(ctx, cfg.Postgres(), logger)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	if err := database.RunMigrations(ctx, a.pool, migrations.FS, logger); err != nil {
		return err
	}
	if cfg.LogSlowQueryMS > 0 {
		database.SetSlowQueryLogging(time.Duration(cfg.LogSlowQueryMS)*time.Millisecond, logger)
	}
	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, a.pool, cfg.ServiceName); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			logger.Warn("failed to register pool metrics", slog.String("error", err.Error()))
		}
	}

	currencies := postgres.NewCurrencyRepository(a.pool)
	units := postgres.NewUnitRepository(a.pool)
	shelves := postgres.NewShelfRepository(a.pool)
	certifications := postgres.NewCertificationRepository(a.pool)
	categories := postgres.NewCategoryRepository(a.pool)
	products := postgres.NewProductRepository(a.pool)

	// Search index
	a.engine, err = newSearchEngine(cfg, logger)
	if err != nil {
		return err
	}
	if err := a.engine.EnsureIndex(ctx); err != nil {
		// Reads fail until the cluster is back; the reconciler and operators repair it.
		logger.Warn("failed to ensure search index", slog.String("error", err.Error()))
	}

	// Kafka
	var relayHandlers []relay.Handler
	var indexOpts []indexer.Option
	if cfg.KafkaEnabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		a.dlq = pkgkafka.NewDLQProducer(cfg.KafkaBrokers, logger)
		indexOpts = append(indexOpts, indexer.WithDeadLetter(event.NewDLQSink(a.dlq)))
		logger.Info("kafka producer initialized",
			slog.Any("brokers", cfg.KafkaBrokers),
			slog.String("topic", cfg.KafkaProductTopic),
		)
	}

	// Index writer
	a.indexPool = indexer.NewPool(indexer.PoolConfig{
		CoreWorkers:     cfg.IndexCoreWorkers,
		MaxWorkers:      cfg.IndexMaxWorkers,
		QueueSize:       cfg.IndexQueueSize,
		ShutdownTimeout: cfg.IndexShutdownTimeout,
	}, logger)
	ix := indexer.New(a.engine, products, a.indexPool, indexer.Config{
		Retry: indexer.RetryPolicy{
			MaxAttempts:    cfg.IndexMaxAttempts,
			InitialBackoff: cfg.IndexInitialBackoff,
			Multiplier:     cfg.IndexBackoffMultiplier,
			MaxBackoff:     cfg.IndexMaxBackoff,
		},
		BatchSize:      cfg.IndexBatchSize,
		ReindexTimeout: cfg.IndexReindexTimeout,
	}, logger, indexOpts...)

	relayHandlers = append(relayHandlers, relay.IndexHandler(ix, logger))
	if a.producer != nil {
		relayHandlers = append(relayHandlers, event.NewChangePublisher(a.producer, cfg.KafkaProductTopic, logger,
			event.WithRunner(a.indexPool), event.WithPublishTimeout(cfg.KafkaPublishTimeout)))
	}
	tx := relay.New(a.pool, logger, relayHandlers...)

	// Redis is optional: without it reconciliation runs unlocked and the
	// replay consumer deduplicates in memory.
	var locker reconciler.Locker
	replayDLQ := cfg.KafkaEnabled && cfg.IndexDLQReplayEnabled
	if cfg.ReconcileOnStartup || replayDLQ {
		a.redis, err = database.NewRedisClient(ctx, cfg.Redis())
		if err != nil {
			logger.Warn("redis unavailable, running without it", slog.String("error", err.Error()))
			a.redis = nil
		} else {
			locker = reconciler.NewRedisLocker(a.redis)
		}
	}
	if cfg.ReconcileOnStartup {
		a.reconciler = reconciler.New(ix, locker, cfg.ReconcileLockTTL, logger)
	}

	if replayDLQ {
		var store pkgkafka.IdempotencyStore = pkgkafka.NewMemoryIdempotencyStore(24 * time.Hour)
		if a.redis != nil {
			store = pkgkafka.NewRedisIdempotencyStore(a.redis, cfg.ServiceName+":dlq-replay:", 24*time.Hour)
		}
		a.consumers = append(a.consumers, event.NewReplayConsumer(event.ReplayConfig{
			Brokers:    cfg.KafkaBrokers,
			GroupID:    cfg.KafkaGroupID,
			MaxRetries: cfg.IndexMaxAttempts,
			RetryDelay: cfg.IndexInitialBackoff,
		}, ix, store, logger))
	}

	// Image storage
	images, err := newImageStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	// Services
	productService := service.NewProductService(service.ProductRepositories{
		Products:       products,
		Currencies:     currencies,
		Units:          units,
		Shelves:        shelves,
		Categories:     categories,
		Certifications: certifications,
	}, tx, images.Store, logger)

	refresh := service.WithProductRefresh(service.NewProductRefresher(tx, products, logger))
	services := handler.Services{
		Currencies:     service.NewCurrencyService(currencies, logger, refresh),
		Units:          service.NewUnitService(units, logger, refresh),
		Shelves:        service.NewShelfService(shelves, logger, refresh),
		Certifications: service.NewCertificationService(certifications, logger, refresh),
		Categories:     service.NewCategoryService(categories, logger, refresh),
		Products:       productService,
		Search:         service.NewSearchService(a.engine, logger),
		Index:          ix,
	}

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return a.pool.Ping(ctx)
	})
	healthHandler.Register("search", a.engine.Ping)
	if images.Ping != nil {
		healthHandler.RegisterNonCritical("storage", images.Ping)
	}
	if a.redis != nil {
		healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
			return a.redis.Ping(ctx).Err()
		})
	}
	if a.producer != nil {
		healthHandler.RegisterNonCritical("kafka", a.producer.Ping)
	}

	// Service discovery.
	if cfg.Discovery.Enabled {
		client := httpclient.NewCircuitBreakerClient(
			httpclient.New(httpclient.DefaultConfig()),
			httpclient.DefaultCircuitBreakerConfig("eureka"),
			logger,
		)
		a.registrar = discovery.NewRegistrar(discovery.Config{
			DefaultZone:       cfg.Discovery.DefaultZone,
			AppName:           cfg.Discovery.AppName,
			Hostname:          cfg.Discovery.Hostname,
			Port:              cfg.HTTPPort,
			HeartbeatInterval: cfg.Discovery.HeartbeatInterval,
		}, client, logger)
	}

	// HTTP router.
	router := handler.NewRouter(handler.RouterConfig{
		ServiceName:       cfg.ServiceName,
		IndexAdminRPS:     cfg.IndexAdminRPS,
		IndexAdminBurst:   cfg.IndexAdminBurst,
		PprofAllowedCIDRs: cfg.PprofAllowedCIDRs,
		CORS:              middleware.DefaultCORSConfig(),
	}, services, healthHandler, logger)

	a.httpServer = &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// reindex-all runs inside the request.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	return nil
}

// Run starts the HTTP server and background workers, blocking until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1+len(a.consumers))

	var background sync.WaitGroup
	if a.reconciler != nil {
		done := a.reconciler.Start(ctx)
		background.Add(1)
		go func() {
			defer background.Done()
			<-done
		}()
	}
	if a.registrar != nil {
		background.Add(1)
		go func() {
			defer background.Done()
			a.registrar.Run(ctx)
		}()
	}
	for _, c := range a.consumers {
		go func() {
			if err := c.Start(ctx); err != nil {
				errCh <- fmt.Errorf("kafka consumer: %w", err)
			}
		}()
	}

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case runErr = <-errCh:
	}

	shutdownErr := a.Shutdown()
	// The registrar deregisters and the reconciler stops once ctx is done.
	waitTimeout(&background, 10*time.Second)
	return errors.Join(runErr, shutdownErr)
}

// Shutdown gracefully stops all components. The HTTP server stops first so
// no new writes reach the relay, then the index pool drains its queue.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	for _, c := range a.consumers {
		if err := c.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.indexPool.Shutdown(); err != nil {
		a.logger.Error("index pool shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.stopTracing(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	errs = append(errs, a.closeClients())

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// closeClients releases every connection opened during init. Fields left nil
// by a failed init are skipped.
func (a *App) closeClients() error {
	var errs []error
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.dlq != nil {
		if err := a.dlq.Close(); err != nil {
			a.logger.Error("kafka dlq producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	return errors.Join(errs...)
}

func waitTimeout(wg *sync.WaitGroup, d time.Duration) {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d):
	}
}
