package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	blobadapter "github.com/viralforge/order-gateway/internal/adapters/blob"
	cacheadapter "github.com/viralforge/order-gateway/internal/adapters/cache"
	eventadapter "github.com/viralforge/order-gateway/internal/adapters/events"
	httpadapter "github.com/viralforge/order-gateway/internal/adapters/http"
	"github.com/viralforge/order-gateway/internal/adapters/idgen"
	"github.com/viralforge/order-gateway/internal/adapters/postgres"
	"github.com/viralforge/order-gateway/internal/application"
	"github.com/viralforge/order-gateway/internal/domain"
	"github.com/viralforge/order-gateway/internal/ports"
	"github.com/viralforge/order-gateway/internal/tenant"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	httpServer *http.Server
	cleanupFn  func(context.Context)
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	logger.Info("bootstrapping order gateway", "http_port", cfg.HTTPPort, "tenant_id", cfg.TenantID)

	pool, err := postgres.Connect(ctx, cfg.CommonStoreURL, cfg.MaxDBConns)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	sqlDB, err := pool.DB()
	if err != nil {
		return nil, fmt.Errorf("gorm sql db: %w", err)
	}

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	blobFactory := func(blobRoot string) (ports.BlobStore, error) {
		if blobRoot == "" {
			blobRoot = cfg.BlobRoot
		}
		return blobadapter.NewFilesystemStore(blobRoot)
	}
	directory := postgres.NewDirectory(pool, blobFactory)

	// Handles hold live connections, so their cache is always process-local.
	// Flow and partnership lookups are plain data and move to Redis when a
	// shared cache is configured, letting replicas warm each other.
	var (
		flows        ports.ConfigCache[domain.ProcessFlow]
		partnerships ports.ConfigCache[domain.Partnership]
	)
	cleanupRedis := func() {}
	if cfg.RedisURL != "" {
		redisClient, err := cacheadapter.Connect(ctx, cfg.RedisURL)
		if err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		flows = cacheadapter.NewRedis[domain.ProcessFlow](redisClient, "flow:")
		partnerships = cacheadapter.NewRedis[domain.Partnership](redisClient, "partnership:")
		cleanupRedis = func() { _ = redisClient.Close() }
	} else {
		flows = cacheadapter.NewMemory[domain.ProcessFlow]()
		partnerships = cacheadapter.NewMemory[domain.Partnership]()
	}

	resolver := tenant.NewResolver(directory, cacheadapter.NewMemory[ports.TenantHandle](), cfg.CacheTimeout, logger)

	var publisher ports.TopicPublisher
	cleanupPublisher := func() {}
	if cfg.KafkaEnabled {
		kafkaPublisher := eventadapter.NewKafkaPublisher(logger)
		publisher = kafkaPublisher
		cleanupPublisher = func() { _ = kafkaPublisher.Close() }
	} else {
		publisher = eventadapter.NewLoggingPublisher(logger)
	}

	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			TenantID:         cfg.TenantID,
			CacheTTL:         cfg.CacheTimeout,
			FlowCacheTTL:     cfg.FlowCacheTimeout,
			ArchiveContainer: cfg.ArchiveContainer,
			ProcessNamePath:  cfg.ProcessNamePath,
		},
		Tenants:      resolver,
		Flows:        flows,
		Partnerships: partnerships,
		Publisher:    publisher,
		IDs:          idgen.New(),
		Logger:       logger,
	})

	handler := httpadapter.NewHandler(svc)
	router := httpadapter.NewRouter(handler)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpServer,
		cleanupFn: func(ctx context.Context) {
			cleanupPublisher()
			cleanupRedis()
			_ = directory.Close()
			_ = sqlDB.Close()
		},
	}, nil
}

func (r *Runtime) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r.logger.Info("http server started", "addr", r.httpServer.Addr)
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		r.logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return r.httpServer.Shutdown(shutdownCtx)
	})

	err := g.Wait()

	cleanupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	r.cleanupFn(cleanupCtx)

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
