// Package main is the entry point for the admissions portal API.
//
// The architecture follows Clean Architecture and DDD:
// - Domain: pure business logic without external dependencies
// - Application: use case orchestration (Commands/Queries/Event handlers)
// - Infrastructure: repository implementations, external collaborators
// - Interface: HTTP endpoints
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/campus-hub/admissions-hub/config"
	"github.com/campus-hub/admissions-hub/internal/application/command"
	"github.com/campus-hub/admissions-hub/internal/application/eventhandler"
	"github.com/campus-hub/admissions-hub/internal/application/query"
	"github.com/campus-hub/admissions-hub/internal/infrastructure/external/filestore"
	"github.com/campus-hub/admissions-hub/internal/infrastructure/messaging"
	"github.com/campus-hub/admissions-hub/internal/infrastructure/persistence/postgres"
	"github.com/campus-hub/admissions-hub/internal/infrastructure/persistence/redis"
	httpserver "github.com/campus-hub/admissions-hub/internal/interface/http"
	"github.com/campus-hub/admissions-hub/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	slogger := setupSlog(cfg)
	log := setupLogger(cfg)

	log.Info("starting admissions hub",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.Bool("debug", cfg.App.Debug),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. DATABASE (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL, postgres.PoolSettings{
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		QueryTimeout:    cfg.Database.QueryTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection")
		dbConn.Close()
	}()

	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. MIGRATIONS
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Database.MigrateOnStart {
		log.Info("running database migrations")
		migrator := postgres.NewMigrator(dbConn, postgres.GetMigrations())
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		status, err := migrator.Status(ctx)
		if err != nil {
			log.Warn("failed to get migration status", logger.Err(err))
		} else {
			applied := 0
			for _, m := range status {
				if m.Applied {
					applied++
				}
			}
			log.Info("migrations completed", logger.Int("applied", applied), logger.Int("total", len(status)))
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. REDIS (optional, caches degrade to direct store reads)
	// ─────────────────────────────────────────────────────────────────────────
	var unreadCache *redis.UnreadCountCache
	var catalogCache *redis.CatalogCache

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis")
		redisCache, err := connectRedis(cfg)
		if err != nil {
			log.Warn("failed to connect to Redis, caching disabled", logger.Err(err))
		} else {
			defer redisCache.Close()
			unreadCache = redis.NewUnreadCountCache(redisCache)
			catalogCache = redis.NewCatalogCache(redisCache)
			log.Info("Redis connection established")
		}
	}

	// Typed nils must not leak into interface fields, so the interface
	// variables are only assigned when the caches exist.
	var unreadCacheQ query.UnreadCountCache
	var unreadInvalidator command.UnreadCountInvalidator
	var unreadEventInvalidator eventhandler.UnreadInvalidator
	var catalogCacheQ query.CatalogCache
	if unreadCache != nil {
		unreadCacheQ = unreadCache
		unreadInvalidator = unreadCache
		unreadEventInvalidator = unreadCache
	}
	if catalogCache != nil {
		catalogCacheQ = catalogCache
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. REPOSITORIES
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories")
	appRepo := postgres.NewApplicationRepository(dbConn)
	courseRepo := postgres.NewCourseRepository(dbConn)
	docRepo := postgres.NewDocumentRepository(dbConn)
	notifRepo := postgres.NewNotificationRepository(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus")
	busConfig := messaging.DefaultInMemoryEventBusConfig()
	busConfig.Logger = slogger
	eventBus := messaging.NewInMemoryEventBus(busConfig)
	defer func() {
		log.Info("closing event bus")
		_ = eventBus.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 8. EXTERNAL CLIENTS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing file storage client")
	fsConfig := filestore.DefaultClientConfig(cfg.FileStore.BaseURL)
	fsConfig.APIKey = cfg.FileStore.APIKey
	fsConfig.Timeout = cfg.FileStore.RequestTimeout
	fsConfig.MaxFileSize = cfg.FileStore.MaxFileSize
	fsConfig.Logger = slogger
	fileStore := &fileStoreAdapter{client: filestore.NewClient(fsConfig)}

	// ─────────────────────────────────────────────────────────────────────────
	// 9. APPLICATION LAYER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application layer")

	submitCmd := command.NewSubmitApplicationHandler(appRepo, courseRepo, docRepo, eventBus)
	reviewCmd := command.NewReviewApplicationHandler(appRepo, courseRepo, eventBus)
	reconcileCmd := command.NewReconcileAdmissionHandler(appRepo, courseRepo, eventBus)
	uploadCmd := command.NewUploadDocumentHandler(docRepo, fileStore, eventBus)
	deleteDocCmd := command.NewDeleteDocumentHandler(docRepo, fileStore, eventBus)
	markNotifCmd := command.NewMarkNotificationsHandler(notifRepo, unreadInvalidator)

	listAppsQuery := query.NewListApplicationsHandler(appRepo, courseRepo)
	browseCoursesQuery := query.NewBrowseCoursesHandler(courseRepo, catalogCacheQ)
	listDocsQuery := query.NewListDocumentsHandler(docRepo)
	listNotifsQuery := query.NewListNotificationsHandler(notifRepo, unreadCacheQ)

	// ─────────────────────────────────────────────────────────────────────────
	// 10. EVENT HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	if unreadEventInvalidator != nil {
		log.Info("registering event handlers")
		transitionHandler := eventhandler.NewOnApplicationTransitionHandler(unreadEventInvalidator, slogger)
		if err := transitionHandler.Register(eventBus); err != nil {
			return fmt.Errorf("failed to register event handlers: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 11. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing HTTP server")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	httpConfig := httpserver.DefaultConfig()
	httpConfig.Host = cfg.HTTP.Host
	httpConfig.Port = cfg.HTTP.Port
	httpConfig.ReadTimeout = cfg.HTTP.ReadTimeout
	httpConfig.WriteTimeout = cfg.HTTP.WriteTimeout
	httpConfig.IdleTimeout = cfg.HTTP.IdleTimeout
	httpConfig.ShutdownTimeout = cfg.App.ShutdownTimeout
	httpConfig.EnableCORS = cfg.HTTP.EnableCORS
	httpConfig.AllowedOrigins = cfg.HTTP.AllowedOrigins
	httpConfig.EnableMetrics = cfg.Observability.MetricsEnabled
	httpConfig.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute

	httpDeps := httpserver.Dependencies{
		SubmitApplication:  submitCmd,
		ReviewApplication:  reviewCmd,
		ReconcileAdmission: reconcileCmd,
		UploadDocument:     uploadCmd,
		DeleteDocument:     deleteDocCmd,
		MarkNotifications:  markNotifCmd,
		ListApplications:   listAppsQuery,
		BrowseCourses:      browseCoursesQuery,
		ListDocuments:      listDocsQuery,
		ListNotifications:  listNotifsQuery,
		HealthChecker:      &healthChecker{db: dbConn},
		Logger:             log,
		Registry:           registry,
	}

	server := httpserver.NewServer(httpConfig, httpDeps)

	// ─────────────────────────────────────────────────────────────────────────
	// 12. RUN AND GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	errCh := server.StartAsync()

	log.Info("admissions hub is running", logger.String("address", httpConfig.Address()))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			log.Error("server error", logger.Err(err))
			return err
		}
	}

	log.Info("starting graceful shutdown", logger.Duration("timeout", cfg.App.ShutdownTimeout))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", logger.Err(err))
		return err
	}

	log.Info("shutdown completed")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// setupLogger builds the application logger.
func setupLogger(cfg *config.Config) *logger.Logger {
	opts := logger.DefaultOptions()
	opts.Level = logger.ParseLevel(cfg.Observability.LogLevel)
	if cfg.App.Debug {
		opts.Level = logger.LevelDebug
	}
	return logger.New(opts)
}

// setupSlog builds the slog logger the infrastructure components use.
func setupSlog(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}

// connectRedis builds the Redis cache from either a URL or individual
// settings.
func connectRedis(cfg *config.Config) (*redis.Cache, error) {
	if cfg.Redis.URL != "" {
		opts, err := goredis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		cache := redis.NewCacheFromClient(goredis.NewClient(opts))
		if err := cache.Ping(context.Background()); err != nil {
			_ = cache.Close()
			return nil, err
		}
		return cache, nil
	}

	redisCfg := redis.DefaultConfig()
	redisCfg.Host = cfg.Redis.Host
	redisCfg.Port = cfg.Redis.Port
	redisCfg.Password = cfg.Redis.Password
	redisCfg.DB = cfg.Redis.DB
	redisCfg.PoolSize = cfg.Redis.PoolSize
	redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
	redisCfg.DialTimeout = cfg.Redis.DialTimeout
	redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
	redisCfg.WriteTimeout = cfg.Redis.WriteTimeout
	return redis.NewCache(redisCfg)
}

// ══════════════════════════════════════════════════════════════════════════════
// ADAPTERS
// These adapt infrastructure implementations to application interfaces.
// ══════════════════════════════════════════════════════════════════════════════

// fileStoreAdapter adapts filestore.Client to command.FileStore.
type fileStoreAdapter struct {
	client *filestore.Client
}

func (a *fileStoreAdapter) Upload(ctx context.Context, upload command.FileUpload) (string, error) {
	return a.client.Upload(ctx, filestore.UploadInput{
		StudentID:   upload.StudentID,
		FileName:    upload.FileName,
		ContentType: upload.ContentType,
		Data:        upload.Data,
	})
}

func (a *fileStoreAdapter) Delete(ctx context.Context, ref string) error {
	return a.client.Delete(ctx, ref)
}

// healthChecker reports the state of the backing services.
type healthChecker struct {
	db *postgres.Connection
}

func (h *healthChecker) Check(ctx context.Context) map[string]error {
	return map[string]error{
		"database": h.db.Ping(ctx),
	}
}
