package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exercise-service/internal/audio"
	"github.com/SAP-F-2025/exercise-service/internal/cache"
	"github.com/SAP-F-2025/exercise-service/internal/config"
	"github.com/SAP-F-2025/exercise-service/internal/handlers"
	"github.com/SAP-F-2025/exercise-service/internal/repositories"
	docstore "github.com/SAP-F-2025/exercise-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/exercise-service/internal/services"
	"github.com/SAP-F-2025/exercise-service/internal/session"
	"github.com/SAP-F-2025/exercise-service/internal/utils"
	"github.com/SAP-F-2025/exercise-service/internal/validator"
	"github.com/SAP-F-2025/exercise-service/pkg"
)

const (
	serviceName     = "exercise-service"
	shutdownTimeout = 30 * time.Second
)

func main() {
	if err := run(); err != nil {
		utils.NewDefaultLogger().LogError(err, "exercise service stopped")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := utils.NewLogger(cfg.Environment).With("service", serviceName)
	slogger := utils.ToSlogLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		return fmt.Errorf("create event publisher: %w", err)
	}
	defer publisher.Close()

	v := validator.New()
	serviceLogger := func(component string) *services.ServiceLogger {
		return services.NewServiceLogger(slogger, services.LogConfig{
			Service:     serviceName,
			Component:   component,
			EnableDebug: cfg.Environment == "development",
		})
	}

	sessionService := services.NewSessionService(services.SessionServiceConfig{
		Engine: session.Config{
			FeedbackDelay: cfg.Session.FeedbackDelay,
			TimesUpDelay:  cfg.Session.TimesUpDelay,
			TickInterval:  cfg.Session.TickInterval,
		},
		IdleTTL: cfg.Session.IdleTTL,
	}, services.SessionDeps{
		Loader:    services.NewExerciseLoader(store, v, nil, serviceLogger("loader")),
		Submitter: services.NewResultSubmitter(store, publisher, nil, serviceLogger("submitter")),
		Publisher: publisher,
		Audio:     audio.NewLoggingService(logger.With("component", "audio")),
		Logger:    logger,
	})
	defer sessionService.Shutdown()

	if cfg.Session.IdleTTL > 0 {
		janitor := sessionService.StartJanitor(ctx, cfg.Session.IdleTTL/4)
		defer janitor.Stop()
	}

	exportService := services.NewExportService(store, serviceLogger("export"))

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), utils.LoggerMiddleware(logger), utils.ContextLogger(logger))
	handlers.NewHandlerManager(sessionService, exportService, v, logger).SetupRoutes(router)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "port", cfg.Port, "storage", cfg.Storage)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}

// openStore builds the document store: the configured backend behind a
// retrying layer, with an exercise cache in front when enabled.
func openStore(cfg *config.Config, logger utils.Logger) (repositories.DataRepository, func(), error) {
	var base repositories.DataRepository
	closers := []func(){}

	switch cfg.Storage {
	case "memory":
		logger.Warn("Using in-memory storage; documents are lost on restart")
		base = repositories.NewMemoryRepository()
	default:
		db, err := pkg.InitDatabase(cfg)
		if err != nil {
			return nil, nil, err
		}
		if sqlDB, err := db.DB(); err == nil {
			closers = append(closers, func() { _ = sqlDB.Close() })
		}
		base = docstore.NewDocumentPostgreSQL(db)
	}

	store := repositories.DataRepository(repositories.NewResilientRepository(base, repositories.DefaultResilientConfig(), logger))

	if cfg.CacheEnabled {
		var c cache.CacheService
		client, err := pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Redis unavailable, caching exercises in memory", "error", err)
			c = cache.NewMemoryCache()
		} else {
			closers = append(closers, func() { _ = client.Close() })
			c = cache.NewRedisCache(client, logger)
		}
		store = repositories.NewCachedRepository(store, c, cfg.CacheTTL, logger, repositories.ExercisePath(""))
	}

	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return store, closeAll, nil
}
