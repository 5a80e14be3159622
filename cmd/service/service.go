package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"rtm-portal/internal/cache"
	"rtm-portal/internal/config"
	"rtm-portal/internal/content"
	"rtm-portal/internal/database"
	"rtm-portal/internal/logger"
	appmiddleware "rtm-portal/internal/middleware"
	"rtm-portal/internal/questionnaire"
	"rtm-portal/internal/router"
	"rtm-portal/internal/sharepoint"
	"rtm-portal/internal/worker"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const serviceName = "rtm-portal"

// CustomValidator wraps go-playground/validator for Echo
// swagger:ignore
type CustomValidator struct {
	validator *validator.Validate
}

// Validate calls the underlying validator
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

var (
	loadConfig      = config.Load
	newLogger       = logger.New
	newPgxPool      = database.NewPgxPool
	newRedisClient  = cache.NewRedisClient
	runMigrationsFn = database.RunMigrations
	newWorkerPool   = worker.NewPool
	startServer     = func(e *echo.Echo, addr string) error { return e.Start(addr) }
	shutdownServer  = func(ctx context.Context, e *echo.Echo) error { return e.Shutdown(ctx) }
)

func run(ctx context.Context) error {
	cfg, err := loadConfig(config.DefaultEnvFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger(cfg.Logging.Level, cfg.Logging.Format, serviceName)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	db, err := newPgxPool(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	rdb, err := newRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() { _ = rdb.Close() }()

	if err := runMigrationsFn(cfg.Database.URL); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	site, err := content.Load(cfg.Content.DefaultHeroVariant)
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}
	renderer, err := content.NewRenderer()
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	wp := newWorkerPool(cfg.Worker.Count, log)
	defer wp.Stop()

	deps := router.Deps{
		Config: cfg,
		DB:     db,
		Cache:  rdb,
		Pool:   wp,
		Flow:   questionnaire.Default(),
		Site:   site,
		Logger: log,
	}
	if cfg.SharePoint.Enabled() {
		client := sharepoint.NewClient(cfg.SharePoint, log)
		deps.Syncer = sharepoint.NewSyncer(db, client, cfg.SharePoint, log)
	} else {
		log.Info("sharepoint not configured, sync disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}
	e.Renderer = renderer
	e.Use(middleware.RequestID())
	e.Use(appmiddleware.RequestLogger(log))
	e.Use(middleware.Recover())

	router.Setup(e, deps)

	errCh := make(chan error, 1)
	go func() {
		errCh <- startServer(e, cfg.ServerAddr())
	}()
	log.Info("server started", zap.String("addr", cfg.ServerAddr()))

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := shutdownServer(shutdownCtx, e); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}
