package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
	"github.com/terraincognita07/drinktab/internal/api"
	"github.com/terraincognita07/drinktab/internal/config"
	"github.com/terraincognita07/drinktab/internal/db"
	"github.com/terraincognita07/drinktab/internal/i18n"
	"github.com/terraincognita07/drinktab/internal/services"
	"github.com/terraincognita07/drinktab/internal/sessions"
)

const (
	shutdownTimeout      = 10 * time.Second
	sessionPurgeInterval = time.Hour
	insecureAdminDefault = "password"
)

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := config.NewLogger(cfg.Logger)
	location := mustLoadLocation(cfg.Server.TimeZone, logger)
	time.Local = location

	database, err := db.Open(cfg.Database.URL, logger)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	defer func() {
		if sqlDB, err := database.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	i18nManager, err := i18n.NewManager(cfg.Server.DefaultLanguage, cfg.Server.LocalesDir)
	if err != nil {
		return fmt.Errorf("i18n init failed: %w", err)
	}

	adminAuth, err := services.NewAdminAuthenticator(cfg.Admin.Username, cfg.Admin.Password, cfg.Admin.PasswordHash)
	if err != nil {
		return fmt.Errorf("admin auth init failed: %w", err)
	}
	if cfg.Admin.PasswordHash == "" && cfg.Admin.Password == insecureAdminDefault {
		logger.Warn().Msg("admin password is the built-in default; set ADMIN_PASSWORD_HASH")
	}

	lifecycleCtx, cancelLifecycle := context.WithCancel(ctx)
	defer cancelLifecycle()

	storage, err := sessions.NewStorage(cfg.Session, database)
	if err != nil {
		return fmt.Errorf("session storage init failed: %w", err)
	}
	defer func() {
		_ = storage.Close()
	}()
	if gormStorage, ok := storage.(*sessions.GormStorage); ok {
		gormStorage.StartJanitor(lifecycleCtx, sessionPurgeInterval, logger)
	}

	handler, err := api.NewHandler(
		database,
		sessions.NewStore(storage, cfg.Session.CookieSecure),
		adminAuth,
		cfg.Server.TemplatesDir,
		location,
		i18nManager,
		logger,
		cfg.Session.CookieSecure,
	)
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}

	app := newApp(handler, logger)

	sigCtx, stopSignals := signal.NotifyContext(lifecycleCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		cancelLifecycle()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	repositories := db.NewRepositories(database)
	usersCount, err := services.NewCatalogService(repositories.Users, repositories.Products).CountUsers()
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}

	logger.Info().
		Str("addr", cfg.Server.Address()).
		Str("tz", location.String()).
		Str("session_store", cfg.Session.Store).
		Int64("users", usersCount).
		Msg("drinktab listening")

	if err := app.Listen(cfg.Server.Address()); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}

func newApp(handler *api.Handler, logger zerolog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "drinktab",
		DisableStartupMessage: true,
		ErrorHandler:          api.ErrorHandler(logger),
	})

	app.Use(recover.New())
	app.Use(compress.New())
	app.Use(api.RequestLogger(logger))
	app.Use(handler.LanguageMiddleware)

	api.RegisterRoutes(app, handler)
	return app
}

func mustLoadLocation(name string, logger zerolog.Logger) *time.Location {
	location, err := time.LoadLocation(name)
	if err != nil {
		logger.Warn().Str("tz", name).Msg("invalid TZ, falling back to UTC")
		return time.UTC
	}
	return location
}
