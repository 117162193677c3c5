// Package main is the entry point for the Rengiat backend. It wires
// configuration, the database pool, schema migrations, and the HTTP
// routes, then starts the Fiber server.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/RikiSanjayaa/rengiat/internal/audit"
	"github.com/RikiSanjayaa/rengiat/internal/config"
	"github.com/RikiSanjayaa/rengiat/internal/database"
	"github.com/RikiSanjayaa/rengiat/internal/handlers"
	"github.com/RikiSanjayaa/rengiat/internal/middleware"
	"github.com/RikiSanjayaa/rengiat/internal/report"
	"github.com/RikiSanjayaa/rengiat/internal/repository"
	"github.com/RikiSanjayaa/rengiat/internal/security"
	"github.com/RikiSanjayaa/rengiat/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"
)

func main() {
	rollback := flag.Bool("rollback", false, "roll back the most recent migration and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if *rollback {
		if err := database.RollbackMigration(cfg.DatabaseURL, cfg.MigrationsURL); err != nil {
			logger.Fatal("failed to roll back migration", zap.Error(err))
		}
		logger.Info("rolled back most recent migration")
		return
	}

	if err := database.Connect(database.Config{URL: cfg.DatabaseURL}); err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsURL, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	// Login throttling: per-IP token bucket plus per-account lockout.
	loginRateLimiter := security.NewRateLimiter(
		cfg.LoginRateLimit,
		time.Minute/time.Duration(cfg.LoginRateLimit),
	)
	defer loginRateLimiter.Stop()

	accountLockout := security.NewAccountLockout(10, 30*time.Minute)

	// Audit records are written through the repository sink; failures
	// are logged, never surfaced to the mutation path.
	recorder := audit.NewRecorder(repository.NewAuditLogRepository(), logger)

	authService := services.NewAuthService(cfg.BcryptCost)
	entryService := services.NewEntryService(recorder, cfg.AttachmentDir, logger)
	unitService := services.NewUnitService(recorder)
	userService := services.NewUserService(recorder, authService)
	attachmentService := services.NewAttachmentService(cfg.AttachmentDir, cfg.AttachmentMaxBytes)

	builder := report.NewBuilder(
		repository.NewSubditRepository(),
		repository.NewUnitRepository(),
		repository.NewEntryRepository(),
	)

	store := session.New(session.Config{
		Expiration:     cfg.SessionTimeout,
		CookieSecure:   cfg.Env == "production",
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		CookieName:     "session_id",
		CookiePath:     "/",
	})

	authHandler := handlers.NewAuthHandler(store, authService, loginRateLimiter, accountLockout, logger)
	dailyHandler := handlers.NewDailyHandler(entryService, attachmentService, cfg.Location())
	reportHandler := handlers.NewReportHandler(builder, cfg.Location())
	adminHandler := handlers.NewAdminHandler(userService, unitService)
	settingsHandler := handlers.NewSettingsHandler()

	app := fiber.New(fiber.Config{
		BodyLimit:    int(cfg.AttachmentMaxBytes) + 1024*1024,
		ErrorHandler: errorHandler(logger),
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger(logger))
	app.Use(middleware.SecureHeaders())

	app.Post("/api/login", authHandler.Login)
	app.Post("/api/logout", authHandler.Logout)

	api := app.Group("/api", middleware.AuthRequired(store))
	api.Get("/me", authHandler.Me)

	// Daily input screen
	api.Get("/daily", dailyHandler.ListDay)
	api.Post("/entries", dailyHandler.CreateEntry)
	api.Put("/entries/:id", dailyHandler.UpdateEntry)
	api.Delete("/entries/:id", dailyHandler.DeleteEntry)
	if cfg.AttachmentsEnabled {
		api.Get("/entries/:id/attachments", dailyHandler.ListAttachments)
		api.Post("/entries/:id/attachments", dailyHandler.UploadAttachment)
		api.Get("/entries/:id/attachments/:attachmentID", dailyHandler.DownloadAttachment)
	}

	// Report grid and export
	api.Get("/reports", reportHandler.Show)
	api.Get("/reports/export", reportHandler.Export)

	// Per-user report settings (TDD signature block)
	api.Get("/settings/report", settingsHandler.Show)
	api.Put("/settings/report", settingsHandler.Save)

	// Admin screens
	admin := api.Group("/admin", middleware.AdminOnly())
	admin.Get("/users", adminHandler.ListUsers)
	admin.Post("/users", adminHandler.CreateUser)
	admin.Put("/users/:id", adminHandler.UpdateUser)
	admin.Delete("/users/:id", adminHandler.DeleteUser)

	admin.Get("/units", adminHandler.ListUnits)
	admin.Post("/units", adminHandler.CreateUnit)
	admin.Put("/units/:id", adminHandler.UpdateUnit)
	admin.Delete("/units/:id", adminHandler.DeleteUnit)

	admin.Get("/subdits", adminHandler.ListSubdits)
	admin.Post("/subdits", adminHandler.CreateSubdit)
	admin.Put("/subdits/:id", adminHandler.UpdateSubdit)
	admin.Delete("/subdits/:id", adminHandler.DeleteSubdit)

	admin.Get("/audit-logs", adminHandler.ListAuditLogs)

	logger.Info("server starting",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.Env),
		zap.String("timezone", cfg.ReportTimezone),
	)

	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// newLogger builds the zap logger: human-readable in development,
// JSON in production.
func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// errorHandler converts unhandled errors into JSON responses. Fiber
// errors keep their status; everything else is a logged 500.
func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "internal server error"

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
			message = e.Message
		} else {
			logger.Error("unhandled error",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}

		return c.Status(code).JSON(fiber.Map{"error": message})
	}
}
