package main

import (
	"log"
	"strings"
	"time"

	"press-inventory/internal/audit"
	"press-inventory/internal/auth"
	"press-inventory/internal/config"
	"press-inventory/internal/dashboard"
	"press-inventory/internal/database"
	"press-inventory/internal/httperr"
	"press-inventory/internal/inventory"
	"press-inventory/internal/ledger"
	"press-inventory/internal/logger"
	"press-inventory/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel)

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("[FATAL] database: %v", err)
	}
	if err := auth.SeedAdmin(db, cfg); err != nil {
		log.Fatalf("[FATAL] seed admin: %v", err)
	}

	engine := ledger.NewEngine(db)
	if err := startupCheck(engine, cfg.StockCheckOnStartup); err != nil {
		log.Fatalf("[FATAL] stock check: %v", err)
	}
	auditSvc := audit.NewService(db, engine)

	app := fiber.New(fiber.Config{
		ErrorHandler: httperr.Handler,
		BodyLimit:    int(cfg.MaxUploadSizeBytes) + 1<<20, // multipart overhead
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  strings.Join(cfg.CORSOriginList(), ","),
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS",
		ExposeHeaders: "Content-Disposition",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/login", auth.LoginLimiter(10, time.Minute), auth.LoginHandler(db, cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler(db))
	protected.Put("/auth/password", auth.ChangePasswordHandler(db))

	inventory.Register(protected, inventory.Deps{Engine: engine, Audit: auditSvc, Config: cfg})
	dashboard.Register(protected.Group("/dashboard"), engine, cfg.LowStockThreshold)

	// Audit logs
	protected.Get("/audit-logs", audit.ListAuditLogsHandler(auditSvc))
	protected.Post("/audit-logs/:id/undo", auth.RequireRole(models.RoleAdmin), audit.UndoAuditLogHandler(auditSvc))

	logger.L.Info("server listening", "port", cfg.HTTPPort, "driver", cfg.DatabaseDriver)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}

// startupCheck runs the configured integrity check of the stock snapshot.
func startupCheck(engine *ledger.Engine, mode string) error {
	switch mode {
	case config.StockCheckOff:
		return nil
	case config.StockCheckRebuild:
		entries, err := engine.Rebuild()
		if err != nil {
			return err
		}
		logger.L.Info("stock snapshot rebuilt", "entries", len(entries))
		return nil
	}

	repaired, err := engine.Repair()
	if err != nil {
		return err
	}
	for _, m := range repaired {
		logger.L.Warn("stock snapshot diverged from ledger", "key", m.Key.String(), "snapshot", m.Snapshot.String(), "ledger", m.Ledger.String())
	}
	if len(repaired) > 0 {
		logger.L.Warn("stock snapshot rebuilt after verification", "repaired", len(repaired))
	}
	return nil
}
