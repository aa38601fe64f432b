package main

import (
	"strings"

	"cafestock-backend/internal/auth"
	"cafestock-backend/internal/config"
	"cafestock-backend/internal/database"
	"cafestock-backend/internal/inventory"
	"cafestock-backend/internal/logger"
	"cafestock-backend/internal/models"
	"cafestock-backend/internal/notify"
	"cafestock-backend/internal/report"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog/log"
)

func main() {
	logger.Setup()
	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Error().Err(err).Msg("unexpected error")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unexpected server error",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-manager", auth.RegisterManagerHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Manager-only routes
	managerRoutes := protected.Group("")
	managerRoutes.Use(auth.RequireRole(models.RoleManager))

	managerRoutes.Post("/auth/baristas", auth.RegisterBaristaHandler())

	// Position management
	managerRoutes.Post("/positions", inventory.CreatePositionHandler())
	managerRoutes.Put("/positions/:id", inventory.UpdatePositionHandler())
	managerRoutes.Delete("/positions/:id", inventory.DeactivatePositionHandler())

	// Batches (receiving)
	managerRoutes.Post("/batches", inventory.CreateBatchHandler())
	managerRoutes.Delete("/batches/:id", inventory.DeleteBatchHandler())
	managerRoutes.Post("/batches/expiry-scan", inventory.ExpiryScanHandler())

	// Report lock toggle
	managerRoutes.Post("/daily-reports/:id/lock", report.SetLockHandler())

	// Shared (any authenticated role)
	protected.Get("/positions", inventory.ListPositionsHandler())
	protected.Get("/batches", inventory.ListBatchesHandler())

	// Daily reports
	protected.Get("/daily-reports", report.GetReportHandler())
	protected.Put("/daily-reports/items", report.UpsertItemHandler())
	protected.Post("/daily-reports/submit", report.SubmitReportHandler())
	protected.Post("/daily-reports/prefill", report.PrefillHandler())
	protected.Delete("/daily-reports/:id", report.DeleteReportHandler())

	// Notifications
	protected.Get("/notifications", notify.ListNotificationsHandler())
	protected.Post("/notifications/:id/read", notify.MarkReadHandler())
	protected.Post("/notifications/read-all", notify.MarkAllReadHandler())

	log.Info().Str("port", cfg.HTTPPort).Msg("server listening")
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
