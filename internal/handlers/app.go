package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jjenkins/pincode/internal/logging"
	"github.com/jjenkins/pincode/internal/service"
)

// AppConfig holds the dependencies of the web app. History and Metrics
// are nil when no database is configured.
type AppConfig struct {
	Forms     *FormRegistry
	Looker    service.Looker
	Recorder  service.Recorder
	History   HistoryStore
	Metrics   StatsCalculator
	Logger    *logging.Logger
	AccessLog bool
}

// NewApp builds the fiber app with all routes registered
func NewApp(cfg AppConfig) *fiber.App {
	if cfg.Logger == nil {
		cfg.Logger = logging.NopLogger()
	}

	app := fiber.New(fiber.Config{
		AppName:               "Pincode Lookup",
		DisableStartupMessage: true,
		// form values outlive the request inside each session's form state
		Immutable: true,
	})

	app.Use(recover.New())
	if cfg.AccessLog {
		app.Use(logger.New())
	}

	historyEnabled := cfg.History != nil && cfg.Metrics != nil

	// Form routes
	app.Get("/", HomeHandler(cfg.Forms, historyEnabled))
	app.Post("/lookup", LookupHandler(cfg.Forms))
	app.Get("/state", StateHandler(cfg.Forms))
	app.Get("/filter", FilterHandler(cfg.Forms))
	app.Post("/cancel", CancelHandler(cfg.Forms))
	app.Post("/reset", ResetHandler(cfg.Forms))

	// JSON API
	app.Get("/api/pincode/:code", APILookupHandler(cfg.Looker, cfg.Recorder, cfg.Logger))

	if historyEnabled {
		app.Get("/history", HistoryHandler(cfg.History, cfg.Metrics, cfg.Logger))
	}

	return app
}
