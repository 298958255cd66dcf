package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jjenkins/pincode/internal/logging"
	"github.com/jjenkins/pincode/internal/model"
	"github.com/jjenkins/pincode/internal/store"
	"github.com/jjenkins/pincode/internal/templates"
)

const historyDays = 14

// HistoryStore reads the lookup history
type HistoryStore interface {
	Recent(ctx context.Context, limit int) ([]model.LookupRecord, error)
	GetByPincode(ctx context.Context, pincode string) ([]model.LookupRecord, error)
	GetDailyCounts(ctx context.Context, days int) ([]store.DailyCount, error)
}

// StatsCalculator aggregates the lookup history
type StatsCalculator interface {
	Calculate(ctx context.Context) (*model.LookupStats, error)
}

func HistoryHandler(history HistoryStore, metrics StatsCalculator, logger *logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		pincode := c.Query("pincode")

		var records []model.LookupRecord
		var err error
		if pincode != "" {
			records, err = history.GetByPincode(ctx, pincode)
		} else {
			records, err = history.Recent(ctx, c.QueryInt("limit", 50))
		}
		if err != nil {
			logger.Error("failed to load lookup history", "error", err.Error())
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading history")
		}

		page := templates.HistoryPage{
			Records: records,
			Pincode: pincode,
			Days:    historyDays,
		}

		// Stats are optional on the page
		stats, err := metrics.Calculate(ctx)
		if err != nil {
			logger.Warn("failed to calculate lookup stats", "error", err.Error())
		} else {
			page.Stats = stats
		}

		daily, err := history.GetDailyCounts(ctx, historyDays)
		if err != nil {
			logger.Warn("failed to load daily counts", "error", err.Error())
		} else {
			page.Daily = daily
		}

		return render(c, templates.History(page))
	}
}
