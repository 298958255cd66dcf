package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jjenkins/pincode/internal/logging"
	"github.com/jjenkins/pincode/internal/model"
	"github.com/jjenkins/pincode/internal/service"
)

type lookupResponse struct {
	Pincode string             `json:"pincode"`
	Outcome model.Outcome      `json:"outcome"`
	Message string             `json:"message,omitempty"`
	Count   int                `json:"count"`
	Records []model.PostOffice `json:"records"`
}

// APILookupHandler answers GET /api/pincode/:code with the lookup result as
// JSON. The optional q parameter filters by post office name.
func APILookupHandler(looker service.Looker, recorder service.Recorder, logger *logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		code, err := service.Validate(c.Params("code"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		start := time.Now()
		result := looker.Lookup(c.UserContext(), code)
		if recorder != nil {
			if err := recorder.Record(c.UserContext(), service.NewLookupRecord(code, result, time.Since(start))); err != nil {
				logger.Error("failed to record lookup", "pincode", code.String(), "error", err.Error())
			}
		}

		resp := lookupResponse{
			Pincode: code.String(),
			Outcome: result.Outcome,
			Message: result.Message,
			Records: []model.PostOffice{},
		}
		if result.IsSuccess() {
			resp.Records = service.Filter(result.Records, c.Query("q"))
		}
		resp.Count = len(resp.Records)

		status := fiber.StatusOK
		if result.Outcome == model.OutcomeFailure {
			status = fiber.StatusBadGateway
		}
		return c.Status(status).JSON(resp)
	}
}
