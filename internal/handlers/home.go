package handlers

import (
	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jjenkins/pincode/internal/templates"
)

// render writes a templ component as the response, keeping any status
// already set on c
func render(c *fiber.Ctx, component templ.Component) error {
	handler := adaptor.HTTPHandler(templ.Handler(component, templ.WithStatus(c.Response().StatusCode())))
	return handler(c)
}

func isHTMX(c *fiber.Ctx) bool {
	return c.Get("HX-Request") == "true"
}

func HomeHandler(forms *FormRegistry, historyEnabled bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := forms.For(c)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading form")
		}

		return render(c, templates.Lookup(form.Snapshot(), historyEnabled))
	}
}
