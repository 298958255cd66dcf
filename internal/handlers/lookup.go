package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jjenkins/pincode/internal/templates"
	"github.com/jjenkins/pincode/internal/view"
)

// regionOrRedirect renders the form region for htmx and redirects plain
// form posts back to the page
func regionOrRedirect(c *fiber.Ctx, s view.State) error {
	if isHTMX(c) {
		return render(c, templates.LookupRegion(s))
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

func LookupHandler(forms *FormRegistry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := forms.For(c)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading form")
		}

		s, ok := form.Submit(c.FormValue("pincode"))
		if !ok {
			// a lookup is already running or results are shown
			c.Status(fiber.StatusConflict)
		}

		return regionOrRedirect(c, s)
	}
}

func StateHandler(forms *FormRegistry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := forms.For(c)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading form")
		}

		return render(c, templates.LookupRegion(form.Snapshot()))
	}
}

func FilterHandler(forms *FormRegistry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := forms.For(c)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading form")
		}

		s := form.SetFilter(c.Query("q"))

		if !isHTMX(c) {
			return c.Redirect("/", fiber.StatusSeeOther)
		}
		return render(c, templates.Results(s))
	}
}

func CancelHandler(forms *FormRegistry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := forms.For(c)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading form")
		}

		return regionOrRedirect(c, form.Cancel())
	}
}

func ResetHandler(forms *FormRegistry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := forms.For(c)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading form")
		}

		return regionOrRedirect(c, form.Reset())
	}
}
