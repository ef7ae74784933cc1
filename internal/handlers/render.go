package handlers

import (
	"recipebox/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

const layout = "layouts/main"

// render executes view inside the main layout. The authentication status is
// always provided; a pending session flash is consumed unless data already
// carries one.
func render(c *fiber.Ctx, view string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	principal := middleware.Principal(c)
	data["LoggedIn"] = principal != nil
	data["Principal"] = principal

	if _, ok := data["Flash"]; !ok {
		if binding := middleware.Session(c); binding != nil {
			if flash := binding.PopFlash(); flash != "" {
				data["Flash"] = flash
			}
		}
	}
	return c.Render(view, data, layout)
}

// redirectWithFlash stores message for the next page and redirects to path.
func redirectWithFlash(c *fiber.Ctx, path, message string) error {
	if binding := middleware.Session(c); binding != nil {
		binding.Flash(message)
	}
	return c.Redirect(path, fiber.StatusSeeOther)
}
