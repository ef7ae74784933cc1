package middleware

import (
	"fmt"

	"recipebox/internal/models"
	"recipebox/internal/services"
	"recipebox/internal/session"

	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
)

const (
	principalKey = "principal"
	sessionKey   = "session"
)

// LoadSession attaches the client's session and, when it is bound to a user,
// the current principal to the request locals. Changes made by later
// handlers are saved once, after they return.
func LoadSession(store *fibersession.Store, authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return fmt.Errorf("failed to load session: %w", err)
		}
		binding := session.Wrap(sess)
		c.Locals(sessionKey, binding)

		principal, err := authService.CurrentPrincipal(c.UserContext(), binding)
		if err != nil {
			return err
		}
		if principal != nil {
			c.Locals(principalKey, principal)
		}

		err = c.Next()
		if saveErr := binding.Save(); saveErr != nil && err == nil {
			err = fmt.Errorf("failed to save session: %w", saveErr)
		}
		return err
	}
}

// LoginRequired redirects anonymous visitors to the login page.
func LoginRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if Principal(c) != nil {
			return c.Next()
		}
		if binding := Session(c); binding != nil {
			binding.Flash("Please log in first.")
		}
		return c.Redirect("/login", fiber.StatusSeeOther)
	}
}

// Principal returns the authenticated principal of the request, or nil.
func Principal(c *fiber.Ctx) *models.Principal {
	p, _ := c.Locals(principalKey).(*models.Principal)
	return p
}

// Session returns the session binding loaded by LoadSession, or nil.
func Session(c *fiber.Ctx) *session.Binding {
	b, _ := c.Locals(sessionKey).(*session.Binding)
	return b
}
