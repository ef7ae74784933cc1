package handlers

import (
	"errors"

	"recipebox/internal/middleware"
	"recipebox/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	msgEmailExists        = "Email already exists. Login instead."
	msgInvalidCredentials = "Email not found or password incorrect, try again."
)

// AuthHandler handles HTTP requests for registration, login and logout.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
	log         *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    newValidator(),
		log:         log,
	}
}

// RegisterRoutes registers the HTML authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/register", h.ShowRegister)
	router.Post("/register", h.HandleRegister)
	router.Get("/login", h.ShowLogin)
	router.Post("/login", h.HandleLogin)
	router.Get("/logout", h.HandleLogout)
}

// RegisterAPIRoutes registers the token endpoint of the JSON API.
func (h *AuthHandler) RegisterAPIRoutes(router fiber.Router) {
	router.Post("/auth/token", h.HandleIssueToken)
}

func (h *AuthHandler) ShowRegister(c *fiber.Ctx) error {
	return render(c, "register", fiber.Map{"Form": RegisterForm{}})
}

// HandleRegister creates the account and logs the new user in.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var form RegisterForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form submission")
	}
	if err := validateForm(h.validate, &form); err != nil {
		return h.rerender(c, "register", RegisterForm{Name: form.Name, Email: form.Email}, err)
	}

	_, err := h.authService.Register(c.UserContext(), middleware.Session(c), services.RegisterInput{
		Name:     form.Name,
		Email:    form.Email,
		Password: form.Password1,
	})
	if err != nil {
		if errors.Is(err, services.ErrDuplicateEmail) {
			return redirectWithFlash(c, "/login", msgEmailExists)
		}
		return err
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (h *AuthHandler) ShowLogin(c *fiber.Ctx) error {
	return render(c, "login", fiber.Map{"Form": LoginForm{}})
}

// HandleLogin binds the session to the user matching the credentials.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var form LoginForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form submission")
	}
	if err := validateForm(h.validate, &form); err != nil {
		return h.rerender(c, "login", LoginForm{Email: form.Email}, err)
	}

	_, err := h.authService.Login(c.UserContext(), middleware.Session(c), form.Email, form.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.Status(fiber.StatusUnauthorized)
			return render(c, "login", fiber.Map{
				"Form":  LoginForm{Email: form.Email},
				"Flash": msgInvalidCredentials,
			})
		}
		return err
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

// HandleLogout clears the session; it is safe to call when logged out.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	if err := h.authService.Logout(middleware.Session(c)); err != nil {
		return err
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

// HandleIssueToken exchanges credentials for a bearer token.
func (h *AuthHandler) HandleIssueToken(c *fiber.Ctx) error {
	var req LoginForm
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := validateForm(h.validate, &req); err != nil {
		return validationResponse(c, err)
	}

	user, err := h.authService.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication failed",
				"error":   err.Error(),
			})
		}
		return err
	}

	token, err := h.authService.IssueToken(user.Principal())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
	})
}

// rerender shows view again with the submitted values and field errors.
func (h *AuthHandler) rerender(c *fiber.Ctx, view string, form interface{}, err error) error {
	var verr *ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	c.Status(fiber.StatusUnprocessableEntity)
	return render(c, view, fiber.Map{
		"Form":   form,
		"Errors": verr.Fields,
	})
}

// validationResponse writes the JSON form of a validation failure.
func validationResponse(c *fiber.Ctx, err error) error {
	var verr *ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  verr.Fields,
	})
}
