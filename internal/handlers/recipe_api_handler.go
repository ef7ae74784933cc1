package handlers

import (
	"errors"
	"fmt"

	"recipebox/internal/middleware"
	"recipebox/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RecipeAPIHandler handles JSON requests for recipes.
type RecipeAPIHandler struct {
	recipeService *services.RecipeService
	searchService *services.SearchService
	validate      *validator.Validate
	log           *zap.Logger
}

// NewRecipeAPIHandler creates a new RecipeAPIHandler.
func NewRecipeAPIHandler(recipeService *services.RecipeService, searchService *services.SearchService, log *zap.Logger) *RecipeAPIHandler {
	return &RecipeAPIHandler{
		recipeService: recipeService,
		searchService: searchService,
		validate:      newValidator(),
		log:           log,
	}
}

// RegisterPublicRoutes registers the routes open to anonymous callers.
func (h *RecipeAPIHandler) RegisterPublicRoutes(router fiber.Router) {
	router.Get("/recipes/search", h.HandleSearch)
	router.Get("/recipes/name/*", h.HandleGetByName)
}

// RegisterProtectedRoutes registers the routes acting for the caller. The
// router must already enforce middleware.AuthRequired.
func (h *RecipeAPIHandler) RegisterProtectedRoutes(protected fiber.Router) {
	protected.Get("/recipes/mine", h.HandleListMine)
	protected.Post("/recipes", h.HandleCreate)
	protected.Post("/recipes/:id/snap", h.HandleSnap)
}

// HandleSearch runs a keyword search; an empty query yields an empty list.
func (h *RecipeAPIHandler) HandleSearch(c *fiber.Ctx) error {
	recipes, err := h.searchService.Search(c.UserContext(), c.Query("q"))
	if err != nil {
		return err
	}
	return c.JSON(recipes)
}

func (h *RecipeAPIHandler) HandleGetByName(c *fiber.Ctx) error {
	view, err := h.recipeService.DisplayRecipe(c.UserContext(), c.Params("*"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(view)
}

func (h *RecipeAPIHandler) HandleListMine(c *fiber.Ctx) error {
	recipes, err := h.recipeService.ListOwnedBy(c.UserContext(), middleware.Principal(c))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(recipes)
}

func (h *RecipeAPIHandler) HandleCreate(c *fiber.Ctx) error {
	var form RecipeForm
	if err := c.BodyParser(&form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := validateForm(h.validate, &form); err != nil {
		return validationResponse(c, err)
	}

	recipe, err := h.recipeService.CreateRecipe(c.UserContext(), form.Name, middleware.Principal(c))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(recipe)
}

func (h *RecipeAPIHandler) HandleSnap(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": fmt.Sprintf("Invalid recipe ID %q", c.Params("id")),
		})
	}

	recipe, err := h.recipeService.SnapRecipe(c.UserContext(), uint(id), middleware.Principal(c))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(recipe)
}

// respondError maps service errors to JSON responses; anything unexpected is
// passed on to the app's error handler.
func (h *RecipeAPIHandler) respondError(c *fiber.Ctx, err error) error {
	status := 0
	switch {
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrOwnerNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrUnauthenticated):
		status = fiber.StatusUnauthorized
	case errors.Is(err, services.ErrValidation):
		status = fiber.StatusBadRequest
	default:
		return err
	}
	return c.Status(status).JSON(fiber.Map{
		"message": err.Error(),
	})
}
