package handlers

import (
	"errors"

	"recipebox/internal/middleware"
	"recipebox/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const suggestionLimit = 5

// RecipeHandler serves the HTML pages for searching, listing, displaying,
// adding and snapping recipes.
type RecipeHandler struct {
	recipeService *services.RecipeService
	searchService *services.SearchService
	validate      *validator.Validate
	log           *zap.Logger
}

// NewRecipeHandler creates a new RecipeHandler.
func NewRecipeHandler(recipeService *services.RecipeService, searchService *services.SearchService, log *zap.Logger) *RecipeHandler {
	return &RecipeHandler{
		recipeService: recipeService,
		searchService: searchService,
		validate:      newValidator(),
		log:           log,
	}
}

// RegisterRoutes registers the recipe pages. Pages that act on the current
// user's collection are wrapped in middleware.LoginRequired.
func (h *RecipeHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandleHome)
	router.Get("/search/", h.ShowSearch)
	router.Post("/search/", h.HandleSearch)
	router.Get("/display_recipe/*", h.HandleDisplayRecipe) // names may contain "/"

	loginRequired := middleware.LoginRequired()
	router.Get("/myrecipes/", loginRequired, h.HandleMyRecipes)
	router.Get("/snap_recipe/:id", loginRequired, h.HandleSnapRecipe)
	router.Get("/recipes/new", loginRequired, h.ShowNewRecipe)
	router.Post("/recipes/new", loginRequired, h.HandleNewRecipe)
}

func (h *RecipeHandler) HandleHome(c *fiber.Ctx) error {
	return render(c, "index", nil)
}

// ShowSearch renders the search form. A ?q= parameter runs the search
// directly so result pages can be linked.
func (h *RecipeHandler) ShowSearch(c *fiber.Ctx) error {
	if q := c.Query("q"); q != "" {
		return h.search(c, SearchForm{Search: q})
	}
	return render(c, "search", fiber.Map{"Form": SearchForm{}})
}

func (h *RecipeHandler) HandleSearch(c *fiber.Ctx) error {
	var form SearchForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form submission")
	}
	return h.search(c, form)
}

func (h *RecipeHandler) search(c *fiber.Ctx, form SearchForm) error {
	if err := validateForm(h.validate, &form); err != nil {
		var verr *ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		c.Status(fiber.StatusUnprocessableEntity)
		return render(c, "search", fiber.Map{"Form": form, "Errors": verr.Fields})
	}

	recipes, err := h.searchService.Search(c.UserContext(), form.Search)
	if err != nil {
		return err
	}
	data := fiber.Map{
		"Form":     form,
		"Searched": true,
		"Recipes":  recipes,
	}
	if len(recipes) == 0 {
		suggestions, err := h.searchService.Suggest(c.UserContext(), form.Search, suggestionLimit)
		if err != nil {
			h.log.Warn("failed to compute suggestions", zap.Error(err))
		}
		data["Flash"] = "No recipes found."
		data["Suggestions"] = suggestions
	}
	return render(c, "search", data)
}

// HandleMyRecipes lists the recipes owned by the logged-in user.
func (h *RecipeHandler) HandleMyRecipes(c *fiber.Ctx) error {
	recipes, err := h.recipeService.ListOwnedBy(c.UserContext(), middleware.Principal(c))
	if err != nil {
		if errors.Is(err, services.ErrUnauthenticated) {
			return redirectWithFlash(c, "/login", "Please log in first.")
		}
		return err
	}
	return render(c, "myrecipes", fiber.Map{
		"Form":    SearchForm{},
		"Recipes": recipes,
	})
}

// HandleDisplayRecipe shows a recipe and its owner's name.
func (h *RecipeHandler) HandleDisplayRecipe(c *fiber.Ctx) error {
	name := c.Params("*")
	view, err := h.recipeService.DisplayRecipe(c.UserContext(), name)
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.Status(fiber.StatusNotFound)
		return render(c, "search", fiber.Map{
			"Form":  SearchForm{},
			"Flash": "Recipe \"" + name + "\" was not found.",
		})
	case errors.Is(err, services.ErrOwnerNotFound):
		c.Status(fiber.StatusNotFound)
		return render(c, "search", fiber.Map{
			"Form":  SearchForm{},
			"Flash": "The owner of \"" + name + "\" no longer exists.",
		})
	case err != nil:
		return err
	}
	return render(c, "recipe", fiber.Map{"Recipe": view})
}

// HandleSnapRecipe copies a recipe into the current user's collection.
func (h *RecipeHandler) HandleSnapRecipe(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return redirectWithFlash(c, "/myrecipes/", "That recipe does not exist.")
	}

	recipe, err := h.recipeService.SnapRecipe(c.UserContext(), uint(id), middleware.Principal(c))
	switch {
	case errors.Is(err, services.ErrNotFound):
		return redirectWithFlash(c, "/myrecipes/", "That recipe does not exist.")
	case errors.Is(err, services.ErrUnauthenticated):
		return redirectWithFlash(c, "/login", "Please log in first.")
	case err != nil:
		return err
	}
	return redirectWithFlash(c, "/myrecipes/", "Snapped \""+recipe.Name+"\".")
}

func (h *RecipeHandler) ShowNewRecipe(c *fiber.Ctx) error {
	return render(c, "new_recipe", fiber.Map{"Form": RecipeForm{}})
}

// HandleNewRecipe stores a recipe submitted by the logged-in user.
func (h *RecipeHandler) HandleNewRecipe(c *fiber.Ctx) error {
	var form RecipeForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form submission")
	}
	if err := validateForm(h.validate, &form); err != nil {
		var verr *ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		c.Status(fiber.StatusUnprocessableEntity)
		return render(c, "new_recipe", fiber.Map{"Form": form, "Errors": verr.Fields})
	}

	recipe, err := h.recipeService.CreateRecipe(c.UserContext(), form.Name, middleware.Principal(c))
	if err != nil {
		return err
	}
	return redirectWithFlash(c, "/myrecipes/", "Added \""+recipe.Name+"\".")
}
