package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"recipebox/internal/models"
)

// MockRecipeRepository is an in-memory implementation of RecipeRepository.
// Recipes are kept in insertion order, which is also ID order.
type MockRecipeRepository struct {
	recipes []models.Recipe
	nextID  uint
	mu      sync.RWMutex
}

// NewMockRecipeRepository creates a new instance of MockRecipeRepository.
func NewMockRecipeRepository() *MockRecipeRepository {
	return &MockRecipeRepository{}
}

// Create adds a new recipe. A preset ID is kept so tests can seed fixed IDs.
func (r *MockRecipeRepository) Create(_ context.Context, recipe *models.Recipe) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if recipe.ID == 0 {
		r.nextID++
		recipe.ID = r.nextID
	} else if recipe.ID > r.nextID {
		r.nextID = recipe.ID
	}
	for _, existing := range r.recipes {
		if existing.ID == recipe.ID {
			return fmt.Errorf("recipe with ID %d: %w", recipe.ID, ErrDuplicate)
		}
	}
	recipe.CreatedAt = time.Now()
	r.recipes = append(r.recipes, *recipe)
	sort.SliceStable(r.recipes, func(i, j int) bool { return r.recipes[i].ID < r.recipes[j].ID })
	return nil
}

// GetByID returns a recipe by its ID.
func (r *MockRecipeRepository) GetByID(_ context.Context, id uint) (*models.Recipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, recipe := range r.recipes {
		if recipe.ID == id {
			return &recipe, nil
		}
	}
	return nil, fmt.Errorf("recipe with ID %d: %w", id, ErrNotFound)
}

// GetByName returns the first recipe with exactly the given name.
func (r *MockRecipeRepository) GetByName(_ context.Context, name string) (*models.Recipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, recipe := range r.recipes {
		if recipe.Name == name {
			return &recipe, nil
		}
	}
	return nil, fmt.Errorf("recipe named %q: %w", name, ErrNotFound)
}

// ListByOwner returns every recipe owned by ownerID.
func (r *MockRecipeRepository) ListByOwner(_ context.Context, ownerID uint) ([]models.Recipe, error) {
	return r.filter(func(recipe models.Recipe) bool { return recipe.OwnerID == ownerID }), nil
}

// SearchByName returns recipes whose name contains term, ignoring case.
func (r *MockRecipeRepository) SearchByName(_ context.Context, term string) ([]models.Recipe, error) {
	needle := strings.ToLower(term)
	return r.filter(func(recipe models.Recipe) bool {
		return strings.Contains(strings.ToLower(recipe.Name), needle)
	}), nil
}

// Names returns the distinct recipe names in alphabetical order.
func (r *MockRecipeRepository) Names(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{}, len(r.recipes))
	names := make([]string, 0, len(r.recipes))
	for _, recipe := range r.recipes {
		if _, ok := seen[recipe.Name]; ok {
			continue
		}
		seen[recipe.Name] = struct{}{}
		names = append(names, recipe.Name)
	}
	sort.Strings(names)
	return names, nil
}

// Count returns the number of stored recipes.
func (r *MockRecipeRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.recipes)
}

func (r *MockRecipeRepository) filter(keep func(models.Recipe) bool) []models.Recipe {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.Recipe{}
	for _, recipe := range r.recipes {
		if keep(recipe) {
			out = append(out, recipe)
		}
	}
	return out
}
