package repositories

import (
	"context"

	"recipebox/internal/models"
)

// RecipeRepository defines the interface for recipe data access.
// Every multi-row query is ordered by recipe id, i.e. insertion order.
type RecipeRepository interface {
	Create(ctx context.Context, recipe *models.Recipe) error
	GetByID(ctx context.Context, id uint) (*models.Recipe, error)
	// GetByName returns the first recipe (lowest id) with exactly this name.
	GetByName(ctx context.Context, name string) (*models.Recipe, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]models.Recipe, error)
	// SearchByName returns recipes whose name contains term, ignoring case.
	SearchByName(ctx context.Context, term string) ([]models.Recipe, error)
	// Names returns the distinct recipe names.
	Names(ctx context.Context) ([]string, error)
}
