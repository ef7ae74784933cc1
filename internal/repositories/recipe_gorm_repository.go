package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"recipebox/internal/models"

	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// GORMRecipeRepository is a GORM implementation of RecipeRepository.
type GORMRecipeRepository struct {
	db *gorm.DB
}

// NewGORMRecipeRepository creates a new instance of GORMRecipeRepository.
func NewGORMRecipeRepository(db *gorm.DB) *GORMRecipeRepository {
	return &GORMRecipeRepository{
		db: db,
	}
}

// Create inserts a new recipe; the database assigns its ID.
func (r *GORMRecipeRepository) Create(ctx context.Context, recipe *models.Recipe) error {
	if err := r.db.WithContext(ctx).Omit("Owner").Create(recipe).Error; err != nil {
		return fmt.Errorf("failed to create recipe: %w", err)
	}
	return nil
}

// GetByID retrieves a single recipe by its ID.
func (r *GORMRecipeRepository) GetByID(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := r.db.WithContext(ctx).First(&recipe, "recipe_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("recipe with ID %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get recipe by ID %d: %w", id, err)
	}
	return &recipe, nil
}

// GetByName retrieves the first recipe with exactly the given name.
func (r *GORMRecipeRepository) GetByName(ctx context.Context, name string) (*models.Recipe, error) {
	var recipe models.Recipe
	err := r.db.WithContext(ctx).
		Where("recipe_name = ?", name).
		Order("recipe_id").
		First(&recipe).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("recipe named %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get recipe by name %q: %w", name, err)
	}
	return &recipe, nil
}

// ListByOwner retrieves every recipe owned by ownerID.
func (r *GORMRecipeRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.Recipe, error) {
	recipes := []models.Recipe{}
	err := r.db.WithContext(ctx).
		Where("owner = ?", ownerID).
		Order("recipe_id").
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes of owner %d: %w", ownerID, err)
	}
	return recipes, nil
}

// SearchByName retrieves recipes whose name contains term, case-insensitively.
// On SQLite, LOWER only folds ASCII letters, so non-ASCII letters match only
// in the same case.
func (r *GORMRecipeRepository) SearchByName(ctx context.Context, term string) ([]models.Recipe, error) {
	pattern := "%" + likeEscaper.Replace(r.lower(term)) + "%"
	recipes := []models.Recipe{}
	err := r.db.WithContext(ctx).
		Where("LOWER(recipe_name) LIKE ? ESCAPE '\\'", pattern).
		Order("recipe_id").
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search recipes for %q: %w", term, err)
	}
	return recipes, nil
}

// Names retrieves the distinct recipe names in alphabetical order.
func (r *GORMRecipeRepository) Names(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&models.Recipe{}).
		Distinct("recipe_name").
		Order("recipe_name").
		Pluck("recipe_name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recipe names: %w", err)
	}
	return names, nil
}

// lower folds term the way the database's LOWER folds recipe_name.
func (r *GORMRecipeRepository) lower(term string) string {
	if r.db.Dialector.Name() != "sqlite" {
		return strings.ToLower(term)
	}
	return strings.Map(func(c rune) rune {
		if 'A' <= c && c <= 'Z' {
			return c + ('a' - 'A')
		}
		return c
	}, term)
}
