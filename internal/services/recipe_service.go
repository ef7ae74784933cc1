package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"recipebox/internal/models"
	"recipebox/internal/repositories"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
)

// RecipeService handles the recipe workflow: listing, display and snapping.
type RecipeService struct {
	store      repositories.Store
	publisher  EventPublisher // Optional
	log        *zap.Logger
	ownerNames *lru.Cache // user id -> display name; users are never renamed
}

// NewRecipeService creates a new RecipeService. publisher may be nil, in
// which case no events are emitted.
func NewRecipeService(store repositories.Store, publisher EventPublisher, log *zap.Logger, ownerCacheSize int) (*RecipeService, error) {
	cache, err := lru.New(ownerCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create owner cache: %w", err)
	}
	return &RecipeService{
		store:      store,
		publisher:  publisher,
		log:        log,
		ownerNames: cache,
	}, nil
}

// ListOwnedBy returns the principal's recipes in insertion order.
func (s *RecipeService) ListOwnedBy(ctx context.Context, principal *models.Principal) ([]models.Recipe, error) {
	if principal == nil {
		return nil, ErrUnauthenticated
	}
	recipes, err := s.store.Recipes().ListByOwner(ctx, principal.ID)
	if err != nil {
		return nil, err
	}
	return recipes, nil
}

// DisplayRecipe looks a recipe up by exact name and joins its owner's name.
// Names are not unique; the oldest recipe with the name is shown.
func (s *RecipeService) DisplayRecipe(ctx context.Context, name string) (*models.RecipeView, error) {
	recipe, err := s.store.Recipes().GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	ownerName, err := s.ownerName(ctx, recipe.OwnerID)
	if err != nil {
		return nil, err
	}
	return &models.RecipeView{
		ID:        recipe.ID,
		Name:      recipe.Name,
		OwnerID:   recipe.OwnerID,
		OwnerName: ownerName,
	}, nil
}

func (s *RecipeService) ownerName(ctx context.Context, ownerID uint) (string, error) {
	if name, ok := s.ownerNames.Get(ownerID); ok {
		return name.(string), nil
	}
	owner, err := s.store.Users().GetByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.log.Warn("recipe references missing owner", zap.Uint("owner_id", ownerID))
			return "", ErrOwnerNotFound
		}
		return "", err
	}
	s.ownerNames.Add(ownerID, owner.Name)
	return owner.Name, nil
}

// SnapRecipe copies the recipe with the given ID into the principal's
// collection. The source recipe is never modified.
func (s *RecipeService) SnapRecipe(ctx context.Context, recipeID uint, principal *models.Principal) (*models.Recipe, error) {
	if principal == nil {
		return nil, ErrUnauthenticated
	}

	var snapped *models.Recipe
	err := s.store.Atomic(ctx, func(tx repositories.Store) error {
		source, err := tx.Recipes().GetByID(ctx, recipeID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		snapped = &models.Recipe{
			Name:    source.SnapName(),
			OwnerID: principal.ID,
		}
		return tx.Recipes().Create(ctx, snapped)
	})
	if err != nil {
		return nil, err
	}

	event := models.NewRecipeEvent(models.EventRecipeSnapped, snapped)
	event.SourceID = recipeID
	s.publish(event)
	return snapped, nil
}

// CreateRecipe stores a new recipe owned by the principal.
func (s *RecipeService) CreateRecipe(ctx context.Context, name string, principal *models.Principal) (*models.Recipe, error) {
	if principal == nil {
		return nil, ErrUnauthenticated
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("recipe name is required: %w", ErrValidation)
	}

	recipe := &models.Recipe{
		Name:    name,
		OwnerID: principal.ID,
	}
	if err := s.store.Recipes().Create(ctx, recipe); err != nil {
		return nil, err
	}
	s.publish(models.NewRecipeEvent(models.EventRecipeCreated, recipe))
	return recipe, nil
}

// publish is best effort: the recipe is already committed.
func (s *RecipeService) publish(event models.RecipeEvent) {
	if s.publisher == nil {
		return
	}
	body, err := json.Marshal(event)
	if err != nil {
		s.log.Error("failed to marshal recipe event", zap.Error(err))
		return
	}
	if err := s.publisher.Publish(event.Type, body); err != nil {
		s.log.Warn("failed to publish recipe event",
			zap.String("type", event.Type),
			zap.Uint("recipe_id", event.RecipeID),
			zap.Error(err),
		)
		return
	}
	s.log.Debug("published recipe event", zap.String("type", event.Type), zap.Uint("recipe_id", event.RecipeID))
}
