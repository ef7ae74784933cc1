package models

import (
	"time"

	"github.com/google/uuid"
)

// Recipe event types, also used as routing keys.
const (
	EventRecipeCreated = "recipe.created"
	EventRecipeSnapped = "recipe.snapped"
)

// RecipeEvent is published after a recipe has been committed.
type RecipeEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	RecipeID   uint      `json:"recipe_id"`
	RecipeName string    `json:"recipe_name"`
	OwnerID    uint      `json:"owner_id"`
	SourceID   uint      `json:"source_id,omitempty"` // Set for snaps only
	OccurredAt time.Time `json:"occurred_at"`
}

// NewRecipeEvent builds an event of the given type for recipe.
func NewRecipeEvent(eventType string, recipe *Recipe) RecipeEvent {
	return RecipeEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		RecipeID:   recipe.ID,
		RecipeName: recipe.Name,
		OwnerID:    recipe.OwnerID,
		OccurredAt: time.Now().UTC(),
	}
}
