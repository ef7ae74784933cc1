package repositories

import "context"

// Store groups the repositories that share one database handle.
type Store interface {
	Users() UserRepository
	Recipes() RecipeRepository
	// Atomic runs fn against a store bound to a single transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	Atomic(ctx context.Context, fn func(tx Store) error) error
}
