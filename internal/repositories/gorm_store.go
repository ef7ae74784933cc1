package repositories

import (
	"context"

	"gorm.io/gorm"
)

// GORMStore is a Store backed by a gorm database handle.
type GORMStore struct {
	db      *gorm.DB
	users   *GORMUserRepository
	recipes *GORMRecipeRepository
}

// NewGORMStore creates a store whose repositories share db.
func NewGORMStore(db *gorm.DB) *GORMStore {
	return &GORMStore{
		db:      db,
		users:   NewGORMUserRepository(db),
		recipes: NewGORMRecipeRepository(db),
	}
}

func (s *GORMStore) Users() UserRepository     { return s.users }
func (s *GORMStore) Recipes() RecipeRepository { return s.recipes }

// Atomic runs fn inside a gorm transaction.
func (s *GORMStore) Atomic(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGORMStore(tx))
	})
}
