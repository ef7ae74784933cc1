package repositories

import (
	"context"
	"sync"
)

// MockStore is an in-memory Store. Atomic units are serialized by a mutex
// but are not rolled back on error.
type MockStore struct {
	users   *MockUserRepository
	recipes *MockRecipeRepository
	mu      sync.Mutex
}

// NewMockStore creates an empty in-memory store.
func NewMockStore() *MockStore {
	return &MockStore{
		users:   NewMockUserRepository(),
		recipes: NewMockRecipeRepository(),
	}
}

func (s *MockStore) Users() UserRepository     { return s.users }
func (s *MockStore) Recipes() RecipeRepository { return s.recipes }

// MockUsers exposes the concrete user repository for seeding and inspection.
func (s *MockStore) MockUsers() *MockUserRepository { return s.users }

// MockRecipes exposes the concrete recipe repository for seeding and inspection.
func (s *MockStore) MockRecipes() *MockRecipeRepository { return s.recipes }

// Atomic runs fn while holding the store lock.
func (s *MockStore) Atomic(_ context.Context, fn func(tx Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s)
}
