package services

import (
	"context"
	"fmt"
	"strings"

	"recipebox/internal/models"
	"recipebox/internal/repositories"

	"github.com/sahilm/fuzzy"
)

// SearchService answers keyword searches over recipe names.
type SearchService struct {
	recipes repositories.RecipeRepository
}

// NewSearchService creates a new SearchService.
func NewSearchService(recipes repositories.RecipeRepository) *SearchService {
	return &SearchService{
		recipes: recipes,
	}
}

// Search splits query on whitespace and returns, for each term in order,
// the recipes whose name contains it. A recipe matched by several terms
// appears once, at the position of its first match. Results are not ranked.
func (s *SearchService) Search(ctx context.Context, query string) ([]models.Recipe, error) {
	results := []models.Recipe{}
	seen := make(map[uint]struct{})

	for _, term := range strings.Fields(query) {
		matches, err := s.recipes.SearchByName(ctx, term)
		if err != nil {
			return nil, fmt.Errorf("search for %q failed: %w", term, err)
		}
		for _, recipe := range matches {
			if _, dup := seen[recipe.ID]; dup {
				continue
			}
			seen[recipe.ID] = struct{}{}
			results = append(results, recipe)
		}
	}
	return results, nil
}

// Suggest returns up to limit existing recipe names that fuzzily match
// query, best match first.
func (s *SearchService) Suggest(ctx context.Context, query string, limit int) ([]string, error) {
	query = strings.ToLower(strings.Join(strings.Fields(query), " "))
	if query == "" || limit <= 0 {
		return []string{}, nil
	}

	names, err := s.recipes.Names(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe names: %w", err)
	}
	lowered := make([]string, len(names))
	for i, name := range names {
		lowered[i] = strings.ToLower(name)
	}

	matches := fuzzy.Find(query, lowered)
	suggestions := make([]string, 0, limit)
	for _, match := range matches {
		if len(suggestions) == limit {
			break
		}
		suggestions = append(suggestions, names[match.Index])
	}
	return suggestions, nil
}
