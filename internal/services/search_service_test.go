package services_test

import (
	"context"
	"testing"

	"recipebox/internal/models"
	"recipebox/internal/repositories"
	"recipebox/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRecipes(t *testing.T, repo *repositories.MockRecipeRepository, recipes ...models.Recipe) {
	t.Helper()
	for i := range recipes {
		require.NoError(t, repo.Create(context.Background(), &recipes[i]))
	}
}

func recipeIDs(recipes []models.Recipe) []uint {
	ids := make([]uint, 0, len(recipes))
	for _, r := range recipes {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestSearchService_EmptyQuery(t *testing.T) {
	repo := repositories.NewMockRecipeRepository()
	seedRecipes(t, repo, models.Recipe{Name: "Soup", OwnerID: 1})
	service := services.NewSearchService(repo)

	for _, query := range []string{"", "   ", "\t\n"} {
		results, err := service.Search(context.Background(), query)
		require.NoError(t, err)
		assert.NotNil(t, results)
		assert.Empty(t, results)
	}
}

func TestSearchService_SingleTerm(t *testing.T) {
	repo := repositories.NewMockRecipeRepository()
	seedRecipes(t, repo,
		models.Recipe{Name: "Pasta Bake", OwnerID: 1},
		models.Recipe{Name: "Tomato Pasta", OwnerID: 1},
		models.Recipe{Name: "Salad", OwnerID: 1},
	)
	service := services.NewSearchService(repo)

	results, err := service.Search(context.Background(), "pasta")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Pasta Bake", results[0].Name)
	assert.Equal(t, "Tomato Pasta", results[1].Name)
}

func TestSearchService_MultiTermUnionKeepsFirstSeenOrder(t *testing.T) {
	repo := repositories.NewMockRecipeRepository()
	seedRecipes(t, repo,
		models.Recipe{ID: 1, Name: "a only", OwnerID: 1},
		models.Recipe{ID: 2, Name: "a and b", OwnerID: 1},
		models.Recipe{ID: 3, Name: "b only", OwnerID: 1},
	)
	service := services.NewSearchService(repo)

	// "a" matches {1,2}; "b" matches {2,3}.
	results, err := service.Search(context.Background(), "a b")
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 2, 3}, recipeIDs(results))

	// Term order drives result order.
	results, err = service.Search(context.Background(), "only  a")
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 3, 2}, recipeIDs(results))

	// Repeated terms never duplicate results.
	results, err = service.Search(context.Background(), "b B b")
	require.NoError(t, err)
	assert.Equal(t, []uint{2, 3}, recipeIDs(results))
}

func TestSearchService_NoMatch(t *testing.T) {
	repo := repositories.NewMockRecipeRepository()
	seedRecipes(t, repo, models.Recipe{Name: "Soup", OwnerID: 1})
	service := services.NewSearchService(repo)

	results, err := service.Search(context.Background(), "lasagna")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchService_Suggest(t *testing.T) {
	repo := repositories.NewMockRecipeRepository()
	seedRecipes(t, repo,
		models.Recipe{Name: "Lasagna", OwnerID: 1},
		models.Recipe{Name: "Lasagna", OwnerID: 2},
		models.Recipe{Name: "Lemon Tart", OwnerID: 1},
		models.Recipe{Name: "Soup", OwnerID: 1},
	)
	service := services.NewSearchService(repo)

	suggestions, err := service.Suggest(context.Background(), "lsgn", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"Lasagna"}, suggestions)

	suggestions, err = service.Suggest(context.Background(), "L", 1)
	require.NoError(t, err)
	assert.Len(t, suggestions, 1)

	suggestions, err = service.Suggest(context.Background(), "  ", 5)
	require.NoError(t, err)
	assert.Empty(t, suggestions)

	suggestions, err = service.Suggest(context.Background(), "zzz", 5)
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}
