package service

import (
	"context"

	"github.com/pageza/recetario/backend/internal/models"
	"github.com/pageza/recetario/backend/internal/observability"
	"github.com/pageza/recetario/backend/internal/repository"
)

// MsgRecipeIDRequired is returned when a favorite request names no usable recipe.
const MsgRecipeIDRequired = "recipe_id is required"

// FavoriteService handles favorite toggling and listing
type FavoriteService struct {
	favorites repository.FavoriteRepository
	recipes   repository.RecipeRepository
}

// NewFavoriteService creates a new FavoriteService instance
func NewFavoriteService(favorites repository.FavoriteRepository, recipes repository.RecipeRepository) *FavoriteService {
	return &FavoriteService{favorites: favorites, recipes: recipes}
}

// Toggle adds the recipe to the user's favorites or removes it when already present.
// Recipes the user cannot see are reported as missing.
func (s *FavoriteService) Toggle(ctx context.Context, userID, recipeID uint) (*models.ToggleResult, error) {
	if recipeID == 0 {
		return nil, models.NewValidationError(MsgRecipeIDRequired, map[string]string{"recipe_id": MsgRecipeIDRequired})
	}

	recipe, err := s.recipes.FindByID(ctx, recipeID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if recipe == nil || (!recipe.IsPublic && recipe.UserID != userID) {
		return nil, models.NewNotFoundError(MsgRecipeNotFound)
	}

	result, err := s.favorites.Toggle(ctx, userID, recipeID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	observability.FavoriteToggles.WithLabelValues(result.Action).Inc()
	return result, nil
}

// List returns the user's favorites, newest first.
func (s *FavoriteService) List(ctx context.Context, userID uint) ([]models.FavoriteRecipe, error) {
	favorites, err := s.favorites.ListForUser(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return favorites, nil
}

// IsFavorite reports whether the user has favorited the recipe.
func (s *FavoriteService) IsFavorite(ctx context.Context, userID, recipeID uint) (bool, error) {
	ok, err := s.favorites.IsFavorite(ctx, userID, recipeID)
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return ok, nil
}
