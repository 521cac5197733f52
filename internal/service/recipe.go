package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/pageza/recetario/backend/internal/models"
	"github.com/pageza/recetario/backend/internal/observability"
	"github.com/pageza/recetario/backend/internal/repository"
	"github.com/pageza/recetario/backend/internal/validation"
)

// Recipe error messages.
const (
	MsgRecipeNotFound  = "recipe not found"
	MsgNotRecipeOwner  = "you do not have permission to modify this recipe"
	MsgNothingToUpdate = "no recipe fields to update"
)

// RecipeService handles recipe operations
type RecipeService struct {
	recipes repository.RecipeRepository
	logger  *slog.Logger
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(recipes repository.RecipeRepository, logger *slog.Logger) *RecipeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecipeService{recipes: recipes, logger: logger}
}

// Index lists recipes matching filter. No authentication is required.
func (s *RecipeService) Index(ctx context.Context, filter models.RecipeFilter) ([]models.RecipeWithAuthor, error) {
	recipes, err := s.recipes.Search(ctx, filter)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return recipes, nil
}

// Show returns a recipe and counts the view. Private recipes are only visible to their
// owner; viewerID is zero for anonymous callers.
func (s *RecipeService) Show(ctx context.Context, id, viewerID uint) (*models.RecipeWithAuthor, error) {
	recipe, err := s.recipes.FindByIDWithUser(ctx, id)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if recipe == nil || (!recipe.IsPublic && recipe.UserID != viewerID) {
		return nil, models.NewNotFoundError(MsgRecipeNotFound)
	}

	if err := s.recipes.IncrementViews(ctx, id); err != nil {
		s.logger.Warn("failed to count recipe view", "recipe_id", id, "error", err)
	} else {
		recipe.Views++
		observability.RecipeViews.Inc()
	}
	return recipe, nil
}

// Create validates and stores a new recipe owned by userID.
func (s *RecipeService) Create(ctx context.Context, userID uint, patch models.RecipePatch, fields validation.FieldErrors) (*models.RecipeWithAuthor, error) {
	if fields == nil {
		fields = validation.FieldErrors{}
	}
	if !patch.Title.Set || !validation.Required(patch.Title.Value) {
		fields.Add("title", "title is required")
	}
	if !patch.Ingredients.Set || len(patch.Ingredients.Value) == 0 {
		fields.Add("ingredients", "ingredients are required")
	}
	if !patch.Instructions.Set || len(patch.Instructions.Value) == 0 {
		fields.Add("instructions", "instructions are required")
	}
	validatePatchValues(patch, fields)
	if len(fields) > 0 {
		return nil, models.NewValidationError(MsgValidationFailed, fields)
	}

	sanitizePatch(&patch)
	in := models.NewRecipe{
		UserID:       userID,
		Title:        patch.Title.Value,
		Description:  patch.Description.Value,
		Ingredients:  patch.Ingredients.Value,
		Instructions: patch.Instructions.Value,
		PrepTime:     patch.PrepTime.Value,
		CookTime:     patch.CookTime.Value,
		Servings:     patch.Servings.Value,
		Difficulty:   patch.Difficulty.Value,
		Category:     patch.Category.Value,
		Image:        patch.Image.Value,
	}
	if patch.IsPublic.Set {
		in.IsPublic = &patch.IsPublic.Value
	}

	id, err := s.recipes.Create(ctx, in)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	observability.RecipesCreated.Inc()
	s.logger.Info("recipe created", "recipe_id", id, "user_id", userID)

	return s.load(ctx, id)
}

// Update applies the supplied fields to a recipe owned by userID.
func (s *RecipeService) Update(ctx context.Context, userID, id uint, patch models.RecipePatch, fields validation.FieldErrors) (*models.RecipeWithAuthor, error) {
	if err := s.authorize(ctx, userID, id); err != nil {
		return nil, err
	}

	if fields == nil {
		fields = validation.FieldErrors{}
	}
	if patch.Title.Set && !validation.Required(patch.Title.Value) {
		fields.Add("title", "title is required")
	}
	validatePatchValues(patch, fields)
	if len(fields) > 0 {
		return nil, models.NewValidationError(MsgValidationFailed, fields)
	}

	sanitizePatch(&patch)
	if err := s.recipes.Update(ctx, id, patch); err != nil {
		switch {
		case errors.Is(err, repository.ErrNothingToUpdate):
			return nil, models.NewValidationError(MsgNothingToUpdate, nil)
		case errors.Is(err, repository.ErrNotFound):
			return nil, models.NewNotFoundError(MsgRecipeNotFound)
		}
		return nil, models.NewInternalError(err)
	}

	return s.load(ctx, id)
}

// Delete removes a recipe owned by userID.
func (s *RecipeService) Delete(ctx context.Context, userID, id uint) error {
	if err := s.authorize(ctx, userID, id); err != nil {
		return err
	}

	if err := s.recipes.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.NewNotFoundError(MsgRecipeNotFound)
		}
		return models.NewInternalError(err)
	}
	s.logger.Info("recipe deleted", "recipe_id", id, "user_id", userID)
	return nil
}

// authorize returns NotFound for a missing recipe and Forbidden when userID is not the owner.
func (s *RecipeService) authorize(ctx context.Context, userID, id uint) error {
	recipe, err := s.recipes.FindByID(ctx, id)
	if err != nil {
		return models.NewInternalError(err)
	}
	if recipe == nil {
		return models.NewNotFoundError(MsgRecipeNotFound)
	}
	if recipe.UserID != userID {
		return models.NewForbiddenError(MsgNotRecipeOwner)
	}
	return nil
}

func (s *RecipeService) load(ctx context.Context, id uint) (*models.RecipeWithAuthor, error) {
	recipe, err := s.recipes.FindByIDWithUser(ctx, id)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if recipe == nil {
		return nil, models.NewNotFoundError(MsgRecipeNotFound)
	}
	return recipe, nil
}

func validatePatchValues(patch models.RecipePatch, fields validation.FieldErrors) {
	if patch.Difficulty.Set && !validation.OneOf(patch.Difficulty.Value, models.Difficulties) {
		fields.Add("difficulty", "difficulty must be one of Fácil, Intermedia, Difícil")
	}
	if patch.PrepTime.Set && patch.PrepTime.Value < 0 {
		fields.Add("prep_time", "prep_time must not be negative")
	}
	if patch.CookTime.Set && patch.CookTime.Value < 0 {
		fields.Add("cook_time", "cook_time must not be negative")
	}
	if patch.Servings.Set && patch.Servings.Value < 1 {
		fields.Add("servings", "servings must be at least 1")
	}
}

// sanitizePatch escapes the free-text fields that were supplied.
func sanitizePatch(patch *models.RecipePatch) {
	for _, f := range []*models.Optional[string]{&patch.Title, &patch.Description, &patch.Category, &patch.Image} {
		if f.Set {
			f.Value = validation.Sanitize(f.Value)
		}
	}
	// an explicitly cleared category or image falls back to the default
	if patch.Category.Set && patch.Category.Value == "" {
		patch.Category.Value = models.DefaultCategory
	}
	if patch.Image.Set && patch.Image.Value == "" {
		patch.Image.Value = models.DefaultRecipeImage
	}
}
