package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/recetario/backend/internal/models"
	"github.com/pageza/recetario/backend/internal/validation"
)

// MockRecipeService is a mock implementation of the recipe service
type MockRecipeService struct {
	mock.Mock
}

func (m *MockRecipeService) Index(ctx context.Context, filter models.RecipeFilter) ([]models.RecipeWithAuthor, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RecipeWithAuthor), args.Error(1)
}

func (m *MockRecipeService) Show(ctx context.Context, id, viewerID uint) (*models.RecipeWithAuthor, error) {
	args := m.Called(ctx, id, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RecipeWithAuthor), args.Error(1)
}

func (m *MockRecipeService) Create(ctx context.Context, userID uint, patch models.RecipePatch, fields validation.FieldErrors) (*models.RecipeWithAuthor, error) {
	args := m.Called(ctx, userID, patch, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RecipeWithAuthor), args.Error(1)
}

func (m *MockRecipeService) Update(ctx context.Context, userID, id uint, patch models.RecipePatch, fields validation.FieldErrors) (*models.RecipeWithAuthor, error) {
	args := m.Called(ctx, userID, id, patch, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RecipeWithAuthor), args.Error(1)
}

func (m *MockRecipeService) Delete(ctx context.Context, userID, id uint) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}
