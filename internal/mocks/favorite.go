package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/recetario/backend/internal/models"
)

// MockFavoriteService is a mock implementation of the favorite service
type MockFavoriteService struct {
	mock.Mock
}

func (m *MockFavoriteService) Toggle(ctx context.Context, userID, recipeID uint) (*models.ToggleResult, error) {
	args := m.Called(ctx, userID, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ToggleResult), args.Error(1)
}

func (m *MockFavoriteService) List(ctx context.Context, userID uint) ([]models.FavoriteRecipe, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FavoriteRecipe), args.Error(1)
}

func (m *MockFavoriteService) IsFavorite(ctx context.Context, userID, recipeID uint) (bool, error) {
	args := m.Called(ctx, userID, recipeID)
	return args.Bool(0), args.Error(1)
}
