package service

import (
	"context"
	"io"

	"github.com/pageza/recetario/backend/internal/models"
	"github.com/pageza/recetario/backend/internal/validation"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, in RegisterInput) (*models.PublicUser, error)
	Login(ctx context.Context, in LoginInput) (*models.PublicUser, error)
	Current(ctx context.Context, userID uint) (*models.PublicUser, error)
	UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (*models.PublicUser, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	Index(ctx context.Context, filter models.RecipeFilter) ([]models.RecipeWithAuthor, error)
	Show(ctx context.Context, id, viewerID uint) (*models.RecipeWithAuthor, error)
	Create(ctx context.Context, userID uint, patch models.RecipePatch, fields validation.FieldErrors) (*models.RecipeWithAuthor, error)
	Update(ctx context.Context, userID, id uint, patch models.RecipePatch, fields validation.FieldErrors) (*models.RecipeWithAuthor, error)
	Delete(ctx context.Context, userID, id uint) error
}

// IFavoriteService defines the interface for favorite operations
type IFavoriteService interface {
	Toggle(ctx context.Context, userID, recipeID uint) (*models.ToggleResult, error)
	List(ctx context.Context, userID uint) ([]models.FavoriteRecipe, error)
	IsFavorite(ctx context.Context, userID, recipeID uint) (bool, error)
}

// IImageService defines the interface for image uploads
type IImageService interface {
	Upload(ctx context.Context, kind string, r io.Reader) (*UploadedImage, error)
	MaxBytes() int64
}

var (
	_ IAuthService     = (*AuthService)(nil)
	_ IRecipeService   = (*RecipeService)(nil)
	_ IFavoriteService = (*FavoriteService)(nil)
	_ IImageService    = (*ImageService)(nil)
)
