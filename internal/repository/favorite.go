package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/recetario/backend/internal/models"
)

// FavoriteRepository defines persistence operations for favorites.
type FavoriteRepository interface {
	Toggle(ctx context.Context, userID, recipeID uint) (*models.ToggleResult, error)
	ListForUser(ctx context.Context, userID uint) ([]models.FavoriteRecipe, error)
	IsFavorite(ctx context.Context, userID, recipeID uint) (bool, error)
}

type favoriteRepository struct {
	db *gorm.DB
}

// NewFavoriteRepository returns a new FavoriteRepository implementation.
func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

// Toggle removes the pair if it exists and inserts it otherwise. The insert does
// nothing on conflict, so concurrent toggles that both find the pair absent leave
// exactly one row behind.
func (r *favoriteRepository) Toggle(ctx context.Context, userID, recipeID uint) (*models.ToggleResult, error) {
	var result models.ToggleResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(&models.Favorite{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			result = models.ToggleResult{Action: models.FavoriteRemoved, IsFavorite: false}
			return nil
		}

		fav := models.Favorite{UserID: userID, RecipeID: recipeID}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "recipe_id"}},
			DoNothing: true,
		}).Create(&fav).Error
		if err != nil {
			return err
		}
		result = models.ToggleResult{Action: models.FavoriteAdded, IsFavorite: true}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("toggle favorite: %w", err)
	}
	return &result, nil
}

// ListForUser returns the user's favorited recipes, most recently favorited first.
// Recipes that became private are only listed for their owner.
func (r *favoriteRepository) ListForUser(ctx context.Context, userID uint) ([]models.FavoriteRecipe, error) {
	favorites := make([]models.FavoriteRecipe, 0)
	err := r.db.WithContext(ctx).
		Table("favorites AS f").
		Select("r.*, u.username, u.full_name, u.avatar, f.created_at AS favorited_at").
		Joins("JOIN recipes r ON r.id = f.recipe_id").
		Joins("JOIN users u ON u.id = r.user_id").
		Where("f.user_id = ?", userID).
		Where("(r.is_public = ? OR r.user_id = ?)", true, userID).
		Order("f.created_at DESC").
		Order("f.id DESC").
		Find(&favorites).Error
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return favorites, nil
}

func (r *favoriteRepository) IsFavorite(ctx context.Context, userID, recipeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Favorite{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check favorite: %w", err)
	}
	return count > 0, nil
}
