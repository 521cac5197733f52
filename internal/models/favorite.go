package models

import (
	"time"
)

// Toggle outcomes.
const (
	FavoriteAdded   = "added"
	FavoriteRemoved = "removed"
)

// Favorite links a user to a recipe they bookmarked. The pair is unique.
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_favorites_user_recipe" json:"user_id"`
	RecipeID  uint      `gorm:"not null;uniqueIndex:idx_favorites_user_recipe;index" json:"recipe_id"`
	CreatedAt time.Time `json:"created_at"`

	User   *User   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Recipe *Recipe `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (Favorite) TableName() string {
	return "favorites"
}

// FavoriteRecipe is a favorited recipe with its author and the time it was favorited.
type FavoriteRecipe struct {
	RecipeWithAuthor
	FavoritedAt time.Time `json:"favorited_at"`
}

// ToggleResult reports what a favorite toggle did.
type ToggleResult struct {
	Action     string `json:"action"`
	IsFavorite bool   `json:"is_favorite"`
}
