package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/pageza/recetario/backend/internal/models"
)

// RecipeRepository defines persistence operations for recipes.
type RecipeRepository interface {
	Create(ctx context.Context, in models.NewRecipe) (uint, error)
	Update(ctx context.Context, id uint, patch models.RecipePatch) error
	Search(ctx context.Context, filter models.RecipeFilter) ([]models.RecipeWithAuthor, error)
	FindByID(ctx context.Context, id uint) (*models.Recipe, error)
	FindByIDWithUser(ctx context.Context, id uint) (*models.RecipeWithAuthor, error)
	IncrementViews(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error
}

type recipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository returns a new RecipeRepository implementation.
func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) Create(ctx context.Context, in models.NewRecipe) (uint, error) {
	recipe := models.Recipe{
		UserID:       in.UserID,
		Title:        in.Title,
		Description:  in.Description,
		Ingredients:  in.Ingredients,
		Instructions: in.Instructions,
		PrepTime:     in.PrepTime,
		CookTime:     in.CookTime,
		Servings:     in.Servings,
		Difficulty:   in.Difficulty,
		Category:     in.Category,
		Image:        in.Image,
		IsPublic:     true,
	}
	if recipe.Ingredients == nil {
		recipe.Ingredients = models.StringList{}
	}
	if recipe.Instructions == nil {
		recipe.Instructions = models.StringList{}
	}
	if recipe.Servings == 0 {
		recipe.Servings = models.DefaultServings
	}
	if recipe.Difficulty == "" {
		recipe.Difficulty = models.DifficultyEasy
	}
	if recipe.Category == "" {
		recipe.Category = models.DefaultCategory
	}
	if recipe.Image == "" {
		recipe.Image = models.DefaultRecipeImage
	}
	if in.IsPublic != nil {
		recipe.IsPublic = *in.IsPublic
	}

	if err := r.db.WithContext(ctx).Create(&recipe).Error; err != nil {
		return 0, fmt.Errorf("create recipe: %w", err)
	}
	return recipe.ID, nil
}

func (r *recipeRepository) Update(ctx context.Context, id uint, patch models.RecipePatch) error {
	cols := patch.Columns()
	if len(cols) == 0 {
		return ErrNothingToUpdate
	}

	res := r.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return fmt.Errorf("update recipe: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Search lists recipes newest first. Without a UserID only public recipes are returned;
// with one, every recipe of that user is returned, private ones included.
func (r *recipeRepository) Search(ctx context.Context, filter models.RecipeFilter) ([]models.RecipeWithAuthor, error) {
	query := recipeWithAuthorQuery(r.db.WithContext(ctx))

	if filter.UserID != nil {
		query = query.Where("r.user_id = ?", *filter.UserID)
	} else {
		query = query.Where("r.is_public = ?", true)
	}

	if term := strings.TrimSpace(filter.Query); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		query = query.Where("(LOWER(r.title) LIKE ? OR LOWER(r.description) LIKE ?)", like, like)
	}
	if filter.Category != "" {
		query = query.Where("r.category = ?", filter.Category)
	}
	if filter.Difficulty != "" {
		query = query.Where("r.difficulty = ?", filter.Difficulty)
	}
	if filter.MaxTime != nil {
		query = query.Where("r.prep_time + r.cook_time <= ?", *filter.MaxTime)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	recipes := make([]models.RecipeWithAuthor, 0)
	err := query.
		Order("r.created_at DESC").
		Order("r.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("search recipes: %w", err)
	}
	return recipes, nil
}

func (r *recipeRepository) FindByID(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&recipe).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find recipe: %w", err)
	}
	return &recipe, nil
}

func (r *recipeRepository) FindByIDWithUser(ctx context.Context, id uint) (*models.RecipeWithAuthor, error) {
	var recipe models.RecipeWithAuthor
	if err := recipeWithAuthorQuery(r.db.WithContext(ctx)).Where("r.id = ?", id).Take(&recipe).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find recipe: %w", err)
	}
	return &recipe, nil
}

// IncrementViews bumps the view counter. A missing id affects no rows and is not an error.
func (r *recipeRepository) IncrementViews(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).
		Model(&models.Recipe{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	return nil
}

// Delete removes the recipe and the favorites pointing at it in one transaction.
func (r *recipeRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return fmt.Errorf("delete favorites: %w", err)
		}
		res := tx.Where("id = ?", id).Delete(&models.Recipe{})
		if res.Error != nil {
			return fmt.Errorf("delete recipe: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
