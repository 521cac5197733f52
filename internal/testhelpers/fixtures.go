package testhelpers

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/recetario/backend/internal/models"
)

// DefaultPassword is the plain password of users created by CreateUser.
const DefaultPassword = "secret123"

// SetupRedis starts an in-process Redis server and returns a client for it.
func SetupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

// CreateUser inserts a user whose password is DefaultPassword.
func CreateUser(t *testing.T, db *gorm.DB, username, email string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hash),
		FullName: username,
		Avatar:   models.DefaultAvatar,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

// CreateRecipe inserts a public recipe owned by userID. Options adjust it before insert.
func CreateRecipe(t *testing.T, db *gorm.DB, userID uint, title string, opts ...func(*models.Recipe)) *models.Recipe {
	t.Helper()
	recipe := &models.Recipe{
		UserID:       userID,
		Title:        title,
		Ingredients:  models.StringList{"ingrediente"},
		Instructions: models.StringList{"paso"},
		Servings:     models.DefaultServings,
		Difficulty:   models.DifficultyEasy,
		Category:     models.DefaultCategory,
		Image:        models.DefaultRecipeImage,
		IsPublic:     true,
	}
	for _, opt := range opts {
		opt(recipe)
	}
	if err := db.Create(recipe).Error; err != nil {
		t.Fatalf("failed to create recipe: %v", err)
	}
	return recipe
}

// Private marks a recipe as not public.
func Private(r *models.Recipe) {
	r.IsPublic = false
}
