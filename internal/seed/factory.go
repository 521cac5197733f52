// Package seed fills a database with demo users, recipes and favorites.
// It is meant for development environments only.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"

	"github.com/pageza/recetario/backend/internal/models"
	"github.com/pageza/recetario/backend/internal/repository"
)

// Categories offered by the recipe form.
var Categories = []string{"Mexicana", "Italiana", "Postres", "Ensaladas", "Sopas", models.DefaultCategory}

// DemoPassword is the password of every seeded user.
const DemoPassword = "receta123"

// Options controls how much data a Factory creates.
type Options struct {
	Users            int
	RecipesPerUser   int
	FavoritesPerUser int
	PrivateRatio     float64
	BcryptCost       int
	// Seed makes the generated data reproducible; zero picks a random seed.
	Seed int64
}

// Summary counts what a run inserted.
type Summary struct {
	Users     int
	Recipes   int
	Favorites int
}

// Factory builds demo entities and persists them through the repositories.
type Factory struct {
	users     repository.UserRepository
	recipes   repository.RecipeRepository
	favorites repository.FavoriteRepository
	faker     *gofakeit.Faker
	opts      Options
	logger    *slog.Logger
}

// NewFactory creates a new Factory bound to db.
func NewFactory(db *gorm.DB, opts Options, logger *slog.Logger) *Factory {
	seed := opts.Seed
	if seed == 0 {
		seed = gofakeit.Int64()
	}
	return &Factory{
		users:     repository.NewUserRepository(db, opts.BcryptCost),
		recipes:   repository.NewRecipeRepository(db),
		favorites: repository.NewFavoriteRepository(db),
		faker:     gofakeit.New(seed),
		opts:      opts,
		logger:    logger,
	}
}

// Run creates the users, then their recipes, then favorites between them.
func (f *Factory) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	users := make([]*models.User, 0, f.opts.Users)
	for i := 0; i < f.opts.Users; i++ {
		user, err := f.CreateUser(ctx, i)
		if err != nil {
			return sum, err
		}
		users = append(users, user)
		sum.Users++
	}

	owners := make(map[uint]uint)
	var recipeIDs []uint
	for _, user := range users {
		for j := 0; j < f.opts.RecipesPerUser; j++ {
			id, err := f.recipes.Create(ctx, f.BuildRecipe(user.ID))
			if err != nil {
				return sum, fmt.Errorf("seed recipe: %w", err)
			}
			owners[id] = user.ID
			recipeIDs = append(recipeIDs, id)
			sum.Recipes++
		}
	}

	for _, user := range users {
		n, err := f.favoriteSome(ctx, user.ID, recipeIDs, owners)
		if err != nil {
			return sum, err
		}
		sum.Favorites += n
	}

	f.logger.Info("seed complete", "users", sum.Users, "recipes", sum.Recipes, "favorites", sum.Favorites)
	return sum, nil
}

// CreateUser inserts a user with a generated identity. n keeps usernames distinct
// within one run; a clash with existing rows is retried with a new name.
func (f *Factory) CreateUser(ctx context.Context, n int) (*models.User, error) {
	for attempt := 0; attempt < 5; attempt++ {
		person := f.faker.Person()
		username := fmt.Sprintf("%s_%d%d", strings.ToLower(person.FirstName), n, f.faker.Number(100, 999))
		username = sanitizeUsername(username)

		user, err := f.users.Create(ctx, models.NewUser{
			Username: username,
			Email:    fmt.Sprintf("%s@example.com", username),
			Password: DemoPassword,
			FullName: person.FirstName + " " + person.LastName,
			Avatar:   models.DefaultAvatar,
		})
		if errors.Is(err, repository.ErrDuplicate) {
			f.logger.Debug("seed username taken, retrying", "username", username)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("seed user: %w", err)
		}
		return user, nil
	}
	return nil, fmt.Errorf("seed user: could not find a free username")
}

// BuildRecipe returns a recipe for userID with generated content. It is not persisted.
func (f *Factory) BuildRecipe(userID uint) models.NewRecipe {
	dish := f.faker.RandomString([]string{f.faker.Lunch(), f.faker.Dinner(), f.faker.Dessert(), f.faker.Breakfast()})

	ingredients := make([]string, f.faker.Number(3, 8))
	for i := range ingredients {
		ingredients[i] = fmt.Sprintf("%d %s", f.faker.Number(1, 4), strings.ToLower(f.faker.RandomString([]string{
			f.faker.Fruit(), f.faker.Vegetable(), f.faker.Noun(),
		})))
	}
	instructions := make([]string, f.faker.Number(2, 6))
	for i := range instructions {
		instructions[i] = f.faker.Sentence(f.faker.Number(6, 12))
	}

	public := f.faker.Float64Range(0, 1) >= f.opts.PrivateRatio
	return models.NewRecipe{
		UserID:       userID,
		Title:        truncate(dish, 200),
		Description:  f.faker.Paragraph(1, 2, 12, " "),
		Ingredients:  ingredients,
		Instructions: instructions,
		PrepTime:     f.faker.Number(0, 60),
		CookTime:     f.faker.Number(0, 120),
		Servings:     f.faker.Number(1, 8),
		Difficulty:   f.faker.RandomString(models.Difficulties),
		Category:     f.faker.RandomString(Categories),
		Image:        models.DefaultRecipeImage,
		IsPublic:     &public,
	}
}

// favoriteSome toggles up to FavoritesPerUser distinct recipes owned by other users.
func (f *Factory) favoriteSome(ctx context.Context, userID uint, recipeIDs []uint, owners map[uint]uint) (int, error) {
	candidates := make([]uint, 0, len(recipeIDs))
	for _, id := range recipeIDs {
		if owners[id] != userID {
			candidates = append(candidates, id)
		}
	}
	f.faker.ShuffleAnySlice(candidates)

	count := 0
	for _, id := range candidates {
		if count >= f.opts.FavoritesPerUser {
			break
		}
		if _, err := f.favorites.Toggle(ctx, userID, id); err != nil {
			return count, fmt.Errorf("seed favorite: %w", err)
		}
		count++
	}
	return count, nil
}

func sanitizeUsername(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return truncate(b.String(), 50)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
