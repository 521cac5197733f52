package repository

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/recetario/backend/internal/models"
)

// DefaultBcryptCost is the hashing cost used for stored passwords.
const DefaultBcryptCost = 12

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, in models.NewUser) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, id uint, patch models.UserPatch) error
	VerifyPassword(plain, hash string) bool
}

type userRepository struct {
	db   *gorm.DB
	cost int
}

// NewUserRepository returns a UserRepository that hashes passwords with the given bcrypt cost.
func NewUserRepository(db *gorm.DB, bcryptCost int) UserRepository {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = DefaultBcryptCost
	}
	return &userRepository{db: db, cost: bcryptCost}
}

func (r *userRepository) Create(ctx context.Context, in models.NewUser) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), r.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hash),
		FullName: in.FullName,
		Avatar:   in.Avatar,
	}
	if user.Avatar == "" {
		user.Avatar = models.DefaultAvatar
	}

	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

// FindByUsername matches usernames regardless of case.
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, "LOWER(username) = LOWER(?)", username)
}

// findOne returns nil, nil when no row matches.
func (r *userRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(query, args...).Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, id uint, patch models.UserPatch) error {
	cols := make(map[string]interface{})
	if patch.FullName != nil {
		cols["full_name"] = *patch.FullName
	}
	if patch.Avatar != nil {
		cols["avatar"] = *patch.Avatar
	}
	if patch.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), r.cost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		cols["password"] = string(hash)
	}
	if len(cols) == 0 {
		return ErrNothingToUpdate
	}

	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return fmt.Errorf("update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
