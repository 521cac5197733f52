package service

import (
	"context"
	"errors"
	"strings"

	"github.com/pageza/recetario/backend/internal/models"
	"github.com/pageza/recetario/backend/internal/repository"
	"github.com/pageza/recetario/backend/internal/validation"
)

// Auth error messages. The credentials message is shared by both failure paths of login.
const (
	MsgInvalidCredentials = "incorrect email or password"
	MsgEmailTaken         = "email is already registered"
	MsgUsernameTaken      = "username is already taken"
	MsgValidationFailed   = "validation failed"
	MsgNotLoggedIn        = "you must be logged in"
)

// RegisterInput is the registration payload.
type RegisterInput struct {
	FullName string `json:"full_name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginInput is the login payload.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileInput carries the profile fields a user may change. Nil fields are untouched.
type ProfileInput struct {
	FullName *string `json:"full_name"`
	Avatar   *string `json:"avatar"`
	Password *string `json:"password"`
}

// AuthService handles registration, login and profile changes.
type AuthService struct {
	users repository.UserRepository
}

// NewAuthService creates a new AuthService instance
func NewAuthService(users repository.UserRepository) *AuthService {
	return &AuthService{users: users}
}

// Register validates the payload, rejects duplicates and creates the account.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.PublicUser, error) {
	fields := validation.FieldErrors{}
	if !validation.Required(in.FullName) {
		fields.Add("full_name", "full name is required")
	}
	if !validation.Username(in.Username) {
		fields.Add("username", "username must be 3 to 50 letters, digits or underscores")
	}
	email := normalizeEmail(in.Email)
	if !validation.Email(email) {
		fields.Add("email", "email is not valid")
	}
	if !validation.Password(in.Password, validation.MinPasswordLength) {
		fields.Add("password", "password must be at least 6 characters")
	}
	if len(fields) > 0 {
		return nil, models.NewValidationError(MsgValidationFailed, fields)
	}

	email = validation.Sanitize(email)
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if existing != nil {
		return nil, models.NewConflictError(MsgEmailTaken)
	}

	existing, err = s.users.FindByUsername(ctx, in.Username)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if existing != nil {
		return nil, models.NewConflictError(MsgUsernameTaken)
	}

	user, err := s.users.Create(ctx, models.NewUser{
		Username: validation.Sanitize(in.Username),
		Email:    email,
		Password: in.Password,
		FullName: validation.Sanitize(in.FullName),
	})
	if err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, models.NewConflictError("email or username is already registered")
		}
		return nil, models.NewInternalError(err)
	}

	public := user.Public()
	return &public, nil
}

// Login checks credentials. Unknown email and wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*models.PublicUser, error) {
	fields := validation.FieldErrors{}
	email := normalizeEmail(in.Email)
	if !validation.Email(email) {
		fields.Add("email", "email is not valid")
	}
	if in.Password == "" {
		fields.Add("password", "password is required")
	}
	if len(fields) > 0 {
		return nil, models.NewValidationError(MsgValidationFailed, fields)
	}

	user, err := s.users.FindByEmail(ctx, validation.Sanitize(email))
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if user == nil || !s.users.VerifyPassword(in.Password, user.Password) {
		return nil, models.NewUnauthorizedError(MsgInvalidCredentials)
	}

	public := user.Public()
	return &public, nil
}

// Current reads the user behind a session from the database.
func (s *AuthService) Current(ctx context.Context, userID uint) (*models.PublicUser, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if user == nil {
		return nil, models.NewUnauthorizedError(MsgNotLoggedIn)
	}

	public := user.Public()
	return &public, nil
}

// UpdateProfile changes full name, avatar or password of the user.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (*models.PublicUser, error) {
	fields := validation.FieldErrors{}
	patch := models.UserPatch{}

	if in.FullName != nil {
		if !validation.Required(*in.FullName) {
			fields.Add("full_name", "full name is required")
		} else {
			v := validation.Sanitize(*in.FullName)
			patch.FullName = &v
		}
	}
	if in.Avatar != nil {
		v := validation.Sanitize(*in.Avatar)
		if v == "" {
			v = models.DefaultAvatar
		}
		patch.Avatar = &v
	}
	if in.Password != nil {
		if !validation.Password(*in.Password, validation.MinPasswordLength) {
			fields.Add("password", "password must be at least 6 characters")
		} else {
			patch.Password = in.Password
		}
	}
	if len(fields) > 0 {
		return nil, models.NewValidationError(MsgValidationFailed, fields)
	}
	if patch.Empty() {
		return nil, models.NewValidationError("nothing to update", nil)
	}

	if err := s.users.Update(ctx, userID, patch); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, models.NewUnauthorizedError(MsgNotLoggedIn)
		}
		return nil, models.NewInternalError(err)
	}
	return s.Current(ctx, userID)
}

// normalizeEmail trims and lowercases an address. Its sanitized form is what is
// stored, and Register and Login both look users up by that form.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
