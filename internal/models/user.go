package models

import (
	"time"
)

// DefaultAvatar is assigned to users that register without an avatar.
const DefaultAvatar = "uploads/avatars/default.png"

// User is a registered account. Password holds the bcrypt hash and never leaves the server.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Email     string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	FullName  string    `gorm:"size:100;not null" json:"full_name"`
	Avatar    string    `gorm:"size:255;not null" json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PublicUser is the client-facing view of a User.
type PublicUser struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
}

// Public returns a copy of the user without the password hash.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
	}
}

// NewUser carries the fields needed to create an account. Password is plaintext.
type NewUser struct {
	Username string
	Email    string
	Password string
	FullName string
	Avatar   string
}

// UserPatch lists the mutable profile fields. Nil fields are left untouched.
type UserPatch struct {
	FullName *string
	Avatar   *string
	Password *string
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.FullName == nil && p.Avatar == nil && p.Password == nil
}
