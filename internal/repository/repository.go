// Package repository implements the data access layer for users, recipes and favorites.
package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrDuplicate is returned when an insert or update violates a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
	// ErrNotFound is returned when a write targets a row that does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrNothingToUpdate is returned by partial updates that carry no recognized field.
	ErrNothingToUpdate = errors.New("nothing to update")
)

// DefaultSearchLimit is used when a search does not ask for a page size.
const DefaultSearchLimit = 50

// MaxSearchLimit caps the page size of a search.
const MaxSearchLimit = 100

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

// recipeWithAuthorQuery selects recipes joined with their owner's display fields.
func recipeWithAuthorQuery(db *gorm.DB) *gorm.DB {
	return db.Table("recipes AS r").
		Select("r.*, u.username, u.full_name, u.avatar").
		Joins("JOIN users u ON u.id = r.user_id")
}
