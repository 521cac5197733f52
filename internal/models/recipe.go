package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Difficulty labels as shown to users.
const (
	DifficultyEasy   = "Fácil"
	DifficultyMedium = "Intermedia"
	DifficultyHard   = "Difícil"
)

// Defaults applied when a recipe is created without these fields.
const (
	DefaultCategory    = "Otra"
	DefaultRecipeImage = "uploads/recipes/default.jpg"
	DefaultServings    = 1
)

// Difficulties is the set of accepted difficulty labels.
var Difficulties = []string{DifficultyEasy, DifficultyMedium, DifficultyHard}

// StringList is an ordered list of strings stored as JSON text in a single column.
type StringList []string

// Value implements the driver.Valuer interface
func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode([]string(l)); err != nil {
		return nil, err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// Scan implements the sql.Scanner interface
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		*l = StringList{}
		return nil
	}

	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("decode string list: %w", err)
	}
	if items == nil {
		items = []string{}
	}
	*l = items
	return nil
}

// MarshalJSON always renders a list, never null.
func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// Recipe is a user-authored recipe.
type Recipe struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"not null;index" json:"user_id"`
	Title        string     `gorm:"size:200;not null" json:"title"`
	Description  string     `gorm:"type:text;not null" json:"description"`
	Ingredients  StringList `gorm:"type:text;not null" json:"ingredients"`
	Instructions StringList `gorm:"type:text;not null" json:"instructions"`
	PrepTime     int        `gorm:"not null" json:"prep_time"`
	CookTime     int        `gorm:"not null" json:"cook_time"`
	Servings     int        `gorm:"not null" json:"servings"`
	Difficulty   string     `gorm:"size:20;not null" json:"difficulty"`
	Category     string     `gorm:"size:50;not null;index" json:"category"`
	Image        string     `gorm:"size:255;not null" json:"image"`
	IsPublic     bool       `gorm:"not null;index" json:"is_public"`
	Views        int        `gorm:"not null;default:0" json:"views"`
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	User *User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// RecipeWithAuthor is a recipe joined with the display fields of its owner.
type RecipeWithAuthor struct {
	Recipe
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Avatar   string `json:"avatar"`
}

// NewRecipe carries the fields of a recipe about to be inserted.
// Zero values for Difficulty, Category, Image and Servings and a nil IsPublic get defaults.
type NewRecipe struct {
	UserID       uint
	Title        string
	Description  string
	Ingredients  StringList
	Instructions StringList
	PrepTime     int
	CookTime     int
	Servings     int
	Difficulty   string
	Category     string
	Image        string
	IsPublic     *bool
}

// RecipeFilter narrows a recipe search. A set UserID replaces the public-only restriction.
type RecipeFilter struct {
	Query      string
	Category   string
	Difficulty string
	MaxTime    *int
	UserID     *uint
	Limit      int
	Offset     int
}
