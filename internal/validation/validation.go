// Package validation holds the field checks applied to request input.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

var (
	validate        = validator.New()
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,50}$`)
	tagPattern      = regexp.MustCompile(`(?s)<[A-Za-z/!?][^>]*(>|$)`)
	htmlEscaper     = strings.NewReplacer(
		"&", "&amp;",
		`"`, "&quot;",
		"'", "&#039;",
		"<", "&lt;",
		">", "&gt;",
	)
)

// FieldErrors maps a field name to a human readable message.
type FieldErrors map[string]string

// Add records msg for field unless the field already has a message.
func (fe FieldErrors) Add(field, msg string) {
	if _, ok := fe[field]; !ok {
		fe[field] = msg
	}
}

// Required reports whether v is non-empty after trimming.
func Required(v string) bool {
	return strings.TrimSpace(v) != ""
}

// Email reports whether v looks like local@domain.tld with no whitespace.
func Email(v string) bool {
	if v == "" || strings.IndexFunc(v, isSpace) >= 0 {
		return false
	}
	if strings.Count(v, "@") != 1 {
		return false
	}
	domain := v[strings.IndexByte(v, '@')+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return false
	}
	return validate.Var(v, "email") == nil
}

// Password reports whether v has at least minLen characters.
func Password(v string, minLen int) bool {
	return utf8.RuneCountInString(v) >= minLen
}

// Username reports whether v is 3 to 50 letters, digits or underscores.
func Username(v string) bool {
	return usernamePattern.MatchString(v)
}

// OneOf reports whether v equals one of allowed.
func OneOf[T comparable](v T, allowed []T) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// Sanitize trims v, strips markup tags and escapes HTML-significant characters
// using named entities for double quotes and &#039; for single quotes.
func Sanitize(v string) string {
	v = strings.TrimSpace(v)
	v = tagPattern.ReplaceAllString(v, "")
	return htmlEscaper.Replace(v)
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
