package service

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/pageza/recetario/backend/internal/models"
	"github.com/pageza/recetario/backend/internal/validation"
)

// DecodeRecipePatch reads a JSON object into a RecipePatch, recording which fields were
// present. Type errors are collected per field instead of failing on the first one.
// Unknown keys, including user_id, are ignored.
func DecodeRecipePatch(body []byte) (models.RecipePatch, validation.FieldErrors, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return models.RecipePatch{}, nil, err
	}

	var patch models.RecipePatch
	fields := validation.FieldErrors{}

	decodeString(raw, "title", &patch.Title, fields)
	decodeString(raw, "description", &patch.Description, fields)
	decodeString(raw, "difficulty", &patch.Difficulty, fields)
	decodeString(raw, "category", &patch.Category, fields)
	decodeString(raw, "image", &patch.Image, fields)
	decodeList(raw, "ingredients", &patch.Ingredients, fields)
	decodeList(raw, "instructions", &patch.Instructions, fields)
	decodeInt(raw, "prep_time", &patch.PrepTime, fields)
	decodeInt(raw, "cook_time", &patch.CookTime, fields)
	decodeInt(raw, "servings", &patch.Servings, fields)
	decodeBool(raw, "is_public", &patch.IsPublic, fields)

	return patch, fields, nil
}

func isNull(msg json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(msg), []byte("null"))
}

// decodeString treats null as an empty string.
func decodeString(raw map[string]json.RawMessage, key string, dst *models.Optional[string], fields validation.FieldErrors) {
	msg, ok := raw[key]
	if !ok {
		return
	}
	if isNull(msg) {
		*dst = models.Some("")
		return
	}
	var v string
	if err := json.Unmarshal(msg, &v); err != nil {
		fields.Add(key, key+" must be a string")
		return
	}
	*dst = models.Some(v)
}

func decodeList(raw map[string]json.RawMessage, key string, dst *models.Optional[models.StringList], fields validation.FieldErrors) {
	msg, ok := raw[key]
	if !ok {
		return
	}
	var v []string
	if isNull(msg) || json.Unmarshal(msg, &v) != nil {
		fields.Add(key, key+" must be a list of strings")
		return
	}
	if v == nil {
		v = []string{}
	}
	*dst = models.Some(models.StringList(v))
}

// decodeInt accepts JSON integers and numeric strings.
func decodeInt(raw map[string]json.RawMessage, key string, dst *models.Optional[int], fields validation.FieldErrors) {
	msg, ok := raw[key]
	if !ok {
		return
	}
	var v interface{}
	if err := json.Unmarshal(msg, &v); err != nil {
		fields.Add(key, key+" must be a whole number")
		return
	}

	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
			fields.Add(key, key+" must be a whole number")
			return
		}
		*dst = models.Some(int(n))
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil || i > math.MaxInt32 || i < math.MinInt32 {
			fields.Add(key, key+" must be a whole number")
			return
		}
		*dst = models.Some(i)
	default:
		fields.Add(key, key+" must be a whole number")
	}
}

// decodeBool accepts booleans, 0/1 and their string forms.
func decodeBool(raw map[string]json.RawMessage, key string, dst *models.Optional[bool], fields validation.FieldErrors) {
	msg, ok := raw[key]
	if !ok {
		return
	}
	var v interface{}
	if err := json.Unmarshal(msg, &v); err != nil {
		fields.Add(key, key+" must be true or false")
		return
	}

	switch b := v.(type) {
	case bool:
		*dst = models.Some(b)
	case float64:
		if b != 0 && b != 1 {
			fields.Add(key, key+" must be true or false")
			return
		}
		*dst = models.Some(b == 1)
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			fields.Add(key, key+" must be true or false")
			return
		}
		*dst = models.Some(parsed)
	default:
		fields.Add(key, key+" must be true or false")
	}
}

// ParseID converts a JSON value holding a positive integer id.
func ParseID(v interface{}) (uint, bool) {
	switch n := v.(type) {
	case float64:
		if n < 1 || n != math.Trunc(n) || n > math.MaxUint32 {
			return 0, false
		}
		return uint(n), true
	case string:
		return ParseIDString(n)
	default:
		return 0, false
	}
}

// ParseIDString converts a decimal string to a positive id.
func ParseIDString(s string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
