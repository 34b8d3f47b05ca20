package service

import (
	"strings"

	"github.com/google/uuid"

	"github.com/helixml/citetrack/internal/domain"
)

// Fields are the action-specific request parameters.
type Fields map[string]any

// String returns the trimmed string value of key, or "" if it is absent or
// not a string.
func (f Fields) String(key string) string {
	v, _ := f[key].(string)
	return strings.TrimSpace(v)
}

// Required returns the string value of key or a validation error.
func (f Fields) Required(key string) (string, error) {
	v := f.String(key)
	if v == "" {
		return "", domain.Validation("%s is required", key)
	}
	return v, nil
}

// UUID returns key as a well-formed UUID or a validation error.
func (f Fields) UUID(key string) (string, error) {
	v, err := f.Required(key)
	if err != nil {
		return "", err
	}
	return parseUUID(key, v)
}

// OptionalUUID returns key as a well-formed UUID, or "" when absent.
func (f Fields) OptionalUUID(key string) (string, error) {
	v := f.String(key)
	if v == "" {
		return "", nil
	}
	return parseUUID(key, v)
}

// Int returns key as an int. JSON numbers decode as float64.
func (f Fields) Int(key string) (int, bool) {
	switch v := f[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func parseUUID(key, v string) (string, error) {
	id, err := uuid.Parse(v)
	if err != nil {
		return "", domain.Validation("%s must be a valid id", key)
	}
	return id.String(), nil
}
