// Package store holds the user record store and its in-memory backend.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/eduworld/portal/internal/model"
)

var (
	// ErrDuplicateKey is returned when a user with the same email exists.
	ErrDuplicateKey = errors.New("duplicate key: email already registered")
	// ErrNotFound is returned when no user matches.
	ErrNotFound = errors.New("user not found")
)

// ValidationError describes a user record that violates the schema.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, name := range []string{"name", "email", "password", "role"} {
		if msg, ok := e.Fields[name]; ok {
			parts = append(parts, msg)
		}
	}
	return "user validation failed: " + strings.Join(parts, ", ")
}

// UserStore persists portal accounts keyed by a unique email.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// NormalizeEmail is the form in which emails are compared and stored.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks user against the record schema.
func Validate(user *model.User) error {
	err := validate.Struct(user)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate user: %w", err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := strings.ToLower(fe.Field())
		if name == "passwordhash" {
			name = "password"
		}
		switch fe.Tag() {
		case "required":
			fields[name] = fmt.Sprintf("Path `%s` is required.", name)
		case "oneof":
			fields[name] = fmt.Sprintf("`%v` is not a valid enum value for path `%s`.", fe.Value(), name)
		case "email":
			fields[name] = fmt.Sprintf("`%v` is not a valid email for path `%s`.", fe.Value(), name)
		default:
			fields[name] = fmt.Sprintf("Path `%s` is invalid.", name)
		}
	}
	return &ValidationError{Fields: fields}
}
