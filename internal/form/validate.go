package form

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/eduworld/portal/internal/model"
)

// FieldErrors maps field names to the message for their first failed rule.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + e[name]
	}
	return "form validation failed: " + strings.Join(parts, "; ")
}

// Validator checks submitted values against field descriptors.
type Validator struct {
	validate *validator.Validate

	mu       sync.Mutex
	patterns map[string]*regexp.Regexp
}

// NewValidator creates a form validator.
func NewValidator() *Validator {
	return &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		patterns: make(map[string]*regexp.Regexp),
	}
}

// Validate returns nil when data satisfies every field, otherwise the
// per-field messages.
func (v *Validator) Validate(fields []Field, data map[string]any) error {
	errs := make(FieldErrors)

	for _, f := range fields {
		if f.Type == TypeCheckbox {
			if f.Required != "" && !Bool(data, f.Name) {
				errs[f.Name] = f.Required
			}
			continue
		}

		value := String(data, f.Name)
		if strings.TrimSpace(value) == "" {
			if f.Required != "" {
				errs[f.Name] = f.Required
			}
			continue
		}

		if msg := v.check(f, value, data); msg != "" {
			errs[f.Name] = msg
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *Validator) check(f Field, value string, data map[string]any) string {
	if f.MinLength > 0 {
		if err := v.validate.Var(value, fmt.Sprintf("min=%d", f.MinLength)); err != nil {
			return fmt.Sprintf("%s must be at least %d characters", f.Label, f.MinLength)
		}
	}
	if f.Type == TypeEmail {
		if err := v.validate.Var(value, "email"); err != nil {
			return "Enter a valid email address"
		}
	}
	if f.Pattern != "" {
		re, err := v.pattern(f.Pattern)
		if err != nil || !re.MatchString(value) {
			if f.PatternMessage != "" {
				return f.PatternMessage
			}
			return f.Label + " is invalid"
		}
	}
	if f.Match != "" && value != String(data, f.Match) {
		return "Passwords do not match"
	}
	return ""
}

func (v *Validator) pattern(expr string) (*regexp.Regexp, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if re, ok := v.patterns[expr]; ok {
		return re, nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	v.patterns[expr] = re
	return re, nil
}

// WithRole returns a copy of data carrying the role selected on the page.
func WithRole(data map[string]any, role model.Role) map[string]any {
	out := make(map[string]any, len(data)+1)
	for k, val := range data {
		out[k] = val
	}
	out["role"] = string(role)
	return out
}

// String returns the named value as a string, or "" when absent.
func String(data map[string]any, name string) string {
	switch val := data[name].(type) {
	case string:
		return val
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}

// Bool interprets a checkbox value.
func Bool(data map[string]any, name string) bool {
	switch val := data[name].(type) {
	case bool:
		return val
	case string:
		switch strings.ToLower(val) {
		case "true", "on", "1", "yes":
			return true
		}
	}
	return false
}
