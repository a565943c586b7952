// Package form describes the portal's login and registration forms and
// validates submitted values against those descriptions.
package form

import (
	"fmt"
)

// Mode selects a form.
type Mode string

const (
	ModeLogin    Mode = "login"
	ModeRegister Mode = "register"
)

// Field types understood by the validator.
const (
	TypeText     = "text"
	TypeEmail    = "email"
	TypePassword = "password"
	TypeTel      = "tel"
	TypeCheckbox = "checkbox"
)

// Field is a declarative form field. Required holds the message shown when
// the field is missing; an empty Required makes the field optional.
type Field struct {
	Name           string `json:"name"`
	Label          string `json:"label"`
	Type           string `json:"type"`
	AutoComplete   string `json:"autoComplete,omitempty"`
	Required       string `json:"required,omitempty"`
	MinLength      int    `json:"minLength,omitempty"`
	Match          string `json:"match,omitempty"`
	Pattern        string `json:"pattern,omitempty"`
	PatternMessage string `json:"patternMessage,omitempty"`
}

var defaultFields = map[Mode][]Field{
	ModeLogin: {
		{Name: "email", Label: "Email address", Type: TypeEmail, AutoComplete: "email", Required: "Email is required"},
		{Name: "password", Label: "Password", Type: TypePassword, AutoComplete: "current-password", Required: "Password is required"},
		{Name: "rememberMe", Label: "Keep me signed in", Type: TypeCheckbox},
	},
	ModeRegister: {
		{Name: "fullName", Label: "Full Name", Type: TypeText, AutoComplete: "name", Required: "Full name is required", MinLength: 2},
		{Name: "email", Label: "Email address", Type: TypeEmail, AutoComplete: "email", Required: "Email is required"},
		{Name: "phone", Label: "Phone Number", Type: TypeTel, AutoComplete: "tel", Required: "Phone number is required",
			Pattern: `^\+?[0-9 ()-]{7,20}$`, PatternMessage: "Enter a valid phone number"},
		{Name: "password", Label: "Password", Type: TypePassword, AutoComplete: "new-password", Required: "Password is required", MinLength: 8},
		{Name: "confirmPassword", Label: "Confirm Password", Type: TypePassword, AutoComplete: "new-password", Required: "Please confirm your password", Match: "password"},
		{Name: "terms", Label: "I agree to the Terms and Conditions", Type: TypeCheckbox, Required: "You must accept the terms and conditions"},
	},
}

// Fields returns a copy of the default fields for mode.
func Fields(mode Mode) ([]Field, error) {
	fields, ok := defaultFields[mode]
	if !ok {
		return nil, fmt.Errorf("unknown form mode %q", mode)
	}
	out := make([]Field, len(fields))
	copy(out, fields)
	return out, nil
}
