package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduworld/portal/internal/model"
)

func validRegistration() map[string]any {
	return map[string]any{
		"fullName":        "Ada Lovelace",
		"email":           "ada@eduworld.edu",
		"phone":           "+1 (555) 010-2024",
		"password":        "analytical",
		"confirmPassword": "analytical",
		"terms":           true,
	}
}

func TestFields(t *testing.T) {
	login, err := Fields(ModeLogin)
	require.NoError(t, err)
	assert.Len(t, login, 3)

	register, err := Fields(ModeRegister)
	require.NoError(t, err)
	assert.Len(t, register, 6)

	register[0].Label = "changed"
	again, _ := Fields(ModeRegister)
	assert.Equal(t, "Full Name", again[0].Label)

	_, err = Fields("reset")
	assert.Error(t, err)
}

func TestValidate_Register(t *testing.T) {
	fields, err := Fields(ModeRegister)
	require.NoError(t, err)
	v := NewValidator()

	tests := []struct {
		name   string
		mutate func(map[string]any)
		field  string
		msg    string
	}{
		{"missing name", func(d map[string]any) { delete(d, "fullName") }, "fullName", "Full name is required"},
		{"short name", func(d map[string]any) { d["fullName"] = "A" }, "fullName", "Full Name must be at least 2 characters"},
		{"blank email", func(d map[string]any) { d["email"] = "  " }, "email", "Email is required"},
		{"bad email", func(d map[string]any) { d["email"] = "ada-at-eduworld" }, "email", "Enter a valid email address"},
		{"bad phone", func(d map[string]any) { d["phone"] = "call me" }, "phone", "Enter a valid phone number"},
		{"short password", func(d map[string]any) { d["password"], d["confirmPassword"] = "short", "short" }, "password", "Password must be at least 8 characters"},
		{"mismatch", func(d map[string]any) { d["confirmPassword"] = "different" }, "confirmPassword", "Passwords do not match"},
		{"terms unchecked", func(d map[string]any) { d["terms"] = false }, "terms", "You must accept the terms and conditions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := validRegistration()
			tt.mutate(data)

			err := v.Validate(fields, data)
			require.Error(t, err)

			var fieldErrs FieldErrors
			require.ErrorAs(t, err, &fieldErrs)
			assert.Equal(t, tt.msg, fieldErrs[tt.field])
			assert.Len(t, fieldErrs, 1)
		})
	}
}

func TestValidate_RegisterValid(t *testing.T) {
	fields, _ := Fields(ModeRegister)
	assert.NoError(t, NewValidator().Validate(fields, validRegistration()))
}

func TestValidate_LoginOptionalCheckbox(t *testing.T) {
	fields, _ := Fields(ModeLogin)
	v := NewValidator()

	err := v.Validate(fields, map[string]any{"email": "ada@eduworld.edu", "password": "x"})
	assert.NoError(t, err)

	err = v.Validate(fields, map[string]any{})
	var fieldErrs FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, FieldErrors{"email": "Email is required", "password": "Password is required"}, fieldErrs)
	assert.Equal(t, "form validation failed: email: Email is required; password: Password is required", err.Error())
}

func TestWithRole(t *testing.T) {
	data := map[string]any{"email": "ada@eduworld.edu"}
	out := WithRole(data, model.RoleFaculty)

	assert.Equal(t, "faculty", out["role"])
	assert.NotContains(t, data, "role")
}

func TestBool(t *testing.T) {
	data := map[string]any{"a": true, "b": "on", "c": "false", "d": 1}
	assert.True(t, Bool(data, "a"))
	assert.True(t, Bool(data, "b"))
	assert.False(t, Bool(data, "c"))
	assert.False(t, Bool(data, "d"))
	assert.False(t, Bool(data, "missing"))
}
