package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduworld/portal/internal/model"
)

func newUser(email string) *model.User {
	return &model.User{
		ID:           "u-1",
		Name:         "Ada Lovelace",
		Email:        email,
		PasswordHash: "hash",
		Role:         model.RoleStudent,
		CreatedAt:    time.Now(),
	}
}

func TestMemoryUserStore_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryUserStore()

	require.NoError(t, s.Create(ctx, newUser(" Ada@EduWorld.edu ")))

	got, err := s.FindByEmail(ctx, "ada@eduworld.edu")
	require.NoError(t, err)
	assert.Equal(t, "ada@eduworld.edu", got.Email)
	assert.Equal(t, model.RoleStudent, got.Role)

	_, err = s.FindByEmail(ctx, "grace@eduworld.edu")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryUserStore_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryUserStore()

	require.NoError(t, s.Create(ctx, newUser("ada@eduworld.edu")))
	err := s.Create(ctx, newUser("ADA@eduworld.edu"))
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.User)
		field  string
	}{
		{"missing name", func(u *model.User) { u.Name = "" }, "name"},
		{"missing email", func(u *model.User) { u.Email = "" }, "email"},
		{"invalid email", func(u *model.User) { u.Email = "nope" }, "email"},
		{"missing password", func(u *model.User) { u.PasswordHash = "" }, "password"},
		{"missing role", func(u *model.User) { u.Role = "" }, "role"},
		{"unknown role", func(u *model.User) { u.Role = "admin" }, "role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := newUser("ada@eduworld.edu")
			tt.mutate(u)

			err := Validate(u)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
			assert.Contains(t, err.Error(), tt.field)
		})
	}

	assert.NoError(t, Validate(newUser("ada@eduworld.edu")))
}
