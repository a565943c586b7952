package model

import (
	"time"
)

// Role is the portal role a user registers with.
type Role string

const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
)

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleFaculty
}

// User is a persisted portal account.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name" validate:"required"`
	Email        string    `json:"email" validate:"required,email"`
	PasswordHash string    `json:"password_hash,omitempty" validate:"required"`
	Role         Role      `json:"role" validate:"required,oneof=student faculty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Public strips credentials before a user leaves the service.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}

// AuthRequest carries a submitted auth form and the role picked on the page.
type AuthRequest struct {
	Role Role           `json:"role"`
	Data map[string]any `json:"data"`
}

// AuthResponse is returned after a successful login or registration.
type AuthResponse struct {
	User      User      `json:"user"`
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}
