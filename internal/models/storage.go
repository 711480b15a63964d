package models

import (
	"fmt"
	"time"
)

// Valid user roles
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// ValidateRole returns an error if role is not one of the known roles.
func ValidateRole(role string) error {
	switch role {
	case RoleAdmin, RoleUser:
		return nil
	default:
		return fmt.Errorf("invalid role %q: must be %q or %q", role, RoleAdmin, RoleUser)
	}
}

// InternalUser represents a user account stored in the internal database.
// Auth and identity only. Preferences are stored as UserKeyValue entries.
type InternalUser struct {
	UserID       string    `json:"user_id"`
	PasswordHash string    `json:"password_hash"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	ModifiedAt   time.Time `json:"modified_at"`
}

// UserKeyValue represents a per-user configuration key-value pair.
type UserKeyValue struct {
	UserID   string    `json:"user_id"`
	Key      string    `json:"key"`
	Value    string    `json:"value"`
	Version  int       `json:"version"`
	DateTime time.Time `json:"datetime"`
}

// KeyProjectionDefaults is the UserKeyValue key holding a user's saved
// ProjectionConfig as JSON.
const KeyProjectionDefaults = "projection_defaults"
