package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRole(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		wantErr bool
	}{
		{"admin_valid", RoleAdmin, false},
		{"user_valid", RoleUser, false},
		{"empty_invalid", "", true},
		{"capitalized_Admin", "Admin", true},
		{"trailing_space", "user ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRole(tt.role)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateRole_ErrorMessage(t *testing.T) {
	err := ValidateRole("badrole")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "badrole")
	assert.Contains(t, err.Error(), RoleAdmin)
	assert.Contains(t, err.Error(), RoleUser)
}
