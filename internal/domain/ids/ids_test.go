package ids

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewUserID(t *testing.T) {
	id := NewUserID()

	require.Len(t, id, 8)
	require.NoError(t, ValidateUserID(id))
}

func TestNewUserIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewUserID()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestValidateUserID(t *testing.T) {
	require.NoError(t, ValidateUserID("a1b2c3d4"))
	require.ErrorIs(t, ValidateUserID("too-short"), ErrInvalidUserID)
	require.ErrorIs(t, ValidateUserID("A1B2C3D4"), ErrInvalidUserID)
	require.ErrorIs(t, ValidateUserID(""), ErrInvalidUserID)
}

func TestNewEventID(t *testing.T) {
	id := NewEventID()

	require.NoError(t, ValidateEventID(id))
}

func TestValidateEventID(t *testing.T) {
	require.NoError(t, ValidateEventID("2b1f5c5e-7d52-4f0a-9c3e-27a1f5b7f9d1"))
	require.ErrorIs(t, ValidateEventID("not-a-uuid"), ErrInvalidEventID)
	require.ErrorIs(t, ValidateEventID(""), ErrInvalidEventID)
}
