package ids

import (
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const userIDLength = 8

var (
	userIDRegex = regexp.MustCompile(`^[0-9a-f]{8}$`)

	ErrInvalidUserID  = errors.New("invalid user id")
	ErrInvalidEventID = errors.New("invalid event id")
)

// NewUserID mints the opaque short user identifier: the leading eight hex
// characters of a random UUID. Collisions are caught by the primary key
// constraint at insert time.
func NewUserID() string {
	return uuid.NewString()[:userIDLength]
}

// ValidateUserID validates a short user identifier.
func ValidateUserID(value string) error {
	if !userIDRegex.MatchString(strings.TrimSpace(value)) {
		return ErrInvalidUserID
	}
	return nil
}

// NewEventID mints a new event identifier (random UUID).
func NewEventID() string {
	return uuid.NewString()
}

// ValidateEventID validates an event identifier.
func ValidateEventID(value string) error {
	if _, err := uuid.Parse(strings.TrimSpace(value)); err != nil {
		return ErrInvalidEventID
	}
	return nil
}
