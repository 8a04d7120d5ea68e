package accounts

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email is already in use")
	ErrUsernameTaken      = errors.New("username is already in use")
	ErrPhoneTaken         = errors.New("phone number is already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User is the persisted identity record. PasswordHash only ever holds the
// salted bcrypt hash, never plaintext.
type User struct {
	ID           string
	FirstName    string
	MiddleName   string
	LastName     string
	Username     string
	Email        string
	PhoneNumber  string
	DateOfBirth  time.Time
	PasswordHash string
	IsVerified   bool
	IsStaff      bool
	IsSuperuser  bool
	CreatedAt    time.Time
}

// CreateParams carries a fully validated user record for insertion.
type CreateParams struct {
	ID           string
	FirstName    string
	MiddleName   string
	LastName     string
	Username     string
	Email        string
	PhoneNumber  string
	DateOfBirth  time.Time
	PasswordHash string
	IsVerified   bool
	IsStaff      bool
	IsSuperuser  bool
}

// Repository is the persistence contract for user records. Implementations
// surface uniqueness collisions as ErrEmailTaken, ErrUsernameTaken or
// ErrPhoneTaken, and missing records as ErrNotFound.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByPhone(ctx context.Context, phone string) (*User, error)
	List(ctx context.Context) ([]User, error)
	MarkVerified(ctx context.Context, id string) error
}
