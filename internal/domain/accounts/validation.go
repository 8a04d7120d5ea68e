package accounts

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxNameLength     = 50
	maxUsernameLength = 20
	maxPhoneLength    = 15
	minPasswordLength = 8

	// bcrypt truncates at 72 bytes; longer passwords are rejected rather
	// than silently truncated.
	maxPasswordBytes = 72

	dateLayout = "2006-01-02"
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// RegisterInput is the raw registration request body.
type RegisterInput struct {
	FirstName   string `json:"first_name"`
	MiddleName  string `json:"middle_name"`
	LastName    string `json:"last_name"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phone_number"`
	DateOfBirth string `json:"date_of_birth"`
}

// registerData is a validated, normalized registration request.
type registerData struct {
	FirstName   string
	MiddleName  string
	LastName    string
	Username    string
	Email       string
	Password    string
	PhoneNumber string
	DateOfBirth time.Time
}

func (in RegisterInput) validate() (registerData, error) {
	data := registerData{
		FirstName:   strings.TrimSpace(in.FirstName),
		MiddleName:  strings.TrimSpace(in.MiddleName),
		LastName:    strings.TrimSpace(in.LastName),
		Username:    strings.TrimSpace(in.Username),
		Password:    in.Password,
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
	}

	if data.FirstName == "" {
		return registerData{}, ValidationError{Field: "first_name", Message: "is required"}
	}
	if utf8.RuneCountInString(data.FirstName) > maxNameLength {
		return registerData{}, ValidationError{Field: "first_name", Message: "must be at most 50 characters"}
	}
	if utf8.RuneCountInString(data.MiddleName) > maxNameLength {
		return registerData{}, ValidationError{Field: "middle_name", Message: "must be at most 50 characters"}
	}
	if data.LastName == "" {
		return registerData{}, ValidationError{Field: "last_name", Message: "is required"}
	}
	if utf8.RuneCountInString(data.LastName) > maxNameLength {
		return registerData{}, ValidationError{Field: "last_name", Message: "must be at most 50 characters"}
	}

	if data.Username == "" {
		return registerData{}, ValidationError{Field: "username", Message: "is required"}
	}
	if utf8.RuneCountInString(data.Username) > maxUsernameLength {
		return registerData{}, ValidationError{Field: "username", Message: "must be at most 20 characters"}
	}

	email, err := normalizeEmail(in.Email)
	if err != nil {
		return registerData{}, err
	}
	data.Email = email

	if utf8.RuneCountInString(in.Password) < minPasswordLength {
		return registerData{}, ValidationError{Field: "password", Message: "must be at least 8 characters"}
	}
	if len(in.Password) > maxPasswordBytes {
		return registerData{}, ValidationError{Field: "password", Message: "must be at most 72 characters"}
	}

	if data.PhoneNumber == "" {
		return registerData{}, ValidationError{Field: "phone_number", Message: "is required"}
	}
	if utf8.RuneCountInString(data.PhoneNumber) > maxPhoneLength {
		return registerData{}, ValidationError{Field: "phone_number", Message: "must be at most 15 characters"}
	}

	dob, err := parseDate("date_of_birth", in.DateOfBirth)
	if err != nil {
		return registerData{}, err
	}
	if dob.After(time.Now()) {
		return registerData{}, ValidationError{Field: "date_of_birth", Message: "must be in the past"}
	}
	data.DateOfBirth = dob

	return data, nil
}

// normalizeEmail trims whitespace and lowercases the domain part.
// The local part is preserved as given.
func normalizeEmail(email string) (string, error) {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return "", ValidationError{Field: "email", Message: "is required"}
	}
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		return "", ValidationError{Field: "email", Message: "is not a valid email address"}
	}
	at := strings.LastIndex(trimmed, "@")
	return trimmed[:at] + "@" + strings.ToLower(trimmed[at+1:]), nil
}

func parseDate(field, value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, ValidationError{Field: field, Message: "is required"}
	}
	parsed, err := time.Parse(dateLayout, trimmed)
	if err != nil {
		return time.Time{}, ValidationError{Field: field, Message: "must be a date in YYYY-MM-DD format"}
	}
	return parsed, nil
}

// LoginInput is the raw login request body.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in LoginInput) validate() (string, string, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return "", "", err
	}
	if in.Password == "" {
		return "", "", ValidationError{Field: "password", Message: "is required"}
	}
	return email, in.Password, nil
}
