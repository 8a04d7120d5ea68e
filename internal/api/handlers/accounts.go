package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/eventra/server/internal/api/respond"
	"github.com/eventra/server/internal/auth"
	"github.com/eventra/server/internal/domain/accounts"
)

// AccountsHandler serves registration, verification and session endpoints.
type AccountsHandler struct {
	Service *accounts.Service
}

func NewAccountsHandler(service *accounts.Service) *AccountsHandler {
	return &AccountsHandler{Service: service}
}

type userPayload struct {
	ID          string `json:"id"`
	FirstName   string `json:"first_name"`
	MiddleName  string `json:"middle_name,omitempty"`
	LastName    string `json:"last_name"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	DateOfBirth string `json:"date_of_birth"`
	IsVerified  bool   `json:"is_verified"`
}

func newUserPayload(u *accounts.User) userPayload {
	return userPayload{
		ID:          u.ID,
		FirstName:   u.FirstName,
		MiddleName:  u.MiddleName,
		LastName:    u.LastName,
		Username:    u.Username,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		DateOfBirth: u.DateOfBirth.Format("2006-01-02"),
		IsVerified:  u.IsVerified,
	}
}

// Register handles POST /accounts/register.
func (h *AccountsHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input accounts.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user, err := h.Service.Register(r.Context(), input)
	if err != nil {
		var valErr accounts.ValidationError
		if errors.As(err, &valErr) {
			respond.FieldErrors(w, r, map[string][]string{valErr.Field: {valErr.Message}})
			return
		}
		respond.Error(w, r, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	respond.Success(w, http.StatusCreated,
		"User registered successfully. Please check your email to verify your account.",
		newUserPayload(user))
}

// Verify handles GET /accounts/verify-user?token=...
func (h *AccountsHandler) Verify(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		respond.Error(w, r, http.StatusBadRequest, "Verification token is required", nil)
		return
	}

	user, err := h.Service.Verify(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrTokenExpired):
			respond.Error(w, r, http.StatusBadRequest, "Verification link has expired", err)
		case errors.Is(err, auth.ErrTokenMalformed):
			respond.Error(w, r, http.StatusBadRequest, "Malformed verification token", err)
		case errors.Is(err, auth.ErrTokenInvalid):
			respond.Error(w, r, http.StatusBadRequest, "Invalid verification token", err)
		case errors.Is(err, accounts.ErrNotFound):
			respond.Error(w, r, http.StatusNotFound, "User not found", err)
		default:
			respond.Error(w, r, http.StatusInternalServerError, "Internal server error", err)
		}
		return
	}

	respond.Success(w, http.StatusOK, "Account verified successfully", newUserPayload(user))
}

// Login handles POST /accounts/login.
func (h *AccountsHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input accounts.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user, pair, err := h.Service.Login(r.Context(), input)
	if err != nil {
		var valErr accounts.ValidationError
		switch {
		case errors.As(err, &valErr):
			respond.FieldErrors(w, r, map[string][]string{valErr.Field: {valErr.Message}})
		case errors.Is(err, accounts.ErrInvalidCredentials):
			respond.Error(w, r, http.StatusBadRequest, "Invalid credentials", err)
		default:
			respond.Error(w, r, http.StatusInternalServerError, "Internal server error", err)
		}
		return
	}

	respond.Success(w, http.StatusOK, "Login successful", map[string]any{
		"access":  pair.Access,
		"refresh": pair.Refresh,
		"user":    newUserPayload(user),
	})
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// Refresh handles POST /accounts/token-refresh.
func (h *AccountsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var input refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(input.Refresh) == "" {
		respond.Error(w, r, http.StatusBadRequest, "Refresh token is required", nil)
		return
	}

	pair, err := h.Service.Refresh(r.Context(), input.Refresh)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrTokenExpired):
			respond.Error(w, r, http.StatusBadRequest, "Refresh token has expired", err)
		case errors.Is(err, auth.ErrTokenMalformed), errors.Is(err, auth.ErrTokenInvalid):
			respond.Error(w, r, http.StatusBadRequest, "Invalid refresh token", err)
		case errors.Is(err, accounts.ErrNotFound):
			respond.Error(w, r, http.StatusNotFound, "User not found", err)
		default:
			respond.Error(w, r, http.StatusInternalServerError, "Internal server error", err)
		}
		return
	}

	respond.Success(w, http.StatusOK, "Token refreshed", pair)
}

// Users handles GET /accounts/users. Staff-only access is enforced by
// middleware on the route.
func (h *AccountsHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.List(r.Context())
	if err != nil {
		respond.Error(w, r, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	payload := make([]userPayload, 0, len(users))
	for i := range users {
		payload = append(payload, newUserPayload(&users[i]))
	}
	respond.Success(w, http.StatusOK, "", payload)
}
