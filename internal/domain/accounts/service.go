package accounts

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/eventra/server/internal/auth"
	"github.com/eventra/server/internal/domain/ids"
	"github.com/eventra/server/internal/metrics"
)

// VerificationEmail is the payload handed to the Notification Gateway.
type VerificationEmail struct {
	To       string `json:"to"`
	Username string `json:"username"`
	Link     string `json:"link"`
}

// Dispatcher hands verification emails off for delivery. Dispatch is
// fire-and-forget from the caller's perspective: delivery retries are the
// dispatcher's concern, not the registration flow's.
type Dispatcher interface {
	Dispatch(ctx context.Context, email VerificationEmail) error
}

// Service orchestrates the account lifecycle: registration, verification
// email dispatch, verification confirmation, and login.
type Service struct {
	repo       Repository
	tokens     *auth.Tokens
	dispatcher Dispatcher
	baseURL    string
	logger     zerolog.Logger
}

func NewService(repo Repository, tokens *auth.Tokens, dispatcher Dispatcher, baseURL string, logger zerolog.Logger) *Service {
	return &Service{
		repo:       repo,
		tokens:     tokens,
		dispatcher: dispatcher,
		baseURL:    baseURL,
		logger:     logger.With().Str("component", "accounts").Logger(),
	}
}

// Register validates the input, creates an unverified user and dispatches the
// verification email. A dispatch failure is logged but does not roll back the
// created account; the dispatcher retries delivery on its own schedule.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	data, err := input.validate()
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByEmail(ctx, data.Email); err == nil {
		return nil, ValidationError{Field: "email", Message: "This email is already in use"}
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if _, err := s.repo.GetByUsername(ctx, data.Username); err == nil {
		return nil, ValidationError{Field: "username", Message: "This username is already in use"}
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if _, err := s.repo.GetByPhone(ctx, data.PhoneNumber); err == nil {
		return nil, ValidationError{Field: "phone_number", Message: "This phone number is already in use"}
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check phone number: %w", err)
	}

	hash, err := auth.HashPassword(data.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, CreateParams{
		ID:           ids.NewUserID(),
		FirstName:    data.FirstName,
		MiddleName:   data.MiddleName,
		LastName:     data.LastName,
		Username:     data.Username,
		Email:        data.Email,
		PhoneNumber:  data.PhoneNumber,
		DateOfBirth:  data.DateOfBirth,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, mapUniqueError(err)
	}

	metrics.UsersRegistered.Inc()

	link, err := s.verificationLink(user.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to build verification link")
		return user, nil
	}
	if err := s.dispatcher.Dispatch(ctx, VerificationEmail{
		To:       user.Email,
		Username: user.Username,
		Link:     link,
	}); err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to dispatch verification email")
	} else {
		metrics.VerificationEmailsEnqueued.Inc()
	}

	return user, nil
}

// Verify confirms an email verification token and marks the user verified.
// Re-verifying an already verified user is a no-op success.
func (s *Service) Verify(ctx context.Context, token string) (*User, error) {
	userID, err := s.tokens.ParseVerification(token)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsVerified {
		return user, nil
	}

	if err := s.repo.MarkVerified(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("mark verified: %w", err)
	}
	user.IsVerified = true

	metrics.UsersVerified.Inc()
	s.logger.Info().Str("user_id", user.ID).Msg("user verified")
	return user, nil
}

// Login authenticates the credential pair and issues a session token pair.
// Failure never reveals whether the email or the password was wrong.
func (s *Service) Login(ctx context.Context, input LoginInput) (*User, auth.TokenPair, error) {
	email, password, err := input.validate()
	if err != nil {
		return nil, auth.TokenPair{}, err
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			metrics.LoginAttempts.WithLabelValues("failure").Inc()
			return nil, auth.TokenPair{}, ErrInvalidCredentials
		}
		return nil, auth.TokenPair{}, fmt.Errorf("get user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		return nil, auth.TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, auth.TokenPair{}, fmt.Errorf("issue tokens: %w", err)
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a fresh token pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error) {
	userID, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return auth.TokenPair{}, err
	}
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return auth.TokenPair{}, err
	}
	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return auth.TokenPair{}, fmt.Errorf("issue tokens: %w", err)
	}
	return pair, nil
}

// GetByID loads a single user.
func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all users. Staff-only access is enforced at the handler.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// SuperuserParams describes an administrative superuser creation request.
// IsStaff and IsSuperuser may be supplied to assert the flags; passing either
// explicitly as false is rejected.
type SuperuserParams struct {
	RegisterInput
	IsStaff     *bool
	IsSuperuser *bool
}

// CreateSuperuser creates a verified staff superuser. It is used by the
// startup admin bootstrap and never sends a verification email.
func (s *Service) CreateSuperuser(ctx context.Context, params SuperuserParams) (*User, error) {
	if params.IsStaff != nil && !*params.IsStaff {
		return nil, ValidationError{Field: "is_staff", Message: "superuser must have is_staff=true"}
	}
	if params.IsSuperuser != nil && !*params.IsSuperuser {
		return nil, ValidationError{Field: "is_superuser", Message: "superuser must have is_superuser=true"}
	}

	data, err := params.RegisterInput.validate()
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(data.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, CreateParams{
		ID:           ids.NewUserID(),
		FirstName:    data.FirstName,
		MiddleName:   data.MiddleName,
		LastName:     data.LastName,
		Username:     data.Username,
		Email:        data.Email,
		PhoneNumber:  data.PhoneNumber,
		DateOfBirth:  data.DateOfBirth,
		PasswordHash: hash,
		IsVerified:   true,
		IsStaff:      true,
		IsSuperuser:  true,
	})
	if err != nil {
		return nil, mapUniqueError(err)
	}

	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("superuser created")
	return user, nil
}

func (s *Service) verificationLink(userID string) (string, error) {
	token, err := s.tokens.IssueVerification(userID)
	if err != nil {
		return "", fmt.Errorf("issue verification token: %w", err)
	}
	return fmt.Sprintf("%s/accounts/verify-user?token=%s", s.baseURL, url.QueryEscape(token)), nil
}

// mapUniqueError translates repository uniqueness collisions into the same
// field-tagged errors the pre-checks produce. The constraint is the backstop
// for races between the check and the insert.
func mapUniqueError(err error) error {
	switch {
	case errors.Is(err, ErrEmailTaken):
		return ValidationError{Field: "email", Message: "This email is already in use"}
	case errors.Is(err, ErrUsernameTaken):
		return ValidationError{Field: "username", Message: "This username is already in use"}
	case errors.Is(err, ErrPhoneTaken):
		return ValidationError{Field: "phone_number", Message: "This phone number is already in use"}
	default:
		return fmt.Errorf("create user: %w", err)
	}
}
