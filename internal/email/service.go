package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"

	"github.com/eventra/server/internal/config"
)

// verificationTemplate is the HTML body of the account verification email.
var verificationTemplate = template.Must(template.New("verification").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; max-width: 600px; margin: 0 auto; padding: 24px;">
  <h2>Welcome to Eventra, {{.Username}}!</h2>
  <p>Thanks for signing up. Please confirm your email address to activate your account.</p>
  <p style="margin: 32px 0;">
    <a href="{{.Link}}" style="background: #1a73e8; color: #fff; padding: 12px 24px; border-radius: 4px; text-decoration: none;">Verify my account</a>
  </p>
  <p>If the button does not work, copy this link into your browser:</p>
  <p><a href="{{.Link}}">{{.Link}}</a></p>
  <p style="color: #666; font-size: 13px;">This link expires in 24 hours. If you did not create an account, you can ignore this email.</p>
  <p style="color: #666; font-size: 13px;">&copy; {{.CurrentYear}} Eventra</p>
</body>
</html>`))

// VerificationData holds data for rendering the verification email template.
type VerificationData struct {
	Username    string
	Link        string
	CurrentYear int
}

// Service sends transactional email through the Resend API. When disabled it
// logs the would-be delivery and returns success.
type Service struct {
	config config.EmailConfig
	client *resend.Client
	logger zerolog.Logger
}

func NewService(cfg config.EmailConfig, logger zerolog.Logger) (*Service, error) {
	svc := &Service{
		config: cfg,
		logger: logger.With().Str("component", "email").Logger(),
	}

	if cfg.Enabled {
		if err := validateEmailAddress(cfg.From); err != nil {
			return nil, fmt.Errorf("invalid sender email in config: %w", err)
		}
		svc.client = resend.NewClient(cfg.APIKey)
	}

	return svc, nil
}

// SendVerification sends the account verification email carrying link.
func (s *Service) SendVerification(ctx context.Context, to, username, link string) error {
	if err := validateEmailAddress(to); err != nil {
		return fmt.Errorf("invalid recipient email: %w", err)
	}
	if err := validateLinkURL(link); err != nil {
		return fmt.Errorf("invalid verification link: %w", err)
	}

	if !s.config.Enabled {
		s.logger.Info().
			Str("to", to).
			Str("link", link).
			Msg("email service disabled, skipping verification email")
		return nil
	}

	data := VerificationData{
		Username:    username,
		Link:        link,
		CurrentYear: time.Now().Year(),
	}
	var body bytes.Buffer
	if err := verificationTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render verification template: %w", err)
	}

	if err := s.sendViaResend(ctx, to, "Verify your Eventra account", body.String()); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	s.logger.Info().Str("to", to).Msg("verification email sent")
	return nil
}

// validateEmailAddress checks the address format and rejects header
// injection attempts.
func validateEmailAddress(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return fmt.Errorf("invalid email format: %w", err)
	}
	if strings.ContainsAny(addr.Address, "\r\n") {
		return fmt.Errorf("invalid email address: contains newline characters")
	}
	return nil
}

// validateLinkURL rejects anything other than an absolute http(s) URL so a
// poisoned link cannot smuggle javascript: or data: schemes into the email.
func validateLinkURL(link string) error {
	u, err := url.Parse(link)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %s (must be http or https)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
