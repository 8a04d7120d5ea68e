package email

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventra/server/internal/config"
)

func TestNewServiceValidatesSender(t *testing.T) {
	_, err := NewService(config.EmailConfig{
		Enabled: true,
		APIKey:  "re_test",
		From:    "not an email",
	}, zerolog.Nop())
	assert.Error(t, err)

	svc, err := NewService(config.EmailConfig{
		Enabled: true,
		APIKey:  "re_test",
		From:    "Eventra <no-reply@eventra.example>",
	}, zerolog.Nop())
	require.NoError(t, err)
	assert.NotNil(t, svc.client)
}

func TestNewServiceDisabledSkipsSenderValidation(t *testing.T) {
	svc, err := NewService(config.EmailConfig{Enabled: false}, zerolog.Nop())
	require.NoError(t, err)
	assert.Nil(t, svc.client)
}

func TestSendVerificationDisabledIsNoop(t *testing.T) {
	svc, err := NewService(config.EmailConfig{Enabled: false}, zerolog.Nop())
	require.NoError(t, err)

	err = svc.SendVerification(context.Background(), "user@example.com", "alice", "https://eventra.example/accounts/verify-user?token=abc")
	assert.NoError(t, err)
}

func TestSendVerificationRejectsBadRecipient(t *testing.T) {
	svc, err := NewService(config.EmailConfig{Enabled: false}, zerolog.Nop())
	require.NoError(t, err)

	err = svc.SendVerification(context.Background(), "not-an-email", "alice", "https://eventra.example/verify")
	assert.ErrorContains(t, err, "invalid recipient email")
}

func TestSendVerificationRejectsUnsafeLink(t *testing.T) {
	svc, err := NewService(config.EmailConfig{Enabled: false}, zerolog.Nop())
	require.NoError(t, err)

	tests := []struct {
		name string
		link string
	}{
		{"javascript scheme", "javascript:alert(1)"},
		{"data scheme", "data:text/html,<script>alert(1)</script>"},
		{"relative path", "/accounts/verify-user?token=abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.SendVerification(context.Background(), "user@example.com", "alice", tt.link)
			assert.ErrorContains(t, err, "invalid verification link")
		})
	}
}

func TestValidateEmailAddressRejectsHeaderInjection(t *testing.T) {
	assert.Error(t, validateEmailAddress("user@example.com\r\nBcc: victim@example.com"))
	assert.NoError(t, validateEmailAddress("user@example.com"))
}

func TestVerificationTemplateRenders(t *testing.T) {
	var buf bytes.Buffer
	err := verificationTemplate.Execute(&buf, VerificationData{
		Username:    "alice",
		Link:        "https://eventra.example/accounts/verify-user?token=abc",
		CurrentYear: 2026,
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "alice")
	assert.Contains(t, buf.String(), "verify-user?token=abc")
}
