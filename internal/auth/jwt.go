package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	verificationPurpose = "verify"
)

var (
	ErrMissingToken   = errors.New("missing token")
	ErrTokenInvalid   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("malformed token")
)

// Claims carries session token identity. TokenType distinguishes access from
// refresh so a refresh token can never be replayed as an access token.
type Claims struct {
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// VerificationClaims carries the one-time email verification token identity.
// Purpose scoping keeps session tokens unusable as verification links.
type VerificationClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// TokenPair is the access/refresh pair issued on login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type Tokens struct {
	secret             []byte
	issuer             string
	accessExpiry       time.Duration
	refreshExpiry      time.Duration
	verificationExpiry time.Duration
}

func NewTokens(secret, issuer string, accessExpiry, refreshExpiry, verificationExpiry time.Duration) *Tokens {
	return &Tokens{
		secret:             []byte(secret),
		issuer:             issuer,
		accessExpiry:       accessExpiry,
		refreshExpiry:      refreshExpiry,
		verificationExpiry: verificationExpiry,
	}
}

// IssuePair issues an access/refresh token pair for the given user.
func (t *Tokens) IssuePair(userID string) (TokenPair, error) {
	if userID == "" {
		return TokenPair{}, ErrTokenInvalid
	}

	access, err := t.sign(&Claims{
		TokenType:        tokenTypeAccess,
		RegisteredClaims: t.registered(userID, t.accessExpiry),
	})
	if err != nil {
		return TokenPair{}, err
	}

	refresh, err := t.sign(&Claims{
		TokenType:        tokenTypeRefresh,
		RegisteredClaims: t.registered(userID, t.refreshExpiry),
	})
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{Access: access, Refresh: refresh}, nil
}

// ParseAccess validates an access token and returns its claims.
// Refresh and verification tokens are rejected as invalid.
func (t *Tokens) ParseAccess(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if err := t.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.TokenType != tokenTypeAccess {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// ParseRefresh validates a refresh token and returns the subject user ID.
func (t *Tokens) ParseRefresh(tokenString string) (string, error) {
	claims := &Claims{}
	if err := t.parse(tokenString, claims); err != nil {
		return "", err
	}
	if claims.TokenType != tokenTypeRefresh {
		return "", ErrTokenInvalid
	}
	return claims.Subject, nil
}

// IssueVerification issues the signed, time-limited email verification token.
func (t *Tokens) IssueVerification(userID string) (string, error) {
	if userID == "" {
		return "", ErrTokenInvalid
	}
	return t.sign(&VerificationClaims{
		Purpose:          verificationPurpose,
		RegisteredClaims: t.registered(userID, t.verificationExpiry),
	})
}

// ParseVerification validates a verification token and returns the subject
// user ID. Failures are distinguished: ErrTokenExpired for an outdated link,
// ErrTokenMalformed for garbage input, ErrTokenInvalid for a bad signature or
// a token minted for another purpose.
func (t *Tokens) ParseVerification(tokenString string) (string, error) {
	claims := &VerificationClaims{}
	if err := t.parse(tokenString, claims); err != nil {
		return "", err
	}
	if claims.Purpose != verificationPurpose {
		return "", ErrTokenInvalid
	}
	return claims.Subject, nil
}

func (t *Tokens) registered(subject string, expiry time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    t.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
	}
}

func (t *Tokens) sign(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *Tokens) parse(tokenString string, claims jwt.Claims) error {
	if strings.TrimSpace(tokenString) == "" {
		return ErrMissingToken
	}

	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return t.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return ErrTokenMalformed
		default:
			return ErrTokenInvalid
		}
	}
	if !parsed.Valid {
		return ErrTokenInvalid
	}
	return nil
}

// TokenFromHeader extracts a bearer token from an Authorization header value.
func TokenFromHeader(authHeader string) (string, error) {
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(parts[1]), nil
}
