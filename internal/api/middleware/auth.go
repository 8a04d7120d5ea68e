package middleware

import (
	"context"
	"net/http"

	"github.com/eventra/server/internal/api/respond"
	"github.com/eventra/server/internal/auth"
	"github.com/eventra/server/internal/domain/accounts"
)

const currentUserKey contextKey = "current_user"

// UserSource loads the current user record for an authenticated request.
// The lookup happens per request so verified and staff checks always see
// current database state, not what was true when the token was issued.
type UserSource interface {
	GetByID(ctx context.Context, id string) (*accounts.User, error)
}

// RequireAuth authenticates the request via a Bearer access token, loads the
// user, and stores it in the request context. Requests without a valid token
// get 401.
func RequireAuth(tokens *auth.Tokens, users UserSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				respond.Error(w, r, http.StatusUnauthorized, "Authentication credentials were not provided", err)
				return
			}

			claims, err := tokens.ParseAccess(token)
			if err != nil {
				respond.Error(w, r, http.StatusUnauthorized, "Invalid or expired token", err)
				return
			}

			user, err := users.GetByID(r.Context(), claims.Subject)
			if err != nil {
				respond.Error(w, r, http.StatusUnauthorized, "Invalid or expired token", err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireVerified rejects authenticated but unverified users with 403.
// Must run after RequireAuth.
func RequireVerified(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := UserFromContext(r.Context())
		if user == nil {
			respond.Error(w, r, http.StatusUnauthorized, "Authentication credentials were not provided", nil)
			return
		}
		if !user.IsVerified {
			respond.Error(w, r, http.StatusForbidden, "Please verify your account first", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireStaff rejects non-staff users with 403. Must run after RequireAuth.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := UserFromContext(r.Context())
		if user == nil {
			respond.Error(w, r, http.StatusUnauthorized, "Authentication credentials were not provided", nil)
			return
		}
		if !user.IsStaff {
			respond.Error(w, r, http.StatusForbidden, "You do not have permission to perform this action", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithUser stores the authenticated user in the context.
func WithUser(ctx context.Context, user *accounts.User) context.Context {
	return context.WithValue(ctx, currentUserKey, user)
}

// UserFromContext returns the authenticated user, or nil when the request
// was not authenticated.
func UserFromContext(ctx context.Context) *accounts.User {
	if user, ok := ctx.Value(currentUserKey).(*accounts.User); ok {
		return user
	}
	return nil
}
