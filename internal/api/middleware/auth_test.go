package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventra/server/internal/auth"
	"github.com/eventra/server/internal/domain/accounts"
)

type fakeUserSource struct {
	users map[string]*accounts.User
}

func (f *fakeUserSource) GetByID(_ context.Context, id string) (*accounts.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, accounts.ErrNotFound
	}
	return user, nil
}

func newTestTokens() *auth.Tokens {
	return auth.NewTokens("test-secret", "eventra", 15*time.Minute, 7*24*time.Hour, 24*time.Hour)
}

func echoUserHandler(t *testing.T, wantID string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := UserFromContext(r.Context())
		require.NotNil(t, user)
		assert.Equal(t, wantID, user.ID)
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth(t *testing.T) {
	tokens := newTestTokens()
	source := &fakeUserSource{users: map[string]*accounts.User{
		"abcd1234": {ID: "abcd1234", Username: "alice", IsVerified: true},
	}}

	pair, err := tokens.IssuePair("abcd1234")
	require.NoError(t, err)

	handler := RequireAuth(tokens, source)(echoUserHandler(t, "abcd1234"))

	req := httptest.NewRequest(http.MethodGet, "/accounts/users", nil)
	req.Header.Set("Authorization", "Bearer "+pair.Access)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	assert.Equal(t, http.StatusOK, res.Code)
}

func TestRequireAuthMissingHeader(t *testing.T) {
	handler := RequireAuth(newTestTokens(), &fakeUserSource{})(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/accounts/users", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestRequireAuthRejectsRefreshToken(t *testing.T) {
	tokens := newTestTokens()
	source := &fakeUserSource{users: map[string]*accounts.User{
		"abcd1234": {ID: "abcd1234"},
	}}

	pair, err := tokens.IssuePair("abcd1234")
	require.NoError(t, err)

	handler := RequireAuth(tokens, source)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/accounts/users", nil)
	req.Header.Set("Authorization", "Bearer "+pair.Refresh)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestRequireAuthUnknownUser(t *testing.T) {
	tokens := newTestTokens()

	pair, err := tokens.IssuePair("deadbeef")
	require.NoError(t, err)

	handler := RequireAuth(tokens, &fakeUserSource{})(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/accounts/users", nil)
	req.Header.Set("Authorization", "Bearer "+pair.Access)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestRequireVerified(t *testing.T) {
	tests := []struct {
		name string
		user *accounts.User
		want int
	}{
		{"verified user passes", &accounts.User{ID: "abcd1234", IsVerified: true}, http.StatusOK},
		{"unverified user forbidden", &accounts.User{ID: "abcd1234"}, http.StatusForbidden},
		{"anonymous unauthorized", nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequireVerified(okHandler())

			req := httptest.NewRequest(http.MethodPost, "/events/create", nil)
			if tt.user != nil {
				ctx := WithUser(req.Context(), tt.user)
				req = req.WithContext(ctx)
			}
			res := httptest.NewRecorder()
			handler.ServeHTTP(res, req)

			assert.Equal(t, tt.want, res.Code)
		})
	}
}

func TestRequireStaff(t *testing.T) {
	tests := []struct {
		name string
		user *accounts.User
		want int
	}{
		{"staff passes", &accounts.User{ID: "abcd1234", IsStaff: true}, http.StatusOK},
		{"non-staff forbidden", &accounts.User{ID: "abcd1234", IsVerified: true}, http.StatusForbidden},
		{"anonymous unauthorized", nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequireStaff(okHandler())

			req := httptest.NewRequest(http.MethodGet, "/accounts/users", nil)
			if tt.user != nil {
				ctx := WithUser(req.Context(), tt.user)
				req = req.WithContext(ctx)
			}
			res := httptest.NewRecorder()
			handler.ServeHTTP(res, req)

			assert.Equal(t, tt.want, res.Code)
		})
	}
}

func TestUserFromContextEmpty(t *testing.T) {
	assert.Nil(t, UserFromContext(context.Background()))
}
