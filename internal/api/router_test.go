package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/eventra/server/internal/auth"
	"github.com/eventra/server/internal/config"
	"github.com/eventra/server/internal/domain/accounts"
	"github.com/eventra/server/internal/domain/events"
)

type stubUserRepo struct{}

func (stubUserRepo) Create(context.Context, accounts.CreateParams) (*accounts.User, error) {
	return nil, accounts.ErrNotFound
}
func (stubUserRepo) GetByID(context.Context, string) (*accounts.User, error) {
	return nil, accounts.ErrNotFound
}
func (stubUserRepo) GetByEmail(context.Context, string) (*accounts.User, error) {
	return nil, accounts.ErrNotFound
}
func (stubUserRepo) GetByUsername(context.Context, string) (*accounts.User, error) {
	return nil, accounts.ErrNotFound
}
func (stubUserRepo) GetByPhone(context.Context, string) (*accounts.User, error) {
	return nil, accounts.ErrNotFound
}
func (stubUserRepo) List(context.Context) ([]accounts.User, error) { return nil, nil }
func (stubUserRepo) MarkVerified(context.Context, string) error    { return accounts.ErrNotFound }

type stubEventRepo struct{}

func (stubEventRepo) Create(context.Context, events.CreateParams) (*events.Event, error) {
	return nil, events.ErrNotFound
}
func (stubEventRepo) GetByID(context.Context, string) (*events.Event, error) {
	return nil, events.ErrNotFound
}
func (stubEventRepo) List(context.Context) ([]events.Event, error)           { return nil, nil }
func (stubEventRepo) Search(context.Context, string) ([]events.Event, error) { return nil, nil }
func (stubEventRepo) Filter(context.Context, events.Filters) ([]events.Event, error) {
	return nil, nil
}
func (stubEventRepo) ListBetween(context.Context, time.Time, time.Time) ([]events.Event, error) {
	return nil, nil
}
func (stubEventRepo) Update(context.Context, string, events.UpdateParams) (*events.Event, error) {
	return nil, events.ErrNotFound
}
func (stubEventRepo) Delete(context.Context, string) error { return events.ErrNotFound }
func (stubEventRepo) RegisterAttendee(context.Context, string, events.Registration) (*events.Event, *events.Registration, error) {
	return nil, nil, events.ErrNotFound
}

type stubDispatcher struct{}

func (stubDispatcher) Dispatch(context.Context, accounts.VerificationEmail) error { return nil }

func newTestRouter() http.Handler {
	tokens := auth.NewTokens("test-secret", "eventra", 15*time.Minute, 7*24*time.Hour, 24*time.Hour)
	logger := zerolog.Nop()
	return NewRouter(Dependencies{
		Config:    config.Config{},
		Logger:    logger,
		Tokens:    tokens,
		Accounts:  accounts.NewService(stubUserRepo{}, tokens, stubDispatcher{}, "https://eventra.example", logger),
		Events:    events.NewService(stubEventRepo{}, logger),
		Version:   "test",
		GitCommit: "none",
	})
}

func TestRouterRoutes(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"healthz", http.MethodGet, "/healthz", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", http.StatusOK},
		{"public event list", http.MethodGet, "/events/all", http.StatusOK},
		{"public event search missing query", http.MethodGet, "/events/search", http.StatusBadRequest},
		{"event create requires auth", http.MethodPost, "/events/create", http.StatusUnauthorized},
		{"event register requires auth", http.MethodPost, "/events/abc/register", http.StatusUnauthorized},
		{"event delete requires auth", http.MethodDelete, "/events/abc/delete", http.StatusUnauthorized},
		{"users requires auth", http.MethodGet, "/accounts/users", http.StatusUnauthorized},
		{"update rejects GET", http.MethodGet, "/events/abc/update", http.StatusMethodNotAllowed},
		{"verify missing token", http.MethodGet, "/accounts/verify-user", http.StatusBadRequest},
		{"unknown route", http.MethodGet, "/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRouterUpdateAllowHeader(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/events/abc/update", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "PATCH, PUT", rec.Header().Get("Allow"))
}
