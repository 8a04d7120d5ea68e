package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/eventra/server/internal/api/handlers"
	"github.com/eventra/server/internal/api/middleware"
	"github.com/eventra/server/internal/auth"
	"github.com/eventra/server/internal/config"
	"github.com/eventra/server/internal/domain/accounts"
	"github.com/eventra/server/internal/domain/events"
	"github.com/eventra/server/internal/metrics"
)

// Dependencies carries everything the router wires together.
type Dependencies struct {
	Config    config.Config
	Logger    zerolog.Logger
	Tokens    *auth.Tokens
	Accounts  *accounts.Service
	Events    *events.Service
	Pool      *pgxpool.Pool
	Version   string
	GitCommit string
}

// NewRouter assembles the HTTP surface: routes, per-route auth and rate
// limit tiers, and the global middleware chain.
func NewRouter(deps Dependencies) http.Handler {
	accountsHandler := handlers.NewAccountsHandler(deps.Accounts)
	eventsHandler := handlers.NewEventsHandler(deps.Events)
	healthHandler := handlers.NewHealthHandler(deps.Pool, deps.Version, deps.GitCommit)

	requireAuth := middleware.RequireAuth(deps.Tokens, deps.Accounts)
	limit := middleware.RateLimit(deps.Config.RateLimit)
	loginTier := middleware.WithRateLimitTierHandler(middleware.TierLogin)
	authTier := middleware.WithRateLimitTierHandler(middleware.TierAuth)

	// Tier assignment must wrap the limiter so the limiter sees the tier.
	public := func(h http.HandlerFunc) http.Handler {
		return limit(h)
	}
	login := func(h http.HandlerFunc) http.Handler {
		return loginTier(limit(h))
	}
	authed := func(h http.HandlerFunc) http.Handler {
		return authTier(limit(requireAuth(h)))
	}
	verified := func(h http.HandlerFunc) http.Handler {
		return authTier(limit(requireAuth(middleware.RequireVerified(h))))
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", healthHandler.Healthz)
	mux.HandleFunc("GET /readyz", healthHandler.Readyz)
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mux.Handle("POST /accounts/register", public(accountsHandler.Register))
	mux.Handle("GET /accounts/verify-user", public(accountsHandler.Verify))
	mux.Handle("POST /accounts/login", login(accountsHandler.Login))
	mux.Handle("POST /accounts/token-refresh", authTier(limit(http.HandlerFunc(accountsHandler.Refresh))))
	mux.Handle("GET /accounts/users", authTier(limit(requireAuth(middleware.RequireStaff(http.HandlerFunc(accountsHandler.Users))))))

	mux.Handle("POST /events/create", verified(eventsHandler.Create))
	mux.Handle("GET /events/all", public(eventsHandler.All))
	mux.Handle("GET /events/search", public(eventsHandler.Search))
	mux.Handle("GET /events/filter", public(eventsHandler.Filter))
	mux.Handle("GET /events/next-7-days", public(eventsHandler.NextSevenDays))
	mux.Handle("GET /events/next-month", public(eventsHandler.NextMonth))
	mux.Handle("GET /events/{id}", public(eventsHandler.Get))
	mux.Handle("/events/{id}/update", methodMux(map[string]http.Handler{
		http.MethodPut:   authed(eventsHandler.Update),
		http.MethodPatch: authed(eventsHandler.Update),
	}))
	mux.Handle("DELETE /events/{id}/delete", authed(eventsHandler.Delete))
	mux.Handle("POST /events/{id}/register", verified(eventsHandler.Register))

	var handler http.Handler = mux
	handler = middleware.PublicRequestSize()(handler)
	handler = metrics.HTTPMiddleware(handler)
	handler = middleware.RequestLogging(deps.Logger)(handler)
	handler = middleware.CorrelationID(deps.Logger)(handler)
	return handler
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
