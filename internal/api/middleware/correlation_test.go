package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestCorrelationIDGeneratesID(t *testing.T) {
	var seen string
	handler := CorrelationID(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/events/all", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if seen == "" {
		t.Fatal("request ID missing from context")
	}
	if res.Header().Get("X-Request-ID") != seen {
		t.Errorf("response header X-Request-ID = %q, want %q", res.Header().Get("X-Request-ID"), seen)
	}
}

func TestCorrelationIDHonorsIncomingHeader(t *testing.T) {
	handler := CorrelationID(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := GetRequestID(r.Context()); got != "proxy-assigned-id" {
			t.Errorf("request ID = %q, want proxy-assigned-id", got)
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/events/all", nil)
	req.Header.Set("X-Request-ID", "proxy-assigned-id")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
}

func TestRequestSizeLimitsBody(t *testing.T) {
	handler := RequestSize(16)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err == nil {
			t.Error("expected read error for oversized body")
		}
		w.WriteHeader(http.StatusRequestEntityTooLarge)
	}))

	req := httptest.NewRequest(http.MethodPost, "/events/create", strings.NewReader(strings.Repeat("x", 64)))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
}
