package respond

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

const contentType = "application/json"

// Envelope is the wire shape of every response body. Message carries a
// human-readable outcome; Errors carries per-field validation messages.
type Envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
	Data    any                 `json:"data,omitempty"`
}

// Success writes a success envelope with the given status.
func Success(w http.ResponseWriter, status int, message string, data any) {
	write(w, status, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error writes a failure envelope and logs it through the request logger.
// Client errors (4xx) log at warn, server errors (5xx) at error. The message
// is what the client sees; err is internal detail for the log only.
func Error(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	logFailure(r, status, message, err)
	write(w, status, Envelope{
		Success: false,
		Message: message,
	})
}

// FieldErrors writes a 400 failure envelope carrying per-field messages.
func FieldErrors(w http.ResponseWriter, r *http.Request, errs map[string][]string) {
	logFailure(r, http.StatusBadRequest, "validation failed", nil)
	write(w, http.StatusBadRequest, Envelope{
		Success: false,
		Errors:  errs,
	})
}

func logFailure(r *http.Request, status int, message string, err error) {
	if r == nil {
		return
	}
	logger := zerolog.Ctx(r.Context())

	event := logger.Warn()
	if status >= 500 {
		event = logger.Error()
	}
	event.
		Err(err).
		Int("status", status).
		Str("path", r.URL.Path).
		Str("method", r.Method).
		Msg(message)
}

func write(w http.ResponseWriter, status int, env Envelope) {
	payload, err := json.Marshal(env)
	if err != nil {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"message":"Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}
