package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/lionscafe/api/domain/apperr"
)

type errorDetail struct {
	Message    string              `json:"message"`
	Code       string              `json:"code"`
	StatusCode int                 `json:"statusCode"`
	Details    []apperr.FieldError `json:"details,omitempty"`
	Timestamp  string              `json:"timestamp"`
	Path       string              `json:"path"`
	RequestID  string              `json:"requestId,omitempty"`
}

type errorBody struct {
	Success bool        `json:"success"`
	Error   errorDetail `json:"error"`
}

func notFoundRoute() error {
	return apperr.New(http.StatusNotFound, apperr.CodeNotFound, "Route not found")
}

// ErrorWriter is the single sink every handler and middleware failure
// funnels through. It classifies the error, logs exactly one structured
// entry, and writes the uniform error envelope.
type ErrorWriter struct {
	logger     zerolog.Logger
	production bool
}

func NewErrorWriter(logger zerolog.Logger, production bool) *ErrorWriter {
	return &ErrorWriter{logger: logger, production: production}
}

// Write logs and responds to a failed request. Operational errors log
// at warn; anything else logs at error with the full chain.
func (ew *ErrorWriter) Write(w http.ResponseWriter, r *http.Request, err error) {
	e := apperr.From(err)

	evt := ew.logger.Warn()
	if !e.Operational {
		evt = ew.logger.Error().Err(err)
	}
	if p, ok := PrincipalFrom(r.Context()); ok {
		evt = evt.Str("user_id", p.ID)
	}
	evt.Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("ip", r.RemoteAddr).
		Str("code", e.Code).
		Int("status", e.Status).
		Msg(e.Message)

	message := e.Message
	details := e.Details
	if ew.production && !e.Operational && e.Status >= 500 {
		// Fault internals never reach clients in production.
		switch e.Code {
		case apperr.CodeDatabase, apperr.CodeDatabaseConfig:
			message = "Database error"
		default:
			message = "Internal server error"
		}
	}
	if ew.production && e.Code != apperr.CodeValidation {
		details = nil
	}

	writeJSON(w, e.Status, errorBody{
		Error: errorDetail{
			Message:    message,
			Code:       e.Code,
			StatusCode: e.Status,
			Details:    details,
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
			Path:       r.URL.Path,
			RequestID:  middleware.GetReqID(r.Context()),
		},
	})
}
