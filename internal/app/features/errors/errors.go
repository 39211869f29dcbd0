// internal/app/features/errors/errors.go

// Package errors renders the API error envelope. Every failure response
// has the shape {"error":{"code":"...","message":"..."}} so clients
// branch on code, never on message text.
package errors

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Error codes carried in the envelope.
const (
	CodeValidation   = "validation"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeNotFound     = "not_found"
	CodeUpstream     = "upstream"
	CodeInternal     = "internal"
)

type envelope struct {
	Error body `json:"error"`
}

type body struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func render(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Error: body{Code: code, Message: message}})
}

// RenderValidation responds 400 with a validation message safe to show
// to the user.
func RenderValidation(w http.ResponseWriter, message string) {
	render(w, http.StatusBadRequest, CodeValidation, message)
}

// RenderUnauthorized responds 401.
func RenderUnauthorized(w http.ResponseWriter) {
	render(w, http.StatusUnauthorized, CodeUnauthorized, "Sign in required.")
}

// RenderForbidden responds 403.
func RenderForbidden(w http.ResponseWriter, message string) {
	if message == "" {
		message = "You don't have permission to do that."
	}
	render(w, http.StatusForbidden, CodeForbidden, message)
}

// RenderNotFound responds 404.
func RenderNotFound(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Not found."
	}
	render(w, http.StatusNotFound, CodeNotFound, message)
}

// RenderUpstream responds 502 for failures of external services.
func RenderUpstream(w http.ResponseWriter, message string) {
	if message == "" {
		message = "An upstream service is unavailable."
	}
	render(w, http.StatusBadGateway, CodeUpstream, message)
}

// ErrorLogger renders 500s while logging the underlying error, which is
// never sent to the client.
type ErrorLogger struct {
	log *zap.Logger
}

func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// LogServerError logs err with request context and responds 500 with a
// generic message.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	e.log.Error(msg,
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	render(w, http.StatusInternalServerError, CodeInternal, "Something went wrong.")
}
