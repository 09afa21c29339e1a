// Package response writes the JSON envelope every API response shares:
//
//	{"status":201,"message":"...","data":{...},"errors":{"field":"..."}}
//
// status mirrors the HTTP code so clients that only see the body still know
// the outcome.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/shashiranjanraj/furnivision/pkg/logger"
)

type Envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

// Write sends body with the given HTTP status. Responses are never cached:
// carts, sessions and job states change between calls.
func Write(w http.ResponseWriter, status int, body Envelope) {
	if body.Status == 0 {
		body.Status = status
	}
	h := w.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("response: encode", "status", status, "error", err)
	}
}

func Success(w http.ResponseWriter, data any) {
	Write(w, http.StatusOK, Envelope{Data: data})
}

func Created(w http.ResponseWriter, data any) {
	Write(w, http.StatusCreated, Envelope{Data: data})
}

// Accepted answers work that keeps running after the response.
func Accepted(w http.ResponseWriter, data any) {
	Write(w, http.StatusAccepted, Envelope{Data: data})
}

// Message sends a 200 carrying a user-facing message and optional data.
func Message(w http.ResponseWriter, message string, data any) {
	Write(w, http.StatusOK, Envelope{Message: message, Data: data})
}

// Error sends message verbatim; it is shown to the user as is.
func Error(w http.ResponseWriter, status int, message string) {
	Write(w, status, Envelope{Message: message})
}

// ValidationError sends 422 with one message per offending field.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	Write(w, http.StatusUnprocessableEntity, Envelope{Message: "Validation failed", Errors: errs})
}

func Unauthorized(w http.ResponseWriter)    { Error(w, http.StatusUnauthorized, "Unauthorized") }
func Forbidden(w http.ResponseWriter)       { Error(w, http.StatusForbidden, "Forbidden") }
func NotFound(w http.ResponseWriter)        { Error(w, http.StatusNotFound, "Not found") }
func TooManyRequests(w http.ResponseWriter) { Error(w, http.StatusTooManyRequests, "Too Many Requests") }
