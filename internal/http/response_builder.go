// Package http exposes the tracker over a JSON API.
//
// This file builds JSON responses and maps domain errors onto status codes
// with a consistent error body.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"kepngern/internal/auth"
	"kepngern/internal/core"
	"kepngern/internal/log"
)

// Error codes carried in ErrorBody.Code.
const (
	CodeBadRequest       = "bad_request"
	CodeValidation       = "validation_failed"
	CodeUnauthorized     = "unauthorized"
	CodeNotFound         = "not_found"
	CodeMethodNotAllowed = "method_not_allowed"
	CodeRateLimited      = "rate_limited"
	CodeInternal         = "internal_error"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// writeJSON sends v with the given status. A nil v sends only the status.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	if v == nil {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Failed to write response", log.FieldError, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, body ErrorBody) {
	writeJSON(w, r, status, body)
}

// BadRequest reports a body or query that could not be decoded.
func BadRequest(message string) ErrorBody {
	return ErrorBody{Code: CodeBadRequest, Message: message}
}

// Unauthorized reports a missing or rejected credential.
func Unauthorized(message string) ErrorBody {
	return ErrorBody{Code: CodeUnauthorized, Message: message}
}

// errorFor maps err onto a status and body. Validation errors name the field
// that was rejected; anything unrecognised is a 500 with a generic message.
func errorFor(err error) (int, ErrorBody) {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity, ErrorBody{Code: CodeValidation, Field: ve.Field, Message: ve.Err.Error()}
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, Unauthorized(err.Error())
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrRevoked):
		return http.StatusUnauthorized, Unauthorized(err.Error())
	default:
		return http.StatusInternalServerError, ErrorBody{Code: CodeInternal, Message: "internal server error"}
	}
}

// writeDomainError logs server-side failures and sends the mapped response.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorFor(err)
	if status >= http.StatusInternalServerError {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed", log.FieldError, err)
	}
	writeError(w, r, status, body)
}
