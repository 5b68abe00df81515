package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"kepngern/internal/auth"
	"kepngern/internal/core"
)

func TestErrorFor(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
		field  string
	}{
		{"validation", &core.ValidationError{Field: "amount", Err: core.ErrInvalidAmount}, http.StatusUnprocessableEntity, CodeValidation, "amount"},
		{"wrapped validation", fmt.Errorf("add: %w", &core.ValidationError{Field: "date", Err: core.ErrInvalidDate}), http.StatusUnprocessableEntity, CodeValidation, "date"},
		{"credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized, CodeUnauthorized, ""},
		{"revoked", auth.ErrRevoked, http.StatusUnauthorized, CodeUnauthorized, ""},
		{"unknown", errors.New("disk full"), http.StatusInternalServerError, CodeInternal, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := errorFor(tt.err)
			if status != tt.status || body.Code != tt.code || body.Field != tt.field {
				t.Errorf("errorFor() = %d %+v", status, body)
			}
		})
	}

	if _, body := errorFor(errors.New("disk full")); body.Message == "disk full" {
		t.Error("internal errors must not leak their message")
	}
}

func TestWriteJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	w := httptest.NewRecorder()
	writeJSON(w, req, http.StatusCreated, map[string]int{"n": 1})
	if w.Code != http.StatusCreated {
		t.Errorf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	var got map[string]int
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil || got["n"] != 1 {
		t.Errorf("body = %q", w.Body.String())
	}

	w = httptest.NewRecorder()
	writeJSON(w, req, http.StatusNoContent, nil)
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Errorf("no-content response = %d %q", w.Code, w.Body.String())
	}
}

func TestWriteDomainError(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/transactions", nil)
	w := httptest.NewRecorder()

	writeDomainError(w, req, &core.ValidationError{Field: "category", Err: core.ErrEmptyCategory})

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", w.Code)
	}
	var body ErrorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body != (ErrorBody{Code: CodeValidation, Field: "category", Message: core.ErrEmptyCategory.Error()}) {
		t.Errorf("body = %+v", body)
	}
}
