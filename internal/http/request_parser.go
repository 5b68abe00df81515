// Package http exposes the tracker over a JSON API.
//
// This file decodes request bodies and query parameters into domain inputs.
// Amounts are accepted as JSON numbers or as strings typed by the user
// ("3500", "12,50").
package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"kepngern/internal/core"
)

// maxBodyBytes caps every request body.
const maxBodyBytes = 1 << 20

var errEmptyBody = errors.New("request body is empty")

// Amount decodes a positive money value from a JSON number or string.
type Amount struct {
	decimal.Decimal
	set bool
	err error
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	a.set = true
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		a.set = false
		return nil
	}
	var s string
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	} else {
		s = string(b)
	}
	// Parse failures surface as validation errors, not malformed JSON.
	a.Decimal, a.err = core.ParseAmount(s)
	return nil
}

// value returns the parsed amount or a validation error naming field.
func (a Amount) value(field string, missing error) (decimal.Decimal, error) {
	if !a.set {
		return decimal.Zero, &core.ValidationError{Field: field, Err: missing}
	}
	if a.err != nil {
		return decimal.Zero, &core.ValidationError{Field: field, Err: a.err}
	}
	return a.Decimal, nil
}

// TransactionRequest is the body of POST and PUT on transactions.
type TransactionRequest struct {
	Type        core.TransactionType `json:"type"`
	Category    string               `json:"category"`
	Amount      Amount               `json:"amount"`
	Date        string               `json:"date"`
	Description string               `json:"description"`
}

// Input converts the request to a domain input. Amount problems are
// reported here; the rest is validated by the ledger.
func (req TransactionRequest) Input() (core.TransactionInput, error) {
	amount, err := req.Amount.value("amount", core.ErrInvalidAmount)
	if err != nil {
		return core.TransactionInput{}, err
	}
	return core.TransactionInput{
		Type:        core.TransactionType(strings.ToLower(strings.TrimSpace(string(req.Type)))),
		Category:    req.Category,
		Amount:      amount,
		Date:        strings.TrimSpace(req.Date),
		Description: sanitizeInput(req.Description),
	}, nil
}

// BudgetRequest is the body of PUT /api/budgets/{category}.
type BudgetRequest struct {
	Limit Amount `json:"limit"`
}

func (req BudgetRequest) LimitValue() (decimal.Decimal, error) {
	limit, err := req.Limit.value("limit", core.ErrInvalidLimit)
	if errors.Is(err, core.ErrInvalidAmount) {
		return decimal.Zero, &core.ValidationError{Field: "limit", Err: core.ErrInvalidLimit}
	}
	return limit, err
}

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// decodeJSON reads a single JSON object from the request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return fmt.Errorf("request body exceeds %d bytes", maxBodyBytes)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return errEmptyBody
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if dec.More() {
		return errors.New("invalid JSON: trailing data")
	}
	return nil
}

// parseKind reads the transaction type from the "type" query parameter,
// defaulting to expense.
func parseKind(r *http.Request) (core.TransactionType, error) {
	v := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("type")))
	if v == "" {
		return core.Expense, nil
	}
	kind := core.TransactionType(v)
	if !kind.IsValid() {
		return "", &core.ValidationError{Field: "type", Err: core.ErrInvalidType}
	}
	return kind, nil
}

// pathParam returns the decoded route parameter key.
func pathParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if r.URL.RawPath != "" {
		if u, err := url.PathUnescape(v); err == nil {
			return u
		}
	}
	return v
}

// sanitizeInput drops control characters other than tab and newlines, and
// trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}
