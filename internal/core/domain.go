package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	NotificationBudget   NotificationType = "budget"
	NotificationReminder NotificationType = "reminder"
	NotificationAlert    NotificationType = "alert"
	NotificationSuccess  NotificationType = "success"
)

const (
	StatusOver  BudgetState = "over"
	StatusUnder BudgetState = "under"
)

// DateLayout is the wire and storage format of a calendar date.
const DateLayout = "2006-01-02"

type (
	TransactionType  string
	NotificationType string
	BudgetState      string

	// Date is a calendar date without a time component, always at UTC midnight.
	Date struct {
		time.Time
	}

	Transaction struct {
		ID          string          `json:"id"`
		Type        TransactionType `json:"type"`
		Category    string          `json:"category"`
		Amount      decimal.Decimal `json:"amount"`
		Date        Date            `json:"date"`
		Description string          `json:"description,omitempty"`
	}

	// TransactionInput carries every transaction field except the store-assigned ID.
	TransactionInput struct {
		Type        TransactionType `json:"type"`
		Category    string          `json:"category"`
		Amount      decimal.Decimal `json:"amount"`
		Date        string          `json:"date"`
		Description string          `json:"description,omitempty"`
	}

	Budget struct {
		Category string          `json:"category"`
		Limit    decimal.Decimal `json:"limit"`
	}

	Notification struct {
		ID        string           `json:"id"`
		Type      NotificationType `json:"type"`
		Title     string           `json:"title"`
		Message   string           `json:"message"`
		Read      bool             `json:"read"`
		CreatedAt time.Time        `json:"createdAt"`
		Link      string           `json:"link,omitempty"`
	}

	// NotificationInput is what emitters hand to the notification store.
	// ID is optional; the store assigns one when it is empty.
	NotificationInput struct {
		ID      string           `json:"id,omitempty"`
		Type    NotificationType `json:"type"`
		Title   string           `json:"title"`
		Message string           `json:"message"`
		Link    string           `json:"link,omitempty"`
	}
)

var (
	ErrInvalidAmount = errors.New("amount must be greater than zero")
	ErrInvalidLimit  = errors.New("limit must be greater than zero")
	ErrEmptyCategory = errors.New("empty category")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidType   = errors.New("invalid transaction type")
)

// ValidationError reports which input field was rejected. It unwraps to one
// of the sentinel errors above.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// IsValidationError reports whether err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (t TransactionType) IsValid() bool {
	switch t {
	case Income, Expense:
		return true
	default:
		return false
	}
}

func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationBudget, NotificationReminder, NotificationAlert, NotificationSuccess:
		return true
	default:
		return false
	}
}

// Validate checks the input and returns the parsed date on success.
func (in TransactionInput) Validate() (Date, error) {
	if !in.Type.IsValid() {
		return Date{}, invalid("type", ErrInvalidType)
	}
	if strings.TrimSpace(in.Category) == "" {
		return Date{}, invalid("category", ErrEmptyCategory)
	}
	if err := ValidateAmount(in.Amount); err != nil {
		return Date{}, invalid("amount", err)
	}
	d, err := ParseDate(in.Date)
	if err != nil {
		return Date{}, invalid("date", err)
	}
	return d, nil
}

// Build validates the input and produces a transaction carrying id.
func (in TransactionInput) Build(id string) (Transaction, error) {
	d, err := in.Validate()
	if err != nil {
		return Transaction{}, err
	}
	return Transaction{
		ID:          id,
		Type:        in.Type,
		Category:    strings.TrimSpace(in.Category),
		Amount:      in.Amount,
		Date:        d,
		Description: in.Description,
	}, nil
}

// Input converts a stored transaction back into an input, e.g. for edits.
func (t Transaction) Input() TransactionInput {
	return TransactionInput{
		Type:        t.Type,
		Category:    t.Category,
		Amount:      t.Amount,
		Date:        t.Date.String(),
		Description: t.Description,
	}
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return invalid("category", ErrEmptyCategory)
	}
	if !b.Limit.IsPositive() {
		return invalid("limit", ErrInvalidLimit)
	}
	return nil
}
