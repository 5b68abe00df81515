package log

import "time"

// Common field names for structured logging
const (
	FieldComponent      = "component"
	FieldRequestID      = "request_id"
	FieldClientIP       = "client_ip"
	FieldMethod         = "method"
	FieldPath           = "path"
	FieldQuery          = "query"
	FieldStatusCode     = "status_code"
	FieldDuration       = "duration_ms"
	FieldUserAgent      = "user_agent"
	FieldSuccess        = "success"
	FieldError          = "error"
	FieldOperation      = "operation"
	FieldTransactionID  = "transaction_id"
	FieldTxType         = "tx_type"
	FieldCategory       = "category"
	FieldAmount         = "amount"
	FieldLimit          = "limit"
	FieldNotificationID = "notification_id"
	FieldNotifType      = "notification_type"
	FieldSlot           = "slot"
	FieldBytes          = "bytes"
	FieldUsername       = "username"
	FieldAttempt        = "attempt"
)

// Components defines standard component names
const (
	ComponentApp           = "app"
	ComponentHTTP          = "http"
	ComponentLedger        = "ledger"
	ComponentNotifications = "notifications"
	ComponentAlerts        = "alerts"
	ComponentStorage       = "storage"
	ComponentBackend       = "backend"
	ComponentAMQP          = "amqp"
	ComponentAuth          = "auth"
	ComponentDelivery      = "delivery"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpClear    = "clear"
	OpHydrate  = "hydrate"
	OpSnapshot = "snapshot"
	OpPublish  = "publish"
	OpDeliver  = "deliver"
	OpEvaluate = "evaluate"
	OpLogin    = "login"
	OpLogout   = "logout"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithRequestID adds request ID field
func (f LogFields) WithRequestID(requestID string) LogFields {
	if requestID != "" {
		f[FieldRequestID] = requestID
	}
	return f
}

// WithClientIP adds client IP field
func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithTransaction adds transaction-related fields
func (f LogFields) WithTransaction(id, kind, category, amount string) LogFields {
	f[FieldTransactionID] = id
	f[FieldTxType] = kind
	f[FieldCategory] = category
	f[FieldAmount] = amount
	return f
}

// WithNotification adds notification-related fields
func (f LogFields) WithNotification(id, kind string) LogFields {
	f[FieldNotificationID] = id
	f[FieldNotifType] = kind
	return f
}

// WithHTTPRequest adds HTTP request fields
func (f LogFields) WithHTTPRequest(method, path, query, userAgent string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	if query != "" {
		f[FieldQuery] = query
	}
	if userAgent != "" {
		f[FieldUserAgent] = userAgent
	}
	return f
}

// WithHTTPResponse adds HTTP response fields
func (f LogFields) WithHTTPResponse(statusCode int, duration time.Duration) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = duration.Milliseconds()
	f[FieldSuccess] = statusCode < 400
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
