package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":      slog.LevelInfo,
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("%q: expected %v, got %v (err=%v)", in, want, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestComponentFieldJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Format: "json", Output: &buf, Level: slog.LevelInfo}).WithComponent(ComponentLedger)
	l.Info("transaction added", FieldCategory, "อาหาร")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode: %v (%s)", err, buf.String())
	}
	if rec[FieldComponent] != ComponentLedger || rec[FieldCategory] != "อาหาร" {
		t.Fatalf("unexpected record %v", rec)
	}
}

func TestRequestLoggerStoresLogger(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Format: "json", Output: &buf, Level: slog.LevelInfo})

	var seen *Logger
	h := RequestLogger(l, func(*http.Request) string { return "req-1" })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if seen == nil || seen.Component() != ComponentApp {
		t.Fatalf("expected request logger in context")
	}
	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec[FieldRequestID] != "req-1" || rec[FieldStatusCode] != float64(http.StatusTeapot) {
		t.Fatalf("unexpected record %v", rec)
	}
}
