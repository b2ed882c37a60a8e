package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" DEBUG ": slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerStampsComponentOnce(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Output: &buf}).WithComponent(ComponentSession)

	logger.Info("Session created", FieldSessionID, "abc")
	out := buf.String()
	if !strings.Contains(out, "component=session") {
		t.Fatalf("missing component: %s", out)
	}
	if strings.Count(out, "component=") != 1 {
		t.Fatalf("component logged more than once: %s", out)
	}
	if !strings.Contains(out, "session_id=abc") {
		t.Fatalf("missing session id: %s", out)
	}
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Level: slog.LevelDebug, Output: &buf}))

	sl.LogFieldChange(context.Background(), "s1", 3, "category", true, []string{"line", "reason"}, "")
	if !strings.Contains(buf.String(), "field=category") || !strings.Contains(buf.String(), "reset_fields") {
		t.Fatalf("unexpected field change log: %s", buf.String())
	}

	buf.Reset()
	sl.LogError(context.Background(), "boom", errors.New("kaput"), OpRepair, nil)
	if !strings.Contains(buf.String(), "level=ERROR") || !strings.Contains(buf.String(), "error=kaput") {
		t.Fatalf("unexpected error log: %s", buf.String())
	}

	buf.Reset()
	req := httptest.NewRequest(http.MethodGet, "/api/sessions/x", nil)
	sl.LogHTTPEnd(context.Background(), req, http.StatusNotFound, 2, "10.0.0.1", "req_1")
	if !strings.Contains(buf.String(), "level=WARN") || !strings.Contains(buf.String(), "request_id=req_1") {
		t.Fatalf("unexpected http log: %s", buf.String())
	}
}

func TestFromContext(t *testing.T) {
	if got := FromContext(context.Background()); got.Component() != "unknown" {
		t.Fatalf("expected fallback logger, got %q", got.Component())
	}

	logger := Discard()
	var seen *Logger
	h := Middleware(logger)(RequestIDMiddleware(func(*http.Request) string { return "req_9" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = FromContext(r.Context())
		})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == nil || seen.Component() != ComponentHTTP {
		t.Fatalf("expected http component logger, got %+v", seen)
	}
}
