package slog

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/mfalcone/bridgo/providers/observability"
)

// newTestObserver returns an Observer writing JSON records into buf at DEBUG level.
func newTestObserver(buf *bytes.Buffer) *Observer {
	handler := slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return New(slog.New(handler))
}

func TestNew_NilLoggerFallsBackToDefault(t *testing.T) {
	observer := New(nil)
	if observer.logger == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestObserver_LogLevels(t *testing.T) {
	var buf bytes.Buffer
	observer := newTestObserver(&buf)
	ctx := context.Background()

	observer.Debug(ctx, "debug message", observability.String("k", "v"))
	observer.Info(ctx, "info message")
	observer.Warn(ctx, "warn message")
	observer.Error(ctx, "error message")

	out := buf.String()
	for _, want := range []string{"debug message", "info message", "warn message", "error message"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected log output to contain %q, got: %s", want, out)
		}
	}
	if !strings.Contains(out, `"k":"v"`) {
		t.Errorf("expected attribute in output, got: %s", out)
	}
}

func TestObserver_TraceFilteredAtDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	observer := newTestObserver(&buf)

	observer.Trace(context.Background(), "trace message")

	if strings.Contains(buf.String(), "trace message") {
		t.Errorf("expected trace message to be filtered at DEBUG level")
	}
}

func TestObserver_SpanLifecycle(t *testing.T) {
	var buf bytes.Buffer
	observer := newTestObserver(&buf)

	ctx, span := observer.StartSpan(context.Background(), "stream.session",
		observability.String(observability.AttrConversationID, "conv-1"))

	// The span must be retrievable from the returned context.
	if got := observability.SpanFromContext(ctx); got != span {
		t.Fatal("expected span attached to returned context")
	}

	span.AddEvent(observability.EventStreamOpen)
	span.SetAttributes(observability.Int(observability.AttrStreamChunks, 3))
	span.SetStatus(observability.StatusOK, "")
	span.End()

	out := buf.String()
	for _, want := range []string{"span.start", "stream.open", "span.end", "stream.session"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected span output to contain %q, got: %s", want, out)
		}
	}
}

func TestObserver_SpanRecordError(t *testing.T) {
	var buf bytes.Buffer
	observer := newTestObserver(&buf)

	_, span := observer.StartSpan(context.Background(), "store.append")
	span.RecordError(context.DeadlineExceeded)
	span.End()

	if !strings.Contains(buf.String(), "deadline exceeded") {
		t.Errorf("expected recorded error in output, got: %s", buf.String())
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{" error ", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLogLevel(tt.input); got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLogLevelString(t *testing.T) {
	if got := LogLevelString(slog.LevelWarn); got != "WARN" {
		t.Errorf("expected WARN, got %q", got)
	}
	if got := LogLevelString(slog.Level(-42)); !strings.HasPrefix(got, "LEVEL(") {
		t.Errorf("expected LEVEL(...) fallback, got %q", got)
	}
}
