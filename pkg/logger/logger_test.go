package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithRequestIDAddsContextFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	ctx := ContextWithRequestID(context.Background(), "req-9")
	ctx = ContextWithUserID(ctx, "u7")
	WithRequestID(ctx, base).Info("handled")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != "req-9" || fields["user_id"] != "u7" {
		t.Fatalf("unexpected fields %v", fields)
	}
}

func TestWithRequestIDWithoutValues(t *testing.T) {
	base := zap.NewNop()
	if got := WithRequestID(context.Background(), base); got != base {
		t.Fatal("expected the base logger back")
	}
	if RequestID(nil) != "" || UserID(nil) != "" {
		t.Fatal("expected empty ids for a nil context")
	}
}

func TestNewFallsBackToInfo(t *testing.T) {
	log, err := New(Config{Level: "loud", Encoding: "console", Service: "workdesk", Env: "test"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if log.Core().Enabled(zap.DebugLevel) {
		t.Fatal("debug should be disabled at the fallback level")
	}
	if !log.Core().Enabled(zap.InfoLevel) {
		t.Fatal("info should be enabled")
	}
}
