package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	wrap "github.com/Temutjin2k/ride-dispatch/pkg/logger/wrapper"
)

func decodeLast(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var rec map[string]any
	if err := json.Unmarshal(lines[len(lines)-1], &rec); err != nil {
		t.Fatalf("invalid json record: %v", err)
	}
	return rec
}

func TestLogger_ContextFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "dispatch", LevelDebug)

	ctx := wrap.WithAction(context.Background(), "finish_ride")
	ctx = wrap.WithRideID(ctx, "req-1")
	ctx = wrap.WithDriverID(ctx, "drv-9")

	l.Info(ctx, "ride finished", "fare", 250)

	rec := decodeLast(t, &buf)
	if rec["message"] != "ride finished" {
		t.Fatalf("unexpected message: %v", rec["message"])
	}
	if rec["action"] != "finish_ride" || rec["ride_id"] != "req-1" || rec["driver_id"] != "drv-9" {
		t.Fatalf("context fields missing: %v", rec)
	}
	if rec["service"] != "dispatch" {
		t.Fatalf("service attribute missing: %v", rec)
	}
}

func TestLogger_ErrorKeepsRaisingContext(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "dispatch", LevelDebug)

	inner := wrap.WithAction(context.Background(), "debit_wallet")
	err := wrap.Error(inner, errors.New("wallet unavailable"))

	outer := wrap.WithAction(context.Background(), "finish_ride")
	l.Error(wrap.ErrorCtx(outer, err), "finish failed", err)

	rec := decodeLast(t, &buf)
	if rec["action"] != "debit_wallet" {
		t.Fatalf("expected action of the raising context, got %v", rec["action"])
	}
	e, ok := rec["error"].(map[string]any)
	if !ok || e["msg"] != "wallet unavailable" {
		t.Fatalf("unexpected error group: %v", rec["error"])
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "dispatch", LevelWarn)

	l.Info(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Fatalf("info must be filtered at WARN level")
	}
	l.Warn(context.Background(), "shown")
	if buf.Len() == 0 {
		t.Fatalf("warn must be written")
	}
}
