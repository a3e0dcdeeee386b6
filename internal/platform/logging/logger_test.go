package logging

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerKeyValueFields(t *testing.T) {
	core, logs := observer.New(LevelDebug)
	logger := FromZap(zap.New(core)).With("component", "pairing")

	logger.Warn("pairing degraded", "round", 3, "error", errors.New("no rotation"), "dangling")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["component"] != "pairing" {
		t.Fatalf("expected component field, got %v", fields)
	}
	if fields["round"] != int64(3) {
		t.Fatalf("expected round=3, got %v (%T)", fields["round"], fields["round"])
	}
	if fields["error"] != "no rotation" {
		t.Fatalf("expected error field, got %v", fields["error"])
	}
	if _, ok := fields["dangling"]; !ok {
		t.Fatalf("expected dangling key to be kept")
	}
}

func TestLoggerContextAddsTraceIDs(t *testing.T) {
	core, logs := observer.New(LevelInfo)
	logger := FromZap(zap.New(core))

	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	spanID, _ := trace.SpanIDFromHex("0102030405060708")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	logger.InfoContext(ctx, "round generated")
	logger.DebugContext(ctx, "filtered out")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected debug entry to be filtered, got %d entries", len(entries))
	}
	if got := entries[0].ContextMap()["trace_id"]; got != traceID.String() {
		t.Fatalf("expected trace id %s, got %v", traceID, got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw     string
		want    Level
		wantErr bool
	}{
		{raw: "", want: LevelInfo},
		{raw: "DEBUG", want: LevelDebug},
		{raw: " warning ", want: LevelWarn},
		{raw: "error", want: LevelError},
		{raw: "verbose", want: LevelInfo, wantErr: true},
	}

	for _, tc := range tests {
		got, err := ParseLevel(tc.raw)
		if (err != nil) != tc.wantErr {
			t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tc.raw, err, tc.wantErr)
		}
		if got != tc.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}
