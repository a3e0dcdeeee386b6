package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestBreaker(cfg CircuitBreakerConfig, now *time.Time) *CircuitBreaker {
	b := NewCircuitBreaker(cfg)
	b.now = func() time.Time { return *now }
	return b
}

func TestCircuitBreaker_BasicTransitions(t *testing.T) {
	now := time.Date(2026, 3, 7, 19, 0, 0, 0, time.UTC)
	var transitions []string
	b := newTestBreaker(CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      5 * time.Second,
		HalfOpenMaxReq:   1,
		OnStateChange: func(from, to CircuitState) {
			transitions = append(transitions, string(from)+"->"+string(to))
		},
	}, &now)

	if err := b.Allow(); err != nil {
		t.Fatalf("expected allow in closed state: %v", err)
	}

	b.RecordFailure()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after first failure, got %s", state)
	}

	b.RecordFailure()
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open after threshold failures, got %s", state)
	}

	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected circuit open error, got %v", err)
	}

	now = now.Add(6 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected half-open probe to pass, got %v", err)
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected second probe to be rejected, got %v", err)
	}

	b.RecordSuccess()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after successful half-open probe, got %s", state)
	}

	want := []string{"closed->open", "open->half_open", "half_open->closed"}
	if len(transitions) != len(want) {
		t.Fatalf("transitions=%v want=%v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Fatalf("transitions=%v want=%v", transitions, want)
		}
	}
}

func TestCircuitBreaker_Disabled(t *testing.T) {
	now := time.Date(2026, 3, 7, 19, 0, 0, 0, time.UTC)
	b := newTestBreaker(CircuitBreakerConfig{Enabled: false, FailureThreshold: 1}, &now)

	for i := 0; i < 3; i++ {
		b.RecordFailure()
	}
	if err := b.Allow(); err != nil {
		t.Fatalf("disabled breaker must admit calls, got %v", err)
	}
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed, got %s", state)
	}
}

func TestCircuitBreaker_DoIgnoresCallerCancellation(t *testing.T) {
	now := time.Date(2026, 3, 7, 19, 0, 0, 0, time.UTC)
	b := newTestBreaker(CircuitBreakerConfig{Enabled: true, FailureThreshold: 1, OpenTimeout: time.Minute, HalfOpenMaxReq: 1}, &now)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := b.Do(ctx, func() error { return ctx.Err() })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("caller cancellation must not trip the breaker, got %s", state)
	}

	err = b.Do(context.Background(), func() error { return errors.New("connection refused") })
	if err == nil {
		t.Fatalf("expected dependency error")
	}
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open after dependency failure, got %s", state)
	}
}

func TestCircuitBreakerConfig_Normalize(t *testing.T) {
	got := CircuitBreakerConfig{Enabled: true}.normalize()
	want := DefaultCircuitBreakerConfig()
	if got.FailureThreshold != want.FailureThreshold || got.OpenTimeout != want.OpenTimeout || got.HalfOpenMaxReq != want.HalfOpenMaxReq {
		t.Fatalf("normalize()=%+v want defaults %+v", got, want)
	}
}
