package retry

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"
	"time"
)

func fastPolicy() Policy {
	p := DefaultPolicy()
	p.BaseDelay = time.Millisecond
	return p
}

func TestDo(t *testing.T) {
	transient := errors.New("429 too many requests")
	permanent := errors.New("invalid payload")

	tests := []struct {
		name      string
		failures  []error
		wantCalls int
		wantErr   bool
	}{
		{name: "first try succeeds", failures: nil, wantCalls: 1},
		{name: "recovers after transient errors", failures: []error{transient, transient}, wantCalls: 3},
		{name: "permanent error stops immediately", failures: []error{permanent}, wantCalls: 1, wantErr: true},
		{
			name:      "gives up after max attempts",
			failures:  []error{transient, transient, transient, transient, transient, transient},
			wantCalls: 5,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Do(context.Background(), fastPolicy(), func(ctx context.Context) error {
				calls++
				if calls <= len(tt.failures) {
					return tt.failures[calls-1]
				}
				return nil
			})

			if (err != nil) != tt.wantErr {
				t.Errorf("Do() error = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("Do() calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestDo_WrapsLastError(t *testing.T) {
	last := errors.New("connection reset by peer")
	err := Do(context.Background(), fastPolicy(), func(ctx context.Context) error { return last })
	if !errors.Is(err, last) {
		t.Errorf("Do() error = %v, want wrapping %v", err, last)
	}
}

func TestDo_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := DefaultPolicy()
	p.BaseDelay = time.Hour

	calls := 0
	err := Do(ctx, p, func(ctx context.Context) error {
		calls++
		cancel()
		return errors.New("request timeout")
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("Do() calls = %d, want 1", calls)
	}
}

func TestPolicy_Delay(t *testing.T) {
	p := DefaultPolicy()
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}
	for attempt, w := range want {
		if got := p.Delay(attempt); got != w {
			t.Errorf("Delay(%d) = %v, want %v", attempt, got, w)
		}
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "rate limit", err: errors.New("Rate limit exceeded"), want: true},
		{name: "status 429", err: errors.New("unexpected status 429"), want: true},
		{name: "timeout", err: errors.New("i/o timeout"), want: true},
		{name: "temporary", err: errors.New("temporarily unavailable"), want: true},
		{name: "connection", err: errors.New("connection refused"), want: true},
		{name: "deadline", err: fmt.Errorf("upsert: %w", context.DeadlineExceeded), want: true},
		{name: "econnreset", err: fmt.Errorf("write: %w", syscall.ECONNRESET), want: true},
		{name: "canceled", err: fmt.Errorf("upsert: %w", context.Canceled), want: false},
		{name: "bad request", err: errors.New("400 bad request"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
