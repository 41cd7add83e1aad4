package database

import (
	"context"
	"errors"
	"testing"
	"time"
)

type flakyPinger struct {
	failuresLeft int
	calls        int
}

func (p *flakyPinger) PingContext(context.Context) error {
	p.calls++
	if p.failuresLeft > 0 {
		p.failuresLeft--
		return errors.New("connection refused")
	}
	return nil
}

func noBackoff(int) time.Duration { return 0 }

func TestPingBackoff(t *testing.T) {
	tests := []struct {
		failures int
		want     time.Duration
	}{
		{1, 500 * time.Millisecond},
		{2, time.Second},
		{3, 2 * time.Second},
		{5, 8 * time.Second},
		{10, 8 * time.Second},
	}

	for _, tt := range tests {
		if got := PingBackoff(tt.failures); got != tt.want {
			t.Errorf("PingBackoff(%d) = %v, want %v", tt.failures, got, tt.want)
		}
	}
}

func TestWaitForConnection_SucceedsAfterRetries(t *testing.T) {
	p := &flakyPinger{failuresLeft: 2}

	if err := waitForConnection(context.Background(), p, 5, noBackoff); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if p.calls != 3 {
		t.Errorf("calls = %d, want 3", p.calls)
	}
}

func TestWaitForConnection_GivesUp(t *testing.T) {
	p := &flakyPinger{failuresLeft: 10}

	err := waitForConnection(context.Background(), p, 3, noBackoff)
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if p.calls != 3 {
		t.Errorf("calls = %d, want 3", p.calls)
	}
}

func TestWaitForConnection_AtLeastOnce(t *testing.T) {
	p := &flakyPinger{}

	if err := WaitForConnection(context.Background(), p, 0); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if p.calls != 1 {
		t.Errorf("calls = %d, want 1", p.calls)
	}
}

func TestWaitForConnection_ContextCanceled(t *testing.T) {
	p := &flakyPinger{failuresLeft: 10}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := waitForConnection(ctx, p, 5, func(int) time.Duration { return time.Hour })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
