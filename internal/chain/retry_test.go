package chain

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
)

func TestRetryPolicySucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := RetryPolicy{MaxRetries: 3, Backoff: time.Millisecond}.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection reset")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls mismatch: %d", calls)
	}
}

func TestRetryPolicyGivesUp(t *testing.T) {
	want := errors.New("rate limited")
	calls := 0
	err := RetryPolicy{MaxRetries: 2, Backoff: time.Millisecond}.Do(context.Background(), func(context.Context) error {
		calls++
		return want
	})
	if !errors.Is(err, want) {
		t.Fatalf("error mismatch: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls mismatch: %d", calls)
	}
}

func TestRetryPolicyNotFoundIsFinal(t *testing.T) {
	calls := 0
	err := RetryPolicy{MaxRetries: 5, Backoff: time.Millisecond}.Do(context.Background(), func(context.Context) error {
		calls++
		return fmt.Errorf("receipt: %w", ethereum.NotFound)
	})
	if !errors.Is(err, ethereum.NotFound) {
		t.Fatalf("error mismatch: %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls mismatch: %d", calls)
	}
}

func TestRetryPolicyStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := RetryPolicy{MaxRetries: 5, Backoff: time.Hour}.Do(ctx, func(context.Context) error {
		calls++
		cancel()
		return errors.New("fail")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls mismatch: %d", calls)
	}
}

func TestRetryPolicyDefaults(t *testing.T) {
	calls := 0
	err := RetryPolicy{MaxRetries: -1}.Do(context.Background(), func(context.Context) error {
		calls++
		return errors.New("fail")
	})
	if err == nil || calls != 1 {
		t.Fatalf("expected a single failed call, got calls=%d err=%v", calls, err)
	}
}
