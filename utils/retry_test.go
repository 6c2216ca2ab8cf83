package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetrySucceedsMidway(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, Logger: NewLogger()}

	calls := 0
	err := r.Do(context.Background(), "flaky", func() error {
		calls++
		if calls < 2 {
			return errors.New("boom")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Do returned %v; want nil", err)
	}
	if calls != 2 {
		t.Errorf("fn called %d times; want 2", calls)
	}
}

func TestRetryGivesUp(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, Logger: NewLogger()}

	boom := errors.New("boom")
	calls := 0
	err := r.Do(context.Background(), "doomed", func() error {
		calls++
		return boom
	})

	if calls != 3 {
		t.Errorf("fn called %d times; want 3", calls)
	}
	if !errors.Is(err, boom) {
		t.Errorf("Do returned %v; want wrapped %v", err, boom)
	}
}

func TestRetryStopsOnCanceledContext(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 5, BaseDelay: time.Hour, Logger: NewLogger()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := r.Do(ctx, "canceled", func() error {
		calls++
		return errors.New("boom")
	})

	if calls != 1 {
		t.Errorf("fn called %d times; want 1", calls)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do returned %v; want context.Canceled", err)
	}
}
