package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDoSucceedsFirstAttempt(t *testing.T) {
	policy := Policy{MaxAttempts: 3, Backoff: Constant(time.Millisecond)}

	calls := 0
	err := policy.Do(context.Background(), func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("Expected 1 call, got %d", calls)
	}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	policy := Policy{MaxAttempts: 5, Backoff: Constant(time.Millisecond)}

	calls := 0
	err := policy.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("Expected 3 calls, got %d", calls)
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	policy := Policy{MaxAttempts: 3, Backoff: Constant(time.Millisecond)}

	failure := errors.New("persistent")
	calls := 0
	err := policy.Do(context.Background(), func() error {
		calls++
		return failure
	})
	if !errors.Is(err, failure) {
		t.Fatalf("Expected last error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("Expected 3 calls, got %d", calls)
	}
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	fatal := errors.New("fatal")
	policy := Policy{
		MaxAttempts: 5,
		Backoff:     Constant(time.Millisecond),
		Retryable:   func(err error) bool { return !errors.Is(err, fatal) },
	}

	calls := 0
	err := policy.Do(context.Background(), func() error {
		calls++
		return fatal
	})
	if !errors.Is(err, fatal) {
		t.Fatalf("Expected fatal error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("Expected 1 call for non-retryable error, got %d", calls)
	}
}

func TestDoRespectsContextCancellation(t *testing.T) {
	policy := Policy{MaxAttempts: 10, Backoff: Constant(time.Hour)}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := policy.Do(ctx, func() error {
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
}

func TestDoInvalidMaxAttempts(t *testing.T) {
	policy := Policy{MaxAttempts: 0}
	err := policy.Do(context.Background(), func() error { return nil })
	if !errors.Is(err, ErrInvalidMaxAttempts) {
		t.Fatalf("Expected ErrInvalidMaxAttempts, got %v", err)
	}
}

func TestExponentialBackoff(t *testing.T) {
	backoff := Exponential(5 * time.Second)

	expected := []time.Duration{5 * time.Second, 10 * time.Second, 20 * time.Second}
	for i, want := range expected {
		if got := backoff(i+1, nil); got != want {
			t.Fatalf("Attempt %d: expected %v, got %v", i+1, want, got)
		}
	}
}

func TestBackoffCanVaryByError(t *testing.T) {
	slow := errors.New("slow down")
	backoff := func(attempt int, err error) time.Duration {
		if errors.Is(err, slow) {
			return time.Duration(attempt) * time.Second
		}
		return time.Second
	}
	policy := Policy{MaxAttempts: 2, Backoff: backoff}

	// Exercise only the signature; delays themselves are covered above.
	if got := policy.Backoff(2, slow); got != 2*time.Second {
		t.Fatalf("Expected 2s for slow error at attempt 2, got %v", got)
	}
}
