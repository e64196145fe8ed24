package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/smithy-go"
)

type codedTestError struct {
	code string
}

func (e *codedTestError) Error() string { return e.code }
func (e *codedTestError) Code() string  { return e.code }

type retryableTestError struct {
	retryable bool
}

func (e *retryableTestError) Error() string   { return "flagged" }
func (e *retryableTestError) Retryable() bool { return e.retryable }

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"throttling api error", &smithy.GenericAPIError{Code: "ThrottlingException"}, true},
		{"too many requests", &smithy.GenericAPIError{Code: "TooManyRequestsException"}, true},
		{"concurrent modification", &smithy.GenericAPIError{Code: "ConcurrentModificationException"}, true},
		{"internal error", &smithy.GenericAPIError{Code: "InternalErrorException"}, true},
		{"access denied", &smithy.GenericAPIError{Code: "AccessDeniedException"}, false},
		{"connection reset code", &codedTestError{code: "ECONNRESET"}, true},
		{"unknown code", &codedTestError{code: "ValidationException"}, false},
		{"retryable flag set", &retryableTestError{retryable: true}, true},
		{"retryable flag clear", &retryableTestError{retryable: false}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func newTestRetrier(maxAttempts int) (*Retrier, *[]time.Duration) {
	var delays []time.Duration
	r := NewRetrier(maxAttempts)
	r.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	return r, &delays
}

func TestRetrier_SucceedsFirstAttempt(t *testing.T) {
	r, delays := newTestRetrier(5)
	calls := 0

	err := r.Do(context.Background(), func() error {
		calls++
		return nil
	})

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
	if len(*delays) != 0 {
		t.Errorf("Expected no sleeps, got %d", len(*delays))
	}
}

func TestRetrier_NonTransientPropagatesImmediately(t *testing.T) {
	r, _ := newTestRetrier(5)
	boom := errors.New("boom")
	calls := 0

	err := r.Do(context.Background(), func() error {
		calls++
		return boom
	})

	if !errors.Is(err, boom) {
		t.Fatalf("Expected original error, got: %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestRetrier_ExhaustsAttemptsAndRethrowsLastError(t *testing.T) {
	r, delays := newTestRetrier(4)
	throttle := &smithy.GenericAPIError{Code: "ThrottlingException", Message: "slow down"}
	calls := 0

	err := r.Do(context.Background(), func() error {
		calls++
		return throttle
	})

	// The operation runs exactly maxAttempts times and the last error
	// surfaces unchanged, not wrapped in a retry error.
	if calls != 4 {
		t.Errorf("Expected 4 calls, got %d", calls)
	}
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) || apiErr.ErrorCode() != "ThrottlingException" {
		t.Fatalf("Expected the throttling error unchanged, got: %v", err)
	}
	if len(*delays) != 3 {
		t.Fatalf("Expected 3 sleeps, got %d", len(*delays))
	}
}

func TestRetrier_LinearDelaySchedule(t *testing.T) {
	r, delays := newTestRetrier(4)

	_ = r.Do(context.Background(), func() error {
		return &smithy.GenericAPIError{Code: "ThrottlingException"}
	})

	want := []time.Duration{
		100 * time.Millisecond,
		100*time.Millisecond + 1*time.Second,
		100*time.Millisecond + 2*time.Second,
	}
	for i, d := range want {
		if (*delays)[i] != d {
			t.Errorf("Delay %d: expected %s, got %s", i, d, (*delays)[i])
		}
	}
}

func TestRetrier_RecoversMidway(t *testing.T) {
	r, _ := newTestRetrier(10)
	calls := 0

	err := r.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return &smithy.GenericAPIError{Code: "TooManyRequestsException"}
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestRetrier_ContextCancelledDuringSleep(t *testing.T) {
	r := NewRetrier(5)
	r.sleep = func(ctx context.Context, d time.Duration) error {
		return context.Canceled
	}

	err := r.Do(context.Background(), func() error {
		return &smithy.GenericAPIError{Code: "ThrottlingException"}
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got: %v", err)
	}
}

func TestRetrier_OnRetryFiresPerRetry(t *testing.T) {
	r, _ := newTestRetrier(4)
	notified := 0
	r.OnRetry = func() { notified++ }

	_ = r.Do(context.Background(), func() error {
		return &smithy.GenericAPIError{Code: "ThrottlingException"}
	})

	// Three retries follow the four attempts; the final failure is not a
	// retry.
	if notified != 3 {
		t.Errorf("Expected 3 notifications, got %d", notified)
	}
}

func TestNewRetrier_DefaultCeiling(t *testing.T) {
	if got := NewRetrier(0).MaxAttempts(); got != DefaultMaxAttempts {
		t.Errorf("Expected %d, got %d", DefaultMaxAttempts, got)
	}
	if got := NewRetrier(-3).MaxAttempts(); got != DefaultMaxAttempts {
		t.Errorf("Expected %d, got %d", DefaultMaxAttempts, got)
	}
}
