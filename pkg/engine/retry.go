package engine

import (
	"context"
	"errors"
	"time"

	"github.com/aws/smithy-go"
)

// Transient provider error codes recognized by the classifier. Membership
// in this set is the single source of truth for "retry this".
var transientErrorCodes = map[string]struct{}{
	"ThrottlingException":             {},
	"TooManyRequestsException":        {},
	"ConcurrentModificationException": {},
	"InternalErrorException":          {},
	"ECONNRESET":                      {},
}

// retryableError is the legacy provider error shape that self-reports
// retryability instead of carrying a code.
type retryableError interface {
	Retryable() bool
}

// codedError covers provider error shapes that expose an identifier under
// a Code()/Name() accessor rather than the smithy APIError contract.
type codedError interface {
	Code() string
}

type namedError interface {
	Name() string
}

// IsTransient reports whether err is a throttling-like provider failure
// that the Retrier should absorb. It recognizes the legacy retryable
// flag, smithy API error codes, and the alternate code/name accessors.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var r retryableError
	if errors.As(err, &r) && r.Retryable() {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if _, ok := transientErrorCodes[apiErr.ErrorCode()]; ok {
			return true
		}
	}

	var c codedError
	if errors.As(err, &c) {
		if _, ok := transientErrorCodes[c.Code()]; ok {
			return true
		}
	}

	var n namedError
	if errors.As(err, &n) {
		if _, ok := transientErrorCodes[n.Name()]; ok {
			return true
		}
	}

	return false
}

// DefaultMaxAttempts is the historical retry ceiling, applied at the
// outermost composition point when no explicit value is configured.
const DefaultMaxAttempts = 800

// Retrier wraps fallible provider calls, retrying transient failures
// with a linearly growing delay up to a bounded attempt count.
type Retrier struct {
	maxAttempts int

	// OnRetry, when set, is invoked once per absorbed transient failure,
	// before the backoff delay.
	OnRetry func()

	// sleep is swappable for tests; production uses a ctx-aware wait.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRetrier creates a retrier with the given attempt ceiling.
// Non-positive values fall back to DefaultMaxAttempts.
func NewRetrier(maxAttempts int) *Retrier {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Retrier{
		maxAttempts: maxAttempts,
		sleep:       sleepContext,
	}
}

// MaxAttempts returns the configured attempt ceiling.
func (r *Retrier) MaxAttempts() int {
	return r.maxAttempts
}

// Do invokes op, retrying transient failures. The delay before retry
// attempt n (0-based) is 100ms + n*1s. Non-transient failures and the
// last failure after exhausting all attempts propagate unchanged.
func (r *Retrier) Do(ctx context.Context, op func() error) error {
	var lastErr error
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return err
		}
		lastErr = err

		// No delay after the final attempt.
		if attempt == r.maxAttempts-1 {
			break
		}
		if r.OnRetry != nil {
			r.OnRetry()
		}
		delay := 100*time.Millisecond + time.Duration(attempt)*time.Second
		if err := r.sleep(ctx, delay); err != nil {
			return err
		}
	}
	return lastErr
}

// sleepContext waits for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
