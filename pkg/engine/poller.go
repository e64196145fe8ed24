package engine

import (
	"context"
	"fmt"
	"time"
)

// OperationStatus is the lifecycle status of a long-running provider
// operation.
type OperationStatus string

const (
	// OperationPending indicates the operation was submitted but the
	// provider has not started it yet.
	OperationPending OperationStatus = "PENDING"

	// OperationInProgress indicates the provider is still working.
	OperationInProgress OperationStatus = "IN_PROGRESS"

	// OperationSucceeded is the successful terminal state.
	OperationSucceeded OperationStatus = "SUCCEEDED"

	// OperationFailed is the failed terminal state.
	OperationFailed OperationStatus = "FAILED"
)

// Terminal reports whether the status is a terminal state.
func (s OperationStatus) Terminal() bool {
	return s == OperationSucceeded || s == OperationFailed
}

// OperationRecord tracks one submitted provider operation. It is created
// by a submit call and transitions only via polling.
type OperationRecord struct {
	Identifier string          `json:"identifier"`
	Status     OperationStatus `json:"status"`
}

// SubmitFunc submits a long-running provider mutation and returns its
// operation identifier.
type SubmitFunc func(ctx context.Context) (string, error)

// PollFunc returns the current status of the identified operation. An
// empty status means the provider omitted the field entirely.
type PollFunc func(ctx context.Context, identifier string) (OperationStatus, error)

// Poller is the generic submit-then-poll state machine for long-running
// provider mutations. One poll is issued immediately after submission;
// while the operation reports IN_PROGRESS the poller suspends for
// Interval between polls, up to MaxAttempts polls.
type Poller struct {
	// Interval is the fixed delay between polls.
	Interval time.Duration

	// MaxAttempts bounds the number of polls. Zero means no poll ceiling.
	MaxAttempts int

	// sleep is swappable for tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPoller creates a poller with the given interval and poll ceiling.
func NewPoller(interval time.Duration, maxAttempts int) *Poller {
	return &Poller{
		Interval:    interval,
		MaxAttempts: maxAttempts,
		sleep:       sleepContext,
	}
}

// Run submits the operation and polls it to a terminal state, returning
// the completed record on success.
func (p *Poller) Run(ctx context.Context, submit SubmitFunc, poll PollFunc) (*OperationRecord, error) {
	id, err := submit(ctx)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, NewServiceError("provider did not return an operation identifier", nil)
	}

	record := &OperationRecord{Identifier: id, Status: OperationPending}

	for attempt := 0; ; attempt++ {
		status, err := poll(ctx, id)
		if err != nil {
			return nil, err
		}
		if status == "" {
			return nil, NewServiceError("operation status missing from provider response", nil).
				WithResource(id)
		}
		record.Status = status

		switch status {
		case OperationSucceeded:
			return record, nil
		case OperationFailed:
			return nil, NewOperationFailedError(fmt.Sprintf(
				"operation %s reached status %s, check the provider console for details",
				id, status)).WithResource(id)
		}

		if p.MaxAttempts > 0 && attempt+1 >= p.MaxAttempts {
			elapsed := time.Duration(p.MaxAttempts) * p.Interval
			return nil, NewTimeoutError(fmt.Sprintf(
				"operation %s still in progress after %s", id, elapsed)).
				WithResource(id)
		}

		if err := p.sleep(ctx, p.Interval); err != nil {
			return nil, err
		}
	}
}
