package polling

import (
	"context"
	"fmt"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
)

// Status is the coarse state a polled operation reports
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Snapshot is one observation of a polled operation
type Snapshot struct {
	Status   Status
	Progress int
	Error    string
}

// FetchFunc retrieves the current snapshot of the polled operation
type FetchFunc func(ctx context.Context) (Snapshot, error)

// Options tunes the polling loop
type Options struct {
	// Interval between polls. Defaults to 2s.
	Interval time.Duration
	// MaxAttempts before giving up. Defaults to 60.
	MaxAttempts uint64
	// OnPoll is called after every observation, useful for progress output
	OnPoll func(Snapshot)
}

// ErrOperationFailed wraps the error string of a failed operation
type ErrOperationFailed struct {
	Message string
}

func (e *ErrOperationFailed) Error() string {
	return fmt.Sprintf("operation failed: %s", e.Message)
}

// WaitForCompletion polls fetch at a fixed interval until the operation
// completes, fails, or the attempt budget runs out. A failed operation is
// terminal and returns ErrOperationFailed immediately.
func WaitForCompletion(ctx context.Context, fetch FetchFunc, opts Options) (Snapshot, error) {
	if opts.Interval <= 0 {
		opts.Interval = 2 * time.Second
	}
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = 60
	}

	var last Snapshot

	poll := func() error {
		snap, err := fetch(ctx)
		if err != nil {
			return err
		}
		last = snap

		if opts.OnPoll != nil {
			opts.OnPoll(snap)
		}

		switch snap.Status {
		case StatusCompleted:
			return nil
		case StatusFailed:
			return backoff.Permanent(&ErrOperationFailed{Message: snap.Error})
		default:
			return fmt.Errorf("still %s (%d%%)", snap.Status, snap.Progress)
		}
	}

	bo := backoff.WithMaxRetries(backoff.NewConstantBackOff(opts.Interval), opts.MaxAttempts)

	if err := backoff.Retry(poll, backoff.WithContext(bo, ctx)); err != nil {
		if failed, ok := err.(*ErrOperationFailed); ok {
			return last, failed
		}
		if ctx.Err() != nil {
			return last, ctx.Err()
		}
		return last, fmt.Errorf("polling budget exhausted after %d attempts: %w", opts.MaxAttempts, err)
	}

	return last, nil
}
