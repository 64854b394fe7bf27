package polling

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWaitForCompletionSucceeds(t *testing.T) {
	snapshots := []Snapshot{
		{Status: StatusPending, Progress: 0},
		{Status: StatusRunning, Progress: 25},
		{Status: StatusRunning, Progress: 75},
		{Status: StatusCompleted, Progress: 100},
	}

	var calls int
	fetch := func(_ context.Context) (Snapshot, error) {
		snap := snapshots[calls]
		calls++
		return snap, nil
	}

	var observed []Snapshot
	snap, err := WaitForCompletion(context.Background(), fetch, Options{
		Interval: time.Millisecond,
		OnPoll:   func(s Snapshot) { observed = append(observed, s) },
	})
	if err != nil {
		t.Fatalf("WaitForCompletion failed: %v", err)
	}
	if snap.Status != StatusCompleted || snap.Progress != 100 {
		t.Errorf("unexpected final snapshot %+v", snap)
	}
	if calls != 4 {
		t.Errorf("expected 4 polls, got %d", calls)
	}
	if len(observed) != 4 {
		t.Errorf("OnPoll should fire once per observation, got %d", len(observed))
	}
}

func TestWaitForCompletionFailedIsTerminal(t *testing.T) {
	var calls int
	fetch := func(_ context.Context) (Snapshot, error) {
		calls++
		return Snapshot{Status: StatusFailed, Error: "provider rejected api key"}, nil
	}

	_, err := WaitForCompletion(context.Background(), fetch, Options{Interval: time.Millisecond})
	var failed *ErrOperationFailed
	if !errors.As(err, &failed) {
		t.Fatalf("expected ErrOperationFailed, got %v", err)
	}
	if failed.Message != "provider rejected api key" {
		t.Errorf("unexpected failure message %q", failed.Message)
	}
	// A failed operation must not be polled again
	if calls != 1 {
		t.Errorf("expected 1 poll, got %d", calls)
	}
}

func TestWaitForCompletionExhaustsBudget(t *testing.T) {
	fetch := func(_ context.Context) (Snapshot, error) {
		return Snapshot{Status: StatusRunning, Progress: 50}, nil
	}

	snap, err := WaitForCompletion(context.Background(), fetch, Options{
		Interval:    time.Millisecond,
		MaxAttempts: 3,
	})
	if err == nil {
		t.Fatal("expected an error when the attempt budget runs out")
	}
	if snap.Status != StatusRunning {
		t.Errorf("last snapshot should be preserved, got %+v", snap)
	}
}

func TestWaitForCompletionHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetch := func(_ context.Context) (Snapshot, error) {
		return Snapshot{Status: StatusRunning}, nil
	}

	_, err := WaitForCompletion(ctx, fetch, Options{Interval: time.Second})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
