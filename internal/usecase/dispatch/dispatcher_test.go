package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestDispatchPublishesToStream(t *testing.T) {
	rdb := testRedis(t)
	d := NewDispatcher(rdb, "test:events", zap.NewNop())

	jobID := uuid.New()
	payload := map[string]string{"module_id": uuid.New().String()}
	if err := d.Dispatch(context.Background(), "module.questions.generate", jobID, payload); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	msgs, err := rdb.XRange(context.Background(), "test:events", "-", "+").Result()
	if err != nil {
		t.Fatalf("XRange failed: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 stream entry, got %d", len(msgs))
	}
	if got := msgs[0].Values["name"]; got != "module.questions.generate" {
		t.Errorf("unexpected event name %v", got)
	}
	if got := msgs[0].Values["job_id"]; got != jobID.String() {
		t.Errorf("unexpected job id %v", got)
	}
}

func TestConsumerRunsRegisteredHandler(t *testing.T) {
	rdb := testRedis(t)
	d := NewDispatcher(rdb, "test:events", zap.NewNop())

	var mu sync.Mutex
	var seen []Event
	done := make(chan struct{})

	d.Register("module.chapter.generate", func(_ context.Context, event Event) error {
		mu.Lock()
		seen = append(seen, event)
		mu.Unlock()
		close(done)
		return nil
	})

	if err := d.Start(context.Background(), 1); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer d.Stop()

	jobID := uuid.New()
	if err := d.Dispatch(context.Background(), "module.chapter.generate", jobID, map[string]int{"version": 2}); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("handler was not invoked within 5s")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 1 {
		t.Fatalf("expected 1 handled event, got %d", len(seen))
	}
	if seen[0].JobID != jobID {
		t.Errorf("handler saw job %s, want %s", seen[0].JobID, jobID)
	}
	var payload struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(seen[0].Payload, &payload); err != nil {
		t.Fatalf("payload did not round-trip: %v", err)
	}
	if payload.Version != 2 {
		t.Errorf("payload version = %d, want 2", payload.Version)
	}
}

func TestDispatchFallsBackInlineWithoutBroker(t *testing.T) {
	d := NewDispatcher(nil, "", zap.NewNop())

	called := false
	d.Register("question.audio.transcribe", func(_ context.Context, _ Event) error {
		called = true
		return nil
	})

	if err := d.Dispatch(context.Background(), "question.audio.transcribe", uuid.New(), nil); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if !called {
		t.Fatal("expected inline execution when no broker is configured")
	}
}

func TestDispatchFallsBackInlineOnPublishFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	d := NewDispatcher(rdb, "test:events", zap.NewNop())

	called := false
	d.Register("chapter.image.generate", func(_ context.Context, _ Event) error {
		called = true
		return nil
	})

	// Kill the broker so XADD fails
	mr.Close()

	if err := d.Dispatch(context.Background(), "chapter.image.generate", uuid.New(), nil); err != nil {
		t.Fatalf("Dispatch should fall back inline, got %v", err)
	}
	if !called {
		t.Fatal("expected inline execution after publish failure")
	}
}

func TestInlineExecutionSurfacesHandlerError(t *testing.T) {
	d := NewDispatcher(nil, "", zap.NewNop())

	boom := errors.New("provider unavailable")
	d.Register("module.questions.generate", func(_ context.Context, _ Event) error {
		return boom
	})

	err := d.Dispatch(context.Background(), "module.questions.generate", uuid.New(), nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected handler error, got %v", err)
	}
}

func TestDispatchUnknownEventInline(t *testing.T) {
	d := NewDispatcher(nil, "", zap.NewNop())

	if err := d.Dispatch(context.Background(), "no.such.event", uuid.New(), nil); err == nil {
		t.Fatal("expected an error for an unregistered event")
	}
}

func TestFailedHandlerStillAcks(t *testing.T) {
	rdb := testRedis(t)
	d := NewDispatcher(rdb, "test:events", zap.NewNop())

	done := make(chan struct{})
	d.Register("module.chapter.generate", func(_ context.Context, _ Event) error {
		close(done)
		return errors.New("generation failed")
	})

	if err := d.Start(context.Background(), 1); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer d.Stop()

	if err := d.Dispatch(context.Background(), "module.chapter.generate", uuid.New(), nil); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("handler was not invoked within 5s")
	}

	// The message must not stay pending: failures are recorded on the job,
	// not retried through the stream
	deadline := time.Now().Add(2 * time.Second)
	for {
		pending, err := rdb.XPending(context.Background(), "test:events", "test:events:workers").Result()
		if err != nil {
			t.Fatalf("XPending failed: %v", err)
		}
		if pending.Count == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected 0 pending messages, got %d", pending.Count)
		}
		time.Sleep(50 * time.Millisecond)
	}
}
