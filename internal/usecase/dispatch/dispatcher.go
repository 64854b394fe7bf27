package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Event names for the operations that run off the request path
const (
	EventGenerateQuestions  = "module.questions.generate"
	EventGenerateChapter    = "module.chapter.generate"
	EventTranscribeAudio    = "question.audio.transcribe"
	EventGenerateImage      = "chapter.image.generate"
	EventExportProject      = "project.export"
)

// Event is one unit of deferred work. The JobID ties it back to the
// tracked job a client polls on.
type Event struct {
	Name    string          `json:"name"`
	JobID   uuid.UUID       `json:"job_id"`
	Payload json.RawMessage `json:"payload"`
}

// Handler executes one event. The same handler runs whether the event
// arrived over the stream or inline after a publish failure.
type Handler func(ctx context.Context, event Event) error

// Dispatcher publishes events to a Redis stream and consumes them with a
// worker pool. When publishing fails the event is executed inline on the
// caller's goroutine, so a broker outage degrades latency, not behavior.
type Dispatcher struct {
	rdb      *redis.Client
	stream   string
	group    string
	consumer string
	logger   *zap.Logger

	handlersMu sync.RWMutex
	handlers   map[string]Handler

	stopChan  chan struct{}
	workerWg  sync.WaitGroup
	running   bool
	runningMu sync.Mutex
}

// NewDispatcher constructs a dispatcher over the given Redis client.
// A nil client forces inline execution for every event.
func NewDispatcher(rdb *redis.Client, stream string, logger *zap.Logger) *Dispatcher {
	if stream == "" {
		stream = "mabel:events"
	}
	return &Dispatcher{
		rdb:      rdb,
		stream:   stream,
		group:    stream + ":workers",
		consumer: "worker-" + uuid.New().String()[:8],
		logger:   logger,
		handlers: make(map[string]Handler),
	}
}

// Register binds a handler to an event name. Registration must happen
// before Start; later registrations replace the existing handler.
func (d *Dispatcher) Register(name string, handler Handler) {
	d.handlersMu.Lock()
	defer d.handlersMu.Unlock()
	d.handlers[name] = handler
}

func (d *Dispatcher) handler(name string) (Handler, bool) {
	d.handlersMu.RLock()
	defer d.handlersMu.RUnlock()
	h, ok := d.handlers[name]
	return h, ok
}

// Dispatch publishes an event to the stream. If publishing fails, the
// registered handler runs inline so the operation still completes.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, jobID uuid.UUID, payload interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	event := Event{Name: name, JobID: jobID, Payload: b}

	if d.rdb != nil {
		publishErr := d.rdb.XAdd(ctx, &redis.XAddArgs{
			Stream: d.stream,
			Values: map[string]interface{}{
				"name":    event.Name,
				"job_id":  event.JobID.String(),
				"payload": string(event.Payload),
			},
		}).Err()

		if publishErr == nil {
			if d.logger != nil {
				d.logger.Info("📤 Event published",
					zap.String("event", name),
					zap.String("job_id", jobID.String()),
				)
			}
			return nil
		}

		if d.logger != nil {
			d.logger.Warn("⚠️ Event publish failed, executing inline",
				zap.String("event", name),
				zap.String("job_id", jobID.String()),
				zap.Error(publishErr),
			)
		}
	}

	return d.executeInline(ctx, event)
}

// executeInline runs an event through the same handler registry the
// stream consumers use
func (d *Dispatcher) executeInline(ctx context.Context, event Event) error {
	h, ok := d.handler(event.Name)
	if !ok {
		return fmt.Errorf("no handler registered for event %q", event.Name)
	}

	if err := h(ctx, event); err != nil {
		if d.logger != nil {
			d.logger.Error("❌ Inline event execution failed",
				zap.String("event", event.Name),
				zap.String("job_id", event.JobID.String()),
				zap.Error(err),
			)
		}
		return err
	}

	if d.logger != nil {
		d.logger.Info("✅ Event executed inline",
			zap.String("event", event.Name),
			zap.String("job_id", event.JobID.String()),
		)
	}
	return nil
}

// Start launches the consumer worker pool
func (d *Dispatcher) Start(ctx context.Context, workerCount int) error {
	d.runningMu.Lock()
	defer d.runningMu.Unlock()

	if d.running {
		return fmt.Errorf("dispatcher already running")
	}
	if d.rdb == nil {
		return fmt.Errorf("dispatcher has no redis client")
	}
	if workerCount <= 0 {
		workerCount = 2
	}

	// Create consumer group; BUSYGROUP means it already exists
	if err := d.rdb.XGroupCreateMkStream(ctx, d.stream, d.group, "0").Err(); err != nil {
		if !strings.Contains(err.Error(), "BUSYGROUP") {
			return fmt.Errorf("failed to create consumer group: %w", err)
		}
	}

	d.running = true
	d.stopChan = make(chan struct{})

	if d.logger != nil {
		d.logger.Info("🚀 Starting event workers",
			zap.Int("worker_count", workerCount),
			zap.String("stream", d.stream),
		)
	}

	for i := 0; i < workerCount; i++ {
		d.workerWg.Add(1)
		go d.consumeLoop(ctx, i)
	}

	return nil
}

// Stop gracefully stops the worker pool
func (d *Dispatcher) Stop() error {
	d.runningMu.Lock()
	defer d.runningMu.Unlock()

	if !d.running {
		return fmt.Errorf("dispatcher not running")
	}

	if d.logger != nil {
		d.logger.Info("🛑 Stopping event workers...")
	}

	close(d.stopChan)
	d.workerWg.Wait()
	d.running = false

	if d.logger != nil {
		d.logger.Info("✅ Event workers stopped")
	}
	return nil
}

// consumeLoop reads events from the stream until stopped
func (d *Dispatcher) consumeLoop(parentCtx context.Context, workerID int) {
	defer d.workerWg.Done()

	if d.logger != nil {
		d.logger.Info("👷 Event worker started", zap.Int("worker_id", workerID))
	}

	for {
		select {
		case <-d.stopChan:
			if d.logger != nil {
				d.logger.Info("👷 Event worker stopping", zap.Int("worker_id", workerID))
			}
			return
		default:
		}

		streams, err := d.rdb.XReadGroup(parentCtx, &redis.XReadGroupArgs{
			Group:    d.group,
			Consumer: d.consumer,
			Streams:  []string{d.stream, ">"},
			Count:    1,
			Block:    2 * time.Second,
		}).Result()

		if err != nil {
			if err == redis.Nil || parentCtx.Err() != nil {
				continue
			}
			if d.logger != nil {
				d.logger.Error("❌ Failed to read from stream",
					zap.Int("worker_id", workerID),
					zap.Error(err),
				)
			}
			// Back off briefly so a broker outage doesn't spin
			select {
			case <-d.stopChan:
				return
			case <-time.After(time.Second):
			}
			continue
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				d.handleMessage(parentCtx, workerID, msg)
			}
		}
	}
}

func (d *Dispatcher) handleMessage(ctx context.Context, workerID int, msg redis.XMessage) {
	event, err := parseMessage(msg)
	if err != nil {
		if d.logger != nil {
			d.logger.Error("❌ Dropping malformed event",
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
		}
		d.rdb.XAck(ctx, d.stream, d.group, msg.ID)
		return
	}

	if d.logger != nil {
		d.logger.Info("👷 Worker claimed event",
			zap.Int("worker_id", workerID),
			zap.String("event", event.Name),
			zap.String("job_id", event.JobID.String()),
		)
	}

	h, ok := d.handler(event.Name)
	if !ok {
		if d.logger != nil {
			d.logger.Error("❌ No handler for event, acking to avoid redelivery loop",
				zap.String("event", event.Name),
			)
		}
		d.rdb.XAck(ctx, d.stream, d.group, msg.ID)
		return
	}

	if err := h(ctx, event); err != nil {
		if d.logger != nil {
			d.logger.Error("❌ Event handler failed",
				zap.String("event", event.Name),
				zap.String("job_id", event.JobID.String()),
				zap.Error(err),
			)
		}
		// Handlers record failure on the tracked job themselves, so the
		// message is still acked: the job, not the stream, is the source
		// of truth for retry decisions.
	}

	d.rdb.XAck(ctx, d.stream, d.group, msg.ID)
}

func parseMessage(msg redis.XMessage) (Event, error) {
	var event Event

	name, _ := msg.Values["name"].(string)
	if name == "" {
		return event, fmt.Errorf("event name missing")
	}
	event.Name = name

	jobIDStr, _ := msg.Values["job_id"].(string)
	jobID, err := uuid.Parse(jobIDStr)
	if err != nil {
		return event, fmt.Errorf("invalid job id %q: %w", jobIDStr, err)
	}
	event.JobID = jobID

	payload, _ := msg.Values["payload"].(string)
	event.Payload = json.RawMessage(payload)

	return event, nil
}
