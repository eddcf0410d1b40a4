package jobqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"edushelf-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

var ErrClosed = errors.New("job queue closed")

// Handler runs one job. Returned errors are logged and the job is dropped.
type Handler func(ctx context.Context, payload json.RawMessage) error

type envelope struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// Queue is an in-process, non-durable FIFO on a watermill gochannel.
// Enqueue appends to a pending list; a single pump hands messages to the
// gochannel one at a time and waits for the consumer's ack before the next,
// so jobs run one at a time in enqueue order. Jobs still pending when the
// process stops are lost.
type Queue struct {
	pubSub *gochannel.GoChannel
	topic  string
	logger logger.ILogger

	mu       sync.RWMutex
	handlers map[string]Handler

	pendingMu sync.Mutex
	pending   []*message.Message
	wake      chan struct{}

	closeOnce sync.Once
	closing   chan struct{}
	done      chan struct{}
}

func New(topic string, log logger.ILogger) *Queue {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{BlockPublishUntilSubscriberAck: true},
		newWatermillLogger(log),
	)
	return &Queue{
		pubSub:   pubSub,
		topic:    topic,
		logger:   log,
		handlers: make(map[string]Handler),
		wake:     make(chan struct{}, 1),
		closing:  make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (q *Queue) Register(kind string, h Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[kind] = h
}

// Enqueue never blocks on the consumer. Jobs enqueued before Start run once it is called.
func (q *Queue) Enqueue(ctx context.Context, kind string, payload any) error {
	select {
	case <-q.closing:
		return ErrClosed
	default:
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s job: %w", kind, err)
	}
	body, err := json.Marshal(envelope{Kind: kind, Payload: raw})
	if err != nil {
		return fmt.Errorf("marshal %s envelope: %w", kind, err)
	}

	q.pendingMu.Lock()
	q.pending = append(q.pending, message.NewMessage(watermill.NewUUID(), body))
	q.pendingMu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return nil
}

// Start subscribes, then runs the pump and the consumer loop until ctx ends.
func (q *Queue) Start(ctx context.Context) error {
	messages, err := q.pubSub.Subscribe(ctx, q.topic)
	if err != nil {
		return err
	}

	go q.pump(ctx)
	go func() {
		defer close(q.done)
		for msg := range messages {
			q.process(ctx, msg)
		}
	}()
	return nil
}

// Done is closed once the consumer loop has exited.
func (q *Queue) Done() <-chan struct{} {
	return q.done
}

func (q *Queue) Close() error {
	q.closeOnce.Do(func() { close(q.closing) })
	return q.pubSub.Close()
}

// Len reports jobs not yet handed to the consumer.
func (q *Queue) Len() int {
	q.pendingMu.Lock()
	defer q.pendingMu.Unlock()
	return len(q.pending)
}

func (q *Queue) pump(ctx context.Context) {
	for {
		msg := q.next()
		if msg == nil {
			select {
			case <-q.wake:
				continue
			case <-ctx.Done():
				return
			case <-q.closing:
				return
			}
		}

		// Returns after the consumer acked, which process always does.
		if err := q.pubSub.Publish(q.topic, msg); err != nil {
			q.logger.Error(module, "Dropping job", map[string]interface{}{
				"message_id": msg.UUID,
				"error":      err.Error(),
			})
		}
	}
}

func (q *Queue) next() *message.Message {
	q.pendingMu.Lock()
	defer q.pendingMu.Unlock()
	if len(q.pending) == 0 {
		return nil
	}
	msg := q.pending[0]
	q.pending[0] = nil
	q.pending = q.pending[1:]
	return msg
}

func (q *Queue) process(ctx context.Context, msg *message.Message) {
	// Failed jobs are not redelivered; a Nack on gochannel would retry forever.
	defer msg.Ack()

	var env envelope
	if err := json.Unmarshal(msg.Payload, &env); err != nil {
		q.logger.Error(module, "Dropping malformed job", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	q.mu.RLock()
	h, ok := q.handlers[env.Kind]
	q.mu.RUnlock()
	if !ok {
		q.logger.Warn(module, "No handler for job kind", map[string]interface{}{"kind": env.Kind})
		return
	}

	defer func() {
		if r := recover(); r != nil {
			q.logger.Error(module, "Job panicked", map[string]interface{}{
				"kind":  env.Kind,
				"error": fmt.Sprint(r),
			})
		}
	}()

	if err := h(ctx, env.Payload); err != nil {
		q.logger.Error(module, "Job failed", map[string]interface{}{
			"kind":       env.Kind,
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
	}
}
