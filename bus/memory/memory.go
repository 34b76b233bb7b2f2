// Package memory provides an in-process Bus backend. It preserves the
// broker semantics the SDK relies on: messages published before a
// subscriber attaches are buffered, per-queue delivery order matches
// publish order, and callbacks run outside all internal locks so they
// may call back into the Bus freely.
//
// It backs the test suites and suits single-process embedding where a
// broker is overkill.
package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/conduit"
	"github.com/xraph/conduit/bus"
)

// Bus is an in-memory bus.Bus. The zero value is not usable; construct
// with New.
type Bus struct {
	mu     sync.Mutex
	queues map[string]*memQueue
	closed bool
	logger *slog.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		b.logger = logger
	}
}

// New creates an in-memory bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		queues: make(map[string]*memQueue),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}

	return b
}

var _ bus.Bus = (*Bus)(nil)

// Publish buffers a message on the named queue, creating it if needed.
func (b *Bus) Publish(_ context.Context, queueName string, message []byte) error {
	for {
		q, err := b.getOrCreate(queueName)
		if err != nil {
			return err
		}

		q.mu.Lock()
		if q.closed {
			// Lost a race with the queue tearing itself down; a fresh
			// queue will take the message.
			q.mu.Unlock()
			continue
		}
		q.pending = append(q.pending, message)
		q.cond.Broadcast()
		q.mu.Unlock()

		return nil
	}
}

// Subscribe attaches a persistent consumer. Buffered messages are
// delivered immediately in publish order.
func (b *Bus) Subscribe(_ context.Context, queueName string, onMessage bus.MessageCallback) error {
	return b.attach(queueName, onMessage, false, 0, nil)
}

// ReceiveOnce attaches a consumer for exactly one message. After the
// delivery, or after the timeout elapses with no message, the queue is
// deleted.
func (b *Bus) ReceiveOnce(_ context.Context, queueName string, timeout time.Duration, onMessage bus.MessageCallback, onTimeout func()) error {
	return b.attach(queueName, onMessage, true, timeout, onTimeout)
}

func (b *Bus) attach(queueName string, onMessage bus.MessageCallback, once bool, timeout time.Duration, onTimeout func()) error {
	for {
		q, err := b.getOrCreate(queueName)
		if err != nil {
			return err
		}

		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			continue
		}
		if q.onMessage != nil {
			q.mu.Unlock()

			return conduit.ErrAlreadySubscribed
		}
		q.onMessage = onMessage
		q.once = once
		if once && timeout > 0 {
			q.timer = time.AfterFunc(timeout, func() {
				q.expire(onTimeout)
			})
		}
		q.cond.Broadcast()
		q.mu.Unlock()

		return nil
	}
}

// Unsubscribe detaches the consumer and deletes the queue, buffered
// messages included. Unknown queues are a no-op.
func (b *Bus) Unsubscribe(_ context.Context, queueName string) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()

		return conduit.ErrBusClosed
	}
	q, ok := b.queues[queueName]
	if ok {
		delete(b.queues, queueName)
	}
	b.mu.Unlock()

	if ok {
		q.shutdown()
	}

	return nil
}

// Close tears down every queue. Close is idempotent.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()

		return nil
	}
	b.closed = true
	queues := b.queues
	b.queues = nil
	b.mu.Unlock()

	for _, q := range queues {
		q.shutdown()
	}

	return nil
}

func (b *Bus) getOrCreate(queueName string) (*memQueue, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, conduit.ErrBusClosed
	}

	q, ok := b.queues[queueName]
	if !ok {
		q = newMemQueue(b, queueName)
		b.queues[queueName] = q
		go q.dispatch()
	}

	return q, nil
}

// remove deletes a queue from the registry if it is still the current
// holder of its name.
func (b *Bus) remove(queueName string, q *memQueue) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.queues[queueName] == q {
		delete(b.queues, queueName)
	}
}

// memQueue is one named queue with its own dispatch goroutine. The
// goroutine pops pending messages and invokes the callback unlocked,
// keeping per-queue order without blocking publishers.
type memQueue struct {
	bus  *Bus
	name string

	mu        sync.Mutex
	cond      *sync.Cond
	pending   [][]byte
	onMessage bus.MessageCallback
	once      bool
	timer     *time.Timer
	closed    bool
}

func newMemQueue(b *Bus, name string) *memQueue {
	q := &memQueue{bus: b, name: name}
	q.cond = sync.NewCond(&q.mu)

	return q
}

func (q *memQueue) dispatch() {
	for {
		q.mu.Lock()
		for !q.closed && (q.onMessage == nil || len(q.pending) == 0) {
			q.cond.Wait()
		}
		if q.closed {
			q.mu.Unlock()

			return
		}

		msg := q.pending[0]
		q.pending = q.pending[1:]
		cb := q.onMessage
		once := q.once
		if once {
			q.onMessage = nil
			q.closed = true
			if q.timer != nil {
				q.timer.Stop()
			}
		}
		q.mu.Unlock()

		if once {
			q.bus.remove(q.name, q)
		}
		cb(msg)
		if once {
			return
		}
	}
}

// expire fires on a ReceiveOnce timeout. If a delivery won the race the
// expiry is a no-op.
func (q *memQueue) expire(onTimeout func()) {
	q.mu.Lock()
	if q.closed || q.onMessage == nil {
		q.mu.Unlock()

		return
	}
	q.onMessage = nil
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()

	q.bus.remove(q.name, q)
	if onTimeout != nil {
		onTimeout()
	}
}

func (q *memQueue) shutdown() {
	q.mu.Lock()
	q.closed = true
	if q.timer != nil {
		q.timer.Stop()
	}
	q.cond.Broadcast()
	q.mu.Unlock()
}
