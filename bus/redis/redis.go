// Package redis provides a Redis Bus backend built on lists. RPUSH
// appends and BLPOP pops, so messages published before a consumer
// attaches wait in the list and delivery order matches publish order.
//
// Suits deployments that already run Redis and do not need broker
// features like per-message TTL or dead-lettering.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xraph/conduit"
	"github.com/xraph/conduit/bus"
)

const defaultKeyPrefix = "conduit:queue:"

// popInterval bounds how long a consumer blocks per BLPOP so it can
// observe its stop signal.
const popInterval = 1 * time.Second

// Bus is a Redis-backed bus.Bus.
type Bus struct {
	client    *redis.Client
	logger    *slog.Logger
	keyPrefix string

	mu     sync.Mutex
	subs   map[string]*consumer
	closed bool
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		b.logger = logger
	}
}

// WithKeyPrefix overrides the key namespace queues live under.
func WithKeyPrefix(prefix string) Option {
	return func(b *Bus) {
		b.keyPrefix = prefix
	}
}

// New wraps an existing Redis client. The caller keeps ownership of the
// client; Close does not close it.
func New(client *redis.Client, opts ...Option) *Bus {
	b := &Bus{
		client:    client,
		logger:    slog.Default(),
		keyPrefix: defaultKeyPrefix,
		subs:      make(map[string]*consumer),
	}
	for _, opt := range opts {
		opt(b)
	}

	return b
}

var _ bus.Bus = (*Bus)(nil)

func (b *Bus) key(queueName string) string {
	return b.keyPrefix + queueName
}

// Publish appends the message to the queue's list.
func (b *Bus) Publish(ctx context.Context, queueName string, message []byte) error {
	if b.isClosed() {
		return conduit.ErrBusClosed
	}

	if err := b.client.RPush(ctx, b.key(queueName), message).Err(); err != nil {
		return fmt.Errorf("redis: publish to %q: %w", queueName, err)
	}

	return nil
}

// Subscribe attaches a persistent consumer that pops the queue's list.
func (b *Bus) Subscribe(_ context.Context, queueName string, onMessage bus.MessageCallback) error {
	return b.attach(queueName, onMessage, false, 0, nil)
}

// ReceiveOnce pops exactly one message and then deletes the queue. With
// a non-zero timeout, onTimeout fires if no message arrives in time.
func (b *Bus) ReceiveOnce(_ context.Context, queueName string, timeout time.Duration, onMessage bus.MessageCallback, onTimeout func()) error {
	return b.attach(queueName, onMessage, true, timeout, onTimeout)
}

func (b *Bus) attach(queueName string, onMessage bus.MessageCallback, once bool, timeout time.Duration, onTimeout func()) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return conduit.ErrBusClosed
	}
	if _, exists := b.subs[queueName]; exists {
		return conduit.ErrAlreadySubscribed
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &consumer{
		queue:     queueName,
		onMessage: onMessage,
		once:      once,
		timeout:   timeout,
		onTimeout: onTimeout,
		cancel:    cancel,
	}
	b.subs[queueName] = c
	go b.run(ctx, c)

	return nil
}

// run is the consumer loop. Each BLPOP blocks for at most popInterval
// so cancellation and once-timeouts are observed promptly.
func (b *Bus) run(ctx context.Context, c *consumer) {
	var deadline time.Time
	if c.once && c.timeout > 0 {
		deadline = time.Now().Add(c.timeout)
	}

	for {
		if ctx.Err() != nil {
			return
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			b.detach(ctx, c.queue, true)
			if c.onTimeout != nil {
				c.onTimeout()
			}

			return
		}

		res, err := b.client.BLPop(ctx, popInterval, b.key(c.queue)).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			b.logger.Warn("queue pop failed, retrying",
				slog.String("queue", c.queue),
				slog.String("error", err.Error()),
			)
			time.Sleep(popInterval)

			continue
		}

		// BLPop returns [key, value].
		c.onMessage([]byte(res[1]))
		if c.once {
			b.detach(ctx, c.queue, true)

			return
		}
	}
}

// Unsubscribe stops the consumer and deletes the queue's list. Unknown
// queues are a no-op.
func (b *Bus) Unsubscribe(ctx context.Context, queueName string) error {
	if b.isClosed() {
		return conduit.ErrBusClosed
	}

	b.detach(ctx, queueName, true)

	return nil
}

func (b *Bus) detach(ctx context.Context, queueName string, deleteKey bool) {
	b.mu.Lock()
	c, ok := b.subs[queueName]
	if ok {
		delete(b.subs, queueName)
	}
	b.mu.Unlock()

	if ok {
		c.cancel()
	}
	if deleteKey {
		if err := b.client.Del(context.WithoutCancel(ctx), b.key(queueName)).Err(); err != nil {
			b.logger.Debug("queue delete failed",
				slog.String("queue", queueName),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (b *Bus) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.closed
}

// Close stops every consumer. The underlying client stays open for its
// owner. Close is idempotent.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()

		return nil
	}
	b.closed = true
	subs := b.subs
	b.subs = make(map[string]*consumer)
	b.mu.Unlock()

	for _, c := range subs {
		c.cancel()
	}

	return nil
}

type consumer struct {
	queue     string
	onMessage bus.MessageCallback
	once      bool
	timeout   time.Duration
	onTimeout func()
	cancel    context.CancelFunc
}
