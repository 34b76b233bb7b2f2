// Package amqp provides the RabbitMQ Bus backend. Every queue is
// declared durable on the default exchange, so messages published
// before a consumer attaches are buffered by the broker and per-job
// queues survive a process restart.
//
// A lost connection is re-dialed with exponential backoff and all live
// subscriptions are re-established on the new channel.
package amqp

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	amqp091 "github.com/rabbitmq/amqp091-go"
	"golang.org/x/time/rate"

	"github.com/xraph/conduit"
	"github.com/xraph/conduit/bus"
)

const (
	defaultReconnectInitial = 1 * time.Second
	defaultReconnectMax     = 30 * time.Second
)

// Bus is a RabbitMQ-backed bus.Bus.
type Bus struct {
	cfg       conduit.Config
	logger    *slog.Logger
	queueArgs amqp091.Table
	limiter   *rate.Limiter

	reconnectInitial time.Duration
	reconnectMax     time.Duration

	mu     sync.Mutex
	conn   *amqp091.Connection
	ch     *amqp091.Channel
	subs   map[string]*subscription
	closed bool
}

// Option configures a Bus.
type Option func(*Bus) error

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) error {
		b.logger = logger

		return nil
	}
}

// WithQueueArguments applies broker-side TTL and dead-letter arguments
// to every queue the bus declares.
func WithQueueArguments(args QueueArguments) Option {
	return func(b *Bus) error {
		table, err := args.Table()
		if err != nil {
			return err
		}
		b.queueArgs = table

		return nil
	}
}

// WithPublishRateLimit caps outgoing publishes. Publish blocks until
// the limiter admits the message or the context is done.
func WithPublishRateLimit(limit rate.Limit, burst int) Option {
	return func(b *Bus) error {
		b.limiter = rate.NewLimiter(limit, burst)

		return nil
	}
}

// WithReconnectBackoff tunes the redial backoff window.
func WithReconnectBackoff(initial, max time.Duration) Option {
	return func(b *Bus) error {
		b.reconnectInitial = initial
		b.reconnectMax = max

		return nil
	}
}

// Connect dials the broker described by cfg and opens a channel.
func Connect(ctx context.Context, cfg conduit.Config, opts ...Option) (*Bus, error) {
	b := &Bus{
		cfg:              cfg,
		logger:           slog.Default(),
		subs:             make(map[string]*subscription),
		reconnectInitial: defaultReconnectInitial,
		reconnectMax:     defaultReconnectMax,
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}

	conn, ch, err := b.dial(ctx)
	if err != nil {
		return nil, err
	}
	b.conn = conn
	b.ch = ch
	go b.watch(conn)

	return b, nil
}

var _ bus.Bus = (*Bus)(nil)

func (b *Bus) dial(ctx context.Context) (*amqp091.Connection, *amqp091.Channel, error) {
	type dialed struct {
		conn *amqp091.Connection
		err  error
	}
	ch := make(chan dialed, 1)
	go func() {
		conn, err := amqp091.Dial(b.cfg.URL())
		ch <- dialed{conn: conn, err: err}
	}()

	select {
	case <-ctx.Done():
		go func() {
			if d := <-ch; d.conn != nil {
				_ = d.conn.Close()
			}
		}()

		return nil, nil, ctx.Err()
	case d := <-ch:
		if d.err != nil {
			return nil, nil, fmt.Errorf("amqp: dial %s:%d: %w", b.cfg.Host, b.cfg.Port, d.err)
		}

		channel, err := d.conn.Channel()
		if err != nil {
			_ = d.conn.Close()

			return nil, nil, fmt.Errorf("amqp: open channel: %w", err)
		}

		return d.conn, channel, nil
	}
}

// watch blocks on the connection's close notification and triggers a
// reconnect unless the bus itself was closed.
func (b *Bus) watch(conn *amqp091.Connection) {
	closeErr, ok := <-conn.NotifyClose(make(chan *amqp091.Error, 1))
	if !ok || b.isClosed() {
		return
	}

	b.mu.Lock()
	b.ch = nil
	b.mu.Unlock()

	b.logger.Warn("broker connection lost, reconnecting",
		slog.String("error", closeErr.Error()),
	)
	b.reconnect()
}

func (b *Bus) reconnect() {
	backoff := b.reconnectInitial
	for {
		if b.isClosed() {
			return
		}

		conn, ch, err := b.dial(context.Background())
		if err != nil {
			b.logger.Warn("reconnect attempt failed",
				slog.String("error", err.Error()),
				slog.Duration("retry_in", backoff),
			)
			time.Sleep(backoff)
			backoff = min(backoff*2, b.reconnectMax)

			continue
		}

		b.mu.Lock()
		b.conn = conn
		b.ch = ch
		subs := make([]*subscription, 0, len(b.subs))
		for _, sub := range b.subs {
			subs = append(subs, sub)
		}
		b.mu.Unlock()

		for _, sub := range subs {
			if err := b.startConsumer(ch, sub); err != nil {
				b.logger.Error("failed to restore subscription",
					slog.String("queue", sub.queue),
					slog.String("error", err.Error()),
				)
			}
		}

		b.logger.Info("broker connection restored",
			slog.Int("subscriptions", len(subs)),
		)
		go b.watch(conn)

		return
	}
}

func (b *Bus) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.closed
}

// Publish declares the queue and publishes a persistent message to it
// through the default exchange.
func (b *Bus) Publish(ctx context.Context, queueName string, message []byte) error {
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("amqp: publish rate limit: %w", err)
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return conduit.ErrBusClosed
	}
	if b.ch == nil {
		return conduit.ErrNotConnected
	}

	if _, err := b.declareQueue(b.ch, queueName); err != nil {
		return err
	}

	err := b.ch.PublishWithContext(ctx, "", queueName, false, false, amqp091.Publishing{
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
		Body:         message,
	})
	if err != nil {
		return fmt.Errorf("amqp: publish to %q: %w", queueName, err)
	}

	return nil
}

// Subscribe attaches a persistent consumer to the queue, declaring it
// if needed.
func (b *Bus) Subscribe(ctx context.Context, queueName string, onMessage bus.MessageCallback) error {
	return b.attach(ctx, &subscription{queue: queueName, onMessage: onMessage})
}

// ReceiveOnce consumes exactly one message and then deletes the queue.
// With a non-zero timeout, onTimeout fires if no message arrives in
// time.
func (b *Bus) ReceiveOnce(ctx context.Context, queueName string, timeout time.Duration, onMessage bus.MessageCallback, onTimeout func()) error {
	sub := &subscription{queue: queueName, onMessage: onMessage, once: true}
	if timeout > 0 {
		// Armed before attach starts the delivery goroutine that reads
		// the timer field; finish arbitrates expiry against delivery.
		sub.timer = time.AfterFunc(timeout, func() {
			if !sub.finish() {
				return
			}
			b.drop(sub.queue)
			if onTimeout != nil {
				onTimeout()
			}
		})
	}

	if err := b.attach(ctx, sub); err != nil {
		if sub.timer != nil && sub.finish() {
			sub.timer.Stop()
		}

		return err
	}

	return nil
}

func (b *Bus) attach(_ context.Context, sub *subscription) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return conduit.ErrBusClosed
	}
	if _, exists := b.subs[sub.queue]; exists {
		return conduit.ErrAlreadySubscribed
	}
	if b.ch == nil {
		return conduit.ErrNotConnected
	}

	if err := b.startConsumer(b.ch, sub); err != nil {
		return err
	}
	b.subs[sub.queue] = sub

	return nil
}

// startConsumer declares the queue and spawns the delivery loop. The
// consumer tag is the queue name, so cancellation needs no bookkeeping.
func (b *Bus) startConsumer(ch *amqp091.Channel, sub *subscription) error {
	if _, err := b.declareQueue(ch, sub.queue); err != nil {
		return err
	}

	deliveries, err := ch.Consume(sub.queue, sub.queue, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("amqp: consume %q: %w", sub.queue, err)
	}

	go func() {
		for d := range deliveries {
			if sub.once {
				if !sub.finish() {
					_ = d.Nack(false, true)

					return
				}
				if sub.timer != nil {
					sub.timer.Stop()
				}
				sub.onMessage(d.Body)
				_ = d.Ack(false)
				b.drop(sub.queue)

				return
			}

			sub.onMessage(d.Body)
			_ = d.Ack(false)
		}
	}()

	return nil
}

func (b *Bus) declareQueue(ch *amqp091.Channel, queueName string) (amqp091.Queue, error) {
	q, err := ch.QueueDeclare(queueName, true, false, false, false, b.queueArgs)
	if err != nil {
		return amqp091.Queue{}, fmt.Errorf("amqp: declare queue %q: %w", queueName, err)
	}

	return q, nil
}

// Unsubscribe cancels the consumer and deletes the queue. Unknown
// queues are a no-op.
func (b *Bus) Unsubscribe(_ context.Context, queueName string) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()

		return conduit.ErrBusClosed
	}
	b.mu.Unlock()

	b.drop(queueName)

	return nil
}

// drop removes the subscription, cancels its consumer and deletes the
// queue. Safe to call from a delivery callback.
func (b *Bus) drop(queueName string) {
	b.mu.Lock()
	_, known := b.subs[queueName]
	delete(b.subs, queueName)
	ch := b.ch
	b.mu.Unlock()

	if ch == nil {
		return
	}
	if known {
		if err := ch.Cancel(queueName, false); err != nil {
			b.logger.Debug("consumer cancel failed",
				slog.String("queue", queueName),
				slog.String("error", err.Error()),
			)
		}
	}
	if _, err := ch.QueueDelete(queueName, false, false, false); err != nil {
		b.logger.Debug("queue delete failed",
			slog.String("queue", queueName),
			slog.String("error", err.Error()),
		)
	}
}

// Close tears down the channel and connection. Close is idempotent.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()

		return nil
	}
	b.closed = true
	conn := b.conn
	ch := b.ch
	b.subs = make(map[string]*subscription)
	b.mu.Unlock()

	if ch != nil {
		_ = ch.Close()
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			return fmt.Errorf("amqp: close connection: %w", err)
		}
	}

	return nil
}

// subscription is one consumer attachment. For once-subscriptions the
// done flag arbitrates the race between a delivery and the timeout.
type subscription struct {
	queue     string
	onMessage bus.MessageCallback
	once      bool
	timer     *time.Timer
	done      atomic.Bool
}

// finish claims the terminal transition. Only the first caller wins.
func (s *subscription) finish() bool {
	return s.done.CompareAndSwap(false, true)
}
