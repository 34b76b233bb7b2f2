// Package bus defines the message bus abstraction the SDK runs on. A
// Bus provides durable-queue semantics: publishing to a queue that has
// no subscriber yet buffers the message, and a later subscriber
// receives everything published before it attached.
//
// Three backends implement Bus: bus/memory for tests and single-process
// embedding, bus/amqp for RabbitMQ, and bus/redis for Redis.
package bus

import (
	"context"
	"time"
)

// MessageCallback handles one raw message delivered from a queue.
// Callbacks for a given queue are invoked serially in publish order.
type MessageCallback func(message []byte)

// Bus is a connection to a message broker.
//
// Implementations must tolerate a callback calling back into the Bus,
// including Unsubscribe of the very queue that delivered the message.
type Bus interface {
	// Publish enqueues a message. The queue is created if it does not
	// exist; messages are retained until consumed.
	Publish(ctx context.Context, queueName string, message []byte) error

	// Subscribe attaches a persistent consumer to a queue, creating it
	// if needed. A queue supports at most one subscription per Bus;
	// subscribing twice returns an error.
	Subscribe(ctx context.Context, queueName string, onMessage MessageCallback) error

	// Unsubscribe detaches the consumer from a queue and deletes the
	// queue. Unsubscribing from a queue with no subscription is a no-op.
	Unsubscribe(ctx context.Context, queueName string) error

	// ReceiveOnce attaches a consumer that fires for exactly one
	// message and then detaches, deleting the queue. A timeout of zero
	// waits indefinitely; otherwise onTimeout fires if no message
	// arrives in time and the queue is deleted without a delivery.
	ReceiveOnce(ctx context.Context, queueName string, timeout time.Duration, onMessage MessageCallback, onTimeout func()) error

	// Close tears down the connection. Subscriptions stop delivering;
	// further operations return an error.
	Close() error
}
