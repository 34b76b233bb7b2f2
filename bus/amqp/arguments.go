package amqp

import (
	"errors"
	"time"

	amqp091 "github.com/rabbitmq/amqp091-go"
)

// QueueArguments control broker-side queue expiry and dead-lettering.
// They apply to every queue the bus declares.
type QueueArguments struct {
	// QueueTTL deletes a queue that has been unused for this long
	// (x-expires). Zero leaves the queue without expiry.
	QueueTTL time.Duration

	// MessageTTL dead-letters or drops messages older than this
	// (x-message-ttl). Zero retains messages indefinitely.
	MessageTTL time.Duration

	// DeadLetterExchange receives expired or rejected messages.
	DeadLetterExchange string

	// DeadLetterRoutingKey overrides the routing key on dead-lettered
	// messages.
	DeadLetterRoutingKey string
}

// Table converts the arguments to the broker wire table. TTLs must be
// positive when set, and a message TTL must not outlive its queue:
// messages cannot expire later than the queue that holds them.
func (a QueueArguments) Table() (amqp091.Table, error) {
	if a.QueueTTL < 0 {
		return nil, errors.New("amqp: queue TTL must be positive")
	}
	if a.MessageTTL < 0 {
		return nil, errors.New("amqp: message TTL must be positive")
	}
	if a.QueueTTL > 0 && a.MessageTTL > a.QueueTTL {
		return nil, errors.New("amqp: message TTL exceeds queue TTL")
	}

	table := amqp091.Table{}
	if a.QueueTTL > 0 {
		table["x-expires"] = a.QueueTTL.Milliseconds()
	}
	if a.MessageTTL > 0 {
		table["x-message-ttl"] = a.MessageTTL.Milliseconds()
	}
	if a.DeadLetterExchange != "" {
		table["x-dead-letter-exchange"] = a.DeadLetterExchange
	}
	if a.DeadLetterRoutingKey != "" {
		table["x-dead-letter-routing-key"] = a.DeadLetterRoutingKey
	}
	if len(table) == 0 {
		return nil, nil
	}

	return table, nil
}
