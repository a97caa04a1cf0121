// Package queue_publisher publishes security events to RabbitMQ. Publishing
// is best-effort: the reuse response (clearing the session set) has already
// happened by the time an event goes out, so a broker outage only costs the
// audit record, never alters enforcement.
package queue_publisher

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/accesslab/employee-auth-api/internal/queue"
)

// Notifier implements the auth core's SecurityNotifier on top of RabbitMQ.
type Notifier struct{}

func NewNotifier() *Notifier { return &Notifier{} }

// TokenReuse publishes a TokenReuseEvent to the durable auth.token_reuse
// queue. Errors are logged and swallowed; this call must never fail the
// request that detected the reuse.
func (n *Notifier) TokenReuse(ctx context.Context, subject string) {
	ev := q.TokenReuseEvent{
		Subject:    subject,
		DetectedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := publish(ctx, ev); err != nil {
		log.Printf("rabbitmq: publish token reuse event failed: %v", err)
	}
}

func publish(ctx context.Context, ev q.TokenReuseEvent) error {
	conn, err := amqp.Dial(q.BrokerURL())
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so events survive broker restarts.
	if _, err := ch.QueueDeclare(q.ReuseQueueName, true, false, false, false, nil); err != nil {
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	return ch.PublishWithContext(ctx,
		"",              // default exchange
		q.ReuseQueueName, // routing key = queue name
		false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		})
}
