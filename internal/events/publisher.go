package events

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// TurnCompleted is emitted after a chat turn finishes. Consumers are
// downstream (analytics, billing); nothing in request handling waits on it.
type TurnCompleted struct {
	UserID     string    `json:"user_id"`
	SessionID  string    `json:"session_id"`
	TokensUsed int       `json:"tokens_used"`
	Persisted  bool      `json:"persisted"`
	At         time.Time `json:"at"`
}

type Publisher interface {
	PublishTurnCompleted(ctx context.Context, ev TurnCompleted) error
}

// Noop is used when no broker is configured.
type Noop struct{}

func (Noop) PublishTurnCompleted(ctx context.Context, ev TurnCompleted) error { return nil }

// RabbitPublisher sends turn events to a durable queue.
type RabbitPublisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

func NewRabbitPublisher(url, queue string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if _, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &RabbitPublisher{conn: conn, ch: ch, queue: queue}, nil
}

func (p *RabbitPublisher) PublishTurnCompleted(ctx context.Context, ev TurnCompleted) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

func (p *RabbitPublisher) Close() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
