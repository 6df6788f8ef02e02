package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
	amqp "github.com/rabbitmq/amqp091-go"
)

// amqpChannel is the subset of *amqp.Channel used for publishing.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPSender hands messages to a RabbitMQ queue consumed by an external
// gateway (for channels without a direct integration).
type AMQPSender struct {
	conn  *amqp.Connection
	ch    amqpChannel
	queue string
}

// OutboundMessage is the JSON body published to the queue.
type OutboundMessage struct {
	DeliveryID string    `json:"delivery_id"`
	To         string    `json:"to"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewAMQPSender(url, queue string) (*AMQPSender, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &AMQPSender{conn: conn, ch: ch, queue: queue}, nil
}

func (s *AMQPSender) Close() error {
	if s.ch != nil {
		_ = s.ch.Close()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Send publishes a persistent message; the returned id is generated locally
// and travels with the payload so the consumer can report back.
func (s *AMQPSender) Send(ctx context.Context, to, body string) (string, error) {
	if err := checkArgs(to, body); err != nil {
		return "", err
	}
	msg := OutboundMessage{
		DeliveryID: ulid.Make().String(),
		To:         to,
		Body:       body,
		CreatedAt:  time.Now().UTC(),
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return "", err
	}
	err = s.ch.PublishWithContext(ctx, "", s.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.DeliveryID,
		Body:         b,
		Timestamp:    msg.CreatedAt,
	})
	if err != nil {
		return "", &DeliveryError{Provider: ProviderAMQP, Err: err}
	}
	return msg.DeliveryID, nil
}
