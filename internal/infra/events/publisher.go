package events

import (
	"context"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"giftcode-market/internal/pkg/errs"
)

var (
	ErrBrokerDial    = errs.New("failed to dial message broker")
	ErrChannelOpen   = errs.New("failed to open broker channel")
	ErrQueueDeclare  = errs.New("failed to declare queue")
	ErrPublishFailed = errs.New("failed to publish message")
)

// Publisher holds one long-lived connection to RabbitMQ and publishes
// persistent messages to topic-named durable queues.
type Publisher struct {
	url string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewPublisher(url string) (*Publisher, error) {
	p := &Publisher{url: url}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Publisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return errs.Mark(err, ErrBrokerDial)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return errs.Mark(err, ErrChannelOpen)
	}

	for _, topic := range AllTopics {
		// Durable so messages survive broker restarts
		if _, err := ch.QueueDeclare(topic, true, false, false, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return errs.Mark(err, ErrQueueDeclare)
		}
	}

	p.conn = conn
	p.ch = ch
	return nil
}

func (p *Publisher) Publish(ctx context.Context, topic string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil || p.ch.IsClosed() {
		if err := p.connect(); err != nil {
			return err
		}
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	// Default exchange routes by queue name
	if err := p.ch.PublishWithContext(ctx, "", topic, false, false, pub); err != nil {
		return errs.Mark(err, ErrPublishFailed)
	}
	return nil
}

func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
