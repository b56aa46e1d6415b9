package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Yo-Self/menu-mestre-facil-sub001/utils"
)

const waiterCallQueueName = "waiter_call.events"

type Publisher interface {
	PublishWaiterCallEvent(ctx context.Context, event WaiterCallEvent) error
}

// NoopPublisher dipakai jika RABBITMQ_URL kosong
type NoopPublisher struct{}

func (NoopPublisher) PublishWaiterCallEvent(context.Context, WaiterCallEvent) error { return nil }

// AMQPPublisher keeps one connection/channel and redials lazily after a failure.
type AMQPPublisher struct {
	URL       string
	QueueName string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewAMQPPublisher(url string) *AMQPPublisher {
	return &AMQPPublisher{URL: url, QueueName: waiterCallQueueName}
}

func (p *AMQPPublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.closeLocked()

	conn, err := amqp.Dial(p.URL)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	// Durable supaya event tidak hilang saat broker restart
	if _, err := ch.QueueDeclare(p.QueueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *AMQPPublisher) PublishWaiterCallEvent(ctx context.Context, event WaiterCallEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal waiter call event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		utils.ErrorLogger.Printf("rabbitmq: %v", err)
		return err
	}

	err = ch.PublishWithContext(ctx, "", p.QueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         event.Type,
		Body:         body,
	})
	if err != nil {
		utils.ErrorLogger.Printf("rabbitmq: publish %s failed: %v", event.Type, err)
		p.closeLocked()
		return err
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
	return nil
}

func (p *AMQPPublisher) closeLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
