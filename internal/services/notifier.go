package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/streadway/amqp"

	"alfredoptarigan/resume-analyzer/internal/models"
)

// EventPublisher broadcasts analysis status changes.
type EventPublisher interface {
	Publish(ctx context.Context, event models.AnalysisEvent) error
	Close() error
}

type amqpPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	exchange string
}

type noopPublisher struct{}

// NewEventPublisher connects to RabbitMQ and declares the topic exchange. An empty
// URL yields a publisher that drops every event.
func NewEventPublisher(url, exchange string) (EventPublisher, error) {
	if url == "" {
		return noopPublisher{}, nil
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // auto-delete
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	return &amqpPublisher{conn: conn, exchange: exchange}, nil
}

// RoutingKey is the topic an analysis event is published under.
func RoutingKey(event models.AnalysisEvent) string {
	return fmt.Sprintf("analysis.%s", event.AnalysisID)
}

func (p *amqpPublisher) Publish(ctx context.Context, event models.AnalysisEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	return ch.Publish(
		p.exchange,
		RoutingKey(event),
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.Timestamp,
			Body:         body,
		},
	)
}

func (p *amqpPublisher) Close() error {
	log.Println("🛑 Closing RabbitMQ connection")
	return p.conn.Close()
}

func (noopPublisher) Publish(context.Context, models.AnalysisEvent) error { return nil }

func (noopPublisher) Close() error { return nil }
