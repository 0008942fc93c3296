package event

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// Routing keys published on the survey.events exchange
const (
	SessionFinalized = "survey.session.finalized"
)

// Publisher emits survey lifecycle events for downstream services
// (recommendation, notifications, analytics warehousing).
type Publisher interface {
	Publish(eventType string, payload interface{}) error
	Close() error
}

type eventPublisher struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	enabled  bool
}

// NewPublisher connects to RabbitMQ and declares the topic exchange. An
// empty URI disables publishing rather than failing startup, so the engine
// runs standalone in development.
func NewPublisher(amqpURI string) (Publisher, error) {
	const exchange = "survey.events"

	if amqpURI == "" {
		log.Println("Warning: AMQP_URI not set, event publishing disabled")
		return &eventPublisher{exchange: exchange}, nil
	}

	conn, err := amqp091.Dial(amqpURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	if err := channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	log.Printf("Event publisher initialized with exchange: %s", exchange)
	return &eventPublisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		enabled:  true,
	}, nil
}

// Publish sends an event using its type as the routing key
func (p *eventPublisher) Publish(eventType string, payload interface{}) error {
	if !p.enabled {
		return nil
	}

	event := map[string]interface{}{
		"type":      eventType,
		"payload":   payload,
		"emittedAt": time.Now().UTC(),
	}
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.channel.Publish(
		p.exchange,
		eventType, // routing key
		false,     // mandatory
		false,     // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

func (p *eventPublisher) Close() error {
	if !p.enabled {
		return nil
	}
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
