package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Domain event routing keys
const (
	EventLeadCreated   = "lead.created"
	EventLeadConverted = "lead.converted"
	EventLeadsImported = "leads.imported"
	EventIntakeSubmit  = "intake.submitted"
)

const EventsExchange = "ex.crm.events"

// Event is the JSON envelope published for every domain event
type Event struct {
	Type        string      `json:"type"`
	WorkspaceID string      `json:"workspace_id"`
	ActorID     string      `json:"actor_id,omitempty"`
	OccurredAt  time.Time   `json:"occurred_at"`
	Data        interface{} `json:"data"`
}

// EventPublisher delivers domain events to downstream consumers
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Events is the process-wide publisher. Defaults to logging only.
var Events EventPublisher = LogPublisher{}

// InitializeEvents connects to AMQP when a URL is configured
func InitializeEvents(amqpURL string) error {
	if amqpURL == "" {
		log.Println("[EVENTS] AMQP_URL not set, domain events will only be logged")
		Events = LogPublisher{}
		return nil
	}
	pub, err := NewAMQPPublisher(amqpURL)
	if err != nil {
		Events = LogPublisher{}
		return err
	}
	Events = pub
	log.Printf("[EVENTS] Publishing domain events to exchange %s", EventsExchange)
	return nil
}

// PublishEvent sends an event in the background and logs failures
func PublishEvent(eventType, workspaceID, actorID string, data interface{}) {
	event := Event{
		Type:        eventType,
		WorkspaceID: workspaceID,
		ActorID:     actorID,
		OccurredAt:  time.Now().UTC(),
		Data:        data,
	}
	publisher := Events
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := publisher.Publish(ctx, event); err != nil {
			log.Printf("[EVENTS] Failed to publish %s: %v", event.Type, err)
		}
	}()
}

// LogPublisher writes events to the standard log
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, event Event) error {
	log.Printf("[EVENTS] %s workspace=%s actor=%s", event.Type, event.WorkspaceID, event.ActorID)
	return nil
}

func (LogPublisher) Close() error { return nil }

// AMQPPublisher publishes persistent JSON messages to a topic exchange
type AMQPPublisher struct {
	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewAMQPPublisher(url string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to AMQP broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open AMQP channel: %w", err)
	}

	if err := ch.ExchangeDeclare(EventsExchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", EventsExchange, err)
	}

	return &AMQPPublisher{conn: conn, ch: ch}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	// amqp channels are not safe for concurrent publishing
	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx,
		EventsExchange,
		event.Type,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.OccurredAt,
			Type:         event.Type,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish to AMQP: %w", err)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
