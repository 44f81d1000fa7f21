package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Goh0809/Eventora-Backend/internal/domain"
	"github.com/Goh0809/Eventora-Backend/pkg/kafka"
	"github.com/Goh0809/Eventora-Backend/pkg/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// EventPublisher defines the interface for publishing booking events
type EventPublisher interface {
	// PublishBookingConfirmed publishes a booking confirmed event
	PublishBookingConfirmed(ctx context.Context, booking *domain.Booking) error

	// PublishBookingExpired publishes a booking expired event
	PublishBookingExpired(ctx context.Context, booking *domain.Booking) error

	// Close closes the event publisher
	Close() error
}

// Producer is the subset of kafka.Producer the publisher needs
type Producer interface {
	Produce(ctx context.Context, msg *kafka.Message) error
	Close()
}

// KafkaEventPublisher implements EventPublisher using Kafka
type KafkaEventPublisher struct {
	producer    Producer
	topic       string
	serviceName string
	now         func() time.Time
}

// Config contains configuration for the event publisher
type Config struct {
	Brokers     []string
	Topic       string
	ServiceName string
	ClientID    string
}

// NewKafkaEventPublisher connects a producer and creates a publisher
func NewKafkaEventPublisher(ctx context.Context, cfg *Config) (*KafkaEventPublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("event publisher config is required")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "eventora-api-producer"
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Brokers,
		ClientID:      clientID,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
		BatchSize:     100,
		LingerMs:      10,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return NewWithProducer(producer, cfg.Topic, cfg.ServiceName), nil
}

// NewWithProducer creates a publisher on an existing producer
func NewWithProducer(producer Producer, topic, serviceName string) *KafkaEventPublisher {
	if topic == "" {
		topic = "booking-events"
	}
	if serviceName == "" {
		serviceName = "eventora-api"
	}
	return &KafkaEventPublisher{
		producer:    producer,
		topic:       topic,
		serviceName: serviceName,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// PublishBookingConfirmed publishes a booking confirmed event
func (p *KafkaEventPublisher) PublishBookingConfirmed(ctx context.Context, booking *domain.Booking) error {
	return p.publishEvent(ctx, domain.BookingEventConfirmed, booking)
}

// PublishBookingExpired publishes a booking expired event
func (p *KafkaEventPublisher) PublishBookingExpired(ctx context.Context, booking *domain.Booking) error {
	return p.publishEvent(ctx, domain.BookingEventExpired, booking)
}

// Close closes the event publisher
func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		p.producer.Close()
	}
	return nil
}

func (p *KafkaEventPublisher) publishEvent(ctx context.Context, eventType domain.BookingEventType, booking *domain.Booking) error {
	ctx, span := telemetry.StartSpan(ctx, "publisher.kafka.publish")
	defer span.End()

	eventID := uuid.New().String()
	event := domain.NewBookingEvent(eventType, booking, eventID, p.now())

	span.SetAttributes(
		attribute.String("event_type", string(eventType)),
		attribute.String("booking_id", booking.ID),
		attribute.String("topic", p.topic),
	)

	value, err := json.Marshal(event)
	if err != nil {
		telemetry.FailSpan(span, err, "marshal failed")
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &kafka.Message{
		Topic: p.topic,
		Key:   []byte(event.Key()),
		Value: value,
		Headers: map[string]string{
			"event_type":   string(eventType),
			"event_id":     eventID,
			"source":       p.serviceName,
			"content_type": "application/json",
		},
		Timestamp: event.OccurredAt,
	}

	if err := p.producer.Produce(ctx, msg); err != nil {
		telemetry.FailSpan(span, err, "produce failed")
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// NoOpEventPublisher drops every event
type NoOpEventPublisher struct{}

// NewNoOpEventPublisher creates a publisher that does nothing
func NewNoOpEventPublisher() *NoOpEventPublisher {
	return &NoOpEventPublisher{}
}

func (NoOpEventPublisher) PublishBookingConfirmed(ctx context.Context, booking *domain.Booking) error {
	return nil
}

func (NoOpEventPublisher) PublishBookingExpired(ctx context.Context, booking *domain.Booking) error {
	return nil
}

func (NoOpEventPublisher) Close() error { return nil }
