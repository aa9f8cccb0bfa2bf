package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/domain"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/metrics"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/kafka"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/logger"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/retry"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// EventPublisher fans booking lifecycle events out to other services
type EventPublisher interface {
	// Publish sends an outbox message to its topic
	Publish(ctx context.Context, msg *domain.OutboxMessage) error

	// PublishDeadLetter parks a message whose retries are exhausted
	retry.DeadLetterPublisher

	// Close closes the event publisher
	Close() error
}

// messageProducer is the part of kafka.Producer the publisher needs
type messageProducer interface {
	Produce(ctx context.Context, msg *kafka.Message) error
	Close()
}

// KafkaEventPublisher implements EventPublisher using Kafka behind a circuit breaker
type KafkaEventPublisher struct {
	producer    messageProducer
	breaker     *gobreaker.CircuitBreaker
	serviceName string
}

// EventPublisherConfig contains configuration for the event publisher
type EventPublisherConfig struct {
	Brokers     []string
	ServiceName string
	ClientID    string
	// BreakerFailures is the number of consecutive failures that opens the breaker
	BreakerFailures uint32
	// BreakerTimeout is how long the breaker stays open before letting a trial request through
	BreakerTimeout time.Duration
}

// NewKafkaEventPublisher creates a new Kafka event publisher
func NewKafkaEventPublisher(ctx context.Context, cfg *EventPublisherConfig) (*KafkaEventPublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("event publisher config is required")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "eventhand-producer"
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

	return newKafkaEventPublisher(producer, cfg), nil
}

func newKafkaEventPublisher(producer messageProducer, cfg *EventPublisherConfig) *KafkaEventPublisher {
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "eventhand"
	}
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	timeout := cfg.BreakerTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	breakerName := serviceName + "-kafka"
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Get().Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.SetBreakerState(name, int(to))
		},
	})
	metrics.SetBreakerState(breakerName, int(gobreaker.StateClosed))

	return &KafkaEventPublisher{
		producer:    producer,
		breaker:     breaker,
		serviceName: serviceName,
	}
}

// Publish sends msg to Kafka keyed by its partition key. An open breaker fails fast.
func (p *KafkaEventPublisher) Publish(ctx context.Context, msg *domain.OutboxMessage) error {
	record := &kafka.Message{
		Topic: msg.Topic,
		Key:   []byte(msg.PartitionKey),
		Value: msg.Payload,
		Headers: map[string]string{
			"event_type":     msg.EventType,
			"event_id":       msg.ID,
			"aggregate_type": msg.AggregateType,
			"aggregate_id":   msg.AggregateID,
			"source":         p.serviceName,
			"content_type":   "application/json",
		},
		Timestamp: msg.CreatedAt,
	}

	_, err := p.breaker.Execute(func() (interface{}, error) {
		return nil, p.producer.Produce(ctx, record)
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", msg.EventType, err)
	}
	return nil
}

// PublishDeadLetter writes dl to the dead letter topic of its original topic.
// Dead letters skip the breaker.
func (p *KafkaEventPublisher) PublishDeadLetter(ctx context.Context, dl *retry.DeadLetter) error {
	body, err := dl.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode dead letter: %w", err)
	}

	record := &kafka.Message{
		Topic: retry.DeadLetterTopic(dl.OriginalTopic),
		Key:   []byte(dl.Key),
		Value: body,
		Headers: map[string]string{
			"event_type":   dl.EventType,
			"event_id":     dl.ID,
			"source":       p.serviceName,
			"content_type": "application/json",
		},
		Timestamp: dl.FailedAt,
	}
	if err := p.producer.Produce(ctx, record); err != nil {
		return fmt.Errorf("failed to publish dead letter %s: %w", dl.ID, err)
	}
	return nil
}

// Close closes the event publisher
func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		p.producer.Close()
	}
	return nil
}

// NoOpEventPublisher drops every event. Used when Kafka is disabled or unreachable.
type NoOpEventPublisher struct{}

// NewNoOpEventPublisher creates a new no-op event publisher
func NewNoOpEventPublisher() *NoOpEventPublisher {
	return &NoOpEventPublisher{}
}

// Publish is a no-op
func (p *NoOpEventPublisher) Publish(ctx context.Context, msg *domain.OutboxMessage) error {
	return nil
}

// PublishDeadLetter is a no-op
func (p *NoOpEventPublisher) PublishDeadLetter(ctx context.Context, dl *retry.DeadLetter) error {
	return nil
}

// Close is a no-op
func (p *NoOpEventPublisher) Close() error {
	return nil
}

var (
	_ EventPublisher = (*KafkaEventPublisher)(nil)
	_ EventPublisher = (*NoOpEventPublisher)(nil)
)
