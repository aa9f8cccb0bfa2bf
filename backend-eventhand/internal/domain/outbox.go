package domain

import (
	"encoding/json"
	"time"
)

// OutboxStatus represents the status of an outbox message
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusProcessed OutboxStatus = "processed"
	OutboxStatusFailed    OutboxStatus = "failed"
)

const (
	AggregateBooking   = "booking"
	DefaultOutboxTopic = "booking-events"
	defaultMaxRetries  = 10
)

// OutboxMessage is a durable record of work that follows a committed write.
// The worker runs its follow-up step, publishes it, then acks it as processed.
type OutboxMessage struct {
	ID            string       `json:"id"`
	AggregateType string       `json:"aggregate_type"`
	AggregateID   string       `json:"aggregate_id"`
	EventType     string       `json:"event_type"`
	Payload       []byte       `json:"payload"`
	Topic         string       `json:"topic"`
	PartitionKey  string       `json:"partition_key"`
	Status        OutboxStatus `json:"status"`
	RetryCount    int          `json:"retry_count"`
	MaxRetries    int          `json:"max_retries"`
	LastError     string       `json:"last_error,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	ProcessedAt   *time.Time   `json:"processed_at,omitempty"`
}

// NewOutboxMessage creates a pending message with a JSON payload
func NewOutboxMessage(aggregateType, aggregateID, eventType, topic, partitionKey string, payload any) (*OutboxMessage, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	if topic == "" {
		topic = DefaultOutboxTopic
	}
	if partitionKey == "" {
		partitionKey = aggregateID
	}

	return &OutboxMessage{
		ID:            NewID(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       raw,
		Topic:         topic,
		PartitionKey:  partitionKey,
		Status:        OutboxStatusPending,
		MaxRetries:    defaultMaxRetries,
		CreatedAt:     time.Now(),
	}, nil
}

// CanRetry checks if the message can be retried
func (m *OutboxMessage) CanRetry() bool {
	return m.Status == OutboxStatusFailed && m.RetryCount < m.MaxRetries
}

// MarkAsProcessed acks the message
func (m *OutboxMessage) MarkAsProcessed(at time.Time) {
	m.Status = OutboxStatusProcessed
	m.ProcessedAt = &at
}

// MarkAsFailed records a failed attempt
func (m *OutboxMessage) MarkAsFailed(reason string, at time.Time) {
	m.Status = OutboxStatusFailed
	m.LastError = reason
	m.RetryCount++
	m.ProcessedAt = &at
}

// DecodePayload unmarshals the payload into v
func (m *OutboxMessage) DecodePayload(v any) error {
	return json.Unmarshal(m.Payload, v)
}
