package retry

import (
	"context"
	"encoding/json"
	"time"
)

// DeadLetterSuffix is appended to a topic to name its dead letter topic
const DeadLetterSuffix = ".dlq"

// DeadLetter is a message that will not be retried again
type DeadLetter struct {
	ID            string            `json:"id"`
	OriginalTopic string            `json:"original_topic"`
	Key           string            `json:"key"`
	EventType     string            `json:"event_type"`
	Payload       json.RawMessage   `json:"payload"`
	Headers       map[string]string `json:"headers,omitempty"`
	Error         string            `json:"error"`
	Attempts      int               `json:"attempts"`
	FirstSeenAt   time.Time         `json:"first_seen_at"`
	FailedAt      time.Time         `json:"failed_at"`
}

// DeadLetterPublisher parks exhausted messages for manual inspection
type DeadLetterPublisher interface {
	PublishDeadLetter(ctx context.Context, msg *DeadLetter) error
}

// DeadLetterTopic returns the dead letter topic of topic
func DeadLetterTopic(topic string) string {
	return topic + DeadLetterSuffix
}

// Exhausted reports whether attempts used up the retry budget.
// A non-positive maxRetries never exhausts.
func Exhausted(attempts, maxRetries int) bool {
	return maxRetries > 0 && attempts >= maxRetries
}

// Encode returns the JSON body of the dead letter
func (d *DeadLetter) Encode() ([]byte, error) {
	return json.Marshal(d)
}
