package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/domain"
	"github.com/rad-team-cpu/eventhand-v2-backend/backend-eventhand/internal/repository"
	"github.com/rad-team-cpu/eventhand-v2-backend/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memOutbox is an in-memory OutboxRepository with lease semantics
type memOutbox struct {
	repository.OutboxRepository

	mu       sync.Mutex
	messages map[string]*domain.OutboxMessage
	leased   map[string]bool
}

func newMemOutbox(msgs ...*domain.OutboxMessage) *memOutbox {
	m := &memOutbox{messages: map[string]*domain.OutboxMessage{}, leased: map[string]bool{}}
	for _, msg := range msgs {
		m.messages[msg.ID] = msg
	}
	return m
}

func (m *memOutbox) claim(limit int, status domain.OutboxStatus) []*domain.OutboxMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.OutboxMessage
	for id, msg := range m.messages {
		if len(out) == limit {
			break
		}
		if msg.Status != status || m.leased[id] {
			continue
		}
		if status == domain.OutboxStatusFailed && msg.RetryCount >= msg.MaxRetries {
			continue
		}
		m.leased[id] = true
		cp := *msg
		out = append(out, &cp)
	}
	return out
}

func (m *memOutbox) ClaimPending(ctx context.Context, limit int, lease time.Duration) ([]*domain.OutboxMessage, error) {
	return m.claim(limit, domain.OutboxStatusPending), nil
}

func (m *memOutbox) ClaimRetryable(ctx context.Context, limit int, lease, retryAfter time.Duration) ([]*domain.OutboxMessage, error) {
	return m.claim(limit, domain.OutboxStatusFailed), nil
}

func (m *memOutbox) MarkAsProcessed(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.messages[id]
	if !ok {
		return repository.ErrOutboxMessageNotFound
	}
	msg.Status = domain.OutboxStatusProcessed
	delete(m.leased, id)
	return nil
}

func (m *memOutbox) MarkAsFailed(ctx context.Context, id string, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.messages[id]
	if !ok {
		return repository.ErrOutboxMessageNotFound
	}
	msg.Status = domain.OutboxStatusFailed
	msg.LastError = errMsg
	msg.RetryCount++
	delete(m.leased, id)
	return nil
}

func (m *memOutbox) DeleteProcessed(ctx context.Context, olderThanDays int) (int64, error) {
	return 0, nil
}

func (m *memOutbox) CountByStatus(ctx context.Context) (map[domain.OutboxStatus]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[domain.OutboxStatus]int64{}
	for _, msg := range m.messages {
		counts[msg.Status]++
	}
	return counts, nil
}

func (m *memOutbox) status(id string) domain.OutboxStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.messages[id].Status
}

type recordingFollowUp struct {
	mu      sync.Mutex
	handled []string
	err     error
}

func (f *recordingFollowUp) Handle(ctx context.Context, msg *domain.OutboxMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handled = append(f.handled, msg.ID)
	return f.err
}

type recordingPublisher struct {
	mu          sync.Mutex
	published   []string
	deadLetters []*retry.DeadLetter
	err         error
}

func (p *recordingPublisher) Publish(ctx context.Context, msg *domain.OutboxMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, msg.ID)
	return nil
}

func (p *recordingPublisher) PublishDeadLetter(ctx context.Context, dl *retry.DeadLetter) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deadLetters = append(p.deadLetters, dl)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}

func pendingMessage(t *testing.T) *domain.OutboxMessage {
	t.Helper()
	b := &domain.Booking{
		ID:       domain.NewID(),
		VendorID: domain.NewID(),
		EventID:  domain.NewID(),
		ClientID: "client-001",
		Date:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Status:   domain.BookingStatusConfirmed,
	}
	msg, err := domain.BookingOutboxMessage(domain.BookingEventConfirmed, b, "")
	require.NoError(t, err)
	return msg
}

func TestOutboxWorker_ProcessPending(t *testing.T) {
	first, second := pendingMessage(t), pendingMessage(t)
	outbox := newMemOutbox(first, second)
	followUp := &recordingFollowUp{}
	publisher := &recordingPublisher{}
	w := NewOutboxWorker(outbox, followUp, publisher, nil)

	w.ProcessPending(context.Background())

	assert.ElementsMatch(t, []string{first.ID, second.ID}, followUp.handled)
	assert.ElementsMatch(t, []string{first.ID, second.ID}, publisher.published)
	assert.Equal(t, domain.OutboxStatusProcessed, outbox.status(first.ID))
	assert.Equal(t, domain.OutboxStatusProcessed, outbox.status(second.ID))

	// Processed rows are not claimed again
	w.ProcessPending(context.Background())
	assert.Equal(t, 2, publisher.count())
}

func TestOutboxWorker_FollowUpFailureSkipsPublish(t *testing.T) {
	msg := pendingMessage(t)
	outbox := newMemOutbox(msg)
	followUp := &recordingFollowUp{err: errors.New("deadlock detected")}
	publisher := &recordingPublisher{}
	w := NewOutboxWorker(outbox, followUp, publisher, nil)

	w.ProcessPending(context.Background())

	assert.Equal(t, 0, publisher.count())
	assert.Equal(t, domain.OutboxStatusFailed, outbox.status(msg.ID))
	assert.Contains(t, outbox.messages[msg.ID].LastError, "deadlock detected")
}

func TestOutboxWorker_RetriesFailedMessages(t *testing.T) {
	msg := pendingMessage(t)
	outbox := newMemOutbox(msg)
	publisher := &recordingPublisher{err: errors.New("broker not available")}
	w := NewOutboxWorker(outbox, &recordingFollowUp{}, publisher, nil)

	w.ProcessPending(context.Background())
	require.Equal(t, domain.OutboxStatusFailed, outbox.status(msg.ID))
	assert.Equal(t, 1, outbox.messages[msg.ID].RetryCount)

	publisher.err = nil
	w.ProcessRetryable(context.Background())

	assert.Equal(t, domain.OutboxStatusProcessed, outbox.status(msg.ID))
	assert.Equal(t, []string{msg.ID}, publisher.published)
}

func TestOutboxWorker_ExhaustedMessagesStayFailed(t *testing.T) {
	msg := pendingMessage(t)
	msg.Status = domain.OutboxStatusFailed
	msg.RetryCount = msg.MaxRetries
	outbox := newMemOutbox(msg)
	publisher := &recordingPublisher{}
	w := NewOutboxWorker(outbox, &recordingFollowUp{}, publisher, nil)

	w.ProcessRetryable(context.Background())

	assert.Equal(t, 0, publisher.count())
	assert.Equal(t, domain.OutboxStatusFailed, outbox.status(msg.ID))
}

func TestOutboxWorker_DeadLettersLastAttempt(t *testing.T) {
	msg := pendingMessage(t)
	msg.Status = domain.OutboxStatusFailed
	msg.RetryCount = msg.MaxRetries - 2
	outbox := newMemOutbox(msg)
	publisher := &recordingPublisher{err: errors.New("broker not available")}
	w := NewOutboxWorker(outbox, &recordingFollowUp{}, publisher, nil)

	w.ProcessRetryable(context.Background())
	assert.Empty(t, publisher.deadLetters)

	w.ProcessRetryable(context.Background())
	require.Len(t, publisher.deadLetters, 1)
	dl := publisher.deadLetters[0]
	assert.Equal(t, msg.ID, dl.ID)
	assert.Equal(t, msg.Topic, dl.OriginalTopic)
	assert.Equal(t, msg.MaxRetries, dl.Attempts)
	assert.Contains(t, dl.Error, "broker not available")

	// Exhausted rows are never claimed again
	w.ProcessRetryable(context.Background())
	assert.Len(t, publisher.deadLetters, 1)
	assert.Equal(t, domain.OutboxStatusFailed, outbox.status(msg.ID))
}

func TestOutboxWorker_StartStop(t *testing.T) {
	msg := pendingMessage(t)
	outbox := newMemOutbox(msg)
	publisher := &recordingPublisher{}
	w := NewOutboxWorker(outbox, &recordingFollowUp{}, publisher, &OutboxWorkerConfig{
		PollInterval: 5 * time.Millisecond,
	})

	require.NoError(t, w.Start(context.Background()))
	assert.True(t, w.IsRunning())
	assert.Error(t, w.Start(context.Background()))

	assert.Eventually(t, func() bool { return publisher.count() == 1 }, time.Second, 5*time.Millisecond)

	w.Stop()
	assert.False(t, w.IsRunning())
	w.Stop()
}
