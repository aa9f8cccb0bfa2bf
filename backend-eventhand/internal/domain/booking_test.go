package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func testSnapshot() PackageSnapshot {
	return PackageSnapshot{ID: NewID(), Name: "Gold", Price: decimal.NewFromInt(100), Tags: []string{}}
}

func TestBookingStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from BookingStatus
		to   BookingStatus
		want bool
	}{
		{BookingStatusPending, BookingStatusConfirmed, true},
		{BookingStatusPending, BookingStatusDeclined, true},
		{BookingStatusPending, BookingStatusCancelled, true},
		{BookingStatusPending, BookingStatusCompleted, false},
		{BookingStatusConfirmed, BookingStatusCompleted, true},
		{BookingStatusConfirmed, BookingStatusCancelled, true},
		{BookingStatusConfirmed, BookingStatusDeclined, false},
		{BookingStatusCancelled, BookingStatusConfirmed, false},
		{BookingStatusDeclined, BookingStatusPending, false},
		{BookingStatusCompleted, BookingStatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBookingStatus_IsTerminal(t *testing.T) {
	terminal := map[BookingStatus]bool{
		BookingStatusPending:   false,
		BookingStatusConfirmed: false,
		BookingStatusDeclined:  true,
		BookingStatusCancelled: true,
		BookingStatusCompleted: true,
	}
	for status, want := range terminal {
		if got := status.IsTerminal(); got != want {
			t.Errorf("%s.IsTerminal() = %v, want %v", status, got, want)
		}
	}
}

func TestParseBookingStatus(t *testing.T) {
	got, err := ParseBookingStatus(" confirmed ")
	if err != nil || got != BookingStatusConfirmed {
		t.Fatalf("ParseBookingStatus() = %v, %v", got, err)
	}
	if _, err := ParseBookingStatus("archived"); !errors.Is(err, ErrInvalidBookingStatus) {
		t.Errorf("expected ErrInvalidBookingStatus, got %v", err)
	}
}

func TestBookingStatus_ListFilter(t *testing.T) {
	got := BookingStatusCancelled.ListFilter()
	if len(got) != 2 || got[0] != BookingStatusCancelled || got[1] != BookingStatusDeclined {
		t.Errorf("cancelled filter = %v", got)
	}
	if got := BookingStatusPending.ListFilter(); len(got) != 1 {
		t.Errorf("pending filter = %v", got)
	}
}

func TestNewBooking(t *testing.T) {
	date := time.Date(2025, 6, 1, 15, 30, 0, 0, time.UTC)
	b, err := NewBooking(NewID(), NewID(), "client-1", testSnapshot(), date)
	if err != nil {
		t.Fatalf("NewBooking() error = %v", err)
	}
	if b.Status != BookingStatusPending {
		t.Errorf("status = %s, want PENDING", b.Status)
	}
	if !b.Date.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date not truncated: %v", b.Date)
	}
}

func TestNewBooking_Validation(t *testing.T) {
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		eventID  string
		vendorID string
		clientID string
		snapshot PackageSnapshot
		date     time.Time
		wantErr  error
	}{
		{"malformed event id", "nope", NewID(), "c", testSnapshot(), date, ErrInvalidID},
		{"malformed vendor id", NewID(), "", "c", testSnapshot(), date, ErrInvalidID},
		{"missing client", NewID(), NewID(), " ", testSnapshot(), date, ErrInvalidClientID},
		{"zero date", NewID(), NewID(), "c", testSnapshot(), time.Time{}, ErrInvalidDate},
		{"empty snapshot", NewID(), NewID(), "c", PackageSnapshot{}, date, ErrInvalidPackageSnapshot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBooking(tt.eventID, tt.vendorID, tt.clientID, tt.snapshot, tt.date)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewBooking() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBooking_Lifecycle(t *testing.T) {
	b, _ := NewBooking(NewID(), NewID(), "c", testSnapshot(), time.Now())
	now := time.Now()

	if err := b.Complete(now); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("completing a pending booking should fail, got %v", err)
	}
	if err := b.Confirm(now); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if b.ConfirmedAt == nil {
		t.Error("ConfirmedAt not set")
	}
	if !b.IsReviewable() {
		t.Error("confirmed booking should be reviewable")
	}
	if err := b.Complete(now); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if b.CompletedAt == nil || b.Status != BookingStatusCompleted {
		t.Error("booking not completed")
	}
	if err := b.Cancel(now); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("cancelling a completed booking should fail, got %v", err)
	}
}

func TestPackage_SnapshotIsIndependent(t *testing.T) {
	p := &Package{
		ID:         NewID(),
		VendorID:   NewID(),
		Name:       "Silver",
		Price:      decimal.NewFromInt(100),
		Tags:       []string{"a"},
		Inclusions: []Inclusion{{Name: "Chairs", Quantity: 50}},
	}
	snap := p.Snapshot()

	p.Price = decimal.NewFromInt(200)
	p.Tags[0] = "b"
	p.Inclusions[0].Quantity = 10

	if !snap.Price.Equal(decimal.NewFromInt(100)) {
		t.Errorf("snapshot price = %s, want 100", snap.Price)
	}
	if snap.Tags[0] != "a" {
		t.Error("snapshot tags changed with the package")
	}
	if snap.Inclusions[0].Quantity != 50 {
		t.Error("snapshot inclusions changed with the package")
	}
}

func TestNewBookingEvent(t *testing.T) {
	b, _ := NewBooking(NewID(), NewID(), "c", testSnapshot(), time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	msg, err := BookingOutboxMessage(BookingEventConfirmed, b, "")
	if err != nil {
		t.Fatalf("BookingOutboxMessage() error = %v", err)
	}
	if msg.Topic != DefaultOutboxTopic || msg.PartitionKey != b.VendorID || msg.AggregateID != b.ID {
		t.Errorf("unexpected routing: %+v", msg)
	}

	var ev BookingEvent
	if err := msg.DecodePayload(&ev); err != nil {
		t.Fatalf("DecodePayload() error = %v", err)
	}
	if ev.Date != "2025-06-01" || ev.EventType != BookingEventConfirmed {
		t.Errorf("unexpected payload: %+v", ev)
	}
}

func TestOutboxMessage_Retry(t *testing.T) {
	msg, _ := NewOutboxMessage(AggregateBooking, "b1", "booking.created", "", "", map[string]string{})
	msg.MaxRetries = 2
	now := time.Now()

	msg.MarkAsFailed("boom", now)
	if !msg.CanRetry() {
		t.Error("first failure should be retryable")
	}
	msg.MarkAsFailed("boom", now)
	if msg.CanRetry() {
		t.Error("retries should be exhausted")
	}
	msg.MarkAsProcessed(now)
	if msg.Status != OutboxStatusProcessed || msg.ProcessedAt == nil {
		t.Error("message not processed")
	}
}
