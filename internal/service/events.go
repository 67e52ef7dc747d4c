package service

import (
	"time"

	"github.com/Jvictorio09/fluentory-booking/internal/models"
	"go.uber.org/zap"
)

// Routing keys consumed by the external notifier.
const (
	EventBookingConfirmed   = "booking.confirmed"
	EventBookingPending     = "booking.pending"
	EventBookingDeclined    = "booking.declined"
	EventBookingCancelled   = "booking.cancelled"
	EventBookingRescheduled = "booking.rescheduled"
	EventSeatOffered        = "waitlist.offered"
	EventOfferExpired       = "waitlist.expired"
	EventSeriesGapCreated   = "series.gap"
)

// EventPublisher is satisfied by pkg/rabbitmq.Publisher. A nil publisher
// disables emission; tests pass nil.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

type BookingEvent struct {
	BookingRef  string    `json:"booking_ref"`
	Kind        string    `json:"kind"`
	HostID      string    `json:"host_id"`
	RequesterID string    `json:"requester_id"`
	SessionID   *uint     `json:"session_id,omitempty"`
	StartAtUTC  time.Time `json:"start_at_utc"`
	Status      string    `json:"status"`
}

type WaitlistEvent struct {
	EntryID     uint       `json:"entry_id"`
	SessionID   uint       `json:"session_id"`
	RequesterID string     `json:"requester_id"`
	OfferedAt   *time.Time `json:"offered_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

type SeriesGapEvent struct {
	SeriesID        uint      `json:"series_id"`
	GroupID         string    `json:"group_id"`
	OccurrenceIndex int       `json:"occurrence_index"`
	StartAtUTC      time.Time `json:"start_at_utc"`
	Reason          string    `json:"reason"`
}

// emitter buffers events during a transaction and publishes them only after
// commit. Side effects never run inside the transactional boundary.
type emitter struct {
	pub    EventPublisher
	logger *zap.Logger

	pending []pendingEvent
}

type pendingEvent struct {
	key     string
	payload any
}

func newEmitter(pub EventPublisher, logger *zap.Logger) *emitter {
	return &emitter{pub: pub, logger: logger}
}

func (e *emitter) queue(key string, payload any) {
	e.pending = append(e.pending, pendingEvent{key: key, payload: payload})
}

// flush publishes everything queued. Publish failures are logged, not
// returned: the transaction already committed and the booking state is truth.
func (e *emitter) flush() {
	for _, ev := range e.pending {
		if e.pub == nil {
			continue
		}
		if err := e.pub.Publish(ev.key, ev.payload); err != nil {
			e.logger.Warn("event publish failed",
				zap.String("routing_key", ev.key),
				zap.Error(err),
			)
		}
	}
	e.pending = nil
}

func bookingEvent(b *models.Booking) BookingEvent {
	return BookingEvent{
		BookingRef:  b.Ref.String(),
		Kind:        string(b.Kind),
		HostID:      b.HostID,
		RequesterID: b.RequesterID,
		SessionID:   b.SessionID,
		StartAtUTC:  b.StartAtUTC,
		Status:      string(b.Status),
	}
}
