package models

import (
	"time"

	"github.com/google/uuid"
)

type BookingKind string

const (
	KindGroup    BookingKind = "group"
	KindOneOnOne BookingKind = "one_on_one"
)

type BookingStatus string

const (
	BookingPending     BookingStatus = "pending"
	BookingConfirmed   BookingStatus = "confirmed"
	BookingDeclined    BookingStatus = "declined"
	BookingCancelled   BookingStatus = "cancelled"
	BookingAttended    BookingStatus = "attended"
	BookingNoShow      BookingStatus = "no_show"
	BookingRescheduled BookingStatus = "rescheduled"
)

// Active reports whether the booking still holds its seat or slot.
func (s BookingStatus) Active() bool {
	return s == BookingPending || s == BookingConfirmed
}

// Terminal statuses permit no further transition.
func (s BookingStatus) Terminal() bool {
	return !s.Active()
}

// CanTransition encodes the ledger state machine:
// pending -> {confirmed, declined}; confirmed -> {cancelled, attended, no_show, rescheduled};
// pending -> cancelled is also allowed (requester withdraws before a decision).
func (s BookingStatus) CanTransition(next BookingStatus) bool {
	switch s {
	case BookingPending:
		return next == BookingConfirmed || next == BookingDeclined || next == BookingCancelled
	case BookingConfirmed:
		return next == BookingCancelled || next == BookingAttended ||
			next == BookingNoShow || next == BookingRescheduled
	default:
		return false
	}
}

// Booking is the unified ledger entry for both kinds of reservation.
// Group bookings reference a Session; one-on-one bookings reference the
// AvailabilityWindow instance backing the slot.
type Booking struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Ref         uuid.UUID     `gorm:"type:uuid;uniqueIndex;not null" json:"ref"`
	Kind        BookingKind   `gorm:"type:varchar(20);not null;index" json:"kind"`
	HostID      string        `gorm:"not null;index" json:"host_id"`
	RequesterID string        `gorm:"not null;index" json:"requester_id"`
	CourseID    string        `json:"course_id"`
	StartAtUTC  time.Time     `gorm:"not null;index" json:"start_at_utc"`
	EndAtUTC    time.Time     `gorm:"not null" json:"end_at_utc"`
	Status      BookingStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	SessionID     *uint `gorm:"index" json:"session_id,omitempty"`
	WindowID      *uint `gorm:"index" json:"window_id,omitempty"`
	SeatsReserved int   `gorm:"not null;default:1" json:"seats_reserved"`

	// Approval audit. RequiredApproval records the policy outcome at booking
	// time; later policy edits do not rewrite it.
	RequiredApproval bool       `gorm:"not null;default:false" json:"required_approval"`
	DecisionAt       *time.Time `json:"decision_at,omitempty"`
	DecidedBy        string     `json:"decided_by,omitempty"`

	CancelledBy  string     `json:"cancelled_by,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	CancelReason string     `json:"cancel_reason,omitempty"`

	RequesterNote string `json:"requester_note,omitempty"`
	HostNote      string `json:"host_note,omitempty"`

	// Set on the old booking when a reschedule creates its replacement.
	RescheduledToID *uint `json:"rescheduled_to_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Session *Session `gorm:"foreignKey:SessionID" json:"session,omitempty"`
}
