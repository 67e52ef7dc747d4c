package service

import "errors"

// Validation: malformed input.
var (
	ErrInvalidCapacity = errors.New("capacity must be at least 1")
	ErrInvalidWindow   = errors.New("end must be after start")
	ErrInvalidRule     = errors.New("invalid recurrence rule")
)

// Conflict: the resource was taken or the write would collide.
var (
	ErrDuplicateBooking = errors.New("requester already has an active booking here")
	ErrSlotUnavailable  = errors.New("slot is not available")
	ErrSessionFull      = errors.New("session is full")
	ErrWindowOverlap    = errors.New("window overlaps an existing availability window")
	ErrCapacityLocked   = errors.New("capacity cannot shrink once bookings exist")
	ErrDailyCapReached  = errors.New("daily booking cap reached for this host")
)

// Policy violation: the request breaks a timing rule.
var (
	ErrNoticeTooShort      = errors.New("booking is inside the minimum notice period")
	ErrCancelWindowExpired = errors.New("cancellation window has expired")
	ErrOfferExpired        = errors.New("waitlist offer has expired")
)

// State: the entity is not in a status that permits the operation.
var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotPending        = errors.New("booking is not pending")
	ErrNotConfirmed      = errors.New("booking is not confirmed")
	ErrNotStarted        = errors.New("session has not started yet")
	ErrSessionNotOpen    = errors.New("session is not open for booking")
)

// Not found.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrWindowNotFound  = errors.New("availability window not found")
	ErrEntryNotFound   = errors.New("waitlist entry not found")
	ErrSeriesNotFound  = errors.New("series not found")
)

// IsConflict reports whether err belongs to the conflict category. The
// recurrence expander records these as series gaps instead of failing.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateBooking) ||
		errors.Is(err, ErrSlotUnavailable) ||
		errors.Is(err, ErrSessionFull) ||
		errors.Is(err, ErrWindowOverlap) ||
		errors.Is(err, ErrDailyCapReached)
}

// IsPolicyViolation reports whether err is a timing-rule violation.
func IsPolicyViolation(err error) bool {
	return errors.Is(err, ErrNoticeTooShort) ||
		errors.Is(err, ErrCancelWindowExpired) ||
		errors.Is(err, ErrOfferExpired)
}
