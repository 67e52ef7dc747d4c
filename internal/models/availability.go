package models

import "time"

type WindowKind string

const (
	WindowRecurring WindowKind = "recurring"
	WindowOneOff    WindowKind = "one_off"
)

// AvailabilityWindow is a host's bookable time window. Recurring windows are
// a weekly wall-clock pattern anchored in the host's timezone snapshot;
// one-off windows are concrete UTC instants.
type AvailabilityWindow struct {
	ID       uint       `gorm:"primaryKey" json:"id"`
	HostID   string     `gorm:"not null;index" json:"host_id"`
	CourseID string     `json:"course_id"`
	Kind     WindowKind `gorm:"type:varchar(20);not null" json:"kind"`

	// Recurring: 0=Monday .. 6=Sunday, wall-clock "HH:MM" in TimezoneSnapshot.
	DayOfWeek *int   `json:"day_of_week,omitempty"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`

	// One-off: concrete UTC instants.
	StartAtUTC *time.Time `gorm:"index" json:"start_at_utc,omitempty"`
	EndAtUTC   *time.Time `json:"end_at_utc,omitempty"`

	TimezoneSnapshot string `gorm:"not null;default:'UTC'" json:"timezone_snapshot"`

	// Validity range for recurring windows (inclusive dates, UTC midnight).
	ValidFrom  *time.Time `json:"valid_from,omitempty"`
	ValidUntil *time.Time `json:"valid_until,omitempty"`

	IsBlocked     bool   `gorm:"not null;default:false" json:"is_blocked"`
	BlockedReason string `json:"blocked_reason,omitempty"`

	// One-off windows are consumed by a confirmed booking and restored when
	// that booking is cancelled.
	IsConsumed bool `gorm:"not null;default:false" json:"is_consumed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InValidity reports whether the given date falls inside the recurring
// window's valid_from/valid_until range. Open bounds pass.
func (w *AvailabilityWindow) InValidity(day time.Time) bool {
	if w.ValidFrom != nil && day.Before(*w.ValidFrom) {
		return false
	}
	if w.ValidUntil != nil && day.After(*w.ValidUntil) {
		return false
	}
	return true
}
