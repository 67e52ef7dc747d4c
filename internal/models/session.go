package models

import "time"

type SessionStatus string

const (
	SessionScheduled     SessionStatus = "scheduled"
	SessionBookingClosed SessionStatus = "booking_closed"
	SessionLive          SessionStatus = "live"
	SessionCompleted     SessionStatus = "completed"
	SessionCancelled     SessionStatus = "cancelled"
)

// Session is a scheduled group event with a fixed seat capacity.
type Session struct {
	ID               uint          `gorm:"primaryKey" json:"id"`
	HostID           string        `gorm:"not null;index" json:"host_id"`
	CourseID         string        `gorm:"index" json:"course_id"`
	Title            string        `json:"title"`
	Description      string        `json:"description"`
	StartAtUTC       time.Time     `gorm:"not null;index" json:"start_at_utc"`
	EndAtUTC         time.Time     `gorm:"not null" json:"end_at_utc"`
	TimezoneSnapshot string        `json:"timezone_snapshot"`
	Capacity         int           `gorm:"not null" json:"capacity"`
	WaitlistEnabled  bool          `gorm:"not null;default:false" json:"waitlist_enabled"`
	Status           SessionStatus `gorm:"type:varchar(20);not null;default:'scheduled'" json:"status"`
	MeetingLink      string        `json:"meeting_link"`
	MeetingID        string        `json:"meeting_id"`
	MeetingPasscode  string        `json:"meeting_passcode"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

func (s *Session) DurationMinutes() int {
	return int(s.EndAtUTC.Sub(s.StartAtUTC).Minutes())
}

// BookingOpen reports whether new group bookings may enter at all.
// Fullness is checked separately under the session row lock.
func (s *Session) BookingOpen(now time.Time) bool {
	return s.Status == SessionScheduled && now.Before(s.StartAtUTC)
}

// CanAdvanceTo validates the external lifecycle triggers:
// scheduled -> live -> completed, or -> cancelled from any non-final state.
func (s *Session) CanAdvanceTo(next SessionStatus) bool {
	switch next {
	case SessionLive:
		return s.Status == SessionScheduled || s.Status == SessionBookingClosed
	case SessionCompleted:
		return s.Status == SessionLive
	case SessionCancelled:
		return s.Status != SessionCompleted && s.Status != SessionCancelled
	default:
		return false
	}
}
