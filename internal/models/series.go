package models

import (
	"time"

	"github.com/google/uuid"
)

type SeriesStatus string

const (
	SeriesActive    SeriesStatus = "active"
	SeriesCancelled SeriesStatus = "cancelled"
)

type SeriesFrequency string

const (
	FrequencyWeekly   SeriesFrequency = "weekly"
	FrequencyBiweekly SeriesFrequency = "biweekly"
	FrequencyMonthly  SeriesFrequency = "monthly"
	FrequencyCustom   SeriesFrequency = "custom"
)

// BookingSeries is a recurring-booking template. Its items link the bounded
// set of individual bookings the expander created, including gaps where an
// occurrence could not be booked.
type BookingSeries struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	GroupID     uuid.UUID    `gorm:"type:uuid;uniqueIndex;not null" json:"group_id"`
	RequesterID string       `gorm:"not null;index" json:"requester_id"`
	HostID      string       `gorm:"not null;index" json:"host_id"`
	CourseID    string       `json:"course_id"`
	Kind        BookingKind  `gorm:"type:varchar(20);not null" json:"kind"`
	Status      SeriesStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`

	Frequency  SeriesFrequency `gorm:"type:varchar(20);not null" json:"frequency"`
	Interval   int             `gorm:"not null;default:1" json:"interval"`
	DaysOfWeek string          `json:"days_of_week,omitempty"` // comma-separated, 0=Monday

	// Exactly one of the two termination bounds is set.
	OccurrenceCount *int       `json:"occurrence_count,omitempty"`
	UntilAtUTC      *time.Time `json:"until_at_utc,omitempty"`

	DefaultMeetingLink     string `json:"default_meeting_link,omitempty"`
	DefaultMeetingID       string `json:"default_meeting_id,omitempty"`
	DefaultMeetingPasscode string `json:"default_meeting_passcode,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []SeriesItem `gorm:"foreignKey:SeriesID" json:"items,omitempty"`
}

// SeriesItem is one occurrence slot in a series. BookingID is nil for a gap:
// an occurrence that failed validation and was skipped rather than aborting
// the series.
type SeriesItem struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	SeriesID        uint      `gorm:"not null;uniqueIndex:idx_series_item_occurrence,priority:1" json:"series_id"`
	BookingID       *uint     `json:"booking_id,omitempty"`
	OccurrenceIndex int       `gorm:"not null;uniqueIndex:idx_series_item_occurrence,priority:2" json:"occurrence_index"`
	StartAtUTC      time.Time `gorm:"not null" json:"start_at_utc"`
	GapReason       string    `json:"gap_reason,omitempty"`
	CreatedAt       time.Time `json:"created_at"`

	Booking *Booking `gorm:"foreignKey:BookingID" json:"booking,omitempty"`
}
