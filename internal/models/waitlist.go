package models

import "time"

type WaitlistStatus string

const (
	WaitlistWaiting  WaitlistStatus = "waiting"
	WaitlistOffered  WaitlistStatus = "offered"
	WaitlistAccepted WaitlistStatus = "accepted"
	WaitlistExpired  WaitlistStatus = "expired"
)

// WaitlistEntry queues a requester for a full session. Entries are promoted
// FIFO by creation time, ties broken by id ascending.
type WaitlistEntry struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	SessionID   uint           `gorm:"not null;index" json:"session_id"`
	RequesterID string         `gorm:"not null" json:"requester_id"`
	Status      WaitlistStatus `gorm:"type:varchar(20);not null;default:'waiting';index" json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	OfferedAt   *time.Time     `json:"offered_at,omitempty"`
	AcceptedAt  *time.Time     `json:"accepted_at,omitempty"`
	ExpiredAt   *time.Time     `json:"expired_at,omitempty"`
}

// OfferExpiresAt returns the deadline for accepting an offered seat.
func (e *WaitlistEntry) OfferExpiresAt(offerWindow time.Duration) time.Time {
	if e.OfferedAt == nil {
		return time.Time{}
	}
	return e.OfferedAt.Add(offerWindow)
}
