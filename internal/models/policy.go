package models

import "time"

// BookingPolicy holds per-host booking rules, optionally scoped to a course.
// An empty CourseID marks the host's default row; engine-wide defaults apply
// when no row matches at all.
type BookingPolicy struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	HostID   string `gorm:"not null;uniqueIndex:idx_policy_host_course" json:"host_id"`
	CourseID string `gorm:"not null;default:'';uniqueIndex:idx_policy_host_course" json:"course_id"`

	RequiresApprovalGroup    bool `gorm:"not null;default:false" json:"requires_approval_group"`
	RequiresApprovalOneOnOne bool `gorm:"not null;default:false" json:"requires_approval_one_on_one"`

	MinNoticeHours      int  `gorm:"not null;default:0" json:"min_notice_hours"`
	CancelWindowHours   int  `gorm:"not null;default:0" json:"cancel_window_hours"`
	BufferBeforeMinutes int  `gorm:"not null;default:0" json:"buffer_before_minutes"`
	BufferAfterMinutes  int  `gorm:"not null;default:0" json:"buffer_after_minutes"`
	MaxBookingsPerDay   *int `json:"max_bookings_per_day,omitempty"`

	OfferWindowHours         int  `gorm:"not null;default:24" json:"offer_window_hours"`
	HostBypassesCancelWindow bool `gorm:"not null;default:true" json:"host_bypasses_cancel_window"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultPolicy is the engine-wide fallback: no approval, no timing
// constraints, 24h offer window, hosts may cancel at any time.
func DefaultPolicy(hostID string) *BookingPolicy {
	return &BookingPolicy{
		HostID:                   hostID,
		OfferWindowHours:         24,
		HostBypassesCancelWindow: true,
	}
}

func (p *BookingPolicy) RequiresApproval(kind BookingKind) bool {
	if kind == KindGroup {
		return p.RequiresApprovalGroup
	}
	return p.RequiresApprovalOneOnOne
}

func (p *BookingPolicy) OfferWindow() time.Duration {
	return time.Duration(p.OfferWindowHours) * time.Hour
}
