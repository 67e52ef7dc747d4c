package dto

import (
	"time"

	"github.com/Jvictorio09/fluentory-booking/internal/models"
	"github.com/Jvictorio09/fluentory-booking/internal/service"
)

type SessionResponse struct {
	ID               uint                 `json:"id"`
	HostID           string               `json:"host_id"`
	CourseID         string               `json:"course_id,omitempty"`
	Title            string               `json:"title"`
	StartAtUTC       time.Time            `json:"start_at_utc"`
	EndAtUTC         time.Time            `json:"end_at_utc"`
	TimezoneSnapshot string               `json:"timezone_snapshot"`
	Capacity         int                  `json:"capacity"`
	WaitlistEnabled  bool                 `json:"waitlist_enabled"`
	Status           models.SessionStatus `json:"status"`
	MeetingLink      string               `json:"meeting_link,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
}

type SessionStatusResponse struct {
	SessionResponse
	SeatsTaken     int64 `json:"seats_taken"`
	RemainingSeats int   `json:"remaining_seats"`
	Waitlisted     int64 `json:"waitlisted_count"`
}

type BookingResponse struct {
	ID               uint                 `json:"id"`
	Ref              string               `json:"ref"`
	Kind             models.BookingKind   `json:"kind"`
	HostID           string               `json:"host_id"`
	RequesterID      string               `json:"requester_id"`
	CourseID         string               `json:"course_id,omitempty"`
	SessionID        *uint                `json:"session_id,omitempty"`
	WindowID         *uint                `json:"window_id,omitempty"`
	StartAtUTC       time.Time            `json:"start_at_utc"`
	EndAtUTC         time.Time            `json:"end_at_utc"`
	Status           models.BookingStatus `json:"status"`
	RequiredApproval bool                 `json:"required_approval"`
	RescheduledToID  *uint                `json:"rescheduled_to_id,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
}

// GroupBookingResponse reports the outcome of a seat request: a booking or,
// when the session was full, a waitlist entry.
type GroupBookingResponse struct {
	Booking  *BookingResponse  `json:"booking,omitempty"`
	Waitlist *WaitlistResponse `json:"waitlist_entry,omitempty"`
}

type WaitlistResponse struct {
	ID          uint                  `json:"id"`
	SessionID   uint                  `json:"session_id"`
	RequesterID string                `json:"requester_id"`
	Status      models.WaitlistStatus `json:"status"`
	CreatedAt   time.Time             `json:"created_at"`
	OfferedAt   *time.Time            `json:"offered_at,omitempty"`
	AcceptedAt  *time.Time            `json:"accepted_at,omitempty"`
	ExpiredAt   *time.Time            `json:"expired_at,omitempty"`
}

type WindowResponse struct {
	ID               uint              `json:"id"`
	HostID           string            `json:"host_id"`
	CourseID         string            `json:"course_id,omitempty"`
	Kind             models.WindowKind `json:"kind"`
	DayOfWeek        *int              `json:"day_of_week,omitempty"`
	StartTime        string            `json:"start_time,omitempty"`
	EndTime          string            `json:"end_time,omitempty"`
	StartAtUTC       *time.Time        `json:"start_at_utc,omitempty"`
	EndAtUTC         *time.Time        `json:"end_at_utc,omitempty"`
	TimezoneSnapshot string            `json:"timezone_snapshot"`
	ValidFrom        *time.Time        `json:"valid_from,omitempty"`
	ValidUntil       *time.Time        `json:"valid_until,omitempty"`
	IsBlocked        bool              `json:"is_blocked"`
	BlockedReason    string            `json:"blocked_reason,omitempty"`
	IsConsumed       bool              `json:"is_consumed"`
}

type PolicyResponse struct {
	HostID                   string `json:"host_id"`
	CourseID                 string `json:"course_id,omitempty"`
	RequiresApprovalGroup    bool   `json:"requires_approval_group"`
	RequiresApprovalOneOnOne bool   `json:"requires_approval_one_on_one"`
	MinNoticeHours           int    `json:"min_notice_hours"`
	CancelWindowHours        int    `json:"cancel_window_hours"`
	BufferBeforeMinutes      int    `json:"buffer_before_minutes"`
	BufferAfterMinutes       int    `json:"buffer_after_minutes"`
	MaxBookingsPerDay        *int   `json:"max_bookings_per_day,omitempty"`
	OfferWindowHours         int    `json:"offer_window_hours"`
	HostBypassesCancelWindow bool   `json:"host_bypasses_cancel_window"`
}

type SeriesItemResponse struct {
	OccurrenceIndex int       `json:"occurrence_index"`
	StartAtUTC      time.Time `json:"start_at_utc"`
	BookingID       *uint     `json:"booking_id,omitempty"`
	GapReason       string    `json:"gap_reason,omitempty"`
}

type SeriesResponse struct {
	ID          uint                   `json:"id"`
	GroupID     string                 `json:"group_id"`
	RequesterID string                 `json:"requester_id"`
	HostID      string                 `json:"host_id"`
	CourseID    string                 `json:"course_id,omitempty"`
	Kind        models.BookingKind     `json:"kind"`
	Status      models.SeriesStatus    `json:"status"`
	Frequency   models.SeriesFrequency `json:"frequency"`
	Items       []SeriesItemResponse   `json:"items"`
}

type SweepResponse struct {
	Expired int `json:"expired"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToSessionResponse(s *models.Session) SessionResponse {
	return SessionResponse{
		ID:               s.ID,
		HostID:           s.HostID,
		CourseID:         s.CourseID,
		Title:            s.Title,
		StartAtUTC:       s.StartAtUTC,
		EndAtUTC:         s.EndAtUTC,
		TimezoneSnapshot: s.TimezoneSnapshot,
		Capacity:         s.Capacity,
		WaitlistEnabled:  s.WaitlistEnabled,
		Status:           s.Status,
		MeetingLink:      s.MeetingLink,
		CreatedAt:        s.CreatedAt,
	}
}

func ToSessionStatusResponse(v *service.SessionStatusView) SessionStatusResponse {
	return SessionStatusResponse{
		SessionResponse: ToSessionResponse(v.Session),
		SeatsTaken:      v.SeatsTaken,
		RemainingSeats:  v.RemainingSeats,
		Waitlisted:      v.Waiting,
	}
}

func ToBookingResponse(b *models.Booking) BookingResponse {
	return BookingResponse{
		ID:               b.ID,
		Ref:              b.Ref.String(),
		Kind:             b.Kind,
		HostID:           b.HostID,
		RequesterID:      b.RequesterID,
		CourseID:         b.CourseID,
		SessionID:        b.SessionID,
		WindowID:         b.WindowID,
		StartAtUTC:       b.StartAtUTC,
		EndAtUTC:         b.EndAtUTC,
		Status:           b.Status,
		RequiredApproval: b.RequiredApproval,
		RescheduledToID:  b.RescheduledToID,
		CreatedAt:        b.CreatedAt,
	}
}

func ToWaitlistResponse(e *models.WaitlistEntry) WaitlistResponse {
	return WaitlistResponse{
		ID:          e.ID,
		SessionID:   e.SessionID,
		RequesterID: e.RequesterID,
		Status:      e.Status,
		CreatedAt:   e.CreatedAt,
		OfferedAt:   e.OfferedAt,
		AcceptedAt:  e.AcceptedAt,
		ExpiredAt:   e.ExpiredAt,
	}
}

func ToGroupBookingResponse(r *service.GroupBookingResult) GroupBookingResponse {
	var resp GroupBookingResponse
	if r.Booking != nil {
		b := ToBookingResponse(r.Booking)
		resp.Booking = &b
	}
	if r.WaitlistEntry != nil {
		w := ToWaitlistResponse(r.WaitlistEntry)
		resp.Waitlist = &w
	}
	return resp
}

func ToWindowResponse(w *models.AvailabilityWindow) WindowResponse {
	return WindowResponse{
		ID:               w.ID,
		HostID:           w.HostID,
		CourseID:         w.CourseID,
		Kind:             w.Kind,
		DayOfWeek:        w.DayOfWeek,
		StartTime:        w.StartTime,
		EndTime:          w.EndTime,
		StartAtUTC:       w.StartAtUTC,
		EndAtUTC:         w.EndAtUTC,
		TimezoneSnapshot: w.TimezoneSnapshot,
		ValidFrom:        w.ValidFrom,
		ValidUntil:       w.ValidUntil,
		IsBlocked:        w.IsBlocked,
		BlockedReason:    w.BlockedReason,
		IsConsumed:       w.IsConsumed,
	}
}

func ToPolicyResponse(p *models.BookingPolicy) PolicyResponse {
	return PolicyResponse{
		HostID:                   p.HostID,
		CourseID:                 p.CourseID,
		RequiresApprovalGroup:    p.RequiresApprovalGroup,
		RequiresApprovalOneOnOne: p.RequiresApprovalOneOnOne,
		MinNoticeHours:           p.MinNoticeHours,
		CancelWindowHours:        p.CancelWindowHours,
		BufferBeforeMinutes:      p.BufferBeforeMinutes,
		BufferAfterMinutes:       p.BufferAfterMinutes,
		MaxBookingsPerDay:        p.MaxBookingsPerDay,
		OfferWindowHours:         p.OfferWindowHours,
		HostBypassesCancelWindow: p.HostBypassesCancelWindow,
	}
}

func ToSeriesResponse(s *models.BookingSeries) SeriesResponse {
	items := make([]SeriesItemResponse, len(s.Items))
	for i, item := range s.Items {
		items[i] = SeriesItemResponse{
			OccurrenceIndex: item.OccurrenceIndex,
			StartAtUTC:      item.StartAtUTC,
			BookingID:       item.BookingID,
			GapReason:       item.GapReason,
		}
	}
	return SeriesResponse{
		ID:          s.ID,
		GroupID:     s.GroupID.String(),
		RequesterID: s.RequesterID,
		HostID:      s.HostID,
		CourseID:    s.CourseID,
		Kind:        s.Kind,
		Status:      s.Status,
		Frequency:   s.Frequency,
		Items:       items,
	}
}
