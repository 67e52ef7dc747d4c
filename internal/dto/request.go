package dto

import "time"

type CreateSessionRequest struct {
	HostID           string    `json:"host_id"`
	CourseID         string    `json:"course_id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	StartAtUTC       time.Time `json:"start_at_utc"`
	EndAtUTC         time.Time `json:"end_at_utc"`
	TimezoneSnapshot string    `json:"timezone_snapshot"`
	Capacity         int       `json:"capacity"`
	WaitlistEnabled  bool      `json:"waitlist_enabled"`
	MeetingLink      string    `json:"meeting_link"`
	MeetingID        string    `json:"meeting_id"`
	MeetingPasscode  string    `json:"meeting_passcode"`
}

type AdvanceSessionRequest struct {
	Status string `json:"status"`
}

type UpdateCapacityRequest struct {
	Capacity int `json:"capacity"`
}

type CreateRecurringWindowRequest struct {
	CourseID         string     `json:"course_id"`
	DayOfWeek        *int       `json:"day_of_week"`
	StartTime        string     `json:"start_time"`
	EndTime          string     `json:"end_time"`
	TimezoneSnapshot string     `json:"timezone_snapshot"`
	ValidFrom        *time.Time `json:"valid_from"`
	ValidUntil       *time.Time `json:"valid_until"`
}

type CreateOneOffWindowRequest struct {
	CourseID         string     `json:"course_id"`
	StartAtUTC       *time.Time `json:"start_at_utc"`
	EndAtUTC         *time.Time `json:"end_at_utc"`
	TimezoneSnapshot string     `json:"timezone_snapshot"`
}

type BlockWindowRequest struct {
	Reason string `json:"reason"`
}

type CreateGroupBookingRequest struct {
	RequesterID string `json:"requester_id"`
	Note        string `json:"note"`
}

type CreateOneOnOneBookingRequest struct {
	WindowID    uint      `json:"window_id"`
	RequesterID string    `json:"requester_id"`
	StartAtUTC  time.Time `json:"start_at_utc"`
	EndAtUTC    time.Time `json:"end_at_utc"`
	Note        string    `json:"note"`
}

type DecisionRequest struct {
	HostID string `json:"host_id"`
	Note   string `json:"note"`
}

type CancelBookingRequest struct {
	ActorID string `json:"actor_id"`
	Reason  string `json:"reason"`
}

type RescheduleBookingRequest struct {
	ActorID      string    `json:"actor_id"`
	NewSessionID uint      `json:"new_session_id"`
	NewWindowID  uint      `json:"new_window_id"`
	StartAtUTC   time.Time `json:"start_at_utc"`
	EndAtUTC     time.Time `json:"end_at_utc"`
}

type AttendanceRequest struct {
	HostID   string `json:"host_id"`
	Attended bool   `json:"attended"`
}

type AcceptOfferRequest struct {
	RequesterID string `json:"requester_id"`
}

type UpsertPolicyRequest struct {
	CourseID                 string `json:"course_id"`
	RequiresApprovalGroup    bool   `json:"requires_approval_group"`
	RequiresApprovalOneOnOne bool   `json:"requires_approval_one_on_one"`
	MinNoticeHours           int    `json:"min_notice_hours"`
	CancelWindowHours        int    `json:"cancel_window_hours"`
	BufferBeforeMinutes      int    `json:"buffer_before_minutes"`
	BufferAfterMinutes       int    `json:"buffer_after_minutes"`
	MaxBookingsPerDay        *int   `json:"max_bookings_per_day"`
	OfferWindowHours         int    `json:"offer_window_hours"`
	HostBypassesCancelWindow *bool  `json:"host_bypasses_cancel_window"`
}

type CreateSeriesRequest struct {
	RequesterID      string     `json:"requester_id"`
	HostID           string     `json:"host_id"`
	CourseID         string     `json:"course_id"`
	Kind             string     `json:"kind"`
	Frequency        string     `json:"frequency"`
	Interval         int        `json:"interval"`
	DaysOfWeek       string     `json:"days_of_week"`
	Count            *int       `json:"count"`
	Until            *time.Time `json:"until"`
	AnchorStartAtUTC time.Time  `json:"anchor_start_at_utc"`
	DurationMinutes  int        `json:"duration_minutes"`
	Note             string     `json:"note"`
}

type CancelSeriesRequest struct {
	ActorID string `json:"actor_id"`
}
