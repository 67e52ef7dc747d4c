//go:build integration

package service

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Jvictorio09/fluentory-booking/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 30 learners race for 20 seats with a waitlist enabled: exactly 20 confirm
// and 10 queue, never more.
func TestConcurrentGroupBooking(t *testing.T) {
	cleanTables()
	session := createTestSession(t, 20, true)
	eng := newTestEngine()

	total := 30
	var wg sync.WaitGroup
	results := make(chan *GroupBookingResult, total)
	errs := make(chan error, total)

	wg.Add(total)
	for i := 0; i < total; i++ {
		go func(idx int) {
			defer wg.Done()
			result, err := eng.bookings.RequestGroupBooking(t.Context(), GroupBookingRequest{
				SessionID:   session.ID,
				RequesterID: fmt.Sprintf("learner-%03d", idx),
			})
			if err != nil {
				errs <- err
				return
			}
			results <- result
		}(i)
	}
	wg.Wait()
	close(results)
	close(errs)

	var confirmed, waitlisted int
	for r := range results {
		if r.Booking != nil {
			confirmed++
		}
		if r.WaitlistEntry != nil {
			waitlisted++
		}
	}
	assert.Equal(t, 20, confirmed)
	assert.Equal(t, 10, waitlisted)
	assert.Empty(t, errs)

	var dbConfirmed int64
	testDB.Model(&models.Booking{}).
		Where("session_id = ? AND status = ?", session.ID, models.BookingConfirmed).
		Count(&dbConfirmed)
	assert.Equal(t, int64(20), dbConfirmed)
}

func TestGroupBookingDuplicateRejected(t *testing.T) {
	cleanTables()
	session := createTestSession(t, 5, false)
	eng := newTestEngine()

	_, err := eng.bookings.RequestGroupBooking(t.Context(), GroupBookingRequest{
		SessionID: session.ID, RequesterID: "learner-dup",
	})
	require.NoError(t, err)

	_, err = eng.bookings.RequestGroupBooking(t.Context(), GroupBookingRequest{
		SessionID: session.ID, RequesterID: "learner-dup",
	})
	assert.ErrorIs(t, err, ErrDuplicateBooking)
}

func TestFullSessionWithoutWaitlistRejects(t *testing.T) {
	cleanTables()
	session := createTestSession(t, 1, false)
	eng := newTestEngine()

	_, err := eng.bookings.RequestGroupBooking(t.Context(), GroupBookingRequest{
		SessionID: session.ID, RequesterID: "learner-1",
	})
	require.NoError(t, err)

	_, err = eng.bookings.RequestGroupBooking(t.Context(), GroupBookingRequest{
		SessionID: session.ID, RequesterID: "learner-2",
	})
	assert.ErrorIs(t, err, ErrSessionFull, "a session closed on fill reads as full, not closed")
}

// Cancelling a confirmed seat offers it to the waitlist head in the same
// transaction, and the offered seat cannot be sniped by a direct request.
func TestCancelPromotesWaitlistHead(t *testing.T) {
	cleanTables()
	session := createTestSession(t, 1, true)
	eng := newTestEngine()

	first, err := eng.bookings.RequestGroupBooking(t.Context(), GroupBookingRequest{
		SessionID: session.ID, RequesterID: "learner-1",
	})
	require.NoError(t, err)
	require.NotNil(t, first.Booking)

	second, err := eng.bookings.RequestGroupBooking(t.Context(), GroupBookingRequest{
		SessionID: session.ID, RequesterID: "learner-2",
	})
	require.NoError(t, err)
	require.NotNil(t, second.WaitlistEntry)

	third, err := eng.bookings.RequestGroupBooking(t.Context(), GroupBookingRequest{
		SessionID: session.ID, RequesterID: "learner-3",
	})
	require.NoError(t, err)
	require.NotNil(t, third.WaitlistEntry)

	_, err = eng.bookings.Cancel(t.Context(), first.Booking.ID, "learner-1", "")
	require.NoError(t, err)

	entry, err := eng.waitlist.GetEntry(t.Context(), second.WaitlistEntry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WaitlistOffered, entry.Status, "FIFO head gets the offer")

	later, err := eng.waitlist.GetEntry(t.Context(), third.WaitlistEntry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WaitlistWaiting, later.Status)

	// The offer reserves the seat.
	_, err = eng.bookings.RequestGroupBooking(t.Context(), GroupBookingRequest{
		SessionID: session.ID, RequesterID: "learner-4",
	})
	require.NoError(t, err)
	entries, err := eng.waitlist.ListBySession(t.Context(), session.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 3, "learner-4 joins the queue instead of taking the offered seat")

	// Accepting converts the offer into a confirmed booking.
	booking, err := eng.waitlist.AcceptOffer(t.Context(), entry.ID, "learner-2")
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, booking.Status)
}

func TestConcurrentOneOnOneSlot(t *testing.T) {
	cleanTables()
	start := time.Now().UTC().Add(72 * time.Hour).Truncate(time.Hour)
	window := createTestOneOffWindow(t, start)
	eng := newTestEngine()

	total := 10
	var wg sync.WaitGroup
	errs := make(chan error, total)

	wg.Add(total)
	for i := 0; i < total; i++ {
		go func(idx int) {
			defer wg.Done()
			_, err := eng.bookings.RequestOneOnOneBooking(t.Context(), OneOnOneBookingRequest{
				WindowID:    window.ID,
				RequesterID: fmt.Sprintf("learner-%02d", idx),
				StartAtUTC:  start,
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	var won int
	for err := range errs {
		if err == nil {
			won++
		}
	}
	assert.Equal(t, 1, won, "exactly one booking wins the slot")

	updated, err := eng.windows.GetWindow(t.Context(), window.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsConsumed)
}

func TestCancelRestoresOneOffWindow(t *testing.T) {
	cleanTables()
	start := time.Now().UTC().Add(72 * time.Hour).Truncate(time.Hour)
	window := createTestOneOffWindow(t, start)
	eng := newTestEngine()

	booking, err := eng.bookings.RequestOneOnOneBooking(t.Context(), OneOnOneBookingRequest{
		WindowID: window.ID, RequesterID: "learner-1", StartAtUTC: start,
	})
	require.NoError(t, err)

	_, err = eng.bookings.Cancel(t.Context(), booking.ID, "learner-1", "")
	require.NoError(t, err)

	updated, err := eng.windows.GetWindow(t.Context(), window.ID)
	require.NoError(t, err)
	assert.False(t, updated.IsConsumed)
}

// A reschedule to an unbookable target must leave the original booking
// untouched.
func TestRescheduleAtomicity(t *testing.T) {
	cleanTables()
	start := time.Now().UTC().Add(72 * time.Hour).Truncate(time.Hour)
	window := createTestOneOffWindow(t, start)
	eng := newTestEngine()

	booking, err := eng.bookings.RequestOneOnOneBooking(t.Context(), OneOnOneBookingRequest{
		WindowID: window.ID, RequesterID: "learner-1", StartAtUTC: start,
	})
	require.NoError(t, err)

	_, err = eng.bookings.Reschedule(t.Context(), booking.ID, RescheduleRequest{
		ActorID:     "learner-1",
		NewWindowID: 99999,
		StartAtUTC:  start.AddDate(0, 0, 1),
	})
	require.Error(t, err)

	kept, err := eng.bookings.GetBooking(t.Context(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, kept.Status, "old booking survives the failed reschedule")

	// A valid target moves the booking and links the replacement.
	newStart := start.AddDate(0, 0, 2)
	newWindow := createTestOneOffWindow(t, newStart)
	replacement, err := eng.bookings.Reschedule(t.Context(), booking.ID, RescheduleRequest{
		ActorID:     "learner-1",
		NewWindowID: newWindow.ID,
		StartAtUTC:  newStart,
	})
	require.NoError(t, err)

	old, err := eng.bookings.GetBooking(t.Context(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingRescheduled, old.Status)
	require.NotNil(t, old.RescheduledToID)
	assert.Equal(t, replacement.ID, *old.RescheduledToID)

	freed, err := eng.windows.GetWindow(t.Context(), window.ID)
	require.NoError(t, err)
	assert.False(t, freed.IsConsumed, "original slot reopens")
}

func TestCapacityIncreasePromotesWaiting(t *testing.T) {
	cleanTables()
	session := createTestSession(t, 1, true)
	eng := newTestEngine()

	_, err := eng.bookings.RequestGroupBooking(t.Context(), GroupBookingRequest{
		SessionID: session.ID, RequesterID: "learner-1",
	})
	require.NoError(t, err)

	for i := 2; i <= 4; i++ {
		r, err := eng.bookings.RequestGroupBooking(t.Context(), GroupBookingRequest{
			SessionID: session.ID, RequesterID: fmt.Sprintf("learner-%d", i),
		})
		require.NoError(t, err)
		require.NotNil(t, r.WaitlistEntry)
	}

	_, err = eng.sessions.UpdateCapacity(t.Context(), session.ID, 3)
	require.NoError(t, err)

	entries, err := eng.waitlist.ListBySession(t.Context(), session.ID)
	require.NoError(t, err)

	var offered int
	for _, e := range entries {
		if e.Status == models.WaitlistOffered {
			offered++
		}
	}
	assert.Equal(t, 2, offered, "two freed seats produce two offers")
}

func TestCapacityShrinkRejectedWithBookings(t *testing.T) {
	cleanTables()
	session := createTestSession(t, 5, false)
	eng := newTestEngine()

	_, err := eng.bookings.RequestGroupBooking(t.Context(), GroupBookingRequest{
		SessionID: session.ID, RequesterID: "learner-1",
	})
	require.NoError(t, err)

	_, err = eng.sessions.UpdateCapacity(t.Context(), session.ID, 2)
	assert.ErrorIs(t, err, ErrCapacityLocked)
}

func TestApprovalFlow(t *testing.T) {
	cleanTables()
	eng := newTestEngine()
	require.NoError(t, eng.policies.UpsertPolicy(t.Context(), &models.BookingPolicy{
		HostID:                "host-1",
		RequiresApprovalGroup: true,
	}))
	session := createTestSession(t, 5, false)

	result, err := eng.bookings.RequestGroupBooking(t.Context(), GroupBookingRequest{
		SessionID: session.ID, RequesterID: "learner-1",
	})
	require.NoError(t, err)
	require.NotNil(t, result.Booking)
	assert.Equal(t, models.BookingPending, result.Booking.Status)

	approved, err := eng.bookings.Approve(t.Context(), result.Booking.ID, "host-1", "welcome")
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, approved.Status)
	assert.Equal(t, "host-1", approved.DecidedBy)

	_, err = eng.bookings.Approve(t.Context(), result.Booking.ID, "host-1", "")
	assert.ErrorIs(t, err, ErrNotPending)

	// Marking attendance must not disturb the approval audit trail.
	require.NoError(t, testDB.Model(&models.Booking{}).
		Where("id = ?", approved.ID).
		Updates(map[string]any{
			"start_at_utc": time.Now().UTC().Add(-2 * time.Hour),
			"end_at_utc":   time.Now().UTC().Add(-1 * time.Hour),
		}).Error)

	marked, err := eng.bookings.MarkAttendance(t.Context(), approved.ID, "host-1", true)
	require.NoError(t, err)
	assert.Equal(t, models.BookingAttended, marked.Status)
	assert.Equal(t, "host-1", marked.DecidedBy)
	require.NotNil(t, marked.DecisionAt)
	assert.WithinDuration(t, *approved.DecisionAt, *marked.DecisionAt, time.Second,
		"the approval instant survives attendance")
}

// A pending request blocks a capacity shrink even though it holds no seat
// yet.
func TestCapacityShrinkRejectedWithPendingBooking(t *testing.T) {
	cleanTables()
	eng := newTestEngine()
	require.NoError(t, eng.policies.UpsertPolicy(t.Context(), &models.BookingPolicy{
		HostID:                "host-1",
		RequiresApprovalGroup: true,
	}))
	session := createTestSession(t, 5, false)

	result, err := eng.bookings.RequestGroupBooking(t.Context(), GroupBookingRequest{
		SessionID: session.ID, RequesterID: "learner-1",
	})
	require.NoError(t, err)
	require.Equal(t, models.BookingPending, result.Booking.Status)

	_, err = eng.sessions.UpdateCapacity(t.Context(), session.ID, 2)
	assert.ErrorIs(t, err, ErrCapacityLocked)
}

func TestSeriesCreatesBookingsAndGaps(t *testing.T) {
	cleanTables()
	eng := newTestEngine()

	// Windows for the first two Mondays only; the third occurrence has no
	// availability and must become a gap.
	anchor := nextMonday(time.Now().UTC().Add(72 * time.Hour))
	createTestOneOffWindow(t, anchor)
	createTestOneOffWindow(t, anchor.AddDate(0, 0, 7))

	three := 3
	series, err := eng.series.CreateSeries(t.Context(), CreateSeriesRequest{
		RequesterID:      "learner-1",
		HostID:           "host-1",
		Kind:             models.KindOneOnOne,
		Frequency:        models.FrequencyWeekly,
		Count:            &three,
		AnchorStartAtUTC: anchor,
		DurationMinutes:  60,
	})
	require.NoError(t, err)
	require.Len(t, series.Items, 3)

	assert.NotNil(t, series.Items[0].BookingID)
	assert.NotNil(t, series.Items[1].BookingID)
	assert.Nil(t, series.Items[2].BookingID)
	assert.NotEmpty(t, series.Items[2].GapReason)

	// Cancelling the series frees both booked slots.
	cancelled, err := eng.series.CancelSeries(t.Context(), series.ID, "learner-1")
	require.NoError(t, err)
	assert.Equal(t, models.SeriesCancelled, cancelled.Status)

	booking, err := eng.bookings.GetBooking(t.Context(), *series.Items[0].BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, booking.Status)
}

func TestSeriesItemOccurrenceUnique(t *testing.T) {
	cleanTables()
	series := &models.BookingSeries{
		GroupID:     uuid.New(),
		RequesterID: "learner-1",
		HostID:      "host-1",
		Kind:        models.KindOneOnOne,
		Status:      models.SeriesActive,
		Frequency:   models.FrequencyWeekly,
		Interval:    1,
	}
	require.NoError(t, testDB.Create(series).Error)

	start := time.Now().UTC().Add(72 * time.Hour)
	require.NoError(t, testDB.Create(&models.SeriesItem{
		SeriesID: series.ID, OccurrenceIndex: 0, StartAtUTC: start,
	}).Error)

	err := testDB.Create(&models.SeriesItem{
		SeriesID: series.ID, OccurrenceIndex: 0, StartAtUTC: start.AddDate(0, 0, 7),
	}).Error
	assert.Error(t, err, "a second item with the same occurrence index is rejected")
}

func nextMonday(after time.Time) time.Time {
	day := after.Truncate(time.Hour)
	for day.Weekday() != time.Monday {
		day = day.AddDate(0, 0, 1)
	}
	return day
}
