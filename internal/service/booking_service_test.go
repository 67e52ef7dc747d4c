package service

import (
	"testing"
	"time"

	"github.com/Jvictorio09/fluentory-booking/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func timePtr(t time.Time) *time.Time { return &t }

func TestResolveSlotOneOff(t *testing.T) {
	start := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	window := &models.AvailabilityWindow{
		Kind:       models.WindowOneOff,
		StartAtUTC: &start,
		EndAtUTC:   &end,
	}

	gotStart, gotEnd, err := resolveSlot(window, start, end)
	require.NoError(t, err)
	assert.Equal(t, start, gotStart)
	assert.Equal(t, end, gotEnd)

	// Zero end defaults to the window end.
	_, gotEnd, err = resolveSlot(window, start, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, end, gotEnd)

	// One-off windows are booked whole.
	_, _, err = resolveSlot(window, start.Add(10*time.Minute), end)
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	_, _, err = resolveSlot(window, start, end.Add(-10*time.Minute))
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestResolveSlotRecurring(t *testing.T) {
	// Mondays 09:00-12:00 New York time.
	window := &models.AvailabilityWindow{
		Kind:             models.WindowRecurring,
		DayOfWeek:        intPtr(0),
		StartTime:        "09:00",
		EndTime:          "12:00",
		TimezoneSnapshot: "America/New_York",
	}

	// Monday 2026-03-02, EST: 09:00 local is 14:00 UTC.
	start := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	gotStart, gotEnd, err := resolveSlot(window, start, start.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, start, gotStart)
	assert.Equal(t, start.Add(time.Hour), gotEnd)

	// A sub-slot inside the occurrence is fine.
	_, _, err = resolveSlot(window, start.Add(30*time.Minute), start.Add(90*time.Minute))
	require.NoError(t, err)

	// Outside the occurrence bounds.
	_, _, err = resolveSlot(window, start.Add(-time.Hour), start)
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	_, _, err = resolveSlot(window, start, start.Add(4*time.Hour))
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	// Tuesday is not in the pattern.
	tuesday := start.AddDate(0, 0, 1)
	_, _, err = resolveSlot(window, tuesday, tuesday.Add(time.Hour))
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestResolveSlotRecurringDST(t *testing.T) {
	window := &models.AvailabilityWindow{
		Kind:             models.WindowRecurring,
		DayOfWeek:        intPtr(0),
		StartTime:        "09:00",
		EndTime:          "12:00",
		TimezoneSnapshot: "America/New_York",
	}

	// Monday 2026-03-09 is after the spring-forward: 09:00 EDT is 13:00 UTC.
	start := time.Date(2026, 3, 9, 13, 0, 0, 0, time.UTC)
	_, _, err := resolveSlot(window, start, start.Add(time.Hour))
	require.NoError(t, err)

	// The pre-DST UTC instant no longer matches the wall clock.
	stale := time.Date(2026, 3, 9, 14, 0, 0, 0, time.UTC)
	_, _, err = resolveSlot(window, stale, stale.Add(3*time.Hour))
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestResolveSlotValidityRange(t *testing.T) {
	validUntil := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	window := &models.AvailabilityWindow{
		Kind:       models.WindowRecurring,
		DayOfWeek:  intPtr(0),
		StartTime:  "09:00",
		EndTime:    "12:00",
		ValidUntil: &validUntil,
	}

	inside := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	_, _, err := resolveSlot(window, inside, inside.Add(time.Hour))
	require.NoError(t, err)

	outside := time.Date(2026, 4, 6, 9, 0, 0, 0, time.UTC)
	_, _, err = resolveSlot(window, outside, outside.Add(time.Hour))
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestCheckMinNotice(t *testing.T) {
	now := time.Now().UTC()
	policy := &models.BookingPolicy{MinNoticeHours: 24}

	assert.ErrorIs(t, checkMinNotice(policy, now, now.Add(2*time.Hour)), ErrNoticeTooShort)
	assert.NoError(t, checkMinNotice(policy, now, now.Add(48*time.Hour)))
	assert.NoError(t, checkMinNotice(&models.BookingPolicy{}, now, now.Add(time.Minute)))
}

func TestCheckCancelWindow(t *testing.T) {
	now := time.Now().UTC()
	policy := &models.BookingPolicy{CancelWindowHours: 24, HostBypassesCancelWindow: true}
	booking := &models.Booking{
		HostID:      "host-1",
		RequesterID: "learner-1",
		StartAtUTC:  now.Add(2 * time.Hour),
	}

	assert.ErrorIs(t, checkCancelWindow(policy, booking, "learner-1", now), ErrCancelWindowExpired)
	assert.NoError(t, checkCancelWindow(policy, booking, "host-1", now), "host bypasses")
	assert.NoError(t, checkCancelWindow(policy, booking, SystemActor, now), "system bypasses")

	policy.HostBypassesCancelWindow = false
	assert.ErrorIs(t, checkCancelWindow(policy, booking, "host-1", now), ErrCancelWindowExpired)

	booking.StartAtUTC = now.Add(48 * time.Hour)
	assert.NoError(t, checkCancelWindow(policy, booking, "learner-1", now))
}

func TestRecurringOverlaps(t *testing.T) {
	existing := &models.AvailabilityWindow{
		Kind:      models.WindowRecurring,
		DayOfWeek: intPtr(0),
		StartTime: "09:00",
		EndTime:   "12:00",
	}
	candidate := &models.AvailabilityWindow{DayOfWeek: intPtr(0)}

	assert.True(t, recurringOverlaps(candidate, existing, 11*60, 13*60))
	assert.False(t, recurringOverlaps(candidate, existing, 12*60, 14*60), "windows touch, no overlap")

	candidate.DayOfWeek = intPtr(1)
	assert.False(t, recurringOverlaps(candidate, existing, 11*60, 13*60), "different weekday")
}

func TestRecurringOverlapsValidityDisjoint(t *testing.T) {
	existing := &models.AvailabilityWindow{
		Kind:       models.WindowRecurring,
		DayOfWeek:  intPtr(0),
		StartTime:  "09:00",
		EndTime:    "12:00",
		ValidUntil: timePtr(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)),
	}
	candidate := &models.AvailabilityWindow{
		DayOfWeek: intPtr(0),
		ValidFrom: timePtr(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)),
	}

	assert.False(t, recurringOverlaps(candidate, existing, 9*60, 12*60))
}

func TestOneOffOverlaps(t *testing.T) {
	start := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	existing := &models.AvailabilityWindow{
		Kind:       models.WindowOneOff,
		StartAtUTC: &start,
		EndAtUTC:   timePtr(start.Add(time.Hour)),
	}

	candidate := &models.AvailabilityWindow{
		StartAtUTC: timePtr(start.Add(30 * time.Minute)),
		EndAtUTC:   timePtr(start.Add(90 * time.Minute)),
	}
	assert.True(t, oneOffOverlaps(candidate, existing))

	candidate.StartAtUTC = timePtr(start.Add(time.Hour))
	candidate.EndAtUTC = timePtr(start.Add(2 * time.Hour))
	assert.False(t, oneOffOverlaps(candidate, existing), "adjacent windows")
}
