package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekdayIndex(t *testing.T) {
	assert.Equal(t, 0, WeekdayIndex(time.Monday))
	assert.Equal(t, 4, WeekdayIndex(time.Friday))
	assert.Equal(t, 5, WeekdayIndex(time.Saturday))
	assert.Equal(t, 6, WeekdayIndex(time.Sunday))
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 9, h)
	assert.Equal(t, 30, m)

	for _, bad := range []string{"", "9", "24:00", "12:60", "ab:cd", "12:30:45x"} {
		_, _, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
}

func TestClockMinutes(t *testing.T) {
	min, err := ClockMinutes("13:45")
	require.NoError(t, err)
	assert.Equal(t, 13*60+45, min)
}

func TestResolveWallAcrossDST(t *testing.T) {
	// US DST starts 2026-03-08. The same wall-clock lesson time lands on a
	// different UTC instant on either side of the transition.
	before := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)
	after := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	got, err := ResolveWall(before, "10:00", "America/New_York")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 6, 15, 0, 0, 0, time.UTC), got)

	got, err = ResolveWall(after, "10:00", "America/New_York")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 9, 14, 0, 0, 0, time.UTC), got)
}

func TestResolveWallDefaultsToUTC(t *testing.T) {
	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	got, err := ResolveWall(day, "08:15", "")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 1, 8, 15, 0, 0, time.UTC), got)
}

func TestResolveWallBadZone(t *testing.T) {
	_, err := ResolveWall(time.Now(), "10:00", "Not/AZone")
	assert.Error(t, err)
}

func TestDayStartUTC(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Bangkok")
	require.NoError(t, err)

	// 01:30 in Bangkok is still the previous day in UTC.
	local := time.Date(2026, 2, 10, 1, 30, 0, 0, loc)
	assert.Equal(t, time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC), DayStartUTC(local))
}
