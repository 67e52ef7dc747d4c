package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func count(n int) *int { return &n }

// Monday 2026-01-05 10:00 UTC.
var anchor = time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

func TestExpandWeekly(t *testing.T) {
	rule := Rule{Frequency: Weekly, Count: count(4)}

	occs, err := rule.Expand(anchor, time.Hour, 52)
	require.NoError(t, err)
	require.Len(t, occs, 4)

	for i, occ := range occs {
		assert.Equal(t, i, occ.Index)
		assert.Equal(t, anchor.AddDate(0, 0, 7*i), occ.Start)
		assert.Equal(t, occ.Start.Add(time.Hour), occ.End)
	}
}

func TestExpandBiweekly(t *testing.T) {
	rule := Rule{Frequency: Biweekly, Count: count(3)}

	occs, err := rule.Expand(anchor, 30*time.Minute, 52)
	require.NoError(t, err)
	require.Len(t, occs, 3)
	assert.Equal(t, anchor, occs[0].Start)
	assert.Equal(t, anchor.AddDate(0, 0, 14), occs[1].Start)
	assert.Equal(t, anchor.AddDate(0, 0, 28), occs[2].Start)
}

func TestExpandMonthly(t *testing.T) {
	rule := Rule{Frequency: Monthly, Count: count(3)}

	occs, err := rule.Expand(anchor, time.Hour, 52)
	require.NoError(t, err)
	require.Len(t, occs, 3)
	assert.Equal(t, anchor, occs[0].Start)
	assert.Equal(t, anchor.AddDate(0, 1, 0), occs[1].Start)
	assert.Equal(t, anchor.AddDate(0, 2, 0), occs[2].Start)
}

func TestExpandMonthlyEndOfMonthClamps(t *testing.T) {
	// An end-of-month anchor pins to the last day of shorter months rather
	// than normalizing past them.
	eom := time.Date(2026, 1, 31, 10, 0, 0, 0, time.UTC)
	rule := Rule{Frequency: Monthly, Count: count(4)}

	occs, err := rule.Expand(eom, time.Hour, 52)
	require.NoError(t, err)
	require.Len(t, occs, 4)
	assert.Equal(t, eom, occs[0].Start)
	assert.Equal(t, time.Date(2026, 2, 28, 10, 0, 0, 0, time.UTC), occs[1].Start)
	assert.Equal(t, time.Date(2026, 3, 31, 10, 0, 0, 0, time.UTC), occs[2].Start)
	assert.Equal(t, time.Date(2026, 4, 30, 10, 0, 0, 0, time.UTC), occs[3].Start)
}

func TestExpandCustomDays(t *testing.T) {
	// Monday and Wednesday each week.
	rule := Rule{Frequency: Custom, DaysOfWeek: []int{0, 2}, Count: count(4)}

	occs, err := rule.Expand(anchor, time.Hour, 52)
	require.NoError(t, err)
	require.Len(t, occs, 4)
	assert.Equal(t, anchor, occs[0].Start)                  // Mon
	assert.Equal(t, anchor.AddDate(0, 0, 2), occs[1].Start) // Wed
	assert.Equal(t, anchor.AddDate(0, 0, 7), occs[2].Start) // Mon
	assert.Equal(t, anchor.AddDate(0, 0, 9), occs[3].Start) // Wed
}

func TestExpandUntilBound(t *testing.T) {
	until := anchor.AddDate(0, 0, 15) // covers occurrences at +0, +7, +14
	rule := Rule{Frequency: Weekly, Until: &until}

	occs, err := rule.Expand(anchor, time.Hour, 52)
	require.NoError(t, err)
	assert.Len(t, occs, 3)
}

func TestExpandHorizonCap(t *testing.T) {
	rule := Rule{Frequency: Weekly, Count: count(100)}

	occs, err := rule.Expand(anchor, time.Hour, 10)
	require.NoError(t, err)
	assert.Len(t, occs, 10)
}

func TestExpandInvalidRules(t *testing.T) {
	until := anchor.AddDate(0, 1, 0)

	cases := []struct {
		name string
		rule Rule
	}{
		{"no bound", Rule{Frequency: Weekly}},
		{"both bounds", Rule{Frequency: Weekly, Count: count(3), Until: &until}},
		{"zero count", Rule{Frequency: Weekly, Count: count(0)}},
		{"custom without days", Rule{Frequency: Custom, Count: count(3)}},
		{"unknown frequency", Rule{Frequency: "daily", Count: count(3)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.rule.Expand(anchor, time.Hour, 52)
			assert.ErrorIs(t, err, ErrInvalidRule)
		})
	}

	_, err := Rule{Frequency: Weekly, Count: count(3)}.Expand(anchor, 0, 52)
	assert.ErrorIs(t, err, ErrInvalidRule, "zero duration")
}

func TestParseDays(t *testing.T) {
	days, err := ParseDays("4, 0,2")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 4}, days)

	days, err = ParseDays("")
	require.NoError(t, err)
	assert.Nil(t, days)

	_, err = ParseDays("7")
	assert.ErrorIs(t, err, ErrInvalidRule)

	_, err = ParseDays("mon")
	assert.ErrorIs(t, err, ErrInvalidRule)
}
