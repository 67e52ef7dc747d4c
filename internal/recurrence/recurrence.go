// Package recurrence expands a series rule into a bounded list of concrete
// occurrence instants. Expansion is pure: the same rule and anchor always
// produce the same occurrences, so callers can re-run it safely.
package recurrence

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Jvictorio09/fluentory-booking/internal/timeutil"
)

var ErrInvalidRule = errors.New("invalid recurrence rule")

type Frequency string

const (
	Weekly   Frequency = "weekly"
	Biweekly Frequency = "biweekly"
	Monthly  Frequency = "monthly"
	Custom   Frequency = "custom"
)

// Rule bounds are mutually exclusive: exactly one of Count or Until is set.
type Rule struct {
	Frequency  Frequency
	Interval   int   // every N weeks/months; ignored for biweekly (fixed 2)
	DaysOfWeek []int // 0=Monday .. 6=Sunday; weekly/custom only
	Count      *int
	Until      *time.Time
}

type Occurrence struct {
	Index int
	Start time.Time
	End   time.Time
}

// ParseDays parses a comma-separated day list ("0,2,4").
func ParseDays(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	var days []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 || n > 6 {
			return nil, ErrInvalidRule
		}
		days = append(days, n)
	}
	sort.Ints(days)
	return days, nil
}

func (r Rule) validate() error {
	if (r.Count == nil) == (r.Until == nil) {
		return ErrInvalidRule
	}
	if r.Count != nil && *r.Count < 1 {
		return ErrInvalidRule
	}
	switch r.Frequency {
	case Weekly, Biweekly, Monthly:
	case Custom:
		if len(r.DaysOfWeek) == 0 {
			return ErrInvalidRule
		}
	default:
		return ErrInvalidRule
	}
	if r.Interval < 0 {
		return ErrInvalidRule
	}
	return nil
}

func (r Rule) interval() int {
	switch {
	case r.Frequency == Biweekly:
		return 2
	case r.Interval > 0:
		return r.Interval
	default:
		return 1
	}
}

// Expand generates occurrences from the anchor instant, capped at horizon
// entries regardless of the rule's own bound. The anchor is occurrence 0 and
// must itself satisfy the rule's day set, if any.
func (r Rule) Expand(anchor time.Time, duration time.Duration, horizon int) ([]Occurrence, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}
	if duration <= 0 || horizon < 1 {
		return nil, ErrInvalidRule
	}

	limit := horizon
	if r.Count != nil && *r.Count < limit {
		limit = *r.Count
	}

	var out []Occurrence
	for _, start := range r.instants(anchor, limit) {
		if r.Until != nil && start.After(*r.Until) {
			break
		}
		out = append(out, Occurrence{
			Index: len(out),
			Start: start,
			End:   start.Add(duration),
		})
	}
	return out, nil
}

func (r Rule) instants(anchor time.Time, limit int) []time.Time {
	if r.Frequency == Monthly {
		out := make([]time.Time, 0, limit)
		for i := 0; len(out) < limit; i += r.interval() {
			out = append(out, addMonthsClamped(anchor, i))
		}
		return out
	}

	days := r.DaysOfWeek
	if len(days) == 0 {
		days = []int{timeutil.WeekdayIndex(anchor.Weekday())}
	}
	inSet := make(map[int]bool, len(days))
	for _, d := range days {
		inSet[d] = true
	}

	stepWeeks := r.interval()
	out := make([]time.Time, 0, limit)
	// Walk day by day from the anchor, skipping weeks outside the interval.
	for day := anchor; len(out) < limit; day = day.AddDate(0, 0, 1) {
		weeks := int(day.Sub(anchor).Hours() / (24 * 7))
		if weeks%stepWeeks != 0 {
			continue
		}
		if inSet[timeutil.WeekdayIndex(day.Weekday())] {
			out = append(out, day)
		}
	}
	return out
}

// addMonthsClamped advances by whole months, pinning an end-of-month anchor
// to the last day of shorter target months. Plain AddDate would normalize
// Jan 31 + 1 month into March.
func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, _ := t.Date()
	first := time.Date(y, m+time.Month(months), 1,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	day := t.Day()
	if last := first.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	return first.AddDate(0, 0, day-1)
}
