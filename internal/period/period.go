// Package period implements the day-granularity date-range helpers a
// pagination-by-date command uses to narrow an oversized task down into
// smaller-scope siblings (spec.md §4.2, NarrowedDownTasks) and to
// enumerate the days a task should cover.
package period

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Period is an inclusive, day-granularity date range. Both ends are
// truncated to midnight UTC; Start must not be after End.
type Period struct {
	Start time.Time
	End   time.Time
}

// New builds a Period from two dates, truncating both to day
// granularity (UTC midnight) and validating Start <= End.
func New(start, end time.Time) (Period, error) {
	p := Period{Start: truncateToDay(start), End: truncateToDay(end)}
	if p.Start.After(p.End) {
		return Period{}, fmt.Errorf("period: start %s is after end %s", format(p.Start), format(p.End))
	}
	return p, nil
}

// Parse parses two YYYY-MM-DD dates into a Period.
func Parse(start, end string) (Period, error) {
	s, err := time.Parse(dateLayout, start)
	if err != nil {
		return Period{}, fmt.Errorf("period: invalid start date %q: %w", start, err)
	}
	e, err := time.Parse(dateLayout, end)
	if err != nil {
		return Period{}, fmt.Errorf("period: invalid end date %q: %w", end, err)
	}
	return New(s, e)
}

// String formats the period as "YYYY-MM-DD..YYYY-MM-DD".
func (p Period) String() string {
	return fmt.Sprintf("%s..%s", format(p.Start), format(p.End))
}

// Days reports the number of whole days the period spans, inclusive of
// both ends (a single-day period has Days() == 1).
func (p Period) Days() int {
	return int(p.End.Sub(p.Start).Hours()/24) + 1
}

func truncateToDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func format(t time.Time) string {
	return t.Format(dateLayout)
}

// SplitIntoHalves splits p into two adjacent sub-periods that together
// cover exactly p. When p already spans a single day it cannot be
// split further, and both returned halves equal p unchanged - the
// caller (NarrowedDownTasks) must detect this degenerate case itself
// before looping forever.
//
// For an even day count the two halves are equal; for an odd day count
// the first half is the shorter one, e.g. a 3-day period splits into a
// 1-day first half and a 2-day second half.
func SplitIntoHalves(p Period) (first, second Period, err error) {
	days := p.Days()
	if days <= 1 {
		return p, p, nil
	}

	firstDays := days / 2
	firstEnd := p.Start.AddDate(0, 0, firstDays-1)
	secondStart := p.Start.AddDate(0, 0, firstDays)

	first = Period{Start: p.Start, End: firstEnd}
	second = Period{Start: secondStart, End: p.End}
	return first, second, nil
}

// isPowerOfTwo reports whether n is a positive power of two.
func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// SplitIntoParts splits p into exactly partCount adjacent sub-periods
// covering p, by recursively halving. partCount must be a positive
// power of two; anything else is a programmer error, not a runtime
// condition the caller should retry.
func SplitIntoParts(p Period, partCount int) ([]Period, error) {
	if !isPowerOfTwo(partCount) {
		return nil, fmt.Errorf("period: partCount %d is not a positive power of two", partCount)
	}

	parts := []Period{p}
	for len(parts) < partCount {
		next := make([]Period, 0, len(parts)*2)
		for _, cur := range parts {
			a, b, err := SplitIntoHalves(cur)
			if err != nil {
				return nil, err
			}
			next = append(next, a, b)
		}
		parts = next
	}
	return parts, nil
}

// DaysInPeriod enumerates the days in p, starting at p.Start and
// stepping by step days, stopping at the last day that does not exceed
// p.End. step must be positive.
func DaysInPeriod(p Period, step int) ([]time.Time, error) {
	if step <= 0 {
		return nil, fmt.Errorf("period: step %d must be positive", step)
	}

	var days []time.Time
	for d := p.Start; !d.After(p.End); d = d.AddDate(0, 0, step) {
		days = append(days, d)
	}
	return days, nil
}
