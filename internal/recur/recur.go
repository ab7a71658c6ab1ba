// Package recur expands recurrence patterns into concrete occurrence
// timestamps. Expansion is pure: no side effects, deterministic for a given
// seed, pattern and horizon.
package recur

import (
	"math"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/parishplan/parishplan/internal/pattern"
)

// MaxSeriesOccurrences is the hard ceiling on occurrences generated in one
// expansion, so a malformed pattern can never run away.
const MaxSeriesOccurrences = 52

// Expand returns the ordered occurrence timestamps implied by the pattern,
// seeded at start. The seed itself is never re-emitted; callers treat it as
// the root's own instant. Expansion stops at the pattern's end date if it has
// one, otherwise at start + horizonMonths, and always at the safety cap
// min(52, ceil(horizonMonths * 4.33)) or the pattern's own occurrence cap.
//
// An unrecognized pattern kind yields an empty sequence rather than an
// error: it is reachable from untrusted persisted strings and must not
// abort a batch covering other series.
func Expand(start time.Time, p pattern.Pattern, horizonMonths int) []time.Time {
	if horizonMonths < 1 {
		horizonMonths = 1
	}
	windowEnd := start.AddDate(0, horizonMonths, 0)
	if p.EndDate != nil {
		windowEnd = endOfDay(*p.EndDate, start.Location())
	}
	return expand(start, p, windowEnd, safetyCap(horizonMonths))
}

// ExpandUntil expands seeded at seed (typically a series' latest materialized
// occurrence, so weekday and day-of-month phase is preserved) up to the given
// window end. A pattern end date earlier than the window wins.
func ExpandUntil(seed time.Time, p pattern.Pattern, until time.Time) []time.Time {
	windowEnd := until
	if p.EndDate != nil {
		if end := endOfDay(*p.EndDate, seed.Location()); end.Before(windowEnd) {
			windowEnd = end
		}
	}
	return expand(seed, p, windowEnd, MaxSeriesOccurrences)
}

func safetyCap(horizonMonths int) int {
	c := int(math.Ceil(float64(horizonMonths) * 4.33))
	if c > MaxSeriesOccurrences {
		c = MaxSeriesOccurrences
	}
	if c < 1 {
		c = 1
	}
	return c
}

// endOfDay interprets a date-precision end date as inclusive of that day.
func endOfDay(d time.Time, loc *time.Location) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, loc)
}

func expand(seed time.Time, p pattern.Pattern, windowEnd time.Time, limit int) []time.Time {
	if p.MaxOccurrences > 0 && p.MaxOccurrences < limit {
		limit = p.MaxOccurrences
	}

	next := iterator(seed, p)
	if next == nil {
		return nil
	}

	var out []time.Time
	last := seed
	for {
		t, ok := next()
		if !ok || t.After(windowEnd) {
			break
		}
		// Never re-emit the seed, and keep the sequence strictly increasing.
		if !t.After(last) {
			continue
		}
		out = append(out, t)
		last = t
		if len(out) >= limit {
			break
		}
	}
	return out
}

// iterator returns a function yielding candidate timestamps in order, or nil
// for a pattern that cannot produce any. All stepping is wall-clock calendar
// arithmetic in the seed's location, so later occurrences keep the same local
// service time across DST transitions.
func iterator(seed time.Time, p pattern.Pattern) func() (time.Time, bool) {
	switch p.Kind {
	case pattern.Weekly:
		return weeklyIterator(seed, 1, p.Weekdays)
	case pattern.Biweekly:
		return weeklyIterator(seed, 2, nil)
	case pattern.Custom:
		if p.IntervalWeeks < 1 {
			return nil
		}
		return weeklyIterator(seed, p.IntervalWeeks, nil)
	case pattern.MonthlyByWeekday:
		return monthlyByWeekdayIterator(seed, p.WeekOfMonth)
	case pattern.MonthlyByDate:
		return monthlyByDateIterator(seed)
	}
	return nil
}

func weeklyIterator(seed time.Time, interval int, days []time.Weekday) func() (time.Time, bool) {
	opt := rrule.ROption{
		Freq:     rrule.WEEKLY,
		Interval: interval,
		Dtstart:  seed,
		// Anchor weeks at the seed's weekday so each interval window
		// starts at the seed, not at an ISO Monday.
		Wkst: rruleWeekday(seed.Weekday()),
	}
	if len(days) > 1 {
		opt.Byweekday = rruleWeekdays(days)
	}
	return ruleIterator(opt)
}

func monthlyByWeekdayIterator(seed time.Time, weekOfMonth int) func() (time.Time, bool) {
	if weekOfMonth == 0 {
		// Derive the ordinal from the seed: its weekday's position
		// within its own month.
		weekOfMonth = (seed.Day()-1)/7 + 1
	}
	if weekOfMonth < 1 || weekOfMonth > 5 {
		return nil
	}
	wd := rruleWeekday(seed.Weekday())
	opt := rrule.ROption{
		Freq:    rrule.MONTHLY,
		Dtstart: seed,
		// Months without a weekOfMonth-th such weekday are skipped,
		// which is exactly the BYDAY=nXX behavior.
		Byweekday: []rrule.Weekday{wd.Nth(weekOfMonth)},
	}
	return ruleIterator(opt)
}

// monthlyByDateIterator steps by calendar month keeping the seed's
// day-of-month, clamping to the last valid day of short months (day 31 in
// April lands on the 30th). rrule-go's BYMONTHDAY would skip those months
// instead, so this path is stepped by hand.
func monthlyByDateIterator(seed time.Time) func() (time.Time, bool) {
	months := 0
	return func() (time.Time, bool) {
		months++
		return addMonthsClamped(seed, months), true
	}
}

func addMonthsClamped(t time.Time, months int) time.Time {
	day := t.Day()
	// Day 0 of month n+1 is the last day of month n.
	lastDay := time.Date(t.Year(), t.Month()+time.Month(months)+1, 0,
		0, 0, 0, 0, t.Location()).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(t.Year(), t.Month()+time.Month(months), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func ruleIterator(opt rrule.ROption) func() (time.Time, bool) {
	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return nil
	}
	return rule.Iterator()
}

var weekdayTable = [...]rrule.Weekday{
	rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA,
}

func rruleWeekday(d time.Weekday) rrule.Weekday {
	return weekdayTable[d]
}

func rruleWeekdays(days []time.Weekday) []rrule.Weekday {
	out := make([]rrule.Weekday, len(days))
	for i, d := range days {
		out[i] = rruleWeekday(d)
	}
	return out
}
