// Package pattern models the closed set of recurrence patterns a series
// root can carry, and their persisted string form.
package pattern

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

type Kind string

const (
	Weekly           Kind = "weekly"
	Biweekly         Kind = "biweekly"
	MonthlyByDate    Kind = "monthly"
	MonthlyByWeekday Kind = "monthly_weekday"
	Custom           Kind = "custom"
)

// Valid reports whether the kind is one of the recognized pattern kinds.
// Unrecognized kinds come from untrusted persisted strings and expand to
// nothing rather than failing.
func (k Kind) Valid() bool {
	switch k {
	case Weekly, Biweekly, MonthlyByDate, MonthlyByWeekday, Custom:
		return true
	}
	return false
}

// Pattern is a recurrence rule for a series root. Only the fields relevant
// to Kind are meaningful; the rest are zero.
type Pattern struct {
	Kind Kind

	// IntervalWeeks is the step for Custom patterns (every N weeks).
	IntervalWeeks int

	// Weekdays is the optional multi-day set for Weekly patterns,
	// kept sorted Sunday-first.
	Weekdays []time.Weekday

	// WeekOfMonth is the 1..5 ordinal for MonthlyByWeekday patterns.
	// Zero means "derive the ordinal from the seed date".
	WeekOfMonth int

	// EndDate is an optional hard stop, date precision, UTC midnight.
	EndDate *time.Time

	// MaxOccurrences is an optional cap on generated occurrences.
	MaxOccurrences int
}

// IsZero reports whether p carries no recurrence at all.
func (p Pattern) IsZero() bool {
	return p.Kind == ""
}

// Parse reads the persisted string form. It never fails: legacy bare tokens
// ("weekly", "monthly") yield structured defaults, and unrecognized kinds
// yield a pattern whose Kind is not Valid and which expands to nothing.
func Parse(s string) Pattern {
	s = strings.TrimSpace(s)
	if s == "" {
		return Pattern{}
	}

	parts := strings.Split(s, ";")
	p := Pattern{Kind: parseKind(parts[0])}

	for _, part := range parts[1:] {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])
		switch key {
		case "interval":
			if n, err := strconv.Atoi(val); err == nil {
				p.IntervalWeeks = n
			}
		case "days":
			p.Weekdays = parseWeekdays(val)
		case "week":
			if n, err := strconv.Atoi(val); err == nil {
				p.WeekOfMonth = n
			}
		case "until":
			if t, err := time.Parse("2006-01-02", val); err == nil {
				p.EndDate = &t
			}
		case "count":
			if n, err := strconv.Atoi(val); err == nil {
				p.MaxOccurrences = n
			}
		}
	}

	// A bare legacy "custom" means every week.
	if p.Kind == Custom && p.IntervalWeeks == 0 {
		p.IntervalWeeks = 1
	}

	return p
}

func parseKind(token string) Kind {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "weekly":
		return Weekly
	case "biweekly", "bi-weekly":
		return Biweekly
	case "monthly", "monthly_date":
		return MonthlyByDate
	case "monthly_weekday", "monthly_by_weekday":
		return MonthlyByWeekday
	case "custom":
		return Custom
	}
	return Kind(strings.TrimSpace(token))
}

func parseWeekdays(val string) []time.Weekday {
	var days []time.Weekday
	seen := make(map[time.Weekday]bool)
	for _, tok := range strings.Split(val, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil || n < 0 || n > 6 {
			continue
		}
		d := time.Weekday(n)
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}

// String renders the persisted form. Only fields relevant to the kind are
// emitted, so Parse(p.String()) == p for any pattern built through Parse
// or constructed with only its relevant fields set.
func (p Pattern) String() string {
	if p.IsZero() {
		return ""
	}

	parts := []string{string(p.Kind)}

	switch p.Kind {
	case Weekly:
		if len(p.Weekdays) > 0 {
			toks := make([]string, len(p.Weekdays))
			for i, d := range p.Weekdays {
				toks[i] = strconv.Itoa(int(d))
			}
			parts = append(parts, "days="+strings.Join(toks, ","))
		}
	case Custom:
		if p.IntervalWeeks > 0 {
			parts = append(parts, fmt.Sprintf("interval=%d", p.IntervalWeeks))
		}
	case MonthlyByWeekday:
		if p.WeekOfMonth > 0 {
			parts = append(parts, fmt.Sprintf("week=%d", p.WeekOfMonth))
		}
	}

	if p.EndDate != nil {
		parts = append(parts, "until="+p.EndDate.Format("2006-01-02"))
	}
	if p.MaxOccurrences > 0 {
		parts = append(parts, fmt.Sprintf("count=%d", p.MaxOccurrences))
	}

	return strings.Join(parts, ";")
}
