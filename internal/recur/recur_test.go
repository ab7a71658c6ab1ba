package recur

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parishplan/parishplan/internal/pattern"
)

// Sunday service at 10:00.
var sundaySeed = time.Date(2025, time.January, 5, 10, 0, 0, 0, time.UTC)

func TestExpandWeeklySundays(t *testing.T) {
	got := Expand(sundaySeed, pattern.Pattern{Kind: pattern.Weekly}, 6)

	// Every following Sunday up to the 6-month horizon: Jan 12 through Jun 29.
	require.Len(t, got, 25)
	assert.Equal(t, time.Date(2025, time.January, 12, 10, 0, 0, 0, time.UTC), got[0])
	assert.Equal(t, time.Date(2025, time.June, 29, 10, 0, 0, 0, time.UTC), got[24])

	for i, occ := range got {
		assert.Equal(t, time.Sunday, occ.Weekday(), "occurrence %d", i)
		assert.Equal(t, 10, occ.Hour(), "occurrence %d", i)
		if i > 0 {
			assert.Equal(t, 7*24*time.Hour, occ.Sub(got[i-1]), "gap before occurrence %d", i)
		}
	}
}

func TestExpandNeverReemitsSeed(t *testing.T) {
	for _, p := range []pattern.Pattern{
		{Kind: pattern.Weekly},
		{Kind: pattern.Weekly, Weekdays: []time.Weekday{time.Sunday, time.Wednesday}},
		{Kind: pattern.Biweekly},
		{Kind: pattern.MonthlyByDate},
		{Kind: pattern.MonthlyByWeekday, WeekOfMonth: 1},
		{Kind: pattern.Custom, IntervalWeeks: 2},
	} {
		for _, occ := range Expand(sundaySeed, p, 6) {
			assert.True(t, occ.After(sundaySeed), "pattern %s emitted %v", p, occ)
		}
	}
}

func TestExpandWeeklyMultipleDays(t *testing.T) {
	p := pattern.Pattern{
		Kind:     pattern.Weekly,
		Weekdays: []time.Weekday{time.Sunday, time.Wednesday},
	}
	got := Expand(sundaySeed, p, 2)
	require.NotEmpty(t, got)

	// First emitted instant is the Wednesday of the seed's own week.
	assert.Equal(t, time.Date(2025, time.January, 8, 10, 0, 0, 0, time.UTC), got[0])

	for i, occ := range got {
		wd := occ.Weekday()
		assert.True(t, wd == time.Sunday || wd == time.Wednesday, "occurrence %d on %v", i, wd)
		if i > 0 {
			assert.True(t, occ.After(got[i-1]), "occurrence %d out of order", i)
		}
	}
}

func TestExpandBiweekly(t *testing.T) {
	got := Expand(sundaySeed, pattern.Pattern{Kind: pattern.Biweekly}, 2)
	want := []time.Time{
		time.Date(2025, time.January, 19, 10, 0, 0, 0, time.UTC),
		time.Date(2025, time.February, 2, 10, 0, 0, 0, time.UTC),
		time.Date(2025, time.February, 16, 10, 0, 0, 0, time.UTC),
		time.Date(2025, time.March, 2, 10, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, want, got)
}

func TestExpandCustomInterval(t *testing.T) {
	got := Expand(sundaySeed, pattern.Pattern{Kind: pattern.Custom, IntervalWeeks: 3}, 3)
	want := []time.Time{
		time.Date(2025, time.January, 26, 10, 0, 0, 0, time.UTC),
		time.Date(2025, time.February, 16, 10, 0, 0, 0, time.UTC),
		time.Date(2025, time.March, 9, 10, 0, 0, 0, time.UTC),
		time.Date(2025, time.March, 30, 10, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, want, got)

	// An interval below one week is contradictory and expands to nothing.
	assert.Empty(t, Expand(sundaySeed, pattern.Pattern{Kind: pattern.Custom}, 3))
}

func TestExpandMonthlyByDateClampsShortMonths(t *testing.T) {
	seed := time.Date(2025, time.January, 31, 10, 0, 0, 0, time.UTC)
	got := Expand(seed, pattern.Pattern{Kind: pattern.MonthlyByDate}, 6)
	want := []time.Time{
		time.Date(2025, time.February, 28, 10, 0, 0, 0, time.UTC),
		time.Date(2025, time.March, 31, 10, 0, 0, 0, time.UTC),
		time.Date(2025, time.April, 30, 10, 0, 0, 0, time.UTC),
		time.Date(2025, time.May, 31, 10, 0, 0, 0, time.UTC),
		time.Date(2025, time.June, 30, 10, 0, 0, 0, time.UTC),
		time.Date(2025, time.July, 31, 10, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, want, got)
}

func TestExpandMonthlyByWeekdaySkipsMissingOrdinal(t *testing.T) {
	// 2025-01-31 is the fifth Friday of January.
	seed := time.Date(2025, time.January, 31, 19, 30, 0, 0, time.UTC)
	got := Expand(seed, pattern.Pattern{Kind: pattern.MonthlyByWeekday, WeekOfMonth: 5}, 12)

	// Only months with five Fridays appear; the rest are skipped, not wrapped.
	want := []time.Time{
		time.Date(2025, time.May, 30, 19, 30, 0, 0, time.UTC),
		time.Date(2025, time.August, 29, 19, 30, 0, 0, time.UTC),
		time.Date(2025, time.October, 31, 19, 30, 0, 0, time.UTC),
		time.Date(2026, time.January, 30, 19, 30, 0, 0, time.UTC),
	}
	assert.Equal(t, want, got)
}

func TestExpandMonthlyByWeekdayDerivesOrdinalFromSeed(t *testing.T) {
	// 2025-01-12 is the second Sunday of January.
	seed := time.Date(2025, time.January, 12, 10, 0, 0, 0, time.UTC)
	got := Expand(seed, pattern.Pattern{Kind: pattern.MonthlyByWeekday}, 3)
	// The 3-month window ends Apr 12 10:00, so April's second Sunday
	// (Apr 13) falls outside it.
	want := []time.Time{
		time.Date(2025, time.February, 9, 10, 0, 0, 0, time.UTC),
		time.Date(2025, time.March, 9, 10, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, want, got)
}

func TestExpandStopsAtEndDate(t *testing.T) {
	end := time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)
	got := Expand(sundaySeed, pattern.Pattern{Kind: pattern.Weekly, EndDate: &end}, 6)
	want := []time.Time{
		time.Date(2025, time.January, 12, 10, 0, 0, 0, time.UTC),
		time.Date(2025, time.January, 19, 10, 0, 0, 0, time.UTC),
		time.Date(2025, time.January, 26, 10, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, want, got)
}

func TestExpandStopsAtMaxOccurrences(t *testing.T) {
	got := Expand(sundaySeed, pattern.Pattern{Kind: pattern.Weekly, MaxOccurrences: 3}, 6)
	assert.Len(t, got, 3)
}

func TestExpandSafetyCeiling(t *testing.T) {
	got := Expand(sundaySeed, pattern.Pattern{Kind: pattern.Weekly}, 12)
	assert.Len(t, got, MaxSeriesOccurrences)
}

func TestExpandUnknownKindIsEmpty(t *testing.T) {
	assert.Empty(t, Expand(sundaySeed, pattern.Parse("fortnightly-ish"), 6))
	assert.Empty(t, Expand(sundaySeed, pattern.Pattern{}, 6))
}

func TestExpandNoDuplicateInstants(t *testing.T) {
	p := pattern.Pattern{
		Kind:     pattern.Weekly,
		Weekdays: []time.Weekday{time.Sunday, time.Tuesday, time.Saturday},
	}
	got := Expand(sundaySeed, p, 6)
	require.NotEmpty(t, got)

	seen := make(map[time.Time]bool)
	for _, occ := range got {
		assert.False(t, seen[occ], "duplicate instant %v", occ)
		seen[occ] = true
	}
}

func TestExpandUntilPreservesPhase(t *testing.T) {
	// Reseeded from a later Sunday occurrence, everything stays on Sunday.
	seed := time.Date(2025, time.February, 2, 10, 0, 0, 0, time.UTC)
	until := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)

	got := ExpandUntil(seed, pattern.Pattern{Kind: pattern.Weekly}, until)
	require.NotEmpty(t, got)
	assert.Equal(t, time.Date(2025, time.February, 9, 10, 0, 0, 0, time.UTC), got[0])
	for _, occ := range got {
		assert.Equal(t, time.Sunday, occ.Weekday())
		assert.False(t, occ.After(until))
	}
}

func TestExpandWeeklyKeepsLocalTimeAcrossSpringForward(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Clocks jump forward on 2025-03-09; the service stays at 10:00 local.
	seed := time.Date(2025, time.February, 23, 10, 0, 0, 0, loc)
	got := Expand(seed, pattern.Pattern{Kind: pattern.Weekly}, 1)

	want := []time.Time{
		time.Date(2025, time.March, 2, 10, 0, 0, 0, loc),
		time.Date(2025, time.March, 9, 10, 0, 0, 0, loc),
		time.Date(2025, time.March, 16, 10, 0, 0, 0, loc),
		time.Date(2025, time.March, 23, 10, 0, 0, 0, loc),
	}
	require.Equal(t, want, got)

	// The absolute gap across the transition is one hour short of a week.
	assert.Equal(t, 7*24*time.Hour-time.Hour, got[1].Sub(got[0]))
	assert.Equal(t, 7*24*time.Hour, got[2].Sub(got[1]))
}

func TestExpandMonthlyByDateKeepsLocalTimeAcrossSpringForward(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	seed := time.Date(2025, time.January, 15, 9, 30, 0, 0, loc)
	got := Expand(seed, pattern.Pattern{Kind: pattern.MonthlyByDate}, 3)

	want := []time.Time{
		time.Date(2025, time.February, 15, 9, 30, 0, 0, loc),
		time.Date(2025, time.March, 15, 9, 30, 0, 0, loc),
		time.Date(2025, time.April, 15, 9, 30, 0, 0, loc),
	}
	assert.Equal(t, want, got)
}

func TestExpandUntilHonorsEarlierPatternEndDate(t *testing.T) {
	seed := time.Date(2025, time.February, 2, 10, 0, 0, 0, time.UTC)
	until := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.February, 15, 0, 0, 0, 0, time.UTC)

	got := ExpandUntil(seed, pattern.Pattern{Kind: pattern.Weekly, EndDate: &end}, until)
	want := []time.Time{
		time.Date(2025, time.February, 9, 10, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, want, got)
}
