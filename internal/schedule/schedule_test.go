package schedule

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestParseFrequency(t *testing.T) {
	for _, valid := range []string{"daily", "Weekly", " monthly ", "YEARLY"} {
		freq, err := ParseFrequency(valid)
		require.NoError(t, err)
		require.NotEmpty(t, freq)
	}

	_, err := ParseFrequency("fortnightly")
	require.Error(t, err)
}

func TestNextOccurrenceStrictlyAfterAnchor(t *testing.T) {
	anchors := []time.Time{
		date(2025, time.January, 1),
		date(2025, time.January, 31),
		date(2024, time.February, 29),
		date(2025, time.December, 31),
	}

	for _, freq := range []Frequency{Daily, Weekly, Monthly, Yearly} {
		for _, anchor := range anchors {
			next := NextOccurrence(anchor, freq)
			require.True(t, next.After(anchor), "frequency %s anchor %s produced %s", freq, anchor, next)
		}
	}
}

func TestNextOccurrenceSteps(t *testing.T) {
	tests := []struct {
		name   string
		anchor time.Time
		freq   Frequency
		want   time.Time
	}{
		{"daily", date(2025, time.March, 10), Daily, date(2025, time.March, 11)},
		{"weekly", date(2025, time.March, 10), Weekly, date(2025, time.March, 17)},
		{"monthly", date(2025, time.March, 10), Monthly, date(2025, time.April, 10)},
		{"yearly", date(2025, time.March, 10), Yearly, date(2026, time.March, 10)},
		// Month-end overflow rolls forward instead of clamping.
		{"monthly overflow non-leap", date(2025, time.January, 31), Monthly, date(2025, time.March, 3)},
		{"monthly overflow leap", date(2024, time.January, 31), Monthly, date(2024, time.March, 2)},
		{"yearly overflow leap day", date(2024, time.February, 29), Yearly, date(2025, time.March, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextOccurrence(tt.anchor, tt.freq)
			require.True(t, got.Equal(tt.want), "want %s, got %s", tt.want, got)
		})
	}
}

func TestInitialNextNeverInPast(t *testing.T) {
	now := date(2025, time.June, 15)

	for _, freq := range []Frequency{Daily, Weekly, Monthly, Yearly} {
		next := InitialNext(date(2023, time.January, 1), now, freq)
		require.True(t, next.After(now), "frequency %s produced past occurrence %s", freq, next)
	}
}

func TestInitialNextFutureStartKeepsAnchor(t *testing.T) {
	now := date(2025, time.June, 15)
	start := date(2025, time.July, 1)

	next := InitialNext(start, now, Weekly)
	require.True(t, next.Equal(date(2025, time.July, 8)))
}

func TestIsDueIgnoresTimeOfDay(t *testing.T) {
	now := time.Date(2025, time.June, 15, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		next time.Time
		want bool
	}{
		{"yesterday", time.Date(2025, time.June, 14, 23, 59, 0, 0, time.UTC), true},
		{"today later hour", time.Date(2025, time.June, 15, 23, 0, 0, 0, time.UTC), true},
		{"today earlier hour", time.Date(2025, time.June, 15, 1, 0, 0, 0, time.UTC), true},
		{"tomorrow early hour", time.Date(2025, time.June, 16, 0, 30, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsDue(tt.next, now))
		})
	}
}

func TestMonthlyAmount(t *testing.T) {
	tests := []struct {
		freq   Frequency
		amount string
		want   string
	}{
		{Daily, "10", "300"},
		{Weekly, "25", "100"},
		{Monthly, "500", "500"},
		{Yearly, "120", "10"},
		{Yearly, "100", "8.33"},
	}

	for _, tt := range tests {
		amount := decimal.RequireFromString(tt.amount)
		want := decimal.RequireFromString(tt.want)
		got := MonthlyAmount(amount, tt.freq)
		require.True(t, got.Equal(want), "frequency %s amount %s: want %s, got %s", tt.freq, tt.amount, want, got)
	}
}
