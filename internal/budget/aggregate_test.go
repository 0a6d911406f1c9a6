package budget

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func entry(day string, amount string) Entry {
	date, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	return Entry{Date: date, Amount: decimal.RequireFromString(amount)}
}

func TestMonthlyTotalFiltersByMonth(t *testing.T) {
	entries := []Entry{
		entry("2025-03-01", "1200.50"),
		entry("2025-03-31", "799.50"),
		entry("2025-02-28", "400"),
		entry("2025-04-01", "55"),
	}

	total := MonthlyTotal(entries, "2025-03")
	require.True(t, total.Equal(decimal.RequireFromString("2000")), "got %s", total)
}

func TestMonthlyTotalOrderInsensitive(t *testing.T) {
	forward := []Entry{
		entry("2025-03-05", "10.10"),
		entry("2025-03-06", "20.20"),
		entry("2025-03-07", "30.30"),
	}
	reversed := []Entry{forward[2], forward[1], forward[0]}

	require.True(t, MonthlyTotal(forward, "2025-03").Equal(MonthlyTotal(reversed, "2025-03")))
}

func TestRemainingMayGoNegative(t *testing.T) {
	remaining := Remaining(decimal.RequireFromString("500"), decimal.RequireFromString("620.75"))
	require.True(t, remaining.Equal(decimal.RequireFromString("-120.75")), "got %s", remaining)
}

func TestDailyAllowanceScenario(t *testing.T) {
	// budget 10000, spent 8200 -> remaining 1800 over 9 days = 200/day
	remaining := Remaining(decimal.RequireFromString("10000"), decimal.RequireFromString("8200"))
	require.True(t, remaining.Equal(decimal.RequireFromString("1800")))

	allowance := DailyAllowance(remaining, 9)
	require.True(t, allowance.Equal(decimal.RequireFromString("200")), "got %s", allowance)
}

func TestDailyAllowanceZeroFloored(t *testing.T) {
	overBudget := decimal.RequireFromString("-300")
	require.True(t, DailyAllowance(overBudget, 10).IsZero())
	require.True(t, DailyAllowance(decimal.RequireFromString("100"), 0).IsZero())
}

func TestDaysLeftInMonth(t *testing.T) {
	tests := []struct {
		now  string
		want int
	}{
		{"2025-04-22", 9},
		{"2025-04-30", 1},
		{"2025-02-01", 28},
		{"2024-02-01", 29},
	}

	for _, tt := range tests {
		now, err := time.Parse("2006-01-02", tt.now)
		require.NoError(t, err)
		require.Equal(t, tt.want, DaysLeftInMonth(now), "now %s", tt.now)
	}
}

func TestMonthKey(t *testing.T) {
	now, err := time.Parse("2006-01-02", "2025-12-03")
	require.NoError(t, err)
	require.Equal(t, "2025-12", MonthKey(now))
}
