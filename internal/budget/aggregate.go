// Package budget derives spend totals and allowances from expense records.
// Everything here is pure: no I/O, recomputed on every call.
package budget

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry is the minimal expense view the aggregator needs.
type Entry struct {
	Date   time.Time
	Amount decimal.Decimal
}

// MonthKey produces the calendar-month key budgets are stored under.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// MonthlyTotal sums the amounts of entries whose date falls in the given
// year-month. Order of entries never matters.
func MonthlyTotal(entries []Entry, monthKey string) decimal.Decimal {
	total := decimal.Zero
	for _, entry := range entries {
		if MonthKey(entry.Date) == monthKey {
			total = total.Add(entry.Amount)
		}
	}
	return total
}

// Remaining is the signed balance left in the budget. Negative means
// over-budget, and the sign is deliberately preserved.
func Remaining(limit decimal.Decimal, monthlyTotal decimal.Decimal) decimal.Decimal {
	return limit.Sub(monthlyTotal)
}

// DailyAllowance spreads the remaining balance over the days left in the
// month. Floored at zero for display; use Remaining for the signed value.
func DailyAllowance(remaining decimal.Decimal, daysLeft int) decimal.Decimal {
	if daysLeft <= 0 || remaining.Sign() <= 0 {
		return decimal.Zero
	}
	return remaining.DivRound(decimal.NewFromInt(int64(daysLeft)), 2)
}

// DaysLeftInMonth counts the remaining days of now's month, today included.
func DaysLeftInMonth(now time.Time) int {
	year, month, _ := now.Date()
	firstOfNext := time.Date(year, month, 1, 0, 0, 0, 0, now.Location()).AddDate(0, 1, 0)
	lastDay := firstOfNext.AddDate(0, 0, -1).Day()
	return lastDay - now.Day() + 1
}
