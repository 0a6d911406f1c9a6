package schedule

import (
	"fmt"
	"strings"
	"time"

	appErrors "github.com/fatali-fataliyev/expense_sync/errors"
	"github.com/shopspring/decimal"
)

type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(strings.ToLower(strings.TrimSpace(s))) {
	case Daily:
		return Daily, nil
	case Weekly:
		return Weekly, nil
	case Monthly:
		return Monthly, nil
	case Yearly:
		return Yearly, nil
	default:
		return "", fmt.Errorf("%w: unsupported frequency: %q", appErrors.ErrInvalidInput, s)
	}
}

// NextOccurrence returns the occurrence strictly after the anchor date.
// Monthly and yearly steps use calendar arithmetic: a day-of-month missing
// from the target month rolls into the following month (Jan 31 + 1 month ->
// Mar 2 or Mar 3). Do not clamp to month-end; callers expect the rollover.
func NextOccurrence(anchor time.Time, freq Frequency) time.Time {
	switch freq {
	case Daily:
		return anchor.AddDate(0, 0, 1)
	case Weekly:
		return anchor.AddDate(0, 0, 7)
	case Monthly:
		return anchor.AddDate(0, 1, 0)
	case Yearly:
		return anchor.AddDate(1, 0, 0)
	default:
		return anchor
	}
}

// InitialNext computes the first next-occurrence for a newly created
// template. A start date in the past is advanced to now before the frequency
// step is applied, so a fresh template is never immediately overdue.
func InitialNext(start time.Time, now time.Time, freq Frequency) time.Time {
	anchor := start
	if start.Before(now) {
		anchor = now
	}
	return NextOccurrence(anchor, freq)
}

// IsDue reports whether the next-occurrence calendar date is on or before
// today's calendar date. Time-of-day never matters here.
func IsDue(next time.Time, now time.Time) bool {
	return !calendarDate(next).After(calendarDate(now))
}

func calendarDate(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// MonthlyAmount normalizes a recurring amount to a per-month figure:
// daily x30, weekly x4, monthly x1, yearly /12. A deliberate approximation
// for budgeting projections, not calendar-exact accounting.
func MonthlyAmount(amount decimal.Decimal, freq Frequency) decimal.Decimal {
	switch freq {
	case Daily:
		return amount.Mul(decimal.NewFromInt(30))
	case Weekly:
		return amount.Mul(decimal.NewFromInt(4))
	case Monthly:
		return amount
	case Yearly:
		return amount.DivRound(decimal.NewFromInt(12), 2)
	default:
		return decimal.Zero
	}
}
