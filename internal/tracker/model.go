package tracker

import (
	"fmt"
	"strings"
	"time"

	appErrors "github.com/fatali-fataliyev/expense_sync/errors"
	"github.com/fatali-fataliyev/expense_sync/internal/schedule"
	"github.com/shopspring/decimal"
)

// SyncStatus is the per-record remote-confirmation state. "failed" is
// reserved for remote-attempted-and-rejected; an offline-by-design record
// stays "pending".
type SyncStatus string

const (
	StatusSynced  SyncStatus = "synced"
	StatusPending SyncStatus = "pending"
	StatusFailed  SyncStatus = "failed"
)

type Category string

const (
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategoryCoffee        Category = "coffee"
	CategoryShopping      Category = "shopping"
	CategoryEntertainment Category = "entertainment"
	CategoryUtilities     Category = "utilities"
	CategoryOther         Category = "other"
)

func ParseCategory(s string) (Category, error) {
	normalized := Category(strings.ToLower(strings.TrimSpace(s)))
	switch normalized {
	case "":
		return CategoryOther, nil
	case CategoryFood, CategoryTransport, CategoryCoffee, CategoryShopping,
		CategoryEntertainment, CategoryUtilities, CategoryOther:
		return normalized, nil
	default:
		return "", fmt.Errorf("%w: unknown category: %q", appErrors.ErrInvalidInput, s)
	}
}

// MODELS:

type Expense struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Category    Category        `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Note        string          `json:"note,omitempty"`
	ReceiptRef  string          `json:"receipt_ref,omitempty"`
	SyncStatus  SyncStatus      `json:"sync_status"`
}

func (e Expense) RecordID() string { return e.ID }

// sameContent reports whether two snapshots carry the same user-visible
// fields. Used to detect a superseding local edit while a remote call was in
// flight, so the out-of-date response does not clobber the newer state.
func (e Expense) sameContent(o Expense) bool {
	return e.Description == o.Description &&
		e.Category == o.Category &&
		e.Amount.Equal(o.Amount) &&
		e.Date.Equal(o.Date) &&
		e.Note == o.Note &&
		e.ReceiptRef == o.ReceiptRef
}

type Budget struct {
	Month string          `json:"month"` // calendar-month key, "2006-01"
	Limit decimal.Decimal `json:"limit"`
}

func (b Budget) RecordID() string { return b.Month }

type Bill struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Amount    decimal.Decimal    `json:"amount"`
	Category  Category           `json:"category"`
	DueDate   time.Time          `json:"due_date"`
	Paid      bool               `json:"paid"`
	Recurring bool               `json:"recurring"`
	Frequency schedule.Frequency `json:"frequency,omitempty"`
}

func (b Bill) RecordID() string { return b.ID }

type RecurringTemplate struct {
	ID            string             `json:"id"`
	Description   string             `json:"description"`
	Category      Category           `json:"category"`
	Amount        decimal.Decimal    `json:"amount"`
	Frequency     schedule.Frequency `json:"frequency"`
	StartDate     time.Time          `json:"start_date"`
	NextDate      time.Time          `json:"next_date"`
	Active        bool               `json:"active"`
	LastProcessed *time.Time         `json:"last_processed,omitempty"`
}

func (t RecurringTemplate) RecordID() string { return t.ID }

// REQUESTS START:

type NewExpense struct {
	Description string
	Category    Category
	Amount      decimal.Decimal
	Date        time.Time
	Note        string
	ReceiptRef  string
}

// ExpensePatch carries only the fields the caller wants changed.
type ExpensePatch struct {
	Description *string
	Category    *Category
	Amount      *decimal.Decimal
	Date        *time.Time
	Note        *string
	ReceiptRef  *string
}

type NewBill struct {
	Name      string
	Amount    decimal.Decimal
	Category  Category
	DueDate   time.Time
	Recurring bool
	Frequency schedule.Frequency
}

type NewTemplate struct {
	Description string
	Category    Category
	Amount      decimal.Decimal
	Frequency   schedule.Frequency
	StartDate   time.Time
}

// REQUESTS END:

// RESPONSES:

type BudgetSummary struct {
	Month            string          `json:"month"`
	HasBudget        bool            `json:"has_budget"`
	Limit            decimal.Decimal `json:"limit"`
	Spent            decimal.Decimal `json:"spent"`
	Remaining        decimal.Decimal `json:"remaining"`
	DaysLeft         int             `json:"days_left"`
	DailyAllowance   decimal.Decimal `json:"daily_allowance"`
	RecurringMonthly decimal.Decimal `json:"recurring_monthly"`
}

type SyncSummary struct {
	Online  bool `json:"online"`
	Synced  int  `json:"synced"`
	Pending int  `json:"pending"`
	Failed  int  `json:"failed"`
}
