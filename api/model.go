package api

import (
	"errors"
	"fmt"
	"time"

	appErrors "github.com/fatali-fataliyev/expense_sync/errors"
	"github.com/fatali-fataliyev/expense_sync/internal/tracker"
	"github.com/shopspring/decimal"
)

// REQUESTS START:

type SaveExpenseRequest struct {
	Description string `json:"description"`
	Category    string `json:"category"`
	Amount      string `json:"amount"` // keep as string to avoid float drift
	Date        string `json:"date,omitempty"`
	Note        string `json:"note,omitempty"`
	ReceiptRef  string `json:"receipt_ref,omitempty"`
}

type UpdateExpenseRequest struct {
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	Amount      *string `json:"amount,omitempty"`
	Date        *string `json:"date,omitempty"`
	Note        *string `json:"note,omitempty"`
	ReceiptRef  *string `json:"receipt_ref,omitempty"`
}

type SetBudgetRequest struct {
	Month string `json:"month"` // YYYY-MM; empty means current month
	Limit string `json:"limit"`
}

type SaveBillRequest struct {
	Name      string `json:"name"`
	Amount    string `json:"amount"`
	Category  string `json:"category"`
	DueDate   string `json:"due_date"`
	Recurring bool   `json:"recurring"`
	Frequency string `json:"frequency,omitempty"`
}

type SaveTemplateRequest struct {
	Description string `json:"description"`
	Category    string `json:"category"`
	Amount      string `json:"amount"`
	Frequency   string `json:"frequency"`
	StartDate   string `json:"start_date,omitempty"`
}

// REQUESTS END:

// RESPONSES:

type MessageResponse struct {
	Message string `json:"message"`
}

type PaidBillResponse struct {
	Bill      tracker.Bill  `json:"bill"`
	Successor *tracker.Bill `json:"successor,omitempty"`
}

type ProcessedResponse struct {
	Generated []tracker.Expense `json:"generated"`
	Count     int               `json:"count"`
}

func httpStatusFromError(err error) int {
	switch {
	case errors.Is(err, appErrors.ErrNotFound):
		return 404 // not found
	case errors.Is(err, appErrors.ErrInvalidInput):
		return 400 // bad request
	case errors.Is(err, appErrors.ErrConflict):
		return 409 // conflict
	case errors.Is(err, appErrors.ErrStorage):
		return 507 // local persistence failure, user must be warned
	case errors.Is(err, appErrors.ErrRemote):
		return 502 // bad gateway
	default:
		return 500 //internal error
	}
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: invalid amount: %q", appErrors.ErrInvalidInput, raw)
	}
	return amount, nil
}

// parseDate accepts RFC3339 timestamps and plain calendar dates.
func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if date, err := time.Parse(time.RFC3339, raw); err == nil {
		return date, nil
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date: %q", appErrors.ErrInvalidInput, raw)
	}
	return date, nil
}
