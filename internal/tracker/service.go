package tracker

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	appErrors "github.com/fatali-fataliyev/expense_sync/errors"
	"github.com/fatali-fataliyev/expense_sync/internal/budget"
	"github.com/fatali-fataliyev/expense_sync/internal/schedule"
	"github.com/fatali-fataliyev/expense_sync/internal/storage"
	"github.com/fatali-fataliyev/expense_sync/logging"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	localIDPrefix = "local-"
	// Cap on occurrences generated per template in one sweep; a template
	// that is years behind must not stall the caller.
	maxSweepSteps = 1000

	MAX_DESCRIPTION_LENGTH = 255
	MAX_NOTE_LENGTH        = 1000
)

// Remote is the backend mirror, consumed as an opaque store. Every call may
// fail; failures degrade records, they never discard them.
type Remote interface {
	CreateExpense(ctx context.Context, exp Expense) (Expense, error)
	UpdateExpense(ctx context.Context, id string, exp Expense) (Expense, error)
	DeleteExpense(ctx context.Context, id string) error
	ListExpenses(ctx context.Context) ([]Expense, error)
	GetCurrentBudget(ctx context.Context) (*Budget, error)
	SetBudget(ctx context.Context, b Budget) (Budget, error)
}

// Gate reports whether a remote attempt should be made for a mutation. The
// snapshot is taken per operation, never cached across one.
type Gate interface {
	IsOnline() bool
}

// Tracker is the offline-first mutation and sync engine. Local state is the
// source of truth; the remote store is an eventually-consistent mirror.
type Tracker struct {
	mu        sync.Mutex
	expenses  *storage.Collection[Expense]
	budgets   *storage.Collection[Budget]
	bills     *storage.Collection[Bill]
	templates *storage.Collection[RecurringTemplate]
	syncing   map[string]struct{}
	remote    Remote
	gate      Gate
	now       func() time.Time
}

func New(kv storage.KV, remote Remote, gate Gate) *Tracker {
	return &Tracker{
		expenses:  storage.NewCollection[Expense](kv, "expenses"),
		budgets:   storage.NewCollection[Budget](kv, "budgets"),
		bills:     storage.NewCollection[Bill](kv, "bills"),
		templates: storage.NewCollection[RecurringTemplate](kv, "recurring"),
		syncing:   make(map[string]struct{}),
		remote:    remote,
		gate:      gate,
		now:       time.Now,
	}
}

// SetClock overrides the time source, for deterministic tests.
func (t *Tracker) SetClock(now func() time.Time) {
	t.now = now
}

// SetOnChange registers a callback fired after any record-store mutation.
// The callback must not call back into the Tracker.
func (t *Tracker) SetOnChange(fn func()) {
	t.expenses.SetOnChange(fn)
	t.budgets.SetOnChange(fn)
	t.bills.SetOnChange(fn)
	t.templates.SetOnChange(fn)
}

func newLocalID() string {
	return localIDPrefix + uuid.New().String()
}

func isLocalID(id string) bool {
	return strings.HasPrefix(id, localIDPrefix)
}

// --- EXPENSES --- //

// AddExpense writes the expense locally first, then attempts the remote
// commit when the gate reports online. The local write always completes
// before any network I/O is issued.
func (t *Tracker) AddExpense(ctx context.Context, req NewExpense) (Expense, error) {
	if req.Amount.IsNegative() {
		return Expense{}, fmt.Errorf("%w: expense amount cannot be negative", appErrors.ErrInvalidInput)
	}
	if len(req.Description) > MAX_DESCRIPTION_LENGTH {
		return Expense{}, fmt.Errorf("%w: description so long, maximum allowed length is: %d", appErrors.ErrInvalidInput, MAX_DESCRIPTION_LENGTH)
	}
	if len(req.Note) > MAX_NOTE_LENGTH {
		return Expense{}, fmt.Errorf("%w: note so long, maximum allowed length is: %d", appErrors.ErrInvalidInput, MAX_NOTE_LENGTH)
	}
	category := req.Category
	if category == "" {
		category = CategoryOther
	}

	date := req.Date
	if date.IsZero() {
		date = t.now()
	}

	exp := Expense{
		ID:          newLocalID(),
		Description: req.Description,
		Category:    category,
		Amount:      req.Amount.Round(2),
		Date:        date,
		Note:        req.Note,
		ReceiptRef:  req.ReceiptRef,
		SyncStatus:  StatusPending,
	}

	t.mu.Lock()
	err := t.expenses.Put(exp)
	t.mu.Unlock()
	if err != nil {
		return Expense{}, fmt.Errorf("failed to save expense locally: %w", err)
	}

	if !t.gate.IsOnline() {
		// Offline by design: the record stays pending, never failed.
		return exp, nil
	}

	return t.attemptSync(ctx, exp), nil
}

// UpdateExpense applies the patch optimistically, then pushes it when the
// record already has a server identity and the gate is online. A record that
// never reached the server keeps its pending creation; replay carries the
// latest fields.
func (t *Tracker) UpdateExpense(ctx context.Context, id string, patch ExpensePatch) (Expense, error) {
	t.mu.Lock()
	exp, ok := t.expenses.Get(id)
	if !ok {
		t.mu.Unlock()
		return Expense{}, fmt.Errorf("%w: expense %q", appErrors.ErrNotFound, id)
	}

	if patch.Description != nil {
		exp.Description = *patch.Description
	}
	if patch.Category != nil {
		exp.Category = *patch.Category
	}
	if patch.Amount != nil {
		if patch.Amount.IsNegative() {
			t.mu.Unlock()
			return Expense{}, fmt.Errorf("%w: expense amount cannot be negative", appErrors.ErrInvalidInput)
		}
		exp.Amount = patch.Amount.Round(2)
	}
	if patch.Date != nil {
		exp.Date = *patch.Date
	}
	if patch.Note != nil {
		exp.Note = *patch.Note
	}
	if patch.ReceiptRef != nil {
		exp.ReceiptRef = *patch.ReceiptRef
	}
	exp.SyncStatus = StatusPending

	err := t.expenses.Put(exp)
	t.mu.Unlock()
	if err != nil {
		return Expense{}, fmt.Errorf("failed to save expense locally: %w", err)
	}

	if isLocalID(id) || !t.gate.IsOnline() {
		return exp, nil
	}

	return t.attemptSync(ctx, exp), nil
}

// DeleteExpense removes the record optimistically. For a remote-attempted
// delete that fails, the retained pre-delete record is restored verbatim.
func (t *Tracker) DeleteExpense(ctx context.Context, id string) error {
	t.mu.Lock()
	prior, ok := t.expenses.Get(id)
	if !ok {
		t.mu.Unlock()
		return fmt.Errorf("%w: expense %q", appErrors.ErrNotFound, id)
	}
	err := t.expenses.Remove(id)
	t.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to remove expense locally: %w", err)
	}

	// A record the server never saw needs no remote delete. An offline
	// delete is local-only by design; the mirror is not a source of truth.
	if isLocalID(id) || !t.gate.IsOnline() {
		return nil
	}

	if err := t.remote.DeleteExpense(ctx, id); err != nil {
		logging.Logger.Warnf("remote delete failed for expense %s, restoring record: %v", id, err)
		t.mu.Lock()
		if perr := t.expenses.Put(prior); perr != nil {
			logging.Logger.Warnf("failed to restore expense %s after delete rollback: %v", id, perr)
		}
		t.mu.Unlock()
	}
	return nil
}

// RetryExpense re-attempts the remote commit of a pending or failed record.
func (t *Tracker) RetryExpense(ctx context.Context, id string) (Expense, error) {
	t.mu.Lock()
	exp, ok := t.expenses.Get(id)
	t.mu.Unlock()
	if !ok {
		return Expense{}, fmt.Errorf("%w: expense %q", appErrors.ErrNotFound, id)
	}
	if exp.SyncStatus == StatusSynced {
		return exp, nil
	}
	return t.attemptSync(ctx, exp), nil
}

func (t *Tracker) Expenses() []Expense {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expenses.GetAll()
}

// ReplayPending pushes every record still awaiting remote confirmation.
// Records with a temporary identifier replay as creates, the rest as
// updates; each record transitions independently on its own response.
func (t *Tracker) ReplayPending(ctx context.Context) {
	t.mu.Lock()
	all := t.expenses.GetAll()
	t.mu.Unlock()

	for _, exp := range all {
		if exp.SyncStatus == StatusSynced {
			continue
		}
		t.attemptSync(ctx, exp)
	}
}

// attemptSync performs one remote commit for the given snapshot and
// reconciles the outcome into the local store. All remote errors are
// converted to status transitions here; none propagate.
func (t *Tracker) attemptSync(ctx context.Context, exp Expense) Expense {
	// Claim the record before any network I/O. A reconnect replay and the
	// mutation that wrote the record can both reach here; the remote store
	// must see a single submission, or a create would duplicate server-side.
	t.mu.Lock()
	current, ok := t.expenses.Get(exp.ID)
	if !ok {
		t.mu.Unlock()
		return exp
	}
	if _, busy := t.syncing[exp.ID]; busy || current.SyncStatus == StatusSynced {
		t.mu.Unlock()
		return current
	}
	t.syncing[exp.ID] = struct{}{}
	exp = current
	t.mu.Unlock()

	var (
		confirmed Expense
		err       error
	)
	if isLocalID(exp.ID) {
		confirmed, err = t.remote.CreateExpense(ctx, exp)
	} else {
		confirmed, err = t.remote.UpdateExpense(ctx, exp.ID, exp)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.syncing, exp.ID)

	current, ok = t.expenses.Get(exp.ID)
	if !ok {
		// Deleted locally while the call was in flight: stale response.
		return exp
	}

	if err != nil {
		logging.Logger.Warnf("remote sync failed for expense %s: %v", exp.ID, err)
		if !current.sameContent(exp) {
			// A newer edit superseded the snapshot this attempt carried;
			// its late failure must not downgrade the current record.
			return current
		}
		current.SyncStatus = StatusFailed
		if perr := t.expenses.Put(current); perr != nil {
			logging.Logger.Warnf("failed to persist failed status for expense %s: %v", exp.ID, perr)
		}
		return current
	}

	if confirmed.ID == "" {
		confirmed.ID = exp.ID
	}

	if !current.sameContent(exp) {
		// A newer local edit superseded the snapshot we sent. Adopt only
		// the server identity; the newer fields stay pending for replay.
		current.ID = confirmed.ID
		current.SyncStatus = StatusPending
		confirmed = current
	} else {
		confirmed.SyncStatus = StatusSynced
	}

	if confirmed.ID != exp.ID {
		if rerr := t.expenses.Remove(exp.ID); rerr != nil {
			logging.Logger.Warnf("failed to drop temporary expense %s: %v", exp.ID, rerr)
		}
	}
	if perr := t.expenses.Put(confirmed); perr != nil {
		logging.Logger.Warnf("failed to persist synced expense %s: %v", confirmed.ID, perr)
	}
	return confirmed
}

// PullRemote merges the mirror into the local store: unknown expenses are
// adopted as synced, known identifiers are left alone since local state
// wins during reconciliation. Intended for first runs and reconnects.
func (t *Tracker) PullRemote(ctx context.Context) error {
	listed, err := t.remote.ListExpenses(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to list remote expenses: %v", appErrors.ErrRemote, err)
	}

	t.mu.Lock()
	for _, exp := range listed {
		if _, ok := t.expenses.Get(exp.ID); ok {
			continue
		}
		exp.SyncStatus = StatusSynced
		if perr := t.expenses.Put(exp); perr != nil {
			logging.Logger.Warnf("failed to store pulled expense %s: %v", exp.ID, perr)
		}
	}
	t.mu.Unlock()

	remoteBudget, err := t.remote.GetCurrentBudget(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to fetch remote budget: %v", appErrors.ErrRemote, err)
	}
	if remoteBudget != nil {
		t.mu.Lock()
		if _, ok := t.budgets.Get(remoteBudget.Month); !ok {
			if perr := t.budgets.Put(*remoteBudget); perr != nil {
				logging.Logger.Warnf("failed to store pulled budget %s: %v", remoteBudget.Month, perr)
			}
		}
		t.mu.Unlock()
	}
	return nil
}

// --- BUDGETS --- //

// SetBudget stores the month's limit locally and mirrors it best-effort.
func (t *Tracker) SetBudget(ctx context.Context, month string, limit decimal.Decimal) (Budget, error) {
	if _, err := time.Parse("2006-01", month); err != nil {
		return Budget{}, fmt.Errorf("%w: invalid budget month %q, want YYYY-MM", appErrors.ErrInvalidInput, month)
	}
	if limit.IsNegative() {
		return Budget{}, fmt.Errorf("%w: budget limit cannot be negative", appErrors.ErrInvalidInput)
	}

	b := Budget{Month: month, Limit: limit.Round(2)}
	t.mu.Lock()
	err := t.budgets.Put(b)
	t.mu.Unlock()
	if err != nil {
		return Budget{}, fmt.Errorf("failed to save budget locally: %w", err)
	}

	if t.gate.IsOnline() {
		if _, rerr := t.remote.SetBudget(ctx, b); rerr != nil {
			logging.Logger.Warnf("remote budget push failed for %s: %v", month, rerr)
		}
	}
	return b, nil
}

func (t *Tracker) CurrentBudget() (Budget, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.budgets.Get(budget.MonthKey(t.now()))
}

// BudgetSummary derives the month's spend, remaining balance, daily
// allowance and the normalized monthly cost of active recurring templates.
func (t *Tracker) BudgetSummary() BudgetSummary {
	now := t.now()
	month := budget.MonthKey(now)

	t.mu.Lock()
	expenses := t.expenses.GetAll()
	b, hasBudget := t.budgets.Get(month)
	templates := t.templates.GetAll()
	t.mu.Unlock()

	entries := make([]budget.Entry, 0, len(expenses))
	for _, exp := range expenses {
		entries = append(entries, budget.Entry{Date: exp.Date, Amount: exp.Amount})
	}

	spent := budget.MonthlyTotal(entries, month)
	remaining := budget.Remaining(b.Limit, spent)
	daysLeft := budget.DaysLeftInMonth(now)

	recurring := decimal.Zero
	for _, tmpl := range templates {
		if !tmpl.Active {
			continue
		}
		recurring = recurring.Add(schedule.MonthlyAmount(tmpl.Amount, tmpl.Frequency))
	}

	return BudgetSummary{
		Month:            month,
		HasBudget:        hasBudget,
		Limit:            b.Limit,
		Spent:            spent,
		Remaining:        remaining,
		DaysLeft:         daysLeft,
		DailyAllowance:   budget.DailyAllowance(remaining, daysLeft),
		RecurringMonthly: recurring,
	}
}

// --- BILLS --- //

func (t *Tracker) AddBill(req NewBill) (Bill, error) {
	if req.Name == "" {
		return Bill{}, fmt.Errorf("%w: bill name is empty", appErrors.ErrInvalidInput)
	}
	if req.Amount.IsNegative() {
		return Bill{}, fmt.Errorf("%w: bill amount cannot be negative", appErrors.ErrInvalidInput)
	}
	if req.Recurring {
		if _, err := schedule.ParseFrequency(string(req.Frequency)); err != nil {
			return Bill{}, err
		}
	}
	category := req.Category
	if category == "" {
		category = CategoryOther
	}
	dueDate := req.DueDate
	if dueDate.IsZero() {
		dueDate = t.now()
	}

	bill := Bill{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Amount:    req.Amount.Round(2),
		Category:  category,
		DueDate:   dueDate,
		Paid:      false,
		Recurring: req.Recurring,
		Frequency: req.Frequency,
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.bills.Put(bill); err != nil {
		return Bill{}, fmt.Errorf("failed to save bill locally: %w", err)
	}
	return bill, nil
}

func (t *Tracker) Bills() []Bill {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bills.GetAll()
}

// MarkBillPaid marks the bill paid in place. A recurring bill spawns exactly
// one unpaid successor with the due date advanced by its frequency; a
// non-recurring bill spawns nothing.
func (t *Tracker) MarkBillPaid(id string) (Bill, *Bill, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	bill, ok := t.bills.Get(id)
	if !ok {
		return Bill{}, nil, fmt.Errorf("%w: bill %q", appErrors.ErrNotFound, id)
	}
	if bill.Paid {
		return Bill{}, nil, fmt.Errorf("%w: bill %q is already paid", appErrors.ErrConflict, id)
	}

	bill.Paid = true
	if err := t.bills.Put(bill); err != nil {
		return Bill{}, nil, fmt.Errorf("failed to save bill locally: %w", err)
	}

	if !bill.Recurring {
		return bill, nil, nil
	}

	successor := bill
	successor.ID = uuid.New().String()
	successor.DueDate = schedule.NextOccurrence(bill.DueDate, bill.Frequency)
	successor.Paid = false
	if err := t.bills.Put(successor); err != nil {
		return Bill{}, nil, fmt.Errorf("failed to save successor bill locally: %w", err)
	}
	return bill, &successor, nil
}

func (t *Tracker) DeleteBill(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.bills.Get(id); !ok {
		return fmt.Errorf("%w: bill %q", appErrors.ErrNotFound, id)
	}
	if err := t.bills.Remove(id); err != nil {
		return fmt.Errorf("failed to remove bill locally: %w", err)
	}
	return nil
}

// --- RECURRING TEMPLATES --- //

func (t *Tracker) AddTemplate(req NewTemplate) (RecurringTemplate, error) {
	if req.Amount.IsNegative() {
		return RecurringTemplate{}, fmt.Errorf("%w: template amount cannot be negative", appErrors.ErrInvalidInput)
	}
	if _, err := schedule.ParseFrequency(string(req.Frequency)); err != nil {
		return RecurringTemplate{}, err
	}
	category := req.Category
	if category == "" {
		category = CategoryOther
	}

	now := t.now()
	start := req.StartDate
	if start.IsZero() {
		start = now
	}

	tmpl := RecurringTemplate{
		ID:          uuid.New().String(),
		Description: req.Description,
		Category:    category,
		Amount:      req.Amount.Round(2),
		Frequency:   req.Frequency,
		StartDate:   start,
		NextDate:    schedule.InitialNext(start, now, req.Frequency),
		Active:      true,
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.templates.Put(tmpl); err != nil {
		return RecurringTemplate{}, fmt.Errorf("failed to save template locally: %w", err)
	}
	return tmpl, nil
}

func (t *Tracker) Templates() []RecurringTemplate {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.templates.GetAll()
}

// ToggleTemplate pauses or resumes a template without touching its schedule.
func (t *Tracker) ToggleTemplate(id string) (RecurringTemplate, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tmpl, ok := t.templates.Get(id)
	if !ok {
		return RecurringTemplate{}, fmt.Errorf("%w: template %q", appErrors.ErrNotFound, id)
	}
	tmpl.Active = !tmpl.Active
	if err := t.templates.Put(tmpl); err != nil {
		return RecurringTemplate{}, fmt.Errorf("failed to save template locally: %w", err)
	}
	return tmpl, nil
}

// DeleteTemplate removes the template permanently. Expenses it already
// generated are kept.
func (t *Tracker) DeleteTemplate(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.templates.Get(id); !ok {
		return fmt.Errorf("%w: template %q", appErrors.ErrNotFound, id)
	}
	if err := t.templates.Remove(id); err != nil {
		return fmt.Errorf("failed to remove template locally: %w", err)
	}
	return nil
}

// ProcessTemplate generates one expense per due occurrence, stepping the
// next-occurrence date strictly forward each time, and stamps the template
// with the processing date.
func (t *Tracker) ProcessTemplate(ctx context.Context, id string) ([]Expense, error) {
	t.mu.Lock()
	tmpl, ok := t.templates.Get(id)
	t.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: template %q", appErrors.ErrNotFound, id)
	}
	if !tmpl.Active {
		return nil, nil
	}

	now := t.now()
	var generated []Expense
	for steps := 0; schedule.IsDue(tmpl.NextDate, now) && steps < maxSweepSteps; steps++ {
		exp, err := t.AddExpense(ctx, NewExpense{
			Description: tmpl.Description,
			Category:    tmpl.Category,
			Amount:      tmpl.Amount,
			Date:        tmpl.NextDate,
		})
		if err != nil {
			return generated, err
		}
		generated = append(generated, exp)
		tmpl.NextDate = schedule.NextOccurrence(tmpl.NextDate, tmpl.Frequency)
	}

	if len(generated) > 0 {
		processedAt := now
		tmpl.LastProcessed = &processedAt
		t.mu.Lock()
		err := t.templates.Put(tmpl)
		t.mu.Unlock()
		if err != nil {
			return generated, fmt.Errorf("failed to save template locally: %w", err)
		}
	}
	return generated, nil
}

// ProcessDueTemplates sweeps every active template.
func (t *Tracker) ProcessDueTemplates(ctx context.Context) ([]Expense, error) {
	t.mu.Lock()
	templates := t.templates.GetAll()
	t.mu.Unlock()

	var generated []Expense
	for _, tmpl := range templates {
		expenses, err := t.ProcessTemplate(ctx, tmpl.ID)
		if err != nil {
			return generated, err
		}
		generated = append(generated, expenses...)
	}
	return generated, nil
}

// --- SYNC STATUS --- //

func (t *Tracker) SyncSummary() SyncSummary {
	t.mu.Lock()
	expenses := t.expenses.GetAll()
	t.mu.Unlock()

	summary := SyncSummary{Online: t.gate.IsOnline()}
	for _, exp := range expenses {
		switch exp.SyncStatus {
		case StatusSynced:
			summary.Synced++
		case StatusPending:
			summary.Pending++
		case StatusFailed:
			summary.Failed++
		}
	}
	return summary
}
