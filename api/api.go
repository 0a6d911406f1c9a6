package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/0xcafe-io/iz"
	"github.com/fatali-fataliyev/expense_sync/internal/schedule"
	"github.com/fatali-fataliyev/expense_sync/internal/tracker"
	"github.com/fatali-fataliyev/expense_sync/logging"
)

type Api struct {
	Service *tracker.Tracker
}

func NewApi(service *tracker.Tracker) *Api {
	return &Api{
		Service: service,
	}
}

// EXPENSE HANDLERS.

func (api *Api) SaveExpenseHandler(r *iz.Request) iz.Responder {
	var req SaveExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		msg := fmt.Sprintf("invalid request body: %s", err.Error())
		return iz.Respond().Status(400).Text(msg)
	}

	category, err := tracker.ParseCategory(req.Category)
	if err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(err.Error())
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(err.Error())
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(err.Error())
	}

	expense, err := api.Service.AddExpense(r.Context(), tracker.NewExpense{
		Description: req.Description,
		Category:    category,
		Amount:      amount,
		Date:        date,
		Note:        req.Note,
		ReceiptRef:  req.ReceiptRef,
	})
	if err != nil {
		logging.Logger.Errorf("failed to save expense: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(err.Error())
	}
	return iz.Respond().Status(201).JSON(expense)
}

func (api *Api) GetExpensesHandler(r *iz.Request) iz.Responder {
	return iz.Respond().Status(200).JSON(api.Service.Expenses())
}

func (api *Api) UpdateExpenseHandler(r *iz.Request) iz.Responder {
	id := r.PathValue("id")
	var req UpdateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		msg := fmt.Sprintf("invalid request body: %s", err.Error())
		return iz.Respond().Status(400).Text(msg)
	}

	patch := tracker.ExpensePatch{
		Description: req.Description,
		Note:        req.Note,
		ReceiptRef:  req.ReceiptRef,
	}
	if req.Category != nil {
		category, err := tracker.ParseCategory(*req.Category)
		if err != nil {
			return iz.Respond().Status(httpStatusFromError(err)).Text(err.Error())
		}
		patch.Category = &category
	}
	if req.Amount != nil {
		amount, err := parseAmount(*req.Amount)
		if err != nil {
			return iz.Respond().Status(httpStatusFromError(err)).Text(err.Error())
		}
		patch.Amount = &amount
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			return iz.Respond().Status(httpStatusFromError(err)).Text(err.Error())
		}
		patch.Date = &date
	}

	expense, err := api.Service.UpdateExpense(r.Context(), id, patch)
	if err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(err.Error())
	}
	return iz.Respond().Status(200).JSON(expense)
}

func (api *Api) DeleteExpenseHandler(r *iz.Request) iz.Responder {
	id := r.PathValue("id")
	if err := api.Service.DeleteExpense(r.Context(), id); err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(err.Error())
	}
	return iz.Respond().Status(200).JSON(MessageResponse{Message: "expense deleted"})
}

func (api *Api) RetryExpenseHandler(r *iz.Request) iz.Responder {
	id := r.PathValue("id")
	expense, err := api.Service.RetryExpense(r.Context(), id)
	if err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(err.Error())
	}
	return iz.Respond().Status(200).JSON(expense)
}

// BUDGET HANDLERS.

func (api *Api) GetBudgetHandler(r *iz.Request) iz.Responder {
	budget, ok := api.Service.CurrentBudget()
	if !ok {
		return iz.Respond().Status(404).Text("no budget set for the current month")
	}
	return iz.Respond().Status(200).JSON(budget)
}

func (api *Api) SetBudgetHandler(r *iz.Request) iz.Responder {
	var req SetBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		msg := fmt.Sprintf("invalid request body: %s", err.Error())
		return iz.Respond().Status(400).Text(msg)
	}

	limit, err := parseAmount(req.Limit)
	if err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(err.Error())
	}

	month := req.Month
	if month == "" {
		month = time.Now().Format("2006-01")
	}

	budget, err := api.Service.SetBudget(r.Context(), month, limit)
	if err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(err.Error())
	}
	return iz.Respond().Status(201).JSON(budget)
}

func (api *Api) GetBudgetSummaryHandler(r *iz.Request) iz.Responder {
	return iz.Respond().Status(200).JSON(api.Service.BudgetSummary())
}

// BILL HANDLERS.

func (api *Api) SaveBillHandler(r *iz.Request) iz.Responder {
	var req SaveBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		msg := fmt.Sprintf("invalid request body: %s", err.Error())
		return iz.Respond().Status(400).Text(msg)
	}

	category, err := tracker.ParseCategory(req.Category)
	if err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(err.Error())
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(err.Error())
	}
	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(err.Error())
	}

	bill, err := api.Service.AddBill(tracker.NewBill{
		Name:      req.Name,
		Amount:    amount,
		Category:  category,
		DueDate:   dueDate,
		Recurring: req.Recurring,
		Frequency: schedule.Frequency(req.Frequency),
	})
	if err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(err.Error())
	}
	return iz.Respond().Status(201).JSON(bill)
}

func (api *Api) GetBillsHandler(r *iz.Request) iz.Responder {
	return iz.Respond().Status(200).JSON(api.Service.Bills())
}

func (api *Api) PayBillHandler(r *iz.Request) iz.Responder {
	id := r.PathValue("id")
	bill, successor, err := api.Service.MarkBillPaid(id)
	if err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(err.Error())
	}
	return iz.Respond().Status(200).JSON(PaidBillResponse{Bill: bill, Successor: successor})
}

func (api *Api) DeleteBillHandler(r *iz.Request) iz.Responder {
	id := r.PathValue("id")
	if err := api.Service.DeleteBill(id); err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(err.Error())
	}
	return iz.Respond().Status(200).JSON(MessageResponse{Message: "bill deleted"})
}

// RECURRING TEMPLATE HANDLERS.

func (api *Api) SaveTemplateHandler(r *iz.Request) iz.Responder {
	var req SaveTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		msg := fmt.Sprintf("invalid request body: %s", err.Error())
		return iz.Respond().Status(400).Text(msg)
	}

	category, err := tracker.ParseCategory(req.Category)
	if err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(err.Error())
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(err.Error())
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(err.Error())
	}

	template, err := api.Service.AddTemplate(tracker.NewTemplate{
		Description: req.Description,
		Category:    category,
		Amount:      amount,
		Frequency:   schedule.Frequency(req.Frequency),
		StartDate:   startDate,
	})
	if err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(err.Error())
	}
	return iz.Respond().Status(201).JSON(template)
}

func (api *Api) GetTemplatesHandler(r *iz.Request) iz.Responder {
	return iz.Respond().Status(200).JSON(api.Service.Templates())
}

func (api *Api) ToggleTemplateHandler(r *iz.Request) iz.Responder {
	id := r.PathValue("id")
	template, err := api.Service.ToggleTemplate(id)
	if err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(err.Error())
	}
	return iz.Respond().Status(200).JSON(template)
}

func (api *Api) ProcessTemplatesHandler(r *iz.Request) iz.Responder {
	generated, err := api.Service.ProcessDueTemplates(r.Context())
	if err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(err.Error())
	}
	return iz.Respond().Status(200).JSON(ProcessedResponse{Generated: generated, Count: len(generated)})
}

func (api *Api) DeleteTemplateHandler(r *iz.Request) iz.Responder {
	id := r.PathValue("id")
	if err := api.Service.DeleteTemplate(id); err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(err.Error())
	}
	return iz.Respond().Status(200).JSON(MessageResponse{Message: "template deleted"})
}

// SYNC HANDLERS.

func (api *Api) GetSyncStatusHandler(r *iz.Request) iz.Responder {
	return iz.Respond().Status(200).JSON(api.Service.SyncSummary())
}

func (api *Api) ReplayHandler(r *iz.Request) iz.Responder {
	api.Service.ReplayPending(r.Context())
	return iz.Respond().Status(200).JSON(api.Service.SyncSummary())
}

func (api *Api) PullHandler(r *iz.Request) iz.Responder {
	if err := api.Service.PullRemote(r.Context()); err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(err.Error())
	}
	return iz.Respond().Status(200).JSON(api.Service.SyncSummary())
}
