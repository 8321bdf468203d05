package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

// ExpenseService implements the Connect ExpenseService.
type ExpenseService struct {
	store storage.Store
	hooks LedgerHooks
}

// NewExpenseService creates a new ExpenseService. publisher and recorder may be nil.
func NewExpenseService(store storage.Store, publisher events.Publisher, recorder EntryRecorder) *ExpenseService {
	return &ExpenseService{store: store, hooks: NewLedgerHooks(publisher, recorder)}
}

func validateExpenseAmount(amount float64) error {
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("%w: expense amount must be a non-negative number, got %v", ledger.ErrInvalidArgument, amount)
	}
	return nil
}

func parseCurrency(s string) (models.Currency, error) {
	c, err := models.ParseCurrency(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ledger.ErrInvalidArgument, err)
	}
	return c, nil
}

func checkPayer(group *models.Group, payerID string) error {
	if !group.HasMember(payerID) {
		return fmt.Errorf("%w: payer %s is not a member of group %s", ledger.ErrForbidden, payerID, group.ID)
	}
	return nil
}

// CreateExpense records an expense split equally between all current members.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateExpense request received",
		"group_id", req.Msg.GroupID,
		"amount", req.Msg.Amount,
		"currency", req.Msg.Currency,
	)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, fail("CreateExpense", err, "group_id", req.Msg.GroupID)
	}

	payerID := req.Msg.PayerID
	if payerID == "" {
		payerID = userID
	}
	if err := checkPayer(group, payerID); err != nil {
		return nil, fail("CreateExpense", err)
	}
	if err := validateExpenseAmount(req.Msg.Amount); err != nil {
		return nil, fail("CreateExpense", err)
	}

	var currency models.Currency
	if req.Msg.Currency == "" {
		caller, err := s.store.GetUserByID(ctx, userID)
		if err != nil {
			return nil, fail("CreateExpense", err)
		}
		currency = caller.DefaultCurrency
	} else if currency, err = parseCurrency(req.Msg.Currency); err != nil {
		return nil, fail("CreateExpense", err)
	}

	expense := &models.Expense{
		GroupID:     group.ID,
		PayerID:     payerID,
		Amount:      req.Msg.Amount,
		Currency:    currency,
		Description: req.Msg.Description,
		Date:        req.Msg.Date,
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, fail("CreateExpense", err)
	}
	s.hooks.ExpenseRecorded(ctx, expense)

	slog.Info("Expense created", "expense_id", expense.ID, "group_id", group.ID)
	return connect.NewResponse(&api.CreateExpenseResponse{
		Expense: toAPIExpense(expense, lookupNames(ctx, s.store, []string{payerID})),
	}), nil
}

// ListExpenses lists a group's expenses, newest first.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListExpenses request received", "group_id", req.Msg.GroupID)

	if _, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID); err != nil {
		return nil, fail("ListExpenses", err, "group_id", req.Msg.GroupID)
	}
	expenses, err := s.store.ListExpensesByGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, fail("ListExpenses", err, "group_id", req.Msg.GroupID)
	}

	ids := make([]string, len(expenses))
	for i, e := range expenses {
		ids[i] = e.PayerID
	}
	n := lookupNames(ctx, s.store, ids)

	out := make([]*api.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = toAPIExpense(e, n)
	}

	slog.Info("ListExpenses successful", "group_id", req.Msg.GroupID, "count", len(out))
	return connect.NewResponse(&api.ListExpensesResponse{Expenses: out}), nil
}

// UpdateExpense edits an expense. Any current member of its group may edit it.
func (s *ExpenseService) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("UpdateExpense request received", "expense_id", req.Msg.ExpenseID)

	expense, err := s.store.GetExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, fail("UpdateExpense", err, "expense_id", req.Msg.ExpenseID)
	}
	group, err := memberGroup(ctx, s.store, expense.GroupID, userID)
	if err != nil {
		return nil, fail("UpdateExpense", err, "expense_id", expense.ID)
	}

	if req.Msg.PayerID != "" {
		if err := checkPayer(group, req.Msg.PayerID); err != nil {
			return nil, fail("UpdateExpense", err)
		}
		expense.PayerID = req.Msg.PayerID
	}
	if err := validateExpenseAmount(req.Msg.Amount); err != nil {
		return nil, fail("UpdateExpense", err)
	}
	expense.Amount = req.Msg.Amount
	if req.Msg.Currency != "" {
		if expense.Currency, err = parseCurrency(req.Msg.Currency); err != nil {
			return nil, fail("UpdateExpense", err)
		}
	}
	expense.Description = req.Msg.Description
	if req.Msg.Date != 0 {
		expense.Date = req.Msg.Date
	}

	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		return nil, fail("UpdateExpense", err, "expense_id", expense.ID)
	}

	slog.Info("Expense updated", "expense_id", expense.ID)
	return connect.NewResponse(&api.UpdateExpenseResponse{
		Expense: toAPIExpense(expense, lookupNames(ctx, s.store, []string{expense.PayerID})),
	}), nil
}

// DeleteExpense removes an expense. Any current member of its group may delete it.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteExpense request received", "expense_id", req.Msg.ExpenseID)

	expense, err := s.store.GetExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, fail("DeleteExpense", err, "expense_id", req.Msg.ExpenseID)
	}
	if _, err := memberGroup(ctx, s.store, expense.GroupID, userID); err != nil {
		return nil, fail("DeleteExpense", err, "expense_id", expense.ID)
	}
	if err := s.store.DeleteExpense(ctx, expense.ID); err != nil {
		return nil, fail("DeleteExpense", err, "expense_id", expense.ID)
	}

	slog.Info("Expense deleted", "expense_id", expense.ID)
	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}
