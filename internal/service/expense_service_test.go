package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

func TestCreateExpense_Defaults(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	reg, err := env.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email:           "dana@example.com",
		DisplayName:     "Dana",
		Pin:             "123456",
		DefaultCurrency: "usd",
	}))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	dana := testUser{id: reg.Msg.User.ID, token: reg.Msg.Token, name: "Dana"}
	group := env.sharedGroup(t, dana)

	resp, err := env.expenses.CreateExpense(ctx, authed(dana.token, &api.CreateExpenseRequest{
		GroupID:     group.ID,
		Amount:      42.5,
		Description: "Taxi",
	}))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	expense := resp.Msg.Expense
	if expense.ID == "" {
		t.Error("expected non-empty expense ID")
	}
	if expense.PayerID != dana.id || expense.PayerName != "Dana" {
		t.Errorf("payer should default to the caller, got %s (%s)", expense.PayerID, expense.PayerName)
	}
	if expense.Currency != "USD" {
		t.Errorf("currency should default to USD, got %s", expense.Currency)
	}
	if expense.Amount != 42.5 || expense.Description != "Taxi" {
		t.Errorf("unexpected expense: %+v", expense)
	}
	if expense.Date == 0 || expense.CreatedAt == 0 {
		t.Errorf("expected timestamps, got date=%d created_at=%d", expense.Date, expense.CreatedAt)
	}
}

func TestCreateExpense_Validation(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	mallory := env.register(t, "mallory")
	group := env.sharedGroup(t, alice, bob)
	ctx := context.Background()

	tests := []struct {
		name   string
		caller testUser
		req    *api.CreateExpenseRequest
		code   connect.Code
	}{
		{"non-member caller", mallory, &api.CreateExpenseRequest{GroupID: group.ID, Amount: 10, Currency: "INR"}, connect.CodePermissionDenied},
		{"non-member payer", alice, &api.CreateExpenseRequest{GroupID: group.ID, PayerID: mallory.id, Amount: 10, Currency: "INR"}, connect.CodePermissionDenied},
		{"negative amount", alice, &api.CreateExpenseRequest{GroupID: group.ID, Amount: -5, Currency: "INR"}, connect.CodeInvalidArgument},
		{"unknown currency", alice, &api.CreateExpenseRequest{GroupID: group.ID, Amount: 10, Currency: "EUR"}, connect.CodeInvalidArgument},
		{"missing group", alice, &api.CreateExpenseRequest{GroupID: "missing", Amount: 10, Currency: "INR"}, connect.CodeNotFound},
		{"empty group id", alice, &api.CreateExpenseRequest{Amount: 10, Currency: "INR"}, connect.CodeInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.expenses.CreateExpense(ctx, authed(tt.caller.token, tt.req))
			assertCode(t, err, tt.code)
		})
	}

	if len(env.publisher.types()) != 0 {
		t.Errorf("rejected expenses must not publish events, got %v", env.publisher.types())
	}
}

func TestCreateExpense_OnBehalfOfMember(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	group := env.sharedGroup(t, alice, bob)

	resp, err := env.expenses.CreateExpense(context.Background(), authed(alice.token, &api.CreateExpenseRequest{
		GroupID:  group.ID,
		PayerID:  bob.id,
		Amount:   60,
		Currency: "CAD",
	}))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	if resp.Msg.Expense.PayerID != bob.id {
		t.Errorf("payer: expected bob, got %s", resp.Msg.Expense.PayerID)
	}

	balances := env.balances(t, alice, group.ID)
	if got := netOf(t, balances, bob.id, "CAD"); got != 30 {
		t.Errorf("bob net: expected 30, got %v", got)
	}
}

func TestZeroAmountExpense(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	group := env.sharedGroup(t, alice, bob)

	env.expense(t, alice, group.ID, 0, "INR")

	balances := env.balances(t, bob, group.ID)
	if len(balances.Debts) != 0 {
		t.Errorf("zero expense must not create debts, got %+v", balances.Debts)
	}
}

func TestUpdateAndDeleteExpense(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	mallory := env.register(t, "mallory")
	group := env.sharedGroup(t, alice, bob)
	ctx := context.Background()

	expense := env.expense(t, alice, group.ID, 100, "INR")
	env.expense(t, bob, group.ID, 20, "USD")

	updated, err := env.expenses.UpdateExpense(ctx, authed(bob.token, &api.UpdateExpenseRequest{
		ExpenseID:   expense.ID,
		PayerID:     bob.id,
		Amount:      40,
		Description: "Groceries (corrected)",
	}))
	if err != nil {
		t.Fatalf("UpdateExpense failed: %v", err)
	}
	if updated.Msg.Expense.PayerID != bob.id || updated.Msg.Expense.Amount != 40 {
		t.Errorf("update not applied: %+v", updated.Msg.Expense)
	}
	if updated.Msg.Expense.Currency != "INR" {
		t.Errorf("empty currency should keep INR, got %s", updated.Msg.Expense.Currency)
	}

	balances := env.balances(t, alice, group.ID)
	if got := netOf(t, balances, bob.id, "INR"); got != 20 {
		t.Errorf("bob INR net after update: expected 20, got %v", got)
	}
	if got := netOf(t, balances, alice.id, "INR"); got != -20 {
		t.Errorf("alice INR net after update: expected -20, got %v", got)
	}

	_, err = env.expenses.UpdateExpense(ctx, authed(mallory.token, &api.UpdateExpenseRequest{ExpenseID: expense.ID, Amount: 1}))
	assertCode(t, err, connect.CodePermissionDenied)

	_, err = env.expenses.UpdateExpense(ctx, authed(alice.token, &api.UpdateExpenseRequest{ExpenseID: expense.ID, Amount: -1}))
	assertCode(t, err, connect.CodeInvalidArgument)

	_, err = env.expenses.DeleteExpense(ctx, authed(mallory.token, &api.DeleteExpenseRequest{ExpenseID: expense.ID}))
	assertCode(t, err, connect.CodePermissionDenied)

	if _, err := env.expenses.DeleteExpense(ctx, authed(alice.token, &api.DeleteExpenseRequest{ExpenseID: expense.ID})); err != nil {
		t.Fatalf("DeleteExpense failed: %v", err)
	}
	_, err = env.expenses.DeleteExpense(ctx, authed(alice.token, &api.DeleteExpenseRequest{ExpenseID: expense.ID}))
	assertCode(t, err, connect.CodeNotFound)

	list, err := env.expenses.ListExpenses(ctx, authed(alice.token, &api.ListExpensesRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(list.Msg.Expenses) != 1 || list.Msg.Expenses[0].Currency != "USD" {
		t.Errorf("expected only the USD expense to remain, got %+v", list.Msg.Expenses)
	}
	if list.Msg.Expenses[0].PayerName != "bob" {
		t.Errorf("payer name: expected bob, got %q", list.Msg.Expenses[0].PayerName)
	}

	balances = env.balances(t, alice, group.ID)
	for _, mb := range balances.Balances {
		for _, cb := range mb.Currencies {
			if cb.Currency == "INR" {
				t.Errorf("INR row should be gone after delete, got %+v for %s", cb, mb.UserID)
			}
		}
	}
}

func TestListExpenses_RequiresMembership(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "alice")
	mallory := env.register(t, "mallory")
	group := env.sharedGroup(t, alice)

	_, err := env.expenses.ListExpenses(context.Background(), authed(mallory.token, &api.ListExpensesRequest{GroupID: group.ID}))
	assertCode(t, err, connect.CodePermissionDenied)
}
