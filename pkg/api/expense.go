package api

type Expense struct {
	ID          string  `json:"id"`
	GroupID     string  `json:"group_id"`
	PayerID     string  `json:"payer_id"`
	PayerName   string  `json:"payer_name"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Description string  `json:"description"`
	Date        int64   `json:"date"`
	CreatedAt   int64   `json:"created_at"`
}

type CreateExpenseRequest struct {
	GroupID string `json:"group_id"`
	// PayerID defaults to the caller.
	PayerID string  `json:"payer_id,omitempty"`
	Amount  float64 `json:"amount"`
	// Currency defaults to the caller's default currency.
	Currency    string `json:"currency,omitempty"`
	Description string `json:"description"`
	Date        int64  `json:"date,omitempty"`
}

type CreateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type ListExpensesRequest struct {
	GroupID string `json:"group_id"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

// UpdateExpenseRequest replaces the editable fields of an expense.
// Empty PayerID, Currency and zero Date keep the stored values.
type UpdateExpenseRequest struct {
	ExpenseID   string  `json:"expense_id"`
	PayerID     string  `json:"payer_id,omitempty"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency,omitempty"`
	Description string  `json:"description"`
	Date        int64   `json:"date,omitempty"`
}

type UpdateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

type DeleteExpenseResponse struct{}
