package models

// Expense is an amount one member paid on behalf of the whole group.
// Every current member carries an equal share of it.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group the expense is charged to.
	GroupID string

	// PayerID is the member who paid.
	PayerID string

	// Amount is the total paid. Never negative.
	Amount float64

	// Currency of Amount.
	Currency Currency

	// Description is free text (e.g., "Groceries").
	Description string

	// Date is the Unix timestamp the expense happened on.
	Date int64

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}
