package api

type Settlement struct {
	ID        string  `json:"id"`
	GroupID   string  `json:"group_id"`
	PayerID   string  `json:"payer_id"`
	PayerName string  `json:"payer_name"`
	PayeeID   string  `json:"payee_id"`
	PayeeName string  `json:"payee_name"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Note      string  `json:"note,omitempty"`
	CreatedBy string  `json:"created_by"`
	CreatedAt int64   `json:"created_at"`
}

type RecordSettlementRequest struct {
	GroupID string `json:"group_id"`
	// PayerID defaults to the caller.
	PayerID  string  `json:"payer_id,omitempty"`
	PayeeID  string  `json:"payee_id"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Note     string  `json:"note,omitempty"`
}

type RecordSettlementResponse struct {
	Settlement *Settlement `json:"settlement"`
}

type ListSettlementsRequest struct {
	GroupID string `json:"group_id"`
}

type ListSettlementsResponse struct {
	Settlements []*Settlement `json:"settlements"`
}

type DeleteSettlementRequest struct {
	SettlementID string `json:"settlement_id"`
}

type DeleteSettlementResponse struct{}

// Counterparty is an amount owed between the caller and one member of one group.
type Counterparty struct {
	UserID      string  `json:"user_id"`
	DisplayName string  `json:"display_name"`
	GroupID     string  `json:"group_id"`
	GroupName   string  `json:"group_name"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
}

type CurrencyTotal struct {
	Currency string  `json:"currency"`
	Symbol   string  `json:"symbol"`
	Amount   float64 `json:"amount"`
}

type GetBalanceSummaryRequest struct{}

type GetBalanceSummaryResponse struct {
	// OwedByUser lists what the caller has to pay.
	OwedByUser []*Counterparty `json:"owed_by_user"`
	// OwedToUser lists what the caller is due to receive.
	OwedToUser       []*Counterparty  `json:"owed_to_user"`
	TotalsOwedByUser []*CurrencyTotal `json:"totals_owed_by_user"`
	TotalsOwedToUser []*CurrencyTotal `json:"totals_owed_to_user"`
}
