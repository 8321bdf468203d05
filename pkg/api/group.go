package api

// Member is a group member with the name other members see.
type Member struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

type Group struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Mode       string    `json:"mode"`
	InviteCode string    `json:"invite_code,omitempty"`
	Members    []*Member `json:"members"`
	CreatedBy  string    `json:"created_by"`
	CreatedAt  int64     `json:"created_at"`
}

type CreateGroupRequest struct {
	Name string `json:"name"`
	// Mode is "split" (default) or "contribution".
	Mode string `json:"mode,omitempty"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"group_id"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type JoinGroupRequest struct {
	InviteCode string `json:"invite_code"`
}

type JoinGroupResponse struct {
	Group *Group `json:"group"`
}

type LeaveGroupRequest struct {
	GroupID string `json:"group_id"`
}

type LeaveGroupResponse struct{}

type SetGroupModeRequest struct {
	GroupID string `json:"group_id"`
	Mode    string `json:"mode"`
}

type SetGroupModeResponse struct {
	Group *Group `json:"group"`
}

// CurrencyBalance is one member's position in one currency.
// Net is positive when the member is owed money.
type CurrencyBalance struct {
	Currency string  `json:"currency"`
	Symbol   string  `json:"symbol"`
	Paid     float64 `json:"paid"`
	Share    float64 `json:"share"`
	Net      float64 `json:"net"`
}

type MemberBalance struct {
	UserID      string             `json:"user_id"`
	DisplayName string             `json:"display_name"`
	Currencies  []*CurrencyBalance `json:"currencies"`
}

// DebtEdge is a suggested payment from one member to another.
type DebtEdge struct {
	From     string  `json:"from"`
	FromName string  `json:"from_name"`
	To       string  `json:"to"`
	ToName   string  `json:"to_name"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type GetGroupBalancesRequest struct {
	GroupID string `json:"group_id"`
}

type GetGroupBalancesResponse struct {
	GroupID  string           `json:"group_id"`
	Mode     string           `json:"mode"`
	Balances []*MemberBalance `json:"balances"`
	// Debts is empty for contribution-mode groups.
	Debts []*DebtEdge `json:"debts"`
}
