package service

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

// names maps user IDs to display names. Unknown IDs map to themselves.
type names map[string]string

func (n names) of(id string) string {
	if name, ok := n[id]; ok {
		return name
	}
	return id
}

// lookupNames resolves display names. A failed lookup is logged and the
// response falls back to raw IDs rather than failing the whole call.
func lookupNames(ctx context.Context, store storage.Store, ids []string) names {
	out := make(names, len(ids))
	users, err := store.GetUsersByIDs(ctx, ids)
	if err != nil {
		slog.Warn("Display name lookup failed", "count", len(ids), "error", err)
		return out
	}
	for id, u := range users {
		out[id] = u.DisplayName
	}
	return out
}

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:              u.ID,
		Email:           u.Email,
		DisplayName:     u.DisplayName,
		DefaultCurrency: string(u.DefaultCurrency),
		CreatedAt:       u.CreatedAt,
	}
}

func toAPIGroup(g *models.Group, n names) *api.Group {
	members := make([]*api.Member, len(g.Members))
	for i, id := range g.Members {
		members[i] = &api.Member{UserID: id, DisplayName: n.of(id)}
	}
	return &api.Group{
		ID:         g.ID,
		Name:       g.Name,
		Type:       string(g.Type),
		Mode:       string(g.Mode),
		InviteCode: g.InviteCode,
		Members:    members,
		CreatedBy:  g.CreatedBy,
		CreatedAt:  g.CreatedAt,
	}
}

func toAPIExpense(e *models.Expense, n names) *api.Expense {
	return &api.Expense{
		ID:          e.ID,
		GroupID:     e.GroupID,
		PayerID:     e.PayerID,
		PayerName:   n.of(e.PayerID),
		Amount:      e.Amount,
		Currency:    string(e.Currency),
		Description: e.Description,
		Date:        e.Date,
		CreatedAt:   e.CreatedAt,
	}
}

func toAPISettlement(s *models.Settlement, n names) *api.Settlement {
	return &api.Settlement{
		ID:        s.ID,
		GroupID:   s.GroupID,
		PayerID:   s.PayerID,
		PayerName: n.of(s.PayerID),
		PayeeID:   s.PayeeID,
		PayeeName: n.of(s.PayeeID),
		Amount:    s.Amount,
		Currency:  string(s.Currency),
		Note:      s.Note,
		CreatedBy: s.CreatedBy,
		CreatedAt: s.CreatedAt,
	}
}

func toAPIBalances(balances []ledger.MemberBalance, n names) []*api.MemberBalance {
	out := make([]*api.MemberBalance, len(balances))
	for i, mb := range balances {
		currencies := make([]*api.CurrencyBalance, len(mb.Currencies))
		for j, cb := range mb.Currencies {
			currencies[j] = &api.CurrencyBalance{
				Currency: string(cb.Currency),
				Symbol:   cb.Currency.Symbol(),
				Paid:     cb.Paid.InexactFloat64(),
				Share:    cb.Share.InexactFloat64(),
				Net:      cb.Net.InexactFloat64(),
			}
		}
		out[i] = &api.MemberBalance{UserID: mb.MemberID, DisplayName: n.of(mb.MemberID), Currencies: currencies}
	}
	return out
}

func toAPIDebts(debts []ledger.DebtEdge, n names) []*api.DebtEdge {
	out := make([]*api.DebtEdge, len(debts))
	for i, d := range debts {
		out[i] = &api.DebtEdge{
			From:     d.From,
			FromName: n.of(d.From),
			To:       d.To,
			ToName:   n.of(d.To),
			Amount:   d.Amount.InexactFloat64(),
			Currency: string(d.Currency),
		}
	}
	return out
}

func toAPICounterparties(entries []ledger.Counterparty, n names) []*api.Counterparty {
	out := make([]*api.Counterparty, len(entries))
	for i, c := range entries {
		out[i] = &api.Counterparty{
			UserID:      c.UserID,
			DisplayName: n.of(c.UserID),
			GroupID:     c.GroupID,
			GroupName:   c.GroupName,
			Amount:      c.Amount.InexactFloat64(),
			Currency:    string(c.Currency),
		}
	}
	return out
}

// toAPITotals lists totals in currency enum order.
func toAPITotals(totals map[models.Currency]decimal.Decimal) []*api.CurrencyTotal {
	out := []*api.CurrencyTotal{}
	for _, c := range models.Currencies {
		if amount, ok := totals[c]; ok {
			out = append(out, &api.CurrencyTotal{Currency: string(c), Symbol: c.Symbol(), Amount: amount.InexactFloat64()})
		}
	}
	return out
}
