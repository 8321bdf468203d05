package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// Counterparty is an amount a user owes, or is owed, by another member of one
// group.
type Counterparty struct {
	UserID    string
	GroupID   string
	GroupName string
	Amount    decimal.Decimal
	Currency  models.Currency
}

// Summary is a user's position across all of their split-mode groups.
// Groups are never netted against each other: the same counterparty can
// appear in both lists for different groups.
type Summary struct {
	OwedByUser       []Counterparty
	OwedToUser       []Counterparty
	TotalsOwedByUser map[models.Currency]decimal.Decimal
	TotalsOwedToUser map[models.Currency]decimal.Decimal
}

func newSummary() *Summary {
	return &Summary{
		OwedByUser:       []Counterparty{},
		OwedToUser:       []Counterparty{},
		TotalsOwedByUser: make(map[models.Currency]decimal.Decimal),
		TotalsOwedToUser: make(map[models.Currency]decimal.Decimal),
	}
}

// SummarizeMember pairs userID's net in each currency against the opposing
// nets of the other members of group, largest first. Unlike SimplifyDebts it
// only produces transfers that involve userID.
func SummarizeMember(userID string, group *models.Group, balances []MemberBalance) (owes, owed []Counterparty) {
	var self *MemberBalance
	for i := range balances {
		if balances[i].MemberID == userID {
			self = &balances[i]
			break
		}
	}
	if self == nil {
		return nil, nil
	}

	for _, cb := range self.Currencies {
		var others []Position
		for _, mb := range balances {
			if mb.MemberID != userID {
				others = append(others, Position{MemberID: mb.MemberID, Amount: mb.In(cb.Currency).Net})
			}
		}
		creditors, debtors := splitPositions(others)

		switch {
		case cb.Net.LessThan(Tolerance.Neg()):
			owes = append(owes, allocate(cb.Net.Neg(), creditors, group, cb.Currency)...)
		case cb.Net.GreaterThan(Tolerance):
			owed = append(owed, allocate(cb.Net, debtors, group, cb.Currency)...)
		}
	}
	return owes, owed
}

// allocate spreads remaining over opposing positions until it is drained.
func allocate(remaining decimal.Decimal, opposing []Position, group *models.Group, c models.Currency) []Counterparty {
	var out []Counterparty
	for _, p := range opposing {
		if remaining.LessThanOrEqual(Tolerance) {
			break
		}
		amount := decimal.Min(remaining, p.Amount)
		if amount.GreaterThan(Tolerance) {
			out = append(out, Counterparty{
				UserID:    p.MemberID,
				GroupID:   group.ID,
				GroupName: group.Name,
				Amount:    amount.Round(2),
				Currency:  c,
			})
		}
		remaining = remaining.Sub(amount)
	}
	return out
}

// add merges entries into the summary, combining entries that share
// counterparty, group and currency.
func (s *Summary) add(owes, owed []Counterparty) {
	s.OwedByUser = mergeCounterparties(s.OwedByUser, owes, s.TotalsOwedByUser)
	s.OwedToUser = mergeCounterparties(s.OwedToUser, owed, s.TotalsOwedToUser)
}

func mergeCounterparties(list, entries []Counterparty, totals map[models.Currency]decimal.Decimal) []Counterparty {
	for _, e := range entries {
		merged := false
		for i := range list {
			if list[i].UserID == e.UserID && list[i].GroupID == e.GroupID && list[i].Currency == e.Currency {
				list[i].Amount = list[i].Amount.Add(e.Amount)
				merged = true
				break
			}
		}
		if !merged {
			list = append(list, e)
		}
		totals[e.Currency] = totals[e.Currency].Add(e.Amount)
	}
	return list
}
