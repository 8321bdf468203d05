package ledger

import (
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"

	"github.com/mmynk/splitledger/internal/models"
)

// DebtEdge is a payment that would move money from a debtor to a creditor.
type DebtEdge struct {
	From     string // member who owes
	To       string // member who is owed
	Amount   decimal.Decimal
	Currency models.Currency
}

// Position is a member's signed net in one currency, or an unsigned
// outstanding amount once split into creditors and debtors.
type Position struct {
	MemberID string
	Amount   decimal.Decimal
}

// NetPositions extracts each member's net in currency c, in balance order.
func NetPositions(balances []MemberBalance, c models.Currency) []Position {
	out := make([]Position, 0, len(balances))
	for _, mb := range balances {
		out = append(out, Position{MemberID: mb.MemberID, Amount: mb.In(c).Net})
	}
	return out
}

// splitPositions separates creditors (net > Tolerance) from debtors
// (net < -Tolerance, stored as a positive amount). Both come back sorted by
// amount, largest first; equal amounts keep their input order.
func splitPositions(nets []Position) (creditors, debtors []Position) {
	negTolerance := Tolerance.Neg()
	for _, p := range nets {
		switch {
		case p.Amount.GreaterThan(Tolerance):
			creditors = append(creditors, p)
		case p.Amount.LessThan(negTolerance):
			debtors = append(debtors, Position{MemberID: p.MemberID, Amount: p.Amount.Neg()})
		}
	}
	sortLargestFirst(creditors)
	sortLargestFirst(debtors)
	return creditors, debtors
}

func sortLargestFirst(ps []Position) {
	slices.SortStableFunc(ps, func(a, b Position) int {
		return b.Amount.Cmp(a.Amount)
	})
}

// SimplifyDebts returns the transfers that settle every net in one currency.
//
// It greedily matches the largest remaining debtor with the largest remaining
// creditor. The result is deterministic for a given input order but is not
// guaranteed to have the fewest possible transfers.
func SimplifyDebts(currency models.Currency, nets []Position) []DebtEdge {
	creditors, debtors := splitPositions(nets)

	var edges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor, creditor := &debtors[i], &creditors[j]

		transfer := decimal.Min(debtor.Amount, creditor.Amount)
		if transfer.GreaterThan(Tolerance) {
			edges = append(edges, DebtEdge{
				From:     debtor.MemberID,
				To:       creditor.MemberID,
				Amount:   transfer.Round(2),
				Currency: currency,
			})
		}

		debtor.Amount = debtor.Amount.Sub(transfer)
		creditor.Amount = creditor.Amount.Sub(transfer)

		if debtor.Amount.LessThanOrEqual(Tolerance) {
			i++
		}
		if creditor.Amount.LessThanOrEqual(Tolerance) {
			j++
		}
	}
	return edges
}

// SimplifyAll runs SimplifyDebts for every currency present in balances.
func SimplifyAll(balances []MemberBalance) []DebtEdge {
	edges := []DebtEdge{}
	for _, c := range currenciesOf(balances) {
		edges = append(edges, SimplifyDebts(c, NetPositions(balances, c))...)
	}
	return edges
}
