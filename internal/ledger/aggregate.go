package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"

	"github.com/mmynk/splitledger/internal/models"
)

// Tolerance is the magnitude below which a balance or transfer counts as zero.
// It is not a business threshold.
var Tolerance = decimal.New(1, -2)

// tally accumulates one member's activity in one currency.
type tally struct {
	paid  decimal.Decimal
	share decimal.Decimal
}

// book maps member → currency → tally. Only Aggregate writes to it.
type book struct {
	order   []string
	tallies map[string]map[models.Currency]*tally
}

func newBook(members []string) *book {
	b := &book{tallies: make(map[string]map[models.Currency]*tally, len(members))}
	for _, m := range members {
		b.ensure(m)
	}
	return b
}

func (b *book) ensure(member string) map[models.Currency]*tally {
	if row, ok := b.tallies[member]; ok {
		return row
	}
	row := make(map[models.Currency]*tally)
	b.tallies[member] = row
	b.order = append(b.order, member)
	return row
}

func (b *book) at(member string, c models.Currency) *tally {
	row := b.ensure(member)
	t, ok := row[c]
	if !ok {
		t = &tally{}
		row[c] = t
	}
	return t
}

// CurrencyBalance is one member's position in one currency.
type CurrencyBalance struct {
	Currency models.Currency
	Paid     decimal.Decimal // expenses paid plus settlements paid out
	Share    decimal.Decimal // equal shares of every expense plus settlements received
	Net      decimal.Decimal // Paid - Share; positive = owed money, negative = owes money
}

// MemberBalance is a member's position in every currency they touched.
type MemberBalance struct {
	MemberID   string
	Currencies []CurrencyBalance // ordered as models.Currencies
}

// In returns the member's balance in currency c. A member with no activity in
// c has a zero balance.
func (m MemberBalance) In(c models.Currency) CurrencyBalance {
	for _, cb := range m.Currencies {
		if cb.Currency == c {
			return cb
		}
	}
	return CurrencyBalance{Currency: c}
}

// Aggregate folds a group's expenses and settlements into per-member,
// per-currency balances.
//
// Every expense is split equally between all members, payer included.
// A settlement counts as the payer paying the amount and the payee taking an
// equal share, which cancels what the payee was owed.
//
// Nets are rounded to cents and, within each currency, sum to exactly zero.
//
// The result lists current members in join order, followed by any former
// members who still appear in the records, in order of first appearance.
func Aggregate(members []string, expenses []*models.Expense, settlements []*models.Settlement) ([]MemberBalance, error) {
	if len(members) == 0 {
		return nil, ErrEmptyGroup
	}

	b := newBook(members)
	headcount := decimal.NewFromInt(int64(len(members)))

	for _, e := range expenses {
		if !e.Currency.Valid() {
			return nil, fmt.Errorf("%w: expense %s has unsupported currency %q", ErrInvalidArgument, e.ID, e.Currency)
		}
		amount := decimal.NewFromFloat(e.Amount)
		payer := b.at(e.PayerID, e.Currency)
		payer.paid = payer.paid.Add(amount)

		share := amount.Div(headcount)
		for _, m := range members {
			t := b.at(m, e.Currency)
			t.share = t.share.Add(share)
		}
	}

	for _, s := range settlements {
		if !s.Currency.Valid() {
			return nil, fmt.Errorf("%w: settlement %s has unsupported currency %q", ErrInvalidArgument, s.ID, s.Currency)
		}
		amount := decimal.NewFromFloat(s.Amount)
		payer := b.at(s.PayerID, s.Currency)
		payer.paid = payer.paid.Add(amount)
		payee := b.at(s.PayeeID, s.Currency)
		payee.share = payee.share.Add(amount)
	}

	return b.balances(), nil
}

func (b *book) balances() []MemberBalance {
	out := make([]MemberBalance, 0, len(b.order))
	for _, member := range b.order {
		row := b.tallies[member]
		mb := MemberBalance{MemberID: member, Currencies: make([]CurrencyBalance, 0, len(row))}
		for c, t := range row {
			paid := t.paid.Round(2)
			net := t.paid.Sub(t.share).Round(2)
			mb.Currencies = append(mb.Currencies, CurrencyBalance{
				Currency: c,
				Paid:     paid,
				Share:    paid.Sub(net),
				Net:      net,
			})
		}
		slices.SortFunc(mb.Currencies, func(a, b CurrencyBalance) int {
			return a.Currency.Index() - b.Currency.Index()
		})
		out = append(out, mb)
	}

	byCurrency := make(map[models.Currency][]*CurrencyBalance)
	for i := range out {
		for j := range out[i].Currencies {
			cb := &out[i].Currencies[j]
			byCurrency[cb.Currency] = append(byCurrency[cb.Currency], cb)
		}
	}
	for _, rows := range byCurrency {
		absorbResidue(rows)
	}
	return out
}

// absorbResidue makes the rounded nets of one currency sum to exactly zero.
// The cents lost to rounding go to the member with the largest net magnitude,
// the first one in member order on ties, whose share moves with it so that
// Net stays Paid - Share.
func absorbResidue(rows []*CurrencyBalance) {
	sum := decimal.Zero
	var largest *CurrencyBalance
	for _, cb := range rows {
		sum = sum.Add(cb.Net)
		if largest == nil || cb.Net.Abs().GreaterThan(largest.Net.Abs()) {
			largest = cb
		}
	}
	if sum.IsZero() {
		return
	}
	largest.Net = largest.Net.Sub(sum)
	largest.Share = largest.Share.Add(sum)
}

// currenciesOf returns every currency present in balances, in display order.
func currenciesOf(balances []MemberBalance) []models.Currency {
	seen := make(map[models.Currency]bool)
	var out []models.Currency
	for _, mb := range balances {
		for _, cb := range mb.Currencies {
			if !seen[cb.Currency] {
				seen[cb.Currency] = true
				out = append(out, cb.Currency)
			}
		}
	}
	slices.SortFunc(out, func(a, b models.Currency) int { return a.Index() - b.Index() })
	return out
}
