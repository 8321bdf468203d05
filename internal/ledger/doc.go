// Package ledger derives balances and debts from a group's expense and
// settlement history.
//
// Nothing here is stored. Every call reads the current records from a Source
// and folds them again:
//
//	expenses + settlements ──Aggregate──▶ []MemberBalance ──SimplifyDebts──▶ []DebtEdge
//
// Amounts are carried as decimal.Decimal inside the package and rounded to two
// places on the way out. Each currency is balanced on its own.
package ledger
