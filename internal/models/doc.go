// Package models defines the records the ledger is built from.
//
// # Records
//
//   - User: registered account, identified by a UUID
//   - Group: a set of members sharing expenses, with a Type and a Mode
//   - Expense: money one member paid on behalf of the whole group
//   - Settlement: a payment from one member to another that offsets balances
//
// Balances and debts are never stored here. They are derived on every read by
// the ledger package.
//
// # Design Principles
//
// 1. **IDs, not pointers**: relationships are expressed with ID strings
// 2. **Closed currency set**: amounts always carry a Currency from a fixed list
// 3. **Append-mostly**: settlements are immutable once written
package models
