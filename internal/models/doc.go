// Package models defines the core domain models for Groupify.
//
// # Models
//
//   - Receipt: a parsed receipt with its line items, totals and currency
//   - ReceiptItem: a single priced line on a receipt, assignable to people
//   - Settlement: a directed payment that helps equalize consumption cost
//   - Group: a reusable list of people who frequently split bills
//   - User: a registered account that owns saved receipts
//
// People splitting a bill are identified by display-name strings. User
// accounts exist only so receipts can be saved and retrieved later; the
// names on a receipt never have to correspond to accounts.
//
// # Design Principles
//
//  1. All monetary values are decimal.Decimal, never float64. Rounding
//     happens once, at emission boundaries (balances, settlement amounts).
//  2. AssignedTo slices are initialized per item, never shared.
//  3. Models hold no behavior beyond invariant-preserving mutators
//     (Receipt.AddTip, Receipt.CalculateTotal).
package models
