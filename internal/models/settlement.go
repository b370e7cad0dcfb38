package models

import "github.com/shopspring/decimal"

// Settlement represents a single directed payment between two people that
// helps equalize consumption cost. Immutable once produced.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	// Empty until the settlement is persisted.
	ID string

	// ReceiptID is the receipt this settlement was computed for.
	ReceiptID string

	// FromPerson is the debtor making the payment.
	FromPerson string

	// ToPerson is the creditor receiving the payment.
	ToPerson string

	// Amount is the payment amount, positive, rounded to 2 decimals.
	Amount decimal.Decimal

	// Currency is the receipt currency the amount is denominated in.
	Currency string

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64
}
