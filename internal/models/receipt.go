package models

import "github.com/shopspring/decimal"

// ReceiptItem represents a single priced line on a receipt.
// Items can be shared among multiple people; a shared item is split
// equally between everyone it is assigned to.
type ReceiptItem struct {
	// ID is the unique identifier for the item (UUID format).
	// Stable for the lifetime of the receipt it belongs to.
	ID string

	// Name is the item text as it appeared on the receipt.
	Name string

	// Quantity is the number of units on this line. Always >= 1.
	Quantity int

	// UnitPrice is the price of a single unit. When the receipt did not
	// state it explicitly it is derived as Price/Quantity.
	UnitPrice decimal.Decimal

	// Price is the line total (UnitPrice * Quantity).
	Price decimal.Decimal

	// AssignedTo is the list of people who consumed this item.
	// Empty means unassigned; order carries no meaning.
	AssignedTo []string
}

// NewReceiptItem builds an item with the unit price derived from the line
// total when it was not parsed explicitly.
func NewReceiptItem(id, name string, quantity int, unitPrice, price decimal.Decimal) ReceiptItem {
	if quantity < 1 {
		quantity = 1
	}
	if unitPrice.IsZero() && price.IsPositive() {
		unitPrice = price.Div(decimal.NewFromInt(int64(quantity)))
	}
	return ReceiptItem{
		ID:         id,
		Name:       name,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
		Price:      price,
		AssignedTo: []string{},
	}
}

// Receipt is a whole parsed receipt.
// Invariant: Total = OriginalTotal + TipAmount.
type Receipt struct {
	// ID is the unique identifier for the receipt (UUID format).
	// Empty until the receipt is persisted.
	ID string

	// Items are the parsed line items, in order of first detection.
	Items []ReceiptItem

	// Total is the grand total including tip.
	Total decimal.Decimal

	// OriginalTotal is the total before tip.
	OriginalTotal decimal.Decimal

	// TipAmount is the tip added on top of the detected total.
	TipAmount decimal.Decimal

	// Currency is the detected ISO-like currency code (e.g. "BGN").
	Currency string

	// CreatedAt is the Unix timestamp when the receipt was persisted.
	CreatedAt int64
}

// AddTip sets the tip and recomputes the grand total.
func (r *Receipt) AddTip(amount decimal.Decimal) {
	r.TipAmount = amount
	r.Total = r.OriginalTotal.Add(amount)
}

// CalculateTotal derives the totals from the item prices. Used when no
// total line was detected on the receipt itself.
func (r *Receipt) CalculateTotal() {
	sum := decimal.Zero
	for _, item := range r.Items {
		sum = sum.Add(item.Price)
	}
	r.Total = sum.Add(r.TipAmount)
	if r.OriginalTotal.IsZero() {
		r.OriginalTotal = r.Total.Sub(r.TipAmount)
	}
}

// ItemSum returns the sum of all line totals.
func (r *Receipt) ItemSum() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range r.Items {
		sum = sum.Add(item.Price)
	}
	return sum
}
