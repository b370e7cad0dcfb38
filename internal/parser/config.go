// Package parser turns raw OCR text from a photographed receipt into a
// deduplicated, validated Receipt. Input is noisy: mixed Bulgarian and
// English tokens, duplicated lines from overlapping capture regions,
// inconsistent currency and decimal formats. The parser never fails on
// malformed text; the worst case is a receipt with no items and zero total.
package parser

import "github.com/shopspring/decimal"

// Config holds the tunable thresholds of the parsing pipeline.
// Zero value is not usable; start from DefaultConfig.
type Config struct {
	// PriceMin/PriceMax bound what counts as a plausible item price.
	// Candidates outside the range are rejected, not errored.
	PriceMin decimal.Decimal
	PriceMax decimal.Decimal

	// FallbackPriceMin/FallbackPriceMax bound the looser trailing-number
	// pass that runs only when the primary cascade found nothing at all.
	FallbackPriceMin decimal.Decimal
	FallbackPriceMax decimal.Decimal

	// DedupWindow is how many previously kept lines a new line is
	// compared against when dropping near-duplicate OCR lines.
	DedupWindow int

	// DedupThreshold is the similarity ratio above which a line is
	// considered a duplicate of a recent one.
	DedupThreshold float64

	// NameSimilarity is the ratio at or above which two item names are
	// treated as the same item when their prices match.
	NameSimilarity float64

	// PriceTolerance is the maximum price difference between two items
	// still considered equal during duplicate merging.
	PriceTolerance decimal.Decimal

	// QuantityTolerance is the allowed |quantity*unit - total| slack when
	// validating the traditional "name qty x unit total" layout.
	QuantityTolerance decimal.Decimal

	// MismatchTolerance is the detected-total vs item-sum difference above
	// which a diagnostic warning is logged. Never blocks parsing.
	MismatchTolerance decimal.Decimal
}

// DefaultConfig returns the thresholds used in production.
func DefaultConfig() Config {
	return Config{
		PriceMin:          decimal.RequireFromString("0.01"),
		PriceMax:          decimal.RequireFromString("10000.00"),
		FallbackPriceMin:  decimal.RequireFromString("1.00"),
		FallbackPriceMax:  decimal.RequireFromString("500.00"),
		DedupWindow:       3,
		DedupThreshold:    0.9,
		NameSimilarity:    0.85,
		PriceTolerance:    decimal.RequireFromString("0.01"),
		QuantityTolerance: decimal.RequireFromString("0.5"),
		MismatchTolerance: decimal.RequireFromString("1.00"),
	}
}
