// Package service wires the parser, splitter and storage into the
// operations the transport layer exposes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"groupify/internal/metrics"
	"groupify/internal/models"
	"groupify/internal/parser"
	"groupify/internal/splitter"
	"groupify/internal/storage"
)

var (
	ErrNoPeople     = errors.New("at least one person is required")
	ErrItemNotFound = errors.New("item not found on receipt")
	ErrNegativeTip  = errors.New("tip amount cannot be negative")
)

// SplitResult is the outcome of splitting one receipt.
type SplitResult struct {
	Balances    map[string]decimal.Decimal
	Settlements []models.Settlement
	EqualShare  decimal.Decimal
	People      []string
}

// ReceiptService orchestrates parsing, assignment, splitting and
// persistence.
type ReceiptService struct {
	store  storage.Store
	parser *parser.Parser
}

// NewReceiptService creates a ReceiptService backed by the given store.
func NewReceiptService(store storage.Store, p *parser.Parser) *ReceiptService {
	if p == nil {
		p = parser.New(parser.DefaultConfig(), nil)
	}
	return &ReceiptService{store: store, parser: p}
}

// ParseReceipt parses raw OCR text and persists the resulting receipt.
// Malformed text is not an error; the stored receipt may simply be empty.
func (s *ReceiptService) ParseReceipt(ctx context.Context, rawText, ownerID string) (*models.Receipt, parser.Stats, error) {
	receipt, stats := s.parser.Parse(rawText)

	fallback := "no"
	if stats.FallbackUsed {
		fallback = "yes"
	}
	metrics.ParsesTotal.WithLabelValues(fallback).Inc()
	metrics.ItemsExtracted.Add(float64(stats.MergedItems))
	metrics.DuplicatesMerged.Add(float64(stats.RawItems - stats.MergedItems))

	slog.Info("receipt parsed",
		"lines", stats.LinesTotal,
		"lines_kept", stats.LinesKept,
		"items", stats.MergedItems,
		"total", receipt.Total,
		"currency", receipt.Currency,
		"total_detected", stats.TotalDetected,
		"fallback_used", stats.FallbackUsed,
	)

	if err := s.store.CreateReceipt(ctx, receipt, ownerID); err != nil {
		return nil, stats, fmt.Errorf("failed to save receipt: %w", err)
	}
	return receipt, stats, nil
}

// GetReceipt returns a stored receipt with its items.
func (s *ReceiptService) GetReceipt(ctx context.Context, receiptID string) (*models.Receipt, error) {
	return s.store.GetReceipt(ctx, receiptID)
}

// ListReceipts returns the receipts owned by a user, newest first.
func (s *ReceiptService) ListReceipts(ctx context.Context, ownerID string) ([]*models.Receipt, error) {
	return s.store.ListReceipts(ctx, ownerID)
}

// AssignItem sets the people who consumed one item and persists the
// change.
func (s *ReceiptService) AssignItem(ctx context.Context, receiptID, itemID string, people []string) (*models.Receipt, error) {
	receipt, err := s.store.GetReceipt(ctx, receiptID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range receipt.Items {
		if receipt.Items[i].ID == itemID {
			receipt.Items[i].AssignedTo = append([]string{}, people...)
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}

	if err := s.store.UpdateReceipt(ctx, receipt); err != nil {
		return nil, err
	}
	return receipt, nil
}

// AddTip sets the tip amount and updates the grand total.
func (s *ReceiptService) AddTip(ctx context.Context, receiptID string, amount decimal.Decimal) (*models.Receipt, error) {
	if amount.IsNegative() {
		return nil, ErrNegativeTip
	}

	receipt, err := s.store.GetReceipt(ctx, receiptID)
	if err != nil {
		return nil, err
	}

	receipt.AddTip(amount)

	if err := s.store.UpdateReceipt(ctx, receipt); err != nil {
		return nil, err
	}
	return receipt, nil
}

// Split computes balances and the settlement plan for a receipt. Items
// nobody claimed are first assigned to everyone, so the whole bill is
// always covered. The resulting plan replaces any previously stored one.
func (s *ReceiptService) Split(ctx context.Context, receiptID string, people []string) (*SplitResult, error) {
	if len(people) == 0 {
		return nil, ErrNoPeople
	}

	receipt, err := s.store.GetReceipt(ctx, receiptID)
	if err != nil {
		return nil, err
	}

	unassigned := 0
	for _, item := range receipt.Items {
		if len(item.AssignedTo) == 0 {
			unassigned++
		}
	}
	if unassigned > 0 {
		slog.Info("assigning unclaimed items to everyone",
			"receipt_id", receiptID, "items", unassigned)
		splitter.AssignEqually(receipt, people)
		if err := s.store.UpdateReceipt(ctx, receipt); err != nil {
			return nil, err
		}
	}

	balances := splitter.CalculateBalances(receipt, people)
	settlements := splitter.OptimizeSettlements(balances, receipt.Total, people, receipt.Currency)
	metrics.SettlementsComputed.Add(float64(len(settlements)))

	if err := s.store.SaveSettlements(ctx, receiptID, settlements); err != nil {
		return nil, err
	}

	slog.Info("receipt split",
		"receipt_id", receiptID,
		"people", len(people),
		"transactions", len(settlements),
	)

	return &SplitResult{
		Balances:    balances,
		Settlements: settlements,
		EqualShare:  receipt.Total.Div(decimal.NewFromInt(int64(len(people)))).Round(2),
		People:      append([]string{}, people...),
	}, nil
}

// Settlements returns the stored settlement plan for a receipt.
func (s *ReceiptService) Settlements(ctx context.Context, receiptID string) ([]models.Settlement, error) {
	return s.store.ListSettlements(ctx, receiptID)
}
