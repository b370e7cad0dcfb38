// Package export renders a finished split as a settlement-analysis
// document (JSON) or a spreadsheet (XLSX) for sharing outside the app.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"groupify/internal/models"
	"groupify/internal/service"
)

// Document is the complete exportable record of one split.
type Document struct {
	ExportInfo ExportInfo         `json:"export_info"`
	Receipt    ReceiptDoc         `json:"receipt"`
	People     []string           `json:"people"`
	Analysis   SettlementAnalysis `json:"settlement_analysis"`
}

type ExportInfo struct {
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Currency  string `json:"currency"`
}

type ReceiptDoc struct {
	Items         []ItemDoc       `json:"items"`
	Total         decimal.Decimal `json:"total"`
	OriginalTotal decimal.Decimal `json:"original_total"`
	TipAmount     decimal.Decimal `json:"tip_amount"`
	Currency      string          `json:"currency"`
}

type ItemDoc struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Price      decimal.Decimal `json:"price"`
	AssignedTo []string        `json:"assigned_to"`
}

type SettlementAnalysis struct {
	IndividualShares    map[string]decimal.Decimal `json:"individual_shares"`
	EqualSharePerPerson decimal.Decimal            `json:"equal_share_per_person"`
	TotalAmount         decimal.Decimal            `json:"total_amount"`
	Settlements         []SettlementDoc            `json:"settlements"`
	TransactionsNeeded  int                        `json:"transactions_needed"`
	Breakdown           map[string]PersonBreakdown `json:"detailed_breakdown"`
	PaymentInstructions []string                   `json:"payment_instructions"`
}

type SettlementDoc struct {
	FromPerson string          `json:"from_person"`
	ToPerson   string          `json:"to_person"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
}

// PersonBreakdown explains one person's position: what they consumed,
// what the equal share is, and whether they end up owed or owing.
type PersonBreakdown struct {
	Items          []PersonItem    `json:"items"`
	ItemsSubtotal  decimal.Decimal `json:"subtotal_from_items"`
	TipShare       decimal.Decimal `json:"tip_share"`
	TotalConsumed  decimal.Decimal `json:"total_consumed"`
	EqualShareOwed decimal.Decimal `json:"equal_share_owed"`
	Difference     decimal.Decimal `json:"difference"`
	Status         string          `json:"status"`
}

type PersonItem struct {
	ItemName    string          `json:"item_name"`
	ItemPrice   decimal.Decimal `json:"item_total_price"`
	SharedWith  int             `json:"shared_with"`
	PersonShare decimal.Decimal `json:"person_share"`
}

// BuildDocument assembles the export document from a receipt and its
// split result.
func BuildDocument(receipt *models.Receipt, result *service.SplitResult) Document {
	doc := Document{
		ExportInfo: ExportInfo{
			Timestamp: time.Now().Format(time.RFC3339),
			Version:   "1.0",
			Currency:  receipt.Currency,
		},
		Receipt: ReceiptDoc{
			Items:         make([]ItemDoc, len(receipt.Items)),
			Total:         receipt.Total,
			OriginalTotal: receipt.OriginalTotal,
			TipAmount:     receipt.TipAmount,
			Currency:      receipt.Currency,
		},
		People: result.People,
	}

	for i, item := range receipt.Items {
		doc.Receipt.Items[i] = ItemDoc{
			ID:         item.ID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			Price:      item.Price,
			AssignedTo: item.AssignedTo,
		}
	}

	analysis := SettlementAnalysis{
		IndividualShares:    result.Balances,
		EqualSharePerPerson: result.EqualShare,
		TotalAmount:         receipt.Total,
		Settlements:         make([]SettlementDoc, len(result.Settlements)),
		TransactionsNeeded:  len(result.Settlements),
		Breakdown:           buildBreakdown(receipt, result),
	}
	for i, st := range result.Settlements {
		analysis.Settlements[i] = SettlementDoc{
			FromPerson: st.FromPerson,
			ToPerson:   st.ToPerson,
			Amount:     st.Amount,
			Currency:   st.Currency,
		}
		analysis.PaymentInstructions = append(analysis.PaymentInstructions,
			fmt.Sprintf("%s pays %s %s", st.FromPerson, st.ToPerson,
				FormatAmount(st.Amount, st.Currency)))
	}
	doc.Analysis = analysis

	return doc
}

func buildBreakdown(receipt *models.Receipt, result *service.SplitResult) map[string]PersonBreakdown {
	breakdown := make(map[string]PersonBreakdown, len(result.People))

	var tipShare decimal.Decimal
	if len(result.People) > 0 {
		tipShare = receipt.TipAmount.Div(decimal.NewFromInt(int64(len(result.People)))).Round(2)
	}

	for _, person := range result.People {
		pb := PersonBreakdown{TipShare: tipShare}
		consumed := decimal.Zero

		for _, item := range receipt.Items {
			if !contains(item.AssignedTo, person) {
				continue
			}
			share := item.Price.Div(decimal.NewFromInt(int64(len(item.AssignedTo))))
			pb.Items = append(pb.Items, PersonItem{
				ItemName:    item.Name,
				ItemPrice:   item.Price,
				SharedWith:  len(item.AssignedTo),
				PersonShare: share.Round(2),
			})
			consumed = consumed.Add(share)
		}

		pb.ItemsSubtotal = consumed.Round(2)
		pb.TotalConsumed = consumed.Add(tipShare).Round(2)
		pb.EqualShareOwed = result.EqualShare
		pb.Difference = pb.TotalConsumed.Sub(result.EqualShare)

		epsilon := decimal.RequireFromString("0.01")
		switch {
		case pb.Difference.GreaterThan(epsilon):
			pb.Status = "creditor"
		case pb.Difference.LessThan(epsilon.Neg()):
			pb.Status = "debtor"
		default:
			pb.Status = "balanced"
		}

		breakdown[person] = pb
	}

	return breakdown
}

// WriteJSON writes the document as indented JSON.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode export document: %w", err)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
