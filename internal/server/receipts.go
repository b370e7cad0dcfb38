package server

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"groupify/internal/export"
	"groupify/internal/middleware"
	"groupify/internal/models"
)

type parseReceiptRequest struct {
	Text string `json:"text"`
}

type parseReceiptResponse struct {
	Receipt receiptPayload `json:"receipt"`
	Stats   statsPayload   `json:"stats"`
}

type statsPayload struct {
	LinesTotal    int  `json:"lines_total"`
	LinesKept     int  `json:"lines_kept"`
	RawItems      int  `json:"raw_items"`
	MergedItems   int  `json:"merged_items"`
	TotalDetected bool `json:"total_detected"`
	FallbackUsed  bool `json:"fallback_used"`
}

type receiptPayload struct {
	ID            string          `json:"id"`
	Items         []itemPayload   `json:"items"`
	Total         decimal.Decimal `json:"total"`
	OriginalTotal decimal.Decimal `json:"original_total"`
	TipAmount     decimal.Decimal `json:"tip_amount"`
	Currency      string          `json:"currency"`
	CreatedAt     int64           `json:"created_at"`
}

type itemPayload struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Price      decimal.Decimal `json:"price"`
	AssignedTo []string        `json:"assigned_to"`
}

func toReceiptPayload(r *models.Receipt) receiptPayload {
	p := receiptPayload{
		ID:            r.ID,
		Items:         make([]itemPayload, len(r.Items)),
		Total:         r.Total,
		OriginalTotal: r.OriginalTotal,
		TipAmount:     r.TipAmount,
		Currency:      r.Currency,
		CreatedAt:     r.CreatedAt,
	}
	for i, item := range r.Items {
		assigned := item.AssignedTo
		if assigned == nil {
			assigned = []string{}
		}
		p.Items[i] = itemPayload{
			ID:         item.ID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			Price:      item.Price,
			AssignedTo: assigned,
		}
	}
	return p
}

func (s *Server) handleParseReceipt(w http.ResponseWriter, r *http.Request) {
	var req parseReceiptRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		respondError(w, http.StatusBadRequest, "text is required")
		return
	}

	ownerID := middleware.GetUserID(r.Context())
	receipt, stats, err := s.receipts.ParseReceipt(r.Context(), req.Text, ownerID)
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, parseReceiptResponse{
		Receipt: toReceiptPayload(receipt),
		Stats: statsPayload{
			LinesTotal:    stats.LinesTotal,
			LinesKept:     stats.LinesKept,
			RawItems:      stats.RawItems,
			MergedItems:   stats.MergedItems,
			TotalDetected: stats.TotalDetected,
			FallbackUsed:  stats.FallbackUsed,
		},
	})
}

func (s *Server) handleGetReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := s.receipts.GetReceipt(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toReceiptPayload(receipt))
}

func (s *Server) handleListReceipts(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetUserID(r.Context())
	receipts, err := s.receipts.ListReceipts(r.Context(), ownerID)
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}
	payloads := make([]receiptPayload, len(receipts))
	for i, rec := range receipts {
		payloads[i] = toReceiptPayload(rec)
	}
	respondJSON(w, http.StatusOK, map[string]any{"receipts": payloads})
}

type assignItemRequest struct {
	ItemID string   `json:"item_id"`
	People []string `json:"people"`
}

func (s *Server) handleAssignItem(w http.ResponseWriter, r *http.Request) {
	var req assignItemRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	receipt, err := s.receipts.AssignItem(r.Context(), r.PathValue("id"), req.ItemID, req.People)
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toReceiptPayload(receipt))
}

type addTipRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (s *Server) handleAddTip(w http.ResponseWriter, r *http.Request) {
	var req addTipRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	receipt, err := s.receipts.AddTip(r.Context(), r.PathValue("id"), req.Amount)
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toReceiptPayload(receipt))
}

type splitRequest struct {
	People []string `json:"people"`
}

type splitResponse struct {
	Balances    map[string]decimal.Decimal `json:"balances"`
	EqualShare  decimal.Decimal            `json:"equal_share"`
	Settlements []settlementPayload        `json:"settlements"`
}

type settlementPayload struct {
	FromPerson string          `json:"from_person"`
	ToPerson   string          `json:"to_person"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
}

func (s *Server) handleSplit(w http.ResponseWriter, r *http.Request) {
	var req splitRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := s.receipts.Split(r.Context(), r.PathValue("id"), req.People)
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}
	resp := splitResponse{
		Balances:    result.Balances,
		EqualShare:  result.EqualShare,
		Settlements: make([]settlementPayload, len(result.Settlements)),
	}
	for i, st := range result.Settlements {
		resp.Settlements[i] = settlementPayload{
			FromPerson: st.FromPerson,
			ToPerson:   st.ToPerson,
			Amount:     st.Amount,
			Currency:   st.Currency,
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSettlements(w http.ResponseWriter, r *http.Request) {
	settlements, err := s.receipts.Settlements(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}
	payloads := make([]settlementPayload, len(settlements))
	for i, st := range settlements {
		payloads[i] = settlementPayload{
			FromPerson: st.FromPerson,
			ToPerson:   st.ToPerson,
			Amount:     st.Amount,
			Currency:   st.Currency,
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{"settlements": payloads})
}

// handleExport regenerates the split from the stored assignments and
// streams it as JSON or XLSX.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	receiptID := r.PathValue("id")
	receipt, err := s.receipts.GetReceipt(r.Context(), receiptID)
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}

	people := assignedPeople(receipt)
	if len(people) == 0 {
		respondError(w, http.StatusBadRequest, "receipt has no assigned people to export")
		return
	}
	result, err := s.receipts.Split(r.Context(), receiptID, people)
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}
	// Split claims any unassigned items, so reload the receipt to build
	// the document from the stored assignments.
	receipt, err = s.receipts.GetReceipt(r.Context(), receiptID)
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}
	doc := export.BuildDocument(receipt, result)

	switch r.URL.Query().Get("format") {
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "split-"+receiptID+".xlsx"))
		if err := export.WriteXLSX(w, doc); err != nil {
			s.logger.Error("failed to write xlsx export", "receipt_id", receiptID, "error", err)
		}
	case "", "json":
		w.Header().Set("Content-Type", "application/json")
		if err := export.WriteJSON(w, doc); err != nil {
			s.logger.Error("failed to write json export", "receipt_id", receiptID, "error", err)
		}
	default:
		respondError(w, http.StatusBadRequest, "unsupported export format")
	}
}

func assignedPeople(receipt *models.Receipt) []string {
	seen := make(map[string]struct{})
	var people []string
	for _, item := range receipt.Items {
		for _, person := range item.AssignedTo {
			if _, ok := seen[person]; ok {
				continue
			}
			seen[person] = struct{}{}
			people = append(people, person)
		}
	}
	return people
}
