package parser

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"groupify/internal/models"
)

// Parser turns raw OCR text into a Receipt. Safe for concurrent use; each
// Parse call owns all state it mutates.
type Parser struct {
	cfg    Config
	logger *slog.Logger
}

// Stats describes what one parse did. Diagnostic only: callers use it for
// logging and metrics, never for control flow.
type Stats struct {
	LinesTotal    int
	LinesKept     int
	RawItems      int
	MergedItems   int
	TotalDetected bool
	FallbackUsed  bool
}

// New creates a Parser with the given thresholds. A nil logger falls back
// to slog.Default.
func New(cfg Config, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{cfg: cfg, logger: logger}
}

// Parse extracts items, total and currency from raw OCR text. It never
// fails on malformed input; the worst case is a receipt with no items and
// zero total.
func (p *Parser) Parse(rawText string) (*models.Receipt, Stats) {
	lines := strings.Split(rawText, "\n")
	stats := Stats{LinesTotal: len(lines)}

	kept := dedupLines(lines, p.cfg.DedupWindow, p.cfg.DedupThreshold)
	stats.LinesKept = len(kept)

	receipt := &models.Receipt{
		Items:    []models.ReceiptItem{},
		Currency: detectCurrency(strings.Join(kept, "\n")),
	}

	var rawItems []models.ReceiptItem
	for _, line := range kept {
		if item, ok := p.extractLine(line); ok {
			rawItems = append(rawItems, item)
			p.logger.Debug("item extracted",
				"name", item.Name, "quantity", item.Quantity, "price", item.Price)
		}

		if !stats.TotalDetected {
			if total, ok := p.extractTotal(line); ok && total.IsPositive() {
				receipt.Total = total
				receipt.OriginalTotal = total
				stats.TotalDetected = true
			}
		}
	}

	// Last resort: a receipt where no structured pattern fired at all is
	// usually low-quality OCR. Retry every line with the loose
	// trailing-number pattern bounded to a plausible item-price range.
	if len(rawItems) == 0 {
		for _, line := range kept {
			if item, ok := p.extractFallback(line); ok {
				rawItems = append(rawItems, item)
			}
		}
		stats.FallbackUsed = len(rawItems) > 0
		if stats.FallbackUsed {
			p.logger.Debug("fallback extraction used", "items", len(rawItems))
		}
	}
	stats.RawItems = len(rawItems)

	receipt.Items = p.mergeDuplicates(rawItems)
	stats.MergedItems = len(receipt.Items)
	if stats.RawItems > stats.MergedItems {
		p.logger.Debug("duplicate items merged",
			"raw", stats.RawItems, "unique", stats.MergedItems)
	}

	if receipt.Total.IsZero() && len(receipt.Items) > 0 {
		receipt.CalculateTotal()
	}

	if stats.TotalDetected && len(receipt.Items) > 0 {
		diff := receipt.ItemSum().Sub(receipt.OriginalTotal).Abs()
		if diff.GreaterThan(p.cfg.MismatchTolerance) {
			p.logger.Warn("detected total disagrees with item sum",
				"total", receipt.OriginalTotal, "item_sum", receipt.ItemSum(), "diff", diff)
		}
	}

	return receipt, stats
}

// ParseParallel behaves exactly like Parse but fans per-line extraction
// out over a worker pool. Line extraction is stateless, so results are
// resequenced into original line order before total detection and merge,
// which both depend on it. workers < 2 degrades to Parse. The context
// only abandons work between lines; a started line always finishes.
func (p *Parser) ParseParallel(ctx context.Context, rawText string, workers int) (*models.Receipt, Stats) {
	if workers < 2 {
		return p.Parse(rawText)
	}

	lines := strings.Split(rawText, "\n")
	stats := Stats{LinesTotal: len(lines)}

	kept := dedupLines(lines, p.cfg.DedupWindow, p.cfg.DedupThreshold)
	stats.LinesKept = len(kept)

	type indexed struct {
		idx  int
		item models.ReceiptItem
		ok   bool
	}

	jobs := make(chan int)
	results := make(chan indexed, len(kept))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				item, ok := p.extractLine(kept[idx])
				results <- indexed{idx: idx, item: item, ok: ok}
			}
		}()
	}

feed:
	for i := range kept {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	close(results)

	extracted := make([]indexed, 0, len(kept))
	for r := range results {
		if r.ok {
			extracted = append(extracted, r)
		}
	}
	sort.Slice(extracted, func(i, j int) bool { return extracted[i].idx < extracted[j].idx })

	receipt := &models.Receipt{
		Items:    []models.ReceiptItem{},
		Currency: detectCurrency(strings.Join(kept, "\n")),
	}

	var rawItems []models.ReceiptItem
	for _, e := range extracted {
		rawItems = append(rawItems, e.item)
	}
	for _, line := range kept {
		if total, ok := p.extractTotal(line); ok && total.IsPositive() {
			receipt.Total = total
			receipt.OriginalTotal = total
			stats.TotalDetected = true
			break
		}
	}

	if len(rawItems) == 0 {
		for _, line := range kept {
			if item, ok := p.extractFallback(line); ok {
				rawItems = append(rawItems, item)
			}
		}
		stats.FallbackUsed = len(rawItems) > 0
	}
	stats.RawItems = len(rawItems)

	receipt.Items = p.mergeDuplicates(rawItems)
	stats.MergedItems = len(receipt.Items)

	if receipt.Total.IsZero() && len(receipt.Items) > 0 {
		receipt.CalculateTotal()
	}

	return receipt, stats
}

// itemsSimilar decides whether two parsed items describe the same physical
// line. Three triggers, all requiring the prices to agree: identical
// normalized names, a high name-similarity ratio (OCR noise), or one name
// containing the other (partial reads of the same line).
func (p *Parser) itemsSimilar(a, b models.ReceiptItem) bool {
	priceMatch := a.Price.Sub(b.Price).Abs().LessThan(p.cfg.PriceTolerance)
	if !priceMatch {
		return false
	}

	n1 := normalizeName(a.Name)
	n2 := normalizeName(b.Name)
	if n1 == n2 {
		return true
	}
	if Ratio(n1, n2) >= p.cfg.NameSimilarity {
		return true
	}
	if len([]rune(n1)) > 3 && len([]rune(n2)) > 3 {
		if strings.Contains(n1, n2) || strings.Contains(n2, n1) {
			return true
		}
	}
	return false
}

// mergeDuplicates collapses near-duplicate items within one pass. Item i
// absorbs every later similar item: quantities sum, the line total is
// recomputed from the unit price, and assignment sets union. An absorbed
// item never initiates its own merge.
func (p *Parser) mergeDuplicates(items []models.ReceiptItem) []models.ReceiptItem {
	if len(items) == 0 {
		return []models.ReceiptItem{}
	}

	merged := make([]models.ReceiptItem, 0, len(items))
	processed := make(map[int]bool, len(items))

	for i, item := range items {
		if processed[i] {
			continue
		}

		keep := item
		keep.AssignedTo = append([]string{}, item.AssignedTo...)

		for j := i + 1; j < len(items); j++ {
			if processed[j] {
				continue
			}
			if !p.itemsSimilar(item, items[j]) {
				continue
			}

			keep.Quantity += items[j].Quantity
			keep.Price = keep.UnitPrice.Mul(decimal.NewFromInt(int64(keep.Quantity)))
			for _, person := range items[j].AssignedTo {
				if !containsString(keep.AssignedTo, person) {
					keep.AssignedTo = append(keep.AssignedTo, person)
				}
			}
			processed[j] = true
		}

		merged = append(merged, keep)
		processed[i] = true
	}

	return merged
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
