package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"groupify/internal/models"
)

// The extraction cascade, most specific pattern first. The first pattern
// that matches AND survives name/price validation wins; a match with an
// invalid name or price falls through to the next pattern on the same
// line. "[xх×]" covers the Latin x, Cyrillic х and multiplication sign
// that OCR uses interchangeably.
var (
	// 1. "Name 2 x 3,50 = 7,00": quantity, unit and total all explicit.
	reQtyEquals = regexp.MustCompile(`^(.+?)\s+(\d+)\s*[xх×]\s*([\d.,]+)\s*=\s*([\d.,]+)\s*(?:лв|BGN|EUR|USD|[$€])?\s*$`)

	// 2. "2 Бира – 5,20": leading count, dash-separated line total.
	reCountDash = regexp.MustCompile(`^(\d+)\s+(\D.*?)\s*[-–—]\s*([\d.,]+)\s*(?:лв|BGN|EUR|USD|[$€])?\s*$`)

	// 3. "Кафе 2x3.50 7.00": traditional receipt layout.
	reQtyLayout = regexp.MustCompile(`^(.+?)\s+(\d+)\s*[xх×]\s*([\d.,]+)\s+([\d.,]+)\s*(?:лв|BGN|EUR|USD|[$€])?\s*$`)

	// 4. "Салата – 8,90": simple dash-separated price.
	reDash = regexp.MustCompile(`^(.+?)\s*[-–—]\s*([\d.,]+)\s*(?:лв|BGN|EUR|USD|[$€])?\s*$`)

	// 5. "Пица 12,50": trailing number, no separator.
	reTrailing = regexp.MustCompile(`^(.+?)\s+\$?([\d.,]+)\s*(?:лв|BGN|EUR|USD|[$€])?\s*$`)

	// Loose last-resort pattern: first decimal-looking number anywhere in
	// the line, trailing junk tolerated. Unanchored on purpose; the
	// narrow fallback price range does the filtering instead.
	reLoose = regexp.MustCompile(`^(.+?)\s+\$?(\d+[.,]\d{1,2})`)

	// Total/subtotal lines in either language. The number group is the
	// grand-total candidate; the first matching line in the receipt wins.
	reTotal = regexp.MustCompile(`(?i)(?:ОБЩА?\s+СУМА|СУМА|ВСИЧКО|ОБЩО|GRAND\s+TOTAL|TOTAL|SUBTOTAL|AMOUNT|SUM)\s*:?\s*\$?([\d.,]+)`)

	// Header/footer markers that disqualify a line from item extraction.
	reHeaderLine = regexp.MustCompile(`(?i)ОБЩА?\s+СУМА|СУМА|ВСИЧКО|ОБЩО|TOTAL|SUBTOTAL|AMOUNT\s+DUE`)
)

// extractLine runs the pattern cascade against one line and produces at
// most one item candidate. A line matching nothing is normal, not an
// error.
func (p *Parser) extractLine(line string) (models.ReceiptItem, bool) {
	if reHeaderLine.MatchString(line) {
		return models.ReceiptItem{}, false
	}

	if m := reQtyEquals.FindStringSubmatch(line); m != nil {
		name := strings.TrimSpace(m[1])
		qty, _ := strconv.Atoi(m[2])
		unit, unitOK := p.normalizePrice(m[3])
		total, totalOK := p.normalizePrice(m[4])
		if validName(name) && unitOK && totalOK && qty > 0 {
			return p.newItem(name, qty, unit, total), true
		}
	}

	if m := reCountDash.FindStringSubmatch(line); m != nil {
		qty, _ := strconv.Atoi(m[1])
		name := strings.TrimSpace(m[2])
		total, totalOK := p.normalizePrice(m[3])
		if validName(name) && totalOK && qty > 0 {
			return p.newItem(name, qty, decimal.Zero, total), true
		}
	}

	if m := reQtyLayout.FindStringSubmatch(line); m != nil {
		name := strings.TrimSpace(m[1])
		qty, _ := strconv.Atoi(m[2])
		unit, unitOK := p.normalizePrice(m[3])
		total, totalOK := p.normalizePrice(m[4])
		if validName(name) && unitOK && totalOK && qty > 0 {
			// Guard against mis-captured groups: the three numbers must
			// actually agree as quantity * unit ≈ total.
			expected := unit.Mul(decimal.NewFromInt(int64(qty)))
			if expected.Sub(total).Abs().LessThanOrEqual(p.cfg.QuantityTolerance) {
				return p.newItem(name, qty, unit, total), true
			}
		}
	}

	if m := reDash.FindStringSubmatch(line); m != nil {
		name := strings.TrimSpace(m[1])
		price, priceOK := p.normalizePrice(m[2])
		if validName(name) && priceOK {
			return p.newItem(name, 1, price, price), true
		}
	}

	if m := reTrailing.FindStringSubmatch(line); m != nil {
		name := strings.TrimSpace(m[1])
		price, priceOK := p.normalizePrice(m[2])
		if validName(name) && priceOK {
			return p.newItem(name, 1, price, price), true
		}
	}

	return models.ReceiptItem{}, false
}

// extractFallback applies the loose number pattern with the narrower
// plausible-price range. Used only when the primary cascade produced
// zero items for the entire receipt.
func (p *Parser) extractFallback(line string) (models.ReceiptItem, bool) {
	if reHeaderLine.MatchString(line) {
		return models.ReceiptItem{}, false
	}
	m := reLoose.FindStringSubmatch(line)
	if m == nil {
		return models.ReceiptItem{}, false
	}
	name := strings.TrimSpace(m[1])
	price, ok := p.normalizeFallbackPrice(m[2])
	if !ok || !validName(name) {
		return models.ReceiptItem{}, false
	}
	return p.newItem(name, 1, price, price), true
}

// extractTotal scans one line for a total-amount declaration.
func (p *Parser) extractTotal(line string) (decimal.Decimal, bool) {
	m := reTotal.FindStringSubmatch(line)
	if m == nil {
		return decimal.Zero, false
	}
	return p.normalizePrice(m[1])
}

func (p *Parser) newItem(name string, qty int, unit, total decimal.Decimal) models.ReceiptItem {
	return models.NewReceiptItem(uuid.New().String(), name, qty, unit, total)
}
