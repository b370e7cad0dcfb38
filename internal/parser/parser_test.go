package parser

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"groupify/internal/models"
)

func TestNormalizePrice(t *testing.T) {
	p := New(DefaultConfig(), nil)

	tests := []struct {
		name   string
		raw    string
		want   string
		wantOK bool
	}{
		{name: "comma decimal", raw: "12,50", want: "12.5", wantOK: true},
		{name: "dot decimal", raw: "12.50", want: "12.5", wantOK: true},
		{name: "european thousands", raw: "1.234,56", want: "1234.56", wantOK: true},
		{name: "comma thousands", raw: "1,234", want: "1234", wantOK: true},
		{name: "dollar prefix stripped", raw: "$12.50", want: "12.5", wantOK: true},
		{name: "currency suffix stripped", raw: "12,50лв", want: "12.5", wantOK: true},
		{name: "above range rejected", raw: "99999", wantOK: false},
		{name: "zero rejected", raw: "0", wantOK: false},
		{name: "no digits rejected", raw: "лв", wantOK: false},
		{name: "empty rejected", raw: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := p.normalizePrice(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("normalizePrice(%q) ok = %v, want %v", tt.raw, ok, tt.wantOK)
			}
			if !tt.wantOK {
				return
			}
			want := decimal.RequireFromString(tt.want)
			if !got.Equal(want) {
				t.Errorf("normalizePrice(%q) = %v, want %v", tt.raw, got, want)
			}
		})
	}
}

func TestFallbackPriceRange(t *testing.T) {
	p := New(DefaultConfig(), nil)

	if _, ok := p.normalizeFallbackPrice("0,50"); ok {
		t.Error("0.50 should be below the fallback range")
	}
	if _, ok := p.normalizeFallbackPrice("600"); ok {
		t.Error("600 should be above the fallback range")
	}
	got, ok := p.normalizeFallbackPrice("12,50")
	if !ok || !got.Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("normalizeFallbackPrice(12,50) = %v, %v; want 12.5, true", got, ok)
	}
}

func TestDetectCurrency(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "lev markers", text: "Кафе 3,50 лв\nОБЩО 3,50 лв", want: CurrencyBGN},
		{name: "dollar markers", text: "Pizza $12.50\nBeer $5.00", want: CurrencyUSD},
		{name: "euro markers", text: "Pasta 9,00 €\nWine 12,00 EUR", want: CurrencyEUR},
		{name: "no markers defaults to lev", text: "Кафе 3,50\nПица 12,50", want: CurrencyBGN},
		{name: "tie defaults to lev", text: "3,50 лв and $3.50", want: CurrencyBGN},
		{name: "empty defaults to lev", text: "", want: CurrencyBGN},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectCurrency(tt.text); got != tt.want {
				t.Errorf("detectCurrency(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "identical", a: "кафе", b: "кафе", want: 1.0},
		{name: "case insensitive", a: "КАФЕ", b: "кафе", want: 1.0},
		{name: "both empty", a: "", b: "", want: 1.0},
		{name: "one empty", a: "кафе", b: "", want: 0.0},
		{name: "disjoint", a: "abcd", b: "wxyz", want: 0.0},
		{name: "one char differs", a: "abcd", b: "abcx", want: 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Ratio(tt.a, tt.b)
			if got < tt.want-0.001 || got > tt.want+0.001 {
				t.Errorf("Ratio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}

	if Ratio("пица маргарита", "пица маргарита.") <= 0.9 {
		t.Error("near-identical OCR lines should score above the dedup threshold")
	}
}

func TestDedupLines(t *testing.T) {
	tests := []struct {
		name      string
		lines     []string
		wantCount int
	}{
		{
			name:      "exact duplicate within window dropped",
			lines:     []string{"Кафе 3,50", "Кафе 3,50"},
			wantCount: 1,
		},
		{
			name:      "blank lines dropped",
			lines:     []string{"", "Кафе 3,50", "   ", "Пица 12,50"},
			wantCount: 2,
		},
		{
			name: "duplicate outside window survives",
			lines: []string{
				"Кафе 3,50",
				"Пица 12,50",
				"Салата 8,90",
				"Супа 4,20",
				"Кафе 3,50",
			},
			wantCount: 5,
		},
		{
			name:      "distinct lines all kept",
			lines:     []string{"Кафе 3,50", "Пица 12,50", "Салата 8,90"},
			wantCount: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dedupLines(tt.lines, 3, 0.9)
			if len(got) != tt.wantCount {
				t.Errorf("dedupLines() kept %d lines, want %d: %v", len(got), tt.wantCount, got)
			}
		})
	}
}

func TestValidName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "cyrillic item", input: "Кафе", want: true},
		{name: "latin item", input: "Pizza Margherita", want: true},
		{name: "too short", input: "К", want: false},
		{name: "digits only", input: "12345", want: false},
		{name: "punctuation only", input: "--", want: false},
		{name: "bulgarian total keyword", input: "ОБЩА СУМА", want: false},
		{name: "vat keyword", input: "ДДС 20%", want: false},
		{name: "english total keyword", input: "Subtotal", want: false},
		{name: "thanks footer", input: "Благодарим Ви", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := validName(tt.input); got != tt.want {
				t.Errorf("validName(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractLine(t *testing.T) {
	p := New(DefaultConfig(), nil)

	tests := []struct {
		name         string
		line         string
		wantOK       bool
		validateFunc func(t *testing.T, item models.ReceiptItem)
	}{
		{
			name:   "quantity with equals",
			line:   "Бира 2 x 2,50 = 5,00",
			wantOK: true,
			validateFunc: func(t *testing.T, item models.ReceiptItem) {
				if item.Name != "Бира" {
					t.Errorf("name = %q, want Бира", item.Name)
				}
				if item.Quantity != 2 {
					t.Errorf("quantity = %d, want 2", item.Quantity)
				}
				if !item.UnitPrice.Equal(decimal.RequireFromString("2.5")) {
					t.Errorf("unit price = %v, want 2.5", item.UnitPrice)
				}
				if !item.Price.Equal(decimal.RequireFromString("5")) {
					t.Errorf("price = %v, want 5", item.Price)
				}
			},
		},
		{
			name:   "leading count with dash",
			line:   "2 Бира - 5,20",
			wantOK: true,
			validateFunc: func(t *testing.T, item models.ReceiptItem) {
				if item.Quantity != 2 {
					t.Errorf("quantity = %d, want 2", item.Quantity)
				}
				if !item.Price.Equal(decimal.RequireFromString("5.2")) {
					t.Errorf("price = %v, want 5.2", item.Price)
				}
				if !item.UnitPrice.Equal(decimal.RequireFromString("2.6")) {
					t.Errorf("derived unit price = %v, want 2.6", item.UnitPrice)
				}
			},
		},
		{
			name:   "quantity layout",
			line:   "Кафе 2x3.50 7.00",
			wantOK: true,
			validateFunc: func(t *testing.T, item models.ReceiptItem) {
				if item.Name != "Кафе" {
					t.Errorf("name = %q, want Кафе", item.Name)
				}
				if item.Quantity != 2 {
					t.Errorf("quantity = %d, want 2", item.Quantity)
				}
				if !item.Price.Equal(decimal.RequireFromString("7")) {
					t.Errorf("price = %v, want 7", item.Price)
				}
			},
		},
		{
			name:   "cyrillic multiplication sign",
			line:   "Салата 2 х 4,25 = 8,50",
			wantOK: true,
			validateFunc: func(t *testing.T, item models.ReceiptItem) {
				if item.Quantity != 2 {
					t.Errorf("quantity = %d, want 2", item.Quantity)
				}
				if !item.Price.Equal(decimal.RequireFromString("8.5")) {
					t.Errorf("price = %v, want 8.5", item.Price)
				}
			},
		},
		{
			name:   "dash separated price",
			line:   "Салата – 8,90",
			wantOK: true,
			validateFunc: func(t *testing.T, item models.ReceiptItem) {
				if item.Quantity != 1 {
					t.Errorf("quantity = %d, want 1", item.Quantity)
				}
				if !item.Price.Equal(decimal.RequireFromString("8.9")) {
					t.Errorf("price = %v, want 8.9", item.Price)
				}
			},
		},
		{
			name:   "trailing number",
			line:   "Пица 12,50",
			wantOK: true,
			validateFunc: func(t *testing.T, item models.ReceiptItem) {
				if item.Name != "Пица" {
					t.Errorf("name = %q, want Пица", item.Name)
				}
				if !item.Price.Equal(decimal.RequireFromString("12.5")) {
					t.Errorf("price = %v, want 12.5", item.Price)
				}
			},
		},
		{
			name:   "trailing number with currency suffix",
			line:   "Пица 12,50 лв",
			wantOK: true,
			validateFunc: func(t *testing.T, item models.ReceiptItem) {
				if !item.Price.Equal(decimal.RequireFromString("12.5")) {
					t.Errorf("price = %v, want 12.5", item.Price)
				}
			},
		},
		{
			name:   "inconsistent quantity layout falls through to trailing",
			line:   "Кафе 2x3.50 9.00",
			wantOK: true,
			validateFunc: func(t *testing.T, item models.ReceiptItem) {
				if item.Quantity != 1 {
					t.Errorf("quantity = %d, want 1 from the trailing pattern", item.Quantity)
				}
				if !item.Price.Equal(decimal.RequireFromString("9")) {
					t.Errorf("price = %v, want 9", item.Price)
				}
			},
		},
		{name: "total line skipped", line: "ОБЩО: 45.20", wantOK: false},
		{name: "english total skipped", line: "TOTAL $23.45", wantOK: false},
		{name: "no number", line: "Ресторант Хемус", wantOK: false},
		{name: "digits only name rejected", line: "1234 5678", wantOK: false},
		{name: "empty line", line: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, ok := p.extractLine(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("extractLine(%q) ok = %v, want %v", tt.line, ok, tt.wantOK)
			}
			if tt.validateFunc != nil {
				tt.validateFunc(t, item)
			}
		})
	}
}

func TestExtractTotal(t *testing.T) {
	p := New(DefaultConfig(), nil)

	tests := []struct {
		name   string
		line   string
		want   string
		wantOK bool
	}{
		{name: "bulgarian total", line: "ОБЩО: 45.20", want: "45.2", wantOK: true},
		{name: "bulgarian sum", line: "ОБЩА СУМА 28,00", want: "28", wantOK: true},
		{name: "english total with dollar", line: "TOTAL $23.45", want: "23.45", wantOK: true},
		{name: "grand total", line: "GRAND TOTAL 99,90", want: "99.9", wantOK: true},
		{name: "item line no match", line: "Пица 12,50", wantOK: false},
		{name: "total keyword without amount", line: "ОБЩО", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := p.extractTotal(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("extractTotal(%q) ok = %v, want %v", tt.line, ok, tt.wantOK)
			}
			if tt.wantOK && !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("extractTotal(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	p := New(DefaultConfig(), nil)

	tests := []struct {
		name         string
		text         string
		validateFunc func(t *testing.T, receipt *models.Receipt, stats Stats)
	}{
		{
			name: "full bulgarian receipt with merge and detected total",
			text: "Ресторант Хемус\n" +
				"Кафе 3,50\n" +
				"Пица – 12,50\n" +
				"Салата 2 х 4,25 = 8,50\n" +
				"Кафе 3.50\n" +
				"ОБЩО: 28,00\n" +
				"Благодарим Ви!",
			validateFunc: func(t *testing.T, receipt *models.Receipt, stats Stats) {
				if len(receipt.Items) != 3 {
					t.Fatalf("items = %d, want 3: %+v", len(receipt.Items), receipt.Items)
				}
				coffee := receipt.Items[0]
				if coffee.Quantity != 2 {
					t.Errorf("merged coffee quantity = %d, want 2", coffee.Quantity)
				}
				if !coffee.Price.Equal(decimal.RequireFromString("7")) {
					t.Errorf("merged coffee price = %v, want 7", coffee.Price)
				}
				if !receipt.Total.Equal(decimal.RequireFromString("28")) {
					t.Errorf("total = %v, want 28", receipt.Total)
				}
				if receipt.Currency != CurrencyBGN {
					t.Errorf("currency = %q, want BGN", receipt.Currency)
				}
				if !stats.TotalDetected {
					t.Error("expected the total line to be detected")
				}
				if stats.FallbackUsed {
					t.Error("fallback should not trigger when the cascade extracts items")
				}
				if stats.RawItems != 4 || stats.MergedItems != 3 {
					t.Errorf("raw/merged = %d/%d, want 4/3", stats.RawItems, stats.MergedItems)
				}
			},
		},
		{
			name: "dollar receipt computes total from items",
			text: "Pizza $12.50\nBeer $5.00",
			validateFunc: func(t *testing.T, receipt *models.Receipt, stats Stats) {
				if len(receipt.Items) != 2 {
					t.Fatalf("items = %d, want 2", len(receipt.Items))
				}
				if receipt.Currency != CurrencyUSD {
					t.Errorf("currency = %q, want USD", receipt.Currency)
				}
				if !receipt.Total.Equal(decimal.RequireFromString("17.5")) {
					t.Errorf("total = %v, want 17.5", receipt.Total)
				}
				if stats.TotalDetected {
					t.Error("no total line present, TotalDetected should be false")
				}
			},
		},
		{
			name: "detected total stands even when items disagree",
			text: "Пица 10,00\nTOTAL: 50,00",
			validateFunc: func(t *testing.T, receipt *models.Receipt, stats Stats) {
				if !receipt.Total.Equal(decimal.RequireFromString("50")) {
					t.Errorf("total = %v, want the detected 50", receipt.Total)
				}
				if !stats.TotalDetected {
					t.Error("expected TotalDetected")
				}
			},
		},
		{
			name: "first total line wins",
			text: "СУМА 20,00\nTOTAL 99,00",
			validateFunc: func(t *testing.T, receipt *models.Receipt, stats Stats) {
				if !receipt.Total.Equal(decimal.RequireFromString("20")) {
					t.Errorf("total = %v, want the first detected 20", receipt.Total)
				}
			},
		},
		{
			name: "fallback pass rescues noisy lines",
			text: "Кафе 3,50 2бр\nЧай 2,20 1бр",
			validateFunc: func(t *testing.T, receipt *models.Receipt, stats Stats) {
				if len(receipt.Items) != 2 {
					t.Fatalf("items = %d, want 2: %+v", len(receipt.Items), receipt.Items)
				}
				if !stats.FallbackUsed {
					t.Error("expected the fallback pass to fire")
				}
				if !receipt.Items[0].Price.Equal(decimal.RequireFromString("3.5")) {
					t.Errorf("price = %v, want 3.5", receipt.Items[0].Price)
				}
			},
		},
		{
			name: "garbage input yields empty receipt",
			text: "~~~\n###\n...",
			validateFunc: func(t *testing.T, receipt *models.Receipt, stats Stats) {
				if len(receipt.Items) != 0 {
					t.Errorf("items = %d, want 0", len(receipt.Items))
				}
				if !receipt.Total.IsZero() {
					t.Errorf("total = %v, want 0", receipt.Total)
				}
			},
		},
		{
			name: "empty input yields empty receipt",
			text: "",
			validateFunc: func(t *testing.T, receipt *models.Receipt, stats Stats) {
				if len(receipt.Items) != 0 {
					t.Errorf("items = %d, want 0", len(receipt.Items))
				}
				if receipt.Currency != CurrencyBGN {
					t.Errorf("currency = %q, want the BGN default", receipt.Currency)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			receipt, stats := p.Parse(tt.text)
			tt.validateFunc(t, receipt, stats)
		})
	}
}

func TestParseParallelMatchesParse(t *testing.T) {
	p := New(DefaultConfig(), nil)
	text := "Ресторант Хемус\n" +
		"Кафе 3,50\n" +
		"Пица – 12,50\n" +
		"Салата 2 х 4,25 = 8,50\n" +
		"Кафе 3.50\n" +
		"ОБЩО: 28,00"

	sequential, seqStats := p.Parse(text)
	parallel, parStats := p.ParseParallel(context.Background(), text, 4)

	if len(parallel.Items) != len(sequential.Items) {
		t.Fatalf("parallel items = %d, sequential = %d", len(parallel.Items), len(sequential.Items))
	}
	for i := range sequential.Items {
		if parallel.Items[i].Name != sequential.Items[i].Name {
			t.Errorf("item %d name = %q, want %q", i, parallel.Items[i].Name, sequential.Items[i].Name)
		}
		if !parallel.Items[i].Price.Equal(sequential.Items[i].Price) {
			t.Errorf("item %d price = %v, want %v", i, parallel.Items[i].Price, sequential.Items[i].Price)
		}
		if parallel.Items[i].Quantity != sequential.Items[i].Quantity {
			t.Errorf("item %d quantity = %d, want %d", i, parallel.Items[i].Quantity, sequential.Items[i].Quantity)
		}
	}
	if !parallel.Total.Equal(sequential.Total) {
		t.Errorf("parallel total = %v, sequential = %v", parallel.Total, sequential.Total)
	}
	if parStats.MergedItems != seqStats.MergedItems {
		t.Errorf("parallel merged = %d, sequential = %d", parStats.MergedItems, seqStats.MergedItems)
	}
}

func TestParseParallelSingleWorker(t *testing.T) {
	p := New(DefaultConfig(), nil)
	receipt, _ := p.ParseParallel(context.Background(), "Пица 12,50", 1)
	if len(receipt.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(receipt.Items))
	}
}

func TestMergeDuplicates(t *testing.T) {
	p := New(DefaultConfig(), nil)

	item := func(name string, qty int, unit, price string, people ...string) models.ReceiptItem {
		it := models.NewReceiptItem("id-"+name, name, qty,
			decimal.RequireFromString(unit), decimal.RequireFromString(price))
		it.AssignedTo = append(it.AssignedTo, people...)
		return it
	}

	tests := []struct {
		name         string
		items        []models.ReceiptItem
		validateFunc func(t *testing.T, merged []models.ReceiptItem)
	}{
		{
			name:  "identical names and prices sum quantities",
			items: []models.ReceiptItem{item("Кафе", 1, "3.50", "3.50"), item("Кафе", 1, "3.50", "3.50")},
			validateFunc: func(t *testing.T, merged []models.ReceiptItem) {
				if len(merged) != 1 {
					t.Fatalf("merged = %d, want 1", len(merged))
				}
				if merged[0].Quantity != 2 {
					t.Errorf("quantity = %d, want 2", merged[0].Quantity)
				}
				if !merged[0].Price.Equal(decimal.RequireFromString("7")) {
					t.Errorf("price = %v, want 7", merged[0].Price)
				}
			},
		},
		{
			name:  "same name different price stays separate",
			items: []models.ReceiptItem{item("Кафе", 1, "3.50", "3.50"), item("Кафе", 1, "4.50", "4.50")},
			validateFunc: func(t *testing.T, merged []models.ReceiptItem) {
				if len(merged) != 2 {
					t.Errorf("merged = %d, want 2", len(merged))
				}
			},
		},
		{
			name: "assignments union without duplicates",
			items: []models.ReceiptItem{
				item("Кафе", 1, "3.50", "3.50", "Ана", "Борис"),
				item("Кафе", 1, "3.50", "3.50", "Борис", "Вера"),
			},
			validateFunc: func(t *testing.T, merged []models.ReceiptItem) {
				if len(merged) != 1 {
					t.Fatalf("merged = %d, want 1", len(merged))
				}
				if len(merged[0].AssignedTo) != 3 {
					t.Errorf("assigned = %v, want union of 3 people", merged[0].AssignedTo)
				}
			},
		},
		{
			name:  "containment trigger merges partial reads",
			items: []models.ReceiptItem{item("Пица Маргарита", 1, "12.50", "12.50"), item("Маргарита", 1, "12.50", "12.50")},
			validateFunc: func(t *testing.T, merged []models.ReceiptItem) {
				if len(merged) != 1 {
					t.Errorf("merged = %d, want 1", len(merged))
				}
			},
		},
		{
			name:  "empty input",
			items: nil,
			validateFunc: func(t *testing.T, merged []models.ReceiptItem) {
				if len(merged) != 0 {
					t.Errorf("merged = %d, want 0", len(merged))
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validateFunc(t, p.mergeDuplicates(tt.items))
		})
	}
}
