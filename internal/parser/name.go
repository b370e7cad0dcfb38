package parser

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// skipWords are header/footer tokens that never name a menu item. Matched
// as substrings of the normalized (lowercased, diacritic-folded) name, so
// one spelling per word covers every casing and accent variant OCR emits.
var skipWords = []string{
	"сума", "обща", "общо", "всичко", "бон", "ддс", "унп", "еик",
	"карта", "сметка", "благодарим", "чек", "каса", "ресторант",
	"total", "subtotal", "tax", "cash", "change", "card", "receipt",
	"invoice", "date", "time", "cashier", "thank", "amount",
}

// foldDiacritics strips combining marks so that e.g. "кафе́" and "кафе"
// normalize identically.
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeName produces the canonical comparison form of an item name:
// lowercased, diacritics folded, punctuation collapsed to single spaces.
func normalizeName(name string) string {
	folded, _, err := transform.String(foldDiacritics, strings.ToLower(name))
	if err != nil {
		folded = strings.ToLower(name)
	}

	var b strings.Builder
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// validName decides whether a candidate substring plausibly names a menu
// item. Purely a filter: no side effects, no errors.
func validName(name string) bool {
	name = strings.TrimSpace(name)
	if len([]rune(name)) < 2 {
		return false
	}

	normalized := normalizeName(name)
	for _, w := range skipWords {
		if strings.Contains(normalized, w) {
			return false
		}
	}

	hasAlpha := false
	substance := 0
	for _, r := range name {
		if unicode.Is(unicode.Latin, r) || unicode.Is(unicode.Cyrillic, r) {
			hasAlpha = true
		}
		if !unicode.IsDigit(r) && !unicode.IsPunct(r) && !unicode.IsSpace(r) && !unicode.IsSymbol(r) {
			substance++
		}
	}
	return hasAlpha && substance >= 2
}
