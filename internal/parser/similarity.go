package parser

import "strings"

// Ratio computes a similarity score in [0, 1] between two strings using
// the longest-matching-blocks sequence ratio: 2*M / (len(a)+len(b)) where
// M is the total length of all matching blocks. Case-insensitive and
// symmetric. Identical strings score 1, disjoint strings score 0.
//
// OCR of overlapping image regions reproduces the same physical line with
// a character or two of noise; an edit-based ratio catches those where
// exact comparison cannot.
func Ratio(a, b string) float64 {
	ar := []rune(strings.ToLower(a))
	br := []rune(strings.ToLower(b))
	if len(ar) == 0 && len(br) == 0 {
		return 1.0
	}
	if len(ar) == 0 || len(br) == 0 {
		return 0.0
	}
	m := matchingBlocks(ar, br)
	return 2.0 * float64(m) / float64(len(ar)+len(br))
}

// matchingBlocks returns the total number of runes covered by matching
// blocks: the longest common block first, then recursively the pieces to
// its left and right.
func matchingBlocks(a, b []rune) int {
	ai, bi, size := longestCommonBlock(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchingBlocks(a[:ai], b[:bi])
	total += matchingBlocks(a[ai+size:], b[bi+size:])
	return total
}

// longestCommonBlock finds the longest common contiguous run of runes,
// returning its start in a, start in b, and length. Ties resolve to the
// earliest position in a, then in b.
func longestCommonBlock(a, b []rune) (int, int, int) {
	bestA, bestB, bestSize := 0, 0, 0

	// lengths[j] = length of common suffix ending at a[i-1], b[j-1]
	lengths := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		prev := 0
		for j := 1; j <= len(b); j++ {
			cur := lengths[j]
			if a[i-1] == b[j-1] {
				lengths[j] = prev + 1
				if lengths[j] > bestSize {
					bestSize = lengths[j]
					bestA = i - bestSize
					bestB = j - bestSize
				}
			} else {
				lengths[j] = 0
			}
			prev = cur
		}
	}
	return bestA, bestB, bestSize
}

// dedupLines drops lines whose similarity to any of the last window kept
// lines exceeds threshold. Blank lines are discarded. Order of the
// surviving lines is preserved; later stages depend on it.
func dedupLines(lines []string, window int, threshold float64) []string {
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		duplicate := false
		start := len(kept) - window
		if start < 0 {
			start = 0
		}
		for _, prev := range kept[start:] {
			if Ratio(line, prev) > threshold {
				duplicate = true
				break
			}
		}

		if !duplicate {
			kept = append(kept, line)
		}
	}
	return kept
}
