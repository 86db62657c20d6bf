package recon

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeSKU lowercases, strips accents and drops every non-alphanumeric
// rune. Supplier catalogs (the ERP especially) mix case, hyphens and
// diacritics freely, so scoring runs over the folded form.
func normalizeSKU(s string) string {
	folded, _, err := transform.String(accentFolder, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Similarity scores two stock-keeping identifiers in [0, 1]. The base score
// is 1 minus the Levenshtein distance between the normalized strings,
// normalized by the longer string's length. A +0.2 boost (capped at 1.0)
// applies when either normalized string's first three characters are a
// prefix of the other.
func Similarity(a, b string) float64 {
	na := normalizeSKU(a)
	nb := normalizeSKU(b)

	if na == nb {
		return 1.0
	}
	if na == "" || nb == "" {
		return 0.0
	}

	longer := len(na)
	if len(nb) > longer {
		longer = len(nb)
	}

	score := 1.0 - float64(levenshtein(na, nb))/float64(longer)

	if hasPrefixOverlap(na, nb) {
		score += 0.2
	}

	if score > 1.0 {
		score = 1.0
	}
	if score < 0.0 {
		score = 0.0
	}
	return score
}

func hasPrefixOverlap(a, b string) bool {
	if len(a) >= 3 && strings.HasPrefix(b, a[:3]) {
		return true
	}
	if len(b) >= 3 && strings.HasPrefix(a, b[:3]) {
		return true
	}
	return false
}

// levenshtein computes the classic single-character insert/delete/substitute
// edit distance using a two-row table.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}

			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost

			min := del
			if ins < min {
				min = ins
			}
			if sub < min {
				min = sub
			}
			curr[j] = min
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

// BestMatch returns the highest-scoring candidate and its score, or ("", 0)
// when candidates is empty.
func BestMatch(supplierSKU string, candidates []string) (string, float64) {
	best := ""
	bestScore := 0.0
	for _, c := range candidates {
		if score := Similarity(supplierSKU, c); score > bestScore {
			best = c
			bestScore = score
		}
	}
	return best, bestScore
}
