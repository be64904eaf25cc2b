package trie

import (
	"strings"
)

// keepWords are never treated as stopwords, regardless of the stopword file.
var keepWords = map[string]struct{}{
	"system":      {},
	"second":      {},
	"little":      {},
	"course":      {},
	"world":       {},
	"value":       {},
	"right":       {},
	"needs":       {},
	"information": {},
	"invention":   {},
}

// ParseStopwords parses a comma-delimited stopword list. Tokens are trimmed,
// lowercased, and filtered against the always-keep allowlist.
func ParseStopwords(data []byte) map[string]struct{} {
	words := make(map[string]struct{})
	for _, tok := range strings.Split(string(data), ",") {
		w := strings.ToLower(strings.TrimSpace(tok))
		if w == "" {
			continue
		}
		if _, keep := keepWords[w]; keep {
			continue
		}
		words[w] = struct{}{}
	}
	return words
}

// validPatternText reports whether the pattern text contains only characters
// from [A-Za-z0-9\s*\-^].
func validPatternText(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if classTable[c] != 0 {
			continue
		}
		switch c {
		case ' ', '\t', '\n', '\v', '\f', '\r', '*', '-', '^':
		default:
			return false
		}
	}
	return true
}

// cleanAddressText replaces every character outside [A-Za-z0-9\s*\-^] with a
// space. Only called in address mode, and only for lines that failed
// validPatternText.
func cleanAddressText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if classTable[c] != 0 {
			b.WriteByte(c)
			continue
		}
		switch c {
		case ' ', '\t', '\n', '\v', '\f', '\r', '*', '-', '^':
			b.WriteByte(c)
		default:
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// stripMarkers removes every '*' and '^' from a word. Used for prefix
// comparison; trie insertion strips only a single leading marker.
func stripMarkers(s string) string {
	if !strings.ContainsAny(s, "*^") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c != '*' && c != '^' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// normalizeWords reduces pattern text to its canonical word sequence:
// lowercase, whitespace-split, single-character words dropped, stopwords
// dropped when enabled, and the adjacent prefix-reduction pass applied.
// Returns nil if fewer than two words survive.
//
// The prefix-reduction pass is skipped when the original token count was
// exactly 1; that guard protects single-word inputs and must be preserved
// as-is (it interacts with stopword removal).
func normalizeWords(pattern string, stopwords map[string]struct{}, removeStopwords bool) []string {
	words := strings.Fields(strings.ToLower(pattern))
	originalCount := len(words)

	kept := words[:0]
	for _, w := range words {
		if len(w) <= 1 {
			continue
		}
		kept = append(kept, w)
	}
	words = kept

	if removeStopwords && len(stopwords) > 0 {
		kept = words[:0]
		for _, w := range words {
			if _, stop := stopwords[w]; stop {
				continue
			}
			kept = append(kept, w)
		}
		words = kept
	}

	// Drop any word that is a case-insensitive prefix of its successor,
	// markers excluded from the comparison. The last word always survives.
	if originalCount != 1 && len(words) > 1 {
		stripped := make([]string, len(words))
		for i, w := range words {
			stripped[i] = stripMarkers(w)
		}
		filtered := words[:0]
		for i, w := range words {
			if i < len(words)-1 && strings.HasPrefix(stripped[i+1], stripped[i]) {
				continue
			}
			filtered = append(filtered, w)
		}
		words = filtered
	}

	if len(words) < 2 {
		return nil
	}
	return words
}
