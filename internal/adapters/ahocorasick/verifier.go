// Package ahocorasick re-checks matcher output using an Aho-Corasick
// automaton built from the canonical pattern words. It wraps the
// petar-dambovaliev/aho-corasick library; verification is an independent
// second opinion, so it deliberately shares no code with the trie scan.
package ahocorasick

import (
	"strings"

	aho "github.com/petar-dambovaliev/aho-corasick"

	"github.com/corey/patmatch/internal/domain/trie"
)

// Verifier holds a case-insensitive automaton over every distinct canonical
// word in the index, plus the per-pattern word lists needed to confirm a hit.
type Verifier struct {
	automaton aho.AhoCorasick
	words     []string
	wordIndex map[string]int
	patterns  map[uint32][]int
}

// foldWord reduces a pattern or input word to its matchable form: lowercase
// with delimiter-class bytes removed (the trie skips them too, so "ice-cream"
// and "icecream" are the same word).
func foldWord(w string) string {
	var b strings.Builder
	b.Grow(len(w))
	for i := 0; i < len(w); i++ {
		if trie.Classify(w[i]) != 0 {
			b.WriteByte(w[i])
		}
	}
	return strings.ToLower(b.String())
}

// NewVerifier builds a verifier from a frozen index.
func NewVerifier(t *trie.PatternTrie) *Verifier {
	v := &Verifier{
		wordIndex: make(map[string]int),
		patterns:  make(map[uint32][]int),
	}

	for id := uint32(1); id <= t.PatternCount(); id++ {
		ws := t.Words(id)
		refs := make([]int, 0, len(ws))
		for _, w := range ws {
			folded := foldWord(w)
			idx, ok := v.wordIndex[folded]
			if !ok {
				idx = len(v.words)
				v.wordIndex[folded] = idx
				v.words = append(v.words, folded)
			}
			refs = append(refs, idx)
		}
		v.patterns[id] = refs
	}

	// Leftmost-longest keeps a word that prefixes another word from
	// shadowing it (e.g. "new" vs "newt").
	builder := aho.NewAhoCorasickBuilder(aho.Opts{
		AsciiCaseInsensitive: true,
		MatchKind:            aho.LeftMostLongestMatch,
		DFA:                  true,
	})
	v.automaton = builder.Build(v.words)
	return v
}

// Verify returns the subset of results whose every canonical word occurs as a
// whole word of input. The trie scan also completes a pattern word at the
// start of a longer input word ("new" in "newer"); such results are dropped
// here, since every pattern word must match an input word in full.
func (v *Verifier) Verify(input string, results []trie.MatchResult) []trie.MatchResult {
	if len(results) == 0 {
		return results
	}

	present := make(map[int]bool)
	for _, w := range splitWords(input) {
		for _, m := range v.automaton.FindAll(w) {
			// Only a hit spanning the whole input word counts: pattern words
			// match at word boundaries, never embedded.
			if m.Start() == 0 && m.End() == len(w) {
				present[m.Pattern()] = true
			}
		}
	}

	verified := results[:0]
	for _, r := range results {
		ok := true
		for _, ref := range v.patterns[r.PatternID] {
			if !present[ref] {
				ok = false
				break
			}
		}
		if ok {
			verified = append(verified, r)
		}
	}
	return verified
}

// splitWords cuts input into its classifier words, folded for comparison.
func splitWords(input string) []string {
	var words []string
	start := -1
	for i := 0; i < len(input); i++ {
		if trie.Classify(input[i]) != 0 {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			words = append(words, strings.ToLower(input[start:i]))
			start = -1
		}
	}
	if start >= 0 {
		words = append(words, strings.ToLower(input[start:]))
	}
	return words
}
