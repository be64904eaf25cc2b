package trie

import (
	"strings"

	"github.com/corey/patmatch/internal/ports"
)

// MatchResult is one reported pattern hit.
type MatchResult struct {
	PatternID uint32
	Xref      string // cross-reference, verbatim from the pattern file
	Text      string // canonical pattern text
	Match     string // realizing input substring (only when Matching is on)
	Start     int    // byte offset of Match within the trimmed input
	End       int    // byte offset one past the end of Match
}

// MatchContext is the per-call scratch state. It is owned by the caller and
// must not be shared between goroutines; reusing one context across calls
// avoids re-allocating the active sets on every scan.
type MatchContext struct {
	active         [maxWordPositions + 1]map[uint32]struct{}
	maxActivePos   uint8
	substringStart []int
}

// NewMatchContext creates a reusable scratch context.
func NewMatchContext() *MatchContext {
	ctx := &MatchContext{}
	for i := 1; i <= maxWordPositions; i++ {
		ctx.active[i] = make(map[uint32]struct{})
	}
	return ctx
}

// Clear empties the active sets touched by the previous call.
func (ctx *MatchContext) Clear() {
	for i := uint8(1); i <= ctx.maxActivePos; i++ {
		clear(ctx.active[i])
	}
	ctx.maxActivePos = 0
}

// EnsureCapacity grows the substring-start table to cover n pattern ids.
func (ctx *MatchContext) EnsureCapacity(n uint32) {
	if uint32(len(ctx.substringStart)) <= n {
		grown := make([]int, n+1)
		copy(grown, ctx.substringStart)
		ctx.substringStart = grown
	}
}

// wordBoundary returns the index of the first delimiter-class byte at or
// after pos, or len(s) if the input ends first.
func wordBoundary(s string, pos int) int {
	for pos < len(s) && classTable[s[pos]] != 0 {
		pos++
	}
	return pos
}

// Match scans input once and returns every pattern whose words appear in
// order at word boundaries. Results are emitted in scan order. The index must
// be frozen (PrepareForMatching) before the first concurrent call.
func (t *PatternTrie) Match(input string, opts ports.MatchOptions, ctx *MatchContext) []MatchResult {
	var results []MatchResult

	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil
	}

	// LCSS bookkeeping: latest end-of-word byte index per (pattern, position),
	// and the set of patterns that completed in strict order.
	var lcssSeen map[uint32]map[uint8]int
	var lcssFound map[uint32]struct{}
	if opts.LCSS {
		lcssSeen = make(map[uint32]map[uint8]int)
		lcssFound = make(map[uint32]struct{})
	}

	ctx.Clear()
	if opts.Matching {
		ctx.EnsureCapacity(t.patternCount)
	}

	var current uint32
	atWordStart := true

	for i := 0; i < len(trimmed); i++ {
		class := classTable[trimmed[i]]

		if class == 0 {
			// Delimiter: the end-of-word edge was already checked on the
			// previous non-delimiter byte, so just reset.
			current = 0
			atWordStart = true
			continue
		}

		if atWordStart {
			// First byte of a word. No end-of-word check: one-letter words
			// cannot exist after normalization.
			atWordStart = false
			current = t.blocks[class]
			continue
		}

		if current == 0 {
			// Fell out of the trie mid-word; skip until the next delimiter.
			continue
		}

		if bucket, ok := t.eop[eopKey{block: current, class: class}]; ok {
			results = t.processEndOfWord(bucket, trimmed, i, opts, ctx, lcssSeen, lcssFound, results)
		}

		current = t.child(current, class)
	}

	if opts.LCSS {
		results = t.lcssRefine(trimmed, opts, lcssSeen, lcssFound, results)
	}

	return results
}

// processEndOfWord handles one end-of-word bucket at input byte i. Entries
// are stored sorted by position, so positions are processed ascending.
func (t *PatternTrie) processEndOfWord(
	bucket []eopEntry,
	input string,
	i int,
	opts ports.MatchOptions,
	ctx *MatchContext,
	lcssSeen map[uint32]map[uint8]int,
	lcssFound map[uint32]struct{},
	results []MatchResult,
) []MatchResult {
	for _, entry := range bucket {
		pos := entry.pos

		if lcssSeen != nil {
			for _, id := range entry.ids {
				seen := lcssSeen[id]
				if seen == nil {
					seen = make(map[uint8]int)
					lcssSeen[id] = seen
				}
				seen[pos] = i
			}
		}

		if pos == 1 {
			active := ctx.active[1]
			if ctx.maxActivePos < 1 {
				ctx.maxActivePos = 1
			}
			for _, id := range entry.ids {
				active[id] = struct{}{}
				if opts.Matching {
					ctx.substringStart[id] = i - int(t.wordLengths[id][0]) + 1
				}
			}
			continue
		}

		prevActive := ctx.active[pos-1]
		if len(prevActive) == 0 {
			continue
		}
		active := ctx.active[pos]
		if ctx.maxActivePos < pos {
			ctx.maxActivePos = pos
		}

		for _, id := range entry.ids {
			if _, ok := prevActive[id]; !ok {
				continue
			}
			// Each in-flight instance is consumed by the next word occurrence;
			// one occurrence of word k cannot serve two occurrences of word k+1.
			delete(prevActive, id)

			if t.wordCounts[id] == pos {
				if lcssFound != nil {
					lcssFound[id] = struct{}{}
				}
				res := MatchResult{
					PatternID: id,
					Xref:      t.xrefs[id],
					Text:      t.texts[id],
				}
				if opts.Matching {
					start := ctx.substringStart[id]
					end := wordBoundary(input, i+1)
					res.Start = start
					res.End = end
					res.Match = input[start:end]
				}
				results = append(results, res)
			} else {
				active[id] = struct{}{}
			}
		}
	}
	return results
}
