// Package trie implements the pattern index and matcher: a compact tokenized
// trie over a 37-class alphabet, end-of-word buckets that couple trie edges to
// pattern membership, and a single-pass streaming matcher.
//
// Build phase is single-threaded: feed lines through ProcessPattern, then call
// PrepareForMatching. After that the index is frozen and any number of
// goroutines may call Match concurrently, each with its own MatchContext.
package trie

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/corey/patmatch/internal/ports"
)

// maxWordPositions is the highest word position tracked in end-of-word
// buckets. Patterns with more canonical words are rejected at normalization.
const maxWordPositions = 31

// eopKey identifies the trie edge that completes a pattern word: the block
// the traversal was in before the final byte, plus that byte's class. Keying
// the edge rather than the child block saves a trie lookup on the hot path
// and keeps block 0 free to mean "no child".
type eopKey struct {
	block uint32
	class uint8
}

// eopEntry holds the pattern ids whose word at position pos ends on this
// edge. Ids are kept strictly ascending. Entries within a bucket are kept
// sorted by pos so the matcher processes positions in ascending order.
type eopEntry struct {
	pos uint8
	ids []uint32
}

// LineScanner is the minimal line-source contract ProcessPatterns consumes.
// bufio.Scanner and the textfile reader both satisfy it.
type LineScanner interface {
	Scan() bool
	Text() string
	Err() error
}

// PatternTrie is the frozen-after-build pattern index.
type PatternTrie struct {
	// blocks is the flat trie array: row b holds the 37 children of block b.
	// Cell (b, c) is the child block id for class c, or 0 if absent. Block 0
	// is the root and doubles as "no child" — a first-character transition
	// never lands in block 0, so no real child can point back to it.
	blocks     []uint32
	blockCount uint32

	eop map[eopKey][]eopEntry

	// Catalog side tables, 1-indexed by pattern id; index 0 is reserved.
	patternCount uint32
	xrefs        []string
	texts        []string
	words        [][]string
	wordLengths  [][]uint8
	wordCounts   []uint8
	mustHave     map[uint32]map[uint8]struct{}

	patternsByWordCount [maxWordPositions + 1][]uint32

	stopwords map[string]struct{}
	rejected  uint64
	frozen    bool

	log *slog.Logger
}

// New creates an empty pattern index. Block 0 (the root) is pre-allocated.
func New(log *slog.Logger) *PatternTrie {
	if log == nil {
		log = slog.Default()
	}
	return &PatternTrie{
		blocks:      make([]uint32, NumClasses),
		blockCount:  1,
		eop:         make(map[eopKey][]eopEntry),
		xrefs:       make([]string, 1),
		texts:       make([]string, 1),
		words:       make([][]string, 1),
		wordLengths: make([][]uint8, 1),
		wordCounts:  make([]uint8, 1),
		mustHave:    make(map[uint32]map[uint8]struct{}),
		log:         log,
	}
}

// SetStopwords installs the stopword set used when MatchOptions.RemoveStopwords
// is on. Must be called before the patterns that should be filtered.
func (t *PatternTrie) SetStopwords(words map[string]struct{}) {
	t.stopwords = words
}

// PatternCount returns the number of accepted patterns.
func (t *PatternTrie) PatternCount() uint32 { return t.patternCount }

// BlockCount returns the number of allocated trie blocks.
func (t *PatternTrie) BlockCount() uint32 { return t.blockCount }

// EndOfWordCount returns the number of distinct word-ending edges.
func (t *PatternTrie) EndOfWordCount() int { return len(t.eop) }

// RejectedCount returns the number of lines normalization dropped.
func (t *PatternTrie) RejectedCount() uint64 { return t.rejected }

// Xref returns the cross-reference for a pattern id, or "" if out of range.
func (t *PatternTrie) Xref(id uint32) string {
	if id == 0 || id > t.patternCount {
		return ""
	}
	return t.xrefs[id]
}

// Text returns the canonical text for a pattern id, or "" if out of range.
func (t *PatternTrie) Text(id uint32) string {
	if id == 0 || id > t.patternCount {
		return ""
	}
	return t.texts[id]
}

// Words returns the canonical word list for a pattern id with the */^
// markers stripped. Used by the verifier.
func (t *PatternTrie) Words(id uint32) []string {
	if id == 0 || id > t.patternCount {
		return nil
	}
	ws := make([]string, len(t.words[id]))
	for i, w := range t.words[id] {
		if len(w) > 0 && (w[0] == '*' || w[0] == '^') {
			w = w[1:]
		}
		ws[i] = w
	}
	return ws
}

func (t *PatternTrie) allocateBlock() uint32 {
	b := t.blockCount
	t.blockCount++
	t.blocks = append(t.blocks, make([]uint32, NumClasses)...)
	return b
}

func (t *PatternTrie) child(block uint32, class uint8) uint32 {
	return t.blocks[int(block)*NumClasses+int(class)]
}

// insertWord walks the word's bytes into the trie, creating blocks as needed,
// and records the pattern id in the end-of-word bucket for the final edge.
func (t *PatternTrie) insertWord(patternID uint32, word string, pos uint8) {
	var current, prev uint32
	var lastClass uint8

	for i := 0; i < len(word); i++ {
		class := classTable[word[i]]
		if class == 0 {
			// Normalization leaves no delimiters inside words; skip defensively.
			continue
		}
		prev = current
		lastClass = class

		idx := int(current)*NumClasses + int(class)
		if t.blocks[idx] == 0 {
			t.blocks[idx] = t.allocateBlock()
		}
		current = t.blocks[idx]
	}

	if current == 0 {
		return
	}

	key := eopKey{block: prev, class: lastClass}
	bucket := t.eop[key]

	// Find or insert the position entry, keeping the bucket sorted by pos.
	ei := sort.Search(len(bucket), func(i int) bool { return bucket[i].pos >= pos })
	if ei == len(bucket) || bucket[ei].pos != pos {
		bucket = append(bucket, eopEntry{})
		copy(bucket[ei+1:], bucket[ei:])
		bucket[ei] = eopEntry{pos: pos}
	}

	ids := bucket[ei].ids
	ii := sort.Search(len(ids), func(i int) bool { return ids[i] >= patternID })
	if ii == len(ids) || ids[ii] != patternID {
		ids = append(ids, 0)
		copy(ids[ii+1:], ids[ii:])
		ids[ii] = patternID
		bucket[ei].ids = ids
	}
	t.eop[key] = bucket
}

// ProcessPattern normalizes one raw pattern line and integrates it into the
// index. Returns whether the line was accepted, and a reason when it was not.
// Comment lines, empty lines and _EXCEPTIONS lines are skipped silently.
func (t *PatternTrie) ProcessPattern(line string, opts ports.MatchOptions) (bool, string) {
	if t.frozen {
		panic("trie: ProcessPattern after PrepareForMatching")
	}

	trimmed := strings.TrimSpace(line)
	if trimmed == "" || trimmed[0] == '#' {
		return false, "comment"
	}
	if strings.Contains(trimmed, "_EXCEPTIONS") {
		return false, "exception pattern"
	}

	pattern, xref, _ := strings.Cut(trimmed, "\t")
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		t.rejected++
		return false, "empty pattern"
	}

	if !validPatternText(pattern) {
		t.log.Info("pattern with non-alphanumeric char", "pattern", pattern)
		if !opts.AddressMode {
			t.rejected++
			return false, "non alphanumeric characters"
		}
		pattern = cleanAddressText(pattern)
	}

	words := normalizeWords(pattern, t.stopwords, opts.RemoveStopwords)
	if words == nil {
		t.rejected++
		t.log.Info("pattern rejected by normalization", "xref", xref, "pattern", pattern)
		return false, "non-conforming pattern"
	}
	if len(words) > maxWordPositions {
		t.rejected++
		t.log.Info("pattern rejected: too many words", "xref", xref, "words", len(words))
		return false, "too many words"
	}

	if canonical := strings.Join(words, " "); canonical != strings.Join(strings.Fields(strings.ToLower(pattern)), " ") {
		t.log.Debug("pattern changed by normalization", "xref", xref, "from", pattern, "to", canonical)
	}

	t.patternCount++
	id := t.patternCount

	t.xrefs = append(t.xrefs, xref)
	t.texts = append(t.texts, strings.Join(words, " "))
	t.words = append(t.words, words)

	lengths := make([]uint8, 0, len(words))
	for i, w := range words {
		pos := uint8(i + 1)
		if len(w) > 0 && (w[0] == '*' || w[0] == '^') {
			mh := t.mustHave[id]
			if mh == nil {
				mh = make(map[uint8]struct{})
				t.mustHave[id] = mh
			}
			mh[pos] = struct{}{}
			w = w[1:]
		}
		lengths = append(lengths, uint8(len(w)))
		t.insertWord(id, w, pos)
	}
	t.wordLengths = append(t.wordLengths, lengths)

	wc := uint8(len(words))
	t.wordCounts = append(t.wordCounts, wc)
	t.patternsByWordCount[wc] = append(t.patternsByWordCount[wc], id)

	return true, ""
}

// ProcessPatterns feeds every line from sc through ProcessPattern.
// Returns the number of accepted patterns.
func (t *PatternTrie) ProcessPatterns(sc LineScanner, opts ports.MatchOptions) (int, error) {
	loaded := 0
	lineNo := 0
	for sc.Scan() {
		lineNo++
		ok, reason := t.ProcessPattern(sc.Text(), opts)
		if ok {
			loaded++
		} else if reason != "" && reason != "comment" {
			t.log.Debug("pattern not processed", "line", lineNo, "reason", reason)
		}
	}
	if err := sc.Err(); err != nil {
		return loaded, fmt.Errorf("read patterns: %w", err)
	}
	t.log.Info("patterns loaded", "accepted", loaded, "rejected", t.rejected, "blocks", t.blockCount)
	return loaded, nil
}

// PrepareForMatching freezes the index and checks its structural invariants.
// An invariant violation means the build itself is broken; returning silently
// wrong matches is worse than dying, so violations panic.
func (t *PatternTrie) PrepareForMatching() {
	for key, bucket := range t.eop {
		if t.child(key.block, key.class) == 0 {
			panic(fmt.Sprintf("trie: end-of-word edge (%d,%d) does not exist", key.block, key.class))
		}
		for _, entry := range bucket {
			if entry.pos == 0 || entry.pos > maxWordPositions {
				panic(fmt.Sprintf("trie: end-of-word position %d out of range", entry.pos))
			}
			var last uint32
			for _, id := range entry.ids {
				if id <= last {
					panic(fmt.Sprintf("trie: bucket ids not strictly ascending at id %d", id))
				}
				last = id
				if id > t.patternCount || t.wordCounts[id] == 0 {
					panic(fmt.Sprintf("trie: pattern id %d in bucket has no catalog row", id))
				}
			}
		}
	}
	t.frozen = true
}

// MemoryUsage returns an estimate of the index footprint in bytes.
func (t *PatternTrie) MemoryUsage() uint64 {
	total := uint64(cap(t.blocks)) * 4

	for _, bucket := range t.eop {
		total += 16 // key + map overhead, rough
		for _, entry := range bucket {
			total += uint64(cap(entry.ids))*4 + 1
		}
	}

	for id := uint32(1); id <= t.patternCount; id++ {
		total += uint64(len(t.xrefs[id])) + uint64(len(t.texts[id]))
		total += uint64(cap(t.wordLengths[id])) + 1
		for _, w := range t.words[id] {
			total += uint64(len(w)) + 16
		}
	}

	for _, ids := range t.patternsByWordCount {
		total += uint64(cap(ids)) * 4
	}
	return total
}
