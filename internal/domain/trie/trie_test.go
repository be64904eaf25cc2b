package trie

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/patmatch/internal/ports"
)

// loadPatterns builds a frozen index from raw pattern lines.
func loadPatterns(t *testing.T, opts ports.MatchOptions, lines ...string) *PatternTrie {
	t.Helper()
	tr := newTestTrie()
	sc := bufio.NewScanner(strings.NewReader(strings.Join(lines, "\n")))
	_, err := tr.ProcessPatterns(sc, opts)
	require.NoError(t, err)
	tr.PrepareForMatching()
	return tr
}

func TestTrie_SharedPrefixBlocks(t *testing.T) {
	tr := loadPatterns(t, ports.MatchOptions{},
		"new york\tA",
		"new york city\tB",
	)

	// "new"(3) + "york"(4) + "city"(4) distinct blocks, plus the root.
	assert.Equal(t, uint32(12), tr.BlockCount())
	assert.Equal(t, uint32(2), tr.PatternCount())
}

func TestTrie_EndOfWordBucketsShareEdges(t *testing.T) {
	tr := loadPatterns(t, ports.MatchOptions{},
		"new york\tA",
		"new york city\tB",
	)

	// "new" ends on one edge for both patterns at position 1, "york" on one
	// edge at position 2, "city" on one edge at position 3.
	assert.Equal(t, 3, tr.EndOfWordCount())
}

func TestTrie_BucketIDsAscending(t *testing.T) {
	tr := loadPatterns(t, ports.MatchOptions{},
		"alpha beta\tP1",
		"gamma beta\tP2",
		"delta beta\tP3",
	)

	// All three patterns end "beta" at position 2 on the same edge.
	for _, bucket := range tr.eop {
		for _, entry := range bucket {
			for i := 1; i < len(entry.ids); i++ {
				assert.Less(t, entry.ids[i-1], entry.ids[i])
			}
		}
	}
}

func TestTrie_PrepareInvariantViolationPanics(t *testing.T) {
	tr := newTestTrie()
	ok, _ := tr.ProcessPattern("alpha beta\tX", ports.MatchOptions{})
	require.True(t, ok)

	// Plant a pattern id with no catalog row.
	for key, bucket := range tr.eop {
		bucket[0].ids = append(bucket[0].ids, 99)
		tr.eop[key] = bucket
		break
	}

	assert.Panics(t, func() { tr.PrepareForMatching() })
}

func TestTrie_ProcessAfterFreezePanics(t *testing.T) {
	tr := loadPatterns(t, ports.MatchOptions{}, "alpha beta\tX")
	assert.Panics(t, func() {
		tr.ProcessPattern("gamma delta\tY", ports.MatchOptions{})
	})
}

func TestTrie_MemoryUsageNonZero(t *testing.T) {
	tr := loadPatterns(t, ports.MatchOptions{}, "hello world\tX1")
	assert.Greater(t, tr.MemoryUsage(), uint64(0))
}

func TestTrie_ProcessPatternsCountsAccepted(t *testing.T) {
	tr := newTestTrie()
	input := strings.Join([]string{
		"# header comment",
		"hello world\tX1",
		"hi\tX2",
		"",
		"quick brown fox\tX3",
	}, "\n")
	loaded, err := tr.ProcessPatterns(bufio.NewScanner(strings.NewReader(input)), ports.MatchOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, loaded)
	assert.Equal(t, uint32(2), tr.PatternCount())
	assert.Equal(t, uint64(1), tr.RejectedCount())
}
