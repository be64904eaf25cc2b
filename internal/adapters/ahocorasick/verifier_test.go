package ahocorasick

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/patmatch/internal/domain/trie"
	"github.com/corey/patmatch/internal/logging"
	"github.com/corey/patmatch/internal/ports"
)

func buildIndex(t *testing.T, lines ...string) *trie.PatternTrie {
	t.Helper()
	tr := trie.New(logging.Nop())
	for _, line := range lines {
		ok, reason := tr.ProcessPattern(line, ports.MatchOptions{})
		require.True(t, ok, "pattern %q rejected: %s", line, reason)
	}
	tr.PrepareForMatching()
	return tr
}

func TestVerify_KeepsTrueMatches(t *testing.T) {
	tr := buildIndex(t, "hello world\tX1", "quick brown fox\tX2")
	v := NewVerifier(tr)
	ctx := trie.NewMatchContext()
	opts := ports.MatchOptions{Matching: true}

	input := "well hello world, said the QUICK brown fox"
	results := tr.Match(input, opts, ctx)
	require.Len(t, results, 2)

	verified := v.Verify(input, results)
	assert.Equal(t, results, verified)
}

func TestVerify_DropsPlantedFalseMatch(t *testing.T) {
	tr := buildIndex(t, "hello world\tX1", "quick brown fox\tX2")
	v := NewVerifier(tr)

	// A result for pattern 2 against an input missing "fox" is bogus.
	planted := []trie.MatchResult{
		{PatternID: 1, Xref: "X1", Text: "hello world"},
		{PatternID: 2, Xref: "X2", Text: "quick brown fox"},
	}
	verified := v.Verify("hello world quick brown bear", planted)
	require.Len(t, verified, 1)
	assert.Equal(t, uint32(1), verified[0].PatternID)
}

func TestVerify_WordBoundaries(t *testing.T) {
	tr := buildIndex(t, "foo bar\tX")
	v := NewVerifier(tr)

	planted := []trie.MatchResult{{PatternID: 1, Xref: "X", Text: "foo bar"}}

	// Embedded words do not satisfy the verifier.
	assert.Empty(t, v.Verify("foobar", planted))
	assert.Empty(t, v.Verify("xfoo bar", planted))
	assert.Len(t, v.Verify("foo bar", planted), 1)
}

func TestVerify_CaseInsensitive(t *testing.T) {
	tr := buildIndex(t, "hello world\tX")
	v := NewVerifier(tr)

	planted := []trie.MatchResult{{PatternID: 1, Xref: "X", Text: "hello world"}}
	assert.Len(t, v.Verify("HELLO World", planted), 1)
}

func TestVerify_EmptyResultsPassThrough(t *testing.T) {
	tr := buildIndex(t, "hello world\tX")
	v := NewVerifier(tr)
	assert.Empty(t, v.Verify("anything", nil))
}
