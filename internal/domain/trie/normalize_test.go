package trie

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/patmatch/internal/logging"
	"github.com/corey/patmatch/internal/ports"
)

func newTestTrie() *PatternTrie {
	return New(logging.Nop())
}

func TestParseStopwords_CommaDelimited(t *testing.T) {
	words := ParseStopwords([]byte("the, and , OF,\n  with"))
	assert.Contains(t, words, "the")
	assert.Contains(t, words, "and")
	assert.Contains(t, words, "of")
	assert.Contains(t, words, "with")
	assert.Len(t, words, 4)
}

func TestParseStopwords_AllowlistOverrides(t *testing.T) {
	// "system" and friends are never stopwords, even if listed.
	words := ParseStopwords([]byte("system,second,world,banana"))
	assert.NotContains(t, words, "system")
	assert.NotContains(t, words, "second")
	assert.NotContains(t, words, "world")
	assert.Contains(t, words, "banana")
}

func TestNormalize_LowercaseAndSingleCharDrop(t *testing.T) {
	words := normalizeWords("A Big CAT", nil, false)
	assert.Equal(t, []string{"big", "cat"}, words)
}

func TestNormalize_PrefixReduction(t *testing.T) {
	// "micro" is a prefix of "microscope", so it is dropped; only one word
	// remains and the pattern is rejected.
	assert.Nil(t, normalizeWords("micro microscope", nil, false))

	// The marker is excluded from the comparison but kept on the word.
	words := normalizeWords("micro *microscope scope", nil, false)
	assert.Equal(t, []string{"*microscope", "scope"}, words)
}

func TestNormalize_ChainedPrefixReduction(t *testing.T) {
	// Each word is a prefix of its successor, so only the last survives the
	// pass; the trailing word keeps the pattern above the two-word minimum.
	words := normalizeWords("new news newspaper delivery", nil, false)
	assert.Equal(t, []string{"newspaper", "delivery"}, words)
}

func TestNormalize_StopwordRemoval(t *testing.T) {
	stop := map[string]struct{}{"the": {}, "of": {}}
	words := normalizeWords("the king of spain", stop, true)
	assert.Equal(t, []string{"king", "spain"}, words)

	// Removal disabled: stopwords survive.
	words = normalizeWords("the king of spain", stop, false)
	assert.Equal(t, []string{"the", "king", "of", "spain"}, words)
}

func TestNormalize_StopwordsLeaveTooFew(t *testing.T) {
	stop := map[string]struct{}{"the": {}}
	assert.Nil(t, normalizeWords("the cat", stop, true))
}

func TestProcessPattern_ExactHit(t *testing.T) {
	tr := newTestTrie()
	ok, _ := tr.ProcessPattern("hello world\tX1", ports.MatchOptions{})
	require.True(t, ok)
	assert.Equal(t, uint32(1), tr.PatternCount())
	assert.Equal(t, "X1", tr.Xref(1))
	assert.Equal(t, "hello world", tr.Text(1))
}

func TestProcessPattern_CommentAndBlankSkipped(t *testing.T) {
	tr := newTestTrie()
	ok, reason := tr.ProcessPattern("# a comment line", ports.MatchOptions{})
	assert.False(t, ok)
	assert.Equal(t, "comment", reason)

	ok, reason = tr.ProcessPattern("   ", ports.MatchOptions{})
	assert.False(t, ok)
	assert.Equal(t, "comment", reason)

	ok, reason = tr.ProcessPattern("FOO_EXCEPTIONS bar\tX", ports.MatchOptions{})
	assert.False(t, ok)
	assert.Equal(t, "exception pattern", reason)

	assert.Equal(t, uint32(0), tr.PatternCount())
	assert.Equal(t, uint64(0), tr.RejectedCount())
}

func TestProcessPattern_SingleWordRejected(t *testing.T) {
	tr := newTestTrie()
	ok, reason := tr.ProcessPattern("hi\tX", ports.MatchOptions{})
	assert.False(t, ok)
	assert.Equal(t, "non-conforming pattern", reason)

	// Loading continues; only survivors are exposed.
	ok, _ = tr.ProcessPattern("hello world\tX1", ports.MatchOptions{})
	require.True(t, ok)
	assert.Equal(t, uint32(1), tr.PatternCount())
	assert.Equal(t, uint64(1), tr.RejectedCount())
}

func TestProcessPattern_InvalidCharsRejected(t *testing.T) {
	tr := newTestTrie()
	ok, reason := tr.ProcessPattern("café latte\tX", ports.MatchOptions{})
	assert.False(t, ok)
	assert.Equal(t, "non alphanumeric characters", reason)
}

func TestProcessPattern_AddressMode(t *testing.T) {
	tr := newTestTrie()
	// '.' and '#' are outside the allowed class; address mode folds them
	// to spaces instead of rejecting.
	ok, _ := tr.ProcessPattern("main st. #42b\tA7", ports.MatchOptions{AddressMode: true})
	require.True(t, ok)
	assert.Equal(t, "main st 42b", tr.Text(1))
}

func TestProcessPattern_MarkersRecorded(t *testing.T) {
	tr := newTestTrie()
	ok, _ := tr.ProcessPattern("*foo ^bar baz\tX", ports.MatchOptions{})
	require.True(t, ok)

	mh := tr.mustHave[1]
	assert.Contains(t, mh, uint8(1))
	assert.Contains(t, mh, uint8(2))
	assert.NotContains(t, mh, uint8(3))

	// Lengths are post-strip; words are exposed stripped.
	assert.Equal(t, []uint8{3, 3, 3}, tr.wordLengths[1])
	assert.Equal(t, []string{"foo", "bar", "baz"}, tr.Words(1))
}

func TestProcessPattern_XrefKeepsInnerTabs(t *testing.T) {
	tr := newTestTrie()
	ok, _ := tr.ProcessPattern("hello world\tID9\tcategory\textra", ports.MatchOptions{})
	require.True(t, ok)
	assert.Equal(t, "ID9\tcategory\textra", tr.Xref(1))
}

func TestProcessPattern_TooManyWordsRejected(t *testing.T) {
	tr := newTestTrie()
	line := ""
	for i := 0; i < 40; i++ {
		line += "wordnumber" + string(rune('a'+i%26)) + string(rune('a'+i/26)) + " "
	}
	ok, reason := tr.ProcessPattern(line+"\tX", ports.MatchOptions{})
	assert.False(t, ok)
	assert.Equal(t, "too many words", reason)
}
