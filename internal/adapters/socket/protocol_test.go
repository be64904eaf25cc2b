package socket

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/corey/patmatch/internal/domain/trie"
)

func TestToMatchOutputs_XrefSplitting(t *testing.T) {
	results := []trie.MatchResult{
		{PatternID: 1, Xref: "ID1", Text: "alpha beta", Match: "alpha beta"},
		{PatternID: 2, Xref: "ID2\tgeo", Text: "new york", Match: "new york"},
		{PatternID: 3, Xref: "ID3\tname\textra\tfields", Text: "john smith", Match: "john smith"},
	}

	out := ToMatchOutputs(results)
	assert.Equal(t, MatchOutput{ID: "ID1", Category: "", Pattern: "alpha beta", Match: "alpha beta"}, out[0])
	assert.Equal(t, MatchOutput{ID: "ID2", Category: "geo", Pattern: "new york", Match: "new york"}, out[1])
	assert.Equal(t, MatchOutput{ID: "ID3", Category: "name", Pattern: "john smith", Match: "john smith"}, out[2])
}

func TestToMatchOutputs_Empty(t *testing.T) {
	assert.Empty(t, ToMatchOutputs(nil))
}
