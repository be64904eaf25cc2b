package trie

import (
	"sort"

	"github.com/corey/patmatch/internal/ports"
)

// LongestIncreasingSubsequence returns a longest strictly increasing
// subsequence of input, using patience sort with binary search. O(n log n);
// word counts are at most 31 so this is negligible per pattern.
func LongestIncreasingSubsequence(input []int) []int {
	if len(input) == 0 {
		return nil
	}

	n := len(input)
	tails := make([]int, n+1) // tails[j] = index of smallest tail of an LIS of length j
	prev := make([]int, n)    // prev[i] = predecessor index of input[i]

	length := 0
	for i := 0; i < n; i++ {
		lo, hi := 1, length+1
		for lo < hi {
			mid := lo + (hi-lo)/2
			if input[tails[mid]] < input[i] {
				lo = mid + 1
			} else {
				hi = mid
			}
		}

		if lo > 1 {
			prev[i] = tails[lo-1]
		} else {
			prev[i] = -1
		}
		tails[lo] = i
		if lo > length {
			length = lo
		}
	}

	result := make([]int, length)
	k := tails[length]
	for i := length - 1; i >= 0; i-- {
		result[i] = input[k]
		k = prev[k]
	}
	return result
}

// lcssRefine reconciles out-of-order word sightings after the strict scan.
// For every pattern with recorded sightings that did not already complete in
// order, it orders the sighted word positions by where they were seen and
// takes the longest increasing subsequence: a full-length subsequence is a
// match, and so is any subsequence covering every must-have position.
func (t *PatternTrie) lcssRefine(
	input string,
	opts ports.MatchOptions,
	lcssSeen map[uint32]map[uint8]int,
	lcssFound map[uint32]struct{},
	results []MatchResult,
) []MatchResult {
	ids := make([]uint32, 0, len(lcssSeen))
	for id := range lcssSeen {
		if _, done := lcssFound[id]; done {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		seen := lcssSeen[id]
		wc := int(t.wordCounts[id])
		mustHave := t.mustHave[id]

		if len(mustHave) == 0 && len(seen) < wc {
			continue
		}
		covered := true
		for p := range mustHave {
			if _, ok := seen[p]; !ok {
				covered = false
				break
			}
		}
		if !covered {
			continue
		}

		type sighting struct {
			at  int
			pos uint8
		}
		order := make([]sighting, 0, len(seen))
		for pos, at := range seen {
			order = append(order, sighting{at: at, pos: pos})
		}
		sort.Slice(order, func(i, j int) bool {
			if order[i].at != order[j].at {
				return order[i].at < order[j].at
			}
			return order[i].pos < order[j].pos
		})

		seq := make([]int, len(order))
		for i, s := range order {
			seq[i] = int(s.pos)
		}
		lis := LongestIncreasingSubsequence(seq)

		accept := len(lis) == wc
		if !accept && len(mustHave) > 0 {
			inLIS := make(map[int]struct{}, len(lis))
			for _, p := range lis {
				inLIS[p] = struct{}{}
			}
			accept = true
			for p := range mustHave {
				if _, ok := inLIS[int(p)]; !ok {
					accept = false
					break
				}
			}
		}
		if !accept {
			continue
		}

		res := MatchResult{
			PatternID: id,
			Xref:      t.xrefs[id],
			Text:      t.texts[id],
		}
		if opts.Matching {
			start, last := len(input), 0
			for pos, at := range seen {
				s := at - int(t.wordLengths[id][pos-1]) + 1
				if s < start {
					start = s
				}
				if at > last {
					last = at
				}
			}
			if start < 0 {
				start = 0
			}
			end := wordBoundary(input, last+1)
			res.Start = start
			res.End = end
			res.Match = input[start:end]
		}
		results = append(results, res)
	}
	return results
}
