package cmd

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/corey/patmatch/internal/adapters/ahocorasick"
	"github.com/corey/patmatch/internal/adapters/textfile"
	"github.com/corey/patmatch/internal/app"
	"github.com/corey/patmatch/internal/domain/trie"
	"github.com/corey/patmatch/internal/ports"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match a file of input strings against a pattern file",
	RunE:  runMatch,
}

// matchCtxPool hands each worker its own scratch context.
var matchCtxPool = sync.Pool{New: func() any { return trie.NewMatchContext() }}

var (
	matchPatternFile  string
	matchStringFile   string
	matchStopwordFile string
	matchThreads      int
	matchOpts         ports.MatchOptions
	matchQuiet        bool
)

func init() {
	matchCmd.Flags().StringVarP(&matchPatternFile, "patterns", "p", "", "pattern file (gzip detected by magic bytes)")
	matchCmd.Flags().StringVarP(&matchStringFile, "strings", "s", "", "input file, one query string per line")
	matchCmd.Flags().StringVarP(&matchStopwordFile, "stopwords", "w", "", "comma-delimited stopword file")
	matchCmd.Flags().IntVarP(&matchThreads, "threads", "t", 0, "worker count (default: all cores)")
	matchCmd.Flags().BoolVarP(&matchOpts.Matching, "matching", "m", false, "report the matching substring instead of the line number")
	matchCmd.Flags().BoolVarP(&matchOpts.LCSS, "lcss", "L", false, "tolerate out-of-order words when must-have words are present")
	matchCmd.Flags().BoolVarP(&matchOpts.RemoveStopwords, "remove-stopwords", "W", false, "drop stopwords during pattern normalization")
	matchCmd.Flags().BoolVarP(&matchOpts.Verify, "verify", "v", false, "re-check every match against an Aho-Corasick automaton")
	matchCmd.Flags().BoolVar(&matchOpts.AddressMode, "address", false, "fold invalid pattern characters to spaces instead of rejecting")
	matchCmd.Flags().BoolVarP(&matchQuiet, "quiet", "q", false, "suppress progress output")
	matchCmd.MarkFlagRequired("patterns")
	matchCmd.MarkFlagRequired("strings")
}

func runMatch(cmd *cobra.Command, args []string) error {
	log := newLogger(matchQuiet)

	index, err := app.BuildIndex(matchPatternFile, matchStopwordFile, matchOpts, log)
	if err != nil {
		return err
	}

	var verifier *ahocorasick.Verifier
	if matchOpts.Verify {
		verifier = ahocorasick.NewVerifier(index)
	}

	lines, err := textfile.ReadLines(matchStringFile)
	if err != nil {
		return err
	}

	workers := matchThreads
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	start := time.Now()
	allResults := make([][]trie.MatchResult, len(lines))

	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i, line := range lines {
		i, line := i, line
		g.Go(func() error {
			ctx := matchCtxPool.Get().(*trie.MatchContext)
			defer matchCtxPool.Put(ctx)

			results := index.Match(line, matchOpts, ctx)
			if verifier != nil {
				results = verifier.Verify(line, results)
			}
			allResults[i] = results
			return nil
		})
	}
	g.Wait()
	elapsed := time.Since(start)

	// Output sequentially to keep input order.
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	total := 0
	for i, results := range allResults {
		for _, m := range results {
			total++
			fmt.Fprintf(out, "=\t%s\t%s\t", m.Xref, m.Text)
			if matchOpts.Matching {
				fmt.Fprintf(out, "%s", m.Match)
			} else {
				fmt.Fprintf(out, "%d", i+1)
			}
			fmt.Fprintf(out, "\t%s\n", lines[i])
		}
	}

	if !matchQuiet {
		fmt.Fprintf(os.Stderr, "processed %d strings in %s, %d matches\n",
			len(lines), elapsed.Round(time.Millisecond), total)
	}
	return nil
}
