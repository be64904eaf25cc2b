package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/patmatch/internal/app"
	"github.com/corey/patmatch/internal/ports"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Load a pattern file and report index statistics",
	RunE:  runStats,
}

var (
	statsPatternFile  string
	statsStopwordFile string
	statsOpts         ports.MatchOptions
)

func init() {
	statsCmd.Flags().StringVarP(&statsPatternFile, "patterns", "p", "", "pattern file (gzip detected by magic bytes)")
	statsCmd.Flags().StringVarP(&statsStopwordFile, "stopwords", "w", "", "comma-delimited stopword file")
	statsCmd.Flags().BoolVarP(&statsOpts.RemoveStopwords, "remove-stopwords", "W", false, "drop stopwords during pattern normalization")
	statsCmd.Flags().BoolVar(&statsOpts.AddressMode, "address", false, "fold invalid pattern characters to spaces instead of rejecting")
	statsCmd.MarkFlagRequired("patterns")
}

func runStats(cmd *cobra.Command, args []string) error {
	log := newLogger(true)

	index, err := app.BuildIndex(statsPatternFile, statsStopwordFile, statsOpts, log)
	if err != nil {
		return err
	}

	fmt.Printf("patterns:            %d\n", index.PatternCount())
	fmt.Printf("rejected lines:      %d\n", index.RejectedCount())
	fmt.Printf("trie blocks:         %d\n", index.BlockCount())
	fmt.Printf("end-of-word edges:   %d\n", index.EndOfWordCount())
	fmt.Printf("approx memory:       %d KB\n", index.MemoryUsage()/1024)
	return nil
}
