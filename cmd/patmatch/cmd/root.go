package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/corey/patmatch/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "patmatch",
	Short: "patmatch — multi-word pattern matcher",
	Long:  "Finds every catalog pattern whose words appear in order, at word boundaries, in the input.",
}

var (
	flagLogLevel  string
	flagLogFormat string
)

// newLogger builds the process logger from the global flags. Quiet callers
// pass quiet=true to suppress everything.
func newLogger(quiet bool) *slog.Logger {
	if quiet {
		return logging.Nop()
	}
	return logging.New(logging.Config{
		Level:  flagLogLevel,
		Format: flagLogFormat,
		Output: os.Stderr,
	})
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "log format (text, json)")

	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statsCmd)
}
