package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/corey/patmatch/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the match daemon on a TCP port or Unix socket",
	Long: `Loads the pattern file once, freezes the index, and answers JSON match
requests. Matching-substring extraction is always on in server mode.`,
	RunE: runServe,
}

var (
	serveConfigFile string
	serveCfg        app.Config
)

func init() {
	serveCmd.Flags().StringVar(&serveConfigFile, "config", "", "YAML config file (flags override it)")
	serveCmd.Flags().StringVarP(&serveCfg.PatternFile, "patterns", "p", "", "pattern file (gzip detected by magic bytes)")
	serveCmd.Flags().StringVarP(&serveCfg.StopwordFile, "stopwords", "w", "", "comma-delimited stopword file")
	serveCmd.Flags().IntVarP(&serveCfg.TCPPort, "tcp", "P", 0, "TCP port to listen on")
	serveCmd.Flags().StringVarP(&serveCfg.UnixSocket, "unix", "S", "", "Unix socket path to listen on")
	serveCmd.Flags().BoolVar(&serveCfg.HTTPEnabled, "http", false, "enable the HTTP status server")
	serveCmd.Flags().IntVar(&serveCfg.HTTPPort, "http-port", 0, "HTTP status port (0 picks a free port)")
	serveCmd.Flags().StringVar(&serveCfg.DBPath, "db", "", "bbolt database for persisted counters")
	serveCmd.Flags().BoolVar(&serveCfg.Watch, "watch", false, "rebuild the index when the pattern file changes")
	serveCmd.Flags().IntVar(&serveCfg.CacheSize, "cache", 0, "single-query LRU cache entries (0 disables)")
	serveCmd.Flags().IntVarP(&serveCfg.Workers, "threads", "t", 0, "batch worker count (default: all cores)")
	serveCmd.Flags().BoolVarP(&serveCfg.Options.LCSS, "lcss", "L", false, "tolerate out-of-order words when must-have words are present")
	serveCmd.Flags().BoolVarP(&serveCfg.Options.RemoveStopwords, "remove-stopwords", "W", false, "drop stopwords during pattern normalization")
	serveCmd.Flags().BoolVarP(&serveCfg.Options.Verify, "verify", "v", false, "re-check every match against an Aho-Corasick automaton")
	serveCmd.Flags().BoolVar(&serveCfg.Options.AddressMode, "address", false, "fold invalid pattern characters to spaces instead of rejecting")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := serveCfg
	if serveConfigFile != "" {
		fileCfg, err := app.LoadConfig(serveConfigFile)
		if err != nil {
			return err
		}
		cfg = mergeConfig(fileCfg, cmd)
	}

	if cfg.PatternFile == "" {
		return fmt.Errorf("pattern file required (--patterns or config)")
	}
	if cfg.TCPPort == 0 && cfg.UnixSocket == "" {
		return fmt.Errorf("a listener is required (--tcp or --unix)")
	}

	log := newLogger(false)

	a, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	if err := a.Start(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")
	return a.Stop()
}

// mergeConfig overlays the flags the user actually set onto the file config.
func mergeConfig(fileCfg app.Config, cmd *cobra.Command) app.Config {
	cfg := fileCfg
	if cmd.Flags().Changed("patterns") {
		cfg.PatternFile = serveCfg.PatternFile
	}
	if cmd.Flags().Changed("stopwords") {
		cfg.StopwordFile = serveCfg.StopwordFile
	}
	if cmd.Flags().Changed("tcp") {
		cfg.TCPPort = serveCfg.TCPPort
	}
	if cmd.Flags().Changed("unix") {
		cfg.UnixSocket = serveCfg.UnixSocket
	}
	if cmd.Flags().Changed("http") {
		cfg.HTTPEnabled = serveCfg.HTTPEnabled
	}
	if cmd.Flags().Changed("http-port") {
		cfg.HTTPPort = serveCfg.HTTPPort
	}
	if cmd.Flags().Changed("db") {
		cfg.DBPath = serveCfg.DBPath
	}
	if cmd.Flags().Changed("watch") {
		cfg.Watch = serveCfg.Watch
	}
	if cmd.Flags().Changed("cache") {
		cfg.CacheSize = serveCfg.CacheSize
	}
	if cmd.Flags().Changed("threads") {
		cfg.Workers = serveCfg.Workers
	}
	if cmd.Flags().Changed("lcss") {
		cfg.Options.LCSS = serveCfg.Options.LCSS
	}
	if cmd.Flags().Changed("remove-stopwords") {
		cfg.Options.RemoveStopwords = serveCfg.Options.RemoveStopwords
	}
	if cmd.Flags().Changed("verify") {
		cfg.Options.Verify = serveCfg.Options.Verify
	}
	if cmd.Flags().Changed("address") {
		cfg.Options.AddressMode = serveCfg.Options.AddressMode
	}
	return cfg
}
