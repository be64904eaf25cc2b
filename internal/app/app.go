// Package app wires together the adapters and the pattern index. It owns the
// index lifecycle: build at startup, freeze, share with every worker, and —
// when watching is enabled — rebuild into a fresh index and swap atomically.
package app

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/corey/patmatch/internal/adapters/ahocorasick"
	"github.com/corey/patmatch/internal/adapters/bbolt"
	fsw "github.com/corey/patmatch/internal/adapters/fsnotify"
	"github.com/corey/patmatch/internal/adapters/socket"
	"github.com/corey/patmatch/internal/adapters/textfile"
	"github.com/corey/patmatch/internal/adapters/web"
	"github.com/corey/patmatch/internal/domain/trie"
	"github.com/corey/patmatch/internal/ports"
)

// statsFlushInterval is how often persisted counters are written out.
const statsFlushInterval = 30 * time.Second

// engine pairs a frozen index with its verifier so a hot swap replaces both
// in one pointer store.
type engine struct {
	trie     *trie.PatternTrie
	verifier *ahocorasick.Verifier
}

// App is the top-level container wiring all components together.
type App struct {
	cfg  Config
	opts ports.MatchOptions
	log  *slog.Logger

	mu     sync.RWMutex // guards engine swap and stats
	engine *engine
	stats  ports.ServerStats

	ctxPool sync.Pool
	cache   *lru.Cache[string, []socket.MatchOutput]

	Server    *socket.Server
	WebServer *web.Server
	Watcher   *fsw.Watcher
	Store     ports.Storage
	Metrics   *web.Metrics

	started  time.Time
	done     chan struct{}
	stopOnce sync.Once
	flushWg  sync.WaitGroup
}

// BuildIndex loads stopwords and patterns into a fresh frozen index.
func BuildIndex(patternFile, stopwordFile string, opts ports.MatchOptions, log *slog.Logger) (*trie.PatternTrie, error) {
	t := trie.New(log)

	if stopwordFile != "" {
		// Only the pattern file is fatal at startup; a bad stopword file is
		// reported and skipped, as matching still works without it.
		if data, err := os.ReadFile(stopwordFile); err != nil {
			log.Error("cannot read stopword file", "file", stopwordFile, "error", err)
		} else {
			words := trie.ParseStopwords(data)
			t.SetStopwords(words)
			log.Info("stopwords loaded", "count", len(words), "file", stopwordFile)
		}
	}

	r, err := textfile.Open(patternFile)
	if err != nil {
		return nil, fmt.Errorf("patterns: %w", err)
	}
	defer r.Close()

	start := time.Now()
	loaded, err := t.ProcessPatterns(r, opts)
	if err != nil {
		return nil, fmt.Errorf("patterns: %w", err)
	}
	t.PrepareForMatching()
	log.Info("index built",
		"patterns", loaded,
		"blocks", t.BlockCount(),
		"memory_kb", t.MemoryUsage()/1024,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return t, nil
}

// New builds the index and wires the daemon. Matching-substring extraction is
// forced on in server mode.
func New(cfg Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}

	opts := cfg.Options
	opts.Matching = true

	a := &App{
		cfg:     cfg,
		opts:    opts,
		log:     log,
		stats:   ports.ServerStats{CategoryHits: make(map[string]uint64)},
		Metrics: web.NewMetrics(),
		done:    make(chan struct{}),
	}
	a.ctxPool.New = func() any { return trie.NewMatchContext() }

	t, err := BuildIndex(cfg.PatternFile, cfg.StopwordFile, opts, log)
	if err != nil {
		return nil, err
	}
	a.setEngine(t)

	if cfg.CacheSize > 0 {
		cache, err := lru.New[string, []socket.MatchOutput](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("cache: %w", err)
		}
		a.cache = cache
	}

	if cfg.DBPath != "" {
		store, err := bbolt.NewStore(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		a.Store = store

		persisted, err := store.LoadStats()
		if err != nil {
			store.Close()
			return nil, err
		}
		if persisted != nil {
			if persisted.CategoryHits == nil {
				persisted.CategoryHits = make(map[string]uint64)
			}
			a.stats = *persisted
		}
	}

	switch {
	case cfg.TCPPort > 0 && cfg.UnixSocket != "":
		return nil, fmt.Errorf("cannot listen on both a TCP port and a Unix socket")
	case cfg.TCPPort > 0:
		a.Server = socket.NewTCPServer(a, cfg.TCPPort, log)
	case cfg.UnixSocket != "":
		a.Server = socket.NewUnixServer(a, cfg.UnixSocket, log)
	}

	if cfg.HTTPEnabled {
		a.WebServer = web.NewServer(a, a.Metrics)
	}

	return a, nil
}

// Start brings up the listeners, the watcher and the stats flusher.
func (a *App) Start() error {
	a.started = time.Now()

	if a.Server != nil {
		if err := a.Server.Start(); err != nil {
			return err
		}
	}

	if a.WebServer != nil {
		if err := a.WebServer.Start(a.cfg.HTTPPort); err != nil {
			a.stopServers()
			return err
		}
		a.log.Info("http status server listening", "addr", a.WebServer.Addr())
	}

	if a.cfg.Watch {
		w, err := fsw.NewWatcher()
		if err != nil {
			a.stopServers()
			return err
		}
		a.Watcher = w
		if err := w.Watch(a.cfg.PatternFile, func() { go a.Rebuild() }); err != nil {
			a.stopServers()
			return err
		}
		a.log.Info("watching pattern file", "file", a.cfg.PatternFile)
	}

	if a.Store != nil {
		a.flushWg.Add(1)
		go a.flushLoop()
	}

	return nil
}

// Stop shuts everything down and flushes persisted counters. Idempotent.
func (a *App) Stop() error {
	a.stopOnce.Do(func() {
		close(a.done)
		if a.Watcher != nil {
			a.Watcher.Stop()
		}
		a.stopServers()
		a.flushWg.Wait()
		if a.Store != nil {
			a.flushStats()
			a.Store.Close()
		}
	})
	return nil
}

func (a *App) stopServers() {
	if a.Server != nil {
		a.Server.Stop()
	}
	if a.WebServer != nil {
		a.WebServer.Stop()
	}
}

func (a *App) flushLoop() {
	defer a.flushWg.Done()
	ticker := time.NewTicker(statsFlushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			a.flushStats()
		case <-a.done:
			return
		}
	}
}

func (a *App) flushStats() {
	stats := a.Stats()
	if err := a.Store.SaveStats(&stats); err != nil {
		a.log.Warn("stats flush failed", "error", err)
	}
}

// setEngine installs a freshly built index (and its verifier, when verify
// mode is on) and refreshes the index gauges.
func (a *App) setEngine(t *trie.PatternTrie) {
	e := &engine{trie: t}
	if a.opts.Verify {
		e.verifier = ahocorasick.NewVerifier(t)
	}
	a.mu.Lock()
	a.engine = e
	a.mu.Unlock()

	a.Metrics.PatternsLoaded.Set(float64(t.PatternCount()))
	a.Metrics.TrieBlocks.Set(float64(t.BlockCount()))
}

func (a *App) currentEngine() *engine {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.engine
}

// Rebuild loads the pattern file into a fresh index and swaps it in. Scans
// already running continue on the index they started with; the response
// cache is purged so stale entries cannot outlive the swap. A failed rebuild
// keeps the old index.
func (a *App) Rebuild() {
	t, err := BuildIndex(a.cfg.PatternFile, a.cfg.StopwordFile, a.opts, a.log)
	if err != nil {
		a.log.Error("rebuild failed, keeping current index", "error", err)
		return
	}
	a.setEngine(t)
	if a.cache != nil {
		a.cache.Purge()
	}

	a.mu.Lock()
	a.stats.Rebuilds++
	a.mu.Unlock()
	a.Metrics.RebuildsTotal.Inc()
	a.log.Info("index swapped", "patterns", t.PatternCount())
}

// Index returns the current frozen index.
func (a *App) Index() *trie.PatternTrie {
	return a.currentEngine().trie
}

// MatchQuery implements socket.Matcher for single queries, with the LRU
// cache in front of the scan.
func (a *App) MatchQuery(query string) []socket.MatchOutput {
	a.recordRequest()

	if a.cache != nil {
		if cached, ok := a.cache.Get(query); ok {
			a.recordQuery(cached)
			return cached
		}
	}

	out := a.matchOne(a.currentEngine(), query)
	if a.cache != nil {
		a.cache.Add(query, out)
	}
	a.recordQuery(out)
	return out
}

// MatchBatch implements socket.Matcher for batches: bounded fan-out, one
// scratch context per worker, input order preserved.
func (a *App) MatchBatch(queries []string) [][]socket.MatchOutput {
	a.recordRequest()

	e := a.currentEngine()
	results := make([][]socket.MatchOutput, len(queries))

	g := new(errgroup.Group)
	g.SetLimit(a.workers())
	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			results[i] = a.matchOne(e, q)
			return nil
		})
	}
	g.Wait()

	for _, out := range results {
		a.recordQuery(out)
	}
	return results
}

// RecordBadRequest implements socket.Matcher.
func (a *App) RecordBadRequest() {
	a.Metrics.BadRequestsTotal.Inc()
	a.mu.Lock()
	a.stats.BadRequests++
	a.mu.Unlock()
}

func (a *App) matchOne(e *engine, query string) []socket.MatchOutput {
	ctx := a.ctxPool.Get().(*trie.MatchContext)
	defer a.ctxPool.Put(ctx)

	start := time.Now()
	results := e.trie.Match(query, a.opts, ctx)
	a.Metrics.ScanDuration.Observe(time.Since(start).Seconds())

	if e.verifier != nil {
		results = e.verifier.Verify(query, results)
	}
	return socket.ToMatchOutputs(results)
}

func (a *App) recordRequest() {
	a.Metrics.RequestsTotal.Inc()
	a.mu.Lock()
	a.stats.Requests++
	a.mu.Unlock()
}

func (a *App) recordQuery(out []socket.MatchOutput) {
	a.Metrics.QueriesTotal.Inc()
	a.Metrics.MatchesTotal.Add(float64(len(out)))

	a.mu.Lock()
	a.stats.Queries++
	a.stats.Matches += uint64(len(out))
	for _, m := range out {
		if m.Category != "" {
			a.stats.CategoryHits[m.Category]++
		}
	}
	a.mu.Unlock()
}

func (a *App) workers() int {
	if a.cfg.Workers > 0 {
		return a.cfg.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Health implements web.StatusProvider.
func (a *App) Health() web.Health {
	t := a.Index()
	return web.Health{
		Status:   "ok",
		Patterns: t.PatternCount(),
		Blocks:   t.BlockCount(),
		Uptime:   time.Since(a.started).Round(time.Second).String(),
	}
}

// Stats implements web.StatusProvider, returning a copy of the counters.
func (a *App) Stats() ports.ServerStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := a.stats
	out.CategoryHits = make(map[string]uint64, len(a.stats.CategoryHits))
	for k, v := range a.stats.CategoryHits {
		out.CategoryHits[k] = v
	}
	return out
}
