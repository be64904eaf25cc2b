// Package web serves the daemon's HTTP status surface: /healthz, /stats and
// Prometheus /metrics. It is optional — the daemon answers queries over the
// socket protocol whether or not the HTTP listener is enabled.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/corey/patmatch/internal/ports"
)

// Health is the /healthz payload.
type Health struct {
	Status   string `json:"status"`
	Patterns uint32 `json:"patterns"`
	Blocks   uint32 `json:"blocks"`
	Uptime   string `json:"uptime"`
}

// StatusProvider exposes the app state the HTTP surface reports.
// Thread safety is the implementor's responsibility.
type StatusProvider interface {
	Health() Health
	Stats() ports.ServerStats
}

// Server is the HTTP status server.
type Server struct {
	provider StatusProvider
	metrics  *Metrics
	listener net.Listener
	httpSrv  *http.Server
	stopOnce sync.Once
}

// NewServer creates an HTTP status server.
func NewServer(provider StatusProvider, metrics *Metrics) *Server {
	return &Server{provider: provider, metrics: metrics}
}

// Start binds to 127.0.0.1:port and begins serving. Port 0 picks a free port;
// Addr reports the bound address.
func (s *Server) Start(port int) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/stats", s.handleStats)
	mux.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))

	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return fmt.Errorf("http listen: %w", err)
	}
	s.listener = ln
	s.httpSrv = &http.Server{Handler: mux}

	go s.httpSrv.Serve(ln)
	return nil
}

// Addr returns the bound address.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Stop shuts the HTTP server down gracefully. Idempotent.
func (s *Server) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		if s.httpSrv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			err = s.httpSrv.Shutdown(ctx)
		}
	})
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.provider.Health())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.provider.Stats())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
