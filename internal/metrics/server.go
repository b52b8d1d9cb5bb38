package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"SignalSentinel/internal/logger"
)

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	addr string
	srv  *http.Server
}

// NewServer creates a metrics and health server. ready reports whether the
// first batch has completed; /healthz answers 503 until it has.
func NewServer(addr string, g prometheus.Gatherer, ready func() bool) *Server {
	return &Server{
		addr: addr,
		srv: &http.Server{
			Addr:              addr,
			Handler:           Handler(g, ready),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler returns the mux served by Server.
func Handler(g prometheus.Gatherer, ready func() bool) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if ready != nil && !ready() {
			http.Error(w, "starting", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		logger.Infof("metrics server listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); serveFailed(err) {
			logger.Errorf("metrics server: %v", err)
		}
	}()
}

// serveFailed reports whether err is more than the normal result of Shutdown.
func serveFailed(err error) bool {
	return err != nil && !errors.Is(err, http.ErrServerClosed)
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	if err := s.srv.Shutdown(ctx); err != nil {
		logger.Warnf("metrics server shutdown: %v", err)
	}
}
