package server

import (
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aleksaelezovic/turtle/internal/metrics"
	"github.com/aleksaelezovic/turtle/pkg/store"
)

// Server exposes a triple store over HTTP: documents are uploaded to /data
// and read back by pattern from /triples
type Server struct {
	store   *store.TripleStore
	metrics *metrics.Metrics
	addr    string

	// Base is the base IRI for uploads that do not pass one
	Base string
}

// NewServer creates a server for store. A nil m gets a fresh metrics set.
func NewServer(store *store.TripleStore, m *metrics.Metrics, addr string) *Server {
	if m == nil {
		m = metrics.New()
	}
	return &Server{
		store:   store,
		metrics: m,
		addr:    addr,
	}
}

// Handler returns the server's routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/data", s.handleDataUpload)
	mux.HandleFunc("/triples", s.handleTriples)
	mux.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/", s.handleRoot)
	return mux
}

// Start starts the HTTP server
func (s *Server) Start() error {
	server := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Serving triples at http://%s/triples", s.addr)
	return server.ListenAndServe()
}
