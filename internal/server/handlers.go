package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/aleksaelezovic/turtle/pkg/rdf"
	"github.com/aleksaelezovic/turtle/pkg/store"
)

// handleRoot describes the endpoint
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	count, err := s.store.Count()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Count error: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprintf(w, `Turtle triple store
Total triples: %d

POST /data             upload text/turtle or application/n-triples (?base=<iri>)
GET  /triples?s=&p=&o= matching triples as N-Triples; terms in N-Triples syntax
GET  /metrics          Prometheus metrics
`, count) // #nosec G104 - error writing response is logged elsewhere if needed
}

// handleTriples answers a triple pattern. Missing parameters and ?name
// are wildcards.
func (s *Server) handleTriples(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Accept")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Use GET")
		return
	}

	query := r.URL.Query()
	var terms [3]any
	for i, name := range []string{"s", "p", "o"} {
		value := strings.TrimSpace(query.Get(name))
		if value == "" || strings.HasPrefix(value, "?") {
			continue
		}
		term, err := rdf.ParseTerm(value)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid term for %s: %v", name, err))
			return
		}
		terms[i] = term
	}

	matches, err := s.store.MatchAll(&store.Pattern{Subject: terms[0], Predicate: terms[1], Object: terms[2]})
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("Match error: %v", err))
		return
	}

	w.Header().Set("Content-Type", rdf.FormatNTriples.ContentType()+"; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(matches.String())) // #nosec G104 - error writing response is logged elsewhere if needed
}

// handleDataUpload parses a Turtle or N-Triples body and stores its triples
// in one transaction
func (s *Server) handleDataUpload(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Use POST")
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		s.writeError(w, http.StatusBadRequest, "Missing Content-Type header")
		return
	}
	format := rdf.FormatForContentType(contentType)
	if format == rdf.FormatUnknown {
		s.writeError(w, http.StatusUnsupportedMediaType,
			fmt.Sprintf("Unsupported content type: %s. Supported types: %s, %s",
				contentType, rdf.FormatTurtle.ContentType(), rdf.FormatNTriples.ContentType()))
		return
	}

	base := r.URL.Query().Get("base")
	if base == "" {
		base = s.Base
	}
	parser, err := rdf.NewParser(contentType, r.Body, base)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	startTime := time.Now()
	triples, err := parser.Parse()
	if err != nil {
		s.metrics.ObserveParseError(format.String())
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("Parse error: %v", err))
		return
	}
	s.metrics.ObserveParse(format.String(), triples.Len(), time.Since(startTime))

	insertTime := time.Now()
	added, err := s.store.InsertTripleSet(triples)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Insert error: %v", err))
		return
	}
	s.metrics.ObserveInsert(added, time.Since(insertTime))

	duration := time.Since(startTime)
	response := map[string]any{
		"success": true,
		"statistics": map[string]any{
			"triplesParsed":   triples.Len(),
			"triplesInserted": added,
			"durationMs":      duration.Milliseconds(),
		},
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response) // #nosec G104 - error writing response is logged elsewhere if needed
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, statusCode int, message string) {
	log.Printf("Error: %s", message)

	body := map[string]any{"error": map[string]any{"code": statusCode, "message": message}}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body) // #nosec G104 - error writing response is logged elsewhere if needed
}
