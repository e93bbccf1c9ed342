package loader

import (
	"os"
	"path/filepath"
	"time"

	"github.com/aleksaelezovic/turtle/internal/metrics"
	"github.com/aleksaelezovic/turtle/pkg/rdf"
	"github.com/aleksaelezovic/turtle/pkg/store"
	"github.com/pkg/errors"
)

// Result describes one loaded document
type Result struct {
	Path    string
	Format  rdf.Format
	Triples int // triples in the document
	Added   int // triples that were new to the store
}

// Loader parses documents from disk and stores their triples
type Loader struct {
	store   *store.TripleStore
	metrics *metrics.Metrics

	// Progress, if set, receives one line per loaded document
	Progress func(format string, args ...any)
}

// New creates a loader writing into s. A nil m gets a fresh metrics set.
func New(s *store.TripleStore, m *metrics.Metrics) *Loader {
	if m == nil {
		m = metrics.New()
	}
	return &Loader{store: s, metrics: m}
}

// Metrics returns the metrics updated by the loader
func (l *Loader) Metrics() *metrics.Metrics {
	return l.metrics
}

// FileBase returns the file:// IRI of path, used as the base IRI of a
// document when none is given
func FileBase(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(err, "resolving %s", path)
	}
	abs = filepath.ToSlash(abs)
	if abs[0] != '/' {
		abs = "/" + abs
	}
	return "file://" + abs, nil
}

// ParseFile parses a .ttl or .nt file. An empty base means the file's own
// file:// IRI.
func ParseFile(path, base string) (*rdf.TripleSet, rdf.Format, error) {
	format := rdf.FormatForPath(path)
	if format == rdf.FormatUnknown {
		return nil, format, errors.Errorf("cannot detect the format of %s: expected .ttl or .nt", path)
	}
	if base == "" {
		var err error
		if base, err = FileBase(path); err != nil {
			return nil, format, err
		}
	}

	f, err := os.Open(path) // #nosec G304 - loading user-specified files is the point
	if err != nil {
		return nil, format, errors.Wrap(err, "opening document")
	}
	defer f.Close()

	parser, err := rdf.NewParserForFormat(format, f, base)
	if err != nil {
		return nil, format, errors.Wrapf(err, "creating %s parser", format)
	}
	triples, err := parser.Parse()
	if err != nil {
		return nil, format, errors.Wrapf(err, "parsing %s", path)
	}
	return triples, format, nil
}

// LoadFile parses one document and inserts its triples in a single
// transaction
func (l *Loader) LoadFile(path, base string) (Result, error) {
	result := Result{Path: path, Format: rdf.FormatForPath(path)}

	start := time.Now()
	triples, format, err := ParseFile(path, base)
	if err != nil {
		if format != rdf.FormatUnknown {
			l.metrics.ObserveParseError(format.String())
		}
		return result, err
	}
	l.metrics.ObserveParse(format.String(), triples.Len(), time.Since(start))
	result.Triples = triples.Len()

	start = time.Now()
	added, err := l.store.InsertTripleSet(triples)
	if err != nil {
		return result, errors.Wrapf(err, "storing triples of %s", path)
	}
	l.metrics.ObserveInsert(added, time.Since(start))
	result.Added = added

	if l.Progress != nil {
		l.Progress("%s: %d triples (%d new) as %s", path, result.Triples, result.Added, format)
	}
	return result, nil
}

// LoadFiles loads each path in turn and stops at the first failure
func (l *Loader) LoadFiles(paths []string, base string) ([]Result, error) {
	results := make([]Result, 0, len(paths))
	for _, path := range paths {
		result, err := l.LoadFile(path, base)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}
