package rdf

import (
	"fmt"
	"sort"
	"strings"
)

// Triple is an RDF statement. The subject is an IRI or blank node and the
// predicate is an IRI; NewTriple enforces this.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// NewTriple creates a triple, failing if a term is in an invalid position
func NewTriple(subject, predicate, object Term) (Triple, error) {
	if !subject.IsIRI() && !subject.IsBlank() {
		return Triple{}, fmt.Errorf("%w: subject must be an IRI or blank node, got %s", ErrInvalidTriple, subject.Kind())
	}
	if !predicate.IsIRI() {
		return Triple{}, fmt.Errorf("%w: predicate must be an IRI, got %s", ErrInvalidTriple, predicate.Kind())
	}
	if object.IsZero() {
		return Triple{}, fmt.Errorf("%w: object is missing", ErrInvalidTriple)
	}
	return Triple{Subject: subject, Predicate: predicate, Object: object}, nil
}

// MustTriple is NewTriple that panics on error
func MustTriple(subject, predicate, object Term) Triple {
	t, err := NewTriple(subject, predicate, object)
	if err != nil {
		panic(err)
	}
	return t
}

// String returns the triple as an N-Triples statement
func (t Triple) String() string {
	return t.Subject.String() + " " + t.Predicate.String() + " " + t.Object.String() + " ."
}

// TripleSet is an unordered set of triples. Adding a triple that is
// already present has no effect.
type TripleSet struct {
	triples map[Triple]struct{}
}

// NewTripleSet creates a set holding the given triples
func NewTripleSet(triples ...Triple) *TripleSet {
	s := &TripleSet{triples: make(map[Triple]struct{}, len(triples))}
	for _, t := range triples {
		s.triples[t] = struct{}{}
	}
	return s
}

// Add inserts t and reports whether it was new
func (s *TripleSet) Add(t Triple) bool {
	if _, ok := s.triples[t]; ok {
		return false
	}
	s.triples[t] = struct{}{}
	return true
}

func (s *TripleSet) Remove(t Triple) {
	delete(s.triples, t)
}

func (s *TripleSet) Contains(t Triple) bool {
	_, ok := s.triples[t]
	return ok
}

func (s *TripleSet) Len() int {
	return len(s.triples)
}

// Each calls fn for every triple in unspecified order
func (s *TripleSet) Each(fn func(Triple)) {
	for t := range s.triples {
		fn(t)
	}
}

// Triples returns the triples sorted by their N-Triples form
func (s *TripleSet) Triples() []Triple {
	out := make([]Triple, 0, len(s.triples))
	for t := range s.triples {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}

// String returns the set as an N-Triples document with sorted lines
func (s *TripleSet) String() string {
	var sb strings.Builder
	for _, t := range s.Triples() {
		sb.WriteString(t.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
