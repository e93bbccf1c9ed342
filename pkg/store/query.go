package store

import (
	"fmt"

	"github.com/aleksaelezovic/turtle/pkg/rdf"
)

// Pattern represents a triple pattern. Each position holds an rdf.Term,
// a *Variable, or nil which also matches anything.
type Pattern struct {
	Subject   any // rdf.Term or Variable
	Predicate any // rdf.Term or Variable
	Object    any // rdf.Term or Variable
}

// Variable represents an unbound pattern position
type Variable struct {
	Name string
}

// NewVariable creates a new variable
func NewVariable(name string) *Variable {
	return &Variable{Name: name}
}

func (v *Variable) String() string {
	return "?" + v.Name
}

// TripleIterator iterates over triples matching a pattern
type TripleIterator interface {
	Next() bool
	Triple() (rdf.Triple, error)
	Close() error
}

// Match returns the stored triples matching pattern. The iterator holds a
// read transaction open until it is closed.
func (s *TripleStore) Match(pattern *Pattern) (TripleIterator, error) {
	txn, err := s.storage.Begin(false)
	if err != nil {
		return nil, err
	}

	// Select the best index based on bound positions
	table, keyPattern := s.selectIndex(pattern)

	// Build the prefix for scanning
	prefix, err := s.buildScanPrefix(pattern, keyPattern)
	if err != nil {
		_ = txn.Rollback() // #nosec G104 - rollback error less important than original error
		return nil, err
	}

	it, err := txn.Scan(table, prefix)
	if err != nil {
		_ = txn.Rollback() // #nosec G104 - rollback error less important than original error
		return nil, err
	}

	return &tripleIterator{
		store:      s,
		txn:        txn,
		it:         it,
		pattern:    pattern,
		keyPattern: keyPattern,
	}, nil
}

// MatchAll collects every triple matching pattern into a set
func (s *TripleStore) MatchAll(pattern *Pattern) (*rdf.TripleSet, error) {
	iter, err := s.Match(pattern)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	set := rdf.NewTripleSet()
	for iter.Next() {
		triple, err := iter.Triple()
		if err != nil {
			return nil, err
		}
		set.Add(triple)
	}
	return set, nil
}

// selectIndex chooses the best index based on which positions are bound
func (s *TripleStore) selectIndex(pattern *Pattern) (Table, []int) {
	sBound := !isVariable(pattern.Subject)
	pBound := !isVariable(pattern.Predicate)
	oBound := !isVariable(pattern.Object)

	// KeyPattern maps: key_position -> SPO_position (S=0, P=1, O=2)
	if sBound && pBound {
		return TableSPO, []int{0, 1, 2} // Key order: S, P, O
	}
	if pBound && oBound {
		return TablePOS, []int{1, 2, 0} // Key order: P, O, S
	}
	if oBound && sBound {
		return TableOSP, []int{2, 0, 1} // Key order: O, S, P
	}
	if sBound {
		return TableSPO, []int{0, 1, 2} // Key order: S, P, O
	}
	if pBound {
		return TablePOS, []int{1, 2, 0} // Key order: P, O, S
	}
	if oBound {
		return TableOSP, []int{2, 0, 1} // Key order: O, S, P
	}
	// No positions bound, use SPO
	return TableSPO, []int{0, 1, 2}
}

// buildScanPrefix builds a key prefix for scanning based on bound positions
func (s *TripleStore) buildScanPrefix(pattern *Pattern, keyPattern []int) ([]byte, error) {
	positions := [3]any{pattern.Subject, pattern.Predicate, pattern.Object}

	// Build prefix from bound terms in key order
	var prefix []byte
	for _, idx := range keyPattern {
		term := positions[idx]
		if isVariable(term) {
			// Stop at first variable
			break
		}

		t, ok := term.(rdf.Term)
		if !ok {
			return nil, fmt.Errorf("pattern position %d holds %T, not a term or variable", idx, term)
		}
		encoded, _, err := s.encoder.EncodeTerm(t)
		if err != nil {
			return nil, err
		}

		prefix = append(prefix, encoded[:]...)
	}

	return prefix, nil
}

// isVariable checks if a pattern position matches anything
func isVariable(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case *Variable:
		return true
	case rdf.Term:
		return t.IsZero()
	}
	return false
}

// tripleIterator implements TripleIterator
type tripleIterator struct {
	store      *TripleStore
	txn        Transaction
	it         Iterator
	pattern    *Pattern
	keyPattern []int
	closed     bool
}

func (ti *tripleIterator) Next() bool {
	if ti.closed {
		return false
	}
	return ti.it.Next()
}

func (ti *tripleIterator) Triple() (rdf.Triple, error) {
	if ti.closed {
		return rdf.Triple{}, fmt.Errorf("iterator closed")
	}

	key := ti.it.Key()
	if key == nil {
		return rdf.Triple{}, fmt.Errorf("no current key")
	}

	if len(key) < len(ti.keyPattern)*EncodedTermSize {
		return rdf.Triple{}, fmt.Errorf("invalid key length: %d", len(key))
	}

	// Map back to S, P, O positions
	var positions [3]EncodedTerm
	for i, idx := range ti.keyPattern {
		offset := i * EncodedTermSize
		copy(positions[idx][:], key[offset:offset+EncodedTermSize])
	}

	subject, err := ti.store.decodeTerm(ti.txn, positions[0])
	if err != nil {
		return rdf.Triple{}, fmt.Errorf("failed to decode subject: %w", err)
	}

	predicate, err := ti.store.decodeTerm(ti.txn, positions[1])
	if err != nil {
		return rdf.Triple{}, fmt.Errorf("failed to decode predicate: %w", err)
	}

	object, err := ti.store.decodeTerm(ti.txn, positions[2])
	if err != nil {
		return rdf.Triple{}, fmt.Errorf("failed to decode object: %w", err)
	}

	return rdf.Triple{
		Subject:   subject,
		Predicate: predicate,
		Object:    object,
	}, nil
}

func (ti *tripleIterator) Close() error {
	if ti.closed {
		return nil
	}
	ti.closed = true
	_ = ti.it.Close() // #nosec G104 - iterator close error less critical than transaction rollback error
	return ti.txn.Rollback()
}

// decodeTerm decodes an encoded term back to an rdf.Term
func (s *TripleStore) decodeTerm(txn Transaction, encoded EncodedTerm) (rdf.Term, error) {
	var stringValue *string
	if s.decoder.NeedsString(encoded) {
		str, err := txn.Get(TableID2Str, encoded[1:])
		if err != nil {
			return rdf.Term{}, fmt.Errorf("id2str lookup: %w", err)
		}
		strVal := string(str)
		stringValue = &strVal
	}

	return s.decoder.DecodeTerm(encoded, stringValue)
}
