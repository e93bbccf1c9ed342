package store

import (
	"bytes"
	"fmt"

	"github.com/aleksaelezovic/turtle/pkg/rdf"
)

// TripleStore persists RDF triples in three index permutations
type TripleStore struct {
	storage Storage
	encoder TermEncoder
	decoder TermDecoder
}

// NewTripleStore creates a new triplestore
func NewTripleStore(storage Storage, encoder TermEncoder, decoder TermDecoder) *TripleStore {
	return &TripleStore{
		storage: storage,
		encoder: encoder,
		decoder: decoder,
	}
}

// Close closes the triplestore
func (s *TripleStore) Close() error {
	return s.storage.Close()
}

// InsertTriple inserts a triple and reports whether it was new
func (s *TripleStore) InsertTriple(triple rdf.Triple) (bool, error) {
	txn, err := s.storage.Begin(true)
	if err != nil {
		return false, err
	}
	defer txn.Rollback()

	added, err := s.insertTripleInTxn(txn, triple)
	if err != nil {
		return false, err
	}

	return added, txn.Commit()
}

// InsertTripleSet inserts every triple of set in a single transaction and
// returns the number of triples that were not already stored
func (s *TripleStore) InsertTripleSet(set *rdf.TripleSet) (int, error) {
	txn, err := s.storage.Begin(true)
	if err != nil {
		return 0, err
	}
	defer txn.Rollback()

	added := 0
	for _, triple := range set.Triples() {
		ok, err := s.insertTripleInTxn(txn, triple)
		if err != nil {
			return 0, err
		}
		if ok {
			added++
		}
	}

	return added, txn.Commit()
}

type encodedTriple struct {
	subject, predicate, object EncodedTerm
}

func (s *TripleStore) encodeTriple(triple rdf.Triple) (encodedTriple, [3]*string, error) {
	var enc encodedTriple
	var strs [3]*string
	var err error

	if enc.subject, strs[0], err = s.encoder.EncodeTerm(triple.Subject); err != nil {
		return enc, strs, fmt.Errorf("failed to encode subject: %w", err)
	}
	if enc.predicate, strs[1], err = s.encoder.EncodeTerm(triple.Predicate); err != nil {
		return enc, strs, fmt.Errorf("failed to encode predicate: %w", err)
	}
	if enc.object, strs[2], err = s.encoder.EncodeTerm(triple.Object); err != nil {
		return enc, strs, fmt.Errorf("failed to encode object: %w", err)
	}
	return enc, strs, nil
}

// insertTripleInTxn inserts a triple within an existing transaction
func (s *TripleStore) insertTripleInTxn(txn Transaction, triple rdf.Triple) (bool, error) {
	if _, err := rdf.NewTriple(triple.Subject, triple.Predicate, triple.Object); err != nil {
		return false, err
	}

	enc, strs, err := s.encodeTriple(triple)
	if err != nil {
		return false, err
	}

	spoKey := s.encoder.EncodeKey(enc.subject, enc.predicate, enc.object)
	if _, err := txn.Get(TableSPO, spoKey); err == nil {
		return false, nil
	} else if err != ErrNotFound {
		return false, err
	}

	// Store strings in id2str table
	if err := s.storeString(txn, enc.subject, strs[0]); err != nil {
		return false, err
	}
	if err := s.storeString(txn, enc.predicate, strs[1]); err != nil {
		return false, err
	}
	if err := s.storeString(txn, enc.object, strs[2]); err != nil {
		return false, err
	}

	// Empty value for all index entries
	emptyValue := []byte{}

	if err := txn.Set(TableSPO, spoKey, emptyValue); err != nil {
		return false, err
	}
	if err := txn.Set(TablePOS, s.encoder.EncodeKey(enc.predicate, enc.object, enc.subject), emptyValue); err != nil {
		return false, err
	}
	if err := txn.Set(TableOSP, s.encoder.EncodeKey(enc.object, enc.subject, enc.predicate), emptyValue); err != nil {
		return false, err
	}

	return true, nil
}

// storeString stores a string in the id2str table if provided
func (s *TripleStore) storeString(txn Transaction, encoded EncodedTerm, str *string) error {
	if str == nil {
		return nil
	}

	// Use the encoded term (which contains the hash) as the key
	key := encoded[1:] // Skip the type byte, use the hash/data portion
	value := []byte(*str)

	// Check if already exists to avoid unnecessary writes
	existing, err := txn.Get(TableID2Str, key)
	if err == nil && bytes.Equal(existing, value) {
		return nil
	}
	if err != nil && err != ErrNotFound {
		return err
	}

	return txn.Set(TableID2Str, key, value)
}

// DeleteTriple deletes a triple and reports whether it was stored
func (s *TripleStore) DeleteTriple(triple rdf.Triple) (bool, error) {
	txn, err := s.storage.Begin(true)
	if err != nil {
		return false, err
	}
	defer txn.Rollback()

	deleted, err := s.deleteTripleInTxn(txn, triple)
	if err != nil {
		return false, err
	}

	return deleted, txn.Commit()
}

// DeleteTripleSet deletes every triple of set in a single transaction and
// returns the number of triples that were stored
func (s *TripleStore) DeleteTripleSet(set *rdf.TripleSet) (int, error) {
	txn, err := s.storage.Begin(true)
	if err != nil {
		return 0, err
	}
	defer txn.Rollback()

	deleted := 0
	for _, triple := range set.Triples() {
		ok, err := s.deleteTripleInTxn(txn, triple)
		if err != nil {
			return 0, err
		}
		if ok {
			deleted++
		}
	}

	return deleted, txn.Commit()
}

// deleteTripleInTxn deletes a triple within an existing transaction
func (s *TripleStore) deleteTripleInTxn(txn Transaction, triple rdf.Triple) (bool, error) {
	enc, _, err := s.encodeTriple(triple)
	if err != nil {
		return false, err
	}

	spoKey := s.encoder.EncodeKey(enc.subject, enc.predicate, enc.object)
	if _, err := txn.Get(TableSPO, spoKey); err == ErrNotFound {
		return false, nil
	} else if err != nil {
		return false, err
	}

	if err := txn.Delete(TableSPO, spoKey); err != nil {
		return false, err
	}
	if err := txn.Delete(TablePOS, s.encoder.EncodeKey(enc.predicate, enc.object, enc.subject)); err != nil {
		return false, err
	}
	if err := txn.Delete(TableOSP, s.encoder.EncodeKey(enc.object, enc.subject, enc.predicate)); err != nil {
		return false, err
	}

	// Note: We don't remove from id2str table
	// as entries may be referenced by other triples (no garbage collection)

	return true, nil
}

// ContainsTriple checks if a triple exists in the store
func (s *TripleStore) ContainsTriple(triple rdf.Triple) (bool, error) {
	txn, err := s.storage.Begin(false)
	if err != nil {
		return false, err
	}
	defer txn.Rollback()

	enc, _, err := s.encodeTriple(triple)
	if err != nil {
		return false, err
	}

	_, err = txn.Get(TableSPO, s.encoder.EncodeKey(enc.subject, enc.predicate, enc.object))
	if err == ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

// Count returns the number of triples in the store
func (s *TripleStore) Count() (int64, error) {
	txn, err := s.storage.Begin(false)
	if err != nil {
		return 0, err
	}
	defer txn.Rollback()

	it, err := txn.Scan(TableSPO, nil)
	if err != nil {
		return 0, err
	}
	defer it.Close()

	count := int64(0)
	for it.Next() {
		count++
	}

	return count, nil
}
