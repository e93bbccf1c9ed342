package encoding

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/aleksaelezovic/turtle/pkg/rdf"
	"github.com/aleksaelezovic/turtle/pkg/store"
	"github.com/zeebo/xxh3"
)

const (
	// Maximum size for inline strings (16 bytes of UTF-8)
	MaxInlineStringSize = 16

	// Encoded term size (type byte + 16 bytes for 128-bit hash or inline data)
	EncodedTermSize = store.EncodedTermSize
)

// Type bytes of encoded terms. Zero is never used so that an all-zero
// EncodedTerm is invalid.
const (
	TypeBlankNode byte = iota + 1
	TypeIRI
	TypeInlineString
	TypeLangString
	TypeTypedString
	TypeInteger
	TypeBoolean
)

// EncodedTerm represents a term encoded as a type byte followed by up to 16 bytes of data
type EncodedTerm = store.EncodedTerm

// TermEncoder handles encoding of RDF terms
type TermEncoder struct {
	// Hash function for strings (xxhash3 128-bit)
}

func NewTermEncoder() *TermEncoder {
	return &TermEncoder{}
}

// Hash128 computes a 128-bit xxhash3 hash of the input string
func (e *TermEncoder) Hash128(s string) [16]byte {
	hash := xxh3.HashString128(s)
	var result [16]byte
	binary.BigEndian.PutUint64(result[0:8], hash.Hi)
	binary.BigEndian.PutUint64(result[8:16], hash.Lo)
	return result
}

// EncodeTerm encodes an RDF term into a fixed-size byte array
// Returns the encoded term and optionally a string to store in id2str table
func (e *TermEncoder) EncodeTerm(term rdf.Term) (EncodedTerm, *string, error) {
	switch term.Kind() {
	case rdf.KindIRI:
		if !term.IsIRI() {
			return EncodedTerm{}, nil, fmt.Errorf("empty IRI")
		}
		return e.encodeHashed(TypeIRI, term.Value())
	case rdf.KindBlank:
		if !term.IsBlank() {
			return EncodedTerm{}, nil, fmt.Errorf("empty blank node label")
		}
		return e.encodeHashed(TypeBlankNode, term.Value())
	case rdf.KindLangString:
		return e.encodeHashed(TypeLangString, term.Value()+"\x00"+term.Language())
	case rdf.KindTypedString:
		return e.encodeTypedString(term)
	default:
		return EncodedTerm{}, nil, fmt.Errorf("unknown term kind: %s", term.Kind())
	}
}

// encodeHashed stores the hash of the type byte and payload, and returns
// the payload for the id2str table
func (e *TermEncoder) encodeHashed(typ byte, payload string) (EncodedTerm, *string, error) {
	var encoded EncodedTerm
	encoded[0] = typ
	hash := e.Hash128(string(rune(typ)) + payload)
	copy(encoded[1:], hash[:])
	return encoded, &payload, nil
}

func (e *TermEncoder) encodeTypedString(term rdf.Term) (EncodedTerm, *string, error) {
	var encoded EncodedTerm
	value := term.Value()

	switch term.Datatype() {
	case rdf.XSDString:
		if len(value) <= MaxInlineStringSize && !strings.Contains(value, "\x00") {
			// Inline small strings
			encoded[0] = TypeInlineString
			copy(encoded[1:], value)
			return encoded, nil, nil
		}
	case rdf.XSDInteger:
		// Only canonical forms are inlined so the lexical form survives
		if n, err := strconv.ParseInt(value, 10, 64); err == nil && strconv.FormatInt(n, 10) == value {
			encoded[0] = TypeInteger
			binary.BigEndian.PutUint64(encoded[1:9], uint64(n)) // #nosec G115 - intentional bit-pattern conversion for binary encoding
			return encoded, nil, nil
		}
	case rdf.XSDBoolean:
		if value == "true" || value == "false" {
			encoded[0] = TypeBoolean
			if value == "true" {
				encoded[1] = 1
			}
			return encoded, nil, nil
		}
	}

	return e.encodeHashed(TypeTypedString, value+"\x00"+term.Datatype())
}

// EncodeKey encodes an index key from encoded terms
// Returns a big-endian byte array for lexicographic sorting
func (e *TermEncoder) EncodeKey(terms ...EncodedTerm) []byte {
	result := make([]byte, 0, len(terms)*EncodedTermSize)
	for _, term := range terms {
		result = append(result, term[:]...)
	}
	return result
}

// GetTermType extracts the type from an encoded term
func GetTermType(encoded EncodedTerm) byte {
	return encoded[0]
}
