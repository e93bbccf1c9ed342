package encoding

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/aleksaelezovic/turtle/pkg/rdf"
)

// TermDecoder handles decoding of RDF terms
type TermDecoder struct{}

// hashedKinds maps the type byte of a hashed term to its kind
var hashedKinds = map[byte]rdf.TermKind{
	TypeIRI:         rdf.KindIRI,
	TypeBlankNode:   rdf.KindBlank,
	TypeLangString:  rdf.KindLangString,
	TypeTypedString: rdf.KindTypedString,
}

// NewTermDecoder creates a new term decoder
func NewTermDecoder() *TermDecoder {
	return &TermDecoder{}
}

// NeedsString reports whether the term is stored by hash
func (d *TermDecoder) NeedsString(encoded EncodedTerm) bool {
	switch GetTermType(encoded) {
	case TypeIRI, TypeBlankNode, TypeLangString, TypeTypedString:
		return true
	}
	return false
}

// DecodeTerm decodes an encoded term back to an rdf.Term
// For terms that require string lookup, stringValue should be provided
func (d *TermDecoder) DecodeTerm(encoded EncodedTerm, stringValue *string) (rdf.Term, error) {
	termType := GetTermType(encoded)
	if d.NeedsString(encoded) && stringValue == nil {
		return rdf.Term{}, fmt.Errorf("string value required for term type %d", termType)
	}

	switch termType {
	case TypeIRI, TypeBlankNode:
		return rdf.NewTerm(hashedKinds[termType], *stringValue, "")

	case TypeInlineString:
		// Find null terminator or end of data
		endIdx := 1
		for endIdx < EncodedTermSize && encoded[endIdx] != 0 {
			endIdx++
		}
		return rdf.NewString(string(encoded[1:endIdx])), nil

	case TypeLangString, TypeTypedString:
		// value NUL language-or-datatype; the suffix never contains NUL
		i := strings.LastIndexByte(*stringValue, 0)
		if i < 0 {
			return rdf.Term{}, fmt.Errorf("malformed id2str entry %q", *stringValue)
		}
		return rdf.NewTerm(hashedKinds[termType], (*stringValue)[:i], (*stringValue)[i+1:])

	case TypeInteger:
		value := int64(binary.BigEndian.Uint64(encoded[1:9])) // #nosec G115 - intentional bit-pattern conversion for binary decoding
		return rdf.NewTypedString(strconv.FormatInt(value, 10), rdf.XSDInteger)

	case TypeBoolean:
		if encoded[1] != 0 {
			return rdf.True, nil
		}
		return rdf.False, nil

	default:
		return rdf.Term{}, fmt.Errorf("unknown term type: %d", termType)
	}
}
