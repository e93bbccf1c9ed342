// Package interop converts terms and triples to and from the gordf term
// model used by other Go RDF libraries.
package interop

import (
	"fmt"

	gordf "github.com/iand/gordf"

	"github.com/aleksaelezovic/turtle/pkg/rdf"
)

// ToGordf converts a term. Ordinary xsd:string literals become plain
// gordf literals.
func ToGordf(term rdf.Term) gordf.Term {
	switch term.Kind() {
	case rdf.KindIRI:
		return gordf.IRI(term.Value())
	case rdf.KindBlank:
		return gordf.Blank(term.Value())
	case rdf.KindLangString:
		return gordf.LiteralWithLanguage(term.Value(), term.Language())
	default:
		if term.IsOrdinaryString() {
			return gordf.Literal(term.Value())
		}
		return gordf.LiteralWithDatatype(term.Value(), term.Datatype())
	}
}

// FromGordf converts a gordf term
func FromGordf(term gordf.Term) (rdf.Term, error) {
	switch term.Kind {
	case gordf.IRITerm:
		return rdf.NewIRI(term.Value)
	case gordf.LiteralTerm:
		if term.Language != "" {
			return rdf.NewLangString(term.Value, term.Language)
		}
		if term.Datatype == "" {
			return rdf.NewString(term.Value), nil
		}
		return rdf.NewTypedString(term.Value, term.Datatype)
	case gordf.UnknownTerm:
		return rdf.Term{}, fmt.Errorf("gordf term %q has no kind", term.Value)
	default:
		return rdf.NewBlank(term.Value)
	}
}

// TriplesToGordf converts a triple set in sorted order
func TriplesToGordf(set *rdf.TripleSet) [][3]gordf.Term {
	triples := set.Triples()
	out := make([][3]gordf.Term, len(triples))
	for i, t := range triples {
		out[i] = [3]gordf.Term{ToGordf(t.Subject), ToGordf(t.Predicate), ToGordf(t.Object)}
	}
	return out
}

// TripleFromGordf converts three gordf terms into a triple, checking that
// each term may appear in its position
func TripleFromGordf(terms [3]gordf.Term) (rdf.Triple, error) {
	var converted [3]rdf.Term
	for i, term := range terms {
		t, err := FromGordf(term)
		if err != nil {
			return rdf.Triple{}, err
		}
		converted[i] = t
	}
	return rdf.NewTriple(converted[0], converted[1], converted[2])
}
