package rdf

import "sort"

// AreGraphsIsomorphic reports whether two triple sets are equal up to a
// renaming of their blank nodes, i.e. whether a bijection between their
// blank nodes makes them identical.
func AreGraphsIsomorphic(expected, actual *TripleSet) bool {
	if expected.Len() != actual.Len() {
		return false
	}

	expectedBlanks := blankNodesByDegree(expected)
	actualBlanks := blankNodesByDegree(actual)
	if len(expectedBlanks) != len(actualBlanks) {
		return false
	}

	g := &isomorphism{
		expected: expected.Triples(),
		actual:   actual,
		mapping:  make(map[Term]Term, len(expectedBlanks)),
		used:     make(map[Term]bool, len(actualBlanks)),
	}
	if len(expectedBlanks) == 0 {
		return g.consistent()
	}
	return g.backtrack(expectedBlanks, actualBlanks, 0)
}

type isomorphism struct {
	expected []Triple
	actual   *TripleSet
	mapping  map[Term]Term
	used     map[Term]bool
}

// blankNodesByDegree lists the blank nodes of set, most connected first
func blankNodesByDegree(set *TripleSet) []Term {
	degrees := make(map[Term]int)
	set.Each(func(t Triple) {
		if t.Subject.IsBlank() {
			degrees[t.Subject]++
		}
		if t.Object.IsBlank() {
			degrees[t.Object]++
		}
	})
	blanks := make([]Term, 0, len(degrees))
	for b := range degrees {
		blanks = append(blanks, b)
	}
	sort.Slice(blanks, func(i, j int) bool {
		if degrees[blanks[i]] != degrees[blanks[j]] {
			return degrees[blanks[i]] > degrees[blanks[j]]
		}
		return blanks[i].value < blanks[j].value
	})
	return blanks
}

// backtrack maps expectedBlanks[index:] onto unused actual blank nodes
func (g *isomorphism) backtrack(expectedBlanks, actualBlanks []Term, index int) bool {
	if index == len(expectedBlanks) {
		return g.consistent()
	}
	current := expectedBlanks[index]
	for _, candidate := range actualBlanks {
		if g.used[candidate] {
			continue
		}
		g.mapping[current] = candidate
		g.used[candidate] = true
		if g.consistent() && g.backtrack(expectedBlanks, actualBlanks, index+1) {
			return true
		}
		delete(g.mapping, current)
		delete(g.used, candidate)
	}
	return false
}

// consistent reports whether every expected triple whose blank nodes are
// all mapped is present in actual after mapping. Once every blank node is
// mapped, equal sizes make this a full equality check.
func (g *isomorphism) consistent() bool {
	for _, t := range g.expected {
		subject, ok := g.mapTerm(t.Subject)
		if !ok {
			continue
		}
		object, ok := g.mapTerm(t.Object)
		if !ok {
			continue
		}
		if !g.actual.Contains(Triple{Subject: subject, Predicate: t.Predicate, Object: object}) {
			return false
		}
	}
	return true
}

func (g *isomorphism) mapTerm(term Term) (Term, bool) {
	if !term.IsBlank() {
		return term, true
	}
	mapped, ok := g.mapping[term]
	return mapped, ok
}
