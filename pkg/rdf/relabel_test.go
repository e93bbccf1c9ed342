package rdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidBlankLabel(t *testing.T) {
	tests := []struct {
		label string
		valid bool
	}{
		{"b0", true},
		{"Node42", true},
		{"x", true},
		{"", false},
		{"0b", false},
		{"a-b", false},
		{"a.b", false},
		{"_a", false},
		{"é", false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := isValidBlankLabel(tt.label); got != tt.valid {
				t.Errorf("isValidBlankLabel(%q) = %v, want %v", tt.label, got, tt.valid)
			}
		})
	}
}

func TestRelabelBlankNodes_KeepsValidLabels(t *testing.T) {
	set := NewTripleSet(
		MustTriple(MustBlank("a"), MustIRI("urn:p"), MustBlank("b")),
		MustTriple(MustIRI("urn:s"), MustIRI("urn:p"), NewString("x")),
	)
	before := set.Triples()

	RelabelBlankNodes(set)
	assert.Equal(t, before, set.Triples())
}

func TestRelabelBlankNodes_SkipsUsedLabels(t *testing.T) {
	set := NewTripleSet(
		MustTriple(MustBlank("b0"), MustIRI("urn:p"), MustBlank("x-1")),
		MustTriple(MustBlank("x-1"), MustIRI("urn:q"), MustBlank("b1")),
		MustTriple(MustBlank("_y"), MustIRI("urn:p"), NewString("v")),
	)

	RelabelBlankNodes(set)

	// x-1 is met first in sorted order and becomes b2; _y becomes b3
	want := NewTripleSet(
		MustTriple(MustBlank("b0"), MustIRI("urn:p"), MustBlank("b2")),
		MustTriple(MustBlank("b2"), MustIRI("urn:q"), MustBlank("b1")),
		MustTriple(MustBlank("b3"), MustIRI("urn:p"), NewString("v")),
	)
	assert.Equal(t, want.Triples(), set.Triples())
}

func TestRelabelBlankNodes_Empty(t *testing.T) {
	set := NewTripleSet()
	RelabelBlankNodes(set)
	assert.Equal(t, 0, set.Len())
}
