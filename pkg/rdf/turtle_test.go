package rdf

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPrefixes = `@prefix : <http://www.example.org/> .
@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .
`

func parseTurtle(t *testing.T, input string) *TripleSet {
	t.Helper()
	parser, err := NewTurtleParserFromString(input, "")
	require.NoError(t, err)
	triples, err := parser.Parse()
	require.NoError(t, err)
	return triples
}

func ex(local string) Term {
	return MustIRI("http://www.example.org/" + local)
}

// objectsOf returns the objects of all triples with the given subject and predicate
func objectsOf(set *TripleSet, subject, predicate Term) []Term {
	var out []Term
	for _, t := range set.Triples() {
		if t.Subject == subject && t.Predicate == predicate {
			out = append(out, t.Object)
		}
	}
	return out
}

// ===== Statement Tests =====

func TestTurtleParser_PrefixResolution(t *testing.T) {
	triples := parseTurtle(t, `@prefix ex: <http://ex/> .
ex:a ex:b ex:c .`)

	want := MustTriple(MustIRI("http://ex/a"), MustIRI("http://ex/b"), MustIRI("http://ex/c"))
	assert.Equal(t, []Triple{want}, triples.Triples())
}

func TestTurtleParser_ObjectList(t *testing.T) {
	triples := parseTurtle(t, testPrefixes+`:s :p :o1, :o2 , :o3 .`)

	if triples.Len() != 3 {
		t.Fatalf("Expected 3 triples, got %d", triples.Len())
	}
	for _, o := range []string{"o1", "o2", "o3"} {
		if !triples.Contains(MustTriple(ex("s"), ex("p"), ex(o))) {
			t.Errorf("Missing triple with object %s", o)
		}
	}
}

func TestTurtleParser_PredicateObjectList(t *testing.T) {
	triples := parseTurtle(t, testPrefixes+`:s :p1 :o1 ; :p2 :o2 ;; ; :p3 :o3 ; .`)

	assert.Equal(t, 3, triples.Len())
	assert.True(t, triples.Contains(MustTriple(ex("s"), ex("p3"), ex("o3"))))
}

func TestTurtleParser_TypeKeyword(t *testing.T) {
	triples := parseTurtle(t, testPrefixes+`:s a :Class .
@prefix a: <http://a.example/> .
:s a:b :o .`)

	assert.True(t, triples.Contains(MustTriple(ex("s"), TypeIRI, ex("Class"))))
	assert.True(t, triples.Contains(MustTriple(ex("s"), MustIRI("http://a.example/b"), ex("o"))))
}

func TestTurtleParser_SPARQLDirectives(t *testing.T) {
	triples := parseTurtle(t, `PrEfIx ex: <http://ex/>
base <http://base.example/dir/>
ex:s ex:p <o> .`)

	want := MustTriple(MustIRI("http://ex/s"), MustIRI("http://ex/p"), MustIRI("http://base.example/dir/o"))
	assert.Equal(t, []Triple{want}, triples.Triples())
}

func TestTurtleParser_PrefixNamedLikeKeyword(t *testing.T) {
	triples := parseTurtle(t, `@prefix base: <http://b/> .
@prefix true: <http://t/> .
base:s base:p true:x .`)

	want := MustTriple(MustIRI("http://b/s"), MustIRI("http://b/p"), MustIRI("http://t/x"))
	assert.Equal(t, []Triple{want}, triples.Triples())
}

func TestTurtleParser_PrefixRedefinition(t *testing.T) {
	parser, err := NewTurtleParserFromString(`@prefix ex: <http://one/> .
ex:a ex:b ex:c .
@prefix ex: <http://two/> .
ex:a ex:b ex:c .`, "")
	require.NoError(t, err)
	triples, err := parser.Parse()
	require.NoError(t, err)

	assert.Equal(t, 2, triples.Len())
	assert.Equal(t, map[string]string{"ex": "http://two/"}, parser.Prefixes())
}

func TestTurtleParser_BaseResolution(t *testing.T) {
	parser, err := NewTurtleParserFromString(`<a> <#p> <../c> .
@base <http://other.example/x/> .
<y> <#p> <> .`, "http://example.org/dir/doc")
	require.NoError(t, err)
	triples, err := parser.Parse()
	require.NoError(t, err)

	assert.True(t, triples.Contains(MustTriple(
		MustIRI("http://example.org/dir/a"),
		MustIRI("http://example.org/dir/doc#p"),
		MustIRI("http://example.org/c"))))
	assert.True(t, triples.Contains(MustTriple(
		MustIRI("http://other.example/x/y"),
		MustIRI("http://other.example/x/#p"),
		MustIRI("http://other.example/x/"))))
	assert.Equal(t, "http://other.example/x/", parser.Base())
}

func TestTurtleParser_BaseWithoutScheme(t *testing.T) {
	_, err := NewTurtleParserFromString("", "relative/path")
	assert.ErrorIs(t, err, ErrBaseWithoutScheme)
}

func TestTurtleParser_CommentsAndWhitespace(t *testing.T) {
	triples := parseTurtle(t, "# leading comment\r\n"+testPrefixes+":s # subject\n\t:p :o . # done")
	assert.Equal(t, 1, triples.Len())
}

func TestTurtleParser_ReaderWithBOM(t *testing.T) {
	parser, err := NewTurtleParser(strings.NewReader("\ufeff<http://a/s> <http://a/p> \"é\" ."), "")
	require.NoError(t, err)
	triples, err := parser.Parse()
	require.NoError(t, err)

	want := MustTriple(MustIRI("http://a/s"), MustIRI("http://a/p"), NewString("é"))
	assert.Equal(t, []Triple{want}, triples.Triples())
}

// ===== Collection and Blank Node Tests =====

func TestTurtleParser_Collection(t *testing.T) {
	triples := parseTurtle(t, `<urn:s> <urn:p> (1 2) .`)

	// s p head, two first/rest pairs, the last rest pointing at rdf:nil
	require.Equal(t, 5, triples.Len())

	heads := objectsOf(triples, MustIRI("urn:s"), MustIRI("urn:p"))
	require.Len(t, heads, 1)
	head := heads[0]
	require.True(t, head.IsBlank())

	assert.Equal(t, []Term{MustTypedString("1", XSDInteger)}, objectsOf(triples, head, FirstIRI))
	rest := objectsOf(triples, head, RestIRI)
	require.Len(t, rest, 1)
	second := rest[0]
	require.True(t, second.IsBlank())
	assert.NotEqual(t, head, second)

	assert.Equal(t, []Term{MustTypedString("2", XSDInteger)}, objectsOf(triples, second, FirstIRI))
	assert.Equal(t, []Term{NilIRI}, objectsOf(triples, second, RestIRI))
}

func TestTurtleParser_EmptyCollection(t *testing.T) {
	triples := parseTurtle(t, `<urn:s> <urn:p> () .`)

	want := MustTriple(MustIRI("urn:s"), MustIRI("urn:p"), NilIRI)
	assert.Equal(t, []Triple{want}, triples.Triples())
}

func TestTurtleParser_CollectionAsSubject(t *testing.T) {
	triples := parseTurtle(t, testPrefixes+`( :a ) :p :o .`)

	require.Equal(t, 3, triples.Len())
	var head Term
	for _, tr := range triples.Triples() {
		if tr.Predicate == ex("p") {
			head = tr.Subject
		}
	}
	require.True(t, head.IsBlank())
	assert.Equal(t, []Term{ex("a")}, objectsOf(triples, head, FirstIRI))
	assert.Equal(t, []Term{NilIRI}, objectsOf(triples, head, RestIRI))
}

func TestTurtleParser_NestedCollection(t *testing.T) {
	triples := parseTurtle(t, testPrefixes+`:s :p ( ( ) [ :q 1 ] "x" ) .`)

	// s p head; 3 items x (first + rest); the property list triple
	assert.Equal(t, 8, triples.Len())
}

func TestTurtleParser_BlankNodePropertyList(t *testing.T) {
	triples := parseTurtle(t, testPrefixes+`:s :p [ :q :r ; :t "u" ] .`)

	require.Equal(t, 3, triples.Len())
	nodes := objectsOf(triples, ex("s"), ex("p"))
	require.Len(t, nodes, 1)
	node := nodes[0]
	require.True(t, node.IsBlank())
	assert.Equal(t, []Term{ex("r")}, objectsOf(triples, node, ex("q")))
	assert.Equal(t, []Term{NewString("u")}, objectsOf(triples, node, ex("t")))
}

func TestTurtleParser_PropertyListAsStatement(t *testing.T) {
	triples := parseTurtle(t, testPrefixes+`[ :p :o ] .
[ :p :o2 ] :q :r .
[] :x :y .`)

	assert.Equal(t, 4, triples.Len())
	blanks := map[Term]bool{}
	triples.Each(func(tr Triple) {
		require.True(t, tr.Subject.IsBlank())
		blanks[tr.Subject] = true
	})
	assert.Len(t, blanks, 3)
}

func TestTurtleParser_EmptyPropertyListObject(t *testing.T) {
	triples := parseTurtle(t, testPrefixes+`:s :p [] , [ ] .`)

	objects := objectsOf(triples, ex("s"), ex("p"))
	require.Len(t, objects, 2)
	assert.NotEqual(t, objects[0], objects[1])
}

func TestTurtleParser_BlankNodeLabels(t *testing.T) {
	triples := parseTurtle(t, testPrefixes+`_:x :p _:x .
_:a.b :p _:y.
_:x :q [] .`)

	assert.True(t, triples.Contains(MustTriple(MustBlank("x"), ex("p"), MustBlank("x"))))
	// "a.b" is not a valid N-Triples label and is renamed; "y" keeps its label
	objects := []Term{}
	triples.Each(func(tr Triple) {
		if tr.Object == MustBlank("y") {
			objects = append(objects, tr.Subject)
		}
	})
	require.Len(t, objects, 1)
	assert.True(t, isValidBlankLabel(objects[0].Value()))
}

func TestTurtleParser_BlankNodeUniqueness(t *testing.T) {
	// user labels b0 and b1 must not be reused for renamed nodes
	triples := parseTurtle(t, testPrefixes+`_:1x :p _:b0 .
_:b1 :p [ :q _:1x ] .
_:_y :p ( _:b1 ) .`)

	labels := map[string]bool{}
	triples.Each(func(tr Triple) {
		for _, term := range []Term{tr.Subject, tr.Object} {
			if term.IsBlank() {
				labels[term.Value()] = true
				assert.True(t, isValidBlankLabel(term.Value()), "label %q", term.Value())
			}
		}
	})
	// b0, b1, 1x, _y, the property list node and the collection node
	assert.Len(t, labels, 6)

	// the renamed 1x is the same node in both positions
	var renamed Term
	triples.Each(func(tr Triple) {
		if tr.Object == MustBlank("b0") {
			renamed = tr.Subject
		}
	})
	require.True(t, renamed.IsBlank())
	found := false
	triples.Each(func(tr Triple) {
		if tr.Predicate == ex("q") && tr.Object == renamed {
			found = true
		}
	})
	assert.True(t, found, "renamed node should be reused in object position")
}

// ===== Literal Tests =====

func TestTurtleParser_NumericLiterals(t *testing.T) {
	tests := []struct {
		input    string
		lexical  string
		datatype string
	}{
		{"1", "1", XSDInteger},
		{"-5", "-5", XSDInteger},
		{"+7", "+7", XSDInteger},
		{"2.50", "2.50", XSDDecimal},
		{".5", ".5", XSDDecimal},
		{"-.5", "-.5", XSDDecimal},
		{"1e3", "1e3", XSDDouble},
		{"1.5E-2", "1.5E-2", XSDDouble},
		{"1.e2", "1.e2", XSDDouble},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			triples := parseTurtle(t, testPrefixes+":s :p "+tt.input+"\n.")
			objects := objectsOf(triples, ex("s"), ex("p"))
			require.Len(t, objects, 1)
			assert.Equal(t, MustTypedString(tt.lexical, tt.datatype), objects[0])
		})
	}
}

func TestTurtleParser_NumberBeforeTerminator(t *testing.T) {
	triples := parseTurtle(t, testPrefixes+":s :p 42.")
	assert.Equal(t, []Term{MustTypedString("42", XSDInteger)}, objectsOf(triples, ex("s"), ex("p")))
}

func TestTurtleParser_BooleanLiterals(t *testing.T) {
	triples := parseTurtle(t, testPrefixes+`:s :p true, false .
:s :q true.`)

	assert.ElementsMatch(t, []Term{True, False}, objectsOf(triples, ex("s"), ex("p")))
	assert.Equal(t, []Term{True}, objectsOf(triples, ex("s"), ex("q")))
}

func TestTurtleParser_StringLiterals(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Term
	}{
		{"double quoted", `"hello"`, NewString("hello")},
		{"single quoted", `'hello'`, NewString("hello")},
		{"empty", `""`, NewString("")},
		{"escapes", `"a\tb\n\"c\"\\"`, NewString("a\tb\n\"c\"\\")},
		{"unicode escapes", `"é\U0001F600"`, NewString("é\U0001F600")},
		{"long", "\"\"\"line1\nline2\"\"\"", NewString("line1\nline2")},
		{"long with quotes", `"""a""b"c"""`, NewString(`a""b"c`)},
		{"long single", "'''it's'''", NewString("it's")},
		{"empty long", `""""""`, NewString("")},
		{"language", `"chat"@FR-ca`, MustLangString("chat", "fr-ca")},
		{"datatype IRI", `"1"^^<http://www.w3.org/2001/XMLSchema#integer>`, MustTypedString("1", XSDInteger)},
		{"datatype pname", `"1"^^xsd:integer`, MustTypedString("1", XSDInteger)},
		{"non-ASCII", `"日本語"`, NewString("日本語")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			triples := parseTurtle(t, testPrefixes+":s :p "+tt.input+" .")
			assert.Equal(t, []Term{tt.want}, objectsOf(triples, ex("s"), ex("p")))
		})
	}
}

// ===== Prefixed Name Tests =====

func TestTurtleParser_LocalNames(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{":a.b", "a.b"},
		{":a\\,b", "a,b"},
		{":a%20b", "a%20b"},
		{":123", "123"},
		{":a:b", "a:b"},
		{":_x-y", "_x-y"},
		{":", ""},
		{":a\\.", "a."},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			triples := parseTurtle(t, testPrefixes+":s :p "+tt.input+".")
			assert.Equal(t, []Term{ex(tt.want)}, objectsOf(triples, ex("s"), ex("p")))
		})
	}
}

// ===== Error Tests =====

func TestTurtleParser_UnterminatedString(t *testing.T) {
	parser, err := NewTurtleParserFromString(`<urn:s> <urn:p> "unterminated`, "")
	require.NoError(t, err)

	triples, err := parser.Parse()
	assert.Nil(t, triples)
	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr), "expected *ParseError, got %T", err)
	assert.ErrorIs(t, err, ErrUnterminatedString)
}

func TestTurtleParser_ErrorPosition(t *testing.T) {
	parser, err := NewTurtleParserFromString("<urn:s> <urn:p> <urn:o> .\n<urn:s> <urn:p> ?", "")
	require.NoError(t, err)

	_, err = parser.Parse()
	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, 2, parseErr.Line)
	assert.Contains(t, parseErr.Error(), "line 2")
}

func TestTurtleParser_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"undefined prefix", `ex:a ex:b ex:c .`, ErrUndefinedPrefix},
		{"missing terminator", `<urn:s> <urn:p> <urn:o>`, ErrMissingTerminator},
		{"missing directive terminator", `@prefix ex: <http://ex/>`, ErrMissingTerminator},
		{"unknown escape", `<urn:s> <urn:p> "\q" .`, ErrInvalidEscape},
		{"surrogate escape", `<urn:s> <urn:p> "\uD800" .`, ErrInvalidEscape},
		{"escape above range", `<urn:s> <urn:p> "\U00110000" .`, ErrInvalidEscape},
		{"short hex escape", `<urn:s> <urn:p> "\u12" .`, ErrInvalidEscape},
		{"space in IRI", `<urn:s> <urn:p> <urn:a b> .`, ErrInvalidIRI},
		{"invalid IRI", `<urn:s> <urn:p> <http://a/%zz> .`, ErrInvalidIRI},
		{"unterminated IRI", `<urn:s> <urn:p> <urn:o`, ErrUnexpectedEOF},
		{"line break in short string", "<urn:s> <urn:p> \"a\nb\" .", ErrUnterminatedString},
		{"missing object", `<urn:s> <urn:p> .`, ErrUnexpectedCharacter},
		{"trailing comma", `<urn:s> <urn:p> <urn:o> , .`, ErrUnexpectedCharacter},
		{"missing predicate", `<urn:s> .`, ErrUnexpectedCharacter},
		{"literal subject", `"s" <urn:p> <urn:o> .`, ErrUnexpectedCharacter},
		{"blank node predicate", `<urn:s> _:p <urn:o> .`, ErrUnexpectedCharacter},
		{"unknown directive", `@foo <urn:x> .`, ErrUnexpectedCharacter},
		{"directive without space", `@prefix<http://x/> .`, ErrUnexpectedCharacter},
		{"bad language tag", `<urn:s> <urn:p> "x"@en- .`, ErrInvalidLanguageTag},
		{"prefix ending in dot", `@prefix a.: <http://x/> .`, ErrInvalidPrefix},
		{"bad local escape", `@prefix : <http://x/> . :a :b :c\q .`, ErrInvalidLocalName},
		{"bad percent", `@prefix : <http://x/> . :a :b :c%4 .`, ErrInvalidLocalName},
		{"bad blank label", `_:-x <urn:p> <urn:o> .`, ErrInvalidBlankNode},
		{"unterminated collection", `<urn:s> <urn:p> ( 1 2`, ErrUnexpectedEOF},
		{"unterminated property list", `<urn:s> <urn:p> [ <urn:q> 1`, ErrUnexpectedEOF},
		{"exponent without digits", `<urn:s> <urn:p> 1e .`, ErrUnexpectedCharacter},
		{"sign without digits", `<urn:s> <urn:p> + .`, ErrUnexpectedCharacter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser, err := NewTurtleParserFromString(tt.input, "")
			require.NoError(t, err)
			triples, err := parser.Parse()
			if err == nil {
				t.Fatalf("Expected error, got %d triples", triples.Len())
			}
			if triples != nil {
				t.Errorf("Expected no triples on error")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}
