package rdf

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/zeebo/xxh3"
)

// TermKind identifies the variant of an RDF term
type TermKind byte

const (
	KindBlank TermKind = iota
	KindIRI
	KindLangString
	KindTypedString
)

func (k TermKind) String() string {
	switch k {
	case KindBlank:
		return "blank"
	case KindIRI:
		return "iri"
	case KindLangString:
		return "langString"
	case KindTypedString:
		return "typedString"
	default:
		return "unknown"
	}
}

// Common vocabulary
const (
	RDFNamespace = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	XSDNamespace = "http://www.w3.org/2001/XMLSchema#"

	RDFType  = RDFNamespace + "type"
	RDFFirst = RDFNamespace + "first"
	RDFRest  = RDFNamespace + "rest"
	RDFNil   = RDFNamespace + "nil"

	XSDString  = XSDNamespace + "string"
	XSDInteger = XSDNamespace + "integer"
	XSDDecimal = XSDNamespace + "decimal"
	XSDDouble  = XSDNamespace + "double"
	XSDBoolean = XSDNamespace + "boolean"
)

var (
	errEmptyBlankLabel = errors.New("blank node label is empty")
	errEmptyIRI        = errors.New("IRI is empty")
	errEmptyLanguage   = errors.New("language tag is empty")
	errEmptyDatatype   = errors.New("datatype IRI is empty")
)

// Term is an immutable RDF term: an IRI, a blank node, a language-tagged
// string or a typed string. Terms are comparable with ==; two terms are
// equal when kind, value and type-or-language all match.
type Term struct {
	kind           TermKind
	value          string
	typeOrLanguage string
}

// NewBlank creates a blank node. The label is not checked against any
// serialization's syntax.
func NewBlank(label string) (Term, error) {
	if label == "" {
		return Term{}, errEmptyBlankLabel
	}
	return Term{kind: KindBlank, value: label}, nil
}

// NewIRI creates an IRI term. The IRI is not validated.
func NewIRI(value string) (Term, error) {
	if value == "" {
		return Term{}, errEmptyIRI
	}
	return Term{kind: KindIRI, value: value}, nil
}

// NewLangString creates a language-tagged string
func NewLangString(value, language string) (Term, error) {
	if language == "" {
		return Term{}, errEmptyLanguage
	}
	return Term{kind: KindLangString, value: value, typeOrLanguage: language}, nil
}

// NewTypedString creates a literal with the given datatype IRI
func NewTypedString(value, datatype string) (Term, error) {
	if datatype == "" {
		return Term{}, errEmptyDatatype
	}
	return Term{kind: KindTypedString, value: value, typeOrLanguage: datatype}, nil
}

// NewString creates an ordinary xsd:string literal
func NewString(value string) Term {
	return Term{kind: KindTypedString, value: value, typeOrLanguage: XSDString}
}

// NewTerm creates a term of the given kind. typeOrLanguage is ignored for
// IRIs and blank nodes.
func NewTerm(kind TermKind, value, typeOrLanguage string) (Term, error) {
	switch kind {
	case KindBlank:
		return NewBlank(value)
	case KindIRI:
		return NewIRI(value)
	case KindLangString:
		return NewLangString(value, typeOrLanguage)
	case KindTypedString:
		return NewTypedString(value, typeOrLanguage)
	}
	return Term{}, fmt.Errorf("unknown term kind %d", kind)
}

func must(t Term, err error) Term {
	if err != nil {
		panic(err)
	}
	return t
}

// MustIRI is NewIRI that panics on error
func MustIRI(value string) Term { return must(NewIRI(value)) }

// MustBlank is NewBlank that panics on error
func MustBlank(label string) Term { return must(NewBlank(label)) }

// MustLangString is NewLangString that panics on error
func MustLangString(value, language string) Term { return must(NewLangString(value, language)) }

// MustTypedString is NewTypedString that panics on error
func MustTypedString(value, datatype string) Term { return must(NewTypedString(value, datatype)) }

var (
	TypeIRI  = MustIRI(RDFType)
	FirstIRI = MustIRI(RDFFirst)
	RestIRI  = MustIRI(RDFRest)
	NilIRI   = MustIRI(RDFNil)
	True     = MustTypedString("true", XSDBoolean)
	False    = MustTypedString("false", XSDBoolean)
)

func (t Term) Kind() TermKind { return t.kind }

// Value returns the IRI, the blank node label or the literal's lexical form
func (t Term) Value() string { return t.value }

// Datatype returns the datatype IRI of a typed string, or ""
func (t Term) Datatype() string {
	if t.kind == KindTypedString {
		return t.typeOrLanguage
	}
	return ""
}

// Language returns the language tag of a language-tagged string, or ""
func (t Term) Language() string {
	if t.kind == KindLangString {
		return t.typeOrLanguage
	}
	return ""
}

// TypeOrLanguage returns the datatype or language tag, whichever applies
func (t Term) TypeOrLanguage() string { return t.typeOrLanguage }

func (t Term) IsZero() bool  { return t == Term{} }
func (t Term) IsBlank() bool { return t.kind == KindBlank && t.value != "" }
func (t Term) IsIRI() bool   { return t.kind == KindIRI && t.value != "" }

// IsLiteral reports whether t is a language-tagged or typed string
func (t Term) IsLiteral() bool {
	return t.kind == KindLangString || t.kind == KindTypedString
}

// IsOrdinaryString reports whether t is an xsd:string literal
func (t Term) IsOrdinaryString() bool {
	return t.kind == KindTypedString && t.typeOrLanguage == XSDString
}

// Equal reports structural equality
func (t Term) Equal(other Term) bool {
	return t == other
}

// Hash returns a 64-bit hash over kind, value and type-or-language
func (t Term) Hash() uint64 {
	h := xxh3.New()
	_, _ = h.Write([]byte{byte(t.kind)})
	_, _ = h.WriteString(t.value)
	_, _ = h.Write([]byte{0})
	_, _ = h.WriteString(t.typeOrLanguage)
	return h.Sum64()
}

// String returns the N-Triples form of the term
func (t Term) String() string {
	var sb strings.Builder
	switch t.kind {
	case KindBlank:
		sb.WriteString("_:")
		escapeBlankLabel(&sb, t.value)
	case KindIRI:
		sb.WriteByte('<')
		escapeString(&sb, t.value, true)
		sb.WriteByte('>')
	case KindLangString:
		sb.WriteByte('"')
		escapeString(&sb, t.value, false)
		sb.WriteString(`"@`)
		escapeLanguageTag(&sb, t.typeOrLanguage)
	case KindTypedString:
		sb.WriteByte('"')
		escapeString(&sb, t.value, false)
		sb.WriteByte('"')
		if t.typeOrLanguage != XSDString {
			sb.WriteString("^^<")
			escapeString(&sb, t.typeOrLanguage, true)
			sb.WriteByte('>')
		}
	default:
		return fmt.Sprintf("<invalid term kind %d>", t.kind)
	}
	return sb.String()
}

const upperHex = "0123456789ABCDEF"

func writeHex(sb *strings.Builder, c rune, digits int) {
	for shift := (digits - 1) * 4; shift >= 0; shift -= 4 {
		sb.WriteByte(upperHex[(c>>uint(shift))&0xf])
	}
}

// escapeString writes s using N-Triples escapes; in IRIs '>' becomes %3E
func escapeString(sb *strings.Builder, s string, iri bool) {
	for _, c := range s {
		switch {
		case c == '\t':
			sb.WriteString(`\t`)
		case c == '\n':
			sb.WriteString(`\n`)
		case c == '\r':
			sb.WriteString(`\r`)
		case c == '"':
			sb.WriteString(`\"`)
		case c == '\\':
			sb.WriteString(`\\`)
		case iri && c == '>':
			sb.WriteString("%3E")
		case c >= 0x20 && c <= 0x7e:
			sb.WriteRune(c)
		case c > 0xffff:
			sb.WriteString(`\U`)
			writeHex(sb, c, 8)
		default:
			sb.WriteString(`\u`)
			writeHex(sb, c, 4)
		}
	}
}

// escapeBlankLabel keeps ASCII letters and digits and writes anything else
// as uXXXX or UXXXXXXXX
func escapeBlankLabel(sb *strings.Builder, s string) {
	for _, c := range s {
		switch {
		case (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9'):
			sb.WriteRune(c)
		case c > 0xffff:
			sb.WriteByte('U')
			writeHex(sb, c, 8)
		default:
			sb.WriteByte('u')
			writeHex(sb, c, 4)
		}
	}
}

// escapeLanguageTag lowercases the tag and replaces characters that cannot
// appear in it with 'x'
func escapeLanguageTag(sb *strings.Builder, s string) {
	hyphen := false
	for i := 0; i < len(s); {
		c, size := utf8.DecodeRuneInString(s[i:])
		i += size
		switch {
		case c >= 'A' && c <= 'Z':
			sb.WriteRune(c + 0x20)
		case c >= 'a' && c <= 'z':
			sb.WriteRune(c)
		case hyphen && c >= '0' && c <= '9':
			sb.WriteRune(c)
		case c == '-':
			sb.WriteByte('-')
			hyphen = true
			if i < len(s) && s[i] == '-' {
				sb.WriteByte('x')
			}
		default:
			sb.WriteByte('x')
		}
	}
}
