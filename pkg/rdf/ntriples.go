package rdf

import (
	"io"
	"strings"

	"github.com/aleksaelezovic/turtle/pkg/charinput"
)

// NTriplesParser parses an ASCII N-Triples document. Code points outside
// ASCII must be written as \u or \U escapes.
type NTriplesParser struct {
	lexer
}

// NewNTriplesParser creates a parser reading N-Triples from r
func NewNTriplesParser(r io.Reader) *NTriplesParser {
	return newNTriplesParser(charinput.NewASCIISource(r))
}

// NewNTriplesParserFromString creates a parser over a document held in memory
func NewNTriplesParserFromString(text string) *NTriplesParser {
	return newNTriplesParser(charinput.NewStringSource(text))
}

func newNTriplesParser(src charinput.CodepointSource) *NTriplesParser {
	return &NTriplesParser{lexer: lexer{in: charinput.NewMarkableInput(src)}}
}

// Parse reads the whole document. On error no triples are returned.
func (p *NTriplesParser) Parse() (*TripleSet, error) {
	triples := NewTripleSet()
	for {
		p.skipWhitespace()
		p.in.SetHardMark()
		ch := p.in.ReadChar()
		switch {
		case ch == eof:
			if err := p.in.Err(); err != nil {
				return nil, p.errorf(err, "")
			}
			return triples, nil
		case ch == '#':
			if err := p.skipComment(); err != nil {
				return nil, err
			}
		case ch == '\n' || ch == '\r':
			p.endOfLine(ch)
		default:
			p.unread(ch)
			t, err := p.parseTriple()
			if err != nil {
				return nil, err
			}
			triples.Add(t)
		}
	}
}

// skipWhitespace skips spaces and tabs and reports whether any were skipped
func (p *NTriplesParser) skipWhitespace() bool {
	p.in.SetSoftMark()
	skipped := false
	for {
		ch := p.in.ReadChar()
		if ch != ' ' && ch != '\t' {
			p.unread(ch)
			return skipped
		}
		skipped = true
	}
}

// endOfLine consumes the LF of a CRLF pair after ch
func (p *NTriplesParser) endOfLine(ch rune) {
	if ch == '\r' {
		if next := p.in.ReadChar(); next != '\n' {
			p.unread(next)
		}
	}
}

func (p *NTriplesParser) skipComment() error {
	for {
		ch := p.in.ReadChar()
		switch {
		case ch == eof:
			return nil
		case ch == '\n' || ch == '\r':
			p.endOfLine(ch)
			return nil
		case ch < 0x20 || ch > 0x7e:
			return p.errorf(ErrUnexpectedCharacter, "%q in comment", ch)
		}
	}
}

func (p *NTriplesParser) parseTriple() (Triple, error) {
	subject, err := p.parseTerm(false)
	if err != nil {
		return Triple{}, err
	}
	p.skipWhitespace()
	if ch := p.in.ReadChar(); ch != '<' {
		return Triple{}, p.unexpected(ch, "predicate IRI")
	}
	predicate, err := p.parseIRIRef()
	if err != nil {
		return Triple{}, err
	}
	p.skipWhitespace()
	object, err := p.parseTerm(true)
	if err != nil {
		return Triple{}, err
	}
	p.skipWhitespace()
	if ch := p.in.ReadChar(); ch != '.' {
		if ch == eof {
			return Triple{}, p.errorf(ErrMissingTerminator, "got end of input")
		}
		return Triple{}, p.errorf(ErrMissingTerminator, "got %q", ch)
	}
	p.skipWhitespace()

	ch := p.in.ReadChar()
	switch {
	case ch == '\n' || ch == '\r':
		p.endOfLine(ch)
	case ch == '#':
		if err := p.skipComment(); err != nil {
			return Triple{}, err
		}
	case ch != eof:
		return Triple{}, p.unexpected(ch, "end of line")
	}
	return Triple{Subject: subject, Predicate: Term{kind: KindIRI, value: predicate}, Object: object}, nil
}

// parseTerm reads an IRI, a blank node or, when literal is set, a literal
func (p *NTriplesParser) parseTerm(literal bool) (Term, error) {
	ch := p.in.ReadChar()
	switch {
	case ch == '<':
		value, err := p.parseIRIRef()
		if err != nil {
			return Term{}, err
		}
		return Term{kind: KindIRI, value: value}, nil
	case ch == '_':
		if c := p.in.ReadChar(); c != ':' {
			return Term{}, p.unexpected(c, "':' after '_'")
		}
		label, err := p.parseBlankNodeLabel()
		if err != nil {
			return Term{}, err
		}
		return Term{kind: KindBlank, value: label}, nil
	case literal && ch == '"':
		return p.parseLiteral()
	}
	return Term{}, p.unexpected(ch, "term")
}

// parseIRIRef reads an absolute IRI after '<'
func (p *NTriplesParser) parseIRIRef() (string, error) {
	var sb strings.Builder
	colon := false
	for {
		ch := p.in.ReadChar()
		switch {
		case ch == eof:
			return "", p.eofError()
		case ch == '>':
			if !colon {
				return "", p.errorf(ErrInvalidIRI, "%q is not absolute", sb.String())
			}
			return sb.String(), nil
		case ch == '\\':
			c, err := p.parseEscape(false)
			if err != nil {
				return "", err
			}
			if c <= 0x20 || (c >= 0x7f && c <= 0x9f) || strings.ContainsRune("<>\"{}|^`\\", c) {
				return "", p.errorf(ErrInvalidIRI, "escaped character %q not allowed", c)
			}
			ch = c
		case ch <= 0x20 || ch > 0x7e || strings.ContainsRune("<\"{}|^`", ch):
			return "", p.errorf(ErrInvalidIRI, "character %q not allowed", ch)
		}
		if ch == ':' {
			colon = true
		}
		sb.WriteRune(ch)
	}
}

func (p *NTriplesParser) parseBlankNodeLabel() (string, error) {
	p.in.SetSoftMark()
	first := p.in.ReadChar()
	if !isASCIILetter(first) {
		if first == eof {
			return "", p.eofError()
		}
		return "", p.errorf(ErrInvalidBlankNode, "label cannot start with %q", first)
	}
	var sb strings.Builder
	sb.WriteRune(first)
	for {
		ch := p.in.ReadChar()
		if !isASCIILetter(ch) && !isDigit(ch) {
			p.unread(ch)
			return sb.String(), nil
		}
		sb.WriteRune(ch)
	}
}

// parseLiteral reads a quoted string after its opening quote and an
// optional language tag or datatype
func (p *NTriplesParser) parseLiteral() (Term, error) {
	var sb strings.Builder
	for done := false; !done; {
		ch := p.in.ReadChar()
		switch {
		case ch == eof:
			if err := p.in.Err(); err != nil {
				return Term{}, p.errorf(err, "")
			}
			return Term{}, p.errorf(ErrUnterminatedString, "")
		case ch == '"':
			done = true
		case ch == '\\':
			c, err := p.parseEscape(true)
			if err != nil {
				return Term{}, err
			}
			sb.WriteRune(c)
		case ch == '\n' || ch == '\r':
			return Term{}, p.errorf(ErrUnterminatedString, "line break in string")
		case ch < 0x20 || ch > 0x7e:
			return Term{}, p.errorf(ErrUnexpectedCharacter, "%q in string", ch)
		default:
			sb.WriteRune(ch)
		}
	}

	p.in.SetSoftMark()
	ch := p.in.ReadChar()
	switch ch {
	case '@':
		lang, err := p.parseLanguageTag()
		if err != nil {
			return Term{}, err
		}
		return Term{kind: KindLangString, value: sb.String(), typeOrLanguage: lang}, nil
	case '^':
		if c := p.in.ReadChar(); c != '^' {
			return Term{}, p.unexpected(c, "'^^'")
		}
		if c := p.in.ReadChar(); c != '<' {
			return Term{}, p.unexpected(c, "datatype IRI")
		}
		datatype, err := p.parseIRIRef()
		if err != nil {
			return Term{}, err
		}
		return Term{kind: KindTypedString, value: sb.String(), typeOrLanguage: datatype}, nil
	}
	p.unread(ch)
	return NewString(sb.String()), nil
}

// ParseTerm parses a single term written in N-Triples syntax, as produced
// by Term.String. Surrounding spaces are ignored; any other trailing text is
// an error.
func ParseTerm(s string) (Term, error) {
	p := NewNTriplesParserFromString(s)
	p.skipWhitespace()
	p.in.SetHardMark()
	term, err := p.parseTerm(true)
	if err != nil {
		return Term{}, err
	}
	p.skipWhitespace()
	if ch := p.in.ReadChar(); ch != eof {
		return Term{}, p.unexpected(ch, "end of term")
	}
	return term, nil
}
