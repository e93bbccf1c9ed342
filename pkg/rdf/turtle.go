package rdf

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aleksaelezovic/turtle/pkg/charinput"
	"github.com/aleksaelezovic/turtle/pkg/iri"
)

// DefaultBase is used when a parser is created without a base IRI
const DefaultBase = "about:blank"

// characters that may follow a backslash in a prefixed name's local part
const localNameEscapes = "_~.-!$&'()*+,;=/?#@%"

type objectKind int

const (
	simpleObject objectKind = iota
	collectionObject
	propertyListObject
)

// turtleObject is a parsed subject or object before blank nodes have been
// allocated for its collections and property lists
type turtleObject struct {
	kind       objectKind
	term       Term
	items      []*turtleObject
	properties []turtleProperty
}

type turtleProperty struct {
	predicate Term
	object    *turtleObject
}

// TurtleParser parses a Turtle document into a set of triples
type TurtleParser struct {
	lexer
	base             string
	prefixes         map[string]string
	blankNodeCounter int
}

// NewTurtleParser creates a parser reading UTF-8 Turtle from r. An empty
// base means DefaultBase.
func NewTurtleParser(r io.Reader, base string) (*TurtleParser, error) {
	return newTurtleParser(charinput.NewReaderSource(r), base)
}

// NewTurtleParserFromString creates a parser over a Turtle document held in memory
func NewTurtleParserFromString(text, base string) (*TurtleParser, error) {
	return newTurtleParser(charinput.NewStringSource(text), base)
}

func newTurtleParser(src charinput.CodepointSource, base string) (*TurtleParser, error) {
	if base == "" {
		base = DefaultBase
	}
	if !iri.HasScheme(base) {
		return nil, fmt.Errorf("%w: %q", ErrBaseWithoutScheme, base)
	}
	return &TurtleParser{
		lexer:    lexer{in: charinput.NewMarkableInput(src)},
		base:     base,
		prefixes: make(map[string]string),
	}, nil
}

// Prefixes returns a copy of the namespace table built so far
func (p *TurtleParser) Prefixes() map[string]string {
	out := make(map[string]string, len(p.prefixes))
	for k, v := range p.prefixes {
		out[k] = v
	}
	return out
}

// Base returns the current base IRI
func (p *TurtleParser) Base() string {
	return p.base
}

// Parse reads the whole document. On error no triples are returned.
func (p *TurtleParser) Parse() (*TripleSet, error) {
	triples := NewTripleSet()
	for {
		p.skipWhitespace()
		mark := p.in.SetHardMark()
		ch := p.in.ReadChar()
		if ch == eof {
			if err := p.in.Err(); err != nil {
				return nil, p.errorf(err, "")
			}
			RelabelBlankNodes(triples)
			return triples, nil
		}

		var err error
		switch {
		case ch == '@':
			err = p.parseAtDirective()
		case ch == 'b' || ch == 'B' || ch == 'p' || ch == 'P':
			// SPARQL-style BASE and PREFIX, in any case
			word := string(ch) + p.readWord()
			switch {
			case strings.EqualFold(word, "base") && p.skipWhitespace():
				err = p.parseBase(true)
			case strings.EqualFold(word, "prefix") && p.skipWhitespace():
				err = p.parsePrefix(true)
			default:
				p.in.SetMarkPosition(mark)
				err = p.parseTriples(triples)
			}
		default:
			p.in.SetMarkPosition(mark)
			err = p.parseTriples(triples)
		}
		if err != nil {
			return nil, err
		}
	}
}

// skipWhitespace skips whitespace and comments and reports whether
// anything was skipped
func (p *TurtleParser) skipWhitespace() bool {
	p.in.SetSoftMark()
	skipped := false
	for {
		ch := p.in.ReadChar()
		switch ch {
		case ' ', '\t', '\n', '\r':
			skipped = true
		case '#':
			skipped = true
			for ch != '\n' && ch != '\r' && ch != eof {
				ch = p.in.ReadChar()
			}
		default:
			p.unread(ch)
			return skipped
		}
	}
}

// readWord reads a run of ASCII letters
func (p *TurtleParser) readWord() string {
	var sb strings.Builder
	for {
		ch := p.in.ReadChar()
		if !isASCIILetter(ch) {
			p.unread(ch)
			return sb.String()
		}
		sb.WriteRune(ch)
	}
}

// parseAtDirective parses @prefix or @base after the '@'
func (p *TurtleParser) parseAtDirective() error {
	word := p.readWord()
	switch word {
	case "prefix":
		if !p.skipWhitespace() {
			return p.unexpected(p.in.ReadChar(), "whitespace after @prefix")
		}
		return p.parsePrefix(false)
	case "base":
		if !p.skipWhitespace() {
			return p.unexpected(p.in.ReadChar(), "whitespace after @base")
		}
		return p.parseBase(false)
	}
	return p.errorf(ErrUnexpectedCharacter, "unknown directive @%s", word)
}

func (p *TurtleParser) parsePrefix(sparql bool) error {
	prefix, err := p.parsePrefixName(eof)
	if err != nil {
		return err
	}
	p.skipWhitespace()
	if ch := p.in.ReadChar(); ch != '<' {
		return p.unexpected(ch, "'<' after prefix name")
	}
	namespace, err := p.parseIRIRef()
	if err != nil {
		return err
	}
	p.prefixes[prefix] = namespace
	return p.finishDirective(sparql)
}

func (p *TurtleParser) parseBase(sparql bool) error {
	if ch := p.in.ReadChar(); ch != '<' {
		return p.unexpected(ch, "'<' after base")
	}
	base, err := p.parseIRIRef()
	if err != nil {
		return err
	}
	p.base = base
	return p.finishDirective(sparql)
}

// finishDirective consumes the '.' that ends an @-directive
func (p *TurtleParser) finishDirective(sparql bool) error {
	p.skipWhitespace()
	if sparql {
		return nil
	}
	if ch := p.in.ReadChar(); ch != '.' {
		return p.missingTerminator(ch)
	}
	return nil
}

func (p *TurtleParser) missingTerminator(ch rune) error {
	if ch == eof {
		return p.errorf(ErrMissingTerminator, "got end of input")
	}
	return p.errorf(ErrMissingTerminator, "got %q", ch)
}

// parseTriples parses a subject, its predicate-object list and the final '.'
func (p *TurtleParser) parseTriples(triples *TripleSet) error {
	subject, err := p.parseObject(false)
	if err != nil {
		return err
	}
	if subject == nil {
		return p.unexpected(p.in.ReadChar(), "subject")
	}
	p.skipWhitespace()

	if subject.kind == propertyListObject && len(subject.properties) > 0 {
		// "[ :p :o ] ." is a statement on its own
		ch := p.in.ReadChar()
		if ch == '.' {
			p.materialize(subject, triples)
			return nil
		}
		p.unread(ch)
	}

	subjectTerm := p.materialize(subject, triples)
	properties, err := p.parsePredicateObjectList(true)
	if err != nil {
		return err
	}
	for _, prop := range properties {
		triples.Add(Triple{Subject: subjectTerm, Predicate: prop.predicate, Object: p.materialize(prop.object, triples)})
	}

	p.skipWhitespace()
	if ch := p.in.ReadChar(); ch != '.' {
		return p.missingTerminator(ch)
	}
	return nil
}

// parsePredicateObjectList parses predicate-object pairs separated by one
// or more ';'. A trailing ';' is allowed.
func (p *TurtleParser) parsePredicateObjectList(required bool) ([]turtleProperty, error) {
	var properties []turtleProperty
	for {
		p.skipWhitespace()
		if len(properties) > 0 {
			semicolon := false
			for {
				ch := p.in.ReadChar()
				if ch != ';' {
					p.unread(ch)
					break
				}
				semicolon = true
				p.skipWhitespace()
			}
			if !semicolon {
				break
			}
		}

		predicate, ok, err := p.parsePredicate()
		if err != nil {
			return nil, err
		}
		if !ok {
			if required && len(properties) == 0 {
				return nil, p.unexpected(p.in.ReadChar(), "predicate")
			}
			break
		}
		objects, err := p.parseObjectList()
		if err != nil {
			return nil, err
		}
		for _, obj := range objects {
			properties = append(properties, turtleProperty{predicate: predicate, object: obj})
		}
	}
	return properties, nil
}

// parseObjectList parses one or more objects separated by ','
func (p *TurtleParser) parseObjectList() ([]*turtleObject, error) {
	var objects []*turtleObject
	for {
		if len(objects) > 0 {
			ch := p.in.ReadChar()
			if ch != ',' {
				p.unread(ch)
				return objects, nil
			}
			p.skipWhitespace()
		}
		obj, err := p.parseObject(true)
		if err != nil {
			return nil, err
		}
		if obj == nil {
			return nil, p.unexpected(p.in.ReadChar(), "object")
		}
		objects = append(objects, obj)
		p.skipWhitespace()
	}
}

// parsePredicate returns false without consuming input if no predicate starts here
func (p *TurtleParser) parsePredicate() (Term, bool, error) {
	mark := p.in.SetSoftMark()
	ch := p.in.ReadChar()
	var predicate Term
	var err error
	switch {
	case ch == 'a':
		if p.skipWhitespace() {
			return TypeIRI, true, nil
		}
		predicate, err = p.parsePrefixedName(ch)
	case ch == '<':
		var value string
		value, err = p.parseIRIRef()
		predicate = Term{kind: KindIRI, value: value}
	case ch == ':' || isPN_CHARS_BASE(ch):
		predicate, err = p.parsePrefixedName(ch)
	default:
		p.in.SetMarkPosition(mark)
		return Term{}, false, nil
	}
	if err != nil {
		return Term{}, false, err
	}
	p.skipWhitespace()
	return predicate, true, nil
}

// parseObject parses a subject or object term. Literals are only accepted
// when literal is set. It returns nil without consuming input if no term
// starts here.
func (p *TurtleParser) parseObject(literal bool) (*turtleObject, error) {
	mark := p.in.SetSoftMark()
	ch := p.in.ReadChar()
	var term Term
	var err error
	switch {
	case ch == eof:
		return nil, p.eofError()
	case ch == '<':
		var value string
		value, err = p.parseIRIRef()
		term = Term{kind: KindIRI, value: value}
	case literal && (ch == '-' || ch == '+' || ch == '.' || isDigit(ch)):
		term, err = p.parseNumber(ch)
	case literal && (ch == '"' || ch == '\''):
		var value string
		if value, err = p.parseString(ch); err == nil {
			term, err = p.parseLiteralSuffix(value)
		}
	case ch == '_':
		if c := p.in.ReadChar(); c != ':' {
			if c == eof {
				return nil, p.eofError()
			}
			return nil, p.errorf(ErrInvalidBlankNode, "expected ':' after '_', got %q", c)
		}
		var label string
		label, err = p.parseBlankNodeLabel()
		term = Term{kind: KindBlank, value: label}
	case ch == '[':
		return p.parsePropertyList()
	case ch == '(':
		return p.parseCollection()
	case ch == ':' || isPN_CHARS_BASE(ch):
		if literal && (ch == 't' || ch == 'f') {
			if b, ok := p.parseBoolean(ch); ok {
				return &turtleObject{kind: simpleObject, term: b}, nil
			}
		}
		term, err = p.parsePrefixedName(ch)
	default:
		p.in.SetMarkPosition(mark)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &turtleObject{kind: simpleObject, term: term}, nil
}

// parseBoolean recognizes true and false when they are not the start of a
// prefixed name. On failure the input is left just after first.
func (p *TurtleParser) parseBoolean(first rune) (Term, bool) {
	mark := p.in.MarkPosition()
	word, term := "true", True
	if first == 'f' {
		word, term = "false", False
	}
	for _, want := range word[1:] {
		if p.in.ReadChar() != want {
			p.in.SetMarkPosition(mark)
			return Term{}, false
		}
	}

	next := p.in.ReadChar()
	ok := true
	switch {
	case isPN_CHARS(next) || next == ':':
		ok = false
	case next == '.':
		after := p.in.ReadChar()
		ok = !isPN_CHARS(after) && after != ':'
		p.unread(after)
	}
	p.unread(next)
	if !ok {
		p.in.SetMarkPosition(mark)
		return Term{}, false
	}
	return term, true
}

func (p *TurtleParser) parsePropertyList() (*turtleObject, error) {
	properties, err := p.parsePredicateObjectList(false)
	if err != nil {
		return nil, err
	}
	p.skipWhitespace()
	if ch := p.in.ReadChar(); ch != ']' {
		return nil, p.unexpected(ch, "']'")
	}
	return &turtleObject{kind: propertyListObject, properties: properties}, nil
}

func (p *TurtleParser) parseCollection() (*turtleObject, error) {
	collection := &turtleObject{kind: collectionObject}
	for {
		p.skipWhitespace()
		p.in.SetHardMark()
		ch := p.in.ReadChar()
		if ch == ')' {
			return collection, nil
		}
		p.unread(ch)
		item, err := p.parseObject(true)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, p.unexpected(p.in.ReadChar(), "collection item or ')'")
		}
		collection.items = append(collection.items, item)
	}
}

// parseIRIRef reads an IRI reference after '<' and resolves it against
// the current base
func (p *TurtleParser) parseIRIRef() (string, error) {
	var sb strings.Builder
	for {
		ch := p.in.ReadChar()
		switch ch {
		case eof:
			return "", p.eofError()
		case '>':
			ref := sb.String()
			resolved, ok := iri.Resolve(ref, p.base, iri.IRIStrict)
			if !ok {
				return "", p.errorf(ErrInvalidIRI, "%q", ref)
			}
			return resolved, nil
		case '\\':
			var err error
			if ch, err = p.parseEscape(false); err != nil {
				return "", err
			}
		}
		if ch <= 0x20 || strings.ContainsRune("<>\"{}|^`\\", ch) {
			return "", p.errorf(ErrInvalidIRI, "character %q not allowed", ch)
		}
		sb.WriteRune(ch)
	}
}

// parsePrefixName reads a prefix up to and including its ':'. If first is
// not eof it has already been read.
func (p *TurtleParser) parsePrefixName(first rune) (string, error) {
	var sb strings.Builder
	start := first == eof
	if !start {
		sb.WriteRune(first)
	}
	lastIsPeriod := false
	for {
		ch := p.in.ReadChar()
		switch {
		case ch == eof:
			return "", p.eofError()
		case ch == ':':
			if lastIsPeriod {
				return "", p.errorf(ErrInvalidPrefix, "%q ends with '.'", sb.String())
			}
			return sb.String(), nil
		case start && !isPN_CHARS_BASE(ch), !start && ch != '.' && !isPN_CHARS(ch):
			return "", p.errorf(ErrInvalidPrefix, "unexpected %q after %q", ch, sb.String())
		}
		sb.WriteRune(ch)
		start = false
		lastIsPeriod = ch == '.'
	}
}

// parsePrefixedName reads a prefixed name whose first character has been read
func (p *TurtleParser) parsePrefixedName(first rune) (Term, error) {
	prefix := ""
	if first != ':' {
		var err error
		if prefix, err = p.parsePrefixName(first); err != nil {
			return Term{}, err
		}
	}
	namespace, ok := p.prefixes[prefix]
	if !ok {
		return Term{}, p.errorf(ErrUndefinedPrefix, "%q", prefix)
	}
	local, err := p.parseLocalName()
	if err != nil {
		return Term{}, err
	}
	return Term{kind: KindIRI, value: namespace + local}, nil
}

// parseLocalName reads the optional local part of a prefixed name. Percent
// escapes are kept as written; a trailing '.' is left unread.
func (p *TurtleParser) parseLocalName() (string, error) {
	p.in.SetSoftMark()
	var sb strings.Builder
	first := true
	trailing := 0
	for {
		ch := p.in.ReadChar()
		switch {
		case ch == '%':
			a, b := p.in.ReadChar(), p.in.ReadChar()
			if hexValue(a) < 0 || hexValue(b) < 0 {
				return "", p.errorf(ErrInvalidLocalName, "malformed percent escape")
			}
			sb.WriteByte('%')
			sb.WriteRune(a)
			sb.WriteRune(b)
			trailing = 0
		case ch == '\\':
			c := p.in.ReadChar()
			if c == eof || !strings.ContainsRune(localNameEscapes, c) {
				return "", p.errorf(ErrInvalidLocalName, "invalid escape in local name")
			}
			sb.WriteRune(c)
			trailing = 0
		case first && (isPN_CHARS_U(ch) || ch == ':' || isDigit(ch)),
			!first && (isPN_CHARS(ch) || ch == ':'):
			sb.WriteRune(ch)
			trailing = 0
		case !first && ch == '.':
			sb.WriteByte('.')
			trailing++
		default:
			back := trailing
			if ch != eof {
				back++
			}
			p.in.MoveBack(back)
			s := sb.String()
			return s[:len(s)-trailing], nil
		}
		first = false
	}
}

// parseBlankNodeLabel reads a label after "_:". A trailing '.' is left unread.
func (p *TurtleParser) parseBlankNodeLabel() (string, error) {
	p.in.SetSoftMark()
	first := p.in.ReadChar()
	if !isPN_CHARS_U(first) && !isDigit(first) {
		if first == eof {
			return "", p.eofError()
		}
		return "", p.errorf(ErrInvalidBlankNode, "label cannot start with %q", first)
	}
	var sb strings.Builder
	sb.WriteRune(first)
	trailing := 0
	for {
		ch := p.in.ReadChar()
		switch {
		case isPN_CHARS(ch):
			sb.WriteRune(ch)
			trailing = 0
		case ch == '.':
			sb.WriteByte('.')
			trailing++
		default:
			back := trailing
			if ch != eof {
				back++
			}
			p.in.MoveBack(back)
			s := sb.String()
			return s[:len(s)-trailing], nil
		}
	}
}

// parseNumber reads an integer, decimal or double whose first character
// has been read. The lexical form is kept as written.
func (p *TurtleParser) parseNumber(first rune) (Term, error) {
	var sb strings.Builder
	sb.WriteRune(first)
	haveDigits := isDigit(first)
	haveDot := first == '.'
	for {
		ch := p.in.ReadChar()
		switch {
		case isDigit(ch):
			haveDigits = true
			sb.WriteRune(ch)
		case haveDigits && (ch == 'e' || ch == 'E'):
			sb.WriteRune(ch)
			return p.parseExponent(&sb)
		case ch == '.' && !haveDot:
			pos := p.in.MarkPosition()
			next := p.in.ReadChar()
			if next != 'e' && next != 'E' && !isDigit(next) {
				// the '.' ends the statement
				p.in.SetMarkPosition(pos - 1)
				return p.finishNumber(sb.String(), haveDigits, haveDot)
			}
			p.in.MoveBack(1)
			haveDot = true
			sb.WriteByte('.')
		default:
			p.unread(ch)
			return p.finishNumber(sb.String(), haveDigits, haveDot)
		}
	}
}

func (p *TurtleParser) finishNumber(lexical string, haveDigits, haveDot bool) (Term, error) {
	if !haveDigits {
		return Term{}, p.errorf(ErrUnexpectedCharacter, "number %q has no digits", lexical)
	}
	datatype := XSDInteger
	if haveDot {
		datatype = XSDDecimal
	}
	return Term{kind: KindTypedString, value: lexical, typeOrLanguage: datatype}, nil
}

func (p *TurtleParser) parseExponent(sb *strings.Builder) (Term, error) {
	ch := p.in.ReadChar()
	haveDigits := isDigit(ch)
	if !haveDigits && ch != '+' && ch != '-' {
		return Term{}, p.unexpected(ch, "exponent")
	}
	sb.WriteRune(ch)
	for {
		ch = p.in.ReadChar()
		if !isDigit(ch) {
			p.unread(ch)
			break
		}
		haveDigits = true
		sb.WriteRune(ch)
	}
	if !haveDigits {
		return Term{}, p.errorf(ErrUnexpectedCharacter, "exponent of %q has no digits", sb.String())
	}
	return Term{kind: KindTypedString, value: sb.String(), typeOrLanguage: XSDDouble}, nil
}

// parseString reads a short or long string literal after its first quote
func (p *TurtleParser) parseString(quote rune) (string, error) {
	var sb strings.Builder
	long := false
	ch := p.in.ReadChar()
	if ch == quote {
		ch = p.in.ReadChar()
		if ch != quote {
			p.unread(ch)
			return "", nil
		}
		long = true
		ch = p.in.ReadChar()
	}

	quotes := 0
	for ; ; ch = p.in.ReadChar() {
		if ch == eof {
			if err := p.in.Err(); err != nil {
				return "", p.errorf(err, "")
			}
			return "", p.errorf(ErrUnterminatedString, "")
		}
		if ch == quote {
			if !long {
				return sb.String(), nil
			}
			quotes++
			if quotes == 3 {
				return sb.String(), nil
			}
			continue
		}
		for ; quotes > 0; quotes-- {
			sb.WriteRune(quote)
		}
		switch {
		case !long && (ch == '\n' || ch == '\r'):
			return "", p.errorf(ErrUnterminatedString, "line break in string")
		case ch == '\\':
			c, err := p.parseEscape(true)
			if err != nil {
				return "", err
			}
			sb.WriteRune(c)
		default:
			sb.WriteRune(ch)
		}
	}
}

// parseLiteralSuffix reads an optional language tag or datatype
func (p *TurtleParser) parseLiteralSuffix(value string) (Term, error) {
	ch := p.in.ReadChar()
	switch ch {
	case '@':
		lang, err := p.parseLanguageTag()
		if err != nil {
			return Term{}, err
		}
		return Term{kind: KindLangString, value: value, typeOrLanguage: lang}, nil
	case '^':
		if c := p.in.ReadChar(); c != '^' {
			return Term{}, p.unexpected(c, "'^^'")
		}
		c := p.in.ReadChar()
		var datatype string
		switch {
		case c == '<':
			dt, err := p.parseIRIRef()
			if err != nil {
				return Term{}, err
			}
			datatype = dt
		case c == ':' || isPN_CHARS_BASE(c):
			dt, err := p.parsePrefixedName(c)
			if err != nil {
				return Term{}, err
			}
			datatype = dt.value
		default:
			return Term{}, p.unexpected(c, "datatype IRI")
		}
		return Term{kind: KindTypedString, value: value, typeOrLanguage: datatype}, nil
	}
	p.unread(ch)
	return NewString(value), nil
}

func (p *TurtleParser) newBlankNode() Term {
	p.blankNodeCounter++
	return Term{kind: KindBlank, value: "." + strconv.Itoa(p.blankNodeCounter)}
}

// materialize allocates blank nodes for a parsed object, adds the triples
// describing it and returns the term that stands for it
func (p *TurtleParser) materialize(obj *turtleObject, triples *TripleSet) Term {
	switch obj.kind {
	case propertyListObject:
		node := p.newBlankNode()
		for _, prop := range obj.properties {
			triples.Add(Triple{Subject: node, Predicate: prop.predicate, Object: p.materialize(prop.object, triples)})
		}
		return node
	case collectionObject:
		if len(obj.items) == 0 {
			return NilIRI
		}
		head := p.newBlankNode()
		cur := head
		triples.Add(Triple{Subject: cur, Predicate: FirstIRI, Object: p.materialize(obj.items[0], triples)})
		for _, item := range obj.items[1:] {
			next := p.newBlankNode()
			triples.Add(Triple{Subject: cur, Predicate: RestIRI, Object: next})
			triples.Add(Triple{Subject: next, Predicate: FirstIRI, Object: p.materialize(item, triples)})
			cur = next
		}
		triples.Add(Triple{Subject: cur, Predicate: RestIRI, Object: NilIRI})
		return head
	default:
		return obj.term
	}
}
