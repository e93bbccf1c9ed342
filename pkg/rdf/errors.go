package rdf

import (
	"errors"
	"fmt"
	"io"
)

// A ParseError is returned for syntax errors in Turtle and N-Triples input.
// The first line is 1. The first column is 0.
type ParseError struct {
	Line   int   // Line where the error was detected
	Column int   // Column (code point index) where the error was detected
	Err    error // The actual error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// These are the errors that can be wrapped by a ParseError
var (
	// ErrUnexpectedCharacter is a general syntax error
	ErrUnexpectedCharacter = errors.New("unexpected character")

	// ErrUnexpectedEOF is returned when input ends inside a statement
	ErrUnexpectedEOF = io.ErrUnexpectedEOF

	// ErrInvalidIRI is returned for an IRI reference that cannot be resolved
	ErrInvalidIRI = errors.New("invalid IRI")

	// ErrBaseWithoutScheme is returned when a base IRI has no scheme
	ErrBaseWithoutScheme = errors.New("base IRI has no scheme")

	// ErrUndefinedPrefix is returned when a prefixed name uses an undeclared prefix
	ErrUndefinedPrefix = errors.New("undefined prefix")

	// ErrUnterminatedString is returned when input ends inside a string literal
	ErrUnterminatedString = errors.New("unterminated string")

	// ErrInvalidEscape is returned for a malformed backslash or \u escape,
	// including one that encodes a surrogate
	ErrInvalidEscape = errors.New("invalid escape sequence")

	// ErrMissingTerminator is returned when a statement is not closed by '.'
	ErrMissingTerminator = errors.New("expected '.'")

	// ErrInvalidBlankNode is returned for a malformed blank node label
	ErrInvalidBlankNode = errors.New("invalid blank node label")

	// ErrInvalidLocalName is returned for a malformed prefixed name local part
	ErrInvalidLocalName = errors.New("invalid local name")

	// ErrInvalidPrefix is returned for a malformed prefix name
	ErrInvalidPrefix = errors.New("invalid prefix")

	// ErrInvalidLanguageTag is returned for a malformed language tag
	ErrInvalidLanguageTag = errors.New("invalid language tag")

	// ErrInvalidTriple is returned when terms appear in positions they may not occupy
	ErrInvalidTriple = errors.New("invalid triple")
)
