package rdf

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Parser reads a whole document into a triple set
type Parser interface {
	Parse() (*TripleSet, error)
}

// Format identifies a supported serialization
type Format int

const (
	FormatUnknown Format = iota
	FormatTurtle
	FormatNTriples
)

func (f Format) String() string {
	switch f {
	case FormatTurtle:
		return "turtle"
	case FormatNTriples:
		return "n-triples"
	default:
		return "unknown"
	}
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	switch f {
	case FormatTurtle:
		return "text/turtle"
	case FormatNTriples:
		return "application/n-triples"
	default:
		return ""
	}
}

// FormatForContentType maps a MIME type, with or without parameters, to a format
func FormatForContentType(contentType string) Format {
	// Normalize content type (remove parameters like charset)
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(ct, ";"); idx != -1 {
		ct = strings.TrimSpace(ct[:idx])
	}

	switch ct {
	case "text/turtle", "application/x-turtle":
		return FormatTurtle
	case "application/n-triples", "text/plain":
		return FormatNTriples
	default:
		return FormatUnknown
	}
}

// FormatForPath guesses the format from a file extension
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ttl":
		return FormatTurtle
	case ".nt":
		return FormatNTriples
	default:
		return FormatUnknown
	}
}

// NewParser creates a parser for the given content type. The base IRI is
// only used by Turtle.
func NewParser(contentType string, r io.Reader, base string) (Parser, error) {
	format := FormatForContentType(contentType)
	if format == FormatUnknown {
		return nil, fmt.Errorf("unsupported content type: %s", contentType)
	}
	return NewParserForFormat(format, r, base)
}

// NewParserForFormat creates a parser for format
func NewParserForFormat(format Format, r io.Reader, base string) (Parser, error) {
	switch format {
	case FormatTurtle:
		p, err := NewTurtleParser(r, base)
		if err != nil {
			return nil, err
		}
		return p, nil
	case FormatNTriples:
		return NewNTriplesParser(r), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
