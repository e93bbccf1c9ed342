package rdf

import (
	"fmt"

	"github.com/aleksaelezovic/turtle/pkg/charinput"
)

const eof = charinput.EOF

// lexer holds the input shared by the Turtle and N-Triples parsers
type lexer struct {
	in *charinput.MarkableInput
}

// unread steps back over ch. EOF is never buffered, so it is not stepped over.
func (l *lexer) unread(ch rune) {
	if ch != eof {
		l.in.MoveBack(1)
	}
}

// errorf builds a ParseError at the current position wrapping err
func (l *lexer) errorf(err error, format string, args ...any) error {
	line, column := l.in.Position()
	if format != "" {
		err = fmt.Errorf("%w: "+format, append([]any{err}, args...)...)
	}
	return &ParseError{Line: line, Column: column, Err: err}
}

// eofError reports input ending early, or the read error that ended it
func (l *lexer) eofError() error {
	if err := l.in.Err(); err != nil {
		return l.errorf(err, "")
	}
	return l.errorf(ErrUnexpectedEOF, "")
}

// unexpected reports ch where something else was required
func (l *lexer) unexpected(ch rune, expected string) error {
	if ch == eof {
		return l.eofError()
	}
	return l.errorf(ErrUnexpectedCharacter, "expected %s, got %q", expected, ch)
}

// parseHexEscape reads the digits of a \u or \U escape
func (l *lexer) parseHexEscape(digits int) (rune, error) {
	var value rune
	for i := 0; i < digits; i++ {
		ch := l.in.ReadChar()
		d := hexValue(ch)
		if d < 0 {
			if ch == eof {
				return 0, l.eofError()
			}
			return 0, l.errorf(ErrInvalidEscape, "expected hex digit, got %q", ch)
		}
		value = value<<4 | d
	}
	if (value >= 0xd800 && value <= 0xdfff) || value > 0x10ffff {
		return 0, l.errorf(ErrInvalidEscape, "code point U+%X is not allowed", value)
	}
	return value, nil
}

// parseEscape reads the escape following a backslash. Character escapes
// such as \n are only accepted when echar is set.
func (l *lexer) parseEscape(echar bool) (rune, error) {
	ch := l.in.ReadChar()
	switch ch {
	case 'u':
		return l.parseHexEscape(4)
	case 'U':
		return l.parseHexEscape(8)
	case eof:
		return 0, l.eofError()
	}
	if echar {
		switch ch {
		case 't':
			return '\t', nil
		case 'b':
			return '\b', nil
		case 'n':
			return '\n', nil
		case 'r':
			return '\r', nil
		case 'f':
			return '\f', nil
		case '"', '\'', '\\':
			return ch, nil
		}
	}
	return 0, l.errorf(ErrInvalidEscape, "\\%c", ch)
}

// parseLanguageTag reads [a-zA-Z]+ ('-' [a-zA-Z0-9]+)* after '@' and
// returns it lowercased
func (l *lexer) parseLanguageTag() (string, error) {
	var tag []byte
	hyphen, haveHyphen := false, false
	for {
		ch := l.in.ReadChar()
		switch {
		case ch >= 'A' && ch <= 'Z':
			tag = append(tag, byte(ch+0x20))
			hyphen = false
		case ch >= 'a' && ch <= 'z', haveHyphen && isDigit(ch):
			tag = append(tag, byte(ch))
			hyphen = false
		case ch == '-':
			if hyphen || len(tag) == 0 {
				return "", l.errorf(ErrInvalidLanguageTag, "misplaced '-'")
			}
			tag = append(tag, '-')
			hyphen, haveHyphen = true, true
		default:
			l.unread(ch)
			if hyphen || len(tag) == 0 {
				return "", l.errorf(ErrInvalidLanguageTag, "%q", string(tag))
			}
			return string(tag), nil
		}
	}
}

func hexValue(ch rune) rune {
	switch {
	case ch >= '0' && ch <= '9':
		return ch - '0'
	case ch >= 'a' && ch <= 'f':
		return ch - 'a' + 10
	case ch >= 'A' && ch <= 'F':
		return ch - 'A' + 10
	}
	return -1
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isASCIILetter(ch rune) bool {
	return (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z')
}

// Character classes of the Turtle grammar

func isPN_CHARS_BASE(ch rune) bool {
	return isASCIILetter(ch) ||
		(ch >= 0xc0 && ch <= 0xd6) || (ch >= 0xd8 && ch <= 0xf6) ||
		(ch >= 0xf8 && ch <= 0x2ff) || (ch >= 0x370 && ch <= 0x37d) ||
		(ch >= 0x37f && ch <= 0x1fff) || (ch >= 0x200c && ch <= 0x200d) ||
		(ch >= 0x2070 && ch <= 0x218f) || (ch >= 0x2c00 && ch <= 0x2fef) ||
		(ch >= 0x3001 && ch <= 0xd7ff) || (ch >= 0xf900 && ch <= 0xfdcf) ||
		(ch >= 0xfdf0 && ch <= 0xfffd) || (ch >= 0x10000 && ch <= 0xeffff)
}

func isPN_CHARS_U(ch rune) bool {
	return ch == '_' || isPN_CHARS_BASE(ch)
}

func isPN_CHARS(ch rune) bool {
	return isPN_CHARS_U(ch) || ch == '-' || isDigit(ch) || ch == 0xb7 ||
		(ch >= 0x300 && ch <= 0x36f) || ch == 0x203f || ch == 0x2040
}
