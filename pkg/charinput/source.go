package charinput

import (
	"bufio"
	"errors"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// EOF is returned by ReadChar once a source is exhausted
const EOF rune = -1

// CodepointSource yields Unicode code points, or EOF at end of input
type CodepointSource interface {
	ReadChar() rune
}

// StringSource reads code points from an in-memory string
type StringSource struct {
	text string
	pos  int
}

// NewStringSource creates a source over text
func NewStringSource(text string) *StringSource {
	return &StringSource{text: text}
}

func (s *StringSource) ReadChar() rune {
	if s.pos >= len(s.text) {
		return EOF
	}
	r, size := utf8.DecodeRuneInString(s.text[s.pos:])
	s.pos += size
	return r
}

// RuneSource reads code points from a slice
type RuneSource struct {
	runes []rune
	pos   int
}

// NewRuneSource creates a source over runes. The slice is not copied.
func NewRuneSource(runes []rune) *RuneSource {
	return &RuneSource{runes: runes}
}

func (s *RuneSource) ReadChar() rune {
	if s.pos >= len(s.runes) {
		return EOF
	}
	r := s.runes[s.pos]
	s.pos++
	return r
}

// Remaining reports how many code points are left unread
func (s *RuneSource) Remaining() int {
	return len(s.runes) - s.pos
}

// ReaderSource decodes UTF-8 from an io.Reader. A leading byte order mark
// is consumed; invalid sequences decode to U+FFFD.
type ReaderSource struct {
	r   *bufio.Reader
	err error
}

// NewReaderSource creates a UTF-8 source over r
func NewReaderSource(r io.Reader) *ReaderSource {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	return &ReaderSource{r: bufio.NewReader(transform.NewReader(r, decoder))}
}

func (s *ReaderSource) ReadChar() rune {
	if s.err != nil {
		return EOF
	}
	r, _, err := s.r.ReadRune()
	if err != nil {
		s.err = err
		return EOF
	}
	return r
}

// Err returns the first non-EOF error encountered while reading
func (s *ReaderSource) Err() error {
	if s.err == nil || errors.Is(s.err, io.EOF) {
		return nil
	}
	return s.err
}

// ASCIISource yields one code point per byte. Bytes above 0x7F are
// reported as U+FFFD so that ASCII-only grammars reject them.
type ASCIISource struct {
	r   *bufio.Reader
	err error
}

// NewASCIISource creates a byte-per-code-point source over r
func NewASCIISource(r io.Reader) *ASCIISource {
	return &ASCIISource{r: bufio.NewReader(r)}
}

func (s *ASCIISource) ReadChar() rune {
	if s.err != nil {
		return EOF
	}
	b, err := s.r.ReadByte()
	if err != nil {
		s.err = err
		return EOF
	}
	if b >= 0x80 {
		return utf8.RuneError
	}
	return rune(b)
}

// Err returns the first non-EOF error encountered while reading
func (s *ASCIISource) Err() error {
	if s.err == nil || errors.Is(s.err, io.EOF) {
		return nil
	}
	return s.err
}

// ErrorSource is implemented by sources that can fail while reading
type ErrorSource interface {
	Err() error
}
