package iri

import (
	"strings"
	"unicode/utf8"
)

// EscapeMode selects the target context for Escape
type EscapeMode int

const (
	// EscapeIRI percent-encodes controls, space, DEL and above, and the
	// characters {}|^\`<>"
	EscapeIRI EscapeMode = iota
	// EscapeURIStrict percent-encodes non-ASCII code points as UTF-8. The
	// input must be a valid IRI; otherwise Escape returns "".
	EscapeURIStrict
	// EscapeURI is EscapeURIStrict without the validity requirement
	EscapeURI
	// EscapeIRIFixPercent is EscapeIRI that also encodes any '%' not
	// starting a %HH triplet
	EscapeIRIFixPercent
)

const hexDigits = "0123456789ABCDEF"

// Escape percent-encodes the characters of s that cannot appear in the
// context selected by mode. '[' and ']' are left alone only inside the
// authority. Escape is idempotent: Escape(Escape(s, m), m) == Escape(s, m).
func Escape(s string, mode EscapeMode) string {
	var comps Components
	var ok bool
	if mode == EscapeURIStrict {
		if comps, ok = Split(s, IRIStrict); !ok {
			return ""
		}
	} else {
		comps, ok = Split(s, IRISurrogateLenient)
	}
	inAuthority := func(i int) bool {
		return ok && i >= comps.Authority.Start && i < comps.Authority.End
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for index := 0; index < len(s); {
		c, width, valid := decodeAt(s, index)
		if !valid {
			c = utf8.RuneError
		}
		switch mode {
		case EscapeIRI, EscapeIRIFixPercent:
			switch {
			case c == '%' && mode == EscapeIRIFixPercent:
				if validPercent(s, index) {
					sb.WriteByte('%')
				} else {
					percentEncodeUTF8(&sb, c)
				}
			case c >= 0x7f || c <= 0x20 || inSet(c, "{}|^\\`<>\""):
				percentEncodeUTF8(&sb, c)
			case (c == '[' || c == ']') && !inAuthority(index):
				percentEncodeUTF8(&sb, c)
			default:
				sb.WriteString(s[index : index+width])
			}
		case EscapeURIStrict, EscapeURI:
			switch {
			case c >= 0x80:
				percentEncodeUTF8(&sb, c)
			case (c == '[' || c == ']') && !inAuthority(index):
				percentEncodeUTF8(&sb, c)
			default:
				sb.WriteString(s[index : index+width])
			}
		}
		index += width
	}
	return sb.String()
}

func percentEncodeUTF8(sb *strings.Builder, c rune) {
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], c)
	for _, b := range buf[:n] {
		sb.WriteByte('%')
		sb.WriteByte(hexDigits[b>>4])
		sb.WriteByte(hexDigits[b&0x0f])
	}
}

// IsValidCurieReference reports whether s is a valid CURIE reference (the
// part after the colon) under RDFa 1.1. An authority is not allowed.
func IsValidCurieReference(s string) bool {
	if strings.HasPrefix(s, "//") {
		return false
	}
	state := 0 // 0 path, 1 query, 2 fragment
	for index := 0; index < len(s); {
		c, width, ok := decodeAt(s, index)
		if !ok {
			return false
		}
		if c == '%' {
			if !validPercent(s, index) {
				return false
			}
			index += 3
			continue
		}
		switch state {
		case 0:
			if c == '?' {
				state = 1
			} else if c == '#' {
				state = 2
			} else if !isIpchar(c) {
				return false
			}
		case 1:
			if c == '#' {
				state = 2
			} else if !isIqueryChar(c) {
				return false
			}
		case 2:
			if !isIfragmentChar(c) {
				return false
			}
		}
		index += width
	}
	return true
}
