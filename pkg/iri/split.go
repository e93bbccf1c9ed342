// Package iri splits and resolves IRI and URI references following
// RFC3986 and RFC3987.
package iri

import "unicode/utf8"

// ParseMode selects which characters Split accepts
type ParseMode int

const (
	// IRIStrict follows the RFC3987 grammar. Invalid UTF-8 is rejected.
	IRIStrict ParseMode = iota
	// URIStrict follows the RFC3986 grammar; only ASCII is accepted.
	URIStrict
	// IRILenient only checks delimiters when splitting.
	IRILenient
	// URILenient only checks delimiters when splitting; only ASCII is accepted.
	URILenient
	// IRISurrogateLenient is like IRILenient but treats invalid UTF-8
	// (the equivalent of an unpaired surrogate) as U+FFFD.
	IRISurrogateLenient
)

func (m ParseMode) String() string {
	switch m {
	case IRIStrict:
		return "IRIStrict"
	case URIStrict:
		return "URIStrict"
	case IRILenient:
		return "IRILenient"
	case URILenient:
		return "URILenient"
	case IRISurrogateLenient:
		return "IRISurrogateLenient"
	default:
		return "unknown"
	}
}

// Range is a half-open byte range into the split string. Start and End are
// both -1 when the component is absent.
type Range struct {
	Start int
	End   int
}

var absent = Range{-1, -1}

// Present reports whether the component exists. A present component may be
// empty, as in the query of "http://a/?".
func (r Range) Present() bool {
	return r.Start >= 0
}

// In returns the component's text within s, or "" if it is absent
func (r Range) In(s string) string {
	if r.Start < 0 {
		return ""
	}
	return s[r.Start:r.End]
}

// Components holds the ranges of the five parts of an IRI reference
type Components struct {
	Scheme    Range
	Authority Range
	Path      Range
	Query     Range
	Fragment  Range
}

// decodeAt returns the code point starting at s[i]. ok is false for invalid
// UTF-8, which plays the role an unpaired surrogate plays in UTF-16.
func decodeAt(s string, i int) (c rune, width int, ok bool) {
	c, width = utf8.DecodeRuneInString(s[i:])
	if c == utf8.RuneError && width == 1 {
		return c, 1, false
	}
	return c, width, true
}

// Split parses s as an IRI reference under mode and returns the ranges of
// its components. It reports false if s does not satisfy the grammar.
func Split(s string, mode ParseMode) (Components, bool) {
	c := Components{Scheme: absent, Authority: absent, Path: absent, Query: absent, Fragment: absent}
	if s == "" {
		c.Path = Range{0, 0}
		return c, true
	}
	asciiOnly := mode == URILenient || mode == URIStrict
	strict := mode == URIStrict || mode == IRIStrict
	n := len(s)
	index := 0

	// scheme
	scheme := false
	for index < n {
		ch := rune(s[index])
		if index > 0 && ch == ':' {
			scheme = true
			c.Scheme = Range{0, index}
			index++
			break
		}
		if strict && index == 0 && !isASCIIAlpha(ch) {
			break
		}
		if strict && index > 0 && !(isASCIIAlnum(ch) || ch == '+' || ch == '-' || ch == '.') {
			break
		}
		if !strict && (ch == '#' || ch == ':' || ch == '?' || ch == '/') {
			break
		}
		index++
	}
	if !scheme {
		index = 0
	}

	if index+2 <= n && s[index] == '/' && s[index+1] == '/' {
		index += 2
		authorityStart := index
		c.Authority = Range{authorityStart, n}
		state := 0 // 0 userinfo, 1 host, 2 port
	authority:
		for index < n {
			ch, width, ok := decodeAt(s, index)
			if asciiOnly && ch >= 0x80 {
				return Components{}, false
			}
			if !ok {
				if mode != IRISurrogateLenient {
					return Components{}, false
				}
				ch = utf8.RuneError
			}
			if ch == '%' && (state == 0 || state == 1) && strict {
				if validPercent(s, index) {
					index += 3
					continue
				}
				return Components{}, false
			}
			switch state {
			case 0:
				if ch == '/' || ch == '?' || ch == '#' {
					state = 1
					index = authorityStart
					continue
				}
				if strict && ch == '@' {
					index++
					state = 1
					continue
				}
				if strict && isIUserInfoChar(ch) {
					index += width
					if index == n {
						// ran out without '@': not user info after all
						state = 1
						index = authorityStart
					}
					continue
				}
				state = 1
				index = authorityStart
			case 1:
				if ch == '/' || ch == '?' || ch == '#' {
					c.Authority.End = index
					break authority
				}
				switch {
				case !strict:
					index += width
				case ch == '[':
					index = parseIPLiteral(s, index+1, n)
					if index < 0 {
						return Components{}, false
					}
				case ch == ':':
					state = 2
					index++
				case isIRegNameChar(ch):
					// IPv4 addresses are covered by ireg-name
					index += width
				default:
					return Components{}, false
				}
			case 2:
				if ch == '/' || ch == '?' || ch == '#' {
					c.Authority.End = index
					break authority
				}
				if ch < '0' || ch > '9' {
					return Components{}, false
				}
				index++
			}
		}
	}

	colon := false
	segment := false
	fullyRelative := index == 0
	c.Path = Range{index, n}
	state := 0 // 0 path, 1 query, 2 fragment
	for index < n {
		ch, width, ok := decodeAt(s, index)
		if asciiOnly && ch >= 0x80 {
			return Components{}, false
		}
		if !ok {
			if mode != IRISurrogateLenient {
				return Components{}, false
			}
			ch = utf8.RuneError
		}
		if ch == '%' && strict {
			if validPercent(s, index) {
				index += 3
				continue
			}
			return Components{}, false
		}
		switch state {
		case 0:
			if ch == ':' && fullyRelative {
				colon = true
			} else if ch == '/' && fullyRelative && !segment {
				// a relative path may not have a colon in its first segment
				if strict && colon {
					return Components{}, false
				}
				segment = true
			}
			switch {
			case ch == '?':
				c.Path.End = index
				c.Query = Range{index + 1, n}
				state = 1
			case ch == '#':
				c.Path.End = index
				c.Fragment = Range{index + 1, n}
				state = 2
			case strict && !isIpchar(ch):
				return Components{}, false
			}
		case 1:
			if ch == '#' {
				c.Query.End = index
				c.Fragment = Range{index + 1, n}
				state = 2
			} else if strict && !isIqueryChar(ch) {
				return Components{}, false
			}
		case 2:
			if strict && !isIfragmentChar(ch) {
				return Components{}, false
			}
		}
		index += width
	}
	if strict && fullyRelative && colon && !segment {
		// e.g. "x@y:z"
		return Components{}, false
	}
	return c, true
}

// IsValid reports whether s is an IRI reference under mode
func IsValid(s string, mode ParseMode) bool {
	_, ok := Split(s, mode)
	return ok
}

// HasScheme reports whether s is a valid IRI with a scheme component.
// "xx-x:mm" and "example:/ww" have one; "x@y:/z", "/x/y/z" and
// "example.xyz" do not.
func HasScheme(s string) bool {
	c, ok := Split(s, IRIStrict)
	return ok && c.Scheme.Present()
}

// HasSchemeForURI is HasScheme restricted to ASCII URIs
func HasSchemeForURI(s string) bool {
	c, ok := Split(s, URIStrict)
	return ok && c.Scheme.Present()
}

// parseDecOctet parses a dec-octet starting at s[index] (whose value is c)
// that must be followed by delim. It returns -1 if there is none.
func parseDecOctet(s string, index, end int, c byte, delim byte) int {
	digit := func(b byte) bool { return b >= '0' && b <= '9' }
	if c >= '1' && c <= '9' && index+2 < end && digit(s[index+1]) && s[index+2] == delim {
		return int(c-'0')*10 + int(s[index+1]-'0')
	}
	if c == '2' && index+3 < end && s[index+1] == '5' && s[index+2] >= '0' && s[index+2] <= '5' &&
		s[index+3] == delim {
		return 250 + int(s[index+2]-'0')
	}
	if c == '2' && index+3 < end && s[index+1] >= '0' && s[index+1] <= '4' && digit(s[index+2]) &&
		s[index+3] == delim {
		return 200 + int(s[index+1]-'0')*10 + int(s[index+2]-'0')
	}
	if c == '1' && index+3 < end && digit(s[index+1]) && digit(s[index+2]) && s[index+3] == delim {
		return 100 + int(s[index+1]-'0')*10 + int(s[index+2]-'0')
	}
	if digit(c) && index+1 < end && s[index+1] == delim {
		return int(c - '0')
	}
	return -1
}

// octetWidth is the number of bytes a dec-octet of value v occupies
func octetWidth(v int) int {
	switch {
	case v >= 100:
		return 3
	case v >= 10:
		return 2
	default:
		return 1
	}
}

// parseIPLiteral parses the inside of a bracketed host starting just after
// '[' and returns the index after the closing ']', or -1
func parseIPLiteral(s string, offset, end int) int {
	index := offset
	if offset == end {
		return -1
	}
	at := func(i int) byte {
		if i < end {
			return s[i]
		}
		return 0
	}

	if s[index] == 'v' {
		// IPvFuture
		index++
		seen := false
		for index < end && isHexChar(s[index]) {
			seen = true
			index++
		}
		if !seen || index >= end || s[index] != '.' {
			return -1
		}
		index++
		seen = false
		for index < end {
			ch := rune(s[index])
			if !isASCIIAlnum(ch) && !inSet(ch, ":-._~!$&'()*+,;=") {
				break
			}
			seen = true
			index++
		}
		if !seen || index >= end || s[index] != ']' {
			return -1
		}
		return index + 1
	}

	if s[index] != ':' && !isHexChar(s[index]) {
		return -1
	}

	// IPv6
	phase1, phase2 := 0, 0
	phased := false
	expectHex, expectColon := false, false
	groups := func() int {
		n := phase1 + phase2
		if phased {
			n++
		}
		return n
	}
	for index < end {
		ch := s[index]
		if ch == ':' && !expectHex {
			if groups() >= 8 {
				return -1
			}
			index++
			if index < end && s[index] == ':' {
				if phased {
					return -1
				}
				phased = true
				index++
			}
			expectHex = true
			expectColon = false
			continue
		}
		if ch >= '0' && ch <= '9' && !expectColon && (phased || groups() == 6) {
			// possible trailing IPv4 address
			if octet := parseDecOctet(s, index, end, ch, '.'); octet >= 0 {
				if groups() > 6 {
					return -1
				}
				phase2 += 2
				index += octetWidth(octet) + 1
				for i := 0; i < 2; i++ {
					octet = parseDecOctet(s, index, end, at(index), '.')
					if octet < 0 {
						return -1
					}
					index += octetWidth(octet) + 1
				}
				octet = parseDecOctet(s, index, end, at(index), ']')
				if octet < 0 {
					octet = parseDecOctet(s, index, end, at(index), '%')
				}
				if octet < 0 {
					return -1
				}
				index += octetWidth(octet)
				break
			}
		}
		if !isHexChar(ch) || expectColon {
			break
		}
		if phased {
			phase2++
		} else {
			phase1++
		}
		index++
		for i := 0; i < 3 && index < end && isHexChar(s[index]); i++ {
			index++
		}
		expectHex = false
		expectColon = true
	}
	if !phased && phase1+phase2 != 8 {
		return -1
	}
	if phased && phase1+1+phase2 > 8 {
		return -1
	}
	if index >= end {
		return -1
	}
	switch s[index] {
	case ']':
		return index + 1
	case '%':
		return parseZoneID(s, index, end)
	default:
		return -1
	}
}

// parseZoneID parses an RFC6874 zone identifier ("%25" then unreserved
// characters or percent triplets) at s[index] up to the closing ']'
func parseZoneID(s string, index, end int) int {
	if !(index+2 < end && s[index+1] == '2' && s[index+2] == '5') {
		return -1
	}
	index += 3
	haveChar := false
	for index < end {
		ch := rune(s[index])
		switch {
		case ch == ']':
			if !haveChar {
				return -1
			}
			return index + 1
		case ch == '%':
			if !validPercent(s, index) {
				return -1
			}
			index += 3
			haveChar = true
		case isASCIIAlnum(ch) || ch == '.' || ch == '_' || ch == '-' || ch == '~':
			index++
			haveChar = true
		default:
			return -1
		}
	}
	return -1
}
