package iri

import "strings"

func isHexChar(c byte) bool {
	return (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') || (c >= '0' && c <= '9')
}

func isASCIIAlpha(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isASCIIAlnum(c rune) bool {
	return isASCIIAlpha(c) || (c >= '0' && c <= '9')
}

// ucschar from RFC3987, excluding the ranges only legal in iquery
func isUCSChar(c rune) bool {
	return (c >= 0xa0 && c <= 0xd7ff) || (c >= 0xf900 && c <= 0xfdcf) ||
		(c >= 0xfdf0 && c <= 0xffef) ||
		(c >= 0x10000 && c <= 0xefffd && (c&0xfffe) != 0xfffe)
}

func inSet(c rune, set string) bool {
	return c < 0x80 && strings.IndexByte(set, byte(c)) >= 0
}

// The character classes below omit '%', which callers handle as a
// percent-encoded triplet.

func isIpchar(c rune) bool {
	return isASCIIAlnum(c) || inSet(c, "/-._~:@!$&'()*+,;=") || isUCSChar(c)
}

func isIqueryChar(c rune) bool {
	return isASCIIAlnum(c) || inSet(c, "/?-._~:@!$&'()*+,;=") ||
		(c >= 0xa0 && c <= 0xd7ff) || (c >= 0xe000 && c <= 0xfdcf) ||
		(c >= 0xfdf0 && c <= 0xffef) ||
		(c >= 0x10000 && c <= 0x10fffd && (c&0xfffe) != 0xfffe)
}

func isIfragmentChar(c rune) bool {
	return isASCIIAlnum(c) || inSet(c, "/?-._~:@!$&'()*+,;=") || isUCSChar(c)
}

func isIRegNameChar(c rune) bool {
	return isASCIIAlnum(c) || inSet(c, "-._~!$&'()*+,;=") || isUCSChar(c)
}

func isIUserInfoChar(c rune) bool {
	return isASCIIAlnum(c) || inSet(c, "-._~:!$&'()*+,;=") || isUCSChar(c)
}

// validPercent reports whether s[i] starts a complete %HH triplet
func validPercent(s string, i int) bool {
	return i+2 < len(s) && isHexChar(s[i+1]) && isHexChar(s[i+2])
}
