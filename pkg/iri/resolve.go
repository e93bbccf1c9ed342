package iri

import "strings"

// Resolve resolves ref against base following RFC3986 section 5.3.
//
// It reports false if ref is not a valid reference under mode. If base is
// not valid under mode, ref is returned unchanged and the result is true.
func Resolve(ref, base string, mode ParseMode) (string, bool) {
	rc, ok := Split(ref, mode)
	if !ok {
		return "", false
	}
	bc, ok := Split(base, mode)
	if !ok {
		return ref, true
	}

	var sb strings.Builder
	switch {
	case rc.Scheme.Present():
		appendScheme(&sb, ref, rc)
		appendAuthority(&sb, ref, rc)
		sb.WriteString(NormalizePath(rc.Path.In(ref)))
		appendQuery(&sb, ref, rc)
		appendFragment(&sb, ref, rc)
	case rc.Authority.Present():
		appendScheme(&sb, base, bc)
		appendAuthority(&sb, ref, rc)
		sb.WriteString(NormalizePath(rc.Path.In(ref)))
		appendQuery(&sb, ref, rc)
		appendFragment(&sb, ref, rc)
	case rc.Path.Start == rc.Path.End:
		appendScheme(&sb, base, bc)
		appendAuthority(&sb, base, bc)
		sb.WriteString(bc.Path.In(base))
		if rc.Query.Present() {
			appendQuery(&sb, ref, rc)
		} else {
			appendQuery(&sb, base, bc)
		}
		appendFragment(&sb, ref, rc)
	default:
		appendScheme(&sb, base, bc)
		appendAuthority(&sb, base, bc)
		refPath := rc.Path.In(ref)
		if strings.HasPrefix(refPath, "/") {
			sb.WriteString(NormalizePath(refPath))
		} else if bc.Authority.Present() && bc.Path.Start == bc.Path.End {
			sb.WriteString(NormalizePath("/" + refPath))
		} else {
			sb.WriteString(NormalizePath(pathParent(bc.Path.In(base)) + refPath))
		}
		appendQuery(&sb, ref, rc)
		appendFragment(&sb, ref, rc)
	}
	return sb.String(), true
}

// RelativeResolve is Resolve in IRIStrict mode
func RelativeResolve(ref, base string) (string, bool) {
	return Resolve(ref, base, IRIStrict)
}

func appendScheme(sb *strings.Builder, s string, c Components) {
	if c.Scheme.Present() {
		sb.WriteString(c.Scheme.In(s))
		sb.WriteByte(':')
	}
}

func appendAuthority(sb *strings.Builder, s string, c Components) {
	if c.Authority.Present() {
		sb.WriteString("//")
		sb.WriteString(c.Authority.In(s))
	}
}

func appendQuery(sb *strings.Builder, s string, c Components) {
	if c.Query.Present() {
		sb.WriteByte('?')
		sb.WriteString(c.Query.In(s))
	}
}

func appendFragment(sb *strings.Builder, s string, c Components) {
	if c.Fragment.Present() {
		sb.WriteByte('#')
		sb.WriteString(c.Fragment.In(s))
	}
}

// pathParent returns path up to and including its last '/', or "" if it
// has none
func pathParent(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[:i+1]
	}
	return ""
}

// NormalizePath removes "." and ".." segments from path in a single left
// to right pass (RFC3986 section 5.2.4). A ".." with no segment left to
// remove is dropped.
func NormalizePath(path string) string {
	n := len(path)
	if n == 0 || path == ".." || path == "." {
		return ""
	}
	if !strings.Contains(path, "/.") && !strings.Contains(path, "./") {
		return path
	}

	// removeLast drops the last segment, together with its leading '/'
	removeLast := func(b []byte) []byte {
		i := len(b) - 1
		for i >= 0 && b[i] != '/' {
			i--
		}
		if i < 0 {
			i = 0
		}
		return b[:i]
	}

	out := make([]byte, 0, n)
	index := 0
	for index < n {
		rest := path[index:]
		switch {
		case strings.HasPrefix(rest, "/./") || rest == "..":
			index += 2
			continue
		case strings.HasPrefix(rest, "../"):
			index += 3
			continue
		case strings.HasPrefix(rest, "./"):
			index += 2
			continue
		case rest == ".":
			index++
			continue
		case rest == "/.":
			out = append(out, '/')
			return string(out)
		case rest == "/..":
			out = removeLast(out)
			out = append(out, '/')
			return string(out)
		case strings.HasPrefix(rest, "/../"):
			out = removeLast(out)
			index += 3
			continue
		}
		// copy one segment, including its leading '/'
		out = append(out, path[index])
		index++
		for index < n && path[index] != '/' {
			out = append(out, path[index])
			index++
		}
	}
	return string(out)
}
