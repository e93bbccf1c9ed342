package rdf

import "strconv"

// isValidBlankLabel reports whether label can be written as an N-Triples
// blank node label: an ASCII letter followed by ASCII letters and digits
func isValidBlankLabel(label string) bool {
	if label == "" {
		return false
	}
	for i := 0; i < len(label); i++ {
		c := label[i]
		isLetter := (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
		if i == 0 && !isLetter {
			return false
		}
		if !isLetter && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// RelabelBlankNodes renames every blank node whose label is not a valid
// N-Triples label to a fresh "bN" label that no other blank node in the set
// uses. The same old label always maps to the same new node, in subject
// and object position alike. The set is rewritten in place.
func RelabelBlankNodes(set *TripleSet) {
	used := make(map[string]bool)
	set.Each(func(t Triple) {
		if t.Subject.IsBlank() {
			used[t.Subject.value] = true
		}
		if t.Object.IsBlank() {
			used[t.Object.value] = true
		}
	})
	if len(used) == 0 {
		return
	}

	renamed := make(map[string]Term)
	next := 0
	relabel := func(term Term) (Term, bool) {
		if !term.IsBlank() || isValidBlankLabel(term.value) {
			return term, false
		}
		if n, ok := renamed[term.value]; ok {
			return n, true
		}
		for {
			label := "b" + strconv.Itoa(next)
			next++
			if !used[label] {
				used[label] = true
				n := Term{kind: KindBlank, value: label}
				renamed[term.value] = n
				return n, true
			}
		}
	}

	// walk in sorted order so labels are assigned deterministically
	for _, t := range set.Triples() {
		subject, subjectChanged := relabel(t.Subject)
		object, objectChanged := relabel(t.Object)
		if subjectChanged || objectChanged {
			set.Remove(t)
			set.Add(Triple{Subject: subject, Predicate: t.Predicate, Object: object})
		}
	}
}
