package testsuite

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/aleksaelezovic/turtle/pkg/rdf"
)

// TestManifest is a W3C test manifest with its includes flattened
type TestManifest struct {
	Path  string
	Tests []TestCase
}

// TestCase represents a single manifest entry
type TestCase struct {
	IRI         string
	Name        string
	Type        TestType
	Action      string // input document path
	Result      string // expected N-Triples path, eval tests only
	Approved    bool
	Description string
}

// TestType is the local name of the entry's rdft: type
type TestType string

const (
	// RDF Turtle tests
	TestTypeTurtleEval           TestType = "TestTurtleEval"
	TestTypeTurtlePositiveSyntax TestType = "TestTurtlePositiveSyntax"
	TestTypeTurtleNegativeSyntax TestType = "TestTurtleNegativeSyntax"
	TestTypeTurtleNegativeEval   TestType = "TestTurtleNegativeEval"

	// RDF N-Triples tests
	TestTypeNTriplesPositiveSyntax TestType = "TestNTriplesPositiveSyntax"
	TestTypeNTriplesNegativeSyntax TestType = "TestNTriplesNegativeSyntax"
)

const (
	mfNamespace   = "http://www.w3.org/2001/sw/DataAccess/tests/test-manifest#"
	rdftNamespace = "http://www.w3.org/ns/rdftest#"

	mfManifest  = mfNamespace + "Manifest"
	mfEntries   = mfNamespace + "entries"
	mfInclude   = mfNamespace + "include"
	mfName      = mfNamespace + "name"
	mfAction    = mfNamespace + "action"
	mfResult    = mfNamespace + "result"
	mfApproval  = mfNamespace + "approval"
	rdftApprove = rdftNamespace + "approval"
	rdfsComment = "http://www.w3.org/2000/01/rdf-schema#comment"
)

const w3cTestsBase = "https://w3c.github.io/rdf-tests/"

// DocumentIRI returns the IRI a test file is published under. Files inside
// an rdf-tests checkout map to their canonical W3C location so that the
// expected results line up; anything else gets a file:// IRI.
func DocumentIRI(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(err, "resolving %s", path)
	}
	rootIRI, rootDir := documentRoot(abs)
	rel, err := filepath.Rel(rootDir, abs)
	if err != nil {
		return "", errors.Wrapf(err, "resolving %s", path)
	}
	return rootIRI + (&url.URL{Path: filepath.ToSlash(rel)}).EscapedPath(), nil
}

// documentRoot returns the IRI and directory that DocumentIRI maps onto
// each other
func documentRoot(abs string) (rootIRI, rootDir string) {
	slashed := filepath.ToSlash(abs)
	if idx := strings.Index(slashed, "rdf-tests/"); idx != -1 {
		return w3cTestsBase, filepath.FromSlash(slashed[:idx+len("rdf-tests/")])
	}
	return "file:///", filepath.VolumeName(abs) + string(filepath.Separator)
}

// documentPath inverts DocumentIRI for IRIs under the same root
func documentPath(term rdf.Term, rootIRI, rootDir string) (string, error) {
	rest, ok := strings.CutPrefix(term.Value(), rootIRI)
	if !term.IsIRI() || !ok {
		return "", errors.Errorf("%s is outside the test suite rooted at %s", term, rootIRI)
	}
	rest, err := url.PathUnescape(rest)
	if err != nil {
		return "", errors.Wrapf(err, "unescaping %s", term)
	}
	return filepath.Join(rootDir, filepath.FromSlash(rest)), nil
}

// ParseManifest reads a manifest and every manifest it includes
func ParseManifest(path string) (*TestManifest, error) {
	return parseManifest(path, make(map[string]bool))
}

func parseManifest(path string, visited map[string]bool) (*TestManifest, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", path)
	}
	manifest := &TestManifest{Path: abs}
	if visited[abs] {
		return manifest, nil
	}
	visited[abs] = true

	base, err := DocumentIRI(abs)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(abs) // #nosec G304 - test suite legitimately reads test manifest files
	if err != nil {
		return nil, errors.Wrap(err, "opening manifest")
	}
	defer file.Close()

	parser, err := rdf.NewTurtleParser(file, base)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing manifest %s", path)
	}
	triples, err := parser.Parse()
	if err != nil {
		return nil, errors.Wrapf(err, "parsing manifest %s", path)
	}

	g := newGraph(triples)
	rootIRI, rootDir := documentRoot(abs)
	toPath := func(term rdf.Term) (string, error) {
		return documentPath(term, rootIRI, rootDir)
	}

	for _, root := range g.subjects(rdf.TypeIRI, rdf.MustIRI(mfManifest)) {
		for _, include := range g.list(g.object(root, mfInclude)) {
			includePath, err := toPath(include)
			if err != nil {
				return nil, errors.Wrapf(err, "include in %s", path)
			}
			included, err := parseManifest(includePath, visited)
			if err != nil {
				return nil, err
			}
			manifest.Tests = append(manifest.Tests, included.Tests...)
		}

		for _, entry := range g.list(g.object(root, mfEntries)) {
			test := TestCase{
				IRI:         entry.Value(),
				Name:        g.object(entry, mfName).Value(),
				Description: g.object(entry, rdfsComment).Value(),
			}
			if typ := g.object(entry, rdf.RDFType); typ.IsIRI() {
				test.Type = TestType(strings.TrimPrefix(typ.Value(), rdftNamespace))
			}
			for _, p := range []string{mfApproval, rdftApprove} {
				if strings.HasSuffix(g.object(entry, p).Value(), "Approved") {
					test.Approved = true
				}
			}
			// Only entries with both a name and a type are tests
			if test.Name == "" || test.Type == "" {
				continue
			}
			if action := g.object(entry, mfAction); !action.IsZero() {
				if test.Action, err = toPath(action); err != nil {
					return nil, errors.Wrapf(err, "action of %s", test.Name)
				}
			}
			if result := g.object(entry, mfResult); !result.IsZero() {
				if test.Result, err = toPath(result); err != nil {
					return nil, errors.Wrapf(err, "result of %s", test.Name)
				}
			}
			manifest.Tests = append(manifest.Tests, test)
		}
	}
	return manifest, nil
}

// graph indexes a manifest by subject and predicate
type graph struct {
	objects map[[2]rdf.Term][]rdf.Term
	triples []rdf.Triple
}

func newGraph(set *rdf.TripleSet) *graph {
	g := &graph{objects: make(map[[2]rdf.Term][]rdf.Term), triples: set.Triples()}
	for _, t := range g.triples {
		key := [2]rdf.Term{t.Subject, t.Predicate}
		g.objects[key] = append(g.objects[key], t.Object)
	}
	return g
}

// object returns the first object of (subject, predicate), or the zero term
func (g *graph) object(subject rdf.Term, predicate string) rdf.Term {
	objects := g.objects[[2]rdf.Term{subject, rdf.MustIRI(predicate)}]
	if len(objects) == 0 {
		return rdf.Term{}
	}
	return objects[0]
}

func (g *graph) subjects(predicate, object rdf.Term) []rdf.Term {
	var out []rdf.Term
	for _, t := range g.triples {
		if t.Predicate == predicate && t.Object == object {
			out = append(out, t.Subject)
		}
	}
	return out
}

// list walks an RDF collection. Malformed or cyclic lists stop early.
func (g *graph) list(head rdf.Term) []rdf.Term {
	var items []rdf.Term
	seen := make(map[rdf.Term]bool)
	for !head.IsZero() && head != rdf.NilIRI && !seen[head] {
		seen[head] = true
		first := g.object(head, rdf.RDFFirst)
		if first.IsZero() {
			break
		}
		items = append(items, first)
		head = g.object(head, rdf.RDFRest)
	}
	return items
}
