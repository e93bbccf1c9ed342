package testsuite

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const manifestPrefixes = `@prefix mf: <http://www.w3.org/2001/sw/DataAccess/tests/test-manifest#> .
@prefix rdft: <http://www.w3.org/ns/rdftest#> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .
`

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func writeSuite(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return filepath.Join(dir, "manifest.ttl")
}

func suiteFiles() map[string]string {
	return map[string]string{
		"manifest.ttl": manifestPrefixes + `
<> a mf:Manifest ;
   mf:include ( <sub/manifest.ttl> ) ;
   mf:entries ( <#eval> <#pos> <#neg> <#nt-neg> <#c14n> <#bad-eval> ) .

<#eval> a rdft:TestTurtleEval ;
   mf:name "eval" ;
   rdfs:comment "collection of one" ;
   rdft:approval rdft:Approved ;
   mf:action <eval.ttl> ;
   mf:result <eval.nt> .

<#pos> a rdft:TestTurtlePositiveSyntax ; mf:name "pos" ; mf:action <pos.ttl> .
<#neg> a rdft:TestTurtleNegativeSyntax ; mf:name "neg" ; mf:action <neg.ttl> .
<#nt-neg> a rdft:TestNTriplesNegativeSyntax ; mf:name "nt-neg" ; mf:action <neg.nt> .
<#c14n> a rdft:TestNTriplesPositiveC14N ; mf:name "c14n" ; mf:action <pos.nt> .
<#bad-eval> a rdft:TestTurtleEval ; mf:name "bad-eval" ; mf:action <pos.ttl> ; mf:result <eval.nt> .
<#unnamed> a rdft:TestTurtleEval .
`,
		"sub/manifest.ttl": manifestPrefixes + `
<> a mf:Manifest ;
   mf:include ( <../manifest.ttl> ) ;
   mf:entries ( [ a rdft:TestNTriplesPositiveSyntax ; mf:name "nt-pos" ; mf:action <../pos.nt> ] ) .
`,
		"eval.ttl": `@prefix ex: <http://example.org/> .
ex:s ex:p ( 1 ) .`,
		"eval.nt": `<http://example.org/s> <http://example.org/p> _:l .
_:l <http://www.w3.org/1999/02/22-rdf-syntax-ns#first> "1"^^<http://www.w3.org/2001/XMLSchema#integer> .
_:l <http://www.w3.org/1999/02/22-rdf-syntax-ns#rest> <http://www.w3.org/1999/02/22-rdf-syntax-ns#nil> .
`,
		"pos.ttl": `<urn:s> <urn:p> "o"@en .`,
		"neg.ttl": `<urn:s> <urn:p> "o .`,
		"pos.nt":  "<urn:s> <urn:p> <urn:o> .\n",
		"neg.nt":  "<urn:s> <urn:p> <urn:o>\n",
	}
}

func TestDocumentIRI(t *testing.T) {
	iri, err := DocumentIRI("/checkout/rdf-tests/rdf/rdf11/rdf-turtle/a.ttl")
	require.NoError(t, err)
	assert.Equal(t, "https://w3c.github.io/rdf-tests/rdf/rdf11/rdf-turtle/a.ttl", iri)

	iri, err = DocumentIRI("/tmp/a b.ttl")
	require.NoError(t, err)
	assert.Equal(t, "file:///tmp/a%20b.ttl", iri)
}

func TestParseManifest(t *testing.T) {
	path := writeSuite(t, suiteFiles())
	dir := filepath.Dir(path)

	manifest, err := ParseManifest(path)
	require.NoError(t, err)
	require.Len(t, manifest.Tests, 7)

	// included manifests come first; the include cycle back to the root is ignored
	assert.Equal(t, "nt-pos", manifest.Tests[0].Name)
	assert.Equal(t, TestTypeNTriplesPositiveSyntax, manifest.Tests[0].Type)
	assert.Equal(t, filepath.Join(dir, "pos.nt"), manifest.Tests[0].Action)

	eval := manifest.Tests[1]
	assert.Equal(t, "eval", eval.Name)
	assert.Equal(t, TestTypeTurtleEval, eval.Type)
	assert.Equal(t, filepath.Join(dir, "eval.ttl"), eval.Action)
	assert.Equal(t, filepath.Join(dir, "eval.nt"), eval.Result)
	assert.Equal(t, "collection of one", eval.Description)
	assert.True(t, eval.Approved)
	assert.False(t, manifest.Tests[2].Approved)

	assert.Equal(t, TestType("TestNTriplesPositiveC14N"), manifest.Tests[5].Type)
}

func TestParseManifest_Errors(t *testing.T) {
	_, err := ParseManifest(filepath.Join(t.TempDir(), "manifest.ttl"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := writeSuite(t, map[string]string{"manifest.ttl": `<> a <urn:x`})
	_, err = ParseManifest(path)
	assert.ErrorContains(t, err, "parsing manifest")

	path = writeSuite(t, map[string]string{"manifest.ttl": manifestPrefixes + `
<> a mf:Manifest ; mf:entries ( <#t> ) .
<#t> a rdft:TestTurtlePositiveSyntax ; mf:name "t" ; mf:action <http://elsewhere.example/t.ttl> .
`})
	_, err = ParseManifest(path)
	assert.ErrorContains(t, err, "outside the test suite")
}

func TestTestRunner_RunManifest(t *testing.T) {
	path := writeSuite(t, suiteFiles())

	var out bytes.Buffer
	runner := NewTestRunner(&out)
	require.NoError(t, runner.RunManifest(path))

	stats := runner.GetStats()
	assert.Equal(t, 7, stats.Total)
	assert.Equal(t, 5, stats.Passed)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Skipped)

	require.Len(t, stats.Errors, 1)
	assert.Equal(t, "bad-eval", stats.Errors[0].TestName)
	assert.Contains(t, stats.Errors[0].Error, "Triples mismatch: expected 3 triples, got 1 triples")

	assert.Contains(t, out.String(), "PASS: eval")
	assert.Contains(t, out.String(), "FAIL: bad-eval")
	assert.Contains(t, out.String(), "SKIP: c14n")
	assert.Contains(t, out.String(), "TEST SUMMARY")
}

func TestTestRunner_MissingFiles(t *testing.T) {
	path := writeSuite(t, map[string]string{"manifest.ttl": manifestPrefixes + `
<> a mf:Manifest ; mf:entries ( <#gone> <#no-action> ) .
<#gone> a rdft:TestTurtleNegativeSyntax ; mf:name "gone" ; mf:action <gone.ttl> .
<#no-action> a rdft:TestTurtleEval ; mf:name "no-action" .
`})

	runner := NewTestRunner(&bytes.Buffer{})
	require.NoError(t, runner.RunManifest(path))

	stats := runner.GetStats()
	assert.Equal(t, 2, stats.Failed)
	assert.Equal(t, 0, stats.Passed)
	require.Len(t, stats.Errors, 2)
	assert.Equal(t, "No action file specified", stats.Errors[1].Error)
}
