package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aleksaelezovic/turtle/internal/encoding"
	"github.com/aleksaelezovic/turtle/internal/storage"
	"github.com/aleksaelezovic/turtle/pkg/rdf"
	"github.com/aleksaelezovic/turtle/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLoader(t *testing.T) (*Loader, *store.TripleStore) {
	t.Helper()
	s, err := storage.NewInMemoryBadgerStorage()
	require.NoError(t, err)
	ts := store.NewTripleStore(s, encoding.NewTermEncoder(), encoding.NewTermDecoder())
	t.Cleanup(func() { _ = ts.Close() })
	return New(ts, nil), ts
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFileBase(t *testing.T) {
	base, err := FileBase("/data/doc.ttl")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(base, "file:///"), base)
	assert.True(t, strings.HasSuffix(base, "/data/doc.ttl"), base)
}

func TestParseFile_RelativeIRIsUseFileBase(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.ttl", `<a> <b> <#c> .`)

	triples, format, err := ParseFile(path, "")
	require.NoError(t, err)
	assert.Equal(t, rdf.FormatTurtle, format)

	base, err := FileBase(path)
	require.NoError(t, err)
	dirIRI := base[:strings.LastIndex(base, "/")+1]
	want := rdf.MustTriple(rdf.MustIRI(dirIRI+"a"), rdf.MustIRI(dirIRI+"b"), rdf.MustIRI(base+"#c"))
	assert.Equal(t, []rdf.Triple{want}, triples.Triples())
}

func TestLoader_LoadFiles(t *testing.T) {
	dir := t.TempDir()
	ttl := writeFile(t, dir, "people.ttl", `@prefix ex: <http://example.org/> .
ex:alice ex:knows ex:bob , [ ex:name "Carol" ] .`)
	nt := writeFile(t, dir, "more.nt", `<http://example.org/alice> <http://example.org/knows> <http://example.org/bob> .
<http://example.org/bob> <http://example.org/knows> <http://example.org/alice> .
`)

	l, ts := newTestLoader(t)
	var lines []string
	l.Progress = func(format string, args ...any) {
		lines = append(lines, format)
	}

	results, err := l.LoadFiles([]string{ttl, nt}, "")
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, Result{Path: ttl, Format: rdf.FormatTurtle, Triples: 3, Added: 3}, results[0])
	assert.Equal(t, Result{Path: nt, Format: rdf.FormatNTriples, Triples: 2, Added: 1}, results[1])
	assert.Len(t, lines, 2)

	count, err := ts.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	var sb strings.Builder
	require.NoError(t, l.Metrics().WriteText(&sb))
	assert.Contains(t, sb.String(), "turtle_triples_parsed_total 5")
	assert.Contains(t, sb.String(), "turtle_triples_added_total 4")
}

func TestLoader_Errors(t *testing.T) {
	dir := t.TempDir()
	l, ts := newTestLoader(t)

	_, err := l.LoadFile(writeFile(t, dir, "doc.rdf", "<x/>"), "")
	assert.ErrorContains(t, err, "cannot detect the format")

	_, err = l.LoadFile(filepath.Join(dir, "missing.ttl"), "")
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := writeFile(t, dir, "bad.ttl", `<urn:s> <urn:p> "unterminated`)
	_, err = l.LoadFile(bad, "")
	assert.ErrorIs(t, err, rdf.ErrUnterminatedString)

	// a failed document stores nothing
	good := writeFile(t, dir, "good.nt", "<urn:s> <urn:p> <urn:o> .\n")
	results, err := l.LoadFiles([]string{good, bad, good}, "")
	assert.Error(t, err)
	assert.Len(t, results, 1)

	count, err := ts.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
