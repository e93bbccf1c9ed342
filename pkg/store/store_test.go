package store_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleksaelezovic/turtle/internal/encoding"
	"github.com/aleksaelezovic/turtle/internal/storage"
	"github.com/aleksaelezovic/turtle/pkg/rdf"
	"github.com/aleksaelezovic/turtle/pkg/store"
)

func newTestStore(t *testing.T) *store.TripleStore {
	t.Helper()
	s, err := storage.NewInMemoryBadgerStorage()
	require.NoError(t, err)
	ts := store.NewTripleStore(s, encoding.NewTermEncoder(), encoding.NewTermDecoder())
	t.Cleanup(func() { _ = ts.Close() })
	return ts
}

var (
	alice = rdf.MustIRI("http://example.org/alice")
	bob   = rdf.MustIRI("http://example.org/bob")
	knows = rdf.MustIRI("http://example.org/knows")
	name  = rdf.MustIRI("http://example.org/name")
	age   = rdf.MustIRI("http://example.org/age")
	node  = rdf.MustBlank("b0")
)

func fixture() *rdf.TripleSet {
	long := strings.Repeat("a long description ", 4)
	return rdf.NewTripleSet(
		rdf.MustTriple(alice, knows, bob),
		rdf.MustTriple(alice, knows, node),
		rdf.MustTriple(alice, name, rdf.NewString("Alice")),
		rdf.MustTriple(alice, age, rdf.MustTypedString("42", rdf.XSDInteger)),
		rdf.MustTriple(bob, name, rdf.MustLangString("Bob", "en")),
		rdf.MustTriple(bob, knows, alice),
		rdf.MustTriple(node, name, rdf.NewString(long)),
	)
}

func lines(set *rdf.TripleSet) []string {
	return strings.Split(strings.TrimSuffix(set.String(), "\n"), "\n")
}

func TestTripleStore_InsertTripleSet(t *testing.T) {
	ts := newTestStore(t)

	added, err := ts.InsertTripleSet(fixture())
	require.NoError(t, err)
	assert.Equal(t, 7, added)

	added, err = ts.InsertTripleSet(fixture())
	require.NoError(t, err)
	assert.Equal(t, 0, added)

	count, err := ts.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)

	all, err := ts.MatchAll(&store.Pattern{})
	require.NoError(t, err)
	if diff := cmp.Diff(lines(fixture()), lines(all)); diff != "" {
		t.Errorf("stored triples mismatch (-want +got):\n%s", diff)
	}
}

func TestTripleStore_InsertDeleteContains(t *testing.T) {
	ts := newTestStore(t)
	triple := rdf.MustTriple(alice, knows, bob)

	ok, err := ts.ContainsTriple(triple)
	require.NoError(t, err)
	assert.False(t, ok)

	added, err := ts.InsertTriple(triple)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = ts.InsertTriple(triple)
	require.NoError(t, err)
	assert.False(t, added)

	ok, err = ts.ContainsTriple(triple)
	require.NoError(t, err)
	assert.True(t, ok)

	deleted, err := ts.DeleteTriple(triple)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = ts.DeleteTriple(triple)
	require.NoError(t, err)
	assert.False(t, deleted)

	count, err := ts.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestTripleStore_InsertInvalidTriple(t *testing.T) {
	ts := newTestStore(t)

	_, err := ts.InsertTriple(rdf.Triple{Subject: rdf.NewString("x"), Predicate: knows, Object: bob})
	assert.ErrorIs(t, err, rdf.ErrInvalidTriple)

	count, err := ts.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestTripleStore_DeleteTripleSet(t *testing.T) {
	ts := newTestStore(t)
	_, err := ts.InsertTripleSet(fixture())
	require.NoError(t, err)

	deleted, err := ts.DeleteTripleSet(rdf.NewTripleSet(
		rdf.MustTriple(bob, knows, alice),
		rdf.MustTriple(bob, knows, bob),
	))
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	count, err := ts.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(6), count)
}

func TestTripleStore_Match(t *testing.T) {
	ts := newTestStore(t)
	_, err := ts.InsertTripleSet(fixture())
	require.NoError(t, err)

	tests := []struct {
		name    string
		pattern store.Pattern
		want    int
	}{
		{"wildcard", store.Pattern{}, 7},
		{"subject", store.Pattern{Subject: alice}, 4},
		{"predicate", store.Pattern{Predicate: knows}, 3},
		{"object", store.Pattern{Object: alice}, 1},
		{"subject and predicate", store.Pattern{Subject: alice, Predicate: knows}, 2},
		{"predicate and object", store.Pattern{Predicate: name, Object: rdf.MustLangString("Bob", "en")}, 1},
		{"object and subject", store.Pattern{Subject: node, Object: rdf.NewString(strings.Repeat("a long description ", 4))}, 1},
		{"fully bound", store.Pattern{Subject: alice, Predicate: age, Object: rdf.MustTypedString("42", rdf.XSDInteger)}, 1},
		{"variables", store.Pattern{Subject: store.NewVariable("s"), Predicate: knows, Object: store.NewVariable("o")}, 3},
		{"no match", store.Pattern{Subject: bob, Predicate: age}, 0},
		{"literal predicate", store.Pattern{Predicate: rdf.NewString("knows")}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ts.MatchAll(&tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Len(), got.String())
			got.Each(func(triple rdf.Triple) {
				for _, bound := range []struct{ want, got any }{
					{tt.pattern.Subject, triple.Subject},
					{tt.pattern.Predicate, triple.Predicate},
					{tt.pattern.Object, triple.Object},
				} {
					if term, ok := bound.want.(rdf.Term); ok {
						assert.Equal(t, term, bound.got)
					}
				}
			})
		})
	}
}

func TestTripleStore_MatchBadPattern(t *testing.T) {
	ts := newTestStore(t)

	_, err := ts.Match(&store.Pattern{Subject: "http://example.org/alice"})
	assert.ErrorContains(t, err, "not a term or variable")
}

func TestVariable_String(t *testing.T) {
	assert.Equal(t, "?x", store.NewVariable("x").String())
}
