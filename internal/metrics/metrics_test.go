package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveParse("turtle", 10, 5*time.Millisecond)
	m.ObserveParse("n-triples", 3, time.Millisecond)
	m.ObserveParseError("turtle")
	m.ObserveInsert(7, 2*time.Millisecond)

	assert.Equal(t, 13.0, testutil.ToFloat64(m.triplesRead))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.triplesAdded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.filesLoaded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.parseErrors.WithLabelValues("turtle")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.parseErrors.WithLabelValues("n-triples")))
}

func TestMetrics_WriteText(t *testing.T) {
	m := New()
	m.ObserveParse("turtle", 2, time.Millisecond)

	var sb strings.Builder
	require.NoError(t, m.WriteText(&sb))

	out := sb.String()
	assert.Contains(t, out, "turtle_triples_parsed_total 2")
	assert.Contains(t, out, `turtle_parse_duration_seconds_count{format="turtle"} 1`)
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.ObserveInsert(1, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.filesLoaded))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.filesLoaded))
}
