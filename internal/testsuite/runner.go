package testsuite

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"

	"github.com/aleksaelezovic/turtle/pkg/rdf"
)

// TestRunner runs W3C Turtle and N-Triples test suite manifests
type TestRunner struct {
	out   io.Writer
	stats *TestStats
}

// TestStats tracks test execution statistics
type TestStats struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int
	Errors  []TestError
}

// TestError represents a test failure
type TestError struct {
	TestName string
	Type     TestType
	Error    string
}

// TestResult represents the result of running a test
type TestResult int

const (
	TestResultPass TestResult = iota
	TestResultFail
	TestResultSkip
	TestResultError
)

var (
	passLabel  = color.New(color.FgGreen, color.Bold).SprintFunc()
	failLabel  = color.New(color.FgRed, color.Bold).SprintFunc()
	skipLabel  = color.New(color.FgYellow).SprintFunc()
	errorLabel = color.New(color.FgMagenta, color.Bold).SprintFunc()
)

// NewTestRunner creates a runner reporting to out. A nil out means stdout.
func NewTestRunner(out io.Writer) *TestRunner {
	if out == nil {
		out = os.Stdout
	}
	return &TestRunner{out: out, stats: &TestStats{}}
}

// GetStats returns the current test statistics
func (r *TestRunner) GetStats() *TestStats {
	return r.stats
}

// RunManifest runs all tests in a manifest file
func (r *TestRunner) RunManifest(manifestPath string) error {
	manifest, err := ParseManifest(manifestPath)
	if err != nil {
		return errors.Wrap(err, "failed to parse manifest")
	}

	fmt.Fprintf(r.out, "\nRunning manifest: %s\n", manifestPath)
	fmt.Fprintf(r.out, "   Found %d tests\n\n", len(manifest.Tests))

	for i := range manifest.Tests {
		test := &manifest.Tests[i]
		r.stats.Total++

		switch r.runTest(test) {
		case TestResultPass:
			r.stats.Passed++
			fmt.Fprintf(r.out, "  %s: %s\n", passLabel("PASS"), test.Name)
		case TestResultFail:
			r.stats.Failed++
			fmt.Fprintf(r.out, "  %s: %s\n", failLabel("FAIL"), test.Name)
		case TestResultSkip:
			r.stats.Skipped++
			fmt.Fprintf(r.out, "  %s: %s (type: %s)\n", skipLabel("SKIP"), test.Name, test.Type)
		case TestResultError:
			r.stats.Failed++
			fmt.Fprintf(r.out, "  %s: %s\n", errorLabel("ERROR"), test.Name)
		}
	}

	r.printSummary()
	return nil
}

func (r *TestRunner) runTest(test *TestCase) TestResult {
	switch test.Type {
	case TestTypeTurtleEval:
		return r.runEvalTest(test)
	case TestTypeTurtlePositiveSyntax:
		return r.runPositiveSyntaxTest(test, rdf.FormatTurtle)
	case TestTypeTurtleNegativeSyntax, TestTypeTurtleNegativeEval:
		return r.runNegativeSyntaxTest(test, rdf.FormatTurtle)
	case TestTypeNTriplesPositiveSyntax:
		return r.runPositiveSyntaxTest(test, rdf.FormatNTriples)
	case TestTypeNTriplesNegativeSyntax:
		return r.runNegativeSyntaxTest(test, rdf.FormatNTriples)
	default:
		return TestResultSkip
	}
}

// runPositiveSyntaxTest verifies a document parses successfully
func (r *TestRunner) runPositiveSyntaxTest(test *TestCase, format rdf.Format) TestResult {
	if test.Action == "" {
		r.recordError(test, "No action file specified")
		return TestResultError
	}
	if _, err := parseDocument(test.Action, format); err != nil {
		if os.IsNotExist(errors.Cause(err)) {
			r.recordError(test, err.Error())
			return TestResultError
		}
		r.recordError(test, fmt.Sprintf("Parser error: %v", err))
		return TestResultFail
	}
	return TestResultPass
}

// runNegativeSyntaxTest verifies a document fails to parse
func (r *TestRunner) runNegativeSyntaxTest(test *TestCase, format rdf.Format) TestResult {
	if test.Action == "" {
		r.recordError(test, "No action file specified")
		return TestResultError
	}
	_, err := parseDocument(test.Action, format)
	if err == nil {
		r.recordError(test, "Data parsed successfully but should have failed")
		return TestResultFail
	}
	if os.IsNotExist(errors.Cause(err)) {
		r.recordError(test, err.Error())
		return TestResultError
	}
	return TestResultPass
}

// runEvalTest parses the action and compares it with the expected
// N-Triples, up to blank node renaming
func (r *TestRunner) runEvalTest(test *TestCase) TestResult {
	if test.Action == "" {
		r.recordError(test, "No action file specified")
		return TestResultError
	}
	if test.Result == "" {
		r.recordError(test, "No result file specified")
		return TestResultError
	}

	actual, err := parseDocument(test.Action, rdf.FormatTurtle)
	if err != nil {
		if os.IsNotExist(errors.Cause(err)) {
			r.recordError(test, err.Error())
			return TestResultError
		}
		r.recordError(test, fmt.Sprintf("Parser error: %v", err))
		return TestResultFail
	}
	expected, err := parseDocument(test.Result, rdf.FormatNTriples)
	if err != nil {
		r.recordError(test, fmt.Sprintf("Failed to parse expected results: %v", err))
		return TestResultError
	}

	if !rdf.AreGraphsIsomorphic(expected, actual) {
		r.recordError(test, fmt.Sprintf("Triples mismatch: expected %d triples, got %d triples (-expected +actual):\n%s",
			expected.Len(), actual.Len(), cmp.Diff(lines(expected), lines(actual))))
		return TestResultFail
	}
	return TestResultPass
}

// parseDocument parses a test file with its W3C document IRI as base
func parseDocument(path string, format rdf.Format) (*rdf.TripleSet, error) {
	base, err := DocumentIRI(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path) // #nosec G304 - test suite legitimately reads test data files
	if err != nil {
		return nil, errors.Wrap(err, "failed to read data file")
	}
	defer file.Close()

	parser, err := rdf.NewParserForFormat(format, file, base)
	if err != nil {
		return nil, err
	}
	return parser.Parse()
}

func lines(set *rdf.TripleSet) []string {
	triples := set.Triples()
	out := make([]string, len(triples))
	for i, t := range triples {
		out[i] = t.String()
	}
	return out
}

func (r *TestRunner) recordError(test *TestCase, errMsg string) {
	r.stats.Errors = append(r.stats.Errors, TestError{
		TestName: test.Name,
		Type:     test.Type,
		Error:    errMsg,
	})
}

// printSummary prints test execution summary
func (r *TestRunner) printSummary() {
	rule := strings.Repeat("━", 60)
	fmt.Fprintln(r.out, "\n"+rule)
	fmt.Fprintln(r.out, "TEST SUMMARY")
	fmt.Fprintln(r.out, rule)
	fmt.Fprintf(r.out, "Total:   %d\n", r.stats.Total)
	if r.stats.Total > 0 {
		fmt.Fprintf(r.out, "Passed:  %d (%.1f%%)\n", r.stats.Passed,
			float64(r.stats.Passed)/float64(r.stats.Total)*100)
	}
	fmt.Fprintf(r.out, "Failed:  %d\n", r.stats.Failed)
	fmt.Fprintf(r.out, "Skipped: %d\n", r.stats.Skipped)

	if len(r.stats.Errors) > 0 {
		fmt.Fprintln(r.out, "\n"+failLabel("ERRORS:"))
		for i, err := range r.stats.Errors {
			if i >= 10 {
				fmt.Fprintf(r.out, "   ... and %d more\n", len(r.stats.Errors)-10)
				break
			}
			fmt.Fprintf(r.out, "   • %s: %s\n", err.TestName, err.Error)
		}
	}

	fmt.Fprintln(r.out, rule)
}
