package signals

import (
	"regexp"
	"strings"
)

// NotAvailable is the sentinel for test and coverage figures no log carried.
const NotAvailable = "N/A"

// TestSummary is the free-text capture of test runner summary lines.
type TestSummary struct {
	TestFiles string `json:"testFiles"`
	Tests     string `json:"tests"`
	Duration  string `json:"duration"`
}

// CoverageSummary holds the four coverage percentages as matched, including
// the raw counts in parentheses.
type CoverageSummary struct {
	Statements string `json:"statements"`
	Branches   string `json:"branches"`
	Functions  string `json:"functions"`
	Lines      string `json:"lines"`
}

var (
	testFilesRe    = regexp.MustCompile(`(?m)Test Files\s+(\d[^\n]*)`)
	testsRe        = regexp.MustCompile(`(?m)^\s*Tests\s+(\d[^\n]*)`)
	testDurationRe = regexp.MustCompile(`(?m)^\s*Duration\s+(\S[^\n]*)`)

	covStatementsRe = regexp.MustCompile(`Statements\s*:\s*(\d+\.?\d*%\s*\([^)]+\))`)
	covBranchesRe   = regexp.MustCompile(`Branches\s*:\s*(\d+\.?\d*%\s*\([^)]+\))`)
	covFunctionsRe  = regexp.MustCompile(`Functions\s*:\s*(\d+\.?\d*%\s*\([^)]+\))`)
	covLinesRe      = regexp.MustCompile(`Lines\s*:\s*(\d+\.?\d*%\s*\([^)]+\))`)
)

// ExtractTestResults scans one log blob for test runner and coverage
// summaries. Fields nothing matched are returned as the NotAvailable
// sentinel. The coverage block is only parsed when the blob carries the
// "Coverage summary" anchor, so stray percentage lines elsewhere in the log
// are ignored.
func ExtractTestResults(logText string) (TestSummary, CoverageSummary) {
	tests := TestSummary{
		TestFiles: NotAvailable,
		Tests:     NotAvailable,
		Duration:  NotAvailable,
	}
	coverage := CoverageSummary{
		Statements: NotAvailable,
		Branches:   NotAvailable,
		Functions:  NotAvailable,
		Lines:      NotAvailable,
	}

	if m := testFilesRe.FindStringSubmatch(logText); m != nil {
		tests.TestFiles = strings.TrimSpace(m[1])
	}
	if m := testsRe.FindStringSubmatch(logText); m != nil {
		tests.Tests = strings.TrimSpace(m[1])
	}
	if m := testDurationRe.FindStringSubmatch(logText); m != nil {
		tests.Duration = strings.TrimSpace(m[1])
	}

	if strings.Contains(logText, "Coverage summary") {
		if m := covStatementsRe.FindStringSubmatch(logText); m != nil {
			coverage.Statements = strings.TrimSpace(m[1])
		}
		if m := covBranchesRe.FindStringSubmatch(logText); m != nil {
			coverage.Branches = strings.TrimSpace(m[1])
		}
		if m := covFunctionsRe.FindStringSubmatch(logText); m != nil {
			coverage.Functions = strings.TrimSpace(m[1])
		}
		if m := covLinesRe.FindStringSubmatch(logText); m != nil {
			coverage.Lines = strings.TrimSpace(m[1])
		}
	}

	return tests, coverage
}

// HasTestData reports whether any test figure was found.
func (t TestSummary) HasTestData() bool {
	return t.TestFiles != NotAvailable || t.Tests != NotAvailable || t.Duration != NotAvailable
}

// HasCoverageData reports whether any coverage figure was found.
func (c CoverageSummary) HasCoverageData() bool {
	return c.Statements != NotAvailable || c.Branches != NotAvailable ||
		c.Functions != NotAvailable || c.Lines != NotAvailable
}
