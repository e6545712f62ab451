// Package signals mines free-text build logs for quality-gate indicators.
//
// Extraction is best-effort: each check is an independent pattern rule that
// converts one log blob into a partial result, and partial results from
// multiple logs are merged until every field is filled or the candidates run
// out. A field nothing matched stays at its "not found" sentinel; it is
// never defaulted to success.
package signals

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// NotFound is the sentinel value for a health check no log mentioned.
const NotFound = "🔍 Not found in logs"

// HealthCheckReport aggregates the six quality-gate signals mined from logs.
type HealthCheckReport struct {
	SecurityAudit string `json:"securityAudit"`
	EnvCheck      string `json:"envCheck"`
	Formatting    string `json:"formatting"`
	Lint          string `json:"lint"`
	TypeCheck     string `json:"typeCheck"`
	Build         string `json:"build"`
}

// NewHealthCheckReport returns a report with every field at the sentinel.
func NewHealthCheckReport() HealthCheckReport {
	return HealthCheckReport{
		SecurityAudit: NotFound,
		EnvCheck:      NotFound,
		Formatting:    NotFound,
		Lint:          NotFound,
		TypeCheck:     NotFound,
		Build:         NotFound,
	}
}

// Complete reports whether every field has moved off the sentinel, meaning
// further log scanning cannot add anything.
func (h HealthCheckReport) Complete() bool {
	return h.SecurityAudit != NotFound &&
		h.EnvCheck != NotFound &&
		h.Formatting != NotFound &&
		h.Lint != NotFound &&
		h.TypeCheck != NotFound &&
		h.Build != NotFound
}

// Patch is the partial result of scanning one log blob. Empty fields mean
// the log said nothing about that check.
type Patch struct {
	SecurityAudit string
	EnvCheck      string
	Formatting    string
	Lint          string
	TypeCheck     string
	Build         string
}

// IsEmpty reports whether the scan matched nothing at all.
func (p Patch) IsEmpty() bool {
	return p == Patch{}
}

// Merge applies a patch to the report. Non-empty patch fields overwrite the
// current value, so when several logs mention the same check the last one
// scanned wins.
func (h *HealthCheckReport) Merge(p Patch) {
	if p.SecurityAudit != "" {
		h.SecurityAudit = p.SecurityAudit
	}
	if p.EnvCheck != "" {
		h.EnvCheck = p.EnvCheck
	}
	if p.Formatting != "" {
		h.Formatting = p.Formatting
	}
	if p.Lint != "" {
		h.Lint = p.Lint
	}
	if p.TypeCheck != "" {
		h.TypeCheck = p.TypeCheck
	}
	if p.Build != "" {
		h.Build = p.Build
	}
}

var (
	vulnCountRe      = regexp.MustCompile(`(\d+) vulnerabilit(?:y|ies)`)
	lintErrorCountRe = regexp.MustCompile(`(\d+) errors?`)
	lintWarnCountRe  = regexp.MustCompile(`(\d+) warnings?`)
	tscFoundErrorsRe = regexp.MustCompile(`Found (\d+) errors?`)
)

// Scan extracts whatever quality-gate signals one log blob contains.
// It is a pure function: the same input always yields the same patch.
func Scan(logText string) Patch {
	return Patch{
		SecurityAudit: scanSecurityAudit(logText),
		EnvCheck:      scanEnvCheck(logText),
		Formatting:    scanFormatting(logText),
		Lint:          scanLint(logText),
		TypeCheck:     scanTypeCheck(logText),
		Build:         scanBuild(logText),
	}
}

func scanSecurityAudit(logText string) string {
	if !strings.Contains(logText, "npm audit") {
		return ""
	}
	if strings.Contains(logText, "found 0 vulnerabilities") {
		return "✅ No known vulnerabilities"
	}
	if m := vulnCountRe.FindStringSubmatch(logText); m != nil {
		return fmt.Sprintf("⚠️ %s vulnerabilities found", m[1])
	}
	return "⚠️ Audit ran, result unclear"
}

func scanEnvCheck(logText string) string {
	lower := strings.ToLower(logText)
	if !strings.Contains(lower, "env:check") && !strings.Contains(lower, "environment check") {
		return ""
	}
	if strings.Contains(lower, "missing") || strings.Contains(lower, "error") {
		return "❌ Environment check failed"
	}
	return "✅ Environment variables verified"
}

func scanFormatting(logText string) string {
	if !strings.Contains(logText, "prettier") {
		return ""
	}
	allMatched := strings.Contains(logText, "All matched files use Prettier code style")
	if strings.Contains(strings.ToLower(logText), "error") && !allMatched {
		return "❌ Formatting issues found"
	}
	return "✅ Code style checked"
}

func scanLint(logText string) string {
	if !strings.Contains(logText, "eslint") {
		return ""
	}
	if strings.Contains(logText, "0 errors, 0 warnings") {
		return "✅ No lint problems"
	}
	lower := strings.ToLower(logText)
	if !strings.Contains(lower, "error") && !strings.Contains(lower, "warning") {
		return "✅ No lint problems"
	}

	// Counts are matched independently; a log may report only one of them.
	errors, warnings := 0, 0
	if m := lintErrorCountRe.FindStringSubmatch(logText); m != nil {
		errors, _ = strconv.Atoi(m[1])
	}
	if m := lintWarnCountRe.FindStringSubmatch(logText); m != nil {
		warnings, _ = strconv.Atoi(m[1])
	}
	switch {
	case errors > 0:
		return fmt.Sprintf("❌ %d errors, %d warnings", errors, warnings)
	case warnings > 0:
		return fmt.Sprintf("⚠️ %d errors, %d warnings", errors, warnings)
	}
	return "⚠️ Lint ran, result unclear"
}

func scanTypeCheck(logText string) string {
	lower := strings.ToLower(logText)
	if !strings.Contains(lower, "tsc") && !strings.Contains(lower, "typecheck") && !strings.Contains(lower, "typescript") {
		return ""
	}
	if strings.Contains(logText, "Found 0 errors") {
		return "✅ No type errors"
	}
	if m := tscFoundErrorsRe.FindStringSubmatch(logText); m != nil {
		return fmt.Sprintf("❌ %s type errors", m[1])
	}
	if strings.Contains(lower, "error") && !strings.Contains(lower, "0 error") {
		return "❌ Type errors reported"
	}
	if strings.Contains(logText, "Compilation complete") || strings.Contains(lower, "compiled successfully") {
		return "✅ No type errors"
	}
	// The type checker ran but the outcome could not be classified.
	return "⚠️ Type check ran, result unclear"
}

func scanBuild(logText string) string {
	if strings.Contains(logText, "Build succeeded") {
		return "✅ Succeeded"
	}
	if strings.Contains(logText, "Build failed") {
		return "❌ Failed"
	}
	return ""
}

// ApplyBuildResult overrides the log-derived build field with the provider's
// authoritative build result. When the build succeeded, a failure glyph on
// the type-check field is downgraded to a warning: a build that compiled
// cannot have hard-failed type checking, so the log evidence loses.
func (h *HealthCheckReport) ApplyBuildResult(result string) {
	switch result {
	case "succeeded":
		h.Build = "✅ Succeeded"
	case "failed":
		h.Build = "❌ Failed"
	case "canceled":
		h.Build = "⏹️ Canceled"
	case "partiallySucceeded":
		h.Build = "⚠️ Partially succeeded"
	default:
		return
	}

	if result == "succeeded" && strings.HasPrefix(h.TypeCheck, "❌") {
		h.TypeCheck = "⚠️" + strings.TrimPrefix(h.TypeCheck, "❌")
	}
}
