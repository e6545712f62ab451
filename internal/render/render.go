// Package render serializes assembled reports into sibling files: a
// structured JSON document and a narrative Markdown document built by
// placeholder substitution.
package render

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"buildlens/internal/approval"
	"buildlens/internal/report"
	"buildlens/internal/resolve"
	"buildlens/internal/signals"
	"buildlens/pkg/templates"
)

const timeLayout = "2006-01-02 15:04:05 UTC"

// Paths names the two files one report was written to.
type Paths struct {
	Markdown string
	JSON     string
}

// WriteBuildReport writes the build report pair into dir.
func WriteBuildReport(rep *report.BuildReport, dir string) (*Paths, error) {
	data := templates.TemplateData{
		"GENERATED_AT": formatTime(rep.GeneratedAt),
		"ARTIFACTS":    artifactsBlock(rep.Artifacts),
	}
	addBuildFields(data, rep.Build)
	addHealthFields(data, rep.Health, rep.Tests, rep.Coverage)

	markdown, err := templates.Render(templates.BuildReport, data)
	if err != nil {
		return nil, err
	}

	return writePair(dir, "build-"+rep.Build.Number, markdown, rep)
}

// WriteUATReleaseReport writes the UAT release report pair into dir.
func WriteUATReleaseReport(rep *report.UATReleaseReport, dir string) (*Paths, error) {
	data := releaseData(rep.Release, rep.Build, rep.Environments, rep.Gates, rep.GeneratedAt)
	addHealthFields(data, rep.Health, rep.Tests, rep.Coverage)

	markdown, err := templates.Render(templates.UATReleaseReport, data)
	if err != nil {
		return nil, err
	}

	return writePair(dir, "uat-"+rep.Release.Name, markdown, rep)
}

// WriteProductionReleaseReport writes the production release report pair
// into dir.
func WriteProductionReleaseReport(rep *report.ProductionReleaseReport, dir string) (*Paths, error) {
	data := releaseData(rep.Release, rep.Build, rep.Environments, rep.Gates, rep.GeneratedAt)
	addHealthFields(data, rep.Health, rep.Tests, rep.Coverage)

	markdown, err := templates.Render(templates.ProdReleaseReport, data)
	if err != nil {
		return nil, err
	}

	return writePair(dir, "prod-"+rep.Release.Name, markdown, rep)
}

func releaseData(
	release resolve.ReleaseRecord,
	build resolve.BuildRecord,
	environments []resolve.EnvironmentRecord,
	gates []report.ReleaseGate,
	generatedAt time.Time,
) templates.TemplateData {
	data := templates.TemplateData{
		"GENERATED_AT":   formatTime(generatedAt),
		"RELEASE_NAME":   release.Name,
		"RELEASE_ID":     release.ID,
		"RELEASE_STATUS": release.Status,
		"PIPELINE":       release.Pipeline,
		"CREATED_AT":     formatTime(release.CreatedOn),
		"CREATED_BY":     release.CreatedBy,
		"DESCRIPTION":    orDash(release.Description),
		"BUILD_NUMBER":   release.BuildNumber,
		"BRANCH":         orDash(release.Branch),
		"ENVIRONMENTS":   environmentsBlock(environments),
		"APPROVALS":      gatesBlock(gates),
	}
	addBuildFields(data, build)
	return data
}

func addBuildFields(data templates.TemplateData, build resolve.BuildRecord) {
	data["BUILD_NUMBER"] = build.Number
	data["BUILD_ID"] = build.ID
	data["STATUS"] = build.Status
	data["RESULT"] = build.Result
	data["BRANCH"] = orDash(build.Branch)
	data["PULL_REQUEST"] = orDash(build.PullRequest)
	data["COMMIT"] = orDash(build.Commit)
	data["REQUESTED_BY"] = orDash(build.RequestedBy)
	data["TRIGGER"] = orDash(build.Trigger)
	data["STARTED_AT"] = formatTime(build.StartTime)
	data["FINISHED_AT"] = formatTime(build.FinishTime)
	data["DURATION"] = build.Duration
}

func addHealthFields(data templates.TemplateData, health signals.HealthCheckReport, tests signals.TestSummary, coverage signals.CoverageSummary) {
	data["SECURITY_AUDIT"] = health.SecurityAudit
	data["ENV_CHECK"] = health.EnvCheck
	data["FORMATTING"] = health.Formatting
	data["LINT"] = health.Lint
	data["TYPE_CHECK"] = health.TypeCheck
	data["BUILD_OUTCOME"] = health.Build
	data["TEST_FILES"] = tests.TestFiles
	data["TESTS"] = tests.Tests
	data["TEST_DURATION"] = tests.Duration
	data["COV_STATEMENTS"] = coverage.Statements
	data["COV_BRANCHES"] = coverage.Branches
	data["COV_FUNCTIONS"] = coverage.Functions
	data["COV_LINES"] = coverage.Lines
}

func artifactsBlock(artifacts []resolve.BuildArtifact) string {
	if len(artifacts) == 0 {
		return "_No artifacts published._"
	}
	var b strings.Builder
	b.WriteString("| Name | Type | Size |\n| --- | --- | --- |\n")
	for _, a := range artifacts {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", a.Name, a.Type, orDash(a.SizeMB))
	}
	return strings.TrimRight(b.String(), "\n")
}

func environmentsBlock(environments []resolve.EnvironmentRecord) string {
	if len(environments) == 0 {
		return "_No environment data available._"
	}
	var b strings.Builder
	b.WriteString("| Environment | Status | Started | Completed | Duration |\n| --- | --- | --- | --- | --- |\n")
	for _, env := range environments {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			env.Name, env.Status, formatTime(env.StartedOn), formatTime(env.CompletedOn), env.Duration)
	}
	return strings.TrimRight(b.String(), "\n")
}

func gatesBlock(gates []report.ReleaseGate) string {
	if len(gates) == 0 {
		return "_No approval data available._"
	}
	var b strings.Builder
	for _, gate := range gates {
		fmt.Fprintf(&b, "### %s\n\n", gate.Environment)
		fmt.Fprintf(&b, "- Pre-deploy: %s\n", approvalLine(gate.PreDeploy))
		fmt.Fprintf(&b, "- Post-deploy: %s\n\n", approvalLine(gate.PostDeploy))
	}
	return strings.TrimRight(b.String(), "\n")
}

func approvalLine(record *approval.Record) string {
	if record == nil {
		return "⏳ pending, no time"
	}
	line := fmt.Sprintf("%s %s by %s at %s",
		approval.StatusGlyph(record.Status), record.Status, record.Approver, formatTime(record.ModifiedOn))
	if record.Comment != "" {
		line += fmt.Sprintf(" - %q", record.Comment)
	}
	return line
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.UTC().Format(timeLayout)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// writePair writes <stem>-report.md and <stem>-report.json into dir,
// creating the directory if needed.
func writePair(dir, stem, markdown string, structured interface{}) (*Paths, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	stem = unsafeFileChars.ReplaceAllString(stem, "-")
	paths := &Paths{
		Markdown: filepath.Join(dir, stem+"-report.md"),
		JSON:     filepath.Join(dir, stem+"-report.json"),
	}

	if err := os.WriteFile(paths.Markdown, []byte(markdown), 0644); err != nil {
		return nil, fmt.Errorf("failed to write markdown report: %w", err)
	}

	encoded, err := json.MarshalIndent(structured, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(paths.JSON, append(encoded, '\n'), 0644); err != nil {
		return nil, fmt.Errorf("failed to write json report: %w", err)
	}

	return paths, nil
}
