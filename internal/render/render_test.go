package render

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"buildlens/internal/approval"
	"buildlens/internal/report"
	"buildlens/internal/resolve"
	"buildlens/internal/signals"
)

func sampleBuildReport() *report.BuildReport {
	return &report.BuildReport{
		GeneratedAt: time.Date(2025, 1, 20, 8, 30, 0, 0, time.UTC),
		Build: resolve.BuildRecord{
			ID:          "7",
			Number:      "20250115.3",
			Status:      "completed",
			Result:      "succeeded",
			StartTime:   time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
			FinishTime:  time.Date(2025, 1, 15, 10, 1, 5, 0, time.UTC),
			Duration:    "65s (1m 5s)",
			Branch:      "main",
			RequestedBy: "Dana Reyes",
			Trigger:     "feat: add retry",
			Commit:      "abc1234",
		},
		Health: signals.HealthCheckReport{
			SecurityAudit: "✅ No known vulnerabilities",
			EnvCheck:      signals.NotFound,
			Formatting:    "✅ Code style checked",
			Lint:          "✅ No lint problems",
			TypeCheck:     "✅ No type errors",
			Build:         "✅ Succeeded",
		},
		Tests: signals.TestSummary{
			TestFiles: "12 passed (12)",
			Tests:     "211 passed (211)",
			Duration:  "42.18s",
		},
		Coverage: signals.CoverageSummary{
			Statements: "46.35% ( 17478/37706 )",
			Branches:   signals.NotAvailable,
			Functions:  signals.NotAvailable,
			Lines:      signals.NotAvailable,
		},
		Artifacts: []resolve.BuildArtifact{
			{Name: "drop", Type: "Container", SizeMB: "5.0 MB"},
		},
	}
}

func TestWriteBuildReport(t *testing.T) {
	dir := t.TempDir()

	paths, err := WriteBuildReport(sampleBuildReport(), dir)
	if err != nil {
		t.Fatalf("WriteBuildReport() error = %v", err)
	}

	markdown, err := os.ReadFile(paths.Markdown)
	if err != nil {
		t.Fatalf("reading markdown: %v", err)
	}
	md := string(markdown)

	for _, want := range []string{
		"# Build Report: 20250115.3",
		"Generated: 2025-01-20 08:30:00 UTC",
		"| Duration | 65s (1m 5s) |",
		"| Lint | ✅ No lint problems |",
		"| Environment check | " + signals.NotFound + " |",
		"- Statements: 46.35% ( 17478/37706 )",
		"| drop | Container | 5.0 MB |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
	if strings.Contains(md, "{{") {
		t.Error("markdown still contains unresolved placeholders")
	}

	// The JSON sibling round-trips to the same report.
	encoded, err := os.ReadFile(paths.JSON)
	if err != nil {
		t.Fatalf("reading json: %v", err)
	}
	var decoded report.BuildReport
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("decoding json: %v", err)
	}
	if decoded.Build.Number != "20250115.3" || decoded.Health.Lint != "✅ No lint problems" {
		t.Errorf("decoded report = %+v", decoded)
	}
}

func TestWriteBuildReport_EmptyArtifacts(t *testing.T) {
	rep := sampleBuildReport()
	rep.Artifacts = nil

	paths, err := WriteBuildReport(rep, t.TempDir())
	if err != nil {
		t.Fatalf("WriteBuildReport() error = %v", err)
	}
	markdown, err := os.ReadFile(paths.Markdown)
	if err != nil {
		t.Fatalf("reading markdown: %v", err)
	}
	if !strings.Contains(string(markdown), "_No artifacts published._") {
		t.Error("markdown missing the empty-artifacts note")
	}
}

func TestWriteUATReleaseReport(t *testing.T) {
	approvedOn := time.Date(2025, 1, 18, 9, 0, 0, 0, time.UTC)
	rep := &report.UATReleaseReport{
		GeneratedAt: time.Date(2025, 1, 20, 8, 30, 0, 0, time.UTC),
		Release: resolve.ReleaseRecord{
			ID:          "301",
			Name:        "Release-14",
			Status:      "active",
			Pipeline:    "webapp-uat",
			CreatedOn:   time.Date(2025, 1, 17, 16, 0, 0, 0, time.UTC),
			CreatedBy:   "Sam Ortiz",
			BuildNumber: "20250115.3",
			Branch:      "main",
		},
		Build: sampleBuildReport().Build,
		Environments: []resolve.EnvironmentRecord{
			{Name: "UAT", Status: "succeeded", Duration: "300s (5m 0s)", Rank: 1},
		},
		Gates: []report.ReleaseGate{
			{
				Environment: "UAT",
				PreDeploy: &approval.Record{
					Status:     approval.StatusApproved,
					Approver:   "Dana Reyes",
					ModifiedOn: approvedOn,
					Comment:    "looks good",
				},
			},
		},
		Health:   sampleBuildReport().Health,
		Tests:    sampleBuildReport().Tests,
		Coverage: sampleBuildReport().Coverage,
	}

	paths, err := WriteUATReleaseReport(rep, t.TempDir())
	if err != nil {
		t.Fatalf("WriteUATReleaseReport() error = %v", err)
	}
	markdown, err := os.ReadFile(paths.Markdown)
	if err != nil {
		t.Fatalf("reading markdown: %v", err)
	}
	md := string(markdown)

	for _, want := range []string{
		"# UAT Release Report: Release-14",
		"| Pipeline | webapp-uat |",
		"### UAT",
		`- Pre-deploy: ✅ approved by Dana Reyes at 2025-01-18 09:00:00 UTC - "looks good"`,
		"- Post-deploy: ⏳ pending, no time",
		"| UAT | succeeded |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestWriteProductionReleaseReport_EmptySections(t *testing.T) {
	rep := &report.ProductionReleaseReport{
		GeneratedAt: time.Date(2025, 1, 20, 8, 30, 0, 0, time.UTC),
		Release:     resolve.ReleaseRecord{ID: "302", Name: "Release 15 (hotfix)", BuildNumber: "20250115.4"},
		Build:       sampleBuildReport().Build,
		Health:      sampleBuildReport().Health,
	}

	paths, err := WriteProductionReleaseReport(rep, t.TempDir())
	if err != nil {
		t.Fatalf("WriteProductionReleaseReport() error = %v", err)
	}

	// Unsafe name characters are collapsed in the file stem.
	if strings.ContainsAny(paths.Markdown, "() ") {
		t.Errorf("markdown path %q contains unsafe characters", paths.Markdown)
	}

	markdown, err := os.ReadFile(paths.Markdown)
	if err != nil {
		t.Fatalf("reading markdown: %v", err)
	}
	md := string(markdown)
	if !strings.Contains(md, "_No environment data available._") {
		t.Error("markdown missing the empty-environments note")
	}
	if !strings.Contains(md, "_No approval data available._") {
		t.Error("markdown missing the empty-approvals note")
	}
}
