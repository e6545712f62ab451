package report

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"buildlens/internal/approval"
	"buildlens/internal/azure"
	"buildlens/internal/resolve"
	"buildlens/internal/signals"
)

var generatedAt = time.Date(2025, 1, 20, 8, 30, 0, 0, time.UTC)

type fakeBuildLookup struct {
	byNumber map[string]*resolve.BuildRecord
	byID     map[string]*resolve.BuildRecord

	artifacts    []resolve.BuildArtifact
	artifactsErr error

	numberCalls []string
	idCalls     []string
}

func (f *fakeBuildLookup) ResolveByNumber(_ context.Context, number string) (*resolve.BuildRecord, error) {
	f.numberCalls = append(f.numberCalls, number)
	if b, ok := f.byNumber[number]; ok {
		return b, nil
	}
	return nil, &resolve.NotFoundError{Kind: "build", Key: number}
}

func (f *fakeBuildLookup) ResolveByID(_ context.Context, id string) (*resolve.BuildRecord, error) {
	f.idCalls = append(f.idCalls, id)
	if b, ok := f.byID[id]; ok {
		return b, nil
	}
	return nil, &resolve.NotFoundError{Kind: "build", Key: id}
}

func (f *fakeBuildLookup) Artifacts(_ context.Context, _ string) ([]resolve.BuildArtifact, error) {
	return f.artifacts, f.artifactsErr
}

type fakeReleaseLookup struct {
	release    *resolve.ReleaseRecord
	releaseErr error

	environments []resolve.EnvironmentRecord
	envErr       error

	approvals    []approval.Record
	approvalsErr error
}

func (f *fakeReleaseLookup) ResolveByName(_ context.Context, _ string) (*resolve.ReleaseRecord, error) {
	return f.release, f.releaseErr
}

func (f *fakeReleaseLookup) Environments(_ context.Context, _ string) ([]resolve.EnvironmentRecord, error) {
	return f.environments, f.envErr
}

func (f *fakeReleaseLookup) Approvals(_ context.Context, _ string) ([]approval.Record, error) {
	return f.approvals, f.approvalsErr
}

type fakeLogSource struct {
	timeline    *azure.Timeline
	timelineErr error
	logs        map[int]string
	logErrs     map[int]error
}

func (f *fakeLogSource) GetBuildTimeline(_ context.Context, _ string) (*azure.Timeline, error) {
	return f.timeline, f.timelineErr
}

func (f *fakeLogSource) GetLogContent(_ context.Context, _ string, logID int) (string, error) {
	if err, ok := f.logErrs[logID]; ok {
		return "", err
	}
	return f.logs[logID], nil
}

func timelineWithLogs(ids ...int) *azure.Timeline {
	t := &azure.Timeline{}
	for _, id := range ids {
		t.Records = append(t.Records, azure.TimelineRecord{Log: &azure.LogRef{ID: id}})
	}
	// A record without a log blob must be skipped, not fetched.
	t.Records = append(t.Records, azure.TimelineRecord{Name: "Finalize"})
	return t
}

const lintLog = `> eslint src/
0 errors, 0 warnings
`

const vitestLog = ` RUN  v1.6.0

 Test Files  12 passed (12)
      Tests  211 passed (211)
   Duration  42.18s

Coverage summary
Statements   : 46.35% ( 17478/37706 )
Branches     : 80.11% ( 801/1000 )
Functions    : 50% ( 100/200 )
Lines        : 46.35% ( 17478/37706 )
`

func succeededBuild(number string) *resolve.BuildRecord {
	return &resolve.BuildRecord{
		ID:     "7",
		Number: number,
		Status: "completed",
		Result: "succeeded",
		Branch: "main",
	}
}

func TestGenerateBuildReport(t *testing.T) {
	builds := &fakeBuildLookup{
		byNumber:  map[string]*resolve.BuildRecord{"20250101.1": succeededBuild("20250101.1")},
		artifacts: []resolve.BuildArtifact{{Name: "drop", Type: "Container", SizeMB: "5.0 MB"}},
	}
	logs := &fakeLogSource{
		timeline: timelineWithLogs(1, 2, 3),
		logs: map[int]string{
			1: "Starting job agent...\nnothing of interest here\n",
			2: lintLog,
			3: vitestLog,
		},
	}
	g := NewGenerator(builds, &fakeReleaseLookup{}, logs, nil).WithClock(func() time.Time { return generatedAt })

	rep, err := g.GenerateBuildReport(context.Background(), "20250101.1")
	if err != nil {
		t.Fatalf("GenerateBuildReport() error = %v", err)
	}

	if !rep.GeneratedAt.Equal(generatedAt) {
		t.Errorf("GeneratedAt = %v, want the injected clock", rep.GeneratedAt)
	}
	if rep.Build.Number != "20250101.1" {
		t.Errorf("Build.Number = %s, want 20250101.1", rep.Build.Number)
	}
	if rep.Health.Lint != "✅ No lint problems" {
		t.Errorf("Health.Lint = %q, want lint success", rep.Health.Lint)
	}
	if rep.Health.Build != "✅ Succeeded" {
		t.Errorf("Health.Build = %q, want the provider verdict", rep.Health.Build)
	}

	// Checks no log mentioned keep the sentinel instead of claiming success.
	for name, got := range map[string]string{
		"SecurityAudit": rep.Health.SecurityAudit,
		"EnvCheck":      rep.Health.EnvCheck,
		"Formatting":    rep.Health.Formatting,
		"TypeCheck":     rep.Health.TypeCheck,
	} {
		if got != signals.NotFound {
			t.Errorf("Health.%s = %q, want the not-found sentinel", name, got)
		}
	}

	if rep.Tests.Tests != "211 passed (211)" {
		t.Errorf("Tests.Tests = %q, want the vitest summary", rep.Tests.Tests)
	}
	if rep.Coverage.Statements != "46.35% ( 17478/37706 )" {
		t.Errorf("Coverage.Statements = %q", rep.Coverage.Statements)
	}
	if len(rep.Artifacts) != 1 || rep.Artifacts[0].Name != "drop" {
		t.Errorf("Artifacts = %+v, want the drop artifact", rep.Artifacts)
	}
}

func TestGenerateBuildReport_NumericIDPath(t *testing.T) {
	builds := &fakeBuildLookup{
		byID: map[string]*resolve.BuildRecord{"4711": succeededBuild("20250101.2")},
	}
	logs := &fakeLogSource{timeline: &azure.Timeline{}}
	g := NewGenerator(builds, &fakeReleaseLookup{}, logs, nil)

	rep, err := g.GenerateBuildReport(context.Background(), "4711")
	if err != nil {
		t.Fatalf("GenerateBuildReport() error = %v", err)
	}
	if rep.Build.Number != "20250101.2" {
		t.Errorf("Build.Number = %s", rep.Build.Number)
	}
	if len(builds.numberCalls) != 0 || len(builds.idCalls) != 1 {
		t.Errorf("lookup calls = %v / %v, want the ID path only", builds.numberCalls, builds.idCalls)
	}
}

func TestGenerateBuildReport_BadIdentifier(t *testing.T) {
	g := NewGenerator(&fakeBuildLookup{}, &fakeReleaseLookup{}, &fakeLogSource{}, nil)

	_, err := g.GenerateBuildReport(context.Background(), "not-a-build")
	var fe *resolve.FormatError
	if !errors.As(err, &fe) {
		t.Errorf("error = %v, want FormatError", err)
	}
}

func TestGenerateBuildReport_ArtifactFailureDegrades(t *testing.T) {
	builds := &fakeBuildLookup{
		byNumber:     map[string]*resolve.BuildRecord{"20250101.1": succeededBuild("20250101.1")},
		artifactsErr: errors.New("listing failed"),
	}
	g := NewGenerator(builds, &fakeReleaseLookup{}, &fakeLogSource{timeline: &azure.Timeline{}}, nil)

	rep, err := g.GenerateBuildReport(context.Background(), "20250101.1")
	if err != nil {
		t.Fatalf("GenerateBuildReport() error = %v", err)
	}
	if rep.Artifacts != nil {
		t.Errorf("Artifacts = %+v, want none after a failed listing", rep.Artifacts)
	}
}

func TestGenerateBuildReport_TimelineFailureKeepsProviderVerdict(t *testing.T) {
	build := succeededBuild("20250101.1")
	build.Result = "failed"
	builds := &fakeBuildLookup{byNumber: map[string]*resolve.BuildRecord{"20250101.1": build}}
	g := NewGenerator(builds, &fakeReleaseLookup{}, &fakeLogSource{timelineErr: errors.New("503")}, nil)

	rep, err := g.GenerateBuildReport(context.Background(), "20250101.1")
	if err != nil {
		t.Fatalf("GenerateBuildReport() error = %v", err)
	}
	if rep.Health.Build != "❌ Failed" {
		t.Errorf("Health.Build = %q, want the provider verdict without logs", rep.Health.Build)
	}
	if rep.Health.Lint != signals.NotFound {
		t.Errorf("Health.Lint = %q, want the sentinel", rep.Health.Lint)
	}
	if rep.Tests.Tests != signals.NotAvailable {
		t.Errorf("Tests.Tests = %q, want %q", rep.Tests.Tests, signals.NotAvailable)
	}
}

func TestGenerateBuildReport_UnreadableLogSkipped(t *testing.T) {
	builds := &fakeBuildLookup{byNumber: map[string]*resolve.BuildRecord{"20250101.1": succeededBuild("20250101.1")}}
	logs := &fakeLogSource{
		timeline: timelineWithLogs(1, 2),
		logs:     map[int]string{2: lintLog},
		logErrs:  map[int]error{1: errors.New("410 gone")},
	}
	g := NewGenerator(builds, &fakeReleaseLookup{}, logs, nil)

	rep, err := g.GenerateBuildReport(context.Background(), "20250101.1")
	if err != nil {
		t.Fatalf("GenerateBuildReport() error = %v", err)
	}
	if rep.Health.Lint != "✅ No lint problems" {
		t.Errorf("Health.Lint = %q, want the readable log's signal", rep.Health.Lint)
	}
}

func releaseFixture() (*fakeReleaseLookup, *fakeBuildLookup) {
	canceledOn := time.Date(2025, 1, 18, 10, 0, 0, 0, time.UTC)
	releases := &fakeReleaseLookup{
		release: &resolve.ReleaseRecord{
			ID:          "301",
			Name:        "Release-14",
			Pipeline:    "webapp",
			BuildNumber: "20250101.1",
		},
		environments: []resolve.EnvironmentRecord{
			{ID: "1", Name: "UAT", Rank: 1},
			{ID: "2", Name: "Production", Rank: 2},
		},
		approvals: []approval.Record{
			{ID: "1", Environment: "Production", Phase: approval.PreDeploy, Status: approval.StatusApproved, ModifiedOn: canceledOn.Add(-time.Hour)},
			{ID: "2", Environment: "Production", Phase: approval.PostDeploy, Status: approval.StatusCanceled, ModifiedOn: canceledOn},
			{ID: "3", Environment: "Production", Phase: approval.PostDeploy, Status: approval.StatusApproved, ModifiedOn: canceledOn.Add(time.Hour)},
		},
	}
	builds := &fakeBuildLookup{
		byNumber: map[string]*resolve.BuildRecord{"20250101.1": succeededBuild("20250101.1")},
	}
	return releases, builds
}

func TestGenerateUATReleaseReport(t *testing.T) {
	releases, builds := releaseFixture()
	logs := &fakeLogSource{timeline: timelineWithLogs(1), logs: map[int]string{1: lintLog}}
	g := NewGenerator(builds, releases, logs, nil).WithClock(func() time.Time { return generatedAt })

	rep, err := g.GenerateUATReleaseReport(context.Background(), "webapp")
	if err != nil {
		t.Fatalf("GenerateUATReleaseReport() error = %v", err)
	}

	if rep.Release.ID != "301" {
		t.Errorf("Release.ID = %s, want 301", rep.Release.ID)
	}
	if rep.Build.Number != "20250101.1" {
		t.Errorf("Build.Number = %s, want the associated build", rep.Build.Number)
	}
	if len(builds.numberCalls) != 1 || builds.numberCalls[0] != "20250101.1" {
		t.Errorf("ResolveByNumber calls = %v, want the associated build number", builds.numberCalls)
	}
	if len(rep.Gates) != 2 {
		t.Fatalf("len(Gates) = %d, want one per environment", len(rep.Gates))
	}

	// Latest-approved reconciliation: the later approval outranks the
	// cancellation in the UAT view.
	prod := rep.Gates[1]
	if prod.Environment != "Production" {
		t.Fatalf("Gates[1].Environment = %s, want Production", prod.Environment)
	}
	if prod.PostDeploy == nil || prod.PostDeploy.ID != "3" {
		t.Errorf("PostDeploy = %+v, want the latest approved record", prod.PostDeploy)
	}
	if prod.PreDeploy == nil || prod.PreDeploy.ID != "1" {
		t.Errorf("PreDeploy = %+v, want the approved record", prod.PreDeploy)
	}

	// UAT has no approval records at all; its gates stay nil for rendering
	// as pending.
	uat := rep.Gates[0]
	if uat.PreDeploy != nil || uat.PostDeploy != nil {
		t.Errorf("UAT gates = %+v / %+v, want nil", uat.PreDeploy, uat.PostDeploy)
	}
}

func TestGenerateProductionReleaseReport_CancelOutranksApproval(t *testing.T) {
	releases, builds := releaseFixture()
	logs := &fakeLogSource{timeline: &azure.Timeline{}}
	g := NewGenerator(builds, releases, logs, nil)

	rep, err := g.GenerateProductionReleaseReport(context.Background(), "webapp")
	if err != nil {
		t.Fatalf("GenerateProductionReleaseReport() error = %v", err)
	}

	prod := rep.Gates[1]
	if prod.PostDeploy == nil || prod.PostDeploy.ID != "2" {
		t.Errorf("PostDeploy = %+v, want the cancellation surfaced", prod.PostDeploy)
	}
	// Pre-deploy reconciliation is unaffected by the production policy.
	if prod.PreDeploy == nil || prod.PreDeploy.ID != "1" {
		t.Errorf("PreDeploy = %+v, want the approved record", prod.PreDeploy)
	}
}

func TestGenerateUATReleaseReport_UnknownBuildIsFatal(t *testing.T) {
	releases, builds := releaseFixture()
	releases.release.BuildNumber = resolve.UnknownBuild
	g := NewGenerator(builds, releases, &fakeLogSource{}, nil)

	_, err := g.GenerateUATReleaseReport(context.Background(), "webapp")
	if err == nil {
		t.Fatal("GenerateUATReleaseReport() error = nil, want failure")
	}
	if !IsNotFound(err) {
		t.Errorf("IsNotFound(%v) = false, want true", err)
	}
	if !strings.Contains(err.Error(), "Release-14") {
		t.Errorf("error = %v, want it to name the release", err)
	}
}

func TestGenerateUATReleaseReport_DegradedSections(t *testing.T) {
	releases, builds := releaseFixture()
	releases.envErr = errors.New("environments unavailable")
	releases.approvalsErr = errors.New("approvals unavailable")
	g := NewGenerator(builds, releases, &fakeLogSource{timeline: &azure.Timeline{}}, nil)

	rep, err := g.GenerateUATReleaseReport(context.Background(), "webapp")
	if err != nil {
		t.Fatalf("GenerateUATReleaseReport() error = %v", err)
	}
	if len(rep.Environments) != 0 || len(rep.Gates) != 0 {
		t.Errorf("Environments/Gates = %d/%d, want empty degraded sections", len(rep.Environments), len(rep.Gates))
	}
}

func TestIsNotFound(t *testing.T) {
	direct := &resolve.NotFoundError{Kind: "build", Key: "20250101.9"}
	if !IsNotFound(direct) {
		t.Error("IsNotFound(direct) = false")
	}
	wrapped := errors.Join(errors.New("context"), direct)
	if !IsNotFound(wrapped) {
		t.Error("IsNotFound(wrapped) = false")
	}
	if IsNotFound(errors.New("other")) {
		t.Error("IsNotFound(other) = true")
	}
}
