package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"buildlens/internal/approval"
	"buildlens/internal/azure"
	"buildlens/internal/resolve"
	"buildlens/internal/signals"
)

// defaultMaxLogs bounds how many log blobs one report generation scans.
const defaultMaxLogs = 30

var numericIDRe = regexp.MustCompile(`^\d+$`)
var buildNumberShapeRe = regexp.MustCompile(`^\d{8}\.\d+$`)

// BuildLookup is the build-resolution capability the generator depends on.
type BuildLookup interface {
	ResolveByNumber(ctx context.Context, number string) (*resolve.BuildRecord, error)
	ResolveByID(ctx context.Context, id string) (*resolve.BuildRecord, error)
	Artifacts(ctx context.Context, buildID string) ([]resolve.BuildArtifact, error)
}

// ReleaseLookup is the release-resolution capability the generator depends on.
type ReleaseLookup interface {
	ResolveByName(ctx context.Context, name string) (*resolve.ReleaseRecord, error)
	Environments(ctx context.Context, releaseID string) ([]resolve.EnvironmentRecord, error)
	Approvals(ctx context.Context, releaseID string) ([]approval.Record, error)
}

// LogSource provides the log blobs of a build.
type LogSource interface {
	GetBuildTimeline(ctx context.Context, buildID string) (*azure.Timeline, error)
	GetLogContent(ctx context.Context, buildID string, logID int) (string, error)
}

// Generator runs the resolution pipeline and assembles reports. All external
// calls are issued sequentially; there is no fan-out, so provider rate usage
// and output ordering stay predictable.
type Generator struct {
	builds   BuildLookup
	releases ReleaseLookup
	logs     LogSource
	logger   *slog.Logger
	now      func() time.Time
	maxLogs  int
}

// NewGenerator wires a generator. A nil logger falls back to slog's default;
// a nil clock falls back to time.Now.
func NewGenerator(builds BuildLookup, releases ReleaseLookup, logs LogSource, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		builds:   builds,
		releases: releases,
		logs:     logs,
		logger:   logger,
		now:      time.Now,
		maxLogs:  defaultMaxLogs,
	}
}

// WithClock replaces the generation timestamp source. Used by tests.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// GenerateBuildReport resolves the identifier (a YYYYMMDD.N build number or
// a numeric build ID), mines the build's logs, and assembles the report.
// A missing build is fatal for build reports.
func (g *Generator) GenerateBuildReport(ctx context.Context, identifier string) (*BuildReport, error) {
	build, err := g.resolveBuild(ctx, identifier)
	if err != nil {
		return nil, err
	}

	health, tests, coverage := g.scanLogs(ctx, build)

	artifacts, err := g.builds.Artifacts(ctx, build.ID)
	if err != nil {
		// Artifacts are additive; a failed listing degrades to none.
		g.logger.Warn("artifact listing failed", "build", build.ID, "error", err)
		artifacts = nil
	}

	rep := AssembleBuildReport(*build, health, tests, coverage, artifacts, g.now())
	return &rep, nil
}

// GenerateUATReleaseReport resolves the release, its associated build, and
// assembles the UAT report. A release whose associated build cannot be
// recovered is fatal; missing environments or approvals degrade to empty
// sections with a warning.
func (g *Generator) GenerateUATReleaseReport(ctx context.Context, releaseName string) (*UATReleaseReport, error) {
	release, build, environments, approvals, err := g.resolveRelease(ctx, releaseName)
	if err != nil {
		return nil, err
	}

	health, tests, coverage := g.scanLogs(ctx, build)

	rep := AssembleUATReleaseReport(*release, *build, environments, approvals, health, tests, coverage, g.now())
	return &rep, nil
}

// GenerateProductionReleaseReport is the production variant of
// GenerateUATReleaseReport; it differs only in approval reconciliation.
func (g *Generator) GenerateProductionReleaseReport(ctx context.Context, releaseName string) (*ProductionReleaseReport, error) {
	release, build, environments, approvals, err := g.resolveRelease(ctx, releaseName)
	if err != nil {
		return nil, err
	}

	health, tests, coverage := g.scanLogs(ctx, build)

	rep := AssembleProductionReleaseReport(*release, *build, environments, approvals, health, tests, coverage, g.now())
	return &rep, nil
}

func (g *Generator) resolveBuild(ctx context.Context, identifier string) (*resolve.BuildRecord, error) {
	switch {
	case buildNumberShapeRe.MatchString(identifier):
		return g.builds.ResolveByNumber(ctx, identifier)
	case numericIDRe.MatchString(identifier):
		return g.builds.ResolveByID(ctx, identifier)
	default:
		return nil, &resolve.FormatError{Input: identifier, Expected: "a YYYYMMDD.N build number or a numeric build ID"}
	}
}

func (g *Generator) resolveRelease(ctx context.Context, releaseName string) (*resolve.ReleaseRecord, *resolve.BuildRecord, []resolve.EnvironmentRecord, []approval.Record, error) {
	release, err := g.releases.ResolveByName(ctx, releaseName)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	if release.BuildNumber == resolve.UnknownBuild {
		return nil, nil, nil, nil, fmt.Errorf("release %q has no recoverable associated build: %w",
			release.Name, &resolve.NotFoundError{Kind: "build", Key: resolve.UnknownBuild})
	}

	build, err := g.builds.ResolveByNumber(ctx, release.BuildNumber)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("associated build %q of release %q: %w", release.BuildNumber, release.Name, err)
	}

	environments, err := g.releases.Environments(ctx, release.ID)
	if err != nil {
		g.logger.Warn("environment listing failed, continuing without", "release", release.ID, "error", err)
		environments = nil
	}

	approvals, err := g.releases.Approvals(ctx, release.ID)
	if err != nil {
		g.logger.Warn("approval listing failed, continuing without", "release", release.ID, "error", err)
		approvals = nil
	}

	return release, build, environments, approvals, nil
}

// scanLogs walks the build's log blobs sequentially, merging extracted
// signals until every field is filled or the bounded candidate set runs out.
// Scanning never fails: an unreadable timeline or log is skipped.
func (g *Generator) scanLogs(ctx context.Context, build *resolve.BuildRecord) (signals.HealthCheckReport, signals.TestSummary, signals.CoverageSummary) {
	health := signals.NewHealthCheckReport()
	tests := signals.TestSummary{TestFiles: signals.NotAvailable, Tests: signals.NotAvailable, Duration: signals.NotAvailable}
	coverage := signals.CoverageSummary{
		Statements: signals.NotAvailable,
		Branches:   signals.NotAvailable,
		Functions:  signals.NotAvailable,
		Lines:      signals.NotAvailable,
	}

	timeline, err := g.logs.GetBuildTimeline(ctx, build.ID)
	if err != nil {
		g.logger.Warn("timeline fetch failed, skipping log scan", "build", build.ID, "error", err)
		health.ApplyBuildResult(build.Result)
		return health, tests, coverage
	}

	logIDs := make([]int, 0, g.maxLogs)
	for _, record := range timeline.Records {
		if record.Log == nil {
			continue
		}
		logIDs = append(logIDs, record.Log.ID)
		if len(logIDs) >= g.maxLogs {
			break
		}
	}

	for _, logID := range logIDs {
		if ctxErr := ctx.Err(); ctxErr != nil {
			break
		}

		content, err := g.logs.GetLogContent(ctx, build.ID, logID)
		if err != nil {
			g.logger.Warn("log fetch failed, skipping", "build", build.ID, "log", logID, "error", err)
			continue
		}

		health.Merge(signals.Scan(content))

		t, c := signals.ExtractTestResults(content)
		mergeTestSummary(&tests, t)
		mergeCoverageSummary(&coverage, c)

		if health.Complete() && tests.HasTestData() && coverage.HasCoverageData() {
			break
		}
	}

	// The provider's own verdict outranks anything mined from log text.
	health.ApplyBuildResult(build.Result)

	return health, tests, coverage
}

// mergeTestSummary overwrites fields for which the later scan found data.
func mergeTestSummary(dst *signals.TestSummary, src signals.TestSummary) {
	if src.TestFiles != signals.NotAvailable {
		dst.TestFiles = src.TestFiles
	}
	if src.Tests != signals.NotAvailable {
		dst.Tests = src.Tests
	}
	if src.Duration != signals.NotAvailable {
		dst.Duration = src.Duration
	}
}

func mergeCoverageSummary(dst *signals.CoverageSummary, src signals.CoverageSummary) {
	if src.Statements != signals.NotAvailable {
		dst.Statements = src.Statements
	}
	if src.Branches != signals.NotAvailable {
		dst.Branches = src.Branches
	}
	if src.Functions != signals.NotAvailable {
		dst.Functions = src.Functions
	}
	if src.Lines != signals.NotAvailable {
		dst.Lines = src.Lines
	}
}

// IsNotFound reports whether err is a resolution NotFoundError anywhere in
// its chain.
func IsNotFound(err error) bool {
	var nf *resolve.NotFoundError
	return errors.As(err, &nf)
}
