// Package resolve locates builds and releases from ambiguous human
// identifiers.
//
// Build numbers are not globally unique and the provider's search API can be
// incomplete, so lookup is a sequence of independent best-effort strategies:
// a narrow date window, a widened window, and a bounded recent-builds scan,
// with a fixed tie-break policy applied identically at every stage.
package resolve

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"buildlens/internal/azure"
)

// recentBuildLimit bounds the final fallback scan over recent builds.
const recentBuildLimit = 100

var buildNumberRe = regexp.MustCompile(`^(\d{8})\.\d+$`)

// BuildAPI is the provider capability the build resolver depends on.
type BuildAPI interface {
	ListBuilds(ctx context.Context, filter azure.BuildFilter) ([]azure.Build, error)
	GetBuild(ctx context.Context, id string) (*azure.Build, error)
	GetBuildArtifacts(ctx context.Context, buildID string) ([]azure.Artifact, error)
}

// BuildResolver finds a unique build record for a build number or ID.
type BuildResolver struct {
	api    BuildAPI
	logger *slog.Logger
}

// NewBuildResolver creates a resolver. A nil logger falls back to the
// default slog logger.
func NewBuildResolver(api BuildAPI, logger *slog.Logger) *BuildResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &BuildResolver{api: api, logger: logger}
}

// ResolveByNumber locates the build for a "YYYYMMDD.N" build number.
//
// Search phases, each filtered to exact number matches and tie-broken the
// same way:
//  1. builds of the calendar day named by the number's date prefix
//  2. the window widened by one day on each side
//  3. the most recent builds, bounded
//
// A transport failure in one phase falls through to the next; only when all
// phases are exhausted does the resolver fail, with NotFoundError wrapping
// the last transport error if there was one.
func (r *BuildResolver) ResolveByNumber(ctx context.Context, number string) (*BuildRecord, error) {
	m := buildNumberRe.FindStringSubmatch(number)
	if m == nil {
		return nil, &FormatError{Input: number, Expected: "build number format YYYYMMDD.N"}
	}
	day, err := time.Parse("20060102", m[1])
	if err != nil {
		return nil, &FormatError{Input: number, Expected: "a valid calendar date in the YYYYMMDD prefix"}
	}

	phases := []struct {
		name   string
		filter azure.BuildFilter
	}{
		{"exact-day window", azure.BuildFilter{MinTime: day, MaxTime: day.AddDate(0, 0, 1)}},
		{"widened window", azure.BuildFilter{MinTime: day.AddDate(0, 0, -1), MaxTime: day.AddDate(0, 0, 2)}},
		{"recent builds", azure.BuildFilter{Top: recentBuildLimit}},
	}

	var lastErr error
	for _, phase := range phases {
		builds, err := r.api.ListBuilds(ctx, phase.filter)
		if err != nil {
			r.logger.Warn("build search phase failed", "phase", phase.name, "number", number, "error", err)
			lastErr = err
			continue
		}

		if match := pickBuild(filterByNumber(builds, number)); match != nil {
			r.logger.Info("build resolved", "phase", phase.name, "number", number, "id", match.ID)
			record := NewBuildRecord(*match)
			return &record, nil
		}
	}

	return nil, &NotFoundError{Kind: "build", Key: number, Err: lastErr}
}

// ResolveByID fetches one build directly by its opaque ID.
func (r *BuildResolver) ResolveByID(ctx context.Context, id string) (*BuildRecord, error) {
	build, err := r.api.GetBuild(ctx, id)
	if err != nil {
		return nil, &NotFoundError{Kind: "build", Key: id, Err: err}
	}
	record := NewBuildRecord(*build)
	return &record, nil
}

// Artifacts lists the build's published artifacts with derived sizes.
func (r *BuildResolver) Artifacts(ctx context.Context, buildID string) ([]BuildArtifact, error) {
	raw, err := r.api.GetBuildArtifacts(ctx, buildID)
	if err != nil {
		return nil, err
	}
	artifacts := make([]BuildArtifact, 0, len(raw))
	for _, a := range raw {
		artifacts = append(artifacts, NewBuildArtifact(a))
	}
	return artifacts, nil
}

// filterByNumber keeps the exact build-number matches, preserving provider
// order.
func filterByNumber(builds []azure.Build, number string) []azure.Build {
	var matches []azure.Build
	for _, b := range builds {
		if b.BuildNumber == number {
			matches = append(matches, b)
		}
	}
	return matches
}

// pickBuild applies the tie-break policy to exact-number candidates:
// succeeded builds on a mainline branch first, then any succeeded build,
// then the first candidate in provider order. Returns nil for an empty list.
func pickBuild(candidates []azure.Build) *azure.Build {
	if b := firstSucceededMainline(candidates); b != nil {
		return b
	}
	if b := firstSucceeded(candidates); b != nil {
		return b
	}
	if len(candidates) > 0 {
		b := candidates[0]
		return &b
	}
	return nil
}

func firstSucceededMainline(candidates []azure.Build) *azure.Build {
	for _, b := range candidates {
		if b.Result == "succeeded" && isMainlineBranch(b.SourceBranch) {
			match := b
			return &match
		}
	}
	return nil
}

func firstSucceeded(candidates []azure.Build) *azure.Build {
	for _, b := range candidates {
		if b.Result == "succeeded" {
			match := b
			return &match
		}
	}
	return nil
}

func isMainlineBranch(branch string) bool {
	return strings.Contains(branch, "main") ||
		strings.Contains(branch, "master") ||
		strings.Contains(branch, "release/")
}
