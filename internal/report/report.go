// Package report defines the immutable report shapes and the pipeline that
// produces them.
package report

import (
	"time"

	"buildlens/internal/approval"
	"buildlens/internal/resolve"
	"buildlens/internal/signals"
)

// BuildReport is the aggregate produced for a single CI build.
type BuildReport struct {
	GeneratedAt time.Time                 `json:"generatedAt"`
	Build       resolve.BuildRecord       `json:"build"`
	Health      signals.HealthCheckReport `json:"health"`
	Tests       signals.TestSummary       `json:"tests"`
	Coverage    signals.CoverageSummary   `json:"coverage"`
	Artifacts   []resolve.BuildArtifact   `json:"artifacts"`
}

// ReleaseGate is the reconciled approval decision per environment: one
// representative record per phase, nil when the phase has no records yet.
type ReleaseGate struct {
	Environment string           `json:"environment"`
	PreDeploy   *approval.Record `json:"preDeploy,omitempty"`
	PostDeploy  *approval.Record `json:"postDeploy,omitempty"`
}

// UATReleaseReport is the aggregate produced for a UAT release.
type UATReleaseReport struct {
	GeneratedAt  time.Time                   `json:"generatedAt"`
	Release      resolve.ReleaseRecord       `json:"release"`
	Build        resolve.BuildRecord         `json:"build"`
	Environments []resolve.EnvironmentRecord `json:"environments"`
	Gates        []ReleaseGate               `json:"gates"`
	Health       signals.HealthCheckReport   `json:"health"`
	Tests        signals.TestSummary         `json:"tests"`
	Coverage     signals.CoverageSummary     `json:"coverage"`
}

// ProductionReleaseReport is the aggregate produced for a production
// release. Its approval reconciliation differs from UAT: a cancellation or
// rejection of a production deployment outranks an earlier approval.
type ProductionReleaseReport struct {
	GeneratedAt  time.Time                   `json:"generatedAt"`
	Release      resolve.ReleaseRecord       `json:"release"`
	Build        resolve.BuildRecord         `json:"build"`
	Environments []resolve.EnvironmentRecord `json:"environments"`
	Gates        []ReleaseGate               `json:"gates"`
	Health       signals.HealthCheckReport   `json:"health"`
	Tests        signals.TestSummary         `json:"tests"`
	Coverage     signals.CoverageSummary     `json:"coverage"`
}
