package report

import (
	"time"

	"buildlens/internal/approval"
	"buildlens/internal/resolve"
	"buildlens/internal/signals"
)

// AssembleBuildReport combines resolved build data into the immutable build
// report. Pure aggregation, no I/O.
func AssembleBuildReport(
	build resolve.BuildRecord,
	health signals.HealthCheckReport,
	tests signals.TestSummary,
	coverage signals.CoverageSummary,
	artifacts []resolve.BuildArtifact,
	generatedAt time.Time,
) BuildReport {
	return BuildReport{
		GeneratedAt: generatedAt,
		Build:       build,
		Health:      health,
		Tests:       tests,
		Coverage:    coverage,
		Artifacts:   artifacts,
	}
}

// AssembleUATReleaseReport combines resolved release data into the UAT
// report. Both approval phases use the latest-approved policy.
func AssembleUATReleaseReport(
	release resolve.ReleaseRecord,
	build resolve.BuildRecord,
	environments []resolve.EnvironmentRecord,
	approvals []approval.Record,
	health signals.HealthCheckReport,
	tests signals.TestSummary,
	coverage signals.CoverageSummary,
	generatedAt time.Time,
) UATReleaseReport {
	return UATReleaseReport{
		GeneratedAt:  generatedAt,
		Release:      release,
		Build:        build,
		Environments: environments,
		Gates:        assembleGates(environments, approvals, approval.PolicyLatestApproved),
		Health:       health,
		Tests:        tests,
		Coverage:     coverage,
	}
}

// AssembleProductionReleaseReport combines resolved release data into the
// production report. Post-deploy reconciliation uses the cancel-first
// policy: production has no routine post-deploy sign-off, so a post-deploy
// record is almost always a cancellation and the reader needs to see it.
func AssembleProductionReleaseReport(
	release resolve.ReleaseRecord,
	build resolve.BuildRecord,
	environments []resolve.EnvironmentRecord,
	approvals []approval.Record,
	health signals.HealthCheckReport,
	tests signals.TestSummary,
	coverage signals.CoverageSummary,
	generatedAt time.Time,
) ProductionReleaseReport {
	return ProductionReleaseReport{
		GeneratedAt:  generatedAt,
		Release:      release,
		Build:        build,
		Environments: environments,
		Gates:        assembleGates(environments, approvals, approval.PolicyCancelFirst),
		Health:       health,
		Tests:        tests,
		Coverage:     coverage,
	}
}

// assembleGates reconciles the raw approval list down to one representative
// decision per environment and phase. Pre-deploy always uses the
// latest-approved policy; the post-deploy policy is the report variant's.
func assembleGates(environments []resolve.EnvironmentRecord, approvals []approval.Record, postPolicy approval.Policy) []ReleaseGate {
	gates := make([]ReleaseGate, 0, len(environments))
	for _, env := range environments {
		var envApprovals []approval.Record
		for _, a := range approvals {
			if a.Environment == env.Name {
				envApprovals = append(envApprovals, a)
			}
		}
		gates = append(gates, ReleaseGate{
			Environment: env.Name,
			PreDeploy:   approval.SelectRepresentative(envApprovals, approval.PreDeploy, approval.PolicyLatestApproved),
			PostDeploy:  approval.SelectRepresentative(envApprovals, approval.PostDeploy, postPolicy),
		})
	}
	return gates
}
