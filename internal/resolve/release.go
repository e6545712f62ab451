package resolve

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"buildlens/internal/approval"
	"buildlens/internal/azure"
)

// UnknownBuild is the sentinel returned when none of the extraction paths
// could recover a release's associated build number.
const UnknownBuild = "Unknown"

// ReleaseRecord is the resolved, display-ready view of one release.
type ReleaseRecord struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	CreatedOn   time.Time `json:"createdOn"`
	ModifiedOn  time.Time `json:"modifiedOn"`
	CreatedBy   string    `json:"createdBy"`
	Description string    `json:"description"`
	Pipeline    string    `json:"pipeline"`
	BuildNumber string    `json:"buildNumber"`
	Branch      string    `json:"branch"`
}

// EnvironmentRecord is one deployment stage of a release.
type EnvironmentRecord struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	StartedOn   time.Time `json:"startedOn"`
	CompletedOn time.Time `json:"completedOn"`
	Duration    string    `json:"duration"`
	Rank        int       `json:"rank"`
}

// ReleaseAPI is the provider capability the release resolver depends on.
type ReleaseAPI interface {
	GetReleaseDefinitionsByName(ctx context.Context, searchText string) ([]azure.ReleaseDefinition, error)
	GetReleasesByDefinition(ctx context.Context, definitionID int, searchText string) ([]azure.Release, error)
	GetReleaseByID(ctx context.Context, id int, expand string) (*azure.Release, error)
	GetReleaseApprovals(ctx context.Context, releaseID int) ([]azure.Approval, error)
}

// ReleaseResolver finds releases by name and derives their displayed fields.
type ReleaseResolver struct {
	api    ReleaseAPI
	logger *slog.Logger
}

// NewReleaseResolver creates a resolver. A nil logger falls back to the
// default slog logger.
func NewReleaseResolver(api ReleaseAPI, logger *slog.Logger) *ReleaseResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReleaseResolver{api: api, logger: logger}
}

// ResolveByName locates a release by searching definitions for the name,
// then the definitions' releases. The newest matching release wins. Fails
// with NotFoundError when nothing matches.
func (r *ReleaseResolver) ResolveByName(ctx context.Context, name string) (*ReleaseRecord, error) {
	definitions, err := r.api.GetReleaseDefinitionsByName(ctx, name)
	if err != nil {
		return nil, &NotFoundError{Kind: "release", Key: name, Err: err}
	}
	if len(definitions) == 0 {
		return nil, &NotFoundError{Kind: "release", Key: name}
	}

	var lastErr error
	for _, def := range definitions {
		releases, err := r.api.GetReleasesByDefinition(ctx, def.ID, name)
		if err != nil {
			r.logger.Warn("release search failed for definition", "definition", def.Name, "error", err)
			lastErr = err
			continue
		}
		if len(releases) == 0 {
			continue
		}

		// Provider returns newest first.
		full, err := r.api.GetReleaseByID(ctx, releases[0].ID, "environments")
		if err != nil {
			lastErr = err
			continue
		}
		record := r.newReleaseRecord(*full)
		return &record, nil
	}

	return nil, &NotFoundError{Kind: "release", Key: name, Err: lastErr}
}

func (r *ReleaseResolver) newReleaseRecord(rel azure.Release) ReleaseRecord {
	branch, _ := NormalizeBranch(artifactSourceName(rel, "branch"), nil)
	return ReleaseRecord{
		ID:          strconv.Itoa(rel.ID),
		Name:        rel.Name,
		Status:      rel.Status,
		CreatedOn:   rel.CreatedOn,
		ModifiedOn:  rel.ModifiedOn,
		CreatedBy:   rel.CreatedBy.DisplayName,
		Description: rel.Description,
		Pipeline:    rel.ReleaseDefinition.Name,
		BuildNumber: AssociatedBuildNumber(rel),
		Branch:      branch,
	}
}

// AssociatedBuildNumber recovers the build number a release deploys. Three
// indirect paths are tried in order across the release's artifacts, first
// non-empty wins: the artifact version name, the artifact build-number
// name, and the artifact alias. It never fails; the UnknownBuild sentinel
// is returned when every path comes up empty, and the caller decides
// whether that is fatal.
func AssociatedBuildNumber(rel azure.Release) string {
	if name := artifactSourceName(rel, "version"); name != "" {
		return name
	}
	if name := artifactSourceName(rel, "buildNumber"); name != "" {
		return name
	}
	for _, artifact := range rel.Artifacts {
		if artifact.Alias != "" {
			return artifact.Alias
		}
	}
	return UnknownBuild
}

// artifactSourceName returns the first non-empty definitionReference name
// under the given key across the release's artifacts.
func artifactSourceName(rel azure.Release, key string) string {
	for _, artifact := range rel.Artifacts {
		if ref, ok := artifact.DefinitionReference[key]; ok && ref.Name != "" {
			return ref.Name
		}
	}
	return ""
}

// Environments returns the release's deployment stages sorted ascending by
// rank, the order they deploy in.
func (r *ReleaseResolver) Environments(ctx context.Context, releaseID string) ([]EnvironmentRecord, error) {
	rel, err := r.fetchExpanded(ctx, releaseID)
	if err != nil {
		return nil, err
	}

	environments := make([]EnvironmentRecord, 0, len(rel.Environments))
	for _, env := range rel.Environments {
		environments = append(environments, newEnvironmentRecord(env))
	}
	sort.Slice(environments, func(i, j int) bool {
		return environments[i].Rank < environments[j].Rank
	})
	return environments, nil
}

func newEnvironmentRecord(env azure.Environment) EnvironmentRecord {
	record := EnvironmentRecord{
		ID:       strconv.Itoa(env.ID),
		Name:     env.Name,
		Status:   env.Status,
		Duration: NoDuration,
		Rank:     env.Rank,
	}

	// The latest deployment attempt carries the timestamps.
	var latest *azure.DeployStep
	for i := range env.DeploySteps {
		step := &env.DeploySteps[i]
		if latest == nil || step.Attempt > latest.Attempt {
			latest = step
		}
	}
	if latest != nil {
		record.StartedOn = latest.QueuedOn
		record.CompletedOn = latest.LastModifiedOn
		record.Duration = FormatDuration(latest.QueuedOn, latest.LastModifiedOn)
	}

	return record
}

// Approvals returns the release's approval records. The nested
// per-environment structures are preferred; when they carry nothing, the
// flat approvals endpoint is consulted instead.
func (r *ReleaseResolver) Approvals(ctx context.Context, releaseID string) ([]approval.Record, error) {
	rel, err := r.fetchExpanded(ctx, releaseID)
	if err != nil {
		return nil, err
	}

	var records []approval.Record
	for _, env := range rel.Environments {
		for _, a := range env.PreDeployApprovals {
			records = append(records, newApprovalRecord(a, env.Name, approval.PreDeploy))
		}
		for _, a := range env.PostDeployApprovals {
			records = append(records, newApprovalRecord(a, env.Name, approval.PostDeploy))
		}
	}
	if len(records) > 0 {
		return records, nil
	}

	r.logger.Info("nested approvals unavailable, using flat endpoint", "release", releaseID)
	id, err := strconv.Atoi(releaseID)
	if err != nil {
		return nil, &FormatError{Input: releaseID, Expected: "a numeric release ID"}
	}
	flat, err := r.api.GetReleaseApprovals(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, a := range flat {
		envName := ""
		if a.ReleaseEnvironment != nil {
			envName = a.ReleaseEnvironment.Name
		}
		records = append(records, newApprovalRecord(a, envName, phaseForType(a.ApprovalType)))
	}
	return records, nil
}

func (r *ReleaseResolver) fetchExpanded(ctx context.Context, releaseID string) (*azure.Release, error) {
	id, err := strconv.Atoi(releaseID)
	if err != nil {
		return nil, &FormatError{Input: releaseID, Expected: "a numeric release ID"}
	}
	rel, err := r.api.GetReleaseByID(ctx, id, "environments")
	if err != nil {
		return nil, err
	}
	return rel, nil
}

func phaseForType(approvalType string) approval.Phase {
	if approvalType == "postDeploy" {
		return approval.PostDeploy
	}
	return approval.PreDeploy
}

func newApprovalRecord(a azure.Approval, environment string, phase approval.Phase) approval.Record {
	return approval.Record{
		ID:          strconv.Itoa(a.ID),
		Approver:    approverName(a),
		Status:      a.Status,
		CreatedOn:   a.CreatedOn,
		ModifiedOn:  a.ModifiedOn,
		Comment:     a.Comments,
		Environment: environment,
		Phase:       phase,
	}
}

// approverName tries four candidate name fields in priority order before
// giving up: the deciding identity's display name, the assigned approver's
// display name, then their unique names.
func approverName(a azure.Approval) string {
	if a.ApprovedBy != nil && a.ApprovedBy.DisplayName != "" {
		return a.ApprovedBy.DisplayName
	}
	if a.Approver != nil && a.Approver.DisplayName != "" {
		return a.Approver.DisplayName
	}
	if a.ApprovedBy != nil && a.ApprovedBy.UniqueName != "" {
		return a.ApprovedBy.UniqueName
	}
	if a.Approver != nil && a.Approver.UniqueName != "" {
		return a.Approver.UniqueName
	}
	return "Unknown"
}
