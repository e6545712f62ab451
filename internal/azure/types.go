package azure

import "time"

// IdentityRef identifies a user in provider responses.
type IdentityRef struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	UniqueName  string `json:"uniqueName"`
}

// Build is the wire shape of a single CI run.
type Build struct {
	ID            int               `json:"id"`
	BuildNumber   string            `json:"buildNumber"`
	Status        string            `json:"status"`
	Result        string            `json:"result"`
	QueueTime     time.Time         `json:"queueTime"`
	StartTime     time.Time         `json:"startTime"`
	FinishTime    time.Time         `json:"finishTime"`
	SourceBranch  string            `json:"sourceBranch"`
	SourceVersion string            `json:"sourceVersion"`
	RequestedFor  IdentityRef       `json:"requestedFor"`
	Reason        string            `json:"reason"`
	TriggerInfo   map[string]string `json:"triggerInfo"`
}

// buildList is the paginated envelope for the builds endpoint.
type buildList struct {
	Count int     `json:"count"`
	Value []Build `json:"value"`
}

// LogRef points at one log blob attached to a timeline record.
type LogRef struct {
	ID int `json:"id"`
}

// TimelineRecord is one step of a build timeline. Not every record has a log.
type TimelineRecord struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Type   string  `json:"type"`
	Result string  `json:"result"`
	Log    *LogRef `json:"log"`
}

// Timeline is the full step tree of a build.
type Timeline struct {
	Records []TimelineRecord `json:"records"`
}

// ArtifactResource carries type and free-form properties of an artifact.
type ArtifactResource struct {
	Type       string            `json:"type"`
	Properties map[string]string `json:"properties"`
}

// Artifact is one published build artifact.
type Artifact struct {
	Name     string           `json:"name"`
	Resource ArtifactResource `json:"resource"`
}

type artifactList struct {
	Count int        `json:"count"`
	Value []Artifact `json:"value"`
}

// ReleaseDefinition identifies a release pipeline definition.
type ReleaseDefinition struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type releaseDefinitionList struct {
	Count int                 `json:"count"`
	Value []ReleaseDefinition `json:"value"`
}

// ArtifactSourceRef is one entry of a release artifact's definitionReference.
type ArtifactSourceRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ReleaseArtifact links a release to the build it deploys.
type ReleaseArtifact struct {
	Alias               string                       `json:"alias"`
	Type                string                       `json:"type"`
	DefinitionReference map[string]ArtifactSourceRef `json:"definitionReference"`
}

// Approval is a pre- or post-deployment gate decision.
type Approval struct {
	ID                 int          `json:"id"`
	ApprovalType       string       `json:"approvalType"`
	Status             string       `json:"status"`
	CreatedOn          time.Time    `json:"createdOn"`
	ModifiedOn         time.Time    `json:"modifiedOn"`
	Comments           string       `json:"comments"`
	ApprovedBy         *IdentityRef `json:"approvedBy"`
	Approver           *IdentityRef `json:"approver"`
	ReleaseEnvironment *NameRef     `json:"releaseEnvironment"`
}

// NameRef is a minimal named reference in provider responses.
type NameRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// DeployStep is one deployment attempt into an environment.
type DeployStep struct {
	Attempt        int       `json:"attempt"`
	Status         string    `json:"status"`
	QueuedOn       time.Time `json:"queuedOn"`
	LastModifiedOn time.Time `json:"lastModifiedOn"`
}

// Environment is one stage of a release with its approval gates.
type Environment struct {
	ID                  int          `json:"id"`
	Name                string       `json:"name"`
	Status              string       `json:"status"`
	Rank                int          `json:"rank"`
	PreDeployApprovals  []Approval   `json:"preDeployApprovals"`
	PostDeployApprovals []Approval   `json:"postDeployApprovals"`
	DeploySteps         []DeployStep `json:"deploySteps"`
}

// Release is the wire shape of one deployment pipeline execution.
type Release struct {
	ID                int               `json:"id"`
	Name              string            `json:"name"`
	Status            string            `json:"status"`
	CreatedOn         time.Time         `json:"createdOn"`
	ModifiedOn        time.Time         `json:"modifiedOn"`
	CreatedBy         IdentityRef       `json:"createdBy"`
	Description       string            `json:"description"`
	ReleaseDefinition NameRef           `json:"releaseDefinition"`
	Artifacts         []ReleaseArtifact `json:"artifacts"`
	Environments      []Environment     `json:"environments"`
}

type releaseList struct {
	Count int       `json:"count"`
	Value []Release `json:"value"`
}

type approvalList struct {
	Count int        `json:"count"`
	Value []Approval `json:"value"`
}
