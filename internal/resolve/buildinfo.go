package resolve

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"buildlens/internal/azure"
)

// NoDuration is the sentinel used when a start or finish timestamp is
// missing and no duration can be derived.
const NoDuration = "N/A"

// BuildRecord is the resolved, display-ready view of one CI run.
type BuildRecord struct {
	ID          string    `json:"id"`
	Number      string    `json:"number"`
	Status      string    `json:"status"`
	Result      string    `json:"result"`
	StartTime   time.Time `json:"startTime"`
	FinishTime  time.Time `json:"finishTime"`
	Duration    string    `json:"duration"`
	Branch      string    `json:"branch"`
	PullRequest string    `json:"pullRequest,omitempty"`
	RequestedBy string    `json:"requestedBy"`
	Trigger     string    `json:"trigger"`
	Commit      string    `json:"commit"`
}

// BuildArtifact is one published artifact with a human-readable size.
type BuildArtifact struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	SizeMB string `json:"sizeMB,omitempty"`
}

var (
	prRefRe      = regexp.MustCompile(`^refs/pull/(\d+)/merge$`)
	prMessageRe  = regexp.MustCompile(`[Pp]ull request #?(\d+)`)
	branchPrefix = "refs/heads/"
)

// NewBuildRecord derives the display fields from a raw provider build.
func NewBuildRecord(b azure.Build) BuildRecord {
	branch, pr := NormalizeBranch(b.SourceBranch, b.TriggerInfo)

	trigger := b.Reason
	if msg, ok := b.TriggerInfo["ci.message"]; ok && msg != "" {
		trigger = msg
	}

	return BuildRecord{
		ID:          strconv.Itoa(b.ID),
		Number:      b.BuildNumber,
		Status:      b.Status,
		Result:      b.Result,
		StartTime:   b.StartTime,
		FinishTime:  b.FinishTime,
		Duration:    FormatDuration(b.StartTime, b.FinishTime),
		Branch:      branch,
		PullRequest: pr,
		RequestedBy: b.RequestedFor.DisplayName,
		Trigger:     trigger,
		Commit:      b.SourceVersion,
	}
}

// FormatDuration renders finish−start as whole seconds plus a minutes/seconds
// form, e.g. "65s (1m 5s)". Missing timestamps yield the NoDuration sentinel.
func FormatDuration(start, finish time.Time) string {
	if start.IsZero() || finish.IsZero() {
		return NoDuration
	}
	secs := int(finish.Sub(start).Seconds())
	return fmt.Sprintf("%ds (%dm %ds)", secs, secs/60, secs%60)
}

// NormalizeBranch converts a raw source ref into a display branch plus an
// optional pull-request reference.
//
//	refs/pull/42/merge -> "PR #42", "#42"
//	refs/heads/main    -> "main", ""
//	anything else passes through unchanged.
//
// When the ref is not a pull-request ref, the trigger info messages are
// still checked for a "Pull request N" phrase to recover the PR reference.
func NormalizeBranch(sourceBranch string, triggerInfo map[string]string) (branch, pullRequest string) {
	if m := prRefRe.FindStringSubmatch(sourceBranch); m != nil {
		return "PR #" + m[1], "#" + m[1]
	}

	branch = sourceBranch
	if strings.HasPrefix(sourceBranch, branchPrefix) {
		branch = strings.TrimPrefix(sourceBranch, branchPrefix)
	}

	for _, msg := range triggerInfo {
		if m := prMessageRe.FindStringSubmatch(msg); m != nil {
			pullRequest = "#" + m[1]
			break
		}
	}

	return branch, pullRequest
}

// NewBuildArtifact derives the display shape of one artifact. The raw byte
// count, when present, is rendered in MB with one decimal.
func NewBuildArtifact(a azure.Artifact) BuildArtifact {
	artifact := BuildArtifact{
		Name: a.Name,
		Type: a.Resource.Type,
	}
	if raw, ok := a.Resource.Properties["artifactsize"]; ok {
		if bytes, err := strconv.ParseFloat(raw, 64); err == nil {
			artifact.SizeMB = fmt.Sprintf("%.1f MB", bytes/(1024*1024))
		}
	}
	return artifact
}
