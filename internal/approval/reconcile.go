// Package approval reconciles raw deployment-approval records into the
// single decision shown per environment and phase.
//
// Raw approval lists can carry duplicates, superseded pending entries, and
// re-assigned gates. Two selection policies exist and are deliberately kept
// separate: UAT reports always surface the latest approval, while production
// reports surface a cancellation or rejection ahead of an earlier approval
// so the reader sees who stopped the deployment.
package approval

import (
	"sort"
	"time"
)

// Approval statuses as reported by the provider.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusCanceled = "canceled"
)

// Phase distinguishes the two approval gates of an environment.
type Phase string

const (
	PreDeploy  Phase = "preDeploy"
	PostDeploy Phase = "postDeploy"
)

// Record is one approval decision (or pending gate) for an environment.
type Record struct {
	ID          string    `json:"id"`
	Approver    string    `json:"approver"`
	Status      string    `json:"status"`
	CreatedOn   time.Time `json:"createdOn"`
	ModifiedOn  time.Time `json:"modifiedOn"`
	Comment     string    `json:"comment"`
	Environment string    `json:"environment"`
	Phase       Phase     `json:"phase"`
}

// Policy names a representative-selection rule.
type Policy int

const (
	// PolicyLatestApproved prefers the chronologically latest approved
	// record, falling back to the latest record of any status.
	PolicyLatestApproved Policy = iota

	// PolicyCancelFirst prefers the latest canceled or rejected record so
	// an aborted deployment shows who aborted it, then falls back to
	// PolicyLatestApproved behavior.
	PolicyCancelFirst
)

// SelectRepresentative picks the single approval to display for one phase.
// Returns nil when the phase has no records; the caller renders that as a
// pending gate with no timestamp.
func SelectRepresentative(records []Record, phase Phase, policy Policy) *Record {
	var candidates []Record
	for _, r := range records {
		if r.Phase == phase {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].ModifiedOn.Before(candidates[j].ModifiedOn)
	})

	if policy == PolicyCancelFirst {
		if r := lastWithStatus(candidates, StatusCanceled, StatusRejected); r != nil {
			return r
		}
	}
	if r := lastWithStatus(candidates, StatusApproved); r != nil {
		return r
	}

	last := candidates[len(candidates)-1]
	return &last
}

// lastWithStatus returns the chronologically latest record whose status is
// one of the given values. Candidates must already be sorted ascending.
func lastWithStatus(sorted []Record, statuses ...string) *Record {
	for i := len(sorted) - 1; i >= 0; i-- {
		for _, s := range statuses {
			if sorted[i].Status == s {
				r := sorted[i]
				return &r
			}
		}
	}
	return nil
}

// StatusGlyph maps an approval status to its display glyph.
func StatusGlyph(status string) string {
	switch status {
	case StatusPending:
		return "⏳"
	case StatusApproved:
		return "✅"
	case StatusRejected:
		return "❌"
	default:
		return "➖"
	}
}
