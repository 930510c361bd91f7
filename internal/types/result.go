package types

import "time"

// BuildStatus is the terminal state of one build pipeline run.
type BuildStatus string

// Build statuses. Degraded means the artifact was produced from a
// remediated document and must never be reported as a plain success.
const (
	BuildSucceeded BuildStatus = "succeeded"
	BuildDegraded  BuildStatus = "degraded"
	BuildFailed    BuildStatus = "failed"
)

// BuildResult is the terminal outcome of the build pipeline for one job.
// Exactly one BuildResult exists per job; the batch orchestrator owns it
// once returned.
type BuildResult struct {
	Status       BuildStatus `json:"status"`
	ArtifactPath string      `json:"artifact_path,omitempty"`
	TexPath      string      `json:"tex_path,omitempty"`
	// Remediated lists the dependencies whose features were replaced with
	// degraded equivalents. Non-empty forces Status == BuildDegraded.
	Remediated []string      `json:"remediated,omitempty"`
	Installed  []string      `json:"installed,omitempty"`
	Reason     string        `json:"reason,omitempty"`
	Elapsed    time.Duration `json:"elapsed,omitempty"`
}

// Succeeded reports whether an artifact was produced (full or degraded).
func (r *BuildResult) Succeeded() bool {
	return r.Status == BuildSucceeded || r.Status == BuildDegraded
}

// JobOutcome records what happened to a single batch job.
type JobOutcome struct {
	Identity string       `json:"identity"`
	Skipped  bool         `json:"skipped,omitempty"`
	Reason   string       `json:"reason,omitempty"`
	Result   *BuildResult `json:"result,omitempty"`
	EmailTex string       `json:"email_path,omitempty"`
}

// Status returns the reporting bucket for this outcome: one of
// succeeded, degraded, skipped, or failed.
func (o *JobOutcome) Status() string {
	switch {
	case o.Skipped:
		return "skipped"
	case o.Result != nil && o.Result.Status != BuildFailed:
		return string(o.Result.Status)
	default:
		return "failed"
	}
}

// BatchSummary is the ordered record of every job in a batch run. Entries
// are appended as jobs finish and are never removed or rewritten; a failing
// job leaves the rest of the summary intact.
type BatchSummary struct {
	Outcomes []JobOutcome `json:"outcomes"`
}

// Counts returns the number of outcomes per reporting bucket.
func (s *BatchSummary) Counts() map[string]int {
	counts := make(map[string]int, 4)
	for i := range s.Outcomes {
		counts[s.Outcomes[i].Status()]++
	}
	return counts
}

// Len returns the number of recorded outcomes.
func (s *BatchSummary) Len() int {
	return len(s.Outcomes)
}
