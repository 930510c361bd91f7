package db

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/resume-tailor/internal/types"
)

func TestBatchRunType(t *testing.T) {
	run := BatchRun{
		Source:    "jobs.csv",
		TotalJobs: 3,
		Status:    "running",
	}

	assert.Equal(t, "jobs.csv", run.Source)
	assert.Equal(t, 3, run.TotalJobs)
	assert.Equal(t, "running", run.Status)
	assert.Nil(t, run.CompletedAt)
}

func TestConnect_InvalidURL(t *testing.T) {
	_, err := Connect(t.Context(), "not-a-postgres-url")
	assert.Error(t, err)
}

func TestJobRecordFields(t *testing.T) {
	outcome := types.JobOutcome{
		Identity: "Acme - Engineer",
		Result: &types.BuildResult{
			Status:       types.BuildDegraded,
			ArtifactPath: "out/acme_engineer_resume.pdf",
			Remediated:   []string{"fontawesome"},
		},
	}

	// SaveJobOutcome persists the reporting bucket, not the raw struct.
	assert.Equal(t, "degraded", outcome.Status())
}
