// Package types provides type definitions for structured data used throughout the resume-tailor system.
package types

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// JobSpec describes one unit of batch work: which company and role to
// tailor for, where the inputs live, and optional recruiter contact data.
// Specs are read once from the batch input and never mutated.
type JobSpec struct {
	Company            string   `json:"company" validate:"required"`
	Role               string   `json:"role" validate:"required"`
	Template           string   `json:"template" validate:"required"`
	JobDescriptionFile string   `json:"job_description_file" validate:"required"`
	PainPointsFile     string   `json:"pain_points,omitempty"`
	Keywords           []string `json:"keywords,omitempty"`
	KeywordsFile       string   `json:"keywords_file,omitempty"`
	RecruiterName      string   `json:"recruiter_name,omitempty"`
	RecruiterPosition  string   `json:"recruiter_position,omitempty"`
	RecruiterEmail     string   `json:"recruiter_email,omitempty" validate:"omitempty,email"`
}

// Validate validates the JobSpec using the validator.
func (s *JobSpec) Validate() error {
	validate := validator.New()
	return validate.Struct(s)
}

// Identity returns the human-readable "Company - Role" label used in
// progress output and batch summaries.
func (s *JobSpec) Identity() string {
	return s.Company + " - " + s.Role
}

// OutputBaseName returns the slug used to name all per-job output files,
// e.g. "acme_corp_platform_engineer_resume".
func (s *JobSpec) OutputBaseName() string {
	slug := func(v string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(v)), " ", "_")
	}
	return slug(s.Company) + "_" + slug(s.Role) + "_resume"
}

// WantsEmail reports whether this spec asks for a recruiter email draft.
func (s *JobSpec) WantsEmail() bool {
	return strings.TrimSpace(s.RecruiterName) != ""
}
