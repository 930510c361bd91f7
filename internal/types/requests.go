package types

import "github.com/go-playground/validator/v10"

// TailorRequest carries everything the content provider needs to produce
// a tailored document from a template.
type TailorRequest struct {
	Template       string   `json:"template" validate:"required"`
	Company        string   `json:"company" validate:"required"`
	Role           string   `json:"role" validate:"required"`
	JobDescription string   `json:"job_description" validate:"required"`
	PainPoints     string   `json:"pain_points,omitempty"`
	Keywords       []string `json:"keywords,omitempty"`
}

// Validate validates the TailorRequest using the validator.
func (r *TailorRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// EmailRequest carries the inputs for drafting a recruiter email.
type EmailRequest struct {
	ResumeLaTeX       string `json:"resume_latex" validate:"required"`
	Company           string `json:"company" validate:"required"`
	Role              string `json:"role" validate:"required"`
	JobDescription    string `json:"job_description" validate:"required"`
	RecruiterName     string `json:"recruiter_name" validate:"required"`
	RecruiterPosition string `json:"recruiter_position,omitempty"`
	SenderName        string `json:"sender_name,omitempty"`
	SenderEmail       string `json:"sender_email,omitempty" validate:"omitempty,email"`
}

// Validate validates the EmailRequest using the validator.
func (r *EmailRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
