// Package batch orchestrates tailoring and building many independent jobs
// with per-job fault isolation.
package batch

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jonathan/resume-tailor/internal/types"
)

// Batch input column names. Matching is case-sensitive and exact; column
// order in the file is irrelevant.
const (
	colCompany            = "company"
	colRole               = "role"
	colTemplate           = "template"
	colJobDescriptionFile = "job_description_file"
	colPainPoints         = "pain_points"
	colKeywords           = "keywords"
	colKeywordsFile       = "keywords_file"
	colRecruiterName      = "recruiter_name"
	colRecruiterPosition  = "recruiter_position"
	colRecruiterEmail     = "recruiter_email"
)

// InputError reports a batch input file that could not be read at all.
// This is the only batch-level fatal condition; bad rows are per-job skips.
type InputError struct {
	Path    string
	Message string
	Cause   error
}

func (e *InputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("batch input %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("batch input %s: %s", e.Path, e.Message)
}

func (e *InputError) Unwrap() error {
	return e.Cause
}

// ReadJobSpecs parses the batch CSV file into an ordered list of JobSpecs.
// Rows are returned in input order; rows with missing required values are
// returned as-is and rejected later by JobSpec validation so the summary
// still carries one entry per row.
func ReadJobSpecs(path string) ([]types.JobSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &InputError{Path: path, Message: "cannot open batch file", Cause: err}
	}
	defer func() { _ = f.Close() }()

	return parseJobSpecs(f, path)
}

func parseJobSpecs(r io.Reader, path string) ([]types.JobSpec, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, &InputError{Path: path, Message: "cannot read header row", Cause: err}
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	field := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var specs []types.JobSpec
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &InputError{Path: path, Message: "malformed CSV row", Cause: err}
		}

		spec := types.JobSpec{
			Company:            field(row, colCompany),
			Role:               field(row, colRole),
			Template:           field(row, colTemplate),
			JobDescriptionFile: field(row, colJobDescriptionFile),
			PainPointsFile:     field(row, colPainPoints),
			KeywordsFile:       field(row, colKeywordsFile),
			RecruiterName:      field(row, colRecruiterName),
			RecruiterPosition:  field(row, colRecruiterPosition),
			RecruiterEmail:     field(row, colRecruiterEmail),
		}
		if raw := field(row, colKeywords); raw != "" {
			for _, kw := range strings.Split(raw, ",") {
				if kw = strings.TrimSpace(kw); kw != "" {
					spec.Keywords = append(spec.Keywords, kw)
				}
			}
		}
		specs = append(specs, spec)
	}

	if len(specs) == 0 {
		return nil, &InputError{Path: path, Message: "no jobs found in batch file"}
	}
	return specs, nil
}
