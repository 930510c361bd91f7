// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonathan/resume-tailor/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintJobSpec outputs a human-readable summary of one job before it runs.
func (p *Printer) PrintJobSpec(spec *types.JobSpec) {
	if spec == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Company:  %s\n", spec.Company))
	sb.WriteString(fmt.Sprintf("Role:     %s\n", spec.Role))
	sb.WriteString(fmt.Sprintf("Template: %s\n", spec.Template))
	sb.WriteString(fmt.Sprintf("Job desc: %s", spec.JobDescriptionFile))

	if len(spec.Keywords) > 0 {
		keywords := strings.Join(spec.Keywords, ", ")
		if len(keywords) > 40 {
			keywords = keywords[:37] + "..."
		}
		sb.WriteString(fmt.Sprintf("\nKeywords: %s", keywords))
	}
	if spec.WantsEmail() {
		sb.WriteString(fmt.Sprintf("\nEmail to: %s", spec.RecruiterEmail))
	}

	p.printBox("JOB", sb.String())
}

// PrintBuildResult outputs the terminal state of one build.
func (p *Printer) PrintBuildResult(result *types.BuildResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Status:   %s\n", result.Status))
	if result.ArtifactPath != "" {
		sb.WriteString(fmt.Sprintf("Artifact: %s\n", result.ArtifactPath))
	}
	if len(result.Installed) > 0 {
		sb.WriteString(fmt.Sprintf("Installed packages: %s\n", strings.Join(result.Installed, ", ")))
	}
	if len(result.Remediated) > 0 {
		sb.WriteString(fmt.Sprintf("Degraded packages:  %s\n", strings.Join(result.Remediated, ", ")))
	}
	if result.Reason != "" {
		sb.WriteString(fmt.Sprintf("Reason:   %s\n", result.Reason))
	}
	sb.WriteString(fmt.Sprintf("Elapsed:  %s", result.Elapsed.Round(10*time.Millisecond)))

	p.printBox("BUILD RESULT", sb.String())
}

// PrintBatchSummary outputs the per-bucket counts and every non-successful
// outcome of a finished batch.
func (p *Printer) PrintBatchSummary(summary *types.BatchSummary) {
	if summary == nil || summary.Len() == 0 {
		return
	}

	counts := summary.Counts()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Jobs:      %d\n", summary.Len()))
	sb.WriteString(fmt.Sprintf("Succeeded: %d\n", counts["succeeded"]))
	sb.WriteString(fmt.Sprintf("Degraded:  %d\n", counts["degraded"]))
	sb.WriteString(fmt.Sprintf("Failed:    %d\n", counts["failed"]))
	sb.WriteString(fmt.Sprintf("Skipped:   %d", counts["skipped"]))

	shown := 0
	for i := range summary.Outcomes {
		outcome := &summary.Outcomes[i]
		status := outcome.Status()
		if status == "succeeded" {
			continue
		}
		if shown == 0 {
			sb.WriteString("\n")
		}
		if shown >= maxItemsToShow {
			sb.WriteString("\n... and more")
			break
		}
		reason := outcome.Reason
		if reason == "" && outcome.Result != nil {
			reason = outcome.Result.Reason
		}
		sb.WriteString(fmt.Sprintf("\n%s: %s", status, outcome.Identity))
		if reason != "" {
			sb.WriteString(fmt.Sprintf("\n  %s", reason))
		}
		shown++
	}

	p.printBox("BATCH SUMMARY", sb.String())
}
