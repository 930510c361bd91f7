// Package email drafts and sends recruiter outreach emails for finished
// resumes. Email is glue around the build core: failures here are
// reported, never load-bearing.
package email

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/types"
)

// Drafter generates recruiter emails through the LLM client.
type Drafter struct {
	client llm.Client
}

// NewDrafter creates a Drafter backed by the given client.
func NewDrafter(client llm.Client) *Drafter {
	return &Drafter{client: client}
}

// DraftEmail generates a personalized recruiter email grounded in the
// tailored resume and the job description.
func (d *Drafter) DraftEmail(ctx context.Context, req types.EmailRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("invalid email request: %w", err)
	}

	draft, err := d.client.GenerateContent(ctx, buildEmailPrompt(req), llm.TierStandard)
	if err != nil {
		return "", fmt.Errorf("drafting email failed: %w", err)
	}
	return strings.TrimSpace(draft), nil
}

func buildEmailPrompt(req types.EmailRequest) string {
	positionText := ""
	if req.RecruiterPosition != "" {
		positionText = ", " + req.RecruiterPosition
	}

	sender := req.SenderName
	if sender == "" {
		sender = "the candidate"
	}
	senderLine := sender
	if req.SenderEmail != "" {
		senderLine = fmt.Sprintf("%s (%s)", sender, req.SenderEmail)
	}

	return fmt.Sprintf(`TASK: Write a professional, personalized email from %s to %s%s at %s regarding the %s position.

ABOUT THE COMPANY & ROLE:
%s

MY BACKGROUND (from resume):
%s

GUIDELINES:
1. Use a professional, conversational tone that's not overly formal
2. Be concise - no more than 4-5 short paragraphs
3. Include a clear subject line
4. Focus on 2-3 specific skills/experiences that directly address the company's needs
5. Do NOT oversell or use generic phrases like "I'm excited about the opportunity"
6. Demonstrate you understand the company's challenges and how you can help
7. Include a clear call to action (e.g., request for a call/interview)
8. Mention that your resume is attached
9. Sign off professionally

FORMAT:
- Start with the subject line, then the greeting
- Write a complete email ready to send
`, senderLine, req.RecruiterName, positionText, req.Company, req.Role, req.JobDescription, PlainTextFromLaTeX(req.ResumeLaTeX))
}

var subjectRe = regexp.MustCompile(`(?m)^(?:Subject|SUBJECT):\s*(.+)$`)

// ExtractSubject pulls the subject line out of a generated email, falling
// back to the first non-header line, then to a generic subject.
func ExtractSubject(emailContent string) string {
	if m := subjectRe.FindStringSubmatch(emailContent); m != nil {
		return strings.TrimSpace(m[1])
	}

	for _, line := range strings.Split(emailContent, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "From:") {
			return line
		}
	}
	return "Application for Position"
}

// stripHeaders removes From/Subject/To header lines the model may have
// emitted inside the body.
func stripHeaders(body string) string {
	var out []string
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "From:") ||
			strings.HasPrefix(trimmed, "Subject:") ||
			strings.HasPrefix(trimmed, "To:") {
			continue
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
