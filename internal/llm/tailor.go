package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jonathan/resume-tailor/internal/types"
)

// Tailor is the content provider: it rewrites a LaTeX template so its
// Work Experience and Technical Skills sections target one company and
// role, while preserving the document's structure and layout.
type Tailor struct {
	client Client
}

// NewTailor creates a content provider backed by the given client.
func NewTailor(client Client) *Tailor {
	return &Tailor{client: client}
}

// TailorResume generates the tailored LaTeX document for one request and
// returns it cleaned of any markdown wrapping the model added.
func (t *Tailor) TailorResume(ctx context.Context, req types.TailorRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("invalid tailor request: %w", err)
	}

	raw, err := t.client.GenerateContent(ctx, BuildTailorPrompt(req), TierAdvanced)
	if err != nil {
		return "", fmt.Errorf("tailoring failed: %w", err)
	}

	cleaned := CleanLaTeX(raw)
	if !strings.HasPrefix(strings.TrimSpace(cleaned), `\documentclass`) {
		return "", fmt.Errorf("model output is not a LaTeX document")
	}
	return cleaned, nil
}

// BuildTailorPrompt assembles the tailoring prompt. Keyword and
// pain-point sections are included only when the request carries them.
func BuildTailorPrompt(req types.TailorRequest) string {
	var keywordsSection string
	if len(req.Keywords) > 0 {
		keywordsSection = fmt.Sprintf(`
8. REQUIRED KEYWORDS INTEGRATION:
   - Naturally integrate these keywords into the resume: %s
   - Do NOT force keywords where they don't fit naturally
   - Modify existing bullet points to incorporate keywords where they make sense
   - Only use keywords where they accurately reflect the experience
   - If a keyword cannot be naturally integrated, it's better to omit it than force it
   - Focus on the Technical Skills section and Work Experience bullet points for keyword integration
`, strings.Join(req.Keywords, ", "))
	}

	var painPointsSection, painPointsHint string
	if strings.TrimSpace(req.PainPoints) != "" {
		painPointsSection = fmt.Sprintf("\n\nCOMPANY PAIN POINTS ANALYSIS:\n%s\n", strings.TrimSpace(req.PainPoints))
		painPointsHint = " (use the provided pain points analysis above to guide this)"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`SYSTEM:
You are an expert resume consultant and LaTeX engineer with deep experience in applicant tracking systems (ATS) and keyword optimization.
Your sole task is to tailor an existing LaTeX resume for %[1]s and the %[2]s role,
while preserving *every* LaTeX formatting token: this includes all \\, \section, %%, {}, \item, whitespace, macro usage, and vertical spacing.
The resume MUST remain exactly one page in length, with identical formatting and layout to the original.

USER:
Company: "%[1]s"
Role: "%[2]s"
Job Description:
%[3]s%[4]s

Resume (LaTeX source):
%[5]s

INSTRUCTIONS:

1. INITIAL ANALYSIS:
   - Identify the 5-8 most critical keywords and "must-have" skills from the job description
   - Highlight the employer's main pain points or challenges this role is solving%[6]s
   - Note the specific tools, frameworks, technical stack, or methodologies mentioned

2. PRESERVE FORMAT:
   - Maintain **exact** one-page length; overflow is not permitted
   - Preserve every LaTeX formatting token, including all \\, \section, %%, {}, \item, whitespace, macro usage, and vertical spacing
   - Do **not** change indentation, spacing, or remove any section or comment

3. NEVER FABRICATE:
   - Do **not** invent any job title, skill, project, or technology not already present in the resume
   - If a required skill/tool is not in the resume, you may reference transferable concepts or similar technologies already present
   - Under no circumstances should you create a role, experience, or qualification that doesn't exist in the original

4. TAILORING WORK EXPERIENCE:
   - Modify only the *content* of Work Experience bullet points and the Technical Skills section
   - Rephrase, reorder, or condense each bullet while keeping the same number of bullets per role
   - Focus on the employer's pain points and emphasize relevant experience using transferable skills where necessary
   - Ensure the **first 1-2 bullets per role** address the role's primary needs
   - Apply the **PAR structure** to each bullet: Problem (optional, aligned with JD pain points), Action (what you did, based on the original resume only), Result (outcome, preferably quantified)
   - THE IMPACT (RESULT) is needed in each bullet point because it is the most important part of the bullet point

5. SKILLS & KEYWORDS:
   - Incorporate **exact-match keywords** from the job description into the Technical Skills and bullets (especially the first bullet of each role)
   - If ATS-relevant terms are implied but not explicitly stated in the resume, surface them using standard terminology
   - Avoid synonyms; use the employer's exact phrasing when possible

6. STYLE & STRUCTURE:
   - Do not change section order, job count, or macro definitions
   - Do not change the number of bullets in the Work Experience section
   - Keep each bullet approximately the same length and line count to maintain layout
   - Begin all bullets with a strong action verb, in correct tense
   - If a revised bullet risks layout overflow, shorten wording to stay on one page; do not drop any bullet
%[7]s
7. FINAL OUTPUT:
   - Output a complete and valid LaTeX document
   - It must start with \documentclass and end with \end{document}
   - Do **not** wrap in markdown, backticks, or include any explanation or commentary

Please generate the tailored LaTeX resume now.
`, req.Company, req.Role, req.JobDescription, painPointsSection, req.Template, painPointsHint, keywordsSection))

	return sb.String()
}

var documentclassRe = regexp.MustCompile(`(?s)(\\documentclass.*)`)

// CleanLaTeX strips markdown code fences and anything the model emitted
// before \documentclass.
func CleanLaTeX(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```latex")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.ReplaceAll(content, "`", "")

	if !strings.HasPrefix(strings.TrimSpace(content), `\documentclass`) {
		if match := documentclassRe.FindString(content); match != "" {
			content = match
		}
	}
	return strings.TrimSpace(content)
}
