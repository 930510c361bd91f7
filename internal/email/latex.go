package email

import (
	"regexp"
	"strings"
)

// maxPlainTextLen bounds how much resume text is fed into the email
// prompt.
const maxPlainTextLen = 2000

var (
	latexPreambleRe = regexp.MustCompile(`\\(?:documentclass|usepackage)[^{]*\{[^}]*\}`)
	latexCommentRe  = regexp.MustCompile(`%.*`)
	latexSectionRe  = regexp.MustCompile(`\\section\*?\{([^}]*)\}`)
	latexSubsecRe   = regexp.MustCompile(`\\subsection\*?\{([^}]*)\}`)
	latexItemRe     = regexp.MustCompile(`\\item\s*`)
	latexCmdArgRe   = regexp.MustCompile(`\\[a-zA-Z]+(\[[^\]]*\])?\{([^{}]*)\}`)
	latexCmdRe      = regexp.MustCompile(`\\[a-zA-Z]+`)
	latexBracesRe   = regexp.MustCompile(`[{}]`)
	multiSpaceRe    = regexp.MustCompile(`[ \t]+`)
	multiNewlineRe  = regexp.MustCompile(`\n\s*\n+`)
)

// PlainTextFromLaTeX reduces a LaTeX document to readable plain text so
// the email prompt gets resume content rather than markup. The reduction
// is lossy on purpose and truncated to keep the prompt small.
func PlainTextFromLaTeX(latex string) string {
	text := latex

	text = latexPreambleRe.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, `\begin{document}`, "")
	text = strings.ReplaceAll(text, `\end{document}`, "")
	text = strings.ReplaceAll(text, `\maketitle`, "")
	text = latexCommentRe.ReplaceAllString(text, "")

	text = latexSectionRe.ReplaceAllString(text, "\n\n$1:\n")
	text = latexSubsecRe.ReplaceAllString(text, "\n$1:\n")
	text = latexItemRe.ReplaceAllString(text, "\n- ")

	// Unwrap remaining command arguments, then drop bare commands.
	text = latexCmdArgRe.ReplaceAllString(text, "$2")
	text = latexCmdRe.ReplaceAllString(text, "")
	text = latexBracesRe.ReplaceAllString(text, "")

	text = multiSpaceRe.ReplaceAllString(text, " ")
	text = multiNewlineRe.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)

	if len(text) > maxPlainTextLen {
		text = text[:maxPlainTextLen-3] + "..."
	}
	return text
}
