// Package remediate rewrites LaTeX documents so they compile without
// packages that could not be installed, trading visual fidelity for a
// working artifact.
package remediate

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrNotSupported is returned when no remediation strategy exists for a
// dependency. The caller decides whether that fails the build.
var ErrNotSupported = errors.New("no remediation strategy for dependency")

// replacement substitutes a package-provided symbol with a plain-text
// equivalent. Replacements are ordered so the transformation is
// deterministic.
type replacement struct {
	pattern *regexp.Regexp
	text    string
}

// strategy describes how to strip one package from a document: remove its
// usepackage directive, then replace every symbol it provided.
type strategy struct {
	directive    *regexp.Regexp
	replacements []replacement
}

// strategies maps dependency names to their remediation rules. Only a
// fixed, known subset of dependencies can be remediated.
var strategies = map[string]strategy{
	"fontawesome": {
		directive: regexp.MustCompile(`\\usepackage(\[\w+\])?\{fontawesome\}`),
		replacements: []replacement{
			{regexp.MustCompile(`\\faPhone\b`), "Phone:"},
			{regexp.MustCompile(`\\faEnvelope\b`), "Email:"},
			{regexp.MustCompile(`\\faGlobe\b`), "Website:"},
			{regexp.MustCompile(`\\faLinkedinSquare\b`), "LinkedIn:"},
			{regexp.MustCompile(`\\faGithub\b`), "GitHub:"},
			{regexp.MustCompile(`\\faTwitter\b`), "Twitter:"},
			{regexp.MustCompile(`\\faMobile\b`), "Mobile:"},
			{regexp.MustCompile(`\\faHome\b`), "Address:"},
			{regexp.MustCompile(`\\faMapMarker\b`), "Location:"},
			{regexp.MustCompile(`\\faCalendar\b`), "Date:"},
			{regexp.MustCompile(`\\faUser\b`), "User:"},
			{regexp.MustCompile(`\\faFile\b`), "File:"},
			{regexp.MustCompile(`\\faBook\b`), "Education:"},
		},
	},
	"titlesec": {
		directive: regexp.MustCompile(`\\usepackage(\[\w+\])?\{titlesec\}`),
		replacements: []replacement{
			// Custom section formatting is dropped; default \section
			// layout still compiles.
			{regexp.MustCompile(`\\titleformat\*?\{[^}]*\}[^\n]*`), ""},
			{regexp.MustCompile(`\\titlespacing\*?\{[^}]*\}[^\n]*`), ""},
		},
	},
}

// Supported reports whether a remediation strategy exists for the
// dependency.
func Supported(dependency string) bool {
	_, ok := strategies[dependency]
	return ok
}

// SupportedDependencies returns the names of all remediable dependencies.
func SupportedDependencies() []string {
	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	return names
}

// Remediate returns a copy of document with the dependency's directive
// removed and its symbols replaced by degraded plain-text equivalents.
// The transformation is pure: the same inputs always yield the same
// output, and applying it twice yields the same text as applying it once.
func Remediate(document, dependency string) (string, error) {
	strat, ok := strategies[dependency]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotSupported, dependency)
	}

	out := strat.directive.ReplaceAllString(document, "")
	for _, rep := range strat.replacements {
		out = rep.pattern.ReplaceAllString(out, rep.text)
	}
	return out, nil
}
