// Package deps detects missing LaTeX package dependencies in compiler
// output and installs them through an external package manager.
package deps

import (
	"regexp"
	"sort"
)

// Signature pairs a dependency name with the diagnostic pattern the
// compiler emits when that dependency is missing. The registry is static
// data: new tool-diagnostic formats are added here, never as branches in
// pipeline logic.
type Signature struct {
	Name    string
	Pattern *regexp.Regexp
}

// DefaultSignatures returns the registry of known missing-package
// diagnostics for TeX Live style toolchains.
func DefaultSignatures() []Signature {
	styNotFound := func(pkg string) *regexp.Regexp {
		return regexp.MustCompile("File `" + regexp.QuoteMeta(pkg) + `\.sty' not found`)
	}
	return []Signature{
		{Name: "fontawesome", Pattern: styNotFound("fontawesome")},
		{Name: "xcolor", Pattern: styNotFound("xcolor")},
		{Name: "hyperref", Pattern: styNotFound("hyperref")},
		{Name: "geometry", Pattern: styNotFound("geometry")},
		{Name: "titlesec", Pattern: styNotFound("titlesec")},
	}
}

// Detector matches captured compiler output against a signature registry.
type Detector struct {
	signatures []Signature
}

// NewDetector creates a Detector over the given signatures. With no
// arguments the default registry is used.
func NewDetector(signatures ...Signature) *Detector {
	if len(signatures) == 0 {
		signatures = DefaultSignatures()
	}
	return &Detector{signatures: signatures}
}

// Detect returns the names of all registered dependencies whose pattern
// appears in the output text. It is a pure function: unmatched output
// yields an empty set, never an error. Unknown compiler errors are not
// classified as missing dependencies.
func (d *Detector) Detect(output string) []string {
	var missing []string
	seen := make(map[string]bool, len(d.signatures))
	for _, sig := range d.signatures {
		if seen[sig.Name] {
			continue
		}
		if sig.Pattern.MatchString(output) {
			missing = append(missing, sig.Name)
			seen[sig.Name] = true
		}
	}
	sort.Strings(missing)
	return missing
}
