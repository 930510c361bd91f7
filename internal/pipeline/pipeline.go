// Package pipeline turns a LaTeX source document into a PDF artifact,
// detecting and remediating missing build dependencies along the way.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonathan/resume-tailor/internal/deps"
	"github.com/jonathan/resume-tailor/internal/remediate"
	"github.com/jonathan/resume-tailor/internal/toolrunner"
	"github.com/jonathan/resume-tailor/internal/types"
)

const (
	// DefaultCompiler is the LaTeX toolchain executable.
	DefaultCompiler = "pdflatex"
	// DefaultPasses is the number of real compile passes. Two passes
	// resolve cross-references deterministically.
	DefaultPasses = 2
	// diagnosticLimit bounds the compile-failure diagnostic. Full logs
	// are not retained.
	diagnosticLimit = 500
)

// intermediateExts are the auxiliary files pdflatex leaves next to the
// artifact. Removal is best-effort.
var intermediateExts = []string{".aux", ".log", ".out"}

// Installer is the slice of deps.Installer the pipeline needs, kept as an
// interface so tests can inject fakes.
type Installer interface {
	Available(ctx context.Context) bool
	Install(ctx context.Context, dependency string) error
}

// Remediator produces a degraded document copy for a dependency, or
// reports that none is possible.
type Remediator interface {
	Supported(dependency string) bool
	Remediate(document, dependency string) (string, error)
}

// TableRemediator adapts the remediate package's strategy table to the
// Remediator interface.
type TableRemediator struct{}

// Supported reports whether the strategy table covers the dependency.
func (TableRemediator) Supported(dependency string) bool {
	return remediate.Supported(dependency)
}

// Remediate applies the table strategy for the dependency.
func (TableRemediator) Remediate(document, dependency string) (string, error) {
	return remediate.Remediate(document, dependency)
}

// Options configures one pipeline run.
type Options struct {
	// Compiler is the toolchain executable. Empty selects DefaultCompiler.
	Compiler string
	// OutputPath is where the caller wants the final PDF. If the compiler
	// produces the artifact elsewhere it is moved into place.
	OutputPath string
	// WorkDir is the compile working directory. Empty uses the source
	// document's directory.
	WorkDir string
	// AutoRemediate permits degrading the document when a dependency can
	// neither be found nor installed. Without it such jobs fail.
	AutoRemediate bool
	// Passes overrides the number of real compile passes. Zero selects
	// DefaultPasses.
	Passes int
	// Verbose enables per-state progress output.
	Verbose bool
}

// Pipeline drives probe, remediate, compile, extract and cleanup for one
// source document at a time.
type Pipeline struct {
	runner     toolrunner.Runner
	detector   *deps.Detector
	installer  Installer
	remediator Remediator
}

// New creates a Pipeline. A nil detector uses the default signature
// registry; a nil remediator uses the built-in strategy table. A nil
// installer means no package manager is available.
func New(runner toolrunner.Runner, detector *deps.Detector, installer Installer, remediator Remediator) *Pipeline {
	if detector == nil {
		detector = deps.NewDetector()
	}
	if remediator == nil {
		remediator = TableRemediator{}
	}
	return &Pipeline{
		runner:     runner,
		detector:   detector,
		installer:  installer,
		remediator: remediator,
	}
}

// Build compiles the source document at texPath into the PDF named by
// opts.OutputPath. All per-job failures are folded into the returned
// BuildResult; the only error returned is toolchain unavailability, which
// is fatal to the whole run rather than to one job.
func (p *Pipeline) Build(ctx context.Context, texPath string, opts Options) (*types.BuildResult, error) {
	start := time.Now()

	compiler := opts.Compiler
	if compiler == "" {
		compiler = DefaultCompiler
	}
	workDir := opts.WorkDir
	if workDir == "" {
		workDir = filepath.Dir(texPath)
	}
	passes := opts.Passes
	if passes <= 0 {
		passes = DefaultPasses
	}

	finish := func(r *types.BuildResult) (*types.BuildResult, error) {
		r.Elapsed = time.Since(start)
		return r, nil
	}
	fail := func(reason string) (*types.BuildResult, error) {
		return finish(&types.BuildResult{Status: types.BuildFailed, Reason: reason})
	}

	// Probing: one throwaway pass to discover missing dependencies before
	// committing to the full compile.
	if opts.Verbose {
		fmt.Printf("   - Probing for missing packages...\n")
	}
	probe, err := p.runner.Run(ctx, compiler, probeArgs(workDir, texPath), workDir)
	if err != nil {
		return p.buildError(err, fail)
	}
	missing := p.detector.Detect(probe.CombinedOutput())

	// Remediating: install what we can, degrade what we must.
	compileTex := texPath
	var installed, remediated []string
	if len(missing) > 0 {
		if opts.Verbose {
			fmt.Printf("   - Missing packages detected: %s\n", strings.Join(missing, ", "))
		}

		unresolved := missing
		if p.installer != nil && p.installer.Available(ctx) {
			unresolved = unresolved[:0:0]
			for _, dep := range missing {
				if err := p.installer.Install(ctx, dep); err != nil {
					unresolved = append(unresolved, dep)
					continue
				}
				installed = append(installed, dep)
				if opts.Verbose {
					fmt.Printf("   - Installed %s\n", dep)
				}
			}
		}

		if len(unresolved) > 0 {
			document, err := os.ReadFile(texPath)
			if err != nil {
				return fail(fmt.Sprintf("source document unreadable: %v", err))
			}

			// Bounded loop: each dependency is remediated at most once,
			// always against the document accumulated so far.
			doc := string(document)
			for _, dep := range unresolved {
				if !opts.AutoRemediate || !p.remediator.Supported(dep) {
					return fail(fmt.Sprintf("unresolvable dependency: %s", dep))
				}
				doc, err = p.remediator.Remediate(doc, dep)
				if err != nil {
					return fail(fmt.Sprintf("unresolvable dependency: %s", dep))
				}
				remediated = append(remediated, dep)
			}

			base := strings.TrimSuffix(filepath.Base(texPath), ".tex")
			compileTex = filepath.Join(workDir, base+"_remediated.tex")
			if err := os.WriteFile(compileTex, []byte(doc), 0644); err != nil {
				return fail(fmt.Sprintf("writing remediated document: %v", err))
			}
			if opts.Verbose {
				fmt.Printf("   - Remediated document written to %s\n", compileTex)
			}
		}
	}

	// Compiling: fixed number of halt-on-error passes to resolve
	// cross-references.
	for pass := 1; pass <= passes; pass++ {
		if opts.Verbose {
			fmt.Printf("   - Running %s (pass %d/%d)...\n", compiler, pass, passes)
		}
		result, err := p.runner.Run(ctx, compiler, compileArgs(workDir, compileTex), workDir)
		if err != nil {
			return p.buildError(err, fail)
		}
		if result.ExitCode != 0 {
			return fail(tail(result.CombinedOutput(), diagnosticLimit))
		}
	}

	// ExtractingArtifact: the compiler writes <base>.pdf into the working
	// directory; relocate it to the caller's requested path.
	base := strings.TrimSuffix(filepath.Base(compileTex), ".tex")
	derived := filepath.Join(workDir, base+".pdf")
	if _, err := os.Stat(derived); err != nil {
		return fail("artifact missing")
	}
	artifact := derived
	if opts.OutputPath != "" && opts.OutputPath != derived {
		if err := os.Rename(derived, opts.OutputPath); err != nil {
			return fail(fmt.Sprintf("relocating artifact: %v", err))
		}
		artifact = opts.OutputPath
	}

	// CleaningUp: drop intermediates for both the original and the
	// remediated base names. Missing intermediates are not an error.
	cleanupIntermediates(workDir, strings.TrimSuffix(filepath.Base(texPath), ".tex"))
	if compileTex != texPath {
		cleanupIntermediates(workDir, base)
	}

	status := types.BuildSucceeded
	if len(remediated) > 0 {
		status = types.BuildDegraded
	}
	return finish(&types.BuildResult{
		Status:       status,
		ArtifactPath: artifact,
		TexPath:      compileTex,
		Remediated:   remediated,
		Installed:    installed,
	})
}

// buildError maps runner errors onto the result taxonomy: timeouts fail
// the job, a missing toolchain fails the run.
func (p *Pipeline) buildError(err error, fail func(string) (*types.BuildResult, error)) (*types.BuildResult, error) {
	var timeout *toolrunner.TimeoutError
	if errors.As(err, &timeout) {
		return fail("timeout")
	}
	var unavailable *toolrunner.ToolUnavailableError
	if errors.As(err, &unavailable) {
		return nil, err
	}
	return fail(err.Error())
}

func probeArgs(workDir, texPath string) []string {
	return []string{
		"-interaction=nonstopmode",
		"-output-directory=" + workDir,
		texPath,
	}
}

func compileArgs(workDir, texPath string) []string {
	return []string{
		"-interaction=nonstopmode",
		"-halt-on-error",
		"-output-directory=" + workDir,
		texPath,
	}
}

func cleanupIntermediates(workDir, base string) {
	for _, ext := range intermediateExts {
		_ = os.Remove(filepath.Join(workDir, base+ext))
	}
}

// tail returns at most limit trailing bytes of s, trimmed forward to a
// rune boundary so the diagnostic never starts mid-character.
func tail(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := len(s) - limit
	for cut < len(s) && !utf8.RuneStart(s[cut]) {
		cut++
	}
	return s[cut:]
}
