package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-tailor/internal/fetch"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/types"
)

// ContentProvider produces a tailored LaTeX document for one job. The
// orchestrator only consumes its return value.
type ContentProvider interface {
	TailorResume(ctx context.Context, req types.TailorRequest) (string, error)
}

// EmailDrafter drafts a recruiter email for a finished resume. Optional;
// email is glue around the core and never fails a job.
type EmailDrafter interface {
	DraftEmail(ctx context.Context, req types.EmailRequest) (string, error)
}

// RunStore persists batch runs and per-job outcomes. Optional; persistence
// failures are warnings, never job failures.
type RunStore interface {
	CreateBatchRun(ctx context.Context, source string, total int) (uuid.UUID, error)
	SaveJobOutcome(ctx context.Context, runID uuid.UUID, position int, spec *types.JobSpec, outcome *types.JobOutcome) error
	CompleteBatchRun(ctx context.Context, runID uuid.UUID, status string) error
}

// Options configures a batch run.
type Options struct {
	// OutputDir receives every per-job .tex, .pdf and email file.
	OutputDir string
	// Workers caps concurrent jobs. Values below 1 run sequentially.
	Workers int
	// AutoRemediate is passed through to the build pipeline.
	AutoRemediate bool
	// Compiler overrides the toolchain executable (default pdflatex).
	Compiler string
	// Passes overrides the number of compile passes (default two).
	Passes int
	// Source labels the batch input (file path) for persistence.
	Source string
	// UseBrowser renders URL job descriptions with a headless browser when
	// plain fetching yields too little text.
	UseBrowser bool
	// SenderName and SenderEmail identify the candidate in recruiter
	// emails.
	SenderName  string
	SenderEmail string
	// Verbose enables pipeline progress output.
	Verbose bool
}

// Orchestrator iterates an ordered list of job specs, tailoring and
// building each one. One job's failure never terminates the processing of
// subsequent jobs.
type Orchestrator struct {
	pipeline *pipeline.Pipeline
	provider ContentProvider
	emailer  EmailDrafter
	store    RunStore
	opts     Options
}

// New creates an Orchestrator. emailer and store may be nil.
func New(p *pipeline.Pipeline, provider ContentProvider, emailer EmailDrafter, store RunStore, opts Options) *Orchestrator {
	return &Orchestrator{
		pipeline: p,
		provider: provider,
		emailer:  emailer,
		store:    store,
		opts:     opts,
	}
}

// Run processes every spec in input order and returns a summary with
// exactly one outcome per spec. Outcomes are never rolled back; the
// summary is complete even when every job fails.
func (o *Orchestrator) Run(ctx context.Context, specs []types.JobSpec) *types.BatchSummary {
	outcomes := make([]types.JobOutcome, len(specs))

	var runID uuid.UUID
	if o.store != nil {
		id, err := o.store.CreateBatchRun(ctx, o.opts.Source, len(specs))
		if err != nil {
			fmt.Printf("Warning: failed to create batch run record: %v\n", err)
			fmt.Printf("Continuing without database persistence...\n")
			o.store = nil
		} else {
			runID = id
		}
	}

	workers := o.opts.Workers
	if workers < 1 {
		workers = 1
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range specs {
		g.Go(func() error {
			fmt.Printf("--- Processing job #%d: %s ---\n", i+1, specs[i].Identity())
			outcomes[i] = o.runJob(gCtx, &specs[i])
			if o.store != nil {
				if err := o.store.SaveJobOutcome(gCtx, runID, i, &specs[i], &outcomes[i]); err != nil {
					fmt.Printf("Warning: failed to persist outcome for %s: %v\n", specs[i].Identity(), err)
				}
			}
			return nil
		})
	}
	// Job errors are folded into outcomes, never returned.
	_ = g.Wait()

	if o.store != nil {
		if err := o.store.CompleteBatchRun(ctx, runID, "completed"); err != nil {
			fmt.Printf("Warning: failed to complete batch run record: %v\n", err)
		}
	}

	return &types.BatchSummary{Outcomes: outcomes}
}

// runJob processes a single spec. Every failure path is converted into a
// recorded outcome; a panic inside any collaborator is caught here so the
// batch keeps going.
func (o *Orchestrator) runJob(ctx context.Context, spec *types.JobSpec) (outcome types.JobOutcome) {
	outcome.Identity = spec.Identity()

	defer func() {
		if r := recover(); r != nil {
			outcome.Result = nil
			outcome.Skipped = false
			outcome.Reason = fmt.Sprintf("unexpected failure: %v", r)
		}
	}()

	if err := spec.Validate(); err != nil {
		outcome.Skipped = true
		outcome.Reason = fmt.Sprintf("invalid job spec: %v", err)
		return outcome
	}

	template, err := os.ReadFile(spec.Template)
	if err != nil {
		outcome.Skipped = true
		outcome.Reason = fmt.Sprintf("template not readable: %v", err)
		return outcome
	}

	jobDescription, err := o.readJobDescription(ctx, spec.JobDescriptionFile)
	if err != nil {
		outcome.Skipped = true
		outcome.Reason = err.Error()
		return outcome
	}

	painPoints := readOptional(spec.PainPointsFile, "pain points")
	keywords := spec.Keywords
	if len(keywords) == 0 && spec.KeywordsFile != "" {
		keywords = splitLines(readOptional(spec.KeywordsFile, "keywords"))
	}

	tailored, err := o.provider.TailorResume(ctx, types.TailorRequest{
		Template:       string(template),
		Company:        spec.Company,
		Role:           spec.Role,
		JobDescription: jobDescription,
		PainPoints:     painPoints,
		Keywords:       keywords,
	})
	if err != nil {
		outcome.Reason = fmt.Sprintf("content provider: %v", err)
		return outcome
	}

	base := spec.OutputBaseName()
	texPath := filepath.Join(o.opts.OutputDir, base+".tex")
	if err := os.WriteFile(texPath, []byte(tailored), 0644); err != nil {
		outcome.Reason = fmt.Sprintf("writing tailored document: %v", err)
		return outcome
	}

	// Each job compiles in its own working directory so parallel jobs
	// cannot collide on intermediate files.
	workDir := filepath.Join(o.opts.OutputDir, "work-"+uuid.NewString()[:8])
	if err := os.MkdirAll(workDir, 0755); err != nil {
		outcome.Reason = fmt.Sprintf("creating working directory: %v", err)
		return outcome
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	result, err := o.pipeline.Build(ctx, texPath, pipeline.Options{
		Compiler:      o.opts.Compiler,
		OutputPath:    filepath.Join(o.opts.OutputDir, base+".pdf"),
		WorkDir:       workDir,
		AutoRemediate: o.opts.AutoRemediate,
		Passes:        o.opts.Passes,
		Verbose:       o.opts.Verbose,
	})
	if err != nil {
		// Toolchain unavailable. Fatal in spirit, but recorded per job so
		// the summary stays complete.
		outcome.Reason = err.Error()
		return outcome
	}
	outcome.Result = result

	// A degraded build compiled a remediated copy inside the scratch dir,
	// which is removed when this job returns. Keep that source next to the
	// artifact so the caller can inspect what was actually compiled.
	if result.Succeeded() && result.TexPath != texPath {
		kept := filepath.Join(o.opts.OutputDir, filepath.Base(result.TexPath))
		if err := os.Rename(result.TexPath, kept); err != nil {
			fmt.Printf("Warning: keeping remediated source for %s failed: %v\n", spec.Identity(), err)
			result.TexPath = ""
		} else {
			result.TexPath = kept
		}
	}

	if result.Succeeded() && spec.WantsEmail() && o.emailer != nil {
		o.draftEmail(ctx, spec, jobDescription, tailored, &outcome)
	}

	return outcome
}

// draftEmail writes a recruiter email next to the resume. Email problems
// are reported but never change the job outcome.
func (o *Orchestrator) draftEmail(ctx context.Context, spec *types.JobSpec, jobDescription, resume string, outcome *types.JobOutcome) {
	draft, err := o.emailer.DraftEmail(ctx, types.EmailRequest{
		ResumeLaTeX:       resume,
		Company:           spec.Company,
		Role:              spec.Role,
		JobDescription:    jobDescription,
		RecruiterName:     spec.RecruiterName,
		RecruiterPosition: spec.RecruiterPosition,
		SenderName:        o.opts.SenderName,
		SenderEmail:       o.opts.SenderEmail,
	})
	if err != nil {
		fmt.Printf("Warning: recruiter email for %s failed: %v\n", spec.Identity(), err)
		return
	}

	emailPath := filepath.Join(o.opts.OutputDir, strings.TrimSuffix(spec.OutputBaseName(), "_resume")+"_email.txt")
	if err := os.WriteFile(emailPath, []byte(draft), 0644); err != nil {
		fmt.Printf("Warning: writing recruiter email for %s failed: %v\n", spec.Identity(), err)
		return
	}
	outcome.EmailTex = emailPath
}

// readJobDescription loads the job description from a local file, or from
// a URL when the spec points at one.
func (o *Orchestrator) readJobDescription(ctx context.Context, source string) (string, error) {
	var text string
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		result, err := fetch.URL(ctx, source, &fetch.Options{UseBrowser: o.opts.UseBrowser})
		if err != nil {
			return "", fmt.Errorf("job description not fetchable: %w", err)
		}
		text = result.Text
	} else {
		data, err := os.ReadFile(source)
		if err != nil {
			return "", fmt.Errorf("job description not readable: %w", err)
		}
		text = string(data)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("job description is empty: %s", source)
	}
	return text, nil
}

// readOptional reads an optional input file, warning instead of failing.
func readOptional(path, label string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Warning: error reading %s file %s: %v - proceeding without it\n", label, path, err)
		return ""
	}
	return strings.TrimSpace(string(data))
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
