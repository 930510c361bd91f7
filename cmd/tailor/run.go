package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/email"
	"github.com/jonathan/resume-tailor/internal/observability"
	"github.com/jonathan/resume-tailor/internal/types"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Tailor and build a resume for a single job",
	Long: `Tailors the template resume to one job description, compiles it to PDF,
and optionally drafts a recruiter email.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runSingleCmd,
}

var (
	runConfigPath        string
	runTemplate          string
	runCompany           string
	runRole              string
	runJob               string
	runPainPoints        string
	runKeywords          string
	runKeywordsFile      string
	runRecruiterName     string
	runRecruiterPosition string
	runRecruiterEmail    string
	runOutputDir         string
	runAPIKey            string
	runModel             string
	runCompiler          string
	runPasses            int
	runAutoRemediate     bool
	runUseBrowser        bool
	runSendEmail         bool
	runVerbose           bool
	runDatabaseURL       string
)

func init() {
	// Config file flag (processed first)
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	runCommand.Flags().StringVarP(&runTemplate, "template", "t", "", "Path to LaTeX resume template")
	runCommand.Flags().StringVarP(&runCompany, "company", "c", "", "Company name")
	runCommand.Flags().StringVarP(&runRole, "role", "r", "", "Role title")
	runCommand.Flags().StringVarP(&runJob, "job", "j", "", "Path or URL of the job description")
	runCommand.Flags().StringVar(&runPainPoints, "pain-points", "", "Path to a company pain points analysis file (optional)")
	runCommand.Flags().StringVar(&runKeywords, "keywords", "", "Comma-separated keywords to work into the resume (optional)")
	runCommand.Flags().StringVar(&runKeywordsFile, "keywords-file", "", "Path to a newline-separated keywords file (optional)")
	runCommand.Flags().StringVar(&runRecruiterName, "recruiter-name", "", "Recruiter name for the outreach email (optional)")
	runCommand.Flags().StringVar(&runRecruiterPosition, "recruiter-position", "", "Recruiter position for the outreach email (optional)")
	runCommand.Flags().StringVar(&runRecruiterEmail, "recruiter-email", "", "Recruiter address; enables email drafting (optional)")
	runCommand.Flags().StringVarP(&runOutputDir, "output-dir", "o", "", "Directory for generated files (default \"output\")")
	runCommand.Flags().StringVar(&runModel, "model", "", "Pin every LLM request to one model")
	runCommand.Flags().StringVar(&runCompiler, "compiler", "", "LaTeX toolchain executable (default pdflatex)")
	runCommand.Flags().IntVar(&runPasses, "passes", 0, "Compile passes per document (default 2)")
	runCommand.Flags().BoolVar(&runAutoRemediate, "auto-remediate", false, "Degrade documents whose packages cannot be found or installed")
	runCommand.Flags().BoolVar(&runUseBrowser, "use-browser", false, "Use headless browser for SPA job pages (requires Chrome)")
	runCommand.Flags().BoolVar(&runSendEmail, "send-email", false, "Send the drafted email with the PDF attached (requires sender_email config and EMAIL_APP_PASSWORD)")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed progress information")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	runCommand.Flags().StringVar(&runAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	// Database URL for run history
	runCommand.Flags().StringVar(&runDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(runCommand)
}

func runSingleCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := mergeRunConfig(cmd)
	if err != nil {
		return err
	}

	if cfg.Template == "" {
		return fmt.Errorf("--template is required (via flag or config)")
	}
	if runCompany == "" || runRole == "" {
		return fmt.Errorf("--company and --role are required")
	}
	if runJob == "" {
		return fmt.Errorf("--job is required")
	}
	if err := resolveSecrets(&cfg); err != nil {
		return err
	}

	spec := types.JobSpec{
		Company:            runCompany,
		Role:               runRole,
		Template:           cfg.Template,
		JobDescriptionFile: runJob,
		PainPointsFile:     runPainPoints,
		KeywordsFile:       runKeywordsFile,
		RecruiterName:      runRecruiterName,
		RecruiterPosition:  runRecruiterPosition,
		RecruiterEmail:     runRecruiterEmail,
	}
	for _, kw := range strings.Split(runKeywords, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			spec.Keywords = append(spec.Keywords, kw)
		}
	}

	s, err := buildStack(ctx, cfg, runJob)
	if err != nil {
		return err
	}
	defer s.Close()

	printer := observability.NewPrinter(os.Stdout)
	if cfg.Verbose {
		printer.PrintJobSpec(&spec)
	}

	summary := s.orchestrator.Run(ctx, []types.JobSpec{spec})
	outcome := &summary.Outcomes[0]

	if cfg.Verbose && outcome.Result != nil {
		printer.PrintBuildResult(outcome.Result)
	}

	// A single-job run maps the job's outcome straight to the exit code.
	switch outcome.Status() {
	case "succeeded":
		fmt.Printf("Resume built: %s\n", outcome.Result.ArtifactPath)
	case "degraded":
		fmt.Printf("Resume built with degraded packages (%s): %s\n",
			strings.Join(outcome.Result.Remediated, ", "), outcome.Result.ArtifactPath)
	default:
		reason := outcome.Reason
		if reason == "" && outcome.Result != nil {
			reason = outcome.Result.Reason
		}
		return fmt.Errorf("job %s: %s", outcome.Identity, reason)
	}

	if outcome.EmailTex != "" {
		fmt.Printf("Recruiter email drafted: %s\n", outcome.EmailTex)
	}

	if runSendEmail {
		return sendDraftedEmail(&cfg, &spec, outcome)
	}
	return nil
}

// sendDraftedEmail delivers the drafted email with the built PDF attached.
// Only reachable after a successful build.
func sendDraftedEmail(cfg *config.Config, spec *types.JobSpec, outcome *types.JobOutcome) error {
	if outcome.EmailTex == "" {
		return fmt.Errorf("--send-email requires a drafted email; set --recruiter-name and --recruiter-email")
	}
	if spec.RecruiterEmail == "" {
		return fmt.Errorf("--send-email requires --recruiter-email")
	}
	if cfg.SenderEmail == "" {
		return fmt.Errorf("--send-email requires sender_email in the config file")
	}
	password := os.Getenv("EMAIL_APP_PASSWORD")
	if password == "" {
		return fmt.Errorf("EMAIL_APP_PASSWORD environment variable is required with --send-email")
	}

	draft, err := os.ReadFile(outcome.EmailTex)
	if err != nil {
		return fmt.Errorf("reading drafted email: %w", err)
	}

	msg := &email.Message{
		From:           cfg.SenderEmail,
		To:             spec.RecruiterEmail,
		Subject:        email.ExtractSubject(string(draft)),
		Body:           string(draft),
		AttachmentPath: outcome.Result.ArtifactPath,
	}
	if err := email.Send(msg, password); err != nil {
		return err
	}
	fmt.Printf("Email sent to %s\n", spec.RecruiterEmail)
	return nil
}

// mergeRunConfig loads the optional config file, applies CLI overrides and
// fills defaults.
func mergeRunConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := loadConfigFile(runConfigPath, runVerbose)
	if err != nil {
		return cfg, err
	}

	// Command-line args take priority, but only when explicitly set.
	flags := cmd.Flags()
	if flags.Changed("template") {
		cfg.Template = runTemplate
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir = runOutputDir
	}
	if flags.Changed("api-key") {
		cfg.APIKey = runAPIKey
	}
	if flags.Changed("model") {
		cfg.Model = runModel
	}
	if flags.Changed("compiler") {
		cfg.Compiler = runCompiler
	}
	if flags.Changed("passes") {
		cfg.Passes = runPasses
	}
	if flags.Changed("auto-remediate") {
		cfg.AutoRemediate = runAutoRemediate
	}
	if flags.Changed("use-browser") {
		cfg.UseBrowser = runUseBrowser
	}
	if flags.Changed("verbose") {
		cfg.Verbose = runVerbose
	}
	if flags.Changed("db-url") {
		cfg.DatabaseURL = runDatabaseURL
	}

	cfg = cfg.MergeWithDefaults(config.Config{
		OutputDir: "output",
		Workers:   1,
	})
	return cfg, nil
}
