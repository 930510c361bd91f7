package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/batch"
	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/observability"
)

var batchCommand = &cobra.Command{
	Use:   "batch",
	Short: "Tailor and build resumes for every job in a CSV file",
	Long: `Processes a CSV of job applications, tailoring and compiling one resume
per row. A failing job is recorded and skipped; the batch always runs to
completion. The command only fails when the batch file cannot be read or
the LaTeX toolchain is missing.`,
	RunE: runBatchCmd,
}

var (
	batchConfigPath    string
	batchFile          string
	batchTemplate      string
	batchOutputDir     string
	batchWorkers       int
	batchAPIKey        string
	batchModel         string
	batchCompiler      string
	batchPasses        int
	batchAutoRemediate bool
	batchUseBrowser    bool
	batchVerbose       bool
	batchDatabaseURL   string
)

func init() {
	batchCommand.Flags().StringVar(&batchConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	batchCommand.Flags().StringVarP(&batchFile, "batch", "b", "", "Path to the batch CSV file")
	batchCommand.Flags().StringVarP(&batchTemplate, "template", "t", "", "Default LaTeX template for rows without one")
	batchCommand.Flags().StringVarP(&batchOutputDir, "output-dir", "o", "", "Directory for generated files (default \"output\")")
	batchCommand.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "Concurrent jobs (default 1)")
	batchCommand.Flags().StringVar(&batchModel, "model", "", "Pin every LLM request to one model")
	batchCommand.Flags().StringVar(&batchCompiler, "compiler", "", "LaTeX toolchain executable (default pdflatex)")
	batchCommand.Flags().IntVar(&batchPasses, "passes", 0, "Compile passes per document (default 2)")
	batchCommand.Flags().BoolVar(&batchAutoRemediate, "auto-remediate", false, "Degrade documents whose packages cannot be found or installed")
	batchCommand.Flags().BoolVar(&batchUseBrowser, "use-browser", false, "Use headless browser for SPA job pages (requires Chrome)")
	batchCommand.Flags().BoolVarP(&batchVerbose, "verbose", "v", false, "Print detailed progress information")
	batchCommand.Flags().StringVar(&batchAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	batchCommand.Flags().StringVar(&batchDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(batchCommand)
}

func runBatchCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := mergeBatchConfig(cmd)
	if err != nil {
		return err
	}

	if cfg.Batch == "" {
		return fmt.Errorf("--batch is required (via flag or config)")
	}
	if err := resolveSecrets(&cfg); err != nil {
		return err
	}

	// An unreadable batch file is the only per-input fatal condition.
	specs, err := batch.ReadJobSpecs(cfg.Batch)
	if err != nil {
		return err
	}

	// Rows may omit the template when a default is configured.
	for i := range specs {
		if specs[i].Template == "" {
			specs[i].Template = cfg.Template
		}
	}

	s, err := buildStack(ctx, cfg, cfg.Batch)
	if err != nil {
		return err
	}
	defer s.Close()

	fmt.Printf("Processing %d jobs from %s...\n", len(specs), cfg.Batch)
	summary := s.orchestrator.Run(ctx, specs)

	observability.NewPrinter(os.Stdout).PrintBatchSummary(summary)

	// Per-job failures are already in the summary; they never fail the
	// command.
	return nil
}

// mergeBatchConfig loads the optional config file, applies CLI overrides
// and fills defaults.
func mergeBatchConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := loadConfigFile(batchConfigPath, batchVerbose)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("batch") {
		cfg.Batch = batchFile
	}
	if flags.Changed("template") {
		cfg.Template = batchTemplate
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir = batchOutputDir
	}
	if flags.Changed("workers") {
		cfg.Workers = batchWorkers
	}
	if flags.Changed("api-key") {
		cfg.APIKey = batchAPIKey
	}
	if flags.Changed("model") {
		cfg.Model = batchModel
	}
	if flags.Changed("compiler") {
		cfg.Compiler = batchCompiler
	}
	if flags.Changed("passes") {
		cfg.Passes = batchPasses
	}
	if flags.Changed("auto-remediate") {
		cfg.AutoRemediate = batchAutoRemediate
	}
	if flags.Changed("use-browser") {
		cfg.UseBrowser = batchUseBrowser
	}
	if flags.Changed("verbose") {
		cfg.Verbose = batchVerbose
	}
	if flags.Changed("db-url") {
		cfg.DatabaseURL = batchDatabaseURL
	}

	cfg = cfg.MergeWithDefaults(config.Config{
		OutputDir: "output",
		Workers:   1,
	})
	return cfg, nil
}
