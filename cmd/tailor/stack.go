package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/resume-tailor/internal/batch"
	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/deps"
	"github.com/jonathan/resume-tailor/internal/email"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/toolrunner"
)

// stack holds the wired collaborators one command execution needs.
type stack struct {
	client       llm.Client
	orchestrator *batch.Orchestrator
	database     *db.DB
}

// Close releases the LLM client and the database pool.
func (s *stack) Close() {
	if s.client != nil {
		_ = s.client.Close()
	}
	if s.database != nil {
		s.database.Close()
	}
}

// loadConfigFile loads and validates an optional config file. An empty
// path yields a zero config.
func loadConfigFile(path string, verbose bool) (config.Config, error) {
	var cfg config.Config
	if path == "" {
		return cfg, nil
	}
	loaded, err := config.LoadConfig(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}
	if err := loaded.Validate(); err != nil {
		return cfg, err
	}
	if verbose {
		fmt.Printf("Loaded config from: %s\n", path)
	}
	return *loaded, nil
}

// resolveSecrets fills API key and database URL from the environment when
// flags and config left them empty. The API key is required, the database
// is not.
func resolveSecrets(cfg *config.Config) error {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	return nil
}

// buildStack wires the LLM client, the build pipeline and the optional
// store into an orchestrator. The compiler executable must exist; a batch
// cannot produce a single artifact without it.
func buildStack(ctx context.Context, cfg config.Config, source string) (*stack, error) {
	compiler := cfg.Compiler
	if compiler == "" {
		compiler = pipeline.DefaultCompiler
	}
	if !toolrunner.Available(compiler) {
		return nil, fmt.Errorf("LaTeX toolchain not found: %s is not installed or not in PATH", compiler)
	}

	llmConfig := llm.DefaultConfig()
	if cfg.Model != "" {
		llmConfig = llmConfig.WithModel(cfg.Model)
	}
	client, err := llm.NewClient(ctx, llmConfig, cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	s := &stack{client: client}

	// Database persistence is optional. A bad URL downgrades to running
	// without history rather than failing the command.
	var store batch.RunStore
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			fmt.Printf("Warning: database connection failed: %v\n", err)
			fmt.Printf("Continuing without run history...\n")
		} else {
			s.database = database
			store = database
		}
	}

	runner := toolrunner.NewExecRunner(0)
	p := pipeline.New(runner, nil, deps.NewInstaller(runner, ""), nil)

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	s.orchestrator = batch.New(p, llm.NewTailor(client), email.NewDrafter(client), store, batch.Options{
		OutputDir:     cfg.OutputDir,
		Workers:       cfg.Workers,
		AutoRemediate: cfg.AutoRemediate,
		Compiler:      cfg.Compiler,
		Passes:        cfg.Passes,
		Source:        source,
		UseBrowser:    cfg.UseBrowser,
		SenderName:    cfg.SenderName,
		SenderEmail:   cfg.SenderEmail,
		Verbose:       cfg.Verbose,
	})
	return s, nil
}
