// Package config provides configuration loading and validation for the CLI.
package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed config.schema.json
var configSchema string

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Paths
	Template  string `json:"template,omitempty"`   // Path to LaTeX resume template
	Batch     string `json:"batch,omitempty"`      // Path to batch CSV file
	OutputDir string `json:"output_dir,omitempty"` // Directory for generated files

	// LLM
	APIKey string `json:"api_key,omitempty"` // Gemini API key
	Model  string `json:"model,omitempty"`   // Pin every request to one model

	// Build
	Compiler      string `json:"compiler,omitempty"`       // LaTeX toolchain executable
	Passes        int    `json:"passes,omitempty"`         // Compile passes per document
	AutoRemediate bool   `json:"auto_remediate,omitempty"` // Degrade documents with unresolvable packages
	Workers       int    `json:"workers,omitempty"`        // Concurrent batch jobs

	// Email
	SenderName  string `json:"sender_name,omitempty"`  // Name used in recruiter emails
	SenderEmail string `json:"sender_email,omitempty"` // Address used in recruiter emails

	// Behavior
	UseBrowser  bool   `json:"use_browser,omitempty"`  // Use headless browser for SPA job pages
	Verbose     bool   `json:"verbose,omitempty"`      // Print detailed progress information
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
}

// LoadConfig loads configuration from a JSON file. The raw document is
// checked against the embedded schema before unmarshalling so typos and
// wrong types surface with field paths instead of zero values.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := validateSchema(data); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// validateSchema checks a raw config document against the embedded JSON
// Schema and folds violations into one error.
func validateSchema(document []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(configSchema),
		gojsonschema.NewBytesLoader(document),
	)
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("invalid configuration:")
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		sb.WriteString(fmt.Sprintf("\n  %s: %s", field, desc.Description()))
	}
	return fmt.Errorf("%s", sb.String())
}

// Validate checks that the configuration has valid values. Required fields
// are not checked here; they are enforced by CLI flag validation after
// merging.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("config error: 'workers' must be non-negative")
	}
	if c.Passes < 0 {
		return fmt.Errorf("config error: 'passes' must be non-negative")
	}

	if c.Template != "" {
		if _, err := os.Stat(c.Template); os.IsNotExist(err) {
			return fmt.Errorf("config error: template file not found: %s", c.Template)
		}
	}
	if c.Batch != "" {
		if _, err := os.Stat(c.Batch); os.IsNotExist(err) {
			return fmt.Errorf("config error: batch file not found: %s", c.Batch)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. This is used to apply config file values as defaults for CLI
// flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Template == "" {
		result.Template = defaults.Template
	}
	if result.Batch == "" {
		result.Batch = defaults.Batch
	}
	if result.OutputDir == "" {
		result.OutputDir = defaults.OutputDir
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.Compiler == "" {
		result.Compiler = defaults.Compiler
	}
	if result.SenderName == "" {
		result.SenderName = defaults.SenderName
	}
	if result.SenderEmail == "" {
		result.SenderEmail = defaults.SenderEmail
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.Workers == 0 {
		result.Workers = defaults.Workers
	}
	if result.Passes == 0 {
		result.Passes = defaults.Passes
	}
	if !result.AutoRemediate {
		result.AutoRemediate = defaults.AutoRemediate
	}
	if !result.UseBrowser {
		result.UseBrowser = defaults.UseBrowser
	}
	if !result.Verbose {
		result.Verbose = defaults.Verbose
	}

	return result
}
