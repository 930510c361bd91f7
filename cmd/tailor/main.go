// Package main provides the entry point for the resume tailor CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tailor",
	Short: "Tailor and build LaTeX resumes for job applications",
	Long:  "Tailor generates job-specific LaTeX resumes with an LLM, compiles them to PDF with automatic dependency repair, and optionally drafts recruiter outreach emails.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
