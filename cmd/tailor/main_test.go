package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestRunCommand_RequiresTemplate(t *testing.T) {
	err := execute(t, "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--template")
}

func TestRunCommand_RequiresCompanyAndRole(t *testing.T) {
	template := filepath.Join(t.TempDir(), "base.tex")
	require.NoError(t, os.WriteFile(template, []byte(`\documentclass{article}`), 0644))

	err := execute(t, "run", "--template", template)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--company and --role")
}

func TestRunCommand_RequiresJob(t *testing.T) {
	template := filepath.Join(t.TempDir(), "base.tex")
	require.NoError(t, os.WriteFile(template, []byte(`\documentclass{article}`), 0644))

	err := execute(t, "run", "--template", template, "--company", "Acme", "--role", "Engineer")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--job")
}

func TestBatchCommand_RequiresBatchFile(t *testing.T) {
	err := execute(t, "batch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--batch")
}

func TestBatchCommand_UnreadableBatchFileIsFatal(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	err := execute(t, "batch", "--batch", "/nonexistent/jobs.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot open batch file")
}

func TestBatchCommand_MissingToolchainIsFatal(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "jobs.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"company,role,template,job_description_file\nAcme,Engineer,base.tex,jd.txt\n"), 0644))

	err := execute(t, "batch", "--batch", csvPath, "--compiler", "definitely-not-a-latex-binary")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LaTeX toolchain not found")
}

func TestVersionCommand(t *testing.T) {
	err := execute(t, "version")
	assert.NoError(t, err)
}
