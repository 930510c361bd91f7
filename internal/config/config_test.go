package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_Valid(t *testing.T) {
	path := writeConfig(t, `{
		"output_dir": "out",
		"model": "gemini-2.5-flash",
		"workers": 4,
		"auto_remediate": true
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, "gemini-2.5-flash", cfg.Model)
	assert.Equal(t, 4, cfg.Workers)
	assert.True(t, cfg.AutoRemediate)
}

func TestLoadConfig_RejectsUnknownKey(t *testing.T) {
	path := writeConfig(t, `{"ouput_dir": "out"}`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoadConfig_RejectsWrongType(t *testing.T) {
	path := writeConfig(t, `{"workers": "four"}`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workers")
}

func TestLoadConfig_RejectsNegativeWorkers(t *testing.T) {
	path := writeConfig(t, `{"workers": -1}`)

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestLoadConfig_MalformedJSON(t *testing.T) {
	path := writeConfig(t, `{"output_dir": `)

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/config.json")
	require.Error(t, err)

	_, err = LoadConfig("")
	require.Error(t, err)
}

func TestValidate_TemplateMustExist(t *testing.T) {
	cfg := &Config{Template: "/nonexistent/template.tex"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "template file not found")
}

func TestValidate_EmptyConfigIsValid(t *testing.T) {
	cfg := &Config{}
	assert.NoError(t, cfg.Validate())
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{OutputDir: "custom", Workers: 2}
	merged := cfg.MergeWithDefaults(Config{
		OutputDir: "default",
		Compiler:  "pdflatex",
		Workers:   1,
		Passes:    2,
	})

	assert.Equal(t, "custom", merged.OutputDir)
	assert.Equal(t, "pdflatex", merged.Compiler)
	assert.Equal(t, 2, merged.Workers)
	assert.Equal(t, 2, merged.Passes)
}
