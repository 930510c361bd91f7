package deps

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/toolrunner"
)

// fakeRunner scripts responses per invocation and records every call.
type fakeRunner struct {
	calls   [][]string
	results []fakeResult
}

type fakeResult struct {
	result *toolrunner.Result
	err    error
}

func (f *fakeRunner) Run(_ context.Context, name string, args []string, _ string) (*toolrunner.Result, error) {
	call := append([]string{name}, args...)
	f.calls = append(f.calls, call)

	if len(f.results) == 0 {
		return &toolrunner.Result{}, nil
	}
	next := f.results[0]
	f.results = f.results[1:]
	return next.result, next.err
}

func ok() fakeResult {
	return fakeResult{result: &toolrunner.Result{ExitCode: 0}}
}

func exitCode(code int) fakeResult {
	return fakeResult{result: &toolrunner.Result{ExitCode: code}}
}

func unavailable() fakeResult {
	return fakeResult{err: &toolrunner.ToolUnavailableError{Tool: "tlmgr"}}
}

func TestInstaller_ManagerUnavailableProbedOnce(t *testing.T) {
	runner := &fakeRunner{results: []fakeResult{unavailable()}}
	installer := NewInstaller(runner, "")

	err1 := installer.Install(context.Background(), "fontawesome")
	err2 := installer.Install(context.Background(), "xcolor")

	var installErr *InstallError
	require.ErrorAs(t, err1, &installErr)
	assert.Equal(t, "manager unavailable", installErr.Reason)
	require.ErrorAs(t, err2, &installErr)

	// One probe, zero install attempts: availability is checked once per
	// installer, not per dependency.
	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"tlmgr", "--version"}, runner.calls[0])
}

func TestInstaller_InstallSuccess(t *testing.T) {
	runner := &fakeRunner{results: []fakeResult{ok(), ok()}}
	installer := NewInstaller(runner, "tlmgr")

	err := installer.Install(context.Background(), "fontawesome")
	require.NoError(t, err)

	require.Len(t, runner.calls, 2)
	assert.Equal(t, []string{"tlmgr", "--version"}, runner.calls[0])
	assert.Equal(t, []string{"tlmgr", "install", "fontawesome"}, runner.calls[1])
}

func TestInstaller_OneFailureDoesNotBlockOthers(t *testing.T) {
	runner := &fakeRunner{results: []fakeResult{ok(), exitCode(1), ok()}}
	installer := NewInstaller(runner, "tlmgr")

	err := installer.Install(context.Background(), "fontawesome")
	var installErr *InstallError
	require.ErrorAs(t, err, &installErr)
	assert.Equal(t, "fontawesome", installErr.Dependency)

	// The next dependency is still attempted and succeeds.
	require.NoError(t, installer.Install(context.Background(), "xcolor"))
	assert.Equal(t, []string{"tlmgr", "install", "xcolor"}, runner.calls[2])
}

func TestInstaller_ProbeNonZeroExitMeansUnavailable(t *testing.T) {
	runner := &fakeRunner{results: []fakeResult{exitCode(127)}}
	installer := NewInstaller(runner, "tlmgr")

	assert.False(t, installer.Available(context.Background()))
	assert.False(t, installer.Available(context.Background()))
	require.Len(t, runner.calls, 1)
}
