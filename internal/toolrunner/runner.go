// Package toolrunner runs external toolchain executables with bounded
// duration and captured output.
package toolrunner

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single tool invocation when the caller's context
// carries no earlier deadline.
const DefaultTimeout = 2 * time.Minute

// Result captures one finished tool invocation. A non-zero exit code is a
// normal, inspectable result, not an error.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Elapsed  time.Duration
}

// CombinedOutput returns stdout followed by stderr, the form the
// dependency detector and failure diagnostics consume.
func (r *Result) CombinedOutput() string {
	return r.Stdout + r.Stderr
}

// ToolUnavailableError indicates the executable could not be located or
// started at all. This is fatal to the run, unlike a non-zero exit.
type ToolUnavailableError struct {
	Tool  string
	Cause error
}

func (e *ToolUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("tool unavailable: %s: %v", e.Tool, e.Cause)
	}
	return fmt.Sprintf("tool unavailable: %s", e.Tool)
}

func (e *ToolUnavailableError) Unwrap() error {
	return e.Cause
}

// TimeoutError indicates the invocation exceeded its deadline. The spawned
// process has already been killed when this error is returned.
type TimeoutError struct {
	Tool    string
	Elapsed time.Duration
	Cause   error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout: %s did not finish within %s", e.Tool, e.Elapsed.Round(time.Millisecond))
}

func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

// Runner abstracts external process execution so the pipeline can be
// tested with injected fakes.
type Runner interface {
	// Run spawns exactly one process and blocks until it exits, the
	// context expires, or the configured timeout elapses. Retry is a
	// policy owned by callers, never by the runner.
	Run(ctx context.Context, name string, args []string, workDir string) (*Result, error)
}

// ExecRunner is the production Runner backed by os/exec.
type ExecRunner struct {
	// Timeout bounds each invocation. Zero means DefaultTimeout.
	Timeout time.Duration
}

// NewExecRunner returns an ExecRunner with the given per-call timeout.
func NewExecRunner(timeout time.Duration) *ExecRunner {
	return &ExecRunner{Timeout: timeout}
}

// Run executes name with args in workDir, capturing stdout and stderr.
func (r *ExecRunner) Run(ctx context.Context, name string, args []string, workDir string) (*Result, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if _, err := exec.LookPath(name); err != nil {
		return nil, &ToolUnavailableError{Tool: name, Cause: err}
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = workDir
	// Give the process a short grace period after the kill signal before
	// Wait gives up on its pipes.
	cmd.WaitDelay = 5 * time.Second

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	result := &Result{
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
		Elapsed: elapsed,
	}

	if ctx.Err() != nil {
		return nil, &TimeoutError{Tool: name, Elapsed: elapsed, Cause: ctx.Err()}
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return nil, &ToolUnavailableError{Tool: name, Cause: runErr}
	}

	return result, nil
}

// Available reports whether the named executable can be found on PATH.
func Available(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
