package deps

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonathan/resume-tailor/internal/toolrunner"
)

const (
	// DefaultManager is the TeX Live package manager executable.
	DefaultManager = "tlmgr"
	// probeTimeout bounds the one-time manager availability check.
	probeTimeout = 10 * time.Second
	// InstallTimeout bounds a single install attempt. Package managers
	// can hang on network prompts, so an unbounded wait is never allowed.
	InstallTimeout = 60 * time.Second
)

// InstallError reports a failed installation attempt for one dependency.
type InstallError struct {
	Dependency string
	Reason     string
	Cause      error
}

func (e *InstallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("install %s: %s: %v", e.Dependency, e.Reason, e.Cause)
	}
	return fmt.Sprintf("install %s: %s", e.Dependency, e.Reason)
}

func (e *InstallError) Unwrap() error {
	return e.Cause
}

// Installer installs missing dependencies through an external package
// manager. Install calls are serialized: package manager tools are not
// safe for concurrent invocation against the same package cache.
type Installer struct {
	runner  toolrunner.Runner
	manager string

	mu        sync.Mutex
	probed    bool
	available bool
}

// NewInstaller creates an Installer driving the given manager executable
// through runner. An empty manager name selects DefaultManager.
func NewInstaller(runner toolrunner.Runner, manager string) *Installer {
	if manager == "" {
		manager = DefaultManager
	}
	return &Installer{runner: runner, manager: manager}
}

// Available reports whether the package manager responds at all. The
// probe runs once per Installer; every later call reuses the answer so a
// missing manager is not re-probed per dependency.
func (i *Installer) Available(ctx context.Context) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.probed {
		return i.available
	}
	i.probed = true

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	result, err := i.runner.Run(probeCtx, i.manager, []string{"--version"}, "")
	i.available = err == nil && result.ExitCode == 0
	return i.available
}

// Install attempts to install a single named dependency. Each dependency
// is attempted independently; a failure here never blocks the caller from
// attempting the remaining dependencies.
func (i *Installer) Install(ctx context.Context, dependency string) error {
	if !i.Available(ctx) {
		return &InstallError{Dependency: dependency, Reason: "manager unavailable"}
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	installCtx, cancel := context.WithTimeout(ctx, InstallTimeout)
	defer cancel()

	result, err := i.runner.Run(installCtx, i.manager, []string{"install", dependency}, "")
	if err != nil {
		return &InstallError{Dependency: dependency, Reason: "manager invocation failed", Cause: err}
	}
	if result.ExitCode != 0 {
		return &InstallError{
			Dependency: dependency,
			Reason:     fmt.Sprintf("manager exited with code %d", result.ExitCode),
		}
	}
	return nil
}
