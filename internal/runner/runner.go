// Package runner executes external programs and converts their failures
// into the structured error types consumed by the rest of the pipeline.
package runner

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"syscall"

	"github.com/quantmind-br/pyruntime/internal/core"
)

// Result holds the captured output of a completed process.
type Result struct {
	Stdout string
	Stderr string
}

// Runner defines the subprocess execution surface. It allows mocking in
// tests and dependency injection. No retry happens at this layer; retry
// policy belongs to callers.
type Runner interface {
	// Run executes a command and returns captured stdout/stderr on exit 0.
	Run(ctx context.Context, name string, args ...string) (Result, error)

	// RunInDir executes a command with a working directory override.
	RunInDir(ctx context.Context, dir, name string, args ...string) (Result, error)

	// RunWithEnv executes a command with additional environment entries
	// appended to the inherited environment.
	RunWithEnv(ctx context.Context, env []string, name string, args ...string) (Result, error)

	// LookPath searches the system search path for an executable.
	LookPath(name string) (string, error)
}

// OSRunner is the default Runner backed by os/exec.
type OSRunner struct{}

// NewOSRunner creates the default runner.
func NewOSRunner() *OSRunner {
	return &OSRunner{}
}

// Run executes a command and returns captured stdout/stderr on exit 0.
// Nonzero exit or signal termination yields a *core.ProcessError; failure
// to start the process at all yields a *core.SpawnError.
func (r *OSRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	return r.run(ctx, "", nil, name, args...)
}

// RunInDir executes a command in a specific working directory.
func (r *OSRunner) RunInDir(ctx context.Context, dir, name string, args ...string) (Result, error) {
	return r.run(ctx, dir, nil, name, args...)
}

// RunWithEnv executes a command with extra environment entries.
func (r *OSRunner) RunWithEnv(ctx context.Context, env []string, name string, args ...string) (Result, error) {
	return r.run(ctx, "", env, name, args...)
}

// LookPath searches PATH for an executable.
func (r *OSRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (r *OSRunner) run(ctx context.Context, dir string, extraEnv []string, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	if len(extraEnv) > 0 {
		cmd.Env = append(cmd.Environ(), extraEnv...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		perr := &core.ProcessError{
			Command:  name,
			Args:     args,
			ExitCode: exitErr.ExitCode(),
			Stderr:   res.Stderr,
		}
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			perr.Signal = ws.Signal().String()
		}
		return res, perr
	}

	return res, &core.SpawnError{Command: name, Err: err}
}
