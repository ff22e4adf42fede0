package runner

import (
	"context"
)

// MockRunner is a mock implementation of Runner for testing.
type MockRunner struct {
	RunFunc        func(ctx context.Context, name string, args ...string) (Result, error)
	RunInDirFunc   func(ctx context.Context, dir, name string, args ...string) (Result, error)
	RunWithEnvFunc func(ctx context.Context, env []string, name string, args ...string) (Result, error)
	LookPathFunc   func(name string) (string, error)
}

// Run implements Runner.Run
func (m *MockRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	if m.RunFunc != nil {
		return m.RunFunc(ctx, name, args...)
	}
	return Result{}, nil
}

// RunInDir implements Runner.RunInDir
func (m *MockRunner) RunInDir(ctx context.Context, dir, name string, args ...string) (Result, error) {
	if m.RunInDirFunc != nil {
		return m.RunInDirFunc(ctx, dir, name, args...)
	}
	if m.RunFunc != nil {
		return m.RunFunc(ctx, name, args...)
	}
	return Result{}, nil
}

// RunWithEnv implements Runner.RunWithEnv
func (m *MockRunner) RunWithEnv(ctx context.Context, env []string, name string, args ...string) (Result, error) {
	if m.RunWithEnvFunc != nil {
		return m.RunWithEnvFunc(ctx, env, name, args...)
	}
	if m.RunFunc != nil {
		return m.RunFunc(ctx, name, args...)
	}
	return Result{}, nil
}

// LookPath implements Runner.LookPath
func (m *MockRunner) LookPath(name string) (string, error) {
	if m.LookPathFunc != nil {
		return m.LookPathFunc(name)
	}
	return "/usr/bin/" + name, nil
}

var _ Runner = (*MockRunner)(nil)
var _ Runner = (*OSRunner)(nil)
