package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/pyruntime/internal/core"
)

func TestOSRunner(t *testing.T) {
	r := NewOSRunner()
	ctx := context.Background()

	t.Run("Run captures stdout", func(t *testing.T) {
		res, err := r.Run(ctx, "echo", "hello")
		require.NoError(t, err)
		assert.Contains(t, res.Stdout, "hello")
		assert.Empty(t, res.Stderr)
	})

	t.Run("RunInDir uses working directory", func(t *testing.T) {
		dir := t.TempDir()
		res, err := r.RunInDir(ctx, dir, "pwd")
		require.NoError(t, err)
		assert.Contains(t, res.Stdout, dir)
	})

	t.Run("RunWithEnv appends environment", func(t *testing.T) {
		res, err := r.RunWithEnv(ctx, []string{"PYRUNTIME_TEST_VAR=42"}, "sh", "-c", "echo $PYRUNTIME_TEST_VAR")
		require.NoError(t, err)
		assert.Contains(t, res.Stdout, "42")
	})

	t.Run("nonzero exit yields ProcessError with code and stderr", func(t *testing.T) {
		_, err := r.Run(ctx, "sh", "-c", "echo oops >&2; exit 3")
		require.Error(t, err)

		var perr *core.ProcessError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, 3, perr.ExitCode)
		assert.Contains(t, perr.Stderr, "oops")
		assert.Equal(t, "sh", perr.Command)
	})

	t.Run("missing binary yields SpawnError", func(t *testing.T) {
		_, err := r.Run(ctx, "definitely-not-a-real-binary-xyz")
		require.Error(t, err)

		var serr *core.SpawnError
		assert.True(t, errors.As(err, &serr))
	})

	t.Run("context timeout kills the process", func(t *testing.T) {
		tctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()

		_, err := r.Run(tctx, "sleep", "10")
		require.Error(t, err)

		var perr *core.ProcessError
		if errors.As(err, &perr) {
			assert.NotEmpty(t, perr.Signal)
		}
	})

	t.Run("LookPath finds system binaries", func(t *testing.T) {
		path, err := r.LookPath("sh")
		require.NoError(t, err)
		assert.NotEmpty(t, path)
	})
}

func TestMockRunnerDelegatesToRunFunc(t *testing.T) {
	m := &MockRunner{
		RunFunc: func(ctx context.Context, name string, args ...string) (Result, error) {
			return Result{Stdout: "mocked"}, nil
		},
	}

	res, err := m.RunInDir(context.Background(), "/tmp", "python3", "-V")
	require.NoError(t, err)
	assert.Equal(t, "mocked", res.Stdout)
}
