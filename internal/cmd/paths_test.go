package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/pyruntime/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	return &config.Config{
		Tool: config.ToolConfig{
			Name:       "black",
			Version:    "24.8.0",
			ScriptName: "run_server.py",
		},
		Paths: config.PathsConfig{
			StorageRoot: root,
			DBFile:      filepath.Join(root, "history.db"),
			LogFile:     filepath.Join(root, "pyruntime.log"),
		},
	}
}

func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	runErr := fn()

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String(), runErr
}

func TestPathsCmd_JSON(t *testing.T) {
	logger := zerolog.New(io.Discard)
	cfg := testConfig(t)

	cmd := NewPathsCmd(cfg, &logger)
	cmd.SetArgs([]string{"--json"})

	output, err := captureStdout(t, cmd.Execute)
	require.NoError(t, err)

	var paths map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &paths))

	interp, ok := paths["interpreter_path"].(string)
	require.True(t, ok)
	assert.Contains(t, interp, cfg.Paths.StorageRoot)

	// Never provisioned: the tool entry is omitted, not fabricated.
	_, present := paths["tool_path"]
	assert.False(t, present)
}

func TestPathsCmd_Plain(t *testing.T) {
	logger := zerolog.New(io.Discard)
	cfg := testConfig(t)

	cmd := NewPathsCmd(cfg, &logger)

	output, err := captureStdout(t, cmd.Execute)
	require.NoError(t, err)

	assert.Contains(t, output, "interpreter:")
	assert.Contains(t, output, "not provisioned")
}
