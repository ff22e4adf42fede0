package cmd

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/pyruntime/internal/db"
)

func TestHistoryCmd_EmptyDatabase(t *testing.T) {
	logger := zerolog.New(io.Discard)
	cfg := testConfig(t)

	cmd := NewHistoryCmd(cfg, &logger)
	var out bytes.Buffer
	cmd.SetOut(&out)

	require.NoError(t, cmd.Execute())
}

func TestHistoryCmd_ListsRecordedRuns(t *testing.T) {
	logger := zerolog.New(io.Discard)
	cfg := testConfig(t)

	ctx := context.Background()
	database, err := db.New(ctx, cfg.Paths.DBFile)
	require.NoError(t, err)

	require.NoError(t, database.RecordRun(ctx, &db.Run{
		RunID:     "run-1",
		Tool:      "black",
		Version:   "24.8.0",
		Status:    db.StatusOK,
		StartedAt: time.Now().Add(-time.Minute),
		Duration:  3 * time.Second,
	}))
	require.NoError(t, database.RecordRun(ctx, &db.Run{
		RunID:      "run-2",
		Tool:       "black",
		Version:    "24.8.0",
		Status:     db.StatusFailed,
		FailedStep: "download",
		StartedAt:  time.Now(),
		Duration:   time.Second,
	}))
	require.NoError(t, database.Close())

	cmd := NewHistoryCmd(cfg, &logger)
	var out bytes.Buffer
	cmd.SetOut(&out)

	require.NoError(t, cmd.Execute())

	output := out.String()
	assert.Contains(t, output, "black")
	assert.Contains(t, output, "24.8.0")
	assert.Contains(t, output, "download")
}

func TestHistoryCmd_Limit(t *testing.T) {
	logger := zerolog.New(io.Discard)
	cfg := testConfig(t)

	ctx := context.Background()
	database, err := db.New(ctx, cfg.Paths.DBFile)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, database.RecordRun(ctx, &db.Run{
			RunID:     string(rune('a' + i)),
			Tool:      "black",
			Version:   "24.8.0",
			Status:    db.StatusNoOp,
			StartedAt: time.Now(),
		}))
	}
	require.NoError(t, database.Close())

	cmd := NewHistoryCmd(cfg, &logger)
	cmd.SetArgs([]string{"--limit", "2"})
	var out bytes.Buffer
	cmd.SetOut(&out)

	require.NoError(t, cmd.Execute())
}
