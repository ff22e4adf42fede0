package fsops

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExistsAndIsDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/data/dir", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/data/file.txt", []byte("x"), 0o644))

	assert.True(t, Exists(fs, "/data/dir"))
	assert.True(t, Exists(fs, "/data/file.txt"))
	assert.False(t, Exists(fs, "/data/missing"))

	assert.True(t, IsDir(fs, "/data/dir"))
	assert.False(t, IsDir(fs, "/data/file.txt"))
	assert.False(t, IsDir(fs, "/data/missing"))
}

func TestEnsureDirAndRemoveTree(t *testing.T) {
	fs := afero.NewMemMapFs()

	require.NoError(t, EnsureDir(fs, "/a/b/c", 0o755))
	assert.True(t, IsDir(fs, "/a/b/c"))

	require.NoError(t, RemoveTree(fs, "/a"))
	assert.False(t, Exists(fs, "/a"))

	// Removing a missing tree is not an error.
	require.NoError(t, RemoveTree(fs, "/never-existed"))
}

func TestPromoteReplacesCanonical(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/root/tool.zip", []byte("stale"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/root/tool.zip.12345.part", []byte("fresh"), 0o755))

	require.NoError(t, Promote(fs, "/root/tool.zip.12345.part", "/root/tool.zip"))

	content, err := afero.ReadFile(fs, "/root/tool.zip")
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(content))
	assert.False(t, Exists(fs, "/root/tool.zip.12345.part"))
}

func TestPromoteToleratesMissingCanonical(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/root/tool.zip.part", []byte("fresh"), 0o755))

	require.NoError(t, Promote(fs, "/root/tool.zip.part", "/root/tool.zip"))
	assert.True(t, Exists(fs, "/root/tool.zip"))
}

func TestPromoteFailsWhenTempMissing(t *testing.T) {
	fs := afero.NewMemMapFs()
	err := Promote(fs, "/root/nope.part", "/root/tool.zip")
	assert.Error(t, err)
	assert.False(t, Exists(fs, "/root/tool.zip"), "canonical path must only appear via rename")
}

func TestWriteFileString(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, WriteFileString(fs, "/store/black/version.txt", "24.8.0", 0o644))

	content, err := afero.ReadFile(fs, "/store/black/version.txt")
	require.NoError(t, err)
	assert.Equal(t, "24.8.0", string(content))
}

func TestCheckWritable(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/writable", 0o755))
	assert.NoError(t, CheckWritable(fs, "/writable"))

	ro := afero.NewReadOnlyFs(fs)
	assert.Error(t, CheckWritable(ro, "/writable"))
}
