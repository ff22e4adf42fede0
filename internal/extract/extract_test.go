package extract

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/pyruntime/internal/core"
)

func writeZip(t *testing.T, fs afero.Fs, path string, files map[string]string) {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, afero.WriteFile(fs, path, buf.Bytes(), 0o644))
}

func writeTarGz(t *testing.T, fs afero.Fs, path string, files map[string]string) {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name: name,
			Mode: 0o644,
			Size: int64(len(content)),
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	require.NoError(t, afero.WriteFile(fs, path, buf.Bytes(), 0o644))
}

func TestExtractZipNormalizesTopLevelDir(t *testing.T) {
	fs := afero.NewOsFs()
	root := t.TempDir()
	archive := filepath.Join(root, "black.zip")

	writeZip(t, fs, archive, map[string]string{
		"black-24.8.0/requirements.txt":       "black==24.8.0\n",
		"black-24.8.0/bundled/tool/server.py": "# entry\n",
	})

	e := NewExtractor(fs, zerolog.Nop())
	require.NoError(t, e.Extract(archive, root, "black", "24.8.0"))

	// Top-level dir renamed to the canonical install name.
	manifest, err := afero.ReadFile(fs, filepath.Join(root, "black", "requirements.txt"))
	require.NoError(t, err)
	assert.Equal(t, "black==24.8.0\n", string(manifest))

	// Version marker stamped.
	marker, err := afero.ReadFile(fs, filepath.Join(root, "black", MarkerFile))
	require.NoError(t, err)
	assert.Equal(t, "24.8.0", string(marker))

	// Archive consumed.
	exists, _ := afero.Exists(fs, archive)
	assert.False(t, exists)

	// Original top-level name gone.
	exists, _ = afero.DirExists(fs, filepath.Join(root, "black-24.8.0"))
	assert.False(t, exists)
}

func TestExtractMissingArchiveIsNoOp(t *testing.T) {
	fs := afero.NewOsFs()
	root := t.TempDir()

	e := NewExtractor(fs, zerolog.Nop())
	assert.NoError(t, e.Extract(filepath.Join(root, "black.zip"), root, "black", "24.8.0"),
		"missing archive is the already-installed fast path")
}

func TestExtractRejectsMultipleTopLevelDirs(t *testing.T) {
	fs := afero.NewOsFs()
	root := t.TempDir()
	archive := filepath.Join(root, "black.zip")

	writeZip(t, fs, archive, map[string]string{
		"black-24.8.0/requirements.txt": "black\n",
		"extras/readme.md":              "hi\n",
	})

	e := NewExtractor(fs, zerolog.Nop())
	err := e.Extract(archive, root, "black", "24.8.0")
	require.Error(t, err)

	var xerr *core.ExtractionError
	require.True(t, errors.As(err, &xerr), "layout violations are hard extraction failures")
}

func TestExtractReplacesExistingInstallDir(t *testing.T) {
	fs := afero.NewOsFs()
	root := t.TempDir()
	archive := filepath.Join(root, "black.zip")

	stale := filepath.Join(root, "black", "stale.txt")
	require.NoError(t, fs.MkdirAll(filepath.Dir(stale), 0o755))
	require.NoError(t, afero.WriteFile(fs, stale, []byte("old"), 0o644))

	writeZip(t, fs, archive, map[string]string{
		"black-24.8.0/requirements.txt": "black\n",
	})

	e := NewExtractor(fs, zerolog.Nop())
	require.NoError(t, e.Extract(archive, root, "black", "24.8.0"))

	exists, _ := afero.Exists(fs, stale)
	assert.False(t, exists, "existing unpacked directory is removed for idempotency")
}

func TestExtractTarGz(t *testing.T) {
	fs := afero.NewOsFs()
	root := t.TempDir()
	archive := filepath.Join(root, "black.tar.gz")

	writeTarGz(t, fs, archive, map[string]string{
		"black-24.8.0/requirements.txt": "black\n",
	})

	e := NewExtractor(fs, zerolog.Nop())
	require.NoError(t, e.Extract(archive, root, "black", "24.8.0"))

	exists, _ := afero.Exists(fs, filepath.Join(root, "black", "requirements.txt"))
	assert.True(t, exists)
}

func TestExtractRejectsTraversalEntries(t *testing.T) {
	fs := afero.NewOsFs()
	root := t.TempDir()
	archive := filepath.Join(root, "black.zip")

	writeZip(t, fs, archive, map[string]string{
		"../escape.txt": "bad\n",
	})

	e := NewExtractor(fs, zerolog.Nop())
	err := e.Extract(archive, root, "black", "24.8.0")
	require.Error(t, err)

	var xerr *core.ExtractionError
	assert.True(t, errors.As(err, &xerr))
}

func TestExtractRejectsUnknownFormat(t *testing.T) {
	fs := afero.NewOsFs()
	root := t.TempDir()
	archive := filepath.Join(root, "black.rar")
	require.NoError(t, afero.WriteFile(fs, archive, []byte("not-an-archive"), 0o644))

	e := NewExtractor(fs, zerolog.Nop())
	err := e.Extract(archive, root, "black", "24.8.0")

	var xerr *core.ExtractionError
	require.True(t, errors.As(err, &xerr))
	assert.Contains(t, xerr.Reason, "unsupported")
}

func TestValidateEntryPath(t *testing.T) {
	assert.NoError(t, validateEntryPath("black-24.8.0/src/black/__init__.py"))
	assert.Error(t, validateEntryPath("/etc/passwd"))
	assert.Error(t, validateEntryPath("../outside"))
	assert.Error(t, validateEntryPath("a/../../outside"))
	assert.Error(t, validateEntryPath(""))
}

func TestSingleTopLevel(t *testing.T) {
	top, err := singleTopLevel("a.zip", []string{"pkg/", "pkg/a.txt", "pkg/sub/b.txt"})
	require.NoError(t, err)
	assert.Equal(t, "pkg", top)

	_, err = singleTopLevel("a.zip", []string{"pkg/a.txt", "other/b.txt"})
	assert.Error(t, err)

	_, err = singleTopLevel("a.zip", nil)
	assert.Error(t, err)
}
