// Package fsops collects small afero-based filesystem helpers shared by the
// resolver, extractor and fetcher.
package fsops

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Exists checks if a path exists.
func Exists(fs afero.Fs, path string) bool {
	_, err := fs.Stat(path)
	return err == nil
}

// IsDir checks if a path is a directory.
func IsDir(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// EnsureDir ensures a directory exists with the given permissions.
func EnsureDir(fs afero.Fs, path string, perm os.FileMode) error {
	if err := fs.MkdirAll(path, perm); err != nil {
		return fmt.Errorf("ensure directory: %w", err)
	}
	return nil
}

// RemoveTree removes a directory tree. A missing tree is not an error.
func RemoveTree(fs afero.Fs, path string) error {
	if err := fs.RemoveAll(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove tree %s: %w", path, err)
	}
	return nil
}

// CheckWritable checks if a path is writable.
func CheckWritable(fs afero.Fs, path string) error {
	testFile := filepath.Join(path, ".write_test")
	f, err := fs.Create(testFile)
	if err != nil {
		return fmt.Errorf("path not writable: %w", err)
	}
	f.Close()
	fs.Remove(testFile)
	return nil
}

// Promote moves a fully-written temp file onto its canonical name using
// delete-then-rename. The rename is the only step that can make the
// canonical path appear, so a concurrent reader never observes a
// partially-written file. ENOENT from the pre-delete is tolerated; any
// other deletion error propagates.
func Promote(fs afero.Fs, tmpPath, canonicalPath string) error {
	if err := fs.Remove(canonicalPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale %s: %w", canonicalPath, err)
	}
	if err := fs.Rename(tmpPath, canonicalPath); err != nil {
		return fmt.Errorf("promote %s: %w", canonicalPath, err)
	}
	return nil
}

// WriteFileString writes a small text file, creating parent directories.
func WriteFileString(fs afero.Fs, path, content string, perm os.FileMode) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}
	if err := afero.WriteFile(fs, path, []byte(content), perm); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
