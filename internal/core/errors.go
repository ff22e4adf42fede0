package core

import (
	"fmt"
	"strings"
)

// SpawnError indicates a process could not be started at all
// (missing binary, permission denied). The underlying OS error is preserved.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %q: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// ProcessError indicates a process started but exited with a nonzero code
// or was killed by a signal. Stderr and the original arguments are kept
// for diagnostics.
type ProcessError struct {
	Command  string
	Args     []string
	ExitCode int
	Signal   string
	Stderr   string
}

func (e *ProcessError) Error() string {
	cmdline := e.Command
	if len(e.Args) > 0 {
		cmdline += " " + strings.Join(e.Args, " ")
	}
	if e.Signal != "" {
		return fmt.Sprintf("command %q terminated by signal %s: %s", cmdline, e.Signal, strings.TrimSpace(e.Stderr))
	}
	return fmt.Sprintf("command %q exited with code %d: %s", cmdline, e.ExitCode, strings.TrimSpace(e.Stderr))
}

// DownloadError indicates a toolchain archive download failed, either at the
// HTTP level (non-2xx status) or during transport.
type DownloadError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *DownloadError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("download %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("download %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// DetectionError indicates the path style probe for an interpreter failed
// (timeout, nonzero exit, or spawn failure). The cache entry for the
// interpreter is evicted before this error is returned, so retrying is safe.
type DetectionError struct {
	Interpreter string
	Err         error
}

func (e *DetectionError) Error() string {
	return fmt.Sprintf("path style detection failed for %q: %v", e.Interpreter, e.Err)
}

func (e *DetectionError) Unwrap() error { return e.Err }

// PathTranslationError indicates a path could not be converted to the
// POSIX-emulation form because it matches no recognized shape (e.g. UNC).
// Such paths must never be silently passed through.
type PathTranslationError struct {
	Path string
}

func (e *PathTranslationError) Error() string {
	return fmt.Sprintf("cannot translate path %q to posix form", e.Path)
}

// ManifestMissingError indicates the dependency manifest expected from
// extraction is absent, which means the install tree is corrupted or partial
// and must be reinstalled.
type ManifestMissingError struct {
	Path string
}

func (e *ManifestMissingError) Error() string {
	return fmt.Sprintf("dependency manifest not found at %q; reinstall required", e.Path)
}

// ExtractionError indicates the toolchain archive had an unexpected layout
// or a malformed entry.
type ExtractionError struct {
	Archive string
	Reason  string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %s", e.Archive, e.Reason)
}
