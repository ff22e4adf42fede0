// Package fetch downloads versioned toolchain archives with atomic replace
// semantics: the canonical archive path only ever appears via a rename of a
// fully-written temp file.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/quantmind-br/pyruntime/internal/core"
	"github.com/quantmind-br/pyruntime/internal/fsops"
)

// ProgressFunc receives download progress. total is -1 until (or unless)
// the server reports a Content-Length.
type ProgressFunc func(received, total int64)

// Fetcher streams archive downloads to disk.
type Fetcher struct {
	client *http.Client
	fs     afero.Fs
	log    zerolog.Logger
}

// NewFetcher creates a Fetcher. The default transport honors the standard
// proxy environment variables (HTTPS_PROXY and friends).
func NewFetcher(fs afero.Fs, log zerolog.Logger) *Fetcher {
	return NewFetcherWithClient(fs, log, &http.Client{
		Transport: &http.Transport{Proxy: http.ProxyFromEnvironment},
	})
}

// NewFetcherWithClient creates a Fetcher with an explicit HTTP client.
func NewFetcherWithClient(fs afero.Fs, log zerolog.Logger, client *http.Client) *Fetcher {
	return &Fetcher{client: client, fs: fs, log: log}
}

// Download fetches url and atomically places the result at dest. The body
// is streamed to a randomized temp file next to dest; only after the full
// stream completes is the temp file promoted (delete-then-rename), so a
// concurrent reader never observes dest partially written. A non-2xx
// response fails before any bytes hit the disk.
func (f *Fetcher) Download(ctx context.Context, url, dest string, progress ProgressFunc) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &core.DownloadError{URL: url, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return &core.DownloadError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.log.Error().Str("url", url).Int("status", resp.StatusCode).Msg("archive download rejected")
		return &core.DownloadError{URL: url, StatusCode: resp.StatusCode}
	}

	dir := filepath.Dir(dest)
	if err := fsops.EnsureDir(f.fs, dir, 0o755); err != nil {
		return fmt.Errorf("prepare download directory: %w", err)
	}

	tmp, err := afero.TempFile(f.fs, dir, filepath.Base(dest)+".*.part")
	if err != nil {
		return fmt.Errorf("create temp archive: %w", err)
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		tmp.Close()
		f.fs.Remove(tmpPath)
	}

	// Archives carry executable trees; keep the file owner-writable only.
	if err := f.fs.Chmod(tmpPath, 0o755); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp archive: %w", err)
	}

	total := resp.ContentLength
	writer := io.Writer(tmp)
	if progress != nil {
		writer = io.MultiWriter(tmp, &progressWriter{total: total, report: progress})
	}

	written, err := io.Copy(writer, resp.Body)
	if err != nil {
		cleanup()
		return &core.DownloadError{URL: url, Err: err}
	}
	if err := tmp.Close(); err != nil {
		f.fs.Remove(tmpPath)
		return fmt.Errorf("flush temp archive: %w", err)
	}

	if err := fsops.Promote(f.fs, tmpPath, dest); err != nil {
		f.fs.Remove(tmpPath)
		return err
	}

	f.log.Info().
		Str("url", url).
		Str("dest", dest).
		Int64("bytes", written).
		Msg("archive downloaded")
	return nil
}

// progressWriter reports cumulative received bytes to the observer.
type progressWriter struct {
	total    int64
	received int64
	report   ProgressFunc
}

func (w *progressWriter) Write(p []byte) (int, error) {
	w.received += int64(len(p))
	w.report(w.received, w.total)
	return len(p), nil
}
