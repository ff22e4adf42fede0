package pathstyle

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantmind-br/pyruntime/internal/core"
	"github.com/quantmind-br/pyruntime/internal/runner"
)

// probeScript is executed by the interpreter under test. MSYS2/Cygwin
// builds report a mingw/msys/cygwin platform tag via sysconfig.
const probeScript = "import sysconfig\n" +
	"tag = sysconfig.get_platform().lower()\n" +
	"print('MSYS2' if tag.startswith(('mingw', 'msys', 'cygwin')) else 'NATIVE')\n"

const probeTimeout = 5 * time.Second

// probeEntry is a single-flight result holder. done is closed exactly once,
// after which posix/err are immutable.
type probeEntry struct {
	done  chan struct{}
	posix bool
	err   error
}

// Detector classifies interpreter binaries as native or POSIX-emulation
// builds. Results are memoized for the process lifetime, keyed by the
// canonicalized interpreter path, and concurrent probes of the same
// interpreter are deduplicated: N simultaneous callers cause exactly one
// subprocess. A failed probe evicts its entry so a later call can retry.
type Detector struct {
	runner runner.Runner
	log    zerolog.Logger

	mu      sync.Mutex
	entries map[string]*probeEntry
}

// NewDetector creates a Detector probing through the given runner.
func NewDetector(r runner.Runner, log zerolog.Logger) *Detector {
	return &Detector{
		runner:  r,
		log:     log,
		entries: make(map[string]*probeEntry),
	}
}

// IsPosixEmulation reports whether the interpreter at the given path is a
// POSIX-emulation (MSYS2/Cygwin) build. The path may be relative; it is
// canonicalized before being used as the cache key, so symlinked and
// relative references to one binary share a single classification.
func (d *Detector) IsPosixEmulation(ctx context.Context, interpreter string) (bool, error) {
	key := canonicalKey(interpreter)

	d.mu.Lock()
	entry, found := d.entries[key]
	if !found {
		entry = &probeEntry{done: make(chan struct{})}
		d.entries[key] = entry
	}
	d.mu.Unlock()

	if found {
		select {
		case <-entry.done:
			return entry.posix, entry.err
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}

	entry.posix, entry.err = d.probe(ctx, interpreter)
	if entry.err != nil {
		// Evict so a later call may retry after the environment is fixed.
		d.mu.Lock()
		delete(d.entries, key)
		d.mu.Unlock()
	}
	close(entry.done)

	return entry.posix, entry.err
}

func (d *Detector) probe(ctx context.Context, interpreter string) (bool, error) {
	pctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	res, err := d.runner.Run(pctx, interpreter, "-c", probeScript)
	if err != nil {
		if pctx.Err() == context.DeadlineExceeded {
			err = fmt.Errorf("probe timed out after %s: %w", probeTimeout, err)
		}
		d.log.Debug().Str("interpreter", interpreter).Err(err).Msg("path style probe failed")
		return false, &core.DetectionError{Interpreter: interpreter, Err: err}
	}

	token := strings.TrimSpace(res.Stdout)
	d.log.Debug().Str("interpreter", interpreter).Str("token", token).Msg("path style probe completed")
	return token == "MSYS2", nil
}

// canonicalKey derives the cache key: absolute and symlink-resolved where
// the filesystem allows, falling back to lexical cleanup.
func canonicalKey(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
