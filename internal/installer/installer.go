// Package installer exposes the consumer contract: idempotent installation
// of the managed runtime and resolution of launch paths, with path style
// translation applied whenever the target interpreter is a POSIX-emulation
// build.
package installer

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/quantmind-br/pyruntime/internal/config"
	"github.com/quantmind-br/pyruntime/internal/core"
	"github.com/quantmind-br/pyruntime/internal/db"
	"github.com/quantmind-br/pyruntime/internal/extract"
	"github.com/quantmind-br/pyruntime/internal/fetch"
	"github.com/quantmind-br/pyruntime/internal/fsops"
	"github.com/quantmind-br/pyruntime/internal/pathstyle"
	"github.com/quantmind-br/pyruntime/internal/platform"
	"github.com/quantmind-br/pyruntime/internal/resolve"
	"github.com/quantmind-br/pyruntime/internal/runner"
	"github.com/quantmind-br/pyruntime/internal/venv"
)

// History is the subset of the run database the manager needs. It is
// optional; a nil History disables recording.
type History interface {
	RecordRun(ctx context.Context, run *db.Run) error
}

// Manager orchestrates fetch, extract and provision, and resolves paths for
// the downstream launcher. Concurrent EnsureInstalled calls are not
// deduplicated; callers that need exclusion must serialize themselves.
type Manager struct {
	cfg  *config.Config
	fs   afero.Fs
	kind platform.Kind
	log  zerolog.Logger

	resolver    *resolve.Resolver
	detector    *pathstyle.Detector
	fetcher     *fetch.Fetcher
	extractor   *extract.Extractor
	provisioner *venv.Provisioner
	history     History
}

// New wires a Manager from its parts. history may be nil.
func New(cfg *config.Config, fs afero.Fs, r runner.Runner, history History, log zerolog.Logger) *Manager {
	return &Manager{
		cfg:  cfg,
		fs:   fs,
		kind: platform.Current(),
		log:  log,
		resolver: resolve.NewResolver(fs, resolve.Options{
			Global:        cfg.Tool.Global,
			PreferBundled: cfg.Tool.PreferBundled,
			OnlyLSP:       cfg.Tool.OnlyLSP,
			StorageRoot:   cfg.Paths.StorageRoot,
			InstallDir:    cfg.Paths.InstallDir,
			ToolName:      cfg.Tool.Name,
			ScriptName:    cfg.Tool.ScriptName,
		}),
		detector:    pathstyle.NewDetector(r, log),
		fetcher:     fetch.NewFetcher(fs, log),
		extractor:   extract.NewExtractor(fs, log),
		provisioner: venv.NewProvisioner(fs, r, log),
		history:     history,
	}
}

// Resolver exposes the underlying path resolver (used by doctor checks).
func (m *Manager) Resolver() *resolve.Resolver { return m.resolver }

// InstalledVersion reads the version marker of the current install tree.
func (m *Manager) InstalledVersion() (string, bool) {
	content, err := afero.ReadFile(m.fs, m.resolver.MarkerPath())
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(content)), true
}

// Installed reports whether the install tree matches the configured version
// and its managed environment has an interpreter.
func (m *Manager) Installed() bool {
	version, ok := m.InstalledVersion()
	if !ok || version != m.cfg.Tool.Version {
		return false
	}
	return fsops.Exists(m.fs, m.resolver.VenvPython())
}

// EnsureInstalled makes the configured version available, running the
// fetch → extract → provision sequence only when needed. A matching version
// marker with an intact environment is a no-op; a matching marker with a
// missing environment re-provisions without re-downloading. Each step's
// failure aborts the rest and is reported with the step that failed.
func (m *Manager) EnsureInstalled(ctx context.Context, progress fetch.ProgressFunc) error {
	if m.cfg.Tool.Global {
		// Nothing to materialize for a system-global strategy.
		return nil
	}

	version, hasMarker := m.InstalledVersion()
	if hasMarker && version == m.cfg.Tool.Version {
		if fsops.Exists(m.fs, m.resolver.VenvPython()) {
			m.log.Debug().Str("version", version).Msg("install up to date")
			return nil
		}
		m.log.Warn().Str("version", version).Msg("install present but environment missing, re-provisioning")
		return m.runPipeline(ctx, progress, core.StepProvision)
	}

	return m.runPipeline(ctx, progress, core.StepDownload)
}

// runPipeline executes the install steps starting at firstStep.
func (m *Manager) runPipeline(ctx context.Context, progress fetch.ProgressFunc, firstStep string) error {
	started := time.Now()
	failedStep, err := m.pipeline(ctx, progress, firstStep)
	m.record(ctx, started, failedStep, err)

	if err != nil {
		return fmt.Errorf("%s: %w", failedStep, err)
	}
	return nil
}

func (m *Manager) pipeline(ctx context.Context, progress fetch.ProgressFunc, firstStep string) (string, error) {
	if firstStep == core.StepDownload {
		archive := m.archivePath()

		if err := m.fetcher.Download(ctx, m.cfg.ArchiveURLForVersion(), archive, progress); err != nil {
			return core.StepDownload, err
		}

		if err := m.extractor.Extract(archive, m.cfg.Paths.StorageRoot, m.cfg.Tool.Name, m.cfg.Tool.Version); err != nil {
			return core.StepExtract, err
		}
	}

	interpreter, err := m.baseInterpreter()
	if err != nil {
		return core.StepProvision, err
	}
	if err := m.provisioner.Provision(ctx, interpreter, m.resolver.VenvDir(), m.resolver.ManifestPath()); err != nil {
		return core.StepProvision, err
	}

	return "", nil
}

// baseInterpreter is the interpreter used to create the managed
// environment: the configured override, or python from the search path.
func (m *Manager) baseInterpreter() (string, error) {
	if m.cfg.Tool.Interpreter != "" {
		return m.cfg.Tool.Interpreter, nil
	}

	globalOpts := resolve.Options{
		Global:      true,
		StorageRoot: m.cfg.Paths.StorageRoot,
		ToolName:    m.cfg.Tool.Name,
		ScriptName:  m.cfg.Tool.ScriptName,
	}
	return resolve.NewResolver(m.fs, globalOpts).InterpreterPath()
}

// archivePath derives the canonical archive location from the configured
// URL's extension, defaulting to .zip.
func (m *Manager) archivePath() string {
	ext := ".zip"
	if u, err := url.Parse(m.cfg.ArchiveURLForVersion()); err == nil {
		base := path.Base(u.Path)
		for _, candidate := range []string{".tar.gz", ".tgz", ".tar.xz", ".txz", ".zip"} {
			if strings.HasSuffix(base, candidate) {
				ext = candidate
				break
			}
		}
	}
	return filepath.Join(m.cfg.Paths.StorageRoot, m.cfg.Tool.Name+ext)
}

func (m *Manager) record(ctx context.Context, started time.Time, failedStep string, runErr error) {
	if m.history == nil {
		return
	}

	run := &db.Run{
		RunID:     fmt.Sprintf("%s-%d", m.cfg.Tool.Name, started.UnixNano()),
		Tool:      m.cfg.Tool.Name,
		Version:   m.cfg.Tool.Version,
		Status:    db.StatusOK,
		StartedAt: started,
		Duration:  time.Since(started),
	}
	if runErr != nil {
		run.Status = db.StatusFailed
		run.FailedStep = failedStep
	}

	if err := m.history.RecordRun(ctx, run); err != nil {
		m.log.Warn().Err(err).Msg("failed to record provisioning run")
	}
}

// ResolveInterpreterPath resolves the interpreter the launcher should use.
func (m *Manager) ResolveInterpreterPath(ctx context.Context) (string, error) {
	return m.resolver.InterpreterPath()
}

// ResolveToolPath resolves the formatter executable, translated for the
// interpreter's path style. ok is false when no tool exists (a managed
// environment that was never provisioned does not fabricate one).
func (m *Manager) ResolveToolPath(ctx context.Context) (string, bool, error) {
	p, ok, err := m.resolver.ToolPath()
	if err != nil || !ok {
		return "", false, err
	}
	translated, err := m.translateForInterpreter(ctx, p)
	if err != nil {
		return "", false, err
	}
	return translated, true, nil
}

// ResolveScriptPath resolves the server script, translated for the
// interpreter's path style.
func (m *Manager) ResolveScriptPath(ctx context.Context) (string, bool, error) {
	p, ok, err := m.resolver.ScriptPath()
	if err != nil || !ok {
		return "", false, err
	}
	translated, err := m.translateForInterpreter(ctx, p)
	if err != nil {
		return "", false, err
	}
	return translated, true, nil
}

// ResolvePaths resolves the full output contract in one call.
func (m *Manager) ResolvePaths(ctx context.Context) (core.ResolvedPaths, error) {
	interpreter, err := m.ResolveInterpreterPath(ctx)
	if err != nil {
		return core.ResolvedPaths{}, err
	}

	paths := core.ResolvedPaths{InterpreterPath: interpreter}

	if tool, ok, err := m.ResolveToolPath(ctx); err != nil {
		return core.ResolvedPaths{}, err
	} else if ok {
		paths.ToolPath = tool
	}

	if script, ok, err := m.ResolveScriptPath(ctx); err != nil {
		return core.ResolvedPaths{}, err
	} else if ok {
		paths.ScriptPath = script
	}

	return paths, nil
}

// translateForInterpreter converts a path into the form the resolved
// interpreter accepts. Native interpreters (and every interpreter on a
// non-Windows host) keep ordinary absolute paths; POSIX-emulation builds
// get the /{drive}/{rest} form.
func (m *Manager) translateForInterpreter(ctx context.Context, p string) (string, error) {
	if m.kind == platform.Posix {
		return p, nil
	}

	interpreter, err := m.resolver.InterpreterPath()
	if err != nil {
		return "", err
	}

	posixEmulation, err := m.detector.IsPosixEmulation(ctx, interpreter)
	if err != nil {
		return "", err
	}
	if !posixEmulation {
		return p, nil
	}

	return pathstyle.Translate(p)
}
