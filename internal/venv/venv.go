// Package venv provisions the managed virtual environment: the isolated
// interpreter plus the pinned dependencies listed in the install manifest.
package venv

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/quantmind-br/pyruntime/internal/core"
	"github.com/quantmind-br/pyruntime/internal/fsops"
	"github.com/quantmind-br/pyruntime/internal/platform"
	"github.com/quantmind-br/pyruntime/internal/runner"
)

// Provisioner creates and populates managed environments. The environment
// is owned wholesale: it is deleted and recreated on every provision, never
// patched in place.
type Provisioner struct {
	fs     afero.Fs
	runner runner.Runner
	kind   platform.Kind
	log    zerolog.Logger
}

// NewProvisioner creates a Provisioner for the current host platform.
func NewProvisioner(fs afero.Fs, r runner.Runner, log zerolog.Logger) *Provisioner {
	return NewProvisionerWith(fs, r, platform.Current(), log)
}

// NewProvisionerWith creates a Provisioner with an explicit platform kind.
func NewProvisionerWith(fs afero.Fs, r runner.Runner, kind platform.Kind, log zerolog.Logger) *Provisioner {
	return &Provisioner{fs: fs, runner: r, kind: kind, log: log}
}

// Provision destroys any stale environment at venvDir, creates a fresh one
// with the given base interpreter and installs every dependency from the
// manifest at manifestPath. The manifest is always produced by extraction;
// its absence means a corrupted or partial install and fails with
// *core.ManifestMissingError before anything is touched. Step two never
// runs after a failed step one.
func (p *Provisioner) Provision(ctx context.Context, interpreter, venvDir, manifestPath string) error {
	if !fsops.Exists(p.fs, manifestPath) {
		return &core.ManifestMissingError{Path: manifestPath}
	}

	if err := fsops.RemoveTree(p.fs, venvDir); err != nil {
		return fmt.Errorf("clear stale environment: %w", err)
	}

	p.log.Info().Str("interpreter", interpreter).Str("venv", venvDir).Msg("creating virtual environment")
	if _, err := p.runner.Run(ctx, interpreter, "-m", "venv", venvDir); err != nil {
		return fmt.Errorf("create virtual environment: %w", err)
	}

	venvPython := filepath.Join(venvDir, platform.BinDirName(p.kind), "python"+platform.ExeSuffix(p.kind))

	p.log.Info().Str("manifest", manifestPath).Msg("installing pinned dependencies")
	if _, err := p.runner.Run(ctx, venvPython, "-m", "pip", "install", "-r", manifestPath); err != nil {
		return fmt.Errorf("install dependencies: %w", err)
	}

	return nil
}
