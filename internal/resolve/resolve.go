// Package resolve computes the filesystem locations of the interpreter, the
// formatter tool and the server script under the three resolution
// strategies: bundled, system-global and managed-venv.
package resolve

import (
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/quantmind-br/pyruntime/internal/fsops"
	"github.com/quantmind-br/pyruntime/internal/platform"
)

// Options describes what to resolve and where.
type Options struct {
	// Global resolves against the system search path instead of the
	// managed environment.
	Global bool
	// PreferBundled resolves the server script from InstallDir instead of
	// the storage root.
	PreferBundled bool
	// OnlyLSP selects the {name}.only_lsp install directory for the
	// bundled script tree.
	OnlyLSP bool

	StorageRoot string
	InstallDir  string
	ToolName    string
	ScriptName  string
}

// Resolver centralizes the path layout of a managed runtime. Lookup and
// realpath functions are injectable for tests; the platform kind decides
// the venv binary layout: Scripts and .exe apply to native Windows only,
// since MSYS2 and Cygwin venvs use bin with no suffix despite running on
// Windows.
type Resolver struct {
	fs       afero.Fs
	opts     Options
	kind     platform.Kind
	lookPath func(string) (string, error)
	realPath func(string) (string, error)
}

// NewResolver creates a Resolver for the current host platform.
func NewResolver(fs afero.Fs, opts Options) *Resolver {
	return NewResolverWith(fs, opts, platform.Current(), exec.LookPath, filepath.EvalSymlinks)
}

// NewResolverWith creates a Resolver with explicit platform kind and lookup
// functions (useful for tests).
func NewResolverWith(fs afero.Fs, opts Options, kind platform.Kind, lookPath, realPath func(string) (string, error)) *Resolver {
	return &Resolver{
		fs:       fs,
		opts:     opts,
		kind:     kind,
		lookPath: lookPath,
		realPath: realPath,
	}
}

// InstallDir returns {storageRoot}/{toolName}, the unpacked install tree.
func (r *Resolver) InstallDir() string {
	return filepath.Join(r.opts.StorageRoot, r.opts.ToolName)
}

// VenvDir returns the managed environment directory {storageRoot}/{toolName}/venv.
func (r *Resolver) VenvDir() string {
	return filepath.Join(r.InstallDir(), "venv")
}

// VenvPython returns the managed environment's own interpreter path.
func (r *Resolver) VenvPython() string {
	return filepath.Join(r.VenvDir(), platform.BinDirName(r.kind), "python"+platform.ExeSuffix(r.kind))
}

// ManifestPath returns the dependency manifest written by extraction.
func (r *Resolver) ManifestPath() string {
	return filepath.Join(r.InstallDir(), "requirements.txt")
}

// MarkerPath returns the version marker file inside the install tree.
func (r *Resolver) MarkerPath() string {
	return filepath.Join(r.InstallDir(), "version.txt")
}

// InterpreterPath resolves the interpreter to launch. In global mode it is
// the realpath of python3/python found on the search path; in managed mode
// it is the managed environment's interpreter.
func (r *Resolver) InterpreterPath() (string, error) {
	if !r.opts.Global {
		return r.VenvPython(), nil
	}

	names := []string{"python3", "python"}
	if r.kind != platform.Posix {
		// Windows installs typically register python, not python3.
		names = []string{"python", "python3"}
	}

	for _, name := range names {
		found, err := r.lookPath(name)
		if err != nil {
			continue
		}
		if resolved, err := r.realPath(found); err == nil {
			return resolved, nil
		}
		return found, nil
	}

	return "", fmt.Errorf("no python interpreter found on the system search path")
}

// ToolPath resolves the formatter executable. In managed mode the path is
// only reported when it exists on disk; a never-provisioned environment
// yields ok=false rather than a fabricated path.
func (r *Resolver) ToolPath() (string, bool, error) {
	name := r.opts.ToolName + platform.ExeSuffix(r.kind)

	if r.opts.Global {
		found, err := r.lookPath(r.opts.ToolName)
		if err != nil {
			return "", false, nil
		}
		if resolved, err := r.realPath(found); err == nil {
			return resolved, true, nil
		}
		return found, true, nil
	}

	p := filepath.Join(r.VenvDir(), platform.BinDirName(r.kind), name)
	if !fsops.Exists(r.fs, p) {
		return "", false, nil
	}
	return p, true, nil
}

// ScriptPath resolves the language server entry script. With the bundled
// strategy it lives under the installation directory; otherwise it is
// resolved under the storage root and existence-checked.
func (r *Resolver) ScriptPath() (string, bool, error) {
	if r.opts.PreferBundled {
		if r.opts.InstallDir == "" {
			return "", false, fmt.Errorf("bundled script requested but no install directory configured")
		}
		return filepath.Join(r.opts.InstallDir, "bundled", "tool", r.opts.ScriptName), true, nil
	}

	p := filepath.Join(r.opts.StorageRoot, r.serverDirName(), "bundled", "tool", r.opts.ScriptName)
	if !fsops.Exists(r.fs, p) {
		return "", false, nil
	}
	return p, true, nil
}

func (r *Resolver) serverDirName() string {
	if r.opts.OnlyLSP {
		return r.opts.ToolName + ".only_lsp"
	}
	return r.opts.ToolName
}
