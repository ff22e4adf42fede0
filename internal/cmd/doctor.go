package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/quantmind-br/pyruntime/internal/config"
	"github.com/quantmind-br/pyruntime/internal/db"
	"github.com/quantmind-br/pyruntime/internal/fsops"
	"github.com/quantmind-br/pyruntime/internal/installer"
	"github.com/quantmind-br/pyruntime/internal/platform"
	"github.com/quantmind-br/pyruntime/internal/runner"
	"github.com/quantmind-br/pyruntime/internal/ui"
)

// NewDoctorCmd creates the doctor command
func NewDoctorCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check runtime dependencies and environment integrity",
		Long:  `Check the base interpreter, storage directories, managed environment and history database.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ui.PrintHeader("Runtime Diagnostics")
			fmt.Println()

			var issues []string
			var warnings []string

			fs := afero.NewOsFs()
			ctx := cmd.Context()
			mgr := installer.New(cfg, fs, runner.NewOSRunner(), nil, *log)
			res := mgr.Resolver()

			// 1. Base interpreter
			ui.PrintSubheader("Base Interpreter")
			if cfg.Tool.Interpreter != "" {
				if fsops.Exists(fs, cfg.Tool.Interpreter) {
					ui.PrintSuccess("configured interpreter: %s", cfg.Tool.Interpreter)
				} else {
					ui.PrintError("configured interpreter: NOT FOUND (%s)", cfg.Tool.Interpreter)
					issues = append(issues, fmt.Sprintf("Configured interpreter missing: %s", cfg.Tool.Interpreter))
				}
			} else {
				found := false
				for _, name := range []string{"python3", "python"} {
					if p, err := exec.LookPath(name); err == nil {
						ui.PrintSuccess("%s: %s", name, p)
						found = true
					} else {
						ui.PrintInfo("%s: not on PATH", name)
					}
				}
				if !found {
					ui.PrintError("no python interpreter on PATH")
					issues = append(issues, "No python3 or python executable on PATH")
				}
			}

			fmt.Println()

			// 2. Storage directories
			ui.PrintSubheader("Storage")
			dirs := []struct {
				path string
				name string
			}{
				{cfg.Paths.StorageRoot, "Storage root"},
				{filepath.Dir(cfg.Paths.DBFile), "Database directory"},
				{filepath.Dir(cfg.Paths.LogFile), "Log directory"},
			}

			for _, dir := range dirs {
				if err := checkDirectory(fs, dir.path); err != nil {
					ui.PrintError("%s: NOT WRITABLE (%s)", dir.name, dir.path)
					issues = append(issues, fmt.Sprintf("Directory not writable: %s (%v)", dir.path, err))
				} else {
					ui.PrintSuccess("%s: %s", dir.name, dir.path)
				}
			}

			fmt.Println()

			// 3. Managed environment
			ui.PrintSubheader("Managed Environment")
			if cfg.Tool.Global {
				ui.PrintInfo("global mode: no managed environment expected")
			} else if version, ok := mgr.InstalledVersion(); ok {
				if version == cfg.Tool.Version {
					ui.PrintSuccess("installed version: %s", version)
				} else {
					ui.PrintWarning("installed version %s does not match pinned %s", version, cfg.Tool.Version)
					warnings = append(warnings, fmt.Sprintf("Version drift: installed %s, pinned %s", version, cfg.Tool.Version))
				}

				checks := []struct {
					path string
					name string
				}{
					{res.VenvPython(), "venv interpreter"},
					{res.ManifestPath(), "requirements manifest"},
				}
				for _, c := range checks {
					if fsops.Exists(fs, c.path) {
						ui.PrintSuccess("%s: %s", c.name, c.path)
					} else {
						ui.PrintError("%s: MISSING (%s)", c.name, c.path)
						issues = append(issues, fmt.Sprintf("Missing %s: %s", c.name, c.path))
					}
				}
			} else {
				ui.PrintWarning("not installed (run 'pyruntime install')")
				warnings = append(warnings, fmt.Sprintf("%s %s is not installed", cfg.Tool.Name, cfg.Tool.Version))
			}

			fmt.Println()

			// 4. History database
			ui.PrintSubheader("History Database")
			database, err := db.New(ctx, cfg.Paths.DBFile)
			if err != nil {
				ui.PrintError("Database: NOT ACCESSIBLE")
				issues = append(issues, fmt.Sprintf("Cannot open database: %v", err))
			} else {
				ui.PrintSuccess("Database: accessible (%s)", cfg.Paths.DBFile)
				last, err := database.LastRun(ctx)
				switch {
				case err != nil:
					ui.PrintWarning("Cannot read run history: %v", err)
					warnings = append(warnings, "Cannot read run history")
				case last == nil:
					ui.PrintInfo("No provisioning runs recorded")
				default:
					ui.PrintInfo("Last run: %s %s (%s)", last.Tool, last.Version, last.Status)
				}
				database.Close()
			}

			fmt.Println()

			// 5. Environment
			ui.PrintSubheader("Environment")
			ui.PrintInfo("platform: %s", platform.Current())
			for _, name := range []string{"MSYSTEM", "OSTYPE", "PYRUNTIME_TOOL_VERSION", "PYRUNTIME_PATHS_STORAGE_ROOT"} {
				if v := os.Getenv(name); v != "" {
					ui.PrintSuccess("%s: %s", name, v)
				} else {
					ui.PrintInfo("%s: not set (using defaults)", name)
				}
			}

			fmt.Println()

			ui.PrintHeader("Summary")
			fmt.Println()

			if len(issues) == 0 {
				ui.PrintSuccess("All critical checks passed!")
			} else {
				ui.PrintError("Found %d issue(s):", len(issues))
				ui.PrintList(issues)
				fmt.Println()
			}

			if len(warnings) > 0 {
				ui.PrintWarning("Found %d warning(s):", len(warnings))
				ui.PrintList(warnings)
			}

			fmt.Println()

			if len(issues) > 0 {
				return fmt.Errorf("system check failed with %d issue(s)", len(issues))
			}

			return nil
		},
	}

	return cmd
}

// checkDirectory ensures the directory exists and is writable
func checkDirectory(fs afero.Fs, path string) error {
	if !fsops.Exists(fs, path) {
		if err := fsops.EnsureDir(fs, path, 0o755); err != nil {
			return err
		}
	}
	return fsops.CheckWritable(fs, path)
}
