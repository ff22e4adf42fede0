package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/quantmind-br/pyruntime/internal/config"
	"github.com/quantmind-br/pyruntime/internal/installer"
	"github.com/quantmind-br/pyruntime/internal/runner"
	"github.com/quantmind-br/pyruntime/internal/ui"
)

// NewPathsCmd creates the paths command
func NewPathsCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Resolve interpreter, tool and script paths",
		Long:  `Resolve the interpreter, tool and helper script paths for the configured tool, translated for the interpreter's path style. Paths are reported as resolved, never fabricated: a missing tool yields an empty entry.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr := installer.New(cfg, afero.NewOsFs(), runner.NewOSRunner(), nil, *log)

			paths, err := mgr.ResolvePaths(cmd.Context())
			if err != nil {
				return fmt.Errorf("resolving paths: %w", err)
			}

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(paths)
			}

			fmt.Printf("interpreter: %s\n", paths.InterpreterPath)
			if paths.ToolPath != "" {
				fmt.Printf("tool:        %s\n", paths.ToolPath)
			} else {
				fmt.Printf("tool:        %s\n", ui.Muted.Sprint("(not provisioned)"))
			}
			fmt.Printf("script:      %s\n", paths.ScriptPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	return cmd
}
