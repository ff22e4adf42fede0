package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/quantmind-br/pyruntime/internal/config"
	"github.com/quantmind-br/pyruntime/internal/db"
	"github.com/quantmind-br/pyruntime/internal/installer"
	"github.com/quantmind-br/pyruntime/internal/runner"
	"github.com/quantmind-br/pyruntime/internal/ui"
)

// NewInstallCmd creates the install command
func NewInstallCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var (
		force       bool
		yes         bool
		timeoutSecs int
	)

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Download and provision the tool runtime",
		Long:  `Download the pinned toolchain archive, unpack it and provision the managed virtual environment. A no-op when the installed version already matches.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Info().
				Str("tool", cfg.Tool.Name).
				Str("version", cfg.Tool.Version).
				Bool("force", force).
				Msg("starting install")

			ctx := cmd.Context()
			if timeoutSecs > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, time.Duration(timeoutSecs)*time.Second)
				defer cancel()
			}

			fs := afero.NewOsFs()
			history, err := db.New(ctx, cfg.Paths.DBFile)
			if err != nil {
				log.Warn().Err(err).Msg("history database unavailable, continuing without it")
				history = nil
			} else {
				defer history.Close()
			}

			var hist installer.History
			if history != nil {
				hist = history
			}
			mgr := installer.New(cfg, fs, runner.NewOSRunner(), hist, *log)

			if mgr.Installed() && !force {
				ui.PrintSuccess("%s %s is already installed", cfg.Tool.Name, cfg.Tool.Version)
				return nil
			}

			if mgr.Installed() && force {
				if !yes {
					confirmed, err := ui.ConfirmPrompt(fmt.Sprintf("Reinstall %s %s over the existing environment", cfg.Tool.Name, cfg.Tool.Version))
					if err != nil || !confirmed {
						ui.PrintWarning("Install cancelled")
						return nil
					}
				}
				// Drop the marker so the full pipeline runs again.
				if err := fs.Remove(mgr.Resolver().MarkerPath()); err != nil {
					log.Warn().Err(err).Msg("failed to clear version marker")
				}
			}

			ui.PrintInfo("Installing %s %s...", cfg.Tool.Name, cfg.Tool.Version)

			bar := ui.NewProgressBarBytes(-1, fmt.Sprintf("downloading %s", cfg.Tool.Name))
			err = mgr.EnsureInstalled(ctx, bar.Observe)
			bar.Finish()
			if err != nil {
				color.Red("Error: install failed: %v", err)
				return fmt.Errorf("install: %w", err)
			}

			ui.PrintSuccess("%s %s installed", cfg.Tool.Name, cfg.Tool.Version)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "reinstall even if the version marker matches")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the reinstall confirmation prompt")
	cmd.Flags().IntVar(&timeoutSecs, "timeout", 0, "overall timeout in seconds (0 = no timeout)")

	return cmd
}
