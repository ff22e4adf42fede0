package cmd

import (
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/quantmind-br/pyruntime/internal/config"
	"github.com/quantmind-br/pyruntime/internal/db"
	"github.com/quantmind-br/pyruntime/internal/ui"
)

// NewHistoryCmd creates the history command
func NewHistoryCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past provisioning runs",
		Long:  `List recorded provisioning runs, newest first, with their outcome and the step that failed when one did.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			database, err := db.New(ctx, cfg.Paths.DBFile)
			if err != nil {
				return fmt.Errorf("opening history database: %w", err)
			}
			defer database.Close()

			runs, err := database.ListRuns(ctx)
			if err != nil {
				return fmt.Errorf("listing runs: %w", err)
			}

			if len(runs) == 0 {
				ui.PrintInfo("No provisioning runs recorded yet")
				return nil
			}

			if limit > 0 && len(runs) > limit {
				runs = runs[:limit]
			}

			table := tablewriter.NewTable(cmd.OutOrStdout(),
				tablewriter.WithHeader([]string{"Tool", "Version", "Status", "Failed Step", "Started", "Duration"}),
				tablewriter.WithAlignment(tw.MakeAlign(6, tw.AlignLeft)),
				tablewriter.WithSymbols(tw.NewSymbols(tw.StyleNone)),
			)

			for _, run := range runs {
				failedStep := run.FailedStep
				if failedStep == "" {
					failedStep = "-"
				}

				table.Append(
					run.Tool,
					run.Version,
					colorizeStatus(run.Status),
					failedStep,
					run.StartedAt.Format("2006-01-02 15:04"),
					run.Duration.Round(time.Millisecond).String(),
				)
			}

			table.Render()
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs to show (0 = all)")

	return cmd
}

func colorizeStatus(status string) string {
	switch status {
	case db.StatusOK:
		return ui.Success.Sprint(status)
	case db.StatusFailed:
		return ui.Error.Sprint(status)
	case db.StatusNoOp:
		return ui.Muted.Sprint(status)
	default:
		return status
	}
}
