package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/ward-rota/pkg/core/services"
)

// SimulateCmd creates the simulate command
func SimulateCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Schedule every team over the horizon and save the run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			result, err := services.Simulate(app.Ctx, app.Database, app.Cfg, app.Logger, dryRun)
			if err != nil {
				return err
			}
			app.setSimulation(result)

			out := cmd.OutOrStdout()
			if result.Persisted {
				fmt.Fprintf(out, "\n✓ Simulation saved!\n\n")
			} else {
				fmt.Fprintf(out, "\n✓ Simulation complete (dry run, not saved)\n\n")
			}
			fmt.Fprintf(out, "Run ID:  %s\n", result.Run.ID)
			fmt.Fprintf(out, "Policy:  %s\n", result.Run.Policy)
			fmt.Fprintf(out, "Periods: %d x %d weeks (horizon %d weeks)\n", result.Schedule.Periods(), result.Run.PeriodLengthWeeks, result.Run.HorizonWeeks)
			if result.ReplayedRecords > 0 || result.SkippedRecords > 0 {
				fmt.Fprintf(out, "Imported skill records: %d applied, %d skipped (nurse not on roster)\n", result.ReplayedRecords, result.SkippedRecords)
			}

			for _, team := range result.Teams {
				fmt.Fprintf(out, "\n%s\n\n", team.Team)
				renderSchedule(out, team.Schedule, result.PeriodStarts, ansi)
			}
			fmt.Fprintln(out)

			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "Run without saving to database")

	return cmd
}
