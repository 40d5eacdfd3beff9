package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jakechorley/ward-rota/pkg/core/rotation"
	"github.com/jakechorley/ward-rota/pkg/core/services"
)

// ScheduleCmd creates the schedule command
func ScheduleCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule [run_id]",
		Short: "Show a saved schedule (defaults to the latest run)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := services.LatestRunID
			if len(args) > 0 {
				runID = args[0]
			}
			nurse, _ := cmd.Flags().GetString("nurse")

			result, err := services.GetRunSchedule(app.Ctx, app.Database, app.Logger, runID)
			if err != nil {
				return err
			}

			schedule := result.Schedule
			if nurse != "" {
				schedule = schedule.ForNurse(nurse)
			}

			var starts []time.Time
			if start, ok := app.Cfg.ParsedStartDate(); ok {
				starts, err = rotation.PeriodCalendar(start, result.Run.PeriodLengthWeeks, result.Schedule.Periods())
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\nRun %s (%s, %s)\n\n", result.Run.ID, result.Run.Policy, result.Run.CreatedAt.Local().Format("2006-01-02 15:04"))
			renderSchedule(out, schedule, starts, ansi)
			fmt.Fprintln(out)

			return nil
		},
	}

	cmd.Flags().String("nurse", "", "Only show this nurse")

	return cmd
}

// RunsCmd creates the runs command
func RunsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "List saved simulation runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := services.ListRuns(app.Ctx, app.Database, app.Logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No saved runs. Use 'simulate' to create one.")
				return nil
			}

			fmt.Fprintf(out, "\nFound %d runs:\n\n", len(runs))
			for _, r := range runs {
				fmt.Fprintf(out, "- %s  %s  %-12s horizon %d weeks, %d-week periods, %d entries\n",
					r.ID,
					r.CreatedAt.Local().Format("2006-01-02 15:04"),
					r.Policy,
					r.HorizonWeeks,
					r.PeriodLengthWeeks,
					r.EntryCount,
				)
			}

			return nil
		},
	}
}
