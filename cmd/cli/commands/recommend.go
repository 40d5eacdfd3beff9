package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/ward-rota/pkg/core/model"
	"github.com/jakechorley/ward-rota/pkg/core/services"
)

// RecommendCmd creates the recommend command
func RecommendCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend <ward>",
		Short: "Rank nurses qualified for a ward",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asOf, err := asOfFlag(cmd)
			if err != nil {
				return err
			}

			sim, err := app.Simulation()
			if err != nil {
				return err
			}

			ward := model.Ward(args[0])
			recs, err := services.RecommendStaff(sim, app.Logger, ward, asOf)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out)
			renderRecommendations(out, ward, recs, ansi)
			fmt.Fprintln(out)

			return nil
		},
	}

	cmd.Flags().Int("as-of", 0, "Only count scheduled placements up to this period index")

	return cmd
}

// CoverageCmd creates the coverage command
func CoverageCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coverage",
		Short: "Show which nurses can cover which wards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			asOf, err := asOfFlag(cmd)
			if err != nil {
				return err
			}

			sim, err := app.Simulation()
			if err != nil {
				return err
			}

			report, err := services.BuildCoverageReport(sim, app.Logger, asOf)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out)
			renderCoverage(out, report.Coverage, ansi)
			fmt.Fprintf(out, "\nWards covered: %.0f%%  Veteran cells: %d  Acquired cells: %d\n", report.Overall*100, report.Veterans, report.Acquired)
			fmt.Fprintln(out, "Legend: V veteran, A acquired, - not qualified")
			fmt.Fprintln(out)

			return nil
		},
	}

	cmd.Flags().Int("as-of", 0, "Only count scheduled placements up to this period index")

	return cmd
}

// asOfFlag returns nil unless --as-of was given
func asOfFlag(cmd *cobra.Command) (*int, error) {
	if !cmd.Flags().Changed("as-of") {
		return nil, nil
	}
	v, err := cmd.Flags().GetInt("as-of")
	if err != nil {
		return nil, fmt.Errorf("as-of must be a period index: %w", err)
	}
	return &v, nil
}
