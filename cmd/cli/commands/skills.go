package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jakechorley/ward-rota/pkg/core/model"
)

// SkillsCmd creates the skills command
func SkillsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "skills [nurse]",
		Short: "Show the wards each nurse knows after the simulation (* = veteran)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sim, err := app.Simulation()
			if err != nil {
				return err
			}

			roster := sim.Roster
			if len(args) > 0 {
				roster = nil
				for _, n := range sim.Roster {
					if n.Name == args[0] {
						roster = []model.Nurse{n}
					}
				}
				if roster == nil {
					return fmt.Errorf("nurse %q is not on the roster", args[0])
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out)
			for _, n := range roster {
				wards := sim.Skills.Snapshot(n.Name).Sorted()
				labels := make([]string, len(wards))
				for i, w := range wards {
					labels[i] = string(w)
					if sim.Skills.IsVeteran(n.Name, w) {
						labels[i] += "*"
					}
				}
				fmt.Fprintf(out, "- %-20s (%d) %s\n", n.Name, len(wards), strings.Join(labels, ", "))
			}
			fmt.Fprintln(out)

			return nil
		},
	}
}
