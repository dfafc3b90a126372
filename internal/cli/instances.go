package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/cfdtools/solvewatch/internal/config"
	"github.com/cfdtools/solvewatch/internal/progress"
	"github.com/cfdtools/solvewatch/internal/ui"
	"github.com/cfdtools/solvewatch/internal/util"
)

var instancesCmd = &cobra.Command{
	Use:   "instances",
	Short: "List configured instances",
	Long: `List the configured instances with their addresses, resource classes,
and the total step count their name's category selects.

Examples:
  solvewatch instances
  solvewatch --config ./fleet.yaml instances`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFound(configFlag)
		if err != nil {
			return err
		}

		instances := make([]config.Instance, len(cfg.Instances))
		copy(instances, cfg.Instances)
		sort.Slice(instances, func(i, j int) bool {
			return instances[i].Name < instances[j].Name
		})

		nameWidth := 12
		for _, inst := range instances {
			if len(inst.Name) > nameWidth {
				nameWidth = len(inst.Name)
			}
		}

		fmt.Println(ui.StyleMuted.Render(fmt.Sprintf("%-*s  %-16s  %-14s  %s",
			nameWidth, "NAME", "ADDRESS", "CLASS", "TOTAL STEPS")))

		for _, inst := range instances {
			total := "invalid category"
			if steps, err := progress.TotalSteps(inst.Name); err == nil {
				total = fmt.Sprintf("%d", steps)
			}

			address := inst.Address
			if address == "" {
				address = "(no address)"
			}

			fmt.Printf("%-*s  %-16s  %-14s  %s\n",
				nameWidth, inst.Name, address,
				util.Truncate(inst.Class, 14), total)
		}

		fmt.Println()
		fmt.Printf("%d %s, interval %s\n",
			len(instances), util.Pluralize(len(instances), "instance", "instances"), cfg.Interval)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(instancesCmd)
}
