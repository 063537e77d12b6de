package cmd

import (
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/bpradana/subscribeon"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List strategies and the schedulers they resolve to",
	RunE: func(cmd *cobra.Command, args []string) error {
		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.Header("Strategy", "Scheduler")
		for _, s := range subscribeon.Strategies() {
			if err := table.Append([]string{s.String(), subscribeon.SchedulerFor(s).Name()}); err != nil {
				return err
			}
		}
		return table.Render()
	},
}
