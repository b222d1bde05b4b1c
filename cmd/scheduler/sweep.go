package main

import (
	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Materialize everything due once",
	Long:  "scheduler sweep\n\nRuns one pass over the active definitions owned by this replica.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer e.close()

		rep, sweepErr := e.sweeper.Sweep(cmd.Context())
		if err := printJSON(cmd, rep); err != nil {
			return err
		}
		return sweepErr
	},
}
