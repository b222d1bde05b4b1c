package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Materialize one definition",
	Long: "scheduler run --definition <id> [--date YYYY-MM-DD]\n\n" +
		"Without --date every due occurrence is materialized; with it, only that day.",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("definition")
		rawDate, _ := cmd.Flags().GetString("date")
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("--definition is required")
		}

		var date *time.Time
		if rawDate != "" {
			d, err := time.Parse(time.DateOnly, rawDate)
			if err != nil {
				return fmt.Errorf("invalid --date %q: %w", rawDate, err)
			}
			date = &d
		}

		e, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer e.close()

		res, err := e.app.Recurring.Trigger(cmd.Context(), strings.TrimSpace(id), date)
		if err != nil {
			return fmt.Errorf("trigger %s: %w", id, err)
		}
		return printJSON(cmd, res)
	},
}

func init() {
	runCmd.Flags().String("definition", "", "Recurring work order definition id")
	runCmd.Flags().String("date", "", "Single occurrence to materialize (YYYY-MM-DD)")
}
