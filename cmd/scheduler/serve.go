package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Sweep on a fixed interval",
	Long: "scheduler serve [--interval 1h]\n\n" +
		"Sweeps immediately and then every interval until interrupted. Defaults to scheduler.interval.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		e, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer e.close()

		interval := e.app.Config.Scheduler.Interval
		if cmd.Flags().Changed("interval") {
			interval, _ = cmd.Flags().GetDuration("interval")
		}
		e.log.Info("scheduler serving", zap.Duration("interval", interval))

		err = e.sweeper.Serve(ctx, interval)
		e.log.Info("scheduler stopped")
		return err
	},
}

func init() {
	serveCmd.Flags().Duration("interval", 0, "Time between sweeps (default scheduler.interval)")
}
