package main

import (
	"context"
	"encoding/json"
	"fmt"

	"facility_workorders/internal/app"
	"facility_workorders/internal/config"
	"facility_workorders/internal/infrastructure/logging"
	"facility_workorders/internal/infrastructure/sharding"
	"facility_workorders/internal/scheduler"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Recurring work order scheduler",
	Long: "Materializes recurring work order definitions into work orders.\n" +
		"Storage, logging and sharding come from configs/config.yaml and the environment.",
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	cobra.EnableCommandSorting = false
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(serveCmd)
}

// env is what every subcommand needs: the wired application and a sweeper
// bound to this replica's share of the definitions.
type env struct {
	app     *app.App
	log     *zap.Logger
	sweeper *scheduler.Sweeper
}

func bootstrap(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build application: %w", err)
	}

	ring := sharding.NewRing(cfg.Scheduler.Members, cfg.Scheduler.Self)
	logger.Info("scheduler replica",
		zap.String("self", cfg.Scheduler.Self),
		zap.Strings("members", ring.Members()),
	)
	return &env{app: a, log: logger, sweeper: scheduler.NewSweeper(a.Recurring, ring, logger)}, nil
}

func (e *env) close() {
	if err := e.app.Close(); err != nil {
		e.log.Warn("close", zap.Error(err))
	}
	_ = e.log.Sync()
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
