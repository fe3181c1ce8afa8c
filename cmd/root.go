package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/boroughlab/incident-cli/internal/config"
	"github.com/boroughlab/incident-cli/internal/pipeline"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "incident-cli",
	Short: "Borough incident analytics pipeline",
	Long:  "Loads an incident snapshot with borough polygons and population figures, cleans and aggregates it, normalizes counts per capita, and fits a day-of-occurrence model.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// runPipeline executes one full batch pass with the loaded config.
func runPipeline(ctx context.Context) (*pipeline.Result, error) {
	p, err := pipeline.New(cfg)
	if err != nil {
		return nil, err
	}
	return p.Run(ctx)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
