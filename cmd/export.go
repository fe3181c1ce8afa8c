package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/boroughlab/incident-cli/internal/export"
)

var exportDriver string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Run the pipeline and persist the result tables to the configured sink",
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportDriver != "" {
			cfg.Export.Driver = exportDriver
		}

		result, err := runPipeline(cmd.Context())
		if err != nil {
			return err
		}

		sink, err := export.ForConfig(cmd.Context(), cfg.Export)
		if err != nil {
			return err
		}
		defer sink.Close()

		if err := sink.Write(cmd.Context(), result); err != nil {
			return err
		}

		zap.L().Info("run exported",
			zap.String("run_id", result.RunID),
			zap.String("driver", cfg.Export.Driver),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportDriver, "driver", "", "sink driver: sqlite, postgres, or xlsx (default from config)")
	rootCmd.AddCommand(exportCmd)
}
