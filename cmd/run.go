package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	runOut           string
	runSeed          int64
	runTrainFraction float64
	runThreshold     float64
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline and emit the result as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("seed") {
			cfg.Split.Seed = runSeed
		}
		if cmd.Flags().Changed("train-fraction") {
			cfg.Split.TrainFraction = runTrainFraction
		}
		if cmd.Flags().Changed("threshold") {
			cfg.Split.Threshold = runThreshold
		}

		result, err := runPipeline(cmd.Context())
		if err != nil {
			return err
		}

		out := os.Stdout
		if runOut != "" {
			f, err := os.Create(runOut)
			if err != nil {
				return eris.Wrapf(err, "create output file %s", runOut)
			}
			defer f.Close()
			out = f
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return eris.Wrap(err, "encode result")
		}

		if runOut != "" {
			zap.L().Info("result written", zap.String("path", runOut))
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runOut, "out", "", "write result JSON to file instead of stdout")
	runCmd.Flags().Int64Var(&runSeed, "seed", 1, "train/test split seed")
	runCmd.Flags().Float64Var(&runTrainFraction, "train-fraction", 0.7, "fraction of occurrence rows used for training")
	runCmd.Flags().Float64Var(&runThreshold, "threshold", 0.5, "probability threshold for predicting occurrence")
	rootCmd.AddCommand(runCmd)
}
