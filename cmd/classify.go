package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/boroughlab/incident-cli/internal/model"
)

var (
	classifySeed          int64
	classifyTrainFraction float64
	classifyThreshold     float64
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Fit the day-of-occurrence model and print its evaluation",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("seed") {
			cfg.Split.Seed = classifySeed
		}
		if cmd.Flags().Changed("train-fraction") {
			cfg.Split.TrainFraction = classifyTrainFraction
		}
		if cmd.Flags().Changed("threshold") {
			cfg.Split.Threshold = classifyThreshold
		}

		result, err := runPipeline(cmd.Context())
		if err != nil {
			return err
		}
		m, eval := result.Model, result.Evaluation

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

		fmt.Fprintf(w, "Reference borough\t%s\n", m.Reference)
		fmt.Fprintf(w, "Intercept\t%.4f\n", m.Intercept)
		for _, b := range model.AllBoroughs() {
			if b == m.Reference {
				continue
			}
			fmt.Fprintf(w, "Coef %s\t%.4f\tP(occur)=%.4f\n", b, m.Coef[b], m.Probability(b))
		}

		fmt.Fprintf(w, "\nTrain/test\t%d/%d\tthreshold %.2f\n",
			eval.TrainSize, eval.TestSize, eval.Threshold)
		fmt.Fprintf(w, "Confusion\tTP %d\tTN %d\tFP %d\tFN %d\n",
			eval.Matrix.TruePositives, eval.Matrix.TrueNegatives,
			eval.Matrix.FalsePositives, eval.Matrix.FalseNegatives)
		fmt.Fprintf(w, "Accuracy\t%s\n", eval.Accuracy)
		fmt.Fprintf(w, "Sensitivity\t%s\n", eval.Sensitivity)
		fmt.Fprintf(w, "Specificity\t%s\n", eval.Specificity)

		return w.Flush()
	},
}

func init() {
	classifyCmd.Flags().Int64Var(&classifySeed, "seed", 1, "train/test split seed")
	classifyCmd.Flags().Float64Var(&classifyTrainFraction, "train-fraction", 0.7, "fraction of occurrence rows used for training")
	classifyCmd.Flags().Float64Var(&classifyThreshold, "threshold", 0.5, "probability threshold for predicting occurrence")
	rootCmd.AddCommand(classifyCmd)
}
