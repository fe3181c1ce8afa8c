package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/boroughlab/incident-cli/internal/report"
	"github.com/boroughlab/incident-cli/pkg/anthropic"
)

var narrateCmd = &cobra.Command{
	Use:   "narrate",
	Short: "Run the pipeline and draft a plain-language narrative of the results",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := runPipeline(cmd.Context())
		if err != nil {
			return err
		}

		if cfg.Anthropic.Key == "" {
			zap.L().Warn("no anthropic key configured, printing raw summary")
			fmt.Print(report.Summary(result))
			return nil
		}

		narrator := report.NewNarrator(
			anthropic.NewClient(cfg.Anthropic.Key),
			cfg.Anthropic.Model,
			cfg.Anthropic.MaxTokens,
		)
		text, err := narrator.Narrate(cmd.Context(), result)
		if err != nil {
			return err
		}

		fmt.Println(text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(narrateCmd)
}
