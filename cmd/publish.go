package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/boroughlab/incident-cli/pkg/notion"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Run the pipeline and publish borough rates to Notion",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Notion.Token == "" {
			return eris.New("no notion token configured")
		}

		result, err := runPipeline(cmd.Context())
		if err != nil {
			return err
		}

		client := notion.NewClient(cfg.Notion.Token)
		return notion.PublishRates(cmd.Context(), client, cfg.Notion.RatesDB, result)
	},
}

func init() {
	rootCmd.AddCommand(publishCmd)
}
