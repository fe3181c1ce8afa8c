// Package report drafts a plain-language narrative of a finished run.
package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/boroughlab/incident-cli/internal/pipeline"
	"github.com/boroughlab/incident-cli/pkg/anthropic"
)

const systemPrompt = `You are a data analyst writing for city officials.
Summarize the incident analysis results you are given in two or three
short paragraphs of plain prose. Mention the population-normalized rates
and how they reorder the boroughs relative to raw counts, and close with
one sentence on how well the day-of-occurrence model performed. Do not
invent numbers that are not in the input.`

// Narrator drafts narratives through the Anthropic API.
type Narrator struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewNarrator builds a Narrator for the given model.
func NewNarrator(client anthropic.Client, model string, maxTokens int64) *Narrator {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Narrator{client: client, model: model, maxTokens: maxTokens}
}

// Narrate drafts a narrative for one run.
func (n *Narrator) Narrate(ctx context.Context, result *pipeline.Result) (string, error) {
	temperature := 0.0
	resp, err := n.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       n.model,
		MaxTokens:   n.maxTokens,
		System:      []anthropic.SystemBlock{{Text: systemPrompt}},
		Messages:    []anthropic.Message{{Role: "user", Content: Summary(result)}},
		Temperature: &temperature,
	})
	if err != nil {
		return "", eris.Wrap(err, "report: draft narrative")
	}

	resp.Usage.LogCost(n.model)

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", eris.Errorf("report: empty narrative (stop reason %s)", resp.StopReason)
	}

	zap.L().Info("report: narrative drafted",
		zap.String("run_id", result.RunID),
		zap.Int("chars", len(text)),
	)
	return text, nil
}

// Summary renders the run's key figures as the plain-text prompt input.
// It also serves as the offline fallback when no API key is configured.
func Summary(result *pipeline.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Run %s, generated %s.\n", result.RunID, result.GeneratedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "Records: %d read, %d kept (%d dropped: %d missing date, %d missing coordinates, %d unknown borough).\n",
		result.Load.RowsRead, result.CleanCount, result.Drops.Total(),
		result.Drops.MissingDate, result.Drops.MissingCoords, result.Drops.UnknownBorough)

	b.WriteString("\nIncidents per 100k residents by borough:\n")
	for _, r := range result.Rates {
		fmt.Fprintf(&b, "  %s: %.2f (%d incidents, population %d)\n",
			r.Borough, r.RatePer100k, r.Count, r.Population)
	}
	if len(result.Unmatched) > 0 {
		fmt.Fprintf(&b, "Boroughs excluded from the rate join: %s.\n", strings.Join(result.Unmatched, ", "))
	}

	if result.Evaluation != nil {
		e := result.Evaluation
		b.WriteString("\nDay-of-occurrence model evaluation:\n")
		fmt.Fprintf(&b, "  train %d rows, test %d rows, threshold %.2f\n", e.TrainSize, e.TestSize, e.Threshold)
		fmt.Fprintf(&b, "  confusion: TP %d, TN %d, FP %d, FN %d\n",
			e.Matrix.TruePositives, e.Matrix.TrueNegatives,
			e.Matrix.FalsePositives, e.Matrix.FalseNegatives)
		fmt.Fprintf(&b, "  accuracy %s, sensitivity %s, specificity %s\n",
			e.Accuracy, e.Sensitivity, e.Specificity)
	}

	return b.String()
}
