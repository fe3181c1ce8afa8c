package report

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boroughlab/incident-cli/internal/classify"
	"github.com/boroughlab/incident-cli/internal/model"
	"github.com/boroughlab/incident-cli/internal/pipeline"
	"github.com/boroughlab/incident-cli/pkg/anthropic"
)

type fakeClient struct {
	req  anthropic.MessageRequest
	resp *anthropic.MessageResponse
	err  error
}

func (f *fakeClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.req = req
	return f.resp, f.err
}

func reportResult() *pipeline.Result {
	return &pipeline.Result{
		RunID:       "run-7",
		GeneratedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		CleanCount:  17,
		Rates: []model.NormalizedRate{
			{Borough: model.Bronx, Count: 942, Population: 1472654, RatePer100k: 63.99},
		},
		Evaluation: &classify.Evaluation{
			Matrix:      classify.ConfusionMatrix{TruePositives: 100, TrueNegatives: 50, FalsePositives: 30, FalseNegatives: 20},
			Accuracy:    classify.Ratio{Value: 0.75, Defined: true},
			Sensitivity: classify.Ratio{Value: 0.8333, Defined: true},
			Specificity: classify.Ratio{Value: 0.625, Defined: true},
			Threshold:   0.5,
			TrainSize:   420,
			TestSize:    200,
		},
	}
}

func TestNarrate(t *testing.T) {
	client := &fakeClient{
		resp: &anthropic.MessageResponse{
			Content: []anthropic.ContentBlock{{Type: "text", Text: "  The Bronx leads per capita.  "}},
		},
	}

	n := NewNarrator(client, "claude-sonnet-4-5-20250929", 0)
	text, err := n.Narrate(context.Background(), reportResult())
	require.NoError(t, err)

	assert.Equal(t, "The Bronx leads per capita.", text)
	assert.Equal(t, "claude-sonnet-4-5-20250929", client.req.Model)
	assert.Equal(t, int64(1024), client.req.MaxTokens)
	require.Len(t, client.req.Messages, 1)
	assert.Contains(t, client.req.Messages[0].Content, "BRONX: 63.99")
	require.NotNil(t, client.req.Temperature)
	assert.Zero(t, *client.req.Temperature)
}

func TestNarrateEmptyResponse(t *testing.T) {
	client := &fakeClient{resp: &anthropic.MessageResponse{StopReason: "max_tokens"}}

	n := NewNarrator(client, "claude-sonnet-4-5-20250929", 256)
	_, err := n.Narrate(context.Background(), reportResult())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_tokens")
}

func TestSummary(t *testing.T) {
	text := Summary(reportResult())

	assert.Contains(t, text, "Run run-7")
	assert.Contains(t, text, "BRONX: 63.99")
	assert.Contains(t, text, "TP 100, TN 50, FP 30, FN 20")
	assert.Contains(t, text, "accuracy 0.7500")
}
