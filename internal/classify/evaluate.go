package classify

import (
	"github.com/rotisserie/eris"

	"github.com/boroughlab/incident-cli/internal/model"
)

// Ratio is a derived confusion-matrix statistic. Defined is false when the
// denominator was zero; the value must then be rendered as undefined, not
// as zero or one.
type Ratio struct {
	Value   float64 `json:"value"`
	Defined bool    `json:"defined"`
}

// String renders the ratio for human-readable summaries.
func (r Ratio) String() string {
	if !r.Defined {
		return "undefined"
	}
	return formatRatio(r.Value)
}

// ConfusionMatrix tabulates predicted vs. actual boolean occurrence over a
// test set. TP+TN+FP+FN always equals the test set size.
type ConfusionMatrix struct {
	TruePositives  int `json:"true_positives"`
	TrueNegatives  int `json:"true_negatives"`
	FalsePositives int `json:"false_positives"`
	FalseNegatives int `json:"false_negatives"`
}

// Total returns the number of evaluated rows.
func (c ConfusionMatrix) Total() int {
	return c.TruePositives + c.TrueNegatives + c.FalsePositives + c.FalseNegatives
}

// Accuracy is (TP+TN) / total.
func (c ConfusionMatrix) Accuracy() Ratio {
	return ratio(c.TruePositives+c.TrueNegatives, c.Total())
}

// Sensitivity is TP / (TP+FN), the true-positive rate.
func (c ConfusionMatrix) Sensitivity() Ratio {
	return ratio(c.TruePositives, c.TruePositives+c.FalseNegatives)
}

// Specificity is TN / (TN+FP), the true-negative rate.
func (c ConfusionMatrix) Specificity() Ratio {
	return ratio(c.TrueNegatives, c.TrueNegatives+c.FalsePositives)
}

// Evaluation is the full test-set evaluation handed to consumers.
type Evaluation struct {
	Matrix      ConfusionMatrix `json:"matrix"`
	Accuracy    Ratio           `json:"accuracy"`
	Sensitivity Ratio           `json:"sensitivity"`
	Specificity Ratio           `json:"specificity"`
	Threshold   float64         `json:"threshold"`
	TrainSize   int             `json:"train_size"`
	TestSize    int             `json:"test_size"`
}

// Evaluate predicts every test row at the given threshold and tabulates
// the confusion matrix and its derived ratios.
func Evaluate(m *Model, test []model.DailyOccurrence, threshold float64) (*Evaluation, error) {
	if m == nil {
		return nil, eris.New("classify: nil model")
	}
	if len(test) == 0 {
		return nil, eris.New("classify: empty test set")
	}

	var cm ConfusionMatrix
	for _, row := range test {
		predicted := m.Predict(row.Borough, threshold)
		switch {
		case predicted && row.Occurred:
			cm.TruePositives++
		case !predicted && !row.Occurred:
			cm.TrueNegatives++
		case predicted && !row.Occurred:
			cm.FalsePositives++
		default:
			cm.FalseNegatives++
		}
	}

	return &Evaluation{
		Matrix:      cm,
		Accuracy:    cm.Accuracy(),
		Sensitivity: cm.Sensitivity(),
		Specificity: cm.Specificity(),
		Threshold:   threshold,
		TestSize:    len(test),
	}, nil
}

func ratio(num, den int) Ratio {
	if den == 0 {
		return Ratio{}
	}
	return Ratio{Value: float64(num) / float64(den), Defined: true}
}
