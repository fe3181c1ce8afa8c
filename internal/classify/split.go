// Package classify fits and evaluates the daily borough occurrence model:
// a logistic regression predicting whether at least one incident happens
// in a borough on a given day.
package classify

import (
	"math"
	"math/rand"

	"github.com/rotisserie/eris"

	"github.com/boroughlab/incident-cli/internal/model"
)

// Split partitions the occurrence rows into disjoint train and test sets.
// The partition is a seeded pseudo-random permutation: the same seed,
// input size, and fraction always reproduce the same split. Train size is
// round(trainFraction × n); train + test always equals n exactly.
func Split(rows []model.DailyOccurrence, trainFraction float64, seed int64) (train, test []model.DailyOccurrence, err error) {
	if trainFraction <= 0 || trainFraction >= 1 {
		return nil, nil, eris.Errorf("classify: train fraction %v outside (0, 1)", trainFraction)
	}
	if len(rows) == 0 {
		return nil, nil, eris.New("classify: empty occurrence table")
	}

	perm := rand.New(rand.NewSource(seed)).Perm(len(rows))
	trainSize := int(math.Round(trainFraction * float64(len(rows))))

	train = make([]model.DailyOccurrence, 0, trainSize)
	test = make([]model.DailyOccurrence, 0, len(rows)-trainSize)
	for i, idx := range perm {
		if i < trainSize {
			train = append(train, rows[idx])
		} else {
			test = append(test, rows[idx])
		}
	}

	return train, test, nil
}
