package pipeline

import (
	"go.uber.org/zap"

	"github.com/boroughlab/incident-cli/internal/model"
)

// ratePer100kBase is the population base incident counts are normalized to.
const ratePer100kBase = 100000.0

// NormalizeResult carries the joined rate table plus the boroughs that
// failed to match on either side. The join is a strict inner join:
// unmatched boroughs are excluded from Rates and reported, never
// defaulted to a zero rate.
type NormalizeResult struct {
	Rates             []model.NormalizedRate `json:"rates"`
	UnmatchedBoroughs []string               `json:"unmatched_boroughs,omitempty"`
}

// NormalizeRates joins borough totals against the population reference on
// the canonical borough key and computes the rate per 100k residents.
func NormalizeRates(totals []model.AggregateCount, population []model.PopulationEntry) NormalizeResult {
	popByKey := make(map[string]model.PopulationEntry, len(population))
	for _, p := range population {
		popByKey[p.Borough.Key()] = p
	}

	var result NormalizeResult
	matched := make(map[string]bool, len(totals))

	for _, t := range totals {
		p, ok := popByKey[t.Borough.Key()]
		if !ok {
			result.UnmatchedBoroughs = append(result.UnmatchedBoroughs, t.Borough.String())
			continue
		}
		matched[t.Borough.Key()] = true

		result.Rates = append(result.Rates, model.NormalizedRate{
			Borough:     t.Borough,
			Count:       t.Count,
			Population:  p.Population,
			RatePer100k: float64(t.Count) * ratePer100kBase / float64(p.Population),
		})
	}

	for _, p := range population {
		if !matched[p.Borough.Key()] {
			result.UnmatchedBoroughs = append(result.UnmatchedBoroughs, p.Borough.String())
		}
	}

	if len(result.UnmatchedBoroughs) > 0 {
		zap.L().Warn("pipeline: boroughs excluded from rate join",
			zap.Strings("boroughs", result.UnmatchedBoroughs),
		)
	}

	return result
}
