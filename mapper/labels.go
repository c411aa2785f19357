package mapper

import (
	"github.com/on-the-ground/physio_ive_go/algorithm"
)

// Labels names one column per indicator. Indicators sharing a name but not
// their parameters are told apart as Name(k=v,...) over their used parameters;
// exact duplicates keep the same label.
func Labels(inds []algorithm.Indicator) []string {
	variants := make(map[string]map[string]struct{})
	for _, ind := range inds {
		name := ind.Name()
		if variants[name] == nil {
			variants[name] = make(map[string]struct{})
		}
		variants[name][ind.Params().String()] = struct{}{}
	}

	labels := make([]string, len(inds))
	for i, ind := range inds {
		name := ind.Name()
		if len(variants[name]) < 2 {
			labels[i] = name
			continue
		}
		labels[i] = name + "(" + ind.Params().Subset(ind.UsedParams()) + ")"
	}
	return labels
}
