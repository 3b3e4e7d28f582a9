// Package aggregate builds processed datasets from canonical trials and derives
// filtered views from a baseline.
package aggregate

import (
	"github.com/synaptica-ai/trialscope/pkg/trials"
)

// Build concatenates US then EU trials and tallies them into a new dataset.
// Identical inputs always produce identical output, including tally key order.
func Build(us, eu []trials.Trial) *trials.Dataset {
	all := make([]trials.Trial, 0, len(us)+len(eu))
	all = append(all, us...)
	all = append(all, eu...)
	return Recount(all)
}

// Recount derives every count of a dataset from scratch over list, which is kept
// as the dataset's trial sequence.
func Recount(list []trials.Trial) *trials.Dataset {
	ds := trials.Empty()
	if list != nil {
		ds.Trials = list
	}
	ds.TotalCount = len(ds.Trials)

	for _, trial := range ds.Trials {
		switch trial.Source {
		case trials.SourceUS:
			ds.USCount++
		case trials.SourceEU:
			ds.EUCount++
		}
		ds.Conditions.Add(bucket(trial.Condition))
		ds.Sponsors.Add(bucket(trial.Sponsor))
		ds.Statuses.Add(bucket(string(trial.Status)))
	}
	return ds
}

func bucket(value string) string {
	if value == "" {
		return trials.UnknownKey
	}
	return value
}
