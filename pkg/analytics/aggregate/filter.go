package aggregate

import (
	"strings"

	"github.com/synaptica-ai/trialscope/pkg/trials"
)

// Filter returns a new dataset holding the baseline trials that satisfy every
// criterion, with all counts recomputed. The baseline is never modified, so the
// result depends only on its two arguments.
func Filter(baseline *trials.Dataset, criteria trials.Criteria) *trials.Dataset {
	if baseline == nil {
		return trials.Empty()
	}

	needle := ""
	if strings.TrimSpace(criteria.Condition) != "" {
		needle = strings.ToLower(criteria.Condition)
	}

	matched := make([]trials.Trial, 0, len(baseline.Trials))
	for _, trial := range baseline.Trials {
		if Matches(trial, criteria.Source, needle, criteria.DateRange) {
			matched = append(matched, trial)
		}
	}
	return Recount(matched)
}

// Matches applies the conjunctive criteria to a single trial. needle must already
// be lower-cased; an empty needle places no constraint on the condition.
// A trial without a start date fails any date bound that is set.
func Matches(trial trials.Trial, selector trials.SourceSelector, needle string, dates trials.DateRange) bool {
	if !selector.Matches(trial.Source) {
		return false
	}
	if needle != "" && !strings.Contains(strings.ToLower(trial.Condition), needle) {
		return false
	}
	if dates.Start != nil {
		if trial.StartDate == nil || trial.StartDate.Before(*dates.Start) {
			return false
		}
	}
	if dates.End != nil {
		if trial.StartDate == nil || trial.StartDate.After(*dates.End) {
			return false
		}
	}
	return true
}
