package trials

// UnknownKey is the bucket used for empty condition, sponsor or status values.
const UnknownKey = "Unknown"

// Dataset is a processed view over an ordered trial sequence. Instances are
// treated as immutable once built; a new filter result is a new Dataset.
type Dataset struct {
	Trials     []Trial `json:"trials"`
	TotalCount int     `json:"total_trials"`
	USCount    int     `json:"us_trials"`
	EUCount    int     `json:"eu_trials"`
	Conditions Tally   `json:"conditions"`
	Sponsors   Tally   `json:"sponsors"`
	Statuses   Tally   `json:"statuses"`
}

// Empty returns a dataset with zero counts and empty tallies.
func Empty() *Dataset {
	return &Dataset{
		Trials:     []Trial{},
		Conditions: NewTally(),
		Sponsors:   NewTally(),
		Statuses:   NewTally(),
	}
}

// Summary is the dataset without its trial list.
type Summary struct {
	TotalCount int   `json:"total_trials"`
	USCount    int   `json:"us_trials"`
	EUCount    int   `json:"eu_trials"`
	Conditions Tally `json:"conditions"`
	Sponsors   Tally `json:"sponsors"`
	Statuses   Tally `json:"statuses"`
}

func (d *Dataset) Summary() Summary {
	return Summary{
		TotalCount: d.TotalCount,
		USCount:    d.USCount,
		EUCount:    d.EUCount,
		Conditions: d.Conditions,
		Sponsors:   d.Sponsors,
		Statuses:   d.Statuses,
	}
}
