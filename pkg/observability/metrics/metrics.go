package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

var (
	baselineTrials      atomic.Int64
	baselineUSTrials    atomic.Int64
	baselineEUTrials    atomic.Int64
	filteredTrials      atomic.Int64
	datasetLoads        atomic.Int64
	datasetLoadFailures atomic.Int64
	filterApplications  atomic.Int64
)

func ObserveBaseline(total, us, eu int) {
	baselineTrials.Store(int64(total))
	baselineUSTrials.Store(int64(us))
	baselineEUTrials.Store(int64(eu))
	datasetLoads.Add(1)
}

func ObserveLoadFailure() {
	datasetLoadFailures.Add(1)
}

func ObserveFilter(total int) {
	filteredTrials.Store(int64(total))
	filterApplications.Add(1)
}

// Reset zeroes every metric; used when the dataset is cleared and by tests.
func Reset() {
	for _, m := range []*atomic.Int64{&baselineTrials, &baselineUSTrials, &baselineEUTrials, &filteredTrials} {
		m.Store(0)
	}
}

type sample struct {
	name, help, kind string
	value            int64
}

func snapshot() []sample {
	return []sample{
		{"trialscope_baseline_trials", "Number of trials in the baseline dataset.", "gauge", baselineTrials.Load()},
		{"trialscope_baseline_us_trials", "Number of ClinicalTrials.gov trials in the baseline dataset.", "gauge", baselineUSTrials.Load()},
		{"trialscope_baseline_eu_trials", "Number of EudraCT trials in the baseline dataset.", "gauge", baselineEUTrials.Load()},
		{"trialscope_filtered_trials", "Number of trials in the current filtered dataset.", "gauge", filteredTrials.Load()},
		{"trialscope_dataset_loads_total", "Number of successful baseline loads.", "counter", datasetLoads.Load()},
		{"trialscope_dataset_load_failures_total", "Number of baseline loads that failed retrieval.", "counter", datasetLoadFailures.Load()},
		{"trialscope_filter_applications_total", "Number of filter recomputations.", "counter", filterApplications.Load()},
	}
}

func WritePrometheus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	for _, s := range snapshot() {
		fmt.Fprintf(w, "# HELP %s %s\n", s.name, s.help)
		fmt.Fprintf(w, "# TYPE %s %s\n", s.name, s.kind)
		fmt.Fprintf(w, "%s %d\n", s.name, s.value)
	}
}
