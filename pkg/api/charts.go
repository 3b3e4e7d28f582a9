package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/synaptica-ai/trialscope/pkg/analytics/charts"
	"github.com/synaptica-ai/trialscope/pkg/trials"
)

func (h *Handler) handleListCharts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": charts.Definitions()})
}

// handleChart renders one chart from the filtered view, or from the baseline
// with ?view=baseline.
func (h *Handler) handleChart(w http.ResponseWriter, r *http.Request) {
	kind := charts.Kind(mux.Vars(r)["kind"])
	if !charts.IsKnown(string(kind)) {
		writeError(w, http.StatusNotFound, charts.ErrUnknownKind.Error())
		return
	}

	var (
		ds  *trials.Dataset
		err error
	)
	switch view := r.URL.Query().Get("view"); view {
	case "", "filtered":
		ds, err = h.store.Filtered()
	case "baseline":
		ds, err = h.store.Baseline()
	default:
		writeError(w, http.StatusBadRequest, "view must be baseline or filtered")
		return
	}
	if err != nil {
		h.writeDatasetError(w, err)
		return
	}

	series, err := h.charts.Build(kind, ds)
	if errors.Is(err, charts.ErrUnknownKind) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.writeDatasetError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}
