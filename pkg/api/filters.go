package api

import (
	"net/http"

	"github.com/synaptica-ai/trialscope/pkg/filters"
)

type filtersResponse struct {
	Filters       filters.Request `json:"filters"`
	FilteredCount *int            `json:"filtered_trials,omitempty"`
}

func (h *Handler) filtersResponse() filtersResponse {
	resp := filtersResponse{Filters: filters.FromCriteria(h.store.Filters().Current())}
	if ds, err := h.store.Filtered(); err == nil {
		n := ds.TotalCount
		resp.FilteredCount = &n
	}
	return resp
}

func (h *Handler) handleGetFilters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.filtersResponse())
}

func (h *Handler) handleSetFilters(w http.ResponseWriter, r *http.Request) {
	var req filters.Request
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	criteria, err := req.ToCriteria()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.store.Filters().Replace(criteria)
	writeJSON(w, http.StatusOK, h.filtersResponse())
}

func (h *Handler) handleResetFilters(w http.ResponseWriter, r *http.Request) {
	h.store.Filters().Reset()
	writeJSON(w, http.StatusOK, h.filtersResponse())
}
