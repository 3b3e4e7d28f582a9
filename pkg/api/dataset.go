package api

import (
	"net/http"
	"strconv"

	"github.com/synaptica-ai/trialscope/pkg/common/logger"
	"github.com/synaptica-ai/trialscope/pkg/export"
	"github.com/synaptica-ai/trialscope/pkg/trials"
)

const exportFilename = "filtered-trials.csv"

func (h *Handler) handleBaseline(w http.ResponseWriter, r *http.Request) {
	ds, err := h.store.Baseline()
	if err != nil {
		h.writeDatasetError(w, err)
		return
	}
	writeDataset(w, r, ds)
}

func (h *Handler) handleFiltered(w http.ResponseWriter, r *http.Request) {
	ds, err := h.store.Filtered()
	if err != nil {
		h.writeDatasetError(w, err)
		return
	}
	writeDataset(w, r, ds)
}

// writeDataset honours ?summary=true, which omits the trial list.
func writeDataset(w http.ResponseWriter, r *http.Request, ds *trials.Dataset) {
	if summary, _ := strconv.ParseBool(r.URL.Query().Get("summary")); summary {
		writeJSON(w, http.StatusOK, ds.Summary())
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	ds, err := h.store.Filtered()
	if err != nil {
		h.writeDatasetError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	if err := export.WriteCSV(w, ds.Trials); err != nil {
		logger.Log.WithError(err).Error("failed to export trials")
	}
}
