package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/synaptica-ai/trialscope/pkg/common/logger"
	"github.com/synaptica-ai/trialscope/pkg/layout"
)

// createLayoutRequest copies the default charts when Charts is omitted.
type createLayoutRequest struct {
	ID     string                `json:"id"`
	Name   string                `json:"name"`
	Charts *[]layout.ChartConfig `json:"charts"`
}

type setCurrentRequest struct {
	ID string `json:"id"`
}

func (h *Handler) writeLayoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, layout.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, layout.ErrDefaultImmutable), errors.Is(err, layout.ErrDuplicate):
		writeError(w, http.StatusConflict, err.Error())
	case layout.IsValidationError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Log.WithError(err).Error("layout request failed")
		writeError(w, http.StatusInternalServerError, "failed to update layouts")
	}
}

func (h *Handler) handleListLayouts(w http.ResponseWriter, r *http.Request) {
	items, err := h.layouts.List(r.Context())
	if err != nil {
		h.writeLayoutError(w, err)
		return
	}
	resp := map[string]interface{}{"items": items}
	if current, err := h.layouts.Current(r.Context()); err == nil {
		resp["current"] = current.ID
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleCreateLayout(w http.ResponseWriter, r *http.Request) {
	var req createLayoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	var (
		created layout.Layout
		err     error
	)
	if req.Charts == nil && req.ID == "" {
		created, err = h.layouts.CreateFromDefault(r.Context(), req.Name)
	} else {
		l := layout.Layout{ID: req.ID, Name: req.Name}
		if req.Charts != nil {
			l.Charts = *req.Charts
		}
		created, err = h.layouts.Add(r.Context(), l)
	}
	if err != nil {
		h.writeLayoutError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	l, err := h.layouts.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeLayoutError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (h *Handler) handleCurrentLayout(w http.ResponseWriter, r *http.Request) {
	l, err := h.layouts.Current(r.Context())
	if err != nil {
		h.writeLayoutError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (h *Handler) handleSetCurrentLayout(w http.ResponseWriter, r *http.Request) {
	var req setCurrentRequest
	if err := decodeJSON(r, &req); err != nil || req.ID == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}
	l, err := h.layouts.SetCurrent(r.Context(), req.ID)
	if err != nil {
		h.writeLayoutError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (h *Handler) handleAddChart(w http.ResponseWriter, r *http.Request) {
	var chart layout.ChartConfig
	if err := decodeJSON(r, &chart); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	l, err := h.layouts.AddChart(r.Context(), mux.Vars(r)["id"], chart)
	if err != nil {
		h.writeLayoutError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (h *Handler) handleRemoveChart(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	l, err := h.layouts.RemoveChart(r.Context(), vars["id"], vars["chartID"])
	if err != nil {
		h.writeLayoutError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}
