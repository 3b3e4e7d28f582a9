package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/synaptica-ai/trialscope/pkg/common/logger"
	"github.com/synaptica-ai/trialscope/pkg/preferences"
)

func (h *Handler) writePreferencesError(w http.ResponseWriter, err error) {
	if errors.Is(err, preferences.ErrInvalidSession) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	logger.Log.WithError(err).Error("preferences request failed")
	writeError(w, http.StatusInternalServerError, "failed to access preferences")
}

func (h *Handler) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.preferences.Get(r.Context(), mux.Vars(r)["session"])
	if err != nil {
		h.writePreferencesError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (h *Handler) handleSavePreferences(w http.ResponseWriter, r *http.Request) {
	var prefs preferences.Preferences
	if err := decodeJSON(r, &prefs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	prefs, err := prefs.Normalize()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.preferences.Save(r.Context(), mux.Vars(r)["session"], prefs); err != nil {
		h.writePreferencesError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (h *Handler) handleToggleFontSize(w http.ResponseWriter, r *http.Request) {
	prefs, err := preferences.ToggleFontSize(r.Context(), h.preferences, mux.Vars(r)["session"])
	if err != nil {
		h.writePreferencesError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}
