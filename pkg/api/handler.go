// Package api exposes the dashboard over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/synaptica-ai/trialscope/pkg/analytics/charts"
	"github.com/synaptica-ai/trialscope/pkg/api/middleware"
	"github.com/synaptica-ai/trialscope/pkg/common/logger"
	"github.com/synaptica-ai/trialscope/pkg/common/models"
	"github.com/synaptica-ai/trialscope/pkg/datastore"
	"github.com/synaptica-ai/trialscope/pkg/layout"
	"github.com/synaptica-ai/trialscope/pkg/observability/metrics"
	"github.com/synaptica-ai/trialscope/pkg/preferences"
)

const serviceName = "dashboard-service"

type Handler struct {
	store       *datastore.Service
	layouts     *layout.Service
	preferences preferences.Store
	charts      *charts.Cache
	loadTimeout time.Duration
}

type Option func(*Handler)

// WithLoadTimeout bounds a load triggered over HTTP. The load is detached from
// the request so a client disconnect does not record a failure.
func WithLoadTimeout(d time.Duration) Option {
	return func(h *Handler) {
		h.loadTimeout = d
	}
}

func NewHandler(store *datastore.Service, layouts *layout.Service, prefs preferences.Store, cache *charts.Cache, opts ...Option) *Handler {
	h := &Handler{
		store:       store,
		layouts:     layouts,
		preferences: prefs,
		charts:      cache,
		loadTimeout: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NewRouter mounts h under /api/v1 with the standard middleware chain.
func NewRouter(h *Handler, maxBody int64) http.Handler {
	router := mux.NewRouter()
	router.Use(middleware.Logging)
	router.Use(middleware.Recovery)
	router.Use(middleware.BodyLimit(maxBody))

	router.HandleFunc("/health", handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w)
	}).Methods(http.MethodGet)

	h.Register(router.PathPrefix("/api/v1").Subrouter())
	return middleware.CORS(router)
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/status", h.handleStatus).Methods(http.MethodGet)

	r.HandleFunc("/dataset/load", h.handleLoad).Methods(http.MethodPost)
	r.HandleFunc("/dataset", h.handleBaseline).Methods(http.MethodGet)
	r.HandleFunc("/dataset/filtered", h.handleFiltered).Methods(http.MethodGet)
	r.HandleFunc("/dataset/filtered/export", h.handleExport).Methods(http.MethodGet)

	r.HandleFunc("/filters", h.handleGetFilters).Methods(http.MethodGet)
	r.HandleFunc("/filters", h.handleSetFilters).Methods(http.MethodPut)
	r.HandleFunc("/filters/reset", h.handleResetFilters).Methods(http.MethodPost)

	r.HandleFunc("/charts", h.handleListCharts).Methods(http.MethodGet)
	r.HandleFunc("/charts/{kind}", h.handleChart).Methods(http.MethodGet)

	r.HandleFunc("/layouts", h.handleListLayouts).Methods(http.MethodGet)
	r.HandleFunc("/layouts", h.handleCreateLayout).Methods(http.MethodPost)
	r.HandleFunc("/layouts/current", h.handleCurrentLayout).Methods(http.MethodGet)
	r.HandleFunc("/layouts/current", h.handleSetCurrentLayout).Methods(http.MethodPut)
	r.HandleFunc("/layouts/{id}", h.handleGetLayout).Methods(http.MethodGet)
	r.HandleFunc("/layouts/{id}/charts", h.handleAddChart).Methods(http.MethodPost)
	r.HandleFunc("/layouts/{id}/charts/{chartID}", h.handleRemoveChart).Methods(http.MethodDelete)

	r.HandleFunc("/preferences/{session}", h.handleGetPreferences).Methods(http.MethodGet)
	r.HandleFunc("/preferences/{session}", h.handleSavePreferences).Methods(http.MethodPut)
	r.HandleFunc("/preferences/{session}/font-size/toggle", h.handleToggleFontSize).Methods(http.MethodPost)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:    "healthy",
		Service:   serviceName,
		Timestamp: time.Now().UTC(),
	})
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Status())
}

func (h *Handler) handleLoad(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.loadTimeout)
	defer cancel()

	if err := h.store.Load(ctx); err != nil {
		writeError(w, http.StatusServiceUnavailable, h.store.Status().Error)
		return
	}
	st := h.store.Status()
	code := http.StatusOK
	if st.Loading {
		code = http.StatusAccepted
	}
	writeJSON(w, code, st)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.WithError(err).Error("failed to write json response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.ErrorResponse{Error: message})
}

// writeDatasetError maps a missing dataset to 503 with the recorded load
// failure, if any.
func (h *Handler) writeDatasetError(w http.ResponseWriter, err error) {
	if errors.Is(err, datastore.ErrNotLoaded) {
		msg := h.store.Status().Error
		if msg == "" {
			msg = err.Error()
		}
		writeError(w, http.StatusServiceUnavailable, msg)
		return
	}
	logger.Log.WithError(err).Error("dataset request failed")
	writeError(w, http.StatusInternalServerError, "internal error")
}
