// Package datastore owns the baseline dataset and the current filtered view.
package datastore

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/synaptica-ai/trialscope/pkg/analytics/aggregate"
	"github.com/synaptica-ai/trialscope/pkg/common/logger"
	"github.com/synaptica-ai/trialscope/pkg/filters"
	"github.com/synaptica-ai/trialscope/pkg/normalizer"
	"github.com/synaptica-ai/trialscope/pkg/observability/metrics"
	"github.com/synaptica-ai/trialscope/pkg/sources"
	"github.com/synaptica-ai/trialscope/pkg/trials"
)

var ErrNotLoaded = errors.New("dataset not loaded")

var log = logger.WithComponent("datastore")

const (
	EventDatasetLoaded  = "dataset.loaded"
	EventFiltersApplied = "filters.applied"
	eventSource         = "dashboard-service"
)

// Publisher receives domain events; the kafka producer satisfies it.
type Publisher interface {
	PublishEvent(ctx context.Context, eventType string, source string, data map[string]interface{}) error
}

type Status struct {
	Loading  bool       `json:"loading"`
	Loaded   bool       `json:"loaded"`
	Error    string     `json:"error,omitempty"`
	LoadedAt *time.Time `json:"loaded_at,omitempty"`
	Total    int        `json:"total_trials"`
	Filtered int        `json:"filtered_trials"`
}

type Service struct {
	ingest    *normalizer.Service
	us        sources.Source
	eu        sources.Source
	filters   *filters.State
	publisher Publisher

	mu         sync.Mutex
	filterMu   sync.Mutex // serializes recomputation of the filtered view
	loading    bool
	generation uint64
	loadErr    string
	loadedAt   time.Time

	baseline atomic.Pointer[trials.Dataset]
	filtered atomic.Pointer[trials.Dataset]
}

type Option func(*Service)

func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// NewService wires the store to state: every criteria change recomputes the
// filtered view from the baseline and the criteria current at that moment.
func NewService(ingest *normalizer.Service, us, eu sources.Source, state *filters.State, opts ...Option) *Service {
	if state == nil {
		state = filters.NewState()
	}
	svc := &Service{ingest: ingest, us: us, eu: eu, filters: state}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	state.Subscribe(func(trials.Criteria) {
		svc.refilter()
	})
	return svc
}

func (s *Service) Filters() *filters.State {
	return s.filters
}

// Load builds the baseline once. A request made while a baseline exists or a
// load is already running returns nil immediately. A retrieval failure is
// recorded, leaves the baseline absent and is not retried.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.baseline.Load() != nil || s.loading {
		s.mu.Unlock()
		return nil
	}
	s.loading = true
	s.loadErr = ""
	gen := s.generation
	s.mu.Unlock()

	start := time.Now()
	us, err := s.ingest.Ingest(ctx, trials.SourceUS, s.us)
	if err == nil {
		var eu []trials.Trial
		eu, err = s.ingest.Ingest(ctx, trials.SourceEU, s.eu)
		if err == nil {
			s.publish(gen, aggregate.Build(us, eu), start)
			return nil
		}
	}

	s.mu.Lock()
	if gen == s.generation {
		s.loading = false
		s.loadErr = "Failed to load data"
	}
	s.mu.Unlock()
	metrics.ObserveLoadFailure()
	log.WithError(err).Error("Failed to load trial datasets")
	return err
}

func (s *Service) publish(gen uint64, ds *trials.Dataset, start time.Time) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	s.baseline.Store(ds)
	s.filtered.Store(ds)
	s.loading = false
	s.loadedAt = time.Now().UTC()
	s.mu.Unlock()

	metrics.ObserveBaseline(ds.TotalCount, ds.USCount, ds.EUCount)
	log.WithFields(map[string]interface{}{
		"total":       ds.TotalCount,
		"us":          ds.USCount,
		"eu":          ds.EUCount,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Baseline dataset published")
	s.emit(EventDatasetLoaded, map[string]interface{}{
		"total_trials": ds.TotalCount,
		"us_trials":    ds.USCount,
		"eu_trials":    ds.EUCount,
	})

	// The first filter pass runs only after the baseline is visible.
	s.refilter()
}

// ApplyFilters makes criteria current and recomputes the filtered view from
// it. Before a baseline exists only the criteria change.
func (s *Service) ApplyFilters(criteria trials.Criteria) {
	s.filters.Replace(criteria)
}

// refilter replaces the filtered view with a full recomputation from the
// baseline. Passes run one at a time and each reads the latest criteria, so a
// delayed notification cannot leave an older view behind. A pass whose baseline
// was cleared or replaced meanwhile stores nothing.
func (s *Service) refilter() {
	s.filterMu.Lock()
	defer s.filterMu.Unlock()

	baseline := s.baseline.Load()
	if baseline == nil {
		return
	}
	criteria := s.filters.Current()
	filtered := aggregate.Filter(baseline, criteria)

	s.mu.Lock()
	if s.baseline.Load() != baseline {
		s.mu.Unlock()
		return
	}
	s.filtered.Store(filtered)
	s.mu.Unlock()

	metrics.ObserveFilter(filtered.TotalCount)
	log.WithFields(map[string]interface{}{
		"data_source": string(criteria.Source),
		"condition":   criteria.Condition,
		"filtered":    filtered.TotalCount,
	}).Debug("Filters applied")
	s.emit(EventFiltersApplied, map[string]interface{}{
		"criteria":     filters.FromCriteria(criteria),
		"total_trials": filtered.TotalCount,
	})
}

func (s *Service) Baseline() (*trials.Dataset, error) {
	if ds := s.baseline.Load(); ds != nil {
		return ds, nil
	}
	return nil, ErrNotLoaded
}

func (s *Service) Filtered() (*trials.Dataset, error) {
	if ds := s.filtered.Load(); ds != nil {
		return ds, nil
	}
	return nil, ErrNotLoaded
}

func (s *Service) Status() Status {
	s.mu.Lock()
	st := Status{Loading: s.loading, Error: s.loadErr}
	if !s.loadedAt.IsZero() {
		at := s.loadedAt
		st.LoadedAt = &at
	}
	s.mu.Unlock()

	if ds := s.baseline.Load(); ds != nil {
		st.Loaded = true
		st.Total = ds.TotalCount
	}
	if ds := s.filtered.Load(); ds != nil {
		st.Filtered = ds.TotalCount
	}
	return st
}

// Clear drops every dataset and error so the next Load starts over. A load still
// in flight is discarded when it completes.
func (s *Service) Clear() {
	s.mu.Lock()
	s.generation++
	s.loading = false
	s.loadErr = ""
	s.loadedAt = time.Time{}
	s.baseline.Store(nil)
	s.filtered.Store(nil)
	s.mu.Unlock()
	metrics.Reset()
}

func (s *Service) emit(eventType string, data map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEvent(context.Background(), eventType, eventSource, data); err != nil {
		log.WithError(err).WithField("event_type", eventType).Warn("failed to publish dataset event")
	}
}
