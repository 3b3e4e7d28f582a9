package layout

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/synaptica-ai/trialscope/pkg/common/logger"
)

type Service struct {
	repo Repository

	mu      sync.RWMutex
	current string
}

// NewService seeds repo with any of seeds it does not hold yet. The default
// layout is current initially.
func NewService(ctx context.Context, repo Repository, seeds []Layout) (*Service, error) {
	if len(seeds) == 0 {
		seeds = []Layout{DefaultLayout()}
	}
	for _, l := range seeds {
		if _, err := repo.Get(ctx, l.ID); err == nil {
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		if err := repo.Create(ctx, l); err != nil {
			return nil, err
		}
		logger.WithField("layout_id", l.ID).Debug("Seeded dashboard layout")
	}
	return &Service{repo: repo, current: DefaultID}, nil
}

func (s *Service) List(ctx context.Context) ([]Layout, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (Layout, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Current(ctx context.Context) (Layout, error) {
	s.mu.RLock()
	id := s.current
	s.mu.RUnlock()
	return s.repo.Get(ctx, id)
}

// SetCurrent switches the shown layout. Unknown ids are rejected.
func (s *Service) SetCurrent(ctx context.Context, id string) (Layout, error) {
	l, err := s.repo.Get(ctx, id)
	if err != nil {
		return Layout{}, err
	}
	s.mu.Lock()
	s.current = id
	s.mu.Unlock()
	return l, nil
}

// Add stores a caller-built layout. A missing id is generated. Only the seeded
// layout may be the default.
func (s *Service) Add(ctx context.Context, l Layout) (Layout, error) {
	if l.ID == DefaultID || l.IsDefault {
		return Layout{}, ErrDefaultImmutable
	}
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	l.Name = strings.TrimSpace(l.Name)
	if l.Charts == nil {
		l.Charts = []ChartConfig{}
	}
	if err := validate(l); err != nil {
		return Layout{}, err
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return Layout{}, err
	}
	logger.Log.WithFields(map[string]interface{}{
		"layout_id": l.ID,
		"charts":    len(l.Charts),
	}).Info("Dashboard layout added")
	return l, nil
}

// CreateFromDefault adds a layout named name holding a copy of the default
// layout's charts, or no charts when no default exists.
func (s *Service) CreateFromDefault(ctx context.Context, name string) (Layout, error) {
	l := Layout{ID: uuid.New().String(), Name: strings.TrimSpace(name), Charts: []ChartConfig{}}
	def, err := s.repo.Get(ctx, DefaultID)
	switch {
	case err == nil:
		l.Charts = append(l.Charts, def.Charts...)
	case !errors.Is(err, ErrNotFound):
		return Layout{}, err
	}
	return s.Add(ctx, l)
}

// RemoveChart drops chartID from the layout. Removing an absent chart leaves
// the layout unchanged.
func (s *Service) RemoveChart(ctx context.Context, layoutID, chartID string) (Layout, error) {
	l, err := s.repo.Get(ctx, layoutID)
	if err != nil {
		return Layout{}, err
	}
	idx := l.chartIndex(chartID)
	if idx < 0 {
		return l, nil
	}
	l.Charts = append(l.Charts[:idx], l.Charts[idx+1:]...)
	if err := s.repo.Update(ctx, l); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// AddChart appends chart to the layout. A missing chart id is generated.
func (s *Service) AddChart(ctx context.Context, layoutID string, chart ChartConfig) (Layout, error) {
	l, err := s.repo.Get(ctx, layoutID)
	if err != nil {
		return Layout{}, err
	}
	if chart.ID == "" {
		chart.ID = uuid.New().String()
	}
	if err := validateChart(chart); err != nil {
		return Layout{}, err
	}
	if l.chartIndex(chart.ID) >= 0 {
		return Layout{}, &ValidationError{Field: "chart.id", Message: "already present in layout"}
	}
	l.Charts = append(l.Charts, chart)
	if err := s.repo.Update(ctx, l); err != nil {
		return Layout{}, err
	}
	return l, nil
}
