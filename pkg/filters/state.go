// Package filters owns the current filter criteria and notifies observers when
// they change.
package filters

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/synaptica-ai/trialscope/pkg/trials"
)

type Listener func(trials.Criteria)

type State struct {
	mu        sync.RWMutex
	criteria  trials.Criteria
	listeners []Listener
}

func NewState() *State {
	return &State{criteria: trials.DefaultCriteria()}
}

func (s *State) Current() trials.Criteria {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.criteria
}

// Subscribe registers fn to receive every subsequent criteria change.
func (s *State) Subscribe(fn Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *State) SetSource(selector trials.SourceSelector) {
	s.update(func(c *trials.Criteria) { c.Source = selector })
}

func (s *State) SetCondition(condition string) {
	s.update(func(c *trials.Criteria) { c.Condition = condition })
}

func (s *State) SetDateRange(start, end *time.Time) {
	s.update(func(c *trials.Criteria) { c.DateRange = trials.DateRange{Start: start, End: end} })
}

func (s *State) Replace(criteria trials.Criteria) {
	if criteria.Source == "" {
		criteria.Source = trials.SelectBoth
	}
	s.update(func(c *trials.Criteria) { *c = criteria })
}

func (s *State) Reset() {
	s.update(func(c *trials.Criteria) { *c = trials.DefaultCriteria() })
}

// update applies fn under the lock and notifies listeners outside it, so a
// listener may read Current without deadlocking.
func (s *State) update(fn func(*trials.Criteria)) {
	s.mu.Lock()
	fn(&s.criteria)
	current := s.criteria
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l(current)
	}
}

// ParseSource accepts US, EU or BOTH in any case; empty means BOTH.
func ParseSource(value string) (trials.SourceSelector, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "", string(trials.SelectBoth):
		return trials.SelectBoth, nil
	case string(trials.SelectUS):
		return trials.SelectUS, nil
	case string(trials.SelectEU):
		return trials.SelectEU, nil
	default:
		return "", fmt.Errorf("invalid data source %q", value)
	}
}

// ParseDate accepts YYYY-MM-DD or RFC3339; empty yields nil.
func ParseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if parsed, err := time.Parse("2006-01-02", value); err == nil {
		return &parsed, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q", value)
	}
	utc := parsed.UTC()
	return &utc, nil
}

// Request is the wire shape of a criteria update.
type Request struct {
	DataSource string `json:"data_source"`
	Condition  string `json:"condition"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

func (r Request) ToCriteria() (trials.Criteria, error) {
	selector, err := ParseSource(r.DataSource)
	if err != nil {
		return trials.Criteria{}, err
	}
	start, err := ParseDate(r.StartDate)
	if err != nil {
		return trials.Criteria{}, err
	}
	end, err := ParseDate(r.EndDate)
	if err != nil {
		return trials.Criteria{}, err
	}
	return trials.Criteria{
		Source:    selector,
		Condition: r.Condition,
		DateRange: trials.DateRange{Start: start, End: end},
	}, nil
}

func FromCriteria(c trials.Criteria) Request {
	req := Request{DataSource: string(c.Source), Condition: c.Condition}
	if c.DateRange.Start != nil {
		req.StartDate = c.DateRange.Start.Format("2006-01-02")
	}
	if c.DateRange.End != nil {
		req.EndDate = c.DateRange.End.Format("2006-01-02")
	}
	return req
}
