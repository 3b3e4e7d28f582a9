// Package layout manages the named dashboard layouts and which one is shown.
package layout

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/synaptica-ai/trialscope/pkg/analytics/charts"
	"gopkg.in/yaml.v3"
)

const DefaultID = "default"

var (
	ErrNotFound         = errors.New("layout not found")
	ErrDefaultImmutable = errors.New("default layout cannot be replaced")
	ErrDuplicate        = errors.New("layout already exists")
)

type ChartConfig struct {
	ID    string      `json:"id" yaml:"id"`
	Type  charts.Kind `json:"type" yaml:"type"`
	Title string      `json:"title" yaml:"title"`
}

type Layout struct {
	ID        string        `json:"id" yaml:"id"`
	Name      string        `json:"name" yaml:"name"`
	Charts    []ChartConfig `json:"charts" yaml:"charts"`
	IsDefault bool          `json:"is_default,omitempty" yaml:"is_default"`
}

// ValidationError reports a layout or chart the service refuses to store.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func (l Layout) clone() Layout {
	out := l
	out.Charts = append([]ChartConfig{}, l.Charts...)
	return out
}

func (l Layout) chartIndex(chartID string) int {
	for i, c := range l.Charts {
		if c.ID == chartID {
			return i
		}
	}
	return -1
}

var defaultChartIDs = map[charts.Kind]string{
	charts.TotalTrials:    "total-trials",
	charts.AgeGroups:      "age-groups",
	charts.Gender:         "gender",
	charts.Conditions:     "conditions",
	charts.Sponsors:       "sponsors",
	charts.StartYear:      "start-year",
	charts.CompletionYear: "completion-year",
	charts.StudyStatus:    "study-status",
}

// DefaultLayout shows every chart kind once, in dashboard order.
func DefaultLayout() Layout {
	l := Layout{ID: DefaultID, Name: "Default Layout", IsDefault: true}
	for _, def := range charts.Definitions() {
		l.Charts = append(l.Charts, ChartConfig{
			ID:    defaultChartIDs[def.Kind],
			Type:  def.Kind,
			Title: def.Title,
		})
	}
	return l
}

type defaultsFile struct {
	Layouts []Layout `yaml:"layouts"`
}

// LoadDefaults reads seed layouts from a YAML file with a top-level layouts list.
// An empty path yields only DefaultLayout. A file without a default entry gets
// DefaultLayout prepended.
func LoadDefaults(path string) ([]Layout, error) {
	if path == "" {
		return []Layout{DefaultLayout()}, nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	var file defaultsFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("layout defaults: %w", err)
	}

	seen := map[string]bool{}
	hasDefault := false
	out := make([]Layout, 0, len(file.Layouts)+1)
	for _, l := range file.Layouts {
		if err := validate(l); err != nil {
			return nil, fmt.Errorf("layout defaults: %w", err)
		}
		if seen[l.ID] {
			return nil, fmt.Errorf("layout defaults: duplicate layout %q", l.ID)
		}
		seen[l.ID] = true
		l.IsDefault = l.ID == DefaultID
		hasDefault = hasDefault || l.IsDefault
		out = append(out, l)
	}
	if !hasDefault {
		out = append([]Layout{DefaultLayout()}, out...)
	}
	return out, nil
}

func validate(l Layout) error {
	if l.ID == "" {
		return &ValidationError{Field: "id", Message: "is required"}
	}
	if l.Name == "" {
		return &ValidationError{Field: "name", Message: "is required"}
	}
	seen := map[string]bool{}
	for _, c := range l.Charts {
		if err := validateChart(c); err != nil {
			return err
		}
		if seen[c.ID] {
			return &ValidationError{Field: "charts", Message: fmt.Sprintf("duplicate chart id %q", c.ID)}
		}
		seen[c.ID] = true
	}
	return nil
}

func validateChart(c ChartConfig) error {
	if c.ID == "" {
		return &ValidationError{Field: "chart.id", Message: "is required"}
	}
	if !charts.IsKnown(string(c.Type)) {
		return &ValidationError{Field: "chart.type", Message: fmt.Sprintf("%q: %v", c.Type, charts.ErrUnknownKind)}
	}
	return nil
}
