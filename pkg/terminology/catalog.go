// Package terminology holds the keyword tables used to map free-text registry
// vocabularies onto closed category sets.
package terminology

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/synaptica-ai/trialscope/pkg/trials"
	"gopkg.in/yaml.v3"
)

// Catalog maps a lower-cased phrase to the age group it denotes.
type Catalog struct {
	AgeGroups map[string]trials.AgeGroup `yaml:"age_groups" json:"age_groups"`
}

// Load reads a YAML catalog. An empty path yields the default catalog.
func Load(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultCatalog(), err
	}
	var cat Catalog
	if err := yaml.Unmarshal(content, &cat); err != nil {
		return Catalog{}, err
	}
	if len(cat.AgeGroups) == 0 {
		return Catalog{}, fmt.Errorf("terminology catalog empty")
	}
	normalized := make(map[string]trials.AgeGroup, len(cat.AgeGroups))
	for phrase, group := range cat.AgeGroups {
		if !knownAgeGroup(group) {
			return Catalog{}, fmt.Errorf("terminology catalog: phrase %q maps to unknown age group %q", phrase, group)
		}
		normalized[strings.ToLower(strings.TrimSpace(phrase))] = group
	}
	cat.AgeGroups = normalized
	return cat, nil
}

// Lookup matches a single token exactly; callers lower-case and trim first.
func (c Catalog) Lookup(token string) (trials.AgeGroup, bool) {
	if c.AgeGroups == nil {
		return "", false
	}
	group, ok := c.AgeGroups[token]
	return group, ok
}

func DefaultCatalog() Catalog {
	return Catalog{AgeGroups: map[string]trials.AgeGroup{
		"in utero":                trials.AgeGroupFetus,
		"preterm newborn infants": trials.AgeGroupNewborn,
		"newborns":                trials.AgeGroupNewborn,
		"infants and toddlers":    trials.AgeGroupInfant,
		"child":                   trials.AgeGroupChild,
		"children":                trials.AgeGroupChild,
		"adolescent":              trials.AgeGroupAdolescent,
		"under 18":                trials.AgeGroupAdolescent,
		"adult":                   trials.AgeGroupAdult,
		"adults":                  trials.AgeGroupAdult,
		"older_adult":             trials.AgeGroupOlderAdult,
		"elderly":                 trials.AgeGroupOlderAdult,
	}}
}

func knownAgeGroup(group trials.AgeGroup) bool {
	for _, g := range trials.AgeGroupOrder {
		if g == group && g != trials.AgeGroupUnknown {
			return true
		}
	}
	return false
}
