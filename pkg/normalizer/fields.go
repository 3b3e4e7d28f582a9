package normalizer

import (
	"strings"

	"github.com/synaptica-ai/trialscope/pkg/terminology"
	"github.com/synaptica-ai/trialscope/pkg/trials"
)

var defaultCatalog = terminology.DefaultCatalog()

func tokens(raw string) []string {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(raw)), ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

// NormalizeGender maps a Sex/Gender field onto the gender set. Absent text means
// no restriction was stated (ALL); text that names neither sex is UNKNOWN.
func NormalizeGender(raw string) trials.Gender {
	if strings.TrimSpace(raw) == "" {
		return trials.GenderAll
	}

	toks := tokens(raw)
	hasMale := contains(toks, "male")
	hasFemale := contains(toks, "female")

	switch {
	case (hasMale && hasFemale) || contains(toks, "all"):
		return trials.GenderAll
	case hasMale:
		return trials.GenderMale
	case hasFemale:
		return trials.GenderFemale
	default:
		return trials.GenderUnknown
	}
}

// NormalizeAgeGroup maps an age field onto zero or more age groups using the
// default keyword catalog.
func NormalizeAgeGroup(raw string) []trials.AgeGroup {
	return normalizeAgeGroup(defaultCatalog, raw)
}

// Absent text yields {UNKNOWN}; present text matching no phrase yields an empty set.
func normalizeAgeGroup(cat terminology.Catalog, raw string) []trials.AgeGroup {
	if strings.TrimSpace(raw) == "" {
		return []trials.AgeGroup{trials.AgeGroupUnknown}
	}

	found := make(map[trials.AgeGroup]struct{})
	for _, tok := range tokens(raw) {
		if group, ok := cat.Lookup(tok); ok {
			found[group] = struct{}{}
		}
	}

	groups := make([]trials.AgeGroup, 0, len(found))
	for _, g := range trials.AgeGroupOrder {
		if _, ok := found[g]; ok {
			groups = append(groups, g)
		}
	}
	return groups
}

// NormalizeStudyStatus checks substrings in priority order; the order matters
// because a protocol description can contain more than one keyword.
func NormalizeStudyStatus(raw string) trials.StudyStatus {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case normalized == "":
		return trials.StatusUnknown
	case strings.Contains(normalized, "ended"):
		return trials.StatusWithdrawn
	case strings.Contains(normalized, "halted"):
		return trials.StatusWithheld
	case strings.Contains(normalized, "completed"):
		return trials.StatusCompleted
	default:
		return trials.StatusUnknown
	}
}

// statusFromKey reads a US registry status, which is already an enumeration key.
func statusFromKey(raw string) trials.StudyStatus {
	if status, ok := trials.LookupStatusKey(strings.TrimSpace(raw)); ok {
		return status
	}
	return trials.StatusUnknown
}
