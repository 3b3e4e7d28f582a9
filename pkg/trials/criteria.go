package trials

import "time"

type SourceSelector string

const (
	SelectUS   SourceSelector = "US"
	SelectEU   SourceSelector = "EU"
	SelectBoth SourceSelector = "BOTH"
)

// Matches reports whether a trial from src passes the selector.
func (s SourceSelector) Matches(src Source) bool {
	switch s {
	case SelectUS:
		return src == SourceUS
	case SelectEU:
		return src == SourceEU
	default:
		return true
	}
}

// DateRange bounds a trial's start date; both ends are inclusive and optional.
type DateRange struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

// Criteria are independent and conjunctive.
type Criteria struct {
	Source    SourceSelector `json:"data_source"`
	Condition string         `json:"condition"`
	DateRange DateRange      `json:"date_range"`
}

func DefaultCriteria() Criteria {
	return Criteria{Source: SelectBoth}
}

// IsDefault reports whether the criteria impose no constraint at all.
func (c Criteria) IsDefault() bool {
	return (c.Source == SelectBoth || c.Source == "") &&
		c.Condition == "" &&
		c.DateRange.Start == nil &&
		c.DateRange.End == nil
}
