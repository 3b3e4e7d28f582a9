package trials

import "time"

// Trial is the source-agnostic record every downstream component works on.
// Condition and Sponsor may be empty; the "Unknown" bucket is applied when counting.
type Trial struct {
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	Source         Source      `json:"source"`
	Status         StudyStatus `json:"status"`
	Condition      string      `json:"condition"`
	Sponsor        string      `json:"sponsor"`
	StartDate      *time.Time  `json:"start_date"`
	CompletionDate *time.Time  `json:"completion_date"`
	Gender         Gender      `json:"gender"`
	AgeGroups      []AgeGroup  `json:"age_group"`
	Location       string      `json:"location"`
	URL            string      `json:"url"`
}

func (t Trial) HasAgeGroup(group AgeGroup) bool {
	for _, g := range t.AgeGroups {
		if g == group {
			return true
		}
	}
	return false
}
