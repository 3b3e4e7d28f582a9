// Package charts defines the closed set of dashboard chart kinds and derives the
// series each one renders from a processed dataset.
package charts

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/synaptica-ai/trialscope/pkg/trials"
)

var ErrUnknownKind = errors.New("unknown chart type")

type Kind string

const (
	TotalTrials    Kind = "TotalTrialsChart"
	AgeGroups      Kind = "AgeGroupsChart"
	Gender         Kind = "GenderChart"
	Conditions     Kind = "ConditionsChart"
	Sponsors       Kind = "SponsorsChart"
	StartYear      Kind = "StartYearChart"
	CompletionYear Kind = "CompletionYearChart"
	StudyStatus    Kind = "StudyStatusChart"
)

const (
	topConditions   = 8
	topSponsors     = 10
	missingYearName = "N/A"
)

// Field names a dataset field a chart kind reads.
type Field string

const (
	FieldTrials     Field = "trials"
	FieldUSCount    Field = "us_trials"
	FieldEUCount    Field = "eu_trials"
	FieldConditions Field = "conditions"
	FieldSponsors   Field = "sponsors"
	FieldStatuses   Field = "statuses"
)

type Definition struct {
	Kind        Kind    `json:"type"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Needs       []Field `json:"needs"`
}

var definitions = []Definition{
	{TotalTrials, "Total Clinical Trials Comparison", "Number of trials per registry", []Field{FieldUSCount, FieldEUCount}},
	{AgeGroups, "Trials by Age Group", "Distribution of clinical trials by target age group", []Field{FieldTrials}},
	{Gender, "Trials by Gender", "Distribution of clinical trials by target gender", []Field{FieldTrials}},
	{Conditions, "Trials by Condition", "Breakdown of clinical trials by medical condition", []Field{FieldConditions}},
	{Sponsors, "Top Sponsors", "Clinical trials by sponsor (top 10)", []Field{FieldSponsors}},
	{StartYear, "Trials by Start Year", "Number of trials started per year", []Field{FieldTrials}},
	{CompletionYear, "Trials by Completion Year", "Number of trials completed per year", []Field{FieldTrials}},
	{StudyStatus, "Trial Status Distribution", "Clinical trials by study status", []Field{FieldStatuses}},
}

// Definitions lists every chart kind in dashboard order.
func Definitions() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

func Lookup(kind Kind) (Definition, bool) {
	for _, d := range definitions {
		if d.Kind == kind {
			return d, true
		}
	}
	return Definition{}, false
}

func IsKnown(kind string) bool {
	_, ok := Lookup(Kind(kind))
	return ok
}

type Point struct {
	Name     string `json:"name"`
	Value    int    `json:"value"`
	FullName string `json:"full_name,omitempty"`
}

type Series struct {
	Kind   Kind    `json:"type"`
	Title  string  `json:"title"`
	Points []Point `json:"points"`
}

// Build derives the series for kind from ds.
func Build(kind Kind, ds *trials.Dataset) (Series, error) {
	def, ok := Lookup(kind)
	if !ok {
		return Series{}, ErrUnknownKind
	}
	if ds == nil {
		ds = trials.Empty()
	}

	var points []Point
	switch kind {
	case TotalTrials:
		points = []Point{
			{Name: "ClinicalTrials.gov", Value: ds.USCount},
			{Name: "EudraCT", Value: ds.EUCount},
		}
	case AgeGroups:
		points = byCountDesc(ageGroupBuckets(ds.Trials))
	case Gender:
		tally := trials.NewTally()
		for _, tr := range ds.Trials {
			tally.Add(string(tr.Gender))
		}
		points = byCountDesc(tally)
	case Conditions:
		points = top(byCountDesc(ds.Conditions), topConditions)
	case Sponsors:
		points = top(byCountDesc(ds.Sponsors), topSponsors)
		for i := range points {
			points[i].FullName = points[i].Name
			points[i].Name = Initials(points[i].Name)
		}
	case StartYear:
		points = byYear(ds.Trials, func(tr trials.Trial) (int, bool) {
			if tr.StartDate == nil {
				return 0, false
			}
			return tr.StartDate.Year(), true
		})
	case CompletionYear:
		points = byYear(ds.Trials, func(tr trials.Trial) (int, bool) {
			if tr.CompletionDate == nil {
				return 0, false
			}
			return tr.CompletionDate.Year(), true
		})
	case StudyStatus:
		points = toPoints(ds.Statuses)
	}

	return Series{Kind: kind, Title: def.Title, Points: points}, nil
}

// ageGroupBuckets groups trials into the coarse display buckets. A trial adds one
// to every bucket its age groups mention.
func ageGroupBuckets(list []trials.Trial) trials.Tally {
	tally := trials.NewTally()
	for _, tr := range list {
		parts := make([]string, len(tr.AgeGroups))
		for i, g := range tr.AgeGroups {
			parts[i] = string(g)
		}
		joined := strings.ToLower(strings.Join(parts, " "))

		matched := false
		add := func(name string, keywords ...string) {
			for _, k := range keywords {
				if strings.Contains(joined, k) {
					tally.Add(name)
					matched = true
					return
				}
			}
		}
		add("Children", "child", "infant", "newborn")
		add("Adults", "adult")
		add("Elderly", "elderly", "older")
		add("Adolescents", "adolescent", "teen")
		add("All Ages", "all", "any")
		if !matched {
			tally.Add(trials.UnknownKey)
		}
	}
	return tally
}

func toPoints(tally trials.Tally) []Point {
	entries := tally.Entries()
	points := make([]Point, len(entries))
	for i, e := range entries {
		points[i] = Point{Name: e.Key, Value: e.Count}
	}
	return points
}

// byCountDesc sorts by count descending; ties keep first-seen order.
func byCountDesc(tally trials.Tally) []Point {
	points := toPoints(tally)
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Value > points[j].Value
	})
	return points
}

func top(points []Point, n int) []Point {
	if len(points) > n {
		return points[:n]
	}
	return points
}

func byYear(list []trials.Trial, year func(trials.Trial) (int, bool)) []Point {
	counts := make(map[int]int)
	missing := 0
	for _, tr := range list {
		if y, ok := year(tr); ok {
			counts[y]++
		} else {
			missing++
		}
	}

	years := make([]int, 0, len(counts))
	for y := range counts {
		years = append(years, y)
	}
	sort.Ints(years)

	points := make([]Point, 0, len(years)+1)
	for _, y := range years {
		points = append(points, Point{Name: strconv.Itoa(y), Value: counts[y]})
	}
	if missing > 0 {
		points = append(points, Point{Name: missingYearName, Value: missing})
	}
	return points
}

// Initials abbreviates a sponsor name to the upper-cased first letter of each word.
func Initials(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(word)
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
