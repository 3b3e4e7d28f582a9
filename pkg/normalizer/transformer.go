package normalizer

import (
	"strings"

	"github.com/synaptica-ai/trialscope/pkg/tabular"
	"github.com/synaptica-ai/trialscope/pkg/terminology"
	"github.com/synaptica-ai/trialscope/pkg/trials"
)

// Column names of the ClinicalTrials.gov export.
const (
	USColumnID             = "NCT Number"
	USColumnTitle          = "Study Title"
	USColumnStatus         = "Study Status"
	USColumnConditions     = "Conditions"
	USColumnSponsor        = "Sponsor"
	USColumnStartDate      = "Start Date"
	USColumnCompletionDate = "Completion Date"
	USColumnSex            = "Sex"
	USColumnAge            = "Age"
	USColumnLocations      = "Locations"
	USColumnURL            = "Study URL"
)

// Column names of the EudraCT export.
const (
	EUColumnID               = "EudraCT_Number"
	EUColumnTitle            = "Full_Title"
	EUColumnProtocol         = "Trial_Protocol"
	EUColumnMedicalCondition = "Medical_Condition"
	EUColumnDisease          = "Disease"
	EUColumnSponsor          = "Sponsor_Name"
	EUColumnStartDate        = "Start_Date"
	EUColumnGender           = "Gender"
	EUColumnPopulationAge    = "Population_Age"
	EUColumnLink             = "Link"
)

// EULocation is the location recorded for every EudraCT trial.
const EULocation = "EU"

type Transformer struct {
	catalog terminology.Catalog
}

func NewTransformer(cat terminology.Catalog) *Transformer {
	if cat.AgeGroups == nil {
		cat = terminology.DefaultCatalog()
	}
	return &Transformer{catalog: cat}
}

// Transform builds one trial per row. It never fails: missing or unrecognised
// fields fall back to their category defaults.
func (t *Transformer) Transform(source trials.Source, rows []tabular.RawRow) []trials.Trial {
	out := make([]trials.Trial, 0, len(rows))
	for _, row := range rows {
		switch source {
		case trials.SourceUS:
			out = append(out, t.BuildUS(row))
		case trials.SourceEU:
			out = append(out, t.BuildEU(row))
		}
	}
	return out
}

func (t *Transformer) BuildUS(row tabular.RawRow) trials.Trial {
	return trials.Trial{
		ID:             field(row, USColumnID),
		Title:          field(row, USColumnTitle),
		Source:         trials.SourceUS,
		Status:         statusFromKey(row[USColumnStatus]),
		Condition:      field(row, USColumnConditions),
		Sponsor:        field(row, USColumnSponsor),
		StartDate:      ParseDate(row[USColumnStartDate]),
		CompletionDate: ParseDate(row[USColumnCompletionDate]),
		Gender:         NormalizeGender(row[USColumnSex]),
		AgeGroups:      normalizeAgeGroup(t.catalog, row[USColumnAge]),
		Location:       field(row, USColumnLocations),
		URL:            field(row, USColumnURL),
	}
}

// BuildEU reads a EudraCT row. The export has no completion date and its status
// is free text in the protocol column.
func (t *Transformer) BuildEU(row tabular.RawRow) trials.Trial {
	return trials.Trial{
		ID:        field(row, EUColumnID),
		Title:     field(row, EUColumnTitle),
		Source:    trials.SourceEU,
		Status:    NormalizeStudyStatus(row[EUColumnProtocol]),
		Condition: strings.TrimSpace(row.Value(EUColumnMedicalCondition, EUColumnDisease)),
		Sponsor:   field(row, EUColumnSponsor),
		StartDate: ParseDate(row[EUColumnStartDate]),
		Gender:    NormalizeGender(row[EUColumnGender]),
		AgeGroups: normalizeAgeGroup(t.catalog, row[EUColumnPopulationAge]),
		Location:  EULocation,
		URL:       field(row, EUColumnLink),
	}
}

func field(row tabular.RawRow, name string) string {
	return strings.TrimSpace(row[name])
}
