package normalizer

import (
	"context"
	"testing"

	"github.com/synaptica-ai/trialscope/pkg/sources"
	"github.com/synaptica-ai/trialscope/pkg/tabular"
	"github.com/synaptica-ai/trialscope/pkg/terminology"
	"github.com/synaptica-ai/trialscope/pkg/trials"
)

func TestBuildUSTrial(t *testing.T) {
	tr := NewTransformer(terminology.DefaultCatalog())
	trial := tr.BuildUS(tabular.RawRow{
		"NCT Number":      "NCT1",
		"Study Title":     "A study",
		"Study Status":    "COMPLETED",
		"Sex":             "Male",
		"Age":             "Adult",
		"Conditions":      "",
		"Start Date":      "2020-01-01",
		"Completion Date": "garbage",
		"Locations":       "Boston, MA",
		"Study URL":       "https://clinicaltrials.gov/study/NCT1",
	})

	if trial.ID != "NCT1" || trial.Source != trials.SourceUS {
		t.Fatalf("unexpected identity %s/%s", trial.ID, trial.Source)
	}
	if trial.Status != trials.StatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", trial.Status)
	}
	if trial.Gender != trials.GenderMale {
		t.Fatalf("expected MALE, got %s", trial.Gender)
	}
	if len(trial.AgeGroups) != 1 || trial.AgeGroups[0] != trials.AgeGroupAdult {
		t.Fatalf("expected [ADULT], got %v", trial.AgeGroups)
	}
	if trial.Condition != "" {
		t.Fatalf("expected empty condition to be kept, got %q", trial.Condition)
	}
	if trial.StartDate == nil || trial.StartDate.Format("2006-01-02") != "2020-01-01" {
		t.Fatalf("unexpected start date %v", trial.StartDate)
	}
	if trial.CompletionDate != nil {
		t.Fatalf("expected unparseable completion date to be absent, got %v", trial.CompletionDate)
	}
}

func TestBuildUSTrialWithMissingColumns(t *testing.T) {
	trial := NewTransformer(terminology.Catalog{}).BuildUS(tabular.RawRow{})
	if trial.Status != trials.StatusUnknown {
		t.Fatalf("expected Unknown status, got %s", trial.Status)
	}
	if trial.Gender != trials.GenderAll {
		t.Fatalf("expected ALL gender for absent field, got %s", trial.Gender)
	}
	if len(trial.AgeGroups) != 1 || trial.AgeGroups[0] != trials.AgeGroupUnknown {
		t.Fatalf("expected [UNKNOWN], got %v", trial.AgeGroups)
	}
	if trial.StartDate != nil || trial.CompletionDate != nil {
		t.Fatal("expected absent dates")
	}
}

func TestBuildEUTrial(t *testing.T) {
	tr := NewTransformer(terminology.DefaultCatalog())
	trial := tr.BuildEU(tabular.RawRow{
		"EudraCT_Number":    "2015-000001-01",
		"Full_Title":        "EU study",
		"Trial_Protocol":    "DE - Prematurely Ended",
		"Medical_Condition": "",
		"Disease":           "Asthma",
		"Sponsor_Name":      "Pharma AG",
		"Start_Date":        "2021-06-15",
		"Gender":            "Female",
		"Population_Age":    "Adults, Elderly",
		"Link":              "https://www.clinicaltrialsregister.eu/ctr-search/search?query=2015-000001-01",
	})

	if trial.Source != trials.SourceEU || trial.Location != EULocation {
		t.Fatalf("unexpected source/location %s/%s", trial.Source, trial.Location)
	}
	if trial.Status != trials.StatusWithdrawn {
		t.Fatalf("expected WITHDRAWN, got %s", trial.Status)
	}
	if trial.Condition != "Asthma" {
		t.Fatalf("expected disease fallback, got %q", trial.Condition)
	}
	if trial.CompletionDate != nil {
		t.Fatal("expected no completion date for EU trials")
	}
	if trial.Gender != trials.GenderFemale {
		t.Fatalf("expected FEMALE, got %s", trial.Gender)
	}
	if !trial.HasAgeGroup(trials.AgeGroupAdult) || !trial.HasAgeGroup(trials.AgeGroupOlderAdult) {
		t.Fatalf("expected ADULT and OLDER_ADULT, got %v", trial.AgeGroups)
	}
}

func TestTransformUsesCustomCatalog(t *testing.T) {
	cat := terminology.Catalog{AgeGroups: map[string]trials.AgeGroup{"kids": trials.AgeGroupChild}}
	built := NewTransformer(cat).Transform(trials.SourceEU, []tabular.RawRow{{"Population_Age": "Kids"}})
	if len(built) != 1 || len(built[0].AgeGroups) != 1 || built[0].AgeGroups[0] != trials.AgeGroupChild {
		t.Fatalf("expected custom phrase to map to CHILD, got %v", built)
	}
}

func TestServiceIngest(t *testing.T) {
	svc := NewService(NewTransformer(terminology.DefaultCatalog()))
	src := sources.NewStaticSource("US", "NCT Number,Study Status,Sex\nNCT1,RECRUITING,Female\nNCT2,,\n")
	built, err := svc.Ingest(context.Background(), trials.SourceUS, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(built) != 2 {
		t.Fatalf("expected 2 trials, got %d", len(built))
	}
	if built[0].Status != trials.StatusRecruiting || built[1].Status != trials.StatusUnknown {
		t.Fatalf("unexpected statuses %s, %s", built[0].Status, built[1].Status)
	}
}

func TestServiceIngestRetrievalFailure(t *testing.T) {
	svc := NewService(NewTransformer(terminology.DefaultCatalog()))
	_, err := svc.Ingest(context.Background(), trials.SourceEU, sources.NewFailingSource("EU", context.DeadlineExceeded))
	if !sources.IsRetrievalError(err) {
		t.Fatalf("expected retrieval error, got %v", err)
	}
}
