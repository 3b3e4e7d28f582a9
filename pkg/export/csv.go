// Package export renders trial lists for download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/synaptica-ai/trialscope/pkg/trials"
)

var header = []string{
	"id", "title", "source", "status", "condition", "sponsor",
	"start_date", "completion_date", "gender", "age_group", "location", "url",
}

// WriteCSV writes list with a header row. Absent dates are empty cells and
// age groups are joined with ";".
func WriteCSV(w io.Writer, list []trials.Trial) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, t := range list {
		if err := writer.Write(record(t)); err != nil {
			return fmt.Errorf("failed to write trial %s: %w", t.ID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func record(t trials.Trial) []string {
	groups := make([]string, len(t.AgeGroups))
	for i, g := range t.AgeGroups {
		groups[i] = string(g)
	}
	return []string{
		t.ID,
		t.Title,
		string(t.Source),
		string(t.Status),
		t.Condition,
		t.Sponsor,
		formatDate(t.StartDate),
		formatDate(t.CompletionDate),
		string(t.Gender),
		strings.Join(groups, ";"),
		t.Location,
		t.URL,
	}
}

func formatDate(d *time.Time) string {
	if d == nil {
		return ""
	}
	return d.Format("2006-01-02")
}
