package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWritePrometheus(t *testing.T) {
	Reset()
	ObserveBaseline(5, 3, 2)
	ObserveFilter(2)

	rec := httptest.NewRecorder()
	WritePrometheus(rec)
	body := rec.Body.String()

	for _, want := range []string{
		"trialscope_baseline_trials 5\n",
		"trialscope_baseline_us_trials 3\n",
		"trialscope_filtered_trials 2\n",
		"# TYPE trialscope_filter_applications_total counter\n",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, body)
		}
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("unexpected content type %q", ct)
	}
}
