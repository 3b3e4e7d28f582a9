package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/synaptica-ai/trialscope/pkg/analytics/charts"
	"github.com/synaptica-ai/trialscope/pkg/datastore"
	"github.com/synaptica-ai/trialscope/pkg/filters"
	"github.com/synaptica-ai/trialscope/pkg/layout"
	"github.com/synaptica-ai/trialscope/pkg/normalizer"
	"github.com/synaptica-ai/trialscope/pkg/preferences"
	"github.com/synaptica-ai/trialscope/pkg/sources"
	"github.com/synaptica-ai/trialscope/pkg/terminology"
)

const usCSV = `NCT Number,Study Title,Study Status,Conditions,Sponsor,Start Date,Completion Date,Sex,Age,Locations,Study URL
NCT1,First,RECRUITING,Asthma,Acme Pharma,2020-01-01,2022-01-01,ALL,ADULT,Boston,https://example.org/NCT1
NCT2,Second,COMPLETED,Diabetes,Beta Labs,2021-05-01,,FEMALE,CHILD,Paris,https://example.org/NCT2
`

const euCSV = `EudraCT_Number,Full_Title,Trial_Protocol,Medical_Condition,Sponsor_Name,Start_Date,Gender,Population_Age,Link
EU1,Third,Completed,Asthma,Gamma,2022-03-01,"Male, Female",Adults,https://example.org/EU1
`

func newTestServer(t *testing.T, us, eu sources.Source) http.Handler {
	t.Helper()
	ingest := normalizer.NewService(normalizer.NewTransformer(terminology.DefaultCatalog()))
	store := datastore.NewService(ingest, us, eu, filters.NewState())
	layouts, err := layout.NewService(context.Background(), layout.NewMemoryRepository(), nil)
	if err != nil {
		t.Fatalf("failed to build layouts: %v", err)
	}
	cache, err := charts.NewCache(16)
	if err != nil {
		t.Fatalf("failed to build cache: %v", err)
	}
	return NewRouter(NewHandler(store, layouts, preferences.NewMemoryStore(), cache), 1<<20)
}

func loadedServer(t *testing.T) http.Handler {
	t.Helper()
	srv := newTestServer(t, sources.NewStaticSource("us", usCSV), sources.NewStaticSource("eu", euCSV))
	if rec := do(t, srv, http.MethodPost, "/api/v1/dataset/load", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected load to succeed, got %d: %s", rec.Code, rec.Body.String())
	}
	return srv
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, sources.NewStaticSource("us", ""), sources.NewStaticSource("eu", ""))
	rec := do(t, srv, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "healthy") {
		t.Fatalf("unexpected health response %d %s", rec.Code, rec.Body.String())
	}
}

func TestDatasetUnavailableBeforeLoad(t *testing.T) {
	srv := newTestServer(t, sources.NewStaticSource("us", usCSV), sources.NewStaticSource("eu", euCSV))
	for _, path := range []string{"/api/v1/dataset", "/api/v1/dataset/filtered", "/api/v1/charts/GenderChart"} {
		if rec := do(t, srv, http.MethodGet, path, ""); rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503 for %s, got %d", path, rec.Code)
		}
	}
}

func TestLoadFailureReportsRecordedError(t *testing.T) {
	srv := newTestServer(t, sources.NewFailingSource("us", errors.New("dns failure")), sources.NewStaticSource("eu", euCSV))
	rec := do(t, srv, http.MethodPost, "/api/v1/dataset/load", "")
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), "Failed to load data") {
		t.Fatalf("unexpected load failure response %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, srv, http.MethodGet, "/api/v1/dataset", "")
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), "Failed to load data") {
		t.Fatalf("expected recorded error on dataset read, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestBaselineAndSummary(t *testing.T) {
	srv := loadedServer(t)

	var full struct {
		Trials     []map[string]interface{} `json:"trials"`
		TotalCount int                      `json:"total_trials"`
		USCount    int                      `json:"us_trials"`
	}
	decode(t, do(t, srv, http.MethodGet, "/api/v1/dataset", ""), &full)
	if full.TotalCount != 3 || full.USCount != 2 || len(full.Trials) != 3 {
		t.Fatalf("unexpected baseline %+v", full)
	}

	rec := do(t, srv, http.MethodGet, "/api/v1/dataset?summary=true", "")
	if strings.Contains(rec.Body.String(), `"trials"`) {
		t.Fatalf("summary must omit trials, got %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"conditions":{"Asthma":2,"Diabetes":1}`) {
		t.Fatalf("expected ordered condition tally, got %s", rec.Body.String())
	}
}

func TestFiltersFlow(t *testing.T) {
	srv := loadedServer(t)

	rec := do(t, srv, http.MethodPut, "/api/v1/filters", `{"data_source":"US","condition":"asth"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp filtersResponse
	decode(t, rec, &resp)
	if resp.FilteredCount == nil || *resp.FilteredCount != 1 || resp.Filters.DataSource != "US" {
		t.Fatalf("unexpected filter response %+v", resp)
	}

	var filtered struct {
		TotalCount int `json:"total_trials"`
	}
	decode(t, do(t, srv, http.MethodGet, "/api/v1/dataset/filtered", ""), &filtered)
	if filtered.TotalCount != 1 {
		t.Fatalf("expected 1 filtered trial, got %d", filtered.TotalCount)
	}

	if rec := do(t, srv, http.MethodPut, "/api/v1/filters", `{"data_source":"MARS"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad source, got %d", rec.Code)
	}
	if rec := do(t, srv, http.MethodPut, "/api/v1/filters", `{"start_date":"01/02/2020"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %d", rec.Code)
	}

	decode(t, do(t, srv, http.MethodPost, "/api/v1/filters/reset", ""), &resp)
	if resp.Filters.DataSource != "BOTH" || *resp.FilteredCount != 3 {
		t.Fatalf("expected reset to defaults, got %+v", resp)
	}
}

func TestExport(t *testing.T) {
	srv := loadedServer(t)
	do(t, srv, http.MethodPut, "/api/v1/filters", `{"data_source":"EU"}`)

	rec := do(t, srv, http.MethodGet, "/api/v1/dataset/filtered/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv") {
		t.Fatalf("unexpected content type %s", rec.Header().Get("Content-Type"))
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[1], "EU1,Third,EU,COMPLETED") {
		t.Fatalf("unexpected export %q", rec.Body.String())
	}
}

func TestCharts(t *testing.T) {
	srv := loadedServer(t)

	var list struct {
		Items []charts.Definition `json:"items"`
	}
	decode(t, do(t, srv, http.MethodGet, "/api/v1/charts", ""), &list)
	if len(list.Items) != 8 {
		t.Fatalf("expected 8 chart kinds, got %d", len(list.Items))
	}

	do(t, srv, http.MethodPut, "/api/v1/filters", `{"data_source":"EU"}`)

	var series charts.Series
	decode(t, do(t, srv, http.MethodGet, "/api/v1/charts/TotalTrialsChart?view=baseline", ""), &series)
	if len(series.Points) != 2 || series.Points[0].Value != 2 || series.Points[1].Value != 1 {
		t.Fatalf("unexpected baseline totals %+v", series.Points)
	}
	decode(t, do(t, srv, http.MethodGet, "/api/v1/charts/TotalTrialsChart", ""), &series)
	if series.Points[0].Value != 0 || series.Points[1].Value != 1 {
		t.Fatalf("unexpected filtered totals %+v", series.Points)
	}

	if rec := do(t, srv, http.MethodGet, "/api/v1/charts/PieChart", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown kind, got %d", rec.Code)
	}
	if rec := do(t, srv, http.MethodGet, "/api/v1/charts/GenderChart?view=raw", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad view, got %d", rec.Code)
	}
}

func TestLayoutsFlow(t *testing.T) {
	srv := newTestServer(t, sources.NewStaticSource("us", ""), sources.NewStaticSource("eu", ""))

	rec := do(t, srv, http.MethodPost, "/api/v1/layouts", `{"name":"Mine"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created layout.Layout
	decode(t, rec, &created)
	if len(created.Charts) != 8 || created.ID == "" {
		t.Fatalf("expected copy of default charts, got %+v", created)
	}

	rec = do(t, srv, http.MethodDelete, "/api/v1/layouts/"+created.ID+"/charts/gender", "")
	var updated layout.Layout
	decode(t, rec, &updated)
	if len(updated.Charts) != 7 {
		t.Fatalf("expected 7 charts, got %d", len(updated.Charts))
	}

	rec = do(t, srv, http.MethodPost, "/api/v1/layouts/"+created.ID+"/charts", `{"id":"g2","type":"GenderChart","title":"Gender"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, srv, http.MethodPost, "/api/v1/layouts/"+created.ID+"/charts", `{"type":"RadarChart"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown chart type, got %d", rec.Code)
	}

	if rec := do(t, srv, http.MethodPut, "/api/v1/layouts/current", `{"id":"`+created.ID+`"}`); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var current layout.Layout
	decode(t, do(t, srv, http.MethodGet, "/api/v1/layouts/current", ""), &current)
	if current.ID != created.ID {
		t.Fatalf("expected current %s, got %s", created.ID, current.ID)
	}

	if rec := do(t, srv, http.MethodGet, "/api/v1/layouts/nope", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec := do(t, srv, http.MethodPost, "/api/v1/layouts", `{"id":"default","name":"x","charts":[]}`); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}

	var list struct {
		Items   []layout.Layout `json:"items"`
		Current string          `json:"current"`
	}
	decode(t, do(t, srv, http.MethodGet, "/api/v1/layouts", ""), &list)
	if len(list.Items) != 2 || list.Current != created.ID {
		t.Fatalf("unexpected layout list %+v", list)
	}
}

func TestPreferences(t *testing.T) {
	srv := newTestServer(t, sources.NewStaticSource("us", ""), sources.NewStaticSource("eu", ""))

	var prefs preferences.Preferences
	decode(t, do(t, srv, http.MethodGet, "/api/v1/preferences/s1", ""), &prefs)
	if prefs.FontSize != preferences.FontMedium {
		t.Fatalf("expected medium default, got %s", prefs.FontSize)
	}

	rec := do(t, srv, http.MethodPut, "/api/v1/preferences/s1", `{"font_size":"small","filters":{"data_source":"EU"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	decode(t, do(t, srv, http.MethodPost, "/api/v1/preferences/s1/font-size/toggle", ""), &prefs)
	if prefs.FontSize != preferences.FontMedium || prefs.Filters == nil || prefs.Filters.DataSource != "EU" {
		t.Fatalf("unexpected toggled preferences %+v", prefs)
	}

	if rec := do(t, srv, http.MethodPut, "/api/v1/preferences/s1", `{"font_size":"giant"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := loadedServer(t)
	rec := do(t, srv, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "trialscope_baseline_trials 3") {
		t.Fatalf("unexpected metrics output %s", rec.Body.String())
	}
}
