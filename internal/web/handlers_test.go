package web

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"slices"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/airsat/internal/config"
	"github.com/JonMunkholm/airsat/internal/export"
)

func sessionCookie(t *testing.T, rec interface{ Result() *http.Response }) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "airsat_session" {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestDashboard_DefaultView(t *testing.T) {
	s := newTestServer(t, nil)

	rec := get(t, s, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}

	body := rec.Body.String()
	for _, want := range []string{
		"Showing 4 entries out of 5 total.",
		"Average Departure Delay:",
		`name="age_min" min="25" max="71" value="25"`,
		`name="age_max" min="25" max="71" value="60"`,
		`<option value="Eco Plus" selected>`,
		"/chart/satisfaction.png?",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
	sessionCookie(t, rec)
}

func TestDashboard_InvalidRangeKeepsLastValidView(t *testing.T) {
	s := newTestServer(t, nil)

	first := get(t, s, "/?age_min=30&age_max=60")
	if first.Code != http.StatusOK {
		t.Fatalf("first status = %d", first.Code)
	}
	if !strings.Contains(first.Body.String(), "Showing 3 entries out of 5 total.") {
		t.Fatal("first view should show 3 rows")
	}
	cookie := sessionCookie(t, first)

	second := get(t, s, "/?age_min=60&age_max=30", cookie)
	if second.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", second.Code)
	}
	body := second.Body.String()
	if !strings.Contains(body, "FLT001") {
		t.Error("expected FLT001 alert")
	}
	if !strings.Contains(body, "Showing 3 entries out of 5 total.") {
		t.Error("expected the last valid view to be shown")
	}
	// The rejected values stay in the form so they can be corrected.
	if !strings.Contains(body, `name="age_min" min="25" max="71" value="60"`) {
		t.Error("expected submitted age_min in form")
	}
}

func TestDashboard_InvalidRangeWithoutSessionShowsDefaults(t *testing.T) {
	s := newTestServer(t, nil)

	rec := get(t, s, "/?seat_comfort_min=5&seat_comfort_max=1")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Showing 4 entries out of 5 total.") {
		t.Error("expected default view")
	}
}

func TestDashboard_UnparsableValue(t *testing.T) {
	s := newTestServer(t, nil)

	rec := get(t, s, "/?distance_min=far")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "FLT002") {
		t.Error("expected FLT002 alert")
	}
}

func TestDashboard_Pagination(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.Filters.PageSize = 3 })

	rec := get(t, s, "/?page=2")
	body := rec.Body.String()
	if !strings.Contains(body, "Page 2 of 2") {
		t.Error("expected page 2 of 2")
	}
	if !strings.Contains(body, `rel="prev"`) || strings.Contains(body, `rel="next"`) {
		t.Error("expected only a previous link on the last page")
	}
}

func decodeJSON(t *testing.T, body *bytes.Buffer, v any) {
	t.Helper()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestSummaryAPI(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name     string
		query    string
		showing  int
		counts   map[string]int
		nilMeans bool
		genders  []string
	}{
		{"defaults", "", 4, map[string]int{"satisfied": 3, "dissatisfied": 1}, false, []string{"Female", "Male"}},
		{"one satisfaction value", "?satisfaction=satisfied", 3, map[string]int{"satisfied": 3}, false, []string{"Female", "Male"}},
		{"hidden empty plus value", "?gender=&gender=Male", 2, map[string]int{"satisfied": 1, "dissatisfied": 1}, false, []string{"Male"}},
		{"empty gender set", "?gender=", 0, map[string]int{}, true, []string{}},
		{"wider age range", "?age_min=0&age_max=100", 5, map[string]int{"satisfied": 3, "dissatisfied": 2}, false, []string{"Female", "Male"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, "/api/summary"+tt.query)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
			}
			var resp summaryResponse
			decodeJSON(t, rec.Body, &resp)

			if resp.Showing != tt.showing || resp.Total != 5 {
				t.Errorf("showing %d of %d, want %d of 5", resp.Showing, resp.Total, tt.showing)
			}
			if got := resp.Filters.Gender.Values(); !slices.Equal(got, tt.genders) {
				t.Errorf("filters.gender = %v, want %v", got, tt.genders)
			}
			got := resp.Summary.CountsMap()
			if len(got) != len(tt.counts) {
				t.Errorf("counts = %v, want %v", got, tt.counts)
			}
			for k, v := range tt.counts {
				if got[k] != v {
					t.Errorf("counts[%q] = %d, want %d", k, got[k], v)
				}
			}
			for _, m := range resp.Summary.RatingMeans {
				if (m.Mean == nil) != tt.nilMeans {
					t.Errorf("%s mean nil = %v, want %v", m.Column, m.Mean == nil, tt.nilMeans)
				}
			}
		})
	}
}

func TestSummaryAPI_Errors(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		query  string
		status int
		code   string
	}{
		{"?age_min=60&age_max=20", http.StatusUnprocessableEntity, "FLT001"},
		{"?distance_max=1e3", http.StatusBadRequest, "FLT002"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := get(t, s, "/api/summary"+tt.query)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			var resp ErrorResponse
			decodeJSON(t, rec.Body, &resp)
			if resp.Code != tt.code {
				t.Errorf("code = %q, want %q", resp.Code, tt.code)
			}
		})
	}
}

func TestRecordsAPI(t *testing.T) {
	s := newTestServer(t, nil)

	rec := get(t, s, "/api/records?page=2&page_size=3")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp recordsResponse
	decodeJSON(t, rec.Body, &resp)

	if resp.Showing != 4 || resp.TotalPages != 2 || resp.PageSize != 3 {
		t.Errorf("got showing=%d totalPages=%d pageSize=%d", resp.Showing, resp.TotalPages, resp.PageSize)
	}
	if len(resp.Records) != 1 || resp.Records[0].Age != 33 {
		t.Errorf("records = %+v, want the age-33 row", resp.Records)
	}
}

func TestRecordsAPI_PastLastPage(t *testing.T) {
	s := newTestServer(t, nil)

	rec := get(t, s, "/api/records?page=9")
	if !strings.Contains(rec.Body.String(), `"records":[]`) {
		t.Errorf("expected empty records array, got %s", rec.Body.String())
	}
}

func TestBoundsAPI(t *testing.T) {
	s := newTestServer(t, nil)

	var resp struct {
		Bounds struct {
			Age struct{ Min, Max int }
		}
		Domains  map[string][]string
		Defaults struct {
			Age struct{ Min, Max int }
		}
	}
	decodeJSON(t, get(t, s, "/api/bounds").Body, &resp)

	if resp.Bounds.Age.Min != 25 || resp.Bounds.Age.Max != 71 {
		t.Errorf("age bounds = %+v", resp.Bounds.Age)
	}
	if resp.Defaults.Age.Min != 25 || resp.Defaults.Age.Max != 60 {
		t.Errorf("default age = %+v", resp.Defaults.Age)
	}
	if got := resp.Domains["travel_class"]; len(got) != 3 || got[0] != "Eco" {
		t.Errorf("class domain = %v", got)
	}
}

func TestCleanReportAPI(t *testing.T) {
	s := newTestServer(t, nil)

	var resp cleanReportResponse
	decodeJSON(t, get(t, s, "/api/clean-report").Body, &resp)

	if resp.Report.RowsIn != 6 || resp.Report.RowsDropped != 1 || resp.Report.RowsOut != 5 {
		t.Errorf("report = %+v", resp.Report)
	}
	if resp.Source != "csv:test.csv" {
		t.Errorf("source = %q", resp.Source)
	}
}

func TestExportCSV(t *testing.T) {
	s := newTestServer(t, nil)

	rec := get(t, s, "/api/export.csv?satisfaction=dissatisfied")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment;") || !strings.Contains(cd, ".csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	rows, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want header + 1", len(rows))
	}
	if rows[1][0] != "dissatisfied" || rows[1][5] != "40" {
		t.Errorf("row = %v", rows[1])
	}
}

func TestExportXLSX(t *testing.T) {
	s := newTestServer(t, nil)

	rec := get(t, s, "/api/export.xlsx")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != export.FormatXLSX.ContentType() {
		t.Errorf("Content-Type = %q", ct)
	}

	f, err := excelize.OpenReader(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := f.GetRows(export.SheetName)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 5 {
		t.Errorf("rows = %d, want header + 4", len(rows))
	}
}

func TestExport_BusyReturns503(t *testing.T) {
	s := newTestServer(t, nil)

	if err := s.exports.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer s.exports.Release()

	rec := get(t, s, "/api/export.csv")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After")
	}
	var resp ErrorResponse
	decodeJSON(t, rec.Body, &resp)
	if resp.Code != "EXP001" {
		t.Errorf("code = %q, want EXP001", resp.Code)
	}
}

func TestCharts(t *testing.T) {
	s := newTestServer(t, nil)

	for _, target := range []string{
		"/chart/satisfaction.png",
		"/chart/ratings.png",
		"/chart/satisfaction.png?gender=",
		"/chart/ratings.png?gender=",
	} {
		t.Run(target, func(t *testing.T) {
			rec := get(t, s, target)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
				t.Errorf("Content-Type = %q", ct)
			}
			if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
				t.Error("body is not a PNG")
			}
		})
	}
}

func TestChart_InvalidRange(t *testing.T) {
	s := newTestServer(t, nil)

	rec := get(t, s, "/chart/ratings.png?age_min=9&age_max=1")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)

	var resp map[string]any
	decodeJSON(t, get(t, s, "/healthz").Body, &resp)
	if resp["status"] != "ok" || resp["rows"] != float64(5) {
		t.Errorf("health = %v", resp)
	}
}

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t, nil)

	rec := get(t, s, "/healthz")
	for _, h := range []string{"X-Content-Type-Options", "X-Frame-Options", "Content-Security-Policy", "Referrer-Policy"} {
		if rec.Header().Get(h) == "" {
			t.Errorf("missing %s", h)
		}
	}

	noCSP := newTestServer(t, func(c *config.Config) { c.Security.EnableCSP = false })
	if get(t, noCSP, "/healthz").Header().Get("Content-Security-Policy") != "" {
		t.Error("CSP set although disabled")
	}
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.Rate.Enabled = true
		c.Rate.RequestsPerMinute = 2
		c.Rate.ExportLimit = 1
	})

	for i := range 2 {
		if rec := get(t, s, "/healthz"); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i+1, rec.Code)
		}
	}
	rec := get(t, s, "/healthz")
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Error("expected Retry-After: 60")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.Metrics.Enabled = true
		c.Metrics.Path = "/metrics"
	})

	if rec := get(t, s, "/metrics"); rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	off := newTestServer(t, nil)
	if rec := get(t, off, "/metrics"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 when disabled", rec.Code)
	}
}

func TestStaticAssets(t *testing.T) {
	s := newTestServer(t, nil)

	rec := get(t, s, "/static/dashboard.css")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}
