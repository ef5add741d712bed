package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/quotescope/quotescope/pkg/cache"
	"github.com/quotescope/quotescope/pkg/quote"
	"github.com/quotescope/quotescope/pkg/storage"
)

type stubService struct {
	mu        sync.Mutex
	companies []string
	prices    map[string]float64
	useCache  []bool
	cleared   int
}

func (s *stubService) ListAvailableCompanies() []string { return s.companies }

func (s *stubService) Calculate(ctx context.Context, req quote.CalculationRequest, useCache bool) quote.ScraperResult {
	s.mu.Lock()
	s.useCache = append(s.useCache, useCache)
	s.mu.Unlock()

	known := false
	for _, c := range s.companies {
		known = known || c == req.InsuranceCompany
	}
	if !known {
		return quote.Failed(fmt.Sprintf("no scraper registered for %q; available companies: %s", req.InsuranceCompany, strings.Join(s.companies, ", ")), 0)
	}
	price, ok := s.prices[req.InsuranceCompany]
	if !ok {
		return quote.Failed(strings.ToUpper(req.InsuranceCompany)+" scraping failed: timeout", time.Second)
	}
	return quote.Succeeded(quote.Quote{Company: strings.ToUpper(req.InsuranceCompany), TotalPrice: price, Currency: quote.Currency}, time.Second)
}

func (s *stubService) CalculateMany(ctx context.Context, base quote.CalculationRequest, companies []string) []quote.ScraperResult {
	out := make([]quote.ScraperResult, len(companies))
	for i, c := range companies {
		out[i] = s.Calculate(ctx, base.ForCompany(c), true)
	}
	return out
}

func (s *stubService) ClearCache() {
	s.mu.Lock()
	s.cleared++
	s.mu.Unlock()
}

func (s *stubService) CacheStats() cache.Stats { return cache.Stats{Entries: 3, Hits: 7, Misses: 2} }

func newTestServer(t *testing.T, history *storage.DB) (*httptest.Server, *stubService) {
	t.Helper()
	svc := &stubService{
		companies: []string{"pzu", "generali", "uniqa"},
		prices:    map[string]float64{"pzu": 1800, "uniqa": 1200},
	}
	srv := httptest.NewServer(New(svc, history, nil).Handler())
	t.Cleanup(srv.Close)
	return srv, svc
}

type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func do(t *testing.T, method, url, body string) (int, response) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	var out response
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return resp.StatusCode, out
}

const validBody = `{
	"vehicle": {"brand": "Toyota", "model": "Corolla", "year": 2018, "fuelType": "benzyna"},
	"driver": {"age": 35, "drivingLicenseDate": "2008-05-15"},
	"options": {"assistance": true},
	"insuranceCompany": "%s"
}`

func TestHealthAndCompanies(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	status, res := do(t, http.MethodGet, srv.URL+"/healthz", "")
	if status != http.StatusOK || !res.Success {
		t.Fatalf("healthz: %d %+v", status, res)
	}

	for _, path := range []string{"/api/insurance/companies", "/api/insurance/calculate?action=companies"} {
		status, res = do(t, http.MethodGet, srv.URL+path, "")
		if status != http.StatusOK {
			t.Fatalf("%s: status %d", path, status)
		}
		var got CompaniesResponse
		if err := json.Unmarshal(res.Data, &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Count != 3 || strings.Join(got.Companies, ",") != "pzu,generali,uniqa" {
			t.Fatalf("%s: %+v", path, got)
		}
	}

	status, _ = do(t, http.MethodGet, srv.URL+"/api/insurance/calculate?action=nope", "")
	if status != http.StatusBadRequest {
		t.Fatalf("unknown action: status %d", status)
	}
}

func TestCalculate(t *testing.T) {
	srv, svc := newTestServer(t, nil)
	url := srv.URL + "/api/insurance/calculate"

	tests := []struct {
		name       string
		url        string
		body       string
		wantStatus int
		wantError  string
	}{
		{"success", url, fmt.Sprintf(validBody, "PZU"), http.StatusOK, ""},
		{"worker failure", url, fmt.Sprintf(validBody, "generali"), http.StatusBadGateway, "GENERALI scraping failed: timeout"},
		{"unknown company", url, fmt.Sprintf(validBody, "allianz"), http.StatusBadRequest, `no scraper registered for "allianz"`},
		{"missing company", url, fmt.Sprintf(validBody, ""), http.StatusBadRequest, "insuranceCompany is required for single calculation"},
		{"invalid payload", url, `{"vehicle": {"brand": "Toyota"}, "driver": {}}`, http.StatusBadRequest, "invalid request"},
		{"malformed json", url, `{"vehicle":`, http.StatusBadRequest, "invalid JSON"},
		{"no cache", url + "?nocache=true", fmt.Sprintf(validBody, "uniqa"), http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, res := do(t, http.MethodPost, tt.url, tt.body)
			if status != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%+v)", status, tt.wantStatus, res)
			}
			if tt.wantError != "" && !strings.Contains(res.Error, tt.wantError) {
				t.Fatalf("error = %q, want it to contain %q", res.Error, tt.wantError)
			}
			if tt.wantStatus == http.StatusOK {
				var cr CompanyResult
				if err := json.Unmarshal(res.Data, &cr); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if !cr.Success || cr.Quote == nil || cr.Company == "" {
					t.Fatalf("result = %+v", cr)
				}
				if !strings.Contains(string(res.Data), `"executionTime":1000`) {
					t.Fatalf("data = %s, want executionTime in milliseconds", res.Data)
				}
				if got := cr.ExecutionTime.Duration(); got != time.Second {
					t.Fatalf("executionTime = %v, want %v", got, time.Second)
				}
			}
		})
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	last := svc.useCache[len(svc.useCache)-1]
	if last {
		t.Fatalf("nocache=true still used the cache")
	}
	if !svc.useCache[0] {
		t.Fatalf("cache not used by default")
	}
}

func TestCalculateMulti(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	body := `{
		"vehicle": {"brand": "Toyota", "model": "Corolla", "year": 2018},
		"driver": {"age": 35, "drivingLicenseDate": "2008-05-15"},
		"companies": ["pzu", "generali", "uniqa", "ghost"]
	}`
	for _, path := range []string{"/api/insurance/calculate/multi", "/api/insurance/calculate?multi=true"} {
		status, res := do(t, http.MethodPost, srv.URL+path, body)
		if status != http.StatusOK {
			t.Fatalf("%s: status %d (%+v)", path, status, res)
		}
		var got MultiResponse
		if err := json.Unmarshal(res.Data, &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Summary != (MultiSummary{Total: 4, Successful: 2, Failed: 2}) {
			t.Fatalf("summary = %+v", got.Summary)
		}
		if got.Results[0].Company != "pzu" || got.Results[1].Company != "uniqa" {
			t.Fatalf("results = %+v", got.Results)
		}
		if got.Errors[0].Company != "generali" || got.Errors[1].Company != "ghost" {
			t.Fatalf("errors = %+v", got.Errors)
		}
		if len(got.Quotes) != 2 || got.Quotes[0].TotalPrice != 1200 {
			t.Fatalf("quotes not ranked: %+v", got.Quotes)
		}
		if got.Ranking.Savings != 600 || got.Ranking.Average != 1500 {
			t.Fatalf("ranking = %+v", got.Ranking)
		}
	}
}

func TestCalculateMultiDefaultsToAllCompanies(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	status, res := do(t, http.MethodPost, srv.URL+"/api/insurance/calculate/multi", fmt.Sprintf(validBody, ""))
	if status != http.StatusOK {
		t.Fatalf("status %d", status)
	}
	var got MultiResponse
	json.Unmarshal(res.Data, &got)
	if got.Summary.Total != 3 {
		t.Fatalf("want all 3 companies, got %+v", got.Summary)
	}
}

func TestCacheEndpoints(t *testing.T) {
	srv, svc := newTestServer(t, nil)

	status, res := do(t, http.MethodGet, srv.URL+"/api/insurance/stats", "")
	if status != http.StatusOK {
		t.Fatalf("stats: status %d", status)
	}
	var stats cache.Stats
	json.Unmarshal(res.Data, &stats)
	if stats.Entries != 3 || stats.Hits != 7 || stats.Misses != 2 {
		t.Fatalf("stats = %+v", stats)
	}

	do(t, http.MethodPost, srv.URL+"/api/insurance/cache/clear", "")
	status, res = do(t, http.MethodPost, srv.URL+"/api/insurance/calculate?action=clearCache", "")
	if status != http.StatusOK || res.Message != "Cache cleared successfully" {
		t.Fatalf("clearCache: %d %+v", status, res)
	}
	if svc.cleared != 2 {
		t.Fatalf("cleared %d times, want 2", svc.cleared)
	}
}

func TestHistoryEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	if status, _ := do(t, http.MethodGet, srv.URL+"/api/insurance/history", ""); status != http.StatusNotFound {
		t.Fatalf("history without db: status %d", status)
	}

	db, err := storage.Open(filepath.Join(t.TempDir(), "history.sqlite"))
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer db.Close()
	db.Insert(context.Background(), storage.Calculation{Company: "pzu", Success: true, TotalPrice: quote.Float(1500)})
	db.Insert(context.Background(), storage.Calculation{Company: "tuz", Error: "boom"})

	srv, _ = newTestServer(t, db)
	status, res := do(t, http.MethodGet, srv.URL+"/api/insurance/history?success=true", "")
	if status != http.StatusOK {
		t.Fatalf("history: status %d", status)
	}
	var entries []HistoryEntry
	json.Unmarshal(res.Data, &entries)
	if len(entries) != 1 || entries[0].Company != "pzu" || *entries[0].TotalPrice != 1500 {
		t.Fatalf("entries = %+v", entries)
	}

	status, res = do(t, http.MethodGet, srv.URL+"/api/insurance/history/stats", "")
	if status != http.StatusOK {
		t.Fatalf("history stats: status %d", status)
	}
	var stats []storage.CompanyStats
	json.Unmarshal(res.Data, &stats)
	if len(stats) != 2 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/insurance/calculate", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("Access-Control-Allow-Origin = %q", got)
	}
}
