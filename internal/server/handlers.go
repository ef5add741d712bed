package server

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/quotescope/quotescope/pkg/orchestrator"
	"github.com/quotescope/quotescope/pkg/quote"
	"github.com/quotescope/quotescope/pkg/storage"
)

const maxBodySize = 1 << 20

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// CompanyResult is a ScraperResult labelled with the company it belongs to.
type CompanyResult struct {
	Company string `json:"company"`
	quote.ScraperResult
}

type MultiSummary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

type MultiResponse struct {
	Results []CompanyResult `json:"results"`
	Errors  []CompanyResult `json:"errors"`
	Summary MultiSummary    `json:"summary"`
	Ranking quote.Summary   `json:"ranking"`
	Quotes  []quote.Quote   `json:"quotes"`
}

type CompaniesResponse struct {
	Companies []string `json:"companies"`
	Count     int      `json:"count"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Log.Warnf("Could not write response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, envelope{Success: false, Error: msg})
}

func (s *Server) decodePayload(w http.ResponseWriter, r *http.Request) (quote.RequestPayload, bool) {
	var p quote.RequestPayload
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "could not read request body")
		return p, false
	}
	if err := json.Unmarshal(body, &p); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return p, false
	}
	return p, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, envelope{Success: true, Message: "ok"})
}

func (s *Server) handleCompanies(w http.ResponseWriter, r *http.Request) {
	companies := s.Service.ListAvailableCompanies()
	s.writeJSON(w, http.StatusOK, envelope{Success: true, Data: CompaniesResponse{Companies: companies, Count: len(companies)}})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, envelope{Success: true, Data: s.Service.CacheStats()})
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	s.Service.ClearCache()
	s.writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Cache cleared successfully"})
}

// handleLegacyAction serves GET /calculate?action=companies|stats.
func (s *Server) handleLegacyAction(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("action") {
	case "companies":
		s.handleCompanies(w, r)
	case "stats":
		s.handleStats(w, r)
	default:
		s.writeError(w, http.StatusBadRequest, "Unknown action. Available actions: companies, stats")
	}
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("action") == "clearCache" {
		s.handleClearCache(w, r)
		return
	}
	if q.Get("multi") == "true" {
		s.handleCalculateMulti(w, r)
		return
	}

	p, ok := s.decodePayload(w, r)
	if !ok {
		return
	}
	req, err := s.Validator.Request(p)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	for _, c := range req.Options.Conflicts() {
		s.Log.Warnf("Accepting request with conflicting options: %s", c)
	}
	if req.InsuranceCompany == "" {
		s.writeError(w, http.StatusBadRequest, "insuranceCompany is required for single calculation")
		return
	}

	result := s.Service.Calculate(r.Context(), req, q.Get("nocache") != "true")
	switch {
	case result.Success:
		s.writeJSON(w, http.StatusOK, envelope{Success: true, Data: CompanyResult{Company: req.InsuranceCompany, ScraperResult: result}})
	case orchestrator.IsUnknownCompany(result):
		s.writeError(w, http.StatusBadRequest, result.Error)
	default:
		s.writeError(w, http.StatusBadGateway, result.Error)
	}
}

func (s *Server) handleCalculateMulti(w http.ResponseWriter, r *http.Request) {
	p, ok := s.decodePayload(w, r)
	if !ok {
		return
	}
	base, err := s.Validator.Request(p)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	for _, c := range base.Options.Conflicts() {
		s.Log.Warnf("Accepting request with conflicting options: %s", c)
	}

	companies := p.NormalizedCompanies()
	if len(companies) == 0 {
		companies = s.Service.ListAvailableCompanies()
	}
	results := s.Service.CalculateMany(r.Context(), base, companies)

	resp := MultiResponse{Results: []CompanyResult{}, Errors: []CompanyResult{}}
	for i, res := range results {
		cr := CompanyResult{Company: companies[i], ScraperResult: res}
		if res.Success {
			resp.Results = append(resp.Results, cr)
		} else {
			resp.Errors = append(resp.Errors, cr)
		}
	}
	resp.Summary = MultiSummary{Total: len(results), Successful: len(resp.Results), Failed: len(resp.Errors)}
	resp.Quotes = quote.Rank(quote.SuccessfulQuotes(results))
	resp.Ranking = quote.Summarize(resp.Quotes)

	s.writeJSON(w, http.StatusOK, envelope{Success: true, Data: resp})
}

type HistoryEntry struct {
	ID         int64     `json:"id"`
	OccurredAt time.Time `json:"occurredAt"`
	Company    string    `json:"company"`
	Vehicle    string    `json:"vehicle,omitempty"`
	Success    bool      `json:"success"`
	Cached     bool      `json:"cached"`
	TotalPrice *float64  `json:"totalPrice,omitempty"`
	Error      string    `json:"error,omitempty"`
	DurationMs int64     `json:"durationMs"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.History == nil {
		s.writeError(w, http.StatusNotFound, "history is disabled")
		return
	}
	q := r.URL.Query()
	opts := storage.ListOptions{
		Company:     q.Get("company"),
		SuccessOnly: q.Get("success") == "true",
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		opts.Limit = limit
	}

	calcs, err := s.History.ListRecent(r.Context(), opts)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]HistoryEntry, 0, len(calcs))
	for _, c := range calcs {
		out = append(out, HistoryEntry{
			ID:         c.ID,
			OccurredAt: c.OccurredAt,
			Company:    c.Company,
			Vehicle:    c.Vehicle,
			Success:    c.Success,
			Cached:     c.Cached,
			TotalPrice: c.TotalPrice,
			Error:      c.Error,
			DurationMs: c.Duration.Milliseconds(),
		})
	}
	s.writeJSON(w, http.StatusOK, envelope{Success: true, Data: out})
}

func (s *Server) handleHistoryStats(w http.ResponseWriter, r *http.Request) {
	if s.History == nil {
		s.writeError(w, http.StatusNotFound, "history is disabled")
		return
	}
	stats, err := s.History.GetStats(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{Success: true, Data: stats})
}
