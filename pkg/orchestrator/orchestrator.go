// Package orchestrator routes calculation requests to insurer workers,
// serves repeats from the result cache and fans batches out concurrently.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/quotescope/quotescope/pkg/cache"
	"github.com/quotescope/quotescope/pkg/insurers"
	"github.com/quotescope/quotescope/pkg/logger"
	"github.com/quotescope/quotescope/pkg/metrics"
	"github.com/quotescope/quotescope/pkg/quote"
)

// ErrUnknownCompany is the cause of results for companies with no worker.
var ErrUnknownCompany = errors.New("no scraper registered")

// Recorder receives every settled calculation, cache hits included, e.g. to
// keep a history.
// Implementations must be safe for concurrent use.
type Recorder interface {
	Record(ctx context.Context, req quote.CalculationRequest, result quote.ScraperResult) error
}

type Option func(*Orchestrator)

func WithLogger(l logger.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithConcurrency bounds how many companies CalculateMany runs at once.
// Zero or less means no bound.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) { o.concurrency = n }
}

// Orchestrator is the aggregate API over the registered workers.
type Orchestrator struct {
	cache       *cache.Cache
	workers     map[string]insurers.Worker
	order       []string
	log         logger.Logger
	recorder    Recorder
	concurrency int
}

// New registers workers under their normalized names. The order of workers
// is the order ListAvailableCompanies reports. A later worker with the same
// name replaces an earlier one.
func New(c *cache.Cache, workers []insurers.Worker, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cache:   c,
		workers: make(map[string]insurers.Worker, len(workers)),
		log:     logger.Nop{},
	}
	for _, w := range workers {
		name := quote.NormalizeCompany(w.Name())
		if _, ok := o.workers[name]; !ok {
			o.order = append(o.order, name)
		}
		o.workers[name] = w
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ListAvailableCompanies returns the registered company identifiers in
// registration order.
func (o *Orchestrator) ListAvailableCompanies() []string {
	return append([]string(nil), o.order...)
}

func (o *Orchestrator) unknown(company string) quote.ScraperResult {
	return quote.ScraperResult{
		Error: fmt.Sprintf("%s for %q; available companies: %s", ErrUnknownCompany, company, strings.Join(o.order, ", ")),
	}
}

// IsUnknownCompany reports whether result was produced for a company with no
// registered worker.
func IsUnknownCompany(result quote.ScraperResult) bool {
	return !result.Success && strings.HasPrefix(result.Error, ErrUnknownCompany.Error()+" for ")
}

// Calculate obtains a quote for req.InsuranceCompany. With useCache a fresh
// cached result is returned without running the worker, and a successful
// worker result is stored. Failures are never cached.
func (o *Orchestrator) Calculate(ctx context.Context, req quote.CalculationRequest, useCache bool) quote.ScraperResult {
	company := quote.NormalizeCompany(req.InsuranceCompany)
	req.InsuranceCompany = company

	w, ok := o.workers[company]
	if !ok {
		o.log.Warnf("No scraper registered for %q", company)
		metrics.IncreaseCalculationsMetric(company, metrics.OutcomeUnknown)
		return o.unknown(company)
	}

	if useCache && o.cache != nil {
		if cached, hit := o.cache.Get(req); hit {
			o.log.Infof("[%s] Returning cached result", company)
			metrics.IncreaseCalculationsMetric(company, metrics.OutcomeCached)
			o.record(ctx, req, cached)
			return cached
		}
	}

	o.log.Infof("[%s] Running scraper", company)
	result := o.scrape(ctx, w, req)
	metrics.ObserveScrapeDuration(company, result.Success, result.ExecutionTime.Duration())
	if result.Success {
		metrics.IncreaseCalculationsMetric(company, metrics.OutcomeSuccess)
		if useCache && o.cache != nil {
			o.cache.Set(req, result, 0)
		}
	} else {
		metrics.IncreaseCalculationsMetric(company, metrics.OutcomeFailure)
		o.log.Warnf("[%s] %s", company, result.Error)
	}

	o.record(ctx, req, result)
	return result
}

func (o *Orchestrator) record(ctx context.Context, req quote.CalculationRequest, result quote.ScraperResult) {
	if o.recorder == nil {
		return
	}
	if err := o.recorder.Record(ctx, req, result); err != nil {
		o.log.Warnf("[%s] Could not record calculation: %v", req.InsuranceCompany, err)
	}
}

// scrape runs w, turning a panic into a failed result.
func (o *Orchestrator) scrape(ctx context.Context, w insurers.Worker, req quote.CalculationRequest) (result quote.ScraperResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			o.log.Errorf("[%s] Scraper panicked: %v", w.Name(), r)
			result = quote.Failed(fmt.Sprintf("unexpected error: %v", r), time.Since(start))
		}
	}()
	result = w.Scrape(ctx, req)
	result.Cached = false
	if result.Success && result.Quote == nil {
		result = quote.Failed("unexpected error: scraper reported success without a quote", result.ExecutionTime.Duration())
	}
	return result
}

// CalculateMany calculates base for every company concurrently and waits for
// all of them. Result i belongs to companies[i]; an empty list means every
// registered company. One company's failure never affects another's result.
func (o *Orchestrator) CalculateMany(ctx context.Context, base quote.CalculationRequest, companies []string) []quote.ScraperResult {
	if len(companies) == 0 {
		companies = o.ListAvailableCompanies()
	}
	o.log.Infof("Calculating for %d companies: %s", len(companies), strings.Join(companies, ", "))

	results := make([]quote.ScraperResult, len(companies))
	if len(companies) == 0 {
		return results
	}

	concurrency := o.concurrency
	if concurrency <= 0 || concurrency > len(companies) {
		concurrency = len(companies)
	}

	jobs := make(chan int, len(companies))
	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = o.calculateOne(ctx, base.ForCompany(companies[idx]))
			}
		}()
	}
	for i := range companies {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	o.log.Infof("Calculated %d/%d companies successfully", succeeded, len(results))
	return results
}

func (o *Orchestrator) calculateOne(ctx context.Context, req quote.CalculationRequest) (result quote.ScraperResult) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Errorf("[%s] Calculation panicked: %v", req.InsuranceCompany, r)
			result = quote.Failed(fmt.Sprintf("unexpected error: %v", r), 0)
		}
	}()
	return o.Calculate(ctx, req, true)
}

// ClearCache drops every cached result.
func (o *Orchestrator) ClearCache() {
	if o.cache == nil {
		return
	}
	o.cache.Flush()
	o.log.Infof("Cache cleared")
}

func (o *Orchestrator) CacheStats() cache.Stats {
	if o.cache == nil {
		return cache.Stats{}
	}
	return o.cache.Stats()
}

// CloseAll releases every worker's session and stops the cache sweeper.
// Close errors and panics are logged, not returned.
func (o *Orchestrator) CloseAll() {
	for _, name := range o.order {
		o.closeWorker(name)
	}
	if o.cache != nil {
		o.cache.Close()
	}
	o.log.Infof("All scrapers closed")
}

func (o *Orchestrator) closeWorker(name string) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Errorf("[%s] Scraper panicked while closing: %v", name, r)
		}
	}()
	if err := o.workers[name].Close(); err != nil {
		o.log.Warnf("[%s] Error closing scraper: %v", name, err)
	}
}
