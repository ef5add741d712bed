package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/quotescope/quotescope/pkg/cache"
	"github.com/quotescope/quotescope/pkg/insurers"
	"github.com/quotescope/quotescope/pkg/quote"
)

type stubWorker struct {
	name   string
	price  float64
	fail   string
	panics bool
	delay  time.Duration

	calls       atomic.Int32
	closed      atomic.Int32
	closeErr    error
	closePanics bool
}

func (w *stubWorker) Name() string { return w.name }

func (w *stubWorker) Scrape(ctx context.Context, req quote.CalculationRequest) quote.ScraperResult {
	w.calls.Add(1)

	if w.delay > 0 {
		time.Sleep(w.delay)
	}
	if w.panics {
		panic("selector exploded")
	}
	if w.fail != "" {
		return quote.Failed(w.fail, time.Millisecond)
	}
	return quote.Succeeded(quote.Quote{Company: strings.ToUpper(w.name), TotalPrice: w.price, Currency: quote.Currency}, time.Millisecond)
}

func (w *stubWorker) Close() error {
	w.closed.Add(1)
	if w.closePanics {
		panic("session already dead")
	}
	return w.closeErr
}

type recorder struct {
	mu      sync.Mutex
	results map[string]quote.ScraperResult
	all     []quote.ScraperResult
}

func (r *recorder) Record(_ context.Context, req quote.CalculationRequest, res quote.ScraperResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.results == nil {
		r.results = map[string]quote.ScraperResult{}
	}
	r.results[req.InsuranceCompany] = res
	r.all = append(r.all, res)
	return nil
}

func baseRequest() quote.CalculationRequest {
	return quote.CalculationRequest{
		Vehicle:          quote.VehicleData{Brand: "Toyota", Model: "Corolla", Year: 2018},
		Driver:           quote.DriverData{Age: 35, DrivingLicenseDate: time.Date(2008, 5, 15, 0, 0, 0, 0, time.UTC)},
		InsuranceCompany: "pzu",
	}
}

func newTestOrchestrator(t *testing.T, workers []insurers.Worker, opts ...Option) (*Orchestrator, *cache.Cache) {
	t.Helper()
	c := cache.New(cache.WithSweepInterval(0))
	t.Cleanup(c.Close)
	return New(c, workers, opts...), c
}

func TestListAvailableCompanies(t *testing.T) {
	first := &stubWorker{name: "PZU", price: 1}
	dup := &stubWorker{name: "pzu", price: 2}
	o, _ := newTestOrchestrator(t, []insurers.Worker{
		first,
		&stubWorker{name: "uniqa"},
		dup,
	})

	got := o.ListAvailableCompanies()
	if strings.Join(got, ",") != "pzu,uniqa" {
		t.Fatalf("companies = %v", got)
	}
	got[0] = "mutated"
	if o.ListAvailableCompanies()[0] != "pzu" {
		t.Fatalf("ListAvailableCompanies exposes internal state")
	}

	res := o.Calculate(context.Background(), baseRequest(), false)
	if res.Quote.TotalPrice != 2 {
		t.Fatalf("later registration must replace the earlier one")
	}
}

func TestCalculateUnknownCompany(t *testing.T) {
	o, c := newTestOrchestrator(t, []insurers.Worker{&stubWorker{name: "pzu"}, &stubWorker{name: "uniqa"}})
	req := baseRequest().ForCompany("Allianz")

	res := o.Calculate(context.Background(), req, true)
	if res.Success {
		t.Fatalf("unknown company succeeded")
	}
	want := `no scraper registered for "allianz"; available companies: pzu, uniqa`
	if res.Error != want {
		t.Fatalf("error = %q, want %q", res.Error, want)
	}
	if !IsUnknownCompany(res) {
		t.Fatalf("IsUnknownCompany = false")
	}
	if s := c.Stats(); s.Entries != 0 || s.Misses != 0 {
		t.Fatalf("unknown company touched the cache: %+v", s)
	}
}

func TestCalculateUsesCache(t *testing.T) {
	w := &stubWorker{name: "pzu", price: 1500}
	o, c := newTestOrchestrator(t, []insurers.Worker{w})
	ctx := context.Background()

	first := o.Calculate(ctx, baseRequest(), true)
	if !first.Success || first.Cached {
		t.Fatalf("first call: %+v", first)
	}
	second := o.Calculate(ctx, baseRequest(), true)
	if !second.Success || !second.Cached || second.Quote.TotalPrice != 1500 {
		t.Fatalf("second call: %+v", second)
	}
	if n := w.calls.Load(); n != 1 {
		t.Fatalf("worker called %d times, want 1", n)
	}

	third := o.Calculate(ctx, baseRequest(), false)
	if third.Cached || w.calls.Load() != 2 {
		t.Fatalf("useCache=false must bypass the cache")
	}

	o.ClearCache()
	if c.Stats().Entries != 0 {
		t.Fatalf("ClearCache left entries")
	}
	if s := o.CacheStats(); s.Hits != 1 {
		t.Fatalf("CacheStats hits = %d, want 1", s.Hits)
	}
}

func TestCalculateDoesNotCacheFailures(t *testing.T) {
	w := &stubWorker{name: "pzu", fail: "PZU scraping failed: timeout"}
	o, c := newTestOrchestrator(t, []insurers.Worker{w})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res := o.Calculate(ctx, baseRequest(), true)
		if res.Success || res.Error != "PZU scraping failed: timeout" {
			t.Fatalf("call %d: %+v", i, res)
		}
	}
	if w.calls.Load() != 2 {
		t.Fatalf("failed result was served from cache")
	}
	if c.Stats().Entries != 0 {
		t.Fatalf("failure was cached")
	}
}

func TestCalculateRecoversPanics(t *testing.T) {
	o, _ := newTestOrchestrator(t, []insurers.Worker{&stubWorker{name: "pzu", panics: true}})
	res := o.Calculate(context.Background(), baseRequest(), true)
	if res.Success || !strings.HasPrefix(res.Error, "unexpected error: ") {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestCalculateRecords(t *testing.T) {
	rec := &recorder{}
	o, _ := newTestOrchestrator(t, []insurers.Worker{&stubWorker{name: "pzu", price: 900}}, WithRecorder(rec))
	ctx := context.Background()

	o.Calculate(ctx, baseRequest(), true)
	o.Calculate(ctx, baseRequest().ForCompany("nobody"), true)

	if len(rec.results) != 1 || !rec.results["pzu"].Success {
		t.Fatalf("recorded = %v", rec.results)
	}
}

func TestCalculateRecordsCacheHits(t *testing.T) {
	rec := &recorder{}
	w := &stubWorker{name: "pzu", price: 900}
	o, _ := newTestOrchestrator(t, []insurers.Worker{w}, WithRecorder(rec))
	ctx := context.Background()

	o.Calculate(ctx, baseRequest(), true)
	o.Calculate(ctx, baseRequest(), true)

	if w.calls.Load() != 1 {
		t.Fatalf("worker calls = %d, want 1", w.calls.Load())
	}
	if len(rec.all) != 2 {
		t.Fatalf("recorded %d calculations, want 2", len(rec.all))
	}
	if rec.all[0].Cached || !rec.all[1].Cached {
		t.Fatalf("cached flags = %v, %v; want false, true", rec.all[0].Cached, rec.all[1].Cached)
	}
}

func TestCalculateManyKeepsOrderAndIsolatesFailures(t *testing.T) {
	o, _ := newTestOrchestrator(t, []insurers.Worker{
		&stubWorker{name: "pzu", price: 1800, delay: 30 * time.Millisecond},
		&stubWorker{name: "generali", panics: true},
		&stubWorker{name: "uniqa", price: 1200},
		&stubWorker{name: "link4", fail: "Link4 scraping failed: no price"},
	})

	companies := []string{"uniqa", "ghost", "pzu", "generali", "link4"}
	results := o.CalculateMany(context.Background(), baseRequest(), companies)
	if len(results) != len(companies) {
		t.Fatalf("want %d results, got %d", len(companies), len(results))
	}

	if !results[0].Success || results[0].Quote.TotalPrice != 1200 {
		t.Errorf("uniqa: %+v", results[0])
	}
	if !IsUnknownCompany(results[1]) {
		t.Errorf("ghost: %+v", results[1])
	}
	if !results[2].Success || results[2].Quote.TotalPrice != 1800 {
		t.Errorf("pzu: %+v", results[2])
	}
	if results[3].Success || !strings.HasPrefix(results[3].Error, "unexpected error") {
		t.Errorf("generali: %+v", results[3])
	}
	if results[4].Success || results[4].Error != "Link4 scraping failed: no price" {
		t.Errorf("link4: %+v", results[4])
	}
}

func TestCalculateManyDefaultsToAllCompanies(t *testing.T) {
	a := &stubWorker{name: "pzu", price: 1}
	b := &stubWorker{name: "tuz", price: 2}
	o, _ := newTestOrchestrator(t, []insurers.Worker{a, b})

	results := o.CalculateMany(context.Background(), baseRequest(), nil)
	if len(results) != 2 || results[0].Quote.TotalPrice != 1 || results[1].Quote.TotalPrice != 2 {
		t.Fatalf("results = %+v", results)
	}

	// The second batch is served from the cache.
	o.CalculateMany(context.Background(), baseRequest(), nil)
	if a.calls.Load() != 1 || b.calls.Load() != 1 {
		t.Fatalf("batch did not use the cache: %d %d", a.calls.Load(), b.calls.Load())
	}
}

type inflight struct {
	mu      sync.Mutex
	current int
	max     int
}

type countingWorker struct {
	name string
	c    *inflight
}

func (w *countingWorker) Name() string { return w.name }

func (w *countingWorker) Scrape(ctx context.Context, req quote.CalculationRequest) quote.ScraperResult {
	w.c.mu.Lock()
	w.c.current++
	if w.c.current > w.c.max {
		w.c.max = w.c.current
	}
	w.c.mu.Unlock()

	time.Sleep(40 * time.Millisecond)

	w.c.mu.Lock()
	w.c.current--
	w.c.mu.Unlock()
	return quote.Succeeded(quote.Quote{Company: w.name, TotalPrice: 1, Currency: quote.Currency}, 0)
}

func (w *countingWorker) Close() error { return nil }

func TestCalculateManyConcurrency(t *testing.T) {
	tests := []struct {
		name        string
		concurrency int
		wantMax     int
	}{
		{"bounded", 2, 2},
		{"serial", 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &inflight{}
			var workers []insurers.Worker
			for _, n := range []string{"a", "b", "c", "d"} {
				workers = append(workers, &countingWorker{name: n, c: c})
			}
			o, _ := newTestOrchestrator(t, workers, WithConcurrency(tt.concurrency))

			results := o.CalculateMany(context.Background(), baseRequest(), nil)
			for i, r := range results {
				if !r.Success {
					t.Fatalf("result %d failed: %s", i, r.Error)
				}
			}
			if c.max > tt.wantMax {
				t.Fatalf("max in flight = %d, want at most %d", c.max, tt.wantMax)
			}
		})
	}
}

func TestCloseAll(t *testing.T) {
	a := &stubWorker{name: "pzu"}
	b := &stubWorker{name: "uniqa", closeErr: errors.New("already gone")}
	o, _ := newTestOrchestrator(t, []insurers.Worker{a, b})

	o.CloseAll()
	if a.closed.Load() != 1 || b.closed.Load() != 1 {
		t.Fatalf("close counts = %d, %d", a.closed.Load(), b.closed.Load())
	}
}

func TestCloseAllSurvivesPanickingClose(t *testing.T) {
	a := &stubWorker{name: "pzu", closePanics: true}
	b := &stubWorker{name: "uniqa"}
	o, _ := newTestOrchestrator(t, []insurers.Worker{a, b})

	func() {
		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("CloseAll panicked: %v", r)
			}
		}()
		o.CloseAll()
	}()
	if b.closed.Load() != 1 {
		t.Fatalf("uniqa close count = %d, want 1", b.closed.Load())
	}
}
