package insurers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/quotescope/quotescope/pkg/browser"
	"github.com/quotescope/quotescope/pkg/logger"
	"github.com/quotescope/quotescope/pkg/quote"
)

// CalculatorWorker drives one insurer calculator described by a Profile.
type CalculatorWorker struct {
	profile Profile
	cfg     Config
	log     logger.Logger

	// run serializes Scrape calls so a session never serves two requests.
	run sync.Mutex

	mu      sync.Mutex
	session *browser.Browser
	opts    browser.Options
}

// NewCalculatorWorker builds a worker for profile. The browser session is
// launched lazily on the first Scrape.
func NewCalculatorWorker(profile Profile, cfg Config) *CalculatorWorker {
	log := logger.OrNop(cfg.Log)
	if profile.DisplayName == "" {
		profile.DisplayName = strings.ToUpper(profile.Company)
	}
	if profile.Company == "" {
		profile.Company = strings.ToLower(profile.DisplayName)
	}
	profile.Company = quote.NormalizeCompany(profile.Company)

	w := &CalculatorWorker{profile: profile, cfg: cfg, log: log}
	w.opts = browser.Options{Proxy: cfg.Proxy}
	if cfg.RestrictDomains {
		w.opts.AllowedDomains = profile.Domains()
	}
	return w
}

func (w *CalculatorWorker) Name() string { return w.profile.Company }

// Profile returns the calculator description the worker runs.
func (w *CalculatorWorker) Profile() Profile { return w.profile }

func (w *CalculatorWorker) browser() (*browser.Browser, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.session != nil && !w.session.Closed() {
		return w.session, nil
	}
	b, err := browser.Launch(w.opts)
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	w.session = b
	return b, nil
}

// Close ends the browser session, aborting any run in flight. Closing a
// worker without a session does nothing.
func (w *CalculatorWorker) Close() error {
	w.mu.Lock()
	b := w.session
	w.session = nil
	w.mu.Unlock()

	if b == nil {
		return nil
	}
	if err := b.Close(); err != nil {
		return err
	}
	w.log.Debugf("[%s] Browser session closed", w.profile.DisplayName)
	return nil
}

// Scrape runs the calculator for req.
func (w *CalculatorWorker) Scrape(ctx context.Context, req quote.CalculationRequest) (result quote.ScraperResult) {
	start := time.Now()

	w.run.Lock()
	defer w.run.Unlock()

	var page *browser.Page
	defer func() {
		if r := recover(); r != nil {
			result = w.fail(page, fmt.Errorf("unexpected panic: %v", r), time.Since(start))
		}
		if page != nil {
			page.Close()
		}
	}()

	w.log.Infof("[%s] Starting calculation", w.profile.DisplayName)

	b, err := w.browser()
	if err != nil {
		return w.fail(nil, err, time.Since(start))
	}
	page, err = b.NewPage()
	if err != nil {
		return w.fail(nil, err, time.Since(start))
	}

	q, err := w.calculate(ctx, page, req)
	took := time.Since(start)
	if err != nil {
		return w.fail(page, err, took)
	}
	w.log.Infof("[%s] Calculation finished in %s: %.2f %s", w.profile.DisplayName, took.Round(time.Millisecond), q.TotalPrice, q.Currency)
	return quote.Succeeded(q, took)
}

func (w *CalculatorWorker) fail(page *browser.Page, err error, took time.Duration) quote.ScraperResult {
	if errors.Is(err, browser.ErrClosed) || errors.Is(err, context.Canceled) {
		err = fmt.Errorf("session closed during calculation: %w", err)
	}
	w.log.Warnf("[%s] Calculation failed: %v", w.profile.DisplayName, err)
	if page != nil {
		w.snapshot(page)
	}
	return quote.Failed(fmt.Sprintf("%s scraping failed: %v", w.profile.DisplayName, err), took)
}

func (w *CalculatorWorker) timeout(cfg, profile, def time.Duration) time.Duration {
	switch {
	case cfg > 0:
		return cfg
	case profile > 0:
		return profile
	}
	return def
}

func (w *CalculatorWorker) calculate(ctx context.Context, page *browser.Page, req quote.CalculationRequest) (quote.Quote, error) {
	p := w.profile
	name := p.DisplayName
	loadTimeout := w.timeout(w.cfg.LoadTimeout, p.LoadTimeout, DefaultLoadTimeout)
	stepTimeout := w.timeout(w.cfg.StepTimeout, 0, DefaultStepTimeout)
	resultTimeout := w.timeout(w.cfg.ResultTimeout, p.ResultTimeout, DefaultResultTimeout)

	if err := w.open(ctx, page, loadTimeout); err != nil {
		return quote.Quote{}, err
	}

	if len(p.Start) > 0 {
		stepCtx, cancel := context.WithTimeout(ctx, stepTimeout)
		_, err := clickFirst(stepCtx, page, p.Start, w.log, name, "start")
		cancel()
		if err != nil && !errors.Is(err, errNoMatch) {
			return quote.Quote{}, fmt.Errorf("opening calculator form: %w", err)
		}
		if errors.Is(err, errNoMatch) {
			w.log.Debugf("[%s] No start button, assuming the form is already shown", name)
		}
	}

	if len(p.FormReady) > 0 {
		if _, err := page.WaitFor(ctx, selectors(p.FormReady), stepTimeout); err != nil {
			return quote.Quote{}, fmt.Errorf("calculator form did not load: %w", err)
		}
	}

	if err := w.fillVehicle(ctx, page, req, stepTimeout); err != nil {
		return quote.Quote{}, err
	}
	for _, plan := range append(append([]FieldPlan{}, p.Driver...), p.Options...) {
		if _, err := applyPlan(page, plan, req, w.log, name); err != nil {
			return quote.Quote{}, err
		}
	}

	w.log.Debugf("[%s] Submitting calculation", name)
	submitCtx, cancel := context.WithTimeout(ctx, resultTimeout)
	defer cancel()
	if _, err := clickFirst(submitCtx, page, p.Submit, w.log, name, "submit"); err != nil {
		if errors.Is(err, errNoMatch) {
			return quote.Quote{}, fmt.Errorf("submit control not found")
		}
		return quote.Quote{}, fmt.Errorf("submitting calculation: %w", err)
	}

	if !page.IsJSON() && len(p.Result) > 0 {
		matched, err := page.WaitFor(submitCtx, selectors(p.Result), resultTimeout)
		if err != nil {
			return quote.Quote{}, fmt.Errorf("no result within %s: %w", resultTimeout, err)
		}
		w.log.Debugf("[%s] Result indicator %q found", name, matched)
	}

	return w.buildQuote(page, req)
}

func (w *CalculatorWorker) open(ctx context.Context, page *browser.Page, timeout time.Duration) error {
	if len(w.profile.EntryURLs) == 0 {
		return fmt.Errorf("no calculator URL configured")
	}
	var errs []error
	for _, u := range w.profile.EntryURLs {
		loadCtx, cancel := context.WithTimeout(ctx, timeout)
		err := page.Navigate(loadCtx, u)
		cancel()
		if err == nil {
			w.log.Debugf("[%s] Calculator loaded from %s", w.profile.DisplayName, u)
			return nil
		}
		if errors.Is(err, browser.ErrClosed) || ctx.Err() != nil {
			return err
		}
		errs = append(errs, err)
	}
	return fmt.Errorf("unable to load calculator: %w", errors.Join(errs...))
}

func (w *CalculatorWorker) fillVehicle(ctx context.Context, page *browser.Page, req quote.CalculationRequest, stepTimeout time.Duration) error {
	p := w.profile
	name := p.DisplayName
	if p.Registration != nil && req.Vehicle.RegistrationNumber != "" {
		matched, err := applyPlan(page, *p.Registration, req, w.log, name)
		if err != nil {
			return err
		}
		if matched != "" {
			if len(p.RegistrationConfirm) == 0 {
				return nil
			}
			stepCtx, cancel := context.WithTimeout(ctx, stepTimeout)
			_, err := clickFirst(stepCtx, page, p.RegistrationConfirm, w.log, name, "registration lookup")
			cancel()
			if err == nil {
				return nil
			}
			if errors.Is(err, browser.ErrClosed) {
				return err
			}
			w.log.Debugf("[%s] Registration lookup failed, entering vehicle data manually: %v", name, err)
		} else {
			w.log.Debugf("[%s] Registration field not found, entering vehicle data manually", name)
		}
	}
	for _, plan := range p.Vehicle {
		if _, err := applyPlan(page, plan, req, w.log, name); err != nil {
			return err
		}
	}
	return nil
}

func (w *CalculatorWorker) buildQuote(page *browser.Page, req quote.CalculationRequest) (quote.Quote, error) {
	p := w.profile
	extracted, err := extractPrices(page, p.Prices, req.Options.ACIncluded)
	if err != nil {
		return quote.Quote{}, err
	}
	for field, strategy := range extracted.Matched {
		w.log.Debugf("[%s] %s price via strategy %q", p.DisplayName, field, strategy)
	}

	now := time.Now()
	validity := p.Validity
	if validity <= 0 {
		validity = quote.DefaultValidity
	}
	validUntil := now.Add(validity)

	info := map[string]string{}
	if p.Note != "" {
		info["note"] = p.Note
	}
	for k, v := range p.Extra {
		info[k] = v
	}
	for _, ip := range p.Info {
		for _, s := range ip.Strategies {
			if text, ok := page.Text(s.Selector); ok {
				info[ip.Key] = text
				break
			}
		}
	}
	if len(info) == 0 {
		info = nil
	}

	return quote.Quote{
		Company:        p.DisplayName,
		OCPrice:        extracted.OC,
		ACPrice:        extracted.AC,
		TotalPrice:     *extracted.Total,
		Currency:       quote.Currency,
		PaymentOptions: extracted.paymentOptions(),
		CalculatedAt:   now,
		ValidUntil:     &validUntil,
		AdditionalInfo: info,
	}, nil
}
