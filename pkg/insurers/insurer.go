package insurers

import (
	"context"
	"time"

	"github.com/quotescope/quotescope/pkg/logger"
	"github.com/quotescope/quotescope/pkg/quote"
)

// Worker obtains quotes from one insurer's online calculator.
//
// A Worker owns at most one browser session. Scrape calls on the same Worker
// are serialized; different Workers may run concurrently. Scrape never
// panics past its boundary or returns an error: failures are reported in the
// ScraperResult.
type Worker interface {
	// Name is the lower-case company identifier the worker is registered under.
	Name() string
	Scrape(ctx context.Context, req quote.CalculationRequest) quote.ScraperResult
	// Close releases the browser session. It is idempotent.
	Close() error
}

// Config carries the operational settings shared by all workers.
type Config struct {
	// ArtifactDir receives HTML snapshots of failed runs. Empty disables them.
	ArtifactDir string
	Proxy       string
	Log         logger.Logger

	// Zero values fall back to the profile's timeouts, then to the defaults.
	LoadTimeout   time.Duration
	StepTimeout   time.Duration
	ResultTimeout time.Duration

	// RestrictDomains keeps navigation on the insurer's registrable domains.
	RestrictDomains bool
}

const (
	DefaultLoadTimeout   = 30 * time.Second
	DefaultStepTimeout   = 10 * time.Second
	DefaultResultTimeout = 15 * time.Second
)
