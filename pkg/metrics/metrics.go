package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	quotescope = "quotescope"

	cacheLookupsTotal = "cache_lookups_total"
	cacheEntries      = "cache_entries"
	calculationsTotal = "calculations_total"
	scrapeDuration    = "scrape_duration_seconds"

	// Labels
	lookupResultLabel = "result"
	companyLabel      = "company"
	outcomeLabel      = "outcome"
)

const (
	CacheHit  = "hit"
	CacheMiss = "miss"

	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeCached  = "cached"
	OutcomeUnknown = "unknown_company"
)

/**
* Metrics definition
**/
var cacheLookupsMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: quotescope,
		Name:      cacheLookupsTotal,
		Help:      "number of result cache lookups by result",
	},
	[]string{lookupResultLabel},
)

var cacheEntriesMetric = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Subsystem: quotescope,
		Name:      cacheEntries,
		Help:      "number of entries currently held by the result cache",
	},
)

var calculationsMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: quotescope,
		Name:      calculationsTotal,
		Help:      "number of calculations by company and outcome",
	},
	[]string{companyLabel, outcomeLabel},
)

var scrapeDurationMetric = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Subsystem: quotescope,
		Name:      scrapeDuration,
		Help:      "duration of insurer calculator runs",
		Buckets:   []float64{1, 5, 10, 20, 30, 60, 120},
	},
	[]string{companyLabel, outcomeLabel},
)

func IncreaseCacheLookupMetric(result string) {
	cacheLookupsMetric.With(prometheus.Labels{lookupResultLabel: result}).Inc()
}

func UpdateCacheEntriesMetric(count int) {
	cacheEntriesMetric.Set(float64(count))
}

func IncreaseCalculationsMetric(company, outcome string) {
	calculationsMetric.With(prometheus.Labels{
		companyLabel: company,
		outcomeLabel: outcome,
	}).Inc()
}

func ObserveScrapeDuration(company string, success bool, took time.Duration) {
	outcome := OutcomeSuccess
	if !success {
		outcome = OutcomeFailure
	}
	scrapeDurationMetric.With(prometheus.Labels{
		companyLabel: company,
		outcomeLabel: outcome,
	}).Observe(took.Seconds())
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(cacheLookupsMetric)
	prometheus.MustRegister(cacheEntriesMetric)
	prometheus.MustRegister(calculationsMetric)
	prometheus.MustRegister(scrapeDurationMetric)
}
