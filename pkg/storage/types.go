package storage

import "time"

// Calculation is one settled calculation as kept in the history.
type Calculation struct {
	ID         int64
	RunID      string
	OccurredAt time.Time

	Company    string
	RequestKey string
	Vehicle    string

	Success    bool
	Cached     bool
	TotalPrice *float64
	OCPrice    *float64
	ACPrice    *float64
	Error      string
	Duration   time.Duration
}

// CompanyStats aggregates the history of one company.
type CompanyStats struct {
	Company      string `json:"company"`
	Calculations int    `json:"calculations"`
	Successes    int    `json:"successes"`
	Cached       int    `json:"cached"`
	// Price figures cover successful calculations only.
	MinPrice    *float64      `json:"minPrice,omitempty"`
	AvgPrice    *float64      `json:"avgPrice,omitempty"`
	AvgDuration time.Duration `json:"avgDurationNs"`
	LastRun     time.Time     `json:"lastRun"`
}
