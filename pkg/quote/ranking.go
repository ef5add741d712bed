package quote

import "sort"

// Summary aggregates a set of successful quotes.
type Summary struct {
	Count         int     `json:"count"`
	Cheapest      *Quote  `json:"cheapest,omitempty"`
	MostExpensive *Quote  `json:"mostExpensive,omitempty"`
	Savings       float64 `json:"savings"`
	Average       float64 `json:"average"`
}

// Rank returns a copy of quotes sorted ascending by total price. Ties keep
// their input order.
func Rank(quotes []Quote) []Quote {
	out := make([]Quote, len(quotes))
	copy(out, quotes)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalPrice < out[j].TotalPrice
	})
	return out
}

// Summarize computes cheapest, most expensive, savings and average price.
// Savings is zero unless at least two quotes are present.
func Summarize(quotes []Quote) Summary {
	s := Summary{Count: len(quotes)}
	if len(quotes) == 0 {
		return s
	}
	ranked := Rank(quotes)
	cheapest := ranked[0]
	priciest := ranked[len(ranked)-1]
	s.Cheapest = &cheapest
	s.MostExpensive = &priciest

	if len(ranked) >= 2 {
		s.Savings = priciest.TotalPrice - cheapest.TotalPrice
	}

	var sum float64
	for _, q := range ranked {
		sum += q.TotalPrice
	}
	s.Average = sum / float64(len(ranked))
	return s
}

// SuccessfulQuotes collects the quotes of all successful results.
func SuccessfulQuotes(results []ScraperResult) []Quote {
	quotes := make([]Quote, 0, len(results))
	for _, r := range results {
		if r.Success && r.Quote != nil {
			quotes = append(quotes, *r.Quote)
		}
	}
	return quotes
}

// Split partitions results into successes and failures, keeping order.
func Split(results []ScraperResult) (successes, failures []ScraperResult) {
	successes = []ScraperResult{}
	failures = []ScraperResult{}
	for _, r := range results {
		if r.Success {
			successes = append(successes, r)
		} else {
			failures = append(failures, r)
		}
	}
	return successes, failures
}
