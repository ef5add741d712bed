package insurers

import (
	"errors"

	"github.com/tidwall/gjson"

	"github.com/quotescope/quotescope/pkg/quote"
)

// ErrNoPrice means the result page carried no recognizable price at all.
var ErrNoPrice = errors.New("no price could be extracted")

// PriceStrategy locates one price either by CSS selector on an HTML result
// page or by gjson path on a JSON result payload.
type PriceStrategy struct {
	Name     string
	Selector string
	JSONPath string
}

// PricePlan lists the strategies for every price a result page may carry.
type PricePlan struct {
	OC        []PriceStrategy
	AC        []PriceStrategy
	Total     []PriceStrategy
	Annual    []PriceStrategy
	Quarterly []PriceStrategy
	Monthly   []PriceStrategy
}

// InfoPlan copies free text (promotions, discounts) into the quote.
type InfoPlan struct {
	Key        string
	Strategies []Strategy
}

type document interface {
	Text(selector string) (string, bool)
	JSON(path string) (gjson.Result, bool)
}

// extractPrice returns the first positive price found by strategies, and the
// name of the strategy that produced it.
func extractPrice(doc document, strategies []PriceStrategy) (*float64, string) {
	for _, s := range strategies {
		if s.JSONPath != "" {
			if r, ok := doc.JSON(s.JSONPath); ok {
				if r.Type == gjson.Number && r.Float() > 0 {
					v := r.Float()
					return &v, s.Name
				}
				if v, ok := quote.ParsePrice(r.String()); ok {
					return &v, s.Name
				}
			}
		}
		if s.Selector != "" {
			if text, ok := doc.Text(s.Selector); ok {
				if v, ok := quote.ParsePrice(text); ok {
					return &v, s.Name
				}
			}
		}
	}
	return nil, ""
}

// prices is the raw outcome of running a PricePlan.
type prices struct {
	OC, AC, Total              *float64
	Annual, Quarterly, Monthly *float64
	Matched                    map[string]string
}

func extractPrices(doc document, plan PricePlan, acIncluded bool) (prices, error) {
	p := prices{Matched: map[string]string{}}
	pick := func(field string, strategies []PriceStrategy) *float64 {
		v, name := extractPrice(doc, strategies)
		if v != nil {
			p.Matched[field] = name
		}
		return v
	}

	p.OC = pick("oc", plan.OC)
	if acIncluded {
		p.AC = pick("ac", plan.AC)
	}
	p.Total = pick("total", plan.Total)
	p.Annual = pick("annual", plan.Annual)
	p.Quarterly = pick("quarterly", plan.Quarterly)
	p.Monthly = pick("monthly", plan.Monthly)

	if p.Total == nil && (p.OC != nil || p.AC != nil) {
		var sum float64
		if p.OC != nil {
			sum += *p.OC
		}
		if p.AC != nil {
			sum += *p.AC
		}
		p.Total = &sum
		p.Matched["total"] = "sum of sub-prices"
	}
	if p.Total == nil {
		return p, ErrNoPrice
	}
	return p, nil
}

func (p prices) paymentOptions() *quote.PaymentOptions {
	po := &quote.PaymentOptions{Annual: p.Annual, Quarterly: p.Quarterly, Monthly: p.Monthly}
	if po.Empty() {
		return nil
	}
	if po.Annual == nil {
		total := *p.Total
		po.Annual = &total
	}
	return po
}
