package insurers

import (
	"errors"
	"testing"

	"github.com/tidwall/gjson"
)

type fakeDoc struct {
	text map[string]string
	json string
}

func (d fakeDoc) Text(selector string) (string, bool) {
	s, ok := d.text[selector]
	return s, ok && s != ""
}

func (d fakeDoc) JSON(path string) (gjson.Result, bool) {
	if d.json == "" {
		return gjson.Result{}, false
	}
	r := gjson.Get(d.json, path)
	return r, r.Exists()
}

var testPlan = PricePlan{
	OC:        []PriceStrategy{{Name: "oc json", JSONPath: "oc"}, {Name: "oc css", Selector: ".oc"}},
	AC:        []PriceStrategy{{Name: "ac css", Selector: ".ac"}},
	Total:     []PriceStrategy{{Name: "total css", Selector: ".total"}},
	Quarterly: []PriceStrategy{{Name: "quarterly css", Selector: ".q"}},
}

func TestExtractPrices(t *testing.T) {
	doc := fakeDoc{text: map[string]string{
		".oc":    "850,00 zł",
		".ac":    "1 200,00 zł",
		".total": "2 050,00 zł",
		".q":     "530 zł",
	}}

	p, err := extractPrices(doc, testPlan, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *p.OC != 850 || *p.AC != 1200 || *p.Total != 2050 {
		t.Fatalf("got oc=%v ac=%v total=%v", *p.OC, *p.AC, *p.Total)
	}
	if p.Matched["oc"] != "oc css" {
		t.Fatalf("oc matched by %q", p.Matched["oc"])
	}

	po := p.paymentOptions()
	if po == nil || *po.Quarterly != 530 || *po.Annual != 2050 {
		t.Fatalf("payment options = %+v", po)
	}
}

func TestExtractPricesSumsWithoutTotal(t *testing.T) {
	doc := fakeDoc{text: map[string]string{".oc": "800 zł", ".ac": "400 zł"}}

	p, err := extractPrices(doc, testPlan, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *p.Total != 1200 {
		t.Fatalf("total = %v, want 1200", *p.Total)
	}
	if p.paymentOptions() != nil {
		t.Fatalf("payment options without installments")
	}
}

func TestExtractPricesIgnoresACWhenNotRequested(t *testing.T) {
	doc := fakeDoc{text: map[string]string{".oc": "800 zł", ".ac": "400 zł"}}

	p, err := extractPrices(doc, testPlan, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.AC != nil {
		t.Fatalf("AC extracted though not included")
	}
	if *p.Total != 800 {
		t.Fatalf("total = %v, want 800", *p.Total)
	}
}

func TestExtractPricesJSON(t *testing.T) {
	doc := fakeDoc{
		json: `{"oc": 912.5, "total": "1 100,00 zł"}`,
		text: map[string]string{".total": "should not be used"},
	}
	plan := PricePlan{
		OC:    []PriceStrategy{{Name: "oc json", JSONPath: "oc"}},
		Total: []PriceStrategy{{Name: "total json", JSONPath: "total"}, {Name: "total css", Selector: ".total"}},
	}

	p, err := extractPrices(doc, plan, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *p.OC != 912.5 || *p.Total != 1100 {
		t.Fatalf("oc=%v total=%v", *p.OC, *p.Total)
	}
	if p.Matched["total"] != "total json" {
		t.Fatalf("total matched by %q", p.Matched["total"])
	}
}

func TestExtractPricesNoPrice(t *testing.T) {
	doc := fakeDoc{text: map[string]string{".total": "brak oferty", ".oc": "0,00 zł"}}
	if _, err := extractPrices(doc, testPlan, true); !errors.Is(err, ErrNoPrice) {
		t.Fatalf("want ErrNoPrice, got %v", err)
	}
}
