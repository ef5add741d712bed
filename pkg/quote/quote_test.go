package quote

import (
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestQuoteExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	until := now.Add(DefaultValidity)

	q := Quote{ValidUntil: &until}
	if q.Expired(now) {
		t.Fatalf("fresh quote reported expired")
	}
	if !q.Expired(until.Add(time.Second)) {
		t.Fatalf("stale quote not reported expired")
	}
	if (Quote{}).Expired(now) {
		t.Fatalf("quote without validity reported expired")
	}
}

func TestForCompany(t *testing.T) {
	base := CalculationRequest{InsuranceCompany: "pzu", Vehicle: VehicleData{Brand: "Skoda"}}
	r := base.ForCompany(" Link4 ")
	if r.InsuranceCompany != "link4" || r.Vehicle.Brand != "Skoda" {
		t.Fatalf("ForCompany = %+v", r)
	}
	if base.InsuranceCompany != "pzu" {
		t.Fatalf("ForCompany mutated its receiver")
	}
}

func TestPaymentOptionsEmpty(t *testing.T) {
	var nilOpts *PaymentOptions
	if !nilOpts.Empty() || !(&PaymentOptions{}).Empty() {
		t.Fatalf("empty options not reported empty")
	}
	if (&PaymentOptions{Monthly: Float(99)}).Empty() {
		t.Fatalf("monthly installment ignored")
	}
}

func TestScraperResultExecutionTimeJSON(t *testing.T) {
	res := Failed("timeout", 1500*time.Millisecond)
	raw, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"executionTime":1500`) {
		t.Fatalf("json = %s, want executionTime 1500", raw)
	}

	var back ScraperResult
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.ExecutionTime.Duration() != 1500*time.Millisecond {
		t.Fatalf("executionTime = %v, want 1.5s", back.ExecutionTime.Duration())
	}
}
