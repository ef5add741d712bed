package quote

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Currency is the only currency insurers quote in.
const Currency = "PLN"

// DefaultValidity is how long a freshly computed quote stays valid.
const DefaultValidity = 30 * 24 * time.Hour

type FuelType string

const (
	FuelPetrol   FuelType = "petrol"
	FuelDiesel   FuelType = "diesel"
	FuelLPG      FuelType = "lpg"
	FuelElectric FuelType = "electric"
	FuelHybrid   FuelType = "hybrid"
)

// VehicleData describes the insured vehicle.
type VehicleData struct {
	Brand                 string     `json:"brand"`
	Model                 string     `json:"model"`
	Year                  int        `json:"year"`
	RegistrationNumber    string     `json:"registrationNumber,omitempty"`
	EngineCapacity        *int       `json:"engineCapacity,omitempty"`
	FuelType              FuelType   `json:"fuelType,omitempty"`
	FirstRegistrationDate *time.Time `json:"firstRegistrationDate,omitempty"`
}

// DriverData describes the main driver.
type DriverData struct {
	Age                int       `json:"age"`
	DrivingLicenseDate time.Time `json:"drivingLicenseDate"`
	NationalID         string    `json:"pesel,omitempty"`
	PreviousInsurer    string    `json:"previousInsuranceCompany,omitempty"`
	AccidentCount      int       `json:"accidentHistory"`
}

// InsuranceOptions selects the products to quote.
type InsuranceOptions struct {
	OCOnly     bool     `json:"ocOnly"`
	ACIncluded bool     `json:"acIncluded"`
	Assistance bool     `json:"assistance"`
	NNW        bool     `json:"nnw"`
	ACValue    *float64 `json:"acValue,omitempty"`
}

// Conflicts lists option combinations that are accepted but contradict each
// other, such as asking for OC only while also including AC.
func (o InsuranceOptions) Conflicts() []string {
	var out []string
	if o.OCOnly && o.ACIncluded {
		out = append(out, "ocOnly is set together with acIncluded; insurers will be asked for OC+AC")
	}
	return out
}

// CalculationRequest is the unit of work for a single insurer.
type CalculationRequest struct {
	Vehicle          VehicleData      `json:"vehicle"`
	Driver           DriverData       `json:"driver"`
	Options          InsuranceOptions `json:"options"`
	InsuranceCompany string           `json:"insuranceCompany"`
}

// ForCompany returns a copy of the request targeting company.
func (r CalculationRequest) ForCompany(company string) CalculationRequest {
	r.InsuranceCompany = NormalizeCompany(company)
	return r
}

// PaymentOptions is the installment breakdown some insurers return.
type PaymentOptions struct {
	Annual    *float64 `json:"annual,omitempty"`
	Quarterly *float64 `json:"quarterly,omitempty"`
	Monthly   *float64 `json:"monthly,omitempty"`
}

// Empty reports whether no installment was extracted.
func (p *PaymentOptions) Empty() bool {
	return p == nil || (p.Annual == nil && p.Quarterly == nil && p.Monthly == nil)
}

// Quote is one insurer's premium for one request. Quotes are never mutated
// after a worker returns them.
type Quote struct {
	Company        string            `json:"company"`
	OCPrice        *float64          `json:"ocPrice,omitempty"`
	ACPrice        *float64          `json:"acPrice,omitempty"`
	TotalPrice     float64           `json:"totalPrice"`
	Currency       string            `json:"currency"`
	PaymentOptions *PaymentOptions   `json:"paymentOptions,omitempty"`
	CalculatedAt   time.Time         `json:"calculatedAt"`
	ValidUntil     *time.Time        `json:"validUntil,omitempty"`
	AdditionalInfo map[string]string `json:"additionalInfo,omitempty"`
}

// Expired reports whether the quote is past its validity window.
func (q Quote) Expired(now time.Time) bool {
	return q.ValidUntil != nil && now.After(*q.ValidUntil)
}

// ScraperResult is the outcome of one calculation, successful or not.
type ScraperResult struct {
	Success       bool   `json:"success"`
	Quote         *Quote `json:"quote,omitempty"`
	Error         string `json:"error,omitempty"`
	ExecutionTime Millis `json:"executionTime"`
	// Cached is set by the orchestrator when the result came from the cache.
	Cached bool `json:"cached,omitempty"`
}

// Succeeded builds a successful result.
func Succeeded(q Quote, took time.Duration) ScraperResult {
	return ScraperResult{Success: true, Quote: &q, ExecutionTime: Millis(took)}
}

// Failed builds a failed result.
func Failed(msg string, took time.Duration) ScraperResult {
	return ScraperResult{Success: false, Error: msg, ExecutionTime: Millis(took)}
}

// Millis is a duration that travels as whole milliseconds in JSON.
type Millis time.Duration

func (m Millis) Duration() time.Duration { return time.Duration(m) }

func (m Millis) MarshalJSON() ([]byte, error) {
	return strconv.AppendInt(nil, time.Duration(m).Milliseconds(), 10), nil
}

func (m *Millis) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	ms, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("executionTime: %w", err)
	}
	*m = Millis(time.Duration(ms * float64(time.Millisecond)))
	return nil
}

// NormalizeCompany canonicalizes a company identifier for lookup and key derivation.
func NormalizeCompany(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
