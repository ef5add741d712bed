package quote

import (
	"strings"
	"testing"
	"time"
)

func validPayload() RequestPayload {
	return RequestPayload{
		Vehicle: VehiclePayload{
			RegistrationNumber: " wx 12345 ",
			Brand:              "Toyota",
			Model:              "Corolla",
			Year:               2018,
			EngineCapacity:     Int(1600),
			FuelType:           "benzyna",
		},
		Driver: DriverPayload{
			Age:                35,
			DrivingLicenseDate: "2008-05-15",
		},
		Options:          OptionsPayload{ACIncluded: true, ACValue: Float(45000), Assistance: true},
		InsuranceCompany: " PZU ",
	}
}

func newTestValidator() *Validator {
	v := NewValidator()
	v.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return v
}

func TestRequestConvertsPayload(t *testing.T) {
	req, err := newTestValidator().Request(validPayload())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.InsuranceCompany != "pzu" {
		t.Errorf("company = %q, want pzu", req.InsuranceCompany)
	}
	if req.Vehicle.RegistrationNumber != "WX12345" {
		t.Errorf("registration = %q, want WX12345", req.Vehicle.RegistrationNumber)
	}
	if req.Vehicle.FuelType != FuelPetrol {
		t.Errorf("fuel = %q, want petrol", req.Vehicle.FuelType)
	}
	if want := time.Date(2008, 5, 15, 0, 0, 0, 0, time.UTC); !req.Driver.DrivingLicenseDate.Equal(want) {
		t.Errorf("license date = %v, want %v", req.Driver.DrivingLicenseDate, want)
	}
	if req.Driver.AccidentCount != 0 {
		t.Errorf("accidents = %d, want 0", req.Driver.AccidentCount)
	}
	if req.Options.ACValue == nil || *req.Options.ACValue != 45000 {
		t.Errorf("acValue not carried over: %v", req.Options.ACValue)
	}
}

func TestRequestAcceptsRFC3339Dates(t *testing.T) {
	p := validPayload()
	p.Driver.DrivingLicenseDate = "2008-05-15T00:00:00.000Z"
	first := "2018-03-01"
	p.Vehicle.FirstRegistrationDate = &first
	p.Driver.AccidentHistory = Int(2)

	req, err := newTestValidator().Request(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Driver.DrivingLicenseDate.Year() != 2008 {
		t.Errorf("license year = %d", req.Driver.DrivingLicenseDate.Year())
	}
	if req.Vehicle.FirstRegistrationDate == nil || req.Vehicle.FirstRegistrationDate.Year() != 2018 {
		t.Errorf("first registration not parsed: %v", req.Vehicle.FirstRegistrationDate)
	}
	if req.Driver.AccidentCount != 2 {
		t.Errorf("accidents = %d, want 2", req.Driver.AccidentCount)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *RequestPayload)
		want   string
	}{
		{"year too old", func(p *RequestPayload) { p.Vehicle.Year = 1899 }, "vehicle.year: min"},
		{"year in the future", func(p *RequestPayload) { p.Vehicle.Year = 2027 }, "vehicle.year: notfuture"},
		{"missing brand", func(p *RequestPayload) { p.Vehicle.Brand = "" }, "vehicle.brand: required"},
		{"unknown fuel", func(p *RequestPayload) { p.Vehicle.FuelType = "wood" }, "vehicle.fuelType: fueltype"},
		{"driver too young", func(p *RequestPayload) { p.Driver.Age = 17 }, "driver.age: min"},
		{"driver too old", func(p *RequestPayload) { p.Driver.Age = 101 }, "driver.age: max"},
		{"bad license date", func(p *RequestPayload) { p.Driver.DrivingLicenseDate = "15/05/2008" }, "driver.drivingLicenseDate: isodate"},
		{"short pesel", func(p *RequestPayload) { p.Driver.Pesel = "123" }, "driver.pesel: len"},
		{"negative accidents", func(p *RequestPayload) { p.Driver.AccidentHistory = Int(-1) }, "driver.accidentHistory: min"},
		{"ac without value", func(p *RequestPayload) { p.Options.ACValue = nil }, "options.acValue: required_with_ac"},
		{"non-positive ac value", func(p *RequestPayload) { p.Options.ACValue = Float(0) }, "options.acValue: gt"},
	}

	v := newTestValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPayload()
			tt.mutate(&p)
			err := v.Validate(p)
			if err == nil {
				t.Fatalf("expected validation error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
			if _, err := v.Request(p); err == nil {
				t.Fatalf("Request accepted an invalid payload")
			}
		})
	}
}

func TestRequestAcceptsOCOnlyWithAC(t *testing.T) {
	p := validPayload()
	p.Options.OCOnly = true

	req, err := newTestValidator().Request(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !req.Options.OCOnly || !req.Options.ACIncluded {
		t.Fatalf("options = %+v", req.Options)
	}
	if got := req.Options.Conflicts(); len(got) != 1 || !strings.Contains(got[0], "ocOnly") {
		t.Fatalf("Conflicts() = %q", got)
	}
	if got := (InsuranceOptions{ACIncluded: true}).Conflicts(); len(got) != 0 {
		t.Fatalf("Conflicts() without ocOnly = %q", got)
	}
}

func TestParseFuelType(t *testing.T) {
	tests := map[string]FuelType{
		"petrol":      FuelPetrol,
		"Benzyna":     FuelPetrol,
		"diesel":      FuelDiesel,
		"LPG":         FuelLPG,
		"elektryczny": FuelElectric,
		"hybryda":     FuelHybrid,
		" hybrid ":    FuelHybrid,
	}
	for in, want := range tests {
		got, ok := ParseFuelType(in)
		if !ok || got != want {
			t.Errorf("ParseFuelType(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}
	if _, ok := ParseFuelType("coal"); ok {
		t.Errorf("ParseFuelType accepted coal")
	}
}

func TestNormalizedCompanies(t *testing.T) {
	p := RequestPayload{Companies: []string{" PZU", "uniqa", "pzu"}}
	got := p.NormalizedCompanies()
	want := []string{"pzu", "uniqa", "pzu"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("got %v, want %v", got, want)
	}
}
