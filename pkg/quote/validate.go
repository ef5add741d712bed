package quote

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

// RequestPayload is the loosely typed wire form of a calculation request, as
// accepted by the HTTP API and the CLI. It is validated once and converted
// into a CalculationRequest; nothing past the edge sees it.
type RequestPayload struct {
	Vehicle          VehiclePayload `json:"vehicle" validate:"required"`
	Driver           DriverPayload  `json:"driver" validate:"required"`
	Options          OptionsPayload `json:"options"`
	InsuranceCompany string         `json:"insuranceCompany,omitempty" validate:"omitempty,max=64"`
	Companies        []string       `json:"companies,omitempty" validate:"omitempty,dive,required,max=64"`
}

type VehiclePayload struct {
	RegistrationNumber    string  `json:"registrationNumber,omitempty" validate:"omitempty,max=16"`
	Brand                 string  `json:"brand" validate:"required,max=64"`
	Model                 string  `json:"model" validate:"required,max=64"`
	Year                  int     `json:"year" validate:"required,min=1900,notfuture"`
	EngineCapacity        *int    `json:"engineCapacity,omitempty" validate:"omitempty,gt=0"`
	FuelType              string  `json:"fuelType,omitempty" validate:"omitempty,fueltype"`
	FirstRegistrationDate *string `json:"firstRegistrationDate,omitempty" validate:"omitempty,isodate"`
}

type DriverPayload struct {
	Age                      int    `json:"age" validate:"required,min=18,max=100"`
	DrivingLicenseDate       string `json:"drivingLicenseDate" validate:"required,isodate"`
	Pesel                    string `json:"pesel,omitempty" validate:"omitempty,len=11,numeric"`
	PreviousInsuranceCompany string `json:"previousInsuranceCompany,omitempty" validate:"omitempty,max=64"`
	AccidentHistory          *int   `json:"accidentHistory,omitempty" validate:"omitempty,min=0"`
}

type OptionsPayload struct {
	OCOnly     bool     `json:"ocOnly"`
	ACIncluded bool     `json:"acIncluded"`
	Assistance bool     `json:"assistance"`
	NNW        bool     `json:"nnw"`
	ACValue    *float64 `json:"acValue,omitempty" validate:"omitempty,gt=0"`
}

var fuelAliases = map[string]FuelType{
	"petrol":      FuelPetrol,
	"benzyna":     FuelPetrol,
	"diesel":      FuelDiesel,
	"lpg":         FuelLPG,
	"electric":    FuelElectric,
	"elektryczny": FuelElectric,
	"hybrid":      FuelHybrid,
	"hybryda":     FuelHybrid,
}

// ParseFuelType maps English and Polish fuel names onto FuelType.
func ParseFuelType(s string) (FuelType, bool) {
	f, ok := fuelAliases[strings.ToLower(strings.TrimSpace(s))]
	return f, ok
}

// Validator checks RequestPayloads.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

func NewValidator() *Validator {
	v := &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}
	v.validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.validate.RegisterValidation("notfuture", func(fl validator.FieldLevel) bool {
		return int(fl.Field().Int()) <= v.now().Year()+1
	})
	_ = v.validate.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := parseDate(fl.Field().String())
		return err == nil
	})
	_ = v.validate.RegisterValidation("fueltype", func(fl validator.FieldLevel) bool {
		_, ok := ParseFuelType(fl.Field().String())
		return ok
	})
	v.validate.RegisterStructValidation(func(sl validator.StructLevel) {
		opts := sl.Current().Interface().(OptionsPayload)
		if opts.ACIncluded && opts.ACValue == nil {
			sl.ReportError(opts.ACValue, "acValue", "ACValue", "required_with_ac", "")
		}
	}, OptionsPayload{})
	return v
}

// Validate returns nil or an error listing every violated rule.
func (v *Validator) Validate(p RequestPayload) error {
	err := v.validate.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fieldPath(fe.Namespace()), fe.Tag()))
	}
	return fmt.Errorf("invalid request: %s", strings.Join(msgs, "; "))
}

// parseDate accepts a plain calendar date or a full RFC 3339 timestamp, the
// latter being what browsers produce when serializing a Date.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// Request validates p and converts it into a typed CalculationRequest.
// The company field is taken from InsuranceCompany and normalized.
func (v *Validator) Request(p RequestPayload) (CalculationRequest, error) {
	if err := v.Validate(p); err != nil {
		return CalculationRequest{}, err
	}

	license, err := parseDate(p.Driver.DrivingLicenseDate)
	if err != nil {
		return CalculationRequest{}, fmt.Errorf("invalid request: driver.drivingLicenseDate: %w", err)
	}

	req := CalculationRequest{
		Vehicle: VehicleData{
			Brand:              strings.TrimSpace(p.Vehicle.Brand),
			Model:              strings.TrimSpace(p.Vehicle.Model),
			Year:               p.Vehicle.Year,
			RegistrationNumber: strings.ToUpper(strings.ReplaceAll(p.Vehicle.RegistrationNumber, " ", "")),
			EngineCapacity:     p.Vehicle.EngineCapacity,
		},
		Driver: DriverData{
			Age:                p.Driver.Age,
			DrivingLicenseDate: license,
			NationalID:         p.Driver.Pesel,
			PreviousInsurer:    p.Driver.PreviousInsuranceCompany,
		},
		Options: InsuranceOptions{
			OCOnly:     p.Options.OCOnly,
			ACIncluded: p.Options.ACIncluded,
			Assistance: p.Options.Assistance,
			NNW:        p.Options.NNW,
			ACValue:    p.Options.ACValue,
		},
		InsuranceCompany: NormalizeCompany(p.InsuranceCompany),
	}
	if p.Vehicle.FuelType != "" {
		req.Vehicle.FuelType, _ = ParseFuelType(p.Vehicle.FuelType)
	}
	if p.Vehicle.FirstRegistrationDate != nil {
		t, err := parseDate(*p.Vehicle.FirstRegistrationDate)
		if err != nil {
			return CalculationRequest{}, fmt.Errorf("invalid request: vehicle.firstRegistrationDate: %w", err)
		}
		req.Vehicle.FirstRegistrationDate = &t
	}
	if p.Driver.AccidentHistory != nil {
		req.Driver.AccidentCount = *p.Driver.AccidentHistory
	}
	return req, nil
}

// NormalizedCompanies returns the company list of p, normalized, in input order.
func (p RequestPayload) NormalizedCompanies() []string {
	out := make([]string, 0, len(p.Companies))
	for _, c := range p.Companies {
		out = append(out, NormalizeCompany(c))
	}
	return out
}
