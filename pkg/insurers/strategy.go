package insurers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/quotescope/quotescope/pkg/logger"
	"github.com/quotescope/quotescope/pkg/quote"
)

var errNoMatch = errors.New("no strategy matched")

// Strategy is one named way of locating a page element.
type Strategy struct {
	Name     string
	Selector string
	// Format overrides the value derived for the field, e.g. to turn the
	// driver's age into a birth date for calculators that ask for one.
	Format func(req quote.CalculationRequest) string
}

// Field identifies a request attribute a calculator asks for.
type Field string

const (
	FieldRegistration Field = "registration"
	FieldBrand        Field = "brand"
	FieldModel        Field = "model"
	FieldYear         Field = "year"
	FieldEngine       Field = "engine"
	FieldFuel         Field = "fuel"
	FieldAge          Field = "age"
	FieldLicense      Field = "license"
	FieldAccidents    Field = "accidents"
	FieldACValue      Field = "acValue"

	// Checkbox fields.
	FieldOCOnly     Field = "ocOnly"
	FieldAC         Field = "ac"
	FieldAssistance Field = "assistance"
	FieldNNW        Field = "nnw"
)

// FieldPlan is the ordered strategy list for one field. The first strategy
// that matches and accepts the value wins. A plan that matches nothing is
// skipped unless it is Critical.
type FieldPlan struct {
	Field      Field
	Critical   bool
	Strategies []Strategy
}

func (f Field) isCheckbox() bool {
	switch f {
	case FieldOCOnly, FieldAC, FieldAssistance, FieldNNW:
		return true
	}
	return false
}

// valueFor derives the text a field is filled with. apply is false when the
// request has nothing for the field, in which case the plan is skipped.
func valueFor(f Field, req quote.CalculationRequest) (value string, apply bool) {
	v, d, o := req.Vehicle, req.Driver, req.Options
	switch f {
	case FieldRegistration:
		return v.RegistrationNumber, v.RegistrationNumber != ""
	case FieldBrand:
		return v.Brand, v.Brand != ""
	case FieldModel:
		return v.Model, v.Model != ""
	case FieldYear:
		return strconv.Itoa(v.Year), v.Year > 0
	case FieldEngine:
		if v.EngineCapacity == nil {
			return "", false
		}
		return strconv.Itoa(*v.EngineCapacity), true
	case FieldFuel:
		return string(v.FuelType), v.FuelType != ""
	case FieldAge:
		return strconv.Itoa(d.Age), d.Age > 0
	case FieldLicense:
		return strconv.Itoa(d.DrivingLicenseDate.Year()), !d.DrivingLicenseDate.IsZero()
	case FieldAccidents:
		return strconv.Itoa(d.AccidentCount), true
	case FieldACValue:
		if !o.ACIncluded || o.ACValue == nil {
			return "", false
		}
		return strconv.FormatFloat(*o.ACValue, 'f', -1, 64), true
	case FieldOCOnly:
		return "", o.OCOnly
	case FieldAC:
		return "", o.ACIncluded
	case FieldAssistance:
		return "", o.Assistance
	case FieldNNW:
		return "", o.NNW
	}
	return "", false
}

// Formatters shared by insurer profiles.

// BirthDate renders the driver's age as a "01.01.YYYY" birth date.
func BirthDate(req quote.CalculationRequest) string {
	return fmt.Sprintf("01.01.%d", time.Now().Year()-req.Driver.Age)
}

// LicenseYear renders the license issue year, for selects listing years.
func LicenseYear(req quote.CalculationRequest) string {
	return strconv.Itoa(req.Driver.DrivingLicenseDate.Year())
}

var polishFuel = map[quote.FuelType]string{
	quote.FuelPetrol:   "Benzyna",
	quote.FuelDiesel:   "Diesel",
	quote.FuelLPG:      "LPG",
	quote.FuelElectric: "Elektryczny",
	quote.FuelHybrid:   "Hybryda",
}

// PolishFuel renders the fuel type the way Polish calculators label it.
func PolishFuel(req quote.CalculationRequest) string {
	if s, ok := polishFuel[req.Vehicle.FuelType]; ok {
		return s
	}
	return string(req.Vehicle.FuelType)
}

// LicenseDate renders the license issue date as "DD.MM.YYYY".
func LicenseDate(req quote.CalculationRequest) string {
	return req.Driver.DrivingLicenseDate.Format("02.01.2006")
}

// form is the subset of a browser page the cascades drive.
type form interface {
	Has(selector string) bool
	Fill(selector, value string) error
	Check(selector string) error
	Click(ctx context.Context, selector string) error
}

// applyPlan runs plan against page. It returns the name of the strategy
// that matched, or "" when the plan was skipped.
func applyPlan(page form, plan FieldPlan, req quote.CalculationRequest, log logger.Logger, company string) (string, error) {
	value, apply := valueFor(plan.Field, req)
	if !apply {
		return "", nil
	}
	for _, s := range plan.Strategies {
		if !page.Has(s.Selector) {
			continue
		}
		var err error
		if plan.Field.isCheckbox() {
			err = page.Check(s.Selector)
		} else {
			v := value
			if s.Format != nil {
				v = s.Format(req)
			}
			err = page.Fill(s.Selector, v)
		}
		if err != nil {
			log.Debugf("[%s] %s: strategy %q matched but failed: %v", company, plan.Field, s.Name, err)
			continue
		}
		log.Debugf("[%s] %s: filled via strategy %q", company, plan.Field, s.Name)
		return s.Name, nil
	}
	if plan.Critical {
		return "", fmt.Errorf("no strategy matched required field %s", plan.Field)
	}
	log.Debugf("[%s] %s: no strategy matched, skipping", company, plan.Field)
	return "", nil
}

// clickFirst clicks the first strategy whose element exists and accepts the
// click. When nothing could be clicked the last click error is returned, or
// errNoMatch if no strategy matched at all.
func clickFirst(ctx context.Context, page form, strategies []Strategy, log logger.Logger, company, step string) (string, error) {
	lastErr := errNoMatch
	for _, s := range strategies {
		if !page.Has(s.Selector) {
			continue
		}
		if err := page.Click(ctx, s.Selector); err != nil {
			log.Debugf("[%s] %s: strategy %q matched but click failed: %v", company, step, s.Name, err)
			lastErr = err
			continue
		}
		log.Debugf("[%s] %s: clicked via strategy %q", company, step, s.Name)
		return s.Name, nil
	}
	return "", lastErr
}

func selectors(strategies []Strategy) []string {
	out := make([]string, 0, len(strategies))
	for _, s := range strategies {
		out = append(out, s.Selector)
	}
	return out
}
