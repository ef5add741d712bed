// Package link4 drives the Link4 online motor calculator. Link4's form is
// fixed, so vehicle and driver fields are required rather than best effort.
package link4

import (
	"github.com/quotescope/quotescope/pkg/insurers"
)

const Company = "link4"

func Profile() insurers.Profile {
	return insurers.Profile{
		Company:     Company,
		DisplayName: "Link4",
		EntryURLs:   []string{"https://www.link4.pl/kalkulator-oc-ac"},
		FormReady: []insurers.Strategy{
			{Name: "brand control", Selector: `select[name="brand"], input[name="brand"], input[name="registrationNumber"]`},
		},
		Registration: &insurers.FieldPlan{
			Field:    insurers.FieldRegistration,
			Critical: true,
			Strategies: []insurers.Strategy{
				{Name: "name registrationNumber", Selector: `input[name="registrationNumber"]`},
			},
		},
		Vehicle: []insurers.FieldPlan{
			{Field: insurers.FieldBrand, Critical: true, Strategies: []insurers.Strategy{
				{Name: "select brand", Selector: `select[name="brand"]`},
				{Name: "input brand", Selector: `input[name="brand"]`},
			}},
			{Field: insurers.FieldModel, Critical: true, Strategies: []insurers.Strategy{
				{Name: "select model", Selector: `select[name="model"]`},
			}},
			{Field: insurers.FieldYear, Critical: true, Strategies: []insurers.Strategy{
				{Name: "input year", Selector: `input[name="year"]`},
			}},
			{Field: insurers.FieldEngine, Strategies: []insurers.Strategy{
				{Name: "input engineCapacity", Selector: `input[name="engineCapacity"]`},
			}},
		},
		Driver: []insurers.FieldPlan{
			{Field: insurers.FieldAge, Critical: true, Strategies: []insurers.Strategy{
				{Name: "input age", Selector: `input[name="age"]`},
			}},
			{Field: insurers.FieldLicense, Critical: true, Strategies: []insurers.Strategy{
				{Name: "input licenseYear", Selector: `input[name="licenseYear"]`},
			}},
			{Field: insurers.FieldAccidents, Strategies: []insurers.Strategy{
				{Name: "select accidents", Selector: `select[name="accidents"]`},
			}},
		},
		Options: []insurers.FieldPlan{
			{Field: insurers.FieldAC, Strategies: []insurers.Strategy{
				{Name: "name ac", Selector: `input[name="ac"]`},
				{Name: "checkbox value ac", Selector: `input[type="checkbox"][value="ac"]`},
			}},
			{Field: insurers.FieldACValue, Strategies: []insurers.Strategy{
				{Name: "input acValue", Selector: `input[name="acValue"]`},
			}},
			{Field: insurers.FieldAssistance, Strategies: []insurers.Strategy{
				{Name: "name assistance", Selector: `input[name="assistance"]`},
			}},
			{Field: insurers.FieldNNW, Strategies: []insurers.Strategy{
				{Name: "name nnw", Selector: `input[name="nnw"]`},
			}},
		},
		Submit: []insurers.Strategy{
			{Name: "submit button", Selector: `button[type="submit"]`},
			{Name: "calculate class", Selector: `button.calculate-button`},
		},
		Result: []insurers.Strategy{
			{Name: "price result", Selector: `.price-result`},
			{Name: "quote price", Selector: `.quote-price`},
		},
		Prices: insurers.PricePlan{
			OC: []insurers.PriceStrategy{
				{Name: "oc class", Selector: `.oc-price`},
				{Name: "price oc", Selector: `.price-oc`},
				{Name: "oc test id", Selector: `[data-testid="oc-price"]`},
			},
			AC: []insurers.PriceStrategy{
				{Name: "ac class", Selector: `.ac-price`},
				{Name: "price ac", Selector: `.price-ac`},
				{Name: "ac test id", Selector: `[data-testid="ac-price"]`},
			},
			Total: []insurers.PriceStrategy{
				{Name: "total class", Selector: `.total-price`},
				{Name: "price total", Selector: `.price-total`},
				{Name: "total test id", Selector: `[data-testid="total-price"]`},
			},
			Quarterly: []insurers.PriceStrategy{
				{Name: "quarterly price", Selector: `.quarterly-price`},
			},
			Monthly: []insurers.PriceStrategy{
				{Name: "monthly price", Selector: `.monthly-price`},
			},
		},
	}
}

func NewWorker(cfg insurers.Config) *insurers.CalculatorWorker {
	return insurers.NewCalculatorWorker(Profile(), cfg)
}
