// Package tuz drives the TUZ online motor calculator.
package tuz

import (
	"github.com/quotescope/quotescope/pkg/insurers"
)

const Company = "tuz"

func Profile() insurers.Profile {
	return insurers.Profile{
		Company:     Company,
		DisplayName: "TUZ",
		EntryURLs:   []string{"https://tuz.pl/kalkulator-oc-ac/"},
		FormReady: []insurers.Strategy{
			{Name: "any form control", Selector: `form input, form select`},
		},
		Registration: &insurers.FieldPlan{
			Field: insurers.FieldRegistration,
			Strategies: []insurers.Strategy{
				{Name: "name registration", Selector: `input[name*="registration"]`},
				{Name: "placeholder", Selector: `input[placeholder*="rejestracyjny"]`},
				{Name: "id reg", Selector: `input[id*="reg"]`},
			},
		},
		RegistrationConfirm: []insurers.Strategy{
			{Name: "check button", Selector: `button:contains("Sprawdź")`},
			{Name: "check class", Selector: `button.check-reg`},
		},
		Vehicle: []insurers.FieldPlan{
			{Field: insurers.FieldBrand, Strategies: []insurers.Strategy{
				{Name: "select brand", Selector: `select[name*="brand"]`},
				{Name: "select marka", Selector: `select[name*="marka"]`},
			}},
			{Field: insurers.FieldModel, Strategies: []insurers.Strategy{
				{Name: "select model", Selector: `select[name*="model"]`},
			}},
			{Field: insurers.FieldYear, Strategies: []insurers.Strategy{
				{Name: "input year", Selector: `input[name*="year"]`},
				{Name: "select rok", Selector: `select[name*="rok"]`},
			}},
			{Field: insurers.FieldEngine, Strategies: []insurers.Strategy{
				{Name: "input engine", Selector: `input[name*="engine"]`},
				{Name: "input pojemnosc", Selector: `input[name*="pojemnosc"]`},
			}},
			{Field: insurers.FieldFuel, Strategies: []insurers.Strategy{
				{Name: "select fuel", Selector: `select[name*="fuel"]`, Format: insurers.PolishFuel},
				{Name: "select paliwo", Selector: `select[name*="paliwo"]`, Format: insurers.PolishFuel},
			}},
		},
		Driver: []insurers.FieldPlan{
			{Field: insurers.FieldAge, Strategies: []insurers.Strategy{
				{Name: "input age", Selector: `input[name*="age"]`},
				{Name: "input wiek", Selector: `input[name*="wiek"]`},
			}},
			{Field: insurers.FieldLicense, Strategies: []insurers.Strategy{
				{Name: "input license", Selector: `input[name*="license"]`},
				{Name: "select prawo", Selector: `select[name*="prawo"]`},
			}},
			{Field: insurers.FieldAccidents, Strategies: []insurers.Strategy{
				{Name: "select accident", Selector: `select[name*="accident"]`},
				{Name: "select szkod", Selector: `select[name*="szkod"]`},
			}},
		},
		Options: []insurers.FieldPlan{
			{Field: insurers.FieldAC, Strategies: []insurers.Strategy{
				{Name: "checkbox ac", Selector: `input[type="checkbox"][name*="ac"]`},
				{Name: "value AC", Selector: `input[value*="AC"]`},
			}},
			{Field: insurers.FieldACValue, Strategies: []insurers.Strategy{
				{Name: "input value", Selector: `input[name*="value"]`},
				{Name: "input wartosc", Selector: `input[name*="wartosc"]`},
			}},
			{Field: insurers.FieldAssistance, Strategies: []insurers.Strategy{
				{Name: "name assistance", Selector: `input[name*="assistance"]`},
				{Name: "value assistance", Selector: `input[value*="ASSISTANCE"]`},
			}},
			{Field: insurers.FieldNNW, Strategies: []insurers.Strategy{
				{Name: "name nnw", Selector: `input[name*="nnw"]`},
				{Name: "value NNW", Selector: `input[value*="NNW"]`},
			}},
		},
		Submit: []insurers.Strategy{
			{Name: "submit button", Selector: `button[type="submit"]`},
			{Name: "calculate class", Selector: `.calculate-button`},
			{Name: "btn calculate", Selector: `.btn-calculate`},
			{Name: "submit input", Selector: `input[type="submit"]`},
		},
		Result: []insurers.Strategy{
			{Name: "result", Selector: `.result`},
			{Name: "offer", Selector: `.offer`},
			{Name: "price result", Selector: `.price-result`},
			{Name: "quote result", Selector: `.quote-result`},
		},
		Prices: insurers.PricePlan{
			OC: []insurers.PriceStrategy{
				{Name: "oc class", Selector: `.oc-price`},
				{Name: "oc product", Selector: `[data-product="OC"] .price`},
				{Name: "price oc", Selector: `.price-oc`},
				{Name: "oc value", Selector: `.oc-value`},
			},
			AC: []insurers.PriceStrategy{
				{Name: "ac class", Selector: `.ac-price`},
				{Name: "ac product", Selector: `[data-product="AC"] .price`},
				{Name: "price ac", Selector: `.price-ac`},
				{Name: "ac value", Selector: `.ac-value`},
			},
			Total: []insurers.PriceStrategy{
				{Name: "total class", Selector: `.total-price`},
				{Name: "summary price", Selector: `.summary-price`},
				{Name: "final price", Selector: `.final-price`},
				{Name: "offer price", Selector: `.offer-price`},
				{Name: "price total", Selector: `.price-total`},
			},
		},
	}
}

func NewWorker(cfg insurers.Config) *insurers.CalculatorWorker {
	return insurers.NewCalculatorWorker(Profile(), cfg)
}
