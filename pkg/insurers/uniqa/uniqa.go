// Package uniqa drives the Uniqa online motor calculator. Its quote step
// answers with JSON, so prices are read with gjson paths before falling back
// to the HTML result page.
package uniqa

import (
	"github.com/quotescope/quotescope/pkg/insurers"
)

const Company = "uniqa"

func Profile() insurers.Profile {
	return insurers.Profile{
		Company:     Company,
		DisplayName: "Uniqa",
		Extra:       map[string]string{"onlineDiscount": "15%"},
		EntryURLs:   []string{"https://www.uniqa.pl/quote/start"},
		FormReady: []insurers.Strategy{
			{Name: "any control", Selector: `input, select`},
		},
		Registration: &insurers.FieldPlan{
			Field: insurers.FieldRegistration,
			Strategies: []insurers.Strategy{
				{Name: "name registrationNumber", Selector: `input[name="registrationNumber"]`},
				{Name: "placeholder", Selector: `input[placeholder*="rejestracyjny"]`},
			},
		},
		RegistrationConfirm: []insurers.Strategy{
			{Name: "check registration", Selector: `button.check-registration`},
		},
		Vehicle: []insurers.FieldPlan{
			{Field: insurers.FieldBrand, Strategies: []insurers.Strategy{
				{Name: "select brand", Selector: `select[name="brand"]`},
				{Name: "select vehicle.brand", Selector: `select[name="vehicle.brand"]`},
			}},
			{Field: insurers.FieldModel, Strategies: []insurers.Strategy{
				{Name: "select model", Selector: `select[name="model"]`},
			}},
			{Field: insurers.FieldYear, Strategies: []insurers.Strategy{
				{Name: "input year", Selector: `input[name="year"]`},
				{Name: "select year", Selector: `select[name="year"]`},
			}},
			{Field: insurers.FieldFuel, Strategies: []insurers.Strategy{
				{Name: "select fuel", Selector: `select[name="fuel"]`, Format: insurers.PolishFuel},
				{Name: "select fuelType", Selector: `select[name="fuelType"]`, Format: insurers.PolishFuel},
			}},
		},
		Driver: []insurers.FieldPlan{
			{Field: insurers.FieldAge, Strategies: []insurers.Strategy{
				{Name: "input age", Selector: `input[name="age"]`},
				{Name: "birth date", Selector: `input[name="birthdate"]`, Format: insurers.BirthDate},
			}},
			{Field: insurers.FieldLicense, Strategies: []insurers.Strategy{
				{Name: "license date", Selector: `input[name="licenseDate"]`, Format: insurers.LicenseDate},
				{Name: "select licenseYear", Selector: `select[name="licenseYear"]`},
			}},
			{Field: insurers.FieldAccidents, Strategies: []insurers.Strategy{
				{Name: "select accidents", Selector: `select[name="accidents"]`},
				{Name: "input claimsCount", Selector: `input[name="claimsCount"]`},
			}},
		},
		Options: []insurers.FieldPlan{
			{Field: insurers.FieldAC, Strategies: []insurers.Strategy{
				{Name: "name ac", Selector: `input[name="ac"]`},
				{Name: "value AC", Selector: `input[value="AC"]`},
				{Name: "label AC", Selector: `label:contains("AC")`},
			}},
			{Field: insurers.FieldACValue, Strategies: []insurers.Strategy{
				{Name: "vehicle value", Selector: `input[name="vehicleValue"]`},
				{Name: "ac value", Selector: `input[name="acValue"]`},
			}},
			{Field: insurers.FieldAssistance, Strategies: []insurers.Strategy{
				{Name: "name assistance", Selector: `input[name="assistance"]`},
				{Name: "value assistance", Selector: `input[value="ASSISTANCE"]`},
			}},
			{Field: insurers.FieldNNW, Strategies: []insurers.Strategy{
				{Name: "name nnw", Selector: `input[name="nnw"]`},
				{Name: "value NNW", Selector: `input[value="NNW"]`},
			}},
		},
		Submit: []insurers.Strategy{
			{Name: "submit button", Selector: `button[type="submit"]`},
			{Name: "calculate class", Selector: `.btn-calculate`},
			{Name: "next button", Selector: `.next-button`},
		},
		Result: []insurers.Strategy{
			{Name: "offer result", Selector: `.offer-result`},
			{Name: "price container", Selector: `.price-container`},
			{Name: "quote summary", Selector: `.quote-summary`},
		},
		Prices: insurers.PricePlan{
			OC: []insurers.PriceStrategy{
				{Name: "api oc premium", JSONPath: "offer.oc.premium"},
				{Name: "oc class", Selector: `.oc-price`},
				{Name: "oc product", Selector: `[data-product="OC"] .price`},
				{Name: "price oc", Selector: `.price-oc`},
			},
			AC: []insurers.PriceStrategy{
				{Name: "api ac premium", JSONPath: "offer.ac.premium"},
				{Name: "ac class", Selector: `.ac-price`},
				{Name: "ac product", Selector: `[data-product="AC"] .price`},
				{Name: "price ac", Selector: `.price-ac`},
			},
			Total: []insurers.PriceStrategy{
				{Name: "api total", JSONPath: "offer.total"},
				{Name: "total class", Selector: `.total-price`},
				{Name: "summary price", Selector: `.summary-price`},
				{Name: "final price", Selector: `.final-price`},
				{Name: "offer price", Selector: `.offer-price`},
			},
			Quarterly: []insurers.PriceStrategy{
				{Name: "api quarterly", JSONPath: "offer.installments.quarterly"},
				{Name: "quarterly payment", Selector: `.quarterly-payment`},
				{Name: "price quarterly", Selector: `.price-quarterly`},
			},
			Monthly: []insurers.PriceStrategy{
				{Name: "api monthly", JSONPath: "offer.installments.monthly"},
				{Name: "monthly payment", Selector: `.monthly-payment`},
				{Name: "price monthly", Selector: `.price-monthly`},
			},
		},
	}
}

func NewWorker(cfg insurers.Config) *insurers.CalculatorWorker {
	return insurers.NewCalculatorWorker(Profile(), cfg)
}
