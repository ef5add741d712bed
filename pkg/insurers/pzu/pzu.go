// Package pzu drives the PZU online motor calculator.
package pzu

import (
	"github.com/quotescope/quotescope/pkg/insurers"
)

const Company = "pzu"

func Profile() insurers.Profile {
	return insurers.Profile{
		Company:     Company,
		DisplayName: "PZU",
		Note:        "PZU - największe towarzystwo ubezpieczeniowe w Polsce",
		EntryURLs: []string{
			"https://www.pzu.pl/indywidualni/oferta/samochod-i-komunikacja/ubezpieczenie-oc-ac",
		},
		Start: []insurers.Strategy{
			{Name: "calculator link", Selector: `a[href*="kalkulator"]`},
			{Name: "buy online button", Selector: `button:contains("Kup online")`},
			{Name: "calculate button", Selector: `button:contains("Oblicz")`},
			{Name: "cta button", Selector: `.cta-button`},
			{Name: "test id", Selector: `[data-testid="calculate-button"]`},
		},
		FormReady: []insurers.Strategy{
			{Name: "any form control", Selector: `form input, form select`},
		},
		Registration: &insurers.FieldPlan{
			Field: insurers.FieldRegistration,
			Strategies: []insurers.Strategy{
				{Name: "name registration", Selector: `input[name*="registration"]`},
				{Name: "placeholder", Selector: `input[placeholder*="rejestracyjny"]`},
				{Name: "id regNumber", Selector: `input[id*="regNumber"]`},
				{Name: "name plateNumber", Selector: `input[name="plateNumber"]`},
			},
		},
		RegistrationConfirm: []insurers.Strategy{
			{Name: "check button", Selector: `button:contains("Sprawdź")`},
			{Name: "search button", Selector: `button:contains("Szukaj")`},
		},
		Vehicle: []insurers.FieldPlan{
			{Field: insurers.FieldBrand, Strategies: []insurers.Strategy{
				{Name: "select brand", Selector: `select[name*="brand"]`},
				{Name: "select marka", Selector: `select[name*="marka"]`},
				{Name: "select id brand", Selector: `select[id*="brand"]`},
				{Name: "input brand", Selector: `input[name*="brand"]`},
			}},
			{Field: insurers.FieldModel, Strategies: []insurers.Strategy{
				{Name: "select model", Selector: `select[name*="model"]`},
				{Name: "input model", Selector: `input[name*="model"]`},
			}},
			{Field: insurers.FieldYear, Strategies: []insurers.Strategy{
				{Name: "select year", Selector: `select[name*="year"]`},
				{Name: "input year", Selector: `input[name*="year"]`},
				{Name: "select rok", Selector: `select[name*="rok"]`},
				{Name: "input rok", Selector: `input[name*="rok"]`},
			}},
			{Field: insurers.FieldEngine, Strategies: []insurers.Strategy{
				{Name: "input engine", Selector: `input[name*="engine"]`},
				{Name: "input pojemnosc", Selector: `input[name*="pojemnosc"]`},
				{Name: "select engine", Selector: `select[name*="engine"]`},
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
				{Name: "birth date", Selector: `input[name*="birthDate"]`, Format: insurers.BirthDate},
				{Name: "data urodzenia", Selector: `input[name*="dataUrodzenia"]`, Format: insurers.BirthDate},
			}},
			{Field: insurers.FieldLicense, Strategies: []insurers.Strategy{
				{Name: "license date", Selector: `input[name*="license"][placeholder*="."]`, Format: insurers.LicenseDate},
				{Name: "input license", Selector: `input[name*="license"]`},
				{Name: "input prawoJazdy", Selector: `input[name*="prawoJazdy"]`},
				{Name: "select licenseYear", Selector: `select[name*="licenseYear"]`},
			}},
			{Field: insurers.FieldAccidents, Strategies: []insurers.Strategy{
				{Name: "select accident", Selector: `select[name*="accident"]`},
				{Name: "select szkod", Selector: `select[name*="szkod"]`},
				{Name: "select claims", Selector: `select[name*="claims"]`},
				{Name: "input accidents", Selector: `input[name*="accidents"]`},
			}},
		},
		Options: []insurers.FieldPlan{
			{Field: insurers.FieldAC, Strategies: []insurers.Strategy{
				{Name: "checkbox ac", Selector: `input[type="checkbox"][name="ac"]`},
				{Name: "value AC", Selector: `input[value="AC"]`},
				{Name: "id autocasco", Selector: `input[id*="autocasco"]`},
			}},
			{Field: insurers.FieldACValue, Strategies: []insurers.Strategy{
				{Name: "vehicle value", Selector: `input[name*="vehicleValue"]`},
				{Name: "wartosc pojazdu", Selector: `input[name*="wartoscPojazdu"]`},
			}},
			{Field: insurers.FieldAssistance, Strategies: []insurers.Strategy{
				{Name: "name assistance", Selector: `input[name*="assistance"]`},
				{Name: "value assistance", Selector: `input[value*="ASSISTANCE"]`},
			}},
			{Field: insurers.FieldNNW, Strategies: []insurers.Strategy{
				{Name: "name nnw", Selector: `input[name*="nnw"]`},
				{Name: "value NNW", Selector: `input[value="NNW"]`},
			}},
		},
		Submit: []insurers.Strategy{
			{Name: "submit button", Selector: `button[type="submit"]`},
			{Name: "next button text", Selector: `button:contains("Dalej")`},
			{Name: "calculate button text", Selector: `button:contains("Oblicz")`},
			{Name: "show offer", Selector: `button:contains("Pokaż ofertę")`},
			{Name: "next button", Selector: `.next-button`},
			{Name: "submit class", Selector: `.submit-button`},
		},
		Result: []insurers.Strategy{
			{Name: "offer price", Selector: `.offer-price`},
			{Name: "premium amount", Selector: `.premium-amount`},
			{Name: "price summary", Selector: `.price-summary`},
			{Name: "test id", Selector: `[data-testid="price"]`},
			{Name: "calculated price", Selector: `.calculated-price`},
		},
		Prices: insurers.PricePlan{
			OC: []insurers.PriceStrategy{
				{Name: "oc class", Selector: `.oc-price`},
				{Name: "oc product", Selector: `[data-product="OC"] .price`},
				{Name: "price oc", Selector: `.price-oc`},
				{Name: "oc test id", Selector: `[data-testid="oc-price"]`},
			},
			AC: []insurers.PriceStrategy{
				{Name: "ac class", Selector: `.ac-price`},
				{Name: "ac product", Selector: `[data-product="AC"] .price`},
				{Name: "price ac", Selector: `.price-ac`},
				{Name: "ac test id", Selector: `[data-testid="ac-price"]`},
			},
			Total: []insurers.PriceStrategy{
				{Name: "total class", Selector: `.total-price`},
				{Name: "summary price", Selector: `.summary-price`},
				{Name: "final price", Selector: `.final-price`},
				{Name: "premium total", Selector: `.premium-total`},
				{Name: "total test id", Selector: `[data-testid="total-price"]`},
				{Name: "calculated premium", Selector: `.calculated-premium`},
			},
		},
	}
}

func NewWorker(cfg insurers.Config) *insurers.CalculatorWorker {
	return insurers.NewCalculatorWorker(Profile(), cfg)
}
