// Package generali drives the Generali online motor calculator.
package generali

import (
	"time"

	"github.com/quotescope/quotescope/pkg/insurers"
)

const Company = "generali"

func Profile() insurers.Profile {
	return insurers.Profile{
		Company:     Company,
		DisplayName: "Generali",
		Note:        "Generali - międzynarodowe towarzystwo ubezpieczeniowe",
		EntryURLs: []string{
			"https://www.generali.pl/ubezpieczenia-komunikacyjne/oc-ac",
			"https://www.generali.pl/kalkulator",
			"https://kalkulator.generali.pl/",
		},
		LoadTimeout: 20 * time.Second,
		Start: []insurers.Strategy{
			{Name: "calculate premium button", Selector: `button:contains("Oblicz składkę")`},
			{Name: "buy online button", Selector: `button:contains("Kup online")`},
			{Name: "calculator link", Selector: `a[href*="kalkulator"]`},
			{Name: "calculator start", Selector: `.calculator-start`},
			{Name: "test id", Selector: `[data-testid="start-calculator"]`},
		},
		FormReady: []insurers.Strategy{
			{Name: "any form control", Selector: `form input, form select`},
		},
		Registration: &insurers.FieldPlan{
			Field: insurers.FieldRegistration,
			Strategies: []insurers.Strategy{
				{Name: "name registration", Selector: `input[name*="registration"]`},
				{Name: "placeholder", Selector: `input[placeholder*="rejestracyjny"]`},
				{Name: "id registration", Selector: `input[id*="registration"]`},
				{Name: "name plateNumber", Selector: `input[name="plateNumber"]`},
				{Name: "test id", Selector: `input[data-testid="registration-input"]`},
			},
		},
		RegistrationConfirm: []insurers.Strategy{
			{Name: "check button", Selector: `button:contains("Sprawdź")`},
			{Name: "search button", Selector: `button:contains("Szukaj")`},
		},
		Vehicle: []insurers.FieldPlan{
			{Field: insurers.FieldBrand, Strategies: []insurers.Strategy{
				{Name: "select brand", Selector: `select[name*="brand"]`},
				{Name: "input brand", Selector: `input[name*="brand"]`},
				{Name: "select marka", Selector: `select[name*="marka"]`},
				{Name: "test id", Selector: `[data-testid="brand-select"]`},
			}},
			{Field: insurers.FieldModel, Strategies: []insurers.Strategy{
				{Name: "select model", Selector: `select[name*="model"]`},
				{Name: "input model", Selector: `input[name*="model"]`},
				{Name: "test id", Selector: `[data-testid="model-select"]`},
			}},
			{Field: insurers.FieldYear, Strategies: []insurers.Strategy{
				{Name: "select year", Selector: `select[name*="year"]`},
				{Name: "input year", Selector: `input[name*="year"]`},
				{Name: "select rok", Selector: `select[name*="rok"]`},
				{Name: "test id", Selector: `[data-testid="year-select"]`},
			}},
			{Field: insurers.FieldEngine, Strategies: []insurers.Strategy{
				{Name: "input engine", Selector: `input[name*="engine"]`},
				{Name: "input pojemnosc", Selector: `input[name*="pojemnosc"]`},
				{Name: "select capacity", Selector: `select[name*="capacity"]`},
			}},
			{Field: insurers.FieldFuel, Strategies: []insurers.Strategy{
				{Name: "select fuel", Selector: `select[name*="fuel"]`, Format: insurers.PolishFuel},
				{Name: "select paliwo", Selector: `select[name*="paliwo"]`, Format: insurers.PolishFuel},
				{Name: "test id", Selector: `[data-testid="fuel-type"]`, Format: insurers.PolishFuel},
			}},
		},
		Driver: []insurers.FieldPlan{
			{Field: insurers.FieldAge, Strategies: []insurers.Strategy{
				{Name: "input age", Selector: `input[name*="age"]`},
				{Name: "birth date", Selector: `input[name*="birthDate"]`, Format: insurers.BirthDate},
				{Name: "select age", Selector: `select[name*="age"]`},
				{Name: "test id", Selector: `[data-testid="age-input"]`},
			}},
			{Field: insurers.FieldLicense, Strategies: []insurers.Strategy{
				{Name: "input license", Selector: `input[name*="license"]`},
				{Name: "select licenseYear", Selector: `select[name*="licenseYear"]`},
				{Name: "driving license date", Selector: `input[name*="drivingLicense"]`, Format: insurers.LicenseDate},
				{Name: "test id", Selector: `[data-testid="license-date"]`, Format: insurers.LicenseDate},
			}},
			{Field: insurers.FieldAccidents, Strategies: []insurers.Strategy{
				{Name: "select accident", Selector: `select[name*="accident"]`},
				{Name: "select claims", Selector: `select[name*="claims"]`},
				{Name: "input accidents", Selector: `input[name*="accidents"]`},
				{Name: "test id", Selector: `[data-testid="claims-count"]`},
			}},
		},
		Options: []insurers.FieldPlan{
			{Field: insurers.FieldAC, Strategies: []insurers.Strategy{
				{Name: "checkbox ac", Selector: `input[type="checkbox"][name="ac"]`},
				{Name: "value AC", Selector: `input[value="AC"]`},
				{Name: "id autocasco", Selector: `input[id*="autocasco"]`},
				{Name: "test id", Selector: `[data-testid="ac-checkbox"]`},
			}},
			{Field: insurers.FieldACValue, Strategies: []insurers.Strategy{
				{Name: "vehicle value", Selector: `input[name*="vehicleValue"]`},
				{Name: "wartosc pojazdu", Selector: `input[name*="wartoscPojazdu"]`},
				{Name: "ac value", Selector: `input[name*="acValue"]`},
			}},
			{Field: insurers.FieldAssistance, Strategies: []insurers.Strategy{
				{Name: "name assistance", Selector: `input[name*="assistance"]`},
				{Name: "value assistance", Selector: `input[value*="ASSISTANCE"]`},
				{Name: "test id", Selector: `[data-testid="assistance-checkbox"]`},
			}},
			{Field: insurers.FieldNNW, Strategies: []insurers.Strategy{
				{Name: "name nnw", Selector: `input[name*="nnw"]`},
				{Name: "value NNW", Selector: `input[value="NNW"]`},
				{Name: "test id", Selector: `[data-testid="nnw-checkbox"]`},
			}},
		},
		Submit: []insurers.Strategy{
			{Name: "submit button", Selector: `button[type="submit"]`},
			{Name: "calculate button text", Selector: `button:contains("Oblicz")`},
			{Name: "next button text", Selector: `button:contains("Dalej")`},
			{Name: "see offer", Selector: `button:contains("Zobacz ofertę")`},
			{Name: "next step", Selector: `.next-step`},
			{Name: "calculate class", Selector: `.calculate-button`},
		},
		Result: []insurers.Strategy{
			{Name: "offer price", Selector: `.offer-price`},
			{Name: "premium value", Selector: `.premium-value`},
			{Name: "price result", Selector: `.price-result`},
			{Name: "test id", Selector: `[data-testid="calculated-price"]`},
			{Name: "summary price", Selector: `.summary-price`},
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
				{Name: "premium total", Selector: `.premium-total`},
				{Name: "summary price", Selector: `.summary-price`},
				{Name: "total test id", Selector: `[data-testid="total-price"]`},
			},
		},
	}
}

func NewWorker(cfg insurers.Config) *insurers.CalculatorWorker {
	return insurers.NewCalculatorWorker(Profile(), cfg)
}
