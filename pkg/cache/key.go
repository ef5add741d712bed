package cache

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/quotescope/quotescope/pkg/quote"
)

// keyVehicle, keyDriver and keyRequest form the canonical shape hashed into
// a cache key. Field order is fixed by the struct definitions, which keeps
// serialization deterministic. Registration number, engine capacity and the
// driver's personal identifiers are deliberately absent.
type keyVehicle struct {
	Brand string `json:"brand"`
	Model string `json:"model"`
	Year  int    `json:"year"`
	Fuel  string `json:"fuel,omitempty"`
}

type keyDriver struct {
	Age       int    `json:"age"`
	License   string `json:"license"`
	Accidents int    `json:"accidents"`
}

type keyRequest struct {
	Company string                 `json:"company"`
	Vehicle keyVehicle             `json:"vehicle"`
	Driver  keyDriver              `json:"driver"`
	Options quote.InsuranceOptions `json:"options"`
}

func canonical(req quote.CalculationRequest) keyRequest {
	return keyRequest{
		Company: quote.NormalizeCompany(req.InsuranceCompany),
		Vehicle: keyVehicle{
			Brand: strings.ToLower(strings.TrimSpace(req.Vehicle.Brand)),
			Model: strings.ToLower(strings.TrimSpace(req.Vehicle.Model)),
			Year:  req.Vehicle.Year,
			Fuel:  strings.ToLower(string(req.Vehicle.FuelType)),
		},
		Driver: keyDriver{
			Age:       req.Driver.Age,
			License:   req.Driver.DrivingLicenseDate.UTC().Format("2006-01-02"),
			Accidents: req.Driver.AccidentCount,
		},
		Options: req.Options,
	}
}

// Key derives the cache key of req: the hex MD5 of its canonical JSON form.
func Key(req quote.CalculationRequest) (string, error) {
	if quote.NormalizeCompany(req.InsuranceCompany) == "" {
		return "", fmt.Errorf("cache key: empty insurance company")
	}
	data, err := json.Marshal(canonical(req))
	if err != nil {
		return "", fmt.Errorf("cache key: %w", err)
	}
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:]), nil
}
