// Package all registers every supported insurer.
package all

import (
	"github.com/quotescope/quotescope/pkg/insurers"
	"github.com/quotescope/quotescope/pkg/insurers/generali"
	"github.com/quotescope/quotescope/pkg/insurers/link4"
	"github.com/quotescope/quotescope/pkg/insurers/pzu"
	"github.com/quotescope/quotescope/pkg/insurers/tuz"
	"github.com/quotescope/quotescope/pkg/insurers/uniqa"
)

// Profiles returns the calculator profiles in registration order.
func Profiles() []insurers.Profile {
	return []insurers.Profile{
		pzu.Profile(),
		generali.Profile(),
		uniqa.Profile(),
		link4.Profile(),
		tuz.Profile(),
	}
}

// Workers builds one worker per supported insurer, in registration order.
func Workers(cfg insurers.Config) []insurers.Worker {
	profiles := Profiles()
	workers := make([]insurers.Worker, 0, len(profiles))
	for _, p := range profiles {
		workers = append(workers, insurers.NewCalculatorWorker(p, cfg))
	}
	return workers
}
