package insurers

import (
	"net/url"
	"time"
)

// Profile describes how to drive one insurer's calculator. Every list is
// ordered: earlier entries are preferred.
type Profile struct {
	// Company is the registry key, e.g. "pzu".
	Company     string
	DisplayName string
	Note        string
	// Extra is copied verbatim into every quote's additional info.
	Extra map[string]string

	// EntryURLs are tried in turn until one loads.
	EntryURLs []string
	// Start locates an optional "calculate online" link or button that
	// leads from a landing page to the form.
	Start []Strategy
	// FormReady must match once the form is on screen. Not finding it is a
	// failure.
	FormReady []Strategy

	// Registration, when present and the request carries a plate number, is
	// tried before manual vehicle entry. A successful lookup skips Vehicle.
	Registration        *FieldPlan
	RegistrationConfirm []Strategy

	Vehicle []FieldPlan
	Driver  []FieldPlan
	Options []FieldPlan

	Submit []Strategy
	// Result indicates that the calculator has produced an offer.
	Result []Strategy
	Prices PricePlan
	Info   []InfoPlan

	LoadTimeout   time.Duration
	ResultTimeout time.Duration
	// Validity of produced quotes; zero means quote.DefaultValidity.
	Validity time.Duration
}

// Domains returns the hosts of the profile's entry URLs.
func (p Profile) Domains() []string {
	out := make([]string, 0, len(p.EntryURLs))
	for _, raw := range p.EntryURLs {
		if u, err := url.Parse(raw); err == nil && u.Host != "" {
			out = append(out, u.Hostname())
		}
	}
	return out
}
