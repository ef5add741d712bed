package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/quotescope/quotescope/pkg/quote"
)

func vehicleLabel(v quote.VehicleData) string {
	label := strings.TrimSpace(fmt.Sprintf("%s %s", v.Brand, v.Model))
	if v.Year > 0 {
		label = fmt.Sprintf("%s (%d)", label, v.Year)
	}
	return label
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

// parseTimestamp accepts SQLite's CURRENT_TIMESTAMP format and RFC3339.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{timeLayout, "2006-01-02 15:04:05", time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
