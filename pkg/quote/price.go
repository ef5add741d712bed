package quote

import (
	"regexp"
	"strconv"
	"strings"
)

// amountRegex matches one amount: a plain digit run, or up to three digits
// followed by separator-and-three-digit groups, then an optional decimal part.
// Grouping separators are a single space, NBSP, NNBSP, dot or comma.
var amountRegex = regexp.MustCompile(`(?:\d{1,3}(?:[ .,\x{00a0}\x{202f}]\d{3})+|\d+)(?:[.,]\d+)?`)

// ParsePrice extracts an amount from scraped text such as "2 050,00 zł" or
// "1,234.56 PLN". The first numeric run is used; grouping spaces are dropped
// and the decimal separator is inferred. ok is false when no positive amount
// can be recognized.
func ParsePrice(text string) (float64, bool) {
	raw := amountRegex.FindString(text)
	if raw == "" {
		return 0, false
	}
	raw = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f':
			return -1
		}
		return r
	}, raw)

	v, err := strconv.ParseFloat(normalizeSeparators(raw), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// normalizeSeparators rewrites s so that '.' is the only (decimal) separator.
func normalizeSeparators(s string) string {
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		return resolveSingle(s, ",")
	case lastDot >= 0:
		return resolveSingle(s, ".")
	}
	return s
}

// resolveSingle handles amounts that use only one separator kind. Repeated
// separators or exactly three trailing digits mean thousands grouping.
func resolveSingle(s, sep string) string {
	if strings.Count(s, sep) > 1 {
		return strings.ReplaceAll(s, sep, "")
	}
	idx := strings.Index(s, sep)
	if len(s)-idx-1 == 3 {
		return strings.Replace(s, sep, "", 1)
	}
	return strings.Replace(s, sep, ".", 1)
}
