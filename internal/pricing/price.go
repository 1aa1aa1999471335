// Package pricing normalizes scraped price strings into integer rupee amounts.
package pricing

import (
	"regexp"
	"strconv"
	"strings"
)

// rePaise matches a cleaned price that looks like a paise-formatted amount,
// e.g. "499.00".
var rePaise = regexp.MustCompile(`^\d+\.00$`)

// Parse converts a raw scraped price string into a whole currency amount.
// It returns 0 for empty or malformed input; 0 is the "unknown" sentinel,
// never an error.
//
// Commas are stripped as grouping separators (Indian lakh format included, so
// "₹1,37,790" parses to 137790). A comma-free value under 1000 that matches
// "<digits>.00" is treated as paise and divided by 100; the comma check keeps
// large grouped amounts from being mangled.
func Parse(raw string) int {
	if raw == "" {
		return 0
	}

	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	cleaned := strings.TrimSpace(b.String())

	looksLikePaise := rePaise.MatchString(strings.ReplaceAll(cleaned, ",", ""))
	hasComma := strings.Contains(raw, ",")

	cleaned = strings.ReplaceAll(cleaned, ",", "")
	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}

	if price > 0 && price < 1000 && looksLikePaise && !hasComma {
		price = price / 100
	}

	return int(price + 0.5)
}
