package utils

import (
	"strings"
)

// Common aliases for the London-listed network utilities.
var tickerAliases = map[string]string{
	"NG":               "NG.L",
	"NATIONAL GRID":    "NG.L",
	"NATIONALGRID":     "NG.L",
	"SSE":              "SSE.L",
	"SVT":              "SVT.L",
	"SEVERN TRENT":     "SVT.L",
	"SEVERNTRENT":      "SVT.L",
	"UU":               "UU.L",
	"UNITED UTILITIES": "UU.L",
	"PNN":              "PNN.L",
	"PENNON":           "PNN.L",
	"CNA":              "CNA.L",
	"CENTRICA":         "CNA.L",
}

// NormalizeTicker normalizes a user-input ticker to its canonical form.
// It handles aliases, uppercasing, whitespace, a leading $ and the
// "LON:" exchange prefix.
func NormalizeTicker(ticker string) string {
	ticker = strings.TrimSpace(strings.ToUpper(ticker))

	// Remove $ prefix if present
	ticker = strings.TrimPrefix(ticker, "$")

	// LON:NG -> NG.L
	if rest, ok := strings.CutPrefix(ticker, "LON:"); ok && rest != "" {
		ticker = strings.TrimSpace(rest)
		if !strings.Contains(ticker, ".") {
			ticker += ".L"
		}
	}

	if canonical, ok := tickerAliases[ticker]; ok {
		return canonical
	}

	// Already normalized, return as-is
	return ticker
}
