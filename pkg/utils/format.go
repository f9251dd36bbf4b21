// Package utils provides common utility functions for regwacc.
package utils

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// FormatRate formats a decimal fraction as a percentage with the given
// number of places, e.g. FormatRate(0.043, 2) → "4.30%".
func FormatRate(rate float64, places int32) string {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return "n/a"
	}
	return decimal.NewFromFloat(rate).Mul(hundred).StringFixed(places) + "%"
}

// FormatBps formats a decimal fraction in basis points, e.g. 0.0015 → "15 bps".
func FormatBps(rate float64) string {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return "n/a"
	}
	return decimal.NewFromFloat(rate).Mul(decimal.NewFromInt(10000)).Round(1).String() + " bps"
}

// FormatBeta formats a beta to three places.
func FormatBeta(beta float64) string {
	if math.IsNaN(beta) || math.IsInf(beta, 0) {
		return "n/a"
	}
	return strconv.FormatFloat(beta, 'f', 3, 64)
}
