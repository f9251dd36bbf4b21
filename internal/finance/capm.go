// Package finance is the cost-of-capital formula library: equity risk
// premium, CAPM cost of equity, vanilla WACC, Modigliani–Miller beta
// de-/re-levering and Fisher real/nominal conversion.
//
// Every rate is a decimal fraction (0.043 = 4.3%) on whichever basis the
// caller supplies. Functions are pure; nothing here holds state.
package finance

// EquityRiskPremium returns TMR − Rf. A negative premium is allowed.
func EquityRiskPremium(rf, tmr float64) float64 {
	return tmr - rf
}

// CostOfEquity applies CAPM with TMR framing: Ke = Rf + β × (TMR − Rf).
// The premium is always derived from tmr so it cannot drift from it.
func CostOfEquity(rf, tmr, beta float64) float64 {
	return rf + beta*EquityRiskPremium(rf, tmr)
}

// VanillaWACC weights Ke and Kd by gearing without a tax shield:
// Ke × (1 − g) + Kd × g. Gearing is clamped to [0,1].
func VanillaWACC(rf, tmr, beta, gearing, costOfDebt float64) float64 {
	ke := CostOfEquity(rf, tmr, beta)
	g := Clamp(gearing, 0, 1)
	return ke*(1-g) + costOfDebt*g
}

// Clamp bounds x to [lo, hi], i.e. max(lo, min(hi, x)).
func Clamp(x, lo, hi float64) float64 {
	if x > hi {
		x = hi
	}
	if x < lo {
		x = lo
	}
	return x
}
