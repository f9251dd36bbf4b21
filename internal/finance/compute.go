package finance

// CapitalStructure is the debt side of a WACC calculation.
type CapitalStructure struct {
	Gearing    float64 `json:"gearing"`      // D/(D+E), clamped to [0,1]
	CostOfDebt float64 `json:"cost_of_debt"` // pre-tax, same basis as Ke
}

// Params is the full input set for one calculation. It is passed by value.
type Params struct {
	RiskFreeRate      float64           `json:"risk_free_rate"`
	TotalMarketReturn float64           `json:"total_market_return"`
	EquityBeta        float64           `json:"equity_beta"`
	Capital           *CapitalStructure `json:"capital,omitempty"` // nil: cost of equity only
}

// Result holds the outputs of Compute.
type Result struct {
	EquityRiskPremium float64  `json:"equity_risk_premium"`
	CostOfEquity      float64  `json:"cost_of_equity"`
	VanillaWACC       *float64 `json:"vanilla_wacc,omitempty"`
}

// Compute validates p and evaluates ERP, Ke and, when a capital structure
// is present, vanilla WACC.
func Compute(p Params) (Result, error) {
	if err := checkFinite(
		field{"risk_free_rate", p.RiskFreeRate},
		field{"total_market_return", p.TotalMarketReturn},
		field{"equity_beta", p.EquityBeta},
	); err != nil {
		return Result{}, err
	}

	res := Result{
		EquityRiskPremium: EquityRiskPremium(p.RiskFreeRate, p.TotalMarketReturn),
		CostOfEquity:      CostOfEquity(p.RiskFreeRate, p.TotalMarketReturn, p.EquityBeta),
	}

	if p.Capital != nil {
		c := *p.Capital
		if err := checkFinite(field{"gearing", c.Gearing}, field{"cost_of_debt", c.CostOfDebt}); err != nil {
			return Result{}, err
		}
		w := VanillaWACC(p.RiskFreeRate, p.TotalMarketReturn, p.EquityBeta, c.Gearing, c.CostOfDebt)
		res.VanillaWACC = &w
	}

	return res, nil
}
