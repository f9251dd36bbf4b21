// Package models defines the request and response records shared by the
// regwacc CLI, HTTP API and calculation service.
package models

import "time"

// CAPMRequest is the input of one cost-of-capital calculation. Optional
// scalars are pointers so an absent field can fall back to a preset or to
// the example row for Ticker.
type CAPMRequest struct {
	Ticker             string   `json:"ticker,omitempty"             yaml:"ticker,omitempty"`
	RiskFreeRate       *float64 `json:"riskFreeRate,omitempty"       yaml:"risk_free_rate,omitempty"`
	TotalMarketReturn  *float64 `json:"totalMarketReturn,omitempty"  yaml:"total_market_return,omitempty"`
	EquityBeta         *float64 `json:"equityBeta,omitempty"         yaml:"equity_beta,omitempty"`
	DebtBeta           *float64 `json:"debtBeta,omitempty"           yaml:"debt_beta,omitempty"` // echoed only
	Gearing            *float64 `json:"gearing,omitempty"            yaml:"gearing,omitempty"`
	ActualGearing      *float64 `json:"actualGearing,omitempty"      yaml:"actual_gearing,omitempty"`
	CostOfDebt         *float64 `json:"costOfDebt,omitempty"         yaml:"cost_of_debt,omitempty"`
	TaxRate            *float64 `json:"taxRate,omitempty"            yaml:"tax_rate,omitempty"`
	UseNotionalGearing bool     `json:"useNotionalGearing,omitempty" yaml:"use_notional_gearing,omitempty"`
	Basis              string   `json:"basis,omitempty"              yaml:"basis,omitempty"` // "nominal" (default) or "real"
	InflationRate      *float64 `json:"inflationRate,omitempty"      yaml:"inflation_rate,omitempty"`
	RiskFreePreset     string   `json:"riskFreePreset,omitempty"     yaml:"risk_free_preset,omitempty"`
	TMRPreset          string   `json:"tmrPreset,omitempty"          yaml:"tmr_preset,omitempty"`
}

// Input provenance labels.
const (
	OriginExplicit = "explicit"
	OriginPreset   = "preset"
	OriginExample  = "example"
)

// CAPMInputs echoes the inputs a calculation actually used.
type CAPMInputs struct {
	Ticker             string   `json:"ticker,omitempty"           yaml:"ticker,omitempty"`
	Basis              string   `json:"basis"                      yaml:"basis"`
	RiskFreeRate       float64  `json:"riskFreeRate"               yaml:"risk_free_rate"`
	RiskFreeOrigin     string   `json:"riskFreeOrigin"             yaml:"risk_free_origin"`
	TotalMarketReturn  float64  `json:"totalMarketReturn"          yaml:"total_market_return"`
	TMROrigin          string   `json:"tmrOrigin"                  yaml:"tmr_origin"`
	EquityBeta         float64  `json:"equityBeta"                 yaml:"equity_beta"`
	ObservedEquityBeta float64  `json:"observedEquityBeta"         yaml:"observed_equity_beta"`
	BetaSource         string   `json:"betaSource"                 yaml:"beta_source"`
	AssetBeta          *float64 `json:"assetBeta,omitempty"        yaml:"asset_beta,omitempty"`
	DebtBeta           *float64 `json:"debtBeta,omitempty"         yaml:"debt_beta,omitempty"`
	Gearing            *float64 `json:"gearing,omitempty"          yaml:"gearing,omitempty"`
	ActualGearing      *float64 `json:"actualGearing,omitempty"    yaml:"actual_gearing,omitempty"`
	CostOfDebt         *float64 `json:"costOfDebt,omitempty"       yaml:"cost_of_debt,omitempty"`
	TaxRate            *float64 `json:"taxRate,omitempty"          yaml:"tax_rate,omitempty"`
	UseNotionalGearing bool     `json:"useNotionalGearing"         yaml:"use_notional_gearing"`
	InflationRate      *float64 `json:"inflationRate,omitempty"    yaml:"inflation_rate,omitempty"`
}

// CAPMOutputs are the calculated rates on the request basis.
type CAPMOutputs struct {
	EquityRiskPremium float64  `json:"equityRiskPremium"     yaml:"equity_risk_premium"`
	CostOfEquity      float64  `json:"costOfEquity"          yaml:"cost_of_equity"`
	VanillaWACC       *float64 `json:"vanillaWACC,omitempty" yaml:"vanilla_wacc,omitempty"`
}

// ConvertedOutputs restates the outputs on the other basis.
type ConvertedOutputs struct {
	Basis        string   `json:"basis"                 yaml:"basis"`
	CostOfEquity float64  `json:"costOfEquity"          yaml:"cost_of_equity"`
	CostOfDebt   *float64 `json:"costOfDebt,omitempty"  yaml:"cost_of_debt,omitempty"`
	VanillaWACC  *float64 `json:"vanillaWACC,omitempty" yaml:"vanilla_wacc,omitempty"`
}

// CAPMResponse is the result of one calculation.
type CAPMResponse struct {
	ID           string            `json:"id"                  yaml:"id"`
	CalculatedAt time.Time         `json:"calculatedAt"        yaml:"calculated_at"`
	Inputs       CAPMInputs        `json:"inputs"              yaml:"inputs"`
	Outputs      CAPMOutputs       `json:"outputs"             yaml:"outputs"`
	Converted    *ConvertedOutputs `json:"converted,omitempty" yaml:"converted,omitempty"`
	Warnings     []string          `json:"warnings,omitempty"  yaml:"warnings,omitempty"`
}

// LeverMode selects the direction of a Modigliani-Miller adjustment.
type LeverMode string

const (
	LeverModeDelever LeverMode = "delever"
	LeverModeRelever LeverMode = "relever"
)

// LeverRequest de-levers an equity beta or re-levers an asset beta.
type LeverRequest struct {
	Mode    LeverMode `json:"mode"    yaml:"mode"`
	Beta    float64   `json:"beta"    yaml:"beta"`
	Gearing float64   `json:"gearing" yaml:"gearing"`
	TaxRate float64   `json:"taxRate" yaml:"tax_rate"`
}

// LeverResponse carries the adjusted beta.
type LeverResponse struct {
	LeverRequest `yaml:",inline"`
	DebtToEquity float64 `json:"debtToEquity" yaml:"debt_to_equity"`
	Result       float64 `json:"result"       yaml:"result"`
}

// BasisRequest converts a rate between real and nominal terms.
type BasisRequest struct {
	Rate          float64 `json:"rate"          yaml:"rate"`
	InflationRate float64 `json:"inflationRate" yaml:"inflation_rate"`
	From          string  `json:"from"          yaml:"from"`
	To            string  `json:"to"            yaml:"to"`
}

// BasisResponse carries the converted rate.
type BasisResponse struct {
	BasisRequest `yaml:",inline"`
	Result       float64 `json:"result" yaml:"result"`
}

// Float returns a pointer to v, for populating optional request fields.
func Float(v float64) *float64 { return &v }
