package finance

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-9

// ── Equity risk premium / CAPM ──

func TestEquityRiskPremium(t *testing.T) {
	tests := []struct {
		name    string
		rf, tmr float64
		want    float64
	}{
		{"positive", 0.012, 0.055, 0.043},
		{"zero", 0.05, 0.05, 0},
		{"negative premium propagates", 0.06, 0.05, -0.01},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, EquityRiskPremium(tt.rf, tt.tmr), tol)
		})
	}
}

func TestCostOfEquity(t *testing.T) {
	// NG.L example: 0.012 + 0.65 × 0.043
	assert.InDelta(t, 0.03995, CostOfEquity(0.012, 0.055, 0.65), tol)

	for _, rf := range []float64{-0.01, 0, 0.012, 0.046} {
		for _, tmr := range []float64{0.03, 0.055, 0.065} {
			assert.InDelta(t, tmr, CostOfEquity(rf, tmr, 1), tol, "beta=1 must return TMR")
			for _, b := range []float64{-0.5, 0, 0.65, 2.4} {
				assert.InDelta(t, rf+b*(tmr-rf), CostOfEquity(rf, tmr, b), tol)
			}
		}
	}
}

func TestCostOfEquityBetaPassesThrough(t *testing.T) {
	// No clamping of beta in either direction.
	assert.InDelta(t, 0.012-0.5*0.043, CostOfEquity(0.012, 0.055, -0.5), tol)
	assert.InDelta(t, 0.012+3*0.043, CostOfEquity(0.012, 0.055, 3), tol)
}

// ── Vanilla WACC ──

func TestVanillaWACC(t *testing.T) {
	ke := CostOfEquity(0.012, 0.055, 0.65)
	got := VanillaWACC(0.012, 0.055, 0.65, 0.60, 0.020)
	assert.InDelta(t, ke*0.40+0.020*0.60, got, tol)
	assert.InDelta(t, 0.02798, got, tol)
}

func TestVanillaWACCGearingEndpoints(t *testing.T) {
	rf, tmr, b, kd := 0.012, 0.055, 0.72, 0.019
	assert.InDelta(t, CostOfEquity(rf, tmr, b), VanillaWACC(rf, tmr, b, 0, kd), tol)
	assert.InDelta(t, kd, VanillaWACC(rf, tmr, b, 1, kd), tol)
}

func TestVanillaWACCClampsGearing(t *testing.T) {
	rf, tmr, b, kd := 0.012, 0.055, 0.70, 0.022
	assert.InDelta(t, VanillaWACC(rf, tmr, b, 1, kd), VanillaWACC(rf, tmr, b, 1.7, kd), tol)
	assert.InDelta(t, VanillaWACC(rf, tmr, b, 0, kd), VanillaWACC(rf, tmr, b, -0.3, kd), tol)
}

// ── Clamp ──

func TestClamp(t *testing.T) {
	tests := []struct {
		x, want float64
	}{
		{1.5, 1},
		{-0.2, 0},
		{0.4, 0.4},
		{0, 0},
		{1, 1},
	}
	for _, tt := range tests {
		if got := Clamp(tt.x, 0, 1); got != tt.want {
			t.Errorf("Clamp(%v, 0, 1) = %v, want %v", tt.x, got, tt.want)
		}
	}
}

// ── De-/re-levering ──

func TestDeleverEquityBeta(t *testing.T) {
	got, err := DeleverEquityBeta(0.65, 0.60, 0.25)
	require.NoError(t, err)
	assert.InDelta(t, 0.65/2.125, got, tol)
	assert.InDelta(t, 0.30588, got, 1e-5)
}

func TestDeleverZeroGearingIsIdentity(t *testing.T) {
	got, err := DeleverEquityBeta(0.8, 0, 0.25)
	require.NoError(t, err)
	assert.InDelta(t, 0.8, got, tol)
}

func TestLeverRoundTrip(t *testing.T) {
	for _, g := range []float64{0, 0.1, 0.3, 0.55, 0.6, 0.9, 0.999} {
		for _, tax := range []float64{0, 0.19, 0.25, 1} {
			for _, b := range []float64{0.1, 0.65, 1.2, 2.5} {
				asset, err := DeleverEquityBeta(b, g, tax)
				require.NoError(t, err)
				back, err := ReleverAssetBeta(asset, g, tax)
				require.NoError(t, err)
				assert.InDelta(t, b, back, tol, "g=%v t=%v b=%v", g, tax, b)
			}
		}
	}
}

func TestLeverRejectsInvalidRange(t *testing.T) {
	tests := []struct {
		name         string
		gearing      float64
		tax          float64
		wantField    string
		wantSentinel error
	}{
		{"gearing one", 1, 0.25, "gearing", ErrInvalidRange},
		{"gearing above one", 1.2, 0.25, "gearing", ErrInvalidRange},
		{"negative gearing", -0.1, 0.25, "gearing", ErrInvalidRange},
		{"tax above one", 0.5, 1.1, "tax_rate", ErrInvalidRange},
		{"negative tax", 0.5, -0.01, "tax_rate", ErrInvalidRange},
		{"nan gearing", math.NaN(), 0.25, "gearing", ErrNonFiniteInput},
		{"inf tax", 0.5, math.Inf(1), "tax_rate", ErrNonFiniteInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DeleverEquityBeta(0.65, tt.gearing, tt.tax)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantSentinel), "got %v", err)

			var ie *InputError
			require.True(t, errors.As(err, &ie))
			assert.Equal(t, tt.wantField, ie.Field)

			_, err = ReleverAssetBeta(0.3, tt.gearing, tt.tax)
			assert.True(t, errors.Is(err, tt.wantSentinel), "relever: got %v", err)
		})
	}
}

func TestLeverRejectsNonFiniteBeta(t *testing.T) {
	_, err := DeleverEquityBeta(math.NaN(), 0.5, 0.25)
	assert.ErrorIs(t, err, ErrNonFiniteInput)
	_, err = ReleverAssetBeta(math.Inf(-1), 0.5, 0.25)
	assert.ErrorIs(t, err, ErrNonFiniteInput)
}

func TestDebtToEquity(t *testing.T) {
	de, err := DebtToEquity(0.6)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, de, tol)

	_, err = DebtToEquity(1)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestRenotionaliseBeta(t *testing.T) {
	asset, notional, err := RenotionaliseBeta(0.65, 0.60, 0.60, 0.25)
	require.NoError(t, err)
	assert.InDelta(t, 0.65/2.125, asset, tol)
	assert.InDelta(t, 0.65, notional, tol, "same gearing both ways is a no-op")

	_, notional, err = RenotionaliseBeta(0.65, 0.60, 0.50, 0.25)
	require.NoError(t, err)
	assert.InDelta(t, 0.65/2.125*1.75, notional, tol)
	assert.Less(t, notional, 0.65, "lower notional gearing lowers equity beta")

	_, _, err = RenotionaliseBeta(0.65, 0.60, 1, 0.25)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

// ── Real / nominal ──

func TestRealFromNominal(t *testing.T) {
	assert.InDelta(t, 0.01553, RealFromNominal(0.046, 0.03), 1e-5)
	assert.Greater(t, math.Abs(RealFromNominal(0.046, 0.03)-0.016), 1e-4, "must not be the additive approximation")

	for _, n := range []float64{-0.02, 0, 0.046, 0.12} {
		assert.InDelta(t, n, RealFromNominal(n, 0), 1e-15, "zero inflation is a no-op")
	}
}

func TestNominalFromRealInverse(t *testing.T) {
	for _, r := range []float64{-0.01, 0.016, 0.05} {
		for _, i := range []float64{0, 0.02, 0.035} {
			assert.InDelta(t, r, RealFromNominal(NominalFromReal(r, i), i), tol)
		}
	}
}

func TestConvertBasis(t *testing.T) {
	got, err := ConvertBasis(0.046, 0.03, BasisNominal, BasisReal)
	require.NoError(t, err)
	assert.InDelta(t, RealFromNominal(0.046, 0.03), got, tol)

	got, err = ConvertBasis(0.016, 0.03, BasisReal, BasisNominal)
	require.NoError(t, err)
	assert.InDelta(t, NominalFromReal(0.016, 0.03), got, tol)

	got, err = ConvertBasis(0.05, 0.03, BasisReal, BasisReal)
	require.NoError(t, err)
	assert.Equal(t, 0.05, got)

	_, err = ConvertBasis(0.05, -1, BasisNominal, BasisReal)
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = ConvertBasis(0.05, 0.02, Basis("cpih"), BasisReal)
	assert.ErrorIs(t, err, ErrUnknownBasis)
}

func TestParseBasis(t *testing.T) {
	b, err := ParseBasis("")
	require.NoError(t, err)
	assert.Equal(t, BasisNominal, b)

	b, err = ParseBasis("real")
	require.NoError(t, err)
	assert.Equal(t, BasisReal, b)
	assert.Equal(t, BasisNominal, b.Other())

	_, err = ParseBasis("REAL ")
	assert.ErrorIs(t, err, ErrUnknownBasis)
}

// ── Compute ──

func TestComputeCostOfEquityOnly(t *testing.T) {
	res, err := Compute(Params{RiskFreeRate: 0.012, TotalMarketReturn: 0.055, EquityBeta: 0.65})
	require.NoError(t, err)
	assert.InDelta(t, 0.043, res.EquityRiskPremium, tol)
	assert.InDelta(t, 0.03995, res.CostOfEquity, tol)
	assert.Nil(t, res.VanillaWACC)
}

func TestComputeWithCapital(t *testing.T) {
	res, err := Compute(Params{
		RiskFreeRate:      0.012,
		TotalMarketReturn: 0.055,
		EquityBeta:        0.65,
		Capital:           &CapitalStructure{Gearing: 0.60, CostOfDebt: 0.020},
	})
	require.NoError(t, err)
	require.NotNil(t, res.VanillaWACC)
	assert.InDelta(t, 0.02798, *res.VanillaWACC, tol)
}

func TestComputeRejectsNonFinite(t *testing.T) {
	tests := []struct {
		name  string
		p     Params
		field string
	}{
		{"nan rf", Params{RiskFreeRate: math.NaN(), TotalMarketReturn: 0.05, EquityBeta: 1}, "risk_free_rate"},
		{"inf tmr", Params{RiskFreeRate: 0.01, TotalMarketReturn: math.Inf(1), EquityBeta: 1}, "total_market_return"},
		{"nan beta", Params{RiskFreeRate: 0.01, TotalMarketReturn: 0.05, EquityBeta: math.NaN()}, "equity_beta"},
		{"inf kd", Params{RiskFreeRate: 0.01, TotalMarketReturn: 0.05, EquityBeta: 1,
			Capital: &CapitalStructure{Gearing: 0.5, CostOfDebt: math.Inf(-1)}}, "cost_of_debt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(tt.p)
			require.ErrorIs(t, err, ErrNonFiniteInput)
			var ie *InputError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, tt.field, ie.Field)
		})
	}
}

func TestCheckFiniteNamesOffendingField(t *testing.T) {
	assert.NoError(t, checkFinite(field{"rate", 0.04}, field{"inflation_rate", 0.03}))

	err := checkFinite(field{"rate", 0.04}, field{"inflation_rate", math.NaN()})
	var ie *InputError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "inflation_rate", ie.Field)

	_, err = ConvertBasis(0.04, math.Inf(1), BasisNominal, BasisReal)
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "inflation_rate", ie.Field)
	assert.ErrorIs(t, err, ErrNonFiniteInput)
}
