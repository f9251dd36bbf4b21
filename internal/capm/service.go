// Package capm turns cost-of-capital requests into calculations. It fills
// unset inputs from presets and the example dataset, resolves the equity
// beta, and delegates every formula to the finance package.
package capm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seenimoa/regwacc/internal/beta"
	"github.com/seenimoa/regwacc/internal/examples"
	"github.com/seenimoa/regwacc/internal/finance"
	"github.com/seenimoa/regwacc/internal/presets"
	"github.com/seenimoa/regwacc/pkg/models"
	"github.com/seenimoa/regwacc/pkg/utils"
)

// BetaResolver resolves a beta input to a value.
type BetaResolver interface {
	Resolve(ctx context.Context, in beta.Input) (beta.Estimate, error)
}

// Service performs calculations. It is safe for concurrent use.
type Service struct {
	resolver BetaResolver
	examples *examples.Dataset
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

// NewService creates a Service. A nil dataset disables example fallback.
func NewService(resolver BetaResolver, data *examples.Dataset, logger *zap.Logger) *Service {
	if resolver == nil {
		resolver = beta.NewResolver(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		resolver: resolver,
		examples: data,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Examples returns the dataset the service falls back to.
func (s *Service) Examples() *examples.Dataset { return s.examples }

// BetaSources names the sources a comparator lookup walks, in order.
func (s *Service) BetaSources() []string {
	if r, ok := s.resolver.(interface{ Chain() *beta.Chain }); ok {
		return r.Chain().Sources()
	}
	return []string{}
}

// ResolveBeta looks up the comparator beta for ticker.
func (s *Service) ResolveBeta(ctx context.Context, ticker string) (beta.Estimate, error) {
	return s.resolver.Resolve(ctx, beta.Comparator{Ticker: utils.NormalizeTicker(ticker)})
}

// Calculate evaluates one request.
func (s *Service) Calculate(ctx context.Context, req models.CAPMRequest) (*models.CAPMResponse, error) {
	ticker := utils.NormalizeTicker(req.Ticker)
	row, hasRow := s.examples.Get(ticker)

	basis, err := calculationBasis(req, row, hasRow)
	if err != nil {
		return nil, &ValidationError{Field: "basis", Err: err}
	}
	if err := checkOptionalFinite(req); err != nil {
		return nil, err
	}

	var warnings []string
	rf, rfOrigin, warn, err := resolveRate("riskFreeRate", req.RiskFreeRate, req.RiskFreePreset,
		presets.RiskFree, row.RiskFreeRate, hasRow, basis)
	if err != nil {
		return nil, err
	}
	warnings = appendNonEmpty(warnings, warn)

	tmr, tmrOrigin, warn, err := resolveRate("totalMarketReturn", req.TotalMarketReturn, req.TMRPreset,
		presets.TMR, row.TotalMarketReturn, hasRow, basis)
	if err != nil {
		return nil, err
	}
	warnings = appendNonEmpty(warnings, warn)

	gearing := pick(req.Gearing, row.Gearing, hasRow)
	costOfDebt := pick(req.CostOfDebt, row.CostOfDebt, hasRow)
	taxRate := pick(req.TaxRate, row.TaxRate, hasRow)

	rowRates := rfOrigin == models.OriginExample || tmrOrigin == models.OriginExample ||
		(hasRow && req.CostOfDebt == nil)
	if rowRates && row.Basis != basis {
		warnings = append(warnings, fmt.Sprintf("example %s rates are %s but the calculation basis is %s",
			ticker, row.Basis, basis))
	}

	// Beta
	var in beta.Input = beta.Comparator{Ticker: ticker}
	if req.EquityBeta != nil {
		in = beta.Direct{Value: *req.EquityBeta}
	}
	est, err := s.resolver.Resolve(ctx, in)
	if err != nil {
		return nil, s.betaError(ticker, err)
	}

	inputs := models.CAPMInputs{
		Ticker:             ticker,
		Basis:              string(basis),
		RiskFreeRate:       rf,
		RiskFreeOrigin:     rfOrigin,
		TotalMarketReturn:  tmr,
		TMROrigin:          tmrOrigin,
		EquityBeta:         est.Value,
		ObservedEquityBeta: est.Value,
		BetaSource:         est.Source,
		DebtBeta:           req.DebtBeta,
		Gearing:            gearing,
		CostOfDebt:         costOfDebt,
		TaxRate:            taxRate,
		UseNotionalGearing: req.UseNotionalGearing,
		InflationRate:      req.InflationRate,
	}

	// Notional gearing
	actual := req.ActualGearing
	if actual == nil {
		actual = gearing
	}
	inputs.ActualGearing = actual
	switch {
	case req.UseNotionalGearing && gearing != nil && taxRate != nil:
		asset, notional, err := finance.RenotionaliseBeta(est.Value, *actual, *gearing, *taxRate)
		if err != nil {
			return nil, leveringError(err)
		}
		inputs.AssetBeta = &asset
		inputs.EquityBeta = notional
	case req.UseNotionalGearing:
		warnings = append(warnings, "notional gearing requested but gearing or tax rate is unknown; observed beta used")
	case actual != nil && taxRate != nil:
		// Informational only; an out-of-range gearing here is not an error.
		if asset, err := finance.DeleverEquityBeta(est.Value, *actual, *taxRate); err == nil {
			inputs.AssetBeta = &asset
		}
	}

	params := finance.Params{
		RiskFreeRate:      rf,
		TotalMarketReturn: tmr,
		EquityBeta:        inputs.EquityBeta,
	}
	if gearing != nil && costOfDebt != nil {
		params.Capital = &finance.CapitalStructure{Gearing: *gearing, CostOfDebt: *costOfDebt}
	}
	res, err := finance.Compute(params)
	if err != nil {
		return nil, financeError(err)
	}
	if res.EquityRiskPremium < 0 {
		warnings = append(warnings, "total market return is below the risk-free rate; equity risk premium is negative")
	}

	resp := &models.CAPMResponse{
		ID:           s.newID(),
		CalculatedAt: s.now().UTC(),
		Inputs:       inputs,
		Outputs: models.CAPMOutputs{
			EquityRiskPremium: res.EquityRiskPremium,
			CostOfEquity:      res.CostOfEquity,
			VanillaWACC:       res.VanillaWACC,
		},
		Warnings: warnings,
	}

	if req.InflationRate != nil {
		conv, err := convertOutputs(res, params.Capital, *req.InflationRate, basis)
		if err != nil {
			return nil, err
		}
		resp.Converted = conv
	}

	s.logger.Info("calculation complete",
		zap.String("id", resp.ID),
		zap.String("ticker", ticker),
		zap.String("beta_source", est.Source),
		zap.Float64("cost_of_equity", res.CostOfEquity),
		zap.Bool("wacc", res.VanillaWACC != nil))

	return resp, nil
}

func (s *Service) betaError(ticker string, err error) error {
	switch {
	case errors.Is(err, beta.ErrNoBeta):
		s.logger.Info("missing beta", zap.String("ticker", ticker))
		return ErrMissingBeta
	case errors.Is(err, finance.ErrNonFiniteInput):
		return &ValidationError{Field: "equityBeta", Err: err}
	}
	return fmt.Errorf("resolve beta: %w", err)
}

// calculationBasis parses req.Basis. When it is unset and the example row
// supplies the risk-free rate or TMR, the row's basis is used.
func calculationBasis(req models.CAPMRequest, row examples.Example, hasRow bool) (finance.Basis, error) {
	raw := strings.ToLower(strings.TrimSpace(req.Basis))
	if raw == "" && hasRow && row.Basis != "" {
		rfFromRow := req.RiskFreeRate == nil && strings.TrimSpace(req.RiskFreePreset) == ""
		tmrFromRow := req.TotalMarketReturn == nil && strings.TrimSpace(req.TMRPreset) == ""
		if rfFromRow || tmrFromRow {
			return row.Basis, nil
		}
	}
	return finance.ParseBasis(raw)
}

// resolveRate picks an explicit value, then a named preset, then the
// example row.
func resolveRate(field string, explicit *float64, preset string, lookup func(string) (presets.Preset, error),
	fromRow float64, hasRow bool, basis finance.Basis) (float64, string, string, error) {
	if explicit != nil {
		return *explicit, models.OriginExplicit, "", nil
	}
	if preset = strings.TrimSpace(preset); preset != "" {
		p, err := lookup(preset)
		if err != nil {
			return 0, "", "", &ValidationError{Field: field + "Preset", Err: err}
		}
		var warn string
		if p.Basis != basis {
			warn = fmt.Sprintf("preset %s is %s but the calculation basis is %s", p.Name, p.Basis, basis)
		}
		return p.Value, models.OriginPreset + ":" + p.Name, warn, nil
	}
	if hasRow {
		return fromRow, models.OriginExample, "", nil
	}
	return 0, "", "", &ValidationError{Field: field, Msg: "required: provide a value, a preset or an example ticker"}
}

func pick(explicit *float64, fromRow float64, hasRow bool) *float64 {
	if explicit != nil {
		v := *explicit
		return &v
	}
	if hasRow {
		return &fromRow
	}
	return nil
}

func checkOptionalFinite(req models.CAPMRequest) error {
	fields := []struct {
		name string
		v    *float64
	}{
		{"riskFreeRate", req.RiskFreeRate},
		{"totalMarketReturn", req.TotalMarketReturn},
		{"debtBeta", req.DebtBeta},
		{"gearing", req.Gearing},
		{"actualGearing", req.ActualGearing},
		{"costOfDebt", req.CostOfDebt},
		{"taxRate", req.TaxRate},
		{"inflationRate", req.InflationRate},
	}
	for _, f := range fields {
		if f.v != nil && (math.IsNaN(*f.v) || math.IsInf(*f.v, 0)) {
			return &ValidationError{Field: f.name, Err: finance.ErrNonFiniteInput}
		}
	}
	return nil
}

// convertOutputs restates Ke, Kd and WACC on the other basis. WACC is
// rebuilt from the converted components.
func convertOutputs(res finance.Result, capital *finance.CapitalStructure, inflation float64, from finance.Basis) (*models.ConvertedOutputs, error) {
	to := from.Other()
	ke, err := finance.ConvertBasis(res.CostOfEquity, inflation, from, to)
	if err != nil {
		return nil, &ValidationError{Field: "inflationRate", Err: err}
	}
	out := &models.ConvertedOutputs{Basis: string(to), CostOfEquity: ke}
	if capital != nil {
		kd, err := finance.ConvertBasis(capital.CostOfDebt, inflation, from, to)
		if err != nil {
			return nil, &ValidationError{Field: "inflationRate", Err: err}
		}
		g := finance.Clamp(capital.Gearing, 0, 1)
		wacc := ke*(1-g) + kd*g
		out.CostOfDebt = &kd
		out.VanillaWACC = &wacc
	}
	return out, nil
}

func leveringError(err error) error {
	var ie *finance.InputError
	if errors.As(err, &ie) {
		return &ValidationError{Field: ie.Field, Msg: "cannot re-lever beta", Err: err}
	}
	return &ValidationError{Field: "gearing", Err: err}
}

func financeError(err error) error {
	var ie *finance.InputError
	if errors.As(err, &ie) {
		return &ValidationError{Field: ie.Field, Err: err}
	}
	return fmt.Errorf("compute: %w", err)
}

func appendNonEmpty(list []string, s string) []string {
	if s == "" {
		return list
	}
	return append(list, s)
}
