// Package examples holds the static comparator dataset: one row per ticker,
// each populating every scalar input a calculation needs.
package examples

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/seenimoa/regwacc/internal/finance"
)

// Example is one illustrative comparator. Rates are decimals on Basis,
// which is CPIH-real unless a row says otherwise.
type Example struct {
	Name              string        `json:"name"                yaml:"name"`
	Ticker            string        `json:"ticker"              yaml:"ticker"`
	Basis             finance.Basis `json:"basis"               yaml:"basis,omitempty"`
	RiskFreeRate      float64       `json:"risk_free_rate"      yaml:"risk_free_rate"`
	TotalMarketReturn float64       `json:"total_market_return" yaml:"total_market_return"`
	EquityBeta        float64       `json:"equity_beta"         yaml:"equity_beta"`
	Gearing           float64       `json:"gearing"             yaml:"gearing"`
	CostOfDebt        float64       `json:"cost_of_debt"        yaml:"cost_of_debt"`
	TaxRate           float64       `json:"tax_rate"            yaml:"tax_rate"`
}

// DefaultBasis is the basis of a row that does not name one.
const DefaultBasis = finance.BasisReal

// ErrInvalidExample is returned when a dataset row fails validation.
var ErrInvalidExample = errors.New("invalid example")

// Validate checks that every rate is finite and that gearing and tax rate
// are fractions.
func (e Example) Validate() error {
	if strings.TrimSpace(e.Ticker) == "" {
		return fmt.Errorf("%w: empty ticker", ErrInvalidExample)
	}
	if e.Basis != "" && e.Basis != finance.BasisReal && e.Basis != finance.BasisNominal {
		return fmt.Errorf("%w: %s basis %q (want real or nominal)", ErrInvalidExample, e.Ticker, e.Basis)
	}
	vals := map[string]float64{
		"risk_free_rate":      e.RiskFreeRate,
		"total_market_return": e.TotalMarketReturn,
		"equity_beta":         e.EquityBeta,
		"gearing":             e.Gearing,
		"cost_of_debt":        e.CostOfDebt,
		"tax_rate":            e.TaxRate,
	}
	for name, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s %s is not finite", ErrInvalidExample, e.Ticker, name)
		}
	}
	if e.Gearing < 0 || e.Gearing >= 1 {
		return fmt.Errorf("%w: %s gearing %v outside [0,1)", ErrInvalidExample, e.Ticker, e.Gearing)
	}
	if e.TaxRate < 0 || e.TaxRate > 1 {
		return fmt.Errorf("%w: %s tax rate %v outside [0,1]", ErrInvalidExample, e.Ticker, e.TaxRate)
	}
	return nil
}

// Dataset is an immutable ticker-keyed table of examples.
type Dataset struct {
	rows map[string]Example
}

// New builds a dataset, validating every row. Tickers are upper-cased and
// must be unique; a row without a basis gets DefaultBasis.
func New(rows []Example) (*Dataset, error) {
	d := &Dataset{rows: make(map[string]Example, len(rows))}
	for _, r := range rows {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		r.Ticker = strings.ToUpper(strings.TrimSpace(r.Ticker))
		if r.Basis == "" {
			r.Basis = DefaultBasis
		}
		if _, dup := d.rows[r.Ticker]; dup {
			return nil, fmt.Errorf("%w: duplicate ticker %s", ErrInvalidExample, r.Ticker)
		}
		d.rows[r.Ticker] = r
	}
	return d, nil
}

// Get returns the example for ticker.
func (d *Dataset) Get(ticker string) (Example, bool) {
	if d == nil {
		return Example{}, false
	}
	e, ok := d.rows[strings.ToUpper(strings.TrimSpace(ticker))]
	return e, ok
}

// List returns all examples sorted by ticker.
func (d *Dataset) List() []Example {
	if d == nil {
		return nil
	}
	out := make([]Example, 0, len(d.rows))
	for _, e := range d.rows {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.rows)
}

// Default returns the built-in UK utilities. Values are indicative only.
func Default() *Dataset {
	d, err := New(defaultRows)
	if err != nil {
		panic(fmt.Sprintf("examples: built-in dataset invalid: %v", err))
	}
	return d
}

var defaultRows = []Example{
	{
		Name:              "National Grid plc",
		Ticker:            "NG.L",
		RiskFreeRate:      0.012,
		TotalMarketReturn: 0.055,
		EquityBeta:        0.65,
		Gearing:           0.60,
		CostOfDebt:        0.020,
		TaxRate:           0.25,
	},
	{
		Name:              "SSE plc",
		Ticker:            "SSE.L",
		RiskFreeRate:      0.012,
		TotalMarketReturn: 0.055,
		EquityBeta:        0.70,
		Gearing:           0.55,
		CostOfDebt:        0.022,
		TaxRate:           0.25,
	},
	{
		Name:              "Severn Trent plc",
		Ticker:            "SVT.L",
		RiskFreeRate:      0.012,
		TotalMarketReturn: 0.055,
		EquityBeta:        0.72,
		Gearing:           0.60,
		CostOfDebt:        0.019,
		TaxRate:           0.25,
	},
}

// file is the on-disk YAML layout.
type file struct {
	Examples []Example `yaml:"examples"`
}

// LoadFile reads a YAML dataset of the form:
//
//	examples:
//	  - name: National Grid plc
//	    ticker: NG.L
//	    basis: real            # optional, default real
//	    risk_free_rate: 0.012
//	    ...
func LoadFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read examples file %s: %w", path, err)
	}
	var f file
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, fmt.Errorf("parse examples file %s: %w", path, err)
	}
	if len(f.Examples) == 0 {
		return nil, fmt.Errorf("%w: %s contains no examples", ErrInvalidExample, path)
	}
	return New(f.Examples)
}
