// Package presets lists named market-parameter presets: gilt-based
// risk-free rates and UKRN total market return midpoints.
package presets

import (
	"fmt"
	"sort"

	"github.com/seenimoa/regwacc/internal/finance"
)

// Kind distinguishes risk-free from TMR presets.
type Kind string

const (
	KindRiskFree Kind = "risk_free"
	KindTMR      Kind = "tmr"
)

// Preset is a named rate.
type Preset struct {
	Name        string        `json:"name"`
	Kind        Kind          `json:"kind"`
	Value       float64       `json:"value"`
	Basis       finance.Basis `json:"basis"`
	Description string        `json:"description"`
}

// ErrUnknownPreset is returned for a name that is not registered.
type ErrUnknownPreset struct {
	Kind Kind
	Name string
}

func (e *ErrUnknownPreset) Error() string {
	return fmt.Sprintf("unknown %s preset %q", e.Kind, e.Name)
}

var riskFree = map[string]Preset{
	"boe_10y_nominal": {
		Name: "boe_10y_nominal", Kind: KindRiskFree, Value: 0.046, Basis: finance.BasisNominal,
		Description: "BoE 10-year nominal gilt yield",
	},
	"boe_20y_nominal": {
		Name: "boe_20y_nominal", Kind: KindRiskFree, Value: 0.043, Basis: finance.BasisNominal,
		Description: "BoE 20-year nominal gilt yield",
	},
	"ilg_20y_real": {
		Name: "ilg_20y_real", Kind: KindRiskFree, Value: 0.016, Basis: finance.BasisReal,
		Description: "20-year index-linked gilt real yield",
	},
}

var tmr = map[string]Preset{
	"ukrn_2024_mid": {
		Name: "ukrn_2024_mid", Kind: KindTMR, Value: 0.065, Basis: finance.BasisNominal,
		Description: "UKRN 2024 TMR range midpoint",
	},
	"ukrn_2023_mid": {
		Name: "ukrn_2023_mid", Kind: KindTMR, Value: 0.062, Basis: finance.BasisNominal,
		Description: "UKRN 2023 TMR range midpoint",
	},
}

// RiskFree looks up a risk-free preset by name.
func RiskFree(name string) (Preset, error) {
	p, ok := riskFree[name]
	if !ok {
		return Preset{}, &ErrUnknownPreset{Kind: KindRiskFree, Name: name}
	}
	return p, nil
}

// TMR looks up a total market return preset by name.
func TMR(name string) (Preset, error) {
	p, ok := tmr[name]
	if !ok {
		return Preset{}, &ErrUnknownPreset{Kind: KindTMR, Name: name}
	}
	return p, nil
}

// List returns every preset, risk-free first, each group sorted by name.
func List() []Preset {
	out := make([]Preset, 0, len(riskFree)+len(tmr))
	out = append(out, sorted(riskFree)...)
	out = append(out, sorted(tmr)...)
	return out
}

func sorted(m map[string]Preset) []Preset {
	out := make([]Preset, 0, len(m))
	for _, p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
