package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v2"

	"github.com/seenimoa/regwacc/pkg/models"
	"github.com/seenimoa/regwacc/pkg/utils"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

const banner = "═══════════════════════════════════════"

// render writes v as JSON or YAML, or calls text for the human format.
func render(w io.Writer, format string, v interface{}, text func(io.Writer)) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		b, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		_, err = w.Write(b)
		return err
	default:
		text(w)
		return nil
	}
}

func rate(v float64) string { return utils.FormatRate(v, 2) }

func optRate(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return rate(*v)
}

func writeCAPMText(w io.Writer, resp *models.CAPMResponse) {
	in, out := resp.Inputs, resp.Outputs

	title := "Cost of Capital"
	if in.Ticker != "" {
		title += " — " + in.Ticker
	}
	fmt.Fprintln(w, banner)
	fmt.Fprintf(w, "  %s (%s)\n", title, in.Basis)
	fmt.Fprintln(w, banner)

	fmt.Fprintf(w, "  %-22s %-9s (%s)\n", "Risk-free rate:", rate(in.RiskFreeRate), in.RiskFreeOrigin)
	fmt.Fprintf(w, "  %-22s %-9s (%s)\n", "Total market return:", rate(in.TotalMarketReturn), in.TMROrigin)
	fmt.Fprintf(w, "  %-22s %-9s (%s)\n", "Equity beta:", utils.FormatBeta(in.EquityBeta), in.BetaSource)
	if in.EquityBeta != in.ObservedEquityBeta {
		fmt.Fprintf(w, "  %-22s %s\n", "Observed beta:", utils.FormatBeta(in.ObservedEquityBeta))
	}
	if in.AssetBeta != nil {
		fmt.Fprintf(w, "  %-22s %s\n", "Asset beta:", utils.FormatBeta(*in.AssetBeta))
	}
	if in.Gearing != nil {
		fmt.Fprintf(w, "  %-22s %s\n", "Gearing:", rate(*in.Gearing))
	}
	if in.CostOfDebt != nil {
		fmt.Fprintf(w, "  %-22s %s\n", "Cost of debt:", rate(*in.CostOfDebt))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  %-22s %s\n", "Equity risk premium:", rate(out.EquityRiskPremium))
	fmt.Fprintf(w, "  %-22s %s\n", "Cost of equity:", utils.FormatRate(out.CostOfEquity, 3))
	fmt.Fprintf(w, "  %-22s %s\n", "Vanilla WACC:", optRate(out.VanillaWACC))

	if c := resp.Converted; c != nil {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  On a %s basis:\n", c.Basis)
		fmt.Fprintf(w, "  %-22s %s (%s)\n", "Cost of equity:", utils.FormatRate(c.CostOfEquity, 3),
			utils.FormatBps(c.CostOfEquity-out.CostOfEquity))
		fmt.Fprintf(w, "  %-22s %s", "Vanilla WACC:", optRate(c.VanillaWACC))
		if c.VanillaWACC != nil && out.VanillaWACC != nil {
			fmt.Fprintf(w, " (%s)", utils.FormatBps(*c.VanillaWACC-*out.VanillaWACC))
		}
		fmt.Fprintln(w)
	}

	for _, warn := range resp.Warnings {
		fmt.Fprintf(w, "\n  ⚠️  %s", warn)
	}
	if len(resp.Warnings) > 0 {
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, banner)
	fmt.Fprintf(w, "  id: %s\n", resp.ID)
}
