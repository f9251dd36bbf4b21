package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/seenimoa/regwacc/internal/capm"
	"github.com/seenimoa/regwacc/pkg/models"
	"github.com/seenimoa/regwacc/pkg/utils"
)

// --- Compute Command ---

func newComputeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compute [ticker]",
		Short: "Compute cost of equity and vanilla WACC",
		Long: `Compute cost of equity (CAPM) and, when gearing and cost of debt are
known, vanilla WACC. Inputs not given on the command line fall back to a
named preset or to the example row for the ticker.

Examples:
  regwacc compute NG.L
  regwacc compute --rf-preset boe_20y_nominal --tmr-preset ukrn_2024_mid --beta 0.65
  regwacc compute SSE.L --gearing 0.6 --notional --inflation 0.03 -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := computeRequest(cmd.Flags())
			if len(args) == 1 {
				req.Ticker = args[0]
			}
			svc, err := a.service()
			if err != nil {
				return err
			}
			resp, err := svc.Calculate(cmd.Context(), req)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), a.output, resp, func(w io.Writer) {
				writeCAPMText(w, resp)
			})
		},
	}

	f := cmd.Flags()
	f.String("ticker", "", "comparator ticker (also accepted as argument)")
	f.Float64("rf", 0, "risk-free rate, decimal (0.043 = 4.3%)")
	f.Float64("tmr", 0, "total market return, decimal")
	f.Float64("beta", 0, "equity beta")
	f.Float64("debt-beta", 0, "debt beta (reported only)")
	f.Float64("gearing", 0, "notional gearing D/(D+E)")
	f.Float64("actual-gearing", 0, "gearing at which the beta was observed")
	f.Float64("kd", 0, "cost of debt, decimal")
	f.Float64("tax", 0, "tax rate, decimal")
	f.Bool("notional", false, "re-lever beta from actual to notional gearing")
	f.String("basis", "", "basis of the inputs, nominal or real (default: the example row's basis, else nominal)")
	f.Float64("inflation", 0, "inflation rate; also report the other basis")
	f.String("rf-preset", "", "risk-free preset (see 'regwacc presets')")
	f.String("tmr-preset", "", "TMR preset (see 'regwacc presets')")
	return cmd
}

// computeRequest maps flags onto a request. Only flags the user set
// become explicit inputs.
func computeRequest(f *pflag.FlagSet) models.CAPMRequest {
	opt := func(name string) *float64 {
		if !f.Changed(name) {
			return nil
		}
		v, _ := f.GetFloat64(name)
		return &v
	}
	str := func(name string) string {
		v, _ := f.GetString(name)
		return v
	}
	notional, _ := f.GetBool("notional")

	return models.CAPMRequest{
		Ticker:             str("ticker"),
		RiskFreeRate:       opt("rf"),
		TotalMarketReturn:  opt("tmr"),
		EquityBeta:         opt("beta"),
		DebtBeta:           opt("debt-beta"),
		Gearing:            opt("gearing"),
		ActualGearing:      opt("actual-gearing"),
		CostOfDebt:         opt("kd"),
		TaxRate:            opt("tax"),
		UseNotionalGearing: notional,
		Basis:              str("basis"),
		InflationRate:      opt("inflation"),
		RiskFreePreset:     str("rf-preset"),
		TMRPreset:          str("tmr-preset"),
	}
}

// --- Delever / Relever Commands ---

func newLeverCmd(a *app, mode models.LeverMode) *cobra.Command {
	short := "De-lever an equity beta to an asset beta"
	if mode == models.LeverModeRelever {
		short = "Re-lever an asset beta to an equity beta"
	}
	cmd := &cobra.Command{
		Use:   string(mode) + " <beta>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := parseFloatArg("beta", args[0])
			if err != nil {
				return err
			}
			gearing, _ := cmd.Flags().GetFloat64("gearing")
			tax, _ := cmd.Flags().GetFloat64("tax")

			resp, err := capm.Lever(models.LeverRequest{Mode: mode, Beta: b, Gearing: gearing, TaxRate: tax})
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), a.output, resp, func(w io.Writer) {
				fmt.Fprintf(w, "%s %s at gearing %s (D/E %.3f), tax %s → %s\n",
					resp.Mode, utils.FormatBeta(resp.Beta), rate(resp.Gearing), resp.DebtToEquity,
					rate(resp.TaxRate), utils.FormatBeta(resp.Result))
			})
		},
	}
	cmd.Flags().Float64("gearing", 0, "gearing D/(D+E)")
	cmd.Flags().Float64("tax", 0.25, "tax rate")
	_ = cmd.MarkFlagRequired("gearing")
	return cmd
}

// --- Real / Nominal Commands ---

func newBasisCmd(a *app, to string) *cobra.Command {
	from := "real"
	if to == "real" {
		from = "nominal"
	}
	cmd := &cobra.Command{
		Use:   to + " <rate>",
		Short: fmt.Sprintf("Convert a %s rate to %s (Fisher)", from, to),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := parseFloatArg("rate", args[0])
			if err != nil {
				return err
			}
			inflation, _ := cmd.Flags().GetFloat64("inflation")

			resp, err := capm.ConvertBasis(models.BasisRequest{Rate: r, InflationRate: inflation, From: from, To: to})
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), a.output, resp, func(w io.Writer) {
				fmt.Fprintf(w, "%s %s at inflation %s → %s %s\n",
					resp.From, utils.FormatRate(resp.Rate, 3), rate(resp.InflationRate),
					resp.To, utils.FormatRate(resp.Result, 3))
			})
		},
	}
	cmd.Flags().Float64("inflation", 0, "inflation rate, decimal")
	_ = cmd.MarkFlagRequired("inflation")
	return cmd
}

func parseFloatArg(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return v, nil
}
