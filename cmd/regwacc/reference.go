package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/seenimoa/regwacc/internal/presets"
	"github.com/seenimoa/regwacc/pkg/utils"
)

// --- Examples Command ---

func newExamplesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "examples",
		Short: "List the example comparator dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			list := svc.Examples().List()
			return render(cmd.OutOrStdout(), a.output, list, func(w io.Writer) {
				fmt.Fprintf(w, "%-8s %-24s %7s %7s %6s %8s %7s %5s\n",
					"TICKER", "NAME", "RF", "TMR", "BETA", "GEARING", "KD", "TAX")
				for _, e := range list {
					fmt.Fprintf(w, "%-8s %-24s %7s %7s %6s %8s %7s %5s\n",
						e.Ticker, e.Name, rate(e.RiskFreeRate), rate(e.TotalMarketReturn),
						utils.FormatBeta(e.EquityBeta), rate(e.Gearing), rate(e.CostOfDebt),
						utils.FormatRate(e.TaxRate, 0))
				}
			})
		},
	}
}

// --- Presets Command ---

func newPresetsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List risk-free and TMR presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			list := presets.List()
			return render(cmd.OutOrStdout(), a.output, list, func(w io.Writer) {
				for _, p := range list {
					fmt.Fprintf(w, "%-10s %-16s %6s  %-8s %s\n",
						p.Kind, p.Name, rate(p.Value), p.Basis, p.Description)
				}
			})
		},
	}
}

// --- Beta Command ---

func newBetaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "beta <ticker>",
		Short: "Resolve a comparator beta through the source chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			est, err := svc.ResolveBeta(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), a.output, est, func(w io.Writer) {
				fmt.Fprintf(w, "%s beta %s (source: %s)\n", est.Ticker, utils.FormatBeta(est.Value), est.Source)
			})
		},
	}
}
