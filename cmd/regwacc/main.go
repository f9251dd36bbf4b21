// regwacc: regulated-utility cost of capital.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seenimoa/regwacc/api"
	"github.com/seenimoa/regwacc/internal/capm"
	"github.com/seenimoa/regwacc/internal/config"
	"github.com/seenimoa/regwacc/internal/logging"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app carries state shared by subcommands after the root pre-run.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	output string
}

// service wires the calculation service from the loaded config.
func (a *app) service() (*capm.Service, error) {
	return capm.NewFromConfig(a.cfg, a.logger)
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "regwacc",
		Short: "regwacc: regulated-utility cost of capital",
		Long: `regwacc computes a regulated utility's cost of equity (CAPM) and
vanilla WACC from risk-free rate, total market return, equity beta,
gearing and cost of debt, following UKRN-style methodology.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			configFile, _ := cmd.Flags().GetString("config")
			if configFile != "" {
				a.cfg, err = config.LoadFromFile(configFile)
			} else {
				a.cfg, err = config.Load()
			}
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			level := a.cfg.Logging.Level
			if l, _ := cmd.Flags().GetString("log-level"); l != "" {
				level = l
			}
			a.logger, err = logging.New(level, a.cfg.Logging.Format)
			if err != nil {
				return err
			}
			zap.ReplaceGlobals(a.logger)

			switch a.output {
			case outputText, outputJSON, outputYAML:
			default:
				return fmt.Errorf("invalid --output %q (want text, json or yaml)", a.output)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	root.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")
	root.PersistentFlags().StringVarP(&a.output, "output", "o", outputText, "output format (text, json, yaml)")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newComputeCmd(a))
	root.AddCommand(newLeverCmd(a, "delever"))
	root.AddCommand(newLeverCmd(a, "relever"))
	root.AddCommand(newBasisCmd(a, "real"))
	root.AddCommand(newBasisCmd(a, "nominal"))
	root.AddCommand(newExamplesCmd(a))
	root.AddCommand(newPresetsCmd(a))
	root.AddCommand(newBetaCmd(a))
	root.AddCommand(newServeCmd(a))
	root.AddCommand(newStatusCmd(a))
	return root
}

// --- Version Command ---

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "regwacc %s\n", version)
			fmt.Fprintf(out, "  commit:  %s\n", commit)
			fmt.Fprintf(out, "  built:   %s\n", date)
		},
	}
}

// --- Serve Command (API Server) ---

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.API.Port, _ = cmd.Flags().GetInt("port")
			}
			svc, err := a.service()
			if err != nil {
				return err
			}
			srv := api.NewServer(a.cfg, svc, a.logger)
			srv.SetVersion(version)

			fmt.Fprintf(cmd.OutOrStdout(), "🌐 Starting regwacc API server on %s\n", a.cfg.API.Addr())
			return srv.ListenAndServe(a.cfg.API.Addr())
		},
	}
	cmd.Flags().Int("port", 0, "listen port (overrides api.port)")
	return cmd
}

// --- Status Command ---

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show system status and configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			cfgFile := config.ConfigFilePath()
			if cfgFile == "" {
				cfgFile = "(defaults)"
			}

			fmt.Fprintln(out, banner)
			fmt.Fprintln(out, "  regwacc — System Status")
			fmt.Fprintln(out, banner)
			fmt.Fprintf(out, "  Version:       %s (%s)\n", version, commit)
			fmt.Fprintf(out, "  Config file:   %s\n", cfgFile)
			fmt.Fprintln(out)

			fmt.Fprintln(out, "  Configuration:")
			fmt.Fprintf(out, "    API Server:    %s\n", a.cfg.API.Addr())
			fmt.Fprintf(out, "    Beta sources:  %v\n", svc.BetaSources())
			fmt.Fprintf(out, "    Beta timeout:  %s\n", a.cfg.Beta.Timeout())
			fmt.Fprintf(out, "    Examples:      %d\n", svc.Examples().Len())
			fmt.Fprintf(out, "    Logging:       %s (%s)\n", a.cfg.Logging.Level, a.cfg.Logging.Format)
			fmt.Fprintln(out)

			fmt.Fprintln(out, "  API Keys:")
			for _, k := range config.CheckAPIKeys(a.cfg) {
				status := "❌ not set"
				if k.IsSet {
					status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
				}
				fmt.Fprintf(out, "    %-25s %s\n", k.Name+":", status)
			}

			fmt.Fprintln(out, banner)
			return nil
		},
	}
}
