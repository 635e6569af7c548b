package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/volsuite/volsuite/config"
	"github.com/volsuite/volsuite/internal/marketdata"
	"github.com/volsuite/volsuite/internal/table"
	"github.com/volsuite/volsuite/internal/vol"
)

// NewRootCmd creates the root command. Running it without a subcommand
// starts the interactive shell.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "volsuite",
		Short: "VolSuite - volatility analytics shell",
		Long: `VolSuite is an interactive shell for market data and volatility analytics:
price history, option chains, news, historical volatility estimators and
implied volatility skew and surface.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := managerFromFlags(cmd)
			if err != nil {
				return err
			}
			cfg := manager.Get()
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("failed to create directories: %w", err)
			}
			return NewInteractive(manager).Run()
		},
	}

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newHVCmd())

	rootCmd.PersistentFlags().String("config", "", "Configuration file path")

	return rootCmd
}

func managerFromFlags(cmd *cobra.Command) (*config.Manager, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.NewManager(config.WithConfigPath(path))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("VolSuite v%s\n", version)
			fmt.Println("Market data and volatility analytics shell")
		},
	}
}

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := managerFromFlags(cmd)
			if err != nil {
				return err
			}
			return NewSession(manager, cmd.OutOrStdout()).printConfig()
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Reset configuration to defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := managerFromFlags(cmd)
			if err != nil {
				return err
			}
			if err := manager.Reset(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Configuration file has been reset to default settings.")
			return nil
		},
	})

	return configCmd
}

// newHVCmd is the one-shot variant of the shell's hv command, useful for
// scripting without entering the shell.
func newHVCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hv SYMBOL",
		Short: "Print rolling historical volatility for a symbol",
		Long: `Compute rolling historical volatility for a symbol over a named period.
Example: volsuite hv AAPL --method=gk --period=1y`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := managerFromFlags(cmd)
			if err != nil {
				return err
			}
			cfg := manager.Get()

			method, _ := cmd.Flags().GetString("method")
			period, _ := cmd.Flags().GetString("period")
			if !marketdata.ValidPeriod(period) {
				return fmt.Errorf("invalid period %q, use %v", period, marketdata.PeriodNames())
			}

			symbol := marketdata.NormalizeSymbol(args[0])
			client := marketdata.NewClient(&cfg)
			bars, err := client.HistoryPeriod(symbol, period, "1d")
			if err != nil {
				return err
			}

			rolling, realized, err := vol.ComputeHV(marketdata.PriceSeries(bars), vol.Method(method), cfg.HVRollingWindows)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, table.FromRolling(rolling, symbol, period).Render(cfg.DisplayMaxRows))
			fmt.Fprintf(out, "Realized Volatility: %s\n", table.FormatNullFloat(realized.Value))
			return nil
		},
	}

	cmd.Flags().String("method", "close", "Estimator: close, parkinson or gk")
	cmd.Flags().String("period", "1y", "Named period, e.g. 6mo, 1y, 5y")

	return cmd
}
