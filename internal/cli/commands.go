package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"boardroom/internal/config"
)

// NewRootCmd builds the root command and all subcommands.
func NewRootCmd() *cobra.Command {
	cfg := config.DefaultConfig()
	var mgr *config.Manager

	rootCmd := &cobra.Command{
		Use:   "boardroom",
		Short: "Multi-agent trading deliberation",
		Long: `Boardroom runs a multi-agent deliberation over a ticker and trade date:
analyst reports, a bull/bear investment debate, a trader plan and a risk
review, ending in a BUY, SELL or HOLD decision.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if path, _ := cmd.Flags().GetString("config"); path != "" {
				m, err := config.NewManager(
					config.WithConfigPath(path),
					config.WithInitialConfig(cfg),
				)
				if err != nil {
					return err
				}
				mgr = m
				*cfg = mgr.Get()
			}
			cfg.LoadEnv()
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				cfg.Debug = true
			}
			if cfg.Debug {
				logrus.SetLevel(logrus.DebugLevel)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Interactive mode is long-lived; pick up external config edits
			// between runs. Model connections stay as built at startup.
			if mgr != nil {
				if err := mgr.Watch(cmd.Context(), func(c config.Config) {
					*cfg = c
				}); err != nil {
					return err
				}
			}
			return runInteractive(cmd.Context(), cfg)
		},
	}

	rootCmd.AddCommand(newAnalyzeCmd(cfg))
	rootCmd.AddCommand(newBatchCmd(cfg))
	rootCmd.AddCommand(newRunsCmd(cfg))
	rootCmd.AddCommand(newConfigCmd(cfg))
	rootCmd.AddCommand(newVersionCmd())

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("config", "", "Path to a JSON configuration file")

	return rootCmd
}

func newAnalyzeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [SYMBOL]",
		Short: "Run a deliberation for one symbol",
		Long: `Run a full deliberation for a stock ticker symbol.
Example: boardroom analyze AAPL --date=2026-03-15`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, _ := cmd.Flags().GetString("date")
			if date == "" {
				date = time.Now().Format("2006-01-02")
			}
			return runAnalyze(cmd.Context(), cfg, args[0], date)
		},
	}
	cmd.Flags().String("date", "", "Trade date in YYYY-MM-DD format (today if not provided)")
	return cmd
}

func newBatchCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [SYMBOL...]",
		Short: "Run deliberations for several symbols",
		Long: `Run deliberations for multiple symbols on the same trade date with
bounded concurrency. Failed symbols are reported without aborting the rest.
Example: boardroom batch AAPL NVDA 600519 --date=2026-03-15`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, _ := cmd.Flags().GetString("date")
			if date == "" {
				date = time.Now().Format("2006-01-02")
			}
			concurrency, _ := cmd.Flags().GetInt("concurrency")
			return runBatch(cmd.Context(), cfg, args, date, concurrency)
		},
	}
	cmd.Flags().String("date", "", "Trade date in YYYY-MM-DD format (today if not provided)")
	cmd.Flags().Int("concurrency", 2, "Number of symbols analyzed in parallel")
	return cmd
}

func newRunsCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded deliberation runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol, _ := cmd.Flags().GetString("symbol")
			limit, _ := cmd.Flags().GetInt("limit")

			app, err := NewApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			runs, err := app.ListRuns(cmd.Context(), symbol, limit)
			if err != nil {
				return err
			}
			DisplayRuns(runs)
			return nil
		},
	}
	cmd.Flags().String("symbol", "", "Only show runs for this symbol")
	cmd.Flags().Int("limit", 20, "Maximum number of runs to show")
	return cmd
}

func newConfigCmd(cfg *config.Config) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Run: func(cmd *cobra.Command, args []string) {
			showConfig(cfg)
		},
	})
	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}
			DisplaySuccess("Configuration is valid.")
			return nil
		},
	})
	return configCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("boardroom v1.0.0")
		},
	}
}

func runAnalyze(ctx context.Context, cfg *config.Config, symbol, date string) error {
	app, err := NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	fmt.Printf("Starting deliberation for %s on %s\n", symbol, date)
	res, err := app.Analyze(ctx, symbol, date)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	DisplayResult(res)
	return nil
}

func runBatch(ctx context.Context, cfg *config.Config, symbols []string, date string, concurrency int) error {
	app, err := NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	fmt.Printf("Starting deliberations for %d symbols on %s\n", len(symbols), date)
	results, failures := app.AnalyzeBatch(ctx, symbols, date, concurrency)
	DisplayBatchResults(results, failures)
	if len(failures) > 0 {
		return fmt.Errorf("%d of %d symbols failed", len(failures), len(symbols))
	}
	return nil
}

func runInteractive(ctx context.Context, cfg *config.Config) error {
	DisplayBanner()

	app, err := NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	for {
		ticker, err := PromptForTicker()
		if err != nil {
			return err
		}
		date, err := PromptForTradeDate()
		if err != nil {
			return err
		}

		fmt.Printf("\nStarting deliberation for %s on %s\n", ticker, date)
		res, err := app.Analyze(ctx, ticker, date)
		if err != nil {
			DisplayError(err)
		} else {
			DisplayResult(res)
			returns, ok, err := PromptForReturns()
			if err != nil {
				return err
			}
			if ok {
				if err := app.Reflect(ctx, returns); err != nil {
					DisplayError(err)
				} else {
					DisplaySuccess("Lessons stored.")
				}
			}
		}

		again, err := PromptForAnotherRun()
		if err != nil || !again {
			return err
		}
		fmt.Println()
	}
}

func showConfig(cfg *config.Config) {
	fmt.Println("Current configuration:")
	fmt.Printf("  Project directory:   %s\n", cfg.ProjectDir)
	fmt.Printf("  Results directory:   %s\n", cfg.ResultsDir)
	fmt.Printf("  Cache directory:     %s\n", cfg.DataCacheDir)
	fmt.Println()
	fmt.Printf("  LLM provider:        %s\n", cfg.LLMProvider)
	fmt.Printf("  Deep think model:    %s\n", cfg.DeepThinkLLM)
	fmt.Printf("  Quick think model:   %s\n", cfg.QuickThinkLLM)
	fmt.Printf("  Backend URL:         %s\n", cfg.BackendURL)
	fmt.Printf("  Embedding model:     %s\n", cfg.EmbeddingModel)
	fmt.Println()
	fmt.Printf("  Max debate rounds:   %d\n", cfg.MaxDebateRounds)
	fmt.Printf("  Max risk rounds:     %d\n", cfg.MaxRiskDiscussRounds)
	fmt.Printf("  Model call ceiling:  %d\n", cfg.MaxRecurLimit)
	fmt.Println()
	fmt.Println("  Vendor defaults:")
	for category, vendor := range cfg.DataVendors {
		fmt.Printf("    %-22s %s\n", category, vendor)
	}
	for capability, vendor := range cfg.ToolVendors {
		fmt.Printf("    %-22s %s (override)\n", capability, vendor)
	}
	fmt.Println()
	if cfg.AlphaVantageAPIKey != "" {
		fmt.Println("  Alpha Vantage API:   configured")
	} else {
		fmt.Println("  Alpha Vantage API:   not configured")
	}
	fmt.Printf("  AKTools base URL:    %s\n", cfg.AKToolsBaseURL)
	fmt.Printf("  Cache enabled:       %t\n", cfg.CacheEnabled)
	fmt.Printf("  Debug:               %t\n", cfg.Debug)
}
