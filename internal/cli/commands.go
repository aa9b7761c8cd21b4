package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/equilens/equilens/config"
	"github.com/equilens/equilens/internal/agents"
	"github.com/equilens/equilens/internal/dataflows"
	"github.com/equilens/equilens/internal/display"
	"github.com/equilens/equilens/internal/history"
	"github.com/equilens/equilens/internal/llm"
	"github.com/equilens/equilens/internal/research"
)

const version = "0.1.0"

// NewRootCmd creates the root command. Configuration comes from the
// persisted config file through the Manager, with .env and environment
// overrides applied on top; when the file cannot be opened the env-only
// defaults are used.
func NewRootCmd() *cobra.Command {
	manager, cfg, err := config.Load()
	if err != nil {
		fmt.Printf("warning: config file unavailable, using defaults: %v\n", err)
		cfg = config.DefaultConfig()
	}

	rootCmd := &cobra.Command{
		Use:   "equilens",
		Short: "equilens - multi-agent equity research",
		Long: `equilens runs a team of LLM analysts against live market data and
synthesizes their findings into a single BUY/SELL/HOLD recommendation.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("failed to create directories: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractiveMode(manager, cfg)
		},
	}

	rootCmd.AddCommand(newAnalyzeCmd(cfg))
	rootCmd.AddCommand(newHistoryCmd(cfg))
	rootCmd.AddCommand(newConfigCmd(manager, cfg))
	rootCmd.AddCommand(newVersionCmd())

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug mode")

	return rootCmd
}

func newAnalyzeCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [TICKER]",
		Short: "Run equity research for a ticker symbol",
		Long: `Run the full research pipeline for one ticker symbol.
Example: equilens analyze AAPL`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runAnalyzeCommand(ctx, cfg, args[0])
		},
	}
}

func newHistoryCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent research runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			store, err := history.Open(historyPath(cfg))
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			records, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("load history: %w", err)
			}
			fmt.Println(display.RenderHistory(records))
			return nil
		},
	}
	cmd.Flags().Int("limit", 20, "Maximum number of runs to list")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("equilens v%s\n", version)
			fmt.Println("Multi-agent equity research powered by Large Language Models")
		},
	}
}

func newConfigCmd(manager *config.Manager, cfg *config.Config) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Run: func(cmd *cobra.Command, args []string) {
			if manager != nil {
				fmt.Printf("Config file: %s\n\n", manager.Path())
			}
			showConfig(cfg)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Persist one configuration value",
		Long: `Persist one configuration value into the config file.
Keys use the config file's JSON names, e.g.:
  equilens config set llm_backend openai
  equilens config set temperature 0.3`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if manager == nil {
				return fmt.Errorf("config file unavailable; set %s via environment instead", args[0])
			}

			updated := manager.Get()
			if err := updated.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := manager.Update(updated); err != nil {
				return err
			}
			fmt.Printf("Saved %s to %s\n", args[0], manager.Path())
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateConfig(cfg)
		},
	})

	return configCmd
}

func historyPath(cfg *config.Config) string {
	return filepath.Join(cfg.DataDir, "runs.db")
}

// buildOrchestrator wires the LLM client, data provider, analyst team and
// strategist into one orchestrator bound to the current configuration.
func buildOrchestrator(ctx context.Context, cfg *config.Config) (*research.Orchestrator, error) {
	client, err := llm.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing %s backend: %w", cfg.LLMBackend, err)
	}

	provider := dataflows.NewService(cfg, client)
	team, err := agents.TeamFromNames(client, cfg.Analysts)
	if err != nil {
		return nil, fmt.Errorf("selecting analyst team: %w", err)
	}
	strategist := agents.NewStrategist(client)

	logf := func(string, ...any) {}
	if cfg.Debug {
		logf = func(format string, args ...any) {
			fmt.Printf("• "+format+"\n", args...)
		}
	}

	return research.New(provider, team, strategist, research.Options{
		FetchTimeout:     cfg.FetchTimeout,
		AnalysisTimeout:  cfg.AnalysisTimeout,
		SynthesisTimeout: cfg.SynthesisTimeout,
		Logf:             logf,
	})
}

// runAnalyzeCommand executes the research pipeline for one ticker and
// reports the result on stdout, in the results directory and in history.
func runAnalyzeCommand(ctx context.Context, cfg *config.Config, ticker string) error {
	ticker = dataflows.NormalizeSymbol(ticker)
	if err := dataflows.ValidateSymbol(ticker); err != nil {
		return err
	}

	orch, err := buildOrchestrator(ctx, cfg)
	if err != nil {
		return err
	}

	fmt.Printf("Researching %s (%s backend, model %s)...\n\n",
		ticker, cfg.LLMBackend, cfg.Model)

	report, err := orch.Run(ctx, ticker)
	if err != nil {
		fmt.Println(display.RenderError(err))
		return err
	}

	fmt.Println(display.RenderReport(report))

	if path, err := display.WriteMarkdown(cfg.ResultsDir, report); err != nil {
		fmt.Printf("warning: could not save report: %v\n", err)
	} else {
		fmt.Printf("Report saved to %s\n", path)
	}

	if store, err := history.Open(historyPath(cfg)); err == nil {
		if err := store.Insert(ctx, report); err != nil {
			fmt.Printf("warning: could not record run: %v\n", err)
		}
		_ = store.Close()
	}

	return nil
}

func showConfig(cfg *config.Config) {
	fmt.Println("Current equilens configuration:")
	fmt.Println("═══════════════════════════════")
	fmt.Printf("Data Directory:       %s\n", cfg.DataDir)
	fmt.Printf("Cache Directory:      %s\n", cfg.DataCacheDir)
	fmt.Printf("Results Directory:    %s\n", cfg.ResultsDir)
	fmt.Println()
	fmt.Printf("LLM Backend:          %s\n", cfg.LLMBackend)
	fmt.Printf("Model:                %s\n", cfg.Model)
	fmt.Printf("Temperature:          %.2f\n", cfg.Temperature)
	fmt.Printf("Max Tokens:           %d\n", cfg.MaxTokens)
	fmt.Println()
	fmt.Printf("Peer Count:           %d\n", cfg.PeerCount)
	fmt.Printf("Max Headlines:        %d\n", cfg.MaxHeadlines)
	fmt.Printf("Cache Enabled:        %t\n", cfg.CacheEnabled)
	fmt.Printf("Debug Mode:           %t\n", cfg.Debug)
	fmt.Println()
	fmt.Printf("Fetch Timeout:        %s\n", cfg.FetchTimeout)
	fmt.Printf("Analysis Timeout:     %s\n", cfg.AnalysisTimeout)
	fmt.Printf("Synthesis Timeout:    %s\n", cfg.SynthesisTimeout)
	fmt.Println()

	fmt.Println("API credentials:")
	fmt.Println("────────────────")
	printCredential("OpenAI API", cfg.OpenAIAPIKey != "")
	printCredential("DeepSeek API", cfg.DeepSeekAPIKey != "")
	printCredential("Finnhub API", cfg.FinnhubAPIKey != "")
}

func printCredential(name string, configured bool) {
	status := "not configured"
	if configured {
		status = "configured"
	}
	fmt.Printf("%-20s %s\n", name+":", status)
}

func validateConfig(cfg *config.Config) error {
	fmt.Println("Validating equilens configuration...")

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("directory validation failed: %w", err)
	}

	var warnings []string
	switch cfg.LLMBackend {
	case config.BackendOpenAI:
		if cfg.OpenAIAPIKey == "" {
			warnings = append(warnings, "OPENAI_API_KEY is not set")
		}
	case config.BackendDeepSeek:
		if cfg.DeepSeekAPIKey == "" {
			warnings = append(warnings, "DEEPSEEK_API_KEY is not set")
		}
	}
	if cfg.FinnhubAPIKey == "" {
		warnings = append(warnings, "FINNHUB_API_KEY is not set; peer discovery falls back to the LLM")
	}

	if len(warnings) == 0 {
		fmt.Println("Configuration is valid.")
		return nil
	}
	fmt.Printf("Configuration is valid with %d warnings:\n", len(warnings))
	for _, w := range warnings {
		fmt.Printf("  - %s\n", w)
	}
	return nil
}
