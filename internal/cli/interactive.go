package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/equilens/equilens/config"
)

// runInteractiveMode loops over ticker prompts until the user quits. When
// the config Manager is available its file is watched for the whole
// session, so edits to it apply to the next analysis without a restart.
func runInteractiveMode(manager *config.Manager, cfg *config.Config) error {
	DisplayWelcomeBanner()

	if manager != nil {
		watchCtx, stopWatch := context.WithCancel(context.Background())
		defer stopWatch()
		if err := manager.Watch(watchCtx, func(config.Config) {
			fmt.Printf("Configuration reloaded from %s\n", manager.Path())
		}); err != nil {
			fmt.Printf("warning: config watch unavailable: %v\n", err)
		}
	}

	for {
		ticker, err := PromptForTicker()
		if err != nil {
			if errors.Is(err, terminal.InterruptErr) {
				fmt.Println("\nGoodbye!")
				return nil
			}
			return fmt.Errorf("reading ticker: %w", err)
		}
		if ticker == "" {
			fmt.Println("Goodbye!")
			return nil
		}

		runCfg := cfg
		if manager != nil {
			// Take the freshest persisted config; the environment still wins.
			current := manager.Get()
			current.ApplyEnvOverrides()
			runCfg = &current
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		if err := runAnalyzeCommand(ctx, runCfg, ticker); err != nil {
			fmt.Printf("Analysis failed: %v\n", err)
		}
		stop()

		fmt.Println("\n" + strings.Repeat("─", 60))
		fmt.Println()
	}
}
