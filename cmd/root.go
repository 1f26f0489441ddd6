// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ghreceipt/ghreceipt/internal/cli"
	"github.com/ghreceipt/ghreceipt/internal/config"
	"github.com/ghreceipt/ghreceipt/internal/gateway"
	"github.com/ghreceipt/ghreceipt/internal/receipt"
	"github.com/ghreceipt/ghreceipt/internal/usecase"
)

var rootCmd = &cobra.Command{
	Use:   "ghreceipt [login]",
	Short: "Print a GitHub user's stats as a retail receipt",
	Long: `ghreceipt fetches a GitHub user's public profile and repositories,
derives summary statistics, and prints them as a stylized retail receipt.

With no arguments it opens an interactive prompt. With a login it prints
the receipt once and exits.

Examples:
  ghreceipt                  # interactive prompt
  ghreceipt octocat          # one-shot receipt
  ghreceipt octocat --save   # also write octocat-receipt.txt and .svg
  ghreceipt octocat --json   # derived stats as JSON
  ghreceipt serve            # serve receipts over HTTP`,
	Args:         cobra.MaximumNArgs(1),
	Version:      "0.1.0",
	SilenceUsage: true,
	RunE:         runRoot,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Persistent flags are shared with the serve subcommand.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().String("token", "", "GitHub API token (overrides env vars and the gh CLI)")

	rootCmd.Flags().Bool("json", false, "Output derived stats as JSON instead of a receipt")
	rootCmd.Flags().Bool("save", false, "Write <login>-receipt.txt and <login>-receipt.svg")
	rootCmd.Flags().String("out", "", "Directory for saved artifacts (default current directory)")
	rootCmd.Flags().Bool("no-commits", false, "Skip the 30-day commit count lookup")
}

// newLogger builds the CLI logger: silent by default, console debug output
// on stderr with --verbose.
func newLogger(cmd *cobra.Command) zerolog.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if !verbose {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(zerolog.DebugLevel).
		With().Timestamp().Logger()
}

func loadConfig(cmd *cobra.Command, logger zerolog.Logger) *config.Config {
	flagToken, _ := cmd.Flags().GetString("token")
	cfg := config.Load(flagToken)
	if cfg.TokenSource == config.TokenSourceNone {
		logger.Warn().Msg("no GitHub token found, using the unauthenticated API (rate limited)")
	} else {
		logger.Debug().Str("source", string(cfg.TokenSource)).Msg("GitHub token resolved")
	}
	return cfg
}

func newAggregator(cfg *config.Config, logger zerolog.Logger, opts ...usecase.Option) (*usecase.Aggregator, error) {
	githubGateway, err := gateway.NewGitHubGateway(cfg.Token, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub gateway: %w", err)
	}
	return usecase.NewAggregator(githubGateway, logger, opts...), nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd)
	cfg := loadConfig(cmd, logger)

	outDir, _ := cmd.Flags().GetString("out")
	if outDir == "" {
		outDir = cfg.OutDir
	}

	var opts []usecase.Option
	if noCommits, _ := cmd.Flags().GetBool("no-commits"); noCommits {
		opts = append(opts, usecase.WithoutCommitCount())
	}
	aggregator, err := newAggregator(cfg, logger, opts...)
	if err != nil {
		return err
	}

	// No login argument: run the interactive prompt.
	if len(args) == 0 {
		_, err := tea.NewProgram(cli.NewPromptModel(aggregator, outDir)).Run()
		return err
	}

	login := args[0]
	stats, err := aggregator.Lookup(cmd.Context(), login)
	if err != nil {
		logger.Debug().Err(err).Msg("lookup error")
		// One flat error regardless of cause.
		return fmt.Errorf("lookup failed for %q", login)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		jsonData, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal stats to JSON: %w", err)
		}
		fmt.Println(string(jsonData))
	} else {
		fmt.Println(receipt.ANSI(stats))
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		paths, err := receipt.Save(outDir, stats)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintln(os.Stderr, "wrote "+p)
		}
	}
	return nil
}
