package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ghreceipt/ghreceipt/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve receipts over HTTP",
	Long: `Serve receipts over HTTP.

Routes:
  GET /healthz                  liveness check
  GET /api/receipts/{login}     derived stats as JSON
  GET /receipts/{login}.txt     plain-text receipt
  GET /receipts/{login}.svg     SVG receipt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// The server always logs; --verbose lowers the level to debug.
		level := zerolog.InfoLevel
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			level = zerolog.DebugLevel
		}
		logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).
			With().Timestamp().Logger()

		cfg := loadConfig(cmd, logger)
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.Addr
		}

		aggregator, err := newAggregator(cfg, logger)
		if err != nil {
			return err
		}
		return server.New(aggregator, logger).ListenAndServe(addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (default GHRECEIPT_ADDR or :8080)")
}
