package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/coinfolio/cache"
	"github.com/rustyeddy/coinfolio/config"
	"github.com/rustyeddy/coinfolio/exchange"
	"github.com/rustyeddy/coinfolio/fetcher"
	"github.com/rustyeddy/coinfolio/ledger"
)

var rootCmd = &cobra.Command{
	Use:   "coinfolio",
	Short: "Reconstruct portfolio value and principal history from an exchange ledger",
	Long: `Coinfolio rebuilds an exchange account's position and performance history
from its transaction ledger and historical candle data.

It provides tools for:
  - Reconstructing per-asset and total value-over-time series
  - Tracking cumulative principal (net cash invested) alongside value
  - Valuing current holdings at spot prices
  - Warming and seeding the local candle cache`,
}

var (
	cfgFile string
	verbose bool
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default ./coinfolio.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.LoadFromFile(cfgFile)
	}
	if _, err := os.Stat("./coinfolio.yaml"); err == nil {
		return config.LoadFromFile("./coinfolio.yaml")
	}
	return config.Default(), nil
}

func newClient(cfg *config.Config) *exchange.Client {
	return exchange.NewClient(cfg.Exchange.BaseURL, exchange.Credentials{
		Key:        cfg.Exchange.Key(),
		Secret:     cfg.Exchange.Secret(),
		Passphrase: cfg.Exchange.Passphrase(),
	})
}

func newFetcher(cfg *config.Config, client *exchange.Client, log zerolog.Logger) (*fetcher.Fetcher, *cache.Cache, error) {
	c, err := cache.Open(cfg.Cache.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open candle cache: %w", err)
	}

	gran, err := cfg.Fetch.ParseGranularity()
	if err != nil {
		return nil, nil, err
	}
	delay, err := cfg.Fetch.ParseRequestDelay()
	if err != nil {
		return nil, nil, err
	}

	f := fetcher.New(client, c, fetcher.Options{
		Granularity:     gran,
		MaxBarsPerCall:  cfg.Fetch.MaxBarsPerCall,
		RequestDelay:    delay,
		DelayAfterCalls: cfg.Fetch.DelayAfterCalls,
	}, log)
	return f, c, nil
}

// fetchLedger pulls every account's history and normalizes it.
func fetchLedger(ctx context.Context, client *exchange.Client) (*ledger.Ledger, error) {
	accounts, err := client.Accounts(ctx)
	if err != nil {
		return nil, err
	}

	histories := make(map[string][]exchange.LedgerRecord, len(accounts))
	for _, acc := range accounts {
		records, err := client.AccountLedger(ctx, acc.ID)
		if err != nil {
			return nil, err
		}
		histories[acc.Currency] = records
	}
	return ledger.Normalize(histories)
}
