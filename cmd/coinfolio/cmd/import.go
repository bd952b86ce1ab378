package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/coinfolio/cache"
	"github.com/rustyeddy/coinfolio/importer"
	"github.com/rustyeddy/coinfolio/market"
)

var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Seed the candle cache from dump files",
	Long: `Import candle dumps into the local cache. Supports plain CSV
(time,low,high,open,close,volume), xz-compressed CSV, and zip bundles of
CSVs named after their product.

Examples:
  coinfolio import --product BTC-USD btc-2024.csv
  coinfolio import --product BTC-USD btc-2024.csv.xz
  coinfolio import dumps.zip`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

var importProduct string

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVarP(&importProduct, "product", "p", "", "product id for CSV files (e.g. BTC-USD)")
}

func runImport(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	c, err := cache.Open(cfg.Cache.Path)
	if err != nil {
		return fmt.Errorf("open candle cache: %w", err)
	}
	defer c.Close()

	im := importer.New(c, log)
	for _, path := range args {
		if strings.HasSuffix(path, ".zip") {
			results, err := im.ImportZip(path)
			if err != nil {
				return err
			}
			for product, res := range results {
				fmt.Printf("%s: %d candles (%d bad lines) from %s\n", product, res.Rows, res.BadLines, path)
			}
			continue
		}

		if importProduct == "" {
			return fmt.Errorf("--product required for %s", path)
		}
		res, err := im.ImportFile(path, market.Product(importProduct))
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d candles (%d bad lines) from %s\n", importProduct, res.Rows, res.BadLines, path)
	}
	return nil
}
