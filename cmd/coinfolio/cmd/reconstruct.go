package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/coinfolio/pkg/id"
	"github.com/rustyeddy/coinfolio/portfolio"
)

var reconstructCmd = &cobra.Command{
	Use:   "reconstruct",
	Short: "Rebuild the portfolio's value and principal history",
	Long: `Fetch the full account ledger, pull candle history for every held
product, and print the aligned value-over-time and principal series.`,
	Args: cobra.NoArgs,
	RunE: runReconstruct,
}

func init() {
	rootCmd.AddCommand(reconstructCmd)
}

func runReconstruct(cmd *cobra.Command, args []string) error {
	runID := id.New()
	log := newLogger().With().Str("run_id", runID).Logger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client := newClient(cfg)
	f, c, err := newFetcher(cfg, client, log)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx := cmd.Context()
	l, err := fetchLedger(ctx, client)
	if err != nil {
		return fmt.Errorf("fetch ledger: %w", err)
	}
	log.Info().Strs("currencies", l.Currencies()).Msg("ledger normalized")

	r := portfolio.New(f, log)
	result, err := r.Reconstruct(ctx, l)
	if err != nil {
		return fmt.Errorf("reconstruct: %w", err)
	}

	if len(result.Timeline) == 0 {
		fmt.Println("no held products with candle history")
		return nil
	}

	fmt.Printf("Run %s\n", runID)
	fmt.Printf("Timeline: %s -> %s (%d points)\n",
		result.Timeline[0].Format("2006-01-02 15:04"),
		result.Timeline[len(result.Timeline)-1].Format("2006-01-02 15:04"),
		len(result.Timeline))

	for product, series := range result.PerAsset {
		fmt.Printf("  %-10s %12.2f USD\n", product, series.Last().Value)
	}

	total := result.Total.Last().Value
	principal := result.Principal.Last().Value
	fmt.Printf("Total:     %12.2f USD\n", total)
	fmt.Printf("Principal: %12.2f USD\n", principal)
	fmt.Printf("Gain:      %12.2f USD\n", total-principal)
	return nil
}
