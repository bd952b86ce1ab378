package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/coinfolio/portfolio"
)

var holdingsCmd = &cobra.Command{
	Use:   "holdings",
	Short: "Value current holdings at spot prices",
	Long: `List every asset-acquiring transaction with its current value,
absolute gain, and gain rate against the cash that funded it.`,
	Args: cobra.NoArgs,
	RunE: runHoldings,
}

func init() {
	rootCmd.AddCommand(holdingsCmd)
}

func runHoldings(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client := newClient(cfg)

	ctx := cmd.Context()
	l, err := fetchLedger(ctx, client)
	if err != nil {
		return fmt.Errorf("fetch ledger: %w", err)
	}

	valuations, err := portfolio.CurrentHoldings(ctx, client, l)
	if err != nil {
		return fmt.Errorf("value holdings: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PRODUCT\tACQUIRED\tAMOUNT\tPRICE\tVALUE\tPAYMENT\tGAIN\tRATE")
	for _, v := range valuations {
		rate := "n/a"
		if r, ok := v.GainRate(); ok {
			rate = fmt.Sprintf("%.1f%%", r)
		}
		fmt.Fprintf(w, "%s\t%s\t%.8f\t%.2f\t%.2f\t%.2f\t%.2f\t%s\n",
			v.Product, v.Time.Format("2006-01-02 15:04"),
			v.Amount, v.Price, v.Value, v.Payment, v.AbsGain, rate)
	}
	return w.Flush()
}
