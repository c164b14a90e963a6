package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"smartbill/internal/bill"
	"smartbill/internal/currency"
	"smartbill/internal/logger"
	"smartbill/pkg/models"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show revenue totals and per-customer activity",
	Long: `Summarize all stored bills: total revenue, bill count and average bill
value, followed by a per-customer breakdown sorted by total spent.

Customers are grouped by their trimmed name; "Acme " and "Acme" are the
same customer, while "acme" is a different one. Each profile carries the
customer's bill count, spend, most recent bill date and the tags seen on
their bills.`,
	Example: `  smartbill summary

  # Machine-readable summary
  smartbill summary -o summary.json`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

// summaryOutput is the JSON shape of the summary command.
type summaryOutput struct {
	Stats     models.SummaryStats `json:"stats"`
	Customers []models.Customer   `json:"customers"`
}

func init() {
	rootCmd.AddCommand(summaryCmd)

	summaryCmd.Flags().StringP("output", "o", "", "Output file path for JSON (default: text on stdout)")
}

func runSummary(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("summary")

	outputPath, _ := cmd.Flags().GetString("output")
	jsonOut := cmd.Flags().Changed("output")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, slots, err := openStore(ctx, log)
	if err != nil {
		return err
	}
	defer closeSlots(slots, log)

	bills := store.Bills()
	stats := bill.ComputeSummary(bills)
	customers := bill.ComputeCustomerProfiles(bills)
	preferred := store.PreferredCurrency(ctx)

	log.Debug().
		Int("bills", stats.BillCount).
		Int("customers", len(customers)).
		Msg("Computed summary")

	if jsonOut {
		return outputJSON(summaryOutput{Stats: stats, Customers: customers}, outputPath, log)
	}

	fmt.Printf("Total revenue:      %s\n", currency.Format(stats.TotalRevenue, preferred))
	fmt.Printf("Bills:              %d\n", stats.BillCount)
	fmt.Printf("Average bill value: %s\n", currency.Format(stats.AverageBillValue, preferred))

	if len(customers) == 0 {
		return nil
	}

	fmt.Println("\nCustomers by total spent:")
	for _, c := range customers {
		line := fmt.Sprintf("  %-24s %12s  %d bill(s)",
			c.Name, currency.Format(c.TotalSpent, preferred), c.BillCount)
		if c.LastActive != "" {
			line += fmt.Sprintf("  last active %s", c.LastActive)
		}
		if len(c.Tags) > 0 {
			line += fmt.Sprintf("  [%s]", joinTags(c.Tags))
		}
		fmt.Println(line)
	}

	return nil
}
