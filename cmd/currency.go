package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"smartbill/internal/currency"
	"smartbill/internal/logger"
)

var currencyCmd = &cobra.Command{
	Use:   "currency [code]",
	Short: "Show or set the preferred display currency",
	Long: `Show the preferred display currency, or set it by passing a 3-letter
code. The preference survives restarts and is used to format totals and as
the default currency for captured bills that carry none.`,
	Example: `  # Show the current preference and the supported codes
  smartbill currency

  # Switch to euros
  smartbill currency EUR`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCurrency,
}

func init() {
	rootCmd.AddCommand(currencyCmd)
}

func runCurrency(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("currency")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, slots, err := openStore(ctx, log)
	if err != nil {
		return err
	}
	defer closeSlots(slots, log)

	if len(args) == 0 {
		cur := currency.Lookup(store.PreferredCurrency(ctx))
		fmt.Printf("Preferred currency: %s (%s)\n", cur.Code, strings.TrimSpace(cur.Symbol))
		fmt.Printf("Supported: %s\n", supportedCurrencyCodes())
		return nil
	}

	code := strings.ToUpper(strings.TrimSpace(args[0]))
	if err := store.SetPreferredCurrency(ctx, code); err != nil {
		return fmt.Errorf("failed to set preferred currency: %w (supported: %s)", err, supportedCurrencyCodes())
	}

	log.Info().Str("currency", code).Msg("Preferred currency updated")
	fmt.Printf("Preferred currency set to %s.\n", code)

	return nil
}
