package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"smartbill/internal/bill"
	"smartbill/internal/currency"
	"smartbill/internal/logger"
	"smartbill/pkg/models"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a bill by hand",
	Long: `Record a bill from the command line without scanning an image.

Line items are given as description:quantity:rate triples; the item amount
and the bill total are computed for you. The record is validated (customer
name required, no negative rates) and saved to the store. Passing --id of
an existing bill replaces that bill in place.`,
	Example: `  # Minimal bill for today
  smartbill add --customer "Acme Corp" --item "Consulting:10:150"

  # Full record
  smartbill add --customer "Ocean Ltd" --date 2026-08-01 --due 2026-08-31 \
    --status UNPAID --currency EUR \
    --item "Design:1:500" --item "Hosting:12:25" \
    --tag retainer --tag urgent --notes "August retainer"

  # Edit an existing bill in place
  smartbill add --id 3f2c... --customer "Acme Corp" --status PAID --item "Consulting:10:150"`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().String("id", "", "Bill ID to replace (default: create a new bill)")
	addCmd.Flags().String("customer", "", "Customer name (required)")
	addCmd.Flags().String("invoice-number", "", "Invoice number")
	addCmd.Flags().String("date", "", "Bill date as YYYY-MM-DD (default: today)")
	addCmd.Flags().String("due", "", "Due date as YYYY-MM-DD (default: the bill date)")
	addCmd.Flags().String("status", string(models.StatusUnpaid), "Payment status: PAID, UNPAID or OVERDUE")
	addCmd.Flags().String("currency", "", "3-letter currency code (default: preferred currency)")
	addCmd.Flags().StringArray("item", nil, "Line item as description:quantity:rate (repeatable)")
	addCmd.Flags().StringArray("tag", nil, "Tag (repeatable)")
	addCmd.Flags().String("notes", "", "Free-form notes")
	addCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
}

func runAdd(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("add")

	id, _ := cmd.Flags().GetString("id")
	customer, _ := cmd.Flags().GetString("customer")
	invoiceNumber, _ := cmd.Flags().GetString("invoice-number")
	date, _ := cmd.Flags().GetString("date")
	due, _ := cmd.Flags().GetString("due")
	status, _ := cmd.Flags().GetString("status")
	currencyCode, _ := cmd.Flags().GetString("currency")
	itemSpecs, _ := cmd.Flags().GetStringArray("item")
	tags, _ := cmd.Flags().GetStringArray("tag")
	notes, _ := cmd.Flags().GetString("notes")
	outputPath, _ := cmd.Flags().GetString("output")

	billStatus, err := parseStatus(status)
	if err != nil {
		return err
	}

	items, err := parseItems(itemSpecs)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, slots, err := openStore(ctx, log)
	if err != nil {
		return err
	}
	defer closeSlots(slots, log)

	if currencyCode == "" {
		currencyCode = store.PreferredCurrency(ctx)
	} else {
		currencyCode = strings.ToUpper(currencyCode)
		if !currency.IsSupported(currencyCode) {
			return fmt.Errorf("unsupported currency %q. Supported: %s", currencyCode, supportedCurrencyCodes())
		}
	}

	record := models.Bill{
		ID:            id,
		InvoiceNumber: invoiceNumber,
		CustomerName:  customer,
		Date:          date,
		DueDate:       due,
		Status:        billStatus,
		Currency:      currencyCode,
		Items:         items,
		Notes:         notes,
		Tags:          tags,
	}

	finalized, err := bill.Finalize(record)
	if err != nil {
		var valErr *bill.ValidationError
		if errors.As(err, &valErr) {
			fmt.Fprintln(os.Stderr, "The bill is not valid:")
			for _, fe := range valErr.Fields {
				fmt.Fprintf(os.Stderr, "  %s: %s\n", fe.Field, fe.Message)
			}
			return fmt.Errorf("validation failed")
		}
		return err
	}

	if err := store.Upsert(ctx, finalized); err != nil {
		log.Error().Err(err).Msg("Failed to save bill")
		return fmt.Errorf("failed to save bill: %w", err)
	}

	log.Info().
		Str("bill_id", finalized.ID).
		Str("customer", finalized.CustomerName).
		Float64("total", finalized.TotalAmount).
		Msg("Bill saved")

	fmt.Fprintf(os.Stderr, "Saved bill %s (%s).\n",
		finalized.ID, currency.Format(finalized.TotalAmount, finalized.Currency))

	return outputJSON(finalized, outputPath, log)
}

func parseStatus(s string) (models.BillStatus, error) {
	switch models.BillStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case models.StatusPaid:
		return models.StatusPaid, nil
	case models.StatusUnpaid:
		return models.StatusUnpaid, nil
	case models.StatusOverdue:
		return models.StatusOverdue, nil
	default:
		return "", fmt.Errorf("invalid status %q (expected PAID, UNPAID or OVERDUE)", s)
	}
}

// parseItems parses description:quantity:rate triples. The description may
// itself contain colons; quantity and rate are taken from the last two fields.
func parseItems(specs []string) ([]models.BillItem, error) {
	items := make([]models.BillItem, 0, len(specs))

	for _, spec := range specs {
		parts := strings.Split(spec, ":")
		if len(parts) < 3 {
			return nil, fmt.Errorf("invalid item %q (expected description:quantity:rate)", spec)
		}

		desc := strings.Join(parts[:len(parts)-2], ":")
		qtyStr := parts[len(parts)-2]
		rateStr := parts[len(parts)-1]

		qty, err := strconv.ParseFloat(strings.TrimSpace(qtyStr), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid quantity %q in item %q", qtyStr, spec)
		}
		rate, err := strconv.ParseFloat(strings.TrimSpace(rateStr), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid rate %q in item %q", rateStr, spec)
		}

		items = append(items, models.BillItem{
			Description: strings.TrimSpace(desc),
			Quantity:    qty,
			Rate:        rate,
			Amount:      qty * rate,
		})
	}

	return items, nil
}

func supportedCurrencyCodes() string {
	codes := make([]string, 0, len(currency.Supported))
	for _, c := range currency.Supported {
		codes = append(codes, c.Code)
	}
	return strings.Join(codes, ", ")
}
