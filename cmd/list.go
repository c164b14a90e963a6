package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"smartbill/internal/bill"
	"smartbill/internal/currency"
	"smartbill/internal/logger"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Browse bills with search, sorting and pagination",
	Long: `List stored bills one page at a time.

Bills can be filtered by a case-insensitive search over customer names and
tags, sorted by date, amount or customer name in either direction, and are
shown five per page. The page number is clamped to the available range, so
narrowing a search never leaves you on an empty page.`,
	Example: `  # Newest bills first
  smartbill list

  # Everything tagged urgent, whatever the tag's casing
  smartbill list --query urgent

  # Largest bills first, second page
  smartbill list --sort totalAmount --dir desc --page 2

  # Machine-readable page
  smartbill list -o page.json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringP("query", "q", "", "Filter by customer name or tag (case-insensitive substring)")
	listCmd.Flags().String("sort", string(bill.SortByDate), "Sort key: date, dueDate, totalAmount, customerName or status")
	listCmd.Flags().String("dir", string(bill.Descending), "Sort direction: asc or desc")
	listCmd.Flags().Int("page", 1, "Page number (clamped to the available range)")
	listCmd.Flags().StringP("output", "o", "", "Output file path for JSON (default: table on stdout)")
}

func runList(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("list")

	query, _ := cmd.Flags().GetString("query")
	sortFlag, _ := cmd.Flags().GetString("sort")
	dirFlag, _ := cmd.Flags().GetString("dir")
	pageFlag, _ := cmd.Flags().GetInt("page")
	outputPath, _ := cmd.Flags().GetString("output")
	jsonOut := cmd.Flags().Changed("output")

	key, err := bill.ParseSortKey(sortFlag)
	if err != nil {
		return err
	}
	dir, err := bill.ParseSortDirection(dirFlag)
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

	page := bill.List(store.Bills(), bill.ListQuery{
		Search:    query,
		Key:       key,
		Direction: dir,
		Page:      pageFlag,
	})

	log.Debug().
		Str("query", query).
		Str("sort", string(key)).
		Str("dir", string(dir)).
		Int("page", page.Page).
		Int("total", page.TotalCount).
		Msg("Listing bills")

	if jsonOut {
		return outputJSON(page, outputPath, log)
	}

	if page.TotalCount == 0 {
		if query != "" {
			fmt.Printf("No bills match %q.\n", query)
		} else {
			fmt.Println("No bills recorded yet. Use scan or add to create one.")
		}
		return nil
	}

	for _, b := range page.Bills {
		tags := ""
		if len(b.Tags) > 0 {
			tags = fmt.Sprintf("  [%s]", joinTags(b.Tags))
		}
		fmt.Printf("%-36s  %-10s  %-8s  %-20s  %12s%s\n",
			b.ID, b.Date, b.Status, b.CustomerName,
			currency.Format(b.TotalAmount, b.Currency), tags)
	}
	fmt.Printf("\nPage %d of %d (%d bill(s) matched)\n", page.Page, page.TotalPages, page.TotalCount)

	return nil
}

func joinTags(tags []string) string {
	out := ""
	for i, t := range tags {
		if i > 0 {
			out += ", "
		}
		out += t
	}
	return out
}
