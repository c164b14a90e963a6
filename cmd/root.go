package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"smartbill/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "smartbill",
	Short: "SmartBill CLI - AI-assisted billing for small businesses",
	Long: `SmartBill CLI manages your bills from the terminal: scan paper bills
with AI-assisted capture, record them by hand, browse and summarize them,
and simulate an AI code-review bot over pull-request diffs.

Bills are kept in a local database. Commands that talk to AI services
read their credentials from the environment; everything else works offline.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("SmartBill CLI executed")

		fmt.Println("Welcome to SmartBill!")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
