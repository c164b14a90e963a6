package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"smartbill/internal/bill"
	"smartbill/internal/config"
	"smartbill/internal/storage"
)

// openStore opens the slot database and loads the bill store from it.
// The caller closes the returned SlotStore when done.
func openStore(ctx context.Context, log zerolog.Logger) (*bill.Store, *storage.SlotStore, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	slots, err := storage.Open(cfg.DBPath)
	if err != nil {
		log.Error().
			Err(err).
			Str("db_path", cfg.DBPath).
			Msg("Failed to open database")
		return nil, nil, fmt.Errorf("failed to open database %s: %w", cfg.DBPath, err)
	}

	store, err := bill.NewStore(ctx, slots)
	if err != nil {
		if closeErr := slots.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close database")
		}
		return nil, nil, fmt.Errorf("failed to load bill store: %w", err)
	}

	return store, slots, nil
}

// closeSlots closes the slot database, logging any error.
func closeSlots(slots *storage.SlotStore, log zerolog.Logger) {
	if err := slots.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close database")
	}
}

// outputJSON pretty-prints v as JSON to the given file, or to stdout when
// the path is empty.
func outputJSON(v any, outputPath string, log zerolog.Logger) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal output to JSON")
		return fmt.Errorf("failed to create JSON output: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
			log.Error().
				Err(err).
				Str("output_file", outputPath).
				Msg("Failed to write output file")
			return fmt.Errorf("failed to write output file: %w", err)
		}

		log.Info().
			Str("output_file", outputPath).
			Int("bytes", len(jsonData)).
			Msg("Output written to file")
		return nil
	}

	if _, err := os.Stdout.Write(jsonData); err != nil {
		log.Error().Err(err).Msg("Failed to write to stdout")
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Println()

	return nil
}
