package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"smartbill/internal/capture"
	"smartbill/internal/config"
	"smartbill/internal/logger"
	"smartbill/internal/ocr"
)

var scanCmd = &cobra.Command{
	Use:   "scan [image-file]",
	Short: "Capture a bill from a photo using AI extraction",
	Long: `Scan a photographed bill and extract its fields into a structured record.

The default backend runs Google Cloud Vision OCR over the image and asks
ChatGPT to structure the recognized text. With --high-accuracy the image is
sent to a Google Document AI invoice processor instead, which is slower but
more precise on dense invoices.

The extracted bill is printed as JSON for review. Pass --auto-save to commit
it to the store directly; otherwise nothing is written and you can save the
record with the add command after checking it.

Required environment variables (default backend):
  GOOGLE_APPLICATION_CREDENTIALS - Path to service account JSON file, OR
  GOOGLE_CREDENTIALS - Inline JSON credentials string
  OPENAI_API_KEY - OpenAI API key

Additionally for --high-accuracy:
  GOOGLE_CLOUD_PROJECT - Your Google Cloud project ID
  GOOGLE_CLOUD_LOCATION - Processing location (us, eu, etc.)
  DOCUMENT_AI_PROCESSOR_ID - Your Document AI invoice processor ID`,
	Example: `  # Extract a bill and print it for review
  smartbill scan bill-photo.jpg

  # Extract and save in one step
  smartbill scan bill-photo.jpg --auto-save

  # Use the Document AI invoice parser
  smartbill scan dense-invoice.png --high-accuracy

  # Save the extracted record to a file
  smartbill scan bill-photo.jpg -o extracted.json`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().Bool("high-accuracy", false, "Use the Document AI invoice processor backend")
	scanCmd.Flags().Bool("auto-save", false, "Commit the extracted bill to the store")
	scanCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	scanCmd.Flags().Int("timeout", 120, "Processing timeout in seconds")
}

func runScan(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("scan")

	highAccuracy, _ := cmd.Flags().GetBool("high-accuracy")
	autoSave, _ := cmd.Flags().GetBool("auto-save")
	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	imagePath := args[0]

	log.Info().
		Str("file", imagePath).
		Bool("high_accuracy", highAccuracy).
		Bool("auto_save", autoSave).
		Msg("Starting bill capture")

	payload, err := readImageFile(imagePath, log)
	if err != nil {
		return err
	}

	ctx, cancel := createScanContext(timeoutSecs, log)
	defer cancel()

	store, slots, err := openStore(ctx, log)
	if err != nil {
		return err
	}
	defer closeSlots(slots, log)

	extractor, cleanup, err := createExtractor(ctx, highAccuracy, log)
	if err != nil {
		return err
	}
	defer cleanup()

	svc := capture.NewService(extractor, store)

	startTime := time.Now()
	result, err := svc.Capture(ctx, payload, capture.Options{
		AutoSave:          autoSave,
		PreferredCurrency: store.PreferredCurrency(ctx),
	})
	if err != nil {
		return handleCaptureError(err, log)
	}

	log.Info().
		Str("bill_id", result.Bill.ID).
		Str("customer", result.Bill.CustomerName).
		Float64("total", result.Bill.TotalAmount).
		Bool("committed", result.Committed).
		Dur("duration", time.Since(startTime)).
		Msg("Bill capture completed")

	if result.Committed {
		fmt.Fprintf(os.Stderr, "Bill %s saved.\n", result.Bill.ID)
	} else {
		fmt.Fprintln(os.Stderr, "Extracted bill staged for review (not saved). Re-run with --auto-save to commit.")
	}

	return outputJSON(result.Bill, outputPath, log)
}

// readImageFile reads and sanity-checks the image file before capture.
func readImageFile(imagePath string, log zerolog.Logger) ([]byte, error) {
	fileInfo, err := os.Stat(imagePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Error().
				Str("file", imagePath).
				Msg("Image file not found")
			return nil, fmt.Errorf("image file not found: %s", imagePath)
		}
		return nil, fmt.Errorf("error accessing image file: %w", err)
	}

	if !fileInfo.Mode().IsRegular() {
		return nil, fmt.Errorf("path is not a regular file: %s", imagePath)
	}

	if fileInfo.Size() == 0 {
		return nil, fmt.Errorf("image file is empty: %s", imagePath)
	}

	if fileInfo.Size() > capture.MaxDocumentSizeBytes {
		log.Error().
			Str("file", imagePath).
			Int64("size", fileInfo.Size()).
			Msg("Image file exceeds maximum size limit")
		return nil, fmt.Errorf("image file too large (%d bytes). Maximum size is %d bytes (20MB)",
			fileInfo.Size(), capture.MaxDocumentSizeBytes)
	}

	payload, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read image file: %w", err)
	}

	return payload, nil
}

// createScanContext creates a context with timeout and signal handling.
func createScanContext(timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling capture")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// createExtractor builds the capture backend selected by the flags.
func createExtractor(ctx context.Context, highAccuracy bool, log zerolog.Logger) (capture.Extractor, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if highAccuracy {
		extractor, err := capture.NewDocAIExtractor(ctx, capture.DocAIConfig{
			ProjectID:   cfg.GoogleCloudProject,
			Location:    cfg.GoogleCloudLocation,
			ProcessorID: cfg.DocumentAIProcessorID,
		})
		if err != nil {
			if errors.Is(err, capture.ErrInvalidConfiguration) {
				return nil, nil, fmt.Errorf("invalid Document AI configuration. Please check your .env file:\n"+
					"  GOOGLE_CLOUD_PROJECT - your Google Cloud project ID\n"+
					"  GOOGLE_CLOUD_LOCATION - processing location (us, eu, etc.)\n"+
					"  DOCUMENT_AI_PROCESSOR_ID - your Document AI processor ID\n"+
					"Original error: %w", err)
			}
			return nil, nil, fmt.Errorf("failed to create Document AI backend: %w", err)
		}
		cleanup := func() {
			if closeErr := extractor.Close(); closeErr != nil {
				log.Warn().Err(closeErr).Msg("Failed to close Document AI client")
			}
		}
		log.Debug().Msg("Using Document AI capture backend")
		return extractor, cleanup, nil
	}

	extractor, err := capture.NewVisionChatExtractor(ctx, capture.ExtractorConfig{
		Model:       cfg.OpenAIModel,
		Temperature: cfg.OpenAITemperature,
		MaxRetries:  cfg.ExtractionRetries,
	})
	if err != nil {
		if errors.Is(err, capture.ErrMissingAPIKey) {
			return nil, nil, fmt.Errorf("missing OpenAI API key. Please set OPENAI_API_KEY in your environment or .env file")
		}
		if errors.Is(err, ocr.ErrMissingCredentials) {
			return nil, nil, fmt.Errorf("missing Google Cloud credentials. Please set one of:\n"+
				"  GOOGLE_APPLICATION_CREDENTIALS=/path/to/service-account-key.json\n"+
				"  GOOGLE_CREDENTIALS='<json-credentials>'\n"+
				"Original error: %w", err)
		}
		return nil, nil, fmt.Errorf("failed to create capture backend: %w", err)
	}
	log.Debug().Msg("Using Vision OCR + ChatGPT capture backend")
	return extractor, func() {}, nil
}

// handleCaptureError provides user-friendly error messages for capture failures.
func handleCaptureError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Bill capture failed")

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("bill capture timed out. Try increasing --timeout or using a smaller image")
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("bill capture was canceled")
	case errors.Is(err, capture.ErrInvalidPayload):
		return fmt.Errorf("unsupported image data. Supported formats: JPEG, PNG, GIF, WebP, BMP, TIFF")
	case errors.Is(err, ocr.ErrEmptyImage):
		return fmt.Errorf("no readable text found in the image. Try a sharper, better-lit photo")
	case errors.Is(err, capture.ErrEmptyExtraction):
		return fmt.Errorf("could not recognize bill fields in the image. Try a clearer photo or --high-accuracy")
	case errors.Is(err, capture.ErrProcessingFailed):
		return fmt.Errorf("document processing failed. This may be due to network issues or service unavailability: %w", err)
	default:
		return fmt.Errorf("bill capture failed: %w", err)
	}
}
