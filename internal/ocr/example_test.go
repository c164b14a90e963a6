package ocr_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"smartbill/internal/ocr"
)

// Example demonstrates basic usage of the OCR service on a captured bill image.
func Example() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// Create OCR service - credentials handled internally from environment
	service, err := ocr.NewGoogleVisionOCRService(ctx)
	if err != nil {
		log.Fatal(err)
	}

	image, err := os.ReadFile("bill_capture.jpg")
	if err != nil {
		log.Fatalf("Failed to read image: %v", err)
	}

	text, err := service.ProcessImage(ctx, image)
	if err != nil {
		log.Fatalf("Failed to process image: %v", err)
	}

	fmt.Printf("Extracted %d characters of text\n", len(text))
}

// ExampleOCRService_withMetadata demonstrates OCR with confidence metadata.
func ExampleOCRService_withMetadata() {
	ctx := context.Background()

	service, err := ocr.NewGoogleVisionOCRService(ctx)
	if err != nil {
		log.Fatal(err)
	}

	image, err := os.ReadFile("bill_capture.jpg")
	if err != nil {
		log.Fatal(err)
	}

	result, err := service.ProcessImageWithMetadata(ctx, image)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Confidence: %.1f%%\n", result.Confidence*100)
	fmt.Printf("Languages: %v\n", result.LanguageCodes)
	fmt.Printf("Duration: %v\n", result.ProcessingDuration)
}
