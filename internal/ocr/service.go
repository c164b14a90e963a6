// Package ocr extracts text from captured bill images using the Google
// Cloud Vision API.
//
// Images come from the capture flow as single still frames (JPEG or PNG)
// and are processed synchronously with document text detection.
//
// Required Environment Variables:
//   - GOOGLE_APPLICATION_CREDENTIALS: Path to service account JSON file, OR
//   - GOOGLE_CREDENTIALS: Inline JSON credentials string
//
// Cloud Vision API Limitations:
//   - Maximum image size: 20MB for synchronous processing
//   - Supported formats: JPEG, PNG, GIF, BMP, WEBP, TIFF
package ocr

import (
	"context"
	"time"
)

// OCRService defines the interface for OCR text extraction services.
type OCRService interface {
	// ProcessImage extracts text from a still image.
	ProcessImage(ctx context.Context, image []byte) (string, error)

	// ProcessImageWithMetadata extracts text from a still image with
	// confidence and timing metadata.
	ProcessImageWithMetadata(ctx context.Context, image []byte) (*OCRResult, error)
}

// OCRResult contains the results of OCR processing with metadata.
type OCRResult struct {
	// Text is the extracted text content in reading order.
	Text string `json:"text"`

	// Confidence is the average confidence score across detected text (0.0 to 1.0).
	Confidence float32 `json:"confidence"`

	// LanguageCodes contains the detected languages in the image.
	LanguageCodes []string `json:"language_codes,omitempty"`

	// ProcessedAt is when the OCR processing completed.
	ProcessedAt time.Time `json:"processed_at"`

	// ProcessingDuration is how long the OCR processing took.
	ProcessingDuration time.Duration `json:"processing_duration"`
}
