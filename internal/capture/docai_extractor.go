package capture

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"smartbill/internal/logger"
	"smartbill/internal/ocr"
	"smartbill/pkg/models"
)

// MaxDocumentSizeBytes is the maximum document size for Document AI processing (20MB).
const MaxDocumentSizeBytes = 20 * 1024 * 1024

// DocAIConfig holds configuration for the Document AI capture backend.
type DocAIConfig struct {
	// ProjectID is the Google Cloud project ID where Document AI is enabled.
	ProjectID string

	// Location is the processing location (e.g., "us", "eu").
	Location string

	// ProcessorID is the Document AI invoice processor ID.
	ProcessorID string

	// Timeout is the maximum time to wait for processing. Default: 60 seconds.
	Timeout time.Duration
}

// DocAIExtractor implements Extractor using a Google Document AI invoice
// processor. It is the high-accuracy capture backend.
type DocAIExtractor struct {
	client *documentai.DocumentProcessorClient
	config DocAIConfig
	log    zerolog.Logger
}

// NewDocAIExtractor creates the extractor with credentials from environment.
// Expects GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS, and requires
// a project ID and processor ID in the config.
func NewDocAIExtractor(ctx context.Context, config DocAIConfig) (*DocAIExtractor, error) {
	const op = "NewDocAIExtractor"

	if config.ProjectID == "" {
		return nil, WrapExtractionError(op, ErrInvalidConfiguration, "GOOGLE_CLOUD_PROJECT is required")
	}
	if config.ProcessorID == "" {
		return nil, WrapExtractionError(op, ErrInvalidConfiguration, "DOCUMENT_AI_PROCESSOR_ID is required")
	}
	if config.Location == "" {
		config.Location = "us"
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}

	var clientOptions []option.ClientOption
	if config.Location != "us" {
		endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", config.Location)
		clientOptions = append(clientOptions, option.WithEndpoint(endpoint))
	}
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		clientOptions = append(clientOptions, option.WithCredentialsJSON([]byte(credJSON)))
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		clientOptions = append(clientOptions, option.WithCredentialsFile(credFile))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, clientOptions...)
	if err != nil {
		return nil, WrapExtractionError(op, err, fmt.Sprintf("failed to create Document AI client for location %s", config.Location))
	}

	return &DocAIExtractor{
		client: client,
		config: config,
		log:    logger.WithComponent("capture-docai"),
	}, nil
}

// NewDocAIExtractorWithClient creates the extractor with an explicit client (for testing).
func NewDocAIExtractorWithClient(config DocAIConfig, client *documentai.DocumentProcessorClient) *DocAIExtractor {
	return &DocAIExtractor{
		client: client,
		config: config,
		log:    logger.WithComponent("capture-docai"),
	}
}

// ExtractBill implements Extractor.
func (d *DocAIExtractor) ExtractBill(ctx context.Context, image []byte) (*models.Bill, error) {
	const op = "ExtractBill"

	if len(image) > MaxDocumentSizeBytes {
		return nil, WrapExtractionError(op, ErrInvalidPayload, fmt.Sprintf("image size: %d bytes", len(image)))
	}
	mimeType := ocr.SniffImageMIME(image)
	if mimeType == "" {
		return nil, WrapExtractionError(op, ErrInvalidPayload, "unrecognized image header")
	}

	processCtx, cancel := context.WithTimeout(ctx, d.config.Timeout)
	defer cancel()

	req := &documentaipb.ProcessRequest{
		Name: d.processorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  image,
				MimeType: mimeType,
			},
		},
	}

	resp, err := d.client.ProcessDocument(processCtx, req)
	if err != nil {
		return nil, d.handleProcessingError(op, err)
	}
	if resp.Document == nil {
		return nil, WrapExtractionError(op, ErrProcessingFailed, "no document in response")
	}

	bill := d.extractBillData(resp.Document)
	if bill.CustomerName == "" && bill.TotalAmount == 0 && len(bill.Items) == 0 {
		return nil, WrapExtractionError(op, ErrEmptyExtraction, "")
	}
	return bill, nil
}

// processorName constructs the full processor name for the Document AI API.
func (d *DocAIExtractor) processorName() string {
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s",
		d.config.ProjectID, d.config.Location, d.config.ProcessorID)
}

// handleProcessingError converts Document AI errors to capture errors.
func (d *DocAIExtractor) handleProcessingError(op string, err error) error {
	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "PERMISSION_DENIED"):
		return WrapExtractionError(op, ErrProcessingFailed, "insufficient permissions for Document AI")
	case strings.Contains(errStr, "NOT_FOUND"):
		return WrapExtractionError(op, ErrProcessingFailed, fmt.Sprintf("processor not found: %s", d.config.ProcessorID))
	case strings.Contains(errStr, "INVALID_ARGUMENT"):
		return WrapExtractionError(op, ErrInvalidPayload, "image format not supported or corrupted")
	case strings.Contains(errStr, "context deadline exceeded"):
		return WrapExtractionError(op, context.DeadlineExceeded, "processing timeout")
	default:
		return WrapExtractionError(op, ErrProcessingFailed, fmt.Sprintf("Document AI error: %v", err))
	}
}

// extractBillData converts Document AI entities to a partial bill.
func (d *DocAIExtractor) extractBillData(doc *documentaipb.Document) *models.Bill {
	bill := &models.Bill{}

	for _, entity := range doc.Entities {
		value := strings.TrimSpace(entity.MentionText)

		d.log.Debug().
			Str("entity_type", entity.Type).
			Str("value", value).
			Float32("confidence", entity.Confidence).
			Msg("Processing Document AI entity")

		switch entity.Type {
		case "supplier_name", "vendor_name":
			bill.CustomerName = value
		case "invoice_id", "invoice_number":
			bill.InvoiceNumber = value
		case "invoice_date":
			if date, ok := d.extractDate(entity); ok {
				bill.Date = date
			}
		case "due_date":
			if date, ok := d.extractDate(entity); ok {
				bill.DueDate = date
			}
		case "total_amount", "gross_amount":
			if amount, err := d.extractMoneyValue(entity); err == nil {
				bill.TotalAmount = amount
			} else {
				d.log.Warn().Err(err).Str("raw_value", value).Msg("Failed to extract total amount")
			}
		case "currency":
			if value != "" {
				bill.Currency = strings.ToUpper(value)
			}
		case "line_item":
			if item, ok := d.extractLineItem(entity); ok {
				bill.Items = append(bill.Items, item)
			}
		}
	}

	return bill
}

// extractDate extracts a YYYY-MM-DD date from a Document AI entity.
func (d *DocAIExtractor) extractDate(entity *documentaipb.Document_Entity) (string, bool) {
	if entity.NormalizedValue != nil {
		if dv := entity.NormalizedValue.GetDateValue(); dv != nil {
			return fmt.Sprintf("%04d-%02d-%02d", dv.Year, dv.Month, dv.Day), true
		}
	}

	dateStr := strings.TrimSpace(entity.MentionText)
	formats := []string{"2006-01-02", "01/02/2006", "02.01.2006", "2006/01/02", "January 2, 2006", "Jan 2, 2006"}
	for _, format := range formats {
		if date, err := time.Parse(format, dateStr); err == nil {
			return date.Format("2006-01-02"), true
		}
	}
	return "", false
}

// extractMoneyValue extracts a monetary value from a Document AI entity.
func (d *DocAIExtractor) extractMoneyValue(entity *documentaipb.Document_Entity) (float64, error) {
	if entity.NormalizedValue != nil {
		if mv := entity.NormalizedValue.GetMoneyValue(); mv != nil {
			return float64(mv.Units) + float64(mv.Nanos)/1e9, nil
		}
	}

	amountStr := strings.TrimSpace(entity.MentionText)
	if amountStr == "" {
		return 0, fmt.Errorf("empty amount value")
	}
	return parseAmountString(amountStr)
}

// extractLineItem builds a bill item from a line_item entity's properties.
func (d *DocAIExtractor) extractLineItem(entity *documentaipb.Document_Entity) (models.BillItem, bool) {
	var item models.BillItem
	for _, prop := range entity.Properties {
		value := strings.TrimSpace(prop.MentionText)
		switch prop.Type {
		case "line_item/description":
			item.Description = value
		case "line_item/quantity":
			if qty, err := parseAmountString(value); err == nil {
				item.Quantity = qty
			}
		case "line_item/unit_price":
			if rate, err := parseAmountString(value); err == nil {
				item.Rate = rate
			}
		case "line_item/amount":
			if amount, err := d.extractMoneyValue(prop); err == nil {
				item.Amount = amount
			}
		}
	}
	if item.Description == "" && item.Amount == 0 {
		return models.BillItem{}, false
	}
	if item.Amount == 0 && item.Quantity != 0 && item.Rate != 0 {
		item.Amount = item.Quantity * item.Rate
	}
	return item, true
}

// Close closes the underlying Document AI client.
func (d *DocAIExtractor) Close() error {
	if d.client != nil {
		return d.client.Close()
	}
	return nil
}
