package capture

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"smartbill/internal/logger"
	"smartbill/internal/ocr"
	"smartbill/pkg/models"
)

// ExtractorConfig configures the OCR + chat extraction backend.
type ExtractorConfig struct {
	Model       string  // chat model name
	Temperature float32 // completion temperature
	MaxRetries  int     // chat retry attempts
}

// DefaultExtractorConfig returns an ExtractorConfig with sensible defaults.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		Model:       "gpt-4o-mini",
		Temperature: 0.1,
		MaxRetries:  3,
	}
}

// VisionChatExtractor extracts bill fields by running Cloud Vision OCR over
// the captured image and asking a chat model to structure the recognized text.
type VisionChatExtractor struct {
	ocrService   ocr.OCRService
	openaiClient *openai.Client
	config       ExtractorConfig
	log          zerolog.Logger
}

// NewVisionChatExtractor creates the extractor with dependencies from the
// environment: Google credentials for Vision and OPENAI_API_KEY for the
// chat model.
func NewVisionChatExtractor(ctx context.Context, config ExtractorConfig) (*VisionChatExtractor, error) {
	const op = "NewVisionChatExtractor"

	ocrService, err := ocr.NewGoogleVisionOCRService(ctx)
	if err != nil {
		return nil, WrapExtractionError(op, err, "failed to create OCR service")
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, WrapExtractionError(op, ErrMissingAPIKey, "")
	}

	return NewVisionChatExtractorWithDeps(ocrService, openai.NewClient(apiKey), config), nil
}

// NewVisionChatExtractorWithDeps creates the extractor with explicit dependencies.
func NewVisionChatExtractorWithDeps(ocrService ocr.OCRService, openaiClient *openai.Client, config ExtractorConfig) *VisionChatExtractor {
	if config.Model == "" {
		config.Model = DefaultExtractorConfig().Model
	}
	if config.MaxRetries < 1 {
		config.MaxRetries = 1
	}
	return &VisionChatExtractor{
		ocrService:   ocrService,
		openaiClient: openaiClient,
		config:       config,
		log:          logger.WithComponent("capture-extractor"),
	}
}

// ExtractBill implements Extractor.
func (e *VisionChatExtractor) ExtractBill(ctx context.Context, image []byte) (*models.Bill, error) {
	const op = "ExtractBill"

	ocrResult, err := e.ocrService.ProcessImageWithMetadata(ctx, image)
	if err != nil {
		return nil, WrapExtractionError(op, err, "OCR failed")
	}

	e.log.Info().
		Int("text_length", len(ocrResult.Text)).
		Float32("confidence", ocrResult.Confidence).
		Msg("OCR extraction completed")

	var lastErr error
	for attempt := 1; attempt <= e.config.MaxRetries; attempt++ {
		resp, err := e.openaiClient.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       e.config.Model,
			Temperature: e.config.Temperature,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: extractionSystemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: buildExtractionPrompt(ocrResult.Text),
				},
			},
			MaxTokens: 1000,
		})
		if err != nil {
			lastErr = err
			e.log.Warn().
				Err(err).
				Int("attempt", attempt).
				Int("max_retries", e.config.MaxRetries).
				Msg("Chat request failed, retrying")
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("no response choices from chat model")
			continue
		}

		bill, err := ParseExtractionResponse(resp.Choices[0].Message.Content)
		if err != nil {
			lastErr = err
			e.log.Warn().
				Err(err).
				Int("attempt", attempt).
				Msg("Failed to parse chat response, retrying")
			continue
		}

		e.log.Info().
			Str("customer", bill.CustomerName).
			Float64("total", bill.TotalAmount).
			Int("items", len(bill.Items)).
			Int("attempt", attempt).
			Msg("Bill data extracted from image")
		return bill, nil
	}

	return nil, WrapExtractionError(op,
		ErrExtractionFailed,
		fmt.Sprintf("all %d attempts failed, last error: %v", e.config.MaxRetries, lastErr))
}

// extractionSystemPrompt instructs the chat model to act as financial OCR.
const extractionSystemPrompt = `You are a specialized financial OCR assistant. You receive the raw text recognized on a scanned bill or invoice and extract its structured fields.

Rules:
- Return ONLY valid JSON with NO trailing commas and no text before or after.
- Use null for values not present on the bill.
- Dates must be in YYYY-MM-DD format.
- currency must be a 3-letter ISO code.
- Amounts may appear with thousands separators; return them as plain numbers.`

// buildExtractionPrompt creates the user prompt around the OCR text.
func buildExtractionPrompt(ocrText string) string {
	var prompt strings.Builder
	prompt.WriteString("Extract the bill fields from this recognized text:\n\n")
	prompt.WriteString(ocrText)
	prompt.WriteString("\n\nReturn JSON with these fields:\n")
	prompt.WriteString("{\n")
	prompt.WriteString(`  "customerName": "the billed party or vendor name",` + "\n")
	prompt.WriteString(`  "invoiceNumber": "invoice or reference number",` + "\n")
	prompt.WriteString(`  "date": "YYYY-MM-DD",` + "\n")
	prompt.WriteString(`  "dueDate": "YYYY-MM-DD",` + "\n")
	prompt.WriteString(`  "currency": "3-letter ISO code",` + "\n")
	prompt.WriteString(`  "totalAmount": 0,` + "\n")
	prompt.WriteString(`  "items": [{"description": "", "quantity": 1, "rate": 0, "amount": 0}]` + "\n")
	prompt.WriteString("}\n")
	return prompt.String()
}

// extractionItem is the wire form of a line item in the chat response.
type extractionItem struct {
	Description string     `json:"description"`
	Quantity    flexNumber `json:"quantity"`
	Rate        flexNumber `json:"rate"`
	Amount      flexNumber `json:"amount"`
}

// extractionResponse is the wire form of the chat response.
type extractionResponse struct {
	CustomerName  string           `json:"customerName"`
	InvoiceNumber string           `json:"invoiceNumber"`
	Date          string           `json:"date"`
	DueDate       string           `json:"dueDate"`
	Currency      string           `json:"currency"`
	TotalAmount   flexNumber       `json:"totalAmount"`
	Items         []extractionItem `json:"items"`
}

// ParseExtractionResponse parses the chat model output into a partial bill.
// The response shape is not trusted: markdown fences are stripped, numbers
// are accepted as numbers or formatted strings, and a response carrying no
// usable bill content is rejected with ErrEmptyExtraction.
func ParseExtractionResponse(content string) (*models.Bill, error) {
	const op = "ParseExtractionResponse"

	cleaned := stripMarkdownFences(content)

	var wire extractionResponse
	if err := json.Unmarshal([]byte(cleaned), &wire); err != nil {
		return nil, WrapExtractionError(op, err, "response is not valid JSON")
	}

	bill := &models.Bill{
		CustomerName:  strings.TrimSpace(wire.CustomerName),
		InvoiceNumber: strings.TrimSpace(wire.InvoiceNumber),
		Date:          strings.TrimSpace(wire.Date),
		DueDate:       strings.TrimSpace(wire.DueDate),
		Currency:      strings.ToUpper(strings.TrimSpace(wire.Currency)),
		TotalAmount:   float64(wire.TotalAmount),
	}
	for _, it := range wire.Items {
		item := models.BillItem{
			Description: strings.TrimSpace(it.Description),
			Quantity:    float64(it.Quantity),
			Rate:        float64(it.Rate),
			Amount:      float64(it.Amount),
		}
		if item.Amount == 0 && item.Quantity != 0 && item.Rate != 0 {
			item.Amount = item.Quantity * item.Rate
		}
		bill.Items = append(bill.Items, item)
	}

	if bill.CustomerName == "" && bill.TotalAmount == 0 && len(bill.Items) == 0 {
		return nil, WrapExtractionError(op, ErrEmptyExtraction, "")
	}
	return bill, nil
}

// stripMarkdownFences removes a ```json ... ``` wrapper if the model added one.
func stripMarkdownFences(content string) string {
	cleaned := strings.TrimSpace(content)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
	} else {
		return cleaned
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}

// flexNumber accepts a JSON number, a numeric string (possibly with currency
// symbols or thousands separators) or null.
type flexNumber float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *flexNumber) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "null" || text == `""` {
		*f = 0
		return nil
	}
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := parseAmountString(s)
		if err != nil {
			return err
		}
		*f = flexNumber(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = flexNumber(v)
	return nil
}

// parseAmountString parses amount text handling currency symbols and both
// decimal-comma and decimal-point formats.
func parseAmountString(s string) (float64, error) {
	cleaned := strings.TrimSpace(s)
	for _, junk := range []string{" ", "€", "$", "£", "¥", "Rs"} {
		cleaned = strings.ReplaceAll(cleaned, junk, "")
	}

	lastComma := strings.LastIndexByte(cleaned, ',')
	lastDot := strings.LastIndexByte(cleaned, '.')
	switch {
	case lastComma >= 0 && lastDot >= 0:
		// Both present: the later separator is the decimal one.
		if lastComma > lastDot {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastComma >= 0:
		parts := strings.Split(cleaned, ",")
		if len(parts) == 2 && len(parts[1]) <= 2 {
			// Decimal comma, e.g. "1234,50".
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("unable to parse amount: %q", s)
	}
	return v, nil
}
