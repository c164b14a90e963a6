package capture

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"smartbill/internal/logger"
	"smartbill/pkg/models"
)

// Committer is the store surface the capture flow commits through.
type Committer interface {
	Upsert(ctx context.Context, b models.Bill) error
}

// Options control one capture invocation.
type Options struct {
	// AutoSave commits the completed bill directly instead of staging it
	// for manual review.
	AutoSave bool

	// PreferredCurrency fills the bill's currency when the extraction
	// omitted it.
	PreferredCurrency string
}

// Result is the outcome of one capture invocation.
type Result struct {
	// Bill is the completed record: committed when Committed is true,
	// otherwise staged for the caller to review and save.
	Bill models.Bill

	// Committed reports whether the bill was written to the store.
	Committed bool
}

// Service orchestrates the capture flow: decode the payload, run the
// extraction backend, complete the record and commit or stage it.
type Service struct {
	extractor Extractor
	store     Committer
	log       zerolog.Logger
}

// NewService creates the capture service.
func NewService(extractor Extractor, store Committer) *Service {
	return &Service{
		extractor: extractor,
		store:     store,
		log:       logger.WithComponent("capture"),
	}
}

// Capture runs the flow for one image payload. Extraction failure surfaces
// as an ExtractionError with no store mutation; with auto-save off, no store
// mutation happens at all and the staged bill is returned for manual review.
func (s *Service) Capture(ctx context.Context, payload []byte, opts Options) (*Result, error) {
	const op = "Capture"

	image, err := DecodePayload(payload)
	if err != nil {
		return nil, err
	}

	extracted, err := s.extractor.ExtractBill(ctx, image)
	if err != nil {
		return nil, WrapExtractionError(op, err, "")
	}

	bill := CompleteBill(*extracted, opts.PreferredCurrency)

	if !opts.AutoSave {
		s.log.Info().
			Str("bill_id", bill.ID).
			Str("customer", bill.CustomerName).
			Msg("Captured bill staged for review")
		return &Result{Bill: bill, Committed: false}, nil
	}

	if err := s.store.Upsert(ctx, bill); err != nil {
		return nil, WrapExtractionError(op, err, "failed to save captured bill")
	}
	s.log.Info().
		Str("bill_id", bill.ID).
		Str("customer", bill.CustomerName).
		Msg("Captured bill auto-saved")
	return &Result{Bill: bill, Committed: true}, nil
}

// CompleteBill turns a partial extraction result into a full capture record:
// fresh ID, currency defaulted to the preferred currency, empty tag set,
// last-modified stamp and the new-record marker.
func CompleteBill(extracted models.Bill, preferredCurrency string) models.Bill {
	bill := extracted
	bill.ID = uuid.NewString()
	if bill.Currency == "" {
		bill.Currency = preferredCurrency
	}
	if bill.Status == "" {
		bill.Status = models.StatusUnpaid
	}
	bill.Tags = []string{}
	bill.LastModified = time.Now().UTC().Format(time.RFC3339)
	bill.IsNew = true
	return bill
}
