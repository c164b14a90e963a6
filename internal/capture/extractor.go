// Package capture implements the bill capture flow: a still image goes to an
// image-analysis backend which returns a partial bill, and the flow completes
// the record and either commits it or stages it for manual review.
//
// Two backends are available: the default runs Cloud Vision OCR over the
// image and has a chat model extract the bill fields from the recognized
// text; the high-accuracy backend sends the image to a Google Document AI
// invoice processor.
package capture

import (
	"context"

	"smartbill/pkg/models"
)

// Extractor is the image-analysis collaborator. It returns a best-effort
// partial bill: any subset of customer name, invoice number, dates, currency,
// total and items may be populated. ID, tags and bookkeeping fields are left
// for the capture service to fill.
type Extractor interface {
	ExtractBill(ctx context.Context, image []byte) (*models.Bill, error)
}
