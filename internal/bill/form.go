package bill

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"smartbill/pkg/models"
)

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError blocks a save and reports the offending fields. It is the
// only locally recoverable error kind: the caller fixes the fields and
// retries the save.
type ValidationError struct {
	Fields []FieldError
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validate checks the locally enforced save rules: a non-blank customer name
// and no negative item rates.
func Validate(b models.Bill) error {
	var fields []FieldError
	if strings.TrimSpace(b.CustomerName) == "" {
		fields = append(fields, FieldError{Field: "customerName", Message: "required"})
	}
	for i, it := range b.Items {
		if it.Rate < 0 {
			fields = append(fields, FieldError{
				Field:   fmt.Sprintf("items[%d].rate", i),
				Message: "rates must be positive",
			})
			break
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Finalize applies the save-time rules to a bill and returns the record
// ready for Upsert: validation, ID assignment for new records, date
// defaulting, total recomputation and the last-modified stamp. TotalAmount
// is always recomputed from the items; the incoming value is never trusted.
func Finalize(b models.Bill) (models.Bill, error) {
	if err := Validate(b); err != nil {
		return models.Bill{}, err
	}

	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Date == "" {
		b.Date = time.Now().Format("2006-01-02")
	}
	if b.DueDate == "" {
		b.DueDate = b.Date
	}
	if b.Status == "" {
		b.Status = models.StatusUnpaid
	}
	if b.Items == nil {
		b.Items = []models.BillItem{}
	}
	if b.Tags == nil {
		b.Tags = []string{}
	}

	var total float64
	for _, it := range b.Items {
		total += it.Amount
	}
	b.TotalAmount = total
	b.LastModified = time.Now().UTC().Format(time.RFC3339)
	return b, nil
}

// SetItemQuantity updates an item's quantity and recomputes its amount.
func SetItemQuantity(items []models.BillItem, index int, quantity float64) {
	if index < 0 || index >= len(items) {
		return
	}
	items[index].Quantity = quantity
	items[index].Amount = items[index].Quantity * items[index].Rate
}

// SetItemRate updates an item's rate and recomputes its amount.
func SetItemRate(items []models.BillItem, index int, rate float64) {
	if index < 0 || index >= len(items) {
		return
	}
	items[index].Rate = rate
	items[index].Amount = items[index].Quantity * items[index].Rate
}

// SplitItem halves an item's rate and inserts a "(Part 2)" duplicate
// immediately after it; both halves get recomputed amounts. Out-of-range
// indices return the sequence unchanged.
func SplitItem(items []models.BillItem, index int) []models.BillItem {
	if index < 0 || index >= len(items) {
		return items
	}
	item := items[index]
	halfRate := item.Rate / 2

	first := item
	first.Rate = halfRate
	first.Amount = first.Quantity * halfRate

	second := item
	second.Description = item.Description + " (Part 2)"
	second.Rate = halfRate
	second.Amount = second.Quantity * halfRate

	out := make([]models.BillItem, 0, len(items)+1)
	out = append(out, items[:index]...)
	out = append(out, first, second)
	out = append(out, items[index+1:]...)
	return out
}
