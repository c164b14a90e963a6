package capture

import (
	"errors"
	"testing"
)

func TestParseExtractionResponse(t *testing.T) {
	content := "```json\n" + `{
		"customerName": " Blue Ocean Traders ",
		"invoiceNumber": "INV-42",
		"date": "2024-03-01",
		"dueDate": "2024-03-15",
		"currency": "usd",
		"totalAmount": "1,234.50",
		"items": [
			{"description": "Freight", "quantity": 2, "rate": 500, "amount": 0},
			{"description": "Handling", "quantity": "1", "rate": "234.50", "amount": "234.50"}
		]
	}` + "\n```"

	bill, err := ParseExtractionResponse(content)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if bill.CustomerName != "Blue Ocean Traders" {
		t.Errorf("CustomerName = %q", bill.CustomerName)
	}
	if bill.Currency != "USD" {
		t.Errorf("Currency = %q, want USD", bill.Currency)
	}
	if bill.TotalAmount != 1234.50 {
		t.Errorf("TotalAmount = %v, want 1234.50", bill.TotalAmount)
	}
	if len(bill.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(bill.Items))
	}
	if bill.Items[0].Amount != 1000 {
		t.Errorf("zero amount should be recomputed from quantity*rate, got %v", bill.Items[0].Amount)
	}
	if bill.Items[1].Rate != 234.50 {
		t.Errorf("string rate parsed to %v", bill.Items[1].Rate)
	}
}

func TestParseExtractionResponseRejectsGarbage(t *testing.T) {
	if _, err := ParseExtractionResponse("the bill is for 40 dollars"); err == nil {
		t.Fatal("expected error for non-JSON response")
	}
}

func TestParseExtractionResponseRejectsEmptyContent(t *testing.T) {
	_, err := ParseExtractionResponse(`{"customerName": "", "totalAmount": 0, "items": []}`)
	if !errors.Is(err, ErrEmptyExtraction) {
		t.Fatalf("expected ErrEmptyExtraction, got %v", err)
	}
}

func TestParseExtractionResponseTreatsNullsAsMissing(t *testing.T) {
	bill, err := ParseExtractionResponse(`{
		"customerName": "Acme",
		"invoiceNumber": null,
		"date": null,
		"dueDate": null,
		"currency": null,
		"totalAmount": null,
		"items": null
	}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if bill.CustomerName != "Acme" || bill.TotalAmount != 0 || bill.Currency != "" {
		t.Errorf("unexpected bill: %+v", bill)
	}
}

func TestParseAmountString(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"580.00", 580, true},
		{"1,234.50", 1234.50, true},
		{"7.303,08", 7303.08, true},
		{"1234,50", 1234.50, true},
		{"1,234", 1234, true},
		{"€580", 580, true},
		{"Rs 1,000", 1000, true},
		{"", 0, false},
		{"abc", 0, false},
	}
	for _, tc := range cases {
		got, err := parseAmountString(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Errorf("parseAmountString(%q) = (%v, %v), want %v", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Errorf("parseAmountString(%q) expected error", tc.in)
		}
	}
}
