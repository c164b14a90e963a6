package bill

import (
	"errors"
	"strings"
	"testing"
	"time"

	"smartbill/pkg/models"
)

func TestValidateRejectsBlankCustomerAndNegativeRates(t *testing.T) {
	cases := []struct {
		name string
		bill models.Bill
		ok   bool
	}{
		{"valid", models.Bill{CustomerName: "Acme"}, true},
		{"blank name", models.Bill{CustomerName: "   "}, false},
		{"negative rate", models.Bill{
			CustomerName: "Acme",
			Items:        []models.BillItem{{Rate: -1}},
		}, false},
		{"zero rate ok", models.Bill{
			CustomerName: "Acme",
			Items:        []models.BillItem{{Rate: 0}},
		}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.bill)
			if tc.ok && err != nil {
				t.Fatalf("expected ok, got %v", err)
			}
			if !tc.ok {
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("expected *ValidationError, got %v", err)
				}
			}
		})
	}
}

func TestFinalizeRecomputesTotalAndDefaults(t *testing.T) {
	b, err := Finalize(models.Bill{
		CustomerName: "Acme",
		Date:         "2024-03-01",
		Items: []models.BillItem{
			{Description: "A", Quantity: 2, Rate: 10, Amount: 20},
			{Description: "B", Quantity: 1, Rate: 5, Amount: 5},
		},
		TotalAmount: 9999, // stale total must not be trusted
	})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if b.TotalAmount != 25 {
		t.Errorf("TotalAmount = %v, want 25", b.TotalAmount)
	}
	if b.ID == "" {
		t.Error("missing ID not assigned")
	}
	if b.DueDate != "2024-03-01" {
		t.Errorf("blank dueDate should default to date, got %s", b.DueDate)
	}
	if b.Status != models.StatusUnpaid {
		t.Errorf("Status = %s, want UNPAID", b.Status)
	}
	if _, err := time.Parse(time.RFC3339, b.LastModified); err != nil {
		t.Errorf("LastModified %q is not RFC3339: %v", b.LastModified, err)
	}
}

func TestFinalizeKeepsExistingID(t *testing.T) {
	b, err := Finalize(models.Bill{ID: "keep-me", CustomerName: "Acme"})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if b.ID != "keep-me" {
		t.Errorf("ID = %s, want keep-me", b.ID)
	}
}

func TestFinalizeBlocksInvalidBill(t *testing.T) {
	_, err := Finalize(models.Bill{CustomerName: ""})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "customerName") {
		t.Errorf("error should name the field: %v", err)
	}
}

func TestItemEditsRecomputeAmount(t *testing.T) {
	items := []models.BillItem{{Description: "A", Quantity: 1, Rate: 10, Amount: 10}}

	SetItemQuantity(items, 0, 3)
	if items[0].Amount != 30 {
		t.Errorf("after quantity edit: Amount = %v, want 30", items[0].Amount)
	}

	SetItemRate(items, 0, 7)
	if items[0].Amount != 21 {
		t.Errorf("after rate edit: Amount = %v, want 21", items[0].Amount)
	}
}

func TestSplitItem(t *testing.T) {
	items := []models.BillItem{
		{Description: "Hosting", Quantity: 2, Rate: 100, Amount: 200},
		{Description: "Support", Quantity: 1, Rate: 50, Amount: 50},
	}
	out := SplitItem(items, 0)
	if len(out) != 3 {
		t.Fatalf("got %d items, want 3", len(out))
	}
	if out[0].Rate != 50 || out[0].Amount != 100 {
		t.Errorf("first half = %+v", out[0])
	}
	if out[1].Description != "Hosting (Part 2)" || out[1].Amount != 100 {
		t.Errorf("second half = %+v", out[1])
	}
	if out[2].Description != "Support" {
		t.Errorf("following item disturbed: %+v", out[2])
	}

	if got := SplitItem(items, 5); len(got) != 2 {
		t.Errorf("out-of-range split changed the sequence")
	}
}
