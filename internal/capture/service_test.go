package capture

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"smartbill/pkg/models"
)

// jpegHeader is the smallest payload that sniffs as an image.
var jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}

type fakeExtractor struct {
	bill *models.Bill
	err  error
}

func (f *fakeExtractor) ExtractBill(_ context.Context, _ []byte) (*models.Bill, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := *f.bill
	return &out, nil
}

type fakeCommitter struct {
	saved []models.Bill
	err   error
}

func (f *fakeCommitter) Upsert(_ context.Context, b models.Bill) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, b)
	return nil
}

func TestCaptureStagesWithoutAutoSave(t *testing.T) {
	store := &fakeCommitter{}
	svc := NewService(&fakeExtractor{bill: &models.Bill{CustomerName: "Acme", TotalAmount: 120}}, store)

	res, err := svc.Capture(context.Background(), jpegHeader, Options{PreferredCurrency: "INR"})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if res.Committed {
		t.Error("staged capture must not be committed")
	}
	if len(store.saved) != 0 {
		t.Error("staged capture must not touch the store")
	}
	if res.Bill.ID == "" {
		t.Error("captured bill needs a fresh ID")
	}
	if !res.Bill.IsNew {
		t.Error("captured bill must be marked new")
	}
	if res.Bill.Currency != "INR" {
		t.Errorf("currency = %s, want preferred INR", res.Bill.Currency)
	}
	if res.Bill.Tags == nil || len(res.Bill.Tags) != 0 {
		t.Errorf("tags = %v, want empty set", res.Bill.Tags)
	}
	if _, err := time.Parse(time.RFC3339, res.Bill.LastModified); err != nil {
		t.Errorf("LastModified %q not RFC3339: %v", res.Bill.LastModified, err)
	}
}

func TestCaptureAutoSaveCommits(t *testing.T) {
	store := &fakeCommitter{}
	svc := NewService(&fakeExtractor{bill: &models.Bill{CustomerName: "Acme", Currency: "EUR"}}, store)

	res, err := svc.Capture(context.Background(), jpegHeader, Options{AutoSave: true, PreferredCurrency: "INR"})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if !res.Committed {
		t.Error("auto-save capture must be committed")
	}
	if len(store.saved) != 1 {
		t.Fatalf("store has %d bills, want 1", len(store.saved))
	}
	if store.saved[0].Currency != "EUR" {
		t.Errorf("extracted currency must win over preferred: got %s", store.saved[0].Currency)
	}
}

func TestCaptureExtractionFailureLeavesStoreUntouched(t *testing.T) {
	store := &fakeCommitter{}
	svc := NewService(&fakeExtractor{err: ErrExtractionFailed}, store)

	_, err := svc.Capture(context.Background(), jpegHeader, Options{AutoSave: true})
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
	if len(store.saved) != 0 {
		t.Error("failed capture must not mutate the store")
	}
}

func TestCaptureRejectsBadPayload(t *testing.T) {
	svc := NewService(&fakeExtractor{bill: &models.Bill{}}, &fakeCommitter{})
	_, err := svc.Capture(context.Background(), []byte("not an image"), Options{})
	if !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
}

func TestDecodePayloadForms(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString(jpegHeader)
	cases := []struct {
		name    string
		payload []byte
		ok      bool
	}{
		{"raw bytes", jpegHeader, true},
		{"bare base64", []byte(encoded), true},
		{"data uri", []byte("data:image/jpeg;base64," + encoded), true},
		{"bad base64", []byte("data:image/jpeg;base64,!!!"), false},
		{"base64 of non-image", []byte(base64.StdEncoding.EncodeToString([]byte("text"))), false},
		{"empty", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decoded, err := DecodePayload(tc.payload)
			if tc.ok {
				if err != nil {
					t.Fatalf("expected ok, got %v", err)
				}
				if string(decoded) != string(jpegHeader) {
					t.Errorf("decoded bytes mismatch")
				}
				return
			}
			if !errors.Is(err, ErrInvalidPayload) {
				t.Fatalf("expected ErrInvalidPayload, got %v", err)
			}
		})
	}
}
