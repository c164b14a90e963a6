package storage

import (
	"context"
	"errors"
	"testing"
)

func TestSlotRoundTrip(t *testing.T) {
	store, err := OpenInMemory()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	if _, err := store.Get(ctx, SlotBills); !errors.Is(err, ErrSlotNotFound) {
		t.Fatalf("expected ErrSlotNotFound for unwritten slot, got %v", err)
	}

	if err := store.Put(ctx, SlotBills, `[{"id":"b-1"}]`); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := store.Get(ctx, SlotBills)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != `[{"id":"b-1"}]` {
		t.Errorf("got %q", got)
	}
}

func TestPutReplacesPreviousValue(t *testing.T) {
	store, err := OpenInMemory()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	for _, v := range []string{"INR", "USD", "EUR"} {
		if err := store.Put(ctx, SlotPreferredCurrency, v); err != nil {
			t.Fatalf("put %q: %v", v, err)
		}
	}
	got, err := store.Get(ctx, SlotPreferredCurrency)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "EUR" {
		t.Errorf("got %q, want EUR", got)
	}
}

func TestSlotsAreIndependent(t *testing.T) {
	store, err := OpenInMemory()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Put(ctx, SlotBills, "[]"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := store.Get(ctx, SlotPreferredCurrency); !errors.Is(err, ErrSlotNotFound) {
		t.Fatalf("expected ErrSlotNotFound, got %v", err)
	}
}
