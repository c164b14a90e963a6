package bill

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"

	"smartbill/internal/storage"
	"smartbill/pkg/models"
)

// memorySlots is an in-memory SlotReadWriter for store tests.
type memorySlots struct {
	values map[string]string
}

func newMemorySlots() *memorySlots {
	return &memorySlots{values: make(map[string]string)}
}

func (m *memorySlots) Get(_ context.Context, name string) (string, error) {
	v, ok := m.values[name]
	if !ok {
		return "", storage.ErrSlotNotFound
	}
	return v, nil
}

func (m *memorySlots) Put(_ context.Context, name, value string) error {
	m.values[name] = value
	return nil
}

func newTestStore(t *testing.T, slots *memorySlots) *Store {
	t.Helper()
	s, err := NewStore(context.Background(), slots)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestUpsertInsertsAtFront(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newMemorySlots())

	for _, id := range []string{"a", "b", "c"} {
		if err := s.Upsert(ctx, models.Bill{ID: id}); err != nil {
			t.Fatalf("upsert %s: %v", id, err)
		}
	}

	bills := s.Bills()
	want := []string{"c", "b", "a"}
	for i, id := range want {
		if bills[i].ID != id {
			t.Errorf("bills[%d] = %s, want %s", i, bills[i].ID, id)
		}
	}
}

func TestUpsertReplacesInPlaceAndClearsIsNew(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newMemorySlots())

	for _, id := range []string{"a", "b", "c"} {
		if err := s.Upsert(ctx, models.Bill{ID: id, CustomerName: "old"}); err != nil {
			t.Fatalf("upsert %s: %v", id, err)
		}
	}

	// "b" sits at index 1 after the three prepends.
	if err := s.Upsert(ctx, models.Bill{ID: "b", CustomerName: "new", IsNew: true}); err != nil {
		t.Fatalf("upsert replacement: %v", err)
	}

	bills := s.Bills()
	if len(bills) != 3 {
		t.Fatalf("got %d bills, want 3", len(bills))
	}
	if bills[1].ID != "b" || bills[1].CustomerName != "new" {
		t.Errorf("replacement not in place: bills[1] = %+v", bills[1])
	}
	if bills[1].IsNew {
		t.Error("IsNew not cleared on replacement")
	}
	if bills[0].ID != "c" || bills[2].ID != "a" {
		t.Errorf("neighbor order disturbed: %s, %s", bills[0].ID, bills[2].ID)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	slots := newMemorySlots()
	s := newTestStore(t, slots)

	original := models.Bill{
		ID:           "b-1",
		CustomerName: "Blue Ocean Traders",
		Date:         "2024-03-01",
		DueDate:      "2024-03-15",
		Status:       models.StatusUnpaid,
		Currency:     "USD",
		Items: []models.BillItem{
			{Description: "Consulting", Quantity: 2, Rate: 150, Amount: 300},
		},
		TotalAmount:  300,
		Tags:         []string{"urgent", "q1"},
		LastModified: "2024-03-01T10:00:00Z",
	}
	if err := s.Upsert(ctx, original); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	// A second store over the same slots reads back an equal sequence.
	reloaded := newTestStore(t, slots)
	got := reloaded.Bills()
	if len(got) != 1 {
		t.Fatalf("got %d bills after reload, want 1", len(got))
	}
	if !reflect.DeepEqual(got[0], original) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got[0], original)
	}
}

func TestMalformedSlotFallsBackToEmptyStore(t *testing.T) {
	slots := newMemorySlots()
	slots.values[storage.SlotBills] = `{"not":"an array`

	s, err := NewStore(context.Background(), slots)
	if err != nil {
		t.Fatalf("NewStore should not fail on malformed data: %v", err)
	}
	if got := len(s.Bills()); got != 0 {
		t.Errorf("got %d bills, want empty store", got)
	}
}

func TestPersistWritesJSONArray(t *testing.T) {
	ctx := context.Background()
	slots := newMemorySlots()
	s := newTestStore(t, slots)

	if err := s.Upsert(ctx, models.Bill{ID: "x"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	raw, ok := slots.values[storage.SlotBills]
	if !ok {
		t.Fatal("bill slot not written on mutation")
	}
	var arr []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &arr); err != nil {
		t.Fatalf("slot is not a JSON array: %v", err)
	}
	if len(arr) != 1 {
		t.Errorf("slot array has %d entries, want 1", len(arr))
	}
}

func TestPreferredCurrency(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newMemorySlots())

	if got := s.PreferredCurrency(ctx); got != "INR" {
		t.Errorf("default preferred currency = %s, want INR", got)
	}
	if err := s.SetPreferredCurrency(ctx, "usd"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := s.PreferredCurrency(ctx); got != "USD" {
		t.Errorf("preferred currency = %s, want USD", got)
	}
	if err := s.SetPreferredCurrency(ctx, "BTC"); err == nil {
		t.Error("expected error for unsupported currency")
	}
}

func TestGetByID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newMemorySlots())
	if err := s.Upsert(ctx, models.Bill{ID: "a", CustomerName: "Acme"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, ok := s.Get("a")
	if !ok || got.CustomerName != "Acme" {
		t.Errorf("Get(a) = (%+v, %v)", got, ok)
	}
	if _, ok := s.Get("missing"); ok {
		t.Error("expected miss for unknown ID")
	}
}
