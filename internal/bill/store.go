// Package bill holds the bill ledger: the record store, the derived
// aggregates and the filter/sort/paginate pipeline over the stored sequence.
//
// The Store is the one owner of persisted application state. It loads the
// bill sequence and the preferred currency from the slot store at startup
// and writes through on every mutation. Upsert is the only mutation
// primitive on the sequence; records are never deleted.
package bill

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"smartbill/internal/currency"
	"smartbill/internal/logger"
	"smartbill/internal/storage"
	"smartbill/pkg/models"
)

// SlotReadWriter is the durable-storage surface the Store needs.
type SlotReadWriter interface {
	Get(ctx context.Context, name string) (string, error)
	Put(ctx context.Context, name, value string) error
}

// Store owns the ordered bill sequence for the process lifetime.
type Store struct {
	mu    sync.Mutex
	bills []models.Bill
	slots SlotReadWriter
	log   zerolog.Logger
}

// NewStore creates a Store over the given slot store and loads its contents.
// Malformed data in the bill slot is discarded with a warning rather than
// failing startup; the store then starts empty.
func NewStore(ctx context.Context, slots SlotReadWriter) (*Store, error) {
	s := &Store{
		slots: slots,
		log:   logger.WithComponent("bill-store"),
	}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// load initializes the sequence from the bill slot.
func (s *Store) load(ctx context.Context) error {
	const op = "load"

	raw, err := s.slots.Get(ctx, storage.SlotBills)
	if errors.Is(err, storage.ErrSlotNotFound) {
		s.bills = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: read bill slot: %w", op, err)
	}

	var bills []models.Bill
	if err := json.Unmarshal([]byte(raw), &bills); err != nil {
		s.log.Warn().
			Err(err).
			Int("slot_bytes", len(raw)).
			Msg("Stored bill data is malformed, starting with an empty store")
		s.bills = nil
		return nil
	}

	s.bills = bills
	s.log.Info().Int("bills", len(bills)).Msg("Loaded bill ledger")
	return nil
}

// Bills returns a copy of the current ordered bill sequence.
func (s *Store) Bills() []models.Bill {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Bill, len(s.bills))
	copy(out, s.bills)
	return out
}

// Get returns the bill with the given ID, if present.
func (s *Store) Get(id string) (models.Bill, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bills {
		if b.ID == id {
			return b, true
		}
	}
	return models.Bill{}, false
}

// Upsert is the single mutation primitive. A bill whose ID already exists
// replaces the stored record in place and has its IsNew flag cleared;
// otherwise the bill is inserted at the front of the sequence. The full
// sequence is persisted after the mutation.
func (s *Store) Upsert(ctx context.Context, b models.Bill) error {
	const op = "Upsert"

	s.mu.Lock()
	defer s.mu.Unlock()

	replaced := false
	for i := range s.bills {
		if s.bills[i].ID == b.ID {
			b.IsNew = false
			s.bills[i] = b
			replaced = true
			break
		}
	}
	if !replaced {
		s.bills = append([]models.Bill{b}, s.bills...)
	}

	if err := s.persist(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info().
		Str("bill_id", b.ID).
		Str("customer", b.CustomerName).
		Bool("replaced", replaced).
		Int("bills", len(s.bills)).
		Msg("Bill upserted")
	return nil
}

// persist writes the full sequence back to the bill slot. Caller holds the lock.
func (s *Store) persist(ctx context.Context) error {
	data, err := json.Marshal(s.billsOrEmpty())
	if err != nil {
		return fmt.Errorf("serialize bill sequence: %w", err)
	}
	if err := s.slots.Put(ctx, storage.SlotBills, string(data)); err != nil {
		return fmt.Errorf("write bill slot: %w", err)
	}
	return nil
}

// billsOrEmpty keeps the stored form a JSON array even when the sequence is nil.
func (s *Store) billsOrEmpty() []models.Bill {
	if s.bills == nil {
		return []models.Bill{}
	}
	return s.bills
}

// PreferredCurrency reads the preferred currency slot, defaulting to the
// first catalog entry when unset or unrecognized.
func (s *Store) PreferredCurrency(ctx context.Context) string {
	code, err := s.slots.Get(ctx, storage.SlotPreferredCurrency)
	if err != nil {
		if !errors.Is(err, storage.ErrSlotNotFound) {
			s.log.Warn().Err(err).Msg("Failed to read preferred currency, using default")
		}
		return currency.Default().Code
	}
	if !currency.IsSupported(code) {
		return currency.Default().Code
	}
	return currency.Lookup(code).Code
}

// SetPreferredCurrency validates the code against the catalog and writes it
// to the preferred currency slot.
func (s *Store) SetPreferredCurrency(ctx context.Context, code string) error {
	const op = "SetPreferredCurrency"
	if !currency.IsSupported(code) {
		return fmt.Errorf("%s: unsupported currency code: %s", op, code)
	}
	normalized := currency.Lookup(code).Code
	if err := s.slots.Put(ctx, storage.SlotPreferredCurrency, normalized); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info().Str("currency", normalized).Msg("Preferred currency updated")
	return nil
}
