// Package stock holds the herb-stock records kept outside the order flow:
// a single namespaced key in an external key-value store, seeded once and
// replaced wholesale on save.
package stock

import (
	"context"
	"encoding/json"
	"strings"
)

// StorageKey is the single namespaced entry holding the herb-stock sequence.
const StorageKey = "medicineapp.herbStock.v1"

// Record is one herb-stock row. WeightBeforeDry is nil when unknown.
type Record struct {
	Name            string   `json:"name"`
	Part            string   `json:"part"`
	WeightBeforeDry *float64 `json:"weightBeforeDry"`
}

// KV is the narrow view of the external store the stock subsystem needs.
// Get reports ok=false when the key has never been set.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

type Store struct {
	kv  KV
	key string
}

func NewStore(kv KV) *Store {
	return &Store{kv: kv, key: StorageKey}
}

// Load returns the stored records. A missing key or malformed stored JSON
// yields an empty slice, not an error; only transport failures propagate.
func (s *Store) Load(ctx context.Context) ([]Record, error) {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []Record{}, nil
	}
	var records []Record
	if err := json.Unmarshal([]byte(raw), &records); err != nil || records == nil {
		return []Record{}, nil
	}
	return records, nil
}

// Save replaces the whole sequence. A nil slice is stored as an empty array.
func (s *Store) Save(ctx context.Context, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, s.key, string(data))
}

// EnsureSeed writes seed only when the store is currently empty. It reports
// whether it wrote anything; existing data is never overwritten.
func (s *Store) EnsureSeed(ctx context.Context, seed []Record) (bool, error) {
	existing, err := s.Load(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 || len(seed) == 0 {
		return false, nil
	}
	if err := s.Save(ctx, seed); err != nil {
		return false, err
	}
	return true, nil
}

// Normalize prepares a herb name for case-insensitive comparison.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
