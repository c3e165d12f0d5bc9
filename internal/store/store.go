package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sync/atomic"

	"spendboard/internal/core"
	"spendboard/internal/observability"
)

// Snapshot is one immutable published dataset. Generation increases with
// every successful publish so cached derivations can be keyed to it.
type Snapshot struct {
	Records    []core.SpendRecord
	Generation uint64
}

// Store holds the currently served dataset behind a single atomically
// swappable handle. Readers always observe a fully built snapshot; a reload
// builds the replacement off to the side and publishes it in one swap, so
// in-flight queries never see a half-built dataset.
type Store struct {
	current atomic.Pointer[Snapshot]
	gen     atomic.Uint64
}

// New returns a store serving an empty dataset.
func New() *Store {
	s := &Store{}
	s.current.Store(&Snapshot{Records: []core.SpendRecord{}})
	return s
}

// Snapshot returns the currently published dataset. Callers must treat the
// record slice as read-only.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Publish replaces the served dataset with records and returns the new
// snapshot.
func (s *Store) Publish(records []core.SpendRecord) *Snapshot {
	if records == nil {
		records = []core.SpendRecord{}
	}
	snap := &Snapshot{Records: records, Generation: s.gen.Add(1)}
	s.current.Store(snap)
	observability.RecordsLoaded.Set(float64(len(records)))
	return snap
}

// LoadFile reads a snapshot artifact and publishes it. On failure the
// previously published dataset stays in service.
func (s *Store) LoadFile(path string) (*Snapshot, error) {
	records, err := ReadSnapshot(path)
	if err != nil {
		observability.SnapshotReloads.WithLabelValues("failure").Inc()
		return nil, err
	}
	observability.SnapshotReloads.WithLabelValues("success").Inc()
	return s.Publish(records), nil
}

// ReadSnapshot parses a snapshot artifact: a flat JSON array of canonical
// records.
func ReadSnapshot(path string) ([]core.SpendRecord, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var records []core.SpendRecord
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return records, nil
}

// WriteSnapshot serializes records as the artifact consumed at process
// start. Indented so consecutive ingestion runs stay diffable.
func WriteSnapshot(path string, records []core.SpendRecord) error {
	if records == nil {
		records = []core.SpendRecord{}
	}
	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
