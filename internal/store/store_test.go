package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"spendboard/internal/core"
)

func TestNewServesEmptyDataset(t *testing.T) {
	s := New()
	snap := s.Snapshot()
	if snap == nil || snap.Records == nil {
		t.Fatal("snapshot must be non-nil with a non-nil record slice")
	}
	if len(snap.Records) != 0 {
		t.Fatalf("expected empty dataset, got %d records", len(snap.Records))
	}
}

func TestPublishBumpsGeneration(t *testing.T) {
	s := New()
	first := s.Publish([]core.SpendRecord{{CloudProvider: core.ProviderAWS, CostUSD: 1}})
	second := s.Publish(nil)
	if second.Generation <= first.Generation {
		t.Fatalf("generation did not advance: %d -> %d", first.Generation, second.Generation)
	}
	if second.Records == nil {
		t.Fatal("nil publish must normalize to an empty slice")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "combined.json")
	records := []core.SpendRecord{
		{Date: "2025-01-01", CloudProvider: core.ProviderAWS, Service: "EC2", Team: "Platform", Env: "prod", CostUSD: 120.5},
		{Date: "2025-02-05", CloudProvider: core.ProviderGCP, Service: "BigQuery", Team: "Data", Env: "prod", CostUSD: 80.25},
	}
	if err := WriteSnapshot(path, records); err != nil {
		t.Fatalf("write: %v", err)
	}

	s := New()
	snap, err := s.LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(snap.Records))
	}
	if snap.Records[0] != records[0] || snap.Records[1] != records[1] {
		t.Fatalf("round trip mismatch: %+v", snap.Records)
	}
}

func TestSnapshotFieldNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "combined.json")
	if err := WriteSnapshot(path, []core.SpendRecord{{Date: "2025-01-01", CloudProvider: "AWS", CostUSD: 1}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	for _, field := range []string{`"date"`, `"cloud_provider"`, `"service"`, `"team"`, `"env"`, `"cost_usd"`} {
		if !strings.Contains(string(b), field) {
			t.Fatalf("snapshot missing field %s: %s", field, b)
		}
	}
}

func TestLoadFailureKeepsPreviousDataset(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	if err := WriteSnapshot(good, []core.SpendRecord{{CloudProvider: core.ProviderAWS, CostUSD: 10}}); err != nil {
		t.Fatalf("write: %v", err)
	}

	s := New()
	if _, err := s.LoadFile(good); err != nil {
		t.Fatalf("load good: %v", err)
	}
	before := s.Snapshot()

	if _, err := s.LoadFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatal("expected error for missing snapshot file")
	}
	corrupt := filepath.Join(dir, "corrupt.json")
	if err := os.WriteFile(corrupt, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt: %v", err)
	}
	if _, err := s.LoadFile(corrupt); err == nil {
		t.Fatal("expected error for corrupt snapshot file")
	}

	after := s.Snapshot()
	if after != before {
		t.Fatal("failed reload must leave the previous snapshot in service")
	}
}
