package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"spendboard/internal/core"
	"spendboard/internal/observability"
)

// RawRow is an untyped source row, column name to string value. Raw rows
// never leave this package; they are converted to core.SpendRecord
// immediately and permanently.
type RawRow map[string]string

// Source describes one provider export to ingest.
type Source struct {
	Provider string `yaml:"provider"`
	Path     string `yaml:"path"`
}

// Normalizer converts raw provider rows into canonical spend records.
type Normalizer struct {
	aliases AliasTable
}

// NewNormalizer builds a normalizer around the given alias table, falling
// back to the built-in defaults when nil.
func NewNormalizer(aliases AliasTable) *Normalizer {
	if aliases == nil {
		aliases = DefaultAliases()
	}
	return &Normalizer{aliases: aliases}
}

// Normalize maps one raw row plus its provider tag to exactly one record.
// It never fails: a missing or unusable value resolves to the documented
// default ("Unknown" labels, zero cost, raw date pass-through).
func (n *Normalizer) Normalize(row RawRow, provider string) core.SpendRecord {
	rec := core.SpendRecord{
		CloudProvider: provider,
		Service:       core.UnknownLabel,
		Team:          core.UnknownLabel,
		Env:           core.UnknownLabel,
	}

	if raw, ok := n.aliases.Lookup(row, FieldDate); ok {
		rec.Date = NormalizeDate(raw)
	} else {
		observability.FieldDefaults.WithLabelValues(FieldDate).Inc()
	}

	if v, ok := n.aliases.Lookup(row, FieldService); ok {
		rec.Service = v
	} else {
		observability.FieldDefaults.WithLabelValues(FieldService).Inc()
	}
	if v, ok := n.aliases.Lookup(row, FieldTeam); ok {
		rec.Team = v
	} else {
		observability.FieldDefaults.WithLabelValues(FieldTeam).Inc()
	}
	if v, ok := n.aliases.Lookup(row, FieldEnv); ok {
		rec.Env = v
	} else {
		observability.FieldDefaults.WithLabelValues(FieldEnv).Inc()
	}

	rec.CostUSD = n.normalizeCost(row)

	observability.RowsNormalized.WithLabelValues(provider).Inc()
	return rec
}

// normalizeCost coerces the cost field to a non-negative dollar amount.
// Absent, non-numeric and negative values all default to 0.
func (n *Normalizer) normalizeCost(row RawRow) float64 {
	raw, ok := n.aliases.Lookup(row, FieldCost)
	if !ok {
		observability.FieldDefaults.WithLabelValues(FieldCost).Inc()
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		observability.FieldDefaults.WithLabelValues(FieldCost).Inc()
		return 0
	}
	return v
}

// NormalizeAll converts a batch of rows from one provider, preserving row
// order.
func (n *Normalizer) NormalizeAll(rows []RawRow, provider string) []core.SpendRecord {
	out := make([]core.SpendRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, n.Normalize(row, provider))
	}
	return out
}

// ConvertSources ingests every source and concatenates the normalized
// batches in source order, so the merged sequence is deterministic for a
// given manifest. Files are read concurrently; an unreadable file fails the
// whole run before any output is produced.
func (n *Normalizer) ConvertSources(ctx context.Context, sources []Source) ([]core.SpendRecord, error) {
	batches := make([][]core.SpendRecord, len(sources))

	g, _ := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			rows, err := ReadCSVFile(src.Path)
			if err != nil {
				return fmt.Errorf("source %s: %w", src.Provider, err)
			}
			batches[i] = n.NormalizeAll(rows, src.Provider)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, b := range batches {
		total += len(b)
	}
	merged := make([]core.SpendRecord, 0, total)
	for _, b := range batches {
		merged = append(merged, b...)
	}
	return merged, nil
}

// ReadCSVFile reads a provider export and returns its rows in file order.
func ReadCSVFile(path string) ([]RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	defer f.Close()
	return readCSV(f)
}

func readCSV(r io.Reader) ([]RawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var rows []RawRow
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		row := make(RawRow, len(header))
		for i, h := range header {
			if i < len(fields) {
				row[h] = fields[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
