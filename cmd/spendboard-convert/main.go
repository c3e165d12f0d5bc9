package main

import (
	"context"
	"flag"
	"os"
	"time"

	"spendboard/internal/cli"
	"spendboard/internal/ingest"
	applog "spendboard/internal/log"
	"spendboard/internal/observability"
	"spendboard/internal/store"
)

func main() {
	cli.LoadEnvFile()

	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, applog.ComponentIngest)

	manifestPath := flag.String("manifest", cfg.IngestManifest, "path to the ingest manifest (empty for built-in defaults)")
	output := flag.String("output", "", "override the snapshot output path from the manifest")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall conversion deadline")
	flag.Parse()

	observability.Register()

	manifest, err := ingest.LoadManifest(*manifestPath)
	if err != nil {
		logger.Error("Failed to load ingest manifest", applog.FieldError, err, applog.FieldSourcePath, *manifestPath)
		os.Exit(1)
	}
	if *output != "" {
		manifest.Output = *output
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	normalizer := ingest.NewNormalizer(manifest.AliasTable())
	records, err := normalizer.ConvertSources(ctx, manifest.Sources)
	if err != nil {
		// A single unreadable export fails the whole run so a partial
		// snapshot never replaces a complete one.
		logger.Error("Conversion failed, no snapshot written", applog.FieldError, err)
		os.Exit(1)
	}

	if err := store.WriteSnapshot(manifest.Output, records); err != nil {
		logger.Error("Failed to write snapshot", applog.FieldError, err, applog.FieldSnapshot, manifest.Output)
		os.Exit(1)
	}

	logger.Info("Snapshot written",
		applog.FieldSnapshot, manifest.Output,
		applog.FieldRecords, len(records))
}
