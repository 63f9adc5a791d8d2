// Package pipeline runs the monthly update end to end: acquire, normalize,
// enrich, persist.
package pipeline

import (
	"context"
	"fmt"

	"gpsys/internal/acquire"
	"gpsys/internal/cache"
	"gpsys/internal/config"
	"gpsys/internal/dataset"
	"gpsys/internal/enrich"
	"gpsys/internal/normalize"
)

// Run executes the full update for a month. The enriched dataset is written
// last, after all data is assembled, so a failed run never leaves a partial
// durable artifact in place of a valid one. Returns the record count.
func Run(ctx context.Context, cfg config.Config, month, overrideURL string) (int, error) {
	if overrideURL == "" {
		if err := cfg.Require("PUBLICATIONS_BASE_URL", cfg.PublicationsBaseURL); err != nil {
			return 0, err
		}
	}
	if err := cfg.Require("REGISTRY_BASE_URL", cfg.RegistryBaseURL); err != nil {
		return 0, err
	}

	fmt.Printf("starting gp supplier data update for %s\n", month)

	fetcher := acquire.NewFetcher(cfg)
	extractDir, err := fetcher.Fetch(ctx, month, overrideURL)
	if err != nil {
		return 0, err
	}

	paths, err := normalize.DataFilePaths(extractDir, month)
	if err != nil {
		return 0, err
	}
	fmt.Printf("found %d data files\n", len(paths))

	records, err := normalize.Files(paths)
	if err != nil {
		return 0, err
	}

	if err := dataset.WritePartial(cfg.DataDir, month, records); err != nil {
		return 0, err
	}

	store, err := cache.Open(cfg)
	if err != nil {
		return 0, err
	}
	defer store.Close()
	fmt.Printf("loaded %d cached commissioner mappings\n", store.Len())

	enriched, err := enrich.NewService(cfg).Enrich(ctx, records, store)
	if err != nil {
		return 0, err
	}

	if err := dataset.WriteEnriched(cfg.DataDir, month, enriched); err != nil {
		return 0, err
	}

	if err := fetcher.Cleanup(month); err != nil {
		return 0, err
	}

	fmt.Printf("completed processing data for %s: %d gp practices\n", month, len(enriched))
	return len(enriched), nil
}
