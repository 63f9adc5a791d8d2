package enrich

import (
	"context"
	"errors"
	"fmt"

	"gpsys/internal"
	"gpsys/internal/cache"
	"gpsys/internal/config"
)

type Service struct {
	client *Client
}

func NewService(cfg config.Config) *Service {
	return &Service{client: NewClient(cfg)}
}

// Enrich fills in each record's commissioner code, consulting the cache
// before the registry. Found codes are appended to the cache immediately.
// Per-record failures downgrade to UNKNOWN and never abort the batch; only
// context cancellation and cache-write failures do.
func (s *Service) Enrich(ctx context.Context, records []internal.PracticeRecord, store cache.Store) ([]internal.PracticeRecord, error) {
	out := make([]internal.PracticeRecord, 0, len(records))
	lookups := 0

	for i, rec := range records {
		code, ok := store.Get(rec.ODSCode)
		if !ok {
			found, err := s.client.CommissionerCode(ctx, rec.ODSCode)
			lookups++
			switch {
			case errors.Is(err, ErrOrganisationNotFound):
				fmt.Printf("ods code %s not found in registry\n", rec.ODSCode)
			case err != nil:
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				fmt.Printf("could not resolve commissioner for %s: %v\n", rec.ODSCode, err)
			case found == "":
				fmt.Printf("no active commissioned-by relationship for %s\n", rec.ODSCode)
			default:
				if err := store.Put(rec.ODSCode, found); err != nil {
					return nil, fmt.Errorf("appending cache entry for %s: %w", rec.ODSCode, err)
				}
				code = found
			}
		}

		if code == "" {
			code = internal.UnknownCommissioner
		}
		rec.Commissioner = code
		out = append(out, rec)

		if (i+1)%100 == 0 {
			fmt.Printf("enriched %d/%d practices (%d registry lookups)\n", i+1, len(records), lookups)
		}
	}

	fmt.Printf("enrichment complete: %d practices, %d registry lookups\n", len(out), lookups)
	return out, nil
}
