// Package cache persists discovered commissioner codes across runs. The
// store is append-only: a code written for an ODS code is never changed.
package cache

import (
	"fmt"

	"gpsys/internal/config"
)

type Store interface {
	Get(odsCode string) (string, bool)
	Put(odsCode, commissioner string) error
	Len() int
	Close() error
}

func Open(cfg config.Config) (Store, error) {
	switch cfg.CacheBackend {
	case "", "csv":
		return OpenCSV(cfg.CachePath)
	case "sqlite":
		return OpenSQLite(cfg.CachePath)
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s", cfg.CacheBackend)
	}
}
