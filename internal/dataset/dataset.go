// Package dataset persists and loads the per-month artifacts. The enriched
// file is the durable output; the partial file is a checkpoint between the
// normalizer and the enricher.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gpsys/internal"
)

var ErrNotFound = errors.New("dataset not found")

const (
	partialPrefix  = "gp_suppliers_"
	enrichedPrefix = "icb_gp_suppliers_"
)

var (
	partialHeader  = []string{"GP_ODS_CODE", "GP_NAME", "GP_GPAD_SYSTEMS", "GP_SYSTEM"}
	enrichedHeader = []string{"ICB Sub location", "GP_ODS_CODE", "GP_NAME", "GP_GPAD_SYSTEMS", "GP_SYSTEM"}
)

func partialPath(dir, month string) string {
	return filepath.Join(dir, partialPrefix+month+".csv")
}

func enrichedPath(dir, month string) string {
	return filepath.Join(dir, enrichedPrefix+month+".csv")
}

func WritePartial(dir, month string, records []internal.PracticeRecord) error {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{rec.ODSCode, rec.Name, rec.RawSystems, rec.MainSystem})
	}
	return writeCSV(partialPath(dir, month), partialHeader, rows)
}

func WriteEnriched(dir, month string, records []internal.PracticeRecord) error {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{rec.Commissioner, rec.ODSCode, rec.Name, rec.RawSystems, rec.MainSystem})
	}
	return writeCSV(enrichedPath(dir, month), enrichedHeader, rows)
}

// writeCSV writes to a temp file and renames into place so a failed run
// never clobbers a previously valid artifact.
func writeCSV(path string, header []string, rows [][]string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		_ = tmp.Close()
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			_ = tmp.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return err
	}
	fmt.Printf("written dataset file: %s (%d records)\n", path, len(rows))
	return nil
}

// Load reads the enriched dataset for a month.
func Load(dir, month string) ([]internal.PracticeRecord, error) {
	path := enrichedPath(dir, month)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w for month %s (available: %s)", ErrNotFound, month, availableOrNone(dir))
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	records := make([]internal.PracticeRecord, 0, len(rows))
	for i, row := range rows {
		if i == 0 || len(row) < 5 {
			continue
		}
		records = append(records, internal.PracticeRecord{
			Commissioner: row[0],
			ODSCode:      row[1],
			Name:         row[2],
			RawSystems:   row[3],
			MainSystem:   row[4],
		})
	}
	return records, nil
}

// LatestMonth picks the most recent enriched artifact. Lexicographic max is
// valid because months are zero-padded and year-first.
func LatestMonth(dir string) (string, error) {
	months := AvailableMonths(dir)
	if len(months) == 0 {
		return "", fmt.Errorf("%w: no datasets in %s, run data:update first", ErrNotFound, dir)
	}
	return months[len(months)-1], nil
}

// AvailableMonths lists months with an enriched artifact, ascending.
func AvailableMonths(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	months := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, enrichedPrefix) || !strings.HasSuffix(name, ".csv") {
			continue
		}
		months = append(months, strings.TrimSuffix(strings.TrimPrefix(name, enrichedPrefix), ".csv"))
	}
	sort.Strings(months)
	return months
}

func availableOrNone(dir string) string {
	months := AvailableMonths(dir)
	if len(months) == 0 {
		return "none"
	}
	return strings.Join(months, ", ")
}
