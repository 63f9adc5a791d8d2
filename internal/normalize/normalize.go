package normalize

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gpsys/internal"
	"gpsys/internal/util"
)

var ErrNoDataFiles = errors.New("no data files found")

// Extract rows carry at least: region marker, ODS code, practice name,
// appointment systems. Trailing columns vary by publication and are ignored.
const minColumns = 4

// DataFilePaths returns the per-region extract files for a month, sorted so
// that dedup order is reproducible across runs.
func DataFilePaths(dir, month string) ([]string, error) {
	suffix, err := util.DataFileSuffix(month)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	paths := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), suffix) {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, fmt.Errorf("%w for %s in %s", ErrNoDataFiles, month, dir)
	}
	return paths, nil
}

// MainSystem resolves a slash-delimited supplier field to a single canonical
// supplier. EVERGREENLIFE rides alongside the actual clinical system, so it
// is filtered out of two-token values; any other combination falls back to
// the first token.
func MainSystem(raw string) string {
	systems := strings.Split(raw, "/")
	if len(systems) == 1 {
		return systems[0]
	}
	if systems[0] == "EVERGREENLIFE" {
		return systems[1]
	}
	if systems[1] == "EVERGREENLIFE" {
		return systems[0]
	}
	return systems[0]
}

// Files parses the extracts into one record per ODS code, first occurrence
// winning, sorted ascending by code.
func Files(paths []string) ([]internal.PracticeRecord, error) {
	seen := map[string]struct{}{}
	records := []internal.PracticeRecord{}

	for _, path := range paths {
		fmt.Printf("processing data file: %s\n", path)
		rows, err := readRows(path)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}

		for i, row := range rows {
			if i == 0 {
				continue
			}
			if len(row) < minColumns {
				continue
			}
			code := strings.ToUpper(strings.TrimSpace(row[1]))
			if code == "" {
				continue
			}
			if _, ok := seen[code]; ok {
				continue
			}
			seen[code] = struct{}{}
			records = append(records, internal.PracticeRecord{
				ODSCode:    code,
				Name:       strings.TrimSpace(row[2]),
				RawSystems: strings.TrimSpace(row[3]),
				MainSystem: MainSystem(strings.TrimSpace(row[3])),
			})
		}
	}

	sort.Slice(records, func(i, j int) bool { return records[i].ODSCode < records[j].ODSCode })
	return records, nil
}

func readRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader.ReadAll()
}
