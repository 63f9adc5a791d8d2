package cache

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CSVStore is a flat-file write-ahead log of discovered mappings, columns
// "ICB Sub location,GP_ODS_CODE". Each Put appends and syncs immediately so
// a crash mid-run loses at most the in-flight record.
type CSVStore struct {
	path    string
	file    *os.File
	entries map[string]string
}

func OpenCSV(path string) (*CSVStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	entries := map[string]string{}
	blob, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	hadContent := err == nil && len(blob) > 0
	if hadContent {
		blob = bytes.TrimPrefix(blob, []byte("\xef\xbb\xbf"))
		reader := csv.NewReader(bytes.NewReader(blob))
		reader.FieldsPerRecord = -1
		rows, err := reader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("parsing cache %s: %w", path, err)
		}
		for i, row := range rows {
			if i == 0 || len(row) < 2 {
				continue
			}
			code := strings.ToUpper(strings.TrimSpace(row[1]))
			if code == "" {
				continue
			}
			if _, ok := entries[code]; ok {
				continue
			}
			entries[code] = strings.TrimSpace(row[0])
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}

	store := &CSVStore{path: path, file: file, entries: entries}
	if !hadContent {
		if err := store.appendRow("ICB Sub location", "GP_ODS_CODE"); err != nil {
			_ = file.Close()
			return nil, err
		}
	}
	return store, nil
}

func (s *CSVStore) Get(odsCode string) (string, bool) {
	value, ok := s.entries[strings.ToUpper(strings.TrimSpace(odsCode))]
	return value, ok
}

func (s *CSVStore) Put(odsCode, commissioner string) error {
	code := strings.ToUpper(strings.TrimSpace(odsCode))
	if _, ok := s.entries[code]; ok {
		return nil
	}
	if err := s.appendRow(commissioner, code); err != nil {
		return err
	}
	s.entries[code] = commissioner
	return nil
}

func (s *CSVStore) Len() int {
	return len(s.entries)
}

func (s *CSVStore) Close() error {
	return s.file.Close()
}

func (s *CSVStore) appendRow(commissioner, code string) error {
	w := csv.NewWriter(s.file)
	if err := w.Write([]string{commissioner, code}); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return s.file.Sync()
}
