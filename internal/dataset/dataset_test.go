package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"gpsys/internal"
)

var sample = []internal.PracticeRecord{
	{ODSCode: "A81001", Name: "DENSHAM SURGERY", RawSystems: "TPP", MainSystem: "TPP", Commissioner: "16C"},
	{ODSCode: "A81002", Name: "PARK MEDICAL", RawSystems: "EVERGREENLIFE/EMIS", MainSystem: "EMIS", Commissioner: "UNKNOWN"},
}

func TestWriteEnrichedAndLoad(t *testing.T) {
	dir := t.TempDir()
	if err := WriteEnriched(dir, "2025-01", sample); err != nil {
		t.Fatal(err)
	}

	blob, err := os.ReadFile(filepath.Join(dir, "icb_gp_suppliers_2025-01.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(blob)), "\n")
	if lines[0] != "ICB Sub location,GP_ODS_CODE,GP_NAME,GP_GPAD_SYSTEMS,GP_SYSTEM" {
		t.Fatalf("header=%q", lines[0])
	}
	if lines[1] != "16C,A81001,DENSHAM SURGERY,TPP,TPP" {
		t.Fatalf("row=%q", lines[1])
	}

	loaded, err := Load(dir, "2025-01")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(loaded, sample) {
		t.Fatalf("loaded=%+v", loaded)
	}
}

func TestWritePartialColumns(t *testing.T) {
	dir := t.TempDir()
	if err := WritePartial(dir, "2025-01", sample); err != nil {
		t.Fatal(err)
	}

	blob, err := os.ReadFile(filepath.Join(dir, "gp_suppliers_2025-01.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(blob)), "\n")
	if lines[0] != "GP_ODS_CODE,GP_NAME,GP_GPAD_SYSTEMS,GP_SYSTEM" {
		t.Fatalf("header=%q", lines[0])
	}
	if lines[2] != "A81002,PARK MEDICAL,EVERGREENLIFE/EMIS,EMIS" {
		t.Fatalf("row=%q", lines[2])
	}
}

func TestWriteIsByteStableAcrossReruns(t *testing.T) {
	dir := t.TempDir()
	if err := WriteEnriched(dir, "2025-01", sample); err != nil {
		t.Fatal(err)
	}
	first, err := os.ReadFile(filepath.Join(dir, "icb_gp_suppliers_2025-01.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteEnriched(dir, "2025-01", sample); err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(filepath.Join(dir, "icb_gp_suppliers_2025-01.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("re-run changed output bytes")
	}
}

func TestLoadMissingMonth(t *testing.T) {
	dir := t.TempDir()
	if err := WriteEnriched(dir, "2025-01", sample); err != nil {
		t.Fatal(err)
	}

	_, err := Load(dir, "2025-02")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v", err)
	}
	if !strings.Contains(err.Error(), "2025-02") || !strings.Contains(err.Error(), "2025-01") {
		t.Fatalf("error should name the month and list available: %v", err)
	}
}

func TestLatestMonth(t *testing.T) {
	dir := t.TempDir()
	if _, err := LatestMonth(dir); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v", err)
	}

	for _, month := range []string{"2024-12", "2025-02", "2025-01"} {
		if err := WriteEnriched(dir, month, sample); err != nil {
			t.Fatal(err)
		}
	}

	latest, err := LatestMonth(dir)
	if err != nil {
		t.Fatal(err)
	}
	if latest != "2025-02" {
		t.Fatalf("latest=%s", latest)
	}

	months := AvailableMonths(dir)
	if !reflect.DeepEqual(months, []string{"2024-12", "2025-01", "2025-02"}) {
		t.Fatalf("months=%v", months)
	}
}

func TestExportXLSX(t *testing.T) {
	out := filepath.Join(t.TempDir(), "export", "gp_2025-01.xlsx")
	if err := ExportXLSX(sample, out); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatal(err)
	}
}
