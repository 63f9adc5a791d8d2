package tools

import (
	"strings"
	"testing"

	"gpsys/internal"
	"gpsys/internal/config"
	"gpsys/internal/dataset"
)

func seedService(t *testing.T) *Service {
	t.Helper()
	dir := t.TempDir()
	records := []internal.PracticeRecord{
		{ODSCode: "A81001", Name: "DENSHAM SURGERY", RawSystems: "TPP", MainSystem: "TPP", Commissioner: "16C"},
		{ODSCode: "A81002", Name: "PARK MEDICAL", RawSystems: "EVERGREENLIFE/EMIS", MainSystem: "EMIS", Commissioner: "16C"},
	}
	if err := dataset.WriteEnriched(dir, "2025-01", records); err != nil {
		t.Fatal(err)
	}
	return NewService(config.Config{DataDir: dir})
}

func TestLookupRendersPractice(t *testing.T) {
	svc := seedService(t)

	out, err := svc.Lookup("a81001", "")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"DENSHAM SURGERY", "`A81001`", "IT System: TPP", "ICB Sub Location: 16C"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}

	out, err = svc.Lookup("Z99999", "")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No GP practice found") {
		t.Fatalf("out=%q", out)
	}
}

func TestMissingMonthIsReportedNotFatal(t *testing.T) {
	svc := seedService(t)

	out, err := svc.Lookup("A81001", "2024-06")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "2024-06") || !strings.Contains(out, "2025-01") {
		t.Fatalf("out=%q", out)
	}

	// The surface keeps serving valid months afterwards.
	out, err = svc.Lookup("A81001", "2025-01")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "DENSHAM SURGERY") {
		t.Fatalf("out=%q", out)
	}
}

func TestSearchAndFilterAndStats(t *testing.T) {
	svc := seedService(t)

	out, err := svc.Search("park", false, "")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Found **1** practices") || !strings.Contains(out, "PARK MEDICAL") {
		t.Fatalf("out=%q", out)
	}

	out, err = svc.Filter("tpp", "")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "**1** practices use **TPP**") || !strings.Contains(out, "| 16C | 1 |") {
		t.Fatalf("out=%q", out)
	}

	out, err = svc.Stats("")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"**Total practices:** 2", "2025-01", "| TPP | 1 | 50.00% |"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
}

func TestSnapshotIsCachedUntilInvalidated(t *testing.T) {
	svc := seedService(t)

	if _, err := svc.Lookup("A81001", "2025-01"); err != nil {
		t.Fatal(err)
	}

	// Overwrite the artifact behind the loaded snapshot.
	replacement := []internal.PracticeRecord{
		{ODSCode: "A81001", Name: "RENAMED SURGERY", RawSystems: "EMIS", MainSystem: "EMIS", Commissioner: "36L"},
	}
	if err := dataset.WriteEnriched(svc.cfg.DataDir, "2025-01", replacement); err != nil {
		t.Fatal(err)
	}

	out, err := svc.Lookup("A81001", "2025-01")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "DENSHAM SURGERY") {
		t.Fatalf("snapshot should be stale until invalidated: %q", out)
	}

	svc.Invalidate()
	out, err = svc.Lookup("A81001", "2025-01")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "RENAMED SURGERY") {
		t.Fatalf("snapshot not reloaded: %q", out)
	}
}
