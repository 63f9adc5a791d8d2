package util

import (
	"testing"
	"time"
)

func TestMonthAndYear(t *testing.T) {
	name, year, err := MonthAndYear("2025-01")
	if err != nil {
		t.Fatal(err)
	}
	if name != "january" || year != "2025" {
		t.Fatalf("got %s %s", name, year)
	}

	if _, _, err := MonthAndYear("2025-13"); err == nil {
		t.Fatal("expected error for invalid month")
	}
	if _, _, err := MonthAndYear("jan 2025"); err == nil {
		t.Fatal("expected error for malformed input")
	}
}

func TestDataFileSuffix(t *testing.T) {
	cases := map[string]string{
		"2025-02": "_Feb_25.csv",
		"2024-12": "_Dec_24.csv",
		"2025-09": "_Sep_25.csv",
	}
	for iso, want := range cases {
		got, err := DataFileSuffix(iso)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Fatalf("%s: got %s want %s", iso, got, want)
		}
	}
}

func TestPreviousMonth(t *testing.T) {
	cases := map[time.Time]string{
		time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC): "2025-02",
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC):   "2024-12",
		time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC):  "2024-06",
	}
	for now, want := range cases {
		if got := PreviousMonth(now); got != want {
			t.Fatalf("%v: got %s want %s", now, got, want)
		}
	}
}
