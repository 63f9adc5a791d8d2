package lookup

import (
	"math"
	"testing"

	"gpsys/internal"
)

func rec(code, name, system, commissioner string) internal.PracticeRecord {
	return internal.PracticeRecord{ODSCode: code, Name: name, RawSystems: system, MainSystem: system, Commissioner: commissioner}
}

func testEngine() *Engine {
	return NewEngine([]internal.PracticeRecord{
		rec("A81001", "DENSHAM SURGERY", "TPP", "16C"),
		rec("A81002", "PARK MEDICAL GROUP", "EMIS", "16C"),
		rec("B82005", "PARK SURGERY", "TPP", "36L"),
		rec("C83010", "RIVERSIDE MEDICAL", "TPP", "36L"),
	})
}

func TestLookupByCodeCaseInsensitive(t *testing.T) {
	e := testEngine()

	lower, ok := e.LookupByCode("a81001")
	if !ok {
		t.Fatal("not found")
	}
	upper, ok := e.LookupByCode("A81001")
	if !ok {
		t.Fatal("not found")
	}
	if lower != upper || lower.Name != "DENSHAM SURGERY" {
		t.Fatalf("lower=%+v upper=%+v", lower, upper)
	}

	if _, ok := e.LookupByCode("Z99999"); ok {
		t.Fatal("expected not found")
	}
}

func TestLookupByCodeFirstMatchWins(t *testing.T) {
	e := NewEngine([]internal.PracticeRecord{
		rec("A81001", "FIRST", "TPP", "16C"),
		rec("A81001", "SECOND", "EMIS", "36L"),
	})
	got, ok := e.LookupByCode("A81001")
	if !ok || got.Name != "FIRST" {
		t.Fatalf("got=%+v ok=%v", got, ok)
	}
}

func TestSearchByName(t *testing.T) {
	e := testEngine()

	sub := e.SearchByName("park", false)
	if len(sub) != 2 {
		t.Fatalf("len=%d", len(sub))
	}
	if sub[0].ODSCode != "A81002" || sub[1].ODSCode != "B82005" {
		t.Fatalf("file order lost: %+v", sub)
	}

	exact := e.SearchByName("park surgery", true)
	if len(exact) != 1 || exact[0].ODSCode != "B82005" {
		t.Fatalf("exact=%+v", exact)
	}

	if got := e.SearchByName("park", true); len(got) != 0 {
		t.Fatalf("exact substring matched: %+v", got)
	}
}

func TestFilterBySystem(t *testing.T) {
	e := testEngine()

	tpp := e.FilterBySystem("tpp")
	if len(tpp) != 3 {
		t.Fatalf("len=%d", len(tpp))
	}
	if got := e.FilterBySystem("CEGEDIM"); len(got) != 0 {
		t.Fatalf("got=%+v", got)
	}

	byICB := CountByCommissioner(tpp)
	if len(byICB) != 2 || byICB[0].Commissioner != "36L" || byICB[0].Count != 2 {
		t.Fatalf("byICB=%+v", byICB)
	}
}

func TestStatistics(t *testing.T) {
	e := testEngine()
	stats := e.Statistics()

	if stats.TotalPractices != 4 {
		t.Fatalf("total=%d", stats.TotalPractices)
	}
	if len(stats.Systems) != 2 {
		t.Fatalf("systems=%+v", stats.Systems)
	}
	if stats.Systems[0].System != "TPP" || stats.Systems[0].Count != 3 || stats.Systems[0].Percentage != 75.0 {
		t.Fatalf("top=%+v", stats.Systems[0])
	}

	sum := 0
	pct := 0.0
	for _, s := range stats.Systems {
		sum += s.Count
		pct += s.Percentage
	}
	if sum != stats.TotalPractices {
		t.Fatalf("counts sum %d != total %d", sum, stats.TotalPractices)
	}
	if math.Abs(pct-100.0) > 0.05 {
		t.Fatalf("percentages sum %f", pct)
	}
}

func TestStatisticsTieOrder(t *testing.T) {
	e := NewEngine([]internal.PracticeRecord{
		rec("A1", "A", "EMIS", "X"),
		rec("A2", "B", "TPP", "X"),
		rec("A3", "C", "EMIS", "X"),
		rec("A4", "D", "TPP", "X"),
	})
	stats := e.Statistics()
	// Equal counts keep first-encounter order: EMIS before TPP.
	if stats.Systems[0].System != "EMIS" || stats.Systems[1].System != "TPP" {
		t.Fatalf("order=%+v", stats.Systems)
	}
}

func TestStatisticsEmptyDataset(t *testing.T) {
	stats := NewEngine(nil).Statistics()
	if stats.TotalPractices != 0 || len(stats.Systems) != 0 {
		t.Fatalf("stats=%+v", stats)
	}
}
