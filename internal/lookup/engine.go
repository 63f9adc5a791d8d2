// Package lookup answers read-only queries over a loaded monthly dataset.
package lookup

import (
	"math"
	"sort"
	"strings"

	"gpsys/internal"
)

// Engine holds an immutable snapshot of one month's records. All queries
// are side-effect-free; callers reload a new Engine when the artifact
// changes.
type Engine struct {
	records []internal.PracticeRecord
}

func NewEngine(records []internal.PracticeRecord) *Engine {
	return &Engine{records: records}
}

func (e *Engine) Records() []internal.PracticeRecord {
	return e.records
}

// LookupByCode matches an ODS code case-insensitively. Codes are unique in
// a well-formed dataset; if the artifact carries duplicates the first match
// wins.
func (e *Engine) LookupByCode(code string) (internal.PracticeRecord, bool) {
	needle := strings.ToUpper(strings.TrimSpace(code))
	for _, rec := range e.records {
		if rec.ODSCode == needle {
			return rec, true
		}
	}
	return internal.PracticeRecord{}, false
}

// SearchByName matches practice names case-insensitively, by substring or
// full equality. Results come back in file order, unranked.
func (e *Engine) SearchByName(term string, exact bool) []internal.PracticeRecord {
	needle := strings.ToUpper(strings.TrimSpace(term))
	out := []internal.PracticeRecord{}
	for _, rec := range e.records {
		name := strings.ToUpper(rec.Name)
		if exact {
			if name == needle {
				out = append(out, rec)
			}
		} else if strings.Contains(name, needle) {
			out = append(out, rec)
		}
	}
	return out
}

func (e *Engine) FilterBySystem(system string) []internal.PracticeRecord {
	needle := strings.ToUpper(strings.TrimSpace(system))
	out := []internal.PracticeRecord{}
	for _, rec := range e.records {
		if strings.ToUpper(rec.MainSystem) == needle {
			out = append(out, rec)
		}
	}
	return out
}

// CountByCommissioner aggregates records per commissioner, count descending,
// ties in first-encounter order.
func CountByCommissioner(records []internal.PracticeRecord) []internal.CommissionerCount {
	counts := map[string]int{}
	order := []string{}
	for _, rec := range records {
		if _, ok := counts[rec.Commissioner]; !ok {
			order = append(order, rec.Commissioner)
		}
		counts[rec.Commissioner]++
	}

	out := make([]internal.CommissionerCount, 0, len(order))
	for _, commissioner := range order {
		out = append(out, internal.CommissionerCount{Commissioner: commissioner, Count: counts[commissioner]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// Statistics reports the supplier distribution: per-supplier counts and
// percentages of total (two decimals), count descending, ties in
// first-encounter order.
func (e *Engine) Statistics() internal.Statistics {
	counts := map[string]int{}
	order := []string{}
	for _, rec := range e.records {
		if _, ok := counts[rec.MainSystem]; !ok {
			order = append(order, rec.MainSystem)
		}
		counts[rec.MainSystem]++
	}

	total := len(e.records)
	systems := make([]internal.SystemStat, 0, len(order))
	for _, system := range order {
		count := counts[system]
		percentage := 0.0
		if total > 0 {
			percentage = math.Round(float64(count)/float64(total)*10000) / 100
		}
		systems = append(systems, internal.SystemStat{System: system, Count: count, Percentage: percentage})
	}
	sort.SliceStable(systems, func(i, j int) bool { return systems[i].Count > systems[j].Count })

	return internal.Statistics{TotalPractices: total, Systems: systems}
}
