// Package tools is the query surface exposed to an agent, abstracted from
// any transport. Queries render markdown; Update runs the pipeline and
// invalidates the loaded snapshot.
package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gpsys/internal"
	"gpsys/internal/config"
	"gpsys/internal/dataset"
	"gpsys/internal/lookup"
	"gpsys/internal/pipeline"
	"gpsys/internal/util"
)

// searchResultCap bounds rendered search output; agents should narrow the
// term instead of paging.
const searchResultCap = 50

// Service holds the loaded snapshot explicitly: {loadedMonth, engine} is the
// only cross-request state, and Update invalidates it on success.
type Service struct {
	cfg         config.Config
	loadedMonth string
	engine      *lookup.Engine
}

func NewService(cfg config.Config) *Service {
	return &Service{cfg: cfg}
}

func (s *Service) Lookup(code, month string) (string, error) {
	engine, err := s.snapshot(month)
	if err != nil {
		return notFoundMessage(err)
	}

	rec, ok := engine.LookupByCode(code)
	if !ok {
		return fmt.Sprintf("No GP practice found with ODS code `%s`.", strings.ToUpper(strings.TrimSpace(code))), nil
	}
	return formatPractice(rec), nil
}

func (s *Service) Search(name string, exact bool, month string) (string, error) {
	engine, err := s.snapshot(month)
	if err != nil {
		return notFoundMessage(err)
	}

	results := engine.SearchByName(name, exact)
	if len(results) == 0 {
		return fmt.Sprintf("No GP practices found matching '%s'.", name), nil
	}

	lines := []string{fmt.Sprintf("Found **%d** practices matching '%s':", len(results), name), ""}
	for i, rec := range results {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, formatPractice(rec)), "")
		if i+1 >= searchResultCap && len(results) > searchResultCap {
			lines = append(lines, fmt.Sprintf("*... and %d more results. Try a more specific search term.*", len(results)-searchResultCap))
			break
		}
	}
	return strings.Join(lines, "\n"), nil
}

func (s *Service) Filter(system, month string) (string, error) {
	engine, err := s.snapshot(month)
	if err != nil {
		return notFoundMessage(err)
	}

	results := engine.FilterBySystem(system)
	if len(results) == 0 {
		return fmt.Sprintf("No GP practices found using system '%s'. Common systems: TPP, EMIS, CEGEDIM, MICROTEST.", strings.ToUpper(system)), nil
	}

	lines := []string{
		fmt.Sprintf("**%d** practices use **%s**", len(results), strings.ToUpper(system)),
		"",
		"### Breakdown by ICB Sub Location",
		"",
		"| ICB Sub Location | Count |",
		"|---|---|",
	}
	for _, entry := range lookup.CountByCommissioner(results) {
		lines = append(lines, fmt.Sprintf("| %s | %d |", entry.Commissioner, entry.Count))
	}
	return strings.Join(lines, "\n"), nil
}

func (s *Service) Stats(month string) (string, error) {
	engine, err := s.snapshot(month)
	if err != nil {
		return notFoundMessage(err)
	}

	stats := engine.Statistics()
	lines := []string{
		"## GP IT System Statistics",
		"",
		fmt.Sprintf("**Total practices:** %d", stats.TotalPractices),
		fmt.Sprintf("**Available months:** %s", monthsOrNone(s.cfg.DataDir)),
		"",
		"| System | Count | Percentage |",
		"|---|---|---|",
	}
	for _, sys := range stats.Systems {
		lines = append(lines, fmt.Sprintf("| %s | %d | %.2f%% |", sys.System, sys.Count, sys.Percentage))
	}
	return strings.Join(lines, "\n"), nil
}

// Update runs the full pipeline for a month (previous month when empty) and
// invalidates the loaded snapshot on success.
func (s *Service) Update(ctx context.Context, month, overrideURL string) (string, error) {
	if month == "" {
		month = util.PreviousMonth(time.Now())
	}

	count, err := pipeline.Run(ctx, s.cfg, month, overrideURL)
	if err != nil {
		return "", fmt.Errorf("updating data for %s: %w", month, err)
	}

	s.Invalidate()
	return fmt.Sprintf("Data for %s is now available: %d GP practices. Use the lookup tools to query it.", month, count), nil
}

// Invalidate drops the loaded snapshot so the next query reloads from disk.
func (s *Service) Invalidate() {
	s.loadedMonth = ""
	s.engine = nil
}

func (s *Service) snapshot(month string) (*lookup.Engine, error) {
	if month == "" {
		latest, err := dataset.LatestMonth(s.cfg.DataDir)
		if err != nil {
			return nil, err
		}
		month = latest
	}

	if s.engine != nil && s.loadedMonth == month {
		return s.engine, nil
	}

	records, err := dataset.Load(s.cfg.DataDir, month)
	if err != nil {
		return nil, err
	}
	s.engine = lookup.NewEngine(records)
	s.loadedMonth = month
	return s.engine, nil
}

// notFoundMessage renders a missing dataset as a readable reply instead of
// failing the surface; other errors propagate.
func notFoundMessage(err error) (string, error) {
	if errors.Is(err, dataset.ErrNotFound) {
		return err.Error(), nil
	}
	return "", err
}

func formatPractice(rec internal.PracticeRecord) string {
	lines := []string{
		fmt.Sprintf("**%s** (`%s`)", rec.Name, rec.ODSCode),
		fmt.Sprintf("- IT System: %s", rec.MainSystem),
		fmt.Sprintf("- Raw Systems: %s", rec.RawSystems),
	}
	if rec.Commissioner != "" {
		lines = append(lines, fmt.Sprintf("- ICB Sub Location: %s", rec.Commissioner))
	}
	return strings.Join(lines, "\n")
}

func monthsOrNone(dir string) string {
	months := dataset.AvailableMonths(dir)
	if len(months) == 0 {
		return "none"
	}
	return strings.Join(months, ", ")
}
