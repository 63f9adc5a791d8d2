package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"gpsys/internal"
	"gpsys/internal/config"
	"gpsys/internal/dataset"
	"gpsys/internal/lookup"
	"gpsys/internal/tools"
	"gpsys/internal/util"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "data:update":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		month := fs.String("month", "", "month to update (YYYY-MM), defaults to previous month")
		zipURL := fs.String("zip-url", "", "direct archive url, bypasses page scraping")
		_ = fs.Parse(os.Args[2:])
		if *month != "" {
			if _, err := util.ParseISOMonth(*month); err != nil {
				must(err)
			}
		}
		out, err := tools.NewService(cfg).Update(context.Background(), *month, *zipURL)
		must(err)
		fmt.Println(out)
	case "lookup":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		odsCode := fs.String("ods-code", "", "gp practice ods code, e.g. A81001")
		month := fs.String("month", "", "data month (YYYY-MM), defaults to latest")
		output := fs.String("output", "text", "text|json|markdown")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*odsCode) == "" {
			must(fmt.Errorf("--ods-code is required"))
		}
		if *output == "markdown" {
			out, err := tools.NewService(cfg).Lookup(*odsCode, *month)
			must(err)
			fmt.Println(out)
			return
		}
		engine := loadEngine(cfg, *month)
		rec, ok := engine.LookupByCode(*odsCode)
		if !ok {
			fmt.Println("No results found.")
			return
		}
		printRecord(rec, *output)
	case "search":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		name := fs.String("name", "", "practice name or partial name")
		exact := fs.Bool("exact", false, "require full-string equality")
		month := fs.String("month", "", "data month (YYYY-MM), defaults to latest")
		output := fs.String("output", "text", "text|json|markdown")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*name) == "" {
			must(fmt.Errorf("--name is required"))
		}
		if *output == "markdown" {
			out, err := tools.NewService(cfg).Search(*name, *exact, *month)
			must(err)
			fmt.Println(out)
			return
		}
		printRecords(loadEngine(cfg, *month).SearchByName(*name, *exact), *output)
	case "filter":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		system := fs.String("system", "", "it system name, e.g. TPP, EMIS")
		month := fs.String("month", "", "data month (YYYY-MM), defaults to latest")
		output := fs.String("output", "text", "text|json|markdown")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*system) == "" {
			must(fmt.Errorf("--system is required"))
		}
		if *output == "markdown" {
			out, err := tools.NewService(cfg).Filter(*system, *month)
			must(err)
			fmt.Println(out)
			return
		}
		printRecords(loadEngine(cfg, *month).FilterBySystem(*system), *output)
	case "stats":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		month := fs.String("month", "", "data month (YYYY-MM), defaults to latest")
		output := fs.String("output", "text", "text|json|markdown")
		_ = fs.Parse(os.Args[2:])
		if *output == "markdown" {
			out, err := tools.NewService(cfg).Stats(*month)
			must(err)
			fmt.Println(out)
			return
		}
		printStats(loadEngine(cfg, *month).Statistics(), *output)
	case "months":
		months := dataset.AvailableMonths(cfg.DataDir)
		if len(months) == 0 {
			fmt.Println("no datasets available, run data:update first")
			return
		}
		for _, month := range months {
			fmt.Println(month)
		}
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		month := fs.String("month", "", "data month (YYYY-MM), defaults to latest")
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--out is required"))
		}
		target := *month
		if target == "" {
			latest, err := dataset.LatestMonth(cfg.DataDir)
			must(err)
			target = latest
		}
		records, err := dataset.Load(cfg.DataDir, target)
		must(err)
		must(dataset.ExportXLSX(records, *out))
		fmt.Printf("exported %d records for %s to %s\n", len(records), target, *out)
	default:
		usage()
		os.Exit(1)
	}
}

func loadEngine(cfg config.Config, month string) *lookup.Engine {
	if month == "" {
		latest, err := dataset.LatestMonth(cfg.DataDir)
		must(err)
		month = latest
	}
	records, err := dataset.Load(cfg.DataDir, month)
	must(err)
	return lookup.NewEngine(records)
}

func printRecord(rec internal.PracticeRecord, output string) {
	if output == "json" {
		printJSON(rec)
		return
	}
	fmt.Printf("ODS Code: %s\n", rec.ODSCode)
	fmt.Printf("Name: %s\n", rec.Name)
	fmt.Printf("Systems: %s\n", rec.RawSystems)
	fmt.Printf("Main System: %s\n", rec.MainSystem)
	if rec.Commissioner != "" {
		fmt.Printf("ICB Sub location: %s\n", rec.Commissioner)
	}
}

func printRecords(records []internal.PracticeRecord, output string) {
	if output == "json" {
		printJSON(records)
		return
	}
	if len(records) == 0 {
		fmt.Println("No results found.")
		return
	}
	fmt.Printf("Found %d results:\n\n", len(records))
	for i, rec := range records {
		fmt.Printf("%d. %s (%s) - %s\n", i+1, rec.Name, rec.ODSCode, rec.MainSystem)
	}
}

func printStats(stats internal.Statistics, output string) {
	if output == "json" {
		printJSON(stats)
		return
	}
	fmt.Printf("total_practices: %d\n", stats.TotalPractices)
	fmt.Println("systems:")
	for _, sys := range stats.Systems {
		fmt.Printf("  %s: count=%d percentage=%.2f\n", sys.System, sys.Count, sys.Percentage)
	}
}

func printJSON(v any) {
	blob, err := json.MarshalIndent(v, "", "  ")
	must(err)
	fmt.Println(string(blob))
}

func usage() {
	fmt.Println("usage: gpsys <command>")
	fmt.Println("commands:")
	fmt.Println("  data:update --month=2025-01 [--zip-url=https://...]")
	fmt.Println("  lookup --ods-code=A81001 [--month=2025-01] [--output=text|json|markdown]")
	fmt.Println("  search --name=\"PARK MEDICAL\" [--exact] [--month=...] [--output=...]")
	fmt.Println("  filter --system=TPP [--month=...] [--output=...]")
	fmt.Println("  stats [--month=...] [--output=...]")
	fmt.Println("  months")
	fmt.Println("  export:xlsx --out=./out/gp.xlsx [--month=...]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
