package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"lcaclean/internal/config"
	"lcaclean/internal/logging"
	"lcaclean/internal/pipeline"
	"lcaclean/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "clean":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "path to input .xlsx or .csv")
		output := fs.String("output", "", "path to output clean CSV")
		fs.StringVar(&cfg.Sheet, "sheet", cfg.Sheet, "sheet name or 0-based index")
		fs.StringVar(&cfg.WageStrategy, "wage-strategy", cfg.WageStrategy, "from|avg|max")
		fs.IntVar(&cfg.ChunkSize, "chunksize", cfg.ChunkSize, "rows per chunk")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" || strings.TrimSpace(*output) == "" {
			must(fmt.Errorf("--input and --output are required"))
		}

		svc, err := pipeline.NewProcessingService(cfg)
		must(err)
		_, err = svc.CleanFile(*input, *output)
		must(err)
	case "backfill":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		inputDir := fs.String("input-dir", "", "directory with disclosure files")
		outputDir := fs.String("output-dir", "", "directory for clean CSVs and manifest.csv")
		fs.StringVar(&cfg.Sheet, "sheet", cfg.Sheet, "sheet name or 0-based index")
		fs.StringVar(&cfg.FilePattern, "pattern", cfg.FilePattern, "regex matched against file names, case-insensitive")
		fs.StringVar(&cfg.WageStrategy, "wage-strategy", cfg.WageStrategy, "from|avg|max")
		fs.StringVar(&cfg.RunLogDB, "runlog", cfg.RunLogDB, "optional sqlite run log path")
		_ = fs.Parse(os.Args[2:])
		must(cfg.Require("--input-dir", *inputDir))
		must(cfg.Require("--output-dir", *outputDir))

		svc, err := pipeline.NewProcessingService(cfg)
		must(err)
		err = withRunLog(cfg.RunLogDB, func(db *storage.DB) error {
			_, err := svc.WithRunLog(db).Backfill(*inputDir, *outputDir)
			return err
		})
		if errors.Is(err, pipeline.ErrNoInputFiles) {
			fmt.Printf("No files matched in %s\n", *inputDir)
			os.Exit(1)
		}
		must(err)
	case "runs":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		fs.StringVar(&cfg.RunLogDB, "runlog", cfg.RunLogDB, "sqlite run log path")
		runID := fs.String("run", "", "show files of one run")
		limit := fs.Int("limit", 20, "max runs")
		_ = fs.Parse(os.Args[2:])
		must(cfg.Require("--runlog", cfg.RunLogDB))

		must(withRunLog(cfg.RunLogDB, func(db *storage.DB) error {
			return printRuns(db, *runID, *limit)
		}))
	default:
		usage()
		os.Exit(1)
	}
}

// withRunLog runs fn with the run log at path open, or with a nil db when
// path is empty. The db is closed before the caller can exit.
func withRunLog(path string, fn func(*storage.DB) error) error {
	if path == "" {
		return fn(nil)
	}
	db, err := storage.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db)
}

func printRuns(db *storage.DB, runID string, limit int) error {
	if runID != "" {
		entries, err := db.ListRunFiles(runID)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return fmt.Errorf("no files recorded for run %s", runID)
		}
		for _, e := range entries {
			fmt.Printf("%s input=%d output=%d wage_annual=%d -> %s\n", e.File, e.InputRows, e.OutputRows, e.WageAnnualNonNull, e.OutputPath)
		}
		return nil
	}

	runs, err := db.ListRuns(limit)
	if err != nil {
		return err
	}
	for _, r := range runs {
		fmt.Printf("%s %s files=%d %s -> %s\n", r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Files, r.InputDir, r.OutputDir)
	}
	return nil
}

func usage() {
	fmt.Println("usage: lcaclean <command>")
	fmt.Println("commands:")
	fmt.Println("  clean --input=LCA.xlsx --output=out/clean.csv [--sheet=0] [--wage-strategy=from|avg|max] [--chunksize=200000]")
	fmt.Println("  backfill --input-dir=data/raw --output-dir=output/clean [--sheet=0] [--pattern='.*\\.xlsx$'] [--runlog=runs.db]")
	fmt.Println("  runs --runlog=runs.db [--run=ID] [--limit=20]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
