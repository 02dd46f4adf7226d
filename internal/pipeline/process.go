package pipeline

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"lcaclean/internal"
	"lcaclean/internal/config"
	"lcaclean/internal/storage"
)

var ErrNoInputFiles = errors.New("no input files matched")

type ProcessingService struct {
	strategy internal.WageStrategy
	read     ReadOptions
	pattern  string
	db       *storage.DB
	out      io.Writer
}

func NewProcessingService(cfg config.Config) (*ProcessingService, error) {
	strategy, err := ParseWageStrategy(cfg.WageStrategy)
	if err != nil {
		return nil, err
	}
	return &ProcessingService{
		strategy: strategy,
		read:     ReadOptions{Sheet: cfg.Sheet, ChunkSize: cfg.ChunkSize},
		pattern:  cfg.FilePattern,
		out:      os.Stdout,
	}, nil
}

// WithRunLog records every backfill run in db. A nil db disables the log.
func (s *ProcessingService) WithRunLog(db *storage.DB) *ProcessingService {
	s.db = db
	return s
}

// WithOutput redirects progress lines.
func (s *ProcessingService) WithOutput(w io.Writer) *ProcessingService {
	s.out = w
	return s
}

// CleanFile converts one disclosure file into a COPY-friendly CSV.
func (s *ProcessingService) CleanFile(inputPath, outputPath string) (internal.FileStats, error) {
	stats, err := s.cleanFile(inputPath, outputPath)
	if err != nil {
		return stats, err
	}
	fmt.Fprintf(s.out, "Done. Input rows: %s | Output rows: %s | Wrote: %s\n",
		humanize.Comma(int64(stats.InputRows)), humanize.Comma(int64(stats.OutputRows)), outputPath)
	return stats, nil
}

func (s *ProcessingService) cleanFile(inputPath, outputPath string) (internal.FileStats, error) {
	var stats internal.FileStats
	if sameFile(inputPath, outputPath) {
		return stats, fmt.Errorf("output %s would overwrite its input", outputPath)
	}

	w, err := CreateCopyWriter(outputPath)
	if err != nil {
		return stats, err
	}

	total, err := ReadSource(inputPath, s.read, func(t internal.RawTable) error {
		records := CleanTable(t, s.strategy)
		for _, rec := range records {
			stats.Observe(rec)
		}
		return w.Write(records)
	})
	stats.InputRows = total
	if err != nil {
		w.Abort()
		return stats, err
	}
	return stats, w.Close()
}

type BackfillResult struct {
	RunID        string
	Entries      []internal.ManifestEntry
	ManifestPath string
}

// Backfill cleans every matching file in inputDir into outputDir, in fiscal
// order, then writes the manifest. The first failing file aborts the run.
func (s *ProcessingService) Backfill(inputDir, outputDir string) (BackfillResult, error) {
	started := time.Now()
	result := BackfillResult{RunID: uuid.NewString()}
	logger := slog.With("run_id", result.RunID)

	files, err := s.matchInputFiles(inputDir)
	if err != nil {
		return result, err
	}
	if len(files) == 0 {
		return result, fmt.Errorf("%w in %s", ErrNoInputFiles, inputDir)
	}
	SortInputFiles(files)
	if err := checkOutputNames(files); err != nil {
		return result, err
	}
	logger.Info("backfill started", "input_dir", inputDir, "files", len(files), "wage_strategy", s.strategy)

	for _, name := range files {
		inputPath := filepath.Join(inputDir, name)
		outputPath := filepath.Join(outputDir, OutputName(name))

		stats, err := s.cleanFile(inputPath, outputPath)
		if err != nil {
			return result, fmt.Errorf("clean %s: %w", name, err)
		}
		result.Entries = append(result.Entries, NewManifestEntry(name, outputPath, stats))

		fmt.Fprintf(s.out, "Cleaned %s: %s -> %s | wrote %s\n",
			name, humanize.Comma(int64(stats.InputRows)), humanize.Comma(int64(stats.OutputRows)), outputPath)
		logger.Debug("file cleaned", "file", name, "input_rows", stats.InputRows, "output_rows", stats.OutputRows)
	}

	manifestPath, err := WriteManifest(outputDir, result.Entries)
	if err != nil {
		return result, fmt.Errorf("write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	fmt.Fprintf(s.out, "Manifest: %s\n", manifestPath)

	if s.db != nil {
		run := internal.RunSummary{
			ID:         result.RunID,
			InputDir:   inputDir,
			OutputDir:  outputDir,
			StartedAt:  started,
			FinishedAt: time.Now(),
			Files:      len(result.Entries),
		}
		if err := s.db.RecordRun(run, result.Entries); err != nil {
			return result, fmt.Errorf("record run: %w", err)
		}
	}
	logger.Info("backfill finished", "files", len(result.Entries), "elapsed", time.Since(started).Round(time.Millisecond))

	return result, nil
}

func (s *ProcessingService) matchInputFiles(inputDir string) ([]string, error) {
	pattern := s.pattern
	if strings.TrimSpace(pattern) == "" {
		pattern = `.*\.xlsx$`
	}
	re, err := regexp.Compile(`(?i)^(?:` + pattern + `)`)
	if err != nil {
		return nil, fmt.Errorf("invalid file pattern %q: %w", s.pattern, err)
	}

	dirEntries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range dirEntries {
		if e.IsDir() || !re.MatchString(e.Name()) {
			continue
		}
		files = append(files, e.Name())
	}
	return files, nil
}

// OutputName swaps the input extension for .csv.
func OutputName(inputName string) string {
	return strings.TrimSuffix(inputName, filepath.Ext(inputName)) + ".csv"
}

// checkOutputNames rejects batches where two inputs, e.g. X.xlsx and X.xlsm,
// would be cleaned into the same CSV.
func checkOutputNames(files []string) error {
	seen := make(map[string]string, len(files))
	for _, name := range files {
		key := strings.ToLower(OutputName(name))
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("%s and %s would both be written to %s", prev, name, OutputName(name))
		}
		seen[key] = name
	}
	return nil
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
