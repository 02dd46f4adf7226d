package pipeline

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lcaclean/internal/config"
	"lcaclean/internal/storage"
)

func testConfig() config.Config {
	return config.Config{Sheet: "0", WageStrategy: "from", ChunkSize: 2, FilePattern: `.*\.xlsx$`}
}

func TestCleanFileCSV(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "lca.csv")
	content := "CASE_NUMBER,WAGE_RATE_OF_PAY_FROM,WAGE_UNIT_OF_PAY,DECISION_DATE\n" +
		"A-1,50,Hour,2022-01-10\n" +
		",70000,Year,2022-01-11\n" +
		"A-3,\"$4,000.00\",Month,44270\n"
	if err := os.WriteFile(in, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	svc, err := NewProcessingService(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	svc.WithOutput(&out)

	dest := filepath.Join(dir, "clean", "lca_clean.csv")
	stats, err := svc.CleanFile(in, dest)
	if err != nil {
		t.Fatal(err)
	}
	if stats.InputRows != 3 || stats.OutputRows != 2 {
		t.Fatalf("stats %+v", stats)
	}
	if !strings.Contains(out.String(), "Done. Input rows: 3 | Output rows: 2 | Wrote: "+dest) {
		t.Fatalf("progress %q", out.String())
	}

	blob, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(string(blob), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines %q", lines)
	}
	if !strings.HasPrefix(lines[1], "A-1,") || !strings.HasSuffix(lines[1], ",hour,104000.00,2022") {
		t.Fatalf("row 1 %q", lines[1])
	}
}

func TestCleanFileRefusesToOverwriteInput(t *testing.T) {
	in := filepath.Join(t.TempDir(), "lca.csv")
	if err := os.WriteFile(in, []byte("CASE_NUMBER\nA-1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	svc, _ := NewProcessingService(testConfig())
	if _, err := svc.WithOutput(&bytes.Buffer{}).CleanFile(in, in); err == nil {
		t.Fatal("expected error")
	}
}

func TestBackfillOrdersFilesAndWritesManifest(t *testing.T) {
	inDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "clean")

	mkXLSX(t, filepath.Join(inDir, "LCA_Disclosure_Data_FY2021_Q2.xlsx"), map[string][][]any{"Sheet1": disclosureRows}, "Sheet1")
	mkXLSX(t, filepath.Join(inDir, "LCA_Disclosure_Data_FY2020_Q4.XLSX"), map[string][][]any{"Sheet1": {
		{"Case No", "Case Decision Date", "Wage Rate From", "Wage Unit"},
		{"I-9", "2020-12-01", "20", "Hour"},
		{"", "2020-12-02", "20", "Hour"},
	}}, "Sheet1")
	if err := os.WriteFile(filepath.Join(inDir, "notes.txt"), []byte("skip me"), 0o644); err != nil {
		t.Fatal(err)
	}

	db, err := storage.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var out bytes.Buffer
	svc, err := NewProcessingService(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	svc.WithOutput(&out).WithRunLog(db)

	res, err := svc.Backfill(inDir, outDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Entries) != 2 {
		t.Fatalf("entries %d", len(res.Entries))
	}
	first := res.Entries[0]
	if first.File != "LCA_Disclosure_Data_FY2020_Q4.XLSX" || first.InputRows != 2 || first.OutputRows != 1 || first.WageAnnualNonNull != 1 {
		t.Fatalf("first entry %+v", first)
	}
	if first.OutputPath != filepath.Join(outDir, "LCA_Disclosure_Data_FY2020_Q4.csv") {
		t.Fatalf("output path %s", first.OutputPath)
	}
	if _, err := os.Stat(first.OutputPath); err != nil {
		t.Fatal(err)
	}

	manifest, err := os.ReadFile(filepath.Join(outDir, ManifestFileName))
	if err != nil {
		t.Fatal(err)
	}
	rows := strings.Split(strings.TrimSpace(string(manifest)), "\n")
	if len(rows) != 3 || !strings.HasPrefix(rows[1], "LCA_Disclosure_Data_FY2020_Q4.XLSX,2020,4,2,1,2020-12-01,2020-12-01,1,") {
		t.Fatalf("manifest:\n%s", manifest)
	}
	if !strings.Contains(out.String(), "Manifest: "+res.ManifestPath) {
		t.Fatalf("progress %q", out.String())
	}

	logged, err := db.ListRunFiles(res.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if len(logged) != 2 || logged[1].File != "LCA_Disclosure_Data_FY2021_Q2.xlsx" {
		t.Fatalf("run log %+v", logged)
	}
}

func TestBackfillNoMatchingFiles(t *testing.T) {
	inDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(inDir, "readme.md"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	svc, _ := NewProcessingService(testConfig())
	_, err := svc.WithOutput(&bytes.Buffer{}).Backfill(inDir, t.TempDir())
	if !errors.Is(err, ErrNoInputFiles) {
		t.Fatalf("got %v", err)
	}
}

func TestBackfillAbortsOnUnreadableFile(t *testing.T) {
	inDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(inDir, "LCA_FY2020_Q1.xlsx"), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	outDir := t.TempDir()
	svc, _ := NewProcessingService(testConfig())
	if _, err := svc.WithOutput(&bytes.Buffer{}).Backfill(inDir, outDir); err == nil {
		t.Fatal("expected error")
	}
	if _, err := os.Stat(filepath.Join(outDir, ManifestFileName)); !os.IsNotExist(err) {
		t.Fatal("manifest should not be written for an aborted run")
	}
}

func TestOutputName(t *testing.T) {
	for in, want := range map[string]string{
		"LCA_FY2020_Q1.xlsx": "LCA_FY2020_Q1.csv",
		"LCA_FY2020_Q1.XLSX": "LCA_FY2020_Q1.csv",
		"raw.csv":            "raw.csv",
	} {
		if got := OutputName(in); got != want {
			t.Fatalf("%s: got %s", in, got)
		}
	}
}

func TestNewProcessingServiceRejectsBadStrategy(t *testing.T) {
	cfg := testConfig()
	cfg.WageStrategy = "median"
	if _, err := NewProcessingService(cfg); err == nil {
		t.Fatal("expected error")
	}
}

func TestCleanFileFailureKeepsPreviousOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "LCA_FY2021_Q2.xlsx")
	mkXLSX(t, in, map[string][][]any{"Sheet1": disclosureRows}, "Sheet1")

	outDir := filepath.Join(dir, "clean")
	out := filepath.Join(outDir, "LCA_FY2021_Q2.csv")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(out, []byte("good output\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig()
	cfg.Sheet = "Missing"
	svc, err := NewProcessingService(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.WithOutput(&bytes.Buffer{}).CleanFile(in, out); err == nil {
		t.Fatal("expected unknown sheet error")
	}

	blob, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(blob) != "good output\n" {
		t.Fatalf("previous output was replaced: %q", blob)
	}
	entries, _ := os.ReadDir(outDir)
	if len(entries) != 1 {
		t.Fatalf("unexpected files left in output dir: %v", entries)
	}
}

func TestBackfillRejectsCollidingOutputNames(t *testing.T) {
	inDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "clean")
	for _, name := range []string{"LCA_FY2021_Q2.xlsx", "LCA_FY2021_Q2.xlsm"} {
		mkXLSX(t, filepath.Join(inDir, name), map[string][][]any{"Sheet1": disclosureRows}, "Sheet1")
	}

	cfg := testConfig()
	cfg.FilePattern = `.*\.xls[xm]$`
	svc, err := NewProcessingService(cfg)
	if err != nil {
		t.Fatal(err)
	}
	_, err = svc.WithOutput(&bytes.Buffer{}).Backfill(inDir, outDir)
	if err == nil || !strings.Contains(err.Error(), "LCA_FY2021_Q2.csv") {
		t.Fatalf("got %v", err)
	}
	if _, err := os.Stat(outDir); !os.IsNotExist(err) {
		t.Fatal("nothing should be written when output names collide")
	}
}
