package pipeline

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"lcaclean/internal"
)

const ManifestFileName = "manifest.csv"

var fiscalQuarterPattern = regexp.MustCompile(`(?i)FY(\d{4})_Q([1-4])`)

var manifestHeader = []string{
	"file", "fy_in_name", "q_in_name", "input_rows", "output_rows",
	"decision_date_min", "decision_date_max", "wage_annual_nonnull", "output_csv",
}

// ParseFiscalQuarter extracts fiscal year and quarter from names like
// LCA_Disclosure_Data_FY2021_Q2.xlsx. Both are nil when the name has neither.
func ParseFiscalQuarter(name string) (*int, *int) {
	m := fiscalQuarterPattern.FindStringSubmatch(name)
	if m == nil {
		return nil, nil
	}
	fy, _ := strconv.Atoi(m[1])
	q, _ := strconv.Atoi(m[2])
	return &fy, &q
}

// SortInputFiles orders names by fiscal year, then quarter, with unparseable
// names last; ties go by name.
func SortInputFiles(names []string) {
	type key struct {
		fy, q int
		name  string
	}
	keys := make(map[string]key, len(names))
	for _, name := range names {
		k := key{fy: 1<<31 - 1, q: 1<<31 - 1, name: name}
		if fy, q := ParseFiscalQuarter(name); fy != nil {
			k.fy, k.q = *fy, *q
		}
		keys[name] = k
	}
	sort.SliceStable(names, func(i, j int) bool {
		a, b := keys[names[i]], keys[names[j]]
		if a.fy != b.fy {
			return a.fy < b.fy
		}
		if a.q != b.q {
			return a.q < b.q
		}
		return a.name < b.name
	})
}

func NewManifestEntry(file, outputPath string, stats internal.FileStats) internal.ManifestEntry {
	fy, q := ParseFiscalQuarter(file)
	return internal.ManifestEntry{
		File:              file,
		FiscalYear:        fy,
		Quarter:           q,
		InputRows:         stats.InputRows,
		OutputRows:        stats.OutputRows,
		DecisionDateMin:   stats.DecisionDateMin,
		DecisionDateMax:   stats.DecisionDateMax,
		WageAnnualNonNull: stats.WageAnnualNonNull,
		OutputPath:        outputPath,
	}
}

// WriteManifest writes one row per entry to <dir>/manifest.csv and returns
// the path. Missing values are left empty.
func WriteManifest(dir string, entries []internal.ManifestEntry) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, ManifestFileName)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(manifestHeader); err != nil {
		return "", err
	}
	for _, e := range entries {
		row := []string{
			e.File,
			optionalInt(e.FiscalYear),
			optionalInt(e.Quarter),
			strconv.Itoa(e.InputRows),
			strconv.Itoa(e.OutputRows),
			optionalDate(e.DecisionDateMin),
			optionalDate(e.DecisionDateMax),
			strconv.Itoa(e.WageAnnualNonNull),
			e.OutputPath,
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return path, f.Close()
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func optionalDate(v *time.Time) string {
	if v == nil {
		return ""
	}
	return v.Format(dateLayout)
}
