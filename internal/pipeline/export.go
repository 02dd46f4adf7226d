package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jackc/pgx/v5/pgtype"

	"lcaclean/internal"
)

// NullSentinel is what COPY ... NULL '\N' reads back as NULL.
const NullSentinel = `\N`

const dateLayout = "2006-01-02"

// CopyWriter streams canonical records into a COPY-friendly CSV file.
// Rows go to a temp file next to the destination, which replaces the
// destination only on Close, so a failed run leaves earlier output intact.
type CopyWriter struct {
	path string
	tmp  *os.File
	csv  *csv.Writer
}

func CreateCopyWriter(outputPath string) (*CopyWriter, error) {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(outputPath)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create output %s: %w", outputPath, err)
	}
	w := &CopyWriter{path: outputPath, tmp: f, csv: csv.NewWriter(f)}
	if err := w.csv.Write(TargetFields); err != nil {
		w.Abort()
		return nil, err
	}
	return w, nil
}

func (w *CopyWriter) Write(records []internal.CanonicalRecord) error {
	for _, rec := range records {
		if err := w.csv.Write(FormatRecord(rec)); err != nil {
			return fmt.Errorf("write %s: %w", w.path, err)
		}
	}
	return nil
}

// Close flushes the rows and moves the file into place.
func (w *CopyWriter) Close() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.Abort()
		return fmt.Errorf("flush %s: %w", w.path, err)
	}
	if err := w.tmp.Close(); err != nil {
		_ = os.Remove(w.tmp.Name())
		return fmt.Errorf("close %s: %w", w.path, err)
	}
	if err := os.Chmod(w.tmp.Name(), 0o644); err != nil {
		_ = os.Remove(w.tmp.Name())
		return err
	}
	if err := os.Rename(w.tmp.Name(), w.path); err != nil {
		_ = os.Remove(w.tmp.Name())
		return fmt.Errorf("replace %s: %w", w.path, err)
	}
	return nil
}

// Abort discards everything written so far. The destination is untouched.
func (w *CopyWriter) Abort() {
	_ = w.tmp.Close()
	_ = os.Remove(w.tmp.Name())
}

// FormatRecord renders a record in TargetFields order.
func FormatRecord(rec internal.CanonicalRecord) []string {
	return []string{
		formatText(rec.CaseNumber),
		formatText(rec.CaseStatus),
		formatDate(rec.ReceivedDate),
		formatDate(rec.DecisionDate),
		formatText(rec.EmployerName),
		formatText(rec.JobTitle),
		formatText(rec.SocCode),
		formatText(rec.SocTitle),
		formatText(rec.WorksiteCity),
		formatText(rec.WorksiteState),
		formatFloat(rec.WageRateFrom, -1),
		formatFloat(rec.WageRateTo, -1),
		formatText(rec.WageUnit),
		formatFloat(rec.WageAnnual, 2),
		formatInt(rec.Year),
	}
}

func formatText(v pgtype.Text) string {
	if !v.Valid {
		return NullSentinel
	}
	return v.String
}

func formatDate(v pgtype.Date) string {
	if !v.Valid {
		return NullSentinel
	}
	return v.Time.Format(dateLayout)
}

func formatFloat(v pgtype.Float8, prec int) string {
	if !v.Valid {
		return NullSentinel
	}
	return strconv.FormatFloat(v.Float64, 'f', prec, 64)
}

func formatInt(v pgtype.Int4) string {
	if !v.Valid {
		return NullSentinel
	}
	return strconv.FormatInt(int64(v.Int32), 10)
}
