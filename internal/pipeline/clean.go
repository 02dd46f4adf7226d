package pipeline

import (
	"log/slog"

	"lcaclean/internal"
)

// CleanTable maps, normalizes and derives every row of a chunk, then drops
// rows without a case number. Input order is preserved.
func CleanTable(t internal.RawTable, strategy internal.WageStrategy) []internal.CanonicalRecord {
	cols := MapColumns(t.Headers)
	if dups := cols.Duplicates(); len(dups) > 0 {
		slog.Debug("coalescing duplicate columns after rename", "fields", dups)
	}

	out := make([]internal.CanonicalRecord, 0, len(t.Rows))
	for row := range t.Rows {
		rec := NormalizeRow(cols, t, row, strategy)
		if !rec.CaseNumber.Valid {
			continue
		}
		out = append(out, rec)
	}
	return out
}
