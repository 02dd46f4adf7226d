package internal

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

type WageStrategy string

const (
	WageFromFirst WageStrategy = "from"
	WageAverage   WageStrategy = "avg"
	WageMax       WageStrategy = "max"
)

// Canonical wage unit keys.
const (
	UnitYear        = "year"
	UnitHour        = "hour"
	UnitWeek        = "week"
	UnitBiWeekly    = "bi_weekly"
	UnitSemiMonthly = "semi_monthly"
	UnitMonth       = "month"
	UnitDay         = "day"
)

// RawTable is one chunk of an input sheet. An empty cell is a missing value.
type RawTable struct {
	Headers []string
	Rows    [][]string
}

// Cell returns the value at row/col, or "" when the row is short.
func (t RawTable) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

type CanonicalRecord struct {
	CaseNumber    pgtype.Text
	CaseStatus    pgtype.Text
	ReceivedDate  pgtype.Date
	DecisionDate  pgtype.Date
	EmployerName  pgtype.Text
	JobTitle      pgtype.Text
	SocCode       pgtype.Text
	SocTitle      pgtype.Text
	WorksiteCity  pgtype.Text
	WorksiteState pgtype.Text
	WageRateFrom  pgtype.Float8
	WageRateTo    pgtype.Float8
	WageUnit      pgtype.Text
	WageAnnual    pgtype.Float8
	Year          pgtype.Int4
}

// FileStats accumulates per-file counters across chunks.
type FileStats struct {
	InputRows         int
	OutputRows        int
	DecisionDateMin   *time.Time
	DecisionDateMax   *time.Time
	WageAnnualNonNull int
}

func (s *FileStats) Observe(rec CanonicalRecord) {
	s.OutputRows++
	if rec.WageAnnual.Valid {
		s.WageAnnualNonNull++
	}
	if !rec.DecisionDate.Valid {
		return
	}
	d := rec.DecisionDate.Time
	if s.DecisionDateMin == nil || d.Before(*s.DecisionDateMin) {
		lo := d
		s.DecisionDateMin = &lo
	}
	if s.DecisionDateMax == nil || d.After(*s.DecisionDateMax) {
		hi := d
		s.DecisionDateMax = &hi
	}
}

type ManifestEntry struct {
	File              string
	FiscalYear        *int
	Quarter           *int
	InputRows         int
	OutputRows        int
	DecisionDateMin   *time.Time
	DecisionDateMax   *time.Time
	WageAnnualNonNull int
	OutputPath        string
}

// RunSummary describes one backfill batch in the run log.
type RunSummary struct {
	ID         string
	InputDir   string
	OutputDir  string
	StartedAt  time.Time
	FinishedAt time.Time
	Files      int
}
