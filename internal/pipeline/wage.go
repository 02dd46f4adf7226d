package pipeline

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"

	"lcaclean/internal"
	"lcaclean/internal/util"
)

// Periods per year, assuming a 40 hour week and 260 working days.
var wageFactors = map[string]float64{
	internal.UnitYear:        1,
	internal.UnitHour:        2080,
	internal.UnitWeek:        52,
	internal.UnitBiWeekly:    26,
	internal.UnitSemiMonthly: 24,
	internal.UnitMonth:       12,
	internal.UnitDay:         260,
}

// Annualized wages outside this range are nulled.
const (
	minAnnualWage = 1000
	maxAnnualWage = 5_000_000
)

func ParseWageStrategy(s string) (internal.WageStrategy, error) {
	switch internal.WageStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", internal.WageFromFirst:
		return internal.WageFromFirst, nil
	case internal.WageAverage:
		return internal.WageAverage, nil
	case internal.WageMax:
		return internal.WageMax, nil
	default:
		return "", fmt.Errorf("unsupported wage strategy: %s (want from|avg|max)", s)
	}
}

func WageFactor(unit string) (float64, bool) {
	f, ok := wageFactors[unit]
	return f, ok
}

// AnnualWage picks a base rate by strategy and scales it by the unit factor.
// The result is missing when there is no base, the unit is unknown, or the
// figure falls outside [1000, 5000000].
func AnnualWage(from, to pgtype.Float8, unit pgtype.Text, strategy internal.WageStrategy) pgtype.Float8 {
	if !unit.Valid {
		return pgtype.Float8{}
	}
	factor, ok := WageFactor(unit.String)
	if !ok {
		return pgtype.Float8{}
	}
	base, ok := baseWage(from, to, strategy)
	if !ok {
		return pgtype.Float8{}
	}
	annual := base * factor
	if annual < minAnnualWage || annual > maxAnnualWage {
		return pgtype.Float8{}
	}
	return pgtype.Float8{Float64: util.Round2(annual), Valid: true}
}

func baseWage(from, to pgtype.Float8, strategy internal.WageStrategy) (float64, bool) {
	switch {
	case from.Valid && to.Valid:
		switch strategy {
		case internal.WageAverage:
			return (from.Float64 + to.Float64) / 2, true
		case internal.WageMax:
			return max(from.Float64, to.Float64), true
		default:
			return from.Float64, true
		}
	case from.Valid:
		return from.Float64, true
	case to.Valid:
		return to.Float64, true
	default:
		return 0, false
	}
}
