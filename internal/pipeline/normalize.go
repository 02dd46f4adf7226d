package pipeline

import (
	"strings"

	"github.com/jackc/pgx/v5/pgtype"

	"lcaclean/internal"
	"lcaclean/internal/util"
)

var wageUnitVariants = map[string]string{
	"year":     internal.UnitYear,
	"yr":       internal.UnitYear,
	"per_year": internal.UnitYear,
	"annual":   internal.UnitYear,
	"annually": internal.UnitYear,
	"yearly":   internal.UnitYear,

	"hour":     internal.UnitHour,
	"hr":       internal.UnitHour,
	"per_hour": internal.UnitHour,
	"hourly":   internal.UnitHour,

	"week":     internal.UnitWeek,
	"wk":       internal.UnitWeek,
	"per_week": internal.UnitWeek,
	"weekly":   internal.UnitWeek,

	"bi_weekly": internal.UnitBiWeekly,
	"biweekly":  internal.UnitBiWeekly,

	"semi_monthly": internal.UnitSemiMonthly,
	"semimonthly":  internal.UnitSemiMonthly,
	"semi_month":   internal.UnitSemiMonthly,

	"month":     internal.UnitMonth,
	"mo":        internal.UnitMonth,
	"per_month": internal.UnitMonth,
	"monthly":   internal.UnitMonth,

	"day":     internal.UnitDay,
	"daily":   internal.UnitDay,
	"per_day": internal.UnitDay,
}

// NormalizeWageUnit maps a free-text pay period onto a canonical unit key.
// Unknown labels come back as their normalized token so they stay visible in
// the output; they simply have no annualization factor.
func NormalizeWageUnit(raw string) (string, bool) {
	s, ok := util.CleanText(raw)
	if !ok {
		return "", false
	}
	token := util.NormalizeToken(s)
	if token == "" {
		return "", false
	}
	if unit, ok := wageUnitVariants[token]; ok {
		return unit, true
	}
	return token, true
}

// NormalizeRow builds the canonical record for one raw row. Bad values become
// missing fields; nothing here fails.
func NormalizeRow(cols ColumnMap, t internal.RawTable, row int, strategy internal.WageStrategy) internal.CanonicalRecord {
	value := func(field string) string { return cols.Value(t, row, field) }

	rec := internal.CanonicalRecord{
		CaseNumber:    textField(value(FieldCaseNumber)),
		CaseStatus:    textField(value(FieldCaseStatus)),
		ReceivedDate:  dateField(value(FieldReceivedDate)),
		DecisionDate:  dateField(value(FieldDecisionDate)),
		EmployerName:  textField(value(FieldEmployerName)),
		JobTitle:      textField(value(FieldJobTitle)),
		SocCode:       textField(value(FieldSocCode)),
		SocTitle:      textField(value(FieldSocTitle)),
		WorksiteCity:  textField(value(FieldWorksiteCity)),
		WorksiteState: stateField(value(FieldWorksiteState)),
		WageRateFrom:  numberField(value(FieldWageRateFrom)),
		WageRateTo:    numberField(value(FieldWageRateTo)),
		WageUnit:      unitField(value(FieldWageUnit)),
	}

	rec.WageAnnual = AnnualWage(rec.WageRateFrom, rec.WageRateTo, rec.WageUnit, strategy)
	if rec.DecisionDate.Valid {
		rec.Year = pgtype.Int4{Int32: int32(rec.DecisionDate.Time.Year()), Valid: true}
	}
	return rec
}

func textField(raw string) pgtype.Text {
	s, ok := util.CleanText(raw)
	return pgtype.Text{String: s, Valid: ok}
}

func stateField(raw string) pgtype.Text {
	s, ok := util.CleanText(raw)
	return pgtype.Text{String: strings.ToUpper(s), Valid: ok}
}

func numberField(raw string) pgtype.Float8 {
	v, ok := util.ParseNumber(raw)
	return pgtype.Float8{Float64: v, Valid: ok}
}

func dateField(raw string) pgtype.Date {
	d, ok := util.ParseMixedDate(raw)
	return pgtype.Date{Time: d, Valid: ok}
}

func unitField(raw string) pgtype.Text {
	u, ok := NormalizeWageUnit(raw)
	return pgtype.Text{String: u, Valid: ok}
}
