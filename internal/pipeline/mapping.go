package pipeline

import (
	"sort"

	"lcaclean/internal"
	"lcaclean/internal/util"
)

const (
	FieldCaseNumber    = "case_number"
	FieldCaseStatus    = "case_status"
	FieldReceivedDate  = "received_date"
	FieldDecisionDate  = "decision_date"
	FieldEmployerName  = "employer_name"
	FieldJobTitle      = "job_title"
	FieldSocCode       = "soc_code"
	FieldSocTitle      = "soc_title"
	FieldWorksiteCity  = "worksite_city"
	FieldWorksiteState = "worksite_state"
	FieldWageRateFrom  = "wage_rate_from"
	FieldWageRateTo    = "wage_rate_to"
	FieldWageUnit      = "wage_unit"
	FieldWageAnnual    = "wage_annual"
	FieldYear          = "year"
)

// TargetFields is the output column order.
var TargetFields = []string{
	FieldCaseNumber,
	FieldCaseStatus,
	FieldReceivedDate,
	FieldDecisionDate,
	FieldEmployerName,
	FieldJobTitle,
	FieldSocCode,
	FieldSocTitle,
	FieldWorksiteCity,
	FieldWorksiteState,
	FieldWageRateFrom,
	FieldWageRateTo,
	FieldWageUnit,
	FieldWageAnnual,
	FieldYear,
}

// SourceToTarget maps normalized disclosure headers to target fields.
// Several headers may feed one field; see ColumnMap.Value.
var SourceToTarget = map[string]string{
	"case_number": FieldCaseNumber,
	"case_no":     FieldCaseNumber,

	"case_status": FieldCaseStatus,
	"status":      FieldCaseStatus,

	"received_date":      FieldReceivedDate,
	"case_received_date": FieldReceivedDate,

	"decision_date":      FieldDecisionDate,
	"case_decision_date": FieldDecisionDate,
	"original_cert_date": FieldDecisionDate,

	"employer_name":         FieldEmployerName,
	"employer":              FieldEmployerName,
	"employer_company_name": FieldEmployerName,

	"job_title": FieldJobTitle,
	"jobtitle":  FieldJobTitle,

	"soc_code": FieldSocCode,
	"soc":      FieldSocCode,

	"soc_title": FieldSocTitle,

	"worksite_city": FieldWorksiteCity,
	"employer_city": FieldWorksiteCity,

	"worksite_state": FieldWorksiteState,
	"employer_state": FieldWorksiteState,

	"wage_rate_of_pay_from": FieldWageRateFrom,
	"wage_rate_from":        FieldWageRateFrom,

	"wage_rate_of_pay_to": FieldWageRateTo,
	"wage_rate_to":        FieldWageRateTo,

	"wage_unit_of_pay": FieldWageUnit,
	"wage_unit":        FieldWageUnit,
}

// ColumnMap lists, per target field, the raw column indexes that feed it in
// left-to-right order. Unmapped raw columns do not appear.
type ColumnMap map[string][]int

func MapColumns(headers []string) ColumnMap {
	m := ColumnMap{}
	for i, h := range headers {
		target, ok := SourceToTarget[util.NormalizeToken(h)]
		if !ok {
			continue
		}
		m[target] = append(m[target], i)
	}
	return m
}

// Duplicates returns the target fields fed by more than one raw column.
func (m ColumnMap) Duplicates() []string {
	out := []string{}
	for field, cols := range m {
		if len(cols) > 1 {
			out = append(out, field)
		}
	}
	sort.Strings(out)
	return out
}

// Value coalesces the field for one row: the first non-empty cell among the
// field's source columns, or "" when the field has none.
func (m ColumnMap) Value(t internal.RawTable, row int, field string) string {
	for _, col := range m[field] {
		if v := t.Cell(row, col); v != "" {
			return v
		}
	}
	return ""
}
