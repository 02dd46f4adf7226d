package pipeline

import "lcaclean/internal/util"

// ResolveColumns returns the indexes of headers the schema mapper knows about.
// When nothing matches it returns nil, which readers treat as "keep every
// column".
func ResolveColumns(headers []string) []int {
	var keep []int
	for i, h := range headers {
		if _, ok := SourceToTarget[util.NormalizeToken(h)]; ok {
			keep = append(keep, i)
		}
	}
	if len(keep) == 0 {
		return nil
	}
	return keep
}

// project keeps only the cells at keep; a nil keep returns the row unchanged.
func project(row []string, keep []int) []string {
	if keep == nil {
		return row
	}
	out := make([]string, len(keep))
	for i, col := range keep {
		if col < len(row) {
			out[i] = row[col]
		}
	}
	return out
}
