package util

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	reNonWord     = regexp.MustCompile(`[^\p{L}\p{N}_]+`)
	reUnderscores = regexp.MustCompile(`_+`)
)

// nullTokens are cell values spreadsheets and exporters use for "no value".
var nullTokens = map[string]struct{}{
	"":     {},
	"nan":  {},
	"NaN":  {},
	"None": {},
	"NONE": {},
}

// NormalizeToken turns a header or enumeration label into a lower-case
// snake_case token. NormalizeToken(NormalizeToken(s)) == NormalizeToken(s).
func NormalizeToken(input string) string {
	s := norm.NFKC.String(input)
	s = strings.ToLower(strings.TrimSpace(s))
	s = reNonWord.ReplaceAllString(s, "_")
	s = reUnderscores.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// CleanText trims the value and reports false when it is empty or a null token.
func CleanText(input string) (string, bool) {
	s := strings.TrimSpace(input)
	if _, isNull := nullTokens[s]; isNull {
		return "", false
	}
	return s, true
}
