package util

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var numericPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

var currencyReplacer = strings.NewReplacer("$", "", ",", "")

// ParseNumber strips currency symbols and thousands separators and parses the
// remainder. Anything that is not a plain finite decimal reports false.
func ParseNumber(input string) (float64, bool) {
	s := strings.TrimSpace(currencyReplacer.Replace(input))
	if s == "" || !numericPattern.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// Round2 rounds to two decimal places, ties to even.
func Round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
