package domain

import (
	"strconv"
	"strings"
)

// NormalizeValue turns a dimension value into the string form used for
// comparisons. Whole-number floats lose their fraction so a material group
// read as 1234.0 matches a filter value of "1234". Values without a
// decimal point, or in exponent form such as "12E4", are kept as they are.
func NormalizeValue(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return v
	}
	if !strings.Contains(v, ".") || strings.ContainsAny(v, "eE") {
		return v
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return v
	}
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return v
}
