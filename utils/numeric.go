package utils

import (
	"regexp"
	"strconv"
	"strings"
)

var numberPattern = regexp.MustCompile(`^\d+(\.\d+)?$`)

var currencyCleaner = strings.NewReplacer(",", "", "$", "", "₹", "", "Rs", "", "rs", "")

// ParseNumericToken decides whether a text fragment is a currency or
// quantity number. Thousands separators and currency prefixes are stripped
// first; the token qualifies only if the cleaned string is entirely an
// unsigned integer or decimal. The cleaned form is returned so callers can
// check for a decimal point ("looks like a price" vs "looks like a
// quantity"). This is a pure classification and never fails loudly.
func ParseNumericToken(tok string) (float64, string, bool) {
	cleaned := currencyCleaner.Replace(tok)
	if !numberPattern.MatchString(cleaned) {
		return 0, cleaned, false
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, cleaned, false
	}
	return value, cleaned, true
}
