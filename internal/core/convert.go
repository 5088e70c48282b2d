package core

// convert.go turns user-provided cell text into numbers.
//
// Cells come from spreadsheets and hand-typed text, so the parser accepts:
//   - Currency symbols and thousands separators ("$1,234.50"), grouped in
//     threes; any other comma placement ("1,2,3", "1.234,5") is rejected
//   - Accounting negatives ("(12.5)")
//   - A decimal comma when it cannot be a thousands separator ("0,75")
//   - Excel formula prefixes (="42")

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// groupedRegex matches comma thousands grouping with an optional dot decimal.
var groupedRegex = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d*)?([eE][+-]?\d+)?$`)

// decimalCommaRegex matches a single comma used as the decimal point.
var decimalCommaRegex = regexp.MustCompile(`^[+-]?\d*,\d+$`)

// ParseValue converts a cell to a float64. Empty cells and anything that is
// not a number after cleanup are an error.
func ParseValue(s string) (float64, error) {
	s = CleanCell(s)
	if s == "" {
		return 0, fmt.Errorf("invalid number: empty")
	}

	// Detect negative accounting format "(123.45)"
	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	// Remove common currency symbols
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "") // Euro
	s = strings.ReplaceAll(s, "£", "") // Pound
	s = strings.ReplaceAll(s, " ", "") // No-break space
	s = strings.TrimSpace(s)

	s, ok := normalizeSeparators(s)
	if !ok {
		return 0, fmt.Errorf("invalid number: misplaced separator in %q", s)
	}

	if isNegative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return 0, fmt.Errorf("invalid number: %q", s)
	}
	return strconv.ParseFloat(s, 64)
}

// normalizeSeparators drops thousands separators and turns a decimal comma
// into a dot. A lone comma followed by exactly three digits is grouping.
// ok is false for any other use of commas.
func normalizeSeparators(s string) (out string, ok bool) {
	switch {
	case !strings.Contains(s, ","):
		return s, true
	case groupedRegex.MatchString(s):
		return strings.ReplaceAll(s, ",", ""), true
	case decimalCommaRegex.MatchString(s):
		return strings.Replace(s, ",", ".", 1), true
	default:
		return s, false
	}
}

// CleanCell removes common CSV artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	// Remove leading '='
	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	// Remove any surrounding quotes
	s = strings.Trim(s, `"'`)

	return strings.TrimSpace(s)
}
