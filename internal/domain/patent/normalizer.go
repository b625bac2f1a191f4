package patent

import (
	"strings"
	"time"
	"unicode"

	"github.com/turtacn/patent-radar/pkg/errors"
)

// NormalizePatentNumber canonicalizes a raw patent number: whitespace and
// commas are stripped, letters are upper-cased, and bare US numbers (all
// digits, or digits with a kind code) receive the "US" country prefix.
//
//	" us 10,123,456 b2 " -> "US10123456B2"
//	"10123456"           -> "US10123456"
func NormalizePatentNumber(raw string) string {
	var sb strings.Builder
	for _, r := range raw {
		if unicode.IsSpace(r) || r == ',' {
			continue
		}
		sb.WriteRune(unicode.ToUpper(r))
	}
	number := sb.String()
	if number == "" {
		return ""
	}
	if unicode.IsDigit(rune(number[0])) {
		number = "US" + number
	}
	return number
}

// NormalizeCPCCode canonicalizes a CPC classification symbol: whitespace is
// stripped and letters are upper-cased.
//
//	" h01m 10/0525 " -> "H01M10/0525"
func NormalizeCPCCode(raw string) string {
	var sb strings.Builder
	for _, r := range raw {
		if unicode.IsSpace(r) {
			continue
		}
		sb.WriteRune(unicode.ToUpper(r))
	}
	return sb.String()
}

// dateLayouts are the accepted date notations for ingested records, tried in
// order.  All parsed dates are interpreted as UTC.
var dateLayouts = []string{
	"2006-01-02",
	"20060102",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDate parses a date string in any of the accepted layouts and truncates
// it to midnight UTC.  An empty input yields a nil date with no error.
func ParseDate(raw string) (*time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &day, nil
		}
	}
	return nil, errors.New(errors.ErrCodePatentDateInvalid, "unparseable date").WithDetail("input=" + s)
}
